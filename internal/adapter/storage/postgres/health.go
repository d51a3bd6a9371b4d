package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// HealthCheck implements ports.HealthChecker for PostgreSQL. Besides
// connectivity it reports a schema that was never migrated or that a failed
// migration left dirty, since every ledger query depends on it.
type HealthCheck struct {
	pool Pool
}

func NewHealthCheck(pool Pool) *HealthCheck {
	return &HealthCheck{pool: pool}
}

func (h *HealthCheck) Ping(ctx context.Context) error {
	var dirty bool
	err := h.pool.QueryRow(ctx, `SELECT dirty FROM schema_migrations LIMIT 1`).Scan(&dirty)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return errors.New("schema not migrated")
	case err != nil:
		return fmt.Errorf("reading migration state: %w", err)
	case dirty:
		return errors.New("schema migration left dirty; run portalctl migrate")
	}
	return nil
}

func (h *HealthCheck) Name() string {
	return "postgresql"
}
