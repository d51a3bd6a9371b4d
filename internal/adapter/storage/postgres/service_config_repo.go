package postgres

import (
	"context"
	"errors"
	"fmt"

	"eseva-portal/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

const serviceConfigColumns = `service_type, price, label, is_active, maintenance_message, created_at, updated_at`

// ServiceConfigRepo implements ports.ServiceConfigRepository.
type ServiceConfigRepo struct {
	pool Pool
}

// NewServiceConfigRepo creates a new ServiceConfigRepo.
func NewServiceConfigRepo(pool Pool) *ServiceConfigRepo {
	return &ServiceConfigRepo{pool: pool}
}

// Get fetches the config of one service type.
func (r *ServiceConfigRepo) Get(ctx context.Context, serviceType domain.ServiceType) (*domain.ServiceConfig, error) {
	query := `SELECT ` + serviceConfigColumns + ` FROM service_configs WHERE service_type = $1`

	c := &domain.ServiceConfig{}
	err := r.pool.QueryRow(ctx, query, serviceType).Scan(
		&c.ServiceType, &c.Price, &c.Label, &c.IsActive, &c.MaintenanceMessage, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get service config: %w", err)
	}
	return c, nil
}

// List returns all stored configs ordered by service type.
func (r *ServiceConfigRepo) List(ctx context.Context) ([]domain.ServiceConfig, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+serviceConfigColumns+` FROM service_configs ORDER BY service_type`)
	if err != nil {
		return nil, fmt.Errorf("list service configs: %w", err)
	}
	defer rows.Close()

	var configs []domain.ServiceConfig
	for rows.Next() {
		var c domain.ServiceConfig
		if err := rows.Scan(
			&c.ServiceType, &c.Price, &c.Label, &c.IsActive, &c.MaintenanceMessage, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan service config: %w", err)
		}
		configs = append(configs, c)
	}
	return configs, rows.Err()
}

// CreateIfMissing seeds a config row; an existing row wins.
func (r *ServiceConfigRepo) CreateIfMissing(ctx context.Context, c *domain.ServiceConfig) (*domain.ServiceConfig, error) {
	_, err := r.pool.Exec(ctx, `INSERT INTO service_configs (`+serviceConfigColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (service_type) DO NOTHING`,
		c.ServiceType, c.Price, c.Label, c.IsActive, c.MaintenanceMessage, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("seed service config: %w", err)
	}

	stored, err := r.Get(ctx, c.ServiceType)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("service config vanished after seed: %s", c.ServiceType)
	}
	return stored, nil
}

// Update overwrites price, label and availability of a config.
func (r *ServiceConfigRepo) Update(ctx context.Context, c *domain.ServiceConfig) error {
	tag, err := r.pool.Exec(ctx, `UPDATE service_configs
		SET price = $1, label = $2, is_active = $3, maintenance_message = $4, updated_at = $5
		WHERE service_type = $6`,
		c.Price, c.Label, c.IsActive, c.MaintenanceMessage, c.UpdatedAt, c.ServiceType,
	)
	if err != nil {
		return fmt.Errorf("update service config: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("service config not found: %s", c.ServiceType)
	}
	return nil
}
