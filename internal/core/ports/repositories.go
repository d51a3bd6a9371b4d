package ports

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

import (
	"context"
	"errors"
	"time"

	"eseva-portal/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrDuplicate is returned (wrapped) by repositories when a unique constraint rejects a write.
var ErrDuplicate = errors.New("duplicate key")

// AccountRepository defines persistence operations for accounts and their balances.
// Balance mutations accept pgx.Tx and are single conditional statements so
// concurrent callers cannot interleave a check with its write.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AccountStatus) error
	// Credit adds amount to the balance and returns the new balance.
	Credit(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount int64) (int64, error)
	// DebitIfSufficient subtracts amount only when the balance covers it.
	// ok is false when the balance was insufficient or the account is missing.
	DebitIfSufficient(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount int64) (newBalance int64, ok bool, err error)
	CountByRole(ctx context.Context, role domain.AccountRole) (int64, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

// LedgerRepository defines persistence operations for ledger entries.
type LedgerRepository interface {
	Create(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error
	GetByOrderID(ctx context.Context, orderID string) (*domain.LedgerEntry, error)
	// TransitionPending moves a PENDING entry to a terminal status in a single
	// compare-and-swap. It returns nil, nil when no PENDING entry matched.
	TransitionPending(ctx context.Context, tx pgx.Tx, orderID string, to domain.LedgerStatus, paymentRef *string) (*domain.LedgerEntry, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.LedgerEntry, error)
	ListRecent(ctx context.Context, limit int) ([]domain.LedgerEntry, error)
	Totals(ctx context.Context, accountID uuid.UUID) (*domain.LedgerTotals, error)
	GetStats(ctx context.Context, since time.Time) (*LedgerStats, error)
}

// LedgerStats holds aggregated figures for the admin dashboard.
type LedgerStats struct {
	TotalRevenue     int64 // Sum of successful recharges
	PeriodRevenue    int64 // Sum of successful recharges since the requested instant
	PendingRecharges int64
}

// ServiceRepository persists applications. A wrapper and its variant are
// always written through the same pgx.Tx.
type ServiceRepository interface {
	CreateApplication(ctx context.Context, tx pgx.Tx, app *domain.Application) error
	GetApplication(ctx context.Context, serviceID uuid.UUID) (*domain.Application, error)
	GetApplicationForUpdate(ctx context.Context, tx pgx.Tx, serviceID uuid.UUID) (*domain.Application, error)
	UpdateApplication(ctx context.Context, tx pgx.Tx, app *domain.Application) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.Service, error)
}

// ServiceConfigRepository persists per-service pricing and feature flags.
type ServiceConfigRepository interface {
	Get(ctx context.Context, serviceType domain.ServiceType) (*domain.ServiceConfig, error)
	List(ctx context.Context) ([]domain.ServiceConfig, error)
	// CreateIfMissing inserts cfg unless a row already exists, and returns the stored row.
	CreateIfMissing(ctx context.Context, cfg *domain.ServiceConfig) (*domain.ServiceConfig, error)
	Update(ctx context.Context, cfg *domain.ServiceConfig) error
}

// GatewayEventRepository stores inbound gateway notifications.
type GatewayEventRepository interface {
	Create(ctx context.Context, event *domain.GatewayEvent) error
	ListByOrderID(ctx context.Context, orderID string) ([]domain.GatewayEvent, error)
}

// AuditRepository stores audit log entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
