package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eseva-portal/internal/core/domain"
	"eseva-portal/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const ledgerColumns = `id, account_id, direction, amount, category, description, order_id,
		payment_reference, status, service_id, created_at, updated_at`

// LedgerRepo implements ports.LedgerRepository.
type LedgerRepo struct {
	pool Pool
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(pool Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

// Create inserts a ledger entry within a database transaction.
// A second entry for the same order id fails with ports.ErrDuplicate.
func (r *LedgerRepo) Create(ctx context.Context, tx pgx.Tx, e *domain.LedgerEntry) error {
	query := `INSERT INTO ledger_entries (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := tx.Exec(ctx, query,
		e.ID, e.AccountID, e.Direction, e.Amount, e.Category, e.Description, e.OrderID,
		e.PaymentReference, e.Status, e.ServiceID, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert ledger entry: %w", ports.ErrDuplicate)
		}
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// GetByOrderID fetches the entry carrying an external order id.
func (r *LedgerRepo) GetByOrderID(ctx context.Context, orderID string) (*domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries WHERE order_id = $1`
	return scanLedgerEntry(r.pool.QueryRow(ctx, query, orderID))
}

// TransitionPending is the settlement compare-and-swap: only a PENDING row
// is updated, so exactly one concurrent caller gets a row back.
func (r *LedgerRepo) TransitionPending(ctx context.Context, tx pgx.Tx, orderID string, to domain.LedgerStatus, paymentRef *string) (*domain.LedgerEntry, error) {
	query := `UPDATE ledger_entries
		SET status = $2, payment_reference = COALESCE($3, payment_reference), updated_at = NOW()
		WHERE order_id = $1 AND status = 'PENDING'
		RETURNING ` + ledgerColumns

	return scanLedgerEntry(tx.QueryRow(ctx, query, orderID, to, paymentRef))
}

// ListByAccount returns an account's entries, newest first.
func (r *LedgerRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries
		WHERE account_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	return collectLedgerEntries(rows)
}

// ListRecent returns the newest entries across all accounts.
func (r *LedgerRepo) ListRecent(ctx context.Context, limit int) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries ORDER BY created_at DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent ledger entries: %w", err)
	}
	return collectLedgerEntries(rows)
}

// Totals sums an account's settled movements next to its stored balance.
func (r *LedgerRepo) Totals(ctx context.Context, accountID uuid.UUID) (*domain.LedgerTotals, error) {
	query := `SELECT a.id,
		COALESCE(SUM(l.amount) FILTER (WHERE l.direction = 'CREDIT' AND l.status = 'SUCCESS'), 0) AS credits,
		COALESCE(SUM(l.amount) FILTER (WHERE l.direction = 'DEBIT' AND l.status = 'SUCCESS'), 0) AS debits,
		a.balance
		FROM accounts a LEFT JOIN ledger_entries l ON l.account_id = a.id
		WHERE a.id = $1
		GROUP BY a.id, a.balance`

	t := &domain.LedgerTotals{}
	err := r.pool.QueryRow(ctx, query, accountID).Scan(&t.AccountID, &t.Credits, &t.Debits, &t.StoredBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ledger totals: %w", err)
	}
	return t, nil
}

// GetStats aggregates recharge revenue and the pending recharge backlog.
func (r *LedgerRepo) GetStats(ctx context.Context, since time.Time) (*ports.LedgerStats, error) {
	query := `SELECT
		COALESCE(SUM(amount) FILTER (WHERE status = 'SUCCESS'), 0) AS total_revenue,
		COALESCE(SUM(amount) FILTER (WHERE status = 'SUCCESS' AND created_at >= $1), 0) AS period_revenue,
		COUNT(*) FILTER (WHERE status = 'PENDING') AS pending
		FROM ledger_entries WHERE category = 'RECHARGE' AND direction = 'CREDIT'`

	stats := &ports.LedgerStats{}
	err := r.pool.QueryRow(ctx, query, since).Scan(&stats.TotalRevenue, &stats.PeriodRevenue, &stats.PendingRecharges)
	if err != nil {
		return nil, fmt.Errorf("get ledger stats: %w", err)
	}
	return stats, nil
}

func collectLedgerEntries(rows pgx.Rows) ([]domain.LedgerEntry, error) {
	defer rows.Close()

	entries := []domain.LedgerEntry{}
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(
			&e.ID, &e.AccountID, &e.Direction, &e.Amount, &e.Category, &e.Description, &e.OrderID,
			&e.PaymentReference, &e.Status, &e.ServiceID, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger rows: %w", err)
	}
	return entries, nil
}

func scanLedgerEntry(row pgx.Row) (*domain.LedgerEntry, error) {
	e := &domain.LedgerEntry{}
	err := row.Scan(
		&e.ID, &e.AccountID, &e.Direction, &e.Amount, &e.Category, &e.Description, &e.OrderID,
		&e.PaymentReference, &e.Status, &e.ServiceID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan ledger entry: %w", err)
	}
	return e, nil
}
