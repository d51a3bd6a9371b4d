package postgres

import (
	"context"
	"fmt"

	"eseva-portal/internal/core/domain"
)

// GatewayEventRepo implements ports.GatewayEventRepository.
type GatewayEventRepo struct {
	pool Pool
}

// NewGatewayEventRepo creates a new GatewayEventRepo.
func NewGatewayEventRepo(pool Pool) *GatewayEventRepo {
	return &GatewayEventRepo{pool: pool}
}

func (r *GatewayEventRepo) Create(ctx context.Context, e *domain.GatewayEvent) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO gateway_events (id, source, order_id, gateway_status, payment_reference, payload, outcome, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.Source, e.OrderID, e.GatewayStatus, e.PaymentReference, e.Payload, e.Outcome, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert gateway event: %w", err)
	}
	return nil
}

func (r *GatewayEventRepo) ListByOrderID(ctx context.Context, orderID string) ([]domain.GatewayEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, source, order_id, gateway_status, payment_reference, payload, outcome, created_at
		FROM gateway_events
		WHERE order_id = $1
		ORDER BY created_at DESC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list gateway events: %w", err)
	}
	defer rows.Close()

	var events []domain.GatewayEvent
	for rows.Next() {
		var e domain.GatewayEvent
		if err := rows.Scan(
			&e.ID, &e.Source, &e.OrderID, &e.GatewayStatus, &e.PaymentReference, &e.Payload, &e.Outcome, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan gateway event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
