package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"eseva-portal/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const serviceColumns = `id, account_id, service_type, variant_id, status, comments, documents, created_at, updated_at`

const applicationSelect = `SELECT s.id, s.account_id, s.service_type, s.variant_id, s.status, s.comments, s.documents,
		s.created_at, s.updated_at,
		v.id, v.account_id, v.service_type, v.status, v.status_remark, v.general_remarks, v.price, v.data,
		v.created_at, v.updated_at
		FROM services s JOIN service_variants v ON v.id = s.variant_id
		WHERE s.id = $1`

// ServiceRepo implements ports.ServiceRepository.
type ServiceRepo struct {
	pool Pool
}

// NewServiceRepo creates a new ServiceRepo.
func NewServiceRepo(pool Pool) *ServiceRepo {
	return &ServiceRepo{pool: pool}
}

// CreateApplication inserts the variant row and its wrapper in tx.
func (r *ServiceRepo) CreateApplication(ctx context.Context, tx pgx.Tx, app *domain.Application) error {
	v, s := app.Variant, app.Service

	data, err := json.Marshal(v.Data)
	if err != nil {
		return fmt.Errorf("marshal variant data: %w", err)
	}
	remarks, err := json.Marshal(v.GeneralRemarks)
	if err != nil {
		return fmt.Errorf("marshal remarks: %w", err)
	}
	_, err = tx.Exec(ctx, `INSERT INTO service_variants
		(id, account_id, service_type, status, status_remark, general_remarks, price, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		v.ID, v.AccountID, v.ServiceType, v.Status, v.StatusRemark, remarks, v.Price, data, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert service variant: %w", err)
	}

	comments, documents, err := marshalServiceLists(s)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `INSERT INTO services (`+serviceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.AccountID, s.ServiceType, s.VariantID, s.Status, comments, documents, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert service: %w", err)
	}
	return nil
}

// GetApplication fetches a wrapper together with its variant.
func (r *ServiceRepo) GetApplication(ctx context.Context, serviceID uuid.UUID) (*domain.Application, error) {
	return scanApplication(r.pool.QueryRow(ctx, applicationSelect, serviceID))
}

// GetApplicationForUpdate fetches and row-locks a wrapper and its variant.
// This MUST be called within a transaction.
func (r *ServiceRepo) GetApplicationForUpdate(ctx context.Context, tx pgx.Tx, serviceID uuid.UUID) (*domain.Application, error) {
	return scanApplication(tx.QueryRow(ctx, applicationSelect+` FOR UPDATE OF s, v`, serviceID))
}

// UpdateApplication writes back both halves of an application in tx.
func (r *ServiceRepo) UpdateApplication(ctx context.Context, tx pgx.Tx, app *domain.Application) error {
	v, s := app.Variant, app.Service

	data, err := json.Marshal(v.Data)
	if err != nil {
		return fmt.Errorf("marshal variant data: %w", err)
	}
	remarks, err := json.Marshal(v.GeneralRemarks)
	if err != nil {
		return fmt.Errorf("marshal remarks: %w", err)
	}
	tag, err := tx.Exec(ctx, `UPDATE service_variants
		SET status = $1, status_remark = $2, general_remarks = $3, data = $4, updated_at = $5
		WHERE id = $6`,
		v.Status, v.StatusRemark, remarks, data, v.UpdatedAt, v.ID,
	)
	if err != nil {
		return fmt.Errorf("update service variant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("service variant not found: %s", v.ID)
	}

	comments, documents, err := marshalServiceLists(s)
	if err != nil {
		return err
	}
	tag, err = tx.Exec(ctx, `UPDATE services
		SET status = $1, comments = $2, documents = $3, updated_at = $4
		WHERE id = $5`,
		s.Status, comments, documents, s.UpdatedAt, s.ID,
	)
	if err != nil {
		return fmt.Errorf("update service: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("service not found: %s", s.ID)
	}
	return nil
}

// ListByAccount returns an account's service wrappers, newest first.
func (r *ServiceRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.Service, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+serviceColumns+` FROM services
		WHERE account_id = $1 ORDER BY created_at DESC LIMIT $2`, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	services := []domain.Service{}
	for rows.Next() {
		var (
			s                   domain.Service
			comments, documents []byte
		)
		if err := rows.Scan(
			&s.ID, &s.AccountID, &s.ServiceType, &s.VariantID, &s.Status,
			&comments, &documents, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan service row: %w", err)
		}
		if err := unmarshalServiceLists(&s, comments, documents); err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate service rows: %w", err)
	}
	return services, nil
}

func scanApplication(row pgx.Row) (*domain.Application, error) {
	var (
		s                            domain.Service
		v                            domain.VariantRecord
		comments, documents, remarks []byte
		data                         []byte
	)
	err := row.Scan(
		&s.ID, &s.AccountID, &s.ServiceType, &s.VariantID, &s.Status, &comments, &documents,
		&s.CreatedAt, &s.UpdatedAt,
		&v.ID, &v.AccountID, &v.ServiceType, &v.Status, &v.StatusRemark, &remarks, &v.Price, &data,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan application: %w", err)
	}

	if err := unmarshalServiceLists(&s, comments, documents); err != nil {
		return nil, err
	}
	v.GeneralRemarks = []domain.Remark{}
	if len(remarks) > 0 {
		if err := json.Unmarshal(remarks, &v.GeneralRemarks); err != nil {
			return nil, fmt.Errorf("decode remarks: %w", err)
		}
	}
	if v.Data, err = domain.DecodeVariant(v.ServiceType, data); err != nil {
		return nil, fmt.Errorf("decode variant data: %w", err)
	}
	return &domain.Application{Service: &s, Variant: &v}, nil
}

func marshalServiceLists(s *domain.Service) ([]byte, []byte, error) {
	comments, err := json.Marshal(nonNil(s.Comments))
	if err != nil {
		return nil, nil, fmt.Errorf("marshal comments: %w", err)
	}
	documents, err := json.Marshal(nonNil(s.Documents))
	if err != nil {
		return nil, nil, fmt.Errorf("marshal documents: %w", err)
	}
	return comments, documents, nil
}

func unmarshalServiceLists(s *domain.Service, comments, documents []byte) error {
	s.Comments = []domain.Comment{}
	s.Documents = []domain.Document{}
	if len(comments) > 0 {
		if err := json.Unmarshal(comments, &s.Comments); err != nil {
			return fmt.Errorf("decode comments: %w", err)
		}
	}
	if len(documents) > 0 {
		if err := json.Unmarshal(documents, &s.Documents); err != nil {
			return fmt.Errorf("decode documents: %w", err)
		}
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
