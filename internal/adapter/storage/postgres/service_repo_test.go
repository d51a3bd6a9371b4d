package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"eseva-portal/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func applicationCols() []string {
	return []string{
		"id", "account_id", "service_type", "variant_id", "status", "comments", "documents",
		"created_at", "updated_at",
		"v_id", "v_account_id", "v_service_type", "v_status", "status_remark", "general_remarks", "price", "data",
		"v_created_at", "v_updated_at",
	}
}

func applicationRow(t *testing.T, app *domain.Application) *pgxmock.Rows {
	t.Helper()
	data, err := json.Marshal(app.Variant.Data)
	require.NoError(t, err)
	s, v := app.Service, app.Variant
	return pgxmock.NewRows(applicationCols()).AddRow(
		s.ID, s.AccountID, s.ServiceType, s.VariantID, s.Status, []byte(`[]`), []byte(`[]`),
		s.CreatedAt, s.UpdatedAt,
		v.ID, v.AccountID, v.ServiceType, v.Status, v.StatusRemark, []byte(`[]`), v.Price, data,
		v.CreatedAt, v.UpdatedAt,
	)
}

func newRtpsApplication() *domain.Application {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return domain.NewApplication(uuid.New(),
		domain.Rtps{District: "Gaya", Block: "Bodhgaya", ReferenceNumber: "RTPS-77"},
		37000, domain.ServiceStatusPending, now)
}

func TestServiceRepo_CreateApplication(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewServiceRepo(mock)
	app := newRtpsApplication()
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO service_variants").
		WithArgs(app.Variant.ID, app.Variant.AccountID, domain.ServiceRtps, domain.ServiceStatusPending,
			app.Variant.StatusRemark, pgxmock.AnyArg(), int64(37000), pgxmock.AnyArg(),
			app.Variant.CreatedAt, app.Variant.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO services").
		WithArgs(app.Service.ID, app.Service.AccountID, domain.ServiceRtps, app.Variant.ID,
			domain.ServiceStatusPending, []byte(`[]`), []byte(`[]`),
			app.Service.CreatedAt, app.Service.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	assert.NoError(t, repo.CreateApplication(ctx, tx, app))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceRepo_GetApplication(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewServiceRepo(mock)
	app := newRtpsApplication()

	mock.ExpectQuery("(?s)SELECT s.id.+FROM services s JOIN service_variants v").
		WithArgs(app.Service.ID).
		WillReturnRows(applicationRow(t, app))

	got, err := repo.GetApplication(context.Background(), app.Service.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, app.Variant.ID, got.Service.VariantID)
	assert.Equal(t, domain.Rtps{District: "Gaya", Block: "Bodhgaya", ReferenceNumber: "RTPS-77"}, got.Variant.Data)
	assert.NotNil(t, got.Service.Comments)
	assert.NotNil(t, got.Variant.GeneralRemarks)
}

func TestServiceRepo_GetApplicationForUpdate_Locks(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewServiceRepo(mock)
	app := newRtpsApplication()
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery("(?s)FROM services s JOIN service_variants v.+FOR UPDATE OF s, v").
		WithArgs(app.Service.ID).
		WillReturnRows(applicationRow(t, app))

	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	got, err := repo.GetApplicationForUpdate(ctx, tx, app.Service.ID)
	require.NoError(t, err)
	assert.Equal(t, app.Service.ID, got.Service.ID)
}

func TestServiceRepo_GetApplication_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewServiceRepo(mock)

	mock.ExpectQuery("FROM services s").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(applicationCols()))

	got, err := repo.GetApplication(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestServiceRepo_UpdateApplication(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewServiceRepo(mock)
	app := newRtpsApplication()
	app.Service.Status = domain.ServiceStatusApproved
	app.Variant.Status = domain.ServiceStatusApproved
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE service_variants").
		WithArgs(domain.ServiceStatusApproved, app.Variant.StatusRemark, pgxmock.AnyArg(), pgxmock.AnyArg(),
			app.Variant.UpdatedAt, app.Variant.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE services").
		WithArgs(domain.ServiceStatusApproved, pgxmock.AnyArg(), pgxmock.AnyArg(),
			app.Service.UpdatedAt, app.Service.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	assert.NoError(t, repo.UpdateApplication(ctx, tx, app))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceRepo_UpdateApplication_MissingVariant(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewServiceRepo(mock)
	app := newRtpsApplication()
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE service_variants").
		WithArgs(anyArgs(6)...).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	err = repo.UpdateApplication(ctx, tx, app)
	assert.ErrorContains(t, err, "service variant not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceRepo_ListByAccount(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewServiceRepo(mock)
	app := newRtpsApplication()
	s := app.Service
	comments := []byte(`[{"text":"documents verified","created_at":"2026-01-02T10:00:00Z"}]`)

	mock.ExpectQuery("(?s)SELECT .+ FROM services.+WHERE account_id").
		WithArgs(s.AccountID, 100).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "account_id", "service_type", "variant_id", "status", "comments", "documents", "created_at", "updated_at",
		}).AddRow(s.ID, s.AccountID, s.ServiceType, s.VariantID, s.Status, comments, []byte(`[]`), s.CreatedAt, s.UpdatedAt))

	got, err := repo.ListByAccount(context.Background(), s.AccountID, 100)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].Comments, 1)
	assert.Equal(t, "documents verified", got[0].Comments[0].Text)
	assert.Empty(t, got[0].Documents)
}
