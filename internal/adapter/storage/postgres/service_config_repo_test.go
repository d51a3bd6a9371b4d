package postgres

import (
	"context"
	"testing"
	"time"

	"eseva-portal/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serviceConfigCols() []string {
	return []string{"service_type", "price", "label", "is_active", "maintenance_message", "created_at", "updated_at"}
}

func TestServiceConfigRepo_CreateIfMissing_ExistingRowWins(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewServiceConfigRepo(mock)
	now := time.Now().UTC().Truncate(time.Microsecond)
	seed := &domain.ServiceConfig{
		ServiceType: domain.ServicePanCard, Price: 12500, Label: "PAN Card Application",
		IsActive: true, CreatedAt: now, UpdatedAt: now,
	}

	mock.ExpectExec("(?s)INSERT INTO service_configs.+ON CONFLICT \\(service_type\\) DO NOTHING").
		WithArgs(seed.ServiceType, seed.Price, seed.Label, seed.IsActive, seed.MaintenanceMessage, seed.CreatedAt, seed.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectQuery("SELECT .+ FROM service_configs WHERE service_type").
		WithArgs(domain.ServicePanCard).
		WillReturnRows(pgxmock.NewRows(serviceConfigCols()).
			AddRow(domain.ServicePanCard, int64(15000), "PAN Card Application", false, "Back soon", now, now))

	got, err := repo.CreateIfMissing(context.Background(), seed)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), got.Price)
	assert.False(t, got.IsActive)
	assert.Equal(t, "Back soon", got.MaintenanceMessage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceConfigRepo_Get_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewServiceConfigRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM service_configs").
		WithArgs(domain.ServiceRtps).
		WillReturnRows(pgxmock.NewRows(serviceConfigCols()))

	got, err := repo.Get(context.Background(), domain.ServiceRtps)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestServiceConfigRepo_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewServiceConfigRepo(mock)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT .+ FROM service_configs ORDER BY service_type").
		WillReturnRows(pgxmock.NewRows(serviceConfigCols()).
			AddRow(domain.ServiceLabourCard, int64(37000), "Labour Card Application", true, "", now, now).
			AddRow(domain.ServicePanCard, int64(12500), "PAN Card Application", true, "", now, now))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.ServiceLabourCard, got[0].ServiceType)
}

func TestServiceConfigRepo_Update(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewServiceConfigRepo(mock)
	cfg := &domain.ServiceConfig{
		ServiceType: domain.ServiceVoterCard, Price: 4000, Label: "Voter Card PDF",
		IsActive: false, MaintenanceMessage: "Portal down", UpdatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("UPDATE service_configs").
		WithArgs(cfg.Price, cfg.Label, cfg.IsActive, cfg.MaintenanceMessage, cfg.UpdatedAt, cfg.ServiceType).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, repo.Update(context.Background(), cfg))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGatewayEventRepo_CreateAndList(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewGatewayEventRepo(mock)
	ref := "TXN-1"
	e := &domain.GatewayEvent{
		ID: uuid.New(), Source: domain.EventSourceWebhook, OrderID: "ORD1", GatewayStatus: "Success",
		PaymentReference: &ref, Payload: `{"order_id":"ORD1"}`, Outcome: domain.EventOutcomeSettled,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	mock.ExpectExec("INSERT INTO gateway_events").
		WithArgs(e.ID, e.Source, e.OrderID, e.GatewayStatus, e.PaymentReference, e.Payload, e.Outcome, e.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("(?s)SELECT .+ FROM gateway_events.+WHERE order_id").
		WithArgs("ORD1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "source", "order_id", "gateway_status", "payment_reference", "payload", "outcome", "created_at",
		}).AddRow(e.ID, e.Source, e.OrderID, e.GatewayStatus, e.PaymentReference, e.Payload, e.Outcome, e.CreatedAt))

	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, e))

	events, err := repo.ListByOrderID(ctx, "ORD1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventOutcomeSettled, events[0].Outcome)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAuditRepository(mock)
	accountID := uuid.New()
	log := &domain.AuditLog{
		ID: uuid.New(), AccountID: &accountID, Action: domain.AuditActionRecharge,
		ResourceType: "ledger_entry", ResourceID: "ORD1", Details: `{}`, IPAddress: "10.0.0.1",
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO audit_logs").
		WithArgs(log.ID, log.AccountID, "RECHARGE", log.ResourceType, log.ResourceID, log.Details, log.IPAddress, log.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, repo.Create(context.Background(), log))
	assert.NoError(t, mock.ExpectationsWereMet())
}
