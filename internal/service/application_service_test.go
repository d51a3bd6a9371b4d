package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"eseva-portal/internal/core/domain"
	"eseva-portal/internal/core/ports"
	"eseva-portal/internal/core/ports/mocks"
	"eseva-portal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type applicationTestDeps struct {
	svc         *ApplicationServiceImpl
	serviceRepo *mocks.MockServiceRepository
	ledger      *mocks.MockLedgerService
	pricing     *mocks.MockPricingService
	documents   *mocks.MockDocumentStore
	transactor  *mocks.MockDBTransactor
}

func setupApplicationService(t *testing.T) *applicationTestDeps {
	ctrl := gomock.NewController(t)
	d := &applicationTestDeps{
		serviceRepo: mocks.NewMockServiceRepository(ctrl),
		ledger:      mocks.NewMockLedgerService(ctrl),
		pricing:     mocks.NewMockPricingService(ctrl),
		documents:   mocks.NewMockDocumentStore(ctrl),
		transactor:  mocks.NewMockDBTransactor(ctrl),
	}
	d.svc = NewApplicationService(d.serviceRepo, d.ledger, d.pricing, d.documents, d.transactor, zerolog.Nop())
	return d
}

func activeConfig(t domain.ServiceType, price int64) *domain.ServiceConfig {
	return &domain.ServiceConfig{ServiceType: t, Price: price, IsActive: true}
}

func panCardRequest(accountID uuid.UUID) ports.DocumentApplicationRequest {
	return ports.DocumentApplicationRequest{
		AccountID:   accountID,
		ServiceType: domain.ServicePanCard,
		Fields: map[string]string{
			"fullName":     "Sunil Kumar",
			"dateOfBirth":  "1990-04-12",
			"fatherName":   "Ramesh Kumar",
			"mobileNumber": "9876543210",
			"aadharNumber": "123412341234",
			"address":      "Ward 4, Danapur",
		},
		Files: []ports.UploadedFile{
			uploadedFile("photo", "me.JPG"),
			uploadedFile("signature", "sign.png"),
			uploadedFile("aadharFile", "aadhar.pdf"),
		},
	}
}

func rtpsItems(t *testing.T, n int) []json.RawMessage {
	t.Helper()
	items := make([]json.RawMessage, 0, n)
	for i := 0; i < n; i++ {
		raw, err := json.Marshal(domain.Rtps{District: "Patna", Block: "Danapur", ReferenceNumber: "RTPS-1"})
		require.NoError(t, err)
		items = append(items, raw)
	}
	return items
}

// ==================== ApplyWithDocuments ====================

func TestApplicationService_PanCard_Success(t *testing.T) {
	d := setupApplicationService(t)
	ctx := context.Background()
	accountID := uuid.New()
	tx := &mockTx{}
	var created *domain.Application

	d.pricing.EXPECT().Config(ctx, domain.ServicePanCard).Return(activeConfig(domain.ServicePanCard, 12500), nil)
	d.documents.EXPECT().Save(ctx, "pancard", gomock.Any(), gomock.Any()).Times(3).DoAndReturn(
		func(_ context.Context, dir, name string, _ io.Reader) (string, error) {
			return "/uploads/" + dir + "/" + name, nil
		})
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.serviceRepo.EXPECT().CreateApplication(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ interface{}, app *domain.Application) error {
			created = app
			return nil
		})
	d.ledger.EXPECT().DebitWithinTx(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ interface{}, req ports.DebitRequest) (*domain.LedgerEntry, int64, error) {
			assert.Equal(t, int64(12500), req.Amount)
			assert.Equal(t, domain.CategoryServicePayment, req.Category)
			assert.Equal(t, "Applied for Pan Card (Name: Sunil Kumar)", req.Description)
			require.NotNil(t, req.ServiceID)
			assert.Equal(t, created.Service.ID, *req.ServiceID)
			return &domain.LedgerEntry{Amount: req.Amount, Direction: domain.DirectionDebit}, 37500, nil
		})

	receipt, err := d.svc.ApplyWithDocuments(ctx, panCardRequest(accountID))
	require.NoError(t, err)
	assert.True(t, tx.committed)
	assert.Equal(t, 1, receipt.Count)
	assert.Equal(t, int64(12500), receipt.Deducted)
	assert.Equal(t, int64(37500), receipt.RemainingBalance)

	pan, ok := created.Variant.Data.(domain.PanCard)
	require.True(t, ok)
	name, ok := strings.CutPrefix(pan.Photo, "/uploads/pancard/")
	require.True(t, ok, pan.Photo)
	submission, rest, ok := strings.Cut(name, "_")
	require.True(t, ok)
	assert.NoError(t, uuid.Validate(submission))
	assert.Equal(t, "photo.jpg", rest)
	assert.True(t, strings.HasPrefix(pan.Signature, "/uploads/pancard/"+submission+"_"))
	assert.Equal(t, domain.ServiceStatusPending, created.Service.Status)
}

func TestApplicationService_PanCard_InsufficientBalanceRemovesFiles(t *testing.T) {
	d := setupApplicationService(t)
	ctx := context.Background()
	tx := &mockTx{}

	d.pricing.EXPECT().Config(ctx, domain.ServicePanCard).Return(activeConfig(domain.ServicePanCard, 12500), nil)
	d.documents.EXPECT().Save(ctx, "pancard", gomock.Any(), gomock.Any()).Times(3).DoAndReturn(
		func(_ context.Context, dir, name string, _ io.Reader) (string, error) {
			return "/uploads/" + dir + "/" + name, nil
		})
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.serviceRepo.EXPECT().CreateApplication(ctx, tx, gomock.Any()).Return(nil)
	d.ledger.EXPECT().DebitWithinTx(ctx, tx, gomock.Any()).Return(nil, int64(0), apperror.ErrInsufficientBalance())
	d.documents.EXPECT().Remove(ctx, gomock.Any()).Times(3).Return(nil)

	_, err := d.svc.ApplyWithDocuments(ctx, panCardRequest(uuid.New()))
	assertAppError(t, err, "PAY_001")
	assert.False(t, tx.committed)
}

func TestApplicationService_PanCard_Disabled(t *testing.T) {
	d := setupApplicationService(t)
	ctx := context.Background()
	cfg := &domain.ServiceConfig{ServiceType: domain.ServicePanCard, IsActive: false, MaintenanceMessage: "Back Monday"}

	d.pricing.EXPECT().Config(ctx, domain.ServicePanCard).Return(cfg, nil)

	_, err := d.svc.ApplyWithDocuments(ctx, panCardRequest(uuid.New()))
	assertAppError(t, err, "SVC_001")
	assert.Contains(t, err.Error(), "Back Monday")
}

func TestApplicationService_PanCard_MissingFile(t *testing.T) {
	d := setupApplicationService(t)
	ctx := context.Background()
	req := panCardRequest(uuid.New())
	req.Files = req.Files[:2]

	d.pricing.EXPECT().Config(ctx, domain.ServicePanCard).Return(activeConfig(domain.ServicePanCard, 12500), nil)

	_, err := d.svc.ApplyWithDocuments(ctx, req)
	assertAppError(t, err, "VAL_001")
	assert.Contains(t, err.Error(), "aadharFile")
}

func TestApplicationService_PanCard_StoreFailureCleansUp(t *testing.T) {
	d := setupApplicationService(t)
	ctx := context.Background()

	d.pricing.EXPECT().Config(ctx, domain.ServicePanCard).Return(activeConfig(domain.ServicePanCard, 12500), nil)
	gomock.InOrder(
		d.documents.EXPECT().Save(ctx, "pancard", gomock.Any(), gomock.Any()).Return("/uploads/pancard/photo_1.jpg", nil),
		d.documents.EXPECT().Save(ctx, "pancard", gomock.Any(), gomock.Any()).Return("", errors.New("disk full")),
	)
	d.documents.EXPECT().Remove(ctx, "/uploads/pancard/photo_1.jpg").Return(nil)

	_, err := d.svc.ApplyWithDocuments(ctx, panCardRequest(uuid.New()))
	assertAppError(t, err, "SYS_001")
}

func TestApplicationService_ApplyWithDocuments_RejectsBulkType(t *testing.T) {
	d := setupApplicationService(t)

	_, err := d.svc.ApplyWithDocuments(context.Background(), ports.DocumentApplicationRequest{ServiceType: domain.ServiceRtps})
	assertAppError(t, err, "VAL_002")

	_, err = d.svc.ApplyWithDocuments(context.Background(), ports.DocumentApplicationRequest{ServiceType: domain.ServiceITR})
	assertAppError(t, err, "VAL_002")
}

// ==================== ApplyBulk ====================

func TestApplicationService_ApplyBulk_Success(t *testing.T) {
	d := setupApplicationService(t)
	ctx := context.Background()
	accountID := uuid.New()
	tx := &mockTx{}

	d.pricing.EXPECT().Config(ctx, domain.ServiceRtps).Return(activeConfig(domain.ServiceRtps, 37000), nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.serviceRepo.EXPECT().CreateApplication(ctx, tx, gomock.Any()).Times(3).Return(nil)
	d.ledger.EXPECT().DebitWithinTx(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ interface{}, req ports.DebitRequest) (*domain.LedgerEntry, int64, error) {
			assert.Equal(t, int64(111000), req.Amount)
			assert.Equal(t, "Bulk RTPS Application (3 items)", req.Description)
			assert.Nil(t, req.ServiceID)
			return &domain.LedgerEntry{Amount: req.Amount}, 89000, nil
		})

	receipt, err := d.svc.ApplyBulk(ctx, accountID, domain.ServiceRtps, rtpsItems(t, 3))
	require.NoError(t, err)
	assert.True(t, tx.committed)
	assert.Equal(t, 3, receipt.Count)
	assert.Equal(t, int64(111000), receipt.Deducted)
	for _, app := range receipt.Applications {
		assert.Equal(t, accountID, app.Service.AccountID)
		assert.Equal(t, int64(37000), app.Variant.Price)
	}
}

func TestApplicationService_ApplyBulk_InsufficientBalanceRollsBack(t *testing.T) {
	d := setupApplicationService(t)
	ctx := context.Background()
	tx := &mockTx{}

	d.pricing.EXPECT().Config(ctx, domain.ServiceVoterCard).Return(activeConfig(domain.ServiceVoterCard, 3000), nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.serviceRepo.EXPECT().CreateApplication(ctx, tx, gomock.Any()).Times(2).Return(nil)
	d.ledger.EXPECT().DebitWithinTx(ctx, tx, gomock.Any()).Return(nil, int64(0), apperror.ErrInsufficientBalance())

	items := []json.RawMessage{
		json.RawMessage(`{"state":"BR","name":"Ravi","referenceNumber":"V-1"}`),
		json.RawMessage(`{"state":"BR","name":"Mala","referenceNumber":"V-2"}`),
	}
	_, err := d.svc.ApplyBulk(ctx, uuid.New(), domain.ServiceVoterCard, items)
	assertAppError(t, err, "PAY_001")
	assert.False(t, tx.committed)
}

func TestApplicationService_ApplyBulk_Limits(t *testing.T) {
	d := setupApplicationService(t)

	_, err := d.svc.ApplyBulk(context.Background(), uuid.New(), domain.ServiceRtps, nil)
	assertAppError(t, err, "VAL_002")

	_, err = d.svc.ApplyBulk(context.Background(), uuid.New(), domain.ServiceRtps, rtpsItems(t, 101))
	assertAppError(t, err, "VAL_002")

	_, err = d.svc.ApplyBulk(context.Background(), uuid.New(), domain.ServicePanCard, rtpsItems(t, 1))
	assertAppError(t, err, "VAL_002")
}

func TestApplicationService_ApplyBulk_InvalidItem(t *testing.T) {
	d := setupApplicationService(t)
	ctx := context.Background()

	d.pricing.EXPECT().Config(ctx, domain.ServiceLabourCard).Return(activeConfig(domain.ServiceLabourCard, 37000), nil)

	items := []json.RawMessage{
		json.RawMessage(`{"block":"B","name":"N","applicationNumber":"A-1"}`),
		json.RawMessage(`{"block":"B","name":""}`),
	}
	_, err := d.svc.ApplyBulk(ctx, uuid.New(), domain.ServiceLabourCard, items)
	assertAppError(t, err, "VAL_002")
	assert.Contains(t, err.Error(), "application 2")
}

// ==================== Admin workflow ====================

func TestApplicationService_AdminAction_Reject(t *testing.T) {
	d := setupApplicationService(t)
	ctx := context.Background()
	app := newTestApplication(domain.Rtps{District: "D", Block: "B", ReferenceNumber: "R"})
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.serviceRepo.EXPECT().GetApplicationForUpdate(ctx, tx, app.Service.ID).Return(app, nil)
	d.serviceRepo.EXPECT().UpdateApplication(ctx, tx, app).Return(nil)

	got, err := d.svc.AdminAction(ctx, ports.AdminActionRequest{
		ServiceID: app.Service.ID, ServiceType: domain.ServiceRtps,
		Action: ports.ActionReject, Remark: "blurred scan", AdminID: uuid.New(),
	})
	require.NoError(t, err)
	assert.True(t, tx.committed)
	assert.Equal(t, domain.ServiceStatusRejected, got.Service.Status)
	assert.Equal(t, domain.ServiceStatusRejected, got.Variant.Status)
	require.NotNil(t, got.Variant.StatusRemark)
	assert.Equal(t, "blurred scan", *got.Variant.StatusRemark)
}

func TestApplicationService_AdminAction_GeneralRemarkKeepsStatus(t *testing.T) {
	d := setupApplicationService(t)
	ctx := context.Background()
	app := newTestApplication(domain.LabourCard{Block: "B", Name: "N", ApplicationNumber: "A"})
	adminID := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.serviceRepo.EXPECT().GetApplicationForUpdate(ctx, tx, app.Service.ID).Return(app, nil)
	d.serviceRepo.EXPECT().UpdateApplication(ctx, tx, app).Return(nil)

	got, err := d.svc.AdminAction(ctx, ports.AdminActionRequest{
		ServiceID: app.Service.ID, ServiceType: domain.ServiceLabourCard,
		Action: ports.ActionGeneralRemark, Remark: "call applicant", AdminID: adminID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ServiceStatusPending, got.Service.Status)
	require.Len(t, got.Variant.GeneralRemarks, 1)
	assert.Equal(t, adminID, got.Variant.GeneralRemarks[0].AdminID)
}

func TestApplicationService_AdminAction_WrongTypeIsNotFound(t *testing.T) {
	d := setupApplicationService(t)
	ctx := context.Background()
	app := newTestApplication(domain.Rtps{District: "D", Block: "B", ReferenceNumber: "R"})
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.serviceRepo.EXPECT().GetApplicationForUpdate(ctx, tx, app.Service.ID).Return(app, nil)

	_, err := d.svc.AdminAction(ctx, ports.AdminActionRequest{
		ServiceID: app.Service.ID, ServiceType: domain.ServiceLabourCard, Action: ports.ActionApprove,
	})
	assertAppError(t, err, "PAY_004")
	assert.False(t, tx.committed)
}

func TestApplicationService_AdminAction_RejectNeedsRemark(t *testing.T) {
	d := setupApplicationService(t)

	_, err := d.svc.AdminAction(context.Background(), ports.AdminActionRequest{
		ServiceID: uuid.New(), ServiceType: domain.ServiceRtps, Action: ports.ActionReject, Remark: "  ",
	})
	assertAppError(t, err, "VAL_001")

	_, err = d.svc.AdminAction(context.Background(), ports.AdminActionRequest{
		ServiceID: uuid.New(), ServiceType: domain.ServiceRtps, Action: "escalate",
	})
	assertAppError(t, err, "VAL_002")
}

func TestApplicationService_UpdateStatus(t *testing.T) {
	d := setupApplicationService(t)
	ctx := context.Background()
	app := newTestApplication(domain.VoterCard{State: "BR", Name: "N", ReferenceNumber: "V"})
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.serviceRepo.EXPECT().GetApplicationForUpdate(ctx, tx, app.Service.ID).Return(app, nil)
	d.serviceRepo.EXPECT().UpdateApplication(ctx, tx, app).Return(nil)

	svc, err := d.svc.UpdateStatus(ctx, app.Service.ID, domain.ServiceStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, domain.ServiceStatusCompleted, svc.Status)

	_, err = d.svc.UpdateStatus(ctx, app.Service.ID, domain.ServiceStatus("filed"))
	assertAppError(t, err, "VAL_002")
}

func TestApplicationService_AddComment_NotFound(t *testing.T) {
	d := setupApplicationService(t)
	ctx := context.Background()
	id := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.serviceRepo.EXPECT().GetApplicationForUpdate(ctx, tx, id).Return(nil, nil)

	_, err := d.svc.AddComment(ctx, id, "documents verified")
	assertAppError(t, err, "PAY_004")
}

func TestApplicationService_AddComment_Appends(t *testing.T) {
	d := setupApplicationService(t)
	ctx := context.Background()
	app := newTestApplication(domain.Rtps{District: "D", Block: "B", ReferenceNumber: "R"})
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.serviceRepo.EXPECT().GetApplicationForUpdate(ctx, tx, app.Service.ID).Return(app, nil)
	d.serviceRepo.EXPECT().UpdateApplication(ctx, tx, app).Return(nil)

	svc, err := d.svc.AddComment(ctx, app.Service.ID, " documents verified ")
	require.NoError(t, err)
	require.Len(t, svc.Comments, 1)
	assert.Equal(t, "documents verified", svc.Comments[0].Text)
}

func TestApplicationService_ListForAccount_ClampsLimit(t *testing.T) {
	d := setupApplicationService(t)
	ctx := context.Background()
	accountID := uuid.New()

	d.serviceRepo.EXPECT().ListByAccount(ctx, accountID, 200).Return([]domain.Service{}, nil)

	got, err := d.svc.ListForAccount(ctx, accountID, 5000)
	require.NoError(t, err)
	assert.Empty(t, got)
}

// ==================== Documents ====================

func TestApplicationService_AttachDocument(t *testing.T) {
	d := setupApplicationService(t)
	ctx := context.Background()
	app := newTestApplication(domain.Rtps{District: "D", Block: "B", ReferenceNumber: "R"})
	adminID := uuid.New()
	tx := &mockTx{}

	d.serviceRepo.EXPECT().GetApplication(ctx, app.Service.ID).Return(app, nil)
	d.documents.EXPECT().Save(ctx, domain.ServiceDocumentsDir, gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, dir, name string, _ io.Reader) (string, error) {
			assert.True(t, strings.HasPrefix(name, app.Service.ID.String()+"_"), name)
			return "/uploads/" + dir + "/" + name, nil
		})
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.serviceRepo.EXPECT().GetApplicationForUpdate(ctx, tx, app.Service.ID).Return(app, nil)
	d.serviceRepo.EXPECT().UpdateApplication(ctx, tx, app).Return(nil)

	doc, err := d.svc.AttachDocument(ctx, ports.AttachDocumentRequest{
		ServiceID: app.Service.ID, AdminID: adminID, DocumentType: "receipt",
		File: uploadedFile("document", "Receipt.PDF"),
	})
	require.NoError(t, err)
	assert.True(t, tx.committed)
	assert.Equal(t, "receipt", doc.DocumentType)
	assert.Equal(t, "Receipt.PDF", doc.OriginalName)
	assert.Equal(t, adminID, doc.UploadedBy)
	assert.True(t, strings.HasPrefix(doc.Path, "/uploads/service-documents/"))
	assert.True(t, strings.HasSuffix(doc.Path, "/"+doc.Filename))
	require.Len(t, app.Service.Documents, 1)
	assert.Equal(t, *doc, app.Service.Documents[0])
}

func TestApplicationService_AttachDocument_DefaultsAndValidation(t *testing.T) {
	d := setupApplicationService(t)
	ctx := context.Background()

	_, err := d.svc.AttachDocument(ctx, ports.AttachDocumentRequest{
		ServiceID: uuid.New(), DocumentType: "selfie", File: uploadedFile("document", "a.pdf"),
	})
	assertAppError(t, err, "VAL_002")

	_, err = d.svc.AttachDocument(ctx, ports.AttachDocumentRequest{ServiceID: uuid.New()})
	assertAppError(t, err, "VAL_001")

	missing := uuid.New()
	d.serviceRepo.EXPECT().GetApplication(ctx, missing).Return(nil, nil)
	_, err = d.svc.AttachDocument(ctx, ports.AttachDocumentRequest{
		ServiceID: missing, File: uploadedFile("document", "a.pdf"),
	})
	assertAppError(t, err, "PAY_004")
}

func TestApplicationService_AttachDocument_UpdateFailsRemovesFile(t *testing.T) {
	d := setupApplicationService(t)
	ctx := context.Background()
	app := newTestApplication(domain.Rtps{District: "D", Block: "B", ReferenceNumber: "R"})
	tx := &mockTx{}

	d.serviceRepo.EXPECT().GetApplication(ctx, app.Service.ID).Return(app, nil)
	d.documents.EXPECT().Save(ctx, domain.ServiceDocumentsDir, gomock.Any(), gomock.Any()).
		Return("/uploads/service-documents/x_document.pdf", nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.serviceRepo.EXPECT().GetApplicationForUpdate(ctx, tx, app.Service.ID).Return(app, nil)
	d.serviceRepo.EXPECT().UpdateApplication(ctx, tx, app).Return(errors.New("connection reset"))
	d.documents.EXPECT().Remove(ctx, "/uploads/service-documents/x_document.pdf").Return(nil)

	_, err := d.svc.AttachDocument(ctx, ports.AttachDocumentRequest{
		ServiceID: app.Service.ID, File: uploadedFile("document", "a.pdf"),
	})
	assertAppError(t, err, "SYS_001")
	assert.False(t, tx.committed)
}

func TestApplicationService_ListDocuments_OwnerOrAdmin(t *testing.T) {
	d := setupApplicationService(t)
	ctx := context.Background()
	app := newTestApplication(domain.Rtps{District: "D", Block: "B", ReferenceNumber: "R"})
	app.Service.Documents = []domain.Document{{Filename: "a.pdf", DocumentType: "proof"}}

	d.serviceRepo.EXPECT().GetApplication(ctx, app.Service.ID).Return(app, nil).Times(3)

	docs, err := d.svc.ListDocuments(ctx, app.Service.ID, app.Service.AccountID, false)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	docs, err = d.svc.ListDocuments(ctx, app.Service.ID, uuid.New(), true)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	_, err = d.svc.ListDocuments(ctx, app.Service.ID, uuid.New(), false)
	assertAppError(t, err, "PAY_004")
}

func TestApplicationService_FulfillVoterCard(t *testing.T) {
	d := setupApplicationService(t)
	ctx := context.Background()
	app := newTestApplication(domain.VoterCard{State: "Bihar", Name: "N", ReferenceNumber: "R", PDFPath: "/uploads/voter/old.pdf"})
	tx := &mockTx{}

	d.serviceRepo.EXPECT().GetApplication(ctx, app.Service.ID).Return(app, nil)
	d.documents.EXPECT().Save(ctx, "voter", gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, dir, name string, _ io.Reader) (string, error) {
			return "/uploads/" + dir + "/" + name, nil
		})
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.serviceRepo.EXPECT().GetApplicationForUpdate(ctx, tx, app.Service.ID).Return(app, nil)
	d.serviceRepo.EXPECT().UpdateApplication(ctx, tx, app).Return(nil)
	d.documents.EXPECT().Remove(ctx, "/uploads/voter/old.pdf").Return(nil)

	got, err := d.svc.FulfillVoterCard(ctx, app.Service.ID, uuid.New(), uploadedFile("document", "voter.pdf"))
	require.NoError(t, err)
	assert.True(t, tx.committed)
	assert.Equal(t, domain.ServiceStatusCompleted, got.Service.Status)
	assert.Equal(t, domain.ServiceStatusCompleted, got.Variant.Status)

	voter, ok := got.Variant.Data.(domain.VoterCard)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(voter.PDFPath, "/uploads/voter/"+app.Service.ID.String()+"_"))
	assert.Equal(t, "voter.pdf", voter.PDFOriginalName)
}

func TestApplicationService_FulfillVoterCard_OtherServiceIsNotFound(t *testing.T) {
	d := setupApplicationService(t)
	ctx := context.Background()
	app := newTestApplication(domain.Rtps{District: "D", Block: "B", ReferenceNumber: "R"})

	d.serviceRepo.EXPECT().GetApplication(ctx, app.Service.ID).Return(app, nil)

	_, err := d.svc.FulfillVoterCard(ctx, app.Service.ID, uuid.New(), uploadedFile("document", "voter.pdf"))
	assertAppError(t, err, "PAY_004")
}

func TestDocumentName(t *testing.T) {
	assert.Equal(t, "sub-1_photo.jpg", documentName("sub-1", "photo", "Me.JPG"))
	assert.Equal(t, "sub-1_signature", documentName("sub-1", "signature", "noext"))
}

func newTestApplication(v domain.Variant) *domain.Application {
	return domain.NewApplication(uuid.New(), v, 37000, domain.ServiceStatusPending, time.Now().UTC())
}

