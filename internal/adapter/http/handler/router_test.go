package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"eseva-portal/docs"
	"eseva-portal/internal/core/domain"
	"eseva-portal/internal/core/ports"
	"eseva-portal/internal/core/ports/mocks"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type routerFixture struct {
	engine    *gin.Engine
	ledger    *mocks.MockLedgerService
	recharge  *mocks.MockRechargeService
	pricing   *mocks.MockPricingService
	reporting *mocks.MockReportingService
	apps      *mocks.MockApplicationService
	userID    uuid.UUID
	adminID   uuid.UUID
}

func newRouterFixture(t *testing.T, uploadDir string) routerFixture {
	ctrl := gomock.NewController(t)

	f := routerFixture{
		ledger:    mocks.NewMockLedgerService(ctrl),
		recharge:  mocks.NewMockRechargeService(ctrl),
		pricing:   mocks.NewMockPricingService(ctrl),
		reporting: mocks.NewMockReportingService(ctrl),
		apps:      mocks.NewMockApplicationService(ctrl),
		userID:    uuid.New(),
		adminID:   uuid.New(),
	}

	tokens := mocks.NewMockTokenService(ctrl)
	tokens.EXPECT().Validate("user-token").
		Return(&ports.TokenClaims{AccountID: f.userID, Role: domain.RoleUser}, nil).AnyTimes()
	tokens.EXPECT().Validate("admin-token").
		Return(&ports.TokenClaims{AccountID: f.adminID, Role: domain.RoleAdmin}, nil).AnyTimes()

	f.engine = SetupRouter(RouterDeps{
		AuthSvc:        mocks.NewMockAuthService(ctrl),
		AccountSvc:     mocks.NewMockAccountService(ctrl),
		TokenSvc:       tokens,
		LedgerSvc:      f.ledger,
		RechargeSvc:    f.recharge,
		PaidSvc:        mocks.NewMockPaidSubmissionService(ctrl),
		ApplicationSvc: f.apps,
		PricingSvc:     f.pricing,
		AdminSvc:       mocks.NewMockAdminService(ctrl),
		ReportingSvc:   f.reporting,
		OpenAPISpec:    docs.OpenAPI,
		UploadDir:      uploadDir,
		Mode:           gin.TestMode,
		Logger:         zerolog.Nop(),
	})
	return f
}

func (f routerFixture) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestRouter_AdminRoutesRequireAdminRole(t *testing.T) {
	f := newRouterFixture(t, "")

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil), "user-token")
	assert.Equal(t, http.StatusForbidden, w.Code)

	f.reporting.EXPECT().GetStats(gomock.Any()).Return(&ports.AdminStats{}, nil)
	w = f.do(httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil), "admin-token")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_WalletRequiresToken(t *testing.T) {
	f := newRouterFixture(t, "")

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/wallet/balance", nil), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	f.ledger.EXPECT().Balance(gomock.Any(), f.userID).Return(int64(100), nil)
	w = f.do(httptest.NewRequest(http.MethodGet, "/api/wallet/balance", nil), "user-token")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_DisabledServiceReturns503(t *testing.T) {
	f := newRouterFixture(t, "")

	f.pricing.EXPECT().Config(gomock.Any(), domain.ServiceRtps).
		Return(&domain.ServiceConfig{ServiceType: domain.ServiceRtps, IsActive: false}, nil)

	w := f.do(rawJSONRequest(http.MethodPost, "/api/services/apply/rtps", `{"applications":[{}]}`), "user-token")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "SVC_001", responseCode(t, w))
}

func TestRouter_PaymentReturnIsPublic(t *testing.T) {
	f := newRouterFixture(t, "")

	f.recharge.EXPECT().ReturnURL("ORD9").Return("https://app.example/dashboard/wallet/status/ORD9")

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/wallet/payment-return?order_id=ORD9", nil), "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://app.example/dashboard/wallet/status/ORD9", w.Header().Get("Location"))
}

func TestRouter_ServesOpenAPI(t *testing.T) {
	f := newRouterFixture(t, "")

	w := f.do(httptest.NewRequest(http.MethodGet, "/swagger/spec", nil), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")

	w = f.do(httptest.NewRequest(http.MethodGet, "/swagger", nil), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "swagger-ui")
}

func TestRouter_ServesPromotedDocumentsOnly(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pancard"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pancard", "photo_1.jpg"), []byte("jpg"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "temp", "ORD1"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "temp", "ORD1", "aadhar.pdf"), []byte("pdf"), 0o644))

	f := newRouterFixture(t, dir)

	w := f.do(httptest.NewRequest(http.MethodGet, "/uploads/pancard/photo_1.jpg", nil), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jpg", w.Body.String())

	w = f.do(httptest.NewRequest(http.MethodGet, "/uploads/temp/ORD1/aadhar.pdf", nil), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_ServiceDocuments(t *testing.T) {
	f := newRouterFixture(t, "")
	serviceID := uuid.New()
	target := "/api/services/" + serviceID.String() + "/documents"

	w := f.do(multipartRequest(t, target, nil, map[string]string{"document": "pdf"}), "user-token")
	assert.Equal(t, http.StatusForbidden, w.Code)

	f.apps.EXPECT().AttachDocument(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req ports.AttachDocumentRequest) (*domain.Document, error) {
			assert.Equal(t, serviceID, req.ServiceID)
			assert.Equal(t, f.adminID, req.AdminID)
			assert.Equal(t, "receipt", req.DocumentType)
			return &domain.Document{Path: "/uploads/service-documents/x.pdf", DocumentType: req.DocumentType}, nil
		})
	w = f.do(multipartRequest(t, target, map[string]string{"documentType": "receipt"}, map[string]string{"document": "pdf"}), "admin-token")
	assert.Equal(t, http.StatusCreated, w.Code)

	f.apps.EXPECT().ListDocuments(gomock.Any(), serviceID, f.userID, false).Return([]domain.Document{}, nil)
	w = f.do(httptest.NewRequest(http.MethodGet, target, nil), "user-token")
	assert.Equal(t, http.StatusOK, w.Code)

	// Static routes under /api/services still resolve.
	f.apps.EXPECT().ListForAccount(gomock.Any(), f.userID, gomock.Any()).Return(nil, nil)
	w = f.do(httptest.NewRequest(http.MethodGet, "/api/services/my-services", nil), "user-token")
	assert.Equal(t, http.StatusOK, w.Code)
}
