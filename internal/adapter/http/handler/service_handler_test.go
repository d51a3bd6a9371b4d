package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"eseva-portal/internal/core/domain"
	"eseva-portal/internal/core/ports"
	"eseva-portal/internal/core/ports/mocks"
	"eseva-portal/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func readUpload(t *testing.T, f ports.UploadedFile) string {
	t.Helper()
	rc, err := f.Open()
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(b)
}

// --- Paid submission (ITR) ---

func TestInitiateITR_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPaid := mocks.NewMockPaidSubmissionService(ctrl)
	h := NewPaymentHandler(mockPaid)
	accountID := uuid.New()

	mockPaid.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req ports.BeginSubmissionRequest) (*ports.PayURequest, error) {
			assert.Equal(t, accountID, req.AccountID)
			assert.Equal(t, "123412341234", req.Fields["aadharCardNo"])
			assert.Equal(t, "ABCDE1234F", req.Fields["panCardNo"])
			assert.Equal(t, "SBIN0001234", req.Fields["ifscCode"])
			require.Len(t, req.Files, 3)
			assert.Equal(t, "aadharFile", req.Files[0].Field)
			assert.Equal(t, "panCardFile", req.Files[1].Field)
			assert.Equal(t, "passbookFile", req.Files[2].Field)
			assert.Equal(t, "passbook-bytes", readUpload(t, req.Files[2]))
			return &ports.PayURequest{
				ActionURL: "https://secure.payu.in/_payment",
				Key:       "merchant",
				TxnID:     "ITR1700000000000",
				Amount:    "2.00",
			}, nil
		})

	c, w := newContext(multipartRequest(t, "/api/payment/initiate-itr-payment",
		map[string]string{
			"aadharCardNo": "123412341234",
			"panCardNo":    "ABCDE1234F",
			"accountNo":    "12345678901",
			"ifscCode":     "SBIN0001234",
		},
		map[string]string{
			"aadharFile":   "aadhar-bytes",
			"panCardFile":  "pan-bytes",
			"passbookFile": "passbook-bytes",
		}))
	asCaller(c, accountID, domain.RoleUser)
	h.InitiateITR(c)

	assert.Equal(t, http.StatusOK, w.Code)
	data := responseData(t, w)
	assert.Equal(t, "https://secure.payu.in/_payment", data["action_url"])
	assert.Equal(t, "ITR1700000000000", data["txnid"])
	assert.Equal(t, "2.00", data["amount"])
}

func TestInitiateITR_MalformedIFSC(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewPaymentHandler(mocks.NewMockPaidSubmissionService(ctrl))

	c, w := newContext(multipartRequest(t, "/api/payment/initiate-itr-payment",
		map[string]string{"ifscCode": "NOTACODE"}, nil))
	asCaller(c, uuid.New(), domain.RoleUser)
	h.InitiateITR(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInitiateITR_MissingInputs(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPaid := mocks.NewMockPaidSubmissionService(ctrl)
	h := NewPaymentHandler(mockPaid)

	mockPaid.EXPECT().Begin(gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrMissingInput([]string{"aadharCardNo", "passbookFile"}))

	c, w := newContext(multipartRequest(t, "/api/payment/initiate-itr-payment", map[string]string{}, nil))
	asCaller(c, uuid.New(), domain.RoleUser)
	h.InitiateITR(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_001", responseCode(t, w))
}

func TestITRCallback_Redirects(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPaid := mocks.NewMockPaidSubmissionService(ctrl)
	h := NewPaymentHandler(mockPaid)

	mockPaid.EXPECT().Complete(gomock.Any(), ports.PayUResponse{
		Status:      "success",
		TxnID:       "ITR1700000000000",
		Amount:      "2.00",
		FirstName:   "Sita",
		Email:       "sita@example.com",
		ProductInfo: "ITR Filing Service",
		Hash:        "abc123",
		MihPayID:    "403993715",
	}, "192.0.2.1").Return(&ports.SubmissionOutcome{
		Status:      ports.SubmissionSuccess,
		TxnID:       "ITR1700000000000",
		RedirectURL: "https://app.example/payment/status?status=success&txnid=ITR1700000000000",
	})

	c, w := newContext(formRequest(http.MethodPost, "/api/payment/itr-callback", url.Values{
		"status":      {"success"},
		"txnid":       {"ITR1700000000000"},
		"amount":      {"2.00"},
		"firstname":   {"Sita"},
		"email":       {"sita@example.com"},
		"productinfo": {"ITR Filing Service"},
		"hash":        {"abc123"},
		"mihpayid":    {"403993715"},
	}))
	h.ITRCallback(c)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://app.example/payment/status?status=success&txnid=ITR1700000000000", w.Header().Get("Location"))
}

func TestITRCallback_EmptyBodyStillRedirects(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPaid := mocks.NewMockPaidSubmissionService(ctrl)
	h := NewPaymentHandler(mockPaid)

	mockPaid.EXPECT().Complete(gomock.Any(), ports.PayUResponse{}, gomock.Any()).Return(&ports.SubmissionOutcome{
		Status:      ports.SubmissionError,
		RedirectURL: "https://app.example/payment/status?status=error",
	})

	c, w := newContext(formRequest(http.MethodPost, "/api/payment/itr-callback", url.Values{}))
	h.ITRCallback(c)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://app.example/payment/status?status=error", w.Header().Get("Location"))
}

// --- Wallet-debited applications ---

func TestApplyPanCard_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockApp := mocks.NewMockApplicationService(ctrl)
	h := NewServiceHandler(mockApp)
	accountID := uuid.New()

	app := domain.NewApplication(accountID, domain.PanCard{FullName: "Sita Devi"}, 12500, domain.ServiceStatusPending, time.Now())
	entry := &domain.LedgerEntry{ID: uuid.New()}

	mockApp.EXPECT().ApplyWithDocuments(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req ports.DocumentApplicationRequest) (*ports.ApplicationReceipt, error) {
			assert.Equal(t, accountID, req.AccountID)
			assert.Equal(t, domain.ServicePanCard, req.ServiceType)
			assert.Equal(t, "Sita Devi", req.Fields["fullName"])
			require.Len(t, req.Files, 2)
			assert.Equal(t, "photo", req.Files[0].Field)
			assert.Equal(t, "photo.pdf", req.Files[0].Filename)
			assert.Equal(t, "signature", req.Files[1].Field)
			return &ports.ApplicationReceipt{
				Applications:     []*domain.Application{app},
				Count:            1,
				Deducted:         12500,
				RemainingBalance: 37500,
				Entry:            entry,
			}, nil
		})

	c, w := newContext(multipartRequest(t, "/api/services/apply/pan-card",
		map[string]string{"fullName": "  Sita Devi  "},
		map[string]string{"photo": "jpg", "signature": "png"}))
	asCaller(c, accountID, domain.RoleUser)
	h.ApplyWithDocuments(domain.ServicePanCard)(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := responseData(t, w)
	assert.Equal(t, "125.00", data["deducted"])
	assert.Equal(t, "375.00", data["remaining_balance"])
	assert.Equal(t, entry.ID.String(), data["transaction_id"])
	assert.Equal(t, []interface{}{app.Service.ID.String()}, data["service_ids"])
}

func TestApplyPanCard_InsufficientBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockApp := mocks.NewMockApplicationService(ctrl)
	h := NewServiceHandler(mockApp)

	mockApp.EXPECT().ApplyWithDocuments(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrInsufficientBalance())

	c, w := newContext(multipartRequest(t, "/api/services/apply/pan-card",
		map[string]string{"fullName": "Sita Devi"}, map[string]string{"photo": "jpg"}))
	asCaller(c, uuid.New(), domain.RoleUser)
	h.ApplyWithDocuments(domain.ServicePanCard)(c)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Equal(t, "PAY_001", responseCode(t, w))
}

func TestApplyWithDocuments_NotMultipart(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewServiceHandler(mocks.NewMockApplicationService(ctrl))

	c, w := newContext(rawJSONRequest(http.MethodPost, "/api/services/apply/job-card", `{}`))
	asCaller(c, uuid.New(), domain.RoleUser)
	h.ApplyWithDocuments(domain.ServiceJobCard)(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApplyBulkRtps_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockApp := mocks.NewMockApplicationService(ctrl)
	h := NewServiceHandler(mockApp)
	accountID := uuid.New()

	now := time.Now()
	apps := []*domain.Application{
		domain.NewApplication(accountID, domain.Rtps{}, 37000, domain.ServiceStatusPending, now),
		domain.NewApplication(accountID, domain.Rtps{}, 37000, domain.ServiceStatusPending, now),
	}

	mockApp.EXPECT().ApplyBulk(gomock.Any(), accountID, domain.ServiceRtps, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ uuid.UUID, _ domain.ServiceType, items []json.RawMessage) (*ports.ApplicationReceipt, error) {
			require.Len(t, items, 2)
			assert.JSONEq(t, `{"name":"A"}`, string(items[0]))
			return &ports.ApplicationReceipt{
				Applications:     apps,
				Count:            2,
				Deducted:         74000,
				RemainingBalance: 26000,
			}, nil
		})

	c, w := newContext(rawJSONRequest(http.MethodPost, "/api/services/apply/rtps",
		`{"applications":[{"name":"A"},{"name":"B"}]}`))
	asCaller(c, accountID, domain.RoleUser)
	h.ApplyBulk(domain.ServiceRtps)(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := responseData(t, w)
	assert.Equal(t, float64(2), data["count"])
	assert.Equal(t, "740.00", data["deducted"])
	assert.Len(t, data["service_ids"], 2)
}

func TestApplyBulk_EmptyBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewServiceHandler(mocks.NewMockApplicationService(ctrl))

	c, w := newContext(rawJSONRequest(http.MethodPost, "/api/services/apply/rtps", `{"applications":[]}`))
	asCaller(c, uuid.New(), domain.RoleUser)
	h.ApplyBulk(domain.ServiceRtps)(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApplyBulk_Unauthenticated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := NewServiceHandler(mocks.NewMockApplicationService(ctrl))

	c, w := newContext(rawJSONRequest(http.MethodPost, "/api/services/apply/rtps", `{"applications":[{}]}`))
	h.ApplyBulk(domain.ServiceRtps)(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMyServices(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockApp := mocks.NewMockApplicationService(ctrl)
	h := NewServiceHandler(mockApp)
	accountID := uuid.New()

	app := domain.NewApplication(accountID, domain.VoterCard{}, 3000, domain.ServiceStatusCompleted, time.Now())
	mockApp.EXPECT().ListForAccount(gomock.Any(), accountID, 0).Return([]domain.Service{*app.Service}, nil)

	c, w := newContext(httptest.NewRequest(http.MethodGet, "/api/services/my-services", nil))
	asCaller(c, accountID, domain.RoleUser)
	h.MyServices(c)

	assert.Equal(t, http.StatusOK, w.Code)
	items := responseList(t, w)
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "VoterCard", item["service_type"])
	assert.Equal(t, "completed", item["status"])
}

// paramContext builds a test context carrying a single path parameter.
func paramContext(req *http.Request, key, value string) (*gin.Context, *httptest.ResponseRecorder) {
	c, w := newContext(req)
	c.Params = gin.Params{{Key: key, Value: value}}
	return c, w
}

// --- Admin uploads on a service ---

func TestFulfillVoterCard_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockApps := mocks.NewMockApplicationService(ctrl)
	h := NewServiceHandler(mockApps)
	adminID, serviceID := uuid.New(), uuid.New()

	app := domain.NewApplication(uuid.New(), domain.VoterCard{State: "Bihar", Name: "N", ReferenceNumber: "R"},
		3000, domain.ServiceStatusCompleted, time.Now().UTC())
	mockApps.EXPECT().FulfillVoterCard(gomock.Any(), serviceID, adminID, gomock.Any()).DoAndReturn(
		func(_ context.Context, _, _ uuid.UUID, f ports.UploadedFile) (*domain.Application, error) {
			assert.Equal(t, "document", f.Field)
			assert.Equal(t, "voter-pdf", readUpload(t, f))
			return app, nil
		})

	c, w := paramContext(multipartRequest(t, "/api/services/"+serviceID.String()+"/voter-pdf", nil,
		map[string]string{"document": "voter-pdf"}), "serviceId", serviceID.String())
	asCaller(c, adminID, domain.RoleAdmin)
	h.FulfillVoterCard(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAttachDocument_MissingFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := NewServiceHandler(mocks.NewMockApplicationService(ctrl))
	serviceID := uuid.New()

	c, w := paramContext(multipartRequest(t, "/api/services/"+serviceID.String()+"/documents",
		map[string]string{"documentType": "receipt"}, nil), "serviceId", serviceID.String())
	asCaller(c, uuid.New(), domain.RoleAdmin)
	h.AttachDocument(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_001", responseCode(t, w))
}
