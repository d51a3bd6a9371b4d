package handler

import (
	"eseva-portal/internal/adapter/http/dto"
	"eseva-portal/internal/core/ports"
	"eseva-portal/pkg/response"

	"github.com/gin-gonic/gin"
)

// PaymentHandler handles services paid at the hosted checkout (ITR filing).
type PaymentHandler struct {
	paidSvc ports.PaidSubmissionService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paidSvc ports.PaidSubmissionService) *PaymentHandler {
	return &PaymentHandler{paidSvc: paidSvc}
}

// InitiateITR handles POST /api/payment/initiate-itr-payment. It stages the
// upload and returns the signed checkout form for the browser to post.
func (h *PaymentHandler) InitiateITR(c *gin.Context) {
	claims, ok := caller(c)
	if !ok {
		return
	}

	if err := c.Request.ParseMultipartForm(maxMultipartMemory); err != nil {
		response.Error(c, bindError(err))
		return
	}
	var form dto.ITRForm
	if err := c.ShouldBind(&form); err != nil {
		response.Error(c, bindError(err))
		return
	}

	payu, err := h.paidSvc.Begin(c.Request.Context(), ports.BeginSubmissionRequest{
		AccountID: claims.AccountID,
		Fields:    form.Fields(),
		Files:     uploadedFiles(c.Request.MultipartForm.File),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, payu)
}

// ITRCallback handles POST /api/payment/itr-callback from the hosted
// checkout. Every outcome ends in a redirect to the frontend status page.
func (h *PaymentHandler) ITRCallback(c *gin.Context) {
	var form dto.PayUCallbackForm
	// A malformed body still goes through verification and fails the hash check.
	_ = c.ShouldBind(&form)

	outcome := h.paidSvc.Complete(c.Request.Context(), ports.PayUResponse{
		Status:      form.Status,
		TxnID:       form.TxnID,
		Amount:      form.Amount,
		FirstName:   form.FirstName,
		Email:       form.Email,
		ProductInfo: form.ProductInfo,
		Hash:        form.Hash,
		MihPayID:    form.MihPayID,
	}, c.ClientIP())

	response.Redirect(c, outcome.RedirectURL)
}
