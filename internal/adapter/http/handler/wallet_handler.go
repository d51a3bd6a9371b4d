package handler

import (
	"encoding/json"

	"eseva-portal/internal/adapter/http/dto"
	"eseva-portal/internal/core/domain"
	"eseva-portal/internal/core/ports"
	"eseva-portal/pkg/apperror"
	"eseva-portal/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles recharge, gateway notification and balance endpoints.
type WalletHandler struct {
	rechargeSvc ports.RechargeService
	ledgerSvc   ports.LedgerService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(rechargeSvc ports.RechargeService, ledgerSvc ports.LedgerService) *WalletHandler {
	return &WalletHandler{rechargeSvc: rechargeSvc, ledgerSvc: ledgerSvc}
}

// Recharge handles POST /api/wallet/recharge.
func (h *WalletHandler) Recharge(c *gin.Context) {
	claims, ok := caller(c)
	if !ok {
		return
	}

	var req dto.RechargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	amount, err := domain.RupeesToPaise(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	result, err := h.rechargeSvc.InitiateRecharge(c.Request.Context(), claims.AccountID, amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToRechargeResponse(result))
}

// Webhook handles POST /api/wallet/webhook from the gateway.
func (h *WalletHandler) Webhook(c *gin.Context) {
	var form dto.WebhookForm
	if err := c.ShouldBind(&form); err != nil {
		response.Error(c, bindError(err))
		return
	}

	result, err := h.rechargeSvc.HandleWebhook(c.Request.Context(), ports.GatewayNotification{
		OrderID: form.OrderID,
		Status:  form.Status,
		TxnID:   form.TxnID,
		Payload: formPayload(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	msg := "Processed"
	switch {
	case result.AlreadyProcessed:
		msg = "Already processed"
	case result.Ignored:
		msg = "Acknowledged"
	}
	response.OK(c, gin.H{"message": msg})
}

// PaymentReturn handles GET|POST /api/wallet/payment-return. It only
// redirects the browser; settlement happens through the webhook or a poll.
func (h *WalletHandler) PaymentReturn(c *gin.Context) {
	orderID := c.Query("order_id")
	if orderID == "" {
		orderID = c.PostForm("order_id")
	}
	response.Redirect(c, h.rechargeSvc.ReturnURL(orderID))
}

// CheckStatus handles POST /api/wallet/check-status.
func (h *WalletHandler) CheckStatus(c *gin.Context) {
	claims, ok := caller(c)
	if !ok {
		return
	}

	var req dto.CheckStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	status, err := h.rechargeSvc.CheckStatus(c.Request.Context(), claims, req.OrderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.RechargeStatusResponse{
		OrderID: status.OrderID,
		Status:  string(status.Status),
		Balance: domain.FormatRupees(status.Balance),
	})
}

// Balance handles GET /api/wallet/balance.
func (h *WalletHandler) Balance(c *gin.Context) {
	claims, ok := caller(c)
	if !ok {
		return
	}

	balance, err := h.ledgerSvc.Balance(c.Request.Context(), claims.AccountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{
		Balance:      domain.FormatRupees(balance),
		BalancePaise: balance,
	})
}

// History handles GET /api/wallet/history.
func (h *WalletHandler) History(c *gin.Context) {
	claims, ok := caller(c)
	if !ok {
		return
	}

	entries, err := h.ledgerSvc.History(c.Request.Context(), claims.AccountID, queryLimit(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ToLedgerEntryResponses(entries))
}

// formPayload renders the posted form as flat JSON for the gateway event log.
func formPayload(c *gin.Context) string {
	fields := make(map[string]string, len(c.Request.PostForm))
	for k, v := range c.Request.PostForm {
		if len(v) > 0 {
			fields[k] = v[0]
		}
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return "{}"
	}
	return string(b)
}
