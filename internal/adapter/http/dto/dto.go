package dto

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"eseva-portal/internal/core/domain"
	"eseva-portal/internal/core/ports"

	"github.com/shopspring/decimal"
)

// RegisterRequest is the request body for retailer registration.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=8,max=128" sanitize:"-"`
	Phone    string `json:"phone" binding:"omitempty,numeric,len=10"`
	District string `json:"district" binding:"max=100"`
	Block    string `json:"block" binding:"max=100"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required" sanitize:"-"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// AccountResponse is the public view of an account.
type AccountResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role"`
	Status   string `json:"status"`
	District string `json:"district,omitempty"`
	Block    string `json:"block,omitempty"`
	Balance  string `json:"balance"`
}

// RechargeRequest opens a wallet recharge. Amount is in rupees.
type RechargeRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// RechargeResponse carries the hosted payment page for a recharge.
type RechargeResponse struct {
	OrderID    string `json:"order_id"`
	PaymentURL string `json:"payment_url"`
	QRCode     string `json:"qr_code,omitempty"` // Base64 PNG
	Amount     string `json:"amount"`
}

// CheckStatusRequest is the body of a manual recharge status poll.
type CheckStatusRequest struct {
	OrderID string `json:"order_id" binding:"required,max=64,safe_id"`
}

// RechargeStatusResponse reports a recharge's state and the wallet balance.
type RechargeStatusResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	Balance string `json:"balance"`
}

// WebhookForm is the gateway's form-encoded push notification.
type WebhookForm struct {
	OrderID string `form:"order_id"`
	Status  string `form:"status"`
	TxnID   string `form:"txn_id"`
}

// PayUCallbackForm is what the hosted checkout posts to the callback URL.
type PayUCallbackForm struct {
	Status      string `form:"status"`
	TxnID       string `form:"txnid"`
	Amount      string `form:"amount"`
	FirstName   string `form:"firstname"`
	Email       string `form:"email"`
	ProductInfo string `form:"productinfo"`
	Hash        string `form:"hash"`
	MihPayID    string `form:"mihpayid"`
}

// ITRForm holds the text fields of an ITR submission. Presence is checked by
// the service; the tags only reject malformed values.
type ITRForm struct {
	AadharCardNo string `form:"aadharCardNo" binding:"omitempty,numeric,len=12"`
	PanCardNo    string `form:"panCardNo" binding:"omitempty,alphanum,len=10"`
	AccountNo    string `form:"accountNo" binding:"omitempty,numeric,min=6,max=20"`
	IFSCCode     string `form:"ifscCode" binding:"omitempty,ifsc"`
}

// Fields returns the form as the flat map the services consume.
func (f ITRForm) Fields() map[string]string {
	return map[string]string{
		"aadharCardNo": f.AadharCardNo,
		"panCardNo":    f.PanCardNo,
		"accountNo":    f.AccountNo,
		"ifscCode":     f.IFSCCode,
	}
}

// BalanceResponse is the response for a balance query.
type BalanceResponse struct {
	Balance      string `json:"balance"`
	BalancePaise int64  `json:"balance_paise"`
}

// LedgerEntryResponse is the public view of a ledger entry.
type LedgerEntryResponse struct {
	ID               string  `json:"id"`
	AccountID        string  `json:"account_id"`
	Direction        string  `json:"direction"`
	Amount           string  `json:"amount"`
	Category         string  `json:"category"`
	Description      string  `json:"description"`
	OrderID          *string `json:"order_id,omitempty"`
	PaymentReference *string `json:"payment_reference,omitempty"`
	Status           string  `json:"status"`
	ServiceID        *string `json:"service_id,omitempty"`
	CreatedAt        string  `json:"created_at"`
}

// BulkApplicationRequest carries 1 to 100 bulk application items.
type BulkApplicationRequest struct {
	Applications []json.RawMessage `json:"applications" binding:"required,min=1,max=100"`
}

// ApplicationReceiptResponse summarizes a wallet-debited application.
type ApplicationReceiptResponse struct {
	ServiceIDs       []string `json:"service_ids"`
	Count            int      `json:"count"`
	Deducted         string   `json:"deducted"`
	RemainingBalance string   `json:"remaining_balance"`
	TransactionID    string   `json:"transaction_id,omitempty"`
}

// ManualCreditRequest credits a wallet by hand. Amount is in rupees.
type ManualCreditRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" binding:"max=200"`
}

// CreditResponse reports a manual credit.
type CreditResponse struct {
	Entry   LedgerEntryResponse `json:"entry"`
	Balance string              `json:"balance"`
}

// ApproveResponse reports a manual recharge approval.
type ApproveResponse struct {
	Entry            LedgerEntryResponse `json:"entry"`
	AlreadyProcessed bool                `json:"already_processed"`
}

// StatusUpdateRequest changes a service wrapper's status.
type StatusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
}

// CommentRequest appends an admin comment.
type CommentRequest struct {
	Text string `json:"text" binding:"required,max=1000"`
}

// AdminActionRequest is an approve/reject/remark decision.
type AdminActionRequest struct {
	Action string `json:"action" binding:"required,oneof=approve reject general_remark"`
	Remark string `json:"remark" binding:"max=1000"`
}

// PriceUpdateRequest sets a service price in rupees.
type PriceUpdateRequest struct {
	ServiceType string          `json:"serviceType" binding:"required,service_type"`
	Price       decimal.Decimal `json:"price"`
}

// ToggleRequest switches a service on or off.
type ToggleRequest struct {
	ServiceType        string  `json:"serviceType" binding:"required,service_type"`
	IsActive           *bool   `json:"isActive" binding:"required"`
	MaintenanceMessage *string `json:"maintenanceMessage,omitempty" binding:"omitempty,max=500"`
}

// AccountStatusRequest suspends or reactivates an account.
type AccountStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=ACTIVE SUSPENDED"`
}

// ServiceConfigResponse is the public view of a service configuration.
type ServiceConfigResponse struct {
	ServiceType        string `json:"service_type"`
	Label              string `json:"label"`
	Price              string `json:"price"`
	IsActive           bool   `json:"is_active"`
	MaintenanceMessage string `json:"maintenance_message,omitempty"`
	UpdatedAt          string `json:"updated_at"`
}

// StatsResponse is the admin dashboard summary.
type StatsResponse struct {
	TotalRevenue     string `json:"total_revenue"`
	TodayRevenue     string `json:"today_revenue"`
	RetailerCount    int64  `json:"retailer_count"`
	PendingRecharges int64  `json:"pending_recharges"`
}

// ToAccountResponse converts an account to its public view.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		ID:       a.ID.String(),
		Name:     a.Name,
		Email:    a.Email,
		Phone:    a.Phone,
		Role:     string(a.Role),
		Status:   string(a.Status),
		District: a.District,
		Block:    a.Block,
		Balance:  domain.FormatRupees(a.Balance),
	}
}

// ToRechargeResponse converts a recharge initiation.
func ToRechargeResponse(r *ports.RechargeInitiation) RechargeResponse {
	resp := RechargeResponse{
		OrderID:    r.OrderID,
		PaymentURL: r.PaymentURL,
		Amount:     domain.FormatRupees(r.Amount),
	}
	if len(r.QRCodePNG) > 0 {
		resp.QRCode = base64.StdEncoding.EncodeToString(r.QRCodePNG)
	}
	return resp
}

// ToLedgerEntryResponse converts a ledger entry.
func ToLedgerEntryResponse(e *domain.LedgerEntry) LedgerEntryResponse {
	resp := LedgerEntryResponse{
		ID:               e.ID.String(),
		AccountID:        e.AccountID.String(),
		Direction:        string(e.Direction),
		Amount:           domain.FormatRupees(e.Amount),
		Category:         string(e.Category),
		Description:      e.Description,
		OrderID:          e.OrderID,
		PaymentReference: e.PaymentReference,
		Status:           string(e.Status),
		CreatedAt:        e.CreatedAt.Format(time.RFC3339),
	}
	if e.ServiceID != nil {
		s := e.ServiceID.String()
		resp.ServiceID = &s
	}
	return resp
}

// ToLedgerEntryResponses converts a page of ledger entries.
func ToLedgerEntryResponses(entries []domain.LedgerEntry) []LedgerEntryResponse {
	items := make([]LedgerEntryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, ToLedgerEntryResponse(&entries[i]))
	}
	return items
}

// ToReceiptResponse converts an application receipt.
func ToReceiptResponse(r *ports.ApplicationReceipt) ApplicationReceiptResponse {
	ids := make([]string, 0, len(r.Applications))
	for _, app := range r.Applications {
		ids = append(ids, app.Service.ID.String())
	}
	resp := ApplicationReceiptResponse{
		ServiceIDs:       ids,
		Count:            r.Count,
		Deducted:         domain.FormatRupees(r.Deducted),
		RemainingBalance: domain.FormatRupees(r.RemainingBalance),
	}
	if r.Entry != nil {
		resp.TransactionID = r.Entry.ID.String()
	}
	return resp
}

// ToServiceConfigResponse converts a service configuration.
func ToServiceConfigResponse(c *domain.ServiceConfig) ServiceConfigResponse {
	return ServiceConfigResponse{
		ServiceType:        string(c.ServiceType),
		Label:              c.Label,
		Price:              domain.FormatRupees(c.Price),
		IsActive:           c.IsActive,
		MaintenanceMessage: c.MaintenanceMessage,
		UpdatedAt:          c.UpdatedAt.Format(time.RFC3339),
	}
}

// ToStatsResponse converts the admin dashboard figures.
func ToStatsResponse(s *ports.AdminStats) StatsResponse {
	return StatsResponse{
		TotalRevenue:     domain.FormatRupees(s.TotalRevenue),
		TodayRevenue:     domain.FormatRupees(s.TodayRevenue),
		RetailerCount:    s.RetailerCount,
		PendingRecharges: s.PendingRecharges,
	}
}
