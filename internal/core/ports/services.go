package ports

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"
	"encoding/json"
	"time"

	"eseva-portal/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// EncryptionService seals staged PII under the order it belongs to.
type EncryptionService interface {
	Seal(orderID string, plaintext []byte) (string, error)
	Open(orderID, sealed string) ([]byte, error)
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(accountID uuid.UUID, role domain.AccountRole) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	AccountID uuid.UUID
	Role      domain.AccountRole
}

// AuditService records audit log entries asynchronously.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}

// --- Service Ports (Business Logic) ---

// LedgerService owns every balance mutation. Each operation runs in one
// database transaction.
type LedgerService interface {
	OpenPendingRecharge(ctx context.Context, accountID uuid.UUID, amount int64, orderID string) (*domain.LedgerEntry, error)
	// SettleRecharge moves a PENDING recharge to SUCCESS or FAILED and credits
	// on SUCCESS. settled is false when the entry was already terminal.
	SettleRecharge(ctx context.Context, orderID string, outcome domain.LedgerStatus, paymentRef *string) (entry *domain.LedgerEntry, settled bool, err error)
	RecordImmediateDebit(ctx context.Context, req DebitRequest) (*domain.LedgerEntry, int64, error)
	// DebitWithinTx performs the conditional debit inside a caller-owned transaction.
	DebitWithinTx(ctx context.Context, tx pgx.Tx, req DebitRequest) (*domain.LedgerEntry, int64, error)
	RecordImmediateCredit(ctx context.Context, req CreditRequest) (*domain.LedgerEntry, int64, error)
	History(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.LedgerEntry, error)
	Balance(ctx context.Context, accountID uuid.UUID) (int64, error)
	ReconcileAccount(ctx context.Context, accountID uuid.UUID) (*domain.LedgerTotals, error)
}

// DebitRequest holds validated input for a synchronous debit.
type DebitRequest struct {
	AccountID   uuid.UUID
	Amount      int64
	Category    domain.LedgerCategory
	Description string
	ServiceID   *uuid.UUID
}

// CreditRequest holds validated input for a synchronous credit.
type CreditRequest struct {
	AccountID   uuid.UUID
	Amount      int64
	Category    domain.LedgerCategory
	Description string
}

// RechargeService drives wallet top-ups through the payment gateway.
type RechargeService interface {
	InitiateRecharge(ctx context.Context, accountID uuid.UUID, amount int64) (*RechargeInitiation, error)
	HandleWebhook(ctx context.Context, n GatewayNotification) (*WebhookResult, error)
	CheckStatus(ctx context.Context, caller TokenClaims, orderID string) (*RechargeStatus, error)
	ReturnURL(orderID string) string
}

// RechargeInitiation is returned to the client after a recharge is opened.
type RechargeInitiation struct {
	OrderID    string
	PaymentURL string
	QRCodePNG  []byte
	Amount     int64
}

// GatewayNotification is a webhook delivery from the gateway.
type GatewayNotification struct {
	OrderID string
	Status  string
	TxnID   string
	Payload string // Raw delivery as JSON, kept for the event log
}

// WebhookResult tells the handler how to acknowledge a webhook.
type WebhookResult struct {
	Entry            *domain.LedgerEntry
	AlreadyProcessed bool
	Ignored          bool // Non-terminal gateway status, acknowledged without change
}

// RechargeStatus is the result of a manual status poll.
type RechargeStatus struct {
	OrderID string
	Status  domain.LedgerStatus
	Balance int64
}

// PaidSubmissionService implements the stage-then-commit flow for services
// paid directly at the gateway.
type PaidSubmissionService interface {
	Begin(ctx context.Context, req BeginSubmissionRequest) (*PayURequest, error)
	// Complete always returns an outcome carrying the redirect target.
	Complete(ctx context.Context, resp PayUResponse, remoteIP string) *SubmissionOutcome
}

// BeginSubmissionRequest holds a multipart submission awaiting payment.
type BeginSubmissionRequest struct {
	AccountID uuid.UUID
	Fields    map[string]string
	Files     []UploadedFile
}

// Submission outcome statuses, as passed to the frontend.
const (
	SubmissionSuccess = "success"
	SubmissionFailure = "failure"
	SubmissionError   = "error"
)

// SubmissionOutcome describes how a callback was resolved.
type SubmissionOutcome struct {
	Status      string
	Message     string
	TxnID       string
	RedirectURL string
	Application *domain.Application
	Err         error // *apperror.AppError on error outcomes
}

// ApplicationService handles wallet-debited service applications and their
// admin workflow.
type ApplicationService interface {
	ApplyWithDocuments(ctx context.Context, req DocumentApplicationRequest) (*ApplicationReceipt, error)
	ApplyBulk(ctx context.Context, accountID uuid.UUID, serviceType domain.ServiceType, items []json.RawMessage) (*ApplicationReceipt, error)
	ListForAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.Service, error)
	UpdateStatus(ctx context.Context, serviceID uuid.UUID, status domain.ServiceStatus) (*domain.Service, error)
	AddComment(ctx context.Context, serviceID uuid.UUID, text string) (*domain.Service, error)
	AdminAction(ctx context.Context, req AdminActionRequest) (*domain.Application, error)
	AttachDocument(ctx context.Context, req AttachDocumentRequest) (*domain.Document, error)
	// ListDocuments returns a service's documents to its owner or an admin.
	ListDocuments(ctx context.Context, serviceID, callerID uuid.UUID, isAdmin bool) ([]domain.Document, error)
	// FulfillVoterCard stores the finished voter-card PDF and completes the application.
	FulfillVoterCard(ctx context.Context, serviceID, adminID uuid.UUID, file UploadedFile) (*domain.Application, error)
}

// AttachDocumentRequest is an admin upload onto an existing service.
type AttachDocumentRequest struct {
	ServiceID    uuid.UUID
	AdminID      uuid.UUID
	DocumentType string
	File         UploadedFile
}

// DocumentApplicationRequest is a multipart application with files.
type DocumentApplicationRequest struct {
	AccountID   uuid.UUID
	ServiceType domain.ServiceType
	Fields      map[string]string
	Files       []UploadedFile
}

// ApplicationReceipt summarizes a completed wallet-debited application.
type ApplicationReceipt struct {
	Applications     []*domain.Application
	Count            int
	Deducted         int64
	RemainingBalance int64
	Entry            *domain.LedgerEntry
}

// Admin actions on RTPS and labour-card applications.
const (
	ActionApprove       = "approve"
	ActionReject        = "reject"
	ActionGeneralRemark = "general_remark"
)

// AdminActionRequest holds an approve/reject/remark decision.
type AdminActionRequest struct {
	ServiceID   uuid.UUID
	ServiceType domain.ServiceType
	Action      string
	Remark      string
	AdminID     uuid.UUID
}

// PricingService manages per-service price and availability.
type PricingService interface {
	Config(ctx context.Context, serviceType domain.ServiceType) (*domain.ServiceConfig, error)
	List(ctx context.Context) ([]domain.ServiceConfig, error)
	UpdatePrice(ctx context.Context, serviceType domain.ServiceType, price int64) (*domain.ServiceConfig, error)
	Toggle(ctx context.Context, serviceType domain.ServiceType, active bool, message *string) (*domain.ServiceConfig, error)
}

// AdminService holds admin-only wallet operations.
type AdminService interface {
	ManualCredit(ctx context.Context, accountID uuid.UUID, amount int64, description string) (*domain.LedgerEntry, int64, error)
	ApproveTransaction(ctx context.Context, orderID string) (*domain.LedgerEntry, bool, error)
}

// ReportingService defines admin dashboard and reporting logic.
type ReportingService interface {
	GetStats(ctx context.Context) (*AdminStats, error)
	ListTransactions(ctx context.Context, limit int) ([]domain.LedgerEntry, error)
}

// AdminStats holds the admin dashboard figures.
type AdminStats struct {
	TotalRevenue     int64 `json:"total_revenue"`
	TodayRevenue     int64 `json:"today_revenue"`
	RetailerCount    int64 `json:"retailer_count"`
	PendingRecharges int64 `json:"pending_recharges"`
}

// AccountService handles account profile and status management.
type AccountService interface {
	GetProfile(ctx context.Context, accountID uuid.UUID) (*domain.Account, error)
	SetStatus(ctx context.Context, accountID uuid.UUID, status domain.AccountStatus) (*domain.Account, error)
}

// AuthService defines authentication business logic.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.Account, error)
	Login(ctx context.Context, email, password string) (string, time.Time, error) // token, expiry, error
}

// RegisterRequest holds input for retailer registration.
type RegisterRequest struct {
	Name     string
	Email    string
	Password string
	Phone    string
	District string
	Block    string
}
