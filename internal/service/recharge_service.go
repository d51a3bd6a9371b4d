package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"eseva-portal/internal/core/domain"
	"eseva-portal/internal/core/ports"
	"eseva-portal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	rechargeNote    = "Wallet Recharge"
	rechargeProduct = "Wallet Credit"
)

// RechargeServiceImpl implements ports.RechargeService.
type RechargeServiceImpl struct {
	ledger      ports.LedgerService
	accountRepo ports.AccountRepository
	ledgerRepo  ports.LedgerRepository
	eventRepo   ports.GatewayEventRepository
	gateway     ports.PaymentGateway
	qr          ports.QRGenerator
	backendURL  string
	frontendURL string
	log         zerolog.Logger
}

// NewRechargeService creates a new RechargeServiceImpl.
func NewRechargeService(
	ledger ports.LedgerService,
	accountRepo ports.AccountRepository,
	ledgerRepo ports.LedgerRepository,
	eventRepo ports.GatewayEventRepository,
	gateway ports.PaymentGateway,
	qr ports.QRGenerator,
	backendURL, frontendURL string,
	log zerolog.Logger,
) *RechargeServiceImpl {
	return &RechargeServiceImpl{
		ledger:      ledger,
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		eventRepo:   eventRepo,
		gateway:     gateway,
		qr:          qr,
		backendURL:  backendURL,
		frontendURL: frontendURL,
		log:         log,
	}
}

// InitiateRecharge opens a PENDING entry and a gateway order for it. If the
// gateway cannot be reached the entry is settled FAILED.
func (s *RechargeServiceImpl) InitiateRecharge(ctx context.Context, accountID uuid.UUID, amount int64) (*ports.RechargeInitiation, error) {
	if amount < domain.MinRechargeAmount {
		return nil, apperror.ErrInvalidAmount()
	}

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrNotFound("Account")
	}

	orderID := newRechargeOrderID()
	if _, err := s.ledger.OpenPendingRecharge(ctx, accountID, amount, orderID); err != nil {
		return nil, err
	}

	phone := account.Phone
	if phone == "" {
		phone = domain.DefaultCustomerPhone
	}

	order, err := s.gateway.CreateOrder(ctx, ports.GatewayOrderRequest{
		OrderID:     orderID,
		Amount:      amount,
		Note:        rechargeNote,
		ProductName: rechargeProduct,
		Customer:    domain.Customer{Name: account.Name, Email: account.Email, Phone: phone},
		RedirectURL: s.backendURL + "/api/wallet/payment-return",
	})
	if err != nil {
		if _, _, serr := s.ledger.SettleRecharge(ctx, orderID, domain.LedgerStatusFailed, nil); serr != nil {
			s.log.Error().Err(serr).Str("order_id", orderID).Msg("failed to mark recharge FAILED after gateway error")
		}
		return nil, err
	}

	qr, err := s.qr.PNG(order.PaymentURL)
	if err != nil {
		s.log.Warn().Err(err).Str("order_id", orderID).Msg("qr generation failed")
		qr = nil
	}

	return &ports.RechargeInitiation{
		OrderID:    orderID,
		PaymentURL: order.PaymentURL,
		QRCodePNG:  qr,
		Amount:     amount,
	}, nil
}

// HandleWebhook reconciles a gateway push notification.
func (s *RechargeServiceImpl) HandleWebhook(ctx context.Context, n ports.GatewayNotification) (*ports.WebhookResult, error) {
	if strings.TrimSpace(n.OrderID) == "" {
		return nil, apperror.Validation("order_id is required")
	}

	event := &domain.GatewayEvent{
		Source:           domain.EventSourceWebhook,
		OrderID:          n.OrderID,
		GatewayStatus:    n.Status,
		PaymentReference: optionalString(n.TxnID),
		Payload:          n.Payload,
	}

	entry, err := s.ledgerRepo.GetByOrderID(ctx, n.OrderID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get entry: %w", err))
	}
	if entry == nil {
		s.recordEvent(ctx, event, domain.EventOutcomeNotFound)
		return nil, apperror.ErrOrderNotFound()
	}
	if entry.IsTerminal() {
		s.recordEvent(ctx, event, domain.EventOutcomeDuplicate)
		return &ports.WebhookResult{Entry: entry, AlreadyProcessed: true}, nil
	}

	outcome, terminal := mapGatewayStatus(n.Status)
	if !terminal {
		s.recordEvent(ctx, event, domain.EventOutcomeIgnored)
		return &ports.WebhookResult{Entry: entry, Ignored: true}, nil
	}

	settledEntry, settled, err := s.ledger.SettleRecharge(ctx, n.OrderID, outcome, event.PaymentReference)
	if err != nil {
		s.recordEvent(ctx, event, domain.EventOutcomeError)
		return nil, err
	}
	if !settled {
		s.recordEvent(ctx, event, domain.EventOutcomeDuplicate)
		return &ports.WebhookResult{Entry: settledEntry, AlreadyProcessed: true}, nil
	}

	s.recordEvent(ctx, event, domain.EventOutcomeSettled)
	return &ports.WebhookResult{Entry: settledEntry}, nil
}

// CheckStatus polls the gateway for an entry the caller owns. Admins may poll any entry.
func (s *RechargeServiceImpl) CheckStatus(ctx context.Context, caller ports.TokenClaims, orderID string) (*ports.RechargeStatus, error) {
	entry, err := s.ledgerRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get entry: %w", err))
	}
	if entry == nil || (entry.AccountID != caller.AccountID && caller.Role != domain.RoleAdmin) {
		return nil, apperror.ErrOrderNotFound()
	}

	if entry.Status == domain.LedgerStatusSuccess {
		return s.statusWithBalance(ctx, entry)
	}

	remote, err := s.gateway.QueryOrderStatus(ctx, orderID)
	if err != nil {
		return nil, err
	}

	payload := encodePayload(map[string]string{
		"status":     remote.Status,
		"txn_amount": domain.FormatRupees(remote.Amount),
		"txn_id":     remote.ExternalReference,
	})
	event := &domain.GatewayEvent{
		Source:           domain.EventSourceStatusPoll,
		OrderID:          orderID,
		GatewayStatus:    remote.Status,
		PaymentReference: optionalString(remote.ExternalReference),
		Payload:          payload,
	}

	outcome, terminal := mapGatewayStatus(remote.Status)
	switch {
	case !terminal:
		s.recordEvent(ctx, event, domain.EventOutcomeIgnored)
		return s.statusWithBalance(ctx, entry)
	case outcome == domain.LedgerStatusSuccess && remote.Amount != entry.Amount:
		s.log.Warn().
			Str("order_id", orderID).
			Int64("expected", entry.Amount).
			Int64("reported", remote.Amount).
			Msg("gateway amount mismatch, not settling")
		s.recordEvent(ctx, event, domain.EventOutcomeRejected)
		return s.statusWithBalance(ctx, entry)
	}

	settledEntry, settled, err := s.ledger.SettleRecharge(ctx, orderID, outcome, event.PaymentReference)
	if err != nil {
		s.recordEvent(ctx, event, domain.EventOutcomeError)
		return nil, err
	}
	if settled {
		s.recordEvent(ctx, event, domain.EventOutcomeSettled)
	} else {
		s.recordEvent(ctx, event, domain.EventOutcomeDuplicate)
	}
	return s.statusWithBalance(ctx, settledEntry)
}

// ReturnURL is where the browser is sent after the gateway's hosted page.
func (s *RechargeServiceImpl) ReturnURL(orderID string) string {
	if orderID == "" {
		return s.frontendURL + "/dashboard/wallet"
	}
	return s.frontendURL + "/dashboard/wallet/status/" + url.PathEscape(orderID)
}

func (s *RechargeServiceImpl) statusWithBalance(ctx context.Context, entry *domain.LedgerEntry) (*ports.RechargeStatus, error) {
	balance, err := s.ledger.Balance(ctx, entry.AccountID)
	if err != nil {
		return nil, err
	}
	return &ports.RechargeStatus{
		OrderID: *entry.OrderID,
		Status:  entry.Status,
		Balance: balance,
	}, nil
}

// recordEvent is best-effort; the event trail must never block reconciliation.
func (s *RechargeServiceImpl) recordEvent(ctx context.Context, event *domain.GatewayEvent, outcome domain.GatewayEventOutcome) {
	event.ID = uuid.New()
	event.Outcome = outcome
	event.CreatedAt = time.Now().UTC()
	if event.Payload == "" {
		event.Payload = "{}"
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		s.log.Error().Err(err).Str("order_id", event.OrderID).Str("outcome", string(outcome)).Msg("failed to record gateway event")
	}
}

func mapGatewayStatus(status string) (domain.LedgerStatus, bool) {
	switch status {
	case ports.GatewayStatusSuccess:
		return domain.LedgerStatusSuccess, true
	case ports.GatewayStatusFailed:
		return domain.LedgerStatusFailed, true
	}
	return "", false
}

// newRechargeOrderID returns "ORD" followed by 32 hex characters.
func newRechargeOrderID() string {
	return "ORD" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// encodePayload renders a flat gateway payload for the event log.
func encodePayload(fields map[string]string) string {
	b, err := json.Marshal(fields)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
