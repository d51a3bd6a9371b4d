package service

import (
	"context"
	"fmt"
	"strings"

	"eseva-portal/internal/core/domain"
	"eseva-portal/internal/core/ports"
	"eseva-portal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultManualCreditDescription = "Admin wallet credit"

// AdminServiceImpl implements ports.AdminService. Every balance change is
// delegated to the ledger.
type AdminServiceImpl struct {
	ledger      ports.LedgerService
	accountRepo ports.AccountRepository
	log         zerolog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(ledger ports.LedgerService, accountRepo ports.AccountRepository, log zerolog.Logger) *AdminServiceImpl {
	return &AdminServiceImpl{ledger: ledger, accountRepo: accountRepo, log: log}
}

// ManualCredit tops up a retailer's wallet as an ADMIN_ADJUSTMENT.
func (s *AdminServiceImpl) ManualCredit(ctx context.Context, accountID uuid.UUID, amount int64, description string) (*domain.LedgerEntry, int64, error) {
	if amount <= 0 {
		return nil, 0, apperror.ErrInvalidAmount()
	}

	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return nil, 0, apperror.ErrNotFound("Account")
	}

	description = strings.TrimSpace(description)
	if description == "" {
		description = defaultManualCreditDescription
	}

	entry, balance, err := s.ledger.RecordImmediateCredit(ctx, ports.CreditRequest{
		AccountID:   accountID,
		Amount:      amount,
		Category:    domain.CategoryAdminAdjustment,
		Description: description,
	})
	if err != nil {
		return nil, 0, err
	}

	s.log.Info().
		Str("account_id", accountID.String()).
		Int64("amount", amount).
		Msg("manual wallet credit")

	return entry, balance, nil
}

// ApproveTransaction settles a pending recharge as paid. Approving an entry
// that is already terminal returns it unchanged with settled=false.
func (s *AdminServiceImpl) ApproveTransaction(ctx context.Context, orderID string) (*domain.LedgerEntry, bool, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, false, apperror.ErrMissingInput([]string{"orderId"})
	}

	ref := domain.ManualApprovalReference
	entry, settled, err := s.ledger.SettleRecharge(ctx, orderID, domain.LedgerStatusSuccess, &ref)
	if err != nil {
		return nil, false, err
	}

	s.log.Info().
		Str("order_id", orderID).
		Bool("settled", settled).
		Str("status", string(entry.Status)).
		Msg("recharge manually approved")

	return entry, settled, nil
}
