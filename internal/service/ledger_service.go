package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eseva-portal/internal/core/domain"
	"eseva-portal/internal/core/ports"
	"eseva-portal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200

	rechargeDescription = "Wallet Recharge via Payment Gateway"
)

// LedgerServiceImpl implements ports.LedgerService.
type LedgerServiceImpl struct {
	accountRepo ports.AccountRepository
	ledgerRepo  ports.LedgerRepository
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	accountRepo ports.AccountRepository,
	ledgerRepo ports.LedgerRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		transactor:  transactor,
		log:         log,
	}
}

// OpenPendingRecharge records a PENDING recharge credit. The balance is untouched.
func (s *LedgerServiceImpl) OpenPendingRecharge(ctx context.Context, accountID uuid.UUID, amount int64, orderID string) (*domain.LedgerEntry, error) {
	if amount < domain.MinRechargeAmount {
		return nil, apperror.ErrInvalidAmount()
	}

	now := time.Now().UTC()
	entry := &domain.LedgerEntry{
		ID:          uuid.New(),
		AccountID:   accountID,
		Direction:   domain.DirectionCredit,
		Amount:      amount,
		Category:    domain.CategoryRecharge,
		Description: rechargeDescription,
		OrderID:     &orderID,
		Status:      domain.LedgerStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.ledgerRepo.Create(ctx, dbTx, entry); err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			return nil, apperror.ErrDuplicateOrder()
		}
		return nil, apperror.InternalError(fmt.Errorf("create pending entry: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("order_id", orderID).
		Str("account_id", accountID.String()).
		Int64("amount", amount).
		Msg("pending recharge opened")

	return entry, nil
}

// SettleRecharge moves a PENDING recharge to outcome. The status CAS and the
// balance credit commit together; a terminal entry is returned unchanged
// with settled=false.
func (s *LedgerServiceImpl) SettleRecharge(ctx context.Context, orderID string, outcome domain.LedgerStatus, paymentRef *string) (*domain.LedgerEntry, bool, error) {
	if outcome != domain.LedgerStatusSuccess && outcome != domain.LedgerStatusFailed {
		return nil, false, apperror.Validation("settlement outcome must be SUCCESS or FAILED")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, false, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	entry, err := s.ledgerRepo.TransitionPending(ctx, dbTx, orderID, outcome, paymentRef)
	if err != nil {
		return nil, false, apperror.InternalError(fmt.Errorf("transition entry: %w", err))
	}

	if entry == nil {
		// Lost the race, already terminal, or unknown.
		existing, err := s.ledgerRepo.GetByOrderID(ctx, orderID)
		if err != nil {
			return nil, false, apperror.InternalError(fmt.Errorf("get entry: %w", err))
		}
		if existing == nil {
			return nil, false, apperror.ErrOrderNotFound()
		}
		return existing, false, nil
	}

	var balance int64
	if outcome == domain.LedgerStatusSuccess {
		balance, err = s.accountRepo.Credit(ctx, dbTx, entry.AccountID, entry.Amount)
		if err != nil {
			return nil, false, apperror.InternalError(fmt.Errorf("credit account: %w", err))
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, false, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	evt := s.log.Info().
		Str("order_id", orderID).
		Str("account_id", entry.AccountID.String()).
		Str("status", string(outcome)).
		Int64("amount", entry.Amount)
	if outcome == domain.LedgerStatusSuccess {
		evt = evt.Int64("balance", balance)
	}
	evt.Msg("recharge settled")

	return entry, true, nil
}

// RecordImmediateDebit debits the account in its own transaction.
func (s *LedgerServiceImpl) RecordImmediateDebit(ctx context.Context, req ports.DebitRequest) (*domain.LedgerEntry, int64, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	entry, balance, err := s.DebitWithinTx(ctx, dbTx, req)
	if err != nil {
		return nil, 0, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return entry, balance, nil
}

// DebitWithinTx runs the conditional debit and writes a SUCCESS DEBIT entry
// on the caller's transaction. The caller commits.
func (s *LedgerServiceImpl) DebitWithinTx(ctx context.Context, tx pgx.Tx, req ports.DebitRequest) (*domain.LedgerEntry, int64, error) {
	if req.Amount <= 0 {
		return nil, 0, apperror.ErrInvalidAmount()
	}

	balance, ok, err := s.accountRepo.DebitIfSufficient(ctx, tx, req.AccountID, req.Amount)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("debit account: %w", err))
	}
	if !ok {
		return nil, 0, apperror.ErrInsufficientBalance()
	}

	entry := s.immediateEntry(req.AccountID, domain.DirectionDebit, req.Amount, req.Category, req.Description)
	entry.ServiceID = req.ServiceID
	if err := s.ledgerRepo.Create(ctx, tx, entry); err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("create debit entry: %w", err))
	}
	return entry, balance, nil
}

// RecordImmediateCredit credits the account and writes a SUCCESS CREDIT entry.
func (s *LedgerServiceImpl) RecordImmediateCredit(ctx context.Context, req ports.CreditRequest) (*domain.LedgerEntry, int64, error) {
	if req.Amount <= 0 {
		return nil, 0, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	balance, err := s.accountRepo.Credit(ctx, dbTx, req.AccountID, req.Amount)
	if err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("credit account: %w", err))
	}

	entry := s.immediateEntry(req.AccountID, domain.DirectionCredit, req.Amount, req.Category, req.Description)
	if err := s.ledgerRepo.Create(ctx, dbTx, entry); err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("create credit entry: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, 0, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return entry, balance, nil
}

// History returns the account's entries, newest first.
func (s *LedgerServiceImpl) History(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.LedgerEntry, error) {
	entries, err := s.ledgerRepo.ListByAccount(ctx, accountID, clampLimit(limit))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list entries: %w", err))
	}
	return entries, nil
}

// Balance returns the stored balance of an account.
func (s *LedgerServiceImpl) Balance(ctx context.Context, accountID uuid.UUID) (int64, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return 0, apperror.ErrNotFound("Account")
	}
	return account.Balance, nil
}

// ReconcileAccount sums the account's SUCCESS entries for comparison with
// its stored balance.
func (s *LedgerServiceImpl) ReconcileAccount(ctx context.Context, accountID uuid.UUID) (*domain.LedgerTotals, error) {
	totals, err := s.ledgerRepo.Totals(ctx, accountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("ledger totals: %w", err))
	}
	if totals == nil {
		return nil, apperror.ErrNotFound("Account")
	}
	if drift := totals.Drift(); drift != 0 {
		s.log.Warn().
			Str("account_id", accountID.String()).
			Int64("drift", drift).
			Int64("stored_balance", totals.StoredBalance).
			Int64("expected", totals.Expected()).
			Msg("ledger drift detected")
	}
	return totals, nil
}

func (s *LedgerServiceImpl) immediateEntry(accountID uuid.UUID, dir domain.Direction, amount int64, cat domain.LedgerCategory, desc string) *domain.LedgerEntry {
	now := time.Now().UTC()
	return &domain.LedgerEntry{
		ID:          uuid.New(),
		AccountID:   accountID,
		Direction:   dir,
		Amount:      amount,
		Category:    cat,
		Description: desc,
		Status:      domain.LedgerStatusSuccess,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		return maxHistoryLimit
	}
	return limit
}
