package service

import (
	"context"
	"fmt"

	"eseva-portal/internal/core/domain"
	"eseva-portal/internal/core/ports"
	"eseva-portal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AccountServiceImpl implements ports.AccountService.
type AccountServiceImpl struct {
	accountRepo ports.AccountRepository
	log         zerolog.Logger
}

// NewAccountService creates a new account service.
func NewAccountService(accountRepo ports.AccountRepository, log zerolog.Logger) *AccountServiceImpl {
	return &AccountServiceImpl{accountRepo: accountRepo, log: log}
}

// GetProfile returns the account, including its stored balance.
func (s *AccountServiceImpl) GetProfile(ctx context.Context, accountID uuid.UUID) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if account == nil {
		return nil, apperror.ErrNotFound("Account")
	}
	return account, nil
}

// SetStatus suspends or reactivates an account.
func (s *AccountServiceImpl) SetStatus(ctx context.Context, accountID uuid.UUID, status domain.AccountStatus) (*domain.Account, error) {
	if status != domain.AccountStatusActive && status != domain.AccountStatusSuspended {
		return nil, apperror.Validation(fmt.Sprintf("invalid account status %q", status))
	}

	account, err := s.GetProfile(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.Status == status {
		return account, nil
	}

	if err := s.accountRepo.UpdateStatus(ctx, accountID, status); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update account status: %w", err))
	}
	account.Status = status

	s.log.Info().Str("account_id", accountID.String()).Str("status", string(status)).Msg("account status changed")
	return account, nil
}
