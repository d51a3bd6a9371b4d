package service

import (
	"context"
	"fmt"
	"time"

	"eseva-portal/internal/core/domain"
	"eseva-portal/internal/core/ports"
	"eseva-portal/pkg/apperror"
)

// ReportingServiceImpl implements ports.ReportingService.
type ReportingServiceImpl struct {
	ledgerRepo  ports.LedgerRepository
	accountRepo ports.AccountRepository
	now         func() time.Time
}

// NewReportingService creates a new reporting service.
func NewReportingService(ledgerRepo ports.LedgerRepository, accountRepo ports.AccountRepository) *ReportingServiceImpl {
	return &ReportingServiceImpl{
		ledgerRepo:  ledgerRepo,
		accountRepo: accountRepo,
		now:         time.Now,
	}
}

// GetStats returns the admin dashboard figures. Today starts at UTC midnight.
func (s *ReportingServiceImpl) GetStats(ctx context.Context) (*ports.AdminStats, error) {
	now := s.now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	stats, err := s.ledgerRepo.GetStats(ctx, midnight)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("ledger stats: %w", err))
	}

	retailers, err := s.accountRepo.CountByRole(ctx, domain.RoleUser)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("count retailers: %w", err))
	}

	return &ports.AdminStats{
		TotalRevenue:     stats.TotalRevenue,
		TodayRevenue:     stats.PeriodRevenue,
		RetailerCount:    retailers,
		PendingRecharges: stats.PendingRecharges,
	}, nil
}

// ListTransactions returns the newest ledger entries across all accounts.
func (s *ReportingServiceImpl) ListTransactions(ctx context.Context, limit int) ([]domain.LedgerEntry, error) {
	entries, err := s.ledgerRepo.ListRecent(ctx, clampLimit(limit))
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	return entries, nil
}
