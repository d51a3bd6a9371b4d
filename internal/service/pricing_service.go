package service

import (
	"context"
	"fmt"
	"time"

	"eseva-portal/internal/core/domain"
	"eseva-portal/internal/core/ports"
	"eseva-portal/pkg/apperror"

	"github.com/rs/zerolog"
)

// PricingServiceImpl implements ports.PricingService. Rows are seeded from
// the service registry the first time a type is read.
type PricingServiceImpl struct {
	repo ports.ServiceConfigRepository
	log  zerolog.Logger
}

// NewPricingService creates a new pricing service.
func NewPricingService(repo ports.ServiceConfigRepository, log zerolog.Logger) *PricingServiceImpl {
	return &PricingServiceImpl{repo: repo, log: log}
}

// Config returns the stored config for serviceType, seeding the default.
func (s *PricingServiceImpl) Config(ctx context.Context, serviceType domain.ServiceType) (*domain.ServiceConfig, error) {
	def, ok := domain.LookupService(serviceType)
	if !ok {
		return nil, apperror.Validation(fmt.Sprintf("unknown service type %q", serviceType))
	}

	cfg, err := s.repo.Get(ctx, serviceType)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get service config: %w", err))
	}
	if cfg != nil {
		return cfg, nil
	}

	cfg, err = s.repo.CreateIfMissing(ctx, defaultConfig(def, time.Now().UTC()))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("seed service config: %w", err))
	}
	return cfg, nil
}

// List returns every service config, seeding any that are missing.
func (s *PricingServiceImpl) List(ctx context.Context) ([]domain.ServiceConfig, error) {
	configs, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list service configs: %w", err))
	}

	types := domain.ServiceTypes()
	if len(configs) >= len(types) {
		return configs, nil
	}

	now := time.Now().UTC()
	seeded := make([]domain.ServiceConfig, 0, len(types))
	for _, t := range types {
		def, _ := domain.LookupService(t)
		cfg, err := s.repo.CreateIfMissing(ctx, defaultConfig(def, now))
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("seed service config: %w", err))
		}
		seeded = append(seeded, *cfg)
	}
	return seeded, nil
}

// UpdatePrice sets the unit price of a wallet-paid service. The price must be
// positive since every application debits the wallet.
func (s *PricingServiceImpl) UpdatePrice(ctx context.Context, serviceType domain.ServiceType, price int64) (*domain.ServiceConfig, error) {
	if price <= 0 || price > domain.MaxAmount {
		return nil, apperror.ErrInvalidAmount()
	}
	if def, ok := domain.LookupService(serviceType); ok && def.PaidDirect {
		return nil, apperror.Validation(fmt.Sprintf("price of %s is fixed", serviceType))
	}

	cfg, err := s.Config(ctx, serviceType)
	if err != nil {
		return nil, err
	}
	old := cfg.Price
	cfg.Price = price
	cfg.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, cfg); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update service config: %w", err))
	}

	s.log.Info().
		Str("service_type", string(serviceType)).
		Int64("old_price", old).
		Int64("new_price", price).
		Msg("service price updated")

	return cfg, nil
}

// Toggle enables or disables a service. A nil message keeps the stored one.
func (s *PricingServiceImpl) Toggle(ctx context.Context, serviceType domain.ServiceType, active bool, message *string) (*domain.ServiceConfig, error) {
	cfg, err := s.Config(ctx, serviceType)
	if err != nil {
		return nil, err
	}

	cfg.IsActive = active
	if message != nil {
		cfg.MaintenanceMessage = *message
	}
	if cfg.MaintenanceMessage == "" {
		cfg.MaintenanceMessage = domain.DefaultMaintenanceMessage
	}
	cfg.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, cfg); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update service config: %w", err))
	}

	s.log.Info().
		Str("service_type", string(serviceType)).
		Bool("is_active", active).
		Msg("service availability changed")

	return cfg, nil
}

func defaultConfig(def domain.ServiceDefinition, now time.Time) *domain.ServiceConfig {
	return &domain.ServiceConfig{
		ServiceType:        def.Type,
		Price:              def.DefaultPrice,
		Label:              def.Label,
		IsActive:           true,
		MaintenanceMessage: domain.DefaultMaintenanceMessage,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}
