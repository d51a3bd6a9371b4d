package service

import (
	"context"
	"time"

	"eseva-portal/internal/core/ports"

	"github.com/rs/zerolog"
)

// StagingSweeper purges temp upload directories whose StagedUpload record has
// expired. A directory is kept while its record still exists.
type StagingSweeper struct {
	staging   ports.StagingArea
	staged    ports.StagedUploadStore
	olderThan time.Duration
	log       zerolog.Logger
}

// NewStagingSweeper creates a sweeper for directories older than olderThan.
func NewStagingSweeper(staging ports.StagingArea, staged ports.StagedUploadStore, olderThan time.Duration, log zerolog.Logger) *StagingSweeper {
	return &StagingSweeper{staging: staging, staged: staged, olderThan: olderThan, log: log}
}

// SweepOnce runs a single pass and returns the number of directories removed.
func (s *StagingSweeper) SweepOnce(ctx context.Context) (int, error) {
	removed, err := s.staging.Sweep(ctx, s.olderThan, func(orderID string) bool {
		exists, err := s.staged.Exists(ctx, orderID)
		if err != nil {
			// Keep on doubt; the next pass retries.
			s.log.Warn().Err(err).Str("order_id", orderID).Msg("sweeper: staged upload lookup failed")
			return true
		}
		return exists
	})
	if err != nil {
		return removed, err
	}
	if removed > 0 {
		s.log.Info().Int("removed", removed).Msg("sweeper: purged orphaned staging directories")
	}
	return removed, nil
}

// Run sweeps every interval until ctx is cancelled.
func (s *StagingSweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("sweeper: stopped")
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil && ctx.Err() == nil {
				s.log.Error().Err(err).Msg("sweeper: pass failed")
			}
		}
	}
}
