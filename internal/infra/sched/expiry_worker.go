package sched

import (
	"context"
	"time"

	"edu-platform/internal/usecase"

	"github.com/rs/zerolog"
)

// ExpiryWorker periodically flips entitlements past their window to inactive.
// This is hygiene for listings and stats; access checks already exclude
// expired rows at read time, so nothing depends on how often this runs.
type ExpiryWorker struct {
	interval time.Duration
	entUC    usecase.EntitlementUseCase
	log      *zerolog.Logger
}

func NewExpiryWorker(interval time.Duration, entUC usecase.EntitlementUseCase, logger *zerolog.Logger) *ExpiryWorker {
	exprLog := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{
		interval: interval,
		entUC:    entUC,
		log:      &exprLog,
	}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.entUC.ExpireDue(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("expiry sweep failed")
			}
			if n > 0 {
				w.log.Info().Int("count", n).Msg("entitlements expired")
			}
		}
	}
}
