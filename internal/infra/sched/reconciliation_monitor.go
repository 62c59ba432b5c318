package sched

import (
	"context"
	"time"

	"edu-platform/internal/usecase"

	"github.com/rs/zerolog"
)

// ReconciliationMonitor periodically checks for open reconciliation markers
// and shouts about them. A marker means a compensating write failed and a
// user-visible inconsistency is waiting on an operator; it must not sit
// unnoticed.
type ReconciliationMonitor struct {
	interval time.Duration
	reconUC  usecase.ReconciliationUseCase
	log      *zerolog.Logger
}

func NewReconciliationMonitor(interval time.Duration, reconUC usecase.ReconciliationUseCase, logger *zerolog.Logger) *ReconciliationMonitor {
	monLog := logger.With().Str("component", "ReconciliationMonitor").Logger()
	return &ReconciliationMonitor{
		interval: interval,
		reconUC:  reconUC,
		log:      &monLog,
	}
}

func (w *ReconciliationMonitor) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting reconciliation monitor")
	// Check once on startup, then on every tick
	w.check(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping reconciliation monitor")
			return ctx.Err()
		case <-ticker.C:
			w.check(ctx)
		}
	}
}

func (w *ReconciliationMonitor) check(ctx context.Context) {
	open, err := w.reconUC.ListOpen(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("reconciliation check failed")
		return
	}
	if len(open) > 0 {
		w.log.Error().Int("count", len(open)).Msg("open reconciliation markers need operator attention")
	}
}
