package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"edu-platform/internal/domain/model"
	"edu-platform/internal/domain/ports/repository"
	"edu-platform/internal/infra/metrics"
)

var _ EntitlementUseCase = (*entitlementUC)(nil)

type EntitlementUseCase interface {
	ListForUser(ctx context.Context, userID string) ([]*model.Entitlement, error)
	// ExpireDue flips entitlements past their window to inactive. Correctness
	// never depends on this; the active-entitlement read already excludes
	// expired rows. It keeps stats and listings tidy.
	ExpireDue(ctx context.Context) (int, error)
}

type entitlementUC struct {
	entitlements repository.EntitlementRepository
	log          *zerolog.Logger
}

func NewEntitlementUseCase(entitlements repository.EntitlementRepository, logger *zerolog.Logger) *entitlementUC {
	l := logger.With().Str("component", "EntitlementUC").Logger()
	return &entitlementUC{entitlements: entitlements, log: &l}
}

func (uc *entitlementUC) ListForUser(ctx context.Context, userID string) ([]*model.Entitlement, error) {
	return uc.entitlements.ListByUser(ctx, nil, userID)
}

func (uc *entitlementUC) ExpireDue(ctx context.Context) (int, error) {
	n, err := uc.entitlements.ExpireDue(ctx, nil, time.Now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.IncEntitlementsExpired(n)
	}
	return n, nil
}
