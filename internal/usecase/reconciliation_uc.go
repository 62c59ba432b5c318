package usecase

import (
	"context"

	"edu-platform/internal/domain"
	"edu-platform/internal/domain/model"
	"edu-platform/internal/domain/ports/repository"
)

var _ ReconciliationUseCase = (*reconciliationUC)(nil)

// ReconciliationUseCase exposes pending-compensation markers to operators.
type ReconciliationUseCase interface {
	ListOpen(ctx context.Context) ([]*model.Reconciliation, error)
	Resolve(ctx context.Context, id string) error
}

type reconciliationUC struct {
	recons repository.ReconciliationRepository
}

func NewReconciliationUseCase(recons repository.ReconciliationRepository) *reconciliationUC {
	return &reconciliationUC{recons: recons}
}

func (uc *reconciliationUC) ListOpen(ctx context.Context) ([]*model.Reconciliation, error) {
	return uc.recons.ListOpen(ctx, nil)
}

func (uc *reconciliationUC) Resolve(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidArgument
	}
	return uc.recons.Resolve(ctx, nil, id)
}
