package repository

import (
	"context"

	"edu-platform/internal/domain/model"
)

// ReconciliationRepository persists pending-compensation markers. Writers must
// treat Save as best-effort: if even this insert fails the caller falls back
// to the fatal log path.
type ReconciliationRepository interface {
	Save(ctx context.Context, tx Tx, r *model.Reconciliation) error
	ListOpen(ctx context.Context, tx Tx) ([]*model.Reconciliation, error)
	Resolve(ctx context.Context, tx Tx, id string) error
}
