package repository

import (
	"context"
	"time"

	"edu-platform/internal/domain/model"
)

// CodeRepository is the port for single-use redemption codes.
type CodeRepository interface {
	// Save inserts a new code.
	Save(ctx context.Context, tx Tx, code *model.Code) error
	// FindByCode returns the code row regardless of its used state, or
	// domain.ErrNotFound.
	FindByCode(ctx context.Context, tx Tx, code string) (*model.Code, error)
	// MarkUsed flips the code to used, conditioned on it still being unused.
	// Returns domain.ErrRedemptionConflict when the conditional update affects
	// zero rows (a concurrent redeemer won).
	MarkUsed(ctx context.Context, tx Tx, codeID, userID string, at time.Time) error
	// RevertUsed is the compensating write: it puts the code back to unused
	// and clears used_by/used_at.
	RevertUsed(ctx context.Context, tx Tx, codeID string) error
	List(ctx context.Context, tx Tx, offset, limit int) ([]*model.Code, error)
	CountByUsed(ctx context.Context, tx Tx) (total int, used int, err error)
}
