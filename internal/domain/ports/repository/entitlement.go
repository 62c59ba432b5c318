package repository

import (
	"context"
	"time"

	"edu-platform/internal/domain/model"
)

// EntitlementRepository is the port for package ownership records.
type EntitlementRepository interface {
	// Save inserts a new entitlement. A duplicate active (user, package) pair
	// maps to domain.ErrAlreadyEntitled.
	Save(ctx context.Context, tx Tx, e *model.Entitlement) error
	// FindActiveByUserAndPackage returns the active, unexpired entitlement or
	// domain.ErrNotFound. Rows whose expires_at has passed are treated as
	// absent even if the sweeper has not flipped them yet.
	FindActiveByUserAndPackage(ctx context.Context, tx Tx, userID, packageID string) (*model.Entitlement, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Entitlement, error)
	Deactivate(ctx context.Context, tx Tx, id string) error
	// ExpireDue flips is_active off for entitlements past their expiry and
	// returns how many rows changed.
	ExpireDue(ctx context.Context, tx Tx, now time.Time) (int, error)
	// CountActiveByPackage returns active entitlement counts keyed by
	// package ID.
	CountActiveByPackage(ctx context.Context, tx Tx) (map[string]int, error)
}
