package model

import (
	"time"

	"edu-platform/internal/domain"

	"github.com/google/uuid"
)

type EntitlementSource string

const (
	EntitlementSourceCode   EntitlementSource = "code"
	EntitlementSourceWallet EntitlementSource = "wallet"
)

// Entitlement is durable proof that a user owns a package for a bounded
// window. At most one active entitlement may exist per (user, package).
type Entitlement struct {
	ID          string
	UserID      string
	PackageID   string
	Source      EntitlementSource
	Active      bool
	PurchasedAt time.Time
	ExpiresAt   time.Time
}

// NewEntitlement grants pkg to userID starting now, expiring after the
// package duration.
func NewEntitlement(userID string, pkg *Package, source EntitlementSource) (*Entitlement, error) {
	if userID == "" || pkg.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Entitlement{
		ID:          uuid.NewString(),
		UserID:      userID,
		PackageID:   pkg.ID,
		Source:      source,
		Active:      true,
		PurchasedAt: now,
		ExpiresAt:   now.Add(pkg.Duration()),
	}, nil
}

// Expired reports whether the entitlement window has passed. Expiry is
// enforced at read time; the background sweeper only keeps rows tidy.
func (e *Entitlement) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}
