package model

import (
	"time"
)

// Code is a single-use token that can be redeemed for a package. Once used,
// UsedByUserID and UsedAt are immutable; codes are never deleted so the table
// doubles as an audit trail.
type Code struct {
	ID           string
	Code         string
	PackageID    string
	Grade        string
	IsUsed       bool
	UsedByUserID *string
	UsedAt       *time.Time
	CreatedAt    time.Time
	ExpiresAt    *time.Time // nil means no expiry
}

// Expired reports whether the code's expiry has passed as of now.
func (c *Code) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}
