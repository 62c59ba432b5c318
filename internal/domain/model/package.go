package model

import (
	"time"

	"edu-platform/internal/domain"

	"github.com/google/uuid"
)

// Package is a purchasable content bundle with a fixed duration, a price in
// Toman, and a grade restricting who may buy it. It is a read-only input to
// the redemption protocol.
type Package struct {
	ID           string
	Name         string
	PriceToman   int64
	DurationDays int
	Grade        string
	Active       bool
	CreatedAt    time.Time
}

// NewPackage validates and constructs a package.
func NewPackage(id, name string, priceToman int64, durationDays int, grade string) (*Package, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if name == "" || grade == "" || durationDays <= 0 || priceToman < 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Package{
		ID:           id,
		Name:         name,
		PriceToman:   priceToman,
		DurationDays: durationDays,
		Grade:        grade,
		Active:       true,
		CreatedAt:    time.Now(),
	}, nil
}

func (p *Package) IsZero() bool { return p == nil || p.ID == "" }

// Duration is the entitlement window granted by this package.
func (p *Package) Duration() time.Duration {
	return time.Duration(p.DurationDays) * 24 * time.Hour
}
