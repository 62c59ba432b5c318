package model

import (
	"time"

	"edu-platform/internal/domain"

	"github.com/google/uuid"
)

// User is a registered student (or admin) of the platform. Grade is the
// cohort tag gating which packages and codes the user may redeem.
type User struct {
	ID           string
	Phone        string
	Name         string
	Grade        string
	IsAdmin      bool
	RegisteredAt time.Time
}

func NewUser(id, phone, name, grade string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if phone == "" || name == "" || grade == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &User{
		ID:           id,
		Phone:        phone,
		Name:         name,
		Grade:        grade,
		RegisteredAt: time.Now(),
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }
