//go:build !integration

package model

import (
	"errors"
	"testing"
	"time"

	"edu-platform/internal/domain"
)

// --- User Model Tests ---

func TestNewUser(t *testing.T) {
	t.Run("should create a new user successfully", func(t *testing.T) {
		user, err := NewUser("", "09121234567", "Sara", "12")

		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if user.ID == "" {
			t.Error("expected user ID to be non-empty")
		}
		if user.Grade != "12" {
			t.Errorf("expected grade '12', but got %s", user.Grade)
		}
		if user.IsAdmin {
			t.Error("expected new users not to be admins")
		}
	})

	t.Run("should fail with empty grade", func(t *testing.T) {
		user, err := NewUser("", "09121234567", "Sara", "")
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, but got %v", err)
		}
		if user != nil {
			t.Error("expected user to be nil on error")
		}
	})

	t.Run("should fail with empty phone", func(t *testing.T) {
		_, err := NewUser("", "", "Sara", "12")
		if !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, but got %v", err)
		}
	})
}

// --- Package Model Tests ---

func TestNewPackage(t *testing.T) {
	t.Run("should create an active package with a duration window", func(t *testing.T) {
		pkg, err := NewPackage("", "Konkur Math", 1_890_000, 90, "12")
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if !pkg.Active {
			t.Error("expected a new package to be active")
		}
		if pkg.Duration() != 90*24*time.Hour {
			t.Errorf("expected a 90-day duration, got %v", pkg.Duration())
		}
	})

	t.Run("should reject non-positive durations and negative prices", func(t *testing.T) {
		if _, err := NewPackage("", "x", 100, 0, "12"); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for zero duration, got %v", err)
		}
		if _, err := NewPackage("", "x", -1, 30, "12"); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for negative price, got %v", err)
		}
	})
}

// --- Code Model Tests ---

func TestCodeExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	if (&Code{ExpiresAt: nil}).Expired(now) {
		t.Error("a code without an expiry must never expire")
	}
	if (&Code{ExpiresAt: &future}).Expired(now) {
		t.Error("a code before its expiry must not be expired")
	}
	if !(&Code{ExpiresAt: &past}).Expired(now) {
		t.Error("a code past its expiry must be expired")
	}
}

// --- Entitlement Model Tests ---

func TestNewEntitlement(t *testing.T) {
	pkg, _ := NewPackage("", "Physics", 100, 30, "11")

	t.Run("should grant an active entitlement expiring after the package duration", func(t *testing.T) {
		ent, err := NewEntitlement("user-1", pkg, EntitlementSourceCode)
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if !ent.Active {
			t.Error("expected a new entitlement to be active")
		}
		want := ent.PurchasedAt.Add(pkg.Duration())
		if !ent.ExpiresAt.Equal(want) {
			t.Errorf("expected expiry %v, got %v", want, ent.ExpiresAt)
		}
		if ent.Expired(time.Now()) {
			t.Error("a fresh entitlement must not be expired")
		}
	})

	t.Run("should fail without a user or package", func(t *testing.T) {
		if _, err := NewEntitlement("", pkg, EntitlementSourceCode); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if _, err := NewEntitlement("user-1", nil, EntitlementSourceCode); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

// --- Wallet Model Tests ---

func TestNewWalletEntry(t *testing.T) {
	t.Run("should assign a sortable ULID", func(t *testing.T) {
		first, err := NewWalletEntry("user-1", 100, WalletEntryTopUp, "")
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		time.Sleep(2 * time.Millisecond)
		second, err := NewWalletEntry("user-1", -50, WalletEntryPurchase, "")
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if !(first.ID < second.ID) {
			t.Errorf("expected ULIDs to sort by creation time: %s !< %s", first.ID, second.ID)
		}
	})

	t.Run("should reject zero amounts and unknown kinds", func(t *testing.T) {
		if _, err := NewWalletEntry("user-1", 0, WalletEntryTopUp, ""); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for zero amount, got %v", err)
		}
		if _, err := NewWalletEntry("user-1", 100, WalletEntryKind("bogus"), ""); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for unknown kind, got %v", err)
		}
	})
}
