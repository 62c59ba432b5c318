//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"

	"edu-platform/internal/domain"
	"edu-platform/internal/domain/model"
)

func TestWalletRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewWalletRepo(testPool)
	userRepo := NewUserRepo(testPool)

	user, _ := model.NewUser("", "09122220000", "wallet user", "11")

	setupPrerequisites := func(t *testing.T) {
		cleanup(t)
		if err := userRepo.Save(ctx, nil, user); err != nil {
			t.Fatalf("failed to save user: %v", err)
		}
		wallet, _ := model.NewWallet(user.ID)
		if err := repo.Save(ctx, nil, wallet); err != nil {
			t.Fatalf("failed to save wallet: %v", err)
		}
	}

	t.Run("debit is conditional on the balance covering the amount", func(t *testing.T) {
		setupPrerequisites(t)

		if err := repo.Credit(ctx, nil, user.ID, 200_000); err != nil {
			t.Fatalf("Credit failed: %v", err)
		}

		if err := repo.Debit(ctx, nil, user.ID, 150_000); err != nil {
			t.Fatalf("Debit failed: %v", err)
		}

		// 50_000 left; this conditional write must affect zero rows.
		err := repo.Debit(ctx, nil, user.ID, 150_000)
		if !errors.Is(err, domain.ErrInsufficientBalance) {
			t.Fatalf("expected ErrInsufficientBalance, got: %v", err)
		}

		w, err := repo.FindByUser(ctx, nil, user.ID)
		if err != nil {
			t.Fatalf("FindByUser failed: %v", err)
		}
		if w.BalanceToman != 50_000 {
			t.Errorf("expected balance 50000, got %d", w.BalanceToman)
		}
	})

	t.Run("credit against a missing wallet fails rather than creating one", func(t *testing.T) {
		cleanup(t)

		err := repo.Credit(ctx, nil, "no-such-user", 10_000)
		if !errors.Is(err, domain.ErrWalletNotFound) {
			t.Fatalf("expected ErrWalletNotFound, got: %v", err)
		}
	})
}
