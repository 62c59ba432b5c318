//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"edu-platform/internal/domain"
	"edu-platform/internal/domain/model"
)

func TestCodeRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewCodeRepo(testPool)
	userRepo := NewUserRepo(testPool)
	packageRepo := NewPackageRepo(testPool)

	user, _ := model.NewUser("", "09121110000", "code user", "12")
	pkg, _ := model.NewPackage("", "Math", 100_000, 90, "12")

	setupPrerequisites := func(t *testing.T) {
		cleanup(t)
		if err := userRepo.Save(ctx, nil, user); err != nil {
			t.Fatalf("failed to save user: %v", err)
		}
		if err := packageRepo.Save(ctx, nil, pkg); err != nil {
			t.Fatalf("failed to save package: %v", err)
		}
	}

	t.Run("should save, find, and mark a code used exactly once", func(t *testing.T) {
		setupPrerequisites(t)

		code := &model.Code{
			ID:        uuid.NewString(),
			Code:      "TEST-CODE-0001",
			PackageID: pkg.ID,
			Grade:     "12",
			CreatedAt: time.Now(),
		}
		if err := repo.Save(ctx, nil, code); err != nil {
			t.Fatalf("Failed to save code: %v", err)
		}

		found, err := repo.FindByCode(ctx, nil, "TEST-CODE-0001")
		if err != nil {
			t.Fatalf("FindByCode failed: %v", err)
		}
		if found.IsUsed {
			t.Error("expected a fresh code to be unused")
		}

		if err := repo.MarkUsed(ctx, nil, code.ID, user.ID, time.Now()); err != nil {
			t.Fatalf("MarkUsed failed: %v", err)
		}

		// The second conditional write must affect zero rows.
		err = repo.MarkUsed(ctx, nil, code.ID, user.ID, time.Now())
		if !errors.Is(err, domain.ErrRedemptionConflict) {
			t.Fatalf("expected ErrRedemptionConflict on double mark, got: %v", err)
		}

		found, _ = repo.FindByCode(ctx, nil, "TEST-CODE-0001")
		if !found.IsUsed || found.UsedByUserID == nil || *found.UsedByUserID != user.ID {
			t.Errorf("expected the code to be used by %s, got %+v", user.ID, found)
		}
	})

	t.Run("should revert a used code back to unused", func(t *testing.T) {
		setupPrerequisites(t)

		code := &model.Code{
			ID:        uuid.NewString(),
			Code:      "TEST-CODE-0002",
			PackageID: pkg.ID,
			Grade:     "12",
			CreatedAt: time.Now(),
		}
		if err := repo.Save(ctx, nil, code); err != nil {
			t.Fatalf("Failed to save code: %v", err)
		}
		if err := repo.MarkUsed(ctx, nil, code.ID, user.ID, time.Now()); err != nil {
			t.Fatalf("MarkUsed failed: %v", err)
		}

		if err := repo.RevertUsed(ctx, nil, code.ID); err != nil {
			t.Fatalf("RevertUsed failed: %v", err)
		}

		found, _ := repo.FindByCode(ctx, nil, "TEST-CODE-0002")
		if found.IsUsed || found.UsedByUserID != nil || found.UsedAt != nil {
			t.Errorf("expected a clean unused code after revert, got %+v", found)
		}

		// A reverted code is redeemable again.
		if err := repo.MarkUsed(ctx, nil, code.ID, user.ID, time.Now()); err != nil {
			t.Errorf("expected a reverted code to be markable again, got: %v", err)
		}
	})

	t.Run("should count issued and used codes", func(t *testing.T) {
		setupPrerequisites(t)

		for i, s := range []string{"CNT-0001", "CNT-0002", "CNT-0003"} {
			c := &model.Code{ID: uuid.NewString(), Code: s, PackageID: pkg.ID, Grade: "12", CreatedAt: time.Now()}
			if err := repo.Save(ctx, nil, c); err != nil {
				t.Fatalf("save %d: %v", i, err)
			}
			if i == 0 {
				if err := repo.MarkUsed(ctx, nil, c.ID, user.ID, time.Now()); err != nil {
					t.Fatalf("mark used: %v", err)
				}
			}
		}

		total, used, err := repo.CountByUsed(ctx, nil)
		if err != nil {
			t.Fatalf("CountByUsed failed: %v", err)
		}
		if total != 3 || used != 1 {
			t.Errorf("expected total=3 used=1, got total=%d used=%d", total, used)
		}
	})
}
