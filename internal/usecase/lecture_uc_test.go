//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"edu-platform/internal/domain"
	"edu-platform/internal/domain/model"
	"edu-platform/internal/usecase"
)

func TestLectureUseCase_LecturesFor(t *testing.T) {
	ctx := context.Background()

	newFixture := func() (*MockEntitlementRepo, usecase.LectureUseCase) {
		lectures := NewMockLectureRepo()
		packages := NewMockPackageRepo()
		ents := NewMockEntitlementRepo()
		packages.Save(ctx, nil, &model.Package{ID: "pkg-1", Name: "Math", PriceToman: 100, DurationDays: 30, Grade: "12", Active: true})
		lectures.Save(ctx, nil, &model.Lecture{ID: "lec-1", PackageID: "pkg-1", Title: "Limits", Kind: model.LectureKindVideo, URL: "https://cdn/limits.mp4"})
		return ents, usecase.NewLectureUseCase(lectures, packages, ents)
	}

	t.Run("returns lectures for an entitled user", func(t *testing.T) {
		ents, uc := newFixture()
		ents.Save(ctx, nil, &model.Entitlement{
			ID: "ent-1", UserID: "user-1", PackageID: "pkg-1", Active: true,
			ExpiresAt: time.Now().Add(24 * time.Hour),
		})

		out, err := uc.LecturesFor(ctx, "user-1", "pkg-1")
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if len(out) != 1 || out[0].Title != "Limits" {
			t.Errorf("unexpected lectures: %+v", out)
		}
	})

	t.Run("denies a user without an entitlement", func(t *testing.T) {
		_, uc := newFixture()

		_, err := uc.LecturesFor(ctx, "user-1", "pkg-1")
		if !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got: %v", err)
		}
	})

	t.Run("denies once the entitlement window has passed", func(t *testing.T) {
		ents, uc := newFixture()
		// Sweeper has not run yet; the row still says active.
		ents.Save(ctx, nil, &model.Entitlement{
			ID: "ent-1", UserID: "user-1", PackageID: "pkg-1", Active: true,
			ExpiresAt: time.Now().Add(-time.Minute),
		})

		_, err := uc.LecturesFor(ctx, "user-1", "pkg-1")
		if !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got: %v", err)
		}
	})
}
