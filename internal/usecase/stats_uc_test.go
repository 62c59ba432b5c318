//go:build !integration

package usecase_test

import (
	"context"
	"testing"
	"time"

	"edu-platform/internal/domain/model"
	"edu-platform/internal/usecase"
)

func TestStatsUseCase_Totals(t *testing.T) {
	ctx := context.Background()

	users := NewMockUserRepo()
	ents := NewMockEntitlementRepo()
	entries := NewMockWalletEntryRepo()
	codes := NewMockCodeRepo()
	recons := NewMockReconciliationRepo()
	uc := usecase.NewStatsUseCase(users, ents, entries, codes, recons)

	users.Save(ctx, nil, &model.User{ID: "user-1", Phone: "0912", Grade: "12"})
	users.Save(ctx, nil, &model.User{ID: "user-2", Phone: "0913", Grade: "11"})
	ents.Save(ctx, nil, &model.Entitlement{ID: "e1", UserID: "user-1", PackageID: "pkg-1", Active: true, ExpiresAt: time.Now().Add(time.Hour)})
	entries.Save(ctx, nil, &model.WalletEntry{ID: "w1", UserID: "user-1", AmountToman: -150_000, Kind: model.WalletEntryPurchase})
	entries.Save(ctx, nil, &model.WalletEntry{ID: "w2", UserID: "user-1", AmountToman: 200_000, Kind: model.WalletEntryTopUp})
	codes.Save(ctx, nil, &model.Code{ID: "c1", Code: "AAAA-AAAA-AAAA", PackageID: "pkg-1", Grade: "12", IsUsed: true})
	codes.Save(ctx, nil, &model.Code{ID: "c2", Code: "BBBB-BBBB-BBBB", PackageID: "pkg-1", Grade: "12"})
	recons.Save(ctx, nil, model.NewReconciliation(model.ReconciliationCodeRevert, "user-1", "test"))

	totals, err := uc.Totals(ctx)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if totals.Users != 2 {
		t.Errorf("expected 2 users, got %d", totals.Users)
	}
	if totals.ActiveByPackage["pkg-1"] != 1 {
		t.Errorf("expected 1 active entitlement for pkg-1, got %d", totals.ActiveByPackage["pkg-1"])
	}
	if totals.WalletRevenueToman != 150_000 {
		t.Errorf("expected revenue 150000 (top-ups excluded), got %d", totals.WalletRevenueToman)
	}
	if totals.CodesIssued != 2 || totals.CodesUsed != 1 {
		t.Errorf("expected 2 issued / 1 used, got %d / %d", totals.CodesIssued, totals.CodesUsed)
	}
	if totals.OpenReconciliations != 1 {
		t.Errorf("expected 1 open reconciliation, got %d", totals.OpenReconciliations)
	}
}
