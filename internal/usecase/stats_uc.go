package usecase

import (
	"context"

	"edu-platform/internal/domain/ports/repository"
)

var _ StatsUseCase = (*statsUC)(nil)

// Totals is the admin dashboard snapshot.
type Totals struct {
	Users               int
	ActiveByPackage     map[string]int
	WalletRevenueToman  int64
	CodesIssued         int
	CodesUsed           int
	OpenReconciliations int
}

type StatsUseCase interface {
	Totals(ctx context.Context) (*Totals, error)
}

type statsUC struct {
	users        repository.UserRepository
	entitlements repository.EntitlementRepository
	entries      repository.WalletEntryRepository
	codes        repository.CodeRepository
	recons       repository.ReconciliationRepository
}

func NewStatsUseCase(
	users repository.UserRepository,
	entitlements repository.EntitlementRepository,
	entries repository.WalletEntryRepository,
	codes repository.CodeRepository,
	recons repository.ReconciliationRepository,
) *statsUC {
	return &statsUC{users: users, entitlements: entitlements, entries: entries, codes: codes, recons: recons}
}

func (uc *statsUC) Totals(ctx context.Context) (*Totals, error) {
	users, err := uc.users.CountUsers(ctx, nil)
	if err != nil {
		return nil, err
	}
	active, err := uc.entitlements.CountActiveByPackage(ctx, nil)
	if err != nil {
		return nil, err
	}
	revenue, err := uc.entries.SumPurchases(ctx, nil)
	if err != nil {
		return nil, err
	}
	total, used, err := uc.codes.CountByUsed(ctx, nil)
	if err != nil {
		return nil, err
	}
	open, err := uc.recons.ListOpen(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Totals{
		Users:               users,
		ActiveByPackage:     active,
		WalletRevenueToman:  revenue,
		CodesIssued:         total,
		CodesUsed:           used,
		OpenReconciliations: len(open),
	}, nil
}
