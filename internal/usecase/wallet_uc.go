package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"edu-platform/internal/domain"
	"edu-platform/internal/domain/model"
	"edu-platform/internal/domain/ports/repository"
	"edu-platform/internal/infra/metrics"
)

var _ WalletUseCase = (*walletUC)(nil)

type WalletUseCase interface {
	// TopUp credits an existing wallet (admin operation).
	TopUp(ctx context.Context, userID string, amountToman int64, note string) (*model.Wallet, error)
	Balance(ctx context.Context, userID string) (*model.Wallet, error)
	History(ctx context.Context, userID string, limit int) ([]*model.WalletEntry, error)
}

type walletUC struct {
	wallets repository.WalletRepository
	entries repository.WalletEntryRepository
	log     *zerolog.Logger
}

func NewWalletUseCase(wallets repository.WalletRepository, entries repository.WalletEntryRepository, logger *zerolog.Logger) *walletUC {
	l := logger.With().Str("component", "WalletUC").Logger()
	return &walletUC{wallets: wallets, entries: entries, log: &l}
}

func (uc *walletUC) TopUp(ctx context.Context, userID string, amountToman int64, note string) (*model.Wallet, error) {
	if userID == "" || amountToman <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	// Top-ups never create wallets; absence means registration is broken.
	if _, err := uc.wallets.FindByUser(ctx, nil, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrWalletNotFound
		}
		return nil, err
	}
	if err := uc.wallets.Credit(ctx, nil, userID, amountToman); err != nil {
		return nil, err
	}
	entry, err := model.NewWalletEntry(userID, amountToman, model.WalletEntryTopUp, note)
	if err == nil {
		err = uc.entries.Save(ctx, nil, entry)
	}
	if err != nil {
		uc.log.Warn().Err(err).Str("user_id", userID).Msg("top-up ledger entry not recorded")
	}

	metrics.AddWalletTopUp(amountToman)
	uc.log.Info().Str("user_id", userID).Int64("amount_toman", amountToman).Msg("wallet topped up")
	return uc.wallets.FindByUser(ctx, nil, userID)
}

func (uc *walletUC) Balance(ctx context.Context, userID string) (*model.Wallet, error) {
	return uc.wallets.FindByUser(ctx, nil, userID)
}

func (uc *walletUC) History(ctx context.Context, userID string, limit int) ([]*model.WalletEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	return uc.entries.ListByUser(ctx, nil, userID, limit)
}
