package repository

import (
	"context"

	"edu-platform/internal/domain/model"
)

// WalletRepository is the port for per-user balances. Debit and Credit are
// atomic relative-value updates; callers must never read a balance and write
// it back blindly.
type WalletRepository interface {
	// Save creates the wallet row (registration time only).
	Save(ctx context.Context, tx Tx, w *model.Wallet) error
	FindByUser(ctx context.Context, tx Tx, userID string) (*model.Wallet, error)
	// Debit subtracts amount, conditioned on the balance still covering it at
	// write time. Returns domain.ErrInsufficientBalance when the conditional
	// update affects zero rows.
	Debit(ctx context.Context, tx Tx, userID string, amountToman int64) error
	// Credit adds amount unconditionally (top-ups and refunds).
	Credit(ctx context.Context, tx Tx, userID string, amountToman int64) error
}

// WalletEntryRepository is the port for the append-only wallet ledger.
type WalletEntryRepository interface {
	Save(ctx context.Context, tx Tx, e *model.WalletEntry) error
	ListByUser(ctx context.Context, tx Tx, userID string, limit int) ([]*model.WalletEntry, error)
	// SumPurchases returns the total of purchase debits (as a positive number),
	// i.e. wallet revenue.
	SumPurchases(ctx context.Context, tx Tx) (int64, error)
}
