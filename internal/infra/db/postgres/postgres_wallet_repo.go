package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"edu-platform/internal/domain"
	"edu-platform/internal/domain/model"
	"edu-platform/internal/domain/ports/repository"
)

var _ repository.WalletRepository = (*walletRepo)(nil)

type walletRepo struct {
	pool *pgxpool.Pool
}

func NewWalletRepo(pool *pgxpool.Pool) repository.WalletRepository {
	return &walletRepo{pool: pool}
}

func (r *walletRepo) Save(ctx context.Context, tx repository.Tx, w *model.Wallet) error {
	const q = `
INSERT INTO wallets (user_id, balance_toman, updated_at)
VALUES ($1, $2, $3);
`
	_, err := execSQL(ctx, r.pool, tx, q, w.UserID, w.BalanceToman, w.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("save wallet: %w", err)
	}
	return nil
}

func (r *walletRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Wallet, error) {
	const q = `SELECT user_id, balance_toman, updated_at FROM wallets WHERE user_id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, err
	}
	var w model.Wallet
	if err := row.Scan(&w.UserID, &w.BalanceToman, &w.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &w, nil
}

// Debit re-checks the balance in the WHERE clause, so two concurrent
// purchases cannot take the observable balance below zero: the loser's update
// affects zero rows.
func (r *walletRepo) Debit(ctx context.Context, tx repository.Tx, userID string, amountToman int64) error {
	const q = `
UPDATE wallets
   SET balance_toman = balance_toman - $2, updated_at = now()
 WHERE user_id = $1 AND balance_toman >= $2;
`
	tag, err := execSQL(ctx, r.pool, tx, q, userID, amountToman)
	if err != nil {
		return fmt.Errorf("debit wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientBalance
	}
	return nil
}

// Credit is a relative update so it composes with concurrent debits and
// top-ups; it must never be implemented as "write back an absolute balance".
func (r *walletRepo) Credit(ctx context.Context, tx repository.Tx, userID string, amountToman int64) error {
	const q = `
UPDATE wallets
   SET balance_toman = balance_toman + $2, updated_at = now()
 WHERE user_id = $1;
`
	tag, err := execSQL(ctx, r.pool, tx, q, userID, amountToman)
	if err != nil {
		return fmt.Errorf("credit wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWalletNotFound
	}
	return nil
}
