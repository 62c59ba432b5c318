package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"edu-platform/internal/domain"
	"edu-platform/internal/domain/model"
	"edu-platform/internal/domain/ports/repository"
)

var _ repository.WalletEntryRepository = (*walletEntryRepo)(nil)

type walletEntryRepo struct {
	pool *pgxpool.Pool
}

func NewWalletEntryRepo(pool *pgxpool.Pool) repository.WalletEntryRepository {
	return &walletEntryRepo{pool: pool}
}

func (r *walletEntryRepo) Save(ctx context.Context, tx repository.Tx, e *model.WalletEntry) error {
	const q = `
INSERT INTO wallet_entries (id, user_id, amount_toman, kind, note, created_at)
VALUES ($1, $2, $3, $4, $5, $6);
`
	_, err := execSQL(ctx, r.pool, tx, q, e.ID, e.UserID, e.AmountToman, e.Kind, e.Note, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("save wallet entry: %w", err)
	}
	return nil
}

func (r *walletEntryRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.WalletEntry, error) {
	const q = `
SELECT id, user_id, amount_toman, kind, note, created_at
  FROM wallet_entries
 WHERE user_id = $1
 ORDER BY id DESC
 LIMIT $2;
`
	rows, err := pickRows(ctx, r.pool, tx, q, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list wallet entries: %w", err)
	}
	defer rows.Close()
	var out []*model.WalletEntry
	for rows.Next() {
		var e model.WalletEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.AmountToman, &e.Kind, &e.Note, &e.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (r *walletEntryRepo) SumPurchases(ctx context.Context, tx repository.Tx) (int64, error) {
	const q = `
SELECT COALESCE(SUM(-amount_toman), 0)
  FROM wallet_entries
 WHERE kind = 'purchase';
`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return 0, err
	}
	var sum int64
	if err := row.Scan(&sum); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return sum, nil
}
