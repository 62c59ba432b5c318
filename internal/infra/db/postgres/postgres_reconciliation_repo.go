package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"edu-platform/internal/domain"
	"edu-platform/internal/domain/model"
	"edu-platform/internal/domain/ports/repository"
)

var _ repository.ReconciliationRepository = (*reconciliationRepo)(nil)

type reconciliationRepo struct {
	pool *pgxpool.Pool
}

func NewReconciliationRepo(pool *pgxpool.Pool) repository.ReconciliationRepository {
	return &reconciliationRepo{pool: pool}
}

func (r *reconciliationRepo) Save(ctx context.Context, tx repository.Tx, rec *model.Reconciliation) error {
	const q = `
INSERT INTO reconciliations (id, kind, user_id, code_id, amount_toman, reason, resolved, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`
	_, err := execSQL(ctx, r.pool, tx, q,
		rec.ID, rec.Kind, rec.UserID, rec.CodeID, rec.AmountToman, rec.Reason, rec.Resolved, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save reconciliation: %w", err)
	}
	return nil
}

func (r *reconciliationRepo) ListOpen(ctx context.Context, tx repository.Tx) ([]*model.Reconciliation, error) {
	const q = `
SELECT id, kind, user_id, code_id, amount_toman, reason, resolved, created_at
  FROM reconciliations
 WHERE NOT resolved
 ORDER BY created_at;
`
	rows, err := pickRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, fmt.Errorf("list reconciliations: %w", err)
	}
	defer rows.Close()
	var out []*model.Reconciliation
	for rows.Next() {
		var rec model.Reconciliation
		if err := rows.Scan(&rec.ID, &rec.Kind, &rec.UserID, &rec.CodeID, &rec.AmountToman, &rec.Reason, &rec.Resolved, &rec.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (r *reconciliationRepo) Resolve(ctx context.Context, tx repository.Tx, id string) error {
	tag, err := execSQL(ctx, r.pool, tx, `UPDATE reconciliations SET resolved = TRUE WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("resolve reconciliation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
