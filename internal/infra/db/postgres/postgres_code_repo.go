package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"edu-platform/internal/domain"
	"edu-platform/internal/domain/model"
	"edu-platform/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.CodeRepository = (*codeRepo)(nil)

type codeRepo struct {
	pool *pgxpool.Pool
}

func NewCodeRepo(pool *pgxpool.Pool) repository.CodeRepository {
	return &codeRepo{pool: pool}
}

func (r *codeRepo) Save(ctx context.Context, tx repository.Tx, code *model.Code) error {
	if code.ID == "" {
		code.ID = uuid.NewString()
	}
	const q = `
INSERT INTO codes (id, code, package_id, grade, is_used, used_by_user_id, used_at, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`
	_, err := execSQL(ctx, r.pool, tx, q,
		code.ID, code.Code, code.PackageID, code.Grade, code.IsUsed, code.UsedByUserID, code.UsedAt, code.CreatedAt, code.ExpiresAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("save code: %w", err)
	}
	return nil
}

// FindByCode returns the row regardless of used state; the redemption
// predicate decides what "used" means to the caller.
func (r *codeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Code, error) {
	const q = `
SELECT id, code, package_id, grade, is_used, used_by_user_id, used_at, created_at, expires_at
  FROM codes
 WHERE code = $1;
`
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}
	var c model.Code
	err = row.Scan(&c.ID, &c.Code, &c.PackageID, &c.Grade, &c.IsUsed, &c.UsedByUserID, &c.UsedAt, &c.CreatedAt, &c.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &c, nil
}

// MarkUsed is the conditional write at the heart of the redemption protocol:
// the WHERE clause re-checks is_used at write time, so of any number of
// concurrent redeemers exactly one sees an affected row.
func (r *codeRepo) MarkUsed(ctx context.Context, tx repository.Tx, codeID, userID string, at time.Time) error {
	const q = `
UPDATE codes
   SET is_used = TRUE, used_by_user_id = $2, used_at = $3
 WHERE id = $1 AND is_used = FALSE;
`
	tag, err := execSQL(ctx, r.pool, tx, q, codeID, userID, at)
	if err != nil {
		return fmt.Errorf("mark code used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRedemptionConflict
	}
	return nil
}

// RevertUsed is the compensating write for a failed entitlement insert.
func (r *codeRepo) RevertUsed(ctx context.Context, tx repository.Tx, codeID string) error {
	const q = `
UPDATE codes
   SET is_used = FALSE, used_by_user_id = NULL, used_at = NULL
 WHERE id = $1;
`
	_, err := execSQL(ctx, r.pool, tx, q, codeID)
	if err != nil {
		return fmt.Errorf("revert code: %w", err)
	}
	return nil
}

func (r *codeRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Code, error) {
	const q = `
SELECT id, code, package_id, grade, is_used, used_by_user_id, used_at, created_at, expires_at
  FROM codes
 ORDER BY created_at DESC
 OFFSET $1 LIMIT $2;
`
	rows, err := pickRows(ctx, r.pool, tx, q, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list codes: %w", err)
	}
	defer rows.Close()
	var out []*model.Code
	for rows.Next() {
		var c model.Code
		if err := rows.Scan(&c.ID, &c.Code, &c.PackageID, &c.Grade, &c.IsUsed, &c.UsedByUserID, &c.UsedAt, &c.CreatedAt, &c.ExpiresAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (r *codeRepo) CountByUsed(ctx context.Context, tx repository.Tx) (int, int, error) {
	const q = `SELECT COUNT(*), COUNT(*) FILTER (WHERE is_used) FROM codes;`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return 0, 0, err
	}
	var total, used int
	if err := row.Scan(&total, &used); err != nil {
		return 0, 0, domain.ErrReadDatabaseRow
	}
	return total, used, nil
}
