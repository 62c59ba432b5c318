package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"edu-platform/internal/domain"
	"edu-platform/internal/domain/model"
	"edu-platform/internal/domain/ports/repository"
)

var _ repository.EntitlementRepository = (*entitlementRepo)(nil)

type entitlementRepo struct {
	pool *pgxpool.Pool
}

func NewEntitlementRepo(pool *pgxpool.Pool) repository.EntitlementRepository {
	return &entitlementRepo{pool: pool}
}

const entitlementColumns = `id, user_id, package_id, source, is_active, purchased_at, expires_at`

// Save inserts a new entitlement. A partial unique index on
// (user_id, package_id) WHERE is_active backs the at-most-one-active
// invariant; a violation maps to ErrAlreadyEntitled.
//
// The index has no expiry condition, so a lapsed row the sweeper has not
// flipped yet would still collide. Retire it first; only a genuinely live
// row may block the insert.
func (r *entitlementRepo) Save(ctx context.Context, tx repository.Tx, e *model.Entitlement) error {
	const retire = `
UPDATE entitlements SET is_active = FALSE
 WHERE user_id = $1 AND package_id = $2 AND is_active AND expires_at <= now();
`
	if _, err := execSQL(ctx, r.pool, tx, retire, e.UserID, e.PackageID); err != nil {
		return fmt.Errorf("retire lapsed entitlement: %w", err)
	}

	const q = `
INSERT INTO entitlements (id, user_id, package_id, source, is_active, purchased_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7);
`
	_, err := execSQL(ctx, r.pool, tx, q,
		e.ID, e.UserID, e.PackageID, e.Source, e.Active, e.PurchasedAt, e.ExpiresAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyEntitled
		}
		return fmt.Errorf("save entitlement: %w", err)
	}
	return nil
}

// FindActiveByUserAndPackage excludes expired rows in the query itself, so
// expiry is enforced at read time whether or not the sweeper has run.
func (r *entitlementRepo) FindActiveByUserAndPackage(ctx context.Context, tx repository.Tx, userID, packageID string) (*model.Entitlement, error) {
	q := `
SELECT ` + entitlementColumns + `
  FROM entitlements
 WHERE user_id = $1 AND package_id = $2 AND is_active AND expires_at > now();
`
	row, err := pickRow(ctx, r.pool, tx, q, userID, packageID)
	if err != nil {
		return nil, err
	}
	return scanEntitlement(row)
}

func (r *entitlementRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Entitlement, error) {
	q := `SELECT ` + entitlementColumns + ` FROM entitlements WHERE user_id = $1 ORDER BY purchased_at DESC;`
	rows, err := pickRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list entitlements: %w", err)
	}
	defer rows.Close()
	var out []*model.Entitlement
	for rows.Next() {
		var e model.Entitlement
		if err := rows.Scan(&e.ID, &e.UserID, &e.PackageID, &e.Source, &e.Active, &e.PurchasedAt, &e.ExpiresAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (r *entitlementRepo) Deactivate(ctx context.Context, tx repository.Tx, id string) error {
	const q = `UPDATE entitlements SET is_active = FALSE WHERE id = $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return fmt.Errorf("deactivate entitlement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *entitlementRepo) ExpireDue(ctx context.Context, tx repository.Tx, now time.Time) (int, error) {
	const q = `UPDATE entitlements SET is_active = FALSE WHERE is_active AND expires_at <= $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, now)
	if err != nil {
		return 0, fmt.Errorf("expire entitlements: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *entitlementRepo) CountActiveByPackage(ctx context.Context, tx repository.Tx) (map[string]int, error) {
	const q = `
SELECT package_id, COUNT(*)
  FROM entitlements
 WHERE is_active AND expires_at > now()
 GROUP BY package_id;
`
	rows, err := pickRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, fmt.Errorf("count active entitlements: %w", err)
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var packageID string
		var n int
		if err := rows.Scan(&packageID, &n); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out[packageID] = n
	}
	return out, rows.Err()
}

func scanEntitlement(row pgx.Row) (*model.Entitlement, error) {
	var e model.Entitlement
	err := row.Scan(&e.ID, &e.UserID, &e.PackageID, &e.Source, &e.Active, &e.PurchasedAt, &e.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &e, nil
}
