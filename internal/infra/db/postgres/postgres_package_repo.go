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

var _ repository.PackageRepository = (*packageRepo)(nil)

type packageRepo struct {
	pool *pgxpool.Pool
}

func NewPackageRepo(pool *pgxpool.Pool) repository.PackageRepository {
	return &packageRepo{pool: pool}
}

const packageColumns = `id, name, price_toman, duration_days, grade, is_active, created_at`

func (r *packageRepo) Save(ctx context.Context, tx repository.Tx, pkg *model.Package) error {
	const q = `
INSERT INTO packages (id, name, price_toman, duration_days, grade, is_active, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE
  SET name          = EXCLUDED.name,
      price_toman   = EXCLUDED.price_toman,
      duration_days = EXCLUDED.duration_days,
      grade         = EXCLUDED.grade,
      is_active     = EXCLUDED.is_active;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		pkg.ID, pkg.Name, pkg.PriceToman, pkg.DurationDays, pkg.Grade, pkg.Active, pkg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save package: %w", err)
	}
	return nil
}

func (r *packageRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Package, error) {
	q := `SELECT ` + packageColumns + ` FROM packages WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanPackage(row)
}

func (r *packageRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Package, error) {
	q := `SELECT ` + packageColumns + ` FROM packages ORDER BY created_at;`
	rows, err := pickRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	return scanPackages(rows)
}

func (r *packageRepo) ListByGrade(ctx context.Context, tx repository.Tx, grade string) ([]*model.Package, error) {
	q := `SELECT ` + packageColumns + ` FROM packages WHERE grade = $1 AND is_active ORDER BY created_at;`
	rows, err := pickRows(ctx, r.pool, tx, q, grade)
	if err != nil {
		return nil, fmt.Errorf("list packages by grade: %w", err)
	}
	return scanPackages(rows)
}

func (r *packageRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	// Soft delete: entitlements and codes keep referencing the row.
	const q = `UPDATE packages SET is_active = FALSE WHERE id = $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return fmt.Errorf("delete package: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanPackage(row pgx.Row) (*model.Package, error) {
	var p model.Package
	err := row.Scan(&p.ID, &p.Name, &p.PriceToman, &p.DurationDays, &p.Grade, &p.Active, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &p, nil
}

func scanPackages(rows pgx.Rows) ([]*model.Package, error) {
	defer rows.Close()
	var out []*model.Package
	for rows.Next() {
		var p model.Package
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceToman, &p.DurationDays, &p.Grade, &p.Active, &p.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
