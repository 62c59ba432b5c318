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

var _ repository.LectureRepository = (*lectureRepo)(nil)

type lectureRepo struct {
	pool *pgxpool.Pool
}

func NewLectureRepo(pool *pgxpool.Pool) repository.LectureRepository {
	return &lectureRepo{pool: pool}
}

const lectureColumns = `id, package_id, title, kind, url, pos, created_at`

func (r *lectureRepo) Save(ctx context.Context, tx repository.Tx, l *model.Lecture) error {
	const q = `
INSERT INTO lectures (id, package_id, title, kind, url, pos, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE
  SET title    = EXCLUDED.title,
      kind     = EXCLUDED.kind,
      url      = EXCLUDED.url,
      pos      = EXCLUDED.pos;
`
	_, err := execSQL(ctx, r.pool, tx, q, l.ID, l.PackageID, l.Title, l.Kind, l.URL, l.Position, l.CreatedAt)
	if err != nil {
		return fmt.Errorf("save lecture: %w", err)
	}
	return nil
}

func (r *lectureRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Lecture, error) {
	q := `SELECT ` + lectureColumns + ` FROM lectures WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	var l model.Lecture
	if err := row.Scan(&l.ID, &l.PackageID, &l.Title, &l.Kind, &l.URL, &l.Position, &l.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &l, nil
}

func (r *lectureRepo) ListByPackage(ctx context.Context, tx repository.Tx, packageID string) ([]*model.Lecture, error) {
	q := `SELECT ` + lectureColumns + ` FROM lectures WHERE package_id = $1 ORDER BY pos;`
	rows, err := pickRows(ctx, r.pool, tx, q, packageID)
	if err != nil {
		return nil, fmt.Errorf("list lectures: %w", err)
	}
	defer rows.Close()
	var out []*model.Lecture
	for rows.Next() {
		var l model.Lecture
		if err := rows.Scan(&l.ID, &l.PackageID, &l.Title, &l.Kind, &l.URL, &l.Position, &l.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

func (r *lectureRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	tag, err := execSQL(ctx, r.pool, tx, `DELETE FROM lectures WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete lecture: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
