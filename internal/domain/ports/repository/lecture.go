package repository

import (
	"context"

	"edu-platform/internal/domain/model"
)

type LectureRepository interface {
	Save(ctx context.Context, tx Tx, l *model.Lecture) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Lecture, error)
	ListByPackage(ctx context.Context, tx Tx, packageID string) ([]*model.Lecture, error)
	Delete(ctx context.Context, tx Tx, id string) error
}
