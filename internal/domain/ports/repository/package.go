package repository

import (
	"context"

	"edu-platform/internal/domain/model"
)

// PackageRepository is the port for package persistence.
type PackageRepository interface {
	Save(ctx context.Context, tx Tx, pkg *model.Package) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Package, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Package, error)
	ListByGrade(ctx context.Context, tx Tx, grade string) ([]*model.Package, error)
	Delete(ctx context.Context, tx Tx, id string) error
}
