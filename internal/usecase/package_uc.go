package usecase

import (
	"context"

	"edu-platform/internal/domain/model"
	"edu-platform/internal/domain/ports/repository"
)

var _ PackageUseCase = (*packageUC)(nil)

// PackageUseCase manages the package catalog.
type PackageUseCase interface {
	Create(ctx context.Context, name string, priceToman int64, durationDays int, grade string) (*model.Package, error)
	Update(ctx context.Context, pkg *model.Package) error
	Get(ctx context.Context, id string) (*model.Package, error)
	ListAll(ctx context.Context) ([]*model.Package, error)
	ListByGrade(ctx context.Context, grade string) ([]*model.Package, error)
	Delete(ctx context.Context, id string) error
}

type packageUC struct {
	repo repository.PackageRepository
}

func NewPackageUseCase(repo repository.PackageRepository) *packageUC {
	return &packageUC{repo: repo}
}

func (uc *packageUC) Create(ctx context.Context, name string, priceToman int64, durationDays int, grade string) (*model.Package, error) {
	pkg, err := model.NewPackage("", name, priceToman, durationDays, grade)
	if err != nil {
		return nil, err
	}
	if err := uc.repo.Save(ctx, nil, pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

func (uc *packageUC) Update(ctx context.Context, pkg *model.Package) error {
	if _, err := model.NewPackage(pkg.ID, pkg.Name, pkg.PriceToman, pkg.DurationDays, pkg.Grade); err != nil {
		return err
	}
	return uc.repo.Save(ctx, nil, pkg)
}

func (uc *packageUC) Get(ctx context.Context, id string) (*model.Package, error) {
	return uc.repo.FindByID(ctx, nil, id)
}

func (uc *packageUC) ListAll(ctx context.Context) ([]*model.Package, error) {
	return uc.repo.ListAll(ctx, nil)
}

func (uc *packageUC) ListByGrade(ctx context.Context, grade string) ([]*model.Package, error) {
	return uc.repo.ListByGrade(ctx, nil, grade)
}

func (uc *packageUC) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, nil, id)
}
