package usecase

import (
	"context"
	"errors"

	"edu-platform/internal/domain"
	"edu-platform/internal/domain/model"
	"edu-platform/internal/domain/ports/repository"
)

var _ LectureUseCase = (*lectureUC)(nil)

// LectureUseCase manages package content and gates student access on an
// active entitlement.
type LectureUseCase interface {
	Create(ctx context.Context, packageID, title string, kind model.LectureKind, url string, position int) (*model.Lecture, error)
	ListByPackage(ctx context.Context, packageID string) ([]*model.Lecture, error)
	// LecturesFor returns a package's lectures only when userID holds an
	// active entitlement; otherwise domain.ErrUnauthorized.
	LecturesFor(ctx context.Context, userID, packageID string) ([]*model.Lecture, error)
	Delete(ctx context.Context, id string) error
}

type lectureUC struct {
	lectures     repository.LectureRepository
	packages     repository.PackageRepository
	entitlements repository.EntitlementRepository
}

func NewLectureUseCase(lectures repository.LectureRepository, packages repository.PackageRepository, entitlements repository.EntitlementRepository) *lectureUC {
	return &lectureUC{lectures: lectures, packages: packages, entitlements: entitlements}
}

func (uc *lectureUC) Create(ctx context.Context, packageID, title string, kind model.LectureKind, url string, position int) (*model.Lecture, error) {
	if _, err := uc.packages.FindByID(ctx, nil, packageID); err != nil {
		return nil, err
	}
	l, err := model.NewLecture("", packageID, title, kind, url, position)
	if err != nil {
		return nil, err
	}
	if err := uc.lectures.Save(ctx, nil, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (uc *lectureUC) ListByPackage(ctx context.Context, packageID string) ([]*model.Lecture, error) {
	return uc.lectures.ListByPackage(ctx, nil, packageID)
}

func (uc *lectureUC) LecturesFor(ctx context.Context, userID, packageID string) ([]*model.Lecture, error) {
	if userID == "" || packageID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if _, err := uc.entitlements.FindActiveByUserAndPackage(ctx, nil, userID, packageID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return uc.lectures.ListByPackage(ctx, nil, packageID)
}

func (uc *lectureUC) Delete(ctx context.Context, id string) error {
	return uc.lectures.Delete(ctx, nil, id)
}
