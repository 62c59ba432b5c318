package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"edu-platform/internal/domain"
	"edu-platform/internal/domain/model"
	"edu-platform/internal/domain/ports/repository"
)

var _ CodeAdminUseCase = (*codeAdminUC)(nil)

// CodeAdminUseCase is the back-office side of codes: batch generation and
// reporting. Redemption itself lives in RedemptionUseCase.
type CodeAdminUseCase interface {
	// Generate creates count single-use codes bound to a package and grade.
	Generate(ctx context.Context, packageID, grade string, count int, expiresAt *time.Time) ([]*model.Code, error)
	List(ctx context.Context, offset, limit int) ([]*model.Code, error)
	Stats(ctx context.Context) (total int, used int, err error)
}

type codeAdminUC struct {
	codes    repository.CodeRepository
	packages repository.PackageRepository
	log      *zerolog.Logger
}

const maxBatchSize = 1000

func NewCodeAdminUseCase(codes repository.CodeRepository, packages repository.PackageRepository, logger *zerolog.Logger) *codeAdminUC {
	l := logger.With().Str("component", "CodeAdminUC").Logger()
	return &codeAdminUC{codes: codes, packages: packages, log: &l}
}

func (uc *codeAdminUC) Generate(ctx context.Context, packageID, grade string, count int, expiresAt *time.Time) ([]*model.Code, error) {
	if packageID == "" || grade == "" || count <= 0 || count > maxBatchSize {
		return nil, domain.ErrInvalidArgument
	}
	pkg, err := uc.packages.FindByID(ctx, nil, packageID)
	if err != nil {
		return nil, err
	}
	if pkg.Grade != grade {
		return nil, domain.ErrGradeMismatch
	}

	out := make([]*model.Code, 0, count)
	for i := 0; i < count; i++ {
		code, err := uc.generateUnique(ctx)
		if err != nil {
			return out, err
		}
		c := &model.Code{
			ID:        uuid.NewString(),
			Code:      code,
			PackageID: packageID,
			Grade:     grade,
			CreatedAt: time.Now(),
			ExpiresAt: expiresAt,
		}
		if err := uc.codes.Save(ctx, nil, c); err != nil {
			return out, err
		}
		out = append(out, c)
	}

	uc.log.Info().Str("package_id", packageID).Int("count", len(out)).Msg("code batch generated")
	return out, nil
}

// generateUnique retries on the (very unlikely) collision with an existing
// code string.
func (uc *codeAdminUC) generateUnique(ctx context.Context) (string, error) {
	for i := 0; i < 3; i++ {
		code, err := generateCode()
		if err != nil {
			return "", err
		}
		_, err = uc.codes.FindByCode(ctx, nil, code)
		if errors.Is(err, domain.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", domain.ErrAlreadyExists
}

func (uc *codeAdminUC) List(ctx context.Context, offset, limit int) ([]*model.Code, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return uc.codes.List(ctx, nil, offset, limit)
}

func (uc *codeAdminUC) Stats(ctx context.Context) (int, int, error) {
	return uc.codes.CountByUsed(ctx, nil)
}
