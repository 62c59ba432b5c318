package usecase

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"edu-platform/internal/domain"
	"edu-platform/internal/domain/model"
	"edu-platform/internal/domain/ports/repository"
)

var _ UserUseCase = (*userUC)(nil)

type UserUseCase interface {
	// Register creates the user together with a zero-balance wallet. The two
	// inserts share one transaction so a user can never exist without a wallet.
	Register(ctx context.Context, phone, name, grade string) (*model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
	GetByPhone(ctx context.Context, phone string) (*model.User, error)
	List(ctx context.Context, offset, limit int) ([]*model.User, error)
	Count(ctx context.Context) (int, error)
}

type userUC struct {
	users   repository.UserRepository
	wallets repository.WalletRepository
	tm      repository.TransactionManager
	log     *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, wallets repository.WalletRepository, tm repository.TransactionManager, logger *zerolog.Logger) *userUC {
	l := logger.With().Str("component", "UserUC").Logger()
	return &userUC{users: users, wallets: wallets, tm: tm, log: &l}
}

func (uc *userUC) Register(ctx context.Context, phone, name, grade string) (*model.User, error) {
	user, err := model.NewUser("", phone, name, grade)
	if err != nil {
		return nil, err
	}
	if existing, err := uc.users.FindByPhone(ctx, nil, phone); err == nil && !existing.IsZero() {
		return nil, domain.ErrAlreadyExists
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	wallet, err := model.NewWallet(user.ID)
	if err != nil {
		return nil, err
	}
	err = uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := uc.users.Save(ctx, tx, user); err != nil {
			return err
		}
		return uc.wallets.Save(ctx, tx, wallet)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("user_id", user.ID).Str("grade", grade).Msg("user registered")
	return user, nil
}

func (uc *userUC) Get(ctx context.Context, id string) (*model.User, error) {
	return uc.users.FindByID(ctx, nil, id)
}

func (uc *userUC) GetByPhone(ctx context.Context, phone string) (*model.User, error) {
	return uc.users.FindByPhone(ctx, nil, phone)
}

func (uc *userUC) List(ctx context.Context, offset, limit int) ([]*model.User, error) {
	return uc.users.List(ctx, nil, offset, limit)
}

func (uc *userUC) Count(ctx context.Context) (int, error) {
	return uc.users.CountUsers(ctx, nil)
}
