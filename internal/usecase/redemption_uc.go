package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"edu-platform/internal/domain"
	"edu-platform/internal/domain/model"
	"edu-platform/internal/domain/ports/repository"
	"edu-platform/internal/infra/metrics"
)

// Compile-time check
var _ RedemptionUseCase = (*redemptionUC)(nil)

// RedemptionUseCase is the entitlement redemption protocol: it applies a code
// or a wallet payment against a package, creating a new active entitlement or
// failing cleanly with all state unchanged.
//
// There are no multi-statement transactions here on purpose. Mutual exclusion
// comes from conditional single-row updates (mark-used, debit); the two-step
// write sequences compensate on partial failure and leave a durable
// reconciliation marker when the compensation itself fails.
type RedemptionUseCase interface {
	// RedeemWithCode consumes a single-use code and grants its package.
	RedeemWithCode(ctx context.Context, userID, code, packageID string) (*model.Entitlement, error)
	// PurchaseWithWallet debits the user's wallet by expectedPrice and grants
	// the package. Returns the new balance alongside the entitlement.
	PurchaseWithWallet(ctx context.Context, userID, packageID string, expectedPrice int64) (*model.Entitlement, int64, error)
	// ValidateCode runs the exact redeem predicate without mutating anything.
	ValidateCode(ctx context.Context, userID, code, packageID string) (*model.Code, error)
}

// InsufficientBalanceError carries the shortfall so the caller can tell the
// user how much is missing. It unwraps to domain.ErrInsufficientBalance.
type InsufficientBalanceError struct {
	Shortfall int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient wallet balance: %d Toman short", e.Shortfall)
}

func (e *InsufficientBalanceError) Unwrap() error { return domain.ErrInsufficientBalance }

type redemptionUC struct {
	users        repository.UserRepository
	codes        repository.CodeRepository
	packages     repository.PackageRepository
	wallets      repository.WalletRepository
	entries      repository.WalletEntryRepository
	entitlements repository.EntitlementRepository
	recons       repository.ReconciliationRepository
	log          *zerolog.Logger
}

// mutationTimeout bounds the detached write phase; it is independent of the
// caller's context so a client disconnect cannot strand a half-applied
// sequence without its compensation path.
const mutationTimeout = 15 * time.Second

func NewRedemptionUseCase(
	users repository.UserRepository,
	codes repository.CodeRepository,
	packages repository.PackageRepository,
	wallets repository.WalletRepository,
	entries repository.WalletEntryRepository,
	entitlements repository.EntitlementRepository,
	recons repository.ReconciliationRepository,
	logger *zerolog.Logger,
) *redemptionUC {
	l := logger.With().Str("component", "RedemptionUC").Logger()
	return &redemptionUC{
		users:        users,
		codes:        codes,
		packages:     packages,
		wallets:      wallets,
		entries:      entries,
		entitlements: entitlements,
		recons:       recons,
		log:          &l,
	}
}

// checkRedeemable is the single predicate shared by ValidateCode and
// RedeemWithCode. Keeping it in one place guarantees the read-only precheck
// and the mutating path can never disagree.
func (uc *redemptionUC) checkRedeemable(ctx context.Context, user *model.User, codeStr, packageID string) (*model.Code, *model.Package, error) {
	code, err := uc.codes.FindByCode(ctx, nil, codeStr)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrCodeNotFound
		}
		return nil, nil, err
	}
	if code.IsUsed {
		return nil, nil, domain.ErrCodeAlreadyUsed
	}
	if code.Expired(time.Now()) {
		return nil, nil, domain.ErrCodeExpired
	}
	if code.PackageID != packageID {
		return nil, nil, domain.ErrCodePackageMismatch
	}
	pkg, err := uc.packages.FindByID(ctx, nil, packageID)
	if err != nil {
		return nil, nil, err
	}
	// Both the code's grade and the package's own grade must agree with the
	// caller's. The package check is redundant as long as codes are generated
	// against their package's grade, but kept as defense in depth.
	if code.Grade != user.Grade || pkg.Grade != user.Grade {
		return nil, nil, domain.ErrGradeMismatch
	}
	if !pkg.Active {
		return nil, nil, domain.ErrPackageInactive
	}
	if _, err := uc.entitlements.FindActiveByUserAndPackage(ctx, nil, user.ID, packageID); err == nil {
		return nil, nil, domain.ErrAlreadyEntitled
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, nil, err
	}
	return code, pkg, nil
}

func (uc *redemptionUC) resolveUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := uc.users.FindByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if user.Grade == "" {
		// Profile incomplete; redemption needs a resolved grade.
		return nil, domain.ErrInvalidArgument
	}
	return user, nil
}

func (uc *redemptionUC) ValidateCode(ctx context.Context, userID, code, packageID string) (*model.Code, error) {
	if userID == "" || code == "" || packageID == "" {
		return nil, domain.ErrInvalidArgument
	}
	user, err := uc.resolveUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	c, _, err := uc.checkRedeemable(ctx, user, code, packageID)
	return c, err
}

func (uc *redemptionUC) RedeemWithCode(ctx context.Context, userID, codeStr, packageID string) (*model.Entitlement, error) {
	if userID == "" || codeStr == "" || packageID == "" {
		return nil, domain.ErrInvalidArgument
	}
	user, err := uc.resolveUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	code, pkg, err := uc.checkRedeemable(ctx, user, codeStr, packageID)
	if err != nil {
		metrics.IncRedemption("code", "rejected")
		return nil, err
	}

	// Detach from the caller from here on: once the code is marked used the
	// sequence must run to its own completion or failure path.
	mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mutationTimeout)
	defer cancel()

	now := time.Now()
	if err := uc.codes.MarkUsed(mctx, nil, code.ID, user.ID, now); err != nil {
		if errors.Is(err, domain.ErrRedemptionConflict) {
			// Another request consumed the code between the read and the
			// conditional write. From the caller's perspective it is simply
			// already used.
			metrics.IncRedemptionConflict("code")
			return nil, domain.ErrCodeAlreadyUsed
		}
		return nil, err
	}

	ent, err := model.NewEntitlement(user.ID, pkg, model.EntitlementSourceCode)
	if err != nil {
		if cerr := uc.compensateCode(mctx, code.ID, user.ID, err); cerr != nil {
			return nil, cerr
		}
		return nil, err
	}
	if err := uc.entitlements.Save(mctx, nil, ent); err != nil {
		if cerr := uc.compensateCode(mctx, code.ID, user.ID, err); cerr != nil {
			return nil, cerr
		}
		if errors.Is(err, domain.ErrAlreadyEntitled) {
			return nil, domain.ErrAlreadyEntitled
		}
		return nil, fmt.Errorf("insert entitlement: %w", err)
	}

	metrics.IncRedemption("code", "success")
	uc.log.Info().
		Str("user_id", user.ID).
		Str("code_id", code.ID).
		Str("package_id", pkg.ID).
		Time("expires_at", ent.ExpiresAt).
		Msg("code redeemed")
	return ent, nil
}

// compensateCode reverts a code to unused after the entitlement insert failed.
// If the revert fails too, it writes a reconciliation marker and escalates to
// ErrInconsistentState; that error must never be swallowed into a generic
// failure.
func (uc *redemptionUC) compensateCode(ctx context.Context, codeID, userID string, cause error) error {
	err := uc.codes.RevertUsed(ctx, nil, codeID)
	if err == nil {
		uc.log.Warn().
			Str("code_id", codeID).
			AnErr("cause", cause).
			Msg("entitlement insert failed; code reverted to unused")
		return nil
	}

	metrics.IncCompensationFailure("code_revert")
	rec := model.NewReconciliation(model.ReconciliationCodeRevert, userID,
		fmt.Sprintf("code marked used but entitlement insert failed: %v; revert failed: %v", cause, err))
	rec.CodeID = &codeID
	if rerr := uc.recons.Save(ctx, nil, rec); rerr != nil {
		uc.log.Error().Str("code_id", codeID).AnErr("revert_err", err).AnErr("marker_err", rerr).
			Msg("INCONSISTENT STATE: code used without entitlement and no reconciliation marker")
	} else {
		uc.log.Error().Str("code_id", codeID).Str("reconciliation_id", rec.ID).AnErr("revert_err", err).
			Msg("INCONSISTENT STATE: code used without entitlement; reconciliation recorded")
	}
	return domain.ErrInconsistentState
}

func (uc *redemptionUC) PurchaseWithWallet(ctx context.Context, userID, packageID string, expectedPrice int64) (*model.Entitlement, int64, error) {
	if userID == "" || packageID == "" || expectedPrice < 0 {
		return nil, 0, domain.ErrInvalidArgument
	}
	user, err := uc.resolveUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	wallet, err := uc.wallets.FindByUser(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Wallets are provisioned at registration; absence is an upstream
			// bug, not a reason to auto-create one here.
			return nil, 0, domain.ErrWalletNotFound
		}
		return nil, 0, err
	}
	if wallet.BalanceToman < expectedPrice {
		metrics.IncRedemption("wallet", "rejected")
		return nil, wallet.BalanceToman, &InsufficientBalanceError{Shortfall: expectedPrice - wallet.BalanceToman}
	}

	if _, err := uc.entitlements.FindActiveByUserAndPackage(ctx, nil, userID, packageID); err == nil {
		return nil, wallet.BalanceToman, domain.ErrAlreadyEntitled
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, 0, err
	}

	pkg, err := uc.packages.FindByID(ctx, nil, packageID)
	if err != nil {
		return nil, 0, err
	}
	if !pkg.Active {
		return nil, wallet.BalanceToman, domain.ErrPackageInactive
	}
	if pkg.Grade != user.Grade {
		return nil, wallet.BalanceToman, domain.ErrGradeMismatch
	}
	if pkg.PriceToman != expectedPrice {
		// Price changed between the storefront read and the purchase call.
		return nil, wallet.BalanceToman, domain.ErrInvalidArgument
	}

	mctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mutationTimeout)
	defer cancel()

	// Conditional debit: the WHERE clause re-checks the balance at write time,
	// so two concurrent purchases cannot drain the wallet below zero.
	if err := uc.wallets.Debit(mctx, nil, userID, expectedPrice); err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) {
			metrics.IncRedemptionConflict("wallet")
			return nil, wallet.BalanceToman, &InsufficientBalanceError{Shortfall: expectedPrice - wallet.BalanceToman}
		}
		return nil, 0, err
	}
	uc.appendLedger(mctx, userID, -expectedPrice, model.WalletEntryPurchase, "purchase "+pkg.Name)

	ent, err := model.NewEntitlement(userID, pkg, model.EntitlementSourceWallet)
	if err == nil {
		err = uc.entitlements.Save(mctx, nil, ent)
	}
	if err != nil {
		if cerr := uc.compensateDebit(mctx, userID, expectedPrice, err); cerr != nil {
			return nil, 0, cerr
		}
		if errors.Is(err, domain.ErrAlreadyEntitled) {
			return nil, wallet.BalanceToman, domain.ErrAlreadyEntitled
		}
		return nil, 0, fmt.Errorf("insert entitlement: %w", err)
	}

	newBalance := wallet.BalanceToman - expectedPrice
	if fresh, err := uc.wallets.FindByUser(mctx, nil, userID); err == nil {
		newBalance = fresh.BalanceToman
	}

	metrics.IncRedemption("wallet", "success")
	metrics.AddWalletRevenue(expectedPrice)
	uc.log.Info().
		Str("user_id", userID).
		Str("package_id", pkg.ID).
		Int64("price_toman", expectedPrice).
		Int64("new_balance", newBalance).
		Msg("wallet purchase completed")
	return ent, newBalance, nil
}

// compensateDebit restores the debited amount after the entitlement insert
// failed. Credit is a relative update (balance = balance + amount), never a
// blind reset, so a concurrent top-up cannot be clobbered.
func (uc *redemptionUC) compensateDebit(ctx context.Context, userID string, amount int64, cause error) error {
	err := uc.wallets.Credit(ctx, nil, userID, amount)
	if err == nil {
		uc.appendLedger(ctx, userID, amount, model.WalletEntryRefund, "purchase failed; debit refunded")
		uc.log.Warn().
			Str("user_id", userID).
			Int64("amount_toman", amount).
			AnErr("cause", cause).
			Msg("entitlement insert failed; wallet debit refunded")
		return nil
	}

	metrics.IncCompensationFailure("wallet_refund")
	rec := model.NewReconciliation(model.ReconciliationWalletRefund, userID,
		fmt.Sprintf("wallet debited but entitlement insert failed: %v; refund failed: %v", cause, err))
	rec.AmountToman = amount
	if rerr := uc.recons.Save(ctx, nil, rec); rerr != nil {
		uc.log.Error().Str("user_id", userID).Int64("amount_toman", amount).
			AnErr("refund_err", err).AnErr("marker_err", rerr).
			Msg("INCONSISTENT STATE: wallet debited without entitlement and no reconciliation marker")
	} else {
		uc.log.Error().Str("user_id", userID).Str("reconciliation_id", rec.ID).AnErr("refund_err", err).
			Msg("INCONSISTENT STATE: wallet debited without entitlement; reconciliation recorded")
	}
	return domain.ErrInconsistentState
}

// appendLedger records a wallet movement. The ledger is an audit trail, not a
// source of truth, so a failed insert is logged and otherwise ignored.
func (uc *redemptionUC) appendLedger(ctx context.Context, userID string, amount int64, kind model.WalletEntryKind, note string) {
	entry, err := model.NewWalletEntry(userID, amount, kind, note)
	if err == nil {
		err = uc.entries.Save(ctx, nil, entry)
	}
	if err != nil {
		uc.log.Warn().Err(err).Str("user_id", userID).Int64("amount_toman", amount).
			Msg("wallet ledger entry not recorded")
	}
}
