//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"edu-platform/internal/domain"
	"edu-platform/internal/domain/model"
	"edu-platform/internal/domain/ports/repository"
)

// =============================
// Repositories
// =============================

// ---- Mock UserRepository ----

type MockUserRepo struct {
	mu      sync.Mutex
	byID    map[string]*model.User
	byPhone map[string]*model.User

	SaveFunc        func(ctx context.Context, tx repository.Tx, u *model.User) error
	FindByIDFunc    func(ctx context.Context, tx repository.Tx, id string) (*model.User, error)
	FindByPhoneFunc func(ctx context.Context, tx repository.Tx, phone string) (*model.User, error)
	ListFunc        func(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.User, error)
	CountUsersFunc  func(ctx context.Context, tx repository.Tx) (int, error)
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{byID: map[string]*model.User{}, byPhone: map[string]*model.User{}}
}

func (r *MockUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, u)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	r.byID[cp.ID] = &cp
	r.byPhone[cp.Phone] = &cp
	return nil
}

func (r *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockUserRepo) FindByPhone(ctx context.Context, tx repository.Tx, phone string) (*model.User, error) {
	if r.FindByPhoneFunc != nil {
		return r.FindByPhoneFunc(ctx, tx, phone)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byPhone[phone]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockUserRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.User, error) {
	if r.ListFunc != nil {
		return r.ListFunc(ctx, tx, offset, limit)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.User, 0, len(r.byID))
	for _, u := range r.byID {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MockUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	if r.CountUsersFunc != nil {
		return r.CountUsersFunc(ctx, tx)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID), nil
}

// ---- Mock CodeRepository ----

type MockCodeRepo struct {
	mu     sync.Mutex
	byID   map[string]*model.Code
	byCode map[string]*model.Code

	SaveFunc        func(ctx context.Context, tx repository.Tx, c *model.Code) error
	FindByCodeFunc  func(ctx context.Context, tx repository.Tx, code string) (*model.Code, error)
	MarkUsedFunc    func(ctx context.Context, tx repository.Tx, codeID, userID string, at time.Time) error
	RevertUsedFunc  func(ctx context.Context, tx repository.Tx, codeID string) error
	ListFunc        func(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Code, error)
	CountByUsedFunc func(ctx context.Context, tx repository.Tx) (int, int, error)
}

var _ repository.CodeRepository = (*MockCodeRepo)(nil)

func NewMockCodeRepo() *MockCodeRepo {
	return &MockCodeRepo{byID: map[string]*model.Code{}, byCode: map[string]*model.Code{}}
}

func (r *MockCodeRepo) Save(ctx context.Context, tx repository.Tx, c *model.Code) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, c)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	r.byID[cp.ID] = &cp
	r.byCode[cp.Code] = &cp
	return nil
}

func (r *MockCodeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Code, error) {
	if r.FindByCodeFunc != nil {
		return r.FindByCodeFunc(ctx, tx, code)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.byCode[code]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

// MarkUsed mirrors the conditional single-row update: it only succeeds when
// the code is still unused at write time.
func (r *MockCodeRepo) MarkUsed(ctx context.Context, tx repository.Tx, codeID, userID string, at time.Time) error {
	if r.MarkUsedFunc != nil {
		return r.MarkUsedFunc(ctx, tx, codeID, userID, at)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[codeID]
	if !ok {
		return domain.ErrNotFound
	}
	if c.IsUsed {
		return domain.ErrRedemptionConflict
	}
	c.IsUsed = true
	c.UsedByUserID = &userID
	c.UsedAt = &at
	r.byCode[c.Code] = c
	return nil
}

func (r *MockCodeRepo) RevertUsed(ctx context.Context, tx repository.Tx, codeID string) error {
	if r.RevertUsedFunc != nil {
		return r.RevertUsedFunc(ctx, tx, codeID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[codeID]
	if !ok {
		return domain.ErrNotFound
	}
	c.IsUsed = false
	c.UsedByUserID = nil
	c.UsedAt = nil
	r.byCode[c.Code] = c
	return nil
}

func (r *MockCodeRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.Code, error) {
	if r.ListFunc != nil {
		return r.ListFunc(ctx, tx, offset, limit)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Code, 0, len(r.byID))
	for _, c := range r.byID {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MockCodeRepo) CountByUsed(ctx context.Context, tx repository.Tx) (int, int, error) {
	if r.CountByUsedFunc != nil {
		return r.CountByUsedFunc(ctx, tx)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	used := 0
	for _, c := range r.byID {
		if c.IsUsed {
			used++
		}
	}
	return len(r.byID), used, nil
}

// ---- Mock PackageRepository ----

type MockPackageRepo struct {
	mu   sync.Mutex
	byID map[string]*model.Package

	SaveFunc     func(ctx context.Context, tx repository.Tx, pkg *model.Package) error
	FindByIDFunc func(ctx context.Context, tx repository.Tx, id string) (*model.Package, error)
}

var _ repository.PackageRepository = (*MockPackageRepo)(nil)

func NewMockPackageRepo() *MockPackageRepo {
	return &MockPackageRepo{byID: map[string]*model.Package{}}
}

func (r *MockPackageRepo) Save(ctx context.Context, tx repository.Tx, pkg *model.Package) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, pkg)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *pkg
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	r.byID[cp.ID] = &cp
	return nil
}

func (r *MockPackageRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Package, error) {
	if r.FindByIDFunc != nil {
		return r.FindByIDFunc(ctx, tx, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockPackageRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Package, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Package, 0, len(r.byID))
	for _, p := range r.byID {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MockPackageRepo) ListByGrade(ctx context.Context, tx repository.Tx, grade string) ([]*model.Package, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Package, 0)
	for _, p := range r.byID {
		if p.Grade == grade && p.Active {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockPackageRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Active = false
	return nil
}

// ---- Mock WalletRepository ----

type MockWalletRepo struct {
	mu     sync.Mutex
	byUser map[string]*model.Wallet

	SaveFunc       func(ctx context.Context, tx repository.Tx, w *model.Wallet) error
	FindByUserFunc func(ctx context.Context, tx repository.Tx, userID string) (*model.Wallet, error)
	DebitFunc      func(ctx context.Context, tx repository.Tx, userID string, amountToman int64) error
	CreditFunc     func(ctx context.Context, tx repository.Tx, userID string, amountToman int64) error
}

var _ repository.WalletRepository = (*MockWalletRepo)(nil)

func NewMockWalletRepo() *MockWalletRepo {
	return &MockWalletRepo{byUser: map[string]*model.Wallet{}}
}

func (r *MockWalletRepo) Save(ctx context.Context, tx repository.Tx, w *model.Wallet) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, w)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *w
	r.byUser[cp.UserID] = &cp
	return nil
}

func (r *MockWalletRepo) FindByUser(ctx context.Context, tx repository.Tx, userID string) (*model.Wallet, error) {
	if r.FindByUserFunc != nil {
		return r.FindByUserFunc(ctx, tx, userID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.byUser[userID]; ok {
		cp := *w
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

// Debit mirrors the conditional update: it only succeeds when the balance
// still covers the amount at write time.
func (r *MockWalletRepo) Debit(ctx context.Context, tx repository.Tx, userID string, amountToman int64) error {
	if r.DebitFunc != nil {
		return r.DebitFunc(ctx, tx, userID, amountToman)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.byUser[userID]
	if !ok {
		return domain.ErrInsufficientBalance
	}
	if w.BalanceToman < amountToman {
		return domain.ErrInsufficientBalance
	}
	w.BalanceToman -= amountToman
	w.UpdatedAt = time.Now()
	return nil
}

func (r *MockWalletRepo) Credit(ctx context.Context, tx repository.Tx, userID string, amountToman int64) error {
	if r.CreditFunc != nil {
		return r.CreditFunc(ctx, tx, userID, amountToman)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.byUser[userID]
	if !ok {
		return domain.ErrWalletNotFound
	}
	w.BalanceToman += amountToman
	w.UpdatedAt = time.Now()
	return nil
}

// ---- Mock WalletEntryRepository ----

type MockWalletEntryRepo struct {
	mu      sync.Mutex
	entries []*model.WalletEntry

	SaveFunc func(ctx context.Context, tx repository.Tx, e *model.WalletEntry) error
}

var _ repository.WalletEntryRepository = (*MockWalletEntryRepo)(nil)

func NewMockWalletEntryRepo() *MockWalletEntryRepo {
	return &MockWalletEntryRepo{}
}

func (r *MockWalletEntryRepo) Save(ctx context.Context, tx repository.Tx, e *model.WalletEntry) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, e)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *MockWalletEntryRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, limit int) ([]*model.WalletEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.WalletEntry, 0)
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if r.entries[i].UserID == userID {
			cp := *r.entries[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockWalletEntryRepo) SumPurchases(ctx context.Context, tx repository.Tx) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, e := range r.entries {
		if e.Kind == model.WalletEntryPurchase {
			sum += -e.AmountToman
		}
	}
	return sum, nil
}

// Entries returns a snapshot for assertions.
func (r *MockWalletEntryRepo) Entries() []*model.WalletEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.WalletEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// ---- Mock EntitlementRepository ----

type MockEntitlementRepo struct {
	mu   sync.Mutex
	byID map[string]*model.Entitlement

	SaveFunc                       func(ctx context.Context, tx repository.Tx, e *model.Entitlement) error
	FindActiveByUserAndPackageFunc func(ctx context.Context, tx repository.Tx, userID, packageID string) (*model.Entitlement, error)
}

var _ repository.EntitlementRepository = (*MockEntitlementRepo)(nil)

func NewMockEntitlementRepo() *MockEntitlementRepo {
	return &MockEntitlementRepo{byID: map[string]*model.Entitlement{}}
}

func (r *MockEntitlementRepo) Save(ctx context.Context, tx repository.Tx, e *model.Entitlement) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, e)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, ex := range r.byID {
		if ex.UserID != e.UserID || ex.PackageID != e.PackageID || !ex.Active {
			continue
		}
		// A lapsed row is retired on insert, same as the real repo; only a
		// live one collides.
		if !ex.ExpiresAt.After(now) {
			ex.Active = false
			continue
		}
		return domain.ErrAlreadyEntitled
	}
	cp := *e
	r.byID[cp.ID] = &cp
	return nil
}

func (r *MockEntitlementRepo) FindActiveByUserAndPackage(ctx context.Context, tx repository.Tx, userID, packageID string) (*model.Entitlement, error) {
	if r.FindActiveByUserAndPackageFunc != nil {
		return r.FindActiveByUserAndPackageFunc(ctx, tx, userID, packageID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, e := range r.byID {
		if e.UserID == userID && e.PackageID == packageID && e.Active && e.ExpiresAt.After(now) {
			cp := *e
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MockEntitlementRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Entitlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Entitlement, 0)
	for _, e := range r.byID {
		if e.UserID == userID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockEntitlementRepo) Deactivate(ctx context.Context, tx repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.Active = false
	return nil
}

func (r *MockEntitlementRepo) ExpireDue(ctx context.Context, tx repository.Tx, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.byID {
		if e.Active && now.After(e.ExpiresAt) {
			e.Active = false
			n++
		}
	}
	return n, nil
}

func (r *MockEntitlementRepo) CountActiveByPackage(ctx context.Context, tx repository.Tx) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]int{}
	for _, e := range r.byID {
		if e.Active {
			out[e.PackageID]++
		}
	}
	return out, nil
}

// ---- Mock ReconciliationRepository ----

type MockReconciliationRepo struct {
	mu     sync.Mutex
	stored []*model.Reconciliation

	SaveFunc func(ctx context.Context, tx repository.Tx, rec *model.Reconciliation) error
}

var _ repository.ReconciliationRepository = (*MockReconciliationRepo)(nil)

func NewMockReconciliationRepo() *MockReconciliationRepo {
	return &MockReconciliationRepo{}
}

func (r *MockReconciliationRepo) Save(ctx context.Context, tx repository.Tx, rec *model.Reconciliation) error {
	if r.SaveFunc != nil {
		return r.SaveFunc(ctx, tx, rec)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rec
	r.stored = append(r.stored, &cp)
	return nil
}

func (r *MockReconciliationRepo) ListOpen(ctx context.Context, tx repository.Tx) ([]*model.Reconciliation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Reconciliation, 0)
	for _, rec := range r.stored {
		if !rec.Resolved {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockReconciliationRepo) Resolve(ctx context.Context, tx repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.stored {
		if rec.ID == id {
			rec.Resolved = true
			return nil
		}
	}
	return domain.ErrNotFound
}

// Stored returns a snapshot for assertions.
func (r *MockReconciliationRepo) Stored() []*model.Reconciliation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Reconciliation, len(r.stored))
	copy(out, r.stored)
	return out
}

// ---- Mock LectureRepository ----

type MockLectureRepo struct {
	mu   sync.Mutex
	byID map[string]*model.Lecture
}

var _ repository.LectureRepository = (*MockLectureRepo)(nil)

func NewMockLectureRepo() *MockLectureRepo {
	return &MockLectureRepo{byID: map[string]*model.Lecture{}}
}

func (r *MockLectureRepo) Save(ctx context.Context, tx repository.Tx, l *model.Lecture) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *l
	r.byID[cp.ID] = &cp
	return nil
}

func (r *MockLectureRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Lecture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.byID[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *MockLectureRepo) ListByPackage(ctx context.Context, tx repository.Tx, packageID string) ([]*model.Lecture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Lecture, 0)
	for _, l := range r.byID {
		if l.PackageID == packageID {
			cp := *l
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MockLectureRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// =============================
// Transaction manager
// =============================

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs the function immediately without a real transaction. Assign
// WithTxFunc to control transaction behavior in specific tests.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, nil)
}

// newTestLogger creates a silent zerolog.Logger so logs do not clutter test
// output.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
