package model

import (
	"crypto/rand"
	"time"

	"edu-platform/internal/domain"

	"github.com/oklog/ulid/v2"
)

// Wallet is a per-user balance in Toman. It is created once at registration
// with a zero balance and mutated only by admin top-ups and purchases. The
// balance must never be observably negative.
type Wallet struct {
	UserID       string
	BalanceToman int64
	UpdatedAt    time.Time
}

func NewWallet(userID string) (*Wallet, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Wallet{UserID: userID, BalanceToman: 0, UpdatedAt: time.Now()}, nil
}

type WalletEntryKind string

const (
	WalletEntryTopUp    WalletEntryKind = "topup"
	WalletEntryPurchase WalletEntryKind = "purchase"
	WalletEntryRefund   WalletEntryKind = "refund"
)

// WalletEntry is one row of the append-only wallet ledger. Amounts are signed:
// top-ups and refunds are positive, purchases negative.
type WalletEntry struct {
	ID          string // ULID, sortable by creation time
	UserID      string
	AmountToman int64
	Kind        WalletEntryKind
	Note        string
	CreatedAt   time.Time
}

func NewWalletEntry(userID string, amountToman int64, kind WalletEntryKind, note string) (*WalletEntry, error) {
	if userID == "" || amountToman == 0 {
		return nil, domain.ErrInvalidArgument
	}
	switch kind {
	case WalletEntryTopUp, WalletEntryPurchase, WalletEntryRefund:
	default:
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &WalletEntry{
		ID:          ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		UserID:      userID,
		AmountToman: amountToman,
		Kind:        kind,
		Note:        note,
		CreatedAt:   now,
	}, nil
}
