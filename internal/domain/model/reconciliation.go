package model

import (
	"time"

	"github.com/google/uuid"
)

type ReconciliationKind string

const (
	ReconciliationCodeRevert   ReconciliationKind = "code_revert"
	ReconciliationWalletRefund ReconciliationKind = "wallet_refund"
)

// Reconciliation is a durable "pending compensation" marker. One is written
// when the compensating write of a failed two-step sequence itself fails, so
// an operator can find and repair the inconsistency instead of it living only
// in a log line.
type Reconciliation struct {
	ID          string
	Kind        ReconciliationKind
	UserID      string
	CodeID      *string // set for code_revert
	AmountToman int64   // set for wallet_refund
	Reason      string
	Resolved    bool
	CreatedAt   time.Time
}

func NewReconciliation(kind ReconciliationKind, userID, reason string) *Reconciliation {
	return &Reconciliation{
		ID:        uuid.NewString(),
		Kind:      kind,
		UserID:    userID,
		Reason:    reason,
		CreatedAt: time.Now(),
	}
}
