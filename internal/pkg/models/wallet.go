package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet lifecycle states
const (
	WalletStatusPending   = "pending"
	WalletStatusApproved  = "approved"
	WalletStatusRejected  = "rejected"
	WalletStatusSuspended = "suspended"
)

// Wallet is a customer's escrowed offline spending allowance.
// Invariants: UsedAmount + CurrentBalance == ApprovedLimit and
// CurrentBalance >= 0. Settlement debits require StatusApproved.
type Wallet struct {
	WalletID       string          `json:"wallet_id" db:"wallet_id"`
	UserID         uuid.UUID       `json:"user_id" db:"user_id"`
	ApprovedLimit  decimal.Decimal `json:"approved_limit" db:"approved_limit"`
	CurrentBalance decimal.Decimal `json:"current_balance" db:"current_balance"`
	UsedAmount     decimal.Decimal `json:"used_amount" db:"used_amount"`
	LockedAmount   decimal.Decimal `json:"locked_amount" db:"locked_amount"`
	Status         string          `json:"status" db:"status"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// SettledTransaction is the immutable double-spend guard row. Created exactly
// once per txn_id, never mutated, never deleted.
type SettledTransaction struct {
	TxnID       string          `json:"txn_id" db:"txn_id"`
	WalletID    string          `json:"wallet_id" db:"wallet_id"`
	FromUserID  string          `json:"from_user_id" db:"from_user_id"`
	ToUserID    string          `json:"to_user_id" db:"to_user_id"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	LedgerIndex int             `json:"ledger_index" db:"ledger_index"`
	ReceiverID  string          `json:"receiver_id" db:"receiver_id"`
	SettledAt   time.Time       `json:"settled_at" db:"settled_at"`
}
