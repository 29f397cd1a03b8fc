package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles on the payment rails
const (
	RoleSender   = "sender"
	RoleReceiver = "receiver"
)

// KYC states
const (
	KYCStatusPending  = "pending"
	KYCStatusVerified = "verified"
	KYCStatusRejected = "rejected"
)

// User is a registered participant. BankID is the user-visible bank
// identifier carried in transaction from_id/to_id fields. PublicKey is the
// user's ECDSA verification key in JWK form.
type User struct {
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	FullName     string    `json:"full_name" db:"full_name"`
	EmailOrPhone string    `json:"email_or_phone" db:"email_or_phone"`
	Role         string    `json:"role" db:"role"`
	BankID       string    `json:"bank_id" db:"bank_id"`
	PublicKey    *JWK      `json:"public_key,omitempty" db:"-"`
	PublicKeyRaw []byte    `json:"-" db:"public_key"`
	KYCStatus    string    `json:"kyc_status" db:"kyc_status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
