package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Audit actors
const (
	ActorBank     = "bank"
	ActorSender   = "sender"
	ActorReceiver = "receiver"
)

// Audit actions
const (
	ActionDecryptEnvelope = "decrypt_envelope"
	ActionVerifyChain     = "verify_chain"
	ActionVerifySignature = "verify_signature"
	ActionVerifyLedger    = "verify_ledger"
	ActionSettle          = "settle"
	ActionSettleBatch     = "settle_ledger_batch"
	ActionReject          = "reject"
)

// Audit statuses
const (
	AuditStatusSuccess = "success"
	AuditStatusError   = "error"
)

// AuditLogEntry is one append-only audit record. Details is free-form
// structured context stored as JSONB.
type AuditLogEntry struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	Actor     string          `json:"actor" db:"actor"`
	Action    string          `json:"action" db:"action"`
	TxnID     *string         `json:"txn_id,omitempty" db:"txn_id"`
	Status    string          `json:"status" db:"status"`
	Details   json.RawMessage `json:"details" db:"details"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// AuditDetails builds the Details payload from a map, swallowing marshal
// errors into an empty object so audit writes never fail on detail encoding.
func AuditDetails(kv map[string]interface{}) json.RawMessage {
	b, err := json.Marshal(kv)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return b
}
