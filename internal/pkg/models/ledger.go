package models

// Ledger is the decrypted merchant submission: the ordered entry chain plus
// the merchant signature over the canonical ledger bytes.
type Ledger struct {
	ReceiverID        string        `json:"receiver_id,omitempty"`
	Entries           []LedgerEntry `json:"entries"`
	Hash              string        `json:"hash,omitempty"`
	Signature         string        `json:"signature,omitempty"`
	ReceiverPublicKey *JWK          `json:"receiver_public_key,omitempty"`
	ExportedAt        string        `json:"exported_at,omitempty"`
}

// Envelope is the encrypted wire form of a transaction or ledger.
// EncryptedAESKey carries a 12-byte IV followed by the GCM ciphertext of the
// 32-byte inner AES key; IV belongs to the payload cipher. Exactly one of the
// public-key fields identifies the ECDH peer: SenderECDHPublicKey for a
// transaction envelope, ReceiverPublicKey for a ledger envelope.
type Envelope struct {
	EncryptedPayload    string `json:"encrypted_payload"`
	EncryptedAESKey     string `json:"encrypted_aes_key"`
	IV                  string `json:"iv"`
	SenderPublicKey     *JWK   `json:"sender_public_key,omitempty"`
	SenderECDHPublicKey *JWK   `json:"sender_ecdh_public_key,omitempty"`
	ReceiverPublicKey   *JWK   `json:"receiver_public_key,omitempty"`
}

// SubmissionInput is the tagged form of a settlement request body: either an
// encrypted envelope or an already-decrypted ledger. The tag is resolved
// once, when the body is parsed, never by sniffing inside the handler.
type SubmissionInput struct {
	Envelope *Envelope
	Ledger   *Ledger
}

// IsEncrypted reports whether the submission arrived as an envelope.
func (s *SubmissionInput) IsEncrypted() bool {
	return s.Envelope != nil
}

// EntryError locates a per-entry verification or settlement failure.
type EntryError struct {
	LedgerIndex int    `json:"ledger_index"`
	Reason      string `json:"reason"`
}

// VerificationResult is the verdict of a ledger walk.
type VerificationResult struct {
	Valid                bool         `json:"valid"`
	VerifiedTransactions []string     `json:"verified_transactions"`
	Errors               []EntryError `json:"errors"`
}

// SettlementResult reports the outcome of a settlement submission.
// Settled is true only when every non-idempotent entry committed.
type SettlementResult struct {
	Settled             bool         `json:"settled"`
	SettledTransactions []string     `json:"settled_transactions"`
	AlreadySettled      []string     `json:"already_settled,omitempty"`
	Errors              []EntryError `json:"errors"`
	AuditLogIDs         []string     `json:"audit_log_ids"`
}
