package models

// JWK is a JSON Web Key as produced by the browser clients for P-256 keys.
// Public-key material always crosses component boundaries in this form.
type JWK struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	X   string `json:"x"`
	Y   string `json:"y"`
	D   string `json:"d,omitempty"`
	Ext bool   `json:"ext,omitempty"`
}

// Transaction is the atomic payment intent signed by the customer device.
// Hash covers the canonical encoding of the core fields; Signature is the
// P1363 ECDSA-P256-SHA256 signature over the raw hash bytes.
type Transaction struct {
	TxnID           string  `json:"txn_id"`
	FromID          string  `json:"from_id"`
	ToID            string  `json:"to_id"`
	Amount          float64 `json:"amount"`
	Timestamp       string  `json:"timestamp"`
	PrevHash        string  `json:"prev_hash,omitempty"`
	WalletID        string  `json:"wallet_id,omitempty"`
	Hash            string  `json:"hash"`
	Signature       string  `json:"signature"`
	SenderPublicKey *JWK    `json:"sender_public_key,omitempty"`
}

// Ledger entry verdict tags
const (
	EntryStatusVerified = "verified"
	EntryStatusRejected = "rejected"
)

// LedgerEntry is one link of the merchant's hash chain. Hash covers the
// previous entry's hash (the literal GENESIS for index 0) concatenated with
// the transaction hash.
type LedgerEntry struct {
	LedgerIndex int         `json:"ledger_index"`
	Transaction Transaction `json:"transaction"`
	Hash        string      `json:"hash"`
	Status      string      `json:"status,omitempty"`
}

// GenesisHash seeds the ledger hash chain.
const GenesisHash = "GENESIS"
