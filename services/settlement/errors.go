package settlement

import "errors"

var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrWalletNotApproved   = errors.New("wallet not approved")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrAlreadySettled      = errors.New("transaction already settled")
	ErrLedgerTooLarge      = errors.New("ledger exceeds maximum size")
	ErrEmptySubmission     = errors.New("submission carries neither envelope nor ledger")
)

// Reason strings reported in per-entry errors. Clients match on these to
// repair their ledgers, so they are part of the wire contract.
const (
	ReasonTxnHashMismatch    = "transaction hash mismatch"
	ReasonChainMismatch      = "ledger hash mismatch"
	ReasonSignatureInvalid   = "signature invalid"
	ReasonIndexGap           = "index gap"
	ReasonDuplicateTxn       = "duplicate txn in submission"
	ReasonLedgerSigInvalid   = "ledger signature invalid"
	ReasonLedgerHashMismatch = "ledger hash mismatch against entries"
	ReasonWalletNotFound     = "wallet_invalid: not_found"
	ReasonWalletNotApproved  = "wallet_invalid: not_approved"
	ReasonInsufficientFunds  = "wallet_invalid: insufficient_balance"
	ReasonAlreadySettled     = "already_settled"
	ReasonCanonicalForm      = "canonical form error"
)
