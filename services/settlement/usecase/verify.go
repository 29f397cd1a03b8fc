package usecase

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/tigapay/offpay/internal/pkg/crypto"
	"github.com/tigapay/offpay/internal/pkg/logger"
	"github.com/tigapay/offpay/internal/pkg/models"
	"github.com/tigapay/offpay/services/settlement"
)

// VerifyLedger checks the submission without touching wallet state: envelope
// decrypt, merchant ledger signature, then the per-entry walk (index order,
// hash chain, transaction hash, customer signature).
func (uc *settlementUC) VerifyLedger(ctx context.Context, input *models.SubmissionInput) (*models.VerificationResult, error) {
	ledger, err := uc.openSubmission(input)
	if err != nil {
		uc.auditFailure(ctx, models.ActionDecryptEnvelope, nil, err.Error())
		return nil, err
	}

	result := uc.verifyLedger(ctx, ledger)

	status := models.AuditStatusSuccess
	if !result.Valid {
		status = models.AuditStatusError
	}
	uc.audit(ctx, models.ActionVerifyLedger, nil, status, models.AuditDetails(map[string]interface{}{
		"entries":  len(ledger.Entries),
		"verified": len(result.VerifiedTransactions),
		"errors":   len(result.Errors),
	}))

	return result, nil
}

func (uc *settlementUC) verifyLedger(ctx context.Context, ledger *models.Ledger) *models.VerificationResult {
	if reason, ok := uc.checkLedgerSignature(ledger); !ok {
		logger.WarnCtx(ctx, "ledger signature rejected",
			logger.String("receiver_id", ledger.ReceiverID),
			logger.String("reason", reason))
		return &models.VerificationResult{
			Valid:                false,
			VerifiedTransactions: []string{},
			Errors:               []models.EntryError{{LedgerIndex: -1, Reason: reason}},
		}
	}
	return walkEntries(ledger.Entries)
}

// checkLedgerSignature verifies the merchant signature over the canonical
// ledger bytes: the concatenation of entry hashes, GENESIS when the ledger is
// empty. The signature is mandatory whenever the ledger carries the merchant
// key; a signed ledger with a stale embedded hash is rejected outright.
func (uc *settlementUC) checkLedgerSignature(ledger *models.Ledger) (string, bool) {
	if ledger.ReceiverPublicKey == nil && ledger.Signature == "" {
		return "", true
	}
	if ledger.ReceiverPublicKey == nil || ledger.Signature == "" {
		return settlement.ReasonLedgerSigInvalid, false
	}

	expected := crypto.SHA256Hex(canonicalLedgerBytes(ledger.Entries))
	if ledger.Hash != "" && ledger.Hash != expected {
		return settlement.ReasonLedgerHashMismatch, false
	}

	sig, err := base64.StdEncoding.DecodeString(ledger.Signature)
	if err != nil {
		return settlement.ReasonLedgerSigInvalid, false
	}
	message, err := hex.DecodeString(expected)
	if err != nil {
		return settlement.ReasonLedgerSigInvalid, false
	}
	if err := crypto.VerifyP1363(ledger.ReceiverPublicKey, sig, message); err != nil {
		return settlement.ReasonLedgerSigInvalid, false
	}
	return "", true
}

func canonicalLedgerBytes(entries []models.LedgerEntry) string {
	if len(entries) == 0 {
		return models.GenesisHash
	}
	var b strings.Builder
	for i := range entries {
		b.WriteString(entries[i].Hash)
	}
	return b.String()
}

// walkEntries performs the per-entry verification pass. Failures are
// collected per entry rather than aborting, so a merchant learns every defect
// in one round trip. The chain advances over the declared entry hashes, so a
// single corrupt link does not cascade into rejections of honest successors.
func walkEntries(entries []models.LedgerEntry) *models.VerificationResult {
	result := &models.VerificationResult{
		Valid:                true,
		VerifiedTransactions: []string{},
		Errors:               []models.EntryError{},
	}

	prevHash := models.GenesisHash
	seen := make(map[string]int, len(entries))

	for i := range entries {
		entry := &entries[i]
		txn := &entry.Transaction
		reason := verifyEntry(entry, i, prevHash, seen)
		prevHash = entry.Hash

		if reason != "" {
			entry.Status = models.EntryStatusRejected
			result.Valid = false
			result.Errors = append(result.Errors, models.EntryError{
				LedgerIndex: entry.LedgerIndex,
				Reason:      reason,
			})
			continue
		}

		entry.Status = models.EntryStatusVerified
		result.VerifiedTransactions = append(result.VerifiedTransactions, txn.TxnID)
	}

	return result
}

func verifyEntry(entry *models.LedgerEntry, position int, prevHash string, seen map[string]int) string {
	txn := &entry.Transaction

	if entry.LedgerIndex != position {
		return settlement.ReasonIndexGap
	}

	if _, dup := seen[txn.TxnID]; dup {
		return settlement.ReasonDuplicateTxn
	}
	seen[txn.TxnID] = position

	ok, _, err := crypto.VerifyTransactionHash(txn)
	if err != nil {
		return settlement.ReasonCanonicalForm
	}
	if !ok {
		return settlement.ReasonTxnHashMismatch
	}

	if entry.Hash != crypto.SHA256Hex(prevHash+txn.Hash) {
		return settlement.ReasonChainMismatch
	}

	if txn.SenderPublicKey == nil {
		return settlement.ReasonSignatureInvalid
	}
	sig, err := base64.StdEncoding.DecodeString(txn.Signature)
	if err != nil {
		return settlement.ReasonSignatureInvalid
	}
	message, err := hex.DecodeString(txn.Hash)
	if err != nil {
		return settlement.ReasonSignatureInvalid
	}
	if err := crypto.VerifyP1363(txn.SenderPublicKey, sig, message); err != nil {
		return settlement.ReasonSignatureInvalid
	}

	return ""
}
