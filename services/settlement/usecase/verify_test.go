package usecase

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tigapay/offpay/internal/pkg/crypto"
	"github.com/tigapay/offpay/internal/pkg/models"
	"github.com/tigapay/offpay/services/settlement"
)

func TestVerifyLedgerAllValid(t *testing.T) {
	repo := &stubRepo{}
	uc := newTestUC(t, repo, nil, nil)
	ledger := buildLedger(t, newSigner(t), 3)

	result, err := uc.VerifyLedger(context.Background(), &models.SubmissionInput{Ledger: ledger})
	require.NoError(t, err)

	assert.True(t, result.Valid)
	assert.Len(t, result.VerifiedTransactions, 3)
	assert.Empty(t, result.Errors)
	for i := range ledger.Entries {
		assert.Equal(t, models.EntryStatusVerified, ledger.Entries[i].Status)
	}
}

func TestVerifyLedgerEmpty(t *testing.T) {
	uc := newTestUC(t, &stubRepo{}, nil, nil)

	result, err := uc.VerifyLedger(context.Background(),
		&models.SubmissionInput{Ledger: &models.Ledger{Entries: []models.LedgerEntry{}}})
	require.NoError(t, err)

	assert.True(t, result.Valid)
	assert.Empty(t, result.VerifiedTransactions)
	assert.Empty(t, result.Errors)
}

func TestVerifyLedgerTamperedAmount(t *testing.T) {
	uc := newTestUC(t, &stubRepo{}, nil, nil)
	ledger := buildLedger(t, newSigner(t), 3)
	ledger.Entries[1].Transaction.Amount = 9999

	result, err := uc.VerifyLedger(context.Background(), &models.SubmissionInput{Ledger: ledger})
	require.NoError(t, err)

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.Errors[0].LedgerIndex)
	assert.Equal(t, settlement.ReasonTxnHashMismatch, result.Errors[0].Reason)
	// Honest neighbours still verify.
	assert.Len(t, result.VerifiedTransactions, 2)
}

func TestVerifyLedgerBrokenChain(t *testing.T) {
	uc := newTestUC(t, &stubRepo{}, nil, nil)
	ledger := buildLedger(t, newSigner(t), 3)
	ledger.Entries[2].Hash = crypto.SHA256Hex("forged")

	result, err := uc.VerifyLedger(context.Background(), &models.SubmissionInput{Ledger: ledger})
	require.NoError(t, err)

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 2, result.Errors[0].LedgerIndex)
	assert.Equal(t, settlement.ReasonChainMismatch, result.Errors[0].Reason)
}

func TestVerifyLedgerForeignSignature(t *testing.T) {
	uc := newTestUC(t, &stubRepo{}, nil, nil)
	ledger := buildLedger(t, newSigner(t), 2)
	// Entry 0 claims a key that never signed it.
	ledger.Entries[0].Transaction.SenderPublicKey = newSigner(t).jwk

	result, err := uc.VerifyLedger(context.Background(), &models.SubmissionInput{Ledger: ledger})
	require.NoError(t, err)

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, settlement.ReasonSignatureInvalid, result.Errors[0].Reason)
}

func TestVerifyLedgerIndexGap(t *testing.T) {
	uc := newTestUC(t, &stubRepo{}, nil, nil)
	ledger := buildLedger(t, newSigner(t), 3)
	ledger.Entries[1].LedgerIndex = 5

	result, err := uc.VerifyLedger(context.Background(), &models.SubmissionInput{Ledger: ledger})
	require.NoError(t, err)

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, settlement.ReasonIndexGap, result.Errors[0].Reason)
}

func TestVerifyLedgerDuplicateTxn(t *testing.T) {
	s := newSigner(t)
	uc := newTestUC(t, &stubRepo{}, nil, nil)
	ledger := buildLedger(t, s, 2)

	// Duplicate entry 0's txn at position 1, rebuilding position 1's link so
	// only the duplication is at fault.
	dup := ledger.Entries[0].Transaction
	ledger.Entries[1].Transaction = dup
	ledger.Entries[1].Hash = crypto.SHA256Hex(ledger.Entries[0].Hash + dup.Hash)

	result, err := uc.VerifyLedger(context.Background(), &models.SubmissionInput{Ledger: ledger})
	require.NoError(t, err)

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, settlement.ReasonDuplicateTxn, result.Errors[0].Reason)
}

func TestVerifyLedgerMerchantSignature(t *testing.T) {
	merchant := newSigner(t)
	uc := newTestUC(t, &stubRepo{}, nil, nil)

	ledger := buildLedger(t, newSigner(t), 2)
	signLedger(t, ledger, merchant)

	result, err := uc.VerifyLedger(context.Background(), &models.SubmissionInput{Ledger: ledger})
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestVerifyLedgerMerchantSignatureInvalid(t *testing.T) {
	merchant := newSigner(t)
	uc := newTestUC(t, &stubRepo{}, nil, nil)

	ledger := buildLedger(t, newSigner(t), 2)
	signLedger(t, ledger, merchant)
	// Swap in a key that never signed the ledger.
	ledger.ReceiverPublicKey = newSigner(t).jwk

	result, err := uc.VerifyLedger(context.Background(), &models.SubmissionInput{Ledger: ledger})
	require.NoError(t, err)

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, -1, result.Errors[0].LedgerIndex)
	assert.Equal(t, settlement.ReasonLedgerSigInvalid, result.Errors[0].Reason)
	assert.Empty(t, result.VerifiedTransactions)
}

func TestVerifyLedgerMerchantHashStale(t *testing.T) {
	merchant := newSigner(t)
	uc := newTestUC(t, &stubRepo{}, nil, nil)

	ledger := buildLedger(t, merchant, 2)
	signLedger(t, ledger, merchant)
	ledger.Hash = crypto.SHA256Hex("stale")

	result, err := uc.VerifyLedger(context.Background(), &models.SubmissionInput{Ledger: ledger})
	require.NoError(t, err)

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, settlement.ReasonLedgerHashMismatch, result.Errors[0].Reason)
}

func TestVerifyLedgerEncryptedSubmission(t *testing.T) {
	repo := &stubRepo{}
	uc, keys := newTestUCWithKeys(t, repo)

	ledger := buildLedger(t, newSigner(t), 2)
	payload, err := json.Marshal(ledger)
	require.NoError(t, err)

	env, err := crypto.SealLedgerEnvelope(keys.PublicJWK(), payload)
	require.NoError(t, err)

	result, err := uc.VerifyLedger(context.Background(), &models.SubmissionInput{Envelope: env})
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Len(t, result.VerifiedTransactions, 2)
}

func TestVerifyLedgerDecryptFailureIsAudited(t *testing.T) {
	repo := &stubRepo{}
	uc, _ := newTestUCWithKeys(t, repo)

	// Sealed for a different bank key.
	foreignKeys, err := crypto.GenerateECDHKeyPair()
	require.NoError(t, err)
	env, err := crypto.SealLedgerEnvelope(crypto.ECDHPublicKeyToJWK(foreignKeys.PublicKey()), []byte(`{"entries":[]}`))
	require.NoError(t, err)

	_, err = uc.VerifyLedger(context.Background(), &models.SubmissionInput{Envelope: env})
	require.ErrorIs(t, err, crypto.ErrDecryptFailed)

	require.NotEmpty(t, repo.audits)
	assert.Equal(t, models.ActionDecryptEnvelope, repo.audits[0].Action)
	assert.Equal(t, models.AuditStatusError, repo.audits[0].Status)
}
