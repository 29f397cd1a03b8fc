package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tigapay/offpay/services/settlement"
)

func TestParseSubmissionEntryArray(t *testing.T) {
	body := []byte(`[{"ledger_index":0,"transaction":{"txn_id":"t1"},"hash":"h1"}]`)

	input, err := ParseSubmission(body)
	require.NoError(t, err)

	assert.False(t, input.IsEncrypted())
	require.NotNil(t, input.Ledger)
	require.Len(t, input.Ledger.Entries, 1)
	assert.Equal(t, "t1", input.Ledger.Entries[0].Transaction.TxnID)
}

func TestParseSubmissionLedgerObject(t *testing.T) {
	body := []byte(`{"receiver_id":"BANK-RCV-1","entries":[{"ledger_index":0,"transaction":{"txn_id":"t1"},"hash":"h1"}]}`)

	input, err := ParseSubmission(body)
	require.NoError(t, err)

	assert.False(t, input.IsEncrypted())
	assert.Equal(t, "BANK-RCV-1", input.Ledger.ReceiverID)
	assert.Len(t, input.Ledger.Entries, 1)
}

func TestParseSubmissionWrappedLedger(t *testing.T) {
	body := []byte(`{"ledger":{"entries":[{"ledger_index":0,"transaction":{"txn_id":"t1"},"hash":"h1"}]}}`)

	input, err := ParseSubmission(body)
	require.NoError(t, err)

	assert.False(t, input.IsEncrypted())
	assert.Len(t, input.Ledger.Entries, 1)
}

func TestParseSubmissionWrappedEntryArray(t *testing.T) {
	body := []byte(`{"ledger":[{"ledger_index":0,"transaction":{"txn_id":"t1"},"hash":"h1"}]}`)

	input, err := ParseSubmission(body)
	require.NoError(t, err)
	assert.Len(t, input.Ledger.Entries, 1)
}

func TestParseSubmissionEnvelope(t *testing.T) {
	body := []byte(`{"encrypted_payload":"abc","encrypted_aes_key":"def","iv":"ghi",` +
		`"receiver_public_key":{"kty":"EC","crv":"P-256","x":"x","y":"y"}}`)

	input, err := ParseSubmission(body)
	require.NoError(t, err)

	assert.True(t, input.IsEncrypted())
	assert.Equal(t, "abc", input.Envelope.EncryptedPayload)
	require.NotNil(t, input.Envelope.ReceiverPublicKey)
}

func TestParseSubmissionEmptyBody(t *testing.T) {
	for _, body := range [][]byte{nil, {}, []byte("   ")} {
		_, err := ParseSubmission(body)
		assert.ErrorIs(t, err, settlement.ErrEmptySubmission)
	}
}

func TestParseSubmissionGarbage(t *testing.T) {
	_, err := ParseSubmission([]byte(`{"entries":`))
	assert.Error(t, err)
}
