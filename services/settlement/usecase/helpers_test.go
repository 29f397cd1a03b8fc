package usecase

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tigapay/offpay/internal/pkg/crypto"
	"github.com/tigapay/offpay/internal/pkg/keystore"
	"github.com/tigapay/offpay/internal/pkg/models"
	"github.com/tigapay/offpay/services/settlement"
)

// signer is a customer device keypair for building test ledgers.
type signer struct {
	priv *ecdsa.PrivateKey
	jwk  *models.JWK
}

func newSigner(t *testing.T) *signer {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	pad := func(b []byte) []byte {
		out := make([]byte, 32)
		copy(out[32-len(b):], b)
		return out
	}
	return &signer{
		priv: priv,
		jwk: &models.JWK{
			Kty: "EC",
			Crv: "P-256",
			X:   base64.RawURLEncoding.EncodeToString(pad(priv.X.Bytes())),
			Y:   base64.RawURLEncoding.EncodeToString(pad(priv.Y.Bytes())),
		},
	}
}

// signHex signs the raw bytes of a hex digest, producing base64 r||s.
func (s *signer) signHex(t *testing.T, hexDigest string) string {
	t.Helper()
	message, err := hex.DecodeString(hexDigest)
	require.NoError(t, err)

	digest := crypto.SHA256Bytes(message)
	r, rs, err := ecdsa.Sign(rand.Reader, s.priv, digest)
	require.NoError(t, err)

	sig := make([]byte, 64)
	copy(sig[32-len(r.Bytes()):32], r.Bytes())
	copy(sig[64-len(rs.Bytes()):64], rs.Bytes())
	return base64.StdEncoding.EncodeToString(sig)
}

// buildLedger assembles a fully signed hash chain of n entries.
func buildLedger(t *testing.T, s *signer, n int) *models.Ledger {
	t.Helper()

	entries := make([]models.LedgerEntry, 0, n)
	prevEntryHash := models.GenesisHash
	prevTxnHash := ""

	for i := 0; i < n; i++ {
		txn := models.Transaction{
			TxnID:           fmt.Sprintf("txn-%s-%d", uuid.NewString()[:8], i),
			FromID:          "BANK-SND-1",
			ToID:            "BANK-RCV-1",
			Amount:          float64(10 + i),
			Timestamp:       fmt.Sprintf("2026-08-20T10:%02d:00.000Z", i),
			PrevHash:        prevTxnHash,
			WalletID:        "wlt-1",
			SenderPublicKey: s.jwk,
		}

		hash, err := crypto.ComputeTransactionHash(&txn, crypto.VariantExtended)
		require.NoError(t, err)
		txn.Hash = hash
		txn.Signature = s.signHex(t, hash)

		entry := models.LedgerEntry{
			LedgerIndex: i,
			Transaction: txn,
			Hash:        crypto.SHA256Hex(prevEntryHash + hash),
		}
		entries = append(entries, entry)
		prevEntryHash = entry.Hash
		prevTxnHash = hash
	}

	return &models.Ledger{ReceiverID: "BANK-RCV-1", Entries: entries}
}

// signLedger attaches the merchant signature over the canonical ledger bytes.
func signLedger(t *testing.T, ledger *models.Ledger, merchant *signer) {
	t.Helper()
	ledger.Hash = crypto.SHA256Hex(canonicalLedgerBytes(ledger.Entries))
	ledger.Signature = merchant.signHex(t, ledger.Hash)
	ledger.ReceiverPublicKey = merchant.jwk
}

// stubRepo records calls and returns canned settlement results.
type stubRepo struct {
	settleResult *models.SettlementResult
	settleErr    error
	settleCalls  int
	lastEntries  []models.LedgerEntry
	audits       []models.AuditLogEntry
	logs         []models.AuditLogEntry
}

func (r *stubRepo) SettleEntries(_ context.Context, _ string, entries []models.LedgerEntry) (*models.SettlementResult, error) {
	r.settleCalls++
	r.lastEntries = entries
	if r.settleErr != nil {
		return nil, r.settleErr
	}
	if r.settleResult != nil {
		return r.settleResult, nil
	}

	settled := make([]string, 0, len(entries))
	for i := range entries {
		settled = append(settled, entries[i].Transaction.TxnID)
	}
	return &models.SettlementResult{
		Settled:             true,
		SettledTransactions: settled,
		AlreadySettled:      []string{},
		Errors:              []models.EntryError{},
		AuditLogIDs:         []string{uuid.NewString()},
	}, nil
}

func (r *stubRepo) IsSettled(context.Context, string) (bool, error) { return false, nil }

func (r *stubRepo) AppendAudit(_ context.Context, entry *models.AuditLogEntry) (uuid.UUID, error) {
	r.audits = append(r.audits, *entry)
	return uuid.New(), nil
}

func (r *stubRepo) ListAuditLogs(context.Context, int, int) ([]models.AuditLogEntry, error) {
	return r.logs, nil
}

type stubCache struct {
	settled map[string]bool
	marked  []string
}

func (c *stubCache) MarkSettled(_ context.Context, txnIDs []string) error {
	c.marked = append(c.marked, txnIDs...)
	return nil
}

func (c *stubCache) IsSettled(_ context.Context, txnID string) (bool, error) {
	return c.settled[txnID], nil
}

type stubGW struct {
	events []*models.SettlementCompletedEvent
}

func (g *stubGW) PublishSettlementCompleted(_ context.Context, event *models.SettlementCompletedEvent) error {
	g.events = append(g.events, event)
	return nil
}

func testConfig() *models.Config {
	return &models.Config{
		Settlement: models.SettlementConfig{TimeoutSeconds: 5, MaxLedgerSize: 100},
		Bank:       models.BankConfig{CanonicalVariant: "extended"},
	}
}

func newTestUC(t *testing.T, repo settlement.SettlementRepo, cache settlement.SettlementCache, gw settlement.SettlementGW) settlement.SettlementUC {
	t.Helper()
	keys, err := keystore.LoadOrGenerate(filepath.Join(t.TempDir(), "keys.json"))
	require.NoError(t, err)
	return NewSettlementUC(testConfig(), keys, repo, cache, gw)
}

// bankKeystore exposes the keystore behind a usecase for envelope tests.
func newTestUCWithKeys(t *testing.T, repo settlement.SettlementRepo) (settlement.SettlementUC, *keystore.KeyStore) {
	t.Helper()
	keys, err := keystore.LoadOrGenerate(filepath.Join(t.TempDir(), "keys.json"))
	require.NoError(t, err)
	return NewSettlementUC(testConfig(), keys, repo, nil, nil), keys
}
