package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tigapay/offpay/internal/pkg/crypto"
	"github.com/tigapay/offpay/internal/pkg/middleware"
	"github.com/tigapay/offpay/internal/pkg/models"
)

// stubUC is a canned settlement.SettlementUC.
type stubUC struct {
	verifyResult *models.VerificationResult
	settleResult *models.SettlementResult
	err          error
	publicKey    *models.JWK
	logs         []models.AuditLogEntry
}

func (s *stubUC) VerifyLedger(context.Context, *models.SubmissionInput) (*models.VerificationResult, error) {
	return s.verifyResult, s.err
}

func (s *stubUC) SettleLedger(context.Context, *models.SubmissionInput) (*models.SettlementResult, error) {
	return s.settleResult, s.err
}

func (s *stubUC) BankPublicKey() *models.JWK { return s.publicKey }

func (s *stubUC) ListAuditLogs(context.Context, int, int) ([]models.AuditLogEntry, error) {
	return s.logs, nil
}

func testCfg() *models.Config {
	return &models.Config{
		App:    models.AppConfig{Name: "offpay-bank", Version: "1.0.0"},
		Bank:   models.BankConfig{CanonicalVariant: "extended"},
		APIKey: models.APIKeyConfig{MerchantGateway: "mg-key", AdminConsole: "ac-key"},
	}
}

const emptyLedgerBody = `{"entries":[]}`

func doRequest(h *SettlementHandler, method, path, body, apiKey string) *httptest.ResponseRecorder {
	e := echo.New()
	h.RegisterRoutes(e, middleware.NewAPIKeyMiddleware(&testCfg().APIKey))

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if apiKey != "" {
		req.Header.Set(middleware.APIKeyHeader, apiKey)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSettleLedgerSettled(t *testing.T) {
	h := NewSettlementHandler(testCfg(), &stubUC{
		settleResult: &models.SettlementResult{
			Settled:             true,
			SettledTransactions: []string{"txn-1"},
			Errors:              []models.EntryError{},
			AuditLogIDs:         []string{"a1"},
		},
	})

	rec := doRequest(h, http.MethodPost, "/settle-ledger", emptyLedgerBody, "mg-key")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Bare result object, no service envelope: clients read settled at top level.
	var resp models.SettlementResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Settled)
	assert.Equal(t, []string{"txn-1"}, resp.SettledTransactions)
	assert.Equal(t, []string{"a1"}, resp.AuditLogIDs)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Contains(t, raw, "settled")
	assert.NotContains(t, raw, "success")
	assert.NotContains(t, raw, "data")
}

func TestSettleLedgerNotSettled(t *testing.T) {
	h := NewSettlementHandler(testCfg(), &stubUC{
		settleResult: &models.SettlementResult{
			Settled:             false,
			SettledTransactions: []string{},
			Errors:              []models.EntryError{{LedgerIndex: 0, Reason: "signature invalid"}},
		},
	})

	rec := doRequest(h, http.MethodPost, "/settle-ledger", emptyLedgerBody, "mg-key")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp models.SettlementResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Settled)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "signature invalid", resp.Errors[0].Reason)
}

func TestSettleLedgerRequiresAPIKey(t *testing.T) {
	h := NewSettlementHandler(testCfg(), &stubUC{})

	rec := doRequest(h, http.MethodPost, "/settle-ledger", emptyLedgerBody, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(h, http.MethodPost, "/settle-ledger", emptyLedgerBody, "wrong-key")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSettleLedgerDecryptFailure(t *testing.T) {
	h := NewSettlementHandler(testCfg(), &stubUC{err: crypto.ErrDecryptFailed})

	rec := doRequest(h, http.MethodPost, "/settle-ledger", emptyLedgerBody, "mg-key")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyLedgerOK(t *testing.T) {
	h := NewSettlementHandler(testCfg(), &stubUC{
		verifyResult: &models.VerificationResult{
			Valid:                true,
			VerifiedTransactions: []string{"txn-1"},
			Errors:               []models.EntryError{},
		},
	})

	rec := doRequest(h, http.MethodPost, "/verify-ledger", emptyLedgerBody, "mg-key")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.VerificationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	assert.Equal(t, []string{"txn-1"}, resp.VerifiedTransactions)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Contains(t, raw, "valid")
	assert.NotContains(t, raw, "data")
}

func TestVerifyLedgerRejectsGarbageBody(t *testing.T) {
	h := NewSettlementHandler(testCfg(), &stubUC{})

	rec := doRequest(h, http.MethodPost, "/verify-ledger", `{"entries":`, "mg-key")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBankPublicKeyIsOpen(t *testing.T) {
	h := NewSettlementHandler(testCfg(), &stubUC{
		publicKey: &models.JWK{Kty: "EC", Crv: "P-256", X: "xx", Y: "yy"},
	})

	rec := doRequest(h, http.MethodGet, "/bank-public-key", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			PublicKey models.JWK `json:"public_key"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "P-256", resp.Data.PublicKey.Crv)
}

func TestBankLogsRequiresAdminKey(t *testing.T) {
	h := NewSettlementHandler(testCfg(), &stubUC{logs: []models.AuditLogEntry{}})

	rec := doRequest(h, http.MethodGet, "/bank-logs", "", "mg-key")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(h, http.MethodGet, "/bank-logs", "", "ac-key")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDescribe(t *testing.T) {
	h := NewSettlementHandler(testCfg(), &stubUC{})

	rec := doRequest(h, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "offpay-bank", resp.Data["service"])
	assert.Equal(t, "extended", resp.Data["canonical_variant"])
}
