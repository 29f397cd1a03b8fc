package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tigapay/offpay/internal/pkg/crypto"
	"github.com/tigapay/offpay/internal/pkg/logger"
	"github.com/tigapay/offpay/internal/pkg/models"
	"github.com/tigapay/offpay/services/settlement"
)

// ParseSubmission decodes a settlement request body into its tagged form.
// Merchant gateways have shipped three plaintext shapes — a bare entry array,
// a ledger object, and a {"ledger": ...} wrapper — plus the encrypted
// envelope; all four are accepted here so the handler never sniffs bodies.
func ParseSubmission(body []byte) (*models.SubmissionInput, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, settlement.ErrEmptySubmission
	}

	if trimmed[0] == '[' {
		ledger, err := parseLedgerPayload(trimmed)
		if err != nil {
			return nil, err
		}
		return &models.SubmissionInput{Ledger: ledger}, nil
	}

	var probe struct {
		EncryptedPayload string          `json:"encrypted_payload"`
		Ledger           json.RawMessage `json:"ledger"`
	}
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return nil, fmt.Errorf("parse submission: %w", err)
	}

	if probe.EncryptedPayload != "" {
		var env models.Envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("parse envelope: %w", err)
		}
		return &models.SubmissionInput{Envelope: &env}, nil
	}

	payload := trimmed
	if len(probe.Ledger) > 0 {
		payload = probe.Ledger
	}
	ledger, err := parseLedgerPayload(payload)
	if err != nil {
		return nil, err
	}
	return &models.SubmissionInput{Ledger: ledger}, nil
}

// parseLedgerPayload decodes a plaintext ledger: either an entry array or a
// ledger object carrying entries plus the merchant signature fields.
func parseLedgerPayload(payload []byte) (*models.Ledger, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, settlement.ErrEmptySubmission
	}

	if trimmed[0] == '[' {
		var entries []models.LedgerEntry
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("parse ledger entries: %w", err)
		}
		return &models.Ledger{Entries: entries}, nil
	}

	var ledger models.Ledger
	if err := json.Unmarshal(trimmed, &ledger); err != nil {
		return nil, fmt.Errorf("parse ledger: %w", err)
	}
	return &ledger, nil
}

// openSubmission resolves a submission to its plaintext ledger, decrypting
// the envelope with the bank key when needed.
func (uc *settlementUC) openSubmission(input *models.SubmissionInput) (*models.Ledger, error) {
	if !input.IsEncrypted() {
		if input.Ledger == nil {
			return nil, settlement.ErrEmptySubmission
		}
		return input.Ledger, nil
	}

	payload, err := crypto.OpenEnvelope(input.Envelope, uc.keys.PrivateKey())
	if err != nil {
		logger.WithError(err).Warn("envelope decrypt failed")
		return nil, err
	}

	ledger, err := parseLedgerPayload(payload)
	if err != nil {
		return nil, err
	}
	// A transaction envelope identifies its signer out of band of the
	// payload; carry it onto entries that omit their own key.
	if input.Envelope.SenderPublicKey != nil {
		for i := range ledger.Entries {
			if ledger.Entries[i].Transaction.SenderPublicKey == nil {
				ledger.Entries[i].Transaction.SenderPublicKey = input.Envelope.SenderPublicKey
			}
		}
	}
	return ledger, nil
}
