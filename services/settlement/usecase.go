package settlement

import (
	"context"

	"github.com/tigapay/offpay/internal/pkg/models"
)

// SettlementUC is the settlement core: verification of submitted ledgers and
// atomic settlement against wallet escrow.
type SettlementUC interface {
	// VerifyLedger checks the submission end to end without mutating state.
	VerifyLedger(ctx context.Context, input *models.SubmissionInput) (*models.VerificationResult, error)

	// SettleLedger verifies and then settles the submission all-or-none.
	SettleLedger(ctx context.Context, input *models.SubmissionInput) (*models.SettlementResult, error)

	// BankPublicKey returns the bank's ECDH public key in JWK form.
	BankPublicKey() *models.JWK

	// ListAuditLogs returns audit entries, newest first.
	ListAuditLogs(ctx context.Context, limit, offset int) ([]models.AuditLogEntry, error)
}
