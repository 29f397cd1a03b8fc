package settlement

import (
	"context"

	"github.com/google/uuid"
	"github.com/tigapay/offpay/internal/pkg/models"
)

// SettlementRepo owns the wallets, settled_transactions and audit_logs
// tables. SettleEntries is the only writer of wallet balances.
type SettlementRepo interface {
	// SettleEntries runs the all-or-none settlement transaction over a
	// verified ledger. Per-entry success audits land in the same database
	// transaction; when any entry fails for a reason other than idempotent
	// replay the whole transaction rolls back and the result carries the
	// failures.
	SettleEntries(ctx context.Context, receiverID string, entries []models.LedgerEntry) (*models.SettlementResult, error)

	// IsSettled reports whether a txn_id already has a settled row.
	IsSettled(ctx context.Context, txnID string) (bool, error)

	// AppendAudit writes one audit entry in its own short transaction.
	AppendAudit(ctx context.Context, entry *models.AuditLogEntry) (uuid.UUID, error)

	// ListAuditLogs returns audit entries ordered by recency.
	ListAuditLogs(ctx context.Context, limit, offset int) ([]models.AuditLogEntry, error)
}

// SettlementCache is a read-through cache of settled txn ids. Postgres
// uniqueness remains the authoritative double-spend guard; the cache only
// short-circuits obvious replays before verification work.
type SettlementCache interface {
	MarkSettled(ctx context.Context, txnIDs []string) error
	IsSettled(ctx context.Context, txnID string) (bool, error)
}
