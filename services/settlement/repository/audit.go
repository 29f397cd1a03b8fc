package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tigapay/offpay/internal/pkg/models"
)

const (
	queryInsertAudit = `
		INSERT INTO audit_logs (actor, action, txn_id, status, details)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	queryListAudits = `
		SELECT id, actor, action, txn_id, status, details, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`
)

// appendBatchAudits writes the per-entry settle audits and the batch summary
// inside the settlement transaction, so audit rows exist exactly when the
// settlement they describe committed. Each settle audit records the debit and
// the wallet balances after it.
func (r *settlementRepo) appendBatchAudits(ctx context.Context, tx *sqlx.Tx, receiverID string, settled []settledEntry, result *models.SettlementResult) ([]string, error) {
	ids := make([]string, 0, len(settled)+1)

	for i := range settled {
		entry := &settled[i]
		id, err := insertAudit(ctx, tx, &models.AuditLogEntry{
			Actor:  models.ActorBank,
			Action: models.ActionSettle,
			TxnID:  &entry.TxnID,
			Status: models.AuditStatusSuccess,
			Details: models.AuditDetails(map[string]interface{}{
				"receiver_id":     receiverID,
				"wallet_id":       entry.WalletID,
				"amount":          entry.Amount,
				"current_balance": entry.CurrentBalance,
				"used_amount":     entry.UsedAmount,
			}),
		})
		if err != nil {
			return nil, err
		}
		ids = append(ids, id.String())
	}

	id, err := insertAudit(ctx, tx, &models.AuditLogEntry{
		Actor:  models.ActorBank,
		Action: models.ActionSettleBatch,
		Status: models.AuditStatusSuccess,
		Details: models.AuditDetails(map[string]interface{}{
			"receiver_id":     receiverID,
			"settled":         len(result.SettledTransactions),
			"already_settled": len(result.AlreadySettled),
		}),
	})
	if err != nil {
		return nil, err
	}
	ids = append(ids, id.String())

	return ids, nil
}

// AppendAudit writes one audit entry outside any settlement transaction, for
// failure paths that must survive the rollback of the work they describe.
func (r *settlementRepo) AppendAudit(ctx context.Context, entry *models.AuditLogEntry) (uuid.UUID, error) {
	return insertAudit(ctx, r.db, entry)
}

func insertAudit(ctx context.Context, q sqlx.QueryerContext, entry *models.AuditLogEntry) (uuid.UUID, error) {
	details := entry.Details
	if len(details) == 0 {
		details = []byte(`{}`)
	}

	var id uuid.UUID
	row := q.QueryRowxContext(ctx, queryInsertAudit,
		entry.Actor, entry.Action, entry.TxnID, entry.Status, details)
	if err := row.Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("insert audit log: %w", err)
	}
	return id, nil
}

// ListAuditLogs returns audit entries, newest first.
func (r *settlementRepo) ListAuditLogs(ctx context.Context, limit, offset int) ([]models.AuditLogEntry, error) {
	logs := []models.AuditLogEntry{}
	if err := r.db.SelectContext(ctx, &logs, queryListAudits, limit, offset); err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return logs, nil
}
