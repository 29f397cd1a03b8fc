package usecase

import (
	"context"
	"encoding/json"

	"github.com/tigapay/offpay/internal/pkg/logger"
	"github.com/tigapay/offpay/internal/pkg/models"
	"github.com/tigapay/offpay/services/settlement"
)

// SettleLedger verifies the submission and settles every verified entry in a
// single all-or-none database transaction. Idempotent replays are reported,
// not retried; any other entry failure rolls the whole batch back.
func (uc *settlementUC) SettleLedger(ctx context.Context, input *models.SubmissionInput) (*models.SettlementResult, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.settleTimeout())
	defer cancel()

	ledger, err := uc.openSubmission(input)
	if err != nil {
		uc.auditFailure(ctx, models.ActionDecryptEnvelope, nil, err.Error())
		return nil, err
	}

	if max := uc.cfg.Settlement.MaxLedgerSize; max > 0 && len(ledger.Entries) > max {
		uc.auditFailure(ctx, models.ActionReject, nil, settlement.ErrLedgerTooLarge.Error())
		return nil, settlement.ErrLedgerTooLarge
	}

	verification := uc.verifyLedger(ctx, ledger)
	if !verification.Valid {
		uc.audit(ctx, models.ActionVerifyLedger, nil, models.AuditStatusError,
			models.AuditDetails(map[string]interface{}{
				"receiver_id": ledger.ReceiverID,
				"errors":      verification.Errors,
			}))
		return &models.SettlementResult{
			Settled:             false,
			SettledTransactions: []string{},
			Errors:              verification.Errors,
			AuditLogIDs:         []string{},
		}, nil
	}

	verified, cachedReplays := uc.partitionReplays(ctx, ledger.Entries)

	result := &models.SettlementResult{
		Settled:             true,
		SettledTransactions: []string{},
		AlreadySettled:      cachedReplays,
		Errors:              []models.EntryError{},
		AuditLogIDs:         []string{},
	}

	if len(verified) > 0 {
		settled, err := uc.repo.SettleEntries(ctx, ledger.ReceiverID, verified)
		if err != nil {
			uc.auditFailure(ctx, models.ActionSettleBatch, nil, err.Error())
			return nil, err
		}
		result.Settled = settled.Settled
		result.SettledTransactions = settled.SettledTransactions
		result.AlreadySettled = append(result.AlreadySettled, settled.AlreadySettled...)
		result.Errors = settled.Errors
		result.AuditLogIDs = settled.AuditLogIDs
	}

	if !result.Settled {
		uc.audit(ctx, models.ActionSettleBatch, nil, models.AuditStatusError,
			models.AuditDetails(map[string]interface{}{
				"receiver_id": ledger.ReceiverID,
				"errors":      result.Errors,
			}))
		return result, nil
	}

	uc.afterCommit(ctx, ledger.ReceiverID, result)
	return result, nil
}

// partitionReplays drops entries the cache already knows are settled. The
// cache is advisory; a miss just means the database unique constraint does
// the work instead.
func (uc *settlementUC) partitionReplays(ctx context.Context, entries []models.LedgerEntry) ([]models.LedgerEntry, []string) {
	replays := []string{}
	if uc.cache == nil {
		return entries, replays
	}

	fresh := make([]models.LedgerEntry, 0, len(entries))
	for i := range entries {
		txnID := entries[i].Transaction.TxnID
		settled, err := uc.cache.IsSettled(ctx, txnID)
		if err != nil {
			logger.WithError(err).Warn("settled cache read failed")
			fresh = append(fresh, entries[i])
			continue
		}
		if settled {
			replays = append(replays, txnID)
			continue
		}
		fresh = append(fresh, entries[i])
	}
	return fresh, replays
}

// afterCommit runs the post-commit side effects: cache marking and the
// settlement event. Both are best effort; the settlement itself is durable.
func (uc *settlementUC) afterCommit(ctx context.Context, receiverID string, result *models.SettlementResult) {
	if uc.cache != nil && len(result.SettledTransactions) > 0 {
		if err := uc.cache.MarkSettled(ctx, result.SettledTransactions); err != nil {
			logger.WithError(err).Warn("settled cache write failed")
		}
	}

	if uc.gw != nil && len(result.SettledTransactions) > 0 {
		event := &models.SettlementCompletedEvent{
			ReceiverID:          receiverID,
			SettledTransactions: result.SettledTransactions,
			AlreadySettled:      result.AlreadySettled,
			SettledAt:           models.FormatTime(models.Now()),
		}
		if err := uc.gw.PublishSettlementCompleted(ctx, event); err != nil {
			logger.WithError(err).Warn("settlement event publish failed")
		}
	}
}

// ListAuditLogs returns audit entries, newest first, with a sane default page.
func (uc *settlementUC) ListAuditLogs(ctx context.Context, limit, offset int) ([]models.AuditLogEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return uc.repo.ListAuditLogs(ctx, limit, offset)
}

func (uc *settlementUC) audit(ctx context.Context, action string, txnID *string, status string, details json.RawMessage) {
	entry := &models.AuditLogEntry{
		Actor:   models.ActorBank,
		Action:  action,
		TxnID:   txnID,
		Status:  status,
		Details: details,
	}
	if _, err := uc.repo.AppendAudit(ctx, entry); err != nil {
		logger.WithError(err).Error("audit append failed",
			logger.String("action", action))
	}
}

func (uc *settlementUC) auditFailure(ctx context.Context, action string, txnID *string, reason string) {
	uc.audit(ctx, action, txnID, models.AuditStatusError,
		models.AuditDetails(map[string]interface{}{"reason": reason}))
}
