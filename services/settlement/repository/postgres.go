package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/tigapay/offpay/internal/pkg/database"
	"github.com/tigapay/offpay/internal/pkg/logger"
	"github.com/tigapay/offpay/internal/pkg/models"
	"github.com/tigapay/offpay/services/settlement"
)

const pgUniqueViolation = "23505"

const (
	queryWalletByIDForUpdate = `
		SELECT wallet_id, user_id, approved_limit, current_balance, used_amount, locked_amount, status, created_at, updated_at
		FROM wallets
		WHERE wallet_id = $1
		FOR UPDATE`

	queryWalletByBankIDForUpdate = `
		SELECT w.wallet_id, w.user_id, w.approved_limit, w.current_balance, w.used_amount, w.locked_amount, w.status, w.created_at, w.updated_at
		FROM wallets w
		JOIN users u ON u.user_id = w.user_id
		WHERE u.bank_id = $1 AND u.role = 'sender'
		FOR UPDATE OF w`

	queryInsertSettledTxn = `
		INSERT INTO settled_transactions (txn_id, wallet_id, from_user_id, to_user_id, amount, ledger_index, receiver_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	queryDebitWallet = `
		UPDATE wallets
		SET current_balance = current_balance - $1,
		    used_amount = used_amount + $1,
		    updated_at = NOW()
		WHERE wallet_id = $2`

	queryIsSettled = `SELECT EXISTS (SELECT 1 FROM settled_transactions WHERE txn_id = $1)`
)

type settlementRepo struct {
	db *sqlx.DB
}

// settledEntry carries what the audit trail records per settled transaction:
// the debit and the wallet balances after it.
type settledEntry struct {
	TxnID          string
	WalletID       string
	Amount         decimal.Decimal
	CurrentBalance decimal.Decimal
	UsedAmount     decimal.Decimal
}

// NewSettlementRepo builds the Postgres-backed settlement repository.
func NewSettlementRepo(client *database.PostgresClient) settlement.SettlementRepo {
	return &settlementRepo{db: client.GetDB()}
}

// SettleEntries applies a verified ledger inside one serializable
// transaction. Each entry runs under a savepoint so a unique-violation replay
// can be rolled back locally and reported as already settled without
// poisoning the batch. Any other per-entry failure marks the batch failed:
// the whole transaction rolls back and no balance moves.
func (r *settlementRepo) SettleEntries(ctx context.Context, receiverID string, entries []models.LedgerEntry) (*models.SettlementResult, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, fmt.Errorf("begin settlement tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result := &models.SettlementResult{
		Settled:             true,
		SettledTransactions: []string{},
		AlreadySettled:      []string{},
		Errors:              []models.EntryError{},
		AuditLogIDs:         []string{},
	}

	settled := make([]settledEntry, 0, len(entries))
	for i := range entries {
		entry := &entries[i]
		savepoint := fmt.Sprintf("entry_%d", i)
		if _, err := tx.ExecContext(ctx, "SAVEPOINT "+savepoint); err != nil {
			return nil, fmt.Errorf("savepoint: %w", err)
		}

		reason, replay, applied, err := r.settleEntry(ctx, tx, receiverID, entry)
		if err != nil {
			return nil, err
		}

		switch {
		case replay:
			if _, err := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+savepoint); err != nil {
				return nil, fmt.Errorf("rollback to savepoint: %w", err)
			}
			result.AlreadySettled = append(result.AlreadySettled, entry.Transaction.TxnID)
		case reason != "":
			if _, err := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+savepoint); err != nil {
				return nil, fmt.Errorf("rollback to savepoint: %w", err)
			}
			result.Settled = false
			result.Errors = append(result.Errors, models.EntryError{
				LedgerIndex: entry.LedgerIndex,
				Reason:      reason,
			})
		default:
			if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+savepoint); err != nil {
				return nil, fmt.Errorf("release savepoint: %w", err)
			}
			settled = append(settled, *applied)
			result.SettledTransactions = append(result.SettledTransactions, entry.Transaction.TxnID)
		}
	}

	if !result.Settled {
		// All-or-none: the deferred rollback discards every entry.
		result.SettledTransactions = []string{}
		result.AuditLogIDs = []string{}
		return result, nil
	}

	auditIDs, err := r.appendBatchAudits(ctx, tx, receiverID, settled, result)
	if err != nil {
		return nil, err
	}
	result.AuditLogIDs = auditIDs

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit settlement tx: %w", err)
	}

	logger.Info("ledger settled",
		logger.String("receiver_id", receiverID),
		logger.Int("settled", len(result.SettledTransactions)),
		logger.Int("already_settled", len(result.AlreadySettled)))
	return result, nil
}

// settleEntry applies one entry: resolve and lock the wallet, write the
// double-spend guard row, debit the balance. Returns a rejection reason, an
// idempotent-replay flag, the applied debit for the audit trail, or a hard
// database error.
func (r *settlementRepo) settleEntry(ctx context.Context, tx *sqlx.Tx, receiverID string, entry *models.LedgerEntry) (string, bool, *settledEntry, error) {
	txn := &entry.Transaction

	wallet, err := r.lockWallet(ctx, tx, txn)
	if err != nil {
		return "", false, nil, err
	}
	if wallet == nil {
		return settlement.ReasonWalletNotFound, false, nil, nil
	}
	if wallet.Status != models.WalletStatusApproved {
		return settlement.ReasonWalletNotApproved, false, nil, nil
	}

	amount := decimal.NewFromFloat(txn.Amount)
	if wallet.CurrentBalance.LessThan(amount) {
		return settlement.ReasonInsufficientFunds, false, nil, nil
	}

	_, err = tx.ExecContext(ctx, queryInsertSettledTxn,
		txn.TxnID, wallet.WalletID, txn.FromID, txn.ToID,
		amount, entry.LedgerIndex, receiverID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return "", true, nil, nil
		}
		return "", false, nil, fmt.Errorf("insert settled txn %s: %w", txn.TxnID, err)
	}

	if _, err := tx.ExecContext(ctx, queryDebitWallet, amount, wallet.WalletID); err != nil {
		return "", false, nil, fmt.Errorf("debit wallet %s: %w", wallet.WalletID, err)
	}

	return "", false, &settledEntry{
		TxnID:          txn.TxnID,
		WalletID:       wallet.WalletID,
		Amount:         amount,
		CurrentBalance: wallet.CurrentBalance.Sub(amount),
		UsedAmount:     wallet.UsedAmount.Add(amount),
	}, nil
}

// lockWallet resolves the paying wallet: by wallet_id when the transaction
// names one, falling back to the sender's bank id. Returns nil when neither
// resolves.
func (r *settlementRepo) lockWallet(ctx context.Context, tx *sqlx.Tx, txn *models.Transaction) (*models.Wallet, error) {
	var wallet models.Wallet

	if txn.WalletID != "" {
		err := tx.GetContext(ctx, &wallet, queryWalletByIDForUpdate, txn.WalletID)
		if err == nil {
			return &wallet, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("lock wallet %s: %w", txn.WalletID, err)
		}
	}

	err := tx.GetContext(ctx, &wallet, queryWalletByBankIDForUpdate, txn.FromID)
	if err == nil {
		return &wallet, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return nil, fmt.Errorf("lock wallet by bank id %s: %w", txn.FromID, err)
}

// IsSettled reports whether the txn already has a guard row.
func (r *settlementRepo) IsSettled(ctx context.Context, txnID string) (bool, error) {
	var settled bool
	if err := r.db.GetContext(ctx, &settled, queryIsSettled, txnID); err != nil {
		return false, fmt.Errorf("check settled txn %s: %w", txnID, err)
	}
	return settled, nil
}
