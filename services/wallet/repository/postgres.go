package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/tigapay/offpay/internal/pkg/database"
	"github.com/tigapay/offpay/internal/pkg/models"
	"github.com/tigapay/offpay/services/wallet"
)

const pgUniqueViolation = "23505"

const (
	queryInsertUser = `
		INSERT INTO users (full_name, email_or_phone, role, bank_id, public_key, kyc_status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING user_id, full_name, email_or_phone, role, bank_id, public_key, kyc_status, created_at, updated_at`

	queryGetUser = `
		SELECT user_id, full_name, email_or_phone, role, bank_id, public_key, kyc_status, created_at, updated_at
		FROM users
		WHERE user_id = $1`

	queryInsertWallet = `
		INSERT INTO wallets (wallet_id, user_id, approved_limit, current_balance, used_amount, locked_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING wallet_id, user_id, approved_limit, current_balance, used_amount, locked_amount, status, created_at, updated_at`

	queryGetWallet = `
		SELECT wallet_id, user_id, approved_limit, current_balance, used_amount, locked_amount, status, created_at, updated_at
		FROM wallets
		WHERE wallet_id = $1`

	queryUpdateWalletStatus = `
		UPDATE wallets
		SET status = $1, updated_at = NOW()
		WHERE wallet_id = $2
		RETURNING wallet_id, user_id, approved_limit, current_balance, used_amount, locked_amount, status, created_at, updated_at`
)

type walletRepo struct {
	db *sqlx.DB
}

// NewWalletRepo builds the Postgres-backed wallet repository.
func NewWalletRepo(client *database.PostgresClient) wallet.WalletRepo {
	return &walletRepo{db: client.GetDB()}
}

func (r *walletRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	publicKey := user.PublicKeyRaw
	if len(publicKey) == 0 {
		publicKey = nil
	}

	var created models.User
	err := r.db.GetContext(ctx, &created, queryInsertUser,
		user.FullName, user.EmailOrPhone, user.Role, user.BankID, publicKey, user.KYCStatus)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, wallet.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &created, nil
}

func (r *walletRepo) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, queryGetUser, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, wallet.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}
	return &user, nil
}

func (r *walletRepo) CreateWallet(ctx context.Context, w *models.Wallet) (*models.Wallet, error) {
	var created models.Wallet
	err := r.db.GetContext(ctx, &created, queryInsertWallet,
		w.WalletID, w.UserID, w.ApprovedLimit, w.CurrentBalance, w.UsedAmount, w.LockedAmount, w.Status)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, wallet.ErrWalletExists
		}
		return nil, fmt.Errorf("insert wallet: %w", err)
	}
	return &created, nil
}

func (r *walletRepo) GetWallet(ctx context.Context, walletID string) (*models.Wallet, error) {
	var w models.Wallet
	if err := r.db.GetContext(ctx, &w, queryGetWallet, walletID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, wallet.ErrWalletNotFound
		}
		return nil, fmt.Errorf("get wallet %s: %w", walletID, err)
	}
	return &w, nil
}

func (r *walletRepo) UpdateWalletStatus(ctx context.Context, walletID, status string) (*models.Wallet, error) {
	var w models.Wallet
	if err := r.db.GetContext(ctx, &w, queryUpdateWalletStatus, status, walletID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, wallet.ErrWalletNotFound
		}
		return nil, fmt.Errorf("update wallet %s status: %w", walletID, err)
	}
	return &w, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
