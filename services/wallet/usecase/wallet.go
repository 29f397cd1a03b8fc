package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tigapay/offpay/internal/pkg/logger"
	"github.com/tigapay/offpay/internal/pkg/models"
	"github.com/tigapay/offpay/services/wallet"
)

// OpenWallet creates a pending escrow wallet. The requested limit is
// escrowed in full up front: current_balance starts at the limit and
// used_amount at zero, so the balance invariant holds from the first row.
// The wallet cannot settle until an operator approves it.
func (uc *walletUC) OpenWallet(ctx context.Context, req *models.OpenWalletRequest) (*models.Wallet, error) {
	if req.RequestedLimit <= 0 {
		return nil, wallet.ErrInvalidLimit
	}

	user, err := uc.repo.GetUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	walletID := req.WalletID
	if walletID == "" {
		walletID = "wlt-" + uuid.NewString()
	}

	limit := decimal.NewFromFloat(req.RequestedLimit)
	created, err := uc.repo.CreateWallet(ctx, &models.Wallet{
		WalletID:       walletID,
		UserID:         user.UserID,
		ApprovedLimit:  limit,
		CurrentBalance: limit,
		UsedAmount:     decimal.Zero,
		LockedAmount:   decimal.Zero,
		Status:         models.WalletStatusPending,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("wallet opened",
		logger.String("wallet_id", created.WalletID),
		logger.String("user_id", user.UserID.String()),
		logger.String("limit", limit.String()))
	return created, nil
}

// ApproveWallet enables settlement. Pending wallets approve on first review;
// suspended wallets may be re-approved after investigation.
func (uc *walletUC) ApproveWallet(ctx context.Context, walletID, operatorID string) (*models.Wallet, error) {
	return uc.transition(ctx, walletID, operatorID, models.WalletStatusApproved,
		models.WalletStatusPending, models.WalletStatusSuspended)
}

// SuspendWallet blocks settlement against an approved wallet.
func (uc *walletUC) SuspendWallet(ctx context.Context, walletID, operatorID string) (*models.Wallet, error) {
	return uc.transition(ctx, walletID, operatorID, models.WalletStatusSuspended,
		models.WalletStatusApproved)
}

// GetWallet returns the wallet with its current escrow balances.
func (uc *walletUC) GetWallet(ctx context.Context, walletID string) (*models.Wallet, error) {
	return uc.repo.GetWallet(ctx, walletID)
}

func (uc *walletUC) transition(ctx context.Context, walletID, operatorID, target string, allowedFrom ...string) (*models.Wallet, error) {
	w, err := uc.repo.GetWallet(ctx, walletID)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, from := range allowedFrom {
		if w.Status == from {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, wallet.ErrInvalidTransition
	}

	updated, err := uc.repo.UpdateWalletStatus(ctx, walletID, target)
	if err != nil {
		return nil, err
	}

	logger.Info("wallet status changed",
		logger.String("wallet_id", walletID),
		logger.String("from", w.Status),
		logger.String("to", target),
		logger.String("operator_id", operatorID))
	return updated, nil
}
