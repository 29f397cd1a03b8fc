package wallet

import (
	"context"

	"github.com/tigapay/offpay/internal/pkg/models"
)

// WalletRepo owns the users and wallets tables for the admin surface.
// Settlement-time balance mutation lives with the settlement repository.
type WalletRepo interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)

	CreateWallet(ctx context.Context, w *models.Wallet) (*models.Wallet, error)
	GetWallet(ctx context.Context, walletID string) (*models.Wallet, error)
	UpdateWalletStatus(ctx context.Context, walletID, status string) (*models.Wallet, error)
}
