package wallet

import (
	"context"

	"github.com/tigapay/offpay/internal/pkg/models"
)

// WalletUC covers participant onboarding and the wallet escrow lifecycle.
// All operations are operator-initiated through the admin surface.
type WalletUC interface {
	RegisterUser(ctx context.Context, req *models.RegisterUserRequest) (*models.User, error)

	// OpenWallet creates a pending wallet escrowing the requested limit.
	OpenWallet(ctx context.Context, req *models.OpenWalletRequest) (*models.Wallet, error)

	// ApproveWallet moves a pending wallet to approved, enabling settlement.
	ApproveWallet(ctx context.Context, walletID, operatorID string) (*models.Wallet, error)

	// SuspendWallet blocks further settlement against the wallet.
	SuspendWallet(ctx context.Context, walletID, operatorID string) (*models.Wallet, error)

	GetWallet(ctx context.Context, walletID string) (*models.Wallet, error)
}
