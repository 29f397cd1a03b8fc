package usecase

import (
	"github.com/tigapay/offpay/services/wallet"
)

type walletUC struct {
	repo wallet.WalletRepo
}

// NewWalletUC builds the wallet usecase.
func NewWalletUC(repo wallet.WalletRepo) wallet.WalletUC {
	return &walletUC{repo: repo}
}
