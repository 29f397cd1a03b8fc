package usecase

import (
	"time"

	"github.com/tigapay/offpay/internal/pkg/keystore"
	"github.com/tigapay/offpay/internal/pkg/models"
	"github.com/tigapay/offpay/services/settlement"
)

// settlementUC implements settlement.SettlementUC. Cache and gateway are
// optional collaborators: a nil cache skips the replay short-circuit, a nil
// gateway skips post-commit publishing.
type settlementUC struct {
	cfg   *models.Config
	keys  *keystore.KeyStore
	repo  settlement.SettlementRepo
	cache settlement.SettlementCache
	gw    settlement.SettlementGW
}

// NewSettlementUC builds the settlement usecase.
func NewSettlementUC(
	cfg *models.Config,
	keys *keystore.KeyStore,
	repo settlement.SettlementRepo,
	cache settlement.SettlementCache,
	gw settlement.SettlementGW,
) settlement.SettlementUC {
	return &settlementUC{
		cfg:   cfg,
		keys:  keys,
		repo:  repo,
		cache: cache,
		gw:    gw,
	}
}

// BankPublicKey returns the bank's ECDH public key for envelope sealing.
func (uc *settlementUC) BankPublicKey() *models.JWK {
	return uc.keys.PublicJWK()
}

func (uc *settlementUC) settleTimeout() time.Duration {
	secs := uc.cfg.Settlement.TimeoutSeconds
	if secs <= 0 {
		secs = 30
	}
	return time.Duration(secs) * time.Second
}
