package repository

import (
	"context"
	"time"

	"github.com/tigapay/offpay/internal/pkg/database"
	"github.com/tigapay/offpay/services/settlement"
)

const (
	settledKeyPrefix = "offpay:settled:"
	settledKeyTTL    = 24 * time.Hour
)

type settlementCache struct {
	redis *database.RedisClient
}

// NewSettlementCache builds the Redis-backed settled-txn cache.
func NewSettlementCache(redis *database.RedisClient) settlement.SettlementCache {
	return &settlementCache{redis: redis}
}

// MarkSettled records settled txn ids with a bounded TTL. Expiry is safe:
// the database unique constraint remains the authority.
func (c *settlementCache) MarkSettled(ctx context.Context, txnIDs []string) error {
	for _, txnID := range txnIDs {
		if err := c.redis.Set(ctx, settledKeyPrefix+txnID, "1", settledKeyTTL); err != nil {
			return err
		}
	}
	return nil
}

// IsSettled reports whether the cache has seen the txn settle.
func (c *settlementCache) IsSettled(ctx context.Context, txnID string) (bool, error) {
	return c.redis.Exists(ctx, settledKeyPrefix+txnID)
}
