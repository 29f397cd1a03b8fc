package settlement

import (
	"context"

	"github.com/tigapay/offpay/internal/pkg/models"
)

// SettlementGW publishes post-commit settlement notifications for downstream
// consumers. Publishing happens strictly after the database commit; a
// publish failure is logged, never rolled back.
type SettlementGW interface {
	PublishSettlementCompleted(ctx context.Context, event *models.SettlementCompletedEvent) error
}
