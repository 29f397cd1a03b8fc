package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tigapay/offpay/internal/pkg/logger"
	"github.com/tigapay/offpay/internal/pkg/models"
	"github.com/tigapay/offpay/services/wallet"
)

// RegisterUser onboards a participant. The bank id is the identifier carried
// in transaction from_id/to_id fields, so it must be present and unique per
// role; uniqueness is enforced by the database.
func (uc *walletUC) RegisterUser(ctx context.Context, req *models.RegisterUserRequest) (*models.User, error) {
	if req.FullName == "" || req.EmailOrPhone == "" || req.BankID == "" {
		return nil, fmt.Errorf("full_name, email_or_phone and bank_id are required")
	}
	if req.Role != models.RoleSender && req.Role != models.RoleReceiver {
		return nil, wallet.ErrInvalidRole
	}

	user := &models.User{
		FullName:     req.FullName,
		EmailOrPhone: req.EmailOrPhone,
		Role:         req.Role,
		BankID:       req.BankID,
		PublicKey:    req.PublicKey,
		KYCStatus:    models.KYCStatusPending,
	}
	if req.PublicKey != nil {
		raw, err := json.Marshal(req.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("encode public key: %w", err)
		}
		user.PublicKeyRaw = raw
	}

	created, err := uc.repo.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}

	logger.Info("user registered",
		logger.String("user_id", created.UserID.String()),
		logger.String("bank_id", created.BankID),
		logger.String("role", created.Role))
	return created, nil
}
