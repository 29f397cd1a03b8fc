package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tigapay/offpay/internal/pkg/logger"
	"github.com/tigapay/offpay/internal/pkg/models"
	"github.com/tigapay/offpay/internal/utils"
	"github.com/tigapay/offpay/services/wallet"
)

// WalletHandler exposes the operator admin surface: participant onboarding
// and the wallet escrow lifecycle.
type WalletHandler struct {
	walletUC wallet.WalletUC
}

// NewWalletHandler creates the wallet HTTP handler.
func NewWalletHandler(uc wallet.WalletUC) *WalletHandler {
	return &WalletHandler{walletUC: uc}
}

// RegisterUser handles POST /admin/users.
func (h *WalletHandler) RegisterUser(c echo.Context) error {
	var req models.RegisterUserRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "invalid request body")
	}

	user, err := h.walletUC.RegisterUser(c.Request().Context(), &req)
	if err != nil {
		return h.walletError(c, err)
	}
	return utils.SuccessResponse(c, http.StatusCreated, "user registered", user)
}

// OpenWallet handles POST /admin/wallets.
func (h *WalletHandler) OpenWallet(c echo.Context) error {
	var req models.OpenWalletRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "invalid request body")
	}

	w, err := h.walletUC.OpenWallet(c.Request().Context(), &req)
	if err != nil {
		return h.walletError(c, err)
	}
	return utils.SuccessResponse(c, http.StatusCreated, "wallet opened", w)
}

// ApproveWallet handles POST /admin/wallets/:id/approve.
func (h *WalletHandler) ApproveWallet(c echo.Context) error {
	w, err := h.walletUC.ApproveWallet(c.Request().Context(), c.Param("id"), operatorID(c))
	if err != nil {
		return h.walletError(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "wallet approved", w)
}

// SuspendWallet handles POST /admin/wallets/:id/suspend.
func (h *WalletHandler) SuspendWallet(c echo.Context) error {
	w, err := h.walletUC.SuspendWallet(c.Request().Context(), c.Param("id"), operatorID(c))
	if err != nil {
		return h.walletError(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "wallet suspended", w)
}

// GetWallet handles GET /admin/wallets/:id.
func (h *WalletHandler) GetWallet(c echo.Context) error {
	w, err := h.walletUC.GetWallet(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.walletError(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "", w)
}

func operatorID(c echo.Context) string {
	if id, ok := c.Get("operator_id").(string); ok {
		return id
	}
	return ""
}

func (h *WalletHandler) walletError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, wallet.ErrUserNotFound), errors.Is(err, wallet.ErrWalletNotFound):
		return utils.NotFoundResponse(c, err.Error())
	case errors.Is(err, wallet.ErrUserExists), errors.Is(err, wallet.ErrWalletExists):
		return utils.ConflictResponse(c, err.Error())
	case errors.Is(err, wallet.ErrInvalidRole),
		errors.Is(err, wallet.ErrInvalidLimit),
		errors.Is(err, wallet.ErrInvalidTransition):
		return utils.BadRequestResponse(c, err.Error())
	default:
		logger.WithError(err).Error("wallet admin request failed")
		return utils.InternalServerErrorResponse(c, "wallet operation failed")
	}
}
