package http

import (
	"github.com/labstack/echo/v4"
	"github.com/tigapay/offpay/internal/pkg/middleware"
	"github.com/tigapay/offpay/internal/pkg/models"
)

// RegisterRoutes mounts the operator admin surface behind JWT auth.
func (h *WalletHandler) RegisterRoutes(e *echo.Echo, jwtCfg models.JWTConfig) {
	admin := e.Group("/admin", middleware.JWTAuthMiddleware(jwtCfg))

	admin.POST("/users", h.RegisterUser)
	admin.POST("/wallets", h.OpenWallet)
	admin.POST("/wallets/:id/approve", h.ApproveWallet)
	admin.POST("/wallets/:id/suspend", h.SuspendWallet)
	admin.GET("/wallets/:id", h.GetWallet)
}
