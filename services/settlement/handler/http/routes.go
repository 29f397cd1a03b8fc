package http

import (
	"github.com/labstack/echo/v4"
	"github.com/tigapay/offpay/internal/pkg/middleware"
)

// RegisterRoutes mounts the settlement endpoints. The merchant-facing
// surface is API-key guarded; the descriptor and bank public key stay open
// so devices can bootstrap before they hold credentials.
func (h *SettlementHandler) RegisterRoutes(e *echo.Echo, apiKey *middleware.APIKeyMiddleware) {
	e.GET("/", h.Describe)
	e.GET("/bank-public-key", h.BankPublicKey)

	merchant := apiKey.ValidateAPIKey("merchant-gateway", "admin-console")
	e.POST("/settle-ledger", h.SettleLedger, merchant)
	e.POST("/verify-ledger", h.VerifyLedger, merchant)

	e.GET("/bank-logs", h.BankLogs, apiKey.ValidateAPIKey("admin-console"))
}
