package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	jwtpkg "github.com/tigapay/offpay/internal/pkg/jwt"
	"github.com/tigapay/offpay/internal/pkg/models"
	"github.com/tigapay/offpay/internal/utils"
)

// JWTAuthMiddleware guards the admin console routes.
func JWTAuthMiddleware(config models.JWTConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return utils.UnauthorizedResponse(c, "Authorization header is required")
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return utils.UnauthorizedResponse(c, "Invalid authorization format")
			}

			claims, err := jwtpkg.ValidateToken(parts[1], config.Secret)
			if err != nil {
				return utils.UnauthorizedResponse(c, "Invalid token")
			}

			operatorID, ok := (*claims)["operator_id"]
			if !ok {
				return utils.UnauthorizedResponse(c, "Invalid token: missing operator_id claim")
			}

			role, ok := (*claims)["role"]
			if !ok {
				return utils.UnauthorizedResponse(c, "Invalid token: missing role claim")
			}

			c.Set("operator_id", operatorID)
			c.Set("operator_role", role)

			return next(c)
		}
	}
}
