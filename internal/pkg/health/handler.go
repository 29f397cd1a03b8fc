package health

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tigapay/offpay/internal/pkg/database"
	"github.com/tigapay/offpay/internal/pkg/logger"
)

// HealthChecker defines the interface for health checking dependencies
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

// PostgresHealthChecker checks PostgreSQL connection health
type PostgresHealthChecker struct {
	client *database.PostgresClient
}

// NewPostgresHealthChecker creates a new PostgreSQL health checker
func NewPostgresHealthChecker(client *database.PostgresClient) *PostgresHealthChecker {
	return &PostgresHealthChecker{client: client}
}

// CheckHealth checks if PostgreSQL is healthy
func (p *PostgresHealthChecker) CheckHealth(ctx context.Context) error {
	if p.client == nil {
		return nil
	}
	return p.client.GetDB().PingContext(ctx)
}

// RedisHealthChecker checks Redis connection health
type RedisHealthChecker struct {
	client *database.RedisClient
}

// NewRedisHealthChecker creates a new Redis health checker
func NewRedisHealthChecker(client *database.RedisClient) *RedisHealthChecker {
	return &RedisHealthChecker{client: client}
}

// CheckHealth checks if Redis is healthy
func (r *RedisHealthChecker) CheckHealth(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	return r.client.Client.Ping(ctx).Err()
}

// HealthService aggregates named dependency checkers
type HealthService struct {
	logger   *logger.ZapLogger
	checkers map[string]HealthChecker
}

// NewHealthService creates a health service
func NewHealthService(zapLogger *logger.ZapLogger) *HealthService {
	return &HealthService{
		logger:   zapLogger,
		checkers: make(map[string]HealthChecker),
	}
}

// AddChecker registers a named dependency checker
func (s *HealthService) AddChecker(name string, checker HealthChecker) {
	s.checkers[name] = checker
}

// CheckAll runs every registered checker and returns per-dependency status
func (s *HealthService) CheckAll(ctx context.Context) (map[string]string, bool) {
	results := make(map[string]string, len(s.checkers))
	healthy := true

	for name, checker := range s.checkers {
		checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := checker.CheckHealth(checkCtx)
		cancel()

		if err != nil {
			s.logger.Warn("Dependency health check failed",
				logger.String("dependency", name),
				logger.Err(err))
			results[name] = "unhealthy"
			healthy = false
		} else {
			results[name] = "healthy"
		}
	}

	return results, healthy
}

type healthResponse struct {
	Service      string            `json:"service"`
	Version      string            `json:"version,omitempty"`
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
	Timestamp    time.Time         `json:"timestamp"`
}

// RegisterHealthEndpoints registers /health, /health/ready and /health/live.
func RegisterHealthEndpoints(e *echo.Echo, serviceName, version string, service *HealthService) {
	e.GET("/health", func(c echo.Context) error {
		deps, healthy := service.CheckAll(c.Request().Context())
		status := "healthy"
		statusCode := http.StatusOK
		if !healthy {
			status = "unhealthy"
			statusCode = http.StatusServiceUnavailable
		}
		return c.JSON(statusCode, healthResponse{
			Service:      serviceName,
			Version:      version,
			Status:       status,
			Dependencies: deps,
			Timestamp:    time.Now().UTC(),
		})
	})

	e.GET("/health/ready", func(c echo.Context) error {
		_, healthy := service.CheckAll(c.Request().Context())
		if !healthy {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	e.GET("/health/live", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
}
