package main

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tigapay/offpay/internal/pkg/config"
	"github.com/tigapay/offpay/internal/pkg/database"
	"github.com/tigapay/offpay/internal/pkg/health"
	"github.com/tigapay/offpay/internal/pkg/keystore"
	"github.com/tigapay/offpay/internal/pkg/logger"
	"github.com/tigapay/offpay/internal/pkg/middleware"
	"github.com/tigapay/offpay/internal/pkg/migrations"
	"github.com/tigapay/offpay/internal/pkg/newrelic"
	pkgnsq "github.com/tigapay/offpay/internal/pkg/nsq"
	"github.com/tigapay/offpay/internal/pkg/server"
	"github.com/tigapay/offpay/services/settlement"
	settlementnsq "github.com/tigapay/offpay/services/settlement/gateway/nsq"
	settlementhttp "github.com/tigapay/offpay/services/settlement/handler/http"
	settlementrepo "github.com/tigapay/offpay/services/settlement/repository"
	settlementuc "github.com/tigapay/offpay/services/settlement/usecase"
	wallethttp "github.com/tigapay/offpay/services/wallet/handler/http"
	walletrepo "github.com/tigapay/offpay/services/wallet/repository"
	walletuc "github.com/tigapay/offpay/services/wallet/usecase"
)

func main() {
	cfg := config.InitConfig(".env")

	nrApp := newrelic.InitNewRelic(cfg)
	zapLogger, err := logger.InitZapLoggerFromConfig(cfg, nrApp)
	if err != nil {
		panic(err)
	}
	defer zapLogger.Close()
	logger.SetGlobalLogger(zapLogger)

	logger.Info("starting bank settlement core",
		logger.String("version", cfg.App.Version),
		logger.String("environment", cfg.App.Environment))

	pgClient, err := database.NewPostgresClient(cfg.Database)
	if err != nil {
		logger.Fatal("postgres connection failed", logger.Err(err))
	}
	defer pgClient.Close()

	if err := migrations.RunMigrations(pgClient.GetDB(), "migrations"); err != nil {
		logger.Fatal("migrations failed", logger.Err(err))
	}

	var redisClient *database.RedisClient
	if cfg.Redis.Enabled {
		redisClient, err = database.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Fatal("redis connection failed", logger.Err(err))
		}
		defer redisClient.Close()
	}

	var settlementGW settlement.SettlementGW
	if cfg.NSQ.Enabled {
		producer, err := pkgnsq.NewProducer(cfg.NSQ.Address)
		if err != nil {
			logger.Fatal("nsq connection failed", logger.Err(err))
		}
		defer producer.Stop()
		settlementGW = settlementnsq.NewSettlementGW(producer, cfg.NSQ.Topic)
	}

	keys, err := keystore.LoadOrGenerate(cfg.Bank.KeyFile)
	if err != nil {
		logger.Fatal("bank keystore load failed", logger.Err(err))
	}

	var settlementCache settlement.SettlementCache
	if redisClient != nil {
		settlementCache = settlementrepo.NewSettlementCache(redisClient)
	}

	settleRepo := settlementrepo.NewSettlementRepo(pgClient)
	settleUC := settlementuc.NewSettlementUC(cfg, keys, settleRepo, settlementCache, settlementGW)

	walletUC := walletuc.NewWalletUC(walletrepo.NewWalletRepo(pgClient))

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestIDMiddleware())
	e.Use(middleware.PanicRecoveryWithZapMiddleware(zapLogger))
	e.Use(logger.ZapEchoMiddleware(zapLogger))

	apiKey := middleware.NewAPIKeyMiddleware(&cfg.APIKey)
	settlementhttp.NewSettlementHandler(cfg, settleUC).RegisterRoutes(e, apiKey)
	wallethttp.NewWalletHandler(walletUC).RegisterRoutes(e, cfg.JWT)

	healthService := health.NewHealthService(zapLogger)
	healthService.AddChecker("postgres", health.NewPostgresHealthChecker(pgClient))
	if redisClient != nil {
		healthService.AddChecker("redis", health.NewRedisHealthChecker(redisClient))
	}
	health.RegisterHealthEndpoints(e, cfg.App.Name, cfg.App.Version, healthService)

	srv := server.NewGracefulServer(e, zapLogger, cfg.Server.Port,
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	if err := srv.Start(); err != nil {
		logger.Fatal("server error", logger.Err(err))
	}
}
