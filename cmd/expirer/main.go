package main

import (
	"context"
	"time"

	"github.com/fekuna/prun-market-service/config"
	"github.com/fekuna/prun-market-service/pkg/cache"
	"github.com/fekuna/prun-market-service/pkg/database/postgres"
	"github.com/fekuna/prun-market-service/pkg/logger"

	availUCPkg "github.com/fekuna/prun-market-service/internal/availability/usecase"
	invRepoPkg "github.com/fekuna/prun-market-service/internal/inventory/repository"
	orderRepoPkg "github.com/fekuna/prun-market-service/internal/order/repository"
	resPubPkg "github.com/fekuna/prun-market-service/internal/reservation/publisher"
	resRepoPkg "github.com/fekuna/prun-market-service/internal/reservation/repository"
	resUCPkg "github.com/fekuna/prun-market-service/internal/reservation/usecase"
	setRepoPkg "github.com/fekuna/prun-market-service/internal/settings/repository"
	setUCPkg "github.com/fekuna/prun-market-service/internal/settings/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// expirer marks every reservation past its expiry as expired and exits.
// The bulk sweep publishes no events.
func main() {
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	appLogger := logger.NewZapLogger(&logger.ZapLoggerConfig{
		Encoding:          "json",
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	})
	defer appLogger.Sync()

	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()

	resRepo := resRepoPkg.NewPGRepository(db)
	orderRepo := orderRepoPkg.NewPGRepository(db)
	setUC := setUCPkg.NewSettingsUseCase(setRepoPkg.NewPGRepository(db), cache.NewMemoryCache(), cfg.Cache.SettingsTTL, appLogger)
	availUC := availUCPkg.NewAvailabilityUseCase(invRepoPkg.NewPGRepository(db), resUCPkg.NewAggregator(resRepo), appLogger)
	resUC := resUCPkg.NewReservationUseCase(resRepo, orderRepo, availUC, setUC, resPubPkg.Nop{}, appLogger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	n, err := resUC.ExpireStale(ctx)
	if err != nil {
		appLogger.Fatal("Expiry sweep failed", zap.Error(err))
	}
	appLogger.Info("Expiry sweep finished", zap.Int64("expired", n))
}
