package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/prun-market-service/config"
	"github.com/fekuna/prun-market-service/pkg/broker"
	"github.com/fekuna/prun-market-service/pkg/cache"
	"github.com/fekuna/prun-market-service/pkg/database/postgres"
	"github.com/fekuna/prun-market-service/pkg/logger"
	"github.com/fekuna/prun-market-service/pkg/middleware"
	"github.com/fekuna/prun-market-service/pkg/search"

	availUCPkg "github.com/fekuna/prun-market-service/internal/availability/usecase"

	comRepoPkg "github.com/fekuna/prun-market-service/internal/commodity/repository"
	comUCPkg "github.com/fekuna/prun-market-service/internal/commodity/usecase"

	invListenerPkg "github.com/fekuna/prun-market-service/internal/inventory/listener"
	invRepoPkg "github.com/fekuna/prun-market-service/internal/inventory/repository"
	invUCPkg "github.com/fekuna/prun-market-service/internal/inventory/usecase"

	"github.com/fekuna/prun-market-service/internal/market"
	marketH "github.com/fekuna/prun-market-service/internal/market/handler"
	marketIdxPkg "github.com/fekuna/prun-market-service/internal/market/indexer"
	marketUCPkg "github.com/fekuna/prun-market-service/internal/market/usecase"

	"github.com/fekuna/prun-market-service/internal/order"
	orderRepoPkg "github.com/fekuna/prun-market-service/internal/order/repository"
	orderUCPkg "github.com/fekuna/prun-market-service/internal/order/usecase"

	priceRepoPkg "github.com/fekuna/prun-market-service/internal/pricing/repository"
	priceUCPkg "github.com/fekuna/prun-market-service/internal/pricing/usecase"

	"github.com/fekuna/prun-market-service/internal/reservation"
	resPubPkg "github.com/fekuna/prun-market-service/internal/reservation/publisher"
	resRepoPkg "github.com/fekuna/prun-market-service/internal/reservation/repository"
	resUCPkg "github.com/fekuna/prun-market-service/internal/reservation/usecase"

	setRepoPkg "github.com/fekuna/prun-market-service/internal/settings/repository"
	setUCPkg "github.com/fekuna/prun-market-service/internal/settings/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "development" || cfg.Server.AppEnv == "dev" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Connect to Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	// 4. Initialize Repositories
	orderRepo := orderRepoPkg.NewPGRepository(db)
	invRepo := invRepoPkg.NewPGRepository(db)
	resRepo := resRepoPkg.NewPGRepository(db)
	priceRepo := priceRepoPkg.NewPGRepository(db)
	setRepo := setRepoPkg.NewPGRepository(db)
	comRepo := comRepoPkg.NewPGRepository(db)

	// 5. Initialize Cache
	var appCache cache.Cache
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.Redis.KeyPrefix)
	if err != nil {
		appLogger.Warn("Could not connect to Redis, using in-process cache", zap.Error(err))
		appCache = cache.NewMemoryCache()
	} else {
		defer redisClient.Close()
		appCache = redisClient
		appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	// 6. Initialize Kafka
	kafkaConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.InventoryTopic,
		GroupID: cfg.Kafka.InventoryGroupID,
	})
	defer kafkaConsumer.Close()
	appLogger.Info("Connected to Kafka Consumer", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.InventoryTopic))

	var eventPublisher reservation.EventPublisher = resPubPkg.Nop{}
	if cfg.Kafka.PublishReservations {
		kafkaProducer := broker.NewProducer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.ReservationTopic,
		})
		defer kafkaProducer.Close()
		eventPublisher = resPubPkg.NewKafkaPublisher(kafkaProducer)
		appLogger.Info("Kafka Producer ready", zap.String("topic", cfg.Kafka.ReservationTopic))
	}

	// 7. Initialize Elasticsearch
	var (
		orderIndexer  order.Indexer
		orderSearcher market.Searcher
	)
	if cfg.Elastic.Enabled {
		esClient, err := search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Elasticsearch, listing search uses the database", zap.Error(err))
		} else {
			idx := marketIdxPkg.NewElasticIndexer(esClient, cfg.Elastic.Index)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := idx.EnsureIndex(ctx); err != nil {
				appLogger.Warn("Could not ensure search index", zap.String("index", cfg.Elastic.Index), zap.Error(err))
			}
			cancel()
			orderIndexer = idx
			orderSearcher = idx
			appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
		}
	}

	// 8. Initialize UseCases
	setUC := setUCPkg.NewSettingsUseCase(setRepo, appCache, cfg.Cache.SettingsTTL, appLogger)
	priceUC := priceUCPkg.NewPricingUseCase(priceRepo, appCache, cfg.Cache.PriceListTTL, appLogger)
	comUC := comUCPkg.NewCommodityUseCase(comRepo, appCache, cfg.Cache.CatalogTTL, appLogger)
	aggregator := resUCPkg.NewAggregator(resRepo)
	availUC := availUCPkg.NewAvailabilityUseCase(invRepo, aggregator, appLogger)
	invUC := invUCPkg.NewInventoryUseCase(invRepo, appLogger)
	orderUC := orderUCPkg.NewOrderUseCase(orderRepo, setUC, aggregator, comUC, priceUC, orderIndexer, appLogger)
	resUC := resUCPkg.NewReservationUseCase(resRepo, orderRepo, availUC, setUC, eventPublisher, appLogger)
	marketUC := marketUCPkg.NewMarketUseCase(orderRepo, availUC, priceUC, setUC, orderSearcher, appLogger)

	// 9. Start Listeners
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	invListener := invListenerPkg.NewInventoryListener(kafkaConsumer, invUC, appLogger)
	go invListener.Start(ctx)

	// 10. Start gRPC Server
	port := cfg.Server.GRPCPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	lis, err := net.Listen("tcp", port)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			middleware.ContextInterceptor(),
			middleware.LoggingInterceptor(appLogger),
		),
	)

	marketHandler := marketH.NewMarketHandler(marketUC, orderUC, availUC, priceUC, resUC, setUC, comUC, appLogger).
		WithDefaultPageSize(cfg.Market.DefaultPageSize)
	marketH.RegisterMarketServiceServer(grpcServer, marketHandler)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(marketH.MarketServiceDesc.ServiceName, healthpb.HealthCheckResponse_SERVING)

	reflection.Register(grpcServer)

	appLogger.Info("Starting gRPC server", zap.String("port", port))

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()
	cancel()
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
}
