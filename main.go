package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/codmenta/Merify/auth"
	"github.com/codmenta/Merify/config"
	"github.com/codmenta/Merify/controllers"
	"github.com/codmenta/Merify/database"
	apperrors "github.com/codmenta/Merify/errors"
	"github.com/codmenta/Merify/events"
	"github.com/codmenta/Merify/gateways"
	"github.com/codmenta/Merify/kafka"
	"github.com/codmenta/Merify/logger"
	"github.com/codmenta/Merify/middleware"
	"github.com/codmenta/Merify/models"
	aws_pkg "github.com/codmenta/Merify/pkg/aws"
	"github.com/codmenta/Merify/repository"
	"github.com/codmenta/Merify/routes"
	"github.com/codmenta/Merify/services"
)

const (
	serviceName      = "storefront"
	metricsNamespace = "Storefront"
	idempotencyTTL   = 24 * time.Hour
	requestTimeout   = 30 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	// AWS is optional: metrics, CloudWatch logs, SNS and DynamoDB stay off without it.
	awsCfg, awsErr := aws_pkg.LoadAWSConfig(ctx)

	var cwWriter *aws_pkg.CloudWatchLogsClient
	if cfg.CloudWatchEnabled && awsErr == nil {
		cwWriter, err = aws_pkg.NewCloudWatchLogsClient(ctx, awsCfg, serviceName, true)
		if err != nil {
			log.Printf("CloudWatch logs unavailable: %v", err)
			cwWriter = nil
		}
	}
	if cwWriter != nil {
		logger.InitializeWithWriter(cfg.Env, cwWriter)
	} else {
		logger.Initialize(cfg.Env)
	}
	zlog := logger.Log
	defer zlog.Sync() //nolint:errcheck
	zap.ReplaceGlobals(zlog)

	if awsErr != nil {
		zlog.Warn("AWS config unavailable, AWS integrations disabled", zap.Error(awsErr))
	}

	store := openStore(ctx, cfg, awsCfg, awsErr, zlog)

	var auditRepo repository.PaymentRepository
	var auditDB *gorm.DB
	if cfg.AuditLogEnabled() {
		auditDB, err = database.ConnectPostgres(cfg.PostgresDSN(), zlog, &models.Payment{})
		if err != nil {
			zlog.Warn("Payment audit log disabled", zap.Error(err))
		} else {
			auditRepo = repository.NewGormPaymentRepo(auditDB)
		}
	}

	var idemRepo repository.IdempotencyRepository
	if rdb, err := database.NewRedisClient(ctx, cfg.RedisURL); err != nil {
		zlog.Warn("Redis unavailable, checkout idempotency disabled", zap.Error(err))
	} else {
		idemRepo = repository.NewRedisIdempotencyRepo(rdb, idempotencyTTL)
		defer rdb.Close() //nolint:errcheck
	}

	publisher := openPublisher(cfg, awsCfg, awsErr, zlog)
	defer publisher.Close() //nolint:errcheck

	var metrics *aws_pkg.MetricsClient
	if awsErr == nil {
		metrics = aws_pkg.NewMetricsClient(awsCfg, metricsNamespace, cfg.Env == "production")
	}

	// Repositories
	carts := repository.NewCartRepository(store)
	products := repository.NewProductRepository(store)
	users := repository.NewUserRepository(store)
	orders := repository.NewOrderRepository(store)

	// Services
	paymentSvc := services.NewPaymentService(services.PaymentConfig{
		FrontendURL:          cfg.FrontendURL,
		Currency:             cfg.Currency,
		Timeout:              cfg.GatewayTimeout,
		StripePublishableKey: cfg.StripePublishableKey,
		PayPalClientID:       cfg.PayPalClientID,
		PayPalMode:           cfg.PayPalMode,
	}, gateways.DefaultFactories(cfg, zlog), auditRepo, idemRepo, publisher, metrics, zlog)
	cartSvc := services.NewCartService(carts, products, paymentSvc, cfg.Currency, metrics, zlog)
	orderSvc := services.NewOrderService(orders, cartSvc, publisher, metrics, zlog)

	// HTTP
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	limiter := middleware.DefaultRateLimiter()
	defer limiter.Stop()

	r := gin.New()
	r.Use(
		gin.Recovery(),
		logger.RequestID(),
		middleware.RequestLogger(zlog),
		middleware.SecurityHeaders(),
		middleware.CORSMiddleware(cfg.AllowedOrigins, cfg.FrontendURL),
		limiter.Middleware(),
		middleware.MetricsMiddleware(metrics, serviceName),
		middleware.RequestTimeout(requestTimeout),
		apperrors.ErrorMiddleware(),
	)

	routes.RegisterRoutes(r, routes.Controllers{
		Products: controllers.NewProductController(products),
		Cart:     controllers.NewCartController(cartSvc),
		Payments: controllers.NewPaymentController(paymentSvc),
		Orders:   controllers.NewOrderController(orderSvc),
	}, middleware.AuthMiddleware(auth.NewTokenValidator(cfg.JWTSecret), users))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Server failed", zap.Error(err))
		}
	}()

	zlog.Info("Storefront started", zap.String("port", cfg.Port), zap.String("store", cfg.StoreDriver))
	<-quit
	zlog.Info("Shutting down storefront...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Server forced to shutdown", zap.Error(err))
	}
	if auditDB != nil {
		if err := database.Close(auditDB); err != nil {
			zlog.Warn("Failed to close audit database", zap.Error(err))
		}
	}
	zlog.Info("Server exited cleanly")
}

func openStore(ctx context.Context, cfg *config.Config, awsCfg aws.Config, awsErr error, zlog *zap.Logger) database.DocumentStore {
	switch cfg.StoreDriver {
	case "redis":
		rdb, err := database.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			zlog.Fatal("Failed to connect to Redis document store", zap.Error(err))
		}
		return database.NewRedisStore(rdb, zlog)
	case "dynamodb":
		if awsErr != nil {
			zlog.Fatal("DynamoDB store requires AWS config", zap.Error(awsErr))
		}
		return database.NewDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.DocumentsTable, zlog)
	default:
		store, err := database.NewFileStore(cfg.DataDir, zlog)
		if err != nil {
			zlog.Fatal("Failed to open data directory", zap.Error(err))
		}
		return store
	}
}

func openPublisher(cfg *config.Config, awsCfg aws.Config, awsErr error, zlog *zap.Logger) events.Publisher {
	switch cfg.EventSink {
	case "sns":
		if awsErr != nil || cfg.PaymentSNSTopicARN == "" {
			zlog.Warn("SNS event sink not configured, events dropped")
			return events.Noop{}
		}
		return events.NewSNSPublisher(aws_pkg.NewSNSClient(awsCfg), cfg.PaymentSNSTopicARN)
	case "kafka":
		return kafka.NewEventProducer(cfg.KafkaBrokers, cfg.KafkaTopic, zlog)
	default:
		return events.Noop{}
	}
}
