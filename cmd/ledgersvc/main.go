package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/finvault/ledgersvc/internal/adapters/events"
	eventskafka "github.com/finvault/ledgersvc/internal/adapters/events/kafka"
	"github.com/finvault/ledgersvc/internal/core/domain"
	portsrepo "github.com/finvault/ledgersvc/internal/core/ports/repositories"
	portssvc "github.com/finvault/ledgersvc/internal/core/ports/services"
	"github.com/finvault/ledgersvc/internal/core/services"
	"github.com/finvault/ledgersvc/internal/handlers"
	"github.com/finvault/ledgersvc/internal/middleware"
	"github.com/finvault/ledgersvc/internal/repositories/database/pgsql"
	"github.com/finvault/ledgersvc/pkg/config"
	"github.com/finvault/ledgersvc/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// @title Ledger Service API
// @version 1.0
// @description Account transfer service with fee computation, rolling limits and administrative reversal.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg, logger); err != nil {
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	registerCustomValidators(logger)

	r := gin.New()

	// Global middleware (logging, recovery, CORS, rate limiting)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(corsConfig()))
	if limiterInstance, err := newRateLimiter(cfg.RateLimit); err != nil {
		logger.Error("Failed to configure rate limiter", slog.String("error", err.Error()))
		os.Exit(1)
	} else {
		r.Use(middleware.RateLimit(limiterInstance))
	}

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Wire repositories, services and routes
	repos := pgsql.NewRepositoryProvider(dbPool)
	container := buildServices(cfg, repos, logger)
	handlers.RegisterRoutes(r, cfg, container)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func buildServices(cfg *config.Config, repos portsrepo.RepositoryProvider, logger *slog.Logger) *portssvc.ServiceContainer {
	clock := services.NewRealClock()

	var notifier portssvc.NotificationDispatcher
	if len(cfg.KafkaBrokers) > 0 {
		notifier = eventskafka.NewDispatcher(cfg.KafkaBrokers, cfg.NotificationTopic)
		logger.Info("Kafka notification dispatcher enabled", slog.String("topic", cfg.NotificationTopic))
	} else {
		notifier = events.NewLogDispatcher()
		logger.Info("No Kafka brokers configured; notifications go to the log only")
	}

	feeSvc := services.NewFeeService(services.FeeConfig{
		BaseFee:             cfg.BaseFee,
		PercentFeeThreshold: cfg.PercentFeeThreshold,
		PercentFeeRate:      cfg.PercentFeeRate,
		WithdrawalSurcharge: cfg.WithdrawalSurcharge,
	})
	limitSvc := services.NewLimitService(repos.TransactionRepo, clock)
	auditSvc := services.NewAuditService(repos.AuditRepo, clock)
	transferSvc := services.NewTransferService(
		repos.TransactionRepo,
		repos.AccountRepo,
		repos.UserRepo,
		feeSvc,
		limitSvc,
		auditSvc,
		notifier,
		clock,
		cfg.LargeTransferThreshold,
	)
	accountSvc := services.NewAccountService(repos.AccountRepo, repos.UserRepo, auditSvc, clock)
	userSvc := services.NewUserService(repos.UserRepo, clock)

	return &portssvc.ServiceContainer{
		Transfer: transferSvc,
		Account:  accountSvc,
		User:     userSvc,
		Fee:      feeSvc,
		Limit:    limitSvc,
		Audit:    auditSvc,
	}
}

// registerCustomValidators installs the txn_type binding rule used by the
// transfer request DTO.
func registerCustomValidators(logger *slog.Logger) {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		logger.Error("Failed to access the binding validator engine")
		os.Exit(1)
	}
	err := v.RegisterValidation("txn_type", func(fl validator.FieldLevel) bool {
		switch domain.TransactionType(fl.Field().String()) {
		case domain.TypeTransfer, domain.TypeDeposit, domain.TypeWithdrawal, domain.TypeScheduled:
			return true
		default:
			return false
		}
	})
	if err != nil {
		logger.Error("Failed to register txn_type validator", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newRateLimiter(formatted string) (*limiter.Limiter, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, err
	}
	return limiter.New(memory.NewStore(), rate), nil
}

func corsConfig() cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	return corsCfg
}

func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")
	// Open a temporary standard sql.DB connection for migrations, using the
	// pgx/v5/stdlib driver to be compatible with the main pool.
	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to open database connection for migrations", slog.String("error", err.Error()))
		return err
	}
	if err := migrationDB.Ping(); err != nil {
		logger.Error("Failed to ping database for migrations", slog.String("error", err.Error()))
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		logger.Error("Could not create postgres driver instance for migrations", slog.String("error", err.Error()))
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		logger.Error("Could not create migrate instance", slog.String("error", err.Error()))
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		logger.Error("Migration source error", slog.String("error", sourceErr.Error()))
		return sourceErr
	}
	if dbErr != nil {
		logger.Error("Migration database error", slog.String("error", dbErr.Error()))
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
