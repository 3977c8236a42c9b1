package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/tour-reservation/internal/clock"
	"github.com/iliyamo/tour-reservation/internal/config"
	"github.com/iliyamo/tour-reservation/internal/database"
	"github.com/iliyamo/tour-reservation/internal/handler"
	"github.com/iliyamo/tour-reservation/internal/logging"
	"github.com/iliyamo/tour-reservation/internal/middleware"
	"github.com/iliyamo/tour-reservation/internal/queue"
	"github.com/iliyamo/tour-reservation/internal/repository"
	"github.com/iliyamo/tour-reservation/internal/router"
	"github.com/iliyamo/tour-reservation/internal/service"
)

// publisher is a ledger event sink that owns a connection.
type publisher interface {
	service.Publisher
	Close() error
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, database.Options{
		User: cfg.DBUser,
		Pass: cfg.DBPass,
		Host: cfg.DBHost,
		Port: cfg.DBPort,
		Name: cfg.DBName,
	})
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		logger.Info("schema applied")
	}

	rdb := config.NewRedisClient(ctx, config.LoadRedisConfig())
	if rdb == nil {
		logger.Warn("redis unavailable, rate limiting and caching disabled")
	} else {
		defer rdb.Close()
	}

	pub := newPublisher(ctx, cfg, logger)
	defer pub.Close()

	clk := clock.NewSystem()
	uow := repository.NewUnitOfWork(db)
	wallets := repository.NewWalletRepo(db, clk)
	reservations := repository.NewReservationRepo(db, clk)
	events := repository.NewEventRepo(db)
	users := repository.NewUserRepo(db, clk)
	tokens := repository.NewTokenRepo(db, clk)
	passengers := repository.NewPassengerRepo(db)

	opts := []service.Option{service.WithPublisher(pub), service.WithLogger(logger)}
	ledgerOpts := append([]service.Option{}, opts...)
	if cfg.EnforceCapacity {
		ledgerOpts = append(ledgerOpts, service.WithCapacityChecker(service.NewSeatCapacity(events, reservations)))
		logger.Info("event capacity enforced")
	}

	accounts := service.NewAccountService(uow, users, wallets, tokens, clk, service.TokenSettings{
		Secret:     cfg.JWTSecret,
		AccessTTL:  cfg.AccessTTL(),
		RefreshTTL: cfg.RefreshTTL(),
		BcryptCost: cfg.BcryptCost,
	}, logger)
	ledger := service.NewReservationLedger(uow, wallets, reservations, events, clk, ledgerOpts...)
	walletSvc := service.NewWalletService(uow, wallets, clk, opts...)
	transfers := service.NewTransferService(uow, wallets, clk, opts...)
	profiles := service.NewProfileService(users, passengers)

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.ErrorHandler(logger)
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.BodyLimit("1M"))

	router.Register(e, router.Handlers{
		Auth:         handler.NewAuthHandler(accounts, cfg.JWTSecret),
		Events:       handler.NewEventHandler(events),
		Reservations: handler.NewReservationHandler(ledger),
		Wallet:       handler.NewWalletHandler(walletSvc, transfers),
		Profile:      handler.NewProfileHandler(profiles),
	}, router.Guards{
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger),
		Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), rdb, logger),
	}, cfg.JWTSecret)

	addr := ":" + cfg.Port
	go func() {
		logger.Info("listening", slog.String("addr", addr), slog.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", slog.Any("err", err))
	}
}

// newPublisher picks the ledger event backend.  With RabbitMQ the audit
// consumer runs in the same process until ctx is cancelled.
func newPublisher(ctx context.Context, cfg config.Config, logger *slog.Logger) publisher {
	switch cfg.EventsBackend {
	case config.EventsKafka:
		logger.Info("ledger events to kafka", slog.String("topic", cfg.KafkaTopic))
		return queue.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	case config.EventsNone:
		return nopCloser{}
	default:
		go func() {
			if err := queue.StartLedgerConsumer(ctx, cfg.RabbitMQURL, "logs", logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("ledger consumer stopped", slog.Any("err", err))
			}
		}()
		return queue.NewRabbitPublisher(cfg.RabbitMQURL)
	}
}

type nopCloser struct{ queue.NopPublisher }

func (nopCloser) Close() error { return nil }
