package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "authbot/docs"
	"authbot/internal/config"
	"authbot/internal/handlers"
	"authbot/internal/middleware"
	"authbot/internal/migrations"
	"authbot/internal/repositories"
	"authbot/internal/routes"
	"authbot/internal/scheduler"
	"authbot/internal/services"
)

func Run() error {
	cfg, err := config.LoadConfig(config.DefaultPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("Ошибка закрытия БД", zap.Error(err))
		}
	}()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)

	if cfg.Database.Migrate {
		if err := migrations.Up(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("migrations applied")
	}

	checks := map[string]handlers.Pinger{"postgres": db}

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)

	var codeRepo repositories.TelegramCodeRepository
	switch cfg.Ledger.Backend {
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = rdb.Close() }()
		checks["redis"] = redisPinger{rdb}
		codeRepo = repositories.NewRedisTelegramCodeRepository(rdb, *cfg.Ledger.Retention)
	case config.BackendMemory:
		logger.Warn("ledger uses in-memory storage, codes are lost on restart")
		codeRepo = repositories.NewMemoryTelegramCodeRepository()
	default:
		codeRepo = repositories.NewTelegramCodeRepository(db)
	}

	// === Services ===
	ledger := services.NewCodeLedger(codeRepo, cfg.Ledger.TTL, logger.Named("ledger"),
		services.WithMaxIssueAttempts(cfg.Ledger.MaxIssueAttempts),
		services.WithRetention(*cfg.Ledger.Retention),
	)
	authService := services.NewAuthService(cfg.JWT.Secret, cfg.JWT.AccessTTL)

	var emailService services.EmailService
	if cfg.Email.SMTPHost != "" {
		emailService = services.NewEmailService(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FromEmail,
		)
	}

	var (
		notifier services.Notifier = services.LogNotifier{Log: logger}
		replier  handlers.ChatReplier
	)
	if cfg.Telegram.BotToken != "" {
		tg, err := services.NewTelegramService(cfg.Telegram.BotToken, logger.Named("tg"))
		if err != nil {
			return err
		}
		if err := tg.SetWebhook(cfg.Telegram.WebhookURL); err != nil {
			logger.Warn("[tg][setWebhook] failed", zap.Error(err))
		}
		notifier, replier = tg, tg
	} else {
		logger.Warn("telegram bot token is empty, notifications are disabled")
	}

	messageService := services.NewMessageService(userRepo, notifier, logger)
	linker := services.NewAccountLinker(ledger, userRepo, logger)
	userService := services.NewUserService(userRepo, ledger, authService, emailService, logger)

	// === Cron ===
	cron := scheduler.New(logger.Named("cron"))
	if err := cron.AddCompaction(cfg.Ledger.CompactionSchedule, ledger); err != nil {
		return fmt.Errorf("compaction schedule %q: %w", cfg.Ledger.CompactionSchedule, err)
	}
	cron.Start()

	// === Handlers ===
	h := routes.Handlers{
		Auth:         handlers.NewAuthHandler(userService, cfg.Telegram.BotUsername, logger),
		Verify:       handlers.NewVerifyHandler(linker, messageService, logger),
		Users:        handlers.NewUserHandler(userService),
		Messages:     handlers.NewMessageHandler(messageService),
		Integrations: handlers.NewIntegrationsHandler(replier, linker, userRepo, userService, cfg.Telegram.BotUsername, logger),
		Health:       handlers.NewHealthHandler(checks),
	}

	// === Gin ===
	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS())
	routes.SetupRoutes(router, h, authService)

	// === Run ===
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Сервер запущен", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	cron.Stop(shutdownCtx)
	return nil
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		lvl, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zc.Level = zap.NewAtomicLevelAt(lvl)
	}
	return zc.Build()
}

type redisPinger struct{ c *redis.Client }

func (p redisPinger) PingContext(ctx context.Context) error { return p.c.Ping(ctx).Err() }
