package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/vinsight/vinsight/internal"
	"github.com/vinsight/vinsight/internal/billing"
	"github.com/vinsight/vinsight/internal/email"
	"github.com/vinsight/vinsight/internal/middleware"
	"github.com/vinsight/vinsight/internal/notify"
	"github.com/vinsight/vinsight/internal/postgres"
	"github.com/vinsight/vinsight/internal/routes"
	"github.com/vinsight/vinsight/internal/service"
	"github.com/vinsight/vinsight/internal/telemetry"

	authpkg "github.com/vinsight/vinsight/internal/auth"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := internal.NewConfig()
	if err != nil {
		return err
	}

	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)
	logger.Info().Str("env", cfg.Env).Uint16("port", cfg.Port).Msg("starting vinsight")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Migrations run over database/sql; the application pool is pgx.
	migDB, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	if err := internal.RunMigrations(migDB); err != nil {
		migDB.Close()
		return err
	}
	migDB.Close()
	logger.Info().Msg("migrations applied")

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	orderStore := postgres.NewOrderStore(pool)
	reviewStore := postgres.NewReviewStore(pool)
	contactStore := postgres.NewContactStore(pool)
	settingStore := postgres.NewSettingStore(pool)
	userStore := postgres.NewUserStore(pool)
	outboxStore := postgres.NewOutboxStore(pool)

	telemetry.NewBusinessMetrics("vinsight")

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}
	logger.Info().Str("provider", provider.Name()).Msg("payment provider configured")

	dispatcher := notify.NewDispatcher(buildSenders(cfg, logger), outboxStore, cfg.Email.From, cfg.Email.AdminEmail, logger)

	var nc *nats.Conn
	if cfg.NATSURL != "" {
		nc, err = nats.Connect(cfg.NATSURL,
			nats.MaxReconnects(-1),
			nats.ReconnectWait(2*time.Second),
		)
		if err != nil {
			logger.Warn().Err(err).Str("url", cfg.NATSURL).Msg("nats unavailable, notifications deliver in-process")
			nc = nil
		}
	}
	queue := notify.NewQueue(nc, dispatcher, orderStore, contactStore, reviewStore, logger)
	if err := queue.Start(); err != nil {
		return fmt.Errorf("failed to start notification queue: %w", err)
	}
	defer queue.Drain()

	issuer := authpkg.NewTokenIssuer(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	authService := service.NewAuthService(userStore, issuer, logger)
	orderService := service.NewOrderService(orderStore, provider, queue, dispatcher,
		cfg.Payment.SuccessURL, cfg.Payment.CancelURL, logger)
	reviewService := service.NewReviewService(reviewStore, queue, logger)
	contactService := service.NewContactService(contactStore, queue, logger)
	settingsService := service.NewSettingsService(settingStore, logger)

	if err := authService.EnsureBootstrapAdmin(ctx, cfg.Admin.Username, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.HTTPMetrics("vinsight"))

	routes.Register(e, routes.Deps{
		Orders:   orderService,
		Auth:     authService,
		Reviews:  reviewService,
		Contacts: contactService,
		Settings: settingsService,
		Outbox:   outboxStore,
		Provider: provider,
		Logger:   logger,
	})

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info().Str("addr", addr).Msg("http server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func buildProvider(cfg *internal.Config) (billing.Provider, error) {
	switch cfg.Payment.Provider {
	case "mercadopago":
		return billing.NewMercadoPagoProvider(cfg.Payment.MercadoPagoAccessToken, cfg.Payment.MercadoPagoWebhookSecret)
	default:
		return billing.NewStripeProvider(cfg.Payment.StripeSecretKey, cfg.Payment.StripeWebhookSecret)
	}
}

func buildSenders(cfg *internal.Config, logger zerolog.Logger) []email.Sender {
	var senders []email.Sender

	if cfg.Email.SMTPHost != "" {
		senders = append(senders, email.NewSMTPSender(email.SMTPConfig{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			Username: cfg.Email.SMTPUsername,
			Password: cfg.Email.SMTPPassword,
			From:     cfg.Email.From,
			FromName: cfg.Email.FromName,
		}))
	}
	if cfg.Email.ResendAPIKey != "" {
		senders = append(senders, email.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.From))
	}

	if len(senders) == 0 {
		logger.Warn().Msg("no email transport configured, notifications will queue in the outbox")
	}
	return senders
}
