// Package app wires configuration, stores, services and the HTTP layer together and owns their
// lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"eventregistration/config"
	"eventregistration/internal/adapters/auth"
	"eventregistration/internal/adapters/email"
	deliveryhttp "eventregistration/internal/delivery/http"
	"eventregistration/internal/delivery/http/controllers"
	"eventregistration/internal/domain"
	"eventregistration/internal/jobs"
	"eventregistration/internal/repository/memory"
	"eventregistration/internal/repository/sqldb"
	"eventregistration/internal/services"
)

// serviceTimeout bounds every service call, including its store round trips.
const serviceTimeout = 5 * time.Second

// App is a fully wired server. Handler can be served directly in tests; Run starts the listener
// and the notification workers.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Handler http.Handler
	Queue   *jobs.Queue

	store *sqldb.Store
}

// New builds the application from cfg. The returned App holds open resources until Run returns
// or Close is called.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	userRepo, eventRepo, pinger, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}

	if cfg.Store.SeedEvents {
		added, err := services.SeedEvents(ctx, eventRepo)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("seed events: %w", err)
		}
		if added > 0 {
			logger.Info("seeded events", "count", added)
		}
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.SESRegion,
			AccessKeyID:        cfg.Email.SESAccessKeyID,
			SecretAccessKey:    cfg.Email.SESSecretAccessKey,
			InsecureSkipVerify: cfg.Email.SESInsecureSkipVerify,
		},
		SMTP: email.SMTPConfig{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			Username: cfg.Email.SMTPUsername,
			Password: cfg.Email.SMTPPassword,
		},
		Resend: email.ResendConfig{APIKey: cfg.Email.ResendAPIKey},
	}, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create mailer: %w", err)
	}
	emailSvc := services.NewEmailService(mailer, email.NewTemplateRenderer())

	a.Queue = jobs.NewQueue(emailSvc.Deliver, jobs.Config{
		Workers:     cfg.Queue.Workers,
		Size:        cfg.Queue.Size,
		MaxAttempts: cfg.Queue.MaxAttempts,
		SendTimeout: cfg.Queue.SendTimeout,
	}, logger.With("component", "notification-queue"))

	notifier := services.NewNotificationService(emailSvc, a.Queue, userRepo, services.NotificationConfig{
		FromAddress: cfg.Email.FromAddress,
		SendTimeout: cfg.Queue.SendTimeout,
	}, logger)

	tokens := auth.NewJWTIssuer(cfg.JWTSecret, auth.TokenTTL)
	authSvc := services.NewAuthService(userRepo, auth.NewBcryptHasher(auth.DefaultCost), tokens, notifier, logger, serviceTimeout)
	eventSvc := services.NewEventService(eventRepo, notifier, logger, serviceTimeout)

	mux := deliveryhttp.NewRouter(deliveryhttp.Controllers{
		System:        controllers.NewSystemController(logger, pinger),
		Users:         controllers.NewUserController(logger, authSvc),
		Events:        controllers.NewEventController(logger, eventSvc),
		Notifications: controllers.NewNotificationController(logger, notifier),
	}, tokens, logger)
	a.Handler = deliveryhttp.NewHandler(mux, logger, cfg.CORSAllowedOrigins)

	return a, nil
}

// openStore returns the repositories for the configured driver. pinger is nil for the memory
// store, which is always reachable.
func (a *App) openStore(ctx context.Context) (domain.UserRepository, domain.EventRepository, controllers.Pinger, error) {
	switch a.Config.Store.Driver {
	case "postgres", "sqlite":
		store, err := sqldb.Open(ctx, sqldb.Dialect(a.Config.Store.Driver), a.Config.Store.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := store.Migrate(); err != nil {
			_ = store.Close()
			return nil, nil, nil, err
		}
		a.store = store
		a.Logger.Info("store ready", "driver", a.Config.Store.Driver)
		return sqldb.NewUserRepository(store), sqldb.NewEventRepository(store), store, nil
	default:
		a.Logger.Info("store ready", "driver", "memory")
		return memory.NewUserRepository(), memory.NewEventRepository(), nil, nil
	}
}

// Run serves HTTP on cfg.Port and runs the notification workers until ctx is cancelled, then
// shuts the server down within ShutdownTimeout and drains the queue.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	server := &http.Server{
		Addr:              net.JoinHostPort("", a.Config.Port),
		Handler:           a.Handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// The queue outlives the request context so in-flight sends finish during shutdown.
	queueCtx, stopQueue := context.WithCancel(context.Background())
	defer stopQueue()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Queue.Run(queueCtx)
	})
	g.Go(func() error {
		a.Logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		stopQueue()
		if err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	err := g.Wait()
	stats := a.Queue.Stats()
	a.Logger.Info("stopped",
		"notifications_delivered", stats.Delivered,
		"notifications_failed", stats.Failed,
		"notifications_dropped", stats.Dropped,
	)
	return err
}

// Close releases the database connection, if any.
func (a *App) Close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		a.Logger.Error("close store", "err", err)
	}
	a.store = nil
}
