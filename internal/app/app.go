package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AtoyanMikhail/blogauth/internal/auth"
	"github.com/AtoyanMikhail/blogauth/internal/blacklist"
	"github.com/AtoyanMikhail/blogauth/internal/cache"
	"github.com/AtoyanMikhail/blogauth/internal/config"
	"github.com/AtoyanMikhail/blogauth/internal/devices"
	handler "github.com/AtoyanMikhail/blogauth/internal/handler/http"
	"github.com/AtoyanMikhail/blogauth/internal/hasher"
	"github.com/AtoyanMikhail/blogauth/internal/jobs"
	"github.com/AtoyanMikhail/blogauth/internal/logger"
	"github.com/AtoyanMikhail/blogauth/internal/mail"
	"github.com/AtoyanMikhail/blogauth/internal/metrics"
	"github.com/AtoyanMikhail/blogauth/internal/moderation"
	"github.com/AtoyanMikhail/blogauth/internal/repository"
	"github.com/AtoyanMikhail/blogauth/internal/token"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	cfg        *config.Config
	log        logger.Logger
	db         *sqlx.DB
	cache      cache.Cache
	scheduler  *jobs.Scheduler
	httpServer *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	signer, err := token.NewSigner(cfg.JWT)
	if err != nil {
		return nil, err
	}
	hash, err := hasher.NewBcrypt(cfg.Bcrypt.SaltFactor)
	if err != nil {
		return nil, err
	}

	db, err := repository.Open(cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := repository.RunMigrations(db, cfg.Database.MigrationsPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisCache, err := cache.NewRedisCache(cfg.Redis, log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	users := repository.NewUserRepository(db, log)
	revoked := blacklist.New(repository.NewBlacklistRepository(db, log), log)
	sessions := devices.NewRegistry(repository.NewDeviceRepository(db, log), log)

	var sender mail.Sender
	if cfg.Mail.Host != "" {
		sender = mail.NewSMTPSender(cfg.Mail)
	} else {
		log.Warn("MAIL_HOST is not set, mail is written to the log")
		sender = mail.NewLogSender(log)
	}
	outbox := mail.NewOutbox(repository.NewMailRepository(db, log), sender, cfg.Mail.LinkBaseURL, log)

	authService := auth.NewService(auth.Deps{
		Users:     users,
		Signer:    signer,
		Hasher:    hash,
		Blacklist: revoked,
		Devices:   sessions,
		Mailer:    outbox,
		CodeTTL:   cfg.Confirmation.CodeTTL.Std(),
	}, log)

	moderator := moderation.NewService(
		users,
		repository.NewBlogRepository(db, log),
		repository.NewPostRepository(db, log),
		sessions,
		hash,
		log,
	)

	if cfg.SuperAdmin.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := moderator.EnsureSuperAdmin(ctx, cfg.SuperAdmin.Login, cfg.SuperAdmin.Email, cfg.SuperAdmin.Password)
		cancel()
		if err != nil {
			db.Close()
			redisCache.Close()
			return nil, fmt.Errorf("bootstrap super admin: %w", err)
		}
	}

	scheduler := jobs.NewScheduler(cfg.Jobs, cfg.Mail.BatchSize, revoked, users, outbox, log)

	h := handler.NewHandler(handler.Deps{
		Auth:       authService,
		Moderation: moderator,
		Devices:    sessions,
		Tokens:     signer,
		Blacklist:  revoked,
		Limiter:    cache.NewRateLimiter(redisCache, cfg.Throttle, log),
		Metrics:    metrics.New(prometheus.DefaultRegisterer),
		TrustProxy: cfg.Server.TrustProxy,
		Health: []handler.HealthCheck{
			{Name: "postgres", Check: db.PingContext},
			{Name: "redis", Check: redisCache.Ping},
		},
		Cookie: handler.CookieConfig{
			Secure: cfg.Server.SecureCookie,
			MaxAge: cfg.JWT.RefreshTTL.Std(),
		},
	}, log)

	return &App{
		cfg:       cfg,
		log:       log,
		db:        db,
		cache:     redisCache,
		scheduler: scheduler,
		httpServer: &http.Server{
			Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
			Handler:      handler.NewRouter(h, promhttp.Handler(), log),
			ReadTimeout:  cfg.Server.ReadTimeout.Std(),
			WriteTimeout: cfg.Server.WriteTimeout.Std(),
			IdleTimeout:  60 * time.Second,
		},
	}, nil
}

// Run serves HTTP and the maintenance jobs until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.scheduler.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("Starting HTTP server", logger.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("Shutdown signal received")
	case runErr = <-errCh:
	}

	a.shutdown()
	return runErr
}

func (a *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.log.Error("HTTP server shutdown failed", logger.Error(err))
	}
	a.scheduler.Stop(ctx)

	if err := a.cache.Close(); err != nil {
		a.log.Error("Redis close failed", logger.Error(err))
	}
	if err := a.db.Close(); err != nil {
		a.log.Error("Postgres close failed", logger.Error(err))
	}

	a.log.Info("Shutdown complete")
}
