package gwapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/highway905/awi-gateway/internal/config"
	"github.com/highway905/awi-gateway/internal/domain/model"
	"github.com/highway905/awi-gateway/internal/infra/httpclient"
	"github.com/highway905/awi-gateway/internal/jobs/cleanup"
	"github.com/highway905/awi-gateway/internal/pkg/rsacrypt"
	cookierepo "github.com/highway905/awi-gateway/internal/repo/cookie"
	pgrepo "github.com/highway905/awi-gateway/internal/repo/postgres"
	redisrepo "github.com/highway905/awi-gateway/internal/repo/redis"
	authsvc "github.com/highway905/awi-gateway/internal/services/auth"
	"github.com/highway905/awi-gateway/internal/services/credentials"
	lookupsvc "github.com/highway905/awi-gateway/internal/services/lookup"
	"github.com/highway905/awi-gateway/internal/transport/http/handlers"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	cleanup    *cleanup.Job
	baseCtx    context.Context
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	pem, err := cfg.Upstream.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("load upstream public key: %w", err)
	}
	encryptor, err := rsacrypt.NewFromPEM(pem)
	if err != nil {
		return nil, fmt.Errorf("parse upstream public key: %w", err)
	}

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing without audit trail", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redisrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	credentialRepo := redisrepo.NewCredentialRepo(redisClient)
	warehouseCache := redisrepo.NewCacheRepo[[]model.Warehouse](redisClient, "warehouses:list", cfg.Cache.WarehouseTTL)
	mirror := cookierepo.NewMirror(cfg.Session.CookieName, cfg.Session.CookieMaxAge, cfg.Session.CookieSecure)
	credStore := credentials.NewStore(credentialRepo, mirror, cfg.Session.CookieMaxAge, log)

	upstreamClient := authsvc.NewClient(
		cfg.Upstream.BaseURL,
		cfg.Upstream.LoginPath,
		cfg.Upstream.LogoutPath,
		cfg.Upstream.WarehousePath,
		httpclient.New(cfg.Upstream.Timeout),
	)
	authService := authsvc.NewService(encryptor, upstreamClient, log)
	if pool != nil {
		authService.AttachAudit(pgrepo.NewAuditRepo(pool))
	}

	lookupService := lookupsvc.NewService(warehouseCache, upstreamClient, log)

	proxy, err := handlers.NewProxyHandler(cfg.Upstream.BaseURL, "/api", log)
	if err != nil {
		return nil, fmt.Errorf("create upstream proxy: %w", err)
	}

	cleanupJob := cleanup.New(cfg.Jobs.AuditRetention, log)
	if pool != nil {
		cleanupJob.AttachAudit(pgrepo.NewAuditRepo(pool))
	}
	cleanupJob.AttachScopeSweeper(credentialRepo)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		AuthService:   authService,
		Credentials:   credStore,
		CookieMirror:  mirror,
		LookupService: lookupService,
		Proxy:         proxy,
		Logger:        log,
		Config:        cfg,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		cleanup:    cleanupJob,
		baseCtx:    ctx,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	if a.cfg.Jobs.CleanupInterval > 0 {
		go a.cleanup.Start(a.baseCtx, a.cfg.Jobs.CleanupInterval)
	}

	a.logger.Info("gateway started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
