package app

import (
	"context"
	"fmt"
	"log/slog"

	httpapp "eventhub/internal/app/http"
	"eventhub/internal/config"
	libjwt "eventhub/internal/lib/jwt"
	"eventhub/internal/lib/logger/sl"
	"eventhub/internal/repository"
	"eventhub/internal/services/attempts"
	"eventhub/internal/services/auth"
	"eventhub/internal/services/token"
	"eventhub/internal/storage/memory"
	"eventhub/internal/storage/postgresql"
	redisapp "eventhub/internal/storage/redis"
	graphqltransport "eventhub/internal/transport/graphql"
	httprouters "eventhub/internal/transport/http"
)

const attemptsPrefix = "login_attempts"

type App struct {
	log        *slog.Logger
	HTTPServer *httpapp.Server
	closers    []func() error
}

func New(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.New"

	a := &App{log: log}

	users, err := a.userRepository(ctx, cfg)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	limiter, err := a.loginLimiter(ctx, cfg)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	appSecret := []byte(cfg.Tokens.AppSecret)
	refreshSecret := []byte(cfg.Tokens.RefreshSecret)

	codec := libjwt.NewCodec()
	access := token.NewAccessIssuer(codec, appSecret, cfg.Tokens.AccessTTL.Std())
	refresh := token.NewRefreshIssuer(codec, refreshSecret, cfg.Tokens.RefreshTTL.Std(), users)
	pairs := token.NewPairValidator(codec, appSecret, refreshSecret)

	authService := auth.New(log, users, access, refresh, pairs, limiter, cfg.BcryptCost)

	cookie := httprouters.CookieConfig{
		Name:   cfg.Cookie.Name,
		Path:   cfg.Cookie.Path,
		Secure: cfg.Cookie.Secure,
		MaxAge: cfg.Tokens.RefreshTTL.Std(),
	}

	routers := httprouters.NewRouter(log, authService, cookie)
	gql := graphqltransport.NewHandler(log, authService, cookie)

	a.HTTPServer = httpapp.New(log, httpapp.Options{
		Host:            cfg.HTTP.Host,
		Port:            cfg.HTTP.Port,
		AllowOrigins:    cfg.HTTP.AllowOrigins,
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout.Std(),
	}, routers, gql, access)

	return a, nil
}

func (a *App) userRepository(ctx context.Context, cfg *config.Config) (repository.UserRepository, error) {
	if cfg.DSN == "" {
		a.log.Warn("no DSN configured, users are kept in memory")
		return memory.New(), nil
	}

	if cfg.Migrate {
		if err := postgresql.Migrate(ctx, cfg.DSN); err != nil {
			return nil, err
		}
	}

	repo, err := repository.NewRepository(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}

	a.closers = append(a.closers, func() error {
		repo.Close()
		return nil
	})

	return repo.User, nil
}

func (a *App) loginLimiter(ctx context.Context, cfg *config.Config) (attempts.Limiter, error) {
	window := cfg.Login.Window.Std()

	if cfg.Redis.RedisAddr == "" {
		return attempts.NewLocalLimiter(cfg.Login.MaxAttempts, window), nil
	}

	client := redisapp.NewClient(cfg.Redis)
	a.closers = append(a.closers, client.Close)

	if err := client.HealthCheck(ctx); err != nil {
		return nil, err
	}

	repo := repository.NewRedisAttemptRepo(client, attemptsPrefix)

	return attempts.NewRedisLimiter(repo, cfg.Login.MaxAttempts, window), nil
}

// Stop shuts the HTTP server down, then releases storage connections.
func (a *App) Stop() {
	if a.HTTPServer != nil {
		if err := a.HTTPServer.Stop(); err != nil {
			a.log.Error("failed to stop http server", sl.Err(err))
		}
	}

	a.close()
}

func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Error("failed to close resource", sl.Err(err))
		}
	}
	a.closers = nil
}
