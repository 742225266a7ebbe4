// Package app assembles the auth service from configuration.
package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"forestpest/auth/internal/blacklist"
	"forestpest/auth/internal/cache"
	"forestpest/auth/internal/config"
	"forestpest/auth/internal/database"
	"forestpest/auth/internal/handlers"
	"forestpest/auth/internal/jobs"
	"forestpest/auth/internal/metrics"
	"forestpest/auth/internal/models"
	"forestpest/auth/internal/permission"
	"forestpest/auth/internal/repository"
	"forestpest/auth/internal/reset"
	"forestpest/auth/internal/security"
	"forestpest/auth/internal/server"
	"forestpest/auth/internal/service"
	"forestpest/auth/internal/session"
)

type App struct {
	Config    *config.AppConfig
	Log       zerolog.Logger
	Metrics   *metrics.Metrics
	Auth      *service.AuthService
	Scheduler *jobs.Scheduler
	Server    *server.HTTPServer
	DB        *pgxpool.Pool
	Redis     *redis.Client
}

// New connects the configured backends and builds every component. On error
// any connection already opened is closed.
func New(ctx context.Context, cfg *config.AppConfig, log zerolog.Logger) (app *App, err error) {
	a := &App{Config: cfg, Log: log, Metrics: metrics.New()}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	var users service.UserStore = repository.NewMemoryUserRepository()
	if cfg.Postgres.DSN != "" {
		if cfg.Postgres.AutoMigrate {
			if err := database.Migrate(cfg.Postgres.DSN, database.DirectionUp); err != nil {
				return nil, err
			}
		}
		if a.DB, err = database.NewPostgresPool(ctx, cfg.Postgres); err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		users = repository.NewUserRepository(a.DB)
	} else {
		log.Warn().Msg("postgres dsn empty, users are kept in memory")
	}

	var (
		bl     blacklist.Blacklist
		resets reset.Store
	)
	switch cfg.Store.Backend {
	case config.BackendRedis:
		if a.Redis, err = cache.NewRedisClient(ctx, cfg.Redis); err != nil {
			return nil, err
		}
		bl = blacklist.NewRedisBlacklist(a.Redis, cfg.Store.KeyPrefix)
		resets = reset.NewRedisStore(a.Redis, cfg.Store.KeyPrefix, cfg.Security.ResetTokenTTL)
	default:
		bl = blacklist.NewMemoryBlacklist()
		resets = reset.NewMemoryStore(cfg.Security.ResetTokenTTL)
	}

	secret := cfg.Security.JWTSecret
	if secret == "" {
		if secret, err = randomSecret(); err != nil {
			return nil, err
		}
		log.Warn().Msg("jwt secret not configured, using an ephemeral secret")
	}

	a.Auth = service.NewAuthService(service.Dependencies{
		Users: users,
		Tokens: security.NewTokenManager(security.TokenConfig{
			Secret:     secret,
			Issuer:     cfg.Security.JWTIssuer,
			AccessTTL:  cfg.Security.AccessTokenTTL,
			RefreshTTL: cfg.Security.RefreshTokenTTL,
		}),
		Passwords:    security.NewPasswordHasher(security.DefaultArgon2Params),
		Permissions:  permission.NewModel(permission.DefaultTable()),
		Blacklist:    bl,
		Resets:       resets,
		Sessions:     session.NewMemoryRegistry(cfg.Security.MaxSessions),
		Notifier:     service.NewLogNotifier(log),
		Metrics:      a.Metrics,
		Log:          log,
		ExpiringSoon: cfg.Security.ExpiringSoon,
	})

	if err := a.bootstrapAdmin(ctx); err != nil {
		return nil, err
	}

	a.Scheduler = jobs.NewScheduler(a.Auth, cfg.Security.CleanupSchedule, log)
	handlerSet := handlers.NewHandlerSet(log, cfg, a.Auth, a.Metrics, a.DB, a.Redis)
	a.Server = server.NewHTTPServer(cfg, log, handlerSet)
	return a, nil
}

func (a *App) bootstrapAdmin(ctx context.Context) error {
	admin := a.Config.Security.BootstrapAdmin
	if admin.Password == "" {
		return nil
	}
	created, err := a.Auth.EnsureUser(ctx, models.User{
		Username: admin.Username,
		Email:    admin.Email,
		RealName: "Administrator",
		Role:     models.UserRoleAdmin,
		Status:   models.UserStatusActive,
	}, admin.Password)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if created {
		a.Log.Info().Str("username", admin.Username).Msg("bootstrap admin created")
	}
	return nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Log.Error().Err(err).Msg("redis close error")
		}
	}
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate jwt secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
