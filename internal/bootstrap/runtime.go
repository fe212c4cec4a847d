// Package bootstrap connects the runtime dependencies shared by the commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"folio/internal/cache"
	"folio/internal/config"
	"folio/internal/database"
	"folio/internal/featureflags"
	"folio/internal/middleware"
	"folio/internal/repository"
	"folio/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// InitRuntime connects to the database and Redis and, in development,
// makes sure the configured root administrator exists. The Redis client
// is nil when Redis is unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	rdb := cache.Connect(ctx, cfg.RedisURL)

	if err := ensureDevRootAdmin(ctx, cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development root admin: %w", err)
	}
	return db, rdb, nil
}

// ensureDevRootAdmin creates DEV_ROOT_EMAIL as an administrator, or
// promotes and unblocks the existing account. It only runs in development
// with DEV_BOOTSTRAP_ROOT set.
func ensureDevRootAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapRoot {
		return nil
	}

	email := strings.TrimSpace(strings.ToLower(cfg.DevRootEmail))
	if email == "" {
		email = "root@folio.local"
	}
	if cfg.DevRootPassword == "" {
		return fmt.Errorf("DEV_ROOT_PASSWORD must be set when DEV_BOOTSTRAP_ROOT is enabled")
	}

	users := repository.NewUserRepository(db)
	root, err := users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if root == nil {
		accounts := service.NewAccountService(users, featureflags.NewManager(cfg.FeatureFlags))
		if _, err := accounts.Register(ctx, service.RegisterInput{
			Email:    email,
			Password: cfg.DevRootPassword,
			Admin:    true,
		}); err != nil {
			return err
		}
		middleware.Logger.Info("development root admin created", slog.String("email", email))
		return nil
	}

	admin := service.NewUserService(users, repository.NewUserDataRepository(db), service.NewAdminGuard(users), cfg.PageSize)
	if err := admin.SetBlocked(ctx, root, false); err != nil {
		return err
	}
	if err := admin.SetAdmin(ctx, root, true); err != nil {
		return err
	}
	middleware.Logger.Info("development root admin ensured", slog.String("email", email))
	return nil
}
