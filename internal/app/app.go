package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/chat-dashboard/internal/analytics"
	"github.com/suPer8Hu/chat-dashboard/internal/auth"
	"github.com/suPer8Hu/chat-dashboard/internal/chatfeed"
	"github.com/suPer8Hu/chat-dashboard/internal/config"
	"github.com/suPer8Hu/chat-dashboard/internal/db"
	"github.com/suPer8Hu/chat-dashboard/internal/httpapi"
	"github.com/suPer8Hu/chat-dashboard/internal/httpapi/handlers"
	"github.com/suPer8Hu/chat-dashboard/internal/settings"
	"github.com/suPer8Hu/chat-dashboard/internal/storage"
	"github.com/suPer8Hu/chat-dashboard/internal/store/rabbitmq"
	"github.com/suPer8Hu/chat-dashboard/internal/store/redisstore"
	"github.com/suPer8Hu/chat-dashboard/internal/users"
	"gorm.io/gorm"
)

const bootstrapAdminName = "Administrator"

// Default branding seeded on first run.
const (
	defaultCompanyName = "Jurbot"
	defaultAIName      = "Jurbot"
	defaultUserName    = "Anonym"
)

// App holds the wired services behind the HTTP router.
type App struct {
	Cfg      config.Config
	DB       *gorm.DB
	Users    *users.Service
	Settings *settings.Service
	Router   *gin.Engine

	closers []func() error
	logger  *slog.Logger
}

// New connects the database, migrates, seeds defaults and builds the router.
// Redis and RabbitMQ are used only when configured; a connection failure
// for either is logged and the in-process fallback is used.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger := slog.Default().With("component", "app")
	if cfg.UsesDefaultSecret() {
		logger.Warn("JWT secret is the built-in default, set JWT_SECRET")
	}

	gdb, err := db.Connect(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(gdb); err != nil {
		return nil, err
	}

	a := &App{Cfg: cfg, DB: gdb, logger: logger}
	if sqlDB, err := gdb.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}

	logos, err := storage.NewLocalLogoStore(cfg.UploadDir)
	if err != nil {
		a.Close()
		return nil, err
	}

	var janitor settings.Janitor = storage.NewAsyncJanitor(logos)
	if cfg.RabbitURL != "" {
		pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
		if err != nil {
			logger.Warn("rabbitmq unavailable, removing old logos in-process", "error", err)
		} else {
			janitor = pub
			a.closers = append(a.closers, pub.Close)
		}
	}

	var cache chatfeed.Cache
	if cfg.RedisAddr != "" {
		rds, err := redisstore.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis unavailable, chat feed cache disabled", "error", err)
		} else {
			cache = rds
			a.closers = append(a.closers, rds.Close)
		}
	}

	loc, err := cfg.Location()
	if err != nil {
		a.Close()
		return nil, err
	}

	userRepo := users.NewRepo(gdb)
	a.Users = users.NewService(userRepo)
	a.Settings = settings.NewService(settings.NewRepo(gdb), logos, janitor)

	if err := a.Seed(ctx); err != nil {
		a.Close()
		return nil, err
	}

	h := handlers.NewHandler(
		gdb,
		cfg,
		auth.NewAuthenticator(userRepo),
		a.Users,
		a.Settings,
		chatfeed.NewSource(cfg.WebhookTimeout, cache, cfg.FeedCacheTTL),
		analytics.NewAggregator(loc),
	)
	a.Router = httpapi.NewRouter(h)
	return a, nil
}

// Seed creates the bootstrap admin and the first settings snapshot when
// they are missing.
func (a *App) Seed(ctx context.Context) error {
	created, err := a.Users.EnsureAdmin(ctx, a.Cfg.BootstrapAdminUsername, a.Cfg.BootstrapAdminPassword, bootstrapAdminName)
	if err != nil {
		return fmt.Errorf("seeding admin: %w", err)
	}
	if created {
		a.logger.Info("bootstrap admin created", "username", a.Cfg.BootstrapAdminUsername)
		if a.Cfg.BootstrapAdminPassword == config.DefaultAdminPassword {
			a.logger.Warn("bootstrap admin uses the default password, change it")
		}
	}

	_, err = a.Settings.EnsureDefaults(ctx, settings.Defaults{
		CompanyName: defaultCompanyName,
		AIName:      defaultAIName,
		UserName:    defaultUserName,
		WebhookURL:  a.Cfg.DefaultWebhookURL,
		Theme:       settings.DefaultTheme,
	})
	return err
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}
