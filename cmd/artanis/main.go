package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"

	"github.com/benloe/artanis/pkg/auth"
	authapi "github.com/benloe/artanis/pkg/auth/api"
	"github.com/benloe/artanis/pkg/config"
	"github.com/benloe/artanis/pkg/gateway"
	"github.com/benloe/artanis/pkg/magiclink"
	"github.com/benloe/artanis/pkg/notification"
	"github.com/benloe/artanis/pkg/token"
	"github.com/benloe/artanis/pkg/user"
)

type Config struct {
	BaseUrl         string `env:"BASE_URL" env-default:"http://localhost:3000"`
	SiteName        string `env:"SITE_NAME" env-default:"benloe.com"`
	Storage         string `env:"AUTH_STORAGE" env-default:"postgres"`
	DatabaseConfig  config.DatabaseConfig
	AppConfig       app.AppConfig
	JWTConfig       config.JWTConfig
	CookieConfig    config.CookieConfig
	MagicLinkConfig config.MagicLinkConfig
	EmailConfig     config.EmailConfig
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
	}))
	slog.SetDefault(logger)

	cfg := Config{}
	cleanenv.ReadEnv(&cfg)

	server := app.DefaultApp()
	app.RegisterHealthzRoutes(server.R)

	linkRepo, userRepo := newRepositories(&cfg)

	notificationManager, err := notification.NewNotificationManagerWithOptions(
		cfg.BaseUrl,
		notification.WithSMTP(cfg.EmailConfig.ToSMTPConfig()),
		notification.WithDefaultTemplates(),
	)
	if err != nil {
		slog.Error("Failed to initialize notification manager", "err", err)
		os.Exit(-1)
	}

	linkTTL, err := cfg.MagicLinkConfig.ParseTTL()
	if err != nil {
		slog.Error("Failed to parse magic link TTL", "err", err)
		os.Exit(-1)
	}
	sweepInterval, err := cfg.MagicLinkConfig.ParseSweepInterval()
	if err != nil {
		slog.Error("Failed to parse magic link sweep interval", "err", err)
		os.Exit(-1)
	}
	sessionLifetime, err := cfg.JWTConfig.ParseSessionLifetime()
	if err != nil {
		slog.Error("Failed to parse session lifetime", "err", err)
		os.Exit(-1)
	}

	linkService := magiclink.NewService(linkRepo, magiclink.WithTTL(linkTTL))
	linkService.StartSweeper(context.Background(), sweepInterval)

	codecOpts := []token.CodecOption{token.WithLifetime(sessionLifetime)}
	if cfg.JWTConfig.PreviousSecret != "" {
		codecOpts = append(codecOpts, token.WithPreviousSecret(cfg.JWTConfig.PreviousSecret))
	}
	codec := token.NewCodec(cfg.JWTConfig.Secret, cfg.JWTConfig.Issuer, codecOpts...)

	authService := auth.NewService(
		linkService,
		userRepo,
		codec,
		auth.WithNotificationManager(notificationManager),
		auth.WithSiteName(cfg.SiteName),
	)

	sessionGateway := gateway.NewGateway(
		cfg.CookieConfig.Name,
		cfg.CookieConfig.Domain,
		cfg.CookieConfig.Secure,
		cfg.CookieConfig.HttpOnly,
	)

	authHandle := authapi.NewHandler(authService, sessionGateway)
	server.R.Mount("/api/auth", authHandle.Routes())

	slog.Info("Auth service configured",
		"storage", cfg.Storage,
		"baseUrl", cfg.BaseUrl,
		"cookieDomain", cfg.CookieConfig.Domain,
		"magicLinkTTL", linkTTL,
		"sessionLifetime", sessionLifetime)

	server.Run()
}

// newRepositories picks the storage backend. The in-memory backend is
// for local development; sessions survive restarts either way because
// the credential is self-contained.
func newRepositories(cfg *Config) (magiclink.Repository, user.Repository) {
	if cfg.Storage == "memory" {
		slog.Warn("Using in-memory storage, issued magic links do not survive restarts")
		return magiclink.NewInMemoryRepository(), user.NewInMemoryRepository()
	}

	dbConfig := cfg.DatabaseConfig.ToDbConfig()
	pool, err := dbutils.NewDbPool(context.Background(), dbConfig)
	if err != nil {
		slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User)
		os.Exit(-1)
	}

	return magiclink.NewPostgresRepository(pool), user.NewPostgresRepository(pool)
}
