package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/knowshare/walletd/internal/httpapi"
	"github.com/knowshare/walletd/internal/store/gormstore"
	"github.com/knowshare/walletd/pkg/wallet"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	flagListenAddr       = "listen-addr"
	flagDatabaseURL      = "database-url"
	flagAllowedOrigins   = "allowed-origins"
	flagJWTSecret        = "jwt-secret"
	flagWebhookSecret    = "webhook-secret"
	configKeyListenAddr  = "listen_addr"
	configKeyDatabaseURL = "database_url"
	configKeyOrigins     = "allowed_origins"
	configKeyJWTSecret   = "jwt_secret"
	configKeyWebhook     = "webhook_secret"
	envPrefix            = "WALLETD"
	defaultDatabaseURL   = "sqlite:///tmp/walletd.db"
)

type runtimeConfig struct {
	ListenAddr     string
	DatabaseURL    string
	AllowedOrigins string
	JWTSecret      string
	WebhookSecret  string
}

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "walletd: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := &runtimeConfig{}
	cmd := &cobra.Command{
		Use:           "walletd",
		Short:         "Coin wallet and content-unlock API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg)
		},
	}

	cmd.Flags().String(flagListenAddr, "", "HTTP listen address")
	cmd.Flags().String(flagDatabaseURL, defaultDatabaseURL, "database connection string (sqlite path or postgres DSN)")
	cmd.Flags().String(flagAllowedOrigins, "", "comma-separated list of allowed CORS origins")
	cmd.Flags().String(flagJWTSecret, "", "bearer token signing key (required)")
	cmd.Flags().String(flagWebhookSecret, "", "payment webhook HMAC secret (required)")

	return cmd
}

func loadConfig(cmd *cobra.Command, cfg *runtimeConfig) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	bindings := map[string]string{
		configKeyListenAddr:  flagListenAddr,
		configKeyDatabaseURL: flagDatabaseURL,
		configKeyOrigins:     flagAllowedOrigins,
		configKeyJWTSecret:   flagJWTSecret,
		configKeyWebhook:     flagWebhookSecret,
	}
	for configKey, flagName := range bindings {
		if err := v.BindPFlag(configKey, cmd.Flags().Lookup(flagName)); err != nil {
			return err
		}
	}

	cfg.ListenAddr = strings.TrimSpace(v.GetString(configKeyListenAddr))
	cfg.DatabaseURL = strings.TrimSpace(v.GetString(configKeyDatabaseURL))
	cfg.AllowedOrigins = v.GetString(configKeyOrigins)
	cfg.JWTSecret = v.GetString(configKeyJWTSecret)
	cfg.WebhookSecret = v.GetString(configKeyWebhook)

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = defaultDatabaseURL
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("%s is required", flagJWTSecret)
	}
	if cfg.WebhookSecret == "" {
		return fmt.Errorf("%s is required", flagWebhookSecret)
	}
	return nil
}

func runServer(ctx context.Context, cfg *runtimeConfig) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	gormDB, cleanup, err := openDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database open: %w", err)
	}
	defer cleanup()

	store := gormstore.New(gormDB)
	if err := store.Migrate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	clock := func() int64 { return time.Now().UTC().Unix() }
	service, err := wallet.NewService(store, clock,
		wallet.WithOperationLogger(httpapi.NewZapOperationLogger(logger)))
	if err != nil {
		return fmt.Errorf("wallet service init: %w", err)
	}

	apiConfig := httpapi.Config{
		ListenAddr:     cfg.ListenAddr,
		AllowedOrigins: httpapi.ParseAllowedOrigins(cfg.AllowedOrigins),
		JWTSigningKey:  cfg.JWTSecret,
		WebhookSecret:  cfg.WebhookSecret,
	}
	if err := apiConfig.Validate(); err != nil {
		return err
	}

	return httpapi.Run(ctx, apiConfig, service, logger)
}

func openDatabase(ctx context.Context, dsn string) (*gorm.DB, func() error, error) {
	driver, sqlitePath, err := resolveDriver(dsn)
	if err != nil {
		return nil, nil, err
	}

	var db *gorm.DB
	switch driver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(sqlitePath), &gorm.Config{})
	default:
		return nil, nil, fmt.Errorf("unsupported database scheme %q", driver)
	}
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() error { return sqlDB.Close() }
	return db.WithContext(ctx), cleanup, nil
}

func resolveDriver(dsn string) (string, string, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres", "", nil
	}
	if strings.HasPrefix(dsn, "sqlite://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", "", fmt.Errorf("parse sqlite url: %w", err)
		}
		path := u.Path
		if path == "" {
			path = u.Host
		}
		if path == "" || path == "/" {
			path = "walletd.db"
		}
		sqlitePath, err := normalizeSQLitePath(path)
		return "sqlite", sqlitePath, err
	}
	// Treat everything else as a direct sqlite path.
	sqlitePath, err := normalizeSQLitePath(dsn)
	return "sqlite", sqlitePath, err
}

func normalizeSQLitePath(path string) (string, error) {
	if path == ":memory:" {
		return path, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", err
	}
	return abs, nil
}
