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

	"github.com/MarkoPoloResearchLab/staybook/internal/httpapi"
	"github.com/MarkoPoloResearchLab/staybook/internal/oplog"
	"github.com/MarkoPoloResearchLab/staybook/internal/provider/localauth"
	"github.com/MarkoPoloResearchLab/staybook/internal/provider/membilling"
	"github.com/MarkoPoloResearchLab/staybook/internal/provider/restauth"
	"github.com/MarkoPoloResearchLab/staybook/internal/provider/restbilling"
	"github.com/MarkoPoloResearchLab/staybook/internal/store/gormstore"
	"github.com/MarkoPoloResearchLab/staybook/pkg/booking"
	"github.com/glebarez/sqlite"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	flagDatabaseURL     = "database-url"
	flagListenAddr      = "listen-addr"
	flagAuthBaseURL     = "auth-base-url"
	flagBillingBaseURL  = "billing-base-url"
	flagProviderTimeout = "provider-timeout"
	flagAllowedOrigins  = "allowed-origins"
	flagSessionKey      = "session-signing-key"
	flagSessionIssuer   = "session-issuer"
	flagSessionCookie   = "session-cookie-name"
	flagSessionTTL      = "session-ttl"
	flagRatePerSecond   = "rate-per-second"
	flagRateBurst       = "rate-burst"

	envPrefix = "STAYBOOK"

	defaultDatabaseURL     = "sqlite:///tmp/staybook.db"
	defaultListenAddr      = ":8080"
	defaultProviderTimeout = 10 * time.Second
)

type runtimeConfig struct {
	DatabaseURL     string
	AuthBaseURL     string
	BillingBaseURL  string
	ProviderTimeout time.Duration
	API             httpapi.Config
}

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "staybookd: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := &runtimeConfig{}
	cmd := &cobra.Command{
		Use:           "staybookd",
		Short:         "Lodging reservation and identity API server",
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

	cmd.Flags().String(flagDatabaseURL, defaultDatabaseURL, "PostgreSQL connection string or sqlite path")
	cmd.Flags().String(flagListenAddr, defaultListenAddr, "HTTP listen address")
	cmd.Flags().String(flagAuthBaseURL, "", "external authenticator base URL (empty selects the local dev authenticator)")
	cmd.Flags().String(flagBillingBaseURL, "", "external billing provider base URL (empty selects the in-memory dev provider)")
	cmd.Flags().Duration(flagProviderTimeout, defaultProviderTimeout, "timeout for external provider calls")
	cmd.Flags().String(flagAllowedOrigins, "", "comma-separated CORS origins")
	cmd.Flags().String(flagSessionKey, "", "HMAC signing key for session tokens")
	cmd.Flags().String(flagSessionIssuer, "", "issuer claim for session tokens")
	cmd.Flags().String(flagSessionCookie, "", "session cookie name")
	cmd.Flags().Duration(flagSessionTTL, 0, "session token lifetime")
	cmd.Flags().Float64(flagRatePerSecond, 0, "per-client request rate limit")
	cmd.Flags().Int(flagRateBurst, 0, "per-client request burst")

	return cmd
}

func loadConfig(cmd *cobra.Command, cfg *runtimeConfig) error {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	for _, flagName := range []string{
		flagDatabaseURL, flagListenAddr, flagAuthBaseURL, flagBillingBaseURL,
		flagProviderTimeout, flagAllowedOrigins, flagSessionKey, flagSessionIssuer,
		flagSessionCookie, flagSessionTTL, flagRatePerSecond, flagRateBurst,
	} {
		if err := viper.BindPFlag(flagName, cmd.Flags().Lookup(flagName)); err != nil {
			return err
		}
	}

	cfg.DatabaseURL = viper.GetString(flagDatabaseURL)
	cfg.AuthBaseURL = viper.GetString(flagAuthBaseURL)
	cfg.BillingBaseURL = viper.GetString(flagBillingBaseURL)
	cfg.ProviderTimeout = viper.GetDuration(flagProviderTimeout)
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = defaultProviderTimeout
	}

	cfg.API = httpapi.Config{
		ListenAddr:        viper.GetString(flagListenAddr),
		AllowedOrigins:    httpapi.ParseAllowedOrigins(viper.GetString(flagAllowedOrigins)),
		SessionSigningKey: viper.GetString(flagSessionKey),
		SessionIssuer:     viper.GetString(flagSessionIssuer),
		SessionCookieName: viper.GetString(flagSessionCookie),
		SessionTTL:        viper.GetDuration(flagSessionTTL),
		RatePerSecond:     viper.GetFloat64(flagRatePerSecond),
		RateBurst:         viper.GetInt(flagRateBurst),
	}

	if cfg.DatabaseURL == "" {
		return fmt.Errorf("database url is required")
	}
	return cfg.API.Validate()
}

func runServer(ctx context.Context, cfg *runtimeConfig) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	gormDB, cleanup, driver, err := openDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database open: %w", err)
	}
	defer func() { _ = cleanup() }()

	if err := prepareSchema(gormDB, driver); err != nil {
		return err
	}

	store := gormstore.New(gormDB)
	operationLogger := oplog.New(logger)

	var authenticator booking.Authenticator
	if cfg.AuthBaseURL == "" {
		logger.Info("using local dev authenticator")
		authenticator = localauth.New(gormDB)
	} else {
		authenticator = restauth.New(cfg.AuthBaseURL, cfg.ProviderTimeout, logger)
	}

	var billing booking.BillingProvider
	if cfg.BillingBaseURL == "" {
		logger.Info("using in-memory dev billing provider")
		billing = membilling.New()
	} else {
		billing = restbilling.New(cfg.BillingBaseURL, cfg.ProviderTimeout, logger)
	}

	identity, err := booking.NewIdentityService(store, authenticator, billing, operationLogger)
	if err != nil {
		return fmt.Errorf("identity service init: %w", err)
	}
	reservations, err := booking.NewReservationService(store, operationLogger)
	if err != nil {
		return fmt.Errorf("reservation service init: %w", err)
	}
	favorites, err := booking.NewFavoritesService(store, operationLogger)
	if err != nil {
		return fmt.Errorf("favorites service init: %w", err)
	}
	instruments, err := booking.NewInstrumentService(store, billing, operationLogger)
	if err != nil {
		return fmt.Errorf("instrument service init: %w", err)
	}
	catalog, err := booking.NewCatalogService(store)
	if err != nil {
		return fmt.Errorf("catalog service init: %w", err)
	}

	return httpapi.Run(ctx, cfg.API, httpapi.Dependencies{
		Logger:       logger,
		Identity:     identity,
		Reservations: reservations,
		Favorites:    favorites,
		Instruments:  instruments,
		Catalog:      catalog,
	})
}

func openDatabase(ctx context.Context, dsn string) (*gorm.DB, func() error, string, error) {
	driver, sqlitePath, err := resolveDriver(dsn)
	if err != nil {
		return nil, nil, "", err
	}

	var db *gorm.DB
	gormConfig := &gorm.Config{TranslateError: true}
	switch driver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(dsn), gormConfig)
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(sqlitePath), gormConfig)
	default:
		return nil, nil, "", fmt.Errorf("unsupported database scheme %q", driver)
	}
	if err != nil {
		return nil, nil, "", err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, "", err
	}
	cleanup := func() error { return sqlDB.Close() }
	return db.WithContext(ctx), cleanup, driver, nil
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
			path = "staybook.db"
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
	if strings.HasPrefix(path, "/") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", err
		}
		return path, nil
	}
	abs := filepath.Join(".", path)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", err
	}
	return abs, nil
}

func prepareSchema(db *gorm.DB, driver string) error {
	if driver != "sqlite" {
		return nil
	}
	if err := db.AutoMigrate(&gormstore.Profile{}, &gormstore.Lodging{}, &gormstore.Favorite{}, &localauth.Credential{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
