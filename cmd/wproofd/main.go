// The wproofd command serves social proof overlays to web pages
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/wrale/wrale-proof/internal/wproofd/association"
	assocredis "github.com/wrale/wrale-proof/internal/wproofd/association/redis"
	"github.com/wrale/wrale-proof/internal/wproofd/config"
	"github.com/wrale/wrale-proof/internal/wproofd/database"
	"github.com/wrale/wrale-proof/internal/wproofd/delivery"
	"github.com/wrale/wrale-proof/internal/wproofd/events"
	eventsnats "github.com/wrale/wrale-proof/internal/wproofd/events/nats"
	"github.com/wrale/wrale-proof/internal/wproofd/migrations"
	overlayhttp "github.com/wrale/wrale-proof/internal/wproofd/overlay/http"
	"github.com/wrale/wrale-proof/internal/wproofd/ratelimit"
	rlredis "github.com/wrale/wrale-proof/internal/wproofd/ratelimit/redis"
	"github.com/wrale/wrale-proof/internal/wproofd/settings"
	settingsfile "github.com/wrale/wrale-proof/internal/wproofd/settings/file"
	settingspg "github.com/wrale/wrale-proof/internal/wproofd/settings/postgres"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// A missing .env is normal outside development
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log)

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.Level(level).With().Timestamp().Str("service", "wproofd").Logger()
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settingsRepo, closeSettings, err := setupSettings(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSettings()
	settingsService := settings.NewService(settingsRepo, logger)

	var rdb redis.UniversalClient
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("unable to reach redis: %w", err)
		}
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("redis connected")
	} else {
		logger.Warn().Msg("no redis configured, page groups and rate limits are kept in memory")
	}

	pages := association.NewService(associationStore(rdb), logger)

	limiter := ratelimit.NewService(rateLimitStore(rdb), logger)
	if err := limiter.RegisterLimit(ratelimit.WSConnection, ratelimit.Limit{
		Rate:      cfg.RateLimit.StreamRate,
		Period:    cfg.RateLimit.StreamPeriod,
		BurstSize: cfg.RateLimit.StreamBurst,
	}); err != nil {
		return fmt.Errorf("invalid stream rate limit: %w", err)
	}

	publisher, closePublisher, err := setupPublisher(cfg.NATS, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	planner := delivery.NewPlanner(settingsService, pages, cfg.Server.SiteName, logger)
	streams := delivery.NewServer(delivery.Config{
		TickInterval:   cfg.Rotation.TickInterval,
		FadeDuration:   cfg.Rotation.FadeDuration,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, publisher, logger)

	handler := overlayhttp.NewHandler(settingsService, pages, planner, streams, limiter, logger)

	server := &http.Server{
		Addr: fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: handler.Router(overlayhttp.RouterOptions{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			RequestTimeout: cfg.Server.WriteTimeout,
		}),
		ReadTimeout: cfg.Server.ReadTimeout,
		IdleTimeout: cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Str("settings", cfg.Settings.Driver).
			Msg("starting server")

		var err error
		if cfg.Server.TLSCert != "" && cfg.Server.TLSKey != "" {
			err = server.ListenAndServeTLS(cfg.Server.TLSCert, cfg.Server.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info().Int("sessions", streams.Sessions()).Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Hijacked stream connections are not tracked by http.Server
	if err := streams.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("page sessions did not close in time")
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
	}

	logger.Info().Msg("server stopped")
	return nil
}

func setupSettings(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (settings.Repository, func(), error) {
	if cfg.Settings.Driver == config.DriverFile {
		logger.Info().Str("path", cfg.Settings.Path).Msg("settings stored in file")
		return settingsfile.NewRepository(cfg.Settings.Path), func() {}, nil
	}

	db, err := database.Open(ctx, cfg.Database.DSN(), database.Pool{
		MaxOpen:     cfg.Database.MaxOpenConns,
		MaxIdle:     cfg.Database.MaxIdleConns,
		MaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return nil, nil, err
	}

	applied, err := migrations.NewMigrator(db, logger).Up(ctx)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to apply migrations: %w", err)
	}
	logger.Info().Int("applied", applied).Msg("database schema up to date")
	return settingspg.NewRepository(db), closeDB(db, logger), nil
}

func closeDB(db *sql.DB, logger zerolog.Logger) func() {
	return func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close database")
		}
	}
}

func associationStore(rdb redis.UniversalClient) association.Store {
	if rdb == nil {
		return association.NewMemoryStore()
	}
	return assocredis.NewStore(rdb)
}

func rateLimitStore(rdb redis.UniversalClient) ratelimit.Store {
	if rdb == nil {
		return ratelimit.NewMemoryStore()
	}
	return rlredis.NewStore(rdb)
}

func setupPublisher(cfg config.NATSConfig, logger zerolog.Logger) (events.Publisher, func(), error) {
	if cfg.URL == "" {
		logger.Warn().Msg("no NATS configured, impressions are only logged")
		return events.NewLogPublisher(logger), func() {}, nil
	}

	nc, err := eventsnats.Connect(eventsnats.Config{
		URL:            cfg.URL,
		MaxReconnects:  cfg.MaxReconnects,
		ReconnectWait:  cfg.ReconnectWait,
		ConnectTimeout: 5 * time.Second,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS connected")

	return eventsnats.NewPublisher(nc, cfg.SubjectPrefix), func() {
		if err := nc.Drain(); err != nil {
			logger.Error().Err(err).Msg("failed to drain NATS connection")
		}
	}, nil
}
