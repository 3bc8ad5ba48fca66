// Package main provides the entry point for the betting tracker API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/betting-tracker/internal/api"
	"github.com/yourusername/betting-tracker/internal/auth"
	"github.com/yourusername/betting-tracker/internal/config"
	"github.com/yourusername/betting-tracker/internal/database"
	"github.com/yourusername/betting-tracker/internal/health"
	"github.com/yourusername/betting-tracker/internal/logger"
	"github.com/yourusername/betting-tracker/internal/metrics"
	"github.com/yourusername/betting-tracker/internal/narrative"
	"github.com/yourusername/betting-tracker/internal/repository"
	"github.com/yourusername/betting-tracker/internal/scheduler"
	"github.com/yourusername/betting-tracker/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	cfg        *config.Config
	appLog     *logrus.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.AddCommand(serveCmd, refreshStatsCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "betting-tracker",
	Short: "Sports betting ledger and analytics server",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd == versionCmd {
			return nil
		}
		return loadConfig(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var refreshStatsCmd = &cobra.Command{
	Use:   "refresh-stats",
	Short: "Recompute every user's profile statistics once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repos, db, err := openRepositories(ctx)
		if err != nil {
			return err
		}
		if db != nil {
			defer db.Close()
		}

		refresher := service.NewStatsRefresher(repos.User, repos.Bet, logger.NewAnalyticsLogger(appLog))
		result, err := refresher.RefreshAll(ctx)
		if err != nil {
			return err
		}
		fmt.Println(result)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("betting-tracker %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig(ctx context.Context) error {
	var err error
	cfg, err = config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return errors.New("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(ctx, cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := config.ValidateEnvironment(cfg); err != nil {
		return err
	}

	appLog = logger.NewLoggerForEnvironment(cfg.App.LogLevel, cfg.App.Environment)
	return nil
}

// openRepositories returns the configured record store. The database is nil
// for the memory driver.
func openRepositories(ctx context.Context) (*repository.Repositories, *database.DB, error) {
	if cfg.Database.Driver == "memory" {
		appLog.Warn("Using in-memory storage; records are lost on restart")
		return repository.NewMemoryRepositories(), nil, nil
	}

	db, err := database.Initialize(ctx, &cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	repos, err := repository.NewRepositories(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	appLog.Info("Database connection established")
	return repos, db, nil
}

func newLimiter(ctx context.Context) (auth.Limiter, func(), error) {
	if !cfg.Redis.Enabled {
		return auth.NewMemoryLimiter(cfg.Auth.LoginMaxAttempts, cfg.LoginWindow()), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	appLog.WithField("addr", cfg.Redis.Addr).Info("Login throttling backed by Redis")
	return auth.NewRedisLimiter(rdb, "betting-tracker:login:", cfg.Auth.LoginMaxAttempts, cfg.LoginWindow()), func() { rdb.Close() }, nil
}

func newGenerator() (narrative.Generator, error) {
	client, err := narrative.NewClient(&cfg.Narrative, logger.NewNarrativeLogger(appLog))
	if errors.Is(err, narrative.ErrNotConfigured) {
		appLog.Info("Narrative analysis disabled")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	appLog.WithField("model", client.Model()).Info("Narrative analysis enabled")
	return client, nil
}

func serve(ctx context.Context) error {
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
	}).Info("Betting tracker starting")

	repos, db, err := openRepositories(ctx)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	limiter, closeLimiter, err := newLimiter(ctx)
	if err != nil {
		return err
	}
	defer closeLimiter()

	generator, err := newGenerator()
	if err != nil {
		return err
	}

	audit := logger.NewAuditLogger(appLog)
	analyticsLog := logger.NewAnalyticsLogger(appLog)
	authService := auth.NewService(repos.User, auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.TokenTTL()), limiter, audit, cfg.Auth.AllowRegistration)

	server := api.NewServer(api.Deps{
		Auth:     authService,
		Ledger:   service.NewLedgerService(repos.Bet, audit),
		Analysis: service.NewAnalysisService(repos.Bet, generator, analyticsLog, logger.NewNarrativeLogger(appLog)),
		Profiles: service.NewProfileService(repos.User, repos.Bet, generator != nil),
		Logger:   appLog,
	}, cfg.Server, cfg.Auth)

	if cfg.Stats.RefreshEnabled {
		sched := scheduler.NewScheduler(service.NewStatsRefresher(repos.User, repos.Bet, analyticsLog), appLog)
		if err := sched.ScheduleStatsRefresh(cfg.Stats.RefreshSchedule); err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return err
		}
		defer func() {
			if err := sched.Stop(); err != nil {
				appLog.WithError(err).Error("Failed to stop scheduler")
			}
		}()
	}

	healthCfg := health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Port:        cfg.Metrics.Port,
		Logger:      appLog,
	}
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		healthCfg.MetricsPath = cfg.Metrics.Path
		healthCfg.MetricsHandler = metrics.Handler()
	}
	if db != nil {
		healthCfg.DB = db
	}
	healthServer := health.NewServer(healthCfg)
	if err := healthServer.Start(ctx); err != nil {
		return err
	}
	healthServer.SetReady(true)

	return server.Start(ctx, cfg.ListenAddr())
}
