package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/brainsait/rcm/internal/config"
	"github.com/brainsait/rcm/internal/domain/cdi"
	"github.com/brainsait/rcm/internal/domain/claims"
	"github.com/brainsait/rcm/internal/domain/coding"
	"github.com/brainsait/rcm/internal/domain/kpi"
	"github.com/brainsait/rcm/internal/platform/audit"
	"github.com/brainsait/rcm/internal/platform/auth"
	"github.com/brainsait/rcm/internal/platform/clearinghouse"
	"github.com/brainsait/rcm/internal/platform/db"
	"github.com/brainsait/rcm/internal/platform/middleware"
	"github.com/brainsait/rcm/internal/platform/refdata"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rcm-server",
		Short: "Revenue cycle coding and claims API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the RCM API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			pool, err := migrationPool()
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := db.NewMigrator(pool, dir).Up(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("applied %d migration(s)\n", applied)
			return nil
		},
	}
	upCmd.Flags().String("dir", "migrations", "Path to migrations directory")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			pool, err := migrationPool()
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(context.Background())
			if err != nil {
				return err
			}
			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = "applied " + s.AppliedAt.Format(time.RFC3339)
				}
				fmt.Printf("%03d %-30s %s\n", s.Version, s.Name, state)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "migrations", "Path to migrations directory")

	cmd.AddCommand(upCmd, statusCmd)
	return cmd
}

func migrationPool() (*pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for migrations")
	}
	return db.NewPool(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	// Reference data
	store, err := refdata.Load(cfg.RefDataPath, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.RefDataPath).Msg("failed to load reference data")
	}

	// Storage: Postgres when configured, in-memory standalone otherwise.
	ctx := context.Background()
	var (
		pool      *pgxpool.Pool
		jobRepo   coding.JobRepository
		claimRepo claims.Repository
		recorder  audit.Recorder
	)
	if cfg.DatabaseURL != "" {
		pool, err = db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		logger.Info().Msg("connected to database")

		jobRepo = coding.NewJobRepoPG(pool)
		claimRepo = claims.NewRepoPG(pool)
		recorder = audit.NewRecorderPG(pool)
	} else {
		logger.Warn().Msg("no DATABASE_URL configured, running with in-memory storage")
		jobRepo = coding.NewInMemoryJobRepo()
		claimRepo = claims.NewInMemoryRepo()
	}

	trail := audit.NewTrail(recorder, logger)

	// Domain services
	matcher := coding.NewMatcher(store, nil)
	grouper := coding.NewGrouper(store)
	codingSvc := coding.NewService(jobRepo, matcher, grouper, nil, trail, logger)

	// Clearinghouse: optional; without it autonomous jobs stay retryable.
	var claimSvc *claims.Service
	if cfg.ClearinghouseConfigured() {
		client, err := clearinghouse.New(clearinghouse.Config{
			BaseURL:      cfg.ClearinghouseBaseURL,
			ClientID:     cfg.ClearinghouseClientID,
			ClientSecret: cfg.ClearinghouseClientSecret,
			Timeout:      cfg.ClearinghouseTimeout(),
		}, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build clearinghouse client")
		}
		claimSvc = claims.NewService(claimRepo, client, claims.Config{
			ProviderCRNumber: cfg.ProviderCRNumber,
			BaseRate:         cfg.ClaimBaseRate,
		}, trail, logger)
		codingSvc.SetSubmitter(claimSvc)
		claimSvc.SetJobRejector(codingSvc)
	} else {
		logger.Warn().Msg("clearinghouse not configured, autonomous jobs stay in the review queue")
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(middleware.BodyLimit("1M"))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.IsDev() && cfg.AuthSigningKey == "" {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.Middleware([]byte(cfg.AuthSigningKey)))
	}

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	if pool != nil {
		e.GET("/health/db", db.HealthHandler(pool))
	}

	// API routes
	apiV1 := e.Group("/api/v1")

	coding.NewHandler(codingSvc).RegisterRoutes(apiV1)
	if claimSvc != nil {
		claims.NewHandler(claimSvc).RegisterRoutes(apiV1)
	}

	kpiSvc := kpi.NewService(jobRepo, claimRepo, cfg.DNFBThreshold(), logger)
	kpi.NewHandler(kpiSvc).RegisterRoutes(apiV1)

	cdi.NewHandler(cdi.NewAnalyzer(nil)).RegisterRoutes(apiV1)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
