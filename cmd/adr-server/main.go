package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/adrportal/adrportal/internal/config"
	"github.com/adrportal/adrportal/internal/domain/allergycard"
	"github.com/adrportal/adrportal/internal/domain/assessment"
	"github.com/adrportal/adrportal/internal/domain/contest"
	"github.com/adrportal/adrportal/internal/domain/dashboard"
	"github.com/adrportal/adrportal/internal/domain/department"
	"github.com/adrportal/adrportal/internal/domain/identity"
	"github.com/adrportal/adrportal/internal/domain/notification"
	"github.com/adrportal/adrportal/internal/domain/performance"
	"github.com/adrportal/adrportal/internal/domain/quiz"
	"github.com/adrportal/adrportal/internal/domain/report"
	"github.com/adrportal/adrportal/internal/platform/auth"
	"github.com/adrportal/adrportal/internal/platform/cache"
	"github.com/adrportal/adrportal/internal/platform/db"
	"github.com/adrportal/adrportal/internal/platform/mailer"
	"github.com/adrportal/adrportal/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "adr-server",
		Short: "ADR reporting portal API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(backfillCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
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

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

// backfillCmd assigns report codes to legacy reports imported without
// one.
func backfillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backfill-codes",
		Short: "Assign report codes to reports that lack one",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			deptSvc := department.NewService(department.NewRepoPG(pool))
			reportSvc := report.NewService(report.NewRepoPG(pool), deptSvc, pool, logger)

			result, err := reportSvc.BackfillCodes(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("Assigned: %d  Failed: %d\n", result.Assigned, result.Failed)
			for _, msg := range result.Errors {
				fmt.Printf("  - %s\n", msg)
			}
			return nil
		},
	}
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	redisCache, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	if redisCache != nil {
		defer redisCache.Close()
		logger.Info().Msg("connected to redis")
	} else {
		logger.Warn().Msg("REDIS_URL not set; caching disabled")
	}

	var sender mailer.EmailSender
	if cfg.MailerConfigured() {
		sender = mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	} else {
		sender = mailer.NewNopSender(logger)
		logger.Warn().Msg("SMTP not configured; outbound email disabled")
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(2 << 20))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	e.GET("/health", db.HealthHandler(pool))

	// Public routes carry no token; the authed group verifies JWTs.
	public := e.Group("/api")
	api := e.Group("/api")
	if cfg.IsDev() && cfg.JWTSecret == "" {
		api.Use(auth.DevMiddleware())
	} else {
		api.Use(auth.Middleware(cfg.JWTSecret))
	}

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}
	public.Use(middleware.RateLimit(rateLimitCfg))
	api.Use(middleware.RateLimit(rateLimitCfg))

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)

	// Identity
	identitySvc := identity.NewService(identity.NewRepoPG(pool), issuer)
	identityHandler := identity.NewHandler(identitySvc)
	identityHandler.RegisterPublicRoutes(public)
	identityHandler.RegisterRoutes(api)

	// Departments
	deptSvc := department.NewService(department.NewRepoPG(pool))
	deptHandler := department.NewHandler(deptSvc)
	deptHandler.RegisterPublicRoutes(public)
	deptHandler.RegisterRoutes(api)

	// ADR reports
	reportSvc := report.NewService(report.NewRepoPG(pool), deptSvc, pool, logger)
	report.NewHandler(reportSvc).RegisterRoutes(api)

	// Notifications, wired into the report lifecycle
	notifySvc := notification.NewService(notification.NewRepoPG(pool), identitySvc, sender, mailer.DefaultTemplates(), logger)
	reportSvc.SetNotifier(notifySvc)
	notification.NewHandler(notifySvc).RegisterRoutes(api)

	// Causality scoring
	assessment.NewHandler().RegisterRoutes(api)

	// Performance assessments
	perfSvc := performance.NewService(performance.NewRepoPG(pool))
	performance.NewHandler(perfSvc).RegisterRoutes(api)

	// Allergy cards
	cardSvc := allergycard.NewService(allergycard.NewRepoPG(pool), pool, cfg.PublicBaseURL)
	cardHandler := allergycard.NewHandler(cardSvc)
	cardHandler.RegisterPublicRoutes(public)
	cardHandler.RegisterRoutes(api)

	// Quiz
	quizSvc := quiz.NewService(quiz.NewRepoPG(pool), redisCache, logger)
	quiz.NewHandler(quizSvc).RegisterRoutes(api)

	// Contests
	contestSvc := contest.NewService(contest.NewRepoPG(pool), redisCache, logger)
	contestHandler := contest.NewHandler(contestSvc)
	contestHandler.RegisterPublicRoutes(public)
	contestHandler.RegisterRoutes(api)

	// Dashboard
	dashSvc := dashboard.NewService(dashboard.NewRepoPG(pool), redisCache, logger)
	dashboard.NewHandler(dashSvc).RegisterRoutes(api)

	// Start with graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
