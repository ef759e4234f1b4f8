package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medease/medease/internal/config"
	"github.com/medease/medease/internal/domain/availability"
	"github.com/medease/medease/internal/domain/booking"
	"github.com/medease/medease/internal/domain/catalog"
	"github.com/medease/medease/internal/domain/identity"
	"github.com/medease/medease/internal/domain/messaging"
	"github.com/medease/medease/internal/httpapi"
	"github.com/medease/medease/internal/platform/auth"
	"github.com/medease/medease/internal/platform/db"
	"github.com/medease/medease/internal/platform/middleware"
	"github.com/medease/medease/internal/platform/realtime"
)

// doctorDirectory adapts the identity repository to the doctor lookups the
// booking and availability packages declare, avoiding circular imports.
type doctorDirectory struct {
	users identity.Repository
}

func (d *doctorDirectory) doctor(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	u, err := d.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role != identity.RoleDoctor {
		return nil, identity.ErrDoctorNotFound
	}
	return u, nil
}

func (d *doctorDirectory) GetDoctorSummary(ctx context.Context, id uuid.UUID) (*booking.DoctorSummary, error) {
	u, err := d.doctor(ctx, id)
	if err != nil {
		return nil, booking.ErrDoctorNotFound
	}
	return &booking.DoctorSummary{ID: u.ID, Name: u.Name, Email: u.Email, Specialty: u.Specialty}, nil
}

func (d *doctorDirectory) GetDoctorName(ctx context.Context, id uuid.UUID) (string, error) {
	u, err := d.doctor(ctx, id)
	if err != nil {
		return "", availability.ErrDoctorNotFound
	}
	return u.Name, nil
}

// userDirectory adapts the identity repository to the messaging package's
// counterpart lookups.
type userDirectory struct {
	users identity.Repository
}

func (d *userDirectory) GetProfile(ctx context.Context, id uuid.UUID) (*messaging.Profile, error) {
	u, err := d.users.GetByID(ctx, id)
	if err != nil {
		return nil, messaging.ErrUserNotFound
	}
	return &messaging.Profile{
		ID:        u.ID,
		Name:      u.Name,
		Role:      u.Role,
		Specialty: u.Specialty,
		Gender:    u.Gender,
	}, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-server",
		Short: "Clinic appointment booking API server",
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
		Short: "Start the clinic API server",
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

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpapi.NewValidator()
	e.HTTPErrorHandler = httpapi.ErrorHandler(logger)

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenDuration())

	// API groups
	api := e.Group("/api")
	authed := e.Group("/api", auth.Middleware(issuer))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	api.Use(middleware.RateLimit(rateLimitCfg))
	authed.Use(middleware.RateLimit(rateLimitCfg))

	// Repositories and cross-domain adapters
	userRepo := identity.NewRepoPG(pool)
	serviceRepo := catalog.NewRepoPG(pool)
	ruleRepo := availability.NewRepoPG(pool)
	apptRepo := booking.NewRepoPG(pool)
	messageRepo := messaging.NewRepoPG(pool)

	doctors := &doctorDirectory{users: userRepo}

	// Services
	availabilitySvc := availability.NewService(ruleRepo, doctors)
	identitySvc := identity.NewService(userRepo, issuer, availabilitySvc, apptRepo)
	catalogMgr := catalog.NewManager(serviceRepo)
	bookingSvc := booking.NewService(apptRepo, doctors)
	messagingSvc := messaging.NewService(messageRepo, &userDirectory{users: userRepo})

	// Handlers
	identity.NewHandler(identitySvc).RegisterRoutes(api, authed.Group("/users"))
	catalog.NewHandler(catalogMgr).RegisterRoutes(api, authed)
	availability.NewHandler(availabilitySvc).RegisterRoutes(authed.Group("/availability"))
	booking.NewHandler(bookingSvc).RegisterRoutes(api, authed.Group("/appointments"))
	messaging.NewHandler(messagingSvc).RegisterRoutes(authed.Group("/messages"))

	// Realtime hub for presence and chat relay
	hub := realtime.NewHub(logger)
	realtime.NewHandler(hub, issuer, logger).RegisterRoutes(e)

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

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
