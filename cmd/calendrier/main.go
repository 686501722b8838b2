package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"

	"calendrier/config"
	"calendrier/internal/adapters/auth"
	"calendrier/internal/adapters/email"
	"calendrier/internal/adapters/ics"
	deliveryhttp "calendrier/internal/delivery/http"
	"calendrier/internal/delivery/http/controllers"
	"calendrier/internal/delivery/http/middleware"
	"calendrier/internal/repository/postgres"
	"calendrier/internal/services"
)

// @title Calendrier API
// @version 1.0
// @description Personal and group calendars with invite codes.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app := &cli.App{
		Name:  "calendrier",
		Usage: "Shared calendar API.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", EnvVars: []string{"CONFIG_FILE"}, Usage: "Optional YAML configuration file."},
		},
		Before: func(c *cli.Context) error {
			if path := c.String("config"); path != "" {
				return os.Setenv("CONFIG_FILE", path)
			}
			return nil
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply the database schema and exit.",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := config.NewLogger(cfg.Environment)
			db, err := openDB(c.Context, cfg.DBUrl)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := postgres.Migrate(c.Context, db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Info("schema applied")
			return nil
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "migrate", Usage: "Apply the schema before serving."},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return serve(c.Context, cfg, c.Bool("migrate"))
		},
	}
}

func serve(parent context.Context, cfg *config.Config, migrate bool) error {
	logger := config.NewLogger(cfg.Environment)
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	db, err := openDB(ctx, cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("connected to postgres")

	if migrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("schema applied")
	}

	// Repositories
	accountRepo := postgres.NewAccountRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	groupRepo := postgres.NewGroupRepository(db)
	groupEventRepo := postgres.NewGroupEventRepository(db)
	membershipRepo := postgres.NewMembershipRepository(db)

	// Mail
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Mail.Provider,
		FromAddress: cfg.Mail.FromAddress,
		FromName:    cfg.Mail.FromName,
		SES: email.SESConfig{
			Region:             cfg.Mail.Region,
			AccessKeyID:        cfg.Mail.AccessKeyID,
			SecretAccessKey:    cfg.Mail.SecretAccessKey,
			InsecureSkipVerify: cfg.Mail.InsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("email templates: %w", err)
	}
	emailService := services.NewEmailService(mailer, renderer, logger)

	// Services
	authService := services.NewAuthService(
		accountRepo, sessionRepo,
		auth.NewBcryptHasher(auth.DefaultBcryptCost),
		auth.NewJWTIssuer(cfg.JWTSecret), auth.NewJWTVerifier(cfg.JWTSecret),
		cfg.JWTExpiry, emailService, logger,
	)
	eventService := services.NewEventService(eventRepo, groupEventRepo, membershipRepo, loc, cfg.WeekStartDay(), cfg.RequestTimeout)
	groupService := services.NewGroupService(groupRepo, membershipRepo, groupEventRepo, accountRepo, emailService, cfg.FrontendURL, logger, cfg.RequestTimeout)
	calendarService := services.NewCalendarService(eventService, eventRepo, groupRepo, groupEventRepo, membershipRepo, accountRepo, ics.NewCodec(), cfg.RequestTimeout)

	// HTTP
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	go limiter.Run(ctx)

	mux := deliveryhttp.NewRouter(deliveryhttp.Controllers{
		Auth:     controllers.NewAuthController(logger, authService),
		Events:   controllers.NewEventController(logger, eventService, groupService, loc),
		Groups:   controllers.NewGroupController(logger, groupService),
		Calendar: controllers.NewCalendarController(logger, calendarService),
	}, authService, limiter, logger)
	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.AllowedOrigins, mux))

	// Background jobs
	scheduler := cron.New(cron.WithLocation(loc))
	if _, err := scheduler.AddFunc(cfg.SessionPurgeCron, func() {
		n, err := authService.PurgeExpiredSessions(ctx)
		if err != nil {
			logger.Error("purge expired sessions", "err", err)
			return
		}
		logger.Info("purged expired sessions", "count", n)
	}); err != nil {
		return fmt.Errorf("session purge schedule %q: %w", cfg.SessionPurgeCron, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openDB(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}
