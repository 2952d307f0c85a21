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

	"github.com/Dosada05/chess-league/brackets"
	"github.com/Dosada05/chess-league/config"
	"github.com/Dosada05/chess-league/db"
	"github.com/Dosada05/chess-league/handlers"
	"github.com/Dosada05/chess-league/metrics"
	"github.com/Dosada05/chess-league/middleware"
	"github.com/Dosada05/chess-league/repositories"
	api "github.com/Dosada05/chess-league/routes"
	"github.com/Dosada05/chess-league/services"
	"github.com/Dosada05/chess-league/storage"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"
)

const (
	dbConnectTimeout = 5 * time.Second
	shutdownTimeout  = 15 * time.Second
)

// @title Chess League API
// @version 1.0
// @description Team chess league: rosters, tournaments, round pairings and results.
// @BasePath /
// @securityDefinitions.basic BasicAuth
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token.
func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	app := &cli.App{
		Name:  "chess-league",
		Usage: "team chess league service",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "env-file",
				Usage:   "env file to load before reading configuration (default .env)",
				EnvVars: []string{"ENV_FILE"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP API",
				Action: func(c *cli.Context) error {
					return serve(c.Context, logger, c.StringSlice("env-file"))
				},
			},
			{
				Name:  "migrate",
				Usage: "apply bundled database migrations",
				Action: func(c *cli.Context) error {
					return runMigrations(c.Context, logger, c.StringSlice("env-file"), migrateUp)
				},
				Subcommands: []*cli.Command{
					{
						Name:  "rollback",
						Usage: "roll back the last migration group",
						Action: func(c *cli.Context) error {
							return runMigrations(c.Context, logger, c.StringSlice("env-file"), migrateRollback)
						},
					},
					{
						Name:  "status",
						Usage: "list migrations that are not applied yet",
						Action: func(c *cli.Context) error {
							return runMigrations(c.Context, logger, c.StringSlice("env-file"), migrateStatus)
						},
					},
				},
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error("application failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func loadConfigAndConnect(logger *slog.Logger, envFiles []string) (*config.Config, *sql.DB, error) {
	// Загрузка конфигурации
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, dbConnectTimeout)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("database connection established")
	return cfg, dbConn, nil
}

func closeDB(logger *slog.Logger, dbConn *sql.DB) {
	if err := dbConn.Close(); err != nil {
		logger.Error("failed to close database connection", slog.Any("error", err))
	} else {
		logger.Info("database connection closed")
	}
}

type migrateAction int

const (
	migrateUp migrateAction = iota
	migrateRollback
	migrateStatus
)

func runMigrations(ctx context.Context, logger *slog.Logger, envFiles []string, action migrateAction) error {
	_, dbConn, err := loadConfigAndConnect(logger, envFiles)
	if err != nil {
		return err
	}
	defer closeDB(logger, dbConn)

	migrator, err := db.NewMigrator(dbConn)
	if err != nil {
		return err
	}

	switch action {
	case migrateRollback:
		reverted, err := migrator.Rollback(ctx)
		if err != nil {
			return err
		}
		if len(reverted) == 0 {
			logger.Info("no migration groups to roll back")
			return nil
		}
		logger.Info("migrations rolled back", slog.Any("migrations", reverted))
	case migrateStatus:
		pending, err := migrator.Pending(ctx)
		if err != nil {
			return err
		}
		logger.Info("migration status", slog.Any("pending", pending))
	default:
		applied, err := migrator.Migrate(ctx)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			logger.Info("database schema is up to date")
			return nil
		}
		logger.Info("migrations applied", slog.Any("migrations", applied))
	}
	return nil
}

func serve(ctx context.Context, logger *slog.Logger, envFiles []string) error {
	cfg, dbConn, err := loadConfigAndConnect(logger, envFiles)
	if err != nil {
		return err
	}
	defer closeDB(logger, dbConn)

	// Метрики
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := metrics.NewPrometheus(registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	// Инициализация WebSocket Hub
	wsHub := brackets.NewHub(logger)
	go wsHub.Run()
	defer wsHub.Stop()
	logger.Info("WebSocket Hub started")

	// Листы пар публикуются в Cloudflare R2, если хранилище настроено.
	var sheets services.PairingSheetPublisher
	if cfg.R2.Enabled() {
		uploader, err := storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2.AccountID,
			AccessKeyID:     cfg.R2.AccessKeyID,
			SecretAccessKey: cfg.R2.SecretAccessKey,
			BucketName:      cfg.R2.BucketName,
			PublicBaseURL:   cfg.R2.PublicBaseURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
		}
		sheets = storage.NewPairingSheetStore(uploader)
		logger.Info("Cloudflare R2 uploader initialized", slog.String("bucket", cfg.R2.BucketName))
	} else {
		logger.Info("object storage not configured, pairing sheets will not be published")
	}

	var mailer services.VerificationMailer
	if cfg.SMTPEnabled() {
		mailer = services.NewEmailService(cfg)
	}

	// Инициализация репозиториев
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	officialRepo := repositories.NewPostgresOfficialRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	enrollmentRepo := repositories.NewPostgresEnrollmentRepository(dbConn)
	gameRepo := repositories.NewPostgresGameRepository(dbConn)
	logger.Info("Repositories initialized")

	// Инициализация сервисов
	authService, err := services.NewAuthService(services.AuthConfig{
		Username:  cfg.AuthUsername,
		Password:  cfg.AuthPassword,
		JWTSecret: cfg.JWTSecretKey,
		TokenTTL:  cfg.JWTTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize auth service: %w", err)
	}
	teamService := services.NewTeamService(teamRepo, playerRepo)
	playerService := services.NewPlayerService(playerRepo)
	officialService := services.NewOfficialService(officialRepo, mailer, logger)
	tournamentService := services.NewTournamentService(tournamentRepo, officialRepo, enrollmentRepo, logger)
	gameService := services.NewGameService(dbConn, gameRepo, playerRepo, tournamentRepo, officialRepo, wsHub, recorder, logger)
	roundService := services.NewRoundService(dbConn, tournamentRepo, enrollmentRepo, gameRepo, playerRepo, wsHub, sheets, recorder, logger)
	dashboardService := services.NewDashboardService(teamRepo, playerRepo, officialRepo, tournamentRepo, gameRepo)
	logger.Info("Services initialized")

	// Инициализация обработчиков HTTP
	h := api.Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		Team:       handlers.NewTeamHandler(teamService),
		Player:     handlers.NewPlayerHandler(playerService),
		Official:   handlers.NewOfficialHandler(officialService),
		Tournament: handlers.NewTournamentHandler(tournamentService, gameService),
		Round:      handlers.NewRoundHandler(roundService),
		Game:       handlers.NewGameHandler(gameService),
		Dashboard:  handlers.NewDashboardHandler(dashboardService),
		WebSocket:  handlers.NewWebSocketHandler(wsHub, tournamentService, cfg.CORSAllowedOrigins),
	}

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, h, api.Options{
		Logger:             logger,
		Recorder:           recorder,
		MetricsHandler:     metrics.Handler(registry),
		Authenticator:      authService,
		TokenLimiter:       middleware.NewIPRateLimiter(rate.Every(6*time.Second), 5),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
	return nil
}
