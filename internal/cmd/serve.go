package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/diagnosis-service/internal/cache"
	"github.com/SAP-F-2025/diagnosis-service/internal/config"
	"github.com/SAP-F-2025/diagnosis-service/internal/handlers"
	"github.com/SAP-F-2025/diagnosis-service/internal/identity"
	"github.com/SAP-F-2025/diagnosis-service/internal/questionnaire"
	"github.com/SAP-F-2025/diagnosis-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/diagnosis-service/internal/scoring"
	"github.com/SAP-F-2025/diagnosis-service/internal/services"
	"github.com/SAP-F-2025/diagnosis-service/internal/utils"
	"github.com/SAP-F-2025/diagnosis-service/internal/validator"
	"github.com/SAP-F-2025/diagnosis-service/pkg"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand creates the serve subcommand
func NewServeCommand() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the questionnaire HTTP API.

Configuration is read from the environment and an optional .env file
(PORT, DATABASE_URL, REDIS_URL, SCORING_API_URL, IDENTITY_PROVIDER, ...).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")

	return cmd
}

func runServer(ctx context.Context, cfg *config.Config) error {
	logger := utils.NewLogger(cfg.Environment, cfg.LogLevel)
	slogLogger := utils.ToSlogLogger(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		return err
	}
	var cacheService cache.CacheService
	if redisClient != nil {
		defer redisClient.Close()
		cacheService = cache.NewRedisCache(redisClient, slogLogger)
	} else {
		logger.Warn("REDIS_URL not set, caching disabled")
	}

	verifier, err := newVerifier(cfg)
	if err != nil {
		return err
	}

	api, err := scoring.NewClient(scoring.Config{
		BaseURL: cfg.ScoringAPIURL,
		Timeout: cfg.ScoringTimeout,
	}, slogLogger)
	if err != nil {
		return err
	}

	options, err := loadOptionRegistry(cfg.OptionSetsPath)
	if err != nil {
		return err
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogLogger)
	if err != nil {
		return fmt.Errorf("create event publisher: %w", err)
	}
	defer publisher.Close()

	deps := services.Dependencies{
		API:             api,
		Options:         options,
		Workspaces:      services.NewWorkspaceRegistry(),
		Archive:         postgres.NewResultPostgreSQL(db),
		Cache:           cacheService,
		Events:          services.NewDiagnosisEventService(publisher, slogLogger),
		Validator:       validator.New(),
		Logger:          slogLogger,
		CatalogCacheTTL: cfg.CatalogCacheTTL,
		ResultCacheTTL:  cfg.ResultCacheTTL,
	}
	serviceManager := services.NewServiceManager(
		services.NewQuestionnaireService(deps),
		services.NewResultService(deps),
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(utils.ContextLogger(logger), utils.LoggerMiddleware(logger), gin.Recovery())
	handlers.NewHandlerManager(serviceManager, logger).SetupRoutes(router, identity.Middleware(verifier, logger))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server",
			"port", cfg.Port,
			"environment", cfg.Environment,
			"options_version", options.Version(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newVerifier(cfg *config.Config) (identity.Verifier, error) {
	if cfg.IdentityProvider == "casdoor" {
		return identity.NewCasdoorVerifier(cfg.Casdoor)
	}
	return identity.NewJWTVerifier(cfg.JWTSecret)
}

// loadOptionRegistry reads the override table when path is set, else the embedded one.
func loadOptionRegistry(path string) (*questionnaire.OptionRegistry, error) {
	if path == "" {
		return questionnaire.DefaultOptionRegistry(), nil
	}
	return questionnaire.LoadOptionRegistryFile(path)
}
