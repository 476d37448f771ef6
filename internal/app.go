package internal

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"property-scraper-service/internal/adapters/blobstore"
	"property-scraper-service/internal/adapters/extractors"
	"property-scraper-service/internal/adapters/htmlfetcher"
	"property-scraper-service/internal/adapters/imagepipeline"
	logger_adapter "property-scraper-service/internal/adapters/logger"
	"property-scraper-service/internal/adapters/portaldetect"
	postgres_adapter "property-scraper-service/internal/adapters/postgres"
	rabbitmq_adapter "property-scraper-service/internal/adapters/rabbitmq"
	"property-scraper-service/internal/adapters/rest"
	"property-scraper-service/internal/configs"
	"property-scraper-service/internal/core/domain"
	"property-scraper-service/internal/core/port"
	usecases_port "property-scraper-service/internal/core/port/usecases"
	"property-scraper-service/internal/core/usecase"
	"property-scraper-service/pkg/fluentlogger"
	"property-scraper-service/pkg/postgres"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
)

type App struct {
	config    *configs.AppConfig
	dbPool    *pgxpool.Pool
	apiServer *rest.Server

	fluentClient *fluent.Fluent
	amqpProducer *rabbitmq_adapter.Publisher
	logger       port.LoggerPort
}

func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	// --- logger stack ---
	var activeLoggers []port.LoggerPort

	slogCfg := logger_adapter.SlogConfig{
		Level:    parseLogLevel(appConfig.StdoutLogger.Level),
		IsJSON:   false,
		UseColor: true,
	}
	stdoutLogger := logger_adapter.NewSlogAdapter(slogCfg)
	activeLoggers = append(activeLoggers, stdoutLogger)

	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, parseLogLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{
		"service_name": appConfig.AppName,
	})

	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	// Process-wide scrape defaults come from the environment; per-request
	// overrides are merged over them in the use case.
	applyScraperDefaults(appConfig.Scraper)

	// --- scraping adapters ---
	fetcher, err := htmlfetcher.NewCollyFetcherAdapter()
	if err != nil {
		appLogger.Error("Failed to create HTML fetcher", err, nil)
		return nil, fmt.Errorf("failed to create HTML fetcher: %w", err)
	}

	blobClient := blobstore.NewClient(appConfig.BlobStorage.BaseURL, appConfig.BlobStorage.ServiceKey)
	imagePipeline := imagepipeline.NewPipeline(blobClient)
	detector := portaldetect.NewDetector()
	extractorRegistry := extractors.DefaultRegistry()
	appLogger.Info("Scraping adapters initialized", port.Fields{"extractors": len(extractorRegistry)})

	// --- optional persistence + events ---
	var dbPool *pgxpool.Pool
	var amqpProducer *rabbitmq_adapter.Publisher
	var saveListingUseCase usecases_port.SaveListingUseCase

	if appConfig.Database.Enabled {
		dbPool, err = postgres.NewClient(context.Background(), postgres.Config{DatabaseURL: appConfig.Database.URL})
		if err != nil {
			appLogger.Error("Failed to connect to PostgreSQL", err, nil)
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		appLogger.Info("Successfully connected to PostgreSQL pool!", nil)

		storageAdapter, err := postgres_adapter.NewListingStorageAdapter(dbPool)
		if err != nil {
			appLogger.Error("Failed to create listing storage adapter", err, nil)
			dbPool.Close()
			return nil, fmt.Errorf("failed to create listing storage adapter: %w", err)
		}

		var eventsAdapter port.ListingEventsPort
		if appConfig.RabbitMQ.Enabled {
			amqpProducer, err = rabbitmq_adapter.NewPublisher(appConfig.RabbitMQ.URL, appConfig.RabbitMQ.Exchange)
			if err != nil {
				appLogger.Error("Failed to connect to RabbitMQ", err, nil)
				dbPool.Close()
				return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
			}
			eventsAdapter, err = rabbitmq_adapter.NewListingEventsAdapter(amqpProducer)
			if err != nil {
				appLogger.Error("Failed to create listing events adapter", err, nil)
				amqpProducer.Close()
				dbPool.Close()
				return nil, err
			}
			appLogger.Info("RabbitMQ event publishing enabled", port.Fields{"exchange": appConfig.RabbitMQ.Exchange})
		}

		saveListingUseCase = usecase.NewSaveListingUseCase(storageAdapter, eventsAdapter)
	} else {
		appLogger.Warn("DATABASE_URL is not set, running scrape-only (persist requests will be rejected)", nil)
	}

	// --- use cases ---
	scrapeListingUseCase := usecase.NewScrapeListingUseCase(fetcher, detector, extractorRegistry, imagePipeline)
	scrapeManyUseCase := usecase.NewScrapeManyUseCase(scrapeListingUseCase)
	validateURLUseCase := usecase.NewValidateURLUseCase(detector)

	// --- REST API server ---
	apiHandlers := rest.NewScrapeHandlers(scrapeListingUseCase, scrapeManyUseCase, validateURLUseCase, saveListingUseCase)
	apiServer := rest.NewServer(appConfig.Rest.Port, apiHandlers, baseLogger)
	appLogger.Info("REST API server configured.", nil)

	application := &App{
		config:    appConfig,
		dbPool:    dbPool,
		apiServer: apiServer,

		fluentClient: fluentClient,
		amqpProducer: amqpProducer,
		logger:       appLogger,
	}

	return application, nil
}

// Run starts the application components and manages their lifecycle.
func (a *App) Run() error {
	appCtx, cancelApp := context.WithCancel(context.Background())

	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		if a.apiServer != nil {
			if err := a.apiServer.Stop(context.Background()); err != nil {
				a.logger.Error("Error during API server shutdown", err, nil)
			}
		}

		if a.amqpProducer != nil {
			if err := a.amqpProducer.Close(); err != nil {
				a.logger.Error("Error closing RabbitMQ producer", err, nil)
			}
		}

		if a.dbPool != nil {
			a.dbPool.Close()
			a.logger.Info("PostgreSQL pool closed.", nil)
		}

		a.logger.Info("Application shut down gracefully.", nil)

		if a.fluentClient != nil {
			if err := a.fluentClient.Close(); err != nil {
				// stdout directly, fluent itself may already be gone
				fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
			}
		}
	}()

	a.logger.Info("Application is starting...", nil)

	serverErrors := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server...", port.Fields{"port": a.config.Rest.Port})
		if err := a.apiServer.Start(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	a.logger.Info("Application running. Waiting for signals or server error...", nil)
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case <-appCtx.Done():
		a.logger.Warn("Context was cancelled unexpectedly, shutting down...", nil)
	case err := <-serverErrors:
		a.logger.Error("Server failed to start, shutting down", err, nil)
	}

	cancelApp()

	return nil
}

// applyScraperDefaults overrides the process-wide scrape defaults with the
// values from the environment.
func applyScraperDefaults(cfg configs.ScraperConfig) {
	defaults := &domain.DefaultScraperConfig
	if cfg.Retries > 0 {
		defaults.Retries = cfg.Retries
	}
	if cfg.TimeoutSec > 0 {
		defaults.Timeout = cfg.Timeout()
	}
	if cfg.UserAgent != "" {
		defaults.UserAgent = cfg.UserAgent
	}
	if cfg.ImageConcurrency > 0 {
		defaults.Images.MaxConcurrent = cfg.ImageConcurrency
	}
	if cfg.ImageRetries > 0 {
		defaults.Images.MaxRetries = cfg.ImageRetries
	}
	if cfg.ImageTimeoutSec > 0 {
		defaults.Images.Timeout = cfg.ImageTimeout()
	}
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
		return slog.LevelInfo
	}
}
