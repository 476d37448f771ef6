package configs

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"property-scraper-service/internal/constants"

	"github.com/joho/godotenv"
)

type RestConfig struct {
	Port string
}

// DBConfig holds the postgres connection string. Persistence is optional:
// when URL is empty the service runs scrape-only and the persist flag on
// requests is rejected.
type DBConfig struct {
	URL     string
	Enabled bool
}

type RabbitMQConfig struct {
	URL      string
	Exchange string
	Enabled  bool
}

type BlobStorageConfig struct {
	BaseURL    string
	ServiceKey string
}

type ScraperConfig struct {
	Retries          int
	TimeoutSec       int
	UserAgent        string
	ImageConcurrency int
	ImageRetries     int
	ImageTimeoutSec  int
}

type StdoutLogConfig struct {
	Level string
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string
}

type AppConfig struct {
	AppName      string
	Rest         RestConfig
	Database     DBConfig
	RabbitMQ     RabbitMQConfig
	BlobStorage  BlobStorageConfig
	Scraper      ScraperConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
}

// Timeout returns the page fetch timeout as a duration.
func (c ScraperConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// ImageTimeout returns the per-image download timeout as a duration.
func (c ScraperConfig) ImageTimeout() time.Duration {
	return time.Duration(c.ImageTimeoutSec) * time.Second
}

// LoadConfig loads the configuration from environment variables, optionally
// seeded from a .env file.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		log.Printf("Info: Could not load .env file (path: %v): %v. Using process environment.\n", envPath, err)
	}

	cfg := &AppConfig{}

	cfg.AppName = getEnvAsString("APP_NAME", "property-scraper-service")
	cfg.Rest.Port = getEnvAsString("REST_PORT", "8080")

	// Blob storage is where every re-hosted image goes, so it is required.
	cfg.BlobStorage.BaseURL = os.Getenv("SUPABASE_URL")
	if cfg.BlobStorage.BaseURL == "" {
		return nil, fmt.Errorf("SUPABASE_URL environment variable is required")
	}
	cfg.BlobStorage.ServiceKey = os.Getenv("SUPABASE_SERVICE_KEY")
	if cfg.BlobStorage.ServiceKey == "" {
		return nil, fmt.Errorf("SUPABASE_SERVICE_KEY environment variable is required")
	}

	cfg.Database.URL = os.Getenv("DATABASE_URL")
	cfg.Database.Enabled = cfg.Database.URL != ""

	cfg.RabbitMQ.Enabled = getEnvAsBool("RABBITMQ_ENABLED", false)
	if cfg.RabbitMQ.Enabled {
		cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
		if cfg.RabbitMQ.URL == "" {
			log.Println("WARNING: RABBITMQ_ENABLED is true, but RABBITMQ_URL is not set. Disabling event publishing.")
			cfg.RabbitMQ.Enabled = false
		}
		cfg.RabbitMQ.Exchange = getEnvAsString("RABBITMQ_EXCHANGE", constants.ScraperExchange)
	}

	cfg.Scraper.Retries = getEnvAsInt("SCRAPER_RETRIES", 3)
	cfg.Scraper.TimeoutSec = getEnvAsInt("SCRAPER_TIMEOUT_SEC", 30)
	cfg.Scraper.UserAgent = getEnvAsString("SCRAPER_USER_AGENT", "")
	cfg.Scraper.ImageConcurrency = getEnvAsInt("IMAGE_CONCURRENCY", 5)
	cfg.Scraper.ImageRetries = getEnvAsInt("IMAGE_RETRIES", 3)
	cfg.Scraper.ImageTimeoutSec = getEnvAsInt("IMAGE_TIMEOUT_SEC", 15)

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}
		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")

	return cfg, nil
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}
