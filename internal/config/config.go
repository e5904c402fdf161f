package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Tesseract-Nexus/go-shared/secrets"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int

	// Server
	Port        string
	Environment string

	// JWT
	JWTSecret string

	// NATS
	NATSURL string

	// Outbox dispatcher
	OutboxInterval  time.Duration
	OutboxBatchSize int

	// Pagination
	DefaultPageSize int
	MaxPageSize     int
}

func Load() *Config {
	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	redisPort, _ := strconv.Atoi(getEnv("REDIS_PORT", "6379"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	outboxSeconds, _ := strconv.Atoi(getEnv("OUTBOX_INTERVAL_SECONDS", "5"))
	outboxBatch, _ := strconv.Atoi(getEnv("OUTBOX_BATCH_SIZE", "50"))
	defaultPageSize, _ := strconv.Atoi(getEnv("DEFAULT_PAGE_SIZE", "50"))
	maxPageSize, _ := strconv.Atoi(getEnv("MAX_PAGE_SIZE", "200"))

	return &Config{
		// Database - fetch password from GCP Secret Manager if enabled
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: secrets.GetDBPassword(),
		DBName:     getEnv("DB_NAME", "pos_backoffice_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     redisPort,
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,

		// Server
		Port:        getEnv("PORT", "8089"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// JWT - fetch from GCP Secret Manager if enabled
		JWTSecret: secrets.GetJWTSecret(),

		// NATS
		NATSURL: getEnv("NATS_URL", ""),

		// Outbox dispatcher
		OutboxInterval:  time.Duration(outboxSeconds) * time.Second,
		OutboxBatchSize: outboxBatch,

		// Pagination
		DefaultPageSize: defaultPageSize,
		MaxPageSize:     maxPageSize,
	}
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)

	var logLevel logger.LogLevel
	if cfg.Environment == "production" {
		logLevel = logger.Error
	} else {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// InitRedis builds a redis client for the caching layer. The client is
// optional, callers should degrade to database-only reads when it is nil.
func InitRedis(cfg *Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
