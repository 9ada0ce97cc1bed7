package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// RedisConfig holds connection settings for the validation work queue.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Namespace prefixes every key so several deployments can share one Redis.
	Namespace string
}

// WorkerConfig tunes the validation worker pool and the retry policy.
type WorkerConfig struct {
	// Concurrency is the number of goroutines claiming and running jobs.
	Concurrency int
	// MaxAttempts bounds the retry budget per job; once exhausted a failed
	// job is terminal.
	MaxAttempts int
	// ClaimTTL is how long a claim stays valid before the sweeper may hand
	// the job to another worker.
	ClaimTTL time.Duration
	// RetryBaseDelay and RetryMaxDelay bound the exponential backoff between
	// attempts.
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
	// FetchTimeout bounds a single blob fetch.
	FetchTimeout time.Duration
	// SweepInterval is how often due retries and expired claims are swept
	// back into the queue.
	SweepInterval time.Duration
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	Database DatabaseConfig
	MinIO    MinIOConfig
	Redis    RedisConfig
	Worker   WorkerConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"), // default only for non-sensitive value
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Redis: RedisConfig{
			Addr:      getEnv("REDIS_ADDR", "localhost:6379"),
			Password:  getEnv("REDIS_PASSWORD", ""),
			DB:        getEnvInt("REDIS_DB", 0),
			Namespace: getEnv("REDIS_NAMESPACE", "standards"),
		},
		Worker: WorkerConfig{
			Concurrency:    getEnvInt("WORKER_CONCURRENCY", 4),
			MaxAttempts:    getEnvInt("WORKER_MAX_ATTEMPTS", 5),
			ClaimTTL:       getEnvDuration("WORKER_CLAIM_TTL", 2*time.Minute),
			RetryBaseDelay: getEnvDuration("WORKER_RETRY_BASE_DELAY", 2*time.Second),
			RetryMaxDelay:  getEnvDuration("WORKER_RETRY_MAX_DELAY", 5*time.Minute),
			FetchTimeout:   getEnvDuration("WORKER_FETCH_TIMEOUT", 30*time.Second),
			SweepInterval:  getEnvDuration("WORKER_SWEEP_INTERVAL", 15*time.Second),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
