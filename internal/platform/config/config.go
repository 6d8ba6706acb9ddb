package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string
	Env  string

	// Database selection: "mongo" or "dynamodb"
	DBType string

	// MongoDB settings (when DBType = "mongo")
	MongoURI string
	MongoDB  string

	// DynamoDB settings (when DBType = "dynamodb")
	AWSRegion          string
	DynamoDBEndpoint   string // Optional: for local development
	AWSAccessKeyID     string // Optional: for local development
	AWSSecretAccessKey string // Optional: for local development

	// Session store; empty RedisAddr selects the in-memory store
	RedisAddr     string
	RedisPassword string
	SessionTTLMin int

	// Timeouts
	HTTPReadTimeoutSec     int
	HTTPWriteTimeoutSec    int
	HTTPIdleTimeoutSec     int
	HTTPRequestTimeoutSec  int
	MongoConnectTimeoutSec int
	MongoOpTimeoutMs       int

	// Worker settings
	WorkerIntervalSec int

	// HTTP hardening
	AllowedOrigins []string
	RateLimitRPM   int
}

func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	cfg := &Config{}

	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "dev")
	cfg.DBType = getEnv("DB_TYPE", "mongo")

	cfg.MongoURI = getEnv("MONGODB_URI", getEnv("MONGO_URI", ""))
	cfg.MongoDB = getEnv("MONGO_DB", "insurance_platform")

	cfg.AWSRegion = getEnv("AWS_REGION", "us-east-1")
	cfg.DynamoDBEndpoint = getEnv("DYNAMODB_ENDPOINT", "") // Empty means use AWS
	cfg.AWSAccessKeyID = getEnv("AWS_ACCESS_KEY_ID", "")
	cfg.AWSSecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", "")

	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.SessionTTLMin = getEnvAsInt("SESSION_TTL_MIN", 60)

	cfg.HTTPReadTimeoutSec = getEnvAsInt("HTTP_READ_TIMEOUT_SEC", 10)
	cfg.HTTPWriteTimeoutSec = getEnvAsInt("HTTP_WRITE_TIMEOUT_SEC", 10)
	cfg.HTTPIdleTimeoutSec = getEnvAsInt("HTTP_IDLE_TIMEOUT_SEC", 120)
	cfg.HTTPRequestTimeoutSec = getEnvAsInt("HTTP_REQUEST_TIMEOUT_SEC", 30)
	cfg.MongoConnectTimeoutSec = getEnvAsInt("MONGO_CONNECT_TIMEOUT_SEC", 5)
	cfg.MongoOpTimeoutMs = getEnvAsInt("MONGO_OP_TIMEOUT_MS", 500)
	cfg.WorkerIntervalSec = getEnvAsInt("WORKER_INTERVAL_SEC", 5)

	cfg.AllowedOrigins = getEnvAsSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:8080"})
	cfg.RateLimitRPM = getEnvAsInt("RATE_LIMIT_RPM", 100)

	switch cfg.DBType {
	case "mongo":
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGO_URI is required when DB_TYPE=mongo")
		}
	case "dynamodb":
	default:
		return nil, fmt.Errorf("DB_TYPE must be mongo or dynamodb, got %q", cfg.DBType)
	}

	// Production requires a real shared session store
	if cfg.Env == "prod" && cfg.RedisAddr == "" {
		return nil, fmt.Errorf("REDIS_ADDR is required in production environment")
	}

	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsInt(key string, defaultVal int) int {
	valStr := os.Getenv(key)
	if val, err := strconv.Atoi(valStr); err == nil {
		return val
	}
	return defaultVal
}

func getEnvAsSlice(key string, defaultVal []string) []string {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	var result []string
	for _, s := range strings.Split(valStr, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			result = append(result, s)
		}
	}
	if len(result) == 0 {
		return defaultVal
	}
	return result
}
