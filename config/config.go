package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Client   ClientConfig
}

type ServerConfig struct {
	Port         string
	StaticDir    string
	AllowOrigins []string
	CacheTTL     time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// ClientConfig drives the API client and page controllers used by cmd/client.
type ClientConfig struct {
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	// StateStore is "redis" or "memory".
	StateStore string
	Width      int
}

var AppConfig *Config

func LoadConfig() *Config {
	// .env is optional
	_ = godotenv.Load()

	AppConfig = &Config{
		Server:   GetServerConfig(),
		Database: GetDatabaseConfig(),
		Redis:    GetRedisConfig(),
		Client:   GetClientConfig(),
	}

	return AppConfig
}

func LoadTestConfig() *Config {
	testConfig := &DatabaseConfig{
		Host:     "localhost",
		Port:     "5433", // test DB runs on 5433
		User:     "postgres",
		Password: "postgres",
		DBName:   "test_db",
		SSLMode:  "disable",
	}

	testRedisConfig := RedisConfig{
		Host:     "localhost",
		Port:     "6380", // test Redis runs on 6380
		Password: "",
		DB:       1,
	}

	return &Config{
		Server: ServerConfig{
			Port:      "0",
			StaticDir: "",
			CacheTTL:  time.Minute,
		},
		Database: *testConfig,
		Redis:    testRedisConfig,
		Client: ClientConfig{
			Timeout:        2 * time.Second,
			MaxRetries:     3,
			RetryBaseDelay: time.Millisecond,
			StateStore:     "memory",
			Width:          1024,
		},
	}
}

func GetServerConfig() ServerConfig {
	return ServerConfig{
		Port:         getEnv("SERVER_PORT", "8080"),
		StaticDir:    getEnv("STATIC_DIR", "./public"),
		AllowOrigins: splitList(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")),
		CacheTTL:     getDuration("CACHE_TTL", 30*time.Second),
	}
}

func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		DBName:   getEnv("DB_NAME", "charity_events"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}
}

func GetRedisConfig() RedisConfig {
	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		panic(err)
	}

	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       db,
	}
}

func GetClientConfig() ClientConfig {
	retries, err := strconv.Atoi(getEnv("API_MAX_RETRIES", "3"))
	if err != nil {
		panic(err)
	}
	width, err := strconv.Atoi(getEnv("COLUMNS", "120"))
	if err != nil {
		width = 120
	}

	return ClientConfig{
		BaseURL:        getEnv("API_BASE_URL", "http://localhost:8080"),
		Timeout:        getDuration("API_TIMEOUT", 10*time.Second),
		MaxRetries:     retries,
		RetryBaseDelay: getDuration("API_RETRY_BASE_DELAY", 500*time.Millisecond),
		StateStore:     getEnv("STATE_STORE", "redis"),
		Width:          width,
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, fallback.String()))
	if err != nil {
		panic(err)
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
