package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the server reads at startup.
type Config struct {
	Env      string
	Port     string
	Store    string // "postgres" or "memory"
	LogLevel string

	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	DBMaxIdleConns int
	DBMaxOpenConns int
	DBConnLifetime time.Duration
	DBConnIdleTime time.Duration

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	JWTSecret       string
	RefreshSecret   string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	StripeSecretKey string
	Currency        string

	LockTTL        time.Duration
	IdempotencyTTL time.Duration
	CacheTTL       time.Duration

	CORSOrigins string
}

// LoadEnv loads variables from a .env file if present. It returns the
// loader error so the caller can log it; a missing file is not fatal.
func LoadEnv() error {
	return godotenv.Load()
}

// Load reads the environment into a Config.
func Load() Config {
	return Config{
		Env:   GetEnv("ENV", "development"),
		Port:  GetEnv("PORT", "3000"),
		Store: GetEnv("STORE", "postgres"),

		LogLevel: GetEnv("LOG_LEVEL", ""),

		DBHost:         GetEnv("DB_HOST", "localhost"),
		DBPort:         GetEnv("DB_PORT", "5432"),
		DBUser:         GetEnv("DB_USER", "postgres"),
		DBPassword:     GetEnv("DB_PASSWORD", "postgres"),
		DBName:         GetEnv("DB_NAME", "freelink"),
		DBSSLMode:      GetEnv("DB_SSLMODE", "disable"),
		DBMaxIdleConns: GetIntEnv("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns: GetIntEnv("DB_MAX_OPEN_CONNS", 100),
		DBConnLifetime: GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
		DBConnIdleTime: GetDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),

		RedisHost:     GetEnv("REDIS_HOST", ""),
		RedisPort:     GetEnv("REDIS_PORT", "6379"),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),
		RedisDB:       GetIntEnv("REDIS_DB", 0),

		JWTSecret:       GetEnv("JWT_SECRET", "freelink"),
		RefreshSecret:   GetEnv("REFRESH_SECRET", "freelink-refresh"),
		AccessTokenTTL:  GetDurationEnv("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL: GetDurationEnv("REFRESH_TOKEN_TTL", 7*24*time.Hour),

		StripeSecretKey: GetEnv("STRIPE_SECRET_KEY", ""),
		Currency:        GetEnv("CURRENCY", "USD"),

		LockTTL:        GetDurationEnv("LOCK_TTL", 10*time.Second),
		IdempotencyTTL: GetDurationEnv("IDEMPOTENCY_TTL", 24*time.Hour),
		CacheTTL:       GetDurationEnv("CACHE_TTL", 5*time.Minute),

		CORSOrigins: GetEnv("CORS_ORIGINS", "http://localhost:5173"),
	}
}

// DSN builds the postgres connection string.
func (c Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode
}

// RedisEnabled reports whether a redis host was configured.
func (c Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// IsProduction checks if the app runs in production mode.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetDurationEnv returns a duration environment variable or a default value.
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
