package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"time"    // For durations

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort    string // Application port
	DBDriver   string // mysql, postgres or sqlite
	DBDSN      string // Full DSN, overrides the DB_* parts when set
	DBUser     string // Database user
	DBPassword string // Database password
	DBHost     string // Database host
	DBPort     string // Database port
	DBName     string // Database name
	JWTSecret  string // Secret shared with the auth service
	RedisAddr  string // Redis server address
	RedisPass  string // Redis password
	RedisDB    int    // Redis database number
	IsProd     bool   // Is production environment

	PlatformName    string        // Name of the platform singleton
	PlatformFeeRate int           // Withdrawal fee in percent, used on first start
	LockTimeout     time.Duration // Bound on row lock waits
	MaxRetries      int           // Retries after a concurrency conflict
	CacheTTL        time.Duration // TTL of cached balance and history responses

	MaxDeposit      int64 // Largest single deposit
	MinWithdrawal   int64 // Smallest single withdrawal
	MinTransfer     int64 // Smallest single transfer
	MaxTransfer     int64 // Largest single transfer
	MaxAdminDeposit int64 // Largest admin credit
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	return &Config{
		AppPort:    getEnv("APP_PORT", "8080"),     // Application port
		DBDriver:   getEnv("DB_DRIVER", "mysql"),   // Database driver
		DBDSN:      os.Getenv("DB_DSN"),            // Full DSN
		DBUser:     os.Getenv("DB_USER"),           // Database user
		DBPassword: os.Getenv("DB_PASSWORD"),       // Database password
		DBHost:     getEnv("DB_HOST", "127.0.0.1"), // Database host
		DBPort:     os.Getenv("DB_PORT"),           // Database port
		DBName:     os.Getenv("DB_NAME"),           // Database name
		JWTSecret:  os.Getenv("JWT_SECRET"),        // JWT secret key
		RedisAddr:  os.Getenv("REDIS_ADDR"),        // Redis server address
		RedisPass:  os.Getenv("REDIS_PASS"),        // Redis password
		RedisDB:    getInt("REDIS_DB", 0),          // Redis database number
		IsProd:     os.Getenv("IS_PROD") == "true", // Is production environment

		PlatformName:    getEnv("PLATFORM_NAME", "Money Transfer Platform"),
		PlatformFeeRate: getInt("PLATFORM_FEE_RATE", 2),
		LockTimeout:     time.Duration(getInt("LOCK_TIMEOUT_MS", 5000)) * time.Millisecond,
		MaxRetries:      getInt("MAX_RETRIES", 3),
		CacheTTL:        time.Duration(getInt("CACHE_TTL_SECONDS", 60)) * time.Second,

		MaxDeposit:      getInt64("MAX_DEPOSIT", 10_000_000),
		MinWithdrawal:   getInt64("MIN_WITHDRAWAL", 500),
		MinTransfer:     getInt64("MIN_TRANSFER", 100),
		MaxTransfer:     getInt64("MAX_TRANSFER", 5_000_000),
		MaxAdminDeposit: getInt64("MAX_ADMIN_DEPOSIT", 50_000_000),
	}
}

// getEnv returns the variable or def when it is unset or empty
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def // Unset or malformed
	}
	return v
}

func getInt64(key string, def int64) int64 {
	v, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		return def
	}
	return v
}
