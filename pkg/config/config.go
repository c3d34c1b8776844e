package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// DBConfig holds database configuration. Driver selects between the embedded
// sqlite backing and a networked postgres backing with an equivalent schema.
type DBConfig struct {
	Driver          string
	Path            string
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// GetDSN returns the PostgreSQL connection string
func (c *DBConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	SigningKey      string
	ExpirationHours int
}

// TallyConfig holds the Tally forms API configuration
type TallyConfig struct {
	BaseURL string
	APIKey  string
}

// AdminConfig holds the seeded default admin credential
type AdminConfig struct {
	Username string
	Password string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// Config holds all configuration
type Config struct {
	DB     DBConfig
	Server ServerConfig
	JWT    JWTConfig
	Tally  TallyConfig
	Admin  AdminConfig
	Log    LogConfig
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Not returning error as .env file is optional
		fmt.Printf("Warning: .env file not found, using environment variables\n")
	}

	// Initialize config struct with values from environment
	config := &Config{
		DB: DBConfig{
			Driver:          getEnv("DB_DRIVER", "sqlite"),
			Path:            getEnv("DB_PATH", "./muob.db"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "password"),
			DBName:          getEnv("DB_NAME", "muob_creators"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 1*time.Hour),
			LogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", logger.Warn),
		},
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Env:            getEnv("APP_ENV", "development"),
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:8080"}),
		},
		JWT: JWTConfig{
			SigningKey:      getEnv("JWT_SIGNING_KEY", "muobsecretkey"),
			ExpirationHours: getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		},
		Tally: TallyConfig{
			BaseURL: getEnv("TALLY_API_BASE", "https://api.tally.so"),
			APIKey:  getEnv("TALLY_API_KEY", ""),
		},
		Admin: AdminConfig{
			Username: getEnv("ADMIN_USERNAME", "admin"),
			Password: getEnv("ADMIN_PASSWORD", "admin123"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return config, nil
}

// LogConfig returns the configuration as a zap logger-friendly format
func (c *Config) LogConfig() []zap.Field {
	return []zap.Field{
		zap.String("environment", c.Server.Env),
		zap.String("db_driver", c.DB.Driver),
		zap.String("db_host", c.DB.Host),
		zap.String("db_name", c.DB.DBName),
		zap.String("server_port", c.Server.Port),
		zap.String("tally_base", c.Tally.BaseURL),
	}
}

// Helper function to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as integers
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as durations
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get comma-separated environment variables as slices
func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// Helper function to get environment variables as log levels
func getEnvAsLogLevel(key string, defaultValue logger.LogLevel) logger.LogLevel {
	valueStr := getEnv(key, "")
	switch valueStr {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return defaultValue
	}
}
