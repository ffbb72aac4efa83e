package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string
	DBLogLevel string

	ServerPort         string
	GinMode            string
	CORSAllowedOrigins []string

	JWTSecret      string
	JWTExpiryHours int

	RedisAddress      string
	RedisPassword     string
	IssueCreateLimit  int
	IssueCreateWindow time.Duration
}

// Load reads an optional .env file, then the environment.
func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() *Config {
	return &Config{
		DBDriver:   getEnv("DB_DRIVER", DriverPostgres),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "projecthub_user"),
		DBPassword: getEnv("DB_PASSWORD", "projecthub_pass"),
		DBName:     getEnv("DB_NAME", "projecthub_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "projecthub.db"),
		DBLogLevel: getEnv("DB_LOG_LEVEL", "warn"),

		ServerPort:         getEnv("SERVER_PORT", "8080"),
		GinMode:            getEnv("GIN_MODE", "debug"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),

		JWTSecret:      getEnv("JWT_SECRET", "supersecretkey"),
		JWTExpiryHours: getEnvInt("JWT_EXPIRY_HOURS", 24),

		RedisAddress:      getEnv("REDIS_ADDRESS", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		IssueCreateLimit:  getEnvInt("ISSUE_CREATE_LIMIT", 50),
		IssueCreateWindow: getEnvDuration("ISSUE_CREATE_WINDOW", 24*time.Hour),
	}
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	switch c.DBDriver {
	case DriverPostgres:
		if c.DBHost == "" || c.DBName == "" {
			result = multierror.Append(result, fmt.Errorf("DB_HOST and DB_NAME are required for the postgres driver"))
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			result = multierror.Append(result, fmt.Errorf("SQLITE_PATH is required for the sqlite driver"))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver))
	}

	if port, err := strconv.Atoi(c.ServerPort); err != nil || port <= 0 || port > 65535 {
		result = multierror.Append(result, fmt.Errorf("invalid SERVER_PORT %q", c.ServerPort))
	}
	if c.JWTSecret == "" {
		result = multierror.Append(result, fmt.Errorf("JWT_SECRET must not be empty"))
	}
	if c.JWTExpiryHours <= 0 {
		result = multierror.Append(result, fmt.Errorf("JWT_EXPIRY_HOURS must be positive"))
	}
	if c.RedisAddress != "" && (c.IssueCreateLimit <= 0 || c.IssueCreateWindow <= 0) {
		result = multierror.Append(result, fmt.Errorf("ISSUE_CREATE_LIMIT and ISSUE_CREATE_WINDOW must be positive when REDIS_ADDRESS is set"))
	}

	return result.ErrorOrNil()
}

func (c *Config) JWTExpiry() time.Duration {
	return time.Duration(c.JWTExpiryHours) * time.Hour
}

// PostgresDSN is the key/value connection string used by gorm.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// PostgresURL is the URL form used by the migration runner.
func (c *Config) PostgresURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("⚠️  %s=%q is not a number, using %d", key, value, defaultVal)
		return defaultVal
	}
	return n
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("⚠️  %s=%q is not a duration, using %s", key, value, defaultVal)
		return defaultVal
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
