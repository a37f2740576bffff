package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"classifieds/internal/db"
)

// DefaultEnvFile is the dotenv file read before the environment, when present.
const DefaultEnvFile = ".env-non-dev"

// Config holds all application configuration. It is built once at startup and passed
// to the components that need it.
type Config struct {
	Database DatabaseConfig
	HTTP     HTTPConfig
	GRPC     GRPCConfig
	Auth     AuthConfig
	Log      LogConfig
}

// DatabaseConfig contains database-related settings.
type DatabaseConfig struct {
	Driver   string // "sqlite3" or "postgres"
	Path     string // SQLite database file path
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

// HTTPConfig contains the REST listener settings.
type HTTPConfig struct {
	Address string // e.g. ":8000"
}

// GRPCConfig contains the health endpoint settings. An empty address disables it.
type GRPCConfig struct {
	Address string
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	JWTSecret       string        // token signing secret
	Algorithm       string        // token signing algorithm, e.g. HS256
	TokenTTL        time.Duration // session lifetime
	SuperuserEmails []string      // emails granted superuser rights at registration
	CookieName      string
	CookieSecure    bool
	BcryptCost      int
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string
}

// Load loads configuration from the dotenv file (if any) and environment variables.
// SECRET_KEY is required.
func Load() (*Config, error) {
	cfg, err := load("")
	if err != nil {
		return nil, err
	}
	// Validate critical settings
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("SECRET_KEY environment variable is not set; required for production")
	}
	return cfg, nil
}

// LoadWithDefaults is like Load but uses a safe default for SECRET_KEY in development.
// WARNING: Only use in development! Use Load() in production.
func LoadWithDefaults() (*Config, error) {
	return load("dev-secret-change-me")
}

func load(defaultSecret string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}
	port, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	ttlMinutes, err := getEnvInt("TOKEN_TTL_MINUTES", 30)
	if err != nil {
		return nil, err
	}
	if ttlMinutes <= 0 {
		return nil, fmt.Errorf("TOKEN_TTL_MINUTES must be positive, got %d", ttlMinutes)
	}
	cost, err := getEnvInt("BCRYPT_COST", 10)
	if err != nil {
		return nil, err
	}
	secure, err := getEnvBool("COOKIE_SECURE", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "sqlite3"),
			Path:     getEnv("DB_PATH", "app.db"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     port,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASS", ""),
			Name:     getEnv("DB_NAME", "classifieds"),
		},
		HTTP: HTTPConfig{
			Address: getEnv("HTTP_ADDRESS", ":8000"),
		},
		GRPC: GRPCConfig{
			Address: getEnv("GRPC_ADDRESS", ":50051"),
		},
		Auth: AuthConfig{
			JWTSecret:       getEnv("SECRET_KEY", defaultSecret),
			Algorithm:       getEnv("ALGORITHM", "HS256"),
			TokenTTL:        time.Duration(ttlMinutes) * time.Minute,
			SuperuserEmails: splitList(getEnv("SU_EMAIL", "")),
			CookieName:      getEnv("COOKIE_NAME", "ref_access_token"),
			CookieSecure:    secure,
			BcryptCost:      cost,
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}
	if _, err := db.ParseDialect(cfg.Database.Driver); err != nil {
		return nil, err
	}
	switch strings.ToUpper(cfg.Auth.Algorithm) {
	case "HS256", "HS384", "HS512":
		cfg.Auth.Algorithm = strings.ToUpper(cfg.Auth.Algorithm)
	default:
		return nil, fmt.Errorf("unsupported ALGORITHM %q", cfg.Auth.Algorithm)
	}
	return cfg, nil
}

// loadEnvFile reads ENV_FILE (default .env-non-dev) into the environment without
// overriding variables that are already set. A missing file is not an error.
func loadEnvFile() error {
	path := getEnv("ENV_FILE", DefaultEnvFile)
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// DSN returns the connection string for the configured driver.
func (d DatabaseConfig) DSN() string {
	dialect, _ := db.ParseDialect(d.Driver)
	if dialect != db.Postgres {
		return d.Path
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + d.Name,
	}
	return u.String()
}

// IsSuperuserEmail reports whether email is in the bootstrap superuser list.
func (a AuthConfig) IsSuperuserEmail(email string) bool {
	for _, e := range a.SuperuserEmails {
		if strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}

// getEnv retrieves an environment variable with a default fallback.
func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

// getEnvInt retrieves an environment variable as an integer with a default fallback.
func getEnvInt(key string, defaultVal int) (int, error) {
	if value, exists := os.LookupEnv(key); exists {
		intVal, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
		}
		return intVal, nil
	}
	return defaultVal, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	if value, exists := os.LookupEnv(key); exists {
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return false, fmt.Errorf("invalid boolean for %s: %w", key, err)
		}
		return b, nil
	}
	return defaultVal, nil
}

// splitList parses a comma separated list. A JSON-style ["a","b"] list is accepted too.
func splitList(s string) []string {
	s = strings.Trim(strings.TrimSpace(s), "[]")
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.Trim(strings.TrimSpace(part), `"'`)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	return fmt.Sprintf("Config{DB: %s, HTTP: %s, gRPC: %s, Auth: %s *** (masked) ***, superusers: %d}",
		c.Database.Driver, c.HTTP.Address, c.GRPC.Address, c.Auth.Algorithm, len(c.Auth.SuperuserEmails))
}
