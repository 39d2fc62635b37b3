package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full runtime configuration of the service.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Notifx   NotifxConfig
}

// ServerConfig configures the HTTP listener and site layout.
type ServerConfig struct {
	Port        string
	DevMode     bool
	PublicDir   string
	SiteURL     string
	CORSOrigins string
	BodyLimit   int
	ReadTimeout time.Duration
}

// DatabaseConfig selects and configures the relational store.
type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns the connection string for the configured driver.
func (d DatabaseConfig) DSN() string {
	if d.Driver == DriverSQLite {
		return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", d.Path)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// RedisConfig configures the refresh-token store.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Address returns host:port.
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// AuthConfig holds token lifetimes, lengths, pages and the password policy.
type AuthConfig struct {
	JWTSecret          string
	JWTIssuer          string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	CodeLength         int
	RefreshTokenLength int
	CSRFTokenLength    int
	LoginPage          string
	ProfilePage        string
	RedirectAllowList  []string
	Password           PasswordConfig
}

// PasswordConfig mirrors password.Policy.
type PasswordConfig struct {
	MinLength        int
	MaxLength        int
	RequireMixedCase bool
	RequireDigits    bool
	RequireSpecial   bool
}

// Load reads a .env file when present and builds the configuration from the
// environment.
func Load() (*Config, error) {
	// missing .env is fine; real deployments use the process environment
	_ = godotenv.Load()

	cfg := &Config{
		Server:   loadServerConfig(),
		Database: loadDatabaseConfig(),
		Redis:    loadRedisConfig(),
		Auth:     loadAuthConfig(),
		Notifx:   loadNotifxConfig(),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Database.Driver != DriverPostgres && c.Database.Driver != DriverSQLite {
		return fmt.Errorf("unsupported DB_DRIVER %q (use %q or %q)", c.Database.Driver, DriverPostgres, DriverSQLite)
	}
	if c.Auth.CodeLength <= 0 || c.Auth.RefreshTokenLength <= 0 || c.Auth.CSRFTokenLength <= 0 {
		return errors.New("token lengths must be positive")
	}
	if c.Auth.Password.MinLength > c.Auth.Password.MaxLength {
		return errors.New("PASSWORD_MIN_LENGTH exceeds PASSWORD_MAX_LENGTH")
	}
	return nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:        getEnv("PORT", "8080"),
		DevMode:     getEnvBool("DEV_MODE", false),
		PublicDir:   getEnv("PUBLIC_DIR", ""),
		SiteURL:     getEnv("SITE_URL", ""),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		BodyLimit:   getEnvInt("BODY_LIMIT", 1024*1024),
		ReadTimeout: getEnvDuration("READ_TIMEOUT", 30*time.Second),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:          getEnv("DB_DRIVER", DriverPostgres),
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", "postgres"),
		Name:            getEnv("DB_NAME", "authcore"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		Path:            getEnv("DB_PATH", "authcore.db"),
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnvInt("REDIS_PORT", 6379),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTIssuer:          getEnv("JWT_ISSUER", "authcore"),
		AccessTokenTTL:     getEnvDuration("AUTH_ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL:    getEnvDuration("AUTH_REFRESH_TOKEN_TTL", 30*24*time.Hour),
		CodeLength:         getEnvInt("AUTH_CODE_LENGTH", 30),
		RefreshTokenLength: getEnvInt("AUTH_REFRESH_TOKEN_LENGTH", 32),
		CSRFTokenLength:    getEnvInt("AUTH_CSRF_TOKEN_LENGTH", 20),
		LoginPage:          getEnv("AUTH_LOGIN_PAGE", "/_/auth/login/"),
		ProfilePage:        getEnv("AUTH_PROFILE_PAGE", "/_/auth/profile"),
		RedirectAllowList:  getEnvStringSlice("AUTH_REDIRECT_ALLOWLIST", nil),
		Password: PasswordConfig{
			MinLength:        getEnvInt("PASSWORD_MIN_LENGTH", 8),
			MaxLength:        getEnvInt("PASSWORD_MAX_LENGTH", 128),
			RequireMixedCase: getEnvBool("PASSWORD_REQUIRE_MIXED_CASE", false),
			RequireDigits:    getEnvBool("PASSWORD_REQUIRE_DIGITS", false),
			RequireSpecial:   getEnvBool("PASSWORD_REQUIRE_SPECIAL", false),
		},
	}
}
