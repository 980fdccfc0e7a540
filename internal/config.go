package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
	EnvDemo        = "demo"
	EnvTest        = "test"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"http_server"`
	Database DatabaseConfig `mapstructure:"database"`
	Security SecurityConfig `mapstructure:"security"`
	Vortex   VortexConfig   `mapstructure:"vortex"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	StaticDir         string        `mapstructure:"static_dir"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Source          string        `mapstructure:"source"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

type SecurityConfig struct {
	SessionSecret string        `mapstructure:"session_secret"`
	CookieSecret  string        `mapstructure:"cookie_secret"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
	BCryptCost    int           `mapstructure:"bcrypt_cost"`
}

type VortexConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	AuthCallbackURL string        `mapstructure:"auth_callback_url"`
	BasePath        string        `mapstructure:"base_path"`
	JWTTTL          time.Duration `mapstructure:"jwt_ttl"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	minSecretLength = 32
)

// SetDefaults fills every zero value with the demo defaults.
func (c *Config) SetDefaults() {
	if c.App.Name == "" {
		c.App.Name = "vortex-demo"
	}
	if c.App.Env == "" {
		c.App.Env = EnvDevelopment
	}
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Server.ReadHeaderTimeout == 0 {
		c.Server.ReadHeaderTimeout = 5 * time.Second
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 30 * time.Second
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}
	if c.Database.Source == "" && c.Database.Driver == DriverSQLite {
		c.Database.Source = "file:vortex-demo.db?_foreign_keys=on"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 30 * time.Minute
	}
	if c.Security.SessionTTL == 0 {
		c.Security.SessionTTL = 24 * time.Hour
	}
	if c.Security.BCryptCost == 0 {
		c.Security.BCryptCost = 10
	}
	if c.Vortex.BasePath == "" {
		c.Vortex.BasePath = "/api/vortex"
	}
	if c.Vortex.JWTTTL == 0 {
		c.Vortex.JWTTTL = time.Hour
	}
	if c.Vortex.APIKey == "" && !c.IsProduction() {
		c.Vortex.APIKey = "demo-api-key"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		if c.IsProduction() {
			c.Logging.Format = "json"
		} else {
			c.Logging.Format = "text"
		}
	}
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, EnvProduction)
}

// LoadConfigFromEnv builds the configuration from plain environment
// variables, the way container deployments provide it.
func LoadConfigFromEnv() *Config {
	cfg := &Config{
		App: AppConfig{
			Name: getEnv("APP_NAME", ""),
			Env:  getEnv("APP_ENV", getEnv("NODE_ENV", "")),
		},
		Server: ServerConfig{
			Port:              getEnvAsInt("PORT", 0),
			StaticDir:         getEnv("STATIC_DIR", ""),
			ReadHeaderTimeout: getEnvAsDuration("HTTP_READ_HEADER_TIMEOUT", 0),
			ReadTimeout:       getEnvAsDuration("HTTP_READ_TIMEOUT", 0),
			WriteTimeout:      getEnvAsDuration("HTTP_WRITE_TIMEOUT", 0),
			IdleTimeout:       getEnvAsDuration("HTTP_IDLE_TIMEOUT", 0),
		},
		Database: DatabaseConfig{
			Driver:       getEnv("DATABASE_DRIVER", ""),
			Source:       getEnv("DATABASE_SOURCE", ""),
			MaxOpenConns: getEnvAsInt("DATABASE_MAX_OPEN_CONNS", 0),
			MaxIdleConns: getEnvAsInt("DATABASE_MAX_IDLE_CONNS", 0),
			AutoMigrate:  getEnvAsBool("DATABASE_AUTO_MIGRATE", false),
		},
		Security: SecurityConfig{
			SessionSecret: getEnv("SESSION_SECRET", ""),
			CookieSecret:  getEnv("COOKIE_SECRET", ""),
			SessionTTL:    getEnvAsDuration("SESSION_TTL", 0),
			BCryptCost:    getEnvAsInt("BCRYPT_COST", 0),
		},
		Vortex: VortexConfig{
			APIKey:          getEnv("VORTEX_API_KEY", ""),
			AuthCallbackURL: getEnv("VORTEX_AUTH_CALLBACK_URL", ""),
			BasePath:        getEnv("VORTEX_BASE_PATH", ""),
			JWTTTL:          getEnvAsDuration("VORTEX_JWT_TTL", 0),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", ""),
			Format: getEnv("LOG_FORMAT", ""),
		},
	}
	cfg.SetDefaults()
	return cfg
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(c.IsProduction()); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Vortex.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("vortex config: %v", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	switch c.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported driver %q", c.Driver)
	}
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

// Validate only insists on secrets in production; other environments fall
// back to the insecure demo secrets at startup.
func (c *SecurityConfig) Validate(production bool) error {
	if production {
		if c.SessionSecret == "" {
			return errors.New("session_secret is required in production")
		}
		if c.CookieSecret == "" {
			return errors.New("cookie_secret is required in production")
		}
	}
	if c.SessionSecret != "" && len(c.SessionSecret) < minSecretLength {
		return fmt.Errorf("session secret must be at least %d characters", minSecretLength)
	}
	if c.CookieSecret != "" && len(c.CookieSecret) < minSecretLength {
		return fmt.Errorf("cookie secret must be at least %d characters", minSecretLength)
	}
	if c.SessionTTL <= 0 {
		return errors.New("session_ttl must be positive")
	}
	if c.BCryptCost < 4 || c.BCryptCost > 31 {
		return fmt.Errorf("bcrypt_cost %d out of range", c.BCryptCost)
	}
	return nil
}

func (c *VortexConfig) Validate() error {
	if c.APIKey == "" {
		return errors.New("api_key is required")
	}
	if !strings.HasPrefix(c.BasePath, "/") {
		return fmt.Errorf("base_path %q must start with /", c.BasePath)
	}
	if c.AuthCallbackURL != "" {
		if _, err := url.ParseRequestURI(c.AuthCallbackURL); err != nil {
			return fmt.Errorf("invalid auth_callback_url: %w", err)
		}
	}
	return nil
}

func (c *LoggingConfig) Validate() error {
	switch strings.ToLower(c.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid level %q", c.Level)
	}
	switch strings.ToLower(c.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid format %q", c.Format)
	}
	return nil
}
