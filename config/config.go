package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/karloscodes/dataaccess"
	"github.com/karloscodes/dataaccess/database"
)

// Environment constants.
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// Connection string names, matching the keys the databases are known by.
const (
	MainConnection    = "DbMain"
	DevelopConnection = "DbMain_Develop"
)

// ErrMissingConnectionString is returned when a target has no connection
// string configured.
var ErrMissingConnectionString = errors.New("config: connection string not configured")

// Config holds the settings of a data access API.
type Config struct {
	// AppName is the application name, used for the env var prefix and log file.
	AppName string `mapstructure:"appname" validate:"required"`

	// Environment: development, production, or test.
	Environment string `mapstructure:"environment" validate:"required,oneof=development production test"`

	// Port for the HTTP server.
	Port string `mapstructure:"port" validate:"required,numeric"`

	// Logging configuration.
	LogLevel       string `mapstructure:"loglevel" validate:"omitempty,oneof=debug info warn warning error"`
	LogsDirectory  string `mapstructure:"logsdirectory"`
	LogsMaxSizeMB  int    `mapstructure:"logsmaxsizeinmb" validate:"gte=0"`
	LogsMaxBackups int    `mapstructure:"logsmaxbackups" validate:"gte=0"`
	LogsMaxAgeDays int    `mapstructure:"logsmaxageindays" validate:"gte=0"`

	Database DatabaseConfig `mapstructure:"database"`

	ConnectionStrings ConnectionStrings `mapstructure:"connectionstrings"`

	Jwt JwtConfig `mapstructure:"jwt"`

	envPrefix string
}

// DatabaseConfig selects the driver and its options.
type DatabaseConfig struct {
	// Driver is "sqlserver" or "sqlite".
	Driver string `mapstructure:"driver" validate:"required,oneof=sqlserver sqlite"`

	// TimeoutSeconds is the command timeout of every call.
	TimeoutSeconds int `mapstructure:"timeoutseconds" validate:"gt=0"`

	// Encrypt is the SQL Server encryption mode. Empty keeps the DSN value.
	Encrypt string `mapstructure:"encrypt" validate:"omitempty,oneof=true false strict disable"`

	TrustServerCertificate bool `mapstructure:"trustservercertificate"`

	// BusyTimeoutMs applies to SQLite only.
	BusyTimeoutMs int `mapstructure:"busytimeoutms" validate:"gte=0"`
}

// ConnectionStrings holds one connection string per database target.
type ConnectionStrings struct {
	Main    string `mapstructure:"dbmain"`
	Develop string `mapstructure:"dbmain_develop"`
}

// JwtConfig carries token settings for the token issuer. They are loaded
// and validated here so a misconfigured deployment fails at startup.
type JwtConfig struct {
	Issuer        string `mapstructure:"issuer"`
	Audience      string `mapstructure:"audience"`
	Key           string `mapstructure:"key" validate:"omitempty,min=32"`
	ExpiresInDays int    `mapstructure:"expiresindays" validate:"gte=0"`
}

// Load creates a new Config for the given app name.
// It reads a .env file when present and environment variables prefixed with
// the uppercase app name.
// Example: Load("orders") reads ORDERS_ENV, ORDERS_DBMAIN, etc.
func Load(appName string) (*Config, error) {
	v := viper.New()

	appName = strings.ToLower(strings.TrimSpace(appName))
	if appName == "" {
		appName = "app"
	}
	prefix := strings.ToUpper(appName)

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig()

	setDefaults(v, appName)

	v.SetEnvPrefix(prefix)
	if err := bindEnvVars(v, prefix); err != nil {
		return nil, fmt.Errorf("config: bind env: %w", err)
	}

	cfg := &Config{envPrefix: prefix}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, appName string) {
	v.SetDefault("appname", appName)
	v.SetDefault("environment", Production)
	v.SetDefault("port", "8080")

	v.SetDefault("loglevel", "")
	v.SetDefault("logsdirectory", "storage/logs")
	v.SetDefault("logsmaxsizeinmb", 20)
	v.SetDefault("logsmaxbackups", 10)
	v.SetDefault("logsmaxageindays", 30)

	v.SetDefault("database.driver", "sqlserver")
	v.SetDefault("database.timeoutseconds", dataaccess.DefaultTimeoutSeconds)
	v.SetDefault("database.encrypt", "")
	v.SetDefault("database.trustservercertificate", false)
	v.SetDefault("database.busytimeoutms", 5000)

	v.SetDefault("connectionstrings.dbmain", "")
	v.SetDefault("connectionstrings.dbmain_develop", "")

	v.SetDefault("jwt.issuer", "")
	v.SetDefault("jwt.audience", "")
	v.SetDefault("jwt.key", "")
	v.SetDefault("jwt.expiresindays", 7)
}

func bindEnvVars(v *viper.Viper, prefix string) error {
	bindings := map[string]string{
		"environment": prefix + "_ENV",
		"port":        prefix + "_PORT",
		"loglevel":    prefix + "_LOG_LEVEL",

		"logsdirectory": prefix + "_LOGS_DIR",

		"database.driver":                 prefix + "_DATABASE_DRIVER",
		"database.timeoutseconds":         prefix + "_DATABASE_TIMEOUT_SECONDS",
		"database.encrypt":                prefix + "_DATABASE_ENCRYPT",
		"database.trustservercertificate": prefix + "_DATABASE_TRUST_SERVER_CERTIFICATE",
		"database.busytimeoutms":          prefix + "_DATABASE_BUSY_TIMEOUT_MS",

		"connectionstrings.dbmain":         prefix + "_DBMAIN",
		"connectionstrings.dbmain_develop": prefix + "_DBMAIN_DEVELOP",

		"jwt.issuer":        prefix + "_JWT_ISSUER",
		"jwt.audience":      prefix + "_JWT_AUDIENCE",
		"jwt.key":           prefix + "_JWT_KEY",
		"jwt.expiresindays": prefix + "_JWT_EXPIRES_IN_DAYS",
	}
	for key, env := range bindings {
		// .env entries use the variable names; lift them onto the keys.
		if fromFile := v.Get(strings.ToLower(env)); fromFile != nil {
			v.SetDefault(key, fromFile)
		}
		if err := v.BindEnv(key, env); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validate() error {
	if c.LogLevel == "" && (c.IsDevelopment() || c.IsTest()) {
		c.LogLevel = "info"
	}

	var problems []string
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("config: validate: %w", err)
		}
		for _, fe := range verrs {
			problems = append(problems, fmt.Sprintf("%s fails %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
	}

	// Production must be able to reach the main database.
	if c.IsProduction() && strings.TrimSpace(c.ConnectionStrings.Main) == "" {
		problems = append(problems, fmt.Sprintf("%s_DBMAIN is REQUIRED in production", c.envPrefix))
	}

	if len(problems) > 0 {
		return errors.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// Environment checks.

func (c *Config) IsDevelopment() bool { return c.Environment == Development }
func (c *Config) IsProduction() bool  { return c.Environment == Production }
func (c *Config) IsTest() bool        { return c.Environment == Test }

// GetPort returns the HTTP port.
func (c *Config) GetPort() string { return c.Port }

// LogConfigProvider implementation.

func (c *Config) GetLogLevel() string     { return c.LogLevel }
func (c *Config) GetLogDirectory() string { return c.LogsDirectory }
func (c *Config) GetLogMaxSizeMB() int    { return c.LogsMaxSizeMB }
func (c *Config) GetLogMaxBackups() int   { return c.LogsMaxBackups }
func (c *Config) GetLogMaxAgeDays() int   { return c.LogsMaxAgeDays }
func (c *Config) GetAppName() string      { return c.AppName }

// ConnectionString returns the connection string for target: DbMain for
// production, DbMain_Develop for development.
func (c *Config) ConnectionString(target dataaccess.Target) (string, error) {
	var name, value string
	switch target {
	case dataaccess.Production:
		name, value = MainConnection, c.ConnectionStrings.Main
	case dataaccess.Development:
		name, value = DevelopConnection, c.ConnectionStrings.Develop
	default:
		return "", fmt.Errorf("config: unknown database target %q", target)
	}
	if strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingConnectionString, name)
	}
	return value, nil
}

// DriverConfig returns the driver configuration for executors.
func (c *Config) DriverConfig() *database.Config {
	cfg := database.DefaultConfig()
	cfg.AppName = c.AppName
	cfg.SQLServer.Encrypt = c.Database.Encrypt
	cfg.SQLServer.TrustServerCertificate = c.Database.TrustServerCertificate
	if c.Database.BusyTimeoutMs > 0 {
		cfg.SQLite.BusyTimeout = c.Database.BusyTimeoutMs
	}
	return cfg
}

var (
	_ dataaccess.Environment        = (*Config)(nil)
	_ dataaccess.ConnectionResolver = (*Config)(nil)
	_ dataaccess.LogConfigProvider  = (*Config)(nil)
)
