// Package config loads the application configuration from the environment.
//
// Values come from process environment variables prefixed with TODO_. A .env
// file in the working directory is loaded first (godotenv autoload), so local
// development only needs a .env next to the binary.
//
// KEY MAPPING:
// The first underscore after the prefix separates the section from the key:
//
//	TODO_SERVER_PORT                      → server.port
//	TODO_DB_MAX_OPEN_CONNS                → db.max_open_conns
//	TODO_JWT_ACCESS_TOKEN_EXPIRE_MINUTES  → jwt.access_token_expire_minutes
//
// Defaults are set on the struct before unmarshalling; koanf only overwrites
// the fields that are present in the environment.
package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "TODO_"

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Server ServerConfig `koanf:"server" validate:"required"`
	Log    LogConfig    `koanf:"log" validate:"required"`
	DB     DBConfig     `koanf:"db" validate:"required"`
	JWT    JWTConfig    `koanf:"jwt" validate:"required"`
	Admin  AdminConfig  `koanf:"admin"`
}

type ServerConfig struct {
	Port int `koanf:"port" validate:"required,min=1,max=65535"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

// DBConfig selects and configures the SQL backend.
// Path is used by sqlite, the remaining connection fields by postgres.
type DBConfig struct {
	Driver       string `koanf:"driver" validate:"oneof=sqlite postgres"`
	Path         string `koanf:"path" validate:"required_if=Driver sqlite"`
	Host         string `koanf:"host" validate:"required_if=Driver postgres"`
	Port         int    `koanf:"port" validate:"required_if=Driver postgres"`
	User         string `koanf:"user" validate:"required_if=Driver postgres"`
	Password     string `koanf:"password"`
	Name         string `koanf:"name" validate:"required_if=Driver postgres"`
	SSLMode      string `koanf:"sslmode"`
	MaxOpenConns int    `koanf:"max_open_conns" validate:"min=1"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

type JWTConfig struct {
	SecretKey                string `koanf:"secret_key" validate:"required,min=16"`
	Issuer                   string `koanf:"issuer" validate:"required"`
	AccessTokenExpireMinutes int    `koanf:"access_token_expire_minutes" validate:"min=1"`
}

// AdminConfig seeds an administrator account on startup when all three
// fields are set.
type AdminConfig struct {
	Username string `koanf:"username"`
	Email    string `koanf:"email" validate:"omitempty,email"`
	Password string `koanf:"password"`
}

// Enabled reports whether an admin account should be seeded.
func (a AdminConfig) Enabled() bool {
	return a.Username != "" && a.Email != "" && a.Password != ""
}

// Default returns the configuration used when no environment overrides it.
// JWT.SecretKey has no default and must always be provided.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Log:    LogConfig{Level: "info", Format: "text"},
		DB: DBConfig{
			Driver:       DriverSQLite,
			Path:         "data/todo.db",
			Host:         "localhost",
			Port:         5432,
			User:         "postgres",
			Name:         "todo",
			SSLMode:      "disable",
			MaxOpenConns: 10,
			AutoMigrate:  true,
		},
		JWT: JWTConfig{
			Issuer:                   "todo-api",
			AccessTokenExpireMinutes: 1440,
		},
	}
}

// Load reads TODO_* environment variables on top of Default and validates
// the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".", 1)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("config: loading environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags above.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}

// AccessTokenTTL is the lifetime of issued access tokens.
func (c JWTConfig) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

// PostgresDSN builds a postgres:// URL from the connection fields.
// The password is escaped so special characters survive.
func (c DBConfig) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": []string{c.SSLMode}}.Encode(),
	}
	return u.String()
}
