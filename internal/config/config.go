// Package config loads the service configuration from a YAML file, an
// optional .env file and environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/careerhub/careerhub/internal/catalog"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the config file name looked up in the working directory.
const DefaultConfigFile = "config.yaml"

// EnvConfigPath names the environment variable holding the config path.
const EnvConfigPath = "CAREERHUB_CONFIG"

// Ledger store kinds.
const (
	LedgerStoreMemory   = "memory"
	LedgerStoreDatabase = "database"
)

// Session store kinds.
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// AppConfig carries process-level options from the command line.
type AppConfig struct {
	ConfigPath string
}

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Ledger   LedgerConfig   `yaml:"ledger"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Session  SessionConfig  `yaml:"session"`
	Redis    RedisConfig    `yaml:"redis"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Admin    AdminConfig    `yaml:"admin"`
	Events   EventsConfig   `yaml:"events"`
	Referral ReferralConfig `yaml:"referral"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig selects the database.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	// TimeZone sets the PostgreSQL session time zone, e.g. "Asia/Seoul".
	TimeZone  string        `yaml:"time_zone"`
	SlowQuery time.Duration `yaml:"slow_query"`
}

// LedgerConfig selects the ledger store and the signup grant.
type LedgerConfig struct {
	Store       string `yaml:"store"`
	SignupGrant int64  `yaml:"signup_grant"`
}

// CatalogConfig lists redeemable services; empty means the built-in catalog.
type CatalogConfig struct {
	Services []catalog.Service `yaml:"services"`
}

// SessionConfig controls session cookies and storage.
type SessionConfig struct {
	Store      string        `yaml:"store"`
	CookieName string        `yaml:"cookie_name"`
	Secret     string        `yaml:"secret"`
	TTL        time.Duration `yaml:"ttl"`
	Secure     bool          `yaml:"secure"`
}

// RedisConfig is used by the redis session store.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// UpstreamConfig points at the AI/auth backend.
type UpstreamConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// AdminConfig holds the operator credentials.
type AdminConfig struct {
	Username     string        `yaml:"username"`
	PasswordHash string        `yaml:"password_hash"`
	JWTSecret    string        `yaml:"jwt_secret"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
}

// EventsConfig enables ledger event publishing when brokers are set.
type EventsConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// ReferralConfig sets the reward granted to both sides of a referral.
type ReferralConfig struct {
	Reward int64 `yaml:"reward"`
}

// LogConfig controls logrus output and file rotation.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":5000",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{DSN: "file:data/careerhub.db", SlowQuery: 200 * time.Millisecond},
		Ledger:   LedgerConfig{Store: LedgerStoreDatabase, SignupGrant: 1000},
		Session: SessionConfig{
			Store:      SessionStoreMemory,
			CookieName: "careerhub_session",
			TTL:        24 * time.Hour,
		},
		Redis:    RedisConfig{Addr: "127.0.0.1:6379"},
		Upstream: UpstreamConfig{BaseURL: "http://localhost:8080", Timeout: 30 * time.Second},
		Admin:    AdminConfig{Username: "admin", TokenTTL: 12 * time.Hour},
		Events:   EventsConfig{Topic: "token_transaction_recorded"},
		Referral: ReferralConfig{Reward: 500},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
	}
}

// ResolveConfigPath returns the explicit path, then $CAREERHUB_CONFIG, then
// config.yaml in the working directory.
func ResolveConfigPath(path string) string {
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		return trimmed
	}
	if env := strings.TrimSpace(os.Getenv(EnvConfigPath)); env != "" {
		return env
	}
	wd, errWd := os.Getwd()
	if errWd != nil {
		return DefaultConfigFile
	}
	return filepath.Join(wd, DefaultConfigFile)
}

// ConfigExists reports whether a config file exists at path.
func ConfigExists(path string) bool {
	info, errStat := os.Stat(path)
	return errStat == nil && !info.IsDir()
}

// LoadDotEnv loads .env files into the process environment. Missing files are
// ignored; existing variables are never overwritten.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if errLoad := godotenv.Load(file); errLoad != nil {
			if errors.Is(errLoad, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", file, errLoad)
		}
	}
	return nil
}

// Load reads the YAML file at path on top of Default, applies environment
// overrides and validates the result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, errRead := os.ReadFile(path)
	switch {
	case errRead == nil:
		if errUnmarshal := yaml.Unmarshal(data, cfg); errUnmarshal != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, errUnmarshal)
		}
	case errors.Is(errRead, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("config: read %s: %w", path, errRead)
	}

	cfg.applyEnv(os.Getenv)
	if errValidate := cfg.Validate(); errValidate != nil {
		return nil, errValidate
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv("DATABASE_DSN")); v != "" {
		c.Database.DSN = v
	}
	if v := strings.TrimSpace(getenv("SESSION_SECRET")); v != "" {
		c.Session.Secret = v
	}
	if v := strings.TrimSpace(getenv("REDIS_ADDR")); v != "" {
		c.Redis.Addr = v
	}
	if v := strings.TrimSpace(getenv("UPSTREAM_BASE_URL")); v != "" {
		c.Upstream.BaseURL = v
	}
	if v := strings.TrimSpace(getenv("ADMIN_JWT_SECRET")); v != "" {
		c.Admin.JWTSecret = v
	}
	if v := strings.TrimSpace(getenv("KAFKA_BROKERS")); v != "" {
		var brokers []string
		for _, broker := range strings.Split(v, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				brokers = append(brokers, broker)
			}
		}
		c.Events.Brokers = brokers
	}
}

// Validate reports impossible or missing settings.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	switch c.Ledger.Store {
	case LedgerStoreMemory:
	case LedgerStoreDatabase:
		if strings.TrimSpace(c.Database.DSN) == "" {
			errs = append(errs, errors.New("database.dsn is required for the database ledger store"))
		}
	default:
		errs = append(errs, fmt.Errorf("ledger.store must be %q or %q, got %q", LedgerStoreMemory, LedgerStoreDatabase, c.Ledger.Store))
	}
	if c.Ledger.SignupGrant < 0 {
		errs = append(errs, errors.New("ledger.signup_grant must not be negative"))
	}
	if len(c.Catalog.Services) > 0 {
		if _, errCatalog := catalog.New(c.Catalog.Services); errCatalog != nil {
			errs = append(errs, errCatalog)
		}
	}
	switch c.Session.Store {
	case SessionStoreMemory:
	case SessionStoreRedis:
		if strings.TrimSpace(c.Redis.Addr) == "" {
			errs = append(errs, errors.New("redis.addr is required for the redis session store"))
		}
	default:
		errs = append(errs, fmt.Errorf("session.store must be %q or %q, got %q", SessionStoreMemory, SessionStoreRedis, c.Session.Store))
	}
	if strings.TrimSpace(c.Session.CookieName) == "" {
		errs = append(errs, errors.New("session.cookie_name is required"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session.ttl must be positive"))
	}
	if strings.TrimSpace(c.Upstream.BaseURL) == "" {
		errs = append(errs, errors.New("upstream.base_url is required"))
	}
	if c.Upstream.Timeout <= 0 {
		errs = append(errs, errors.New("upstream.timeout must be positive"))
	}
	if c.Admin.TokenTTL <= 0 {
		errs = append(errs, errors.New("admin.token_ttl must be positive"))
	}
	if c.Referral.Reward < 0 {
		errs = append(errs, errors.New("referral.reward must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// BuildCatalog builds the service catalog from configuration.
func (c *Config) BuildCatalog() (*catalog.Catalog, error) {
	if len(c.Catalog.Services) == 0 {
		return catalog.New(catalog.DefaultServices())
	}
	return catalog.New(c.Catalog.Services)
}
