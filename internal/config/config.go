package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for nutritrack
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Security SecurityConfig `mapstructure:"security"`
	Health   HealthConfig   `mapstructure:"health"`
	Remote   RemoteConfig   `mapstructure:"remote"`
	Cron     CronConfig     `mapstructure:"cron"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Address      string `mapstructure:"address"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// StorageConfig holds database settings
type StorageConfig struct {
	DataDir    string `mapstructure:"data_dir"`
	SQLitePath string `mapstructure:"sqlite_path"`
	BadgerPath string `mapstructure:"badger_path"`
}

// SecurityConfig holds authentication settings
type SecurityConfig struct {
	JWTSecret       string   `mapstructure:"jwt_secret"`
	TokenTTLHours   int      `mapstructure:"token_ttl_hours"`
	BcryptCost      int      `mapstructure:"bcrypt_cost"`
	AllowOrigins    []string `mapstructure:"allow_origins"`
	MinPasswordSize int      `mapstructure:"min_password_size"`
}

// HealthConfig controls when computed metrics are considered stale
type HealthConfig struct {
	StalenessHours int `mapstructure:"staleness_hours"`
}

// RemoteConfig points at the optional remote user/data backend
type RemoteConfig struct {
	Enabled         bool    `mapstructure:"enabled"`
	BaseURL         string  `mapstructure:"base_url"`
	APIKey          string  `mapstructure:"api_key"`
	Timeout         int     `mapstructure:"timeout"`
	RequestsPerSec  float64 `mapstructure:"requests_per_sec"`
	Burst           int     `mapstructure:"burst"`
	BreakerFailures int     `mapstructure:"breaker_failures"`
	BreakerCooldown int     `mapstructure:"breaker_cooldown"`
}

// CronConfig holds background job schedules (robfig/cron spec strings)
type CronConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	HealthRecompute string `mapstructure:"health_recompute"`
	CatalogSync     string `mapstructure:"catalog_sync"`
}

// CatalogConfig holds meal catalog seeding settings
type CatalogConfig struct {
	SeedFile string `mapstructure:"seed_file"`
	Watch    bool   `mapstructure:"watch"`
}

// LogConfig selects the zap logger flavour
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console, json
}

// Load loads configuration from file, env, and defaults
func Load(configPath, dataDir string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if dataDir == "" {
		dataDir = getDefaultDataDir()
	}
	dataDir = expandPath(dataDir)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	v.Set("storage.data_dir", dataDir)
	v.SetDefault("storage.sqlite_path", filepath.Join(dataDir, "nutritrack.db"))
	v.SetDefault("storage.badger_path", filepath.Join(dataDir, "badger"))

	if configPath == "" {
		configPath = filepath.Join(dataDir, "nutritrack.yaml")
	}
	configPath = expandPath(configPath)

	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Environment variables (NUTRITRACK_SERVER_PORT, NUTRITRACK_REMOTE_BASE_URL, etc.)
	v.SetEnvPrefix("NUTRITRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	loadEnvOverrides(&cfg)
	cfg.Catalog.SeedFile = expandPath(cfg.Catalog.SeedFile)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)

	v.SetDefault("security.token_ttl_hours", 24*7)
	v.SetDefault("security.bcrypt_cost", 10)
	v.SetDefault("security.allow_origins", []string{"*"})
	v.SetDefault("security.min_password_size", 8)

	v.SetDefault("health.staleness_hours", 24*7)

	v.SetDefault("remote.enabled", false)
	v.SetDefault("remote.timeout", 15)
	v.SetDefault("remote.requests_per_sec", 5.0)
	v.SetDefault("remote.burst", 10)
	v.SetDefault("remote.breaker_failures", 5)
	v.SetDefault("remote.breaker_cooldown", 30)

	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.health_recompute", "0 3 * * *")
	v.SetDefault("cron.catalog_sync", "@every 6h")

	v.SetDefault("catalog.watch", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

func getDefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "nutritrack")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}

	return filepath.Join(home, ".local", "share", "nutritrack")
}

// loadEnvOverrides resolves settings that may arrive under alias names
func loadEnvOverrides(cfg *Config) {
	if secret, ok := lookupEnv("NUTRITRACK_SECURITY_JWT_SECRET"); ok {
		cfg.Security.JWTSecret = secret
	}
	if key, ok := lookupEnv("NUTRITRACK_REMOTE_API_KEY"); ok {
		cfg.Remote.APIKey = key
	}
	if url, ok := lookupEnv("NUTRITRACK_REMOTE_BASE_URL"); ok {
		cfg.Remote.BaseURL = url
	}

	if port, ok := lookupEnv("NUTRITRACK_SERVER_PORT"); ok {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
}

func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}

	if cfg.Remote.Enabled && cfg.Remote.BaseURL == "" {
		return fmt.Errorf("remote.base_url is required when remote.enabled is true")
	}

	if cfg.Health.StalenessHours <= 0 {
		return fmt.Errorf("health.staleness_hours must be positive")
	}

	if cfg.Security.JWTSecret == "" {
		cfg.Security.JWTSecret = generateRandomString(32)
	}

	return nil
}

func generateRandomString(n int) string {
	b := make([]byte, n/2)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

// HealthStaleness returns the staleness threshold as a duration
func (c *Config) HealthStaleness() time.Duration {
	return time.Duration(c.Health.StalenessHours) * time.Hour
}

// TokenTTL returns the lifetime of issued access tokens
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Security.TokenTTLHours) * time.Hour
}

// RemoteTimeout returns the HTTP timeout for remote calls
func (c *Config) RemoteTimeout() time.Duration {
	return time.Duration(c.Remote.Timeout) * time.Second
}
