package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. BIOWATCH_ADDR.
const EnvPrefix = "BIOWATCH"

// LogConfig controls the logger.
type LogConfig struct {
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// RateLimitConfig bounds per-client API traffic.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// Config holds all application configuration.
type Config struct {
	Addr           string          `mapstructure:"addr"`
	GRPCAddr       string          `mapstructure:"grpc_addr"`
	DBPath         string          `mapstructure:"db"`
	StaticDir      string          `mapstructure:"static_dir"`
	Debug          bool            `mapstructure:"debug"`
	Log            LogConfig       `mapstructure:"log"`
	Tracing        bool            `mapstructure:"tracing"`
	Seed           bool            `mapstructure:"seed"`
	ConfigCacheTTL time.Duration   `mapstructure:"config_cache_ttl"`
	RateLimit      RateLimitConfig `mapstructure:"rate_limit"`
	AllowedOrigins []string        `mapstructure:"allowed_origins"`
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("grpc_addr", ":9000")
	v.SetDefault("db", getDefaultDBPath())
	v.SetDefault("static_dir", "")
	v.SetDefault("debug", false)
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("tracing", false)
	v.SetDefault("seed", true)
	v.SetDefault("config_cache_ttl", 30*time.Second)
	v.SetDefault("rate_limit.rps", 20.0)
	v.SetDefault("rate_limit.burst", 40)
	v.SetDefault("allowed_origins", []string{"http://localhost:8080", "http://127.0.0.1:8080"})
}

// Load resolves configuration from defaults, an optional config file,
// BIOWATCH_* environment variables and flags, in increasing precedence.
// Flags are bound by name with dashes mapped to the key separators, so
// --grpc-addr sets grpc_addr and --log-format sets log.format.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("biowatch")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, cfg.Validate()
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Name == "config" {
			return
		}
		key := flagKey(f.Name)
		if bindErr := v.BindPFlag(key, f); bindErr != nil {
			err = fmt.Errorf("failed to bind flag %s: %w", f.Name, bindErr)
		}
	})
	return err
}

// flagKey maps a flag name to its configuration key.
func flagKey(name string) string {
	for _, prefix := range []string{"log-", "rate-limit-"} {
		if strings.HasPrefix(name, prefix) {
			section := strings.ReplaceAll(strings.TrimSuffix(prefix, "-"), "-", "_")
			return section + "." + strings.ReplaceAll(strings.TrimPrefix(name, prefix), "-", "_")
		}
	}
	return strings.ReplaceAll(name, "-", "_")
}

// Validate rejects settings the servers cannot start with.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("db path must not be empty")
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unsupported log format %q", c.Log.Format)
	}
	if c.ConfigCacheTTL < 0 {
		return errors.New("config_cache_ttl must not be negative")
	}
	return nil
}

// getDefaultDBPath returns the default database path in user's home directory.
// Creates the directory if it doesn't exist.
func getDefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		slog.Warn("Could not get user home directory, using current dir", "error", err)
		return "biowatch.db"
	}

	dir := filepath.Join(home, ".biowatch")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Warn("Could not create .biowatch directory, using current dir", "error", err)
		return "biowatch.db"
	}

	return filepath.Join(dir, "biowatch.db")
}
