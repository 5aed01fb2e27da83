// Package config loads cleansync configuration from file, environment, and
// defaults, and wires the shared logger.
package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config is the resolved application configuration.
type Config struct {
	// RemoteURL is the base URL of the authoritative record store.
	RemoteURL string
	// RemoteToken is an optional static bearer token.
	RemoteToken string
	// RemoteTimeout bounds each individual remote request.
	RemoteTimeout time.Duration

	// CachePath is the location of the local SQLite cache.
	CachePath string

	// InboxDir is the drop-in directory watched by the daemon.
	InboxDir string

	// DashboardPort is the listen port for the WebSocket dashboard.
	DashboardPort int

	// SeedFile optionally overrides the built-in seed collections.
	SeedFile string

	// LogFile, when set, sends logs to a rotated file instead of stderr.
	LogFile       string
	LogMaxSizeMB  int
	LogMaxBackups int
}

// Load resolves configuration in precedence order: flags are handled by the
// CLI layer, then CLEANSYNC_* environment variables, then the config file
// (cleansync.yaml in the working directory or ~/.config/cleansync/), then
// built-in defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("remote.url", "")
	v.SetDefault("remote.token", "")
	v.SetDefault("remote.timeout", "10s")
	v.SetDefault("cache.path", filepath.Join(".cleansync", "cache.db"))
	v.SetDefault("inbox.dir", filepath.Join(".cleansync", "inbox"))
	v.SetDefault("dashboard.port", 8080)
	v.SetDefault("seed_file", "")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)

	v.SetEnvPrefix("CLEANSYNC")
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("cleansync")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "cleansync"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; a broken one is not.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	timeout, err := time.ParseDuration(v.GetString("remote.timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid remote.timeout: %w", err)
	}

	return &Config{
		RemoteURL:     v.GetString("remote.url"),
		RemoteToken:   v.GetString("remote.token"),
		RemoteTimeout: timeout,
		CachePath:     v.GetString("cache.path"),
		InboxDir:      v.GetString("inbox.dir"),
		DashboardPort: v.GetInt("dashboard.port"),
		SeedFile:      v.GetString("seed_file"),
		LogFile:       v.GetString("log.file"),
		LogMaxSizeMB:  v.GetInt("log.max_size_mb"),
		LogMaxBackups: v.GetInt("log.max_backups"),
	}, nil
}

// Logger builds a prefixed logger honoring the log file settings. With no
// log file configured, output goes to stderr. File output rotates via
// lumberjack.
func (c *Config) Logger(prefix string) *log.Logger {
	var out io.Writer = os.Stderr
	if c.LogFile != "" {
		out = &lumberjack.Logger{
			Filename:   c.LogFile,
			MaxSize:    c.LogMaxSizeMB,
			MaxBackups: c.LogMaxBackups,
		}
	}
	return log.New(out, prefix, log.LstdFlags)
}
