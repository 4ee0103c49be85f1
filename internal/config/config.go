// Package config loads the application settings from a YAML file in the
// XDG config directory, with DAILYSCHEDULE_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/sadopc/dailyschedule/internal/analytics"
	"github.com/sadopc/dailyschedule/internal/apperr"
)

const (
	appDir         = "dailyschedule"
	configFileName = "config.yml"
	envPrefix      = "DAILYSCHEDULE"
)

const (
	keyUser             = "user"
	keyDatabasePath     = "database.path"
	keyMirrorEnabled    = "mirror.enabled"
	keyMirrorPath       = "mirror.path"
	keyLogPath          = "log.path"
	keyLogLevel         = "log.level"
	keyLogMaxSizeMB     = "log.max_size_mb"
	keyDefaultRange     = "analytics.default_range"
	keyRemindersEnabled = "reminders.enabled"
	keyRemindersLead    = "reminders.lead"
)

type Config struct {
	User      string          `mapstructure:"user"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Mirror    MirrorConfig    `mapstructure:"mirror"`
	Log       LogConfig       `mapstructure:"log"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Reminders ReminderConfig  `mapstructure:"reminders"`

	// File is the config file the values were read from.
	File string `mapstructure:"-"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type MirrorConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LogConfig struct {
	Path      string `mapstructure:"path"`
	Level     string `mapstructure:"level"`
	MaxSizeMB int    `mapstructure:"max_size_mb"`
}

type AnalyticsConfig struct {
	DefaultRange string `mapstructure:"default_range"`
}

type ReminderConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Lead    time.Duration `mapstructure:"lead"`
}

// Paths returns the default config file and data directory locations.
func Paths() (configFile, dataDir string, err error) {
	configFile, err = xdg.ConfigFile(filepath.Join(appDir, configFileName))
	if err != nil {
		return "", "", fmt.Errorf("locate config file: %w", err)
	}
	dataDir, err = xdg.DataFile(appDir)
	if err != nil {
		return "", "", fmt.Errorf("locate data directory: %w", err)
	}
	return configFile, dataDir, nil
}

// Load reads configFile, writing it with defaults first if it does not
// exist. Relative defaults are placed under dataDir.
func Load(configFile, dataDir string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configFile)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, dataDir)

	err := v.ReadInConfig()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config file failed: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil {
			return nil, fmt.Errorf("create config directory: %w", err)
		}
		if err := v.WriteConfig(); err != nil {
			return nil, fmt.Errorf("writing default config failed: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	c.File = configFile
	c.Log.Level = strings.ToLower(c.Log.Level)
	c.Analytics.DefaultRange = strings.ToLower(c.Analytics.DefaultRange)

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func setDefaults(v *viper.Viper, dataDir string) {
	user := os.Getenv("USER")
	if user == "" {
		user = "me"
	}
	v.SetDefault(keyUser, user)
	v.SetDefault(keyDatabasePath, filepath.Join(dataDir, "dailyschedule.db"))
	v.SetDefault(keyMirrorEnabled, false)
	v.SetDefault(keyMirrorPath, filepath.Join(dataDir, "mirror.db"))
	v.SetDefault(keyLogPath, filepath.Join(dataDir, "log", "dailyschedule.log"))
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogMaxSizeMB, 10)
	v.SetDefault(keyDefaultRange, string(analytics.RangeWeek))
	v.SetDefault(keyRemindersEnabled, true)
	v.SetDefault(keyRemindersLead, "5m")
}

// Validate checks values that cannot be enforced by their types.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.User) == "" {
		return apperr.Invalid(keyUser, "must not be empty")
	}
	if c.Database.Path == "" {
		return apperr.Invalid(keyDatabasePath, "must not be empty")
	}
	if _, err := analytics.ParseRange(c.Analytics.DefaultRange); err != nil {
		return apperr.Invalid(keyDefaultRange, "%q is not one of week, month, year", c.Analytics.DefaultRange)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return apperr.Invalid(keyLogLevel, "%q is not one of debug, info, warn, error", c.Log.Level)
	}
	if c.Log.MaxSizeMB <= 0 {
		return apperr.Invalid(keyLogMaxSizeMB, "must be positive")
	}
	if c.Reminders.Lead < 0 || c.Reminders.Lead >= 24*time.Hour {
		return apperr.Invalid(keyRemindersLead, "must be between 0 and 24h")
	}
	return nil
}

func (c *Config) DefaultRange() analytics.RangeKind {
	return analytics.RangeKind(c.Analytics.DefaultRange)
}
