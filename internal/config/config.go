package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides (GLASSPANEL_HOST_BASE_URL, ...)
const EnvPrefix = "GLASSPANEL"

// Config represents the glasspanel configuration
type Config struct {
	Host   Host   `mapstructure:"host"`
	Poll   Poll   `mapstructure:"poll"`
	Panel  Panel  `mapstructure:"panel"`
	Locale Locale `mapstructure:"locale"`
	Mounts Mounts `mapstructure:"mounts"`
	Log    Log    `mapstructure:"log"`
}

// Host describes where the game's control API lives
type Host struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Poll configures the map-change poller
type Poll struct {
	Interval time.Duration `mapstructure:"interval"`
}

// Panel configures the local panel server
type Panel struct {
	Listen string `mapstructure:"listen"`
}

// Locale configures where string tables come from
type Locale struct {
	Default string `mapstructure:"default"`
	Dir     string `mapstructure:"dir"`
	Remote  *bool  `mapstructure:"remote"`
}

// Mounts contains camera-mount specific settings
type Mounts struct {
	DefaultViewpoint string `mapstructure:"default_viewpoint"`
}

// Log configures the slog handler
type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ShouldFetchRemote returns whether string tables are fetched from the host.
// Defaults to false when not explicitly set.
func (l *Locale) ShouldFetchRemote() bool {
	if l.Remote == nil {
		return false
	}
	return *l.Remote
}

// Load loads the configuration from path, or from ~/.glasspanel/config.yaml
// when path is empty. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		expanded, err := homedir.Expand(path)
		if err != nil {
			return nil, err
		}
		v.SetConfigFile(expanded)
	} else {
		configDir, err := ConfigDir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(configDir)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Try to read config file, but don't fail if it doesn't exist
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !(path != "" && os.IsNotExist(err)) {
			// Config file was found but another error occurred
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Locale.Dir != "" {
		dir, err := homedir.Expand(cfg.Locale.Dir)
		if err != nil {
			return nil, fmt.Errorf("invalid locale dir: %w", err)
		}
		cfg.Locale.Dir = dir
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("host.base_url", "http://127.0.0.1:8080")
	v.SetDefault("host.timeout", "10s")
	v.SetDefault("poll.interval", "3s")
	v.SetDefault("panel.listen", "127.0.0.1:7420")
	v.SetDefault("locale.default", "en")
	v.SetDefault("locale.dir", "")
	v.SetDefault("locale.remote", false)
	v.SetDefault("mounts.default_viewpoint", "Player PoV")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Validate checks the values that would otherwise fail late at runtime
func (c *Config) Validate() error {
	u, err := url.Parse(c.Host.BaseURL)
	if err != nil {
		return fmt.Errorf("host.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("host.base_url: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host.base_url: missing host")
	}

	if c.Host.Timeout <= 0 {
		return fmt.Errorf("host.timeout must be positive, got %s", c.Host.Timeout)
	}
	if c.Poll.Interval <= 0 {
		return fmt.Errorf("poll.interval must be positive, got %s", c.Poll.Interval)
	}
	if strings.TrimSpace(c.Mounts.DefaultViewpoint) == "" {
		return fmt.Errorf("mounts.default_viewpoint cannot be empty")
	}
	if c.Locale.Default == "" {
		return fmt.Errorf("locale.default cannot be empty")
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be 'text' or 'json', got %q", c.Log.Format)
	}

	return nil
}

// ConfigDir returns the glasspanel configuration directory path
func ConfigDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".glasspanel"), nil
}
