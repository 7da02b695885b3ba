// Package config loads settings from defaults, an optional YAML file,
// SUNEATER_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable.
const EnvPrefix = "SUNEATER"

// Config holds application configuration.
type Config struct {
	GitHub GitHubConfig `mapstructure:"github"`
	Nav    NavConfig    `mapstructure:"nav"`
	Log    LogConfig    `mapstructure:"log"`
	MCP    MCPConfig    `mapstructure:"mcp"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// GitHubConfig locates the repository whose branches hold the categories.
// An empty owner or repo disables remote fetching.
type GitHubConfig struct {
	Owner   string        `mapstructure:"owner"`
	Repo    string        `mapstructure:"repo"`
	APIBase string        `mapstructure:"api_base"`
	WebBase string        `mapstructure:"web_base"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// NavConfig tunes page navigation.
type NavConfig struct {
	HandoffDelay time.Duration `mapstructure:"handoff_delay"`
	Threshold    float64       `mapstructure:"threshold"`
}

// LogConfig selects log verbosity and destination.
type LogConfig struct {
	Verbose bool   `mapstructure:"verbose"`
	File    string `mapstructure:"file"`
}

// MCPConfig holds MCP server settings.
type MCPConfig struct {
	Port               string        `mapstructure:"port"`
	AllowedOrigins     []string      `mapstructure:"allowed_origins"`
	Stateless          bool          `mapstructure:"stateless"`
	EnableAdmin        bool          `mapstructure:"enable_admin"`
	APIKey             string        `mapstructure:"api_key"`
	RPS                float64       `mapstructure:"rps"`
	Burst              int           `mapstructure:"burst"`
	SessionTimeout     time.Duration `mapstructure:"session_timeout"`
	CacheClearInterval time.Duration `mapstructure:"cache_clear_interval"`
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"owner":         "github.owner",
	"repo":          "github.repo",
	"timeout":       "github.timeout",
	"verbose":       "log.verbose",
	"log-file":      "log.file",
	"port":          "mcp.port",
	"handoff-delay": "nav.handoff_delay",
}

// Options controls where Load looks for settings.
type Options struct {
	// File is an explicit config file. A missing explicit file is an error.
	File string
	// Flags, when set, override every other source for the keys in flagKeys.
	Flags *pflag.FlagSet
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("github.owner", "grant")
	v.SetDefault("github.repo", "suneater-data")
	v.SetDefault("github.api_base", "https://api.github.com")
	v.SetDefault("github.web_base", "https://github.com")
	v.SetDefault("github.timeout", 10*time.Second)

	v.SetDefault("nav.handoff_delay", 100*time.Millisecond)
	v.SetDefault("nav.threshold", 0.2)

	v.SetDefault("log.verbose", false)
	v.SetDefault("log.file", "")

	v.SetDefault("mcp.port", "8080")
	v.SetDefault("mcp.allowed_origins", []string{})
	v.SetDefault("mcp.stateless", false)
	v.SetDefault("mcp.enable_admin", false)
	v.SetDefault("mcp.api_key", "")
	v.SetDefault("mcp.rps", 2.0)
	v.SetDefault("mcp.burst", 5)
	v.SetDefault("mcp.session_timeout", 15*time.Minute)
	v.SetDefault("mcp.cache_clear_interval", 30*time.Minute)
}

// Load builds a Config. A config file found on the default search path is
// optional; one named in opts.File must exist.
func Load(opts Options) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(configHome(), "suneater"))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Hosting platforms set PORT.
	if err := v.BindEnv("mcp.port", EnvPrefix+"_MCP_PORT", "PORT"); err != nil {
		return Config{}, fmt.Errorf("bind env: %w", err)
	}

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case opts.File != "":
			return Config{}, fmt.Errorf("read config file %s: %w", opts.File, err)
		case !errors.As(err, &notFound):
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.File = v.ConfigFileUsed()
	c.normalize()

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) normalize() {
	c.GitHub.Owner = strings.TrimSpace(c.GitHub.Owner)
	c.GitHub.Repo = strings.TrimSpace(c.GitHub.Repo)
	c.MCP.Port = strings.TrimSpace(c.MCP.Port)

	origins := make([]string, 0, len(c.MCP.AllowedOrigins))
	for _, o := range c.MCP.AllowedOrigins {
		for _, part := range strings.Split(o, ",") {
			if p := strings.TrimSpace(part); p != "" {
				origins = append(origins, p)
			}
		}
	}
	c.MCP.AllowedOrigins = origins

	if c.MCP.RPS <= 0 {
		c.MCP.RPS = 2
	}
	if c.MCP.Burst <= 0 {
		c.MCP.Burst = 5
	}
}

// Validate reports settings that cannot be used.
func (c Config) Validate() error {
	if c.GitHub.Timeout <= 0 {
		return fmt.Errorf("github.timeout must be positive, got %s", c.GitHub.Timeout)
	}
	if c.Nav.Threshold <= 0 || c.Nav.Threshold > 1 {
		return fmt.Errorf("nav.threshold must be in (0, 1], got %g", c.Nav.Threshold)
	}
	if c.Nav.HandoffDelay < 0 {
		return fmt.Errorf("nav.handoff_delay must not be negative, got %s", c.Nav.HandoffDelay)
	}
	return nil
}

// RemoteEnabled reports whether owner and repository are both set.
func (c Config) RemoteEnabled() bool {
	return c.GitHub.Owner != "" && c.GitHub.Repo != ""
}

// AdminEnabled reports whether admin tools may be exposed. They need an
// API key.
func (c MCPConfig) AdminEnabled() bool {
	return c.EnableAdmin && c.APIKey != ""
}

func configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	return "."
}
