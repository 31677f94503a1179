// ABOUTME: Configuration loading and parsing for coven-chat
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/2389/coven-chat/internal/auth"
	"github.com/2389/coven-chat/internal/session"
)

// Config represents the complete coven-chat configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Auth      AuthConfig      `yaml:"auth" toml:"auth"`
	Session   SessionConfig   `yaml:"session" toml:"session"`
	Display   DisplayConfig   `yaml:"display" toml:"display"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
	DevServer DevServerConfig `yaml:"devserver" toml:"devserver"`
}

// ServerConfig describes the chat backend the client talks to
type ServerConfig struct {
	URL            string        `yaml:"url" toml:"url"`
	RequestTimeout time.Duration `yaml:"-" toml:"-"`

	// Raw string value for unmarshaling; empty means no timeout
	RequestTimeoutRaw string `yaml:"request_timeout" toml:"request_timeout"`
}

// AuthConfig holds the bearer token sent to the backend
type AuthConfig struct {
	Token string `yaml:"token" toml:"token"`
}

// SessionConfig bounds the conversation history
type SessionConfig struct {
	HistoryLimit  int `yaml:"history_limit" toml:"history_limit"`
	ContextWindow int `yaml:"context_window" toml:"context_window"`
}

// DisplayConfig holds presentation settings for renderers
type DisplayConfig struct {
	BotName    string `yaml:"bot_name" toml:"bot_name"`
	Transcript string `yaml:"transcript" toml:"transcript"` // optional HTML transcript path
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// DevServerConfig configures the local development backend
type DevServerConfig struct {
	HTTPAddr  string `yaml:"http_addr" toml:"http_addr"`
	JWTSecret string `yaml:"jwt_secret" toml:"jwt_secret"` // empty disables auth on /chat
	BotName   string `yaml:"bot_name" toml:"bot_name"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			URL: "http://localhost:8000",
		},
		Session: SessionConfig{
			HistoryLimit:  session.DefaultHistoryLimit,
			ContextWindow: session.DefaultContextWindow,
		},
		Display: DisplayConfig{
			BotName: "Prakhar",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		DevServer: DevServerConfig{
			HTTPAddr: "localhost:8000",
			BotName:  "Prakhar",
		},
	}
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are parsed as TOML, everything else as YAML.
// Environment variables in the format ${VAR_NAME} are expanded before parsing,
// and fields missing from the file keep their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(expandEnvVars(string(data)), formatForPath(path))
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes already-expanded configuration content in the given format ("yaml" or "toml").
func Parse(content, format string) (*Config, error) {
	cfg := Default()

	switch format {
	case "toml":
		if _, err := toml.Decode(content, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	case "yaml":
		if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Resolve finds and loads the configuration for a command.
//
// A .env file in the working directory is loaded first so its values are
// visible to ${VAR} expansion. Priority: explicit path > COVEN_CHAT_CONFIG >
// XDG_CONFIG_HOME/coven/chat.yaml. A missing default file is not an error;
// Default() is returned with an empty path.
func Resolve(explicit string) (*Config, string, error) {
	_ = godotenv.Load()

	if explicit != "" {
		cfg, err := Load(explicit)
		return cfg, explicit, err
	}
	if envPath := os.Getenv("COVEN_CHAT_CONFIG"); envPath != "" {
		cfg, err := Load(envPath)
		return cfg, envPath, err
	}

	path := DefaultPath()
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), "", nil
	}
	return cfg, path, err
}

// DefaultPath returns XDG_CONFIG_HOME/coven/chat.yaml, falling back to ~/.config.
func DefaultPath() string {
	return filepath.Join(configDir(), "coven", "chat.yaml")
}

// ResolveToken returns the bearer token to send to the backend.
// Priority: configured value > COVEN_TOKEN env var > XDG_CONFIG_HOME/coven/token file.
func ResolveToken(configured string) string {
	if configured != "" {
		return configured
	}
	if token := os.Getenv("COVEN_TOKEN"); token != "" {
		return token
	}

	data, err := os.ReadFile(filepath.Join(configDir(), "coven", "token"))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func configDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, ".config")
}

func formatForPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return "toml"
	}
	return "yaml"
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills values the session treats as "use the default".
func (c *Config) applyDefaults() {
	if c.Session.HistoryLimit <= 0 {
		c.Session.HistoryLimit = session.DefaultHistoryLimit
	}
	if c.Session.ContextWindow <= 0 {
		c.Session.ContextWindow = session.DefaultContextWindow
	}
	if c.Display.BotName == "" {
		c.Display.BotName = "Prakhar"
	}
	if c.DevServer.BotName == "" {
		c.DevServer.BotName = c.Display.BotName
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server.url is required")
	}
	u, err := url.Parse(c.Server.URL)
	if err != nil {
		return fmt.Errorf("server.url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server.url must use http or https scheme")
	}

	if c.Server.RequestTimeout < 0 {
		return fmt.Errorf("server.request_timeout must not be negative")
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json (got %q)", c.Logging.Format)
	}

	if c.DevServer.JWTSecret != "" && len(c.DevServer.JWTSecret) < auth.MinSecretLength {
		return fmt.Errorf("devserver.jwt_secret must be at least %d bytes", auth.MinSecretLength)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	if cfg.Server.RequestTimeoutRaw == "" {
		return nil
	}

	d, err := time.ParseDuration(cfg.Server.RequestTimeoutRaw)
	if err != nil {
		return fmt.Errorf("parsing request_timeout %q: %w", cfg.Server.RequestTimeoutRaw, err)
	}
	cfg.Server.RequestTimeout = d
	return nil
}
