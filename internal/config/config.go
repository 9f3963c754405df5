// Package config loads application configuration from command-line flags,
// environment variables, a .env file and an optional TOML file.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Storage backends.
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Storage StorageConfig
	Server  ServerConfig
	Auth    AuthConfig
	Demo    DemoConfig
	Inbox   InboxConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string
	Format string // json, pretty, text; empty auto-detects
}

// StorageConfig selects the log store backend.
type StorageConfig struct {
	Backend  string // badger or sqlite
	DataPath string // directory holding the store, the auth key and the writer lock
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
	// AuthRateLimit is login/register attempts per minute per client address.
	AuthRateLimit int
}

// AuthConfig holds token configuration.
type AuthConfig struct {
	// AccessTokenKey is the 32-byte PASETO key; filled in by auth.LoadOrGenerateKey.
	AccessTokenKey []byte
	// KeyHex overrides the key file when set.
	KeyHex              string
	AccessTokenDuration time.Duration
}

// DemoConfig controls the example library shown to users without history.
type DemoConfig struct {
	Enabled bool
}

// InboxConfig controls the watched backup import directory.
type InboxConfig struct {
	Enabled bool
	Path    string // defaults to <data path>/inbox
}

// Overrides are values supplied explicitly by a caller; they take precedence
// over every other source. Empty fields are ignored.
type Overrides struct {
	Environment         string
	LogLevel            string
	LogFormat           string
	ConfigFile          string
	EnvFile             string
	StorageBackend      string
	DataPath            string
	Port                string
	ReadTimeout         string
	WriteTimeout        string
	IdleTimeout         string
	CORSOrigins         string
	AccessTokenDuration string
	Demo                string
}

// fileConfig mirrors the TOML file layout.
type fileConfig struct {
	Environment string `toml:"environment"`
	Log         struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	} `toml:"log"`
	Storage struct {
		Backend  string `toml:"backend"`
		DataPath string `toml:"data_path"`
	} `toml:"storage"`
	Server struct {
		Port          string   `toml:"port"`
		ReadTimeout   string   `toml:"read_timeout"`
		WriteTimeout  string   `toml:"write_timeout"`
		IdleTimeout   string   `toml:"idle_timeout"`
		CORSOrigins   []string `toml:"cors_origins"`
		AuthRateLimit int      `toml:"auth_rate_limit"`
	} `toml:"server"`
	Auth struct {
		AccessTokenDuration string `toml:"access_token_duration"`
	} `toml:"auth"`
	Demo struct {
		Enabled *bool `toml:"enabled"`
	} `toml:"demo"`
	Inbox struct {
		Enabled bool   `toml:"enabled"`
		Path    string `toml:"path"`
	} `toml:"inbox"`
}

// Load parses args as server flags and resolves the configuration with
// precedence: flags, environment, .env file, TOML file, defaults.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("bookkeeper-server", flag.ContinueOnError)
	var o Overrides
	fs.StringVar(&o.Environment, "env", "", "Environment (development, staging, production)")
	fs.StringVar(&o.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&o.LogFormat, "log-format", "", "Log format (json, pretty, text)")
	fs.StringVar(&o.ConfigFile, "config", "", "Path to TOML config file")
	fs.StringVar(&o.EnvFile, "env-file", ".env", "Path to .env file")
	fs.StringVar(&o.StorageBackend, "storage", "", "Storage backend (badger, sqlite)")
	fs.StringVar(&o.DataPath, "data-path", "", "Directory for the log store and auth key")
	fs.StringVar(&o.Port, "port", "", "Server port (default: 8080)")
	fs.StringVar(&o.ReadTimeout, "read-timeout", "", "HTTP read timeout (default: 15s)")
	fs.StringVar(&o.WriteTimeout, "write-timeout", "", "HTTP write timeout (default: 15s)")
	fs.StringVar(&o.IdleTimeout, "idle-timeout", "", "HTTP idle timeout (default: 60s)")
	fs.StringVar(&o.CORSOrigins, "cors-origins", "", "Comma separated allowed CORS origins")
	fs.StringVar(&o.AccessTokenDuration, "access-token-duration", "", "Access token lifetime (e.g., 24h)")
	fs.StringVar(&o.Demo, "demo", "", "Show the example library to users without history (default: true)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return LoadWith(o)
}

// LoadWith resolves the configuration from explicit overrides plus the
// environment and files.
func LoadWith(o Overrides) (*Config, error) {
	envFile := o.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// A missing .env file is fine.
	if err := loadEnvFile(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	var file fileConfig
	if path := getConfigValue(o.ConfigFile, "CONFIG_FILE", ""); path != "" {
		if err := loadTOMLFile(path, &file); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(o.Environment, "ENV", or(file.Environment, "development")),
		},
		Logger: LoggerConfig{
			Level:  getConfigValue(o.LogLevel, "LOG_LEVEL", or(file.Log.Level, "info")),
			Format: getConfigValue(o.LogFormat, "LOG_FORMAT", file.Log.Format),
		},
		Storage: StorageConfig{
			Backend:  getConfigValue(o.StorageBackend, "STORAGE_BACKEND", or(file.Storage.Backend, BackendSQLite)),
			DataPath: getConfigValue(o.DataPath, "DATA_PATH", file.Storage.DataPath),
		},
		Server: ServerConfig{
			Port:          getConfigValue(o.Port, "SERVER_PORT", or(file.Server.Port, "8080")),
			CORSOrigins:   splitList(getConfigValue(o.CORSOrigins, "CORS_ORIGINS", strings.Join(file.Server.CORSOrigins, ","))),
			AuthRateLimit: getIntConfigValue("", "AUTH_RATE_LIMIT", orInt(file.Server.AuthRateLimit, 10)),
		},
		Auth: AuthConfig{
			KeyHex: os.Getenv("AUTH_KEY"),
		},
		Demo: DemoConfig{
			Enabled: getBoolConfigValue(o.Demo, "DEMO_ENABLED", file.Demo.Enabled == nil || *file.Demo.Enabled),
		},
		Inbox: InboxConfig{
			Enabled: getBoolConfigValue("", "IMPORT_INBOX_ENABLED", file.Inbox.Enabled),
			Path:    getConfigValue("", "IMPORT_INBOX_PATH", file.Inbox.Path),
		},
	}

	durations := []struct {
		flag, env, file, def string
		dst                  *time.Duration
	}{
		{o.ReadTimeout, "SERVER_READ_TIMEOUT", file.Server.ReadTimeout, "15s", &cfg.Server.ReadTimeout},
		{o.WriteTimeout, "SERVER_WRITE_TIMEOUT", file.Server.WriteTimeout, "15s", &cfg.Server.WriteTimeout},
		{o.IdleTimeout, "SERVER_IDLE_TIMEOUT", file.Server.IdleTimeout, "60s", &cfg.Server.IdleTimeout},
		{o.AccessTokenDuration, "ACCESS_TOKEN_DURATION", file.Auth.AccessTokenDuration, "24h", &cfg.Auth.AccessTokenDuration},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flag, d.env, or(d.file, d.def))
		v, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid duration for %s %q: %w", d.env, raw, err)
		}
		*d.dst = v
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}
	inbox, err := expandPath(cfg.Inbox.Path, filepath.Join(cfg.Storage.DataPath, "inbox"))
	if err != nil {
		return nil, fmt.Errorf("invalid inbox path: %w", err)
	}
	cfg.Inbox.Path = inbox

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks that all config values are present and valid.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	case "":
		return errors.New("ENV is required")
	default:
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Logger.Format {
	case "", "json", "pretty", "text":
	default:
		return fmt.Errorf("invalid log format: %s (must be json, pretty, or text)", c.Logger.Format)
	}

	switch c.Storage.Backend {
	case BackendBadger, BackendSQLite:
	default:
		return fmt.Errorf("invalid storage backend: %s (must be badger or sqlite)", c.Storage.Backend)
	}

	if c.Storage.DataPath == "" {
		return errors.New("data path cannot be empty after expansion")
	}
	if c.Auth.AccessTokenDuration <= 0 {
		return errors.New("access token duration must be positive")
	}
	return nil
}

// StorePath returns the location of the configured backend inside the data
// directory: a directory for badger, a file for sqlite.
func (c *Config) StorePath() string {
	return BackendPath(c.Storage.DataPath, c.Storage.Backend)
}

// BackendPath returns where a backend keeps its data inside dataPath.
func BackendPath(dataPath, backend string) string {
	if backend == BackendBadger {
		return filepath.Join(dataPath, "badger")
	}
	return filepath.Join(dataPath, "bookkeeper.db")
}

// LockPath returns the single-writer lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Storage.DataPath, "bookkeeper.lock")
}

// expandPath expands ~ and makes the path absolute. An empty path yields
// defaultPath unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	expanded, err := expandPath(c.Storage.DataPath, filepath.Join(homeDir, ".bookkeeper"))
	if err != nil {
		return err
	}
	c.Storage.DataPath = expanded
	return nil
}

func loadTOMLFile(path string, dst *fileConfig) error {
	//#nosec G304 -- config path comes from the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := toml.Unmarshal(data, dst); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return fmt.Errorf("parse config file %s:%d:%d: %w", path, row, col, err)
		}
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue accepts "true", "1" and "yes" (case-insensitive) as true.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	switch strings.ToLower(strValue) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return v
}

func or(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func orInt(v, def int) int {
	if v != 0 {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// loadEnvFile loads KEY=value lines from path into the environment without
// overriding variables that are already set.
func loadEnvFile(path string) error {
	//#nosec G304 -- env file path is operator supplied
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}
