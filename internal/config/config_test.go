package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:     AppConfig{Environment: "development"},
		Logger:  LoggerConfig{Level: "info"},
		Storage: StorageConfig{Backend: BackendSQLite, DataPath: "/some/path"},
		Auth:    AuthConfig{AccessTokenDuration: time.Hour},
	}
}

// clearEnv unsets the variables Load reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENV", "LOG_LEVEL", "LOG_FORMAT", "CONFIG_FILE", "STORAGE_BACKEND", "DATA_PATH",
		"SERVER_PORT", "CORS_ORIGINS", "AUTH_RATE_LIMIT", "AUTH_KEY", "DEMO_ENABLED",
		"SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "SERVER_IDLE_TIMEOUT", "ACCESS_TOKEN_DURATION",
		"IMPORT_INBOX_ENABLED", "IMPORT_INBOX_PATH",
	} {
		t.Setenv(key, "")
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env
			if tt.valid {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.Logger.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logger.Format = "xml" }},
		{"bad backend", func(c *Config) { c.Storage.Backend = "postgres" }},
		{"empty data path", func(c *Config) { c.Storage.DataPath = "" }},
		{"zero token duration", func(c *Config) { c.Auth.AccessTokenDuration = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load([]string{"--env-file", filepath.Join(t.TempDir(), "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, filepath.Join(home, ".bookkeeper"), cfg.Storage.DataPath)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, 10, cfg.Server.AuthRateLimit)
	assert.True(t, cfg.Demo.Enabled)
	assert.Equal(t, filepath.Join(home, ".bookkeeper", "bookkeeper.db"), cfg.StorePath())
	assert.False(t, cfg.Inbox.Enabled)
	assert.Equal(t, filepath.Join(home, ".bookkeeper", "inbox"), cfg.Inbox.Path)
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	tomlPath := filepath.Join(dir, "bookkeeper.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte(`
environment = "staging"

[log]
level = "warn"

[storage]
backend = "badger"
data_path = "`+filepath.Join(dir, "from-file")+`"

[server]
port = "9000"
cors_origins = ["http://a.example", "http://b.example"]

[demo]
enabled = false

[inbox]
enabled = true
`), 0o600))

	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("SERVER_PORT=9100\nLOG_LEVEL=error\n"), 0o600))
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load([]string{"--config", tomlPath, "--env-file", envPath, "--port", "9200"})
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.App.Environment, "file value")
	assert.Equal(t, "debug", cfg.Logger.Level, "real env wins over .env and file")
	assert.Equal(t, "9200", cfg.Server.Port, "flag wins over everything")
	assert.Equal(t, BackendBadger, cfg.Storage.Backend)
	assert.Equal(t, filepath.Join(dir, "from-file"), cfg.Storage.DataPath)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Server.CORSOrigins)
	assert.False(t, cfg.Demo.Enabled)
	assert.Equal(t, filepath.Join(dir, "from-file", "badger"), cfg.StorePath())
	assert.True(t, cfg.Inbox.Enabled)
	assert.Equal(t, filepath.Join(dir, "from-file", "inbox"), cfg.Inbox.Path)
}

func TestLoad_InboxFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	drop := filepath.Join(t.TempDir(), "drop")
	t.Setenv("IMPORT_INBOX_ENABLED", "1")
	t.Setenv("IMPORT_INBOX_PATH", drop)

	cfg, err := LoadWith(Overrides{EnvFile: filepath.Join(t.TempDir(), "none")})
	require.NoError(t, err)
	assert.True(t, cfg.Inbox.Enabled)
	assert.Equal(t, drop, cfg.Inbox.Path)
}

func TestLoad_InvalidDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())

	_, err := Load([]string{"--read-timeout", "soon", "--env-file", filepath.Join(t.TempDir(), "none")})
	assert.Error(t, err)
}

func TestLoad_BadTOML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("environment = \n"), 0o600))

	_, err := LoadWith(Overrides{ConfigFile: path, EnvFile: filepath.Join(t.TempDir(), "none")})
	assert.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/books", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "books"), got)

	got, err = expandPath("", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/default", got)

	got, err = expandPath("relative/dir", "")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("TEST_KEY", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "TEST_KEY", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "TEST_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "MISSING_TEST_KEY", "default"))
}

func TestGetBoolConfigValue(t *testing.T) {
	assert.True(t, getBoolConfigValue("yes", "X", false))
	assert.True(t, getBoolConfigValue("TRUE", "X", false))
	assert.False(t, getBoolConfigValue("no", "X", true))
	assert.True(t, getBoolConfigValue("", "MISSING_BOOL_KEY", true))
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\n\nBK_TEST_A=one\nBK_TEST_B = \"two\"\nBK_TEST_C='three'\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("BK_TEST_A", "")
	t.Setenv("BK_TEST_B", "")
	t.Setenv("BK_TEST_C", "preset")

	require.NoError(t, loadEnvFile(path))

	assert.Equal(t, "one", os.Getenv("BK_TEST_A"))
	assert.Equal(t, "two", os.Getenv("BK_TEST_B"))
	assert.Equal(t, "preset", os.Getenv("BK_TEST_C"), "existing vars are not overwritten")
}

func TestLoadEnvFile_InvalidFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("NOT_A_PAIR\n"), 0o600))

	assert.Error(t, loadEnvFile(path))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
	assert.Nil(t, splitList(""))
}
