package config

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "structview.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("state", "", "")
	flags.String("output", "", "")
	flags.String("log-level", "", "")
	flags.BoolP("verbose", "v", false, "")
	flags.String("addr", "", "")
	flags.Int("port", 0, "")
	flags.StringSlice("cors-origin", nil, "")
	return flags
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultLogFormat, cfg.LogFormat)
	assert.False(t, cfg.Verbose)
	assert.True(t, filepath.IsAbs(cfg.StatePath))
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, DefaultStateFile), cfg.StatePath)

	server := cfg.GetServerConfig()
	assert.Equal(t, DefaultAddr, server.Addr)
	assert.Equal(t, DefaultPort, server.Port)
	assert.Equal(t, []string{DefaultCORSOrigin}, server.CORSOrigins)
	assert.Equal(t, int64(DefaultMaxBodyBytes), server.MaxBodyBytes)

	assert.Empty(t, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	path := writeConfig(t, dir, `output: json
state_path: data/history.db
server:
  port: 9000
  cors_origins:
    - https://app.example.com
    - https://staging.example.com
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, filepath.Join(dir, "data", "history.db"), cfg.StatePath, "relative to the config file")
	assert.Equal(t, 9000, cfg.GetServerConfig().Port)
	assert.Equal(t, DefaultAddr, cfg.GetServerConfig().Addr)
	assert.Equal(t, []string{"https://app.example.com", "https://staging.example.com"}, cfg.GetServerConfig().CORSOrigins)
	assert.Equal(t, path, GetConfigFileUsed())
}

func TestLoadConfig_SearchesUpward(t *testing.T) {
	ResetConfig()
	root := t.TempDir()
	writeConfig(t, root, "output: markdown\n")
	nested := filepath.Join(root, "models", "towers")
	require.NoError(t, os.MkdirAll(nested, 0750))
	t.Chdir(nested)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "markdown", cfg.OutputFormat)
}

func TestLoadConfig_EmptyStateDisablesHistory(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, t.TempDir(), "state_path: \"\"\n")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Empty(t, cfg.StatePath)
}

func TestLoadConfig_Env(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())
	t.Setenv("STRUCTVIEW_SERVER_PORT", "7070")
	t.Setenv("STRUCTVIEW_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("STRUCTVIEW_LOG_LEVEL", "debug")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.GetServerConfig().Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.GetServerConfig().CORSOrigins)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_Precedence(t *testing.T) {
	tests := []struct {
		name    string
		envVal  string
		flagVal string
		want    string
	}{
		{name: "file only", want: "json"},
		{name: "env over file", envVal: "text", want: "text"},
		{name: "flag over env", envVal: "text", flagVal: "markdown", want: "markdown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			path := writeConfig(t, t.TempDir(), "output: json\n")
			if tt.envVal != "" {
				t.Setenv("STRUCTVIEW_OUTPUT", tt.envVal)
			}
			flags := testFlags()
			if tt.flagVal != "" {
				require.NoError(t, flags.Set("output", tt.flagVal))
			}

			cfg, err := LoadConfig(path, flags)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.OutputFormat)
		})
	}
}

func TestLoadConfig_FlagMapping(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	t.Chdir(dir)

	flags := testFlags()
	require.NoError(t, flags.Set("state", "custom.db"))
	require.NoError(t, flags.Set("log-level", "error"))
	require.NoError(t, flags.Set("addr", "0.0.0.0"))
	require.NoError(t, flags.Set("port", "8081"))
	require.NoError(t, flags.Set("cors-origin", "https://x.example"))
	require.NoError(t, flags.Set("verbose", "true"))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Equal(t, "custom.db", cfg.StatePath, "flag paths stay relative to the working directory")
	assert.Equal(t, "error", cfg.LogLevel)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "0.0.0.0", cfg.GetServerConfig().Addr)
	assert.Equal(t, 8081, cfg.GetServerConfig().Port)
	assert.Equal(t, []string{"https://x.example"}, cfg.GetServerConfig().CORSOrigins)
}

func TestLoadConfig_UnsetFlagFallsBackToEnv(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())
	t.Setenv("STRUCTVIEW_OUTPUT", "json")

	cfg, err := LoadConfig("", testFlags())
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.OutputFormat)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"bad output", "output: xml\n", "invalid output format"},
		{"bad log format", "log_format: logfmt\n", "invalid log format"},
		{"bad log level", "log_level: loud\n", "invalid log level"},
		{"bad port", "server:\n  port: 70000\n", "invalid server port"},
		{"bad yaml", "output: [\n", "error reading config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			path := writeConfig(t, t.TempDir(), tt.content)

			_, err := LoadConfig(path, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	ResetConfig()
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestGetServerConfig_FillsZeroValues(t *testing.T) {
	cfg := &Config{Server: &ServerConfig{Port: 1234}}

	got := cfg.GetServerConfig()
	assert.Equal(t, 1234, got.Port)
	assert.Equal(t, DefaultAddr, got.Addr)
	assert.Equal(t, int64(DefaultMaxBodyBytes), got.MaxBodyBytes)
	assert.Equal(t, int64(0), cfg.Server.MaxBodyBytes, "receiver is not modified")
}

func TestGetServerConfig_EmptyCORSOriginsFallBack(t *testing.T) {
	ResetConfig()
	path := writeConfig(t, t.TempDir(), "server:\n  cors_origins: []\n")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultCORSOrigin}, cfg.GetServerConfig().CORSOrigins)
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantDebug bool
		wantJSON  bool
	}{
		{name: "warn text", cfg: Config{LogLevel: "warn", LogFormat: "text"}},
		{name: "verbose forces debug", cfg: Config{LogLevel: "warn", LogFormat: "text", Verbose: true}, wantDebug: true},
		{name: "json debug", cfg: Config{LogLevel: "debug", LogFormat: "json"}, wantDebug: true, wantJSON: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(&tt.cfg, &buf)

			assert.Equal(t, tt.wantDebug, logger.Enabled(context.Background(), slog.LevelDebug))
			logger.Warn("hello")
			if tt.wantJSON {
				assert.Contains(t, buf.String(), `"msg":"hello"`)
			} else {
				assert.Contains(t, buf.String(), "msg=hello")
			}
		})
	}
}

func TestGetLogger(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := WithLogger(context.Background(), logger)

	assert.Same(t, logger, GetLogger(ctx))
	assert.NotNil(t, GetLogger(context.Background()))
}
