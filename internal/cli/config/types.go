// Package config provides configuration management for the structview CLI.
package config

// Config holds all CLI configuration options.
type Config struct {
	// StatePath is the validation history database. Empty disables history.
	StatePath    string        `koanf:"state_path"`
	Verbose      bool          `koanf:"verbose"`
	OutputFormat string        `koanf:"output"`
	LogLevel     string        `koanf:"log_level"`
	LogFormat    string        `koanf:"log_format"`
	Server       *ServerConfig `koanf:"server"`

	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`
}

// ServerConfig holds configuration for the HTTP API server.
type ServerConfig struct {
	Addr         string   `koanf:"addr"`
	Port         int      `koanf:"port"`
	CORSOrigins  []string `koanf:"cors_origins"`
	MaxBodyBytes int64    `koanf:"max_body_bytes"`
}

// Default configuration values.
const (
	DefaultStateFile    = ".structview/history.db"
	DefaultOutput       = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogLevel     = "warn"
	DefaultLogFormat    = "text"
	DefaultAddr         = "127.0.0.1"
	DefaultPort         = 8000
	DefaultCORSOrigin   = "http://localhost:5173"
	DefaultMaxBodyBytes = 10 << 20
)

// DefaultServerConfig returns a ServerConfig with default values.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Addr:         DefaultAddr,
		Port:         DefaultPort,
		CORSOrigins:  []string{DefaultCORSOrigin},
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}

// GetServerConfig returns the server config with defaults applied for any unset values.
func (c *Config) GetServerConfig() *ServerConfig {
	if c.Server == nil {
		return DefaultServerConfig()
	}
	s := *c.Server
	if s.Addr == "" {
		s.Addr = DefaultAddr
	}
	if s.Port == 0 {
		s.Port = DefaultPort
	}
	if len(s.CORSOrigins) == 0 {
		s.CORSOrigins = []string{DefaultCORSOrigin}
	}
	if s.MaxBodyBytes == 0 {
		s.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &s
}
