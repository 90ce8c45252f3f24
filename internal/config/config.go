package config

import "time"

// Config holds server configuration values.
type Config struct {
	// ListenAddr is the TCP chat listener address.
	ListenAddr string `mapstructure:"listen_addr" yaml:"listen_addr"`
	// HTTPAddr serves health, roster, metrics, and the websocket
	// transport.
	HTTPAddr string `mapstructure:"http_addr" yaml:"http_addr"`
	// MaxSessions caps concurrently registered users; 0 means no cap.
	MaxSessions int `mapstructure:"max_sessions" yaml:"max_sessions"`
	// MaxLineBytes caps the length of a single inbound line.
	MaxLineBytes int `mapstructure:"max_line_bytes" yaml:"max_line_bytes"`

	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		ListenAddr:        ":5000",
		HTTPAddr:          ":8080",
		MaxSessions:       50,
		MaxLineBytes:      1024,
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		LogLevel:          "info",
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.ListenAddr != "" {
		c.ListenAddr = other.ListenAddr
	}
	if other.HTTPAddr != "" {
		c.HTTPAddr = other.HTTPAddr
	}
	if other.MaxSessions != 0 {
		c.MaxSessions = other.MaxSessions
	}
	if other.MaxLineBytes != 0 {
		c.MaxLineBytes = other.MaxLineBytes
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
}
