package models

import "fmt"

// Config holds the application configuration
type Config struct {
	Server   ServerConfig  `json:"server"`
	Store    StoreConfig   `json:"store"`
	Channel  ChannelConfig `json:"channel"`
	Retry    RetryConfig   `json:"retry"`
	Tracing  TracingConfig `json:"tracing"`
	LogLevel string        `json:"log_level"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Port                int `json:"port"`
	ReadTimeoutSec      int `json:"readTimeoutSec"`
	WriteTimeoutSec     int `json:"writeTimeoutSec"`
	IdleTimeoutSec      int `json:"idleTimeoutSec"`
	SignatureMaxSkewSec int `json:"signatureMaxSkewSec"`
}

// StoreConfig points at the Android telephony database (mmssms.db)
type StoreConfig struct {
	Path          string `json:"path"`
	BusyTimeoutMs int    `json:"busyTimeoutMs"`
}

// ChannelConfig describes the method channel exposed to callers
type ChannelConfig struct {
	Name             string `json:"name"`
	Secret           string `json:"secret"`
	WebSocketEnabled bool   `json:"websocketEnabled"`
}

// RetryConfig holds retry related configurations
type RetryConfig struct {
	InitialBackoffMs int `json:"initialBackoffMs"`
	MaxBackoffMs     int `json:"maxBackoffMs"`
	MaxAttempts      int `json:"maxAttempts"`
}

// TracingConfig contains OpenTelemetry configuration
type TracingConfig struct {
	ServiceName        string  `json:"service_name"`
	ServiceVersion     string  `json:"service_version"`
	Environment        string  `json:"environment"`
	OTLPEndpoint       string  `json:"otlp_endpoint"`
	SampleRate         float64 `json:"sample_rate"`
	Enabled            bool    `json:"enabled"`
	UseStdout          bool    `json:"use_stdout"`
	ShutdownTimeoutSec int     `json:"shutdown_timeout_sec"`
}

// Validate checks an enabled tracing configuration. Disabled tracing is
// never validated.
func (c TracingConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.ServiceName == "" {
		return ConfigError{Message: "tracing service_name is required"}
	}
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return ConfigError{Message: fmt.Sprintf("tracing sample_rate must be between 0 and 1, got %v", c.SampleRate)}
	}
	if !c.UseStdout && c.OTLPEndpoint == "" {
		return ConfigError{Message: "tracing otlp_endpoint is required when stdout export is off"}
	}
	if c.ShutdownTimeoutSec < 0 {
		return ConfigError{Message: "tracing shutdown_timeout_sec cannot be negative"}
	}
	return nil
}

type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string {
	return e.Message
}
