package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"smsbridge/internal/constants"
	"smsbridge/internal/models"
	"smsbridge/internal/security"

	"github.com/sirupsen/logrus"
)

var (
	ErrMissingStorePath   = models.ConfigError{Message: "missing message store path"}
	ErrMissingChannelName = models.ConfigError{Message: "missing channel name"}
)

// Environment variables that override file values.
const (
	EnvStorePath     = "SMSBRIDGE_STORE_PATH"
	EnvChannelSecret = "SMSBRIDGE_CHANNEL_SECRET"
	EnvLogLevel      = "SMSBRIDGE_LOG_LEVEL"
	EnvEnvironment   = "SMSBRIDGE_ENV"
	EnvPort          = "PORT"
)

func LoadConfig(path string) (*models.Config, error) {
	if err := security.ValidateFilePath(path); err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	file, err := os.ReadFile(path) // #nosec G304 - Path validated by security.ValidateFilePath above
	if err != nil {
		return nil, err
	}

	var config models.Config
	if err := json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := applyEnvironmentOverrides(&config); err != nil {
		return nil, err
	}

	if err := validate(&config); err != nil {
		return nil, err
	}

	if err := validateSecurity(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// validate checks required fields and fills in defaults
func validate(c *models.Config) error {
	if c.Store.Path == "" {
		return ErrMissingStorePath
	}
	if err := security.ValidateFilePath(c.Store.Path); err != nil {
		return models.ConfigError{Message: fmt.Sprintf("invalid store path: %v", err)}
	}

	if c.Channel.Name == "" {
		c.Channel.Name = constants.DefaultChannelName
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return models.ConfigError{Message: fmt.Sprintf("invalid log level %q", c.LogLevel)}
	}

	if c.Server.Port == 0 {
		c.Server.Port = constants.DefaultServerPort
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return models.ConfigError{Message: fmt.Sprintf("invalid server port %d", c.Server.Port)}
	}
	if c.Server.ReadTimeoutSec <= 0 {
		c.Server.ReadTimeoutSec = constants.DefaultServerReadTimeoutSec
	}
	if c.Server.WriteTimeoutSec <= 0 {
		c.Server.WriteTimeoutSec = constants.DefaultServerWriteTimeoutSec
	}
	if c.Server.IdleTimeoutSec <= 0 {
		c.Server.IdleTimeoutSec = constants.DefaultServerIdleTimeoutSec
	}
	if c.Server.SignatureMaxSkewSec <= 0 {
		c.Server.SignatureMaxSkewSec = constants.DefaultSignatureMaxSkewSec
	}

	if c.Store.BusyTimeoutMs <= 0 {
		c.Store.BusyTimeoutMs = constants.DefaultStoreBusyTimeoutMs
	}

	if c.Retry.InitialBackoffMs <= 0 {
		c.Retry.InitialBackoffMs = constants.DefaultRetryBackoffMs
	}
	if c.Retry.MaxBackoffMs <= 0 {
		c.Retry.MaxBackoffMs = constants.DefaultMaxBackoffMs
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = constants.DefaultDatabaseRetryAttempts
	}

	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "smsbridge"
	}
	if err := c.Tracing.Validate(); err != nil {
		return err
	}

	return nil
}

func applyEnvironmentOverrides(c *models.Config) error {
	if path := os.Getenv(EnvStorePath); path != "" {
		c.Store.Path = path
	}

	// Channel secrets should be set via environment variables
	if secret := os.Getenv(EnvChannelSecret); secret != "" {
		c.Channel.Secret = secret
	}

	if level := os.Getenv(EnvLogLevel); level != "" {
		c.LogLevel = level
	}

	if port := os.Getenv(EnvPort); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return models.ConfigError{Message: fmt.Sprintf("invalid %s value %q", EnvPort, port)}
		}
		c.Server.Port = p
	}

	return nil
}

// IsProduction reports whether the process runs with production hardening.
func IsProduction() bool {
	return os.Getenv(EnvEnvironment) == "production"
}

// validateSecurity performs security-specific validation
func validateSecurity(c *models.Config) error {
	if IsProduction() {
		if c.Channel.Secret == "" {
			return models.ConfigError{Message: fmt.Sprintf("channel secret is required in production (set %s environment variable)", EnvChannelSecret)}
		}

		if len(c.Channel.Secret) < constants.MinSecretLength {
			return models.ConfigError{Message: fmt.Sprintf("channel secret must be at least %d characters long", constants.MinSecretLength)}
		}

		if c.LogLevel == "debug" || c.LogLevel == "trace" {
			return models.ConfigError{Message: "debug logging should not be used in production (security risk)"}
		}
	} else if c.Channel.Secret == "" {
		fmt.Fprintf(os.Stderr, "WARNING: channel secret not set. Set %s environment variable to require signed requests.\n", EnvChannelSecret)
	}

	return nil
}
