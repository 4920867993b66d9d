package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a YAML file, applies defaults, expands
// ${ENV_VAR} references in API keys, applies HELIOS_* environment
// overrides, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration file %q: %w", path, err)
	}
	return Parse(data)
}

// Parse parses configuration from YAML bytes. See Load for the full
// loading sequence.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	ApplyDefaults(&cfg)
	expandSecrets(&cfg)
	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// expandSecrets resolves ${ENV_VAR} references in provider API keys.
func expandSecrets(cfg *Config) {
	for name, p := range cfg.Providers {
		if strings.HasPrefix(p.APIKey, "${") && strings.HasSuffix(p.APIKey, "}") {
			p.APIKey = os.Getenv(strings.TrimSuffix(strings.TrimPrefix(p.APIKey, "${"), "}"))
			cfg.Providers[name] = p
		}
	}
}

// applyEnvOverrides applies environment variable overrides using the
// HELIOS_SECTION_FIELD convention, e.g. HELIOS_SERVER_LISTEN_ADDRESS.
func applyEnvOverrides(cfg *Config) {
	// Server
	if val := os.Getenv("HELIOS_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	overrideDuration("HELIOS_SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	overrideDuration("HELIOS_SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	overrideDuration("HELIOS_SERVER_REQUEST_TIMEOUT", &cfg.Server.RequestTimeout)
	overrideDuration("HELIOS_SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	// Providers
	for name, p := range cfg.Providers {
		prefix := "HELIOS_PROVIDER_" + strings.ToUpper(name)
		if val := os.Getenv(prefix + "_API_KEY"); val != "" {
			p.APIKey = val
		}
		if val := os.Getenv(prefix + "_BASE_URL"); val != "" {
			p.BaseURL = val
		}
		if val := os.Getenv(prefix + "_MODEL"); val != "" {
			p.Model = val
		}
		cfg.Providers[name] = p
	}

	// Rate limit
	overrideInt("HELIOS_RATE_LIMIT_REQUESTS_PER_MINUTE", &cfg.RateLimit.RequestsPerMinute)
	if val := os.Getenv("HELIOS_RATE_LIMIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.RateLimit.Enabled = &b
		}
	}

	// Retry
	overrideInt("HELIOS_RETRY_MAX_RETRIES", &cfg.Retry.MaxRetries)
	overrideDuration("HELIOS_RETRY_BASE_DELAY", &cfg.Retry.BaseDelay)
	overrideDuration("HELIOS_RETRY_MAX_DELAY", &cfg.Retry.MaxDelay)

	// Telemetry
	if val := os.Getenv("HELIOS_LOG_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("HELIOS_LOG_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("HELIOS_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
}

func overrideDuration(key string, dst *time.Duration) {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}

func overrideInt(key string, dst *int) {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}
