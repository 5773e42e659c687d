package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned (wrapped) when validation fails.
// Use errors.Is() to check for it in calling code.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the root configuration structure for a hamqtt service.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Service ServiceConfig `yaml:"service"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServiceConfig identifies the owning service.
type ServiceConfig struct {
	Name string `yaml:"name"`
}

// MQTTConfig contains MQTT broker connection settings.
// It is immutable per connection attempt: the manager reads it at
// connect time and never writes it back.
type MQTTConfig struct {
	Broker        BrokerConfig    `yaml:"broker"`
	Auth          AuthConfig      `yaml:"auth"`
	KeepAlive     int             `yaml:"keepalive"`
	DefaultQoS    int             `yaml:"default_qos"`
	DefaultRetain bool            `yaml:"default_retain"`
	Reconnect     ReconnectConfig `yaml:"reconnect"`
}

// BrokerConfig contains broker endpoint and TLS material paths.
type BrokerConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	TLS       bool   `yaml:"tls"`
	TLSCACert string `yaml:"tls_ca_cert"`
	TLSCert   string `yaml:"tls_cert"`
	TLSKey    string `yaml:"tls_key"`
}

// AuthConfig contains MQTT authentication credentials.
type AuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// ReconnectConfig bounds automatic reconnection.
type ReconnectConfig struct {
	// GraceSeconds is how long after the last successful connect an
	// unsolicited disconnect still triggers an automatic reconnect.
	GraceSeconds int `yaml:"grace_seconds"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads, overrides and validates configuration from a YAML file.
//
// Environment variables of the form HAMQTT_SECTION_KEY take precedence
// over file values (see package documentation for the supported set).
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If the file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with sensible defaults for local development.
func Default() *Config {
	return &Config{
		Service: ServiceConfig{
			Name: "hamqtt",
		},
		MQTT: MQTTConfig{
			Broker: BrokerConfig{
				Host: "localhost",
				Port: 1883,
			},
			KeepAlive:  60,
			DefaultQoS: 1,
			Reconnect: ReconnectConfig{
				GraceSeconds: 10,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: HAMQTT_SECTION_KEY
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("HAMQTT_SERVICE_NAME"); v != "" {
		cfg.Service.Name = v
	}
	if v := os.Getenv("HAMQTT_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("HAMQTT_MQTT_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing HAMQTT_MQTT_PORT %q: %w", v, err)
		}
		cfg.MQTT.Broker.Port = port
	}
	if v := os.Getenv("HAMQTT_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("HAMQTT_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}
	return nil
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failures (wrapping
//     ErrInvalidConfig), or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Service.Name == "" {
		errs = append(errs, "service.name is required")
	}

	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}
	if c.MQTT.DefaultQoS < 0 || c.MQTT.DefaultQoS > 2 {
		errs = append(errs, "mqtt.default_qos must be 0, 1, or 2")
	}
	if c.MQTT.KeepAlive < 0 {
		errs = append(errs, "mqtt.keepalive must not be negative")
	}
	if c.MQTT.Reconnect.GraceSeconds < 0 {
		errs = append(errs, "mqtt.reconnect.grace_seconds must not be negative")
	}

	// TLS materials are optional, but enabling TLS with a client cert
	// requires the matching key (and vice versa).
	if c.MQTT.Broker.TLS {
		if (c.MQTT.Broker.TLSCert == "") != (c.MQTT.Broker.TLSKey == "") {
			errs = append(errs, "mqtt.broker.tls_cert and tls_key must be set together")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}

	return nil
}

// KeepAliveDuration returns the keepalive interval as a Duration.
func (c *MQTTConfig) KeepAliveDuration() time.Duration {
	return time.Duration(c.KeepAlive) * time.Second
}

// GraceWindow returns the reconnect grace window as a Duration.
func (c *MQTTConfig) GraceWindow() time.Duration {
	return time.Duration(c.Reconnect.GraceSeconds) * time.Second
}
