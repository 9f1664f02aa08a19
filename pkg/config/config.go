// Package config loads yeehome configuration from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Gateway  GatewayConfig  `yaml:"gateway"`
	Database DatabaseConfig `yaml:"database"`
	API      APIConfig      `yaml:"api"`
	Logging  LoggingConfig  `yaml:"logging"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
}

// GatewayConfig controls discovery and the control session. Timeouts are in
// milliseconds.
type GatewayConfig struct {
	// Host skips discovery when set.
	Host              string `yaml:"host"`
	BroadcastAddress  string `yaml:"broadcast_address"`
	DiscoveryTimeout  int    `yaml:"discovery_timeout_ms"`
	ConnectTimeout    int    `yaml:"connect_timeout_ms"`
	ReadTimeout       int    `yaml:"read_timeout_ms"`
	ResponseTimeout   int    `yaml:"response_timeout_ms"`
	MaxResends        int    `yaml:"max_resends"`
	AutoConnect       bool   `yaml:"auto_connect"`
	PreferCachedNodes bool   `yaml:"prefer_cached_topology"`
}

// DatabaseConfig contains SQLite settings. An empty path selects the
// per-user default location.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// APIConfig contains the HTTP listener settings.
type APIConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// LoggingConfig contains logger settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MQTTConfig configures the optional MQTT progress sink.
type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Topic    string `yaml:"topic"`
	QoS      int    `yaml:"qos"`
}

// Load reads the YAML file at path over the defaults, applies YEEHOME_*
// environment overrides and validates the result. An empty path or a
// missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Gateway: GatewayConfig{
			BroadcastAddress:  "255.255.255.255",
			DiscoveryTimeout:  5000,
			ConnectTimeout:    8000,
			ReadTimeout:       2000,
			ResponseTimeout:   5000,
			MaxResends:        3,
			AutoConnect:       true,
			PreferCachedNodes: true,
		},
		API: APIConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			CORSOrigins: []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		MQTT: MQTTConfig{
			Broker:   "tcp://localhost:1883",
			ClientID: "yeehome",
			Topic:    "yeehome/progress",
			QoS:      0,
		},
	}
}

// applyEnvOverrides applies YEEHOME_SECTION_KEY variables.
func applyEnvOverrides(cfg *Config) error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	var errs []string
	num := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %q is not a number", key, v))
				return
			}
			*dst = n
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: %q is not a boolean", key, v))
				return
			}
			*dst = b
		}
	}

	str("YEEHOME_GATEWAY_HOST", &cfg.Gateway.Host)
	str("YEEHOME_GATEWAY_BROADCAST_ADDRESS", &cfg.Gateway.BroadcastAddress)
	num("YEEHOME_GATEWAY_MAX_RESENDS", &cfg.Gateway.MaxResends)
	flag("YEEHOME_GATEWAY_AUTO_CONNECT", &cfg.Gateway.AutoConnect)

	str("YEEHOME_DATABASE_PATH", &cfg.Database.Path)

	str("YEEHOME_API_HOST", &cfg.API.Host)
	num("YEEHOME_API_PORT", &cfg.API.Port)

	str("YEEHOME_LOGGING_LEVEL", &cfg.Logging.Level)
	str("YEEHOME_LOGGING_FORMAT", &cfg.Logging.Format)

	flag("YEEHOME_MQTT_ENABLED", &cfg.MQTT.Enabled)
	str("YEEHOME_MQTT_BROKER", &cfg.MQTT.Broker)
	str("YEEHOME_MQTT_USERNAME", &cfg.MQTT.Username)
	str("YEEHOME_MQTT_PASSWORD", &cfg.MQTT.Password)
	str("YEEHOME_MQTT_TOPIC", &cfg.MQTT.Topic)

	if len(errs) > 0 {
		return fmt.Errorf("environment overrides: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if strings.ContainsAny(c.Gateway.Host, " /") {
		errs = append(errs, "gateway.host must be a bare IP or hostname")
	}
	if c.Gateway.DiscoveryTimeout <= 0 {
		errs = append(errs, "gateway.discovery_timeout_ms must be positive")
	}
	if c.Gateway.ConnectTimeout <= 0 {
		errs = append(errs, "gateway.connect_timeout_ms must be positive")
	}
	if c.Gateway.ReadTimeout <= 0 {
		errs = append(errs, "gateway.read_timeout_ms must be positive")
	}
	if c.Gateway.ResponseTimeout < c.Gateway.ReadTimeout {
		errs = append(errs, "gateway.response_timeout_ms must not be shorter than read_timeout_ms")
	}
	if c.Gateway.MaxResends < 0 || c.Gateway.MaxResends > 10 {
		errs = append(errs, "gateway.max_resends must be between 0 and 10")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		errs = append(errs, "logging.format must be console or json")
	}

	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" {
			errs = append(errs, "mqtt.broker is required when mqtt is enabled")
		}
		if c.MQTT.Topic == "" {
			errs = append(errs, "mqtt.topic is required when mqtt is enabled")
		}
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, "mqtt.qos must be 0, 1, or 2")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// APIAddress returns the HTTP listen address.
func (c *Config) APIAddress() string {
	return net.JoinHostPort(c.API.Host, strconv.Itoa(c.API.Port))
}

// DiscoveryTimeoutDuration returns the discovery wait as a Duration.
func (g GatewayConfig) DiscoveryTimeoutDuration() time.Duration {
	return ms(g.DiscoveryTimeout)
}

// ConnectTimeoutDuration returns the TCP connect timeout as a Duration.
func (g GatewayConfig) ConnectTimeoutDuration() time.Duration {
	return ms(g.ConnectTimeout)
}

// ReadTimeoutDuration returns the per-read timeout as a Duration.
func (g GatewayConfig) ReadTimeoutDuration() time.Duration {
	return ms(g.ReadTimeout)
}

// ResponseTimeoutDuration returns the overall receive deadline as a Duration.
func (g GatewayConfig) ResponseTimeoutDuration() time.Duration {
	return ms(g.ResponseTimeout)
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
