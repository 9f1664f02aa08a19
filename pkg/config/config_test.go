package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
gateway:
  host: 192.168.1.50
  read_timeout_ms: 1000
  max_resends: 5
database:
  path: /tmp/yeehome-test.db
api:
  port: 9090
logging:
  level: debug
  format: json
mqtt:
  enabled: true
  broker: tcp://broker:1883
  qos: 1
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "192.168.1.50", cfg.Gateway.Host)
	assert.Equal(t, time.Second, cfg.Gateway.ReadTimeoutDuration())
	assert.Equal(t, 5, cfg.Gateway.MaxResends)
	assert.Equal(t, 5*time.Second, cfg.Gateway.ResponseTimeoutDuration(), "unset keys keep defaults")
	assert.Equal(t, "/tmp/yeehome-test.db", cfg.Database.Path)
	assert.Equal(t, "0.0.0.0:9090", cfg.APIAddress())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, "yeehome/progress", cfg.MQTT.Topic)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 8*time.Second, cfg.Gateway.ConnectTimeoutDuration())
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "gateway: [yaml: content"))
	assert.Error(t, err)
}

func TestLoad_ValidationFailure(t *testing.T) {
	_, err := Load(writeConfig(t, "api:\n  port: 0\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api.port")
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("YEEHOME_GATEWAY_HOST", "10.0.0.5")
	t.Setenv("YEEHOME_API_PORT", "8181")
	t.Setenv("YEEHOME_MQTT_ENABLED", "true")
	t.Setenv("YEEHOME_DATABASE_PATH", "/data/yeehome.db")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", cfg.Gateway.Host)
	assert.Equal(t, 8181, cfg.API.Port)
	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, "/data/yeehome.db", cfg.Database.Path)
}

func TestApplyEnvOverrides_BadNumber(t *testing.T) {
	t.Setenv("YEEHOME_API_PORT", "eighty")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YEEHOME_API_PORT")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.API.Port = 70000 }, "api.port"},
		{"zero read timeout", func(c *Config) { c.Gateway.ReadTimeout = 0 }, "read_timeout_ms"},
		{"response shorter than read", func(c *Config) { c.Gateway.ResponseTimeout = 100 }, "response_timeout_ms"},
		{"too many resends", func(c *Config) { c.Gateway.MaxResends = 50 }, "max_resends"},
		{"host with path", func(c *Config) { c.Gateway.Host = "10.0.0.1/24" }, "gateway.host"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"mqtt without topic", func(c *Config) { c.MQTT.Enabled = true; c.MQTT.Topic = "" }, "mqtt.topic"},
		{"mqtt bad qos", func(c *Config) { c.MQTT.Enabled = true; c.MQTT.QoS = 3 }, "mqtt.qos"},
		{"mqtt disabled ignores qos", func(c *Config) { c.MQTT.QoS = 3 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
