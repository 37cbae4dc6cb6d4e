package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
controller:
  base_url: "http://tado-bridge.local:8080"
  token: "secret-token"
  naming: "thermostats"
  poll_interval: 120
api:
  enabled: true
  port: 9000
logging:
  level: "debug"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Controller.BaseURL != "http://tado-bridge.local:8080" {
		t.Errorf("Controller.BaseURL = %q, want %q", cfg.Controller.BaseURL, "http://tado-bridge.local:8080")
	}
	if cfg.Controller.Naming != NamingThermostats {
		t.Errorf("Controller.Naming = %q, want %q", cfg.Controller.Naming, NamingThermostats)
	}
	if cfg.Controller.PollIntervalSeconds != 120 {
		t.Errorf("Controller.PollIntervalSeconds = %d, want 120", cfg.Controller.PollIntervalSeconds)
	}
	if cfg.API.Port != 9000 {
		t.Errorf("API.Port = %d, want 9000", cfg.API.Port)
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	content := `
controller:
  base_url: "http://10.0.0.5:8080"
  token: "secret"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Controller.Naming != NamingZones {
		t.Errorf("default Naming = %q, want %q", cfg.Controller.Naming, NamingZones)
	}
	if cfg.Controller.PollIntervalSeconds != DefaultPollIntervalSeconds {
		t.Errorf("default PollIntervalSeconds = %d, want %d",
			cfg.Controller.PollIntervalSeconds, DefaultPollIntervalSeconds)
	}
	if cfg.Controller.Stream.InitialBackoffSeconds != DefaultInitialBackoffSeconds {
		t.Errorf("default InitialBackoffSeconds = %d, want %d",
			cfg.Controller.Stream.InitialBackoffSeconds, DefaultInitialBackoffSeconds)
	}
	if cfg.Controller.Stream.MaxBackoffSeconds != DefaultMaxBackoffSeconds {
		t.Errorf("default MaxBackoffSeconds = %d, want %d",
			cfg.Controller.Stream.MaxBackoffSeconds, DefaultMaxBackoffSeconds)
	}
	if cfg.MQTT.TopicPrefix != DefaultTopicPrefix {
		t.Errorf("default TopicPrefix = %q, want %q", cfg.MQTT.TopicPrefix, DefaultTopicPrefix)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestLoad_TokenFromEnvironment(t *testing.T) {
	content := `
controller:
  base_url: "http://10.0.0.5:8080"
`
	t.Setenv("TADOSYNC_TOKEN", "env-token")

	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Controller.Token != "env-token" {
		t.Errorf("Controller.Token = %q, want %q", cfg.Controller.Token, "env-token")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "controller: [not: valid"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		cfg := Config{}
		cfg.Controller.BaseURL = "http://localhost:8080"
		cfg.Controller.Token = "t"
		cfg.applyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing base_url", func(c *Config) { c.Controller.BaseURL = "" }, true},
		{"base_url without scheme", func(c *Config) { c.Controller.BaseURL = "tado-bridge.local" }, true},
		{"missing token", func(c *Config) { c.Controller.Token = "" }, true},
		{"unknown naming scheme", func(c *Config) { c.Controller.Naming = "radiators" }, true},
		{"backoff initial above max", func(c *Config) {
			c.Controller.Stream.InitialBackoffSeconds = 120
		}, true},
		{"api port out of range", func(c *Config) { c.API.Port = 70000 }, true},
		{"mqtt enabled without host", func(c *Config) { c.MQTT.Enabled = true }, true},
		{"mqtt invalid qos", func(c *Config) {
			c.MQTT.Enabled = true
			c.MQTT.Broker.Host = "localhost"
			c.MQTT.QoS = 3
		}, true},
		{"influx enabled without url", func(c *Config) { c.InfluxDB.Enabled = true }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
