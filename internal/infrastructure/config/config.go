package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// NamingScheme selects the controller endpoint family. Firmware revisions of
// the local API expose the same resources under either name; a deployment
// uses exactly one.
type NamingScheme string

const (
	// NamingZones uses the /zones listing and /zones/{id}/set commands.
	NamingZones NamingScheme = "zones"

	// NamingThermostats uses the /thermostats listing and /thermostats/{id}/set commands.
	NamingThermostats NamingScheme = "thermostats"
)

// Config is the root configuration structure for the Tado sync daemon.
// All configuration is loaded from YAML; the controller token can be
// overridden by the TADOSYNC_TOKEN environment variable.
type Config struct {
	Controller ControllerConfig `yaml:"controller"`
	API        APIConfig        `yaml:"api"`
	WebSocket  WebSocketConfig  `yaml:"websocket"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	InfluxDB   InfluxDBConfig   `yaml:"influxdb"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ControllerConfig contains connection settings for the local thermostat
// controller.
type ControllerConfig struct {
	// BaseURL is the controller root, e.g. "http://tado-bridge.local:8080".
	BaseURL string `yaml:"base_url"`

	// Token is the bearer token attached to every request.
	Token string `yaml:"token"`

	// Naming selects the endpoint family (zones or thermostats).
	Naming NamingScheme `yaml:"naming"`

	// PollIntervalSeconds is the fallback full-poll cadence.
	PollIntervalSeconds int `yaml:"poll_interval"`

	// RequestTimeoutSeconds bounds poll and command requests end to end.
	RequestTimeoutSeconds int `yaml:"request_timeout"`

	// ConnectTimeoutSeconds bounds connection establishment for the event
	// stream. The stream itself carries no total deadline.
	ConnectTimeoutSeconds int `yaml:"connect_timeout"`

	// SettleDelayMillis is how long a successful command waits before
	// forcing a refresh, giving the controller time to apply the change.
	SettleDelayMillis int `yaml:"settle_delay"`

	// AcceptInterim100 treats the controller's nonstandard interim 100
	// status as command success. Firmware-specific behaviour.
	AcceptInterim100 bool `yaml:"accept_interim_100"`

	Stream StreamConfig `yaml:"stream"`
}

// StreamConfig contains event stream reconnection settings.
type StreamConfig struct {
	InitialBackoffSeconds int `yaml:"initial_backoff"`
	MaxBackoffSeconds     int `yaml:"max_backoff"`
}

// APIConfig contains HTTP status API server settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// WebSocketConfig contains WebSocket push settings.
type WebSocketConfig struct {
	MaxMessageSize int `yaml:"max_message_size"`
	PingInterval   int `yaml:"ping_interval"`
	PongTimeout    int `yaml:"pong_timeout"`
}

// MQTTConfig contains settings for the optional MQTT state bridge.
type MQTTConfig struct {
	Enabled     bool             `yaml:"enabled"`
	Broker      MQTTBrokerConfig `yaml:"broker"`
	Auth        MQTTAuthConfig   `yaml:"auth"`
	QoS         int              `yaml:"qos"`
	TopicPrefix string           `yaml:"topic_prefix"`
	Reconnect   MQTTReconnect    `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnect contains MQTT reconnection settings.
type MQTTReconnect struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains settings for optional telemetry recording.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Defaults applied when fields are omitted from the YAML file.
const (
	DefaultPollIntervalSeconds   = 300
	DefaultRequestTimeoutSeconds = 10
	DefaultConnectTimeoutSeconds = 10
	DefaultSettleDelayMillis     = 1000
	DefaultInitialBackoffSeconds = 5
	DefaultMaxBackoffSeconds     = 60
	DefaultAPIPort               = 8099
	DefaultTopicPrefix           = "tadosync"
)

// tokenEnvVar overrides controller.token so the secret can stay out of the
// config file.
const tokenEnvVar = "TADOSYNC_TOKEN"

// Load reads, parses, and validates the YAML configuration file.
//
// Defaults are applied before validation, so a minimal file containing only
// the controller base URL and token is valid.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if token := os.Getenv(tokenEnvVar); token != "" {
		cfg.Controller.Token = token
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills zero-valued fields with sensible defaults.
func (c *Config) applyDefaults() {
	if c.Controller.Naming == "" {
		c.Controller.Naming = NamingZones
	}
	if c.Controller.PollIntervalSeconds == 0 {
		c.Controller.PollIntervalSeconds = DefaultPollIntervalSeconds
	}
	if c.Controller.RequestTimeoutSeconds == 0 {
		c.Controller.RequestTimeoutSeconds = DefaultRequestTimeoutSeconds
	}
	if c.Controller.ConnectTimeoutSeconds == 0 {
		c.Controller.ConnectTimeoutSeconds = DefaultConnectTimeoutSeconds
	}
	if c.Controller.SettleDelayMillis == 0 {
		c.Controller.SettleDelayMillis = DefaultSettleDelayMillis
	}
	if c.Controller.Stream.InitialBackoffSeconds == 0 {
		c.Controller.Stream.InitialBackoffSeconds = DefaultInitialBackoffSeconds
	}
	if c.Controller.Stream.MaxBackoffSeconds == 0 {
		c.Controller.Stream.MaxBackoffSeconds = DefaultMaxBackoffSeconds
	}

	if c.API.Host == "" {
		c.API.Host = "127.0.0.1"
	}
	if c.API.Port == 0 {
		c.API.Port = DefaultAPIPort
	}
	if c.API.Timeouts.Read == 0 {
		c.API.Timeouts.Read = 15
	}
	if c.API.Timeouts.Write == 0 {
		c.API.Timeouts.Write = 15
	}
	if c.API.Timeouts.Idle == 0 {
		c.API.Timeouts.Idle = 60
	}

	if c.WebSocket.MaxMessageSize == 0 {
		c.WebSocket.MaxMessageSize = 4096
	}
	if c.WebSocket.PingInterval == 0 {
		c.WebSocket.PingInterval = 30
	}
	if c.WebSocket.PongTimeout == 0 {
		c.WebSocket.PongTimeout = 10
	}

	if c.MQTT.Broker.Port == 0 {
		c.MQTT.Broker.Port = 1883
	}
	if c.MQTT.Broker.ClientID == "" {
		c.MQTT.Broker.ClientID = "tadosync-core"
	}
	if c.MQTT.TopicPrefix == "" {
		c.MQTT.TopicPrefix = DefaultTopicPrefix
	}
	if c.MQTT.Reconnect.InitialDelay == 0 {
		c.MQTT.Reconnect.InitialDelay = 1
	}
	if c.MQTT.Reconnect.MaxDelay == 0 {
		c.MQTT.Reconnect.MaxDelay = 60
	}

	if c.InfluxDB.BatchSize == 0 {
		c.InfluxDB.BatchSize = 100
	}
	if c.InfluxDB.FlushInterval == 0 {
		c.InfluxDB.FlushInterval = 10
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
}

// Validate enforces required invariants beyond YAML typing.
func (c *Config) Validate() error {
	if c.Controller.BaseURL == "" {
		return fmt.Errorf("controller.base_url is required")
	}
	if !strings.HasPrefix(c.Controller.BaseURL, "http://") && !strings.HasPrefix(c.Controller.BaseURL, "https://") {
		return fmt.Errorf("controller.base_url must start with http:// or https://")
	}
	if c.Controller.Token == "" {
		return fmt.Errorf("controller.token is required (or set %s)", tokenEnvVar)
	}

	switch c.Controller.Naming {
	case NamingZones, NamingThermostats:
	default:
		return fmt.Errorf("controller.naming must be %q or %q, got %q",
			NamingZones, NamingThermostats, c.Controller.Naming)
	}

	if c.Controller.PollIntervalSeconds < 0 {
		return fmt.Errorf("controller.poll_interval must be positive")
	}
	if c.Controller.Stream.InitialBackoffSeconds > c.Controller.Stream.MaxBackoffSeconds {
		return fmt.Errorf("controller.stream.initial_backoff must not exceed max_backoff")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("api.port must be between 1 and 65535, got %d", c.API.Port)
	}

	if c.MQTT.Enabled {
		if c.MQTT.Broker.Host == "" {
			return fmt.Errorf("mqtt.broker.host is required when mqtt is enabled")
		}
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			return fmt.Errorf("mqtt.qos must be 0, 1, or 2, got %d", c.MQTT.QoS)
		}
	}

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			return fmt.Errorf("influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Org == "" || c.InfluxDB.Bucket == "" {
			return fmt.Errorf("influxdb.org and influxdb.bucket are required when influxdb is enabled")
		}
	}

	return nil
}
