package launchpad

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default device discovery markers. The product marker selects the device
// family; the port marker selects its MIDI port (as opposed to the DAW
// control port the same product exposes).
const (
	DefaultProductMatch = "Launchpad"
	DefaultPortMatch    = " MIDI "
)

// Config is the root configuration for the panel bridge.
// Loaded from YAML with environment variable overrides.
type Config struct {
	Panel   PanelSettings  `yaml:"panel"`
	Device  DeviceSettings `yaml:"device"`
	Timing  TimingSettings `yaml:"timing"`
	MQTT    MQTTSettings   `yaml:"mqtt"`
	Layout  LayoutSettings `yaml:"layout"`
	Logging LoggingConfig  `yaml:"logging"`
}

// PanelSettings contains bridge identity and operational settings.
type PanelSettings struct {
	// ID uniquely identifies this panel instance.
	// Used in MQTT client ID and health reporting.
	ID string `yaml:"id"`

	// HealthInterval is how often to publish health status (seconds).
	// Default: 30 seconds.
	HealthInterval int `yaml:"health_interval"`
}

// DeviceSettings selects which MIDI ports belong to the panel.
type DeviceSettings struct {
	// ProductMatch is the substring identifying the device family in
	// port names. Default: "Launchpad".
	ProductMatch string `yaml:"product_match"`

	// PortMatch is the substring identifying the device's MIDI port,
	// distinguishing it from the DAW control port. Default: " MIDI ".
	PortMatch string `yaml:"port_match"`
}

// TimingSettings contains the event loop's timing parameters.
type TimingSettings struct {
	// DebounceMs is the per-button debounce window (milliseconds).
	// A second press of the same button within this window is ignored.
	// Default: 1000.
	DebounceMs int `yaml:"debounce_ms"`

	// PollTimeoutMs is the event-queue wait per loop iteration
	// (milliseconds). Bounds shutdown latency. Default: 100.
	PollTimeoutMs int `yaml:"poll_timeout_ms"`

	// DiscoveryBackoffMs is the delay between discovery attempts while
	// no device is present (milliseconds). Default: 1000.
	DiscoveryBackoffMs int `yaml:"discovery_backoff_ms"`
}

// MQTTSettings contains MQTT broker connection settings.
type MQTTSettings struct {
	// Broker is the MQTT broker URL.
	// Example: "tcp://localhost:1883"
	Broker string `yaml:"broker"`

	// ClientID is the MQTT client identifier.
	// Should be unique per panel instance.
	// Default: panel.id + "-mqtt"
	ClientID string `yaml:"client_id"`

	// Username for MQTT authentication (optional).
	Username string `yaml:"username"`

	// Password for MQTT authentication (optional).
	// WARNING: Never log this value. Use String() method for safe logging.
	Password string `yaml:"password"`

	// QoS is the MQTT quality of service level (0, 1, or 2).
	// Default: 1 (at least once delivery).
	QoS int `yaml:"qos"`

	// KeepAlive is the MQTT keep-alive interval (seconds).
	// Default: 60 seconds.
	KeepAlive int `yaml:"keep_alive"`
}

// String returns a string representation with password masked.
// Use this for logging to prevent credential exposure.
func (m MQTTSettings) String() string {
	password := ""
	if m.Password != "" {
		password = "[REDACTED]"
	}
	return fmt.Sprintf("MQTTSettings{Broker:%q, ClientID:%q, Username:%q, Password:%s, QoS:%d, KeepAlive:%d}",
		m.Broker, m.ClientID, m.Username, password, m.QoS, m.KeepAlive)
}

// MarshalJSON implements json.Marshaler to redact password in JSON output.
// This prevents accidental password exposure in logs or API responses.
func (m MQTTSettings) MarshalJSON() ([]byte, error) {
	type redacted MQTTSettings
	safe := redacted(m)
	if safe.Password != "" {
		safe.Password = "[REDACTED]"
	}
	return json.Marshal(safe)
}

// LayoutSettings locates the trigger layout document.
type LayoutSettings struct {
	// File is the path to the JSON layout document. Optional: an absent
	// file starts the panel with no triggers and the stock overlay.
	File string `yaml:"file"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	// Default: info
	Level string `yaml:"level"`

	// Format is the log output format: json or text.
	// Default: json
	Format string `yaml:"format"`
}

// LoadConfig reads configuration from a YAML file.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: PADBRIDGE_SECTION_KEY
// For example: PADBRIDGE_MQTT_BROKER, PADBRIDGE_LAYOUT_FILE
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func LoadConfig(path string) (*Config, error) {
	// Start with defaults
	cfg := DefaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Panel: PanelSettings{
			ID:             "padbridge-01",
			HealthInterval: 30,
		},
		Device: DeviceSettings{
			ProductMatch: DefaultProductMatch,
			PortMatch:    DefaultPortMatch,
		},
		Timing: TimingSettings{
			DebounceMs:         1000,
			PollTimeoutMs:      100,
			DiscoveryBackoffMs: 1000,
		},
		MQTT: MQTTSettings{
			Broker:    "tcp://localhost:1883",
			QoS:       1,
			KeepAlive: 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: PADBRIDGE_SECTION_KEY
// (PADBRIDGE_ID is the one exception, identifying the panel). Integer
// variables that fail to parse are ignored; Validate still range-checks
// whatever survives.
func applyEnvOverrides(cfg *Config) {
	// Panel
	if v := os.Getenv("PADBRIDGE_ID"); v != "" {
		cfg.Panel.ID = v
	}
	envInt("PADBRIDGE_PANEL_HEALTH_INTERVAL", &cfg.Panel.HealthInterval)

	// Device
	if v := os.Getenv("PADBRIDGE_DEVICE_PRODUCT_MATCH"); v != "" {
		cfg.Device.ProductMatch = v
	}
	if v := os.Getenv("PADBRIDGE_DEVICE_PORT_MATCH"); v != "" {
		cfg.Device.PortMatch = v
	}

	// Timing
	envInt("PADBRIDGE_TIMING_DEBOUNCE_MS", &cfg.Timing.DebounceMs)
	envInt("PADBRIDGE_TIMING_POLL_TIMEOUT_MS", &cfg.Timing.PollTimeoutMs)
	envInt("PADBRIDGE_TIMING_DISCOVERY_BACKOFF_MS", &cfg.Timing.DiscoveryBackoffMs)

	// MQTT
	if v := os.Getenv("PADBRIDGE_MQTT_BROKER"); v != "" {
		cfg.MQTT.Broker = v
	}
	if v := os.Getenv("PADBRIDGE_MQTT_CLIENT_ID"); v != "" {
		cfg.MQTT.ClientID = v
	}
	if v := os.Getenv("PADBRIDGE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Username = v
	}
	if v := os.Getenv("PADBRIDGE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Password = v
	}
	envInt("PADBRIDGE_MQTT_QOS", &cfg.MQTT.QoS)
	envInt("PADBRIDGE_MQTT_KEEP_ALIVE", &cfg.MQTT.KeepAlive)

	// Layout
	if v := os.Getenv("PADBRIDGE_LAYOUT_FILE"); v != "" {
		cfg.Layout.File = v
	}

	// Logging
	if v := os.Getenv("PADBRIDGE_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("PADBRIDGE_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

// envInt overrides dst with the named variable when it parses as an integer.
func envInt(name string, dst *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	errs = append(errs, c.validatePanel()...)
	errs = append(errs, c.validateDevice()...)
	errs = append(errs, c.validateTiming()...)
	errs = append(errs, c.validateMQTT()...)
	errs = append(errs, c.validateLogging()...)

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// validatePanel validates panel identity settings.
func (c *Config) validatePanel() []string {
	var errs []string
	if c.Panel.ID == "" {
		errs = append(errs, "panel.id is required")
	}
	if c.Panel.HealthInterval < 1 {
		errs = append(errs, "panel.health_interval must be at least 1 second")
	}
	return errs
}

// validateDevice validates device discovery settings.
func (c *Config) validateDevice() []string {
	var errs []string
	if c.Device.ProductMatch == "" {
		errs = append(errs, "device.product_match is required")
	}
	if c.Device.PortMatch == "" {
		errs = append(errs, "device.port_match is required")
	}
	return errs
}

// validateTiming validates event loop timing settings.
func (c *Config) validateTiming() []string {
	var errs []string
	if c.Timing.DebounceMs < 0 {
		errs = append(errs, "timing.debounce_ms must not be negative")
	}
	if c.Timing.PollTimeoutMs < 1 {
		errs = append(errs, "timing.poll_timeout_ms must be at least 1 millisecond")
	}
	if c.Timing.DiscoveryBackoffMs < 1 {
		errs = append(errs, "timing.discovery_backoff_ms must be at least 1 millisecond")
	}
	return errs
}

// validateMQTT validates MQTT broker settings.
func (c *Config) validateMQTT() []string {
	var errs []string
	if c.MQTT.Broker == "" {
		errs = append(errs, "mqtt.broker is required")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	return errs
}

// validateLogging validates logging settings.
func (c *Config) validateLogging() []string {
	var errs []string

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		errs = append(errs, fmt.Sprintf("logging.level %q is invalid (use debug, info, warn, or error)", c.Logging.Level))
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		errs = append(errs, fmt.Sprintf("logging.format %q is invalid (use json or text)", c.Logging.Format))
	}

	return errs
}

// GetDebounce returns the debounce window as a Duration.
func (c *Config) GetDebounce() time.Duration {
	return time.Duration(c.Timing.DebounceMs) * time.Millisecond
}

// GetPollTimeout returns the event-queue wait as a Duration.
func (c *Config) GetPollTimeout() time.Duration {
	return time.Duration(c.Timing.PollTimeoutMs) * time.Millisecond
}

// GetDiscoveryBackoff returns the discovery retry delay as a Duration.
func (c *Config) GetDiscoveryBackoff() time.Duration {
	return time.Duration(c.Timing.DiscoveryBackoffMs) * time.Millisecond
}

// GetHealthInterval returns the health reporting interval as a Duration.
func (c *Config) GetHealthInterval() time.Duration {
	return time.Duration(c.Panel.HealthInterval) * time.Second
}

// GetMQTTClientID returns the MQTT client ID, defaulting to panel ID if not set.
func (c *Config) GetMQTTClientID() string {
	if c.MQTT.ClientID != "" {
		return c.MQTT.ClientID
	}
	return c.Panel.ID + "-mqtt"
}
