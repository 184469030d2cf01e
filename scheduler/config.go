package scheduler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/devskill-org/nightvision/camera"
	"github.com/devskill-org/nightvision/elevation"
	"github.com/devskill-org/nightvision/geoip"
	"github.com/devskill-org/nightvision/publicip"
	"gopkg.in/yaml.v3"
)

// Config represents the configuration for the night vision scheduler
type Config struct {
	// Scheduler settings
	PollInterval time.Duration `json:"poll_interval"` // Sleep between two camera commands
	DryRun       bool          `json:"dry_run"`       // Log camera commands instead of sending them

	// Location lookup settings
	GeoIPDatabase   string        `json:"geoip_database"`    // Path to the GeoLite2/GeoIP2 City database
	PublicIPURL     string        `json:"public_ip_url"`     // "What is my IP" service answering in plain text
	ElevationURL    string        `json:"elevation_url"`     // Elevation API JSON endpoint
	ElevationAPIKey string        `json:"elevation_api_key"` // Optional elevation API key
	UserAgent       string        `json:"user_agent"`        // Client identification header for outbound lookups
	APITimeout      time.Duration `json:"api_timeout"`       // Timeout for API and camera calls

	// Timezone used for clock times in log lines (empty = database time zone, then Local)
	Timezone string `json:"timezone"`

	// Advanced settings
	StatusPort           int      `json:"status_port"`            // Port for status/metrics endpoint (0 = disabled)
	StatusAllowedOrigins []string `json:"status_allowed_origins"` // Extra browser origins allowed on /api/ws ("*" = any)

	// Camera settings
	Camera camera.Config `json:"camera"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		PollInterval:  60 * time.Second,
		DryRun:        false,
		GeoIPDatabase: geoip.DefaultDatabasePath,
		PublicIPURL:   publicip.DefaultURL,
		ElevationURL:  elevation.DefaultBaseURL,
		UserAgent:     "nightvision/1.0",
		APITimeout:    30 * time.Second,
		StatusPort:    0,
		Camera: camera.Config{
			Driver:        camera.DriverFoscam,
			URL:           "http://192.168.1.20:88",
			Username:      "admin",
			ModbusSlaveID: 1,
		},
	}
}

// LoadConfig loads configuration from a JSON file, or a YAML file when the
// name ends in .yaml or .yml
func LoadConfig(filename string) (*Config, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return LoadConfigFromYAMLReader(file)
	default:
		return LoadConfigFromReader(file)
	}
}

// LoadConfigFromYAMLReader loads configuration written in YAML. Keys and
// value formats are the same as in the JSON file.
func LoadConfigFromYAMLReader(reader io.Reader) (*Config, error) {
	var doc map[string]any
	if err := yaml.NewDecoder(reader).Decode(&doc); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode config YAML: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert config YAML: %w", err)
	}

	return LoadConfigFromReader(bytes.NewReader(data))
}

// LoadConfigFromReader loads configuration from an io.Reader
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	config := DefaultConfig()

	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config JSON: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to a JSON file
func (c *Config) SaveConfig(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	return c.SaveConfigToWriter(file)
}

// SaveConfigToWriter saves the configuration to an io.Writer
func (c *Config) SaveConfigToWriter(writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config JSON: %w", err)
	}

	return nil
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be greater than 0, got: %s", c.PollInterval)
	}

	if c.APITimeout <= 0 {
		return fmt.Errorf("api_timeout must be greater than 0, got: %s", c.APITimeout)
	}

	if c.GeoIPDatabase == "" {
		return fmt.Errorf("geoip_database cannot be empty")
	}

	if c.PublicIPURL == "" {
		return fmt.Errorf("public_ip_url cannot be empty")
	}

	if c.ElevationURL == "" {
		return fmt.Errorf("elevation_url cannot be empty")
	}

	if c.UserAgent == "" {
		return fmt.Errorf("user_agent cannot be empty")
	}

	if c.StatusPort < 0 || c.StatusPort > 65535 {
		return fmt.Errorf("status_port must be between 0 and 65535, got: %d", c.StatusPort)
	}

	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
		}
	}

	// Dry-run replaces the driver, so its settings are not required
	if !c.DryRun {
		if err := c.Camera.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// CameraConfig returns the camera settings with dry-run and timeout applied
func (c *Config) CameraConfig() camera.Config {
	cam := c.Camera
	if c.DryRun {
		cam.Driver = camera.DriverDryRun
	}
	cam.Timeout = c.APITimeout
	return cam
}

// ClockLocation returns the time zone for log clock times. The configured
// timezone wins, then fallback (usually the geolocated zone), then time.Local.
func (c *Config) ClockLocation(fallback string) *time.Location {
	for _, name := range []string{c.Timezone, fallback} {
		if name == "" {
			continue
		}
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return time.Local
}

// MarshalJSON implements custom JSON marshaling to handle durations
func (c *Config) MarshalJSON() ([]byte, error) {
	type Alias Config
	return json.Marshal(&struct {
		*Alias
		PollInterval string `json:"poll_interval"`
		APITimeout   string `json:"api_timeout"`
	}{
		Alias:        (*Alias)(c),
		PollInterval: c.PollInterval.String(),
		APITimeout:   c.APITimeout.String(),
	})
}

// UnmarshalJSON implements custom JSON unmarshaling to handle durations
func (c *Config) UnmarshalJSON(data []byte) error {
	type Alias Config
	aux := &struct {
		*Alias
		PollInterval string `json:"poll_interval"`
		APITimeout   string `json:"api_timeout"`
	}{
		Alias: (*Alias)(c),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if aux.PollInterval != "" {
		if c.PollInterval, err = time.ParseDuration(aux.PollInterval); err != nil {
			return fmt.Errorf("invalid poll_interval: %w", err)
		}
	}

	if aux.APITimeout != "" {
		if c.APITimeout, err = time.ParseDuration(aux.APITimeout); err != nil {
			return fmt.Errorf("invalid api_timeout: %w", err)
		}
	}

	return nil
}

// String returns a string representation of the config with secrets masked
func (c *Config) String() string {
	masked := *c
	if masked.Camera.Password != "" {
		masked.Camera.Password = "********"
	}
	if masked.ElevationAPIKey != "" {
		masked.ElevationAPIKey = "********"
	}
	data, _ := json.MarshalIndent(&masked, "", "  ")
	return string(data)
}
