package scheduler

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/devskill-org/nightvision/camera"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.PollInterval != 60*time.Second {
		t.Errorf("Expected poll interval 60s, got %v", config.PollInterval)
	}
	if config.APITimeout != 30*time.Second {
		t.Errorf("Expected api timeout 30s, got %v", config.APITimeout)
	}
	if config.Camera.Driver != camera.DriverFoscam {
		t.Errorf("Expected foscam driver, got %s", config.Camera.Driver)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

func TestLoadConfigFromReader(t *testing.T) {
	input := `{
		"poll_interval": "5m",
		"api_timeout": "10s",
		"timezone": "Europe/Riga",
		"status_port": 8080,
		"camera": {
			"driver": "modbus",
			"modbus_address": "192.168.1.50:502",
			"modbus_slave_id": 3,
			"coil": 2
		}
	}`

	config, err := LoadConfigFromReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadConfigFromReader failed: %v", err)
	}

	if config.PollInterval != 5*time.Minute {
		t.Errorf("Expected 5m, got %v", config.PollInterval)
	}
	if config.APITimeout != 10*time.Second {
		t.Errorf("Expected 10s, got %v", config.APITimeout)
	}
	if config.Camera.Driver != camera.DriverModbus || config.Camera.ModbusSlaveID != 3 || config.Camera.Coil != 2 {
		t.Errorf("Unexpected camera config: %+v", config.Camera)
	}
	// unset fields keep their defaults
	if config.UserAgent != "nightvision/1.0" {
		t.Errorf("Expected default user agent, got %s", config.UserAgent)
	}
}

func TestLoadConfigFromReaderErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "malformed json", input: `{"poll_interval": `},
		{name: "bad duration", input: `{"poll_interval": "soon"}`},
		{name: "zero interval", input: `{"poll_interval": "0s"}`},
		{name: "negative port", input: `{"status_port": -1}`},
		{name: "bad timezone", input: `{"timezone": "Mars/Olympus"}`},
		{name: "unknown driver", input: `{"camera": {"driver": "onvif"}}`},
		{name: "modbus without address", input: `{"camera": {"driver": "modbus"}}`},
		{name: "empty user agent", input: `{"user_agent": ""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfigFromReader(strings.NewReader(tt.input)); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestValidateDryRunSkipsCamera(t *testing.T) {
	config := DefaultConfig()
	config.Camera = camera.Config{Driver: "unknown"}
	if err := config.Validate(); err == nil {
		t.Fatal("Expected invalid camera to fail validation")
	}

	config.DryRun = true
	if err := config.Validate(); err != nil {
		t.Errorf("Dry-run config should ignore camera settings: %v", err)
	}

	cam := config.CameraConfig()
	if cam.Driver != camera.DriverDryRun {
		t.Errorf("Expected dry-run driver, got %s", cam.Driver)
	}
	if cam.Timeout != config.APITimeout {
		t.Errorf("Expected camera timeout %v, got %v", config.APITimeout, cam.Timeout)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	config := DefaultConfig()
	config.PollInterval = 90 * time.Second
	config.Camera.Password = "secret"

	path := filepath.Join(t.TempDir(), "config.json")
	if err := config.SaveConfig(path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.Contains(data, []byte(`"poll_interval": "1m30s"`)) {
		t.Errorf("Expected human readable duration, got:\n%s", data)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.PollInterval != config.PollInterval {
		t.Errorf("Expected %v, got %v", config.PollInterval, loaded.PollInterval)
	}
	if loaded.Camera.Password != "secret" {
		t.Error("Password should survive a save/load cycle")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestConfigStringMasksSecrets(t *testing.T) {
	config := DefaultConfig()
	config.Camera.Password = "hunter2"
	config.ElevationAPIKey = "AIza-secret"

	s := config.String()
	if strings.Contains(s, "hunter2") || strings.Contains(s, "AIza-secret") {
		t.Errorf("Secrets leaked in String():\n%s", s)
	}
	if config.Camera.Password != "hunter2" {
		t.Error("String() must not modify the config")
	}
}

func TestClockLocation(t *testing.T) {
	config := DefaultConfig()

	if loc := config.ClockLocation(""); loc != time.Local {
		t.Errorf("Expected time.Local, got %v", loc)
	}
	if loc := config.ClockLocation("Europe/London"); loc.String() != "Europe/London" {
		t.Errorf("Expected fallback zone, got %v", loc)
	}
	if loc := config.ClockLocation("Not/AZone"); loc != time.Local {
		t.Errorf("Expected time.Local for unknown zone, got %v", loc)
	}

	config.Timezone = "Asia/Tokyo"
	if loc := config.ClockLocation("Europe/London"); loc.String() != "Asia/Tokyo" {
		t.Errorf("Configured timezone should win, got %v", loc)
	}
}

func TestLoadConfigYAML(t *testing.T) {
	input := `
poll_interval: 2m
dry_run: true
timezone: Europe/Riga
camera:
  driver: foscam
  url: http://10.0.0.5:88
  username: viewer
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(input), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.PollInterval != 2*time.Minute {
		t.Errorf("Expected 2m, got %v", config.PollInterval)
	}
	if !config.DryRun {
		t.Error("Expected dry_run true")
	}
	if config.Camera.URL != "http://10.0.0.5:88" || config.Camera.Username != "viewer" {
		t.Errorf("Unexpected camera config: %+v", config.Camera)
	}
	if config.APITimeout != 30*time.Second {
		t.Errorf("Expected default api timeout, got %v", config.APITimeout)
	}
}

func TestLoadConfigFromYAMLReaderErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "malformed yaml", input: "poll_interval: [1m"},
		{name: "numeric duration", input: "poll_interval: 60"},
		{name: "invalid driver", input: "camera:\n  driver: onvif\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfigFromYAMLReader(strings.NewReader(tt.input)); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}

	// an empty document keeps the defaults
	config, err := LoadConfigFromYAMLReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Empty YAML should load defaults: %v", err)
	}
	if config.PollInterval != 60*time.Second {
		t.Errorf("Expected default poll interval, got %v", config.PollInterval)
	}
}
