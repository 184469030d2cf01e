// Package camera switches the infrared (night-vision) illumination of a camera.
package camera

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Driver names accepted in Config.Driver
const (
	DriverFoscam = "foscam"
	DriverModbus = "modbus"
	DriverDryRun = "dry-run"
)

// NightVision is a device whose infrared mode can be set.
// Setting the mode it is already in must be harmless.
type NightVision interface {
	SetNightVision(ctx context.Context, on bool) error
	Close() error
}

// StateReader is implemented by drivers that can report the current mode
type StateReader interface {
	NightVisionState(ctx context.Context) (bool, error)
}

// Config selects and configures a driver
type Config struct {
	Driver   string        `json:"driver"`   // foscam, modbus or dry-run
	URL      string        `json:"url"`      // Foscam base URL, e.g. http://192.168.1.20:88
	Username string        `json:"username"` // Foscam CGI user
	Password string        `json:"password"` // Foscam CGI password
	Timeout  time.Duration `json:"-"`        // HTTP / Modbus timeout, set from api_timeout

	ModbusAddress string `json:"modbus_address"`  // relay board address (IP:PORT)
	ModbusSlaveID byte   `json:"modbus_slave_id"` // relay board unit id
	Coil          uint16 `json:"coil"`            // coil driving the IR illuminator
}

// Validate checks the driver-specific settings
func (c Config) Validate() error {
	switch c.Driver {
	case DriverFoscam:
		if c.URL == "" {
			return fmt.Errorf("camera.url cannot be empty for driver %s", c.Driver)
		}
	case DriverModbus:
		if c.ModbusAddress == "" {
			return fmt.Errorf("camera.modbus_address cannot be empty for driver %s", c.Driver)
		}
	case DriverDryRun:
	default:
		return fmt.Errorf("invalid camera.driver: %s, must be one of: %s, %s, %s", c.Driver, DriverFoscam, DriverModbus, DriverDryRun)
	}
	return nil
}

// New creates the driver selected by config
func New(config Config, logger *log.Logger) (NightVision, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Driver {
	case DriverFoscam:
		client := NewFoscamClient(config.URL, config.Username, config.Password)
		if config.Timeout > 0 {
			client.httpClient.Timeout = config.Timeout
		}
		return client, nil
	case DriverModbus:
		return NewModbusRelay(config.ModbusAddress, config.ModbusSlaveID, config.Coil, config.Timeout)
	default:
		return NewDryRun(logger), nil
	}
}
