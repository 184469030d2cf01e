package camera

import (
	"context"
	"fmt"
	"time"

	"github.com/goburrow/modbus"
)

// Coil values for Write Single Coil (function 0x05)
const (
	coilOn  uint16 = 0xFF00
	coilOff uint16 = 0x0000
)

// coilClient is the part of modbus.Client used by the relay
type coilClient interface {
	WriteSingleCoil(address, value uint16) ([]byte, error)
	ReadCoils(address, quantity uint16) ([]byte, error)
}

// ModbusRelay drives an infrared illuminator wired to a Modbus TCP relay board
type ModbusRelay struct {
	client     coilClient
	tcpHandler *modbus.TCPClientHandler
	coil       uint16
}

// NewModbusRelay connects to the relay board at address (IP:PORT)
func NewModbusRelay(address string, slaveID byte, coil uint16, timeout time.Duration) (*ModbusRelay, error) {
	handler := modbus.NewTCPClientHandler(address)
	handler.SlaveId = slaveID
	handler.Timeout = 1 * time.Second
	if timeout > 0 {
		handler.Timeout = timeout
	}

	err := handler.Connect()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to relay board at %s: %w", address, err)
	}

	return &ModbusRelay{
		client:     modbus.NewClient(handler),
		tcpHandler: handler,
		coil:       coil,
	}, nil
}

// SetNightVision energizes or releases the relay coil
func (r *ModbusRelay) SetNightVision(_ context.Context, on bool) error {
	value := coilOff
	if on {
		value = coilOn
	}
	if _, err := r.client.WriteSingleCoil(r.coil, value); err != nil {
		return fmt.Errorf("failed to write coil %d: %w", r.coil, err)
	}
	return nil
}

// NightVisionState reads the relay coil
func (r *ModbusRelay) NightVisionState(_ context.Context) (bool, error) {
	results, err := r.client.ReadCoils(r.coil, 1)
	if err != nil {
		return false, fmt.Errorf("failed to read coil %d: %w", r.coil, err)
	}
	if len(results) == 0 {
		return false, fmt.Errorf("empty reply reading coil %d", r.coil)
	}
	return results[0]&0x01 == 0x01, nil
}

// Close closes the Modbus connection
func (r *ModbusRelay) Close() error {
	if r.tcpHandler != nil {
		return r.tcpHandler.Close()
	}
	return nil
}
