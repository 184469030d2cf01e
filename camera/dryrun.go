package camera

import (
	"context"
	"log"
	"sync"
)

// DryRun only logs the commands it would send
type DryRun struct {
	logger *log.Logger

	mu    sync.Mutex
	state bool
}

// NewDryRun creates a dry-run driver. A nil logger uses log.Default().
func NewDryRun(logger *log.Logger) *DryRun {
	if logger == nil {
		logger = log.Default()
	}
	return &DryRun{logger: logger}
}

// SetNightVision logs the command and remembers the requested mode
func (d *DryRun) SetNightVision(_ context.Context, on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = on
	d.logger.Printf("DRY-RUN: would set night vision %s", onOff(on))
	return nil
}

// NightVisionState returns the last requested mode
func (d *DryRun) NightVisionState(_ context.Context) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state, nil
}

// Close does nothing
func (d *DryRun) Close() error {
	return nil
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
