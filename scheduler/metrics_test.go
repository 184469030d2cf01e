package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/devskill-org/nightvision/sun"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsObservePhase(t *testing.T) {
	m, err := NewMetrics(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}

	at := time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC)
	rise := at.Add(3*time.Hour + 43*time.Minute)
	m.ObservePhase(sun.Phase{At: at, NextSunrise: rise, Night: true})

	if got := testutil.ToFloat64(m.Night); got != 1 {
		t.Errorf("Expected night gauge 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.NextSunrise); got != float64(rise.Unix()) {
		t.Errorf("Expected sunrise %d, got %v", rise.Unix(), got)
	}
	if got := testutil.ToFloat64(m.NextSunset); got != 0 {
		t.Errorf("Expected missing sunset to be 0, got %v", got)
	}
	if got := testutil.ToFloat64(m.LastIterationTS); got != float64(at.Unix()) {
		t.Errorf("Expected last iteration %d, got %v", at.Unix(), got)
	}

	m.ObservePhase(sun.Phase{At: at})
	if got := testutil.ToFloat64(m.Night); got != 0 {
		t.Errorf("Expected day gauge 0, got %v", got)
	}
}

func TestMetricsObserveCommand(t *testing.T) {
	m, err := NewMetrics(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}

	m.ObserveCommand(nil)
	m.ObserveCommand(nil)
	m.ObserveCommand(errors.New("timeout"))

	if got := testutil.ToFloat64(m.CameraCommands.WithLabelValues("ok")); got != 2 {
		t.Errorf("Expected 2 ok commands, got %v", got)
	}
	if got := testutil.ToFloat64(m.CameraCommands.WithLabelValues("error")); got != 1 {
		t.Errorf("Expected 1 failed command, got %v", got)
	}
}

func TestNewMetricsReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	first, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}
	second, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("Second NewMetrics failed: %v", err)
	}

	first.ObserveCommand(nil)
	if got := testutil.ToFloat64(second.CameraCommands.WithLabelValues("ok")); got != 1 {
		t.Errorf("Expected shared counter, got %v", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObservePhase(sun.Phase{Night: true})
	m.ObserveCommand(nil)
	if m.Handler() == nil {
		t.Error("Expected default handler for nil metrics")
	}
}
