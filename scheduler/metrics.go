package scheduler

import (
	"fmt"
	"net/http"

	"github.com/devskill-org/nightvision/sun"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes the scheduler state as Prometheus metrics
type Metrics struct {
	gatherer prometheus.Gatherer

	Night           prometheus.Gauge
	NextSunrise     prometheus.Gauge
	NextSunset      prometheus.Gauge
	CameraCommands  *prometheus.CounterVec
	LastIterationTS prometheus.Gauge
}

// NewMetrics registers the scheduler metrics against reg (nil = default registerer)
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	night, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "nightvision_night",
		Help: "1 when the last classification was night, 0 for day.",
	}), "nightvision_night")
	if err != nil {
		return nil, err
	}

	sunrise, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "nightvision_next_sunrise_timestamp_seconds",
		Help: "Unix time of the next sunrise, 0 when none is within the search window.",
	}), "nightvision_next_sunrise_timestamp_seconds")
	if err != nil {
		return nil, err
	}

	sunset, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "nightvision_next_sunset_timestamp_seconds",
		Help: "Unix time of the next sunset, 0 when none is within the search window.",
	}), "nightvision_next_sunset_timestamp_seconds")
	if err != nil {
		return nil, err
	}

	last, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "nightvision_last_iteration_timestamp_seconds",
		Help: "Unix time of the last poll iteration.",
	}), "nightvision_last_iteration_timestamp_seconds")
	if err != nil {
		return nil, err
	}

	commands := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nightvision_camera_commands_total",
		Help: "Night vision commands sent to the camera, by result.",
	}, []string{"result"})
	if err := reg.Register(commands); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, err
		}
		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, fmt.Errorf("collector nightvision_camera_commands_total already registered with incompatible type")
		}
		commands = existing
	}

	return &Metrics{
		gatherer:        gatherer,
		Night:           night,
		NextSunrise:     sunrise,
		NextSunset:      sunset,
		CameraCommands:  commands,
		LastIterationTS: last,
	}, nil
}

// ObservePhase records a classification
func (m *Metrics) ObservePhase(phase sun.Phase) {
	if m == nil {
		return
	}
	m.Night.Set(boolToFloat(phase.Night))
	m.NextSunrise.Set(unixOrZero(phase.NextSunrise.Unix(), phase.NextSunrise.IsZero()))
	m.NextSunset.Set(unixOrZero(phase.NextSunset.Unix(), phase.NextSunset.IsZero()))
	m.LastIterationTS.Set(float64(phase.At.Unix()))
}

// ObserveCommand counts a camera command
func (m *Metrics) ObserveCommand(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.CameraCommands.WithLabelValues(result).Inc()
}

// Handler returns the /metrics handler
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func unixOrZero(unix int64, zero bool) float64 {
	if zero {
		return 0
	}
	return float64(unix)
}
