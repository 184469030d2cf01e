package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/devskill-org/nightvision/camera"
	"github.com/devskill-org/nightvision/locate"
	"github.com/devskill-org/nightvision/sun"
)

// NightVisionScheduler sends the day/night state to the camera once per poll interval
type NightVisionScheduler struct {
	// Configuration
	config   *Config
	location *locate.Location

	// Collaborators
	classifier *sun.Classifier
	camera     camera.NightVision
	metrics    *Metrics

	// State
	isRunning     bool
	stopRequested bool
	cancel        context.CancelFunc
	lastPhase     *sun.Phase
	lastCommandAt time.Time
	commandsSent  uint64
	startedAt     time.Time
	mu            sync.RWMutex

	// Web server
	webServer *WebServer

	// Logging
	logger *log.Logger

	// Test hooks for dependency injection
	nowFunc      func() time.Time
	classifyFunc func(now time.Time) sun.Phase
	sleepFunc    func(ctx context.Context, d time.Duration) error
}

// NewNightVisionScheduler creates a new scheduler instance. The location must
// already be resolved.
func NewNightVisionScheduler(config *Config, location *locate.Location, cam camera.NightVision, logger *log.Logger) (*NightVisionScheduler, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if location == nil {
		return nil, errors.New("observer location must be resolved before the scheduler is created")
	}
	if err := location.Observer.Validate(); err != nil {
		return nil, err
	}
	if cam == nil {
		return nil, errors.New("camera is required")
	}
	if logger == nil {
		logger = log.Default()
	}

	clock := config.ClockLocation(location.TimeZone)

	return &NightVisionScheduler{
		config:     config,
		location:   location,
		classifier: sun.NewClassifier(location.Observer, clock, logger),
		camera:     cam,
		logger:     logger,
	}, nil
}

// NewNightVisionSchedulerWithStatusServer creates a new scheduler instance with
// the status/metrics server enabled when status_port is set
func NewNightVisionSchedulerWithStatusServer(config *Config, location *locate.Location, cam camera.NightVision, logger *log.Logger, metrics *Metrics) (*NightVisionScheduler, error) {
	s, err := NewNightVisionScheduler(config, location, cam, logger)
	if err != nil {
		return nil, err
	}
	s.metrics = metrics
	s.webServer = NewWebServer(s, config.StatusPort)
	return s, nil
}

// GetConfig returns the current configuration
func (s *NightVisionScheduler) GetConfig() *Config {
	return s.config
}

// GetLocation returns the resolved location
func (s *NightVisionScheduler) GetLocation() *locate.Location {
	return s.location
}

// Start runs the poll loop until the first failure, context cancellation or Stop.
// Every iteration classifies now, sends the result to the camera and sleeps
// for the poll interval. The same command is sent again on every iteration.
func (s *NightVisionScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("scheduler is already running")
	}
	ctx, cancel := context.WithCancel(ctx)
	s.isRunning = true
	s.stopRequested = false
	s.cancel = cancel
	s.startedAt = s.now()
	s.mu.Unlock()
	defer s.stop()

	if s.config.DryRun {
		s.logger.Printf("DRY-RUN MODE ENABLED: Camera commands will be logged only")
	}

	if s.webServer != nil {
		if err := s.webServer.Start(); err != nil {
			s.logger.Printf("Failed to start status server: %v", err)
		} else {
			s.logger.Printf("Status server started on port %d", s.webServer.port)
		}
	}

	s.logger.Printf("Poll loop started with interval: %v", s.config.PollInterval)

	for {
		if _, err := s.RunOnce(ctx); err != nil {
			if s.isStopRequested() {
				return nil
			}
			return err
		}

		if err := s.sleep(ctx, s.config.PollInterval); err != nil {
			if s.isStopRequested() {
				s.logger.Printf("Poll loop stopped due to stop signal")
				return nil
			}
			return err
		}
	}
}

// RunOnce classifies the current instant and sends the result to the camera
func (s *NightVisionScheduler) RunOnce(ctx context.Context) (sun.Phase, error) {
	phase := s.classify(s.now())
	s.metrics.ObservePhase(phase)

	err := s.camera.SetNightVision(ctx, phase.Night)
	s.metrics.ObserveCommand(err)
	if err != nil {
		return phase, fmt.Errorf("failed to set night vision %s: %w", onOff(phase.Night), err)
	}

	s.mu.Lock()
	s.lastPhase = &phase
	s.lastCommandAt = phase.At
	s.commandsSent++
	s.mu.Unlock()

	if s.webServer != nil {
		s.webServer.Publish()
	}

	return phase, nil
}

// Stop ends a running poll loop
func (s *NightVisionScheduler) Stop() {
	s.mu.Lock()
	if s.isRunning {
		s.stopRequested = true
	}
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (s *NightVisionScheduler) stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	// Stop web server if running
	if s.webServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.webServer.Stop(ctx); err != nil {
			s.logger.Printf("Error stopping status server: %v", err)
		}
	}
}

func (s *NightVisionScheduler) isStopRequested() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stopRequested
}

// IsRunning returns whether the poll loop is currently running
func (s *NightVisionScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetStatus returns the current status of the scheduler
func (s *NightVisionScheduler) GetStatus() SchedulerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := SchedulerStatus{
		IsRunning:    s.isRunning,
		DryRun:       s.config.DryRun,
		CameraDriver: s.config.CameraConfig().Driver,
		PollInterval: s.config.PollInterval.String(),
		Location:     s.location,
		CommandsSent: s.commandsSent,
	}
	if s.lastPhase != nil {
		phase := *s.lastPhase
		status.LastPhase = &phase
		night := phase.Night
		status.NightVision = &night
	}
	if !s.lastCommandAt.IsZero() {
		at := s.lastCommandAt
		status.LastCommandAt = &at
	}
	if !s.startedAt.IsZero() {
		started := s.startedAt
		status.StartedAt = &started
	}
	return status
}

func (s *NightVisionScheduler) now() time.Time {
	if s.nowFunc != nil {
		return s.nowFunc()
	}
	return time.Now()
}

func (s *NightVisionScheduler) classify(now time.Time) sun.Phase {
	if s.classifyFunc != nil {
		return s.classifyFunc(now)
	}
	return s.classifier.Classify(now)
}

func (s *NightVisionScheduler) sleep(ctx context.Context, d time.Duration) error {
	if s.sleepFunc != nil {
		return s.sleepFunc(ctx, d)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SchedulerStatus represents the current status of the scheduler
type SchedulerStatus struct {
	IsRunning     bool             `json:"is_running"`
	DryRun        bool             `json:"dry_run"`
	CameraDriver  string           `json:"camera_driver"`
	PollInterval  string           `json:"poll_interval"`
	Location      *locate.Location `json:"location"`
	LastPhase     *sun.Phase       `json:"last_phase,omitempty"`
	NightVision   *bool            `json:"night_vision,omitempty"`
	LastCommandAt *time.Time       `json:"last_command_at,omitempty"`
	CommandsSent  uint64           `json:"commands_sent"`
	StartedAt     *time.Time       `json:"started_at,omitempty"`
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
