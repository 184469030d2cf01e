// Package main provides the night vision scheduler entry point and CLI interface.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devskill-org/nightvision/camera"
	"github.com/devskill-org/nightvision/elevation"
	"github.com/devskill-org/nightvision/geoip"
	"github.com/devskill-org/nightvision/locate"
	"github.com/devskill-org/nightvision/publicip"
	"github.com/devskill-org/nightvision/scheduler"
	"github.com/devskill-org/nightvision/sun"
)

func main() {
	// Command line flags
	var (
		configFile = flag.String("config", "config.json", "Configuration file path")
		info       = flag.Bool("info", false, "Show location, current day/night state and the camera's IR state; no command is sent")
		once       = flag.Bool("once", false, "Send a single command to the camera and exit")
		help       = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	config, err := loadConfig(*configFile, flagPassed("config"))
	if err != nil {
		fmt.Println("Error loading configuration:", err)
		os.Exit(1)
	}

	// Create logger
	logger := log.New(os.Stdout, "[NIGHTVISION] ", log.LstdFlags)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	location, err := resolveLocation(ctx, config)
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}

	fmt.Println("Observer location:")
	fmt.Println(location.Banner())
	fmt.Println()

	if *info {
		if err := showInfo(ctx, config, location); err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		return
	}

	cam, err := camera.New(config.CameraConfig(), logger)
	if err != nil {
		fmt.Println("Error creating camera driver:", err)
		os.Exit(1)
	}
	defer cam.Close()

	metrics, err := scheduler.NewMetrics(nil)
	if err != nil {
		fmt.Println("Error registering metrics:", err)
		os.Exit(1)
	}

	// Create scheduler
	nightScheduler, err := scheduler.NewNightVisionSchedulerWithStatusServer(config, location, cam, logger, metrics)
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}

	if *once {
		if _, err := nightScheduler.RunOnce(ctx); err != nil {
			logger.Printf("Error: %v", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("Starting night vision scheduler with the following configuration:\n")
	fmt.Printf("  Camera Driver: %s\n", config.CameraConfig().Driver)
	fmt.Printf("  Poll Interval: %s\n", config.PollInterval)
	if config.StatusPort > 0 {
		fmt.Printf("  Status Port: %d\n", config.StatusPort)
	}
	if config.DryRun {
		fmt.Printf("  Mode: DRY-RUN (camera commands will be logged only)\n")
	}
	fmt.Println()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start scheduler in a goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- nightScheduler.Start(ctx)
	}()

	logger.Printf("Scheduler started. Press Ctrl+C to stop...")

	select {
	case <-sigChan:
		logger.Printf("Shutdown signal received, stopping scheduler...")
		nightScheduler.Stop()
		if err := <-errChan; err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("Scheduler error: %v", err)
		}
		logger.Printf("Scheduler stopped successfully")
	case err := <-errChan:
		if err != nil {
			logger.Printf("Scheduler error: %v", err)
			cam.Close()
			os.Exit(1)
		}
	}
}

// loadConfig reads the config file. A missing file falls back to defaults
// unless the path was given on the command line.
func loadConfig(path string, explicit bool) (*scheduler.Config, error) {
	config, err := scheduler.LoadConfig(path)
	if err == nil {
		return config, nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return scheduler.DefaultConfig(), nil
	}
	return nil, err
}

func flagPassed(name string) bool {
	passed := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			passed = true
		}
	})
	return passed
}

func resolveLocation(ctx context.Context, config *scheduler.Config) (*locate.Location, error) {
	httpClient := &http.Client{Timeout: config.APITimeout}

	ipClient := publicip.NewClientWithHTTPClient(httpClient, config.UserAgent)
	ipClient.SetBaseURL(config.PublicIPURL)

	elevationClient := elevation.NewClientWithHTTPClient(httpClient, config.UserAgent)
	elevationClient.SetBaseURL(config.ElevationURL)
	elevationClient.SetAPIKey(config.ElevationAPIKey)

	geo, err := geoip.Open(config.GeoIPDatabase)
	if err != nil {
		return nil, err
	}
	defer geo.Close()

	locator := &locate.Locator{
		IP:        ipClient,
		Geo:       geo,
		Elevation: elevationClient,
	}
	return locator.Resolve(ctx)
}

func showInfo(ctx context.Context, config *scheduler.Config, location *locate.Location) error {
	clock := config.ClockLocation(location.TimeZone)
	logger := log.New(os.Stdout, "[SUN] ", log.LstdFlags)

	phase := sun.NewClassifier(location.Observer, clock, logger).Classify(time.Now())

	fmt.Println("Sun:")
	if !phase.NextSunrise.IsZero() {
		fmt.Printf("  Next sunrise: %s\n", phase.NextSunrise.In(clock).Format("2006-01-02 15:04:05 MST"))
	}
	if !phase.NextSunset.IsZero() {
		fmt.Printf("  Next sunset:  %s\n", phase.NextSunset.In(clock).Format("2006-01-02 15:04:05 MST"))
	}
	if phase.Polar {
		fmt.Printf("  Polar day/night: no sunrise or sunset within the search window\n")
	}
	fmt.Printf("  Now: %s (night vision should be %s)\n", dayOrNight(phase.Night), onOff(phase.Night))

	if config.DryRun {
		return nil
	}

	cam, err := camera.New(config.CameraConfig(), logger)
	if err != nil {
		return err
	}
	defer cam.Close()

	reader, ok := cam.(camera.StateReader)
	if !ok {
		return nil
	}
	on, err := reader.NightVisionState(ctx)
	if err != nil {
		return fmt.Errorf("failed to read camera state: %w", err)
	}
	fmt.Printf("  Camera night vision: %s\n", onOff(on))
	return nil
}

func dayOrNight(night bool) string {
	if night {
		return "night"
	}
	return "day"
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

func showHelp() {
	fmt.Println("Night Vision Scheduler - Switch a camera's infrared mode at sunrise and sunset")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  Resolves the site location once at startup (public IP, GeoIP city database,")
	fmt.Println("  elevation API), then periodically decides whether it is day or night there")
	fmt.Println("  and tells the camera to turn its infrared illumination on or off.")
	fmt.Println()
	fmt.Println("  Camera drivers:")
	fmt.Println("  - foscam:  Foscam CGI API (openInfraLed / closeInfraLed)")
	fmt.Println("  - modbus:  IR illuminator on a Modbus TCP relay coil")
	fmt.Println("  - dry-run: log commands only")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  nightvision [OPTIONS]")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Basic usage with default settings")
	fmt.Println("  nightvision")
	fmt.Println()
	fmt.Println("  # Custom configuration")
	fmt.Println("  nightvision --config=config.json")
	fmt.Println()
	fmt.Println("  # Show location, next sunrise/sunset and camera state")
	fmt.Println("  nightvision --info")
	fmt.Println()
	fmt.Println("  # Send one command and exit")
	fmt.Println("  nightvision --once")
	fmt.Println()
	fmt.Println("SIGNALS:")
	fmt.Println("  SIGINT/SIGTERM: stop the poll loop")
}
