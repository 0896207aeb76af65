// Command benchview is an interactive dashboard client for hardware test
// station backends.
//
// It subscribes to a dashboard aggregator for the list of stations, and
// to individual stations for live test run updates. Streams reconnect
// with exponential backoff when a backend restarts.
//
// Usage:
//
//	benchview [flags]
//
// Flags:
//
//	-dashboard string  Dashboard aggregator URL (default "ws://localhost:12000")
//	-config string     Configuration file path (YAML)
//	-capture string    Write a CBOR event capture file (.blog)
//	-log-level string  Log level: debug, info, warn, error (default "info")
//	-retry duration    Base retry delay, 0 disables retries (default 500ms)
//	-retry-max duration  Retry delay cap (default 30s)
//
// Examples:
//
//	# Connect to a local aggregator
//	benchview -dashboard ws://localhost:12000
//
//	# Capture stream events for later inspection
//	benchview -capture session.blog -log-level debug
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benchview/benchview-go/cmd/benchview/interactive"
	"github.com/benchview/benchview-go/pkg/discovery"
	"github.com/benchview/benchview-go/pkg/log"
	"github.com/benchview/benchview-go/pkg/station"
	"github.com/benchview/benchview-go/pkg/subscription"
	"github.com/benchview/benchview-go/pkg/transport"
)

// Config holds the resolved runtime configuration.
type Config struct {
	Dashboard  string
	ConfigFile string
	Capture    string
	LogLevel   string
	Retry      time.Duration
	RetryMax   time.Duration
	Backoff    float64
}

var config Config

func init() {
	flag.StringVar(&config.Dashboard, "dashboard", "ws://localhost:12000", "Dashboard aggregator URL")
	flag.StringVar(&config.ConfigFile, "config", "", "Configuration file path (YAML)")
	flag.StringVar(&config.Capture, "capture", "", "Write a CBOR event capture file (.blog)")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.DurationVar(&config.Retry, "retry", 500*time.Millisecond, "Base retry delay, 0 disables retries")
	flag.DurationVar(&config.RetryMax, "retry-max", 30*time.Second, "Retry delay cap")
	flag.Float64Var(&config.Backoff, "backoff", 2.0, "Retry delay multiplier")
}

func main() {
	flag.Parse()

	var knownStations []StationConfig
	if config.ConfigFile != "" {
		fileCfg, err := LoadFileConfig(config.ConfigFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "benchview: %v\n", err)
			os.Exit(1)
		}
		applyFileConfig(fileCfg)
		knownStations = fileCfg.Stations
	}

	logger := setupLogging(config.LogLevel)
	for _, st := range knownStations {
		logger.Info("configured station", "host", st.Host, "port", st.Port)
	}

	capture, closeCapture, err := setupCapture(logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "benchview: %v\n", err)
		os.Exit(1)
	}
	defer closeCapture()

	policy := subscription.RetryPolicy{
		Delay:   config.Retry,
		Backoff: config.Backoff,
		Max:     config.RetryMax,
	}

	provider := transport.NewWebSocketProvider(transport.WebSocketConfig{})

	dash := station.NewDashboardService(provider, station.WithLogger(capture))
	st := station.NewStationService(provider, station.WithLogger(capture))

	var browser discovery.Browser
	if b, err := discovery.NewMDNSBrowser(discovery.DefaultBrowserConfig()); err != nil {
		logger.Warn("mDNS browser unavailable", "error", err)
	} else {
		browser = b
	}

	logger.Info("connecting to dashboard", "url", config.Dashboard)
	dash.Subscribe(config.Dashboard, policy)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	console, err := interactive.New(interactive.Deps{
		Dashboard: dash,
		Station:   st,
		Browser:   browser,
		Policy:    policy,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "benchview: %v\n", err)
		os.Exit(1)
	}

	// Handle signals alongside the console loop.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	console.Run(ctx, cancel)

	logger.Info("shutting down")
	st.Unsubscribe()
	dash.Unsubscribe()
	if browser != nil {
		browser.Stop()
	}
}

// applyFileConfig overlays config file values onto flag defaults. Flags
// that were set explicitly win.
func applyFileConfig(fileCfg *FileConfig) {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if fileCfg.Dashboard != "" && !set["dashboard"] {
		config.Dashboard = fileCfg.Dashboard
	}
	if fileCfg.Capture != "" && !set["capture"] {
		config.Capture = fileCfg.Capture
	}
	if fileCfg.LogLevel != "" && !set["log-level"] {
		config.LogLevel = fileCfg.LogLevel
	}
	if fileCfg.Retry.Delay > 0 && !set["retry"] {
		config.Retry = time.Duration(fileCfg.Retry.Delay)
	}
	if fileCfg.Retry.Max > 0 && !set["retry-max"] {
		config.RetryMax = time.Duration(fileCfg.Retry.Max)
	}
	if fileCfg.Retry.Backoff > 0 && !set["backoff"] {
		config.Backoff = fileCfg.Retry.Backoff
	}
}

func setupLogging(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}

// setupCapture builds the capture logger chain: a CBOR file logger when
// -capture is set, always bridged into slog at debug level.
func setupCapture(logger *slog.Logger) (log.Logger, func(), error) {
	adapter := log.NewSlogAdapter(logger)

	if config.Capture == "" {
		return adapter, func() {}, nil
	}

	fileLogger, err := log.NewFileLogger(config.Capture)
	if err != nil {
		return nil, nil, fmt.Errorf("open capture file: %w", err)
	}

	logger.Info("capturing stream events", "path", fileLogger.Path())

	multi := log.NewMultiLogger(fileLogger, adapter)
	closeFn := func() {
		if err := fileLogger.Close(); err != nil {
			logger.Warn("closing capture file", "error", err)
		}
	}
	return multi, closeFn, nil
}
