// tadosync - Local Thermostat Controller Sync Daemon
//
// tadosync keeps a live in-memory copy of a local heating controller's zone
// state. It polls the controller's REST listing on a schedule, merges partial
// updates from the controller's event stream between polls, and serves the
// resulting table over a local HTTP API, WebSocket push, MQTT retained
// state, and InfluxDB history.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nerrad567/tadosync/internal/api"
	"github.com/nerrad567/tadosync/internal/controller"
	"github.com/nerrad567/tadosync/internal/infrastructure/config"
	"github.com/nerrad567/tadosync/internal/infrastructure/influxdb"
	"github.com/nerrad567/tadosync/internal/infrastructure/logging"
	"github.com/nerrad567/tadosync/internal/infrastructure/mqtt"
	"github.com/nerrad567/tadosync/internal/syncer"
	"github.com/nerrad567/tadosync/internal/telemetry"
	"github.com/nerrad567/tadosync/internal/zone"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting tadosync",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Controller HTTP client and the sync client on top of it
	ctrl := controller.New(cfg.Controller)
	store := zone.NewStore()
	store.SetLogger(log.With("component", "store"))

	syncClient := syncer.New(ctrl, store, cfg.Controller)
	syncClient.SetLogger(log.With("component", "sync"))

	// Connect to MQTT broker (optional)
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	switch {
	case errors.Is(err, mqtt.ErrDisabled):
		log.Info("MQTT disabled")
		mqttClient = nil
	case err != nil:
		return fmt.Errorf("connecting to MQTT: %w", err)
	default:
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
	}

	// Connect to InfluxDB (optional)
	influxClient, err := influxdb.Connect(ctx, cfg.InfluxDB)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("InfluxDB disabled")
		influxClient = nil
	case err != nil:
		return fmt.Errorf("connecting to InfluxDB: %w", err)
	default:
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	}

	// Recorder forwards every applied merge to the enabled sinks
	var recorder *telemetry.Recorder
	if mqttClient != nil || influxClient != nil {
		recorder = telemetry.NewRecorder(mqttClient, influxClient)
		recorder.SetLogger(log.With("component", "telemetry"))
		recorder.Attach(store)
		defer func() {
			log.Info("stopping telemetry recorder", "dropped", recorder.Dropped())
			recorder.Close()
		}()
	}

	// Prometheus registry with process metrics plus the zone collector
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		telemetry.NewCollector(syncClient),
	)

	// Bring the table up before serving it: eager poll, then stream
	syncClient.Start(ctx)
	defer func() {
		log.Info("stopping sync client")
		syncClient.Stop()
	}()

	// Start the status API (optional)
	if cfg.API.Enabled {
		apiServer, apiErr := api.New(api.Deps{
			Config:  cfg.API,
			WS:      cfg.WebSocket,
			Logger:  log.With("component", "api"),
			Sync:    syncClient,
			Store:   store,
			Metrics: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			Version: version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if startErr := apiServer.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			if closeErr := apiServer.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	} else {
		log.Info("API server disabled")
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server (stops accepting reads)
	// 2. Sync client (stream, poller, store)
	// 3. Telemetry recorder
	// 4. InfluxDB / MQTT (if enabled)

	log.Info("tadosync stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses TADOSYNC_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("TADOSYNC_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
