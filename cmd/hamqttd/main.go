// hamqttd - reference daemon for the hamqtt connectivity library
//
// It wires the library the way a real service would: configuration,
// structured logging, the cooperative task loop, the connection manager
// with Home Assistant discovery hooks, and a command-topic subscription.
// On startup it announces a demo switch entity; flipping the switch in
// Home Assistant arrives back here on the command topic.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/weirdtangent/hamqtt/bridge"
	"github.com/weirdtangent/hamqtt/config"
	"github.com/weirdtangent/hamqtt/conn"
	"github.com/weirdtangent/hamqtt/discovery"
	"github.com/weirdtangent/hamqtt/logging"
	"github.com/weirdtangent/hamqtt/naming"
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
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting hamqttd",
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
	log = logging.New(cfg.Logging, cfg.Service.Name, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Route the MQTT library's own warnings and errors through our logger
	conn.WirePahoLogging(log)

	namer := naming.New(cfg.Service.Name)
	if namer.ServiceSlug() == "" {
		return fmt.Errorf("service name %q reduces to an empty slug", cfg.Service.Name)
	}

	// The loop owns all manager state; everything below runs on it
	loop := bridge.NewLoop()
	loop.SetLogger(log)

	manager := buildManager(cfg, namer, loop, log)

	// The loop's lifetime is bounded by Close, not by ctx: shutdown has
	// to drain the queued Stop before the loop exits.
	runErr := make(chan error, 1)
	go func() {
		runErr <- loop.Run(context.Background())
	}()

	startErr := make(chan error, 1)
	loop.Submit(func() {
		startErr <- manager.Start()
	})
	if err := <-startErr; err != nil {
		loop.Close()
		<-runErr
		return fmt.Errorf("starting connection manager: %w", err)
	}
	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	loop.Submit(func() {
		manager.Stop()
	})
	loop.Close()
	if err := <-runErr; err != nil {
		return fmt.Errorf("task loop: %w", err)
	}

	log.Info("hamqttd stopped")
	return nil
}

// buildManager assembles the connection manager with the demo entity's
// discovery, availability and state hooks.
func buildManager(cfg *config.Config, namer *naming.Namer, loop *bridge.Loop, log *logging.Logger) *conn.Manager {
	// The hooks close over the manager, so declare it first
	var manager *conn.Manager

	stateTopic := namer.StateTopic(naming.DeviceService, "status")
	availabilityTopic := namer.AvailabilityTopic(naming.DeviceService)
	commandTopic := namer.CommandTopic(naming.DeviceService)

	hooks := conn.Hooks{
		PublishDiscovery: func() error {
			topic, err := namer.DiscoveryTopic("switch", "power")
			if err != nil {
				return fmt.Errorf("deriving discovery topic: %w", err)
			}
			doc := map[string]any{
				"name":               "Power",
				"unique_id":          namer.ServiceUniqueID("power"),
				"state_topic":        stateTopic,
				"command_topic":      commandTopic,
				"availability_topic": availabilityTopic,
				"device":             discovery.ServiceDevice(namer.ServiceSlug(), version),
			}
			return manager.Publish(topic, doc, conn.WithRetain(true))
		},
		PublishAvailability: func() error {
			return manager.Publish(availabilityTopic, "online", conn.WithRetain(true))
		},
		PublishState: func() error {
			return manager.Publish(stateTopic, "OFF")
		},
	}

	manager = conn.NewManager(cfg.MQTT, namer, loop, log, hooks,
		staticTopics{commandTopic},
		conn.WithMessageHandler(func(topic string, payload []byte) {
			log.Info("command received", "topic", topic, "payload", string(payload))
			// Echo the commanded state back so Home Assistant settles
			if err := manager.Publish(stateTopic, string(payload)); err != nil {
				log.Error("echoing state failed", "error", err)
			}
		}),
	)
	return manager
}

// staticTopics is a fixed subscription list.
type staticTopics []string

// SubscriptionTopics implements conn.SubscriptionSource.
func (t staticTopics) SubscriptionTopics() []string {
	return t
}

// getConfigPath returns the configuration file path.
// Uses HAMQTT_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HAMQTT_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
