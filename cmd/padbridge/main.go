// padbridge - Launchpad trigger panel bridge
//
// This is the main entry point for the padbridge daemon. It binds a
// Novation Launchpad-family grid controller to the cuelight show-control
// bus: registered trigger buttons light up on the pad, and pressing them
// publishes cue events over MQTT for the cue player to act on.
//
// The daemon is designed for unattended operation at front-of-house:
//   - The device may be plugged in late or unplugged mid-show; the
//     bridge rediscovers it and repaints the grid.
//   - The broker may drop; the client reconnects with backoff and the
//     retained health topic tells operators what state the bridge is in.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	midi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/cuelight/padbridge/internal/infrastructure/logging"
	"github.com/cuelight/padbridge/internal/infrastructure/mqtt"
	"github.com/cuelight/padbridge/internal/launchpad"
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
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting padbridge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := launchpad.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath, "panel", cfg.Panel.ID)

	// Reinitialise logger with config settings
	log = logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: "stdout",
	}, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// The MIDI driver holds OS resources (ALSA/CoreMIDI handles);
	// release them on the way out.
	defer midi.CloseDriver()

	// Connect to MQTT broker with the offline LWT registered, so the
	// broker announces an unexpected death on the retained health topic.
	lwtPayload, err := json.Marshal(launchpad.NewLWTMessage(cfg.Panel.ID))
	if err != nil {
		return fmt.Errorf("encoding LWT: %w", err)
	}
	mqttClient, err := mqtt.Connect(mqtt.Config{
		BrokerURL: cfg.MQTT.Broker,
		ClientID:  cfg.GetMQTTClientID(),
		Username:  cfg.MQTT.Username,
		Password:  cfg.MQTT.Password,
		QoS:       cfg.MQTT.QoS,
		KeepAlive: time.Duration(cfg.MQTT.KeepAlive) * time.Second,
		Will: &mqtt.WillConfig{
			Topic:    launchpad.HealthTopic(),
			Payload:  lwtPayload,
			QoS:      1,
			Retained: true,
		},
	})
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log)
	log.Info("MQTT connected",
		"broker", cfg.MQTT.Broker,
		"client_id", cfg.GetMQTTClientID(),
	)

	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Create the panel with a dispatcher that publishes button events
	// to the show-control bus.
	dispatcher := &mqttDispatcher{
		client: mqttClient,
		source: cfg.Panel.ID,
		qos:    byte(cfg.MQTT.QoS),
		log:    log,
	}
	panel, err := launchpad.NewPanel(launchpad.PanelOptions{
		Config:     cfg,
		Dispatcher: dispatcher,
		Logger:     log,
	})
	if err != nil {
		return fmt.Errorf("creating panel: %w", err)
	}
	defer func() {
		log.Info("closing panel")
		if closeErr := panel.Close(); closeErr != nil {
			log.Error("error closing panel", "error", closeErr)
		}
	}()

	// Load the trigger layout. An absent file is not fatal: the panel
	// starts dark and triggers can be loaded later via reload_layout.
	if cfg.Layout.File != "" {
		if err := loadLayout(panel, cfg.Layout.File, log); err != nil {
			return err
		}
	} else {
		log.Info("no layout file configured, starting with no triggers")
	}

	// Health reporting over the retained health topic.
	reporter := launchpad.NewHealthReporter(launchpad.HealthReporterConfig{
		PanelID:   cfg.Panel.ID,
		Version:   version,
		Interval:  cfg.GetHealthInterval(),
		Publisher: mqttClient,
		Panel:     panel,
	})
	reporter.SetLogger(log)

	// Handle controller requests (repaint, reload_layout, status).
	requestTopic := launchpad.RequestSubscribeTopic()
	if err := mqttClient.Subscribe(requestTopic, byte(cfg.MQTT.QoS), requestHandler(panel, cfg, reporter, mqttClient, log)); err != nil {
		return fmt.Errorf("subscribing to requests: %w", err)
	}
	log.Info("request handler subscribed", "topic", requestTopic)

	if err := reporter.PublishStarting(); err != nil {
		log.Warn("failed to publish starting status", "error", err)
	}
	reporter.Start(ctx)
	defer reporter.Stop()

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred calls run in reverse order:
	// 1. Health reporter (publishes "stopping")
	// 2. Panel (darkens the device, stops the event loop)
	// 3. MQTT client
	// 4. MIDI driver

	log.Info("padbridge stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses PADBRIDGE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("PADBRIDGE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// loadLayout reads a layout document and applies it to the panel.
// A missing file is logged and skipped; a malformed one is fatal.
func loadLayout(panel *launchpad.Panel, path string, log *logging.Logger) error {
	layout, err := launchpad.LoadLayout(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn("layout file not found, starting with no triggers", "path", path)
			return nil
		}
		return fmt.Errorf("loading layout: %w", err)
	}
	if err := panel.ApplyLayout(layout); err != nil {
		return fmt.Errorf("applying layout: %w", err)
	}
	log.Info("layout applied", "path", path, "triggers", panel.TriggerCount())
	return nil
}

// requestHandler returns the MQTT handler for controller requests.
//
// Requests arrive on cuelight/request/launchpad/{request_id}; the
// response goes to the matching response topic. Unknown actions are
// answered with an error response rather than ignored, so the
// controller can tell a bad request from a dead bridge.
func requestHandler(panel *launchpad.Panel, cfg *launchpad.Config, reporter *launchpad.HealthReporter, client *mqtt.Client, log *logging.Logger) mqtt.MessageHandler {
	return func(topic string, payload []byte) error {
		var req launchpad.RequestMessage
		if err := json.Unmarshal(payload, &req); err != nil {
			log.Warn("malformed request", "topic", topic, "error", err)
			req = launchpad.RequestMessage{}
		}

		// The request ID lives in the topic; the body copy is a
		// convenience and may be absent.
		requestID := req.RequestID
		if requestID == "" {
			requestID = topic[strings.LastIndex(topic, "/")+1:]
		}

		resp := handleRequest(panel, cfg, reporter, req, log)
		resp.RequestID = requestID
		resp.Timestamp = time.Now().UTC()

		data, err := json.Marshal(resp)
		if err != nil {
			return fmt.Errorf("encoding response: %w", err)
		}
		return client.Publish(launchpad.ResponseTopic(requestID), data, byte(cfg.MQTT.QoS), false)
	}
}

// handleRequest executes one controller request and builds the response.
func handleRequest(panel *launchpad.Panel, cfg *launchpad.Config, reporter *launchpad.HealthReporter, req launchpad.RequestMessage, log *logging.Logger) launchpad.ResponseMessage {
	switch req.Action {
	case launchpad.RequestRepaint:
		if err := panel.Repaint(); err != nil {
			return errorResponse(launchpad.ErrCodePanelError, err)
		}
		return launchpad.ResponseMessage{Success: true}

	case launchpad.RequestReloadLayout:
		path := cfg.Layout.File
		if p, ok := req.Parameters["file"].(string); ok && p != "" {
			path = p
		}
		if path == "" {
			return errorResponse(launchpad.ErrCodeInvalidRequest, errors.New("no layout file configured"))
		}
		layout, err := launchpad.LoadLayout(path)
		if err != nil {
			return errorResponse(launchpad.ErrCodeLayoutError, err)
		}
		if err := panel.ApplyLayout(layout); err != nil {
			return errorResponse(launchpad.ErrCodeLayoutError, err)
		}
		log.Info("layout reloaded", "path", path, "triggers", panel.TriggerCount())
		return launchpad.ResponseMessage{
			Success: true,
			Data:    map[string]any{"triggers": panel.TriggerCount()},
		}

	case launchpad.RequestStatus:
		if err := reporter.PublishNow(); err != nil {
			log.Warn("health publish on status request failed", "error", err)
		}
		return launchpad.ResponseMessage{
			Success: true,
			Data:    panel.Metrics(),
		}

	default:
		return errorResponse(launchpad.ErrCodeInvalidRequest,
			fmt.Errorf("unknown action %q", req.Action))
	}
}

// errorResponse builds a failed ResponseMessage.
func errorResponse(code string, err error) launchpad.ResponseMessage {
	return launchpad.ResponseMessage{
		Success: false,
		Error: &launchpad.ResponseError{
			Code:    code,
			Message: err.Error(),
		},
	}
}

// mqttDispatcher adapts the MQTT client to the panel's ActionDispatcher
// interface, translating fired buttons into bus events. Dispatch methods
// run outside the panel lock, so a slow broker cannot stall LED updates.
type mqttDispatcher struct {
	client *mqtt.Client
	source string
	qos    byte
	log    *logging.Logger
}

// DispatchCue implements launchpad.ActionDispatcher.
func (d *mqttDispatcher) DispatchCue(t launchpad.Trigger) {
	d.publish(launchpad.CueTopic(), launchpad.NewCueMessage(d.source, t))
}

// DispatchNavigation implements launchpad.ActionDispatcher.
func (d *mqttDispatcher) DispatchNavigation(key launchpad.NavKey) {
	d.publish(launchpad.NavigationTopic(), launchpad.NewNavigationMessage(d.source, key))
}

// DispatchStopAll implements launchpad.ActionDispatcher.
func (d *mqttDispatcher) DispatchStopAll() {
	d.publish(launchpad.StopAllTopic(), launchpad.NewStopAllMessage(d.source))
}

func (d *mqttDispatcher) publish(topic string, msg any) {
	payload, err := json.Marshal(msg)
	if err != nil {
		d.log.Error("encoding event failed", "topic", topic, "error", err)
		return
	}
	if err := d.client.Publish(topic, payload, d.qos, false); err != nil {
		d.log.Error("publishing event failed", "topic", topic, "error", err)
	}
}
