package launchpad

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MQTT message types for communication between the cuelight show
// controller and the panel bridge.

// CueMessage is published when a trigger fires.
// Topic: cuelight/event/launchpad/cue
type CueMessage struct {
	// ID uniquely identifies this event for correlation.
	ID string `json:"id"`

	// Timestamp is when the button event was handled (UTC, ISO8601).
	Timestamp time.Time `json:"timestamp"`

	// TriggerID is the registration identity of the firing trigger.
	TriggerID string `json:"trigger_id"`

	// Description is the trigger's configured label.
	Description string `json:"description"`

	// Action is the cue operation: "stop", "pause" or "play".
	Action Action `json:"action"`

	// Column and Row locate the bound button (1-indexed).
	Column int `json:"column"`
	Row    int `json:"row"`

	// Source identifies the publishing panel instance.
	Source string `json:"source"`
}

// NavigationMessage is published when a cue-list navigation button fires.
// Topic: cuelight/event/launchpad/navigation
type NavigationMessage struct {
	// ID uniquely identifies this event for correlation.
	ID string `json:"id"`

	// Timestamp is when the button event was handled (UTC, ISO8601).
	Timestamp time.Time `json:"timestamp"`

	// Key is the navigation key: up, down, left, right or go.
	Key NavKey `json:"key"`

	// Source identifies the publishing panel instance.
	Source string `json:"source"`
}

// StopAllMessage is published when the stop-all button fires.
// Topic: cuelight/event/launchpad/stop_all
type StopAllMessage struct {
	// ID uniquely identifies this event for correlation.
	ID string `json:"id"`

	// Timestamp is when the button event was handled (UTC, ISO8601).
	Timestamp time.Time `json:"timestamp"`

	// Source identifies the publishing panel instance.
	Source string `json:"source"`
}

// HealthStatus represents the operational status of the bridge.
type HealthStatus string

const (
	// HealthHealthy indicates the bridge is operating normally.
	HealthHealthy HealthStatus = "healthy"

	// HealthDegraded indicates the bridge is operating with issues
	// (broker or device unavailable).
	HealthDegraded HealthStatus = "degraded"

	// HealthOffline indicates the bridge is not connected (from LWT).
	HealthOffline HealthStatus = "offline"

	// HealthStarting indicates the bridge is starting up.
	HealthStarting HealthStatus = "starting"

	// HealthStopping indicates the bridge is shutting down.
	HealthStopping HealthStatus = "stopping"
)

// HealthMessage reports the bridge's operational status.
// Topic: cuelight/health/launchpad
// QoS: 1, Retained: Yes
type HealthMessage struct {
	// Panel is the panel instance identifier.
	Panel string `json:"panel"`

	// Timestamp is when the health status was generated (UTC, ISO8601).
	Timestamp time.Time `json:"timestamp"`

	// Status indicates the current operational status.
	Status HealthStatus `json:"status"`

	// Version is the bridge software version.
	Version string `json:"version"`

	// UptimeSeconds is how long the bridge has been running.
	UptimeSeconds int64 `json:"uptime_seconds"`

	// Session contains device session statistics.
	Session *SessionStats `json:"session,omitempty"`

	// TriggerCount is the number of registered triggers.
	TriggerCount int `json:"trigger_count"`

	// Reason explains the status (especially for offline/degraded).
	Reason string `json:"reason,omitempty"`
}

// RequestMessage is sent from the controller to the bridge for
// request/response operations.
// Topic: cuelight/request/launchpad/{request_id}
type RequestMessage struct {
	// RequestID uniquely identifies this request for correlation.
	RequestID string `json:"request_id"`

	// Timestamp is when the request was issued (UTC, ISO8601).
	Timestamp time.Time `json:"timestamp"`

	// Action is the requested operation.
	// Values: "repaint", "reload_layout", "status"
	Action string `json:"action"`

	// Parameters contains action-specific values.
	Parameters map[string]any `json:"parameters,omitempty"`
}

// Request actions understood by the bridge.
const (
	RequestRepaint      = "repaint"
	RequestReloadLayout = "reload_layout"
	RequestStatus       = "status"
)

// ResponseMessage is sent from the bridge in response to a request.
// Topic: cuelight/response/launchpad/{request_id}
type ResponseMessage struct {
	// RequestID is the ID from the original request.
	RequestID string `json:"request_id"`

	// Timestamp is when the response was generated (UTC, ISO8601).
	Timestamp time.Time `json:"timestamp"`

	// Success indicates whether the request succeeded.
	Success bool `json:"success"`

	// Data contains the response payload (if successful).
	Data map[string]any `json:"data,omitempty"`

	// Error contains error details (if failed).
	Error *ResponseError `json:"error,omitempty"`
}

// ResponseError contains error details for failed requests.
type ResponseError struct {
	// Code is the error code.
	Code string `json:"code"`

	// Message is a human-readable error description.
	Message string `json:"message"`
}

// Error codes for failed requests.
const (
	ErrCodeInvalidRequest = "INVALID_REQUEST"
	ErrCodeLayoutError    = "LAYOUT_ERROR"
	ErrCodePanelError     = "PANEL_ERROR"
)

// Message constructors

// NewCueMessage creates a cue event message for a fired trigger.
func NewCueMessage(source string, t Trigger) CueMessage {
	return CueMessage{
		ID:          uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		TriggerID:   t.ID.String(),
		Description: t.Description,
		Action:      t.Action,
		Column:      t.Column,
		Row:         t.Row,
		Source:      source,
	}
}

// NewNavigationMessage creates a navigation event message.
func NewNavigationMessage(source string, key NavKey) NavigationMessage {
	return NavigationMessage{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Key:       key,
		Source:    source,
	}
}

// NewStopAllMessage creates a stop-all event message.
func NewStopAllMessage(source string) StopAllMessage {
	return StopAllMessage{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    source,
	}
}

// NewHealthMessage creates a health status message.
func NewHealthMessage(panelID, version string, status HealthStatus, stats SessionStats, triggerCount int, startTime time.Time) HealthMessage {
	return HealthMessage{
		Panel:         panelID,
		Timestamp:     time.Now().UTC(),
		Status:        status,
		Version:       version,
		UptimeSeconds: int64(time.Since(startTime).Seconds()),
		Session:       &stats,
		TriggerCount:  triggerCount,
	}
}

// NewLWTMessage creates a Last Will and Testament message for MQTT.
// Published by the broker if the bridge disconnects unexpectedly.
func NewLWTMessage(panelID string) HealthMessage {
	return HealthMessage{
		Panel:     panelID,
		Timestamp: time.Now().UTC(),
		Status:    HealthOffline,
		Reason:    "unexpected_disconnect",
	}
}

// Topic helpers

const (
	// TopicPrefix is the base topic for all cuelight messages.
	TopicPrefix = "cuelight"
)

// CueTopic returns the MQTT topic for cue events.
// Example: cuelight/event/launchpad/cue
func CueTopic() string {
	return fmt.Sprintf("%s/event/launchpad/cue", TopicPrefix)
}

// NavigationTopic returns the MQTT topic for navigation events.
// Example: cuelight/event/launchpad/navigation
func NavigationTopic() string {
	return fmt.Sprintf("%s/event/launchpad/navigation", TopicPrefix)
}

// StopAllTopic returns the MQTT topic for stop-all events.
// Example: cuelight/event/launchpad/stop_all
func StopAllTopic() string {
	return fmt.Sprintf("%s/event/launchpad/stop_all", TopicPrefix)
}

// HealthTopic returns the MQTT topic for health status.
// Example: cuelight/health/launchpad
func HealthTopic() string {
	return fmt.Sprintf("%s/health/launchpad", TopicPrefix)
}

// RequestTopic returns the MQTT topic for a single request.
// Example: cuelight/request/launchpad/req-123
func RequestTopic(requestID string) string {
	return fmt.Sprintf("%s/request/launchpad/%s", TopicPrefix, requestID)
}

// ResponseTopic returns the MQTT topic for responses.
// Example: cuelight/response/launchpad/req-123
func ResponseTopic(requestID string) string {
	return fmt.Sprintf("%s/response/launchpad/%s", TopicPrefix, requestID)
}

// RequestSubscribeTopic returns the MQTT subscription pattern for all
// requests. Example: cuelight/request/launchpad/#
func RequestSubscribeTopic() string {
	return fmt.Sprintf("%s/request/launchpad/#", TopicPrefix)
}
