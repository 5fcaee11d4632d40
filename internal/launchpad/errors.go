package launchpad

import "errors"

// Sentinel errors for launchpad operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrDeviceNotFound is returned when no MIDI port matches the discovery
	// criteria. Recoverable: the event loop retries with backoff.
	ErrDeviceNotFound = errors.New("launchpad: no matching device found")

	// ErrOpenFailed is returned when a discovered port cannot be opened.
	ErrOpenFailed = errors.New("launchpad: opening device port failed")

	// ErrListenFailed is returned when the input listener cannot be started
	// on an opened port. Partially-opened ports are closed before returning.
	ErrListenFailed = errors.New("launchpad: starting input listener failed")

	// ErrNotReady is returned by operations that require an open session.
	// Grid writes are silent no-ops instead; this is for explicit requests.
	ErrNotReady = errors.New("launchpad: device session not ready")

	// ErrTriggerNotRegistered is returned when operating on a trigger that
	// is not (or no longer) held by the panel.
	ErrTriggerNotRegistered = errors.New("launchpad: trigger not registered")

	// ErrInvalidAction is returned when parsing an unknown action name.
	ErrInvalidAction = errors.New("launchpad: invalid action")

	// ErrInvalidLayout is returned when a layout document fails validation.
	ErrInvalidLayout = errors.New("launchpad: invalid layout")

	// ErrPanelClosed is returned when using a panel after Close().
	ErrPanelClosed = errors.New("launchpad: panel closed")
)
