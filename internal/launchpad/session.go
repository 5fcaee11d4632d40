package launchpad

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Logger is the minimal logging interface used by this package.
// Compatible with the project's slog wrapper; a no-op logger is used
// when none is set.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// InputPort is the session's view of a MIDI input. Listen delivers each
// raw inbound message to the callback until the returned stop function is
// called.
type InputPort interface {
	Name() string
	Open() error
	Close() error
	Listen(onMessage func(data []byte)) (stop func(), err error)
}

// OutputPort is the session's view of a MIDI output.
type OutputPort interface {
	Name() string
	Open() error
	Close() error
	Send(data []byte) error
}

// PortProvider enumerates the MIDI ports currently visible to the system.
// The production provider wraps the registered gomidi driver; tests
// substitute fixed port sets.
type PortProvider interface {
	InputPorts() []InputPort
	OutputPorts() []OutputPort
}

// SessionStats is a point-in-time snapshot of session counters.
type SessionStats struct {
	Ready          bool      `json:"ready"`
	FramesSent     uint64    `json:"frames_sent"`
	EventsReceived uint64    `json:"events_received"`
	EventsDropped  uint64    `json:"events_dropped"`
	Errors         uint64    `json:"errors"`
	LastActivity   time.Time `json:"last_activity"`
}

// Session owns the open port pair for one device and the bounded queue of
// raw input messages feeding the event loop.
//
// Thread Safety:
//   - Open, Close, WriteFrame and Present are guarded by the owning
//     Panel's mutex; they are not safe for unsynchronised concurrent use.
//   - Events, Stats and SetLogger are safe from any goroutine. The input
//     listener enqueues from a driver-owned goroutine.
type Session struct {
	provider     PortProvider
	productMatch string
	portMatch    string

	in         InputPort
	out        OutputPort
	stopListen func()
	ready      atomic.Bool

	// events carries raw inbound MIDI messages. Allocated once; enqueue
	// drops on overflow rather than blocking the driver callback.
	events chan []byte

	// shownMissing suppresses repeated "device not found" logs during a
	// continuous absence; reset on successful open.
	shownMissing bool

	framesTx      atomic.Uint64
	eventsRx      atomic.Uint64
	eventsDropped atomic.Uint64
	errorsTotal   atomic.Uint64
	lastActivity  atomic.Int64 // unix nanos

	logger   Logger
	loggerMu sync.RWMutex
}

// eventQueueSize bounds the raw input queue. Button events are 3 bytes
// each; 256 outstanding messages is far beyond human press rates.
const eventQueueSize = 256

// NewSession creates a session that discovers ports through provider.
// A port qualifies when its name contains both match strings; the second
// marker excludes the DAW-control port the device also exposes.
func NewSession(provider PortProvider, productMatch, portMatch string) *Session {
	return &Session{
		provider:     provider,
		productMatch: productMatch,
		portMatch:    portMatch,
		events:       make(chan []byte, eventQueueSize),
		logger:       noopLogger{},
	}
}

// SetLogger replaces the session's logger. Safe to call at any time.
func (s *Session) SetLogger(l Logger) {
	s.loggerMu.Lock()
	defer s.loggerMu.Unlock()
	if l == nil {
		l = noopLogger{}
	}
	s.logger = l
}

func (s *Session) log() Logger {
	s.loggerMu.RLock()
	defer s.loggerMu.RUnlock()
	return s.logger
}

// Ready reports whether the session holds an open, listening port pair.
func (s *Session) Ready() bool { return s.ready.Load() }

// Events returns the raw inbound message queue.
func (s *Session) Events() <-chan []byte { return s.events }

func (s *Session) matches(name string) bool {
	return strings.Contains(name, s.productMatch) && strings.Contains(name, s.portMatch)
}

// discover returns the first qualifying input/output port pair.
func (s *Session) discover() (InputPort, OutputPort, error) {
	var in InputPort
	for _, p := range s.provider.InputPorts() {
		if s.matches(p.Name()) {
			in = p
			break
		}
	}
	var out OutputPort
	for _, p := range s.provider.OutputPorts() {
		if s.matches(p.Name()) {
			out = p
			break
		}
	}
	if in == nil || out == nil {
		return nil, nil, ErrDeviceNotFound
	}
	return in, out, nil
}

// Open discovers and opens the device's port pair and starts the input
// listener. Any step failing closes whatever was opened and leaves the
// session not ready. Repeated "not found" results log only once per
// continuous absence.
func (s *Session) Open() error {
	if s.ready.Load() {
		return nil
	}

	in, out, err := s.discover()
	if err != nil {
		if !s.shownMissing {
			s.log().Warn("launchpad device not found, will keep looking",
				"product_match", s.productMatch, "port_match", s.portMatch)
			s.shownMissing = true
		}
		return err
	}

	if err := out.Open(); err != nil {
		s.errorsTotal.Add(1)
		return fmt.Errorf("%w: output %s: %w", ErrOpenFailed, out.Name(), err)
	}
	if err := in.Open(); err != nil {
		s.errorsTotal.Add(1)
		_ = out.Close()
		return fmt.Errorf("%w: input %s: %w", ErrOpenFailed, in.Name(), err)
	}
	stop, err := in.Listen(s.enqueue)
	if err != nil {
		s.errorsTotal.Add(1)
		_ = in.Close()
		_ = out.Close()
		return fmt.Errorf("%w: input %s: %w", ErrListenFailed, in.Name(), err)
	}

	s.in = in
	s.out = out
	s.stopListen = stop
	s.ready.Store(true)
	s.shownMissing = false
	s.lastActivity.Store(time.Now().UnixNano())
	s.log().Info("device session open", "input", in.Name(), "output", out.Name())
	return nil
}

// enqueue copies one raw inbound message onto the bounded queue, dropping
// (and counting) when the loop has fallen behind. Runs on the driver's
// callback goroutine, so it must never block.
func (s *Session) enqueue(data []byte) {
	if len(data) == 0 {
		return
	}
	msg := make([]byte, len(data))
	copy(msg, data)
	select {
	case s.events <- msg:
		s.eventsRx.Add(1)
		s.lastActivity.Store(time.Now().UnixNano())
	default:
		s.eventsDropped.Add(1)
	}
}

// WriteFrame sends one encoded SysEx frame to the device. A no-op when
// the session is not ready, so grid mutations while unplugged update the
// model silently and the next rebuild repaints the device.
func (s *Session) WriteFrame(frame []byte) error {
	if !s.ready.Load() || s.out == nil {
		return nil
	}
	if err := s.out.Send(frame); err != nil {
		s.errorsTotal.Add(1)
		return fmt.Errorf("launchpad: write frame: %w", err)
	}
	s.framesTx.Add(1)
	s.lastActivity.Store(time.Now().UnixNano())
	return nil
}

// Present reports whether the bound input port is still visible to the
// system. Used by the event loop as an unplug probe.
func (s *Session) Present() bool {
	if !s.ready.Load() || s.in == nil {
		return false
	}
	name := s.in.Name()
	for _, p := range s.provider.InputPorts() {
		if p.Name() == name {
			return true
		}
	}
	return false
}

// Close releases the port pair. Idempotent. While the output is still
// open a bulk all-off frame darkens the device, then the listener is
// stopped, the output closed, readiness cleared, and the input closed.
func (s *Session) Close() {
	if s.in == nil && s.out == nil {
		return
	}
	if s.out != nil {
		_ = s.out.Send(AllOffFrame())
		if s.stopListen != nil {
			s.stopListen()
			s.stopListen = nil
		}
		_ = s.out.Close()
		s.out = nil
	}
	s.ready.Store(false)
	if s.in != nil {
		_ = s.in.Close()
		s.in = nil
	}
	s.log().Info("device session closed")
}

// Stats returns a snapshot of the session counters.
func (s *Session) Stats() SessionStats {
	var last time.Time
	if ns := s.lastActivity.Load(); ns > 0 {
		last = time.Unix(0, ns)
	}
	return SessionStats{
		Ready:          s.ready.Load(),
		FramesSent:     s.framesTx.Load(),
		EventsReceived: s.eventsRx.Load(),
		EventsDropped:  s.eventsDropped.Load(),
		Errors:         s.errorsTotal.Load(),
		LastActivity:   last,
	}
}
