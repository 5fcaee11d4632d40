package launchpad

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// ActionDispatcher receives the cue operations fired by button events.
// The daemon's implementation publishes to the show-control bus; tests
// record calls. Dispatch methods are invoked outside the panel lock, so
// a slow consumer cannot stall grid repaints.
type ActionDispatcher interface {
	// DispatchCue fires a trigger's cue action. The trigger is passed by
	// value: a snapshot taken while the panel lock was held.
	DispatchCue(trigger Trigger)

	// DispatchNavigation delivers a cue-list navigation key
	// (up/down/left/right/go).
	DispatchNavigation(key NavKey)

	// DispatchStopAll stops every running cue.
	DispatchStopAll()
}

// TriggerProvider is the capability surface a host uses to manage panel
// triggers without reaching into panel internals. *Panel implements it.
type TriggerProvider interface {
	Create(cfg TriggerConfig) (*Trigger, error)
	Destroy(t *Trigger) error
	Name() string
	EventText(t *Trigger) string
	MarshalTrigger(t *Trigger) (json.RawMessage, error)
	UnmarshalTrigger(data json.RawMessage) (*Trigger, error)
}

// PanelOptions configures a Panel.
type PanelOptions struct {
	// Config provides timing, discovery and identity settings.
	// Nil uses DefaultConfig().
	Config *Config

	// Dispatcher receives fired actions. Required.
	Dispatcher ActionDispatcher

	// Provider enumerates MIDI ports. Nil uses the registered gomidi
	// driver (DriverPorts).
	Provider PortProvider

	// Logger receives structured log output. Nil disables logging.
	Logger Logger
}

// Panel is the lifecycle controller for one grid device: it owns the
// trigger registry, the grid model, the device session and the event
// loop. Multiple panels can coexist in one process.
//
// Thread Safety:
//   - One mutex guards registry membership, session open/close
//     transitions, grid rebuilds and every LED write.
//   - CreateTrigger, DestroyTrigger, Rebind, SetGlobalButtons, Repaint
//     and Close are safe from any goroutine.
//   - Dispatcher callbacks run outside the lock.
type Panel struct {
	mu         sync.Mutex
	cfg        *Config
	grid       *Grid
	session    *Session
	reg        registry
	overlay    *OverlayTable
	dispatcher ActionDispatcher

	running  bool
	loopDone chan struct{}
	// wake nudges the loop out of its backoff/poll sleep so shutdown
	// does not wait out a full interval. Capacity 1; sends never block.
	wake   chan struct{}
	closed bool

	// now is the debounce clock; replaced in tests.
	now func() time.Time

	logger   Logger
	loggerMu sync.RWMutex
}

// Compile-time check: Panel is a full trigger provider.
var _ TriggerProvider = (*Panel)(nil)

// NewPanel creates a panel. The event loop starts when the first trigger
// is created and stops when the last one is destroyed.
func NewPanel(opts PanelOptions) (*Panel, error) {
	if opts.Dispatcher == nil {
		return nil, fmt.Errorf("launchpad: dispatcher is required")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	provider := opts.Provider
	if provider == nil {
		provider = DriverPorts{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	session := NewSession(provider, cfg.Device.ProductMatch, cfg.Device.PortMatch)
	session.SetLogger(logger)

	return &Panel{
		cfg:        cfg,
		session:    session,
		grid:       NewGrid(session),
		overlay:    DefaultOverlayTable(),
		dispatcher: opts.Dispatcher,
		wake:       make(chan struct{}, 1),
		now:        time.Now,
		logger:     logger,
	}, nil
}

// SetLogger replaces the panel's (and session's) logger.
func (p *Panel) SetLogger(l Logger) {
	if l == nil {
		l = noopLogger{}
	}
	p.loggerMu.Lock()
	p.logger = l
	p.loggerMu.Unlock()
	p.session.SetLogger(l)
}

func (p *Panel) log() Logger {
	p.loggerMu.RLock()
	defer p.loggerMu.RUnlock()
	return p.logger
}

// nudge wakes the event loop without blocking.
func (p *Panel) nudge() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// CreateTrigger registers a new cue binding. The first trigger starts the
// event loop; if a previous loop is still winding down it is joined
// first, so destroy-then-create sequences restart cleanly.
func (p *Panel) CreateTrigger(cfg TriggerConfig) (*Trigger, error) {
	if cfg.Action == "" {
		cfg.Action = ActionPlay
	}
	if _, err := ParseAction(string(cfg.Action)); err != nil {
		return nil, err
	}

	p.mu.Lock()
	for {
		if p.closed {
			p.mu.Unlock()
			return nil, ErrPanelClosed
		}
		if !p.running || !p.reg.empty() {
			break
		}
		// A prior loop is draining after the last destroy; join it
		// before restarting.
		done := p.loopDone
		p.mu.Unlock()
		p.nudge()
		<-done
		p.mu.Lock()
	}

	t := newTrigger(cfg)
	p.reg.add(t)
	if t.UseForCueList {
		// A cue-list trigger binds the six overlay cells too; repaint in
		// one bulk frame like Rebind's overlay path.
		if err := p.grid.Rebuild(p.reg.triggers, p.overlay); err != nil {
			p.log().Error("grid rebuild failed", "error", err)
		}
		if t.bound() {
			p.reg.syncColors(t.Column, t.Row, t.Color)
		}
	} else if t.bound() {
		p.grid.IncrementUsage(t.Column, t.Row)
		if err := p.grid.Set(t.Column, t.Row, t.Color); err != nil {
			p.log().Error("set cell failed", "error", err)
		}
		p.reg.syncColors(t.Column, t.Row, t.Color)
	}

	if !p.running {
		p.running = true
		p.loopDone = make(chan struct{})
		go p.runLoop(p.loopDone)
		p.log().Info("event loop started", "trigger", t.ID)
	}
	p.mu.Unlock()
	return t, nil
}

// DestroyTrigger removes a binding. Destroying the last trigger closes
// the device session and blocks until the event loop exits (bounded by
// the poll timeout).
func (p *Panel) DestroyTrigger(t *Trigger) error {
	p.mu.Lock()
	if !p.reg.remove(t) {
		p.mu.Unlock()
		return ErrTriggerNotRegistered
	}
	if t.UseForCueList {
		// Releases the trigger's share of the overlay cells; a rebuild
		// darkens them when this was the last cue-list trigger.
		if err := p.grid.Rebuild(p.reg.triggers, p.overlay); err != nil {
			p.log().Error("grid rebuild failed", "error", err)
		}
	} else if t.bound() {
		if err := p.grid.DecrementUsage(t.Column, t.Row); err != nil {
			p.log().Error("darken cell failed", "error", err)
		}
	}
	if !p.reg.empty() {
		p.mu.Unlock()
		return nil
	}

	p.session.Close()
	done := p.loopDone
	p.mu.Unlock()
	p.nudge()
	if done != nil {
		<-done
	}
	return nil
}

// Rebind moves a trigger to a new cell and colour. The old cell's usage
// drops (darkening it at zero), the new cell lights up, and co-resident
// triggers adopt the new colour. A full repaint happens only when the
// cue-list flag changed, since that toggles the overlay.
func (p *Panel) Rebind(t *Trigger, col, row int, color RGB, useForCueList bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPanelClosed
	}
	if !p.reg.contains(t) {
		return ErrTriggerNotRegistered
	}

	overlayChanged := t.UseForCueList != useForCueList

	if t.bound() {
		if err := p.grid.DecrementUsage(t.Column, t.Row); err != nil {
			p.log().Error("darken cell failed", "error", err)
		}
	}
	t.Column = col
	t.Row = row
	t.Color = color
	t.UseForCueList = useForCueList
	if t.bound() {
		p.grid.IncrementUsage(t.Column, t.Row)
		if err := p.grid.Set(t.Column, t.Row, t.Color); err != nil {
			p.log().Error("set cell failed", "error", err)
		}
		p.reg.syncColors(t.Column, t.Row, t.Color)
	}

	if overlayChanged {
		return p.grid.Rebuild(p.reg.triggers, p.overlay)
	}
	return nil
}

// SetGlobalButtons replaces the navigation overlay table and repaints
// the whole grid. A nil table restores the defaults.
func (p *Panel) SetGlobalButtons(table *OverlayTable) error {
	if table == nil {
		table = DefaultOverlayTable()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPanelClosed
	}
	p.overlay = table
	return p.grid.Rebuild(p.reg.triggers, p.overlay)
}

// Repaint rebuilds the grid from the registry and emits one bulk frame.
func (p *Panel) Repaint() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPanelClosed
	}
	return p.grid.Rebuild(p.reg.triggers, p.overlay)
}

// Triggers returns a snapshot of the registered triggers, in insertion
// order.
func (p *Panel) Triggers() []Trigger {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Trigger, 0, p.reg.count())
	for _, t := range p.reg.triggers {
		out = append(out, *t)
	}
	return out
}

// TriggerCount returns the number of registered triggers.
func (p *Panel) TriggerCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reg.count()
}

// Overlay returns the current navigation overlay table.
func (p *Panel) Overlay() *OverlayTable {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.overlay
}

// SessionStats returns a snapshot of the device session counters.
func (p *Panel) SessionStats() SessionStats {
	return p.session.Stats()
}

// Metrics returns operational counters for health reporting.
func (p *Panel) Metrics() map[string]any {
	stats := p.session.Stats()
	p.mu.Lock()
	count := p.reg.count()
	running := p.running
	p.mu.Unlock()
	return map[string]any{
		"device_ready":    stats.Ready,
		"frames_sent":     stats.FramesSent,
		"events_received": stats.EventsReceived,
		"events_dropped":  stats.EventsDropped,
		"errors_total":    stats.Errors,
		"trigger_count":   count,
		"loop_running":    running,
	}
}

// Close destroys all triggers, closes the session and waits for the
// event loop. The panel cannot be reused afterwards.
func (p *Panel) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.reg.triggers = nil
	p.session.Close()
	done := p.loopDone
	p.mu.Unlock()
	p.nudge()
	if done != nil {
		<-done
	}
	p.log().Info("panel closed")
	return nil
}

// presenceProbeInterval is how often the loop re-enumerates ports to
// notice an unplugged device.
const presenceProbeInterval = time.Second

// runLoop is the panel's single event goroutine. It seeks the device
// while absent, drains button events while present, and exits when the
// registry empties.
func (p *Panel) runLoop(done chan struct{}) {
	pollTimeout := p.cfg.GetPollTimeout()
	backoff := p.cfg.GetDiscoveryBackoff()
	var lastProbe time.Time

	for {
		p.mu.Lock()
		if p.reg.empty() {
			p.session.Close()
			p.running = false
			p.mu.Unlock()
			close(done)
			p.log().Info("event loop stopped")
			return
		}

		ready := p.session.Ready()
		if !ready {
			if err := p.session.Open(); err == nil {
				ready = true
				lastProbe = time.Now()
				if err := p.grid.Rebuild(p.reg.triggers, p.overlay); err != nil {
					p.log().Error("grid rebuild failed", "error", err)
				}
			}
		} else if time.Since(lastProbe) >= presenceProbeInterval {
			lastProbe = time.Now()
			if !p.session.Present() {
				p.log().Warn("device disappeared, returning to discovery")
				p.session.Close()
				ready = false
			}
		}
		p.mu.Unlock()

		if !ready {
			select {
			case <-p.wake:
			case <-time.After(backoff):
			}
			continue
		}

		select {
		case raw := <-p.session.Events():
			for _, ev := range DecodeEvents(raw) {
				p.handleEvent(ev)
			}
		case <-p.wake:
		case <-time.After(pollTimeout):
		}
	}
}

// handleEvent processes one decoded button transition. The overlay and
// trigger concerns are evaluated independently against the same
// pre-event debounce timestamp, so a navigation button and a trigger
// sharing a cell both fire from one press. Grid writes happen under the
// lock; collected dispatches run after it is released.
func (p *Panel) handleEvent(ev Event) {
	now := p.now()
	col, row := ev.Cell.Column, ev.Cell.Row
	var dispatches []func()

	p.mu.Lock()
	debounced := now.Sub(p.grid.LastPress(col, row)) < p.cfg.GetDebounce()

	if p.reg.overlayActive() {
		if b, ok := p.overlay.At(col, row); ok {
			if ev.Pressed() {
				if !debounced {
					if err := p.grid.Set(col, row, Black); err != nil {
						p.log().Error("flash cell failed", "error", err)
					}
					key := b.Key
					if key == NavStopAll {
						dispatches = append(dispatches, func() { p.dispatcher.DispatchStopAll() })
					} else {
						dispatches = append(dispatches, func() { p.dispatcher.DispatchNavigation(key) })
					}
				}
			} else {
				if err := p.grid.Set(col, row, b.Color); err != nil {
					p.log().Error("restore cell failed", "error", err)
				}
			}
		}
	}

	for _, t := range p.reg.at(col, row) {
		if ev.Pressed() {
			if debounced {
				continue
			}
			if err := p.grid.Set(col, row, Black); err != nil {
				p.log().Error("flash cell failed", "error", err)
			}
			if t.TriggerOnPress {
				snapshot := *t
				dispatches = append(dispatches, func() { p.dispatcher.DispatchCue(snapshot) })
			}
		} else {
			if err := p.grid.Set(col, row, t.Color); err != nil {
				p.log().Error("restore cell failed", "error", err)
			}
			if !t.TriggerOnPress {
				snapshot := *t
				dispatches = append(dispatches, func() { p.dispatcher.DispatchCue(snapshot) })
			}
		}
	}

	if ev.Pressed() && !debounced {
		p.grid.RecordPress(col, row, now)
	}
	p.mu.Unlock()

	for _, dispatch := range dispatches {
		dispatch()
	}
}

// Create implements TriggerProvider.
func (p *Panel) Create(cfg TriggerConfig) (*Trigger, error) {
	return p.CreateTrigger(cfg)
}

// Destroy implements TriggerProvider.
func (p *Panel) Destroy(t *Trigger) error {
	return p.DestroyTrigger(t)
}

// Name implements TriggerProvider: the trigger class name shown by hosts.
func (p *Panel) Name() string { return "Launchpad" }

// EventText implements TriggerProvider.
func (p *Panel) EventText(t *Trigger) string { return t.EventText() }
