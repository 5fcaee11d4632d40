package launchpad

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeClock is an injectable debounce clock.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 8, 24, 19, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// panelHarness bundles a panel with its fakes and fast loop timing.
type panelHarness struct {
	panel      *Panel
	provider   *fakeProvider
	in         *fakeInputPort
	out        *fakeOutputPort
	dispatcher *fakeDispatcher
	clock      *fakeClock
}

func newPanelHarness(t *testing.T) *panelHarness {
	t.Helper()

	provider, in, out := newDevicePorts()
	dispatcher := &fakeDispatcher{}

	cfg := DefaultConfig()
	cfg.Timing.PollTimeoutMs = 5
	cfg.Timing.DiscoveryBackoffMs = 5

	panel, err := NewPanel(PanelOptions{
		Config:     cfg,
		Dispatcher: dispatcher,
		Provider:   provider,
	})
	if err != nil {
		t.Fatalf("NewPanel() error = %v", err)
	}

	clock := newFakeClock()
	panel.now = clock.now
	t.Cleanup(func() { _ = panel.Close() })

	return &panelHarness{
		panel:      panel,
		provider:   provider,
		in:         in,
		out:        out,
		dispatcher: dispatcher,
		clock:      clock,
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// color reads a grid cell under the panel lock.
func (h *panelHarness) color(col, row int) RGB {
	h.panel.mu.Lock()
	defer h.panel.mu.Unlock()
	return h.panel.grid.Color(col, row)
}

// usage reads a grid cell's binding count under the panel lock.
func (h *panelHarness) usage(col, row int) int {
	h.panel.mu.Lock()
	defer h.panel.mu.Unlock()
	return h.panel.grid.Usage(col, row)
}

func (h *panelHarness) press(col, row int) {
	h.in.deliver([]byte{0x90, Cell{Column: col, Row: row}.Address(), 127})
}

func (h *panelHarness) release(col, row int) {
	h.in.deliver([]byte{0x90, Cell{Column: col, Row: row}.Address(), 0})
}

func (h *panelHarness) waitReady(t *testing.T) {
	t.Helper()
	waitFor(t, "device session ready", func() bool {
		return h.panel.SessionStats().Ready
	})
}

func TestNewPanel_RequiresDispatcher(t *testing.T) {
	_, err := NewPanel(PanelOptions{})
	if err == nil {
		t.Fatal("NewPanel() without dispatcher succeeded")
	}
}

func TestPanel_CreateTriggerStartsLoopAndLightsCell(t *testing.T) {
	h := newPanelHarness(t)

	tr, err := h.panel.CreateTrigger(TriggerConfig{
		Description: "opening cue",
		Column:      3, Row: 5,
		Color: Red,
	})
	if err != nil {
		t.Fatalf("CreateTrigger() error = %v", err)
	}
	if tr.Action != ActionPlay {
		t.Errorf("default action = %q, want play", tr.Action)
	}
	if tr.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("trigger got the zero UUID")
	}

	h.waitReady(t)

	// The post-open rebuild paints the trigger cell.
	waitFor(t, "trigger cell lit", func() bool {
		return h.color(3, 5) == Red
	})
	if got := h.panel.TriggerCount(); got != 1 {
		t.Errorf("TriggerCount() = %d, want 1", got)
	}
}

func TestPanel_CreateTriggerInvalidAction(t *testing.T) {
	h := newPanelHarness(t)

	_, err := h.panel.CreateTrigger(TriggerConfig{Column: 1, Row: 1, Action: "launch"})
	if !errors.Is(err, ErrInvalidAction) {
		t.Errorf("error = %v, want ErrInvalidAction", err)
	}
	if h.panel.TriggerCount() != 0 {
		t.Error("invalid trigger was registered")
	}
}

func TestPanel_ReleaseFiresCue(t *testing.T) {
	h := newPanelHarness(t)

	tr, err := h.panel.CreateTrigger(TriggerConfig{
		Description: "blackout",
		Column:      3, Row: 5,
		Color:  Red,
		Action: ActionStop,
	})
	if err != nil {
		t.Fatalf("CreateTrigger() error = %v", err)
	}
	h.waitReady(t)

	h.press(3, 5)
	h.release(3, 5)

	waitFor(t, "cue dispatch", func() bool { return h.dispatcher.cueCount() == 1 })

	cue, _ := h.dispatcher.lastCue()
	if cue.ID != tr.ID {
		t.Errorf("dispatched trigger ID = %s, want %s", cue.ID, tr.ID)
	}
	if cue.Action != ActionStop {
		t.Errorf("dispatched action = %q, want stop", cue.Action)
	}
	if cue.Description != "blackout" {
		t.Errorf("dispatched description = %q", cue.Description)
	}

	// After the release the cell shows the trigger colour again.
	waitFor(t, "cell restored", func() bool { return h.color(3, 5) == Red })
}

func TestPanel_TriggerOnPressFiresOnPress(t *testing.T) {
	h := newPanelHarness(t)

	if _, err := h.panel.CreateTrigger(TriggerConfig{
		Column: 2, Row: 2,
		Color:          Green,
		TriggerOnPress: true,
	}); err != nil {
		t.Fatalf("CreateTrigger() error = %v", err)
	}
	h.waitReady(t)

	h.press(2, 2)
	waitFor(t, "cue dispatch on press", func() bool { return h.dispatcher.cueCount() == 1 })

	// The press flashes the cell dark until release.
	waitFor(t, "cell flashed", func() bool { return h.color(2, 2) == Black })

	h.release(2, 2)
	waitFor(t, "cell restored", func() bool { return h.color(2, 2) == Green })

	// Release must not fire a second cue.
	time.Sleep(20 * time.Millisecond)
	if got := h.dispatcher.cueCount(); got != 1 {
		t.Errorf("cue dispatches = %d, want 1", got)
	}
}

func TestPanel_Debounce(t *testing.T) {
	h := newPanelHarness(t)

	if _, err := h.panel.CreateTrigger(TriggerConfig{
		Column: 3, Row: 5,
		Color:          Red,
		TriggerOnPress: true,
	}); err != nil {
		t.Fatalf("CreateTrigger() error = %v", err)
	}
	h.waitReady(t)

	// Two presses inside the debounce window: one dispatch.
	h.press(3, 5)
	h.release(3, 5)
	h.press(3, 5)
	h.release(3, 5)

	waitFor(t, "first dispatch", func() bool { return h.dispatcher.cueCount() >= 1 })
	time.Sleep(20 * time.Millisecond)
	if got := h.dispatcher.cueCount(); got != 1 {
		t.Fatalf("cue dispatches = %d, want 1 (debounced)", got)
	}

	// Past the window the button fires again.
	h.clock.advance(2 * time.Second)
	h.press(3, 5)
	h.release(3, 5)
	waitFor(t, "second dispatch", func() bool { return h.dispatcher.cueCount() == 2 })
}

func TestPanel_DebouncedReleaseStillRestoresColor(t *testing.T) {
	h := newPanelHarness(t)

	if _, err := h.panel.CreateTrigger(TriggerConfig{
		Column: 4, Row: 4,
		Color: White,
	}); err != nil {
		t.Fatalf("CreateTrigger() error = %v", err)
	}
	h.waitReady(t)

	h.press(4, 4)
	h.release(4, 4)
	waitFor(t, "first dispatch", func() bool { return h.dispatcher.cueCount() == 1 })

	// Debounce suppresses the press-side flash, but the release still
	// restores the colour and release-fired triggers still dispatch.
	h.press(4, 4)
	h.release(4, 4)
	waitFor(t, "cell restored", func() bool { return h.color(4, 4) == White })
	waitFor(t, "release dispatch", func() bool { return h.dispatcher.cueCount() == 2 })
}

func TestPanel_OverlayNavigation(t *testing.T) {
	h := newPanelHarness(t)

	if _, err := h.panel.CreateTrigger(TriggerConfig{
		Column: 5, Row: 5,
		Color:         RGB{B: 255},
		UseForCueList: true,
	}); err != nil {
		t.Fatalf("CreateTrigger() error = %v", err)
	}
	h.waitReady(t)
	waitFor(t, "overlay painted", func() bool { return h.color(9, 9) == Green })

	// Go button.
	h.press(9, 9)
	waitFor(t, "navigation dispatch", func() bool { return h.dispatcher.navCount() == 1 })
	if key, _ := h.dispatcher.lastNav(); key != NavGo {
		t.Errorf("navigation key = %q, want go", key)
	}
	h.release(9, 9)
	waitFor(t, "go button restored", func() bool { return h.color(9, 9) == Green })

	// Stop-all button dispatches separately.
	h.clock.advance(2 * time.Second)
	h.press(9, 6)
	waitFor(t, "stop-all dispatch", func() bool { return h.dispatcher.stopAllCount() == 1 })
	h.release(9, 6)

	if got := h.dispatcher.cueCount(); got != 0 {
		t.Errorf("cue dispatches = %d, want 0", got)
	}
}

func TestPanel_OverlayInactiveWithoutCueListTrigger(t *testing.T) {
	h := newPanelHarness(t)

	if _, err := h.panel.CreateTrigger(TriggerConfig{
		Column: 5, Row: 5,
		Color: Red,
	}); err != nil {
		t.Fatalf("CreateTrigger() error = %v", err)
	}
	h.waitReady(t)
	waitFor(t, "trigger lit", func() bool { return h.color(5, 5) == Red })

	// Navigation cells are plain buttons when no trigger opts in.
	h.press(9, 9)
	h.release(9, 9)
	time.Sleep(20 * time.Millisecond)
	if h.dispatcher.navCount() != 0 || h.dispatcher.stopAllCount() != 0 {
		t.Error("overlay dispatched while inactive")
	}
}

func TestPanel_OverlayAndTriggerShareCell(t *testing.T) {
	h := newPanelHarness(t)

	// A cue-list trigger bound onto the Go cell: one press fires both.
	tr, err := h.panel.CreateTrigger(TriggerConfig{
		Column: 9, Row: 9,
		Color:          Red,
		TriggerOnPress: true,
		UseForCueList:  true,
	})
	if err != nil {
		t.Fatalf("CreateTrigger() error = %v", err)
	}
	h.waitReady(t)

	h.press(9, 9)
	waitFor(t, "both dispatches", func() bool {
		return h.dispatcher.navCount() == 1 && h.dispatcher.cueCount() == 1
	})
	h.release(9, 9)

	if cue, _ := h.dispatcher.lastCue(); cue.ID != tr.ID {
		t.Errorf("cue from wrong trigger: %s", cue.ID)
	}
}

func TestPanel_CreateCueListTriggerPaintsOverlay(t *testing.T) {
	h := newPanelHarness(t)

	if _, err := h.panel.CreateTrigger(TriggerConfig{Column: 2, Row: 2, Color: Green}); err != nil {
		t.Fatalf("CreateTrigger() error = %v", err)
	}
	h.waitReady(t)
	if got := h.color(9, 9); got != Black {
		t.Fatalf("Go cell lit without a cue-list trigger: %+v", got)
	}

	// Adding a cue-list trigger to a live session lights the overlay
	// without any explicit repaint.
	if _, err := h.panel.CreateTrigger(TriggerConfig{
		Column: 5, Row: 5,
		Color:         RGB{B: 255},
		UseForCueList: true,
	}); err != nil {
		t.Fatalf("CreateTrigger() error = %v", err)
	}

	if got := h.color(9, 9); got != Green {
		t.Errorf("Go cell = %+v, want green", got)
	}
	if got := h.color(9, 6); got != Red {
		t.Errorf("stop-all cell = %+v, want red", got)
	}
	if got := h.usage(1, 1); got != 1 {
		t.Errorf("up cell usage = %d, want 1", got)
	}
}

func TestPanel_DestroyLastCueListTriggerDarkensOverlay(t *testing.T) {
	h := newPanelHarness(t)

	if _, err := h.panel.CreateTrigger(TriggerConfig{Column: 2, Row: 2, Color: Green}); err != nil {
		t.Fatalf("CreateTrigger() error = %v", err)
	}
	cueList, err := h.panel.CreateTrigger(TriggerConfig{
		Column: 5, Row: 5,
		Color:         RGB{B: 255},
		UseForCueList: true,
	})
	if err != nil {
		t.Fatalf("CreateTrigger() error = %v", err)
	}
	h.waitReady(t)
	waitFor(t, "overlay painted", func() bool { return h.color(9, 9) == Green })

	if err := h.panel.DestroyTrigger(cueList); err != nil {
		t.Fatalf("DestroyTrigger() error = %v", err)
	}

	// The last cue-list binding is gone: all six overlay cells go dark.
	overlayCells := []struct{ col, row int }{
		{1, 1}, {2, 1}, {3, 1}, {4, 1}, {9, 9}, {9, 6},
	}
	for _, c := range overlayCells {
		if got := h.color(c.col, c.row); got != Black {
			t.Errorf("overlay cell (%d,%d) = %+v, want black", c.col, c.row, got)
		}
		if got := h.usage(c.col, c.row); got != 0 {
			t.Errorf("overlay cell (%d,%d) usage = %d, want 0", c.col, c.row, got)
		}
	}
	if got := h.color(5, 5); got != Black {
		t.Errorf("destroyed trigger's cell = %+v, want black", got)
	}

	// The surviving trigger is untouched.
	if got := h.color(2, 2); got != Green {
		t.Errorf("surviving trigger cell = %+v, want green", got)
	}
	if got := h.usage(2, 2); got != 1 {
		t.Errorf("surviving trigger cell usage = %d, want 1", got)
	}
}

func TestPanel_EndToEndWireFormat(t *testing.T) {
	h := newPanelHarness(t)

	if _, err := h.panel.CreateTrigger(TriggerConfig{
		Description: "sfx",
		Column:      3, Row: 5,
		Color: RGB{R: 255},
	}); err != nil {
		t.Fatalf("CreateTrigger() error = %v", err)
	}
	h.waitReady(t)
	waitFor(t, "cell lit", func() bool { return h.color(3, 5) == RGB{R: 255} })

	// Raw press and release records as the device emits them.
	h.in.deliver([]byte{0x90, 53, 127})
	h.in.deliver([]byte{0x90, 53, 0})

	waitFor(t, "cue dispatch", func() bool { return h.dispatcher.cueCount() == 1 })

	// The restore write is the exact single-cell frame for address 53.
	want := []byte{0xF0, 0x00, 0x20, 0x29, 0x02, 0x0C, 0x03, 0x03, 53, 0x7F, 0x00, 0x00, 0xF7}
	waitFor(t, "restore frame", func() bool {
		return bytes.Equal(h.out.lastSent(), want)
	})
}

func TestPanel_DestroyLastTriggerStopsLoop(t *testing.T) {
	h := newPanelHarness(t)

	tr, err := h.panel.CreateTrigger(TriggerConfig{Column: 1, Row: 1, Color: White})
	if err != nil {
		t.Fatalf("CreateTrigger() error = %v", err)
	}
	h.waitReady(t)

	if err := h.panel.DestroyTrigger(tr); err != nil {
		t.Fatalf("DestroyTrigger() error = %v", err)
	}

	if h.panel.TriggerCount() != 0 {
		t.Error("trigger still registered")
	}
	if h.panel.SessionStats().Ready {
		t.Error("session still ready after last destroy")
	}
	if h.out.isOpen() {
		t.Error("output port still open")
	}
	if running := h.panel.Metrics()["loop_running"].(bool); running {
		t.Error("event loop still running")
	}
	// The device was darkened on the way out.
	if !bytes.Equal(h.out.lastSent(), AllOffFrame()) {
		t.Error("device not darkened on session close")
	}
}

func TestPanel_DestroyUnknownTrigger(t *testing.T) {
	h := newPanelHarness(t)

	err := h.panel.DestroyTrigger(&Trigger{Column: 1, Row: 1})
	if !errors.Is(err, ErrTriggerNotRegistered) {
		t.Errorf("error = %v, want ErrTriggerNotRegistered", err)
	}
}

func TestPanel_RestartAfterDestroy(t *testing.T) {
	h := newPanelHarness(t)

	tr, err := h.panel.CreateTrigger(TriggerConfig{Column: 1, Row: 1, Color: White})
	if err != nil {
		t.Fatalf("CreateTrigger() error = %v", err)
	}
	h.waitReady(t)
	if err := h.panel.DestroyTrigger(tr); err != nil {
		t.Fatalf("DestroyTrigger() error = %v", err)
	}

	// A fresh trigger restarts the loop and reopens the device.
	if _, err := h.panel.CreateTrigger(TriggerConfig{Column: 2, Row: 2, Color: Green}); err != nil {
		t.Fatalf("CreateTrigger() after destroy error = %v", err)
	}
	h.waitReady(t)
	waitFor(t, "new trigger lit", func() bool { return h.color(2, 2) == Green })
}

func TestPanel_DeviceAbsentThenPluggedIn(t *testing.T) {
	h := newPanelHarness(t)

	// Start with no ports visible.
	h.provider.setPorts(nil, nil)

	if _, err := h.panel.CreateTrigger(TriggerConfig{Column: 3, Row: 5, Color: Red}); err != nil {
		t.Fatalf("CreateTrigger() error = %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if h.panel.SessionStats().Ready {
		t.Fatal("session ready with no device")
	}

	// Plug the device in: discovery picks it up and the rebuild paints
	// the registered trigger.
	h.provider.setPorts([]InputPort{h.in}, []OutputPort{h.out})
	h.waitReady(t)
	waitFor(t, "trigger painted after plug-in", func() bool {
		last := h.out.lastSent()
		return len(last) == GridFrameLen
	})
	if h.color(3, 5) != Red {
		t.Errorf("trigger cell = %+v, want red", h.color(3, 5))
	}
}

func TestPanel_DeviceUnplugReturnsToDiscovery(t *testing.T) {
	h := newPanelHarness(t)

	if _, err := h.panel.CreateTrigger(TriggerConfig{Column: 1, Row: 1, Color: White}); err != nil {
		t.Fatalf("CreateTrigger() error = %v", err)
	}
	h.waitReady(t)

	// Unplug: the ports vanish from enumeration; the presence probe
	// notices within its interval.
	h.provider.setPorts(nil, nil)
	waitFor(t, "session to drop", func() bool {
		return !h.panel.SessionStats().Ready
	})

	// Plug back in: rediscovered and repainted.
	h.provider.setPorts([]InputPort{h.in}, []OutputPort{h.out})
	h.waitReady(t)
}

func TestPanel_Rebind(t *testing.T) {
	h := newPanelHarness(t)

	tr, err := h.panel.CreateTrigger(TriggerConfig{Column: 3, Row: 5, Color: Red})
	if err != nil {
		t.Fatalf("CreateTrigger() error = %v", err)
	}
	h.waitReady(t)
	waitFor(t, "cell lit", func() bool { return h.color(3, 5) == Red })

	if err := h.panel.Rebind(tr, 7, 7, Green, false); err != nil {
		t.Fatalf("Rebind() error = %v", err)
	}

	if h.color(3, 5) != Black {
		t.Errorf("old cell = %+v, want black", h.color(3, 5))
	}
	if h.color(7, 7) != Green {
		t.Errorf("new cell = %+v, want green", h.color(7, 7))
	}
	if tr.Column != 7 || tr.Row != 7 || tr.Color != Green {
		t.Errorf("trigger not updated: %+v", tr)
	}
}

func TestPanel_RebindTogglingOverlayRepaints(t *testing.T) {
	h := newPanelHarness(t)

	tr, err := h.panel.CreateTrigger(TriggerConfig{Column: 5, Row: 5, Color: Red})
	if err != nil {
		t.Fatalf("CreateTrigger() error = %v", err)
	}
	h.waitReady(t)

	if err := h.panel.Rebind(tr, 5, 5, Red, true); err != nil {
		t.Fatalf("Rebind() error = %v", err)
	}
	if h.color(9, 9) != Green {
		t.Error("overlay not painted after cue-list flag set")
	}

	if err := h.panel.Rebind(tr, 5, 5, Red, false); err != nil {
		t.Fatalf("Rebind() error = %v", err)
	}
	if h.color(9, 9) != Black {
		t.Error("overlay not cleared after cue-list flag dropped")
	}
}

func TestPanel_RebindUnknownTrigger(t *testing.T) {
	h := newPanelHarness(t)

	err := h.panel.Rebind(&Trigger{}, 1, 1, Red, false)
	if !errors.Is(err, ErrTriggerNotRegistered) {
		t.Errorf("error = %v, want ErrTriggerNotRegistered", err)
	}
}

func TestPanel_SharedCellColorSync(t *testing.T) {
	h := newPanelHarness(t)

	a, err := h.panel.CreateTrigger(TriggerConfig{Column: 3, Row: 3, Color: Red})
	if err != nil {
		t.Fatalf("CreateTrigger() error = %v", err)
	}
	b, err := h.panel.CreateTrigger(TriggerConfig{Column: 3, Row: 3, Color: Green})
	if err != nil {
		t.Fatalf("CreateTrigger() error = %v", err)
	}

	// Last writer wins: both triggers now carry green.
	if a.Color != Green || b.Color != Green {
		t.Errorf("colours not synced: a=%+v b=%+v", a.Color, b.Color)
	}
	if h.color(3, 3) != Green {
		t.Errorf("cell = %+v, want green", h.color(3, 3))
	}

	// Destroying one leaves the cell lit for the survivor.
	if err := h.panel.DestroyTrigger(a); err != nil {
		t.Fatalf("DestroyTrigger() error = %v", err)
	}
	if h.color(3, 3) != Green {
		t.Errorf("cell darkened while still in use: %+v", h.color(3, 3))
	}
}

func TestPanel_SetGlobalButtons(t *testing.T) {
	h := newPanelHarness(t)

	if _, err := h.panel.CreateTrigger(TriggerConfig{
		Column: 5, Row: 5, Color: Red, UseForCueList: true,
	}); err != nil {
		t.Fatalf("CreateTrigger() error = %v", err)
	}
	h.waitReady(t)

	table := DefaultOverlayTable()
	table.set(OverlayButton{Key: NavGo, Column: 8, Row: 8, Color: RGB{B: 255}})
	if err := h.panel.SetGlobalButtons(table); err != nil {
		t.Fatalf("SetGlobalButtons() error = %v", err)
	}

	if h.color(8, 8) != (RGB{B: 255}) {
		t.Errorf("moved go button = %+v", h.color(8, 8))
	}
	if h.color(9, 9) != Black {
		t.Error("old go cell still lit")
	}

	// Nil restores the defaults.
	if err := h.panel.SetGlobalButtons(nil); err != nil {
		t.Fatalf("SetGlobalButtons(nil) error = %v", err)
	}
	if h.color(9, 9) != Green {
		t.Error("default go button not restored")
	}
}

func TestPanel_Metrics(t *testing.T) {
	h := newPanelHarness(t)

	m := h.panel.Metrics()
	if m["trigger_count"].(int) != 0 {
		t.Errorf("trigger_count = %v", m["trigger_count"])
	}
	if m["loop_running"].(bool) {
		t.Error("loop_running = true before first trigger")
	}

	if _, err := h.panel.CreateTrigger(TriggerConfig{Column: 1, Row: 1, Color: White}); err != nil {
		t.Fatalf("CreateTrigger() error = %v", err)
	}
	h.waitReady(t)

	m = h.panel.Metrics()
	if m["trigger_count"].(int) != 1 {
		t.Errorf("trigger_count = %v, want 1", m["trigger_count"])
	}
	if !m["loop_running"].(bool) {
		t.Error("loop_running = false with a registered trigger")
	}
	if !m["device_ready"].(bool) {
		t.Error("device_ready = false with an open session")
	}
}

func TestPanel_Close(t *testing.T) {
	h := newPanelHarness(t)

	if _, err := h.panel.CreateTrigger(TriggerConfig{Column: 1, Row: 1, Color: White}); err != nil {
		t.Fatalf("CreateTrigger() error = %v", err)
	}
	h.waitReady(t)

	if err := h.panel.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if h.panel.SessionStats().Ready {
		t.Error("session ready after close")
	}

	// The panel is unusable afterwards.
	if _, err := h.panel.CreateTrigger(TriggerConfig{Column: 2, Row: 2}); !errors.Is(err, ErrPanelClosed) {
		t.Errorf("CreateTrigger() after close error = %v, want ErrPanelClosed", err)
	}
	if err := h.panel.Repaint(); !errors.Is(err, ErrPanelClosed) {
		t.Errorf("Repaint() after close error = %v, want ErrPanelClosed", err)
	}

	// Idempotent.
	if err := h.panel.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestPanel_TriggerProviderSurface(t *testing.T) {
	h := newPanelHarness(t)
	var provider TriggerProvider = h.panel

	if got := provider.Name(); got != "Launchpad" {
		t.Errorf("Name() = %q", got)
	}

	tr, err := provider.Create(TriggerConfig{Column: 3, Row: 5, Color: Red})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if got := provider.EventText(tr); got != "Button (3, 5)" {
		t.Errorf("EventText() = %q", got)
	}
	if err := provider.Destroy(tr); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}
}
