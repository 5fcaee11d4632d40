package launchpad

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Action is the cue operation a trigger fires when its button transitions.
type Action string

// Supported trigger actions.
const (
	ActionStop  Action = "stop"
	ActionPause Action = "pause"
	ActionPlay  Action = "play"
)

// ParseAction converts a layout/config string to an Action.
func ParseAction(s string) (Action, error) {
	switch Action(strings.ToLower(strings.TrimSpace(s))) {
	case ActionStop:
		return ActionStop, nil
	case ActionPause:
		return ActionPause, nil
	case ActionPlay:
		return ActionPlay, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, s)
	}
}

// Trigger is one cue binding on the panel. A trigger with Row 0 is
// unbound: it exists in the registry but lights no cell and matches no
// button event.
type Trigger struct {
	ID             uuid.UUID
	Description    string
	Column         int
	Row            int
	Color          RGB
	Action         Action
	TriggerOnPress bool // fire on press rather than on release
	UseForCueList  bool // enable the navigation overlay while registered
}

// newTrigger assigns a fresh identity to a binding.
func newTrigger(cfg TriggerConfig) *Trigger {
	return &Trigger{
		ID:             uuid.New(),
		Description:    cfg.Description,
		Column:         cfg.Column,
		Row:            cfg.Row,
		Color:          cfg.Color,
		Action:         cfg.Action,
		TriggerOnPress: cfg.TriggerOnPress,
		UseForCueList:  cfg.UseForCueList,
	}
}

// bound reports whether the trigger occupies a grid cell.
func (t *Trigger) bound() bool {
	return Cell{Column: t.Column, Row: t.Row}.IsValid()
}

// DisplayName is the human-readable trigger class name shown by hosts,
// qualified by the firing polarity.
func (t *Trigger) DisplayName() string {
	if t.TriggerOnPress {
		return "Launchpad Pressed"
	}
	return "Launchpad Released"
}

// EventText describes the bound button, e.g. "Button (3, 5)".
func (t *Trigger) EventText() string {
	return fmt.Sprintf("Button (%d, %d)", t.Column, t.Row)
}

// TriggerConfig is the caller-supplied description of a binding.
type TriggerConfig struct {
	Description    string
	Column         int
	Row            int
	Color          RGB
	Action         Action
	TriggerOnPress bool
	UseForCueList  bool
}

// NavKey identifies one of the cue-list navigation overlay buttons.
type NavKey string

// Overlay button identities, in their fixed presentation order.
const (
	NavUp      NavKey = "up"
	NavDown    NavKey = "down"
	NavLeft    NavKey = "left"
	NavRight   NavKey = "right"
	NavGo      NavKey = "go"
	NavStopAll NavKey = "stop_all"
)

// navOrder fixes iteration order for compositing and serialization.
var navOrder = [6]NavKey{NavUp, NavDown, NavLeft, NavRight, NavGo, NavStopAll}

// OverlayButton is one navigation button's placement and colour.
type OverlayButton struct {
	Key    NavKey
	Column int
	Row    int
	Color  RGB
}

// OverlayTable holds the six navigation buttons composited onto the grid
// whenever any registered trigger carries the cue-list flag.
type OverlayTable struct {
	buttons map[NavKey]OverlayButton
}

// DefaultOverlayTable returns the stock navigation layout: the four arrow
// keys down the left column in white, Go bottom-right in green and
// stop-all three cells left of it in red.
func DefaultOverlayTable() *OverlayTable {
	t := &OverlayTable{buttons: make(map[NavKey]OverlayButton, 6)}
	t.set(OverlayButton{Key: NavUp, Column: 1, Row: 1, Color: White})
	t.set(OverlayButton{Key: NavDown, Column: 2, Row: 1, Color: White})
	t.set(OverlayButton{Key: NavLeft, Column: 3, Row: 1, Color: White})
	t.set(OverlayButton{Key: NavRight, Column: 4, Row: 1, Color: White})
	t.set(OverlayButton{Key: NavGo, Column: 9, Row: 9, Color: Green})
	t.set(OverlayButton{Key: NavStopAll, Column: 9, Row: 6, Color: Red})
	return t
}

func (t *OverlayTable) set(b OverlayButton) {
	t.buttons[b.Key] = b
}

// Button returns the placement of one navigation key.
func (t *OverlayTable) Button(key NavKey) (OverlayButton, bool) {
	b, ok := t.buttons[key]
	return b, ok
}

// Buttons returns all six buttons in fixed order.
func (t *OverlayTable) Buttons() []OverlayButton {
	out := make([]OverlayButton, 0, len(navOrder))
	for _, key := range navOrder {
		if b, ok := t.buttons[key]; ok {
			out = append(out, b)
		}
	}
	return out
}

// At returns the navigation button occupying a cell, if any.
func (t *OverlayTable) At(col, row int) (OverlayButton, bool) {
	for _, key := range navOrder {
		if b, ok := t.buttons[key]; ok && b.Column == col && b.Row == row {
			return b, true
		}
	}
	return OverlayButton{}, false
}

// registry is the insertion-ordered set of live triggers. Not internally
// synchronised; the Panel's mutex guards every call.
type registry struct {
	triggers []*Trigger
}

func (r *registry) add(t *Trigger) {
	r.triggers = append(r.triggers, t)
}

// remove deletes a trigger by identity, preserving insertion order.
func (r *registry) remove(t *Trigger) bool {
	for i, have := range r.triggers {
		if have == t {
			r.triggers = append(r.triggers[:i], r.triggers[i+1:]...)
			return true
		}
	}
	return false
}

func (r *registry) contains(t *Trigger) bool {
	for _, have := range r.triggers {
		if have == t {
			return true
		}
	}
	return false
}

func (r *registry) empty() bool { return len(r.triggers) == 0 }

func (r *registry) count() int { return len(r.triggers) }

// at returns every trigger bound to a cell, in insertion order.
func (r *registry) at(col, row int) []*Trigger {
	var out []*Trigger
	for _, t := range r.triggers {
		if t.bound() && t.Column == col && t.Row == row {
			out = append(out, t)
		}
	}
	return out
}

// overlayActive reports whether any registered trigger requests the
// navigation overlay.
func (r *registry) overlayActive() bool {
	for _, t := range r.triggers {
		if t.UseForCueList {
			return true
		}
	}
	return false
}

// syncColors records color on every trigger sharing the cell, so
// co-resident bindings agree with the most recent writer.
func (r *registry) syncColors(col, row int, color RGB) {
	for _, t := range r.at(col, row) {
		t.Color = color
	}
}
