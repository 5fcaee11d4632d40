package launchpad

import (
	"encoding/json"
	"fmt"
	"os"
)

// TriggerRecord is the on-disk form of one trigger binding. Field names
// match the host cue player's trigger documents, so existing layouts load
// unchanged; "action" is an extension and defaults to play when absent.
// Unknown keys are tolerated.
type TriggerRecord struct {
	Description   string `json:"description"`
	Row           int    `json:"row"`
	Column        int    `json:"column"`
	R             uint8  `json:"r"`
	G             uint8  `json:"g"`
	B             uint8  `json:"b"`
	OnPressed     bool   `json:"on_pressed"`
	UseForCueList bool   `json:"use_for_cue_list"`
	Action        string `json:"action,omitempty"`
}

// GlobalButtonRecord is the on-disk form of one navigation button.
type GlobalButtonRecord struct {
	R      uint8 `json:"r"`
	G      uint8 `json:"g"`
	B      uint8 `json:"b"`
	Column int   `json:"column"`
	Row    int   `json:"row"`
}

// Layout is the trigger layout document: a set of named trigger bindings
// plus optional navigation-button placements. Absent global_buttons keys
// keep their default placement.
type Layout struct {
	Triggers      map[string]TriggerRecord      `json:"triggers"`
	GlobalButtons map[NavKey]GlobalButtonRecord `json:"global_buttons,omitempty"`
}

// LoadLayout reads and validates a layout document.
func LoadLayout(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading layout file: %w", err)
	}
	var layout Layout
	if err := json.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", ErrInvalidLayout, path, err)
	}
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	return &layout, nil
}

// SaveLayout writes a layout document.
func SaveLayout(path string, layout *Layout) error {
	data, err := json.MarshalIndent(layout, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding layout: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing layout file: %w", err)
	}
	return nil
}

// Validate checks every record for in-range coordinates and a known
// action. Row/column 0 marks an unbound trigger and is accepted.
func (l *Layout) Validate() error {
	for name, rec := range l.Triggers {
		if err := validateBinding(rec.Column, rec.Row); err != nil {
			return fmt.Errorf("%w: trigger %q: %w", ErrInvalidLayout, name, err)
		}
		if rec.Action != "" {
			if _, err := ParseAction(rec.Action); err != nil {
				return fmt.Errorf("%w: trigger %q: %w", ErrInvalidLayout, name, err)
			}
		}
	}
	for key, rec := range l.GlobalButtons {
		if !validNavKey(key) {
			return fmt.Errorf("%w: unknown global button %q", ErrInvalidLayout, key)
		}
		if !(Cell{Column: rec.Column, Row: rec.Row}).IsValid() {
			return fmt.Errorf("%w: global button %q cell (%d,%d) outside grid", ErrInvalidLayout, key, rec.Column, rec.Row)
		}
	}
	return nil
}

// validateBinding accepts either a fully unbound (0,0) or an in-grid cell.
func validateBinding(col, row int) error {
	if col == 0 && row == 0 {
		return nil
	}
	if !(Cell{Column: col, Row: row}).IsValid() {
		return fmt.Errorf("cell (%d,%d) outside grid", col, row)
	}
	return nil
}

func validNavKey(key NavKey) bool {
	for _, k := range navOrder {
		if k == key {
			return true
		}
	}
	return false
}

// OverlayTable builds the navigation table: the defaults overridden by
// any buttons the document configures.
func (l *Layout) OverlayTable() *OverlayTable {
	table := DefaultOverlayTable()
	for key, rec := range l.GlobalButtons {
		table.set(OverlayButton{
			Key:    key,
			Column: rec.Column,
			Row:    rec.Row,
			Color:  RGB{R: rec.R, G: rec.G, B: rec.B},
		})
	}
	return table
}

// triggerConfig converts a record to a registration request.
func (r TriggerRecord) triggerConfig() TriggerConfig {
	action := Action(r.Action)
	if r.Action == "" {
		action = ActionPlay
	}
	return TriggerConfig{
		Description:    r.Description,
		Column:         r.Column,
		Row:            r.Row,
		Color:          RGB{R: r.R, G: r.G, B: r.B},
		Action:         action,
		TriggerOnPress: r.OnPressed,
		UseForCueList:  r.UseForCueList,
	}
}

// recordFor converts a live trigger back to its on-disk form.
func recordFor(t Trigger) TriggerRecord {
	return TriggerRecord{
		Description:   t.Description,
		Row:           t.Row,
		Column:        t.Column,
		R:             t.Color.R,
		G:             t.Color.G,
		B:             t.Color.B,
		OnPressed:     t.TriggerOnPress,
		UseForCueList: t.UseForCueList,
		Action:        string(t.Action),
	}
}

// ApplyLayout replaces the panel's triggers and overlay with the
// document's contents. New triggers are created before the old ones are
// destroyed so the registry never empties mid-swap and the event loop
// keeps running.
func (p *Panel) ApplyLayout(layout *Layout) error {
	if err := layout.Validate(); err != nil {
		return err
	}

	old := p.currentTriggers()

	for name, rec := range layout.Triggers {
		if _, err := p.CreateTrigger(rec.triggerConfig()); err != nil {
			return fmt.Errorf("creating trigger %q: %w", name, err)
		}
	}
	for _, t := range old {
		if err := p.DestroyTrigger(t); err != nil {
			return err
		}
	}
	return p.SetGlobalButtons(layout.OverlayTable())
}

// currentTriggers snapshots the live trigger references.
func (p *Panel) currentTriggers() []*Trigger {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Trigger, len(p.reg.triggers))
	copy(out, p.reg.triggers)
	return out
}

// ExportLayout captures the current triggers and overlay as a document.
// Trigger keys are the registration UUIDs.
func (p *Panel) ExportLayout() *Layout {
	layout := &Layout{
		Triggers:      make(map[string]TriggerRecord),
		GlobalButtons: make(map[NavKey]GlobalButtonRecord),
	}
	for _, t := range p.Triggers() {
		layout.Triggers[t.ID.String()] = recordFor(t)
	}
	for _, b := range p.Overlay().Buttons() {
		layout.GlobalButtons[b.Key] = GlobalButtonRecord{
			R:      b.Color.R,
			G:      b.Color.G,
			B:      b.Color.B,
			Column: b.Column,
			Row:    b.Row,
		}
	}
	return layout
}

// MarshalTrigger implements TriggerProvider: one trigger as its on-disk
// record.
func (p *Panel) MarshalTrigger(t *Trigger) (json.RawMessage, error) {
	p.mu.Lock()
	registered := p.reg.contains(t)
	snapshot := *t
	p.mu.Unlock()
	if !registered {
		return nil, ErrTriggerNotRegistered
	}
	return json.Marshal(recordFor(snapshot))
}

// UnmarshalTrigger implements TriggerProvider: registers a trigger from
// its on-disk record.
func (p *Panel) UnmarshalTrigger(data json.RawMessage) (*Trigger, error) {
	var rec TriggerRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLayout, err)
	}
	if err := validateBinding(rec.Column, rec.Row); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLayout, err)
	}
	return p.CreateTrigger(rec.triggerConfig())
}
