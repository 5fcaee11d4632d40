package launchpad

import "time"

// FrameWriter sends one encoded SysEx frame to the device. The session
// implements it; grid tests substitute a recorder.
type FrameWriter interface {
	WriteFrame(frame []byte) error
}

// gridCell is the model for one button: its current colour, how many
// bindings light it, and when it was last pressed (for debouncing).
type gridCell struct {
	color     RGB
	usage     int
	lastPress time.Time
}

// Grid is the in-memory model of the 9x9 LED matrix. It is allocated once
// per Panel and survives device session close/reopen, so a reopen can
// restore the previous visual state with a single bulk repaint.
//
// Grid is not internally synchronised; the owning Panel's mutex guards
// every call.
type Grid struct {
	cells  [9][9]gridCell // indexed [column-1][row-1]
	writer FrameWriter
}

// NewGrid returns a dark grid that emits frames through writer.
func NewGrid(writer FrameWriter) *Grid {
	return &Grid{writer: writer}
}

// cellAt returns the model cell for 1-indexed coordinates, or nil when the
// coordinates fall outside the grid.
func (g *Grid) cellAt(col, row int) *gridCell {
	if col < 1 || col > 9 || row < 1 || row > 9 {
		return nil
	}
	return &g.cells[col-1][row-1]
}

// Set updates one cell's colour and emits a single-cell frame.
// Out-of-range coordinates are a silent no-op.
func (g *Grid) Set(col, row int, color RGB) error {
	c := g.cellAt(col, row)
	if c == nil {
		return nil
	}
	c.color = color
	frame, err := EncodeSetColor(Cell{Column: col, Row: row}, color)
	if err != nil {
		return err
	}
	return g.writer.WriteFrame(frame)
}

// Color returns the recorded colour of a cell; black for out-of-range.
func (g *Grid) Color(col, row int) RGB {
	c := g.cellAt(col, row)
	if c == nil {
		return Black
	}
	return c.color
}

// Usage returns the binding count of a cell; zero for out-of-range.
func (g *Grid) Usage(col, row int) int {
	c := g.cellAt(col, row)
	if c == nil {
		return 0
	}
	return c.usage
}

// LastPress returns the recorded press time of a cell.
func (g *Grid) LastPress(col, row int) time.Time {
	c := g.cellAt(col, row)
	if c == nil {
		return time.Time{}
	}
	return c.lastPress
}

// RecordPress stamps the cell's debounce clock.
func (g *Grid) RecordPress(col, row int, at time.Time) {
	if c := g.cellAt(col, row); c != nil {
		c.lastPress = at
	}
}

// IncrementUsage adds one binding to a cell.
func (g *Grid) IncrementUsage(col, row int) {
	if c := g.cellAt(col, row); c != nil {
		c.usage++
	}
}

// DecrementUsage removes one binding from a cell. Usage never goes below
// zero; on reaching zero the cell is forced dark.
func (g *Grid) DecrementUsage(col, row int) error {
	c := g.cellAt(col, row)
	if c == nil || c.usage == 0 {
		return nil
	}
	c.usage--
	if c.usage == 0 {
		return g.Set(col, row, Black)
	}
	return nil
}

// Rebuild repaints the whole grid from the registered triggers and the
// overlay table: every cell is zeroed, each trigger replays its binding
// (usage + colour), and if any trigger carries the cue-list flag the six
// overlay cells are composited on top. One bulk frame is emitted at the
// end so the device updates atomically.
//
// Press timestamps survive the rebuild so debouncing is unaffected.
func (g *Grid) Rebuild(triggers []*Trigger, overlay *OverlayTable) error {
	for col := 0; col < 9; col++ {
		for row := 0; row < 9; row++ {
			g.cells[col][row].color = Black
			g.cells[col][row].usage = 0
		}
	}

	for _, t := range triggers {
		if c := g.cellAt(t.Column, t.Row); c != nil {
			c.usage++
			c.color = t.Color
		}
		if t.UseForCueList && overlay != nil {
			for _, b := range overlay.Buttons() {
				if c := g.cellAt(b.Column, b.Row); c != nil {
					c.usage++
					c.color = b.Color
				}
			}
		}
	}

	var colors [9][9]RGB
	for col := 0; col < 9; col++ {
		for row := 0; row < 9; row++ {
			colors[col][row] = g.cells[col][row].color
		}
	}
	return g.writer.WriteFrame(EncodeGridColors(&colors))
}

// AllOffFrame is the bulk frame that darkens every pad. Sent on session
// close so an unplugged-and-reused device does not keep stale state lit.
func AllOffFrame() []byte {
	var colors [9][9]RGB
	return EncodeGridColors(&colors)
}
