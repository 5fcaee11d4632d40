package launchpad

import "fmt"

// MIDI status bytes recognised by the event decoder.
const (
	statusNoteOn        = 0x90 // pad press/release with velocity
	statusControlChange = 0xB0 // top-row and side buttons
	sysExStart          = 0xF0
	sysExEnd            = 0xF7
)

// sysExHeader is the vendor header shared by both LED frame types:
// Novation manufacturer ID (00 20 29), device family (02 0C), and the
// "set LEDs" command (03).
var sysExHeader = []byte{sysExStart, 0x00, 0x20, 0x29, 0x02, 0x0C, 0x03}

// Frame sizes produced by the encoders.
const (
	// SetColorFrameLen is the length of a single-cell colour frame:
	// 7-byte header + RGB record + trailer.
	SetColorFrameLen = 13

	// GridFrameLen is the length of a whole-grid colour frame:
	// 7-byte header + 81 five-byte RGB records + trailer.
	GridFrameLen = 7 + 81*5 + 1
)

// RGB is a full-range 8-bit colour. The device accepts 7-bit colour
// components, so each channel is halved during encoding.
type RGB struct {
	R, G, B uint8
}

var (
	// Black is the off colour; cells with zero usage are painted Black.
	Black = RGB{}

	// White, Green and Red are the default overlay button colours.
	White = RGB{R: 255, G: 255, B: 255}
	Green = RGB{G: 255}
	Red   = RGB{R: 255}
)

// EncodeSetColor builds the 13-byte SysEx frame that sets one pad's colour:
//
//	F0 00 20 29 02 0C 03 03 <addr> <r/2> <g/2> <b/2> F7
//
// The 0x03 record type selects static RGB mode.
func EncodeSetColor(cell Cell, color RGB) ([]byte, error) {
	if !cell.IsValid() {
		return nil, fmt.Errorf("%w: cell (%d,%d) outside grid", ErrInvalidLayout, cell.Column, cell.Row)
	}
	frame := make([]byte, 0, SetColorFrameLen)
	frame = append(frame, sysExHeader...)
	frame = append(frame, 0x03, cell.Address(), color.R/2, color.G/2, color.B/2)
	frame = append(frame, sysExEnd)
	return frame, nil
}

// EncodeGridColors builds the 413-byte SysEx frame that repaints every pad
// in one atomic write. colors is indexed [column-1][row-1]; records are
// emitted column-major to match the device's accepted ordering.
func EncodeGridColors(colors *[9][9]RGB) []byte {
	frame := make([]byte, 0, GridFrameLen)
	frame = append(frame, sysExHeader...)
	for col := 1; col <= 9; col++ {
		for row := 1; row <= 9; row++ {
			c := colors[col-1][row-1]
			frame = append(frame, 0x03, Cell{Column: col, Row: row}.Address(), c.R/2, c.G/2, c.B/2)
		}
	}
	frame = append(frame, sysExEnd)
	return frame
}

// Event is one decoded button transition.
type Event struct {
	Cell     Cell
	Pressure uint8 // velocity/value; 0 on release
}

// Pressed reports whether the event is a press (non-zero pressure).
func (e Event) Pressed() bool { return e.Pressure > 0 }

// DecodeEvents scans a raw input buffer for button events.
//
// The stream is a sequence of 3-byte records {status, address, pressure}.
// Status bytes have the MSB set; any byte with the MSB clear where a status
// byte is expected is skipped one at a time to re-synchronise after a
// partial read. Records whose status is neither note-on nor control-change
// (clock, SysEx replies, aftertouch) are skipped silently, as are addresses
// outside the grid.
func DecodeEvents(buf []byte) []Event {
	var events []Event
	i := 0
	for i < len(buf) {
		if buf[i]&0x80 == 0 {
			i++
			continue
		}
		if i+3 > len(buf) {
			break
		}
		status, address, pressure := buf[i], buf[i+1], buf[i+2]
		i += 3
		if status != statusNoteOn && status != statusControlChange {
			continue
		}
		cell := CellFromAddress(address)
		if !cell.IsValid() {
			continue
		}
		events = append(events, Event{Cell: cell, Pressure: pressure})
	}
	return events
}
