// Package launchpad implements the grid-controller trigger panel for cuelight.
//
// This package drives a Novation Launchpad-family 9x9 grid controller as a
// programmable cue trigger surface. Button presses fire cue actions through a
// dispatcher, and the per-button RGB LEDs mirror the set of active trigger
// bindings.
//
// # Architecture
//
// The panel sits between the physical device and the show-control bus:
//
//	┌─────────────────┐          ┌─────────────────┐
//	│   Show Control  │  Actions │  Trigger Panel  │   MIDI
//	│   (dispatcher)  │◄─────────│   (this pkg)    │◄────────► Launchpad
//	└─────────────────┘          └─────────────────┘
//
// # Key Responsibilities
//
//   - Discover and open the device's MIDI input/output ports
//   - Encode LED colour frames (single-cell and whole-grid SysEx)
//   - Decode note-on/control-change button events from the raw byte stream
//   - Maintain the 9x9 colour/usage-count grid model
//   - Run the background event loop: debounce, flash feedback, dispatch
//   - Composite the 6-button cue-list navigation overlay onto the grid
//
// # Coordinates
//
// Cells are 1-indexed (column, row) with column 1 on the left and row 1 at
// the top. The device addresses LEDs linearly: address = (10-row)*10 + column.
//
// # Thread Safety
//
// A single Panel mutex guards trigger registry membership, device session
// open/close transitions, and every LED write (single-cell or bulk). The
// event loop is the only goroutine that reads device input. CreateTrigger,
// DestroyTrigger, Rebind, and SetGlobalButtons are safe to call from any
// goroutine.
package launchpad
