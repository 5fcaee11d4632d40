package launchpad

// Cell identifies one button on the 9x9 grid using 1-indexed coordinates.
// Column 1 is the leftmost column, row 1 the top row. The zero value
// (0,0) represents an unbound cell.
type Cell struct {
	Column int
	Row    int
}

// IsValid reports whether both coordinates fall within the 9x9 grid.
func (c Cell) IsValid() bool {
	return c.Column >= 1 && c.Column <= 9 && c.Row >= 1 && c.Row <= 9
}

// Address converts grid coordinates to the device's linear LED address.
//
// The device numbers pads from the bottom-left: the bottom row occupies
// addresses 11-19 and the top row 91-99, so:
//
//	address = (10 - row)*10 + column
//
// Returns 0 for coordinates outside the grid.
func (c Cell) Address() byte {
	if !c.IsValid() {
		return 0
	}
	return byte((10-c.Row)*10 + c.Column)
}

// CellFromAddress converts a linear LED address back to grid coordinates.
// The inverse of Cell.Address:
//
//	row    = 10 - ((address - 1) / 10)
//	column = address % 10
//
// Addresses that do not correspond to a grid cell yield an invalid Cell;
// callers check IsValid before use.
func CellFromAddress(address byte) Cell {
	if address == 0 {
		return Cell{}
	}
	return Cell{
		Column: int(address) % 10,
		Row:    10 - (int(address)-1)/10,
	}
}
