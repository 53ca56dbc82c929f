package domain

// Screen geometry of the emulated terminal model.
const (
	Rows       = 24
	Cols       = 80
	BufferSize = Rows * Cols

	// ErrorRow and ErrorCol locate the host's error line.
	ErrorRow = 24
	ErrorCol = 2
)

// Address converts a 1-based (row, col) into a 0-based buffer address.
func Address(row, col int) int {
	return (row-1)*Cols + (col - 1)
}

// RowCol converts a 0-based buffer address into a 1-based (row, col).
func RowCol(addr int) (int, int) {
	addr = ((addr % BufferSize) + BufferSize) % BufferSize
	return addr/Cols + 1, addr%Cols + 1
}

// InBounds reports whether a 1-based position lies on the screen.
func InBounds(row, col int) bool {
	return row >= 1 && row <= Rows && col >= 1 && col <= Cols
}
