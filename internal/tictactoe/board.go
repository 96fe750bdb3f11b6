package tictactoe

// Mark is the content of a single cell.
type Mark string

const (
	Empty Mark = ""
	MarkX Mark = "X"
	MarkO Mark = "O"
)

// BoardSize is the number of cells on the board.
const BoardSize = 9

// Board is a row-major snapshot of the 3x3 grid.
type Board [BoardSize]Mark

// IsValidCell - checks that the index addresses a cell of the board.
func IsValidCell(cell int) bool {
	return cell >= 0 && cell < BoardSize
}

// IsFull - reports whether no empty cell is left.
func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == Empty {
			return false
		}
	}

	return true
}

// Place - returns a copy of the board with the mark set at cell.
func (that Board) Place(cell int, mark Mark) Board {
	that[cell] = mark
	return that
}

// Count - returns the number of non-empty cells.
func (that Board) Count() int {
	count := 0
	for _, cell := range that {
		if cell != Empty {
			count++
		}
	}

	return count
}

// Diff - returns the single cell that differs between two boards, or -1.
func (that Board) Diff(other Board) int {
	changed := -1
	for i := range that {
		if that[i] == other[i] {
			continue
		}

		if changed != -1 {
			return -1
		}
		changed = i
	}

	return changed
}

// Strings - returns the board as plain strings for transport.
func (that Board) Strings() [BoardSize]string {
	var out [BoardSize]string
	for i, cell := range that {
		out[i] = string(cell)
	}

	return out
}
