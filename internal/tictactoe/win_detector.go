package tictactoe

// WinCombos lists the winning lines in the order they are checked.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// WinResult is the outcome of DetectWin. A zero value means no winner.
type WinResult struct {
	Mark Mark   `json:"mark"`
	Line [3]int `json:"line"`
}

// HasWinner - reports whether a winning line was found.
func (that WinResult) HasWinner() bool {
	return that.Mark != Empty
}

// DetectWin - returns the first line of three identical marks, in WinCombos order.
func DetectWin(board Board) WinResult {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != Empty && a == b && b == c {
			return WinResult{Mark: a, Line: combo}
		}
	}

	return WinResult{}
}
