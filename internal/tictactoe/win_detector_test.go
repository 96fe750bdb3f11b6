package tictactoe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectWin(t *testing.T) {
	t.Run("Every line is detected for both marks", func(t *testing.T) {
		for _, mark := range []Mark{MarkX, MarkO} {
			for _, combo := range WinCombos {
				// Given: a board with only this line filled
				var board Board
				for _, cell := range combo {
					board[cell] = mark
				}

				// When: detecting the winner
				result := DetectWin(board)

				// Then: the mark and the exact line are returned
				require.True(t, result.HasWinner())
				assert.Equal(t, mark, result.Mark)
				assert.Equal(t, combo, result.Line)
			}
		}
	})

	t.Run("Column win for X", func(t *testing.T) {
		// Given: X holds the left column
		board := Board{
			MarkX, MarkO, Empty,
			MarkX, MarkO, Empty,
			MarkX, Empty, Empty,
		}

		// When: detecting the winner
		result := DetectWin(board)

		// Then: X wins on 0,3,6
		assert.Equal(t, WinResult{Mark: MarkX, Line: [3]int{0, 3, 6}}, result)
	})

	t.Run("No winner on an empty board", func(t *testing.T) {
		// When: detecting the winner on an empty board
		result := DetectWin(Board{})

		// Then: there is no winner
		assert.False(t, result.HasWinner())
		assert.Equal(t, WinResult{}, result)
	})

	t.Run("No winner on a drawn board", func(t *testing.T) {
		// Given: a full board without a line
		board := Board{
			MarkX, MarkO, MarkX,
			MarkX, MarkO, MarkO,
			MarkO, MarkX, MarkX,
		}

		// When: detecting the winner
		result := DetectWin(board)

		// Then: there is no winner
		assert.False(t, result.HasWinner())
	})

	t.Run("Mixed line is not a win", func(t *testing.T) {
		// Given: a top row with two different marks
		board := Board{MarkX, MarkX, MarkO}

		// Then: no winner is reported
		assert.False(t, DetectWin(board).HasWinner())
	})

	t.Run("First line in order wins when several match", func(t *testing.T) {
		// Given: a board where both the top row and the left column are X
		board := Board{
			MarkX, MarkX, MarkX,
			MarkX, Empty, Empty,
			MarkX, Empty, Empty,
		}

		// When: detecting the winner
		result := DetectWin(board)

		// Then: the top row is reported because it is checked first
		assert.Equal(t, [3]int{0, 1, 2}, result.Line)
	})
}

func TestBoard(t *testing.T) {
	t.Run("Place returns a copy", func(t *testing.T) {
		// Given: an empty board
		board := Board{}

		// When: placing a mark
		next := board.Place(4, MarkX)

		// Then: only the copy changes
		assert.Equal(t, Empty, board[4])
		assert.Equal(t, MarkX, next[4])
		assert.Equal(t, 1, next.Count())
	})

	t.Run("Diff finds the single changed cell", func(t *testing.T) {
		board := Board{MarkX}

		assert.Equal(t, 7, board.Diff(board.Place(7, MarkO)))
		assert.Equal(t, -1, board.Diff(board))
		assert.Equal(t, -1, board.Diff(board.Place(1, MarkO).Place(2, MarkX)))
	})

	t.Run("IsValidCell bounds", func(t *testing.T) {
		assert.True(t, IsValidCell(0))
		assert.True(t, IsValidCell(8))
		assert.False(t, IsValidCell(-1))
		assert.False(t, IsValidCell(9))
	})
}
