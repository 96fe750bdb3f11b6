package tictactoe

import (
	"errors"
	"fmt"
)

// Status is the logical state derived from the board at the current step.
type Status string

const (
	StatusOngoing Status = "ongoing"
	StatusWon     Status = "won"
	StatusDrawn   Status = "drawn"
)

var (
	ErrEmptyHistory   = errors.New("history is empty")
	ErrStepOutOfRange = errors.New("step is out of range")
	ErrIllegalStep    = errors.New("history step is not a single legal move")
)

// GameState is the whole game: every recorded snapshot and the step being shown.
// Turn, winner and status are always derived from it, never stored.
type GameState struct {
	History     []Board `json:"history"`
	CurrentStep int     `json:"step"`
}

// Move describes one entry of the history list.
type Move struct {
	Step        int    `json:"step"`
	Description string `json:"description"`
	Cell        int    `json:"cell"`
	Row         int    `json:"row"`
	Col         int    `json:"col"`
	Mark        Mark   `json:"mark,omitempty"`
	Current     bool   `json:"current"`
}

// NewGameState - returns a game with a single empty board at step 0.
func NewGameState() GameState {
	return GameState{
		History:     []Board{{}},
		CurrentStep: 0,
	}
}

// ApplyMove - places the mark to move at cell and returns the new state.
// The move is ignored when the game is over, the index is out of range or the cell is taken.
func (that GameState) ApplyMove(cell int) GameState {
	if !that.isConsistent() || that.Status() != StatusOngoing {
		return that
	}

	if !IsValidCell(cell) {
		return that
	}

	board := that.CurrentBoard()
	if board[cell] != Empty {
		return that
	}

	next := board.Place(cell, that.Turn())

	// a fresh slice so the receiver's history is never written through
	history := make([]Board, that.CurrentStep+1, that.CurrentStep+2)
	copy(history, that.History[:that.CurrentStep+1])
	history = append(history, next)

	return GameState{
		History:     history,
		CurrentStep: that.CurrentStep + 1,
	}
}

// JumpTo - moves the pointer to a recorded step. History is left untouched.
func (that GameState) JumpTo(step int) GameState {
	if step < 0 || step >= len(that.History) {
		return that
	}

	return GameState{
		History:     that.History,
		CurrentStep: step,
	}
}

// CurrentBoard - returns the snapshot at the current step.
func (that GameState) CurrentBoard() Board {
	if !that.isConsistent() {
		return Board{}
	}

	return that.History[that.CurrentStep]
}

// Turn - returns the mark to move: X on even steps, O on odd ones.
func (that GameState) Turn() Mark {
	if that.CurrentStep%2 == 0 {
		return MarkX
	}

	return MarkO
}

// Result - runs the win detector on the current board.
func (that GameState) Result() WinResult {
	return DetectWin(that.CurrentBoard())
}

// Status - derives the logical state from the current board.
func (that GameState) Status() Status {
	board := that.CurrentBoard()

	switch {
	case DetectWin(board).HasWinner():
		return StatusWon
	case board.IsFull():
		return StatusDrawn
	default:
		return StatusOngoing
	}
}

// IsFinished - reports whether moves are blocked at the current step.
func (that GameState) IsFinished() bool {
	return that.Status() != StatusOngoing
}

// StatusText - returns the line shown above the board.
func (that GameState) StatusText() string {
	switch that.Status() {
	case StatusWon:
		return "Player " + string(that.Result().Mark) + " wins!"
	case StatusDrawn:
		return "Draw"
	default:
		return "Next player: " + string(that.Turn())
	}
}

// Moves - describes every recorded step for a move list.
func (that GameState) Moves() []Move {
	moves := make([]Move, 0, len(that.History))

	for step := range that.History {
		move := Move{
			Step:        step,
			Description: "Go to game start",
			Cell:        -1,
			Row:         -1,
			Col:         -1,
			Current:     step == that.CurrentStep,
		}

		if step > 0 {
			cell := that.History[step-1].Diff(that.History[step])
			move.Description = fmt.Sprintf("Go to move #%d", step)
			move.Cell = cell
			if cell >= 0 {
				move.Row, move.Col = cell/3, cell%3
				move.Mark = that.History[step][cell]
			}
		}

		moves = append(moves, move)
	}

	return moves
}

// Validate - checks that a state loaded from outside obeys the history invariants.
func (that GameState) Validate() error {
	if len(that.History) == 0 {
		return ErrEmptyHistory
	}

	if that.CurrentStep < 0 || that.CurrentStep >= len(that.History) {
		return fmt.Errorf("%w: step %d of %d", ErrStepOutOfRange, that.CurrentStep, len(that.History))
	}

	if that.History[0] != (Board{}) {
		return fmt.Errorf("%w: step 0 is not empty", ErrIllegalStep)
	}

	for step := 1; step < len(that.History); step++ {
		prev, next := that.History[step-1], that.History[step]

		cell := prev.Diff(next)
		if cell < 0 || prev[cell] != Empty {
			return fmt.Errorf("%w: step %d", ErrIllegalStep, step)
		}

		// the mark placed at step k is X for odd k (move index k-1 even)
		want := MarkX
		if step%2 == 0 {
			want = MarkO
		}

		if next[cell] != want {
			return fmt.Errorf("%w: step %d placed %q", ErrIllegalStep, step, next[cell])
		}

		if DetectWin(prev).HasWinner() || prev.IsFull() {
			return fmt.Errorf("%w: step %d follows a finished board", ErrIllegalStep, step)
		}
	}

	return nil
}

func (that GameState) isConsistent() bool {
	return that.CurrentStep >= 0 && that.CurrentStep < len(that.History)
}
