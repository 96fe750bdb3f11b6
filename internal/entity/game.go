package entity

import (
	"time"

	"github.com/rocketscienceinc/tictactoe-history/internal/tictactoe"
)

// Game is one hosted game session.
type Game struct {
	ID        string              `json:"id"`
	State     tictactoe.GameState `json:"state"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func NewGame(id string, now time.Time) *Game {
	return &Game{
		ID:        id,
		State:     tictactoe.NewGameState(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone - returns a copy that shares no history with the receiver.
func (that *Game) Clone() *Game {
	clone := *that
	clone.State.History = append([]tictactoe.Board(nil), that.State.History...)

	return &clone
}

// MakeMove - applies a move and reports whether the state changed.
func (that *Game) MakeMove(cell int, now time.Time) bool {
	return that.transition(that.State.ApplyMove(cell), now)
}

// JumpTo - repositions the game on a recorded step and reports whether the state changed.
func (that *Game) JumpTo(step int, now time.Time) bool {
	return that.transition(that.State.JumpTo(step), now)
}

func (that *Game) transition(next tictactoe.GameState, now time.Time) bool {
	if next.CurrentStep == that.State.CurrentStep && len(next.History) == len(that.State.History) {
		return false
	}

	that.State = next
	that.UpdatedAt = now

	return true
}

func (that *Game) IsFinished() bool {
	return that.State.IsFinished()
}
