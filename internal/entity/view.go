package entity

import (
	"time"

	"github.com/rocketscienceinc/tictactoe-history/internal/tictactoe"
)

// GameView is the read model handed to the presentation layer.
type GameView struct {
	ID         string                        `json:"id"`
	Board      [tictactoe.BoardSize]string   `json:"board"`
	Step       int                           `json:"step"`
	Turn       string                        `json:"turn"`
	Status     tictactoe.Status              `json:"status"`
	StatusText string                        `json:"status_text"`
	Winner     string                        `json:"winner,omitempty"`
	Line       []int                         `json:"line,omitempty"`
	History    [][tictactoe.BoardSize]string `json:"history"`
	Moves      []tictactoe.Move              `json:"moves"`
	CreatedAt  time.Time                     `json:"created_at"`
	UpdatedAt  time.Time                     `json:"updated_at"`
}

// NewGameView - derives everything the client renders from the stored state.
func NewGameView(game *Game) *GameView {
	state := game.State

	view := &GameView{
		ID:         game.ID,
		Board:      state.CurrentBoard().Strings(),
		Step:       state.CurrentStep,
		Turn:       string(state.Turn()),
		Status:     state.Status(),
		StatusText: state.StatusText(),
		History:    make([][tictactoe.BoardSize]string, 0, len(state.History)),
		Moves:      state.Moves(),
		CreatedAt:  game.CreatedAt,
		UpdatedAt:  game.UpdatedAt,
	}

	if result := state.Result(); result.HasWinner() {
		view.Winner = string(result.Mark)
		view.Line = result.Line[:]
	}

	for _, board := range state.History {
		view.History = append(view.History, board.Strings())
	}

	return view
}
