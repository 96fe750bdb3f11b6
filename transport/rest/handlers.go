package rest

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rocketscienceinc/tictactoe-history/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-history/internal/entity"
)

type moveRequest struct {
	Cell *int `json:"cell"`
}

type jumpRequest struct {
	Step *int `json:"step"`
}

func (that *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "handleCreateGame")

	game, err := that.uGame.CreateGame(r.Context())
	if err != nil {
		that.writeError(w, log, err)
		return
	}

	that.writeJSON(w, http.StatusCreated, entity.NewGameView(game))
}

func (that *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	log := that.logger.With("method", "handleGetGame", "gameID", id)

	game, err := that.uGame.GetGame(r.Context(), id)
	if err != nil {
		that.writeError(w, log, err)
		return
	}

	that.writeJSON(w, http.StatusOK, entity.NewGameView(game))
}

func (that *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	log := that.logger.With("method", "handleDeleteGame", "gameID", id)

	if err := that.uGame.DeleteGame(r.Context(), id); err != nil {
		that.writeError(w, log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *Server) handleMakeMove(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	log := that.logger.With("method", "handleMakeMove", "gameID", id)

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Cell == nil {
		that.writeError(w, log, fmt.Errorf("%w: body must be {\"cell\": <index>}", apperror.ErrInvalidRequest))
		return
	}

	game, err := that.uGame.MakeMove(r.Context(), id, *req.Cell)
	if err != nil {
		that.writeError(w, log, err)
		return
	}

	that.writeJSON(w, http.StatusOK, entity.NewGameView(game))
}

func (that *Server) handleJumpTo(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	log := that.logger.With("method", "handleJumpTo", "gameID", id)

	var req jumpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Step == nil {
		that.writeError(w, log, fmt.Errorf("%w: body must be {\"step\": <index>}", apperror.ErrInvalidRequest))
		return
	}

	game, err := that.uGame.JumpTo(r.Context(), id, *req.Step)
	if err != nil {
		that.writeError(w, log, err)
		return
	}

	that.writeJSON(w, http.StatusOK, entity.NewGameView(game))
}
