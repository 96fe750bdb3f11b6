package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rocketscienceinc/tictactoe-history/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-history/internal/entity"
)

type uGame interface {
	CreateGame(ctx context.Context) (*entity.Game, error)
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	MakeMove(ctx context.Context, id string, cell int) (*entity.Game, error)
	JumpTo(ctx context.Context, id string, step int) (*entity.Game, error)
	DeleteGame(ctx context.Context, id string) error
}

type Server struct {
	logger *slog.Logger
	uGame  uGame
}

func New(logger *slog.Logger, uGame uGame) *Server {
	return &Server{
		logger: logger.With("component", "rest"),
		uGame:  uGame,
	}
}

// Register - mounts the REST routes on the router.
func (that *Server) Register(router *mux.Router) {
	router.HandleFunc("/ping", that.handlePing).Methods(http.MethodGet)

	router.HandleFunc("/games", that.handleCreateGame).Methods(http.MethodPost)
	router.HandleFunc("/games/{id}", that.handleGetGame).Methods(http.MethodGet)
	router.HandleFunc("/games/{id}", that.handleDeleteGame).Methods(http.MethodDelete)
	router.HandleFunc("/games/{id}/moves", that.handleMakeMove).Methods(http.MethodPost)
	router.HandleFunc("/games/{id}/jump", that.handleJumpTo).Methods(http.MethodPost)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}

func (that *Server) writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, apperror.ErrGameNotFound):
		that.writeJSON(w, http.StatusNotFound, errorResponse{Error: apperror.ErrGameNotFound.Error()})
	case errors.Is(err, apperror.ErrInvalidRequest):
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		log.Error("request failed", "error", err)
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: http.StatusText(http.StatusInternalServerError)})
	}
}
