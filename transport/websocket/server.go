package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-history/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-history/internal/entity"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 1024
)

type uGame interface {
	GetGame(ctx context.Context, id string) (*entity.Game, error)
	MakeMove(ctx context.Context, id string, cell int) (*entity.Game, error)
	JumpTo(ctx context.Context, id string, step int) (*entity.Game, error)
}

type subscriber interface {
	Subscribe(gameID string) (<-chan *entity.Game, func())
}

type Server struct {
	logger     *slog.Logger
	uGame      uGame
	subscriber subscriber
	upgrader   websocket.Upgrader

	handlers map[string]func(ctx context.Context, conn *connection, msg *Message) error
}

func New(logger *slog.Logger, uGame uGame, subscriber subscriber) *Server {
	server := &Server{
		logger:     logger.With("component", "websocket"),
		uGame:      uGame,
		subscriber: subscriber,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},

		handlers: make(map[string]func(context.Context, *connection, *Message) error),
	}

	server.handlers[actionMove] = server.handleMove
	server.handlers[actionJump] = server.handleJump
	server.handlers[actionState] = server.handleState

	return server
}

// Register - mounts the WebSocket endpoint on the router.
func (that *Server) Register(router *mux.Router) {
	router.HandleFunc("/games/{id}/ws", that.upgradeToWebSocket).Methods(http.MethodGet)
}

// upgradeToWebSocket - upgrades the connection and streams updates of one game.
func (that *Server) upgradeToWebSocket(writer http.ResponseWriter, req *http.Request) {
	gameID := mux.Vars(req)["id"]
	log := that.logger.With("method", "upgradeToWebSocket", "gameID", gameID)

	ctx := req.Context()

	// subscribe before the read so a change published in between still reaches the client
	updates, unsubscribe := that.subscriber.Subscribe(gameID)
	defer unsubscribe()

	game, err := that.uGame.GetGame(ctx, gameID)
	if errors.Is(err, apperror.ErrGameNotFound) {
		http.Error(writer, apperror.ErrGameNotFound.Error(), http.StatusNotFound)
		return
	}

	if err != nil {
		log.Error("failed to get game", "error", err)
		http.Error(writer, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	wsConn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}
	defer wsConn.Close()

	conn := &connection{conn: wsConn, gameID: gameID}

	log.Info("WebSocket connection established")

	if err = conn.sendGame(game); err != nil {
		log.Error("failed to send initial state", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go that.pushUpdates(ctx, cancel, conn, updates)

	if err = that.handleMessages(ctx, conn); err != nil {
		log.Info("WebSocket connection closed", "reason", err)
	}
}

// pushUpdates - forwards published games to the client and keeps the connection alive.
func (that *Server) pushUpdates(ctx context.Context, cancel context.CancelFunc, conn *connection, updates <-chan *entity.Game) {
	log := that.logger.With("method", "pushUpdates", "gameID", conn.gameID)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case game, ok := <-updates:
			if !ok {
				// the game was deleted
				_ = conn.sendControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game closed"))
				cancel()
				_ = conn.conn.Close()
				return
			}

			if err := conn.sendGame(game); err != nil {
				log.Error("failed to push update", "error", err)
				cancel()
				_ = conn.conn.Close()
				return
			}
		case <-ticker.C:
			if err := conn.sendControl(websocket.PingMessage, nil); err != nil {
				log.Error("failed to ping client", "error", err)
				cancel()
				_ = conn.conn.Close()
				return
			}
		}
	}
}

// handleMessages - processes messages from the client until the connection closes.
func (that *Server) handleMessages(ctx context.Context, conn *connection) error {
	log := that.logger.With("method", "handleMessages", "gameID", conn.gameID)

	conn.conn.SetReadLimit(maxMessageSize)
	_ = conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.conn.SetPongHandler(func(string) error {
		return conn.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.conn.ReadMessage()
		if err != nil {
			return err
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Warn("failed to unmarshal message", "error", err)
			if err = conn.sendError("message", "malformed json"); err != nil {
				return err
			}
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			if err := conn.sendError(message.Action, "unknown action"); err != nil {
				return err
			}
			continue
		}

		if err := handler(ctx, conn, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}
