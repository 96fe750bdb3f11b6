package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-history/internal/entity"
)

const (
	actionMove   = "game:move"
	actionJump   = "game:jump"
	actionState  = "game:state"
	actionUpdate = "game:update"
	actionError  = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	Cell  *int             `json:"cell,omitempty"`
	Step  *int             `json:"step,omitempty"`
	Game  *entity.GameView `json:"game,omitempty"`
	Error string           `json:"error,omitempty"`
}

// connection serialises writes, gorilla allows one concurrent writer per conn.
type connection struct {
	conn   *websocket.Conn
	gameID string

	writeMutex sync.Mutex
}

func (that *connection) sendMessage(action string, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	that.writeMutex.Lock()
	defer that.writeMutex.Unlock()

	if err = that.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err = that.conn.WriteJSON(Message{Action: action, Payload: body}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *connection) sendGame(game *entity.Game) error {
	return that.sendMessage(actionUpdate, Payload{Game: entity.NewGameView(game)})
}

func (that *connection) sendError(action, text string) error {
	return that.sendMessage(actionError, Payload{Error: action + ": " + text})
}

// fail - tells the client that action failed and returns cause, joined with the send error if
// the client could not be told.
func (that *connection) fail(action, text string, cause error) error {
	if err := that.sendError(action, text); err != nil {
		return errors.Join(cause, err)
	}

	return cause
}

func (that *connection) sendControl(messageType int, data []byte) error {
	that.writeMutex.Lock()
	defer that.writeMutex.Unlock()

	if err := that.conn.WriteControl(messageType, data, time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to write control frame: %w", err)
	}

	return nil
}
