package websocket

import (
	"context"
	"encoding/json"
	"fmt"
)

func decodePayload(msg *Message) (Payload, error) {
	var payload Payload

	if len(msg.Payload) == 0 {
		return payload, nil
	}

	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return payload, fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return payload, nil
}

// handleMove - plays a cell. The resulting state reaches every subscriber through the broker,
// a rejected move produces no update.
func (that *Server) handleMove(ctx context.Context, conn *connection, msg *Message) error {
	payload, err := decodePayload(msg)
	if err != nil || payload.Cell == nil {
		return conn.sendError(msg.Action, "cell is required")
	}

	if _, err = that.uGame.MakeMove(ctx, conn.gameID, *payload.Cell); err != nil {
		return conn.fail(msg.Action, "failed to make move", fmt.Errorf("failed to make move: %w", err))
	}

	return nil
}

// handleJump - shows a recorded step for every subscriber.
func (that *Server) handleJump(ctx context.Context, conn *connection, msg *Message) error {
	payload, err := decodePayload(msg)
	if err != nil || payload.Step == nil {
		return conn.sendError(msg.Action, "step is required")
	}

	if _, err = that.uGame.JumpTo(ctx, conn.gameID, *payload.Step); err != nil {
		return conn.fail(msg.Action, "failed to jump", fmt.Errorf("failed to jump: %w", err))
	}

	return nil
}

// handleState - replies with the current state to this client only.
func (that *Server) handleState(ctx context.Context, conn *connection, msg *Message) error {
	game, err := that.uGame.GetGame(ctx, conn.gameID)
	if err != nil {
		return conn.fail(msg.Action, "failed to get game", fmt.Errorf("failed to get game: %w", err))
	}

	return conn.sendGame(game)
}
