package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-history/internal/entity"
	"github.com/rocketscienceinc/tictactoe-history/internal/repository"
	"github.com/rocketscienceinc/tictactoe-history/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-history/internal/usecase"
)

type testEnv struct {
	server  *httptest.Server
	manager *usecase.GameManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	return newTestEnvWith(t, func(manager *usecase.GameManager) uGame { return manager })
}

// newTestEnvWith - serves the endpoint through the use case returned by wrap.
func newTestEnvWith(t *testing.T, wrap func(manager *usecase.GameManager) uGame) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	broker := usecase.NewBroker(8)
	manager := usecase.NewGameManager(logger, repository.NewMemoryGameRepository(), broker)

	router := mux.NewRouter()
	New(logger, wrap(manager), broker).Register(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testEnv{server: server, manager: manager}
}

func (that *testEnv) dial(t *testing.T, gameID string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(that.server.URL, "http") + "/games/" + gameID + "/ws"

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) (string, Payload) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))

	var payload Payload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))

	return msg.Action, payload
}

func send(t *testing.T, conn *websocket.Conn, action, payload string) {
	t.Helper()

	require.NoError(t, conn.WriteJSON(Message{Action: action, Payload: json.RawMessage(payload)}))
}

func TestServer_InitialState(t *testing.T) {
	// Given: a stored game
	env := newTestEnv(t)
	game, err := env.manager.CreateGame(context.Background())
	require.NoError(t, err)

	// When: a client connects
	conn := env.dial(t, game.ID)

	// Then: it receives the current state first
	action, payload := readMessage(t, conn)
	assert.Equal(t, actionUpdate, action)
	require.NotNil(t, payload.Game)
	assert.Equal(t, game.ID, payload.Game.ID)
	assert.Equal(t, 0, payload.Game.Step)
}

func TestServer_MoveIsPushedToEverySubscriber(t *testing.T) {
	// Given: two clients watching the same game
	env := newTestEnv(t)
	game, err := env.manager.CreateGame(context.Background())
	require.NoError(t, err)

	first := env.dial(t, game.ID)
	second := env.dial(t, game.ID)
	readMessage(t, first)
	readMessage(t, second)

	// When: the first client plays the centre
	send(t, first, actionMove, `{"cell": 4}`)

	// Then: both receive the new state
	for _, conn := range []*websocket.Conn{first, second} {
		action, payload := readMessage(t, conn)
		assert.Equal(t, actionUpdate, action)
		require.NotNil(t, payload.Game)
		assert.Equal(t, 1, payload.Game.Step)
		assert.Equal(t, "X", payload.Game.Board[4])
	}
}

func TestServer_JumpAndState(t *testing.T) {
	// Given: a game with two moves
	env := newTestEnv(t)
	ctx := context.Background()
	game, err := env.manager.CreateGame(ctx)
	require.NoError(t, err)
	_, err = env.manager.MakeMove(ctx, game.ID, 0)
	require.NoError(t, err)
	_, err = env.manager.MakeMove(ctx, game.ID, 4)
	require.NoError(t, err)

	conn := env.dial(t, game.ID)
	readMessage(t, conn)

	// When: jumping back to the start
	send(t, conn, actionJump, `{"step": 0}`)

	// Then: the update shows step 0 with the full history kept
	_, payload := readMessage(t, conn)
	require.NotNil(t, payload.Game)
	assert.Equal(t, 0, payload.Game.Step)
	assert.Len(t, payload.Game.History, 3)
	assert.Equal(t, tictactoe.StatusOngoing, payload.Game.Status)

	// When: asking for the state explicitly
	send(t, conn, actionState, ``)

	// Then: the same state is returned
	_, payload = readMessage(t, conn)
	require.NotNil(t, payload.Game)
	assert.Equal(t, 0, payload.Game.Step)
}

func TestServer_InvalidMessages(t *testing.T) {
	env := newTestEnv(t)
	game, err := env.manager.CreateGame(context.Background())
	require.NoError(t, err)

	conn := env.dial(t, game.ID)
	readMessage(t, conn)

	t.Run("Unknown action", func(t *testing.T) {
		send(t, conn, "game:undo", `{}`)

		action, payload := readMessage(t, conn)
		assert.Equal(t, actionError, action)
		assert.Contains(t, payload.Error, "unknown action")
	})

	t.Run("Move without a cell", func(t *testing.T) {
		send(t, conn, actionMove, `{}`)

		action, payload := readMessage(t, conn)
		assert.Equal(t, actionError, action)
		assert.Contains(t, payload.Error, "cell is required")
	})

	t.Run("Malformed json", func(t *testing.T) {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"action":`)))

		action, payload := readMessage(t, conn)
		assert.Equal(t, actionError, action)
		assert.Contains(t, payload.Error, "malformed json")
	})
}

func TestServer_GameDeletedClosesConnection(t *testing.T) {
	// Given: a connected client
	env := newTestEnv(t)
	ctx := context.Background()
	game, err := env.manager.CreateGame(ctx)
	require.NoError(t, err)

	conn := env.dial(t, game.ID)
	readMessage(t, conn)

	// When: the game is deleted
	require.NoError(t, env.manager.DeleteGame(ctx, game.ID))

	// Then: the server closes the connection normally
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected error: %v", err)
}

func TestServer_UnknownGame(t *testing.T) {
	env := newTestEnv(t)

	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/games/missing/ws"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// lateReadGames changes the stored game right after the connection reads it.
type lateReadGames struct {
	*usecase.GameManager

	afterRead func(ctx context.Context, id string)
	once      sync.Once
}

func (that *lateReadGames) GetGame(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.GameManager.GetGame(ctx, id)
	that.once.Do(func() { that.afterRead(ctx, id) })

	return game, err
}

func TestServer_ChangeDuringHandshakeIsDelivered(t *testing.T) {
	// Given: a move lands between reading the game and the first push
	env := newTestEnvWith(t, func(manager *usecase.GameManager) uGame {
		return &lateReadGames{
			GameManager: manager,
			afterRead: func(ctx context.Context, id string) {
				_, err := manager.MakeMove(ctx, id, 4)
				assert.NoError(t, err)
			},
		}
	})

	game, err := env.manager.CreateGame(context.Background())
	require.NoError(t, err)

	// When: a client connects
	conn := env.dial(t, game.ID)

	// Then: the stale snapshot is followed by the move
	_, payload := readMessage(t, conn)
	require.NotNil(t, payload.Game)
	assert.Equal(t, 0, payload.Game.Step)

	_, payload = readMessage(t, conn)
	require.NotNil(t, payload.Game)
	assert.Equal(t, 1, payload.Game.Step)
	assert.Equal(t, "X", payload.Game.Board[4])
}

func TestServer_DeletedDuringHandshake(t *testing.T) {
	// Given: the game is deleted just before the connection reads it
	env := newTestEnvWith(t, func(manager *usecase.GameManager) uGame {
		return &deletingGames{GameManager: manager}
	})

	game, err := env.manager.CreateGame(context.Background())
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/games/" + game.ID + "/ws"

	// When: a client connects
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)

	// Then: the handshake is refused
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

type deletingGames struct {
	*usecase.GameManager
}

func (that *deletingGames) GetGame(ctx context.Context, id string) (*entity.Game, error) {
	if err := that.GameManager.DeleteGame(ctx, id); err != nil {
		return nil, err
	}

	return that.GameManager.GetGame(ctx, id)
}
