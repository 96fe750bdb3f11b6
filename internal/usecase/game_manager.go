package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-history/internal/entity"
	"github.com/rocketscienceinc/tictactoe-history/internal/pkg"
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type publisher interface {
	Publish(game *entity.Game)
	Close(gameID string)
}

// GameManager owns every hosted game. Transitions are serialised so a game never sees two
// moves or jumps at once.
type GameManager struct {
	logger    *slog.Logger
	gameRepo  gameRepo
	publisher publisher

	mutex sync.Mutex

	now    func() time.Time
	nextID func() string
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo, publisher publisher) *GameManager {
	return &GameManager{
		logger:    logger.With("component", "game_manager"),
		gameRepo:  gameRepo,
		publisher: publisher,

		now:    time.Now,
		nextID: pkg.GenerateGameID,
	}
}

func (that *GameManager) CreateGame(ctx context.Context) (*entity.Game, error) {
	game := entity.NewGame(that.nextID(), that.now().UTC())

	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	that.logger.Info("game created", "gameID", game.ID)

	return game, nil
}

func (that *GameManager) GetGame(ctx context.Context, id string) (*entity.Game, error) {
	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// MakeMove - plays the cell for the side to move. A rejected move returns the game unchanged.
func (that *GameManager) MakeMove(ctx context.Context, id string, cell int) (*entity.Game, error) {
	log := that.logger.With("method", "MakeMove", "gameID", id, "cell", cell)

	return that.transition(ctx, log, id, func(game *entity.Game) bool {
		return game.MakeMove(cell, that.now().UTC())
	})
}

// JumpTo - shows a recorded step. An unknown step returns the game unchanged.
func (that *GameManager) JumpTo(ctx context.Context, id string, step int) (*entity.Game, error) {
	log := that.logger.With("method", "JumpTo", "gameID", id, "step", step)

	return that.transition(ctx, log, id, func(game *entity.Game) bool {
		return game.JumpTo(step, that.now().UTC())
	})
}

func (that *GameManager) DeleteGame(ctx context.Context, id string) error {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	if err := that.gameRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	that.publisher.Close(id)
	that.logger.Info("game deleted", "gameID", id)

	return nil
}

func (that *GameManager) transition(ctx context.Context, log *slog.Logger, id string, apply func(game *entity.Game) bool) (*entity.Game, error) {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	game, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	if !apply(game) {
		log.Debug("transition ignored", "currentStep", game.State.CurrentStep, "status", game.State.Status())
		return game, nil
	}

	if err = that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	that.publisher.Publish(game)

	log.Info("transition applied",
		"currentStep", game.State.CurrentStep,
		"historyLength", len(game.State.History),
		"status", game.State.Status(),
	)

	return game, nil
}
