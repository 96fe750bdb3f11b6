package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/rocketscienceinc/tictactoe-history/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-history/internal/entity"
)

type memoryGame struct {
	mutex sync.RWMutex
	games map[string]*entity.Game
}

// NewMemoryGameRepository - keeps games in process memory, used when redis is disabled.
func NewMemoryGameRepository() GameRepository {
	return &memoryGame{
		games: make(map[string]*entity.Game),
	}
}

func (that *memoryGame) CreateOrUpdate(_ context.Context, game *entity.Game) error {
	if err := game.State.Validate(); err != nil {
		return fmt.Errorf("failed to store game %s: %w", game.ID, err)
	}

	that.mutex.Lock()
	defer that.mutex.Unlock()

	that.games[game.ID] = game.Clone()

	return nil
}

func (that *memoryGame) GetByID(_ context.Context, id string) (*entity.Game, error) {
	that.mutex.RLock()
	defer that.mutex.RUnlock()

	game, ok := that.games[id]
	if !ok {
		return nil, apperror.ErrGameNotFound
	}

	return game.Clone(), nil
}

func (that *memoryGame) DeleteByID(_ context.Context, id string) error {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	if _, ok := that.games[id]; !ok {
		return apperror.ErrGameNotFound
	}

	delete(that.games, id)

	return nil
}
