package usecase

import (
	"sync"

	"github.com/rocketscienceinc/tictactoe-history/internal/entity"
)

// Broker fans published games out to the subscribers of that game.
type Broker struct {
	mutex       sync.Mutex
	buffer      int
	nextID      int
	subscribers map[string]map[int]chan *entity.Game
}

func NewBroker(buffer int) *Broker {
	if buffer < 1 {
		buffer = 1
	}

	return &Broker{
		buffer:      buffer,
		subscribers: make(map[string]map[int]chan *entity.Game),
	}
}

// Subscribe - returns a channel of updates for the game and a func that stops them.
func (that *Broker) Subscribe(gameID string) (<-chan *entity.Game, func()) {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	id := that.nextID
	that.nextID++

	updates := make(chan *entity.Game, that.buffer)
	if that.subscribers[gameID] == nil {
		that.subscribers[gameID] = make(map[int]chan *entity.Game)
	}
	that.subscribers[gameID][id] = updates

	var once sync.Once

	return updates, func() {
		once.Do(func() {
			that.unsubscribe(gameID, id)
		})
	}
}

// Publish - delivers a copy of the game to every subscriber. A slow subscriber loses its
// oldest pending update, never the newest one.
func (that *Broker) Publish(game *entity.Game) {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	for _, updates := range that.subscribers[game.ID] {
		snapshot := game.Clone()

		select {
		case updates <- snapshot:
			continue
		default:
		}

		select {
		case <-updates:
		default:
		}

		updates <- snapshot
	}
}

// Close - ends every subscription of the game.
func (that *Broker) Close(gameID string) {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	for _, updates := range that.subscribers[gameID] {
		close(updates)
	}

	delete(that.subscribers, gameID)
}

func (that *Broker) unsubscribe(gameID string, id int) {
	that.mutex.Lock()
	defer that.mutex.Unlock()

	updates, ok := that.subscribers[gameID][id]
	if !ok {
		return
	}

	close(updates)
	delete(that.subscribers[gameID], id)

	if len(that.subscribers[gameID]) == 0 {
		delete(that.subscribers, gameID)
	}
}
