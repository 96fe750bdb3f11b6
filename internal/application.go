package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/rocketscienceinc/tictactoe-history/internal/config"
	"github.com/rocketscienceinc/tictactoe-history/internal/repository"
	"github.com/rocketscienceinc/tictactoe-history/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-history/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-history/transport/rest"
	"github.com/rocketscienceinc/tictactoe-history/transport/websocket"
)

const shutdownTimeout = 10 * time.Second

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	gameRepo, closeRepo, err := newGameRepository(ctx, log, conf)
	if err != nil {
		return err
	}
	defer closeRepo()

	broker := usecase.NewBroker(conf.Game.SubscriberBuffer)
	gameUseCase := usecase.NewGameManager(logger, gameRepo, broker)

	router := mux.NewRouter()
	rest.New(logger, gameUseCase).Register(router)
	websocket.New(logger, gameUseCase, broker).Register(router)

	server := &http.Server{
		Addr:              net.JoinHostPort("", conf.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := server.ListenAndServe(); httpErr != nil && !errors.Is(httpErr, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err = server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server shutdown: %w", err)
	}

	return nil
}

// newGameRepository - picks redis when it is enabled, otherwise keeps games in memory.
func newGameRepository(ctx context.Context, log *slog.Logger, conf *config.Config) (repository.GameRepository, func(), error) {
	if !conf.Redis.Enabled {
		log.Info("Using in-memory game storage")
		return repository.NewMemoryGameRepository(), func() {}, nil
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return nil, nil, ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedis(ctx, redisAddrString, conf.Redis.Password, conf.Redis.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	log.Info("Using redis game storage", "addr", redisAddrString, "ttl", conf.Game.TTL)

	closeRepo := func() {
		if err := redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}

	return repository.NewGameRepository(redisStorage, conf.Game.TTL), closeRepo, nil
}
