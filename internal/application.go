package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-rewind-backend/internal/config"
	"github.com/rocketscienceinc/tictactoe-rewind-backend/internal/repository"
	"github.com/rocketscienceinc/tictactoe-rewind-backend/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-rewind-backend/internal/service"
	"github.com/rocketscienceinc/tictactoe-rewind-backend/internal/transport/rest"
	"github.com/rocketscienceinc/tictactoe-rewind-backend/internal/transport/websocket"
	"github.com/rocketscienceinc/tictactoe-rewind-backend/internal/usecase"
)

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

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	sqliteStorage, err := storage.NewSQLiteStorage(conf.SQLiteStoragePath)
	if err != nil {
		return fmt.Errorf("could not open sqlite storage: %w", err)
	}

	defer func() {
		if err = sqliteStorage.Close(); err != nil {
			log.Error("could not close sqlite storage", "error", err)
		}
	}()

	if err = sqliteStorage.Init(ctx); err != nil {
		return fmt.Errorf("could not init sqlite storage: %w", err)
	}

	playerRepo := repository.NewPlayerRepository(redisStorage.Connection)
	gameRepo := repository.NewGameRepository(redisStorage.Connection)
	userRepo := repository.NewUserRepository(sqliteStorage.Connection)
	archiveRepo := repository.NewArchiveRepository(sqliteStorage.Connection)

	playerService := service.NewPlayerService(playerRepo)
	gameService := service.NewGameService(gameRepo)
	gamePlayService := service.NewGamePlayService(logger, playerService, gameService, archiveRepo)
	authService := service.NewAuthService(conf.JWTSecretKey)
	userService := service.NewUserService(userRepo)

	gameUseCase := usecase.NewGameUseCase(playerService, gamePlayService)
	userUseCase := usecase.NewUserUseCase(userService)

	authHandler := rest.NewAuth(logger, conf, authService, userUseCase)
	archiveHandler := rest.NewArchive(logger, archiveRepo)

	// run REST server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting REST server", "port", conf.HTTPPort)
		restServer := rest.New(logger, conf, authHandler, archiveHandler)
		if httpErr := restServer.Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("REST server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run WebSocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		wsServer := websocket.New(logger, gameUseCase)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("REST server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
