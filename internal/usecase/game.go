package usecase

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-rewind-backend/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rewind-backend/internal/pkg"
)

type GameUseCase interface {
	GetOrCreatePlayer(ctx context.Context, playerID string) (*entity.Player, error)

	GetOrCreateGame(ctx context.Context, playerID, gameType string) (*entity.Game, error)
	JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	JoinPublicGame(ctx context.Context, playerID string) (*entity.Game, error)
	LeaveGame(ctx context.Context, playerID string) error

	MakeTurn(ctx context.Context, playerID string, cell int) (*entity.Game, error)
	Rewind(ctx context.Context, playerID string, index int) (*entity.Game, error)
	GetGameState(ctx context.Context, playerID string) (*entity.Game, error)
}

type playerService interface {
	CreateOrUpdate(ctx context.Context, player *entity.Player) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type gamePlayService interface {
	GetOrCreateGame(ctx context.Context, player *entity.Player, gameType string) (*entity.Game, error)
	JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	JoinWaitingPublicGame(ctx context.Context, playerID string) (*entity.Game, error)

	MakeTurn(ctx context.Context, playerID string, cell int) (*entity.Game, error)
	Rewind(ctx context.Context, playerID string, index int) (*entity.Game, error)

	GetGameState(ctx context.Context, player *entity.Player) (*entity.Game, error)
	CleanupGame(ctx context.Context, game *entity.Game)
}

type gameUseCase struct {
	playerService   playerService
	gamePlayService gamePlayService
}

func NewGameUseCase(playerService playerService, gamePlayService gamePlayService) GameUseCase {
	return &gameUseCase{
		playerService:   playerService,
		gamePlayService: gamePlayService,
	}
}

func (that *gameUseCase) GetOrCreatePlayer(ctx context.Context, playerID string) (*entity.Player, error) {
	if playerID == "" {
		player := &entity.Player{ID: pkg.GenerateNewSessionID()}
		if err := that.playerService.CreateOrUpdate(ctx, player); err != nil {
			return nil, fmt.Errorf("could not create player: %w", err)
		}

		return player, nil
	}

	player, err := that.playerService.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	return player, nil
}

func (that *gameUseCase) GetOrCreateGame(ctx context.Context, playerID, gameType string) (*entity.Game, error) {
	player, err := that.playerService.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	game, err := that.gamePlayService.GetOrCreateGame(ctx, player, gameType)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create game: %w", err)
	}

	return game, nil
}

func (that *gameUseCase) JoinGame(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	game, err := that.gamePlayService.JoinGameByID(ctx, gameID, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to game: %w", err)
	}

	return game, nil
}

func (that *gameUseCase) JoinPublicGame(ctx context.Context, playerID string) (*entity.Game, error) {
	game, err := that.gamePlayService.JoinWaitingPublicGame(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to join public game: %w", err)
	}

	return game, nil
}

func (that *gameUseCase) LeaveGame(ctx context.Context, playerID string) error {
	player, err := that.playerService.GetByID(ctx, playerID)
	if err != nil {
		return fmt.Errorf("failed to get player: %w", err)
	}

	game, err := that.gamePlayService.GetGameState(ctx, player)
	if err != nil {
		return fmt.Errorf("failed to get game state: %w", err)
	}

	that.gamePlayService.CleanupGame(ctx, game)

	return nil
}

func (that *gameUseCase) MakeTurn(ctx context.Context, playerID string, cell int) (*entity.Game, error) {
	game, err := that.gamePlayService.MakeTurn(ctx, playerID, cell)
	if err != nil {
		return game, fmt.Errorf("failed to make turn: %w", err)
	}

	return game, nil
}

func (that *gameUseCase) Rewind(ctx context.Context, playerID string, index int) (*entity.Game, error) {
	game, err := that.gamePlayService.Rewind(ctx, playerID, index)
	if err != nil {
		return game, fmt.Errorf("failed to rewind: %w", err)
	}

	return game, nil
}

func (that *gameUseCase) GetGameState(ctx context.Context, playerID string) (*entity.Game, error) {
	player, err := that.playerService.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	game, err := that.gamePlayService.GetGameState(ctx, player)
	if err != nil {
		return nil, fmt.Errorf("failed to get game state: %w", err)
	}

	return game, nil
}
