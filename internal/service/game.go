package service

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-rewind-backend/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rewind-backend/internal/pkg"
)

type GameService interface {
	CreateGame(ctx context.Context, player *entity.Player, gameType string) (*entity.Game, error)
	UpdateGame(ctx context.Context, game *entity.Game) error
	DeleteGame(ctx context.Context, game *entity.Game) error

	GetGameByID(ctx context.Context, id string) (*entity.Game, error)
	GetWaitingPublicGame(ctx context.Context) (*entity.Game, error)
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error

	AddToWaitingPool(ctx context.Context, gameID string) error
	RemoveFromWaitingPool(ctx context.Context, gameID string) error
	GetWaitingPublicGame(ctx context.Context) (*entity.Game, error)
}

type gameService struct {
	gameRepo gameRepo
}

func NewGameService(gameRepo gameRepo) GameService {
	return &gameService{
		gameRepo: gameRepo,
	}
}

// CreateGame - starts a fresh session owned by player.
// The creator gets a random mark; the second seat is taken on join.
func (that *gameService) CreateGame(ctx context.Context, player *entity.Player, gameType string) (*entity.Game, error) {
	newGame := entity.NewGame(pkg.GenerateGameID(), gameType)

	creatorMark, _ := newGame.GetRandomMarks()
	player.Mark = creatorMark
	player.GameID = newGame.ID
	newGame.Players = append(newGame.Players, player)

	if err := that.gameRepo.CreateOrUpdate(ctx, newGame); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	if newGame.IsPublic() {
		if err := that.gameRepo.AddToWaitingPool(ctx, newGame.ID); err != nil {
			return nil, fmt.Errorf("failed to publish game: %w", err)
		}
	}

	return newGame, nil
}

func (that *gameService) UpdateGame(ctx context.Context, game *entity.Game) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

func (that *gameService) DeleteGame(ctx context.Context, game *entity.Game) error {
	if game.IsPublic() {
		if err := that.gameRepo.RemoveFromWaitingPool(ctx, game.ID); err != nil {
			return fmt.Errorf("failed to remove game from waiting pool: %w", err)
		}
	}

	if err := that.gameRepo.DeleteByID(ctx, game.ID); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	return nil
}

func (that *gameService) GetGameByID(ctx context.Context, id string) (*entity.Game, error) {
	existingGame, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	return existingGame, nil
}

func (that *gameService) GetWaitingPublicGame(ctx context.Context) (*entity.Game, error) {
	existingGame, err := that.gameRepo.GetWaitingPublicGame(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get waiting public game: %w", err)
	}

	return existingGame, nil
}
