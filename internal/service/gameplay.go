package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-rewind-backend/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rewind-backend/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rewind-backend/internal/repository"
)

type GamePlayService interface {
	GetOrCreateGame(ctx context.Context, player *entity.Player, gameType string) (*entity.Game, error)
	JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error)
	JoinWaitingPublicGame(ctx context.Context, playerID string) (*entity.Game, error)

	MakeTurn(ctx context.Context, playerID string, cell int) (*entity.Game, error)
	Rewind(ctx context.Context, playerID string, index int) (*entity.Game, error)

	GetGameState(ctx context.Context, player *entity.Player) (*entity.Game, error)
	CleanupGame(ctx context.Context, game *entity.Game)
}

type archiveRepo interface {
	Save(ctx context.Context, game *entity.Game) error
}

type gamePlayService struct {
	logger *slog.Logger

	playerService PlayerService
	gameService   GameService
	archiveRepo   archiveRepo
}

func NewGamePlayService(logger *slog.Logger, playerService PlayerService, gameService GameService, archiveRepo archiveRepo) GamePlayService {
	return &gamePlayService{
		logger:        logger,
		playerService: playerService,
		gameService:   gameService,
		archiveRepo:   archiveRepo,
	}
}

func (that *gamePlayService) GetOrCreateGame(ctx context.Context, player *entity.Player, gameType string) (*entity.Game, error) {
	if player.GameID != "" {
		existingGame, err := that.gameService.GetGameByID(ctx, player.GameID)
		if err == nil {
			return existingGame, nil
		}

		if !errors.Is(err, repository.ErrGameNotFound) {
			return nil, fmt.Errorf("failed to get game by id: %w", err)
		}
	}

	newGame, err := that.gameService.CreateGame(ctx, player, gameType)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	if err = that.playerService.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	return newGame, nil
}

func (that *gamePlayService) JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error) {
	existingGame, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	player, err := that.playerService.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	return that.seatPlayer(ctx, existingGame, player)
}

func (that *gamePlayService) JoinWaitingPublicGame(ctx context.Context, playerID string) (*entity.Game, error) {
	player, err := that.playerService.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	existingGame, err := that.gameService.GetWaitingPublicGame(ctx)
	if errors.Is(err, repository.ErrGameNotFound) {
		return that.GetOrCreateGame(ctx, player, entity.PublicType)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to find waiting game: %w", err)
	}

	return that.seatPlayer(ctx, existingGame, player)
}

// seatPlayer - puts player on the free seat of game and starts it.
func (that *gamePlayService) seatPlayer(ctx context.Context, game *entity.Game, player *entity.Player) (*entity.Game, error) {
	if player.GameID == game.ID {
		return game, nil
	}

	if len(game.Players) == 2 {
		return nil, fmt.Errorf("%w: game id %s", apperror.ErrGameAlreadyExists, game.ID)
	}

	takenMark := entity.PlayerX
	if len(game.Players) > 0 {
		takenMark = game.Players[0].Mark
	}

	player.GameID = game.ID
	player.Mark = entity.PlayerO
	if takenMark == entity.PlayerO {
		player.Mark = entity.PlayerX
	}

	if err := that.playerService.CreateOrUpdate(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to update player: %w", err)
	}

	game.Status = entity.StatusOngoing
	game.Players = append(game.Players, player)
	if err := that.gameService.UpdateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	return game, nil
}

func (that *gamePlayService) MakeTurn(ctx context.Context, playerID string, cell int) (*entity.Game, error) {
	player, game, err := that.loadActiveGame(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if err = game.ConfirmOngoingState(); err != nil {
		return game, err
	}

	if err = game.MakeTurn(player.Mark, cell); err != nil {
		return game, fmt.Errorf("failed to make turn: %w", err)
	}

	if err = that.gameService.UpdateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	if game.IsDecided() {
		that.logger.Info("game decided", "gameID", game.ID, "result", game.Result())
	}

	return game, nil
}

// Rewind - moves the position pointer to any recorded snapshot.
// The game stays in Redis even when decided: rewinding past the final
// move reopens it and the next turn branches the history.
func (that *gamePlayService) Rewind(ctx context.Context, playerID string, index int) (*entity.Game, error) {
	_, game, err := that.loadActiveGame(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if err = game.ConfirmOngoingState(); err != nil {
		return game, err
	}

	if err = game.Rewind(index); err != nil {
		return game, fmt.Errorf("failed to rewind: %w", err)
	}

	if err = that.gameService.UpdateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	return game, nil
}

func (that *gamePlayService) GetGameState(ctx context.Context, player *entity.Player) (*entity.Game, error) {
	if player.GameID == "" {
		return nil, apperror.ErrNoActiveGames
	}

	existingGame, err := that.gameService.GetGameByID(ctx, player.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	return existingGame, nil
}

// CleanupGame - archives a decided game and releases its players.
// Failures are logged, not returned: cleanup runs best-effort after the
// session is already over.
func (that *gamePlayService) CleanupGame(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "CleanupGame", "gameID", game.ID)

	if game.IsDecided() {
		if err := that.archiveRepo.Save(ctx, game); err != nil {
			log.Error("failed to archive game", "error", err)
		}
	}

	for _, player := range game.Players {
		player.GameID = ""
		player.Mark = ""
		if err := that.playerService.CreateOrUpdate(ctx, player); err != nil {
			log.Error("failed to release player", "playerID", player.ID, "error", err)
		}
	}

	if err := that.gameService.DeleteGame(ctx, game); err != nil {
		log.Error("failed to delete game", "error", err)
	}
}

func (that *gamePlayService) loadActiveGame(ctx context.Context, playerID string) (*entity.Player, *entity.Game, error) {
	player, err := that.playerService.GetByID(ctx, playerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	if player.GameID == "" {
		return nil, nil, apperror.ErrNoActiveGames
	}

	game, err := that.gameService.GetGameByID(ctx, player.GameID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	return player, game, nil
}
