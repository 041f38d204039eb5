package service

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-rewind-backend/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rewind-backend/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rewind-backend/internal/repository"
)

type mockPlayerService struct {
	mock.Mock
}

func (that *mockPlayerService) CreateOrUpdate(ctx context.Context, player *entity.Player) error {
	args := that.Called(ctx, player)
	return args.Error(0)
}

func (that *mockPlayerService) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	args := that.Called(ctx, id)
	player, _ := args.Get(0).(*entity.Player)
	return player, args.Error(1)
}

type mockGameService struct {
	mock.Mock
}

func (that *mockGameService) CreateGame(ctx context.Context, player *entity.Player, gameType string) (*entity.Game, error) {
	args := that.Called(ctx, player, gameType)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameService) UpdateGame(ctx context.Context, game *entity.Game) error {
	args := that.Called(ctx, game)
	return args.Error(0)
}

func (that *mockGameService) DeleteGame(ctx context.Context, game *entity.Game) error {
	args := that.Called(ctx, game)
	return args.Error(0)
}

func (that *mockGameService) GetGameByID(ctx context.Context, id string) (*entity.Game, error) {
	args := that.Called(ctx, id)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

func (that *mockGameService) GetWaitingPublicGame(ctx context.Context) (*entity.Game, error) {
	args := that.Called(ctx)
	game, _ := args.Get(0).(*entity.Game)
	return game, args.Error(1)
}

type mockArchiveRepo struct {
	mock.Mock
}

func (that *mockArchiveRepo) Save(ctx context.Context, game *entity.Game) error {
	args := that.Called(ctx, game)
	return args.Error(0)
}

func newGamePlayFixture(t *testing.T) (*mockPlayerService, *mockGameService, *mockArchiveRepo, GamePlayService) {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	players := &mockPlayerService{}
	games := &mockGameService{}
	archive := &mockArchiveRepo{}

	t.Cleanup(func() {
		players.AssertExpectations(t)
		games.AssertExpectations(t)
		archive.AssertExpectations(t)
	})

	return players, games, archive, NewGamePlayService(logger, players, games, archive)
}

// ongoingGame builds a two-seat game in progress.
func ongoingGame(id string) (*entity.Game, *entity.Player, *entity.Player) {
	playerX := &entity.Player{ID: "px", Mark: entity.PlayerX, GameID: id}
	playerO := &entity.Player{ID: "po", Mark: entity.PlayerO, GameID: id}

	game := entity.NewGame(id, entity.PrivateType)
	game.Status = entity.StatusOngoing
	game.Players = []*entity.Player{playerX, playerO}

	return game, playerX, playerO
}

func TestGamePlayService_MakeTurn(t *testing.T) {
	ctx := context.Background()

	t.Run("Applies a legal move and persists the game", func(t *testing.T) {
		players, games, _, gamePlay := newGamePlayFixture(t)

		// Given: an ongoing game where X moves first
		game, playerX, _ := ongoingGame("123")
		players.On("GetByID", mock.Anything, "px").Return(playerX, nil).Once()
		games.On("GetGameByID", mock.Anything, "123").Return(game, nil).Once()
		games.On("UpdateGame", mock.Anything, game).Return(nil).Once()

		// When: X plays cell 0
		updatedGame, err := gamePlay.MakeTurn(ctx, "px", 0)

		// Then: the snapshot is appended and the game saved
		require.NoError(t, err)
		require.Len(t, updatedGame.History, 2)
		require.Equal(t, 1, updatedGame.Position)
		assert.Equal(t, entity.PlayerX, updatedGame.CurrentBoard()[0])
	})

	t.Run("Rejects an occupied cell without saving", func(t *testing.T) {
		players, games, _, gamePlay := newGamePlayFixture(t)

		// Given: an ongoing game where X already took cell 0
		game, playerX, playerO := ongoingGame("123")
		require.NoError(t, game.MakeTurn(playerX.Mark, 0))
		players.On("GetByID", mock.Anything, "po").Return(playerO, nil).Once()
		games.On("GetGameByID", mock.Anything, "123").Return(game, nil).Once()

		// When: O tries the same cell
		_, err := gamePlay.MakeTurn(ctx, "po", 0)

		// Then: the rejection surfaces and UpdateGame is never called
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
	})

	t.Run("Rejects a move before the game starts", func(t *testing.T) {
		players, games, _, gamePlay := newGamePlayFixture(t)

		// Given: a game still waiting for a second player
		game := entity.NewGame("123", entity.PublicType)
		playerX := &entity.Player{ID: "px", Mark: entity.PlayerX, GameID: "123"}
		game.Players = []*entity.Player{playerX}
		players.On("GetByID", mock.Anything, "px").Return(playerX, nil).Once()
		games.On("GetGameByID", mock.Anything, "123").Return(game, nil).Once()

		// When: the creator tries to move alone
		_, err := gamePlay.MakeTurn(ctx, "px", 0)

		// Then: the move is rejected
		require.ErrorIs(t, err, apperror.ErrGameIsNotStarted)
	})

	t.Run("Rejects a player without a game", func(t *testing.T) {
		players, _, _, gamePlay := newGamePlayFixture(t)

		// Given: a player who never joined a game
		players.On("GetByID", mock.Anything, "lonely").Return(&entity.Player{ID: "lonely"}, nil).Once()

		// When: they try to move
		_, err := gamePlay.MakeTurn(ctx, "lonely", 0)

		// Then: ErrNoActiveGames should be returned
		require.ErrorIs(t, err, apperror.ErrNoActiveGames)
	})
}

func TestGamePlayService_Rewind(t *testing.T) {
	ctx := context.Background()

	t.Run("Moves the pointer and persists", func(t *testing.T) {
		players, games, _, gamePlay := newGamePlayFixture(t)

		// Given: an ongoing game with two moves recorded
		game, playerX, _ := ongoingGame("123")
		require.NoError(t, game.MakeTurn(entity.PlayerX, 0))
		require.NoError(t, game.MakeTurn(entity.PlayerO, 4))
		players.On("GetByID", mock.Anything, "px").Return(playerX, nil).Once()
		games.On("GetGameByID", mock.Anything, "123").Return(game, nil).Once()
		games.On("UpdateGame", mock.Anything, game).Return(nil).Once()

		// When: rewinding to the empty board
		updatedGame, err := gamePlay.Rewind(ctx, "px", 0)

		// Then: only the pointer changes, history keeps all snapshots
		require.NoError(t, err)
		require.Equal(t, 0, updatedGame.Position)
		require.Len(t, updatedGame.History, 3)
	})

	t.Run("Rejects an out of range index without saving", func(t *testing.T) {
		players, games, _, gamePlay := newGamePlayFixture(t)

		// Given: an ongoing game with an empty history tail
		game, playerX, _ := ongoingGame("123")
		players.On("GetByID", mock.Anything, "px").Return(playerX, nil).Once()
		games.On("GetGameByID", mock.Anything, "123").Return(game, nil).Once()

		// When: rewinding past the recorded history
		_, err := gamePlay.Rewind(ctx, "px", 5)

		// Then: the rejection surfaces and the position is untouched
		require.ErrorIs(t, err, apperror.ErrIndexOutOfRange)
		require.Equal(t, 0, game.Position)
	})
}

func TestGamePlayService_CleanupGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Archives a decided game and releases players", func(t *testing.T) {
		players, games, archive, gamePlay := newGamePlayFixture(t)

		// Given: a game won by X
		game, playerX, playerO := ongoingGame("123")
		moves := []struct {
			mark string
			cell int
		}{
			{entity.PlayerX, 0}, {entity.PlayerO, 4}, {entity.PlayerX, 1}, {entity.PlayerO, 5}, {entity.PlayerX, 2},
		}
		for _, move := range moves {
			require.NoError(t, game.MakeTurn(move.mark, move.cell))
		}

		archive.On("Save", mock.Anything, game).Return(nil).Once()
		players.On("CreateOrUpdate", mock.Anything, playerX).Return(nil).Once()
		players.On("CreateOrUpdate", mock.Anything, playerO).Return(nil).Once()
		games.On("DeleteGame", mock.Anything, game).Return(nil).Once()

		// When: cleaning up the game
		gamePlay.CleanupGame(ctx, game)

		// Then: both seats are released
		assert.Empty(t, playerX.GameID)
		assert.Empty(t, playerO.GameID)
	})

	t.Run("Undecided game is deleted without archiving", func(t *testing.T) {
		players, games, _, gamePlay := newGamePlayFixture(t)

		// Given: an abandoned game with no result
		game, playerX, playerO := ongoingGame("123")
		players.On("CreateOrUpdate", mock.Anything, playerX).Return(nil).Once()
		players.On("CreateOrUpdate", mock.Anything, playerO).Return(nil).Once()
		games.On("DeleteGame", mock.Anything, game).Return(nil).Once()

		// When: cleaning up the game
		gamePlay.CleanupGame(ctx, game)

		// Then: the archive mock got no calls (asserted on cleanup)
	})
}

func TestGamePlayService_JoinGameByID(t *testing.T) {
	ctx := context.Background()

	t.Run("Second player takes the free seat", func(t *testing.T) {
		players, games, _, gamePlay := newGamePlayFixture(t)

		// Given: a waiting game whose creator holds X
		creator := &entity.Player{ID: "px", Mark: entity.PlayerX, GameID: "123"}
		game := entity.NewGame("123", entity.PrivateType)
		game.Players = []*entity.Player{creator}

		joiner := &entity.Player{ID: "po"}
		games.On("GetGameByID", mock.Anything, "123").Return(game, nil).Once()
		players.On("GetByID", mock.Anything, "po").Return(joiner, nil).Once()
		players.On("CreateOrUpdate", mock.Anything, joiner).Return(nil).Once()
		games.On("UpdateGame", mock.Anything, game).Return(nil).Once()

		// When: the second player joins
		joinedGame, err := gamePlay.JoinGameByID(ctx, "123", "po")

		// Then: they get the opposite mark and the game starts
		require.NoError(t, err)
		require.Equal(t, entity.PlayerO, joiner.Mark)
		require.Equal(t, entity.StatusOngoing, joinedGame.Status)
		require.Len(t, joinedGame.Players, 2)
	})

	t.Run("Full game rejects a third player", func(t *testing.T) {
		players, games, _, gamePlay := newGamePlayFixture(t)

		// Given: a game with both seats taken
		game, _, _ := ongoingGame("123")
		third := &entity.Player{ID: "third"}
		games.On("GetGameByID", mock.Anything, "123").Return(game, nil).Once()
		players.On("GetByID", mock.Anything, "third").Return(third, nil).Once()

		// When: a third player tries to join
		_, err := gamePlay.JoinGameByID(ctx, "123", "third")

		// Then: the join is rejected
		require.ErrorIs(t, err, apperror.ErrGameAlreadyExists)
	})
}

func TestGamePlayService_JoinWaitingPublicGame(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates a game when the pool is empty", func(t *testing.T) {
		players, games, _, gamePlay := newGamePlayFixture(t)

		// Given: no waiting public games
		player := &entity.Player{ID: "px"}
		newGame := entity.NewGame("fresh", entity.PublicType)
		players.On("GetByID", mock.Anything, "px").Return(player, nil).Once()
		games.On("GetWaitingPublicGame", mock.Anything).Return(nil, repository.ErrGameNotFound).Once()
		games.On("CreateGame", mock.Anything, player, entity.PublicType).Return(newGame, nil).Once()
		players.On("CreateOrUpdate", mock.Anything, player).Return(nil).Once()

		// When: joining the public queue
		game, err := gamePlay.JoinWaitingPublicGame(ctx, "px")

		// Then: a fresh waiting game is handed back
		require.NoError(t, err)
		require.Equal(t, "fresh", game.ID)
		require.Equal(t, entity.StatusWaiting, game.Status)
	})
}
