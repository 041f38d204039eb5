package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-rewind-backend/internal/entity"
	"github.com/rocketscienceinc/tictactoe-rewind-backend/internal/repository/storage"
)

func newArchiveRepo(t *testing.T) (context.Context, ArchiveRepository) {
	t.Helper()

	ctx := context.Background()

	sqliteStorage, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, sqliteStorage.Init(ctx))

	t.Cleanup(func() {
		require.NoError(t, sqliteStorage.Close())
	})

	return ctx, NewArchiveRepository(sqliteStorage.Connection)
}

// finishedGame plays X to a top row win.
func finishedGame(t *testing.T, id string) *entity.Game {
	t.Helper()

	game := entity.NewGame(id, entity.PublicType)
	game.Status = entity.StatusOngoing

	moves := []struct {
		mark string
		cell int
	}{
		{entity.PlayerX, 0}, {entity.PlayerO, 4}, {entity.PlayerX, 1}, {entity.PlayerO, 5}, {entity.PlayerX, 2},
	}
	for _, move := range moves {
		require.NoError(t, game.MakeTurn(move.mark, move.cell))
	}

	return game
}

func TestArchiveRepository_Save(t *testing.T) {
	ctx, archiveRepo := newArchiveRepo(t)

	// Given: a decided game
	game := finishedGame(t, "game-1")

	// When: Save is called
	err := archiveRepo.Save(ctx, game)

	// Then: no error should be returned
	require.NoError(t, err)
}

func TestArchiveRepository_ListRecent(t *testing.T) {
	t.Run("Returns saved games with their result", func(t *testing.T) {
		ctx, archiveRepo := newArchiveRepo(t)

		// Given: two archived games
		require.NoError(t, archiveRepo.Save(ctx, finishedGame(t, "game-1")))
		require.NoError(t, archiveRepo.Save(ctx, finishedGame(t, "game-2")))

		// When: listing recent games
		games, err := archiveRepo.ListRecent(ctx, 10)

		// Then: both games come back with winner and final board
		require.NoError(t, err)
		require.Len(t, games, 2)
		for _, archived := range games {
			assert.Equal(t, entity.PlayerX, archived.Winner)
			assert.Equal(t, 5, archived.Moves)
			assert.Equal(t, entity.PlayerX, archived.FinalBoard[0])
		}
	})

	t.Run("Respects the limit", func(t *testing.T) {
		ctx, archiveRepo := newArchiveRepo(t)

		// Given: three archived games
		for _, id := range []string{"a", "b", "c"} {
			require.NoError(t, archiveRepo.Save(ctx, finishedGame(t, id)))
		}

		// When: listing with limit 2
		games, err := archiveRepo.ListRecent(ctx, 2)

		// Then: only two games are returned
		require.NoError(t, err)
		require.Len(t, games, 2)
	})

	t.Run("Empty archive returns no games", func(t *testing.T) {
		ctx, archiveRepo := newArchiveRepo(t)

		// When: listing with nothing saved
		games, err := archiveRepo.ListRecent(ctx, 10)

		// Then: the list is empty
		require.NoError(t, err)
		require.Empty(t, games)
	})
}
