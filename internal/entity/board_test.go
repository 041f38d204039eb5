package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-rewind-backend/internal/apperror"
)

func TestBoard_DetermineResult(t *testing.T) {
	t.Run("Winner on every combo", func(t *testing.T) {
		for _, combo := range WinCombos {
			for _, mark := range []string{PlayerX, PlayerO} {
				// Given: a board with one winning triple filled with the same mark
				var board Board
				board[combo[0]] = mark
				board[combo[1]] = mark
				board[combo[2]] = mark

				// When: evaluating the snapshot
				result := board.DetermineResult()

				// Then: that mark should be the winner
				require.Equal(t, mark, result, "combo %v", combo)
			}
		}
	})

	t.Run("Undecided while a cell is empty", func(t *testing.T) {
		// Given: a board with moves but no winning triple and empty cells left
		board := Board{PlayerX, PlayerO, PlayerX, EmptyCell, PlayerO, EmptyCell, PlayerX, EmptyCell, EmptyCell}

		// When: evaluating the snapshot
		result := board.DetermineResult()

		// Then: the game should still be undecided
		require.Equal(t, EmptyCell, result)
	})

	t.Run("Tie on a full board without a winner", func(t *testing.T) {
		// Given: the classic X-O-X / O-X-O... layout with no triple matching
		board := Board{
			PlayerX, PlayerO, PlayerX,
			PlayerO, PlayerX, PlayerO,
			PlayerO, PlayerX, PlayerO,
		}

		// When: evaluating the snapshot
		result := board.DetermineResult()

		// Then: the game should be a tie
		assert.Equal(t, PlayerTie, result)
	})

	t.Run("Win takes precedence over a full board", func(t *testing.T) {
		// Given: a completely filled board that still contains a winning triple
		board := Board{
			PlayerX, PlayerX, PlayerX,
			PlayerO, PlayerO, PlayerX,
			PlayerX, PlayerO, PlayerO,
		}

		// When: evaluating the snapshot
		result := board.DetermineResult()

		// Then: the winner should be reported, not a tie
		require.Equal(t, PlayerX, result)
	})

	t.Run("Last combo in scan order wins on an injected double win", func(t *testing.T) {
		// Given: an unreachable snapshot where X holds the top row and O the bottom row
		board := Board{
			PlayerX, PlayerX, PlayerX,
			EmptyCell, EmptyCell, EmptyCell,
			PlayerO, PlayerO, PlayerO,
		}

		// When: evaluating the snapshot
		result := board.DetermineResult()

		// Then: the later triple in WinCombos order should be reported
		assert.Equal(t, PlayerO, result)
	})
}

func TestProposeMove(t *testing.T) {
	t.Run("Places the mark on a copy", func(t *testing.T) {
		// Given: an empty board
		var board Board

		// When: X is proposed on cell 4
		next, err := ProposeMove(board, PlayerX, 4)

		// Then: the new snapshot holds the mark and the original is untouched
		require.NoError(t, err)
		assert.Equal(t, PlayerX, next[4])
		assert.Equal(t, Board{}, board)
	})

	t.Run("Rejects an occupied cell", func(t *testing.T) {
		// Given: a board with cell 0 taken by X
		board := Board{PlayerX}

		// When: O is proposed on the same cell
		next, err := ProposeMove(board, PlayerO, 0)

		// Then: the move should be rejected and the board returned unchanged
		require.ErrorIs(t, err, apperror.ErrCellOccupied)
		assert.Equal(t, board, next)
	})

	t.Run("Rejects a move on a decided board", func(t *testing.T) {
		// Given: a board already won by X
		board := Board{PlayerX, PlayerX, PlayerX, PlayerO, PlayerO}

		// When: O is proposed on an empty cell
		_, err := ProposeMove(board, PlayerO, 8)

		// Then: the move should be rejected even though the cell is free
		require.ErrorIs(t, err, apperror.ErrGameFinished)
	})

	t.Run("Rejects an out of range cell", func(t *testing.T) {
		// Given: an empty board
		var board Board

		// When: cells outside 0..8 are proposed
		_, errHigh := ProposeMove(board, PlayerX, 9)
		_, errLow := ProposeMove(board, PlayerX, -1)

		// Then: both moves should be rejected
		assert.ErrorIs(t, errHigh, ErrInvalidCell)
		assert.ErrorIs(t, errLow, ErrInvalidCell)
	})
}
