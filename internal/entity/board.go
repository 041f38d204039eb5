package entity

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-rewind-backend/internal/apperror"
)

const (
	PlayerX   = "X"
	PlayerO   = "O"
	PlayerTie = "-"

	EmptyCell = ""
)

var (
	ErrInvalidCell = errors.New("invalid cell index")

	WinCombos = [8][3]int{
		{0, 1, 2},
		{3, 4, 5},
		{6, 7, 8},
		{0, 3, 6},
		{1, 4, 7},
		{2, 5, 8},
		{0, 4, 8},
		{2, 4, 6},
	}
)

// Board is one immutable snapshot of the 3x3 grid, stored row-major.
// It is a value type: assigning or passing it copies all nine cells.
type Board [9]string

// DetermineResult - evaluates a snapshot.
// Returns PlayerX or PlayerO for a win, PlayerTie for a full board
// without a win, and EmptyCell while the game is undecided.
//
// The scan does not stop at the first winning combo: if a snapshot
// somehow holds two winning triples, the last one in WinCombos order
// is reported. Legal play can never produce such a snapshot.
func (that Board) DetermineResult() string {
	winner := EmptyCell

	for _, combo := range WinCombos {
		a, b, c := that[combo[0]], that[combo[1]], that[combo[2]]
		if a != EmptyCell && a == b && b == c {
			winner = a
		}
	}

	if winner != EmptyCell {
		return winner
	}

	for _, cell := range that {
		if cell == EmptyCell {
			return EmptyCell
		}
	}

	return PlayerTie
}

// IsDecided - reports whether the snapshot already has a winner or a tie.
func (that Board) IsDecided() bool {
	return that.DetermineResult() != EmptyCell
}

// ProposeMove - builds the next snapshot with mark placed at cell.
// The given board is never mutated; a rejected move returns it unchanged
// together with the reason.
func ProposeMove(board Board, mark string, cell int) (Board, error) {
	if cell < 0 || cell >= len(board) {
		return board, fmt.Errorf("%w: cell %d", ErrInvalidCell, cell)
	}

	if board.IsDecided() {
		return board, apperror.ErrGameFinished
	}

	if board[cell] != EmptyCell {
		return board, apperror.ErrCellOccupied
	}

	next := board
	next[cell] = mark

	return next, nil
}
