package entity

import (
	"fmt"
	"math/rand"

	"github.com/rocketscienceinc/tictactoe-rewind-backend/internal/apperror"
)

const (
	StatusOngoing = "ongoing"
	StatusWaiting = "waiting"

	PublicType  = "public"
	PrivateType = "private"
)

// Game is one live session: the full snapshot history of the board plus
// the position pointer that selects the current snapshot.
//
// Turn owner and outcome are never stored; they are recomputed from
// (History, Position) on every read.
type Game struct {
	ID       string    `json:"id"`
	History  []Board   `json:"history"`
	Position int       `json:"position"`
	Status   string    `json:"status"`
	Players  []*Player `json:"players,omitempty"`
	Type     string    `json:"type,omitempty"`
}

func NewGame(id, gameType string) *Game {
	return &Game{
		ID:       id,
		History:  []Board{{}},
		Position: 0,
		Status:   StatusWaiting,
		Type:     gameType,
	}
}

// CurrentBoard - the snapshot selected by Position.
func (that *Game) CurrentBoard() Board {
	return that.History[that.Position]
}

// TurnOwner - X moves on even positions, O on odd ones.
// Position counts completed turns, so the empty board belongs to X.
func (that *Game) TurnOwner() string {
	if that.Position%2 == 0 {
		return PlayerX
	}
	return PlayerO
}

// Result - outcome of the current snapshot: PlayerX/PlayerO, PlayerTie
// or EmptyCell while undecided.
func (that *Game) Result() string {
	return that.CurrentBoard().DetermineResult()
}

func (that *Game) IsDecided() bool {
	return that.CurrentBoard().IsDecided()
}

// AppendSnapshot - drops every snapshot after Position, appends the new
// one and advances Position to it. Rewinding and then playing a move
// overwrites the abandoned future through this truncation.
func (that *Game) AppendSnapshot(snapshot Board) {
	that.History = append(that.History[:that.Position+1], snapshot)
	that.Position = len(that.History) - 1
}

// Rewind - moves Position to any recorded snapshot. It bypasses the
// evaluator and never touches History contents.
func (that *Game) Rewind(index int) error {
	if index < 0 || index >= len(that.History) {
		return fmt.Errorf("%w: index %d, history length %d", apperror.ErrIndexOutOfRange, index, len(that.History))
	}

	that.Position = index

	return nil
}

// MakeTurn - validates and applies one move for playerMark.
// Rejections leave the game untouched.
func (that *Game) MakeTurn(playerMark string, cell int) error {
	if that.TurnOwner() != playerMark {
		return apperror.ErrNotYourTurn
	}

	next, err := ProposeMove(that.CurrentBoard(), playerMark, cell)
	if err != nil {
		return err
	}

	that.AppendSnapshot(next)

	return nil
}

// StatusMessage - human readable state of the current snapshot.
func (that *Game) StatusMessage() string {
	switch result := that.Result(); result {
	case PlayerX, PlayerO:
		return fmt.Sprintf("winner: %s", result)
	case PlayerTie:
		return "draw"
	default:
		return fmt.Sprintf("turn %d for %s", that.Position+1, that.TurnOwner())
	}
}

func (that *Game) IsOngoing() bool {
	return that.Status == StatusOngoing
}

func (that *Game) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Game) ConfirmOngoingState() error {
	if that.IsWaiting() {
		return apperror.ErrGameIsNotStarted
	}
	return nil
}

func (that *Game) IsPublic() bool {
	return that.Type == PublicType
}

func (that *Game) GetRandomMarks() (string, string) {
	if rand.Intn(2) == 0 { //nolint: gosec // it's ok
		return PlayerX, PlayerO
	}
	return PlayerO, PlayerX
}
