package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/tictactoe-rewind-backend/internal/entity"
)

// Message is one WebSocket exchange: an action name plus its payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// RequestPayload carries the client side of every action.
type RequestPayload struct {
	Player   *entity.Player `json:"player,omitempty"`
	GameID   string         `json:"game_id,omitempty"`
	GameType string         `json:"game_type,omitempty"`
	Cell     *int           `json:"cell,omitempty"`
	Index    *int           `json:"index,omitempty"`
}

// GameResponse is the view of a game sent to clients: the stored
// (history, position) pair plus the derived turn, winner and message.
type GameResponse struct {
	ID       string         `json:"id"`
	Board    entity.Board   `json:"board"`
	History  []entity.Board `json:"history"`
	Position int            `json:"position"`
	Turn     string         `json:"turn,omitempty"`
	Winner   string         `json:"winner,omitempty"`
	Status   string         `json:"status"`
	Message  string         `json:"message"`
}

type ResponsePayload struct {
	Player *entity.Player `json:"player,omitempty"`
	Game   *GameResponse  `json:"game,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// newGameResponse derives the client view from a game entity.
func newGameResponse(game *entity.Game) *GameResponse {
	response := &GameResponse{
		ID:       game.ID,
		Board:    game.CurrentBoard(),
		History:  game.History,
		Position: game.Position,
		Status:   game.Status,
		Message:  game.StatusMessage(),
	}

	switch result := game.Result(); result {
	case entity.PlayerX, entity.PlayerO, entity.PlayerTie:
		response.Winner = result
		response.Status = statusFinished
	default:
		response.Turn = game.TurnOwner()
	}

	return response
}

// frame represents a WebSocket frame and its metadata.
type frame struct {
	isFin   bool
	opCode  byte
	length  uint64
	payload []byte
}

const (
	opText  = 0x1
	opClose = 0x8
)

const statusFinished = "finished"
