package websocket

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-rewind-backend/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-rewind-backend/internal/entity"
)

// rejection errors are expected gameplay outcomes: the client gets the
// reason and the unchanged game state, the connection stays up.
var rejectionErrors = []error{
	apperror.ErrCellOccupied,
	apperror.ErrGameFinished,
	apperror.ErrNotYourTurn,
	apperror.ErrGameIsNotStarted,
	apperror.ErrIndexOutOfRange,
	apperror.ErrNoActiveGames,
	apperror.ErrGameAlreadyExists,
	entity.ErrInvalidCell,
}

func isRejection(err error) bool {
	for _, rejection := range rejectionErrors {
		if errors.Is(err, rejection) {
			return true
		}
	}
	return false
}

func unmarshalPayload(msg *Message) (*RequestPayload, error) {
	var payload RequestPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return &payload, nil
}

func (that *RequestPayload) playerID() string {
	if that.Player == nil {
		return ""
	}
	return that.Player.ID
}

func (that *Server) handleConnect(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	payload, err := unmarshalPayload(msg)
	if err != nil {
		return err
	}

	player, err := that.game.GetOrCreatePlayer(ctx, payload.playerID())
	if err != nil {
		return fmt.Errorf("failed to get or create player: %w", err)
	}

	if player.ID == payload.playerID() {
		that.logger.Info("player connected", "playerID", player.ID)
	} else {
		that.logger.Info("registered new player", "playerID", player.ID)
	}

	return that.sendMessage(bufrw, msg.Action, ResponsePayload{Player: player})
}

func (that *Server) handleNewGame(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	payload, err := unmarshalPayload(msg)
	if err != nil {
		return err
	}

	gameType := payload.GameType
	if gameType == "" {
		gameType = entity.PrivateType
	}

	game, err := that.game.GetOrCreateGame(ctx, payload.playerID(), gameType)
	if err != nil {
		return fmt.Errorf("failed to get or create game: %w", err)
	}

	that.logger.Info("game ready", "gameID", game.ID, "playerID", payload.playerID())

	return that.sendGameState(bufrw, msg.Action, payload.Player, game)
}

func (that *Server) handleJoinGame(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	payload, err := unmarshalPayload(msg)
	if err != nil {
		return err
	}

	game, err := that.game.JoinGame(ctx, payload.GameID, payload.playerID())
	if err != nil {
		return that.respondGameError(bufrw, msg.Action, payload.Player, game, err)
	}

	return that.sendGameState(bufrw, msg.Action, payload.Player, game)
}

func (that *Server) handleJoinPublicGame(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	payload, err := unmarshalPayload(msg)
	if err != nil {
		return err
	}

	game, err := that.game.JoinPublicGame(ctx, payload.playerID())
	if err != nil {
		return that.respondGameError(bufrw, msg.Action, payload.Player, game, err)
	}

	return that.sendGameState(bufrw, msg.Action, payload.Player, game)
}

// handleMove - "cell N clicked": one complete evaluate/append transition.
func (that *Server) handleMove(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	payload, err := unmarshalPayload(msg)
	if err != nil {
		return err
	}

	if payload.Cell == nil {
		return that.sendMessage(bufrw, msg.Action, ResponsePayload{Player: payload.Player, Error: "cell is required"})
	}

	game, err := that.game.MakeTurn(ctx, payload.playerID(), *payload.Cell)
	if err != nil {
		return that.respondGameError(bufrw, msg.Action, payload.Player, game, err)
	}

	return that.sendGameState(bufrw, msg.Action, payload.Player, game)
}

// handleRewind - "history entry M selected": moves the position pointer
// without consulting the evaluator.
func (that *Server) handleRewind(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	payload, err := unmarshalPayload(msg)
	if err != nil {
		return err
	}

	if payload.Index == nil {
		return that.sendMessage(bufrw, msg.Action, ResponsePayload{Player: payload.Player, Error: "index is required"})
	}

	game, err := that.game.Rewind(ctx, payload.playerID(), *payload.Index)
	if err != nil {
		return that.respondGameError(bufrw, msg.Action, payload.Player, game, err)
	}

	return that.sendGameState(bufrw, msg.Action, payload.Player, game)
}

func (that *Server) handleGameState(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	payload, err := unmarshalPayload(msg)
	if err != nil {
		return err
	}

	game, err := that.game.GetGameState(ctx, payload.playerID())
	if err != nil {
		return that.respondGameError(bufrw, msg.Action, payload.Player, game, err)
	}

	return that.sendGameState(bufrw, msg.Action, payload.Player, game)
}

func (that *Server) handleLeaveGame(ctx context.Context, msg *Message, bufrw *bufio.ReadWriter) error {
	payload, err := unmarshalPayload(msg)
	if err != nil {
		return err
	}

	if err = that.game.LeaveGame(ctx, payload.playerID()); err != nil {
		return that.respondGameError(bufrw, msg.Action, payload.Player, nil, err)
	}

	return that.sendMessage(bufrw, msg.Action, ResponsePayload{Player: payload.Player})
}

func (that *Server) sendGameState(bufrw *bufio.ReadWriter, action string, player *entity.Player, game *entity.Game) error {
	return that.sendMessage(bufrw, action, ResponsePayload{
		Player: player,
		Game:   newGameResponse(game),
	})
}

// respondGameError - reports a gameplay rejection back to the client and
// escalates anything else.
func (that *Server) respondGameError(bufrw *bufio.ReadWriter, action string, player *entity.Player, game *entity.Game, err error) error {
	if !isRejection(err) {
		return err
	}

	payload := ResponsePayload{
		Player: player,
		Error:  err.Error(),
	}
	if game != nil && len(game.History) > 0 {
		payload.Game = newGameResponse(game)
	}

	return that.sendMessage(bufrw, action, payload)
}
