package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-rewind-backend/internal/entity"
)

// ArchivedGame is one completed session kept for the record after the
// live state leaves Redis.
type ArchivedGame struct {
	ID         string       `json:"id"`
	Winner     string       `json:"winner"`
	Moves      int          `json:"moves"`
	FinalBoard entity.Board `json:"final_board"`
	FinishedAt time.Time    `json:"finished_at"`
}

type ArchiveRepository interface {
	Save(ctx context.Context, game *entity.Game) error
	ListRecent(ctx context.Context, limit int) ([]ArchivedGame, error)
}

type archiveRepository struct {
	conn *sql.DB
}

func NewArchiveRepository(conn *sql.DB) ArchiveRepository {
	return &archiveRepository{
		conn: conn,
	}
}

func (that *archiveRepository) Save(ctx context.Context, game *entity.Game) error {
	boardJSON, err := json.Marshal(game.CurrentBoard())
	if err != nil {
		return fmt.Errorf("can't marshal final board: %w", err)
	}

	query := `INSERT OR REPLACE INTO archived_games (id, winner, moves, final_board, finished_at)
		VALUES (?, ?, ?, ?, ?)`

	_, err = that.conn.ExecContext(ctx, query, game.ID, game.Result(), game.Position, string(boardJSON), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("can't archive game: %w", err)
	}

	return nil
}

func (that *archiveRepository) ListRecent(ctx context.Context, limit int) ([]ArchivedGame, error) {
	query := `SELECT id, winner, moves, final_board, finished_at FROM archived_games
		ORDER BY finished_at DESC LIMIT ?`

	rows, err := that.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("can't list archived games: %w", err)
	}
	defer rows.Close()

	var games []ArchivedGame
	for rows.Next() {
		var (
			game      ArchivedGame
			boardJSON string
		)

		if err = rows.Scan(&game.ID, &game.Winner, &game.Moves, &boardJSON, &game.FinishedAt); err != nil {
			return nil, fmt.Errorf("can't scan archived game: %w", err)
		}

		if err = json.Unmarshal([]byte(boardJSON), &game.FinalBoard); err != nil {
			return nil, fmt.Errorf("can't unmarshal final board: %w", err)
		}

		games = append(games, game)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't iterate archived games: %w", err)
	}

	return games, nil
}
