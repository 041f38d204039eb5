package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/rocketscienceinc/tictactoe-rewind-backend/internal/repository"
)

const defaultArchiveLimit = 20

type ArchiveHandler interface {
	ListRecentGames(ctx echo.Context) error
}

type archiveRepo interface {
	ListRecent(ctx context.Context, limit int) ([]repository.ArchivedGame, error)
}

type archiveHandler struct {
	logger  *slog.Logger
	archive archiveRepo
}

func NewArchive(logger *slog.Logger, archive archiveRepo) ArchiveHandler {
	return &archiveHandler{
		logger:  logger,
		archive: archive,
	}
}

// ListRecentGames - returns the most recently completed games.
func (that *archiveHandler) ListRecentGames(ctx echo.Context) error {
	limit := defaultArchiveLimit
	if raw := ctx.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return ctx.String(http.StatusBadRequest, "limit must be a positive number")
		}
		limit = parsed
	}

	games, err := that.archive.ListRecent(ctx.Request().Context(), limit)
	if err != nil {
		that.logger.Error("failed to list archived games", "error", err)
		return ctx.String(http.StatusInternalServerError, "Internal Server Error")
	}

	return ctx.JSON(http.StatusOK, games)
}
