package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/restreamkit/volunteer-system/models"
)

var ErrGameNotFound = errors.New("game not found")

type GameRepository interface {
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Game, error)
	IsAdmin(ctx context.Context, exec SQLExecutor, gameID, userID int) (bool, error)
}

type postgresGameRepository struct{}

func NewPostgresGameRepository() GameRepository {
	return &postgresGameRepository{}
}

func (r *postgresGameRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Game, error) {
	query := `SELECT id, name, display_name FROM games WHERE id = $1`
	return r.scanOne(exec.QueryRowContext(ctx, query, id))
}

func (r *postgresGameRepository) IsAdmin(ctx context.Context, exec SQLExecutor, gameID, userID int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM game_admins
			WHERE game_id = $1 AND user_id = $2
		)`
	var exists bool
	if err := exec.QueryRowContext(ctx, query, gameID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check game admin: %w", err)
	}
	return exists, nil
}

func (r *postgresGameRepository) scanOne(row *sql.Row) (*models.Game, error) {
	game := &models.Game{}
	err := row.Scan(&game.ID, &game.Name, &game.DisplayName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to scan game: %w", err)
	}
	return game, nil
}
