package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/restreamkit/volunteer-system/models"
)

var ErrEventNotFound = errors.New("event not found")

type EventRepository interface {
	GetBySlug(ctx context.Context, exec SQLExecutor, series, event string) (*models.Event, error)
	IsOrganizer(ctx context.Context, exec SQLExecutor, series, event string, userID int) (bool, error)
	IsRestreamer(ctx context.Context, exec SQLExecutor, series, event string, userID int) (bool, error)
}

type postgresEventRepository struct{}

func NewPostgresEventRepository() EventRepository {
	return &postgresEventRepository{}
}

func (r *postgresEventRepository) GetBySlug(ctx context.Context, exec SQLExecutor, series, event string) (*models.Event, error) {
	query := `
		SELECT series, event, display_name, game_id, start_date, end_date,
		       default_race_duration_seconds, force_custom_role_binding
		FROM events
		WHERE series = $1 AND event = $2`

	ev := &models.Event{}
	var durationSeconds int64
	err := exec.QueryRowContext(ctx, query, series, event).Scan(
		&ev.Series,
		&ev.Event,
		&ev.DisplayName,
		&ev.GameID,
		&ev.StartDate,
		&ev.EndDate,
		&durationSeconds,
		&ev.ForceCustomRoleBinding,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event %s/%s: %w", series, event, err)
	}
	ev.DefaultRaceDuration = time.Duration(durationSeconds) * time.Second
	return ev, nil
}

func (r *postgresEventRepository) IsOrganizer(ctx context.Context, exec SQLExecutor, series, event string, userID int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM event_organizers
			WHERE series = $1 AND event = $2 AND user_id = $3
		)`
	var exists bool
	if err := exec.QueryRowContext(ctx, query, series, event, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check event organizer: %w", err)
	}
	return exists, nil
}

func (r *postgresEventRepository) IsRestreamer(ctx context.Context, exec SQLExecutor, series, event string, userID int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM event_restreamers
			WHERE series = $1 AND event = $2 AND user_id = $3
		)`
	var exists bool
	if err := exec.QueryRowContext(ctx, query, series, event, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check event restreamer: %w", err)
	}
	return exists, nil
}
