package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/restreamkit/volunteer-system/models"
)

var ErrRaceNotFound = errors.New("race not found")

type RaceRepository interface {
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Race, error)
	ListByEvent(ctx context.Context, exec SQLExecutor, series, event string) ([]*models.Race, error)
}

type postgresRaceRepository struct{}

func NewPostgresRaceRepository() RaceRepository {
	return &postgresRaceRepository{}
}

const raceColumns = `id, series, event, phase, round, matchup, start_time, ended_at, schedule_kind, stream_url`

func scanRace(scanner interface{ Scan(...interface{}) error }) (*models.Race, error) {
	race := &models.Race{}
	err := scanner.Scan(
		&race.ID,
		&race.Series,
		&race.Event,
		&race.Phase,
		&race.Round,
		&race.Matchup,
		&race.StartTime,
		&race.EndedAt,
		&race.Kind,
		&race.StreamURL,
	)
	if err != nil {
		return nil, err
	}
	return race, nil
}

func (r *postgresRaceRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Race, error) {
	query := `SELECT ` + raceColumns + ` FROM races WHERE id = $1`

	race, err := scanRace(exec.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRaceNotFound
		}
		return nil, fmt.Errorf("failed to scan race %d: %w", id, err)
	}
	return race, nil
}

func (r *postgresRaceRepository) ListByEvent(ctx context.Context, exec SQLExecutor, series, event string) ([]*models.Race, error) {
	query := `
		SELECT ` + raceColumns + `
		FROM races
		WHERE series = $1 AND event = $2
		ORDER BY start_time NULLS LAST, id`

	rows, err := exec.QueryContext(ctx, query, series, event)
	if err != nil {
		return nil, fmt.Errorf("failed to query races: %w", err)
	}
	defer rows.Close()

	races := make([]*models.Race, 0)
	for rows.Next() {
		race, scanErr := scanRace(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan race row: %w", scanErr)
		}
		races = append(races, race)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during race rows iteration: %w", err)
	}
	return races, nil
}
