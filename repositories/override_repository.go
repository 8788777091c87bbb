package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/restreamkit/volunteer-system/models"
)

var (
	ErrOverrideNotFound = errors.New("discord role override not found")
	ErrOverrideConflict = errors.New("discord role override already exists for this role type")
)

type DiscordRoleOverrideRepository interface {
	Create(ctx context.Context, exec SQLExecutor, override *models.EventDiscordRoleOverride) error
	DeleteByRoleType(ctx context.Context, exec SQLExecutor, series, event string, roleTypeID int) error
	ListByEvent(ctx context.Context, exec SQLExecutor, series, event string) ([]*models.EventDiscordRoleOverride, error)
}

type postgresDiscordRoleOverrideRepository struct{}

func NewPostgresDiscordRoleOverrideRepository() DiscordRoleOverrideRepository {
	return &postgresDiscordRoleOverrideRepository{}
}

func (r *postgresDiscordRoleOverrideRepository) Create(ctx context.Context, exec SQLExecutor, override *models.EventDiscordRoleOverride) error {
	query := `
		INSERT INTO event_discord_role_overrides (series, event, role_type_id, discord_role_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := exec.QueryRowContext(ctx, query,
		override.Series,
		override.Event,
		override.RoleTypeID,
		override.DiscordRoleID,
	).Scan(&override.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Constraint == "event_discord_role_overrides_series_event_role_type_id_key" {
			return ErrOverrideConflict
		}
		return fmt.Errorf("failed to insert discord role override: %w", err)
	}
	return nil
}

func (r *postgresDiscordRoleOverrideRepository) DeleteByRoleType(ctx context.Context, exec SQLExecutor, series, event string, roleTypeID int) error {
	query := `DELETE FROM event_discord_role_overrides WHERE series = $1 AND event = $2 AND role_type_id = $3`
	result, err := exec.ExecContext(ctx, query, series, event, roleTypeID)
	if err != nil {
		return fmt.Errorf("failed to delete discord role override for role type %d: %w", roleTypeID, err)
	}
	return checkAffectedRows(result, ErrOverrideNotFound)
}

func (r *postgresDiscordRoleOverrideRepository) ListByEvent(ctx context.Context, exec SQLExecutor, series, event string) ([]*models.EventDiscordRoleOverride, error) {
	query := `
		SELECT o.id, o.series, o.event, o.role_type_id, o.discord_role_id, rt.name
		FROM event_discord_role_overrides o
		JOIN role_types rt ON o.role_type_id = rt.id
		WHERE o.series = $1 AND o.event = $2
		ORDER BY rt.name`

	rows, err := exec.QueryContext(ctx, query, series, event)
	if err != nil {
		return nil, fmt.Errorf("failed to query discord role overrides: %w", err)
	}
	defer rows.Close()

	overrides := make([]*models.EventDiscordRoleOverride, 0)
	for rows.Next() {
		var override models.EventDiscordRoleOverride
		if scanErr := rows.Scan(
			&override.ID,
			&override.Series,
			&override.Event,
			&override.RoleTypeID,
			&override.DiscordRoleID,
			&override.RoleTypeName,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan discord role override row: %w", scanErr)
		}
		overrides = append(overrides, &override)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during discord role override rows iteration: %w", err)
	}
	return overrides, nil
}
