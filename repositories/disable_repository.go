package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/restreamkit/volunteer-system/models"
)

var (
	ErrDisabledBindingNotFound = errors.New("disabled role binding record not found")
	ErrDisabledBindingConflict = errors.New("role binding is already disabled for this event")
)

type DisabledRoleBindingRepository interface {
	Create(ctx context.Context, exec SQLExecutor, disabled *models.EventDisabledRoleBinding) error
	DeleteByRoleType(ctx context.Context, exec SQLExecutor, series, event string, roleTypeID int) error
	ListByEvent(ctx context.Context, exec SQLExecutor, series, event string) ([]*models.EventDisabledRoleBinding, error)
}

type postgresDisabledRoleBindingRepository struct{}

func NewPostgresDisabledRoleBindingRepository() DisabledRoleBindingRepository {
	return &postgresDisabledRoleBindingRepository{}
}

func (r *postgresDisabledRoleBindingRepository) Create(ctx context.Context, exec SQLExecutor, disabled *models.EventDisabledRoleBinding) error {
	query := `
		INSERT INTO event_disabled_role_bindings (series, event, role_type_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		disabled.Series,
		disabled.Event,
		disabled.RoleTypeID,
	).Scan(&disabled.ID, &disabled.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Constraint == "event_disabled_role_bindings_series_event_role_type_id_key" {
			return ErrDisabledBindingConflict
		}
		return fmt.Errorf("failed to insert disabled role binding: %w", err)
	}
	return nil
}

func (r *postgresDisabledRoleBindingRepository) DeleteByRoleType(ctx context.Context, exec SQLExecutor, series, event string, roleTypeID int) error {
	query := `DELETE FROM event_disabled_role_bindings WHERE series = $1 AND event = $2 AND role_type_id = $3`
	result, err := exec.ExecContext(ctx, query, series, event, roleTypeID)
	if err != nil {
		return fmt.Errorf("failed to delete disabled role binding for role type %d: %w", roleTypeID, err)
	}
	return checkAffectedRows(result, ErrDisabledBindingNotFound)
}

func (r *postgresDisabledRoleBindingRepository) ListByEvent(ctx context.Context, exec SQLExecutor, series, event string) ([]*models.EventDisabledRoleBinding, error) {
	query := `
		SELECT d.id, d.series, d.event, d.role_type_id, d.created_at, rt.name
		FROM event_disabled_role_bindings d
		JOIN role_types rt ON d.role_type_id = rt.id
		WHERE d.series = $1 AND d.event = $2
		ORDER BY rt.name`

	rows, err := exec.QueryContext(ctx, query, series, event)
	if err != nil {
		return nil, fmt.Errorf("failed to query disabled role bindings: %w", err)
	}
	defer rows.Close()

	disabled := make([]*models.EventDisabledRoleBinding, 0)
	for rows.Next() {
		var row models.EventDisabledRoleBinding
		if scanErr := rows.Scan(
			&row.ID,
			&row.Series,
			&row.Event,
			&row.RoleTypeID,
			&row.CreatedAt,
			&row.RoleTypeName,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan disabled role binding row: %w", scanErr)
		}
		disabled = append(disabled, &row)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during disabled role binding rows iteration: %w", err)
	}
	return disabled, nil
}
