package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/restreamkit/volunteer-system/models"
)

var (
	ErrRoleBindingNotFound        = errors.New("role binding not found")
	ErrRoleBindingConflict        = errors.New("role binding already exists for this role type")
	ErrRoleBindingRoleTypeInvalid = errors.New("role binding references unknown role type")
)

type RoleBindingRepository interface {
	Create(ctx context.Context, exec SQLExecutor, binding *models.RoleBinding) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.RoleBinding, error)
	Delete(ctx context.Context, exec SQLExecutor, id int) error
	ListByEvent(ctx context.Context, exec SQLExecutor, series, event string) ([]*models.RoleBinding, error)
	ListByGame(ctx context.Context, exec SQLExecutor, gameID int) ([]*models.RoleBinding, error)
	GameBindingForRoleType(ctx context.Context, exec SQLExecutor, gameID, roleTypeID int) (*models.RoleBinding, error)
}

type postgresRoleBindingRepository struct{}

func NewPostgresRoleBindingRepository() RoleBindingRepository {
	return &postgresRoleBindingRepository{}
}

const roleBindingColumns = `
	rb.id, rb.series, rb.event, rb.game_id, rb.role_type_id,
	rb.min_count, rb.max_count, rb.discord_role_id, rb.auto_approve,
	rt.name`

func scanRoleBinding(scanner interface{ Scan(...interface{}) error }) (*models.RoleBinding, error) {
	binding := &models.RoleBinding{}
	err := scanner.Scan(
		&binding.ID,
		&binding.Series,
		&binding.Event,
		&binding.GameID,
		&binding.RoleTypeID,
		&binding.MinCount,
		&binding.MaxCount,
		&binding.DiscordRoleID,
		&binding.AutoApprove,
		&binding.RoleTypeName,
	)
	if err != nil {
		return nil, err
	}
	return binding, nil
}

func (r *postgresRoleBindingRepository) Create(ctx context.Context, exec SQLExecutor, binding *models.RoleBinding) error {
	query := `
		INSERT INTO role_bindings
			(series, event, game_id, role_type_id, min_count, max_count, discord_role_id, auto_approve)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	err := exec.QueryRowContext(ctx, query,
		binding.Series,
		binding.Event,
		binding.GameID,
		binding.RoleTypeID,
		binding.MinCount,
		binding.MaxCount,
		binding.DiscordRoleID,
		binding.AutoApprove,
	).Scan(&binding.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "role_bindings_event_role_type_key", "role_bindings_game_role_type_key":
				return ErrRoleBindingConflict
			case "role_bindings_role_type_id_fkey":
				return ErrRoleBindingRoleTypeInvalid
			}
		}
		return fmt.Errorf("failed to insert role binding: %w", err)
	}
	return nil
}

func (r *postgresRoleBindingRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.RoleBinding, error) {
	query := `
		SELECT ` + roleBindingColumns + `
		FROM role_bindings rb
		JOIN role_types rt ON rb.role_type_id = rt.id
		WHERE rb.id = $1`

	binding, err := scanRoleBinding(exec.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoleBindingNotFound
		}
		return nil, fmt.Errorf("failed to scan role binding %d: %w", id, err)
	}
	return binding, nil
}

func (r *postgresRoleBindingRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	query := `DELETE FROM role_bindings WHERE id = $1`
	result, err := exec.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete role binding %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrRoleBindingNotFound)
}

func (r *postgresRoleBindingRepository) ListByEvent(ctx context.Context, exec SQLExecutor, series, event string) ([]*models.RoleBinding, error) {
	query := `
		SELECT ` + roleBindingColumns + `
		FROM role_bindings rb
		JOIN role_types rt ON rb.role_type_id = rt.id
		WHERE rb.series = $1 AND rb.event = $2
		ORDER BY rt.name`

	return r.list(ctx, exec, query, series, event)
}

func (r *postgresRoleBindingRepository) ListByGame(ctx context.Context, exec SQLExecutor, gameID int) ([]*models.RoleBinding, error) {
	query := `
		SELECT ` + roleBindingColumns + `
		FROM role_bindings rb
		JOIN role_types rt ON rb.role_type_id = rt.id
		WHERE rb.game_id = $1
		ORDER BY rt.name`

	return r.list(ctx, exec, query, gameID)
}

func (r *postgresRoleBindingRepository) GameBindingForRoleType(ctx context.Context, exec SQLExecutor, gameID, roleTypeID int) (*models.RoleBinding, error) {
	query := `
		SELECT ` + roleBindingColumns + `
		FROM role_bindings rb
		JOIN role_types rt ON rb.role_type_id = rt.id
		WHERE rb.game_id = $1 AND rb.role_type_id = $2`

	binding, err := scanRoleBinding(exec.QueryRowContext(ctx, query, gameID, roleTypeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoleBindingNotFound
		}
		return nil, fmt.Errorf("failed to scan game binding for role type %d: %w", roleTypeID, err)
	}
	return binding, nil
}

func (r *postgresRoleBindingRepository) list(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.RoleBinding, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query role bindings: %w", err)
	}
	defer rows.Close()

	bindings := make([]*models.RoleBinding, 0)
	for rows.Next() {
		binding, scanErr := scanRoleBinding(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan role binding row: %w", scanErr)
		}
		bindings = append(bindings, binding)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during role binding rows iteration: %w", err)
	}
	return bindings, nil
}
