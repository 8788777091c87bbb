package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/restreamkit/volunteer-system/models"
)

var ErrRoleTypeNameConflict = errors.New("role type name already exists")

type RoleTypeRepository interface {
	Create(ctx context.Context, exec SQLExecutor, roleType *models.RoleType) error
	List(ctx context.Context, exec SQLExecutor) ([]*models.RoleType, error)
}

type postgresRoleTypeRepository struct{}

func NewPostgresRoleTypeRepository() RoleTypeRepository {
	return &postgresRoleTypeRepository{}
}

func (r *postgresRoleTypeRepository) Create(ctx context.Context, exec SQLExecutor, roleType *models.RoleType) error {
	query := `INSERT INTO role_types (name) VALUES ($1) RETURNING id`
	err := exec.QueryRowContext(ctx, query, roleType.Name).Scan(&roleType.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Constraint == "role_types_name_key" {
			return ErrRoleTypeNameConflict
		}
		return fmt.Errorf("failed to insert role type: %w", err)
	}
	return nil
}

func (r *postgresRoleTypeRepository) List(ctx context.Context, exec SQLExecutor) ([]*models.RoleType, error) {
	query := `SELECT id, name FROM role_types ORDER BY name`
	rows, err := exec.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query role types: %w", err)
	}
	defer rows.Close()

	roleTypes := make([]*models.RoleType, 0)
	for rows.Next() {
		var roleType models.RoleType
		if scanErr := rows.Scan(&roleType.ID, &roleType.Name); scanErr != nil {
			return nil, fmt.Errorf("failed to scan role type row: %w", scanErr)
		}
		roleTypes = append(roleTypes, &roleType)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during role type rows iteration: %w", err)
	}
	return roleTypes, nil
}
