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
	ErrRoleRequestNotFound = errors.New("role request not found")
	ErrRoleRequestConflict = errors.New("an active role request already exists for this user and binding")
)

type RoleRequestRepository interface {
	Create(ctx context.Context, exec SQLExecutor, request *models.RoleRequest) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.RoleRequest, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.RoleRequestStatus) error
	ActiveExists(ctx context.Context, exec SQLExecutor, roleBindingID, userID int) (bool, error)
	ApprovedExists(ctx context.Context, exec SQLExecutor, roleBindingID, userID int) (bool, error)
	ListByUser(ctx context.Context, exec SQLExecutor, userID int) ([]*models.RoleRequest, error)
	ListByEvent(ctx context.Context, exec SQLExecutor, series, event string) ([]*models.RoleRequest, error)
	ListByGame(ctx context.Context, exec SQLExecutor, gameID int) ([]*models.RoleRequest, error)
}

type postgresRoleRequestRepository struct{}

func NewPostgresRoleRequestRepository() RoleRequestRepository {
	return &postgresRoleRequestRepository{}
}

const roleRequestColumns = `
	rr.id, rr.role_binding_id, rr.user_id, rr.status, rr.notes, rr.created_at, rr.updated_at,
	rb.id, rb.series, rb.event, rb.game_id, rb.role_type_id,
	rb.min_count, rb.max_count, rb.discord_role_id, rb.auto_approve,
	rt.name`

func scanRoleRequest(scanner interface{ Scan(...interface{}) error }) (*models.RoleRequest, error) {
	request := &models.RoleRequest{Binding: &models.RoleBinding{}}
	err := scanner.Scan(
		&request.ID,
		&request.RoleBindingID,
		&request.UserID,
		&request.Status,
		&request.Notes,
		&request.CreatedAt,
		&request.UpdatedAt,
		&request.Binding.ID,
		&request.Binding.Series,
		&request.Binding.Event,
		&request.Binding.GameID,
		&request.Binding.RoleTypeID,
		&request.Binding.MinCount,
		&request.Binding.MaxCount,
		&request.Binding.DiscordRoleID,
		&request.Binding.AutoApprove,
		&request.Binding.RoleTypeName,
	)
	if err != nil {
		return nil, err
	}
	return request, nil
}

func (r *postgresRoleRequestRepository) Create(ctx context.Context, exec SQLExecutor, request *models.RoleRequest) error {
	query := `
		INSERT INTO role_requests (role_binding_id, user_id, status, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := exec.QueryRowContext(ctx, query,
		request.RoleBindingID,
		request.UserID,
		request.Status,
		request.Notes,
	).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Constraint == "role_requests_active_user_binding_key" {
			return ErrRoleRequestConflict
		}
		return fmt.Errorf("failed to insert role request: %w", err)
	}
	return nil
}

func (r *postgresRoleRequestRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.RoleRequest, error) {
	query := `
		SELECT ` + roleRequestColumns + `
		FROM role_requests rr
		JOIN role_bindings rb ON rr.role_binding_id = rb.id
		JOIN role_types rt ON rb.role_type_id = rt.id
		WHERE rr.id = $1`

	request, err := scanRoleRequest(exec.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoleRequestNotFound
		}
		return nil, fmt.Errorf("failed to scan role request %d: %w", id, err)
	}
	return request, nil
}

func (r *postgresRoleRequestRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.RoleRequestStatus) error {
	query := `UPDATE role_requests SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update role request %d status: %w", id, err)
	}
	return checkAffectedRows(result, ErrRoleRequestNotFound)
}

func (r *postgresRoleRequestRepository) ActiveExists(ctx context.Context, exec SQLExecutor, roleBindingID, userID int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM role_requests
			WHERE role_binding_id = $1 AND user_id = $2 AND status IN ('pending', 'approved')
		)`
	var exists bool
	if err := exec.QueryRowContext(ctx, query, roleBindingID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check active role request: %w", err)
	}
	return exists, nil
}

func (r *postgresRoleRequestRepository) ApprovedExists(ctx context.Context, exec SQLExecutor, roleBindingID, userID int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM role_requests
			WHERE role_binding_id = $1 AND user_id = $2 AND status = 'approved'
		)`
	var exists bool
	if err := exec.QueryRowContext(ctx, query, roleBindingID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check approved role request: %w", err)
	}
	return exists, nil
}

func (r *postgresRoleRequestRepository) ListByUser(ctx context.Context, exec SQLExecutor, userID int) ([]*models.RoleRequest, error) {
	query := `
		SELECT ` + roleRequestColumns + `
		FROM role_requests rr
		JOIN role_bindings rb ON rr.role_binding_id = rb.id
		JOIN role_types rt ON rb.role_type_id = rt.id
		WHERE rr.user_id = $1
		ORDER BY rt.name, rr.created_at`

	return r.list(ctx, exec, query, userID)
}

func (r *postgresRoleRequestRepository) ListByEvent(ctx context.Context, exec SQLExecutor, series, event string) ([]*models.RoleRequest, error) {
	query := `
		SELECT ` + roleRequestColumns + `
		FROM role_requests rr
		JOIN role_bindings rb ON rr.role_binding_id = rb.id
		JOIN role_types rt ON rb.role_type_id = rt.id
		WHERE rb.series = $1 AND rb.event = $2
		ORDER BY rt.name, rr.created_at`

	return r.list(ctx, exec, query, series, event)
}

func (r *postgresRoleRequestRepository) ListByGame(ctx context.Context, exec SQLExecutor, gameID int) ([]*models.RoleRequest, error) {
	query := `
		SELECT ` + roleRequestColumns + `
		FROM role_requests rr
		JOIN role_bindings rb ON rr.role_binding_id = rb.id
		JOIN role_types rt ON rb.role_type_id = rt.id
		WHERE rb.game_id = $1
		ORDER BY rt.name, rr.created_at`

	return r.list(ctx, exec, query, gameID)
}

func (r *postgresRoleRequestRepository) list(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.RoleRequest, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query role requests: %w", err)
	}
	defer rows.Close()

	requests := make([]*models.RoleRequest, 0)
	for rows.Next() {
		request, scanErr := scanRoleRequest(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan role request row: %w", scanErr)
		}
		requests = append(requests, request)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during role request rows iteration: %w", err)
	}
	return requests, nil
}
