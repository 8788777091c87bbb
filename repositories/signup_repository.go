package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/restreamkit/volunteer-system/models"
)

var (
	ErrSignupNotFound = errors.New("signup not found")
	ErrSignupConflict = errors.New("an active signup already exists for this user, race and binding")
)

type SignupRepository interface {
	Create(ctx context.Context, exec SQLExecutor, signup *models.Signup) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Signup, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.SignupStatus) error
	ActiveExists(ctx context.Context, exec SQLExecutor, raceID, roleBindingID, userID int) (bool, error)
	CountConfirmed(ctx context.Context, exec SQLExecutor, raceID, roleBindingID int) (int, error)
	ListByRace(ctx context.Context, exec SQLExecutor, raceID int) ([]*models.Signup, error)
	ListByUser(ctx context.Context, exec SQLExecutor, userID int) ([]*models.Signup, error)
	ListPendingWindowsByUser(ctx context.Context, exec SQLExecutor, userID, excludeSignupID int) ([]models.PendingSignupWindow, error)
}

type postgresSignupRepository struct{}

func NewPostgresSignupRepository() SignupRepository {
	return &postgresSignupRepository{}
}

const signupColumns = `
	s.id, s.race_id, s.role_binding_id, s.user_id, s.status, s.notes, s.created_at, s.updated_at,
	rb.id, rb.series, rb.event, rb.game_id, rb.role_type_id,
	rb.min_count, rb.max_count, rb.discord_role_id, rb.auto_approve,
	rt.name`

func scanSignup(scanner interface{ Scan(...interface{}) error }) (*models.Signup, error) {
	signup := &models.Signup{Binding: &models.RoleBinding{}}
	err := scanner.Scan(
		&signup.ID,
		&signup.RaceID,
		&signup.RoleBindingID,
		&signup.UserID,
		&signup.Status,
		&signup.Notes,
		&signup.CreatedAt,
		&signup.UpdatedAt,
		&signup.Binding.ID,
		&signup.Binding.Series,
		&signup.Binding.Event,
		&signup.Binding.GameID,
		&signup.Binding.RoleTypeID,
		&signup.Binding.MinCount,
		&signup.Binding.MaxCount,
		&signup.Binding.DiscordRoleID,
		&signup.Binding.AutoApprove,
		&signup.Binding.RoleTypeName,
	)
	if err != nil {
		return nil, err
	}
	return signup, nil
}

func (r *postgresSignupRepository) Create(ctx context.Context, exec SQLExecutor, signup *models.Signup) error {
	query := `
		INSERT INTO signups (race_id, role_binding_id, user_id, status, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := exec.QueryRowContext(ctx, query,
		signup.RaceID,
		signup.RoleBindingID,
		signup.UserID,
		signup.Status,
		signup.Notes,
	).Scan(&signup.ID, &signup.CreatedAt, &signup.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Constraint == "signups_active_user_binding_race_key" {
			return ErrSignupConflict
		}
		return fmt.Errorf("failed to insert signup: %w", err)
	}
	return nil
}

func (r *postgresSignupRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Signup, error) {
	query := `
		SELECT ` + signupColumns + `
		FROM signups s
		JOIN role_bindings rb ON s.role_binding_id = rb.id
		JOIN role_types rt ON rb.role_type_id = rt.id
		WHERE s.id = $1`

	signup, err := scanSignup(exec.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSignupNotFound
		}
		return nil, fmt.Errorf("failed to scan signup %d: %w", id, err)
	}
	return signup, nil
}

func (r *postgresSignupRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.SignupStatus) error {
	query := `UPDATE signups SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update signup %d status: %w", id, err)
	}
	return checkAffectedRows(result, ErrSignupNotFound)
}

func (r *postgresSignupRepository) ActiveExists(ctx context.Context, exec SQLExecutor, raceID, roleBindingID, userID int) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM signups
			WHERE race_id = $1 AND role_binding_id = $2 AND user_id = $3
			  AND status IN ('pending', 'confirmed')
		)`
	var exists bool
	if err := exec.QueryRowContext(ctx, query, raceID, roleBindingID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check active signup: %w", err)
	}
	return exists, nil
}

func (r *postgresSignupRepository) CountConfirmed(ctx context.Context, exec SQLExecutor, raceID, roleBindingID int) (int, error) {
	query := `
		SELECT COUNT(*) FROM signups
		WHERE race_id = $1 AND role_binding_id = $2 AND status = 'confirmed'`
	var count int
	if err := exec.QueryRowContext(ctx, query, raceID, roleBindingID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count confirmed signups: %w", err)
	}
	return count, nil
}

func (r *postgresSignupRepository) ListByRace(ctx context.Context, exec SQLExecutor, raceID int) ([]*models.Signup, error) {
	query := `
		SELECT ` + signupColumns + `
		FROM signups s
		JOIN role_bindings rb ON s.role_binding_id = rb.id
		JOIN role_types rt ON rb.role_type_id = rt.id
		WHERE s.race_id = $1
		ORDER BY rt.name, s.created_at`

	return r.list(ctx, exec, query, raceID)
}

func (r *postgresSignupRepository) ListByUser(ctx context.Context, exec SQLExecutor, userID int) ([]*models.Signup, error) {
	query := `
		SELECT ` + signupColumns + `
		FROM signups s
		JOIN role_bindings rb ON s.role_binding_id = rb.id
		JOIN role_types rt ON rb.role_type_id = rt.id
		WHERE s.user_id = $1
		ORDER BY s.created_at DESC`

	return r.list(ctx, exec, query, userID)
}

// ListPendingWindowsByUser возвращает остальные pending-записи пользователя
// вместе с временными окнами их гонок. Длительность окна берётся из настроек
// турнира гонки.
func (r *postgresSignupRepository) ListPendingWindowsByUser(ctx context.Context, exec SQLExecutor, userID, excludeSignupID int) ([]models.PendingSignupWindow, error) {
	query := `
		SELECT s.id, s.race_id, rc.start_time, ev.default_race_duration_seconds
		FROM signups s
		JOIN races rc ON s.race_id = rc.id
		JOIN events ev ON rc.series = ev.series AND rc.event = ev.event
		WHERE s.user_id = $1 AND s.status = 'pending' AND s.id <> $2`

	rows, err := exec.QueryContext(ctx, query, userID, excludeSignupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending signup windows: %w", err)
	}
	defer rows.Close()

	windows := make([]models.PendingSignupWindow, 0)
	for rows.Next() {
		var w models.PendingSignupWindow
		var durationSeconds int64
		if err = rows.Scan(&w.SignupID, &w.RaceID, &w.Start, &durationSeconds); err != nil {
			return nil, fmt.Errorf("failed to scan pending signup window: %w", err)
		}
		w.Duration = time.Duration(durationSeconds) * time.Second
		windows = append(windows, w)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during pending signup windows iteration: %w", err)
	}
	return windows, nil
}

func (r *postgresSignupRepository) list(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.Signup, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query signups: %w", err)
	}
	defer rows.Close()

	signups := make([]*models.Signup, 0)
	for rows.Next() {
		signup, scanErr := scanSignup(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan signup row: %w", scanErr)
		}
		signups = append(signups, signup)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during signup rows iteration: %w", err)
	}
	return signups, nil
}
