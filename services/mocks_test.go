package services

import (
	"context"
	"errors"

	"github.com/restreamkit/volunteer-system/models"
	"github.com/restreamkit/volunteer-system/repositories"
)

// stubTxRunner исполняет функцию без реальной транзакции: моки БД не требуют.
type stubTxRunner struct{}

func (stubTxRunner) RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

var errUnexpectedCall = errors.New("unexpected repository call")

type mockEventRepo struct {
	GetBySlugFn    func(series, event string) (*models.Event, error)
	IsOrganizerFn  func(series, event string, userID int) (bool, error)
	IsRestreamerFn func(series, event string, userID int) (bool, error)
}

func (m *mockEventRepo) GetBySlug(ctx context.Context, exec repositories.SQLExecutor, series, event string) (*models.Event, error) {
	if m.GetBySlugFn == nil {
		return nil, errUnexpectedCall
	}
	return m.GetBySlugFn(series, event)
}

func (m *mockEventRepo) IsOrganizer(ctx context.Context, exec repositories.SQLExecutor, series, event string, userID int) (bool, error) {
	if m.IsOrganizerFn == nil {
		return false, nil
	}
	return m.IsOrganizerFn(series, event, userID)
}

func (m *mockEventRepo) IsRestreamer(ctx context.Context, exec repositories.SQLExecutor, series, event string, userID int) (bool, error) {
	if m.IsRestreamerFn == nil {
		return false, nil
	}
	return m.IsRestreamerFn(series, event, userID)
}

type mockGameRepo struct {
	GetByIDFn func(id int) (*models.Game, error)
	IsAdminFn func(gameID, userID int) (bool, error)
}

func (m *mockGameRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Game, error) {
	if m.GetByIDFn == nil {
		return nil, errUnexpectedCall
	}
	return m.GetByIDFn(id)
}

func (m *mockGameRepo) IsAdmin(ctx context.Context, exec repositories.SQLExecutor, gameID, userID int) (bool, error) {
	if m.IsAdminFn == nil {
		return false, nil
	}
	return m.IsAdminFn(gameID, userID)
}

type mockBindingRepo struct {
	CreateFn                 func(binding *models.RoleBinding) error
	GetByIDFn                func(id int) (*models.RoleBinding, error)
	DeleteFn                 func(id int) error
	ListByEventFn            func(series, event string) ([]*models.RoleBinding, error)
	ListByGameFn             func(gameID int) ([]*models.RoleBinding, error)
	GameBindingForRoleTypeFn func(gameID, roleTypeID int) (*models.RoleBinding, error)
}

func (m *mockBindingRepo) Create(ctx context.Context, exec repositories.SQLExecutor, binding *models.RoleBinding) error {
	if m.CreateFn == nil {
		return errUnexpectedCall
	}
	return m.CreateFn(binding)
}

func (m *mockBindingRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.RoleBinding, error) {
	if m.GetByIDFn == nil {
		return nil, errUnexpectedCall
	}
	return m.GetByIDFn(id)
}

func (m *mockBindingRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	if m.DeleteFn == nil {
		return errUnexpectedCall
	}
	return m.DeleteFn(id)
}

func (m *mockBindingRepo) ListByEvent(ctx context.Context, exec repositories.SQLExecutor, series, event string) ([]*models.RoleBinding, error) {
	if m.ListByEventFn == nil {
		return nil, errUnexpectedCall
	}
	return m.ListByEventFn(series, event)
}

func (m *mockBindingRepo) ListByGame(ctx context.Context, exec repositories.SQLExecutor, gameID int) ([]*models.RoleBinding, error) {
	if m.ListByGameFn == nil {
		return nil, errUnexpectedCall
	}
	return m.ListByGameFn(gameID)
}

func (m *mockBindingRepo) GameBindingForRoleType(ctx context.Context, exec repositories.SQLExecutor, gameID, roleTypeID int) (*models.RoleBinding, error) {
	if m.GameBindingForRoleTypeFn == nil {
		return nil, errUnexpectedCall
	}
	return m.GameBindingForRoleTypeFn(gameID, roleTypeID)
}

type mockRequestRepo struct {
	CreateFn         func(request *models.RoleRequest) error
	GetByIDFn        func(id int) (*models.RoleRequest, error)
	UpdateStatusFn   func(id int, status models.RoleRequestStatus) error
	ActiveExistsFn   func(roleBindingID, userID int) (bool, error)
	ApprovedExistsFn func(roleBindingID, userID int) (bool, error)
	ListByUserFn     func(userID int) ([]*models.RoleRequest, error)
	ListByEventFn    func(series, event string) ([]*models.RoleRequest, error)
	ListByGameFn     func(gameID int) ([]*models.RoleRequest, error)
}

func (m *mockRequestRepo) Create(ctx context.Context, exec repositories.SQLExecutor, request *models.RoleRequest) error {
	if m.CreateFn == nil {
		return errUnexpectedCall
	}
	return m.CreateFn(request)
}

func (m *mockRequestRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.RoleRequest, error) {
	if m.GetByIDFn == nil {
		return nil, errUnexpectedCall
	}
	return m.GetByIDFn(id)
}

func (m *mockRequestRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.RoleRequestStatus) error {
	if m.UpdateStatusFn == nil {
		return errUnexpectedCall
	}
	return m.UpdateStatusFn(id, status)
}

func (m *mockRequestRepo) ActiveExists(ctx context.Context, exec repositories.SQLExecutor, roleBindingID, userID int) (bool, error) {
	if m.ActiveExistsFn == nil {
		return false, nil
	}
	return m.ActiveExistsFn(roleBindingID, userID)
}

func (m *mockRequestRepo) ApprovedExists(ctx context.Context, exec repositories.SQLExecutor, roleBindingID, userID int) (bool, error) {
	if m.ApprovedExistsFn == nil {
		return false, nil
	}
	return m.ApprovedExistsFn(roleBindingID, userID)
}

func (m *mockRequestRepo) ListByUser(ctx context.Context, exec repositories.SQLExecutor, userID int) ([]*models.RoleRequest, error) {
	if m.ListByUserFn == nil {
		return nil, errUnexpectedCall
	}
	return m.ListByUserFn(userID)
}

func (m *mockRequestRepo) ListByEvent(ctx context.Context, exec repositories.SQLExecutor, series, event string) ([]*models.RoleRequest, error) {
	if m.ListByEventFn == nil {
		return nil, errUnexpectedCall
	}
	return m.ListByEventFn(series, event)
}

func (m *mockRequestRepo) ListByGame(ctx context.Context, exec repositories.SQLExecutor, gameID int) ([]*models.RoleRequest, error) {
	if m.ListByGameFn == nil {
		return nil, errUnexpectedCall
	}
	return m.ListByGameFn(gameID)
}

type mockSignupRepo struct {
	CreateFn                   func(signup *models.Signup) error
	GetByIDFn                  func(id int) (*models.Signup, error)
	UpdateStatusFn             func(id int, status models.SignupStatus) error
	ActiveExistsFn             func(raceID, roleBindingID, userID int) (bool, error)
	CountConfirmedFn           func(raceID, roleBindingID int) (int, error)
	ListByRaceFn               func(raceID int) ([]*models.Signup, error)
	ListByUserFn               func(userID int) ([]*models.Signup, error)
	ListPendingWindowsByUserFn func(userID, excludeSignupID int) ([]models.PendingSignupWindow, error)
}

func (m *mockSignupRepo) Create(ctx context.Context, exec repositories.SQLExecutor, signup *models.Signup) error {
	if m.CreateFn == nil {
		return errUnexpectedCall
	}
	return m.CreateFn(signup)
}

func (m *mockSignupRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Signup, error) {
	if m.GetByIDFn == nil {
		return nil, errUnexpectedCall
	}
	return m.GetByIDFn(id)
}

func (m *mockSignupRepo) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.SignupStatus) error {
	if m.UpdateStatusFn == nil {
		return errUnexpectedCall
	}
	return m.UpdateStatusFn(id, status)
}

func (m *mockSignupRepo) ActiveExists(ctx context.Context, exec repositories.SQLExecutor, raceID, roleBindingID, userID int) (bool, error) {
	if m.ActiveExistsFn == nil {
		return false, nil
	}
	return m.ActiveExistsFn(raceID, roleBindingID, userID)
}

func (m *mockSignupRepo) CountConfirmed(ctx context.Context, exec repositories.SQLExecutor, raceID, roleBindingID int) (int, error) {
	if m.CountConfirmedFn == nil {
		return 0, nil
	}
	return m.CountConfirmedFn(raceID, roleBindingID)
}

func (m *mockSignupRepo) ListByRace(ctx context.Context, exec repositories.SQLExecutor, raceID int) ([]*models.Signup, error) {
	if m.ListByRaceFn == nil {
		return []*models.Signup{}, nil
	}
	return m.ListByRaceFn(raceID)
}

func (m *mockSignupRepo) ListByUser(ctx context.Context, exec repositories.SQLExecutor, userID int) ([]*models.Signup, error) {
	if m.ListByUserFn == nil {
		return []*models.Signup{}, nil
	}
	return m.ListByUserFn(userID)
}

func (m *mockSignupRepo) ListPendingWindowsByUser(ctx context.Context, exec repositories.SQLExecutor, userID, excludeSignupID int) ([]models.PendingSignupWindow, error) {
	if m.ListPendingWindowsByUserFn == nil {
		return nil, nil
	}
	return m.ListPendingWindowsByUserFn(userID, excludeSignupID)
}

type mockRaceRepo struct {
	GetByIDFn     func(id int) (*models.Race, error)
	ListByEventFn func(series, event string) ([]*models.Race, error)
}

func (m *mockRaceRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Race, error) {
	if m.GetByIDFn == nil {
		return nil, errUnexpectedCall
	}
	return m.GetByIDFn(id)
}

func (m *mockRaceRepo) ListByEvent(ctx context.Context, exec repositories.SQLExecutor, series, event string) ([]*models.Race, error) {
	if m.ListByEventFn == nil {
		return nil, errUnexpectedCall
	}
	return m.ListByEventFn(series, event)
}

type mockUserRepo struct {
	CreateFn     func(user *models.User) error
	GetByIDFn    func(id int) (*models.User, error)
	GetByEmailFn func(email string) (*models.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, exec repositories.SQLExecutor, user *models.User) error {
	if m.CreateFn == nil {
		return errUnexpectedCall
	}
	return m.CreateFn(user)
}

func (m *mockUserRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.User, error) {
	if m.GetByIDFn == nil {
		return &models.User{ID: id, DisplayName: "user"}, nil
	}
	return m.GetByIDFn(id)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, exec repositories.SQLExecutor, email string) (*models.User, error) {
	if m.GetByEmailFn == nil {
		return nil, errUnexpectedCall
	}
	return m.GetByEmailFn(email)
}

type mockRoleTypeRepo struct {
	CreateFn func(roleType *models.RoleType) error
	ListFn   func() ([]*models.RoleType, error)
}

func (m *mockRoleTypeRepo) Create(ctx context.Context, exec repositories.SQLExecutor, roleType *models.RoleType) error {
	if m.CreateFn == nil {
		return errUnexpectedCall
	}
	return m.CreateFn(roleType)
}

func (m *mockRoleTypeRepo) List(ctx context.Context, exec repositories.SQLExecutor) ([]*models.RoleType, error) {
	if m.ListFn == nil {
		return []*models.RoleType{}, nil
	}
	return m.ListFn()
}

type mockOverrideRepo struct {
	CreateFn           func(override *models.EventDiscordRoleOverride) error
	DeleteByRoleTypeFn func(series, event string, roleTypeID int) error
	ListByEventFn      func(series, event string) ([]*models.EventDiscordRoleOverride, error)
}

func (m *mockOverrideRepo) Create(ctx context.Context, exec repositories.SQLExecutor, override *models.EventDiscordRoleOverride) error {
	if m.CreateFn == nil {
		return errUnexpectedCall
	}
	return m.CreateFn(override)
}

func (m *mockOverrideRepo) DeleteByRoleType(ctx context.Context, exec repositories.SQLExecutor, series, event string, roleTypeID int) error {
	if m.DeleteByRoleTypeFn == nil {
		return errUnexpectedCall
	}
	return m.DeleteByRoleTypeFn(series, event, roleTypeID)
}

func (m *mockOverrideRepo) ListByEvent(ctx context.Context, exec repositories.SQLExecutor, series, event string) ([]*models.EventDiscordRoleOverride, error) {
	if m.ListByEventFn == nil {
		return []*models.EventDiscordRoleOverride{}, nil
	}
	return m.ListByEventFn(series, event)
}

type mockDisableRepo struct {
	CreateFn           func(disabled *models.EventDisabledRoleBinding) error
	DeleteByRoleTypeFn func(series, event string, roleTypeID int) error
	ListByEventFn      func(series, event string) ([]*models.EventDisabledRoleBinding, error)
}

func (m *mockDisableRepo) Create(ctx context.Context, exec repositories.SQLExecutor, disabled *models.EventDisabledRoleBinding) error {
	if m.CreateFn == nil {
		return errUnexpectedCall
	}
	return m.CreateFn(disabled)
}

func (m *mockDisableRepo) DeleteByRoleType(ctx context.Context, exec repositories.SQLExecutor, series, event string, roleTypeID int) error {
	if m.DeleteByRoleTypeFn == nil {
		return errUnexpectedCall
	}
	return m.DeleteByRoleTypeFn(series, event, roleTypeID)
}

func (m *mockDisableRepo) ListByEvent(ctx context.Context, exec repositories.SQLExecutor, series, event string) ([]*models.EventDisabledRoleBinding, error) {
	if m.ListByEventFn == nil {
		return []*models.EventDisabledRoleBinding{}, nil
	}
	return m.ListByEventFn(series, event)
}

// recordingNotifier фиксирует best-effort вызовы для проверок в тестах.
type recordingNotifier struct {
	requestNotes  []RoleRequestNote
	signupNotes   []SignupNote
	rosterNotes   []RosterNote
	assignedRoles [][2]int64
	removedRoles  [][2]int64
}

func (n *recordingNotifier) RoleRequestDecided(ctx context.Context, note RoleRequestNote) {
	n.requestNotes = append(n.requestNotes, note)
}

func (n *recordingNotifier) SignupDecided(ctx context.Context, note SignupNote) {
	n.signupNotes = append(n.signupNotes, note)
}

func (n *recordingNotifier) AnnounceRoster(ctx context.Context, note RosterNote) {
	n.rosterNotes = append(n.rosterNotes, note)
}

func (n *recordingNotifier) AssignChatRole(ctx context.Context, userDiscordID, roleID int64) {
	n.assignedRoles = append(n.assignedRoles, [2]int64{userDiscordID, roleID})
}

func (n *recordingNotifier) RemoveChatRole(ctx context.Context, userDiscordID, roleID int64) {
	n.removedRoles = append(n.removedRoles, [2]int64{userDiscordID, roleID})
}
