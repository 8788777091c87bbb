package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/restreamkit/volunteer-system/models"
	"github.com/restreamkit/volunteer-system/repositories"
)

// RosterBroadcaster рассылает изменения ростера подключённым клиентам
// (websocket-хаб). Вызовы best-effort и выполняются после коммита.
type RosterBroadcaster interface {
	BroadcastRoster(raceID int, signups []*models.Signup)
}

// NopBroadcaster используется в тестах и когда живой ростер отключён.
type NopBroadcaster struct{}

func (NopBroadcaster) BroadcastRoster(int, []*models.Signup) {}

// SignupService ведёт записи волонтёров на матчи и разрешение конфликтов
// пересекающихся временных окон.
type SignupService struct {
	txRunner    repositories.TxRunner
	signupRepo  repositories.SignupRepository
	requestRepo repositories.RoleRequestRepository
	bindingRepo repositories.RoleBindingRepository
	disableRepo repositories.DisabledRoleBindingRepository
	raceRepo    repositories.RaceRepository
	eventRepo   repositories.EventRepository
	userRepo    repositories.UserRepository
	authorizer  *Authorizer
	notifier    Notifier
	broadcaster RosterBroadcaster
	logger      *slog.Logger
}

func NewSignupService(
	txRunner repositories.TxRunner,
	signupRepo repositories.SignupRepository,
	requestRepo repositories.RoleRequestRepository,
	bindingRepo repositories.RoleBindingRepository,
	disableRepo repositories.DisabledRoleBindingRepository,
	raceRepo repositories.RaceRepository,
	eventRepo repositories.EventRepository,
	userRepo repositories.UserRepository,
	authorizer *Authorizer,
	notifier Notifier,
	broadcaster RosterBroadcaster,
	logger *slog.Logger,
) *SignupService {
	return &SignupService{
		txRunner:    txRunner,
		signupRepo:  signupRepo,
		requestRepo: requestRepo,
		bindingRepo: bindingRepo,
		disableRepo: disableRepo,
		raceRepo:    raceRepo,
		eventRepo:   eventRepo,
		userRepo:    userRepo,
		authorizer:  authorizer,
		notifier:    notifier,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

type CreateSignupInput struct {
	RaceID        int     `json:"race_id"`
	RoleBindingID int     `json:"role_binding_id"`
	Notes         *string `json:"notes,omitempty"`
}

// Create подаёт заявку на место конкретного матча. Требуется одобренная
// заявка на роль; завершённые и асинхронные гонки состава не принимают.
func (s *SignupService) Create(ctx context.Context, actor *models.User, input CreateSignupInput) (*models.Signup, error) {
	signup := &models.Signup{
		RaceID:        input.RaceID,
		RoleBindingID: input.RoleBindingID,
		UserID:        actor.ID,
		Status:        models.SignupPending,
		Notes:         input.Notes,
	}

	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		race, err := s.loadRace(ctx, exec, input.RaceID)
		if err != nil {
			return err
		}
		if race.HasEnded(time.Now()) {
			return ErrRaceEnded
		}
		if race.Kind == models.ScheduleAsync {
			return ErrAsyncRace
		}

		binding, err := s.bindingRepo.GetByID(ctx, exec, input.RoleBindingID)
		if err != nil {
			if errors.Is(err, repositories.ErrRoleBindingNotFound) {
				return ErrRoleBindingNotFound
			}
			return fmt.Errorf("failed to load role binding %d: %w", input.RoleBindingID, err)
		}
		if err = s.checkBindingAppliesToRace(ctx, exec, binding, race); err != nil {
			return err
		}

		approved, err := s.requestRepo.ApprovedExists(ctx, exec, binding.ID, actor.ID)
		if err != nil {
			return fmt.Errorf("failed to check approved role request: %w", err)
		}
		if !approved {
			return ErrRoleNotApproved
		}

		active, err := s.signupRepo.ActiveExists(ctx, exec, race.ID, binding.ID, actor.ID)
		if err != nil {
			return fmt.Errorf("failed to check active signup: %w", err)
		}
		if active {
			return ErrSignupConflict
		}

		confirmed, err := s.signupRepo.CountConfirmed(ctx, exec, race.ID, binding.ID)
		if err != nil {
			return fmt.Errorf("failed to count confirmed signups: %w", err)
		}
		if confirmed >= binding.MaxCount {
			return ErrBindingFull
		}

		if err = s.signupRepo.Create(ctx, exec, signup); err != nil {
			if errors.Is(err, repositories.ErrSignupConflict) {
				return ErrSignupConflict
			}
			return fmt.Errorf("failed to create signup: %w", err)
		}
		signup.Binding = binding
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcastRoster(ctx, signup.RaceID)
	return signup, nil
}

// Confirm подтверждает ожидающую запись и запускает разрешение конфликтов:
// остальные pending-записи того же пользователя с пересекающимся временным
// окном отклоняются в той же транзакции.
func (s *SignupService) Confirm(ctx context.Context, actor *models.User, signupID int) (*models.Signup, error) {
	var signup *models.Signup
	var race *models.Race
	var declinedWindows []models.PendingSignupWindow

	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		signup, race, err = s.loadForRosterAction(ctx, exec, actor, signupID)
		if err != nil {
			return err
		}
		if signup.Status != models.SignupPending || !signup.Status.CanTransitionTo(models.SignupConfirmed) {
			return ErrInvalidTransition
		}

		// Повторная проверка вместимости под транзакцией: два организатора
		// могли одновременно наблюдать последнее свободное место.
		confirmed, err := s.signupRepo.CountConfirmed(ctx, exec, signup.RaceID, signup.RoleBindingID)
		if err != nil {
			return fmt.Errorf("failed to count confirmed signups: %w", err)
		}
		if confirmed >= signup.Binding.MaxCount {
			return ErrBindingFull
		}

		if err = s.updateStatus(ctx, exec, signup, models.SignupConfirmed); err != nil {
			return err
		}

		declinedWindows, err = s.resolveOverlaps(ctx, exec, signup, race)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifySignupOwner(ctx, signup, race)
	s.notifyDeclinedOverlaps(ctx, signup.UserID, declinedWindows)
	s.announceRoster(ctx, race)
	s.broadcastRoster(ctx, signup.RaceID)
	return signup, nil
}

// Decline отклоняет ожидающую запись. Пересечения не сканируются.
func (s *SignupService) Decline(ctx context.Context, actor *models.User, signupID int) (*models.Signup, error) {
	var signup *models.Signup
	var race *models.Race

	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		signup, race, err = s.loadForRosterAction(ctx, exec, actor, signupID)
		if err != nil {
			return err
		}
		if signup.Status != models.SignupPending || !signup.Status.CanTransitionTo(models.SignupDeclined) {
			return ErrInvalidTransition
		}
		return s.updateStatus(ctx, exec, signup, models.SignupDeclined)
	})
	if err != nil {
		return nil, err
	}

	s.notifySignupOwner(ctx, signup, race)
	s.broadcastRoster(ctx, signup.RaceID)
	return signup, nil
}

// Withdraw — самостоятельный отзыв ожидающей записи её автором.
func (s *SignupService) Withdraw(ctx context.Context, actor *models.User, signupID int) (*models.Signup, error) {
	var signup *models.Signup
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		signup, err = s.loadSignup(ctx, exec, signupID)
		if err != nil {
			return err
		}
		if signup.UserID != actor.ID {
			return ErrForbiddenOperation
		}
		if signup.Status != models.SignupPending {
			return ErrInvalidTransition
		}
		return s.updateStatus(ctx, exec, signup, models.SignupAborted)
	})
	if err != nil {
		return nil, err
	}

	s.broadcastRoster(ctx, signup.RaceID)
	return signup, nil
}

// Revoke возвращает подтверждённую запись в ожидание: место освобождается,
// история сохраняется.
func (s *SignupService) Revoke(ctx context.Context, actor *models.User, signupID int) (*models.Signup, error) {
	var signup *models.Signup
	var race *models.Race

	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		signup, race, err = s.loadForRosterAction(ctx, exec, actor, signupID)
		if err != nil {
			return err
		}
		if signup.Status != models.SignupConfirmed {
			return ErrInvalidTransition
		}
		return s.updateStatus(ctx, exec, signup, models.SignupPending)
	})
	if err != nil {
		return nil, err
	}

	s.notifySignupOwner(ctx, signup, race)
	s.broadcastRoster(ctx, signup.RaceID)
	return signup, nil
}

func (s *SignupService) SignupsForRace(ctx context.Context, raceID int) ([]*models.Signup, error) {
	var signups []*models.Signup
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var listErr error
		signups, listErr = s.signupRepo.ListByRace(ctx, exec, raceID)
		return listErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list signups for race %d: %w", raceID, err)
	}
	return signups, nil
}

// RacesForEvent возвращает расписание матчей события для страницы записи.
func (s *SignupService) RacesForEvent(ctx context.Context, series, event string) ([]*models.Race, error) {
	var races []*models.Race
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var listErr error
		races, listErr = s.raceRepo.ListByEvent(ctx, exec, series, event)
		return listErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list races for event %s/%s: %w", series, event, err)
	}
	return races, nil
}

func (s *SignupService) ListForUser(ctx context.Context, userID int) ([]*models.Signup, error) {
	var signups []*models.Signup
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var listErr error
		signups, listErr = s.signupRepo.ListByUser(ctx, exec, userID)
		return listErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list signups for user %d: %w", userID, err)
	}
	return signups, nil
}

// resolveOverlaps отклоняет остальные pending-записи пользователя, чьи окна
// гонок пересекают окно только что подтверждённой. Подтверждённые и закрытые
// записи не трогаются: ранее подтверждённое пересечение — осознанное решение
// организатора. Гонка без известного старта окна не имеет.
func (s *SignupService) resolveOverlaps(ctx context.Context, exec repositories.SQLExecutor, confirmed *models.Signup, race *models.Race) ([]models.PendingSignupWindow, error) {
	if race.StartTime == nil {
		return nil, nil
	}
	ev, err := s.eventRepo.GetBySlug(ctx, exec, race.Series, race.Event)
	if err != nil {
		return nil, fmt.Errorf("failed to load event for overlap window: %w", err)
	}

	windows, err := s.signupRepo.ListPendingWindowsByUser(ctx, exec, confirmed.UserID, confirmed.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending signup windows: %w", err)
	}

	declined := make([]models.PendingSignupWindow, 0)
	for _, w := range windows {
		if !w.Overlaps(*race.StartTime, ev.DefaultRaceDuration) {
			continue
		}
		if err = s.signupRepo.UpdateStatus(ctx, exec, w.SignupID, models.SignupDeclined); err != nil {
			return nil, fmt.Errorf("failed to decline overlapping signup %d: %w", w.SignupID, err)
		}
		declined = append(declined, w)
	}
	return declined, nil
}

func (s *SignupService) loadSignup(ctx context.Context, exec repositories.SQLExecutor, signupID int) (*models.Signup, error) {
	signup, err := s.signupRepo.GetByID(ctx, exec, signupID)
	if err != nil {
		if errors.Is(err, repositories.ErrSignupNotFound) {
			return nil, ErrSignupNotFound
		}
		return nil, fmt.Errorf("failed to load signup %d: %w", signupID, err)
	}
	return signup, nil
}

func (s *SignupService) loadRace(ctx context.Context, exec repositories.SQLExecutor, raceID int) (*models.Race, error) {
	race, err := s.raceRepo.GetByID(ctx, exec, raceID)
	if err != nil {
		if errors.Is(err, repositories.ErrRaceNotFound) {
			return nil, ErrRaceNotFound
		}
		return nil, fmt.Errorf("failed to load race %d: %w", raceID, err)
	}
	return race, nil
}

// loadForRosterAction — общий пролог организаторских операций над записью.
func (s *SignupService) loadForRosterAction(ctx context.Context, exec repositories.SQLExecutor, actor *models.User, signupID int) (*models.Signup, *models.Race, error) {
	signup, err := s.loadSignup(ctx, exec, signupID)
	if err != nil {
		return nil, nil, err
	}
	race, err := s.loadRace(ctx, exec, signup.RaceID)
	if err != nil {
		return nil, nil, err
	}
	if err = s.authorizer.CanManageRoster(ctx, exec, actor, race.Series, race.Event); err != nil {
		return nil, nil, err
	}
	return signup, race, nil
}

// checkBindingAppliesToRace проверяет, что привязка действует для события
// гонки: событийная — принадлежит ему, игровая — принадлежит игре события и
// не отключена для него.
func (s *SignupService) checkBindingAppliesToRace(ctx context.Context, exec repositories.SQLExecutor, binding *models.RoleBinding, race *models.Race) error {
	validation := NewValidationError()

	if !binding.IsGameBinding() {
		if *binding.Series != race.Series || *binding.Event != race.Event {
			validation.Add("role_binding_id", "role binding does not belong to the race's event")
			return validation
		}
		return nil
	}

	ev, err := s.eventRepo.GetBySlug(ctx, exec, race.Series, race.Event)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to load event %s/%s: %w", race.Series, race.Event, err)
	}
	if ev.GameID == nil || *ev.GameID != *binding.GameID || ev.ForceCustomRoleBinding {
		validation.Add("role_binding_id", "role binding does not apply to the race's event")
		return validation
	}

	disabled, err := s.disableRepo.ListByEvent(ctx, exec, race.Series, race.Event)
	if err != nil {
		return fmt.Errorf("failed to load disabled bindings: %w", err)
	}
	for _, d := range disabled {
		if d.RoleTypeID == binding.RoleTypeID {
			return ErrBindingDisabled
		}
	}
	return nil
}

func (s *SignupService) updateStatus(ctx context.Context, exec repositories.SQLExecutor, signup *models.Signup, next models.SignupStatus) error {
	if err := s.signupRepo.UpdateStatus(ctx, exec, signup.ID, next); err != nil {
		return fmt.Errorf("failed to update signup %d: %w", signup.ID, err)
	}
	signup.Status = next
	signup.UpdatedAt = time.Now()
	return nil
}

func (s *SignupService) notifySignupOwner(ctx context.Context, signup *models.Signup, race *models.Race) {
	owner := s.loadUser(ctx, signup.UserID)
	note := SignupNote{
		RoleTypeName:    signup.Binding.RoleTypeName,
		RaceDescription: race.Description(),
		Status:          signup.Status,
	}
	if owner != nil {
		note.UserDiscordID = owner.DiscordID
	}
	s.notifier.SignupDecided(ctx, note)
}

func (s *SignupService) notifyDeclinedOverlaps(ctx context.Context, userID int, declined []models.PendingSignupWindow) {
	if len(declined) == 0 {
		return
	}
	owner := s.loadUser(ctx, userID)
	for _, w := range declined {
		race := s.loadRaceBestEffort(ctx, w.RaceID)
		if race == nil {
			continue
		}
		note := SignupNote{
			RaceDescription: race.Description(),
			Status:          models.SignupDeclined,
		}
		if owner != nil {
			note.UserDiscordID = owner.DiscordID
		}
		s.notifier.SignupDecided(ctx, note)
	}
}

// announceRoster публикует полный подтверждённый состав матча.
func (s *SignupService) announceRoster(ctx context.Context, race *models.Race) {
	var signups []*models.Signup
	var ev *models.Event
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		signups, err = s.signupRepo.ListByRace(ctx, exec, race.ID)
		if err != nil {
			return err
		}
		ev, err = s.eventRepo.GetBySlug(ctx, exec, race.Series, race.Event)
		return err
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load roster for announcement",
			slog.Int("race_id", race.ID), slog.Any("error", err))
		return
	}

	slots := make([]RosterSlot, 0, len(signups))
	for _, signup := range signups {
		if signup.Status != models.SignupConfirmed {
			continue
		}
		slot := RosterSlot{RoleTypeName: signup.Binding.RoleTypeName}
		if user := s.loadUser(ctx, signup.UserID); user != nil {
			slot.UserDisplayName = user.DisplayName
			slot.UserDiscordID = user.DiscordID
		}
		slots = append(slots, slot)
	}

	s.notifier.AnnounceRoster(ctx, RosterNote{
		RaceDescription: race.Description(),
		EventName:       ev.DisplayName,
		StreamURL:       race.StreamURL,
		Slots:           slots,
	})
}

func (s *SignupService) broadcastRoster(ctx context.Context, raceID int) {
	signups, err := s.SignupsForRace(ctx, raceID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load roster for broadcast",
			slog.Int("race_id", raceID), slog.Any("error", err))
		return
	}
	s.broadcaster.BroadcastRoster(raceID, signups)
}

func (s *SignupService) loadRaceBestEffort(ctx context.Context, raceID int) *models.Race {
	var race *models.Race
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var getErr error
		race, getErr = s.raceRepo.GetByID(ctx, exec, raceID)
		return getErr
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load race for notification",
			slog.Int("race_id", raceID), slog.Any("error", err))
		return nil
	}
	return race
}

func (s *SignupService) loadUser(ctx context.Context, userID int) *models.User {
	var user *models.User
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var getErr error
		user, getErr = s.userRepo.GetByID(ctx, exec, userID)
		return getErr
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load user for notification",
			slog.Int("user_id", userID), slog.Any("error", err))
		return nil
	}
	return user
}
