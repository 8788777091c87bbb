package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/restreamkit/volunteer-system/models"
	"github.com/restreamkit/volunteer-system/repositories"
)

// RoleBindingService управляет каталогом ролей, привязками и слоем
// переопределений/отключений события.
type RoleBindingService struct {
	txRunner     repositories.TxRunner
	roleTypeRepo repositories.RoleTypeRepository
	bindingRepo  repositories.RoleBindingRepository
	overrideRepo repositories.DiscordRoleOverrideRepository
	disableRepo  repositories.DisabledRoleBindingRepository
	eventRepo    repositories.EventRepository
	gameRepo     repositories.GameRepository
	authorizer   *Authorizer
}

func NewRoleBindingService(
	txRunner repositories.TxRunner,
	roleTypeRepo repositories.RoleTypeRepository,
	bindingRepo repositories.RoleBindingRepository,
	overrideRepo repositories.DiscordRoleOverrideRepository,
	disableRepo repositories.DisabledRoleBindingRepository,
	eventRepo repositories.EventRepository,
	gameRepo repositories.GameRepository,
	authorizer *Authorizer,
) *RoleBindingService {
	return &RoleBindingService{
		txRunner:     txRunner,
		roleTypeRepo: roleTypeRepo,
		bindingRepo:  bindingRepo,
		overrideRepo: overrideRepo,
		disableRepo:  disableRepo,
		eventRepo:    eventRepo,
		gameRepo:     gameRepo,
		authorizer:   authorizer,
	}
}

type CreateRoleTypeInput struct {
	Name string `json:"name"`
}

// CreateRoleType добавляет запись каталога ролей. Только для администраторов.
func (s *RoleBindingService) CreateRoleType(ctx context.Context, actor *models.User, input CreateRoleTypeInput) (*models.RoleType, error) {
	if actor.Role != models.RoleAdmin {
		return nil, ErrForbiddenOperation
	}
	validation := NewValidationError()
	if input.Name == "" {
		validation.Add("name", "role type name is required")
	}
	if err := validation.ErrOrNil(); err != nil {
		return nil, err
	}

	roleType := &models.RoleType{Name: input.Name}
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.roleTypeRepo.Create(ctx, exec, roleType); err != nil {
			if errors.Is(err, repositories.ErrRoleTypeNameConflict) {
				return ErrRoleTypeNameConflict
			}
			return fmt.Errorf("failed to create role type: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return roleType, nil
}

func (s *RoleBindingService) ListRoleTypes(ctx context.Context) ([]*models.RoleType, error) {
	var roleTypes []*models.RoleType
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var listErr error
		roleTypes, listErr = s.roleTypeRepo.List(ctx, exec)
		return listErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list role types: %w", err)
	}
	return roleTypes, nil
}

type CreateBindingInput struct {
	RoleTypeID    int    `json:"role_type_id"`
	MinCount      int    `json:"min_count"`
	MaxCount      int    `json:"max_count"`
	DiscordRoleID *int64 `json:"discord_role_id,omitempty"`
	AutoApprove   bool   `json:"auto_approve"`
}

func validateBindingCounts(input CreateBindingInput, validation *ValidationError) {
	if input.MinCount < 1 {
		validation.Add("min_count", "must be at least 1")
	}
	if input.MaxCount < input.MinCount {
		validation.Add("max_count", "must be greater than or equal to min_count")
	}
}

// CreateEventBinding создаёт привязку роли с областью видимости одного события.
func (s *RoleBindingService) CreateEventBinding(ctx context.Context, actor *models.User, series, event string, input CreateBindingInput) (*models.RoleBinding, error) {
	validation := NewValidationError()
	validateBindingCounts(input, validation)
	if err := validation.ErrOrNil(); err != nil {
		return nil, err
	}

	binding := &models.RoleBinding{
		Series:        &series,
		Event:         &event,
		RoleTypeID:    input.RoleTypeID,
		MinCount:      input.MinCount,
		MaxCount:      input.MaxCount,
		DiscordRoleID: input.DiscordRoleID,
		AutoApprove:   input.AutoApprove,
	}

	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.getEventForUpdate(ctx, exec, actor, series, event); err != nil {
			return err
		}
		return s.createBinding(ctx, exec, binding)
	})
	if err != nil {
		return nil, err
	}
	return binding, nil
}

// CreateGameBinding создаёт привязку роли, действующую для всех событий игры.
func (s *RoleBindingService) CreateGameBinding(ctx context.Context, actor *models.User, gameID int, input CreateBindingInput) (*models.RoleBinding, error) {
	validation := NewValidationError()
	validateBindingCounts(input, validation)
	if err := validation.ErrOrNil(); err != nil {
		return nil, err
	}

	binding := &models.RoleBinding{
		GameID:        &gameID,
		RoleTypeID:    input.RoleTypeID,
		MinCount:      input.MinCount,
		MaxCount:      input.MaxCount,
		DiscordRoleID: input.DiscordRoleID,
		AutoApprove:   input.AutoApprove,
	}

	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.gameRepo.GetByID(ctx, exec, gameID); err != nil {
			if errors.Is(err, repositories.ErrGameNotFound) {
				return ErrGameNotFound
			}
			return fmt.Errorf("failed to load game %d: %w", gameID, err)
		}
		if err := s.authorizer.CanManageGame(ctx, exec, actor, gameID); err != nil {
			return err
		}
		return s.createBinding(ctx, exec, binding)
	})
	if err != nil {
		return nil, err
	}
	return binding, nil
}

func (s *RoleBindingService) createBinding(ctx context.Context, exec repositories.SQLExecutor, binding *models.RoleBinding) error {
	if err := s.bindingRepo.Create(ctx, exec, binding); err != nil {
		switch {
		case errors.Is(err, repositories.ErrRoleBindingConflict):
			return ErrRoleBindingConflict
		case errors.Is(err, repositories.ErrRoleBindingRoleTypeInvalid):
			return ErrRoleTypeNotFound
		default:
			return fmt.Errorf("failed to create role binding: %w", err)
		}
	}
	return nil
}

// DeleteBinding удаляет привязку; права проверяются по её области видимости.
func (s *RoleBindingService) DeleteBinding(ctx context.Context, actor *models.User, bindingID int) error {
	return s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		binding, err := s.bindingRepo.GetByID(ctx, exec, bindingID)
		if err != nil {
			if errors.Is(err, repositories.ErrRoleBindingNotFound) {
				return ErrRoleBindingNotFound
			}
			return fmt.Errorf("failed to load role binding %d: %w", bindingID, err)
		}

		if binding.IsGameBinding() {
			if err = s.authorizer.CanManageGame(ctx, exec, actor, *binding.GameID); err != nil {
				return err
			}
		} else {
			if _, err = s.getEventForUpdate(ctx, exec, actor, *binding.Series, *binding.Event); err != nil {
				return err
			}
		}

		if err = s.bindingRepo.Delete(ctx, exec, bindingID); err != nil {
			if errors.Is(err, repositories.ErrRoleBindingNotFound) {
				return ErrRoleBindingNotFound
			}
			return fmt.Errorf("failed to delete role binding %d: %w", bindingID, err)
		}
		return nil
	})
}

// DisableBinding подавляет игровую привязку для одного события.
func (s *RoleBindingService) DisableBinding(ctx context.Context, actor *models.User, series, event string, roleTypeID int) error {
	return s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		ev, err := s.getEventForUpdate(ctx, exec, actor, series, event)
		if err != nil {
			return err
		}
		if err = s.requireGameBinding(ctx, exec, ev, roleTypeID); err != nil {
			return err
		}

		disabled := &models.EventDisabledRoleBinding{Series: series, Event: event, RoleTypeID: roleTypeID}
		if err = s.disableRepo.Create(ctx, exec, disabled); err != nil {
			if errors.Is(err, repositories.ErrDisabledBindingConflict) {
				return ErrDisableConflict
			}
			return fmt.Errorf("failed to disable role binding: %w", err)
		}
		return nil
	})
}

// EnableBinding снимает отключение игровой привязки для события.
func (s *RoleBindingService) EnableBinding(ctx context.Context, actor *models.User, series, event string, roleTypeID int) error {
	return s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.getEventForUpdate(ctx, exec, actor, series, event); err != nil {
			return err
		}
		if err := s.disableRepo.DeleteByRoleType(ctx, exec, series, event, roleTypeID); err != nil {
			if errors.Is(err, repositories.ErrDisabledBindingNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to enable role binding: %w", err)
		}
		return nil
	})
}

type CreateOverrideInput struct {
	RoleTypeID    int   `json:"role_type_id"`
	DiscordRoleID int64 `json:"discord_role_id"`
}

// CreateOverride заменяет Discord-роль игровой привязки для одного события.
// Переопределение для отключённой привязки не имеет смысла и запрещено.
func (s *RoleBindingService) CreateOverride(ctx context.Context, actor *models.User, series, event string, input CreateOverrideInput) (*models.EventDiscordRoleOverride, error) {
	override := &models.EventDiscordRoleOverride{
		Series:        series,
		Event:         event,
		RoleTypeID:    input.RoleTypeID,
		DiscordRoleID: input.DiscordRoleID,
	}

	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		ev, err := s.getEventForUpdate(ctx, exec, actor, series, event)
		if err != nil {
			return err
		}
		if err = s.requireGameBinding(ctx, exec, ev, input.RoleTypeID); err != nil {
			return err
		}

		disabled, err := s.disableRepo.ListByEvent(ctx, exec, series, event)
		if err != nil {
			return fmt.Errorf("failed to load disabled bindings: %w", err)
		}
		for _, d := range disabled {
			if d.RoleTypeID == input.RoleTypeID {
				validation := NewValidationError()
				validation.Add("role_type_id", "role binding is disabled for this event")
				return validation
			}
		}

		if err = s.overrideRepo.Create(ctx, exec, override); err != nil {
			if errors.Is(err, repositories.ErrOverrideConflict) {
				return ErrOverrideConflict
			}
			return fmt.Errorf("failed to create discord role override: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return override, nil
}

// DeleteOverride убирает переопределение Discord-роли для события.
func (s *RoleBindingService) DeleteOverride(ctx context.Context, actor *models.User, series, event string, roleTypeID int) error {
	return s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.getEventForUpdate(ctx, exec, actor, series, event); err != nil {
			return err
		}
		if err := s.overrideRepo.DeleteByRoleType(ctx, exec, series, event, roleTypeID); err != nil {
			if errors.Is(err, repositories.ErrOverrideNotFound) {
				return ErrOverrideNotFound
			}
			return fmt.Errorf("failed to delete discord role override: %w", err)
		}
		return nil
	})
}

// EffectiveBindings возвращает действующий список ролей события после
// наложения переопределений и отключений.
func (s *RoleBindingService) EffectiveBindings(ctx context.Context, series, event string) ([]models.EffectiveRoleBinding, error) {
	var effective []models.EffectiveRoleBinding
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		ev, err := s.eventRepo.GetBySlug(ctx, exec, series, event)
		if err != nil {
			if errors.Is(err, repositories.ErrEventNotFound) {
				return ErrEventNotFound
			}
			return fmt.Errorf("failed to load event %s/%s: %w", series, event, err)
		}

		eventBindings, err := s.bindingRepo.ListByEvent(ctx, exec, series, event)
		if err != nil {
			return fmt.Errorf("failed to load event bindings: %w", err)
		}

		var gameBindings []*models.RoleBinding
		// Отсутствие игры у события — не ошибка, просто пустой игровой слой.
		if ev.GameID != nil {
			gameBindings, err = s.bindingRepo.ListByGame(ctx, exec, *ev.GameID)
			if err != nil {
				return fmt.Errorf("failed to load game bindings: %w", err)
			}
		}

		overrides, err := s.overrideRepo.ListByEvent(ctx, exec, series, event)
		if err != nil {
			return fmt.Errorf("failed to load discord role overrides: %w", err)
		}
		disabled, err := s.disableRepo.ListByEvent(ctx, exec, series, event)
		if err != nil {
			return fmt.Errorf("failed to load disabled bindings: %w", err)
		}

		effective = ResolveEffectiveBindings(eventBindings, gameBindings, overrides, disabled, ev.ForceCustomRoleBinding)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return effective, nil
}

// DisabledBindings возвращает записи отключений события для интерфейса
// организатора. Отключённые привязки не попадают в EffectiveBindings и
// доступны только здесь.
func (s *RoleBindingService) DisabledBindings(ctx context.Context, series, event string) ([]*models.EventDisabledRoleBinding, error) {
	var disabled []*models.EventDisabledRoleBinding
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var listErr error
		disabled, listErr = s.disableRepo.ListByEvent(ctx, exec, series, event)
		return listErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list disabled bindings: %w", err)
	}
	return disabled, nil
}

// DiscordOverrides возвращает переопределения Discord-ролей события.
func (s *RoleBindingService) DiscordOverrides(ctx context.Context, series, event string) ([]*models.EventDiscordRoleOverride, error) {
	var overrides []*models.EventDiscordRoleOverride
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var listErr error
		overrides, listErr = s.overrideRepo.ListByEvent(ctx, exec, series, event)
		return listErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list discord role overrides: %w", err)
	}
	return overrides, nil
}

// getEventForUpdate загружает событие и проверяет, что оно не завершилось и
// актор вправе им управлять. Общий пролог всех мутаций конфигурации события.
func (s *RoleBindingService) getEventForUpdate(ctx context.Context, exec repositories.SQLExecutor, actor *models.User, series, event string) (*models.Event, error) {
	ev, err := s.eventRepo.GetBySlug(ctx, exec, series, event)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to load event %s/%s: %w", series, event, err)
	}
	if ev.HasEnded(time.Now()) {
		return nil, ErrEventEnded
	}
	if err = s.authorizer.CanManageEvent(ctx, exec, actor, series, event); err != nil {
		return nil, err
	}
	return ev, nil
}

// requireGameBinding проверяет, что тип роли покрыт игровой привязкой события.
// Переопределения и отключения имеют смысл только поверх игрового слоя.
func (s *RoleBindingService) requireGameBinding(ctx context.Context, exec repositories.SQLExecutor, ev *models.Event, roleTypeID int) error {
	validation := NewValidationError()
	if ev.GameID == nil {
		validation.Add("role_type_id", "event series has no game-wide role bindings")
		return validation
	}
	_, err := s.bindingRepo.GameBindingForRoleType(ctx, exec, *ev.GameID, roleTypeID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoleBindingNotFound) {
			validation.Add("role_type_id", "no game-wide role binding exists for this role type")
			return validation
		}
		return fmt.Errorf("failed to look up game binding for role type %d: %w", roleTypeID, err)
	}
	return nil
}
