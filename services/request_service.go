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

// RoleRequestService ведёт жизненный цикл заявок на роль. Записи никогда не
// удаляются: любые отзывы и снятия выражаются переходами статусов.
type RoleRequestService struct {
	txRunner    repositories.TxRunner
	requestRepo repositories.RoleRequestRepository
	bindingRepo repositories.RoleBindingRepository
	eventRepo   repositories.EventRepository
	gameRepo    repositories.GameRepository
	userRepo    repositories.UserRepository
	authorizer  *Authorizer
	notifier    Notifier
	logger      *slog.Logger
}

func NewRoleRequestService(
	txRunner repositories.TxRunner,
	requestRepo repositories.RoleRequestRepository,
	bindingRepo repositories.RoleBindingRepository,
	eventRepo repositories.EventRepository,
	gameRepo repositories.GameRepository,
	userRepo repositories.UserRepository,
	authorizer *Authorizer,
	notifier Notifier,
	logger *slog.Logger,
) *RoleRequestService {
	return &RoleRequestService{
		txRunner:    txRunner,
		requestRepo: requestRepo,
		bindingRepo: bindingRepo,
		eventRepo:   eventRepo,
		gameRepo:    gameRepo,
		userRepo:    userRepo,
		authorizer:  authorizer,
		notifier:    notifier,
		logger:      logger,
	}
}

type CreateRoleRequestInput struct {
	RoleBindingID int     `json:"role_binding_id"`
	Notes         *string `json:"notes,omitempty"`
}

// Create подаёт заявку пользователя на привязку роли. Привязки с auto_approve
// минуют рассмотрение и создаются сразу одобренными.
func (s *RoleRequestService) Create(ctx context.Context, actor *models.User, input CreateRoleRequestInput) (*models.RoleRequest, error) {
	request := &models.RoleRequest{
		RoleBindingID: input.RoleBindingID,
		UserID:        actor.ID,
		Notes:         input.Notes,
	}
	var binding *models.RoleBinding
	var scopeName string

	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		binding, err = s.bindingRepo.GetByID(ctx, exec, input.RoleBindingID)
		if err != nil {
			if errors.Is(err, repositories.ErrRoleBindingNotFound) {
				return ErrRoleBindingNotFound
			}
			return fmt.Errorf("failed to load role binding %d: %w", input.RoleBindingID, err)
		}

		scopeName, err = s.checkBindingScope(ctx, exec, binding)
		if err != nil {
			return err
		}

		active, err := s.requestRepo.ActiveExists(ctx, exec, binding.ID, actor.ID)
		if err != nil {
			return fmt.Errorf("failed to check active request: %w", err)
		}
		if active {
			return ErrRequestConflict
		}

		request.Status = models.RequestPending
		if binding.AutoApprove {
			request.Status = models.RequestApproved
		}
		if err = s.requestRepo.Create(ctx, exec, request); err != nil {
			if errors.Is(err, repositories.ErrRoleRequestConflict) {
				return ErrRequestConflict
			}
			return fmt.Errorf("failed to create role request: %w", err)
		}
		request.Binding = binding
		return nil
	})
	if err != nil {
		return nil, err
	}

	if request.Status == models.RequestApproved {
		s.assignChatRole(ctx, actor, binding)
	}
	s.notifier.RoleRequestDecided(ctx, RoleRequestNote{
		UserDiscordID: actor.DiscordID,
		RoleTypeName:  binding.RoleTypeName,
		EventName:     scopeName,
		Status:        request.Status,
	})
	return request, nil
}

// Approve одобряет ожидающую заявку. Организатор для событийных привязок,
// администратор игры для игровых.
func (s *RoleRequestService) Approve(ctx context.Context, actor *models.User, requestID int) (*models.RoleRequest, error) {
	return s.decide(ctx, actor, requestID, models.RequestApproved)
}

// Reject отклоняет ожидающую заявку.
func (s *RoleRequestService) Reject(ctx context.Context, actor *models.User, requestID int) (*models.RoleRequest, error) {
	return s.decide(ctx, actor, requestID, models.RequestRejected)
}

func (s *RoleRequestService) decide(ctx context.Context, actor *models.User, requestID int, next models.RoleRequestStatus) (*models.RoleRequest, error) {
	var request *models.RoleRequest
	var scopeName string

	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		request, err = s.loadRequest(ctx, exec, requestID)
		if err != nil {
			return err
		}
		scopeName, err = s.checkBindingScope(ctx, exec, request.Binding)
		if err != nil {
			return err
		}
		if err = s.authorizeScope(ctx, exec, actor, request.Binding); err != nil {
			return err
		}
		if request.Status != models.RequestPending || !request.Status.CanTransitionTo(next) {
			return ErrInvalidTransition
		}
		return s.updateStatus(ctx, exec, request, next)
	})
	if err != nil {
		return nil, err
	}

	requester := s.loadRequester(ctx, request.UserID)
	if next == models.RequestApproved && requester != nil {
		s.assignChatRole(ctx, requester, request.Binding)
	}
	s.notifyDecision(ctx, requester, request, scopeName)
	return request, nil
}

// Withdraw — самостоятельный отзыв ожидающей заявки её автором.
func (s *RoleRequestService) Withdraw(ctx context.Context, actor *models.User, requestID int) (*models.RoleRequest, error) {
	var request *models.RoleRequest
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		request, err = s.loadRequest(ctx, exec, requestID)
		if err != nil {
			return err
		}
		if request.UserID != actor.ID {
			return ErrForbiddenOperation
		}
		if _, err = s.checkBindingScope(ctx, exec, request.Binding); err != nil {
			return err
		}
		if request.Status != models.RequestPending {
			return ErrInvalidTransition
		}
		return s.updateStatus(ctx, exec, request, models.RequestAborted)
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// Revoke возвращает одобренную событийную заявку на повторное рассмотрение.
// Игровые назначения со страницы события не отзываются: для них есть
// RevokeGameRequest на уровне игры.
func (s *RoleRequestService) Revoke(ctx context.Context, actor *models.User, requestID int) (*models.RoleRequest, error) {
	var request *models.RoleRequest
	var scopeName string

	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		request, err = s.loadRequest(ctx, exec, requestID)
		if err != nil {
			return err
		}
		if request.Binding.IsGameBinding() {
			return ErrForbiddenOperation
		}
		scopeName, err = s.checkBindingScope(ctx, exec, request.Binding)
		if err != nil {
			return err
		}
		if err = s.authorizer.CanManageEvent(ctx, exec, actor, *request.Binding.Series, *request.Binding.Event); err != nil {
			return err
		}
		if request.Status != models.RequestApproved {
			return ErrInvalidTransition
		}
		return s.updateStatus(ctx, exec, request, models.RequestPending)
	})
	if err != nil {
		return nil, err
	}

	requester := s.loadRequester(ctx, request.UserID)
	if requester != nil {
		s.removeChatRole(ctx, requester, request.Binding)
	}
	s.notifyDecision(ctx, requester, request, scopeName)
	return request, nil
}

// RevokeGameRequest снимает одобренную игровую заявку. Доступно только
// администраторам игры; заявка закрывается окончательно.
func (s *RoleRequestService) RevokeGameRequest(ctx context.Context, actor *models.User, requestID int) (*models.RoleRequest, error) {
	var request *models.RoleRequest
	var scopeName string

	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		request, err = s.loadRequest(ctx, exec, requestID)
		if err != nil {
			return err
		}
		if !request.Binding.IsGameBinding() {
			return ErrForbiddenOperation
		}
		scopeName, err = s.checkBindingScope(ctx, exec, request.Binding)
		if err != nil {
			return err
		}
		if err = s.authorizer.CanManageGame(ctx, exec, actor, *request.Binding.GameID); err != nil {
			return err
		}
		if request.Status != models.RequestApproved {
			return ErrInvalidTransition
		}
		return s.updateStatus(ctx, exec, request, models.RequestAborted)
	})
	if err != nil {
		return nil, err
	}

	requester := s.loadRequester(ctx, request.UserID)
	if requester != nil {
		s.removeChatRole(ctx, requester, request.Binding)
	}
	s.notifyDecision(ctx, requester, request, scopeName)
	return request, nil
}

func (s *RoleRequestService) ListForUser(ctx context.Context, userID int) ([]*models.RoleRequest, error) {
	var requests []*models.RoleRequest
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var listErr error
		requests, listErr = s.requestRepo.ListByUser(ctx, exec, userID)
		return listErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list role requests for user %d: %w", userID, err)
	}
	return requests, nil
}

func (s *RoleRequestService) ListForEvent(ctx context.Context, series, event string) ([]*models.RoleRequest, error) {
	var requests []*models.RoleRequest
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var listErr error
		requests, listErr = s.requestRepo.ListByEvent(ctx, exec, series, event)
		return listErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list role requests for event %s/%s: %w", series, event, err)
	}
	return requests, nil
}

func (s *RoleRequestService) ListForGame(ctx context.Context, gameID int) ([]*models.RoleRequest, error) {
	var requests []*models.RoleRequest
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var listErr error
		requests, listErr = s.requestRepo.ListByGame(ctx, exec, gameID)
		return listErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list role requests for game %d: %w", gameID, err)
	}
	return requests, nil
}

func (s *RoleRequestService) loadRequest(ctx context.Context, exec repositories.SQLExecutor, requestID int) (*models.RoleRequest, error) {
	request, err := s.requestRepo.GetByID(ctx, exec, requestID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoleRequestNotFound) {
			return nil, ErrRoleRequestNotFound
		}
		return nil, fmt.Errorf("failed to load role request %d: %w", requestID, err)
	}
	return request, nil
}

func (s *RoleRequestService) updateStatus(ctx context.Context, exec repositories.SQLExecutor, request *models.RoleRequest, next models.RoleRequestStatus) error {
	if err := s.requestRepo.UpdateStatus(ctx, exec, request.ID, next); err != nil {
		return fmt.Errorf("failed to update role request %d: %w", request.ID, err)
	}
	request.Status = next
	request.UpdatedAt = time.Now()
	return nil
}

// checkBindingScope возвращает отображаемое имя области привязки и следит,
// чтобы завершившееся событие больше не принимало изменения заявок.
func (s *RoleRequestService) checkBindingScope(ctx context.Context, exec repositories.SQLExecutor, binding *models.RoleBinding) (string, error) {
	if binding.IsGameBinding() {
		game, err := s.gameRepo.GetByID(ctx, exec, *binding.GameID)
		if err != nil {
			if errors.Is(err, repositories.ErrGameNotFound) {
				return "", ErrGameNotFound
			}
			return "", fmt.Errorf("failed to load game %d: %w", *binding.GameID, err)
		}
		return game.DisplayName, nil
	}

	ev, err := s.eventRepo.GetBySlug(ctx, exec, *binding.Series, *binding.Event)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return "", ErrEventNotFound
		}
		return "", fmt.Errorf("failed to load event %s/%s: %w", *binding.Series, *binding.Event, err)
	}
	if ev.HasEnded(time.Now()) {
		return "", ErrEventEnded
	}
	return ev.DisplayName, nil
}

func (s *RoleRequestService) authorizeScope(ctx context.Context, exec repositories.SQLExecutor, actor *models.User, binding *models.RoleBinding) error {
	if binding.IsGameBinding() {
		return s.authorizer.CanManageGame(ctx, exec, actor, *binding.GameID)
	}
	return s.authorizer.CanManageEvent(ctx, exec, actor, *binding.Series, *binding.Event)
}

// loadRequester подтягивает автора заявки для уведомлений. Неудача не должна
// ломать уже зафиксированную операцию.
func (s *RoleRequestService) loadRequester(ctx context.Context, userID int) *models.User {
	var user *models.User
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var getErr error
		user, getErr = s.userRepo.GetByID(ctx, exec, userID)
		return getErr
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load requester for notification",
			slog.Int("user_id", userID), slog.Any("error", err))
		return nil
	}
	return user
}

func (s *RoleRequestService) assignChatRole(ctx context.Context, user *models.User, binding *models.RoleBinding) {
	if user.DiscordID == nil || binding.DiscordRoleID == nil {
		return
	}
	s.notifier.AssignChatRole(ctx, *user.DiscordID, *binding.DiscordRoleID)
}

func (s *RoleRequestService) removeChatRole(ctx context.Context, user *models.User, binding *models.RoleBinding) {
	if user.DiscordID == nil || binding.DiscordRoleID == nil {
		return
	}
	s.notifier.RemoveChatRole(ctx, *user.DiscordID, *binding.DiscordRoleID)
}

func (s *RoleRequestService) notifyDecision(ctx context.Context, requester *models.User, request *models.RoleRequest, scopeName string) {
	note := RoleRequestNote{
		RoleTypeName: request.Binding.RoleTypeName,
		EventName:    scopeName,
		Status:       request.Status,
	}
	if requester != nil {
		note.UserDiscordID = requester.DiscordID
	}
	s.notifier.RoleRequestDecided(ctx, note)
}
