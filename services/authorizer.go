package services

import (
	"context"
	"fmt"

	"github.com/restreamkit/volunteer-system/models"
	"github.com/restreamkit/volunteer-system/repositories"
)

// Authorizer отвечает на вопросы "может ли пользователь управлять этим
// событием/игрой". Глобальный администратор может всё.
type Authorizer struct {
	eventRepo repositories.EventRepository
	gameRepo  repositories.GameRepository
}

func NewAuthorizer(eventRepo repositories.EventRepository, gameRepo repositories.GameRepository) *Authorizer {
	return &Authorizer{eventRepo: eventRepo, gameRepo: gameRepo}
}

// CanManageEvent разрешает операцию администраторам и организаторам события.
func (a *Authorizer) CanManageEvent(ctx context.Context, exec repositories.SQLExecutor, user *models.User, series, event string) error {
	if user.Role == models.RoleAdmin {
		return nil
	}
	isOrganizer, err := a.eventRepo.IsOrganizer(ctx, exec, series, event, user.ID)
	if err != nil {
		return fmt.Errorf("failed to check organizer rights: %w", err)
	}
	if !isOrganizer {
		return ErrForbiddenOperation
	}
	return nil
}

// CanManageGame разрешает операцию администраторам и администраторам игры.
func (a *Authorizer) CanManageGame(ctx context.Context, exec repositories.SQLExecutor, user *models.User, gameID int) error {
	if user.Role == models.RoleAdmin {
		return nil
	}
	isAdmin, err := a.gameRepo.IsAdmin(ctx, exec, gameID, user.ID)
	if err != nil {
		return fmt.Errorf("failed to check game admin rights: %w", err)
	}
	if !isAdmin {
		return ErrForbiddenOperation
	}
	return nil
}

// CanManageRoster разрешает операцию администраторам, организаторам и
// рестримерам события: рестримеры подбирают составы на свои трансляции.
func (a *Authorizer) CanManageRoster(ctx context.Context, exec repositories.SQLExecutor, user *models.User, series, event string) error {
	if err := a.CanManageEvent(ctx, exec, user, series, event); err == nil {
		return nil
	} else if err != ErrForbiddenOperation {
		return err
	}
	isRestreamer, err := a.eventRepo.IsRestreamer(ctx, exec, series, event, user.ID)
	if err != nil {
		return fmt.Errorf("failed to check restreamer rights: %w", err)
	}
	if !isRestreamer {
		return ErrForbiddenOperation
	}
	return nil
}
