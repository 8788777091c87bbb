package services

import (
	"context"

	"github.com/restreamkit/volunteer-system/models"
)

// RoleRequestNote — данные для личного уведомления о решении по заявке на роль.
type RoleRequestNote struct {
	UserDiscordID *int64
	RoleTypeName  string
	EventName     string
	Status        models.RoleRequestStatus
}

// SignupNote — данные для личного уведомления о решении по записи на матч.
type SignupNote struct {
	UserDiscordID   *int64
	RoleTypeName    string
	RaceDescription string
	Status          models.SignupStatus
}

// RosterSlot — одна подтверждённая позиция ростера для анонса.
type RosterSlot struct {
	RoleTypeName    string
	UserDisplayName string
	UserDiscordID   *int64
}

// RosterNote — анонс подтверждённого состава волонтёров матча, сгруппированный
// по ролям на стороне получателя.
type RosterNote struct {
	RaceDescription string
	EventName       string
	StreamURL       *string
	Slots           []RosterSlot
}

// Notifier доставляет уведомления и управляет чат-ролями. Все методы
// best-effort: неудача логируется реализацией и никогда не влияет на
// результат операции, после которой они вызваны.
type Notifier interface {
	RoleRequestDecided(ctx context.Context, note RoleRequestNote)
	SignupDecided(ctx context.Context, note SignupNote)
	AnnounceRoster(ctx context.Context, note RosterNote)
	AssignChatRole(ctx context.Context, userDiscordID, roleID int64)
	RemoveChatRole(ctx context.Context, userDiscordID, roleID int64)
}

// NopNotifier используется, когда интеграция с Discord не настроена.
type NopNotifier struct{}

func (NopNotifier) RoleRequestDecided(context.Context, RoleRequestNote) {}
func (NopNotifier) SignupDecided(context.Context, SignupNote)          {}
func (NopNotifier) AnnounceRoster(context.Context, RosterNote)         {}
func (NopNotifier) AssignChatRole(context.Context, int64, int64)       {}
func (NopNotifier) RemoveChatRole(context.Context, int64, int64)       {}
