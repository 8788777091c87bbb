package models

import "time"

// RoleType представляет запись каталога ролей (например, "Commentator").
// Создаётся администраторами, в нормальной работе не удаляется.
type RoleType struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// RoleBinding объявляет потребность события или игры в N–M волонтёрах одной роли.
// Ровно одна область видимости: либо (Series, Event), либо GameID.
type RoleBinding struct {
	ID            int     `json:"id" db:"id"`
	Series        *string `json:"series,omitempty" db:"series"`
	Event         *string `json:"event,omitempty" db:"event"`
	GameID        *int    `json:"game_id,omitempty" db:"game_id"`
	RoleTypeID    int     `json:"role_type_id" db:"role_type_id"`
	MinCount      int     `json:"min_count" db:"min_count"`
	MaxCount      int     `json:"max_count" db:"max_count"`
	DiscordRoleID *int64  `json:"discord_role_id,omitempty" db:"discord_role_id"`
	AutoApprove   bool    `json:"auto_approve" db:"auto_approve"`

	// Заполняется JOIN-ом с role_types.
	RoleTypeName string `json:"role_type_name" db:"-"`
}

// IsGameBinding reports whether the binding is game-wide rather than
// event-specific.
func (b *RoleBinding) IsGameBinding() bool {
	return b.GameID != nil
}

// EventDiscordRoleOverride replaces the Discord role id of a game-scoped
// binding for a single event. At most one per (series, event, role type).
type EventDiscordRoleOverride struct {
	ID            int    `json:"id" db:"id"`
	Series        string `json:"series" db:"series"`
	Event         string `json:"event" db:"event"`
	RoleTypeID    int    `json:"role_type_id" db:"role_type_id"`
	DiscordRoleID int64  `json:"discord_role_id" db:"discord_role_id"`

	RoleTypeName string `json:"role_type_name" db:"-"`
}

// EventDisabledRoleBinding suppresses a game-scoped binding for a single
// event. At most one per (series, event, role type).
type EventDisabledRoleBinding struct {
	ID         int       `json:"id" db:"id"`
	Series     string    `json:"series" db:"series"`
	Event      string    `json:"event" db:"event"`
	RoleTypeID int       `json:"role_type_id" db:"role_type_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	RoleTypeName string `json:"role_type_name" db:"-"`
}

// EffectiveRoleBinding — вычисляемое представление привязки ролей для события
// после применения переопределений и отключений. Не хранится в БД.
type EffectiveRoleBinding struct {
	ID               int    `json:"id"`
	RoleTypeID       int    `json:"role_type_id"`
	RoleTypeName     string `json:"role_type_name"`
	MinCount         int    `json:"min_count"`
	MaxCount         int    `json:"max_count"`
	DiscordRoleID    *int64 `json:"discord_role_id,omitempty"`
	AutoApprove      bool   `json:"auto_approve"`
	IsGameBinding    bool   `json:"is_game_binding"`
	HasEventOverride bool   `json:"has_event_override"`
}
