package models

import "time"

// Event — одно запланированное соревнование внутри серии.
type Event struct {
	Series      string     `json:"series" db:"series"`
	Event       string     `json:"event" db:"event"`
	DisplayName string     `json:"display_name" db:"display_name"`
	GameID      *int       `json:"game_id,omitempty" db:"game_id"`
	StartDate   *time.Time `json:"start_date,omitempty" db:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty" db:"end_date"`

	// Длительность матча по умолчанию для серии этого события, используется
	// оконным алгоритмом разрешения конфликтов.
	DefaultRaceDuration time.Duration `json:"default_race_duration" db:"-"`

	// Если установлен, событие использует только собственный набор привязок
	// ролей и игровые привязки к нему не применяются.
	ForceCustomRoleBinding bool `json:"force_custom_role_binding" db:"force_custom_role_binding"`
}

// HasEnded reports whether the event concluded before now. Ended events accept
// no further role-configuration changes.
func (e *Event) HasEnded(now time.Time) bool {
	return e.EndDate != nil && e.EndDate.Before(now)
}

// Game groups one or more series under a shared volunteer-role configuration.
type Game struct {
	ID          int    `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	DisplayName string `json:"display_name" db:"display_name"`
}
