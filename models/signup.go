package models

import "time"

// SignupStatus представляет статусы записи на матч, соответствующие ENUM в БД.
type SignupStatus string

const (
	SignupPending   SignupStatus = "pending"
	SignupConfirmed SignupStatus = "confirmed"
	SignupDeclined  SignupStatus = "declined"
	SignupAborted   SignupStatus = "aborted"
)

// confirmed -> pending соответствует отзыву организатором: место
// освобождается без удаления истории.
var signupTransitions = map[SignupStatus][]SignupStatus{
	SignupPending:   {SignupConfirmed, SignupDeclined, SignupAborted},
	SignupConfirmed: {SignupPending},
	SignupDeclined:  {},
	SignupAborted:   {},
}

// CanTransitionTo reports whether moving from s to next is a legal signup
// transition.
func (s SignupStatus) CanTransitionTo(next SignupStatus) bool {
	for _, allowed := range signupTransitions[s] {
		if next == allowed {
			return true
		}
	}
	return false
}

// IsActive reports whether a signup in this status still claims the seat.
func (s SignupStatus) IsActive() bool {
	return s == SignupPending || s == SignupConfirmed
}

// Signup — заявка волонтёра на место конкретного матча.
type Signup struct {
	ID            int          `json:"id" db:"id"`
	RaceID        int          `json:"race_id" db:"race_id"`
	RoleBindingID int          `json:"role_binding_id" db:"role_binding_id"`
	UserID        int          `json:"user_id" db:"user_id"`
	Status        SignupStatus `json:"status" db:"status"`
	Notes         *string      `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" db:"updated_at"`

	// Заполняются JOIN-ом с role_bindings и role_types.
	Binding *RoleBinding `json:"binding,omitempty" db:"-"`
}

// PendingSignupWindow описывает другую pending-запись пользователя вместе с
// временным окном её гонки для поиска пересечений.
type PendingSignupWindow struct {
	SignupID int
	RaceID   int
	Start    *time.Time
	Duration time.Duration
}

// Overlaps reports whether the half-open interval [w.Start, w.Start+w.Duration)
// intersects [start, start+duration). Windows without a known start never
// overlap anything.
func (w PendingSignupWindow) Overlaps(start time.Time, duration time.Duration) bool {
	if w.Start == nil {
		return false
	}
	aStart, aEnd := *w.Start, w.Start.Add(w.Duration)
	bStart, bEnd := start, start.Add(duration)
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
