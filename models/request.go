package models

import "time"

// RoleRequestStatus представляет статусы заявки на роль, соответствующие ENUM в БД.
type RoleRequestStatus string

const (
	RequestPending  RoleRequestStatus = "pending"
	RequestApproved RoleRequestStatus = "approved"
	RequestRejected RoleRequestStatus = "rejected"
	RequestAborted  RoleRequestStatus = "aborted"
)

// roleRequestTransitions — единая таблица допустимых переходов.
// approved -> pending соответствует отзыву организатором (повторное
// рассмотрение вместо удаления истории), approved -> aborted — снятию
// одобренной игровой заявки администратором игры.
var roleRequestTransitions = map[RoleRequestStatus][]RoleRequestStatus{
	RequestPending:  {RequestApproved, RequestRejected, RequestAborted},
	RequestApproved: {RequestPending, RequestAborted},
	RequestRejected: {},
	RequestAborted:  {},
}

// CanTransitionTo reports whether moving from s to next is a legal role
// request transition.
func (s RoleRequestStatus) CanTransitionTo(next RoleRequestStatus) bool {
	for _, allowed := range roleRequestTransitions[s] {
		if next == allowed {
			return true
		}
	}
	return false
}

// IsActive reports whether a request in this status still claims a seat in
// the binding's pool.
func (s RoleRequestStatus) IsActive() bool {
	return s == RequestPending || s == RequestApproved
}

// RoleRequest — заявка пользователя на участие в пуле волонтёров одной привязки.
// Записи никогда не удаляются: отозванная заявка становится aborted.
type RoleRequest struct {
	ID            int               `json:"id" db:"id"`
	RoleBindingID int               `json:"role_binding_id" db:"role_binding_id"`
	UserID        int               `json:"user_id" db:"user_id"`
	Status        RoleRequestStatus `json:"status" db:"status"`
	Notes         *string           `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at" db:"updated_at"`

	// Заполняются JOIN-ом с role_bindings и role_types.
	Binding *RoleBinding `json:"binding,omitempty" db:"-"`
}
