package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed     = errors.New("validation failed")
	ErrPasswordTooShort     = errors.New("password is too short")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrEventEnded           = errors.New("event has already ended")
	ErrRaceEnded            = errors.New("race has already ended")
	ErrAsyncRace            = errors.New("asynchronous races accept no live volunteer roster")
	ErrBindingScopeInvalid  = errors.New("role binding must target exactly one of event or game")
	ErrBindingCountsInvalid = errors.New("role binding max count must be at least min count and positive")
	ErrInvalidTransition    = errors.New("status transition is not allowed")
	ErrBindingDisabled      = errors.New("role binding is disabled for this event")
	ErrRoleNotApproved      = errors.New("user does not hold an approved request for this role")
	ErrBindingFull          = errors.New("role binding has reached its confirmed capacity")

	// Ошибки конфликтов
	ErrRoleTypeNameConflict = errors.New("role type name is already in use")
	ErrRoleBindingConflict  = errors.New("an active role binding already exists for this role type")
	ErrOverrideConflict     = errors.New("a discord role override already exists for this role type")
	ErrDisableConflict      = errors.New("role binding is already disabled for this event")
	ErrRequestConflict      = errors.New("user already has an active request for this role binding")
	ErrSignupConflict       = errors.New("user already has an active signup for this race and role")
	ErrUserEmailConflict    = errors.New("email address is already in use")

	// Ошибки аутентификации и авторизации
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")

	// Ошибки, специфичные для сущностей (могут дублировать ErrNotFound, но дают больше контекста)
	ErrUserNotFound        = errors.New("user not found")
	ErrEventNotFound       = errors.New("event not found")
	ErrGameNotFound        = errors.New("game not found")
	ErrRaceNotFound        = errors.New("race not found")
	ErrRoleTypeNotFound    = errors.New("role type not found")
	ErrRoleBindingNotFound = errors.New("role binding not found")
	ErrOverrideNotFound    = errors.New("discord role override not found")
	ErrRoleRequestNotFound = errors.New("role request not found")
	ErrSignupNotFound      = errors.New("signup not found")

	// Ошибки внешних сервисов
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
)

// ValidationError накапливает ошибки по полям, чтобы вернуть клиенту все
// проблемы запроса за один раз. Совместима с errors.Is(err, ErrValidationFailed).
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// ErrOrNil возвращает сам объект, если есть хотя бы одна ошибка, иначе nil.
// Нужен, чтобы не вернуть ненулевой интерфейс с nil-указателем внутри.
func (e *ValidationError) ErrOrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(e.Fields[field], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}
