package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/restreamkit/volunteer-system/services"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", services.ErrRoleBindingNotFound, 404},
		{"duplicate request", services.ErrRequestConflict, 409},
		{"duplicate signup", services.ErrSignupConflict, 409},
		{"full binding is forbidden, not a duplicate", services.ErrBindingFull, 403},
		{"ended race", services.ErrRaceEnded, 403},
		{"async race", services.ErrAsyncRace, 403},
		{"missing approval", services.ErrRoleNotApproved, 403},
		{"wrong status", services.ErrInvalidTransition, 403},
		{"no rights", services.ErrForbiddenOperation, 403},
		{"bad credentials", services.ErrInvalidCredentials, 401},
		{"upstream down", services.ErrUpstreamUnavailable, 502},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("POST", "/", nil)
			mapServiceErrorToHTTP(w, r, tt.err)
			if w.Code != tt.want {
				t.Errorf("%v: got status %d, want %d", tt.err, w.Code, tt.want)
			}
		})
	}
}

func TestMapServiceErrorToHTTPValidation(t *testing.T) {
	validation := services.NewValidationError()
	validation.Add("min_count", "must be at least 1")

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/", nil)
	mapServiceErrorToHTTP(w, r, validation)
	if w.Code != 422 {
		t.Errorf("got status %d, want 422", w.Code)
	}
}
