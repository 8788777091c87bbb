package handlers

import (
	"context"
	"net/http"

	"github.com/restreamkit/volunteer-system/models"
	"github.com/restreamkit/volunteer-system/services"
)

type SignupHandler struct {
	signupService *services.SignupService
}

func NewSignupHandler(signupService *services.SignupService) *SignupHandler {
	return &SignupHandler{signupService: signupService}
}

func (h *SignupHandler) CreateSignupHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input services.CreateSignupInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	signup, err := h.signupService.Create(r.Context(), user, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"signup": signup}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SignupHandler) ConfirmSignupHandler(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.signupService.Confirm)
}

func (h *SignupHandler) DeclineSignupHandler(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.signupService.Decline)
}

func (h *SignupHandler) WithdrawSignupHandler(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.signupService.Withdraw)
}

func (h *SignupHandler) RevokeSignupHandler(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.signupService.Revoke)
}

func (h *SignupHandler) RaceSignupsHandler(w http.ResponseWriter, r *http.Request) {
	raceID, err := getIDFromURL(r, "raceID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	signups, err := h.signupService.SignupsForRace(r.Context(), raceID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"signups": signups}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SignupHandler) EventRacesHandler(w http.ResponseWriter, r *http.Request) {
	series, event, err := getEventFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	races, err := h.signupService.RacesForEvent(r.Context(), series, event)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"races": races}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SignupHandler) MySignupsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	signups, err := h.signupService.ListForUser(r.Context(), user.ID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"signups": signups}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *SignupHandler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, actor *models.User, signupID int) (*models.Signup, error)) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	signupID, err := getIDFromURL(r, "signupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	signup, err := fn(r.Context(), user, signupID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"signup": signup}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
