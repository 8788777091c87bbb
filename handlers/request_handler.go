package handlers

import (
	"context"
	"net/http"

	"github.com/restreamkit/volunteer-system/models"
	"github.com/restreamkit/volunteer-system/services"
)

type RequestHandler struct {
	requestService *services.RoleRequestService
}

func NewRequestHandler(requestService *services.RoleRequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

func (h *RequestHandler) CreateRequestHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input services.CreateRoleRequestInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	request, err := h.requestService.Create(r.Context(), user, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"role_request": request}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RequestHandler) ApproveRequestHandler(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.requestService.Approve)
}

func (h *RequestHandler) RejectRequestHandler(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.requestService.Reject)
}

func (h *RequestHandler) WithdrawRequestHandler(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.requestService.Withdraw)
}

func (h *RequestHandler) RevokeRequestHandler(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.requestService.Revoke)
}

func (h *RequestHandler) RevokeGameRequestHandler(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.requestService.RevokeGameRequest)
}

func (h *RequestHandler) MyRequestsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	requests, err := h.requestService.ListForUser(r.Context(), user.ID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"role_requests": requests}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RequestHandler) EventRequestsHandler(w http.ResponseWriter, r *http.Request) {
	series, event, err := getEventFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	requests, err := h.requestService.ListForEvent(r.Context(), series, event)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"role_requests": requests}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RequestHandler) GameRequestsHandler(w http.ResponseWriter, r *http.Request) {
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	requests, err := h.requestService.ListForGame(r.Context(), gameID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"role_requests": requests}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RequestHandler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, actor *models.User, requestID int) (*models.RoleRequest, error)) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	requestID, err := getIDFromURL(r, "requestID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	request, err := fn(r.Context(), user, requestID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"role_request": request}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
