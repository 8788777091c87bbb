package handlers

import (
	"net/http"

	"github.com/restreamkit/volunteer-system/services"
)

type BindingHandler struct {
	bindingService *services.RoleBindingService
}

func NewBindingHandler(bindingService *services.RoleBindingService) *BindingHandler {
	return &BindingHandler{bindingService: bindingService}
}

func (h *BindingHandler) CreateRoleTypeHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var input services.CreateRoleTypeInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	roleType, err := h.bindingService.CreateRoleType(r.Context(), user, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"role_type": roleType}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BindingHandler) ListRoleTypesHandler(w http.ResponseWriter, r *http.Request) {
	roleTypes, err := h.bindingService.ListRoleTypes(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"role_types": roleTypes}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BindingHandler) CreateEventBindingHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	series, event, err := getEventFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.CreateBindingInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	binding, err := h.bindingService.CreateEventBinding(r.Context(), user, series, event, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"role_binding": binding}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BindingHandler) CreateGameBindingHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	gameID, err := getIDFromURL(r, "gameID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.CreateBindingInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	binding, err := h.bindingService.CreateGameBinding(r.Context(), user, gameID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"role_binding": binding}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BindingHandler) DeleteBindingHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	bindingID, err := getIDFromURL(r, "bindingID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.bindingService.DeleteBinding(r.Context(), user, bindingID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BindingHandler) DisableBindingHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	series, event, err := getEventFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	roleTypeID, err := getIDFromURL(r, "roleTypeID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.bindingService.DisableBinding(r.Context(), user, series, event, roleTypeID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BindingHandler) EnableBindingHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	series, event, err := getEventFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	roleTypeID, err := getIDFromURL(r, "roleTypeID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.bindingService.EnableBinding(r.Context(), user, series, event, roleTypeID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BindingHandler) CreateOverrideHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	series, event, err := getEventFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.CreateOverrideInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	override, err := h.bindingService.CreateOverride(r.Context(), user, series, event, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"override": override}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BindingHandler) DeleteOverrideHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	series, event, err := getEventFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	roleTypeID, err := getIDFromURL(r, "roleTypeID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.bindingService.DeleteOverride(r.Context(), user, series, event, roleTypeID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BindingHandler) EffectiveBindingsHandler(w http.ResponseWriter, r *http.Request) {
	series, event, err := getEventFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	effective, err := h.bindingService.EffectiveBindings(r.Context(), series, event)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"effective_bindings": effective}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BindingHandler) DisabledBindingsHandler(w http.ResponseWriter, r *http.Request) {
	series, event, err := getEventFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	disabled, err := h.bindingService.DisabledBindings(r.Context(), series, event)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"disabled_bindings": disabled}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BindingHandler) DiscordOverridesHandler(w http.ResponseWriter, r *http.Request) {
	series, event, err := getEventFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	overrides, err := h.bindingService.DiscordOverrides(r.Context(), series, event)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"overrides": overrides}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
