package web

import (
	"net/http"

	"github.com/evcraddock/bloggu/internal/user"
)

// userHandlers serves the user directory and self-service profile routes.
type userHandlers struct {
	users *user.Service
}

func (h *userHandlers) list(w http.ResponseWriter, r *http.Request) {
	if _, ok := requester(w, r); !ok {
		return
	}
	users, err := h.users.List(r.Context())
	if err != nil {
		apiError(w, r, err)
		return
	}
	apiJSON(w, users, http.StatusOK)
}

func (h *userHandlers) get(w http.ResponseWriter, r *http.Request) {
	if _, ok := requester(w, r); !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		apiError(w, r, err)
		return
	}
	u, err := h.users.Get(r.Context(), id)
	if err != nil {
		apiError(w, r, err)
		return
	}
	apiJSON(w, u, http.StatusOK)
}

func (h *userHandlers) me(w http.ResponseWriter, r *http.Request) {
	me, ok := requester(w, r)
	if !ok {
		return
	}
	apiJSON(w, me, http.StatusOK)
}

func (h *userHandlers) updateMe(w http.ResponseWriter, r *http.Request) {
	me, ok := requester(w, r)
	if !ok {
		return
	}
	var req user.UpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apiError(w, r, err)
		return
	}
	u, err := h.users.UpdateSelf(r.Context(), me, req)
	if err != nil {
		apiError(w, r, err)
		return
	}
	apiJSON(w, u, http.StatusOK)
}

func (h *userHandlers) deleteMe(w http.ResponseWriter, r *http.Request) {
	me, ok := requester(w, r)
	if !ok {
		return
	}
	deleted, err := h.users.DeleteSelf(r.Context(), me)
	if err != nil {
		apiError(w, r, err)
		return
	}
	apiJSON(w, deleteResponse{Deleted: deleted}, http.StatusOK)
}
