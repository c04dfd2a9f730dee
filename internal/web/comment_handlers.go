package web

import (
	"net/http"

	"github.com/evcraddock/bloggu/internal/apperr"
	"github.com/evcraddock/bloggu/internal/comment"
)

// commentHandlers serves comments and their edit history.
type commentHandlers struct {
	comments *comment.Service
}

type contentRequest struct {
	Content string `json:"content"`
}

func (h *commentHandlers) list(w http.ResponseWriter, r *http.Request) {
	me, ok := requester(w, r)
	if !ok {
		return
	}
	comments, err := h.comments.ListVisible(r.Context(), me)
	if err != nil {
		apiError(w, r, err)
		return
	}
	apiJSON(w, comments, http.StatusOK)
}

func (h *commentHandlers) create(w http.ResponseWriter, r *http.Request) {
	me, ok := requester(w, r)
	if !ok {
		return
	}
	var req contentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apiError(w, r, err)
		return
	}
	c, err := h.comments.Create(r.Context(), me, req.Content)
	if err != nil {
		apiError(w, r, err)
		return
	}
	apiJSON(w, c, http.StatusCreated)
}

func (h *commentHandlers) get(w http.ResponseWriter, r *http.Request) {
	me, ok := requester(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		apiError(w, r, err)
		return
	}
	c, err := h.comments.GetVisible(r.Context(), me, id)
	if err != nil {
		apiError(w, r, err)
		return
	}
	if c == nil {
		apiError(w, r, apperr.New(apperr.NotFound, "Comment not found"))
		return
	}
	apiJSON(w, c, http.StatusOK)
}

func (h *commentHandlers) update(w http.ResponseWriter, r *http.Request) {
	me, ok := requester(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		apiError(w, r, err)
		return
	}
	var req contentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apiError(w, r, err)
		return
	}
	c, err := h.comments.Update(r.Context(), me, id, req.Content)
	if err != nil {
		apiError(w, r, err)
		return
	}
	apiJSON(w, c, http.StatusOK)
}

func (h *commentHandlers) remove(w http.ResponseWriter, r *http.Request) {
	me, ok := requester(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		apiError(w, r, err)
		return
	}
	deleted, err := h.comments.Delete(r.Context(), me, id)
	if err != nil {
		apiError(w, r, err)
		return
	}
	apiJSON(w, deleteResponse{Deleted: deleted}, http.StatusOK)
}

func (h *commentHandlers) histories(w http.ResponseWriter, r *http.Request) {
	me, ok := requester(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		apiError(w, r, err)
		return
	}
	entries, err := h.comments.HistoryFor(r.Context(), me, id)
	if err != nil {
		apiError(w, r, err)
		return
	}
	apiJSON(w, entries, http.StatusOK)
}

func (h *commentHandlers) listHistory(w http.ResponseWriter, r *http.Request) {
	me, ok := requester(w, r)
	if !ok {
		return
	}
	entries, err := h.comments.ListHistoryVisible(r.Context(), me)
	if err != nil {
		apiError(w, r, err)
		return
	}
	apiJSON(w, entries, http.StatusOK)
}

func (h *commentHandlers) getHistory(w http.ResponseWriter, r *http.Request) {
	me, ok := requester(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		apiError(w, r, err)
		return
	}
	entry, err := h.comments.GetHistoryVisible(r.Context(), me, id)
	if err != nil {
		apiError(w, r, err)
		return
	}
	if entry == nil {
		apiError(w, r, apperr.New(apperr.NotFound, "Comment history not found"))
		return
	}
	apiJSON(w, entry, http.StatusOK)
}
