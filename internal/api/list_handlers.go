package api

import (
	"net/http"

	"github.com/abacusquest/abacusquest/internal/models"
	"github.com/go-chi/chi/v5"
)

type addItemRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.Lists.List(r.Context(), studentIDFromContext(r.Context()), chi.URLParam(r, "list"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleAddListItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	item, err := s.Lists.Add(r.Context(), studentIDFromContext(r.Context()), chi.URLParam(r, "list"), req.Text)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleUpdateListItem(w http.ResponseWriter, r *http.Request) {
	var patch models.ListItemPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		handleError(w, r, err)
		return
	}

	item, err := s.Lists.Update(r.Context(), studentIDFromContext(r.Context()), chi.URLParam(r, "list"), chi.URLParam(r, "itemID"), patch)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteListItem(w http.ResponseWriter, r *http.Request) {
	err := s.Lists.Delete(r.Context(), studentIDFromContext(r.Context()), chi.URLParam(r, "list"), chi.URLParam(r, "itemID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
