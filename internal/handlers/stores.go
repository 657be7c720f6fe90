package handlers

import (
	"net/http"

	"github.com/vaughan-dsouza/storerate/internal/query"
	"github.com/vaughan-dsouza/storerate/internal/services"
	"github.com/vaughan-dsouza/storerate/internal/utils"
)

type StoreHandler struct {
	svc StoreService
}

func (h *StoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateStoreInput
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	store, err := h.svc.Create(r.Context(), req)
	if err != nil {
		utils.Error(w, r, err)
		return
	}

	utils.JSON(w, http.StatusCreated, map[string]any{
		"message": "store created",
		"store":   store,
	})
}

// List is the user-facing listing, annotated with the caller's own rating.
func (h *StoreHandler) List(w http.ResponseWriter, r *http.Request) {
	s, err := session(r)
	if err != nil {
		utils.Error(w, r, err)
		return
	}

	stores, err := h.svc.ListPublic(r.Context(), s.SubjectID, query.FromValues(r.URL.Query()))
	if err != nil {
		utils.Error(w, r, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]any{"stores": stores, "total": len(stores)})
}

func (h *StoreHandler) ListAdmin(w http.ResponseWriter, r *http.Request) {
	stores, err := h.svc.ListAdmin(r.Context(), query.FromValues(r.URL.Query()))
	if err != nil {
		utils.Error(w, r, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]any{"stores": stores, "total": len(stores)})
}
