package handlers

import (
	"net/http"

	"github.com/vaughan-dsouza/storerate/internal/utils"
)

type DashboardHandler struct {
	svc DashboardService
}

func (h *DashboardHandler) Admin(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Admin(r.Context())
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, stats)
}

func (h *DashboardHandler) StoreOwner(w http.ResponseWriter, r *http.Request) {
	s, err := session(r)
	if err != nil {
		utils.Error(w, r, err)
		return
	}

	d, err := h.svc.Owner(r.Context(), s)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, d)
}
