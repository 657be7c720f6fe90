package handlers

import (
	"net/http"

	"github.com/vaughan-dsouza/storerate/internal/models"
	"github.com/vaughan-dsouza/storerate/internal/query"
	"github.com/vaughan-dsouza/storerate/internal/services"
	"github.com/vaughan-dsouza/storerate/internal/utils"
)

type UserHandler struct {
	svc UserService
}

type userListResp struct {
	Users []models.UserListing `json:"users"`
	Total int                  `json:"total"`
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateUserInput
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	user, err := h.svc.Create(r.Context(), req)
	if err != nil {
		utils.Error(w, r, err)
		return
	}

	utils.JSON(w, http.StatusCreated, map[string]any{
		"message": "user created",
		"user":    user,
	})
}

// List accepts name, email, address and role filters plus sortBy/sortOrder.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context(), query.FromValues(r.URL.Query()))
	if err != nil {
		utils.Error(w, r, err)
		return
	}

	utils.JSON(w, http.StatusOK, userListResp{Users: users, Total: len(users)})
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		utils.Error(w, r, err)
		return
	}

	user, err := h.svc.Get(r.Context(), id)
	if err != nil {
		utils.Error(w, r, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]any{"user": user})
}
