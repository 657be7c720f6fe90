package handlers

import (
	"net/http"

	"github.com/vaughan-dsouza/storerate/internal/models"
	"github.com/vaughan-dsouza/storerate/internal/services"
	"github.com/vaughan-dsouza/storerate/internal/utils"
)

type AuthHandler struct {
	svc AuthService
}

type authResp struct {
	Message string      `json:"message"`
	User    models.User `json:"user"`
	Token   string      `json:"token"`
}

type updatePasswordReq struct {
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterInput
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	res, err := h.svc.Register(r.Context(), req)
	if err != nil {
		utils.Error(w, r, err)
		return
	}

	utils.JSON(w, http.StatusCreated, authResp{
		Message: "user registered",
		User:    res.User,
		Token:   res.Token,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginInput
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	res, err := h.svc.Login(r.Context(), req)
	if err != nil {
		utils.Error(w, r, err)
		return
	}

	utils.JSON(w, http.StatusOK, authResp{
		Message: "login successful",
		User:    res.User,
		Token:   res.Token,
	})
}

func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	s, err := session(r)
	if err != nil {
		utils.Error(w, r, err)
		return
	}

	var req updatePasswordReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	if err := h.svc.UpdatePassword(r.Context(), s.SubjectID, req.Password); err != nil {
		utils.Error(w, r, err)
		return
	}

	utils.JSON(w, http.StatusOK, message{Message: "password updated"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	s, err := session(r)
	if err != nil {
		utils.Error(w, r, err)
		return
	}

	user, err := h.svc.Me(r.Context(), s.SubjectID)
	if err != nil {
		utils.Error(w, r, err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]any{"user": user})
}
