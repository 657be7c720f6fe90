package handlers

import (
	"net/http"

	"github.com/vaughan-dsouza/storerate/internal/models"
	"github.com/vaughan-dsouza/storerate/internal/utils"
)

type RatingHandler struct {
	svc RatingService
}

type submitRatingReq struct {
	StoreID int64 `json:"store_id"`
	Rating  int   `json:"rating"`
}

type updateRatingReq struct {
	Rating int `json:"rating"`
}

type ratingResp struct {
	Message string        `json:"message"`
	Rating  models.Rating `json:"rating"`
	Created bool          `json:"created"`
}

// Submit creates or overwrites the caller's rating for a store: 201 when a
// new row was written, 200 when an existing one was replaced.
func (h *RatingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	s, err := session(r)
	if err != nil {
		utils.Error(w, r, err)
		return
	}

	var req submitRatingReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	res, err := h.svc.Submit(r.Context(), s.SubjectID, req.StoreID, req.Rating)
	if err != nil {
		utils.Error(w, r, err)
		return
	}

	if res.Created {
		utils.JSON(w, http.StatusCreated, ratingResp{Message: "rating submitted", Rating: res.Rating, Created: true})
		return
	}
	utils.JSON(w, http.StatusOK, ratingResp{Message: "rating updated", Rating: res.Rating})
}

func (h *RatingHandler) Update(w http.ResponseWriter, r *http.Request) {
	s, err := session(r)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		utils.Error(w, r, err)
		return
	}

	var req updateRatingReq
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		return
	}

	rating, err := h.svc.Update(r.Context(), id, s.SubjectID, req.Rating)
	if err != nil {
		utils.Error(w, r, err)
		return
	}

	utils.JSON(w, http.StatusOK, ratingResp{Message: "rating updated", Rating: rating})
}

func (h *RatingHandler) ForStore(w http.ResponseWriter, r *http.Request) {
	s, err := session(r)
	if err != nil {
		utils.Error(w, r, err)
		return
	}
	storeID, err := pathID(r, "storeId")
	if err != nil {
		utils.Error(w, r, err)
		return
	}

	out, err := h.svc.ForStore(r.Context(), storeID, s.SubjectID)
	if err != nil {
		utils.Error(w, r, err)
		return
	}

	utils.JSON(w, http.StatusOK, out)
}
