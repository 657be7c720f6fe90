package services

import (
	"context"

	"github.com/vaughan-dsouza/storerate/internal/metrics"
	"github.com/vaughan-dsouza/storerate/internal/models"
	"github.com/vaughan-dsouza/storerate/internal/validation"
)

type SubmitResult struct {
	Rating  models.Rating
	Created bool
}

type StoreRatings struct {
	Ratings    []models.StoreRating `json:"ratings"`
	UserRating *int                 `json:"userRating"`
}

// RatingService keeps at most one rating per user per store.
type RatingService struct {
	ratings RatingRepository
	stores  StoreRepository
}

func NewRatingService(ratings RatingRepository, stores StoreRepository) *RatingService {
	return &RatingService{ratings: ratings, stores: stores}
}

// Submit records the user's rating for the store, overwriting any earlier
// one. The write is a single upsert, so concurrent submissions for the same
// pair leave exactly one row.
func (s *RatingService) Submit(ctx context.Context, userID, storeID int64, value int) (SubmitResult, error) {
	if err := validation.Rating(value); err != nil {
		return SubmitResult{}, err
	}
	if _, err := s.stores.FindByID(ctx, storeID); err != nil {
		return SubmitResult{}, err
	}

	rating, created, err := s.ratings.Upsert(ctx, userID, storeID, value)
	if err != nil {
		return SubmitResult{}, err
	}

	outcome := "overwritten"
	if created {
		outcome = "created"
	}
	metrics.RatingsWrittenTotal.WithLabelValues(outcome).Inc()

	return SubmitResult{Rating: rating, Created: created}, nil
}

// Update changes one of the caller's ratings by id. Ratings that do not
// exist and ratings owned by someone else are both NotFound.
func (s *RatingService) Update(ctx context.Context, ratingID, userID int64, value int) (models.Rating, error) {
	if err := validation.Rating(value); err != nil {
		return models.Rating{}, err
	}
	rating, err := s.ratings.UpdateOwned(ctx, ratingID, userID, value)
	if err != nil {
		return models.Rating{}, err
	}
	metrics.RatingsWrittenTotal.WithLabelValues("updated").Inc()
	return rating, nil
}

// ForStore returns the store's rating feed plus the viewer's own rating.
func (s *RatingService) ForStore(ctx context.Context, storeID, viewerID int64) (StoreRatings, error) {
	if _, err := s.stores.FindByID(ctx, storeID); err != nil {
		return StoreRatings{}, err
	}
	list, err := s.ratings.ListForStore(ctx, storeID)
	if err != nil {
		return StoreRatings{}, err
	}
	own, err := s.ratings.FindValue(ctx, viewerID, storeID)
	if err != nil {
		return StoreRatings{}, err
	}
	return StoreRatings{Ratings: list, UserRating: own}, nil
}
