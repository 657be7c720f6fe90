package services

import (
	"context"

	"github.com/vaughan-dsouza/storerate/internal/models"
	"github.com/vaughan-dsouza/storerate/internal/query"
)

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id int64) (models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
	List(ctx context.Context, q query.Query) ([]models.UserListing, error)
	GetListing(ctx context.Context, id int64) (models.UserListing, error)
}

type StoreRepository interface {
	Create(ctx context.Context, s models.Store) (models.Store, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	FindByID(ctx context.Context, id int64) (models.Store, error)
	FindByOwner(ctx context.Context, ownerID int64) (models.Store, error)
	ListPublic(ctx context.Context, q query.Query) ([]models.StoreListing, error)
	ListAdmin(ctx context.Context, q query.Query) ([]models.AdminStoreListing, error)
	Aggregate(ctx context.Context, storeID int64) (float64, int64, error)
	Raters(ctx context.Context, storeID int64) ([]models.Rater, error)
}

type RatingRepository interface {
	// Upsert must be a single atomic write keyed on (userID, storeID).
	Upsert(ctx context.Context, userID, storeID int64, value int) (models.Rating, bool, error)
	UpdateOwned(ctx context.Context, id, userID int64, value int) (models.Rating, error)
	ListForStore(ctx context.Context, storeID int64) ([]models.StoreRating, error)
	FindValue(ctx context.Context, userID, storeID int64) (*int, error)
}

type StatsRepository interface {
	Counts(ctx context.Context) (models.AdminStats, error)
}
