package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/vaughan-dsouza/storerate/internal/apperr"
	"github.com/vaughan-dsouza/storerate/internal/models"
)

type RatingRepository struct {
	db *sqlx.DB
}

func NewRatingRepository(db *sqlx.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

const ratingColumns = `id, user_id, store_id, rating, created_at, updated_at`

// Upsert writes the user's rating for the store in one statement, keyed on
// the (user_id, store_id) unique constraint. created reports whether a new
// row was inserted rather than an existing one overwritten.
func (r *RatingRepository) Upsert(ctx context.Context, userID, storeID int64, value int) (models.Rating, bool, error) {
	const q = `
		INSERT INTO ratings (user_id, store_id, rating)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, store_id)
		DO UPDATE SET rating = EXCLUDED.rating, updated_at = NOW()
		RETURNING ` + ratingColumns + `, (xmax = 0) AS inserted`

	var row struct {
		models.Rating
		Inserted bool `db:"inserted"`
	}
	err := r.db.QueryRowxContext(ctx, q, userID, storeID, value).StructScan(&row)
	if err != nil {
		switch pgCode(err) {
		case codeForeignKeyViolation:
			return models.Rating{}, false, apperr.New(apperr.KindNotFound, "store not found")
		case codeCheckViolation:
			return models.Rating{}, false, apperr.Invalid("invalid data", "rating must be 1-5")
		}
		return models.Rating{}, false, unavailable("upsert rating", err)
	}
	return row.Rating, row.Inserted, nil
}

// UpdateOwned changes a rating only if it belongs to userID. A missing row
// and someone else's row are both NotFound.
func (r *RatingRepository) UpdateOwned(ctx context.Context, id, userID int64, value int) (models.Rating, error) {
	const q = `
		UPDATE ratings
		SET rating = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
		RETURNING ` + ratingColumns

	var out models.Rating
	err := r.db.QueryRowxContext(ctx, q, value, id, userID).StructScan(&out)
	if isNoRows(err) {
		return models.Rating{}, apperr.New(apperr.KindNotFound, "rating not found")
	}
	if err != nil {
		if pgCode(err) == codeCheckViolation {
			return models.Rating{}, apperr.Invalid("invalid data", "rating must be 1-5")
		}
		return models.Rating{}, unavailable("update rating", err)
	}
	return out, nil
}

// ListForStore returns the store's ratings newest first with rater names.
func (r *RatingRepository) ListForStore(ctx context.Context, storeID int64) ([]models.StoreRating, error) {
	const q = `
		SELECT r.id, r.rating, r.created_at, u.name AS user_name
		FROM ratings r
		JOIN users u ON u.id = r.user_id
		WHERE r.store_id = $1
		ORDER BY r.created_at DESC, r.id DESC`

	out := []models.StoreRating{}
	if err := r.db.SelectContext(ctx, &out, q, storeID); err != nil {
		return nil, unavailable("list store ratings", err)
	}
	return out, nil
}

// FindValue returns the user's rating value for the store, or nil.
func (r *RatingRepository) FindValue(ctx context.Context, userID, storeID int64) (*int, error) {
	var v int
	err := r.db.GetContext(ctx, &v, `SELECT rating FROM ratings WHERE user_id = $1 AND store_id = $2`, userID, storeID)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable("find rating", err)
	}
	return &v, nil
}
