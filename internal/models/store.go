package models

import "time"

type Store struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Address   string    `db:"address" json:"address"`
	OwnerID   int64     `db:"owner_id" json:"owner_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// StoreListing is the row shape of the public store listing. UserRating is
// nil when the requesting user has not rated the store yet.
type StoreListing struct {
	ID            int64     `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Email         string    `db:"email" json:"email"`
	Address       string    `db:"address" json:"address"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	AverageRating float64   `db:"average_rating" json:"average_rating"`
	TotalRatings  int64     `db:"total_ratings" json:"total_ratings"`
	UserRating    *int      `db:"user_rating" json:"user_rating"`
}

// AdminStoreListing is the row shape of the admin store listing.
type AdminStoreListing struct {
	ID            int64     `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Email         string    `db:"email" json:"email"`
	Address       string    `db:"address" json:"address"`
	OwnerID       int64     `db:"owner_id" json:"owner_id"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	AverageRating float64   `db:"average_rating" json:"average_rating"`
	TotalRatings  int64     `db:"total_ratings" json:"total_ratings"`
	OwnerName     *string   `db:"owner_name" json:"owner_name"`
}
