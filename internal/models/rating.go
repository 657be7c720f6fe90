package models

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

type Rating struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	StoreID   int64     `db:"store_id" json:"store_id"`
	Rating    int       `db:"rating" json:"rating"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StoreRating is one entry of a store's rating feed.
type StoreRating struct {
	ID        int64     `db:"id" json:"id"`
	Rating    int       `db:"rating" json:"rating"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UserName  string    `db:"user_name" json:"user_name"`
}

// Rater is a user who rated a store, as shown to that store's owner.
type Rater struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Rating    int       `db:"rating" json:"rating"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
