package models

import "time"

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleStoreOwner Role = "store_owner"
	RoleUser       Role = "user"
)

// Roles lists every assignable role.
var Roles = []Role{RoleAdmin, RoleStoreOwner, RoleUser}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStoreOwner, RoleUser:
		return true
	default:
		return false
	}
}

type User struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Password  string    `db:"password_hash" json:"-"`
	Address   string    `db:"address" json:"address"`
	Role      Role      `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// UserListing is a user row annotated with the average rating across the
// stores they own (0 when they own none or nobody has rated them).
type UserListing struct {
	User
	AverageRating float64 `db:"average_rating" json:"average_rating"`
}
