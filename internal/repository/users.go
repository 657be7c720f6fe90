package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/vaughan-dsouza/storerate/internal/apperr"
	"github.com/vaughan-dsouza/storerate/internal/models"
	"github.com/vaughan-dsouza/storerate/internal/query"
)

// UserRepository is the credential store.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, email, password_hash, address, role, created_at`

// Create inserts u. A duplicate email is reported as Conflict even when it
// slips past the caller's pre-check.
func (r *UserRepository) Create(ctx context.Context, u models.User) (models.User, error) {
	const q = `
		INSERT INTO users (name, email, password_hash, address, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	var out models.User
	err := r.db.QueryRowxContext(ctx, q, u.Name, u.Email, u.Password, u.Address, u.Role).StructScan(&out)
	if err != nil {
		switch pgCode(err) {
		case codeUniqueViolation:
			return models.User{}, apperr.New(apperr.KindConflict, "user already exists")
		case codeCheckViolation:
			return models.User{}, apperr.Invalid("invalid data", "role is not valid")
		}
		return models.User{}, unavailable("create user", err)
	}
	return out, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if isNoRows(err) {
		return models.User{}, apperr.New(apperr.KindNotFound, "user not found")
	}
	if err != nil {
		return models.User{}, unavailable("find user by email", err)
	}
	return u, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (models.User, error) {
	var u models.User
	err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if isNoRows(err) {
		return models.User{}, apperr.New(apperr.KindNotFound, "user not found")
	}
	if err != nil {
		return models.User{}, unavailable("find user by id", err)
	}
	return u, nil
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email)
	if err != nil {
		return false, unavailable("check user email", err)
	}
	return exists, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, hash, id)
	if err != nil {
		return unavailable("update password", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return unavailable("update password", err)
	}
	if n == 0 {
		return apperr.New(apperr.KindNotFound, "user not found")
	}
	return nil
}

// List runs a statement produced by query.Users.
func (r *UserRepository) List(ctx context.Context, q query.Query) ([]models.UserListing, error) {
	out := []models.UserListing{}
	if err := r.db.SelectContext(ctx, &out, q.SQL, q.Args...); err != nil {
		return nil, unavailable("list users", err)
	}
	return out, nil
}

// GetListing returns one user with the same annotation as List.
func (r *UserRepository) GetListing(ctx context.Context, id int64) (models.UserListing, error) {
	const q = `
		SELECT u.id, u.name, u.email, u.address, u.role, u.created_at,
		       ROUND(COALESCE(AVG(r.rating), 0), 2)::float8 AS average_rating
		FROM users u
		LEFT JOIN stores s ON s.owner_id = u.id
		LEFT JOIN ratings r ON r.store_id = s.id
		WHERE u.id = $1
		GROUP BY u.id, u.name, u.email, u.address, u.role, u.created_at`

	var u models.UserListing
	err := r.db.GetContext(ctx, &u, q, id)
	if isNoRows(err) {
		return models.UserListing{}, apperr.New(apperr.KindNotFound, "user not found")
	}
	if err != nil {
		return models.UserListing{}, unavailable("get user", err)
	}
	return u, nil
}
