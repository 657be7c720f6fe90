package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/vaughan-dsouza/storerate/internal/apperr"
	"github.com/vaughan-dsouza/storerate/internal/models"
	"github.com/vaughan-dsouza/storerate/internal/query"
)

type StoreRepository struct {
	db *sqlx.DB
}

func NewStoreRepository(db *sqlx.DB) *StoreRepository {
	return &StoreRepository{db: db}
}

const storeColumns = `id, name, email, address, owner_id, created_at`

func (r *StoreRepository) Create(ctx context.Context, s models.Store) (models.Store, error) {
	const q = `
		INSERT INTO stores (name, email, address, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + storeColumns

	var out models.Store
	err := r.db.QueryRowxContext(ctx, q, s.Name, s.Email, s.Address, s.OwnerID).StructScan(&out)
	if err != nil {
		switch pgCode(err) {
		case codeUniqueViolation:
			return models.Store{}, apperr.New(apperr.KindConflict, "store already exists")
		case codeForeignKeyViolation:
			return models.Store{}, apperr.Invalid("invalid store owner")
		}
		return models.Store{}, unavailable("create store", err)
	}
	return out, nil
}

func (r *StoreRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM stores WHERE email = $1)`, email)
	if err != nil {
		return false, unavailable("check store email", err)
	}
	return exists, nil
}

func (r *StoreRepository) FindByID(ctx context.Context, id int64) (models.Store, error) {
	var s models.Store
	err := r.db.GetContext(ctx, &s, `SELECT `+storeColumns+` FROM stores WHERE id = $1`, id)
	if isNoRows(err) {
		return models.Store{}, apperr.New(apperr.KindNotFound, "store not found")
	}
	if err != nil {
		return models.Store{}, unavailable("find store", err)
	}
	return s, nil
}

// FindByOwner returns the owner's first store.
func (r *StoreRepository) FindByOwner(ctx context.Context, ownerID int64) (models.Store, error) {
	var s models.Store
	err := r.db.GetContext(ctx, &s,
		`SELECT `+storeColumns+` FROM stores WHERE owner_id = $1 ORDER BY id LIMIT 1`, ownerID)
	if isNoRows(err) {
		return models.Store{}, apperr.New(apperr.KindNotFound, "store not found")
	}
	if err != nil {
		return models.Store{}, unavailable("find store by owner", err)
	}
	return s, nil
}

// ListPublic runs a statement produced by query.PublicStores.
func (r *StoreRepository) ListPublic(ctx context.Context, q query.Query) ([]models.StoreListing, error) {
	out := []models.StoreListing{}
	if err := r.db.SelectContext(ctx, &out, q.SQL, q.Args...); err != nil {
		return nil, unavailable("list stores", err)
	}
	return out, nil
}

// ListAdmin runs a statement produced by query.AdminStores.
func (r *StoreRepository) ListAdmin(ctx context.Context, q query.Query) ([]models.AdminStoreListing, error) {
	out := []models.AdminStoreListing{}
	if err := r.db.SelectContext(ctx, &out, q.SQL, q.Args...); err != nil {
		return nil, unavailable("list stores", err)
	}
	return out, nil
}

// Aggregate returns the store's average rating and rating count, both 0 when
// it has no ratings.
func (r *StoreRepository) Aggregate(ctx context.Context, storeID int64) (float64, int64, error) {
	var row struct {
		Average float64 `db:"average_rating"`
		Total   int64   `db:"total_ratings"`
	}
	const q = `
		SELECT ROUND(COALESCE(AVG(rating), 0), 2)::float8 AS average_rating,
		       COUNT(id) AS total_ratings
		FROM ratings
		WHERE store_id = $1`
	if err := r.db.GetContext(ctx, &row, q, storeID); err != nil {
		return 0, 0, unavailable("aggregate ratings", err)
	}
	return row.Average, row.Total, nil
}

// Raters lists the users who rated the store, newest rating first.
func (r *StoreRepository) Raters(ctx context.Context, storeID int64) ([]models.Rater, error) {
	const q = `
		SELECT u.id, u.name, u.email, r.rating, r.created_at
		FROM users u
		JOIN ratings r ON r.user_id = u.id
		WHERE r.store_id = $1
		ORDER BY r.created_at DESC, r.id DESC`

	out := []models.Rater{}
	if err := r.db.SelectContext(ctx, &out, q, storeID); err != nil {
		return nil, unavailable("list raters", err)
	}
	return out, nil
}
