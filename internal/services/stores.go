package services

import (
	"context"
	"errors"
	"strings"

	"github.com/vaughan-dsouza/storerate/internal/apperr"
	"github.com/vaughan-dsouza/storerate/internal/models"
	"github.com/vaughan-dsouza/storerate/internal/query"
	"github.com/vaughan-dsouza/storerate/internal/validation"
)

type CreateStoreInput struct {
	Name    string `json:"name" validate:"required,max=255"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Address string `json:"address" validate:"max=400"`
	OwnerID int64  `json:"owner_id" validate:"required,gt=0"`
}

var errInvalidOwner = apperr.Invalid("invalid store owner", "owner_id must reference a store owner")

type StoreService struct {
	stores StoreRepository
	users  UserRepository
}

func NewStoreService(stores StoreRepository, users UserRepository) *StoreService {
	return &StoreService{stores: stores, users: users}
}

// Create registers a store. The owner must exist and hold the store_owner
// role at this moment; it is not re-checked later.
func (s *StoreService) Create(ctx context.Context, in CreateStoreInput) (models.Store, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	if err := validation.Struct(in); err != nil {
		return models.Store{}, err
	}

	exists, err := s.stores.EmailExists(ctx, in.Email)
	if err != nil {
		return models.Store{}, err
	}
	if exists {
		return models.Store{}, apperr.New(apperr.KindConflict, "store already exists")
	}

	owner, err := s.users.FindByID(ctx, in.OwnerID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return models.Store{}, errInvalidOwner
		}
		return models.Store{}, err
	}
	if owner.Role != models.RoleStoreOwner {
		return models.Store{}, errInvalidOwner
	}

	return s.stores.Create(ctx, models.Store{
		Name:    in.Name,
		Email:   in.Email,
		Address: in.Address,
		OwnerID: owner.ID,
	})
}

// ListPublic lists stores annotated with viewerID's own rating.
func (s *StoreService) ListPublic(ctx context.Context, viewerID int64, req query.Request) ([]models.StoreListing, error) {
	return s.stores.ListPublic(ctx, query.PublicStores(viewerID).Build(req))
}

func (s *StoreService) ListAdmin(ctx context.Context, req query.Request) ([]models.AdminStoreListing, error) {
	return s.stores.ListAdmin(ctx, query.AdminStores.Build(req))
}
