// Package policy decides which roles may perform which actions.
//
// All authorization goes through one table keyed by Action. Guards run in a
// fixed order: authentication first (is there a verified session at all),
// then the role check for the requested action.
package policy

import (
	"context"
	"errors"

	"github.com/vaughan-dsouza/storerate/internal/apperr"
	"github.com/vaughan-dsouza/storerate/internal/auth"
	"github.com/vaughan-dsouza/storerate/internal/models"
)

type Action int

const (
	ActionCreateUser Action = iota + 1
	ActionListUsers
	ActionViewUser
	ActionCreateStore
	ActionListStoresPublic
	ActionListStoresAdmin
	ActionViewOwnStore
	ActionViewStoreRatings
	ActionSubmitRating
	ActionViewAdminStats
	ActionUpdatePassword
	ActionViewProfile
)

var actionNames = map[Action]string{
	ActionCreateUser:       "create_user",
	ActionListUsers:        "list_users",
	ActionViewUser:         "view_user",
	ActionCreateStore:      "create_store",
	ActionListStoresPublic: "list_stores_public",
	ActionListStoresAdmin:  "list_stores_admin",
	ActionViewOwnStore:     "view_own_store",
	ActionViewStoreRatings: "view_store_ratings",
	ActionSubmitRating:     "submit_rating",
	ActionViewAdminStats:   "view_admin_stats",
	ActionUpdatePassword:   "update_password",
	ActionViewProfile:      "view_profile",
}

func (a Action) String() string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return "unknown"
}

type roleSet map[models.Role]struct{}

func roles(rs ...models.Role) roleSet {
	s := make(roleSet, len(rs))
	for _, r := range rs {
		s[r] = struct{}{}
	}
	return s
}

var table = map[Action]roleSet{
	ActionCreateUser:       roles(models.RoleAdmin),
	ActionListUsers:        roles(models.RoleAdmin),
	ActionViewUser:         roles(models.RoleAdmin),
	ActionCreateStore:      roles(models.RoleAdmin),
	ActionListStoresPublic: roles(models.RoleUser),
	ActionListStoresAdmin:  roles(models.RoleAdmin),
	ActionViewOwnStore:     roles(models.RoleStoreOwner),
	ActionViewStoreRatings: roles(models.RoleUser),
	ActionSubmitRating:     roles(models.RoleUser),
	ActionViewAdminStats:   roles(models.RoleAdmin),
	ActionUpdatePassword:   roles(models.RoleAdmin, models.RoleStoreOwner, models.RoleUser),
	ActionViewProfile:      roles(models.RoleAdmin, models.RoleStoreOwner, models.RoleUser),
}

// Actions returns every action known to the policy table.
func Actions() []Action {
	out := make([]Action, 0, len(table))
	for a := ActionCreateUser; a <= ActionViewProfile; a++ {
		out = append(out, a)
	}
	return out
}

// Allowed reports whether role may perform action. Unknown actions are denied.
func Allowed(role models.Role, action Action) bool {
	set, ok := table[action]
	if !ok {
		return false
	}
	_, ok = set[role]
	return ok
}

// Authenticated is the first guard: it fails when there is no session.
func Authenticated(s *auth.Session) error {
	if s == nil || s.SubjectID <= 0 {
		return apperr.New(apperr.KindUnauthenticated, "authentication required")
	}
	return nil
}

// Authorize runs the authentication guard and then the role guard.
func Authorize(s *auth.Session, action Action) error {
	if err := Authenticated(s); err != nil {
		return err
	}
	if !Allowed(s.Role, action) {
		return apperr.New(apperr.KindForbidden, "access denied")
	}
	return nil
}

// StoreLookup finds the store owned by a user.
type StoreLookup interface {
	FindByOwner(ctx context.Context, ownerID int64) (models.Store, error)
}

// ResolveOwnStore authorizes ActionViewOwnStore and returns the caller's
// store. A store owner without a store gets NotFound, not Forbidden.
func ResolveOwnStore(ctx context.Context, lookup StoreLookup, s *auth.Session) (models.Store, error) {
	if err := Authorize(s, ActionViewOwnStore); err != nil {
		return models.Store{}, err
	}
	store, err := lookup.FindByOwner(ctx, s.SubjectID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return models.Store{}, apperr.New(apperr.KindNotFound, "no store found for this user")
		}
		return models.Store{}, err
	}
	return store, nil
}
