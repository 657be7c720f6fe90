package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vaughan-dsouza/storerate/internal/apperr"
	"github.com/vaughan-dsouza/storerate/internal/auth"
	"github.com/vaughan-dsouza/storerate/internal/models"
	"github.com/vaughan-dsouza/storerate/internal/query"
	"github.com/vaughan-dsouza/storerate/internal/services"
	"github.com/vaughan-dsouza/storerate/internal/utils"
)

type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) (services.AuthResult, error)
	Login(ctx context.Context, in services.LoginInput) (services.AuthResult, error)
	UpdatePassword(ctx context.Context, userID int64, password string) error
	Me(ctx context.Context, userID int64) (models.User, error)
}

type UserService interface {
	Create(ctx context.Context, in services.CreateUserInput) (models.User, error)
	List(ctx context.Context, req query.Request) ([]models.UserListing, error)
	Get(ctx context.Context, id int64) (models.UserListing, error)
}

type StoreService interface {
	Create(ctx context.Context, in services.CreateStoreInput) (models.Store, error)
	ListPublic(ctx context.Context, viewerID int64, req query.Request) ([]models.StoreListing, error)
	ListAdmin(ctx context.Context, req query.Request) ([]models.AdminStoreListing, error)
}

type RatingService interface {
	Submit(ctx context.Context, userID, storeID int64, value int) (services.SubmitResult, error)
	Update(ctx context.Context, ratingID, userID int64, value int) (models.Rating, error)
	ForStore(ctx context.Context, storeID, viewerID int64) (services.StoreRatings, error)
}

type DashboardService interface {
	Admin(ctx context.Context) (models.AdminStats, error)
	Owner(ctx context.Context, session *auth.Session) (models.OwnerDashboard, error)
}

// Services groups the dependencies of the HTTP layer.
type Services struct {
	Auth      AuthService
	Users     UserService
	Stores    StoreService
	Ratings   RatingService
	Dashboard DashboardService
}

type Handler struct {
	Auth      *AuthHandler
	Users     *UserHandler
	Stores    *StoreHandler
	Ratings   *RatingHandler
	Dashboard *DashboardHandler
	Health    *HealthHandler
}

func NewHandler(svc Services, checks map[string]Check) *Handler {
	return &Handler{
		Auth:      &AuthHandler{svc: svc.Auth},
		Users:     &UserHandler{svc: svc.Users},
		Stores:    &StoreHandler{svc: svc.Stores},
		Ratings:   &RatingHandler{svc: svc.Ratings},
		Dashboard: &DashboardHandler{svc: svc.Dashboard},
		Health:    NewHealthHandler(checks),
	}
}

type message struct {
	Message string `json:"message"`
}

// session returns the caller's session. Routes are guarded, so a missing
// session means the router was wired without Authenticate.
func session(r *http.Request) (*auth.Session, error) {
	s := utils.SessionFrom(r.Context())
	if s == nil {
		return nil, apperr.New(apperr.KindUnauthenticated, "authentication required")
	}
	return s, nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Invalid("invalid data", name+" must be a positive integer")
	}
	return id, nil
}
