package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"golang.org/x/crypto/bcrypt"

	"github.com/vaughan-dsouza/storerate/internal/apperr"
	"github.com/vaughan-dsouza/storerate/internal/auth"
	"github.com/vaughan-dsouza/storerate/internal/cache"
	"github.com/vaughan-dsouza/storerate/internal/config"
	"github.com/vaughan-dsouza/storerate/internal/db"
	"github.com/vaughan-dsouza/storerate/internal/models"
	"github.com/vaughan-dsouza/storerate/internal/query"
	"github.com/vaughan-dsouza/storerate/internal/repository"
	"github.com/vaughan-dsouza/storerate/internal/services"
)

var (
	testDB     *sqlx.DB
	skipReason string
)

// TestMain starts a Postgres 16 container, or reuses TEST_DATABASE_URL when
// set. Without either the tests in this package skip.
func TestMain(m *testing.M) {
	ctx := context.Background()

	dsn := os.Getenv("TEST_DATABASE_URL")
	var container *postgres.PostgresContainer
	if dsn == "" && os.Getenv("SKIP_DB_TESTS") == "" {
		c, url, err := startPostgres(ctx)
		if err != nil {
			skipReason = fmt.Sprintf("postgres unavailable: %v", err)
		}
		container, dsn = c, url
	}
	if dsn == "" && skipReason == "" {
		skipReason = "no database configured"
	}

	if dsn != "" {
		conn, err := db.Connect(ctx, config.DBConfig{URL: dsn, MaxOpen: 10, MaxIdle: 10, MaxLifetime: time.Minute})
		if err == nil {
			if err = db.Migrate(ctx, conn); err != nil {
				_ = conn.Close()
			}
		}
		if err != nil {
			skipReason = fmt.Sprintf("database setup: %v", err)
		} else {
			testDB = conn
		}
	}

	code := m.Run()

	if testDB != nil {
		_ = testDB.Close()
	}
	if container != nil {
		_ = container.Terminate(ctx)
	}
	os.Exit(code)
}

// startPostgres runs a throwaway container. testcontainers panics when no
// Docker host can be found, which is reported as an error here.
func startPostgres(ctx context.Context) (c *postgres.PostgresContainer, dsn string, err error) {
	defer func() {
		if r := recover(); r != nil {
			c, dsn, err = nil, "", fmt.Errorf("docker: %v", r)
		}
	}()

	c, err = postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("storerate"),
		postgres.WithUsername("storerate"),
		postgres.WithPassword("storerate"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, "", err
	}
	dsn, err = c.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = c.Terminate(ctx)
		return nil, "", err
	}
	return c, dsn, nil
}

type stack struct {
	users     *repository.UserRepository
	stores    *repository.StoreRepository
	ratings   *repository.RatingRepository
	stats     *repository.StatsRepository
	auth      *services.AuthService
	userSvc   *services.UserService
	storeSvc  *services.StoreService
	ratingSvc *services.RatingService
	dashboard *services.DashboardService
}

func newStack(t *testing.T) *stack {
	t.Helper()
	if testDB == nil {
		t.Skip(skipReason)
	}
	if _, err := testDB.Exec(`TRUNCATE ratings, stores, users RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	codec, err := auth.NewTokenCodec("integration-secret")
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	s := &stack{
		users:   repository.NewUserRepository(testDB),
		stores:  repository.NewStoreRepository(testDB),
		ratings: repository.NewRatingRepository(testDB),
		stats:   repository.NewStatsRepository(testDB),
	}
	s.auth = services.NewAuthService(s.users, hasher, codec)
	s.userSvc = services.NewUserService(s.users, hasher)
	s.storeSvc = services.NewStoreService(s.stores, s.users)
	s.ratingSvc = services.NewRatingService(s.ratings, s.stores)
	s.dashboard = services.NewDashboardService(s.stats, s.stores, cache.Nop{}, zerolog.Nop())
	return s
}

func (s *stack) user(t *testing.T, name, email string, role models.Role) models.User {
	t.Helper()
	u, err := s.userSvc.Create(context.Background(), services.CreateUserInput{
		Name: name, Email: email, Password: "Secret#123", Address: "1 Test Road", Role: role,
	})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func (s *stack) store(t *testing.T, email string, ownerID int64) models.Store {
	t.Helper()
	st, err := s.storeSvc.Create(context.Background(), services.CreateStoreInput{
		Name: "Store " + email, Email: email, Address: "2 Market Street", OwnerID: ownerID,
	})
	if err != nil {
		t.Fatalf("create store %s: %v", email, err)
	}
	return st
}

func (s *stack) ratingRows(t *testing.T, userID, storeID int64) int {
	t.Helper()
	var n int
	if err := testDB.Get(&n, `SELECT COUNT(*) FROM ratings WHERE user_id = $1 AND store_id = $2`, userID, storeID); err != nil {
		t.Fatalf("count ratings: %v", err)
	}
	return n
}

func TestUsers_UniqueEmailIsConflict(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	u := s.user(t, "Umberto Regular Customer", "u@example.com", models.RoleUser)

	_, err := s.users.Create(ctx, models.User{Name: u.Name, Email: u.Email, Password: "x", Role: models.RoleUser})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected Conflict from the unique constraint, got %v", err)
	}
}

func TestStores_OwnerMustBeStoreOwner(t *testing.T) {
	s := newStack(t)
	plain := s.user(t, "Umberto Regular Customer", "u@example.com", models.RoleUser)

	_, err := s.storeSvc.Create(context.Background(), services.CreateStoreInput{
		Name: "Corner Shop", Email: "shop@example.com", OwnerID: plain.ID,
	})
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
}

func TestRatings_UpsertOverwrites(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	owner := s.user(t, "Olivia Store Owner Person", "o@example.com", models.RoleStoreOwner)
	u := s.user(t, "Umberto Regular Customer", "u@example.com", models.RoleUser)
	st := s.store(t, "shop@example.com", owner.ID)

	first, created, err := s.ratings.Upsert(ctx, u.ID, st.ID, 3)
	if err != nil || !created {
		t.Fatalf("first upsert: created=%v err=%v", created, err)
	}
	second, created, err := s.ratings.Upsert(ctx, u.ID, st.ID, 5)
	if err != nil || created {
		t.Fatalf("second upsert: created=%v err=%v", created, err)
	}
	if second.ID != first.ID || second.Rating != 5 {
		t.Fatalf("expected row %d with 5, got %+v", first.ID, second)
	}
	if n := s.ratingRows(t, u.ID, st.ID); n != 1 {
		t.Fatalf("expected 1 row, got %d", n)
	}

	if _, _, err := s.ratings.Upsert(ctx, u.ID, 9999, 3); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected NotFound for missing store, got %v", err)
	}
}

func TestRatings_ConcurrentUpsert(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	owner := s.user(t, "Olivia Store Owner Person", "o@example.com", models.RoleStoreOwner)
	u := s.user(t, "Umberto Regular Customer", "u@example.com", models.RoleUser)
	st := s.store(t, "shop@example.com", owner.ID)

	for _, values := range [][]int{{2, 4}, {1, 2, 3, 4}} {
		var wg sync.WaitGroup
		errs := make(chan error, len(values))
		for _, v := range values {
			wg.Add(1)
			go func(v int) {
				defer wg.Done()
				_, err := s.ratingSvc.Submit(ctx, u.ID, st.ID, v)
				errs <- err
			}(v)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				t.Fatalf("submit: %v", err)
			}
		}

		if n := s.ratingRows(t, u.ID, st.ID); n != 1 {
			t.Fatalf("%v: expected 1 row, got %d", values, n)
		}
		got, err := s.ratings.FindValue(ctx, u.ID, st.ID)
		if err != nil || got == nil {
			t.Fatalf("find value: %v %v", got, err)
		}
		found := false
		for _, v := range values {
			found = found || v == *got
		}
		if !found {
			t.Fatalf("%v: final value %d was never submitted", values, *got)
		}
	}
}

func TestRatings_UpdateOwnedOnly(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	owner := s.user(t, "Olivia Store Owner Person", "o@example.com", models.RoleStoreOwner)
	u := s.user(t, "Umberto Regular Customer", "u@example.com", models.RoleUser)
	other := s.user(t, "Victoria Second Customer", "v@example.com", models.RoleUser)
	st := s.store(t, "shop@example.com", owner.ID)

	r, _, err := s.ratings.Upsert(ctx, u.ID, st.ID, 3)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := s.ratings.UpdateOwned(ctx, r.ID, other.ID, 1); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected NotFound for foreign rating, got %v", err)
	}
	if _, err := s.ratings.UpdateOwned(ctx, r.ID+100, u.ID, 1); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected NotFound for missing rating, got %v", err)
	}
}

func TestListings_ZeroRatings(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	owner := s.user(t, "Olivia Store Owner Person", "o@example.com", models.RoleStoreOwner)
	viewer := s.user(t, "Umberto Regular Customer", "u@example.com", models.RoleUser)
	s.store(t, "quiet@example.com", owner.ID)

	pub, err := s.storeSvc.ListPublic(ctx, viewer.ID, query.Request{})
	if err != nil {
		t.Fatalf("list public: %v", err)
	}
	if len(pub) != 1 || pub[0].AverageRating != 0 || pub[0].TotalRatings != 0 || pub[0].UserRating != nil {
		t.Fatalf("unexpected public listing %+v", pub)
	}

	adm, err := s.storeSvc.ListAdmin(ctx, query.Request{})
	if err != nil {
		t.Fatalf("list admin: %v", err)
	}
	if len(adm) != 1 || adm[0].TotalRatings != 0 || adm[0].OwnerName == nil || *adm[0].OwnerName != owner.Name {
		t.Fatalf("unexpected admin listing %+v", adm)
	}

	users, err := s.userSvc.List(ctx, query.Request{Filters: map[string]string{"role": "store_owner"}, SortBy: "password"})
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 1 || users[0].ID != owner.ID || users[0].AverageRating != 0 {
		t.Fatalf("unexpected user listing %+v", users)
	}

	d, err := s.dashboard.Owner(ctx, &auth.Session{SubjectID: owner.ID, Role: models.RoleStoreOwner})
	if err != nil {
		t.Fatalf("owner dashboard: %v", err)
	}
	if d.AverageRating != 0 || d.TotalRatings != 0 || len(d.UsersWithRatings) != 0 {
		t.Fatalf("unexpected dashboard %+v", d)
	}
}

func TestListings_FilterIsLiteral(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	owner := s.user(t, "Olivia Store Owner Person", "o@example.com", models.RoleStoreOwner)
	s.store(t, "a@example.com", owner.ID)

	for _, needle := range []string{"%", "_", "' OR 1=1 --"} {
		got, err := s.storeSvc.ListAdmin(ctx, query.Request{Filters: map[string]string{"name": needle}})
		if err != nil {
			t.Fatalf("%q: %v", needle, err)
		}
		if len(got) != 0 {
			t.Fatalf("%q matched %d stores", needle, len(got))
		}
	}
}

// TestScenario_RegisterRateUpdate follows a user from registration through
// rating a store and revising that rating.
func TestScenario_RegisterRateUpdate(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	a, err := s.auth.Register(ctx, services.RegisterInput{
		Name: "Alexandra Catherine Smith", Email: "a@example.com", Password: "Secret#123", Address: "3 High Street",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	b := s.user(t, "Bartholomew Store Keeper", "b@example.com", models.RoleStoreOwner)
	st := s.store(t, "s@example.com", b.ID)

	res, err := s.ratingSvc.Submit(ctx, a.User.ID, st.ID, 4)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	check := func(avg float64, own int) {
		t.Helper()
		list, err := s.storeSvc.ListPublic(ctx, a.User.ID, query.Request{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("expected 1 store, got %d", len(list))
		}
		got := list[0]
		if got.ID != st.ID || got.AverageRating != avg || got.TotalRatings != 1 || got.UserRating == nil || *got.UserRating != own {
			t.Fatalf("unexpected listing %+v", got)
		}
	}
	check(4.0, 4)

	if _, err := s.ratingSvc.Update(ctx, res.Rating.ID, a.User.ID, 2); err != nil {
		t.Fatalf("update: %v", err)
	}
	check(2.0, 2)

	stats, err := s.dashboard.Admin(ctx)
	if err != nil {
		t.Fatalf("admin stats: %v", err)
	}
	if stats != (models.AdminStats{TotalUsers: 2, TotalStores: 1, TotalRatings: 1}) {
		t.Fatalf("unexpected stats %+v", stats)
	}
}
