package services

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/vaughan-dsouza/storerate/internal/apperr"
	"github.com/vaughan-dsouza/storerate/internal/models"
	"github.com/vaughan-dsouza/storerate/internal/query"
)

// memDB is an in-memory datastore with the same uniqueness rules as the
// schema: unique user email, unique store email, one rating per user/store.
type memDB struct {
	mu      sync.Mutex
	nextID  int64
	users   map[int64]models.User
	stores  map[int64]models.Store
	ratings map[int64]models.Rating
}

func newMemDB() *memDB {
	return &memDB{
		users:   map[int64]models.User{},
		stores:  map[int64]models.Store{},
		ratings: map[int64]models.Rating{},
	}
}

func (m *memDB) id() int64 {
	m.nextID++
	return m.nextID
}

type memUsers struct{ db *memDB }

func (r memUsers) Create(_ context.Context, u models.User) (models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, x := range r.db.users {
		if x.Email == u.Email {
			return models.User{}, apperr.New(apperr.KindConflict, "user already exists")
		}
	}
	u.ID = r.db.id()
	u.CreatedAt = time.Now()
	r.db.users[u.ID] = u
	return u, nil
}

func (r memUsers) FindByEmail(_ context.Context, email string) (models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, apperr.New(apperr.KindNotFound, "user not found")
}

func (r memUsers) FindByID(_ context.Context, id int64) (models.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return models.User{}, apperr.New(apperr.KindNotFound, "user not found")
	}
	return u, nil
}

func (r memUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

func (r memUsers) UpdatePassword(_ context.Context, id int64, hash string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return apperr.New(apperr.KindNotFound, "user not found")
	}
	u.Password = hash
	r.db.users[id] = u
	return nil
}

func (r memUsers) List(_ context.Context, _ query.Query) ([]models.UserListing, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []models.UserListing{}
	for _, u := range r.db.users {
		out = append(out, models.UserListing{User: u})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memUsers) GetListing(ctx context.Context, id int64) (models.UserListing, error) {
	u, err := r.FindByID(ctx, id)
	if err != nil {
		return models.UserListing{}, err
	}
	return models.UserListing{User: u}, nil
}

type memStores struct{ db *memDB }

func (r memStores) Create(_ context.Context, s models.Store) (models.Store, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, x := range r.db.stores {
		if x.Email == s.Email {
			return models.Store{}, apperr.New(apperr.KindConflict, "store already exists")
		}
	}
	s.ID = r.db.id()
	s.CreatedAt = time.Now()
	r.db.stores[s.ID] = s
	return s, nil
}

func (r memStores) EmailExists(_ context.Context, email string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, s := range r.db.stores {
		if s.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r memStores) FindByID(_ context.Context, id int64) (models.Store, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.stores[id]
	if !ok {
		return models.Store{}, apperr.New(apperr.KindNotFound, "store not found")
	}
	return s, nil
}

func (r memStores) FindByOwner(_ context.Context, ownerID int64) (models.Store, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var found *models.Store
	for _, s := range r.db.stores {
		if s.OwnerID == ownerID && (found == nil || s.ID < found.ID) {
			s := s
			found = &s
		}
	}
	if found == nil {
		return models.Store{}, apperr.New(apperr.KindNotFound, "store not found")
	}
	return *found, nil
}

func (r memStores) ListPublic(ctx context.Context, q query.Query) ([]models.StoreListing, error) {
	viewer, _ := q.Args[0].(int64)
	r.db.mu.Lock()
	ids := make([]int64, 0, len(r.db.stores))
	for id := range r.db.stores {
		ids = append(ids, id)
	}
	r.db.mu.Unlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := []models.StoreListing{}
	for _, id := range ids {
		s, _ := r.FindByID(ctx, id)
		avg, total, _ := r.Aggregate(ctx, id)
		own, _ := memRatings{r.db}.FindValue(ctx, viewer, id)
		out = append(out, models.StoreListing{
			ID: s.ID, Name: s.Name, Email: s.Email, Address: s.Address, CreatedAt: s.CreatedAt,
			AverageRating: avg, TotalRatings: total, UserRating: own,
		})
	}
	return out, nil
}

func (r memStores) ListAdmin(ctx context.Context, _ query.Query) ([]models.AdminStoreListing, error) {
	r.db.mu.Lock()
	ids := make([]int64, 0, len(r.db.stores))
	for id := range r.db.stores {
		ids = append(ids, id)
	}
	r.db.mu.Unlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := []models.AdminStoreListing{}
	for _, id := range ids {
		s, _ := r.FindByID(ctx, id)
		avg, total, _ := r.Aggregate(ctx, id)
		out = append(out, models.AdminStoreListing{
			ID: s.ID, Name: s.Name, Email: s.Email, Address: s.Address, OwnerID: s.OwnerID,
			CreatedAt: s.CreatedAt, AverageRating: avg, TotalRatings: total,
		})
	}
	return out, nil
}

func (r memStores) Aggregate(_ context.Context, storeID int64) (float64, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var sum, n int64
	for _, x := range r.db.ratings {
		if x.StoreID == storeID {
			sum += int64(x.Rating)
			n++
		}
	}
	if n == 0 {
		return 0, 0, nil
	}
	return math.Round(float64(sum)/float64(n)*100) / 100, n, nil
}

func (r memStores) Raters(_ context.Context, storeID int64) ([]models.Rater, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []models.Rater{}
	for _, x := range r.db.ratings {
		if x.StoreID != storeID {
			continue
		}
		u := r.db.users[x.UserID]
		out = append(out, models.Rater{ID: u.ID, Name: u.Name, Email: u.Email, Rating: x.Rating, CreatedAt: x.CreatedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memRatings struct{ db *memDB }

func (r memRatings) Upsert(_ context.Context, userID, storeID int64, value int) (models.Rating, bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.stores[storeID]; !ok {
		return models.Rating{}, false, apperr.New(apperr.KindNotFound, "store not found")
	}
	now := time.Now()
	for id, x := range r.db.ratings {
		if x.UserID == userID && x.StoreID == storeID {
			x.Rating = value
			x.UpdatedAt = now
			r.db.ratings[id] = x
			return x, false, nil
		}
	}
	x := models.Rating{ID: r.db.id(), UserID: userID, StoreID: storeID, Rating: value, CreatedAt: now, UpdatedAt: now}
	r.db.ratings[x.ID] = x
	return x, true, nil
}

func (r memRatings) UpdateOwned(_ context.Context, id, userID int64, value int) (models.Rating, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	x, ok := r.db.ratings[id]
	if !ok || x.UserID != userID {
		return models.Rating{}, apperr.New(apperr.KindNotFound, "rating not found")
	}
	x.Rating = value
	x.UpdatedAt = time.Now()
	r.db.ratings[id] = x
	return x, nil
}

func (r memRatings) ListForStore(_ context.Context, storeID int64) ([]models.StoreRating, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := []models.StoreRating{}
	for _, x := range r.db.ratings {
		if x.StoreID == storeID {
			out = append(out, models.StoreRating{ID: x.ID, Rating: x.Rating, CreatedAt: x.CreatedAt, UserName: r.db.users[x.UserID].Name})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r memRatings) FindValue(_ context.Context, userID, storeID int64) (*int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, x := range r.db.ratings {
		if x.UserID == userID && x.StoreID == storeID {
			v := x.Rating
			return &v, nil
		}
	}
	return nil, nil
}

func (r memRatings) count() int {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return len(r.db.ratings)
}

type memStats struct {
	db    *memDB
	calls int
}

func (r *memStats) Counts(_ context.Context) (models.AdminStats, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.calls++
	return models.AdminStats{
		TotalUsers:   int64(len(r.db.users)),
		TotalStores:  int64(len(r.db.stores)),
		TotalRatings: int64(len(r.db.ratings)),
	}, nil
}
