package services

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vaughan-dsouza/storerate/internal/auth"
	"github.com/vaughan-dsouza/storerate/internal/cache"
	"github.com/vaughan-dsouza/storerate/internal/metrics"
	"github.com/vaughan-dsouza/storerate/internal/models"
	"github.com/vaughan-dsouza/storerate/internal/policy"
)

type DashboardService struct {
	stats  StatsRepository
	stores StoreRepository
	cache  cache.StatsCache
	log    zerolog.Logger
}

func NewDashboardService(stats StatsRepository, stores StoreRepository, c cache.StatsCache, log zerolog.Logger) *DashboardService {
	if c == nil {
		c = cache.Nop{}
	}
	return &DashboardService{stats: stats, stores: stores, cache: c, log: log}
}

// Admin returns system-wide counts. Cache failures degrade to a direct read.
func (s *DashboardService) Admin(ctx context.Context) (models.AdminStats, error) {
	cached, ok, err := s.cache.Get(ctx)
	switch {
	case err != nil:
		metrics.StatsCacheTotal.WithLabelValues("error").Inc()
		s.log.Warn().Err(err).Msg("stats cache read failed")
	case ok:
		metrics.StatsCacheTotal.WithLabelValues("hit").Inc()
		return cached, nil
	default:
		metrics.StatsCacheTotal.WithLabelValues("miss").Inc()
	}

	stats, err := s.stats.Counts(ctx)
	if err != nil {
		return models.AdminStats{}, err
	}
	if err := s.cache.Set(ctx, stats); err != nil {
		s.log.Warn().Err(err).Msg("stats cache write failed")
	}
	return stats, nil
}

// Owner returns the aggregate feedback for the caller's own store.
func (s *DashboardService) Owner(ctx context.Context, session *auth.Session) (models.OwnerDashboard, error) {
	store, err := policy.ResolveOwnStore(ctx, s.stores, session)
	if err != nil {
		return models.OwnerDashboard{}, err
	}

	out := models.OwnerDashboard{Store: models.StoreSummary{ID: store.ID, Name: store.Name}}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.AverageRating, out.TotalRatings, err = s.stores.Aggregate(gctx, store.ID)
		return err
	})
	g.Go(func() error {
		var err error
		out.UsersWithRatings, err = s.stores.Raters(gctx, store.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.OwnerDashboard{}, err
	}
	return out, nil
}
