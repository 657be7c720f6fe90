package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"

	"github.com/vaughan-dsouza/storerate/internal/models"
)

type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Counts runs the three table counts concurrently.
func (r *StatsRepository) Counts(ctx context.Context) (models.AdminStats, error) {
	var stats models.AdminStats
	g, gctx := errgroup.WithContext(ctx)

	count := func(table string, dst *int64) func() error {
		q := `SELECT COUNT(*) FROM ` + table
		return func() error {
			if err := r.db.GetContext(gctx, dst, q); err != nil {
				return unavailable("count "+table, err)
			}
			return nil
		}
	}
	g.Go(count("users", &stats.TotalUsers))
	g.Go(count("stores", &stats.TotalStores))
	g.Go(count("ratings", &stats.TotalRatings))

	if err := g.Wait(); err != nil {
		return models.AdminStats{}, err
	}
	return stats, nil
}
