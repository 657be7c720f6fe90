package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/vaughan-dsouza/storerate/internal/apperr"
	"github.com/vaughan-dsouza/storerate/internal/auth"
	"github.com/vaughan-dsouza/storerate/internal/cache"
	"github.com/vaughan-dsouza/storerate/internal/config"
	"github.com/vaughan-dsouza/storerate/internal/db"
	"github.com/vaughan-dsouza/storerate/internal/handlers"
	"github.com/vaughan-dsouza/storerate/internal/logger"
	"github.com/vaughan-dsouza/storerate/internal/repository"
	"github.com/vaughan-dsouza/storerate/internal/services"
)

func main() {
	envErr := godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log := logger.Init(logger.Options{})
		log.Fatal().Err(err).Msg("configuration error")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.IsProduction(),
	})
	if envErr != nil {
		log.Debug().Msg("no .env file found")
	}

	ephemeral, err := cfg.Validate()
	if err != nil {
		log.Fatal().Err(err).Str("kind", apperr.KindOf(err).String()).Msg("misconfiguration")
	}
	if ephemeral {
		log.Warn().Msg("JWT_SECRET not set; using a random per-process secret, tokens will not survive a restart")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("server exited")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	dbConn, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	if err := db.Migrate(ctx, dbConn); err != nil {
		return err
	}

	checks := map[string]handlers.Check{"postgres": dbConn.PingContext}

	var statsCache cache.StatsCache = cache.Nop{}
	if cfg.Redis.Addr != "" {
		rdb, err := cache.Connect(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, dashboard cache disabled")
		} else {
			defer rdb.Close()
			statsCache = cache.NewStatsCache(rdb, cfg.Redis.StatsTTL)
			checks["redis"] = redisCheck(rdb)
		}
	}

	codec, err := auth.NewTokenCodec(cfg.JWTSecret, auth.WithTTL(cfg.TokenTTL))
	if err != nil {
		return err
	}
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)

	svc, users := buildServices(dbConn, hasher, codec, statsCache, log)

	if cfg.Admin.Enabled() {
		created, err := users.EnsureAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			return err
		}
		if created {
			log.Info().Str("email", cfg.Admin.Email).Msg("bootstrap admin created")
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(handlers.NewHandler(svc, checks), codec, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func buildServices(dbConn *sqlx.DB, hasher *auth.PasswordHasher, codec *auth.TokenCodec, c cache.StatsCache, log zerolog.Logger) (handlers.Services, *services.UserService) {
	userRepo := repository.NewUserRepository(dbConn)
	storeRepo := repository.NewStoreRepository(dbConn)
	ratingRepo := repository.NewRatingRepository(dbConn)
	statsRepo := repository.NewStatsRepository(dbConn)

	users := services.NewUserService(userRepo, hasher)
	return handlers.Services{
		Auth:      services.NewAuthService(userRepo, hasher, codec),
		Users:     users,
		Stores:    services.NewStoreService(storeRepo, userRepo),
		Ratings:   services.NewRatingService(ratingRepo, storeRepo),
		Dashboard: services.NewDashboardService(statsRepo, storeRepo, c, log),
	}, users
}

func redisCheck(rdb *redis.Client) handlers.Check {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}
