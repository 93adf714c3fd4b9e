package app

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	httpapp "showcase/internal/app/http"
	"showcase/internal/config"
	"showcase/internal/domain/models"
	"showcase/internal/lib/logger/sl"
	"showcase/internal/repository"
	"showcase/internal/seed"
	galleryservice "showcase/internal/services/gallery_service"
	likeservice "showcase/internal/services/like_service"
	"showcase/internal/storage/filestorage"
	"showcase/internal/storage/postgresql"
	redisapp "showcase/internal/storage/redis"
	httprouters "showcase/internal/transport/http"
	"showcase/migrations"
)

type App struct {
	log        *slog.Logger
	HTTPServer *httpapp.Server
	Repository *repository.Repository

	closers []func()
}

// New wires storage, services and the HTTP server from cfg. Resources opened
// before a failure are released.
func New(ctx context.Context, log *slog.Logger, cfg *config.Config) (_ *App, err error) {
	const op = "app.New"

	a := &App{log: log}
	defer func() {
		if err != nil {
			a.Stop()
		}
	}()

	items, err := a.itemRepository(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	likes, err := a.likeLedger(ctx, cfg, items)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a.Repository = repository.NewRepository(items, likes, cfg.Storage.Backend, cfg.Likes.Backend)

	gallery := galleryservice.NewGalleryService(log, a.Repository, galleryservice.Options{
		Author: models.Author{
			ID:     cfg.Author.ID,
			Name:   cfg.Author.Name,
			Avatar: cfg.Author.Avatar,
		},
		DefaultLimit: cfg.Listing.DefaultLimit,
		MaxLimit:     cfg.Listing.MaxLimit,
	})
	likeService := likeservice.NewLikeService(log, likes)

	routers := httprouters.NewRouter(log, gallery, likeService, cfg.Listing.SimulatedLatency)
	a.HTTPServer = httpapp.New(log, cfg.HTTP, routers)
	a.HTTPServer.BuildRouters()

	return a, nil
}

func (a *App) itemRepository(ctx context.Context, cfg *config.Config) (repository.ItemRepository, error) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		if err := migrations.Up(cfg.Storage.DSN); err != nil {
			return nil, err
		}

		pg, err := postgresql.New(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pg.Stop)

		repo := repository.NewPostgresItemRepo(pg.Pool())
		if cfg.Storage.Seed {
			if err := seedPostgres(ctx, repo, cfg.Storage.SeedSize); err != nil {
				return nil, err
			}
		}
		return repo, nil

	default:
		var snapshots filestorage.SnapshotStorage
		if cfg.Storage.SnapshotPath != "" {
			local, err := filestorage.NewLocalSnapshotStorage(cfg.Storage.SnapshotPath)
			if err != nil {
				return nil, err
			}
			snapshots = local
		}

		repo := repository.NewMemoryItemRepo(a.log, snapshots)
		if err := repo.Load(ctx); err != nil {
			return nil, err
		}

		count, err := repo.Count(ctx)
		if err != nil {
			return nil, err
		}
		if cfg.Storage.Seed && count == 0 {
			if err := repo.Seed(ctx, seed.Catalogue(cfg.Storage.SeedSize, seed.DefaultSeed)); err != nil {
				return nil, err
			}
		}
		return repo, nil
	}
}

// seedPostgres inserts the catalogue oldest first so the newest ends on top.
func seedPostgres(ctx context.Context, repo *repository.PostgresItemRepo, size int) error {
	count, err := repo.Count(ctx)
	if err != nil || count > 0 {
		return err
	}

	items := seed.Catalogue(size, seed.DefaultSeed)
	slices.Reverse(items)
	for _, item := range items {
		if err := repo.Insert(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) likeLedger(ctx context.Context, cfg *config.Config, items repository.ItemRepository) (repository.LikeLedger, error) {
	if cfg.Likes.Backend != config.BackendRedis {
		return repository.NewMemoryLikeLedger(items), nil
	}

	client := redisapp.NewClient(cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB)
	a.closers = append(a.closers, func() {
		if err := client.Close(); err != nil {
			a.log.Warn("failed to close redis client", sl.Err(err))
		}
	})

	if err := client.HealthCheck(ctx); err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	return repository.NewRedisLikeLedger(client, items), nil
}

// Stop releases storage connections in reverse order of opening.
func (a *App) Stop() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
