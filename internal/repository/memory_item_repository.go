package repository

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"showcase/internal/domain/models"
	"showcase/internal/lib/logger/sl"
	"showcase/internal/storage"
	"showcase/internal/storage/filestorage"
)

// MemoryItemRepo keeps items in process memory, newest first. When a snapshot
// storage is attached every mutation is written through to it.
type MemoryItemRepo struct {
	mu        sync.RWMutex
	log       *slog.Logger
	items     []models.GalleryItem
	snapshots filestorage.SnapshotStorage
}

func NewMemoryItemRepo(log *slog.Logger, snapshots filestorage.SnapshotStorage) *MemoryItemRepo {
	return &MemoryItemRepo{
		log:       log,
		items:     make([]models.GalleryItem, 0),
		snapshots: snapshots,
	}
}

// Load replaces the repository contents with the stored snapshot, if any.
func (r *MemoryItemRepo) Load(ctx context.Context) error {
	const op = "repository.MemoryItemRepo.Load"

	if r.snapshots == nil {
		return nil
	}

	items, err := r.snapshots.Load(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if items == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = items

	return nil
}

// Seed appends the given items, oldest last, skipping ids already present.
func (r *MemoryItemRepo) Seed(ctx context.Context, items []models.GalleryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	added := 0
	for _, item := range items {
		if r.indexOf(item.ID) >= 0 {
			continue
		}
		r.items = append(r.items, item.Clone())
		added++
	}

	if added > 0 {
		r.persist(ctx)
	}

	return nil
}

func (r *MemoryItemRepo) GetAll(ctx context.Context) ([]models.GalleryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.GalleryItem, len(r.items))
	for i := range r.items {
		out[i] = r.items[i].Clone()
	}

	return out, nil
}

func (r *MemoryItemRepo) GetByID(ctx context.Context, id string) (models.GalleryItem, error) {
	const op = "repository.MemoryItemRepo.GetByID"

	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, storage.ErrItemNotFound)
	}

	return r.items[idx].Clone(), nil
}

// Insert prepends the item so that GetAll stays newest first.
func (r *MemoryItemRepo) Insert(ctx context.Context, item models.GalleryItem) error {
	const op = "repository.MemoryItemRepo.Insert"

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(item.ID) >= 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrItemExists)
	}

	r.items = append([]models.GalleryItem{item.Clone()}, r.items...)
	r.persist(ctx)

	return nil
}

func (r *MemoryItemRepo) IncrementViews(ctx context.Context, id string) (models.GalleryItem, error) {
	const op = "repository.MemoryItemRepo.IncrementViews"

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, storage.ErrItemNotFound)
	}

	r.items[idx].Views++
	r.persist(ctx)

	return r.items[idx].Clone(), nil
}

func (r *MemoryItemRepo) AdjustLikes(ctx context.Context, id string, delta int) (models.GalleryItem, error) {
	const op = "repository.MemoryItemRepo.AdjustLikes"

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, storage.ErrItemNotFound)
	}

	r.items[idx].Likes = max(0, r.items[idx].Likes+delta)
	r.persist(ctx)

	return r.items[idx].Clone(), nil
}

func (r *MemoryItemRepo) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items), nil
}

// indexOf must be called with r.mu held.
func (r *MemoryItemRepo) indexOf(id string) int {
	for i := range r.items {
		if r.items[i].ID == id {
			return i
		}
	}
	return -1
}

// persist must be called with r.mu held. A failed write leaves the in-memory
// state authoritative; the next successful mutation rewrites the snapshot.
func (r *MemoryItemRepo) persist(ctx context.Context) {
	if r.snapshots == nil {
		return
	}

	if err := r.snapshots.Save(context.WithoutCancel(ctx), r.items); err != nil {
		r.log.Warn("failed to write snapshot",
			slog.String("path", r.snapshots.Path()),
			sl.Err(err),
		)
	}
}
