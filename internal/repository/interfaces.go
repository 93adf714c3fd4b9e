package repository

import (
	"context"

	"showcase/internal/domain/models"
)

// ItemRepository holds the gallery items. GetAll returns items newest first.
// Returned items never alias repository memory.
type ItemRepository interface {
	GetAll(ctx context.Context) ([]models.GalleryItem, error)
	GetByID(ctx context.Context, id string) (models.GalleryItem, error)
	Insert(ctx context.Context, item models.GalleryItem) error
	IncrementViews(ctx context.Context, id string) (models.GalleryItem, error)
	// AdjustLikes adds delta to the likes counter, flooring the result at 0.
	AdjustLikes(ctx context.Context, id string, delta int) (models.GalleryItem, error)
	Count(ctx context.Context) (int, error)
}

// LikeLedger tracks the process-global liked set and the like counters.
type LikeLedger interface {
	Toggle(ctx context.Context, itemID string) (models.LikeState, error)
	State(ctx context.Context, itemID string) (models.LikeState, error)
	LikedCount(ctx context.Context) (int, error)
}
