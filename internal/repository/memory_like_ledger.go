package repository

import (
	"context"
	"fmt"
	"sync"

	"showcase/internal/domain/models"
)

// MemoryLikeLedger keeps the liked set in memory and stores the counter on the
// item itself through the item repository.
type MemoryLikeLedger struct {
	mu    sync.Mutex
	items ItemRepository
	liked map[string]struct{}
}

func NewMemoryLikeLedger(items ItemRepository) *MemoryLikeLedger {
	return &MemoryLikeLedger{
		items: items,
		liked: make(map[string]struct{}),
	}
}

// Toggle flips membership and moves the counter by one in the same critical
// section. The set is only touched after the counter update succeeded.
func (l *MemoryLikeLedger) Toggle(ctx context.Context, itemID string) (models.LikeState, error) {
	const op = "repository.MemoryLikeLedger.Toggle"

	l.mu.Lock()
	defer l.mu.Unlock()

	_, wasLiked := l.liked[itemID]

	delta := 1
	if wasLiked {
		delta = -1
	}

	item, err := l.items.AdjustLikes(ctx, itemID, delta)
	if err != nil {
		return models.LikeState{}, fmt.Errorf("%s: %w", op, err)
	}

	if wasLiked {
		delete(l.liked, itemID)
	} else {
		l.liked[itemID] = struct{}{}
	}

	return models.LikeState{
		ItemID:     itemID,
		IsLiked:    !wasLiked,
		TotalLikes: item.Likes,
	}, nil
}

func (l *MemoryLikeLedger) State(ctx context.Context, itemID string) (models.LikeState, error) {
	const op = "repository.MemoryLikeLedger.State"

	l.mu.Lock()
	defer l.mu.Unlock()

	item, err := l.items.GetByID(ctx, itemID)
	if err != nil {
		return models.LikeState{}, fmt.Errorf("%s: %w", op, err)
	}

	_, liked := l.liked[itemID]

	return models.LikeState{
		ItemID:     itemID,
		IsLiked:    liked,
		TotalLikes: item.Likes,
	}, nil
}

func (l *MemoryLikeLedger) LikedCount(ctx context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.liked), nil
}
