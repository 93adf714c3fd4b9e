package repository

import (
	"context"
	"fmt"

	"showcase/internal/domain/models"
	redisapp "showcase/internal/storage/redis"

	"github.com/redis/go-redis/v9"
)

const likedSetKey = "likes:liked"

// toggleScript flips membership of ARGV[1] in KEYS[1] and returns 1 when the
// item is liked afterwards.
var toggleScript = redis.NewScript(`
if redis.call('SISMEMBER', KEYS[1], ARGV[1]) == 1 then
	redis.call('SREM', KEYS[1], ARGV[1])
	return 0
end
redis.call('SADD', KEYS[1], ARGV[1])
return 1
`)

// RedisLikeLedger keeps the liked set in redis so it is shared by every
// instance. Counters stay on the item; each membership flip moves them by
// exactly one.
type RedisLikeLedger struct {
	Client *redisapp.Client
	items  ItemRepository
}

func NewRedisLikeLedger(client *redisapp.Client, items ItemRepository) *RedisLikeLedger {
	return &RedisLikeLedger{Client: client, items: items}
}

func (r *RedisLikeLedger) Toggle(ctx context.Context, itemID string) (models.LikeState, error) {
	const op = "repository.RedisLikeLedger.Toggle"

	if _, err := r.items.GetByID(ctx, itemID); err != nil {
		return models.LikeState{}, fmt.Errorf("%s: %w", op, err)
	}

	liked, err := r.flip(ctx, itemID)
	if err != nil {
		return models.LikeState{}, fmt.Errorf("%s: %w", op, err)
	}

	delta := -1
	if liked {
		delta = 1
	}

	item, err := r.items.AdjustLikes(ctx, itemID, delta)
	if err != nil {
		// undo the flip so membership and counter stay paired
		if _, rerr := r.flip(context.WithoutCancel(ctx), itemID); rerr != nil {
			return models.LikeState{}, fmt.Errorf("%s: %w (rollback: %v)", op, err, rerr)
		}
		return models.LikeState{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.LikeState{
		ItemID:     itemID,
		IsLiked:    liked,
		TotalLikes: item.Likes,
	}, nil
}

func (r *RedisLikeLedger) State(ctx context.Context, itemID string) (models.LikeState, error) {
	const op = "repository.RedisLikeLedger.State"

	item, err := r.items.GetByID(ctx, itemID)
	if err != nil {
		return models.LikeState{}, fmt.Errorf("%s: %w", op, err)
	}

	liked, err := r.Client.SIsMember(ctx, likedSetKey, itemID).Result()
	if err != nil {
		return models.LikeState{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.LikeState{
		ItemID:     itemID,
		IsLiked:    liked,
		TotalLikes: item.Likes,
	}, nil
}

func (r *RedisLikeLedger) LikedCount(ctx context.Context) (int, error) {
	const op = "repository.RedisLikeLedger.LikedCount"

	n, err := r.Client.SCard(ctx, likedSetKey).Result()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return int(n), nil
}

func (r *RedisLikeLedger) flip(ctx context.Context, itemID string) (bool, error) {
	n, err := toggleScript.Run(ctx, r.Client, []string{likedSetKey}, itemID).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
