package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"showcase/internal/domain/models"
	"showcase/internal/lib/logger/sl"
	"showcase/internal/metrics"
	"showcase/internal/repository"
	"showcase/internal/storage"
)

var ErrEmptyItemID = errors.New("item id is required")

type LikeService struct {
	log    *slog.Logger
	ledger repository.LikeLedger
}

func NewLikeService(log *slog.Logger, ledger repository.LikeLedger) *LikeService {
	return &LikeService{
		log:    log,
		ledger: ledger,
	}
}

// ToggleLike flips the liked state of the item for everyone.
func (s *LikeService) ToggleLike(ctx context.Context, itemID string) (models.LikeState, error) {
	const op = "service.LikeService.ToggleLike"
	log := s.log.With(
		slog.String("op", op),
		slog.String("item_id", itemID),
	)

	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return models.LikeState{}, fmt.Errorf("%s: %w", op, ErrEmptyItemID)
	}

	state, err := s.ledger.Toggle(ctx, itemID)
	if err != nil {
		if !errors.Is(err, storage.ErrItemNotFound) {
			log.Error("failed to toggle like", sl.Err(err))
		}
		return models.LikeState{}, fmt.Errorf("%s: %w", op, err)
	}

	metrics.LikeToggles.WithLabelValues(strconv.FormatBool(state.IsLiked)).Inc()
	log.Debug("like toggled", slog.Bool("liked", state.IsLiked), slog.Int("total", state.TotalLikes))

	return state, nil
}

func (s *LikeService) LikeState(ctx context.Context, itemID string) (models.LikeState, error) {
	const op = "service.LikeService.LikeState"

	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return models.LikeState{}, fmt.Errorf("%s: %w", op, ErrEmptyItemID)
	}

	state, err := s.ledger.State(ctx, itemID)
	if err != nil {
		return models.LikeState{}, fmt.Errorf("%s: %w", op, err)
	}

	return state, nil
}
