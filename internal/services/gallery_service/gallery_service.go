package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"showcase/internal/domain/models"
	"showcase/internal/lib/logger/sl"
	"showcase/internal/metrics"
	"showcase/internal/repository"
	"showcase/internal/storage"
	"showcase/internal/transport/http/dto"

	"github.com/google/uuid"
)

var ErrValidation = errors.New("validation failed")

const (
	DefaultRelatedLimit = 6
	maxRelatedLimit     = 24
)

type Options struct {
	Author       models.Author
	DefaultLimit int
	MaxLimit     int
}

type GalleryService struct {
	log  *slog.Logger
	repo *repository.Repository
	opts Options
	now  func() time.Time
}

func NewGalleryService(log *slog.Logger, repo *repository.Repository, opts Options) *GalleryService {
	if opts.DefaultLimit < 1 {
		opts.DefaultLimit = models.DefaultLimit
	}
	if opts.MaxLimit < opts.DefaultLimit {
		opts.MaxLimit = opts.DefaultLimit
	}

	return &GalleryService{
		log:  log,
		repo: repo,
		opts: opts,
		now:  time.Now,
	}
}

// ListItems runs the listing query against the current repository contents.
// A zero page or limit means "use the default".
func (s *GalleryService) ListItems(ctx context.Context, params models.QueryParams) (models.Page, error) {
	const op = "service.GalleryService.ListItems"
	log := s.log.With(
		slog.String("op", op),
		slog.String("fingerprint", params.Fingerprint()),
	)

	if params.Page == 0 {
		params.Page = models.DefaultPage
	}
	if params.Limit == 0 {
		params.Limit = s.opts.DefaultLimit
	}
	if params.Limit > s.opts.MaxLimit {
		return models.Page{}, fmt.Errorf("%s: %w: limit must not exceed %d", op, ErrInvalidQuery, s.opts.MaxLimit)
	}

	items, err := s.repo.Items.GetAll(ctx)
	if err != nil {
		log.Error("failed to read items", sl.Err(err))
		return models.Page{}, fmt.Errorf("%s: %w", op, err)
	}

	page, err := Query(items, params, s.now())
	if err != nil {
		return models.Page{}, fmt.Errorf("%s: %w", op, err)
	}

	metrics.QueryResults.Observe(float64(page.Pagination.Total))
	log.Debug("listing served",
		slog.Int("page", page.Pagination.Page),
		slog.Int("total", page.Pagination.Total),
	)

	return page, nil
}

// GetItem returns the item and counts the view.
func (s *GalleryService) GetItem(ctx context.Context, id string) (models.GalleryItem, error) {
	const op = "service.GalleryService.GetItem"
	log := s.log.With(
		slog.String("op", op),
		slog.String("item_id", id),
	)

	item, err := s.repo.Items.IncrementViews(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrItemNotFound) {
			log.Error("failed to increment views", sl.Err(err))
		}
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, err)
	}

	metrics.ItemViews.Inc()

	return item, nil
}

// CreateItem validates the request, stamps server-side fields and stores the
// item at the head of the listing.
func (s *GalleryService) CreateItem(ctx context.Context, req dto.CreateItemRequest) (models.GalleryItem, error) {
	const op = "service.GalleryService.CreateItem"
	log := s.log.With(
		slog.String("op", op),
		slog.String("title", req.Title),
	)

	log.Info("creating item")

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return models.GalleryItem{}, fmt.Errorf("%s: %w: title is required", op, ErrValidation)
	}
	imageURL := strings.TrimSpace(req.ImageURL)
	if imageURL == "" {
		return models.GalleryItem{}, fmt.Errorf("%s: %w: imageUrl is required", op, ErrValidation)
	}
	category, ok := models.CanonicalCategory(req.Category)
	if !ok {
		return models.GalleryItem{}, fmt.Errorf("%s: %w: unknown category %q", op, ErrValidation, req.Category)
	}

	now := s.now().UTC()
	item := models.GalleryItem{
		ID:          uuid.NewString(),
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		ImageURL:    imageURL,
		Author:      s.opts.Author,
		Tags:        NormalizeTags(req.Tags),
		Category:    category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Items.Insert(ctx, item); err != nil {
		log.Error("failed to insert item", sl.Err(err))
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, err)
	}

	metrics.ItemsCreated.Inc()
	log.Info("item created", slog.String("id", item.ID))

	return item, nil
}

// RelatedItems returns other items of the same category, best trending first.
func (s *GalleryService) RelatedItems(ctx context.Context, id string, limit int) ([]models.GalleryItem, error) {
	const op = "service.GalleryService.RelatedItems"

	if limit <= 0 {
		limit = DefaultRelatedLimit
	}
	limit = min(limit, maxRelatedLimit)

	current, err := s.repo.Items.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	items, err := s.repo.Items.GetAll(ctx)
	if err != nil {
		s.log.Error("failed to read items", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	candidates := make([]models.GalleryItem, 0, len(items))
	for _, item := range items {
		if item.ID != current.ID {
			candidates = append(candidates, item)
		}
	}

	page, err := Query(candidates, models.QueryParams{
		Category:  current.Category,
		SortBy:    models.SortTrending,
		SortOrder: models.SortDesc,
		Page:      1,
		Limit:     limit,
	}, s.now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return page.Data, nil
}

func (s *GalleryService) StorageInfo(ctx context.Context) (models.StorageInfo, error) {
	const op = "service.GalleryService.StorageInfo"

	count, err := s.repo.Items.Count(ctx)
	if err != nil {
		return models.StorageInfo{}, fmt.Errorf("%s: %w", op, err)
	}

	liked, err := s.repo.Likes.LikedCount(ctx)
	if err != nil {
		return models.StorageInfo{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.StorageInfo{
		ItemBackend: s.repo.ItemBackend,
		LikeBackend: s.repo.LikeBackend,
		ItemCount:   count,
		LikedCount:  liked,
	}, nil
}

// NormalizeTags lowercases, trims and de-duplicates tags keeping first
// occurrences in order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
