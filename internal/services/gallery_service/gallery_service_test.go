package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"showcase/internal/domain/models"
	"showcase/internal/lib/logger/handlers/slogdiscard"
	"showcase/internal/repository"
	"showcase/internal/storage"
	"showcase/internal/transport/http/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) GetAll(ctx context.Context) ([]models.GalleryItem, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.GalleryItem), args.Error(1)
}

func (m *MockItemRepository) GetByID(ctx context.Context, id string) (models.GalleryItem, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.GalleryItem), args.Error(1)
}

func (m *MockItemRepository) Insert(ctx context.Context, item models.GalleryItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) IncrementViews(ctx context.Context, id string) (models.GalleryItem, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.GalleryItem), args.Error(1)
}

func (m *MockItemRepository) AdjustLikes(ctx context.Context, id string, delta int) (models.GalleryItem, error) {
	args := m.Called(ctx, id, delta)
	return args.Get(0).(models.GalleryItem), args.Error(1)
}

func (m *MockItemRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockLikeLedger struct {
	mock.Mock
}

func (m *MockLikeLedger) Toggle(ctx context.Context, itemID string) (models.LikeState, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).(models.LikeState), args.Error(1)
}

func (m *MockLikeLedger) State(ctx context.Context, itemID string) (models.LikeState, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).(models.LikeState), args.Error(1)
}

func (m *MockLikeLedger) LikedCount(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

var testAuthor = models.Author{ID: "current-user", Name: "Current User"}

func newTestService(items *MockItemRepository, likes *MockLikeLedger) *GalleryService {
	repo := repository.NewRepository(items, likes, "memory", "memory")
	s := NewGalleryService(slogdiscard.NewDiscardLogger(), repo, Options{
		Author:       testAuthor,
		DefaultLimit: 12,
		MaxLimit:     100,
	})
	s.now = func() time.Time { return testNow }
	return s
}

func TestGalleryService_CreateItem(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mockRepo := new(MockItemRepository)
		service := newTestService(mockRepo, nil)

		mockRepo.On("Insert", ctx, mock.MatchedBy(func(item models.GalleryItem) bool {
			return item.Title == "Sunset" &&
				item.Category == "Photography" &&
				item.Likes == 0 && item.Views == 0 &&
				item.CreatedAt.Equal(testNow) && item.UpdatedAt.Equal(testNow)
		})).Return(nil)

		item, err := service.CreateItem(ctx, dto.CreateItemRequest{
			Title:       "  Sunset ",
			Description: " warm ",
			ImageURL:    "https://example.com/sunset.jpg",
			Tags:        []string{"Nature", "nature ", "", "Golden Hour"},
			Category:    "photography",
		})
		require.NoError(t, err)

		_, parseErr := uuid.Parse(item.ID)
		assert.NoError(t, parseErr)
		assert.Equal(t, "Sunset", item.Title)
		assert.Equal(t, "warm", item.Description)
		assert.Equal(t, []string{"nature", "golden hour"}, item.Tags)
		assert.Equal(t, testAuthor, item.Author)
		mockRepo.AssertExpectations(t)
	})

	tests := []struct {
		name string
		req  dto.CreateItemRequest
	}{
		{"missing title", dto.CreateItemRequest{ImageURL: "https://e.com/a.jpg", Category: "Nature"}},
		{"blank title", dto.CreateItemRequest{Title: "   ", ImageURL: "https://e.com/a.jpg", Category: "Nature"}},
		{"missing imageUrl", dto.CreateItemRequest{Title: "A", Category: "Nature"}},
		{"unknown category", dto.CreateItemRequest{Title: "A", ImageURL: "https://e.com/a.jpg", Category: "Food"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockItemRepository)
			service := newTestService(mockRepo, nil)

			_, err := service.CreateItem(ctx, tt.req)
			assert.ErrorIs(t, err, ErrValidation)
			mockRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
		})
	}

	t.Run("repository error", func(t *testing.T) {
		mockRepo := new(MockItemRepository)
		service := newTestService(mockRepo, nil)

		mockRepo.On("Insert", ctx, mock.Anything).Return(storage.ErrItemExists)

		_, err := service.CreateItem(ctx, dto.CreateItemRequest{Title: "A", ImageURL: "https://e.com/a.jpg", Category: "Nature"})
		assert.ErrorIs(t, err, storage.ErrItemExists)
	})
}

func TestGalleryService_ListItems(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults", func(t *testing.T) {
		mockRepo := new(MockItemRepository)
		service := newTestService(mockRepo, nil)
		mockRepo.On("GetAll", ctx).Return(makeItems(30), nil)

		page, err := service.ListItems(ctx, models.QueryParams{})
		require.NoError(t, err)
		assert.Len(t, page.Data, 12)
		assert.Equal(t, 1, page.Pagination.Page)
		assert.Equal(t, 3, page.Pagination.TotalPages)
	})

	t.Run("limit above maximum", func(t *testing.T) {
		mockRepo := new(MockItemRepository)
		service := newTestService(mockRepo, nil)

		_, err := service.ListItems(ctx, models.QueryParams{Page: 1, Limit: 101})
		assert.ErrorIs(t, err, ErrInvalidQuery)
		mockRepo.AssertNotCalled(t, "GetAll", mock.Anything)
	})

	t.Run("negative page", func(t *testing.T) {
		mockRepo := new(MockItemRepository)
		service := newTestService(mockRepo, nil)
		mockRepo.On("GetAll", ctx).Return(makeItems(3), nil)

		_, err := service.ListItems(ctx, models.QueryParams{Page: -2})
		assert.ErrorIs(t, err, ErrInvalidQuery)
	})

	t.Run("repository error", func(t *testing.T) {
		mockRepo := new(MockItemRepository)
		service := newTestService(mockRepo, nil)
		mockRepo.On("GetAll", ctx).Return([]models.GalleryItem(nil), errors.New("db down"))

		_, err := service.ListItems(ctx, models.QueryParams{})
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidQuery)
	})
}

func TestGalleryService_GetItem(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockItemRepository)
	service := newTestService(mockRepo, nil)

	mockRepo.On("IncrementViews", ctx, "a").Return(models.GalleryItem{ID: "a", Views: 4}, nil)
	mockRepo.On("IncrementViews", ctx, "missing").Return(models.GalleryItem{}, storage.ErrItemNotFound)

	item, err := service.GetItem(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 4, item.Views)

	_, err = service.GetItem(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrItemNotFound)
}

func TestGalleryService_RelatedItems(t *testing.T) {
	ctx := context.Background()
	old := testNow.Add(-48 * time.Hour)

	items := []models.GalleryItem{
		{ID: "self", Category: "Nature", Likes: 100, CreatedAt: testNow},
		{ID: "low", Category: "Nature", Likes: 1, CreatedAt: old},
		{ID: "other", Category: "Abstract", Likes: 50, CreatedAt: testNow},
		{ID: "high", Category: "Nature", Likes: 20, CreatedAt: old},
	}

	mockRepo := new(MockItemRepository)
	service := newTestService(mockRepo, nil)
	mockRepo.On("GetByID", ctx, "self").Return(items[0], nil)
	mockRepo.On("GetByID", ctx, "missing").Return(models.GalleryItem{}, storage.ErrItemNotFound)
	mockRepo.On("GetAll", ctx).Return(items, nil)

	related, err := service.RelatedItems(ctx, "self", 0)
	require.NoError(t, err)
	require.Len(t, related, 2)
	assert.Equal(t, "high", related[0].ID)
	assert.Equal(t, "low", related[1].ID)

	related, err = service.RelatedItems(ctx, "self", 1)
	require.NoError(t, err)
	assert.Len(t, related, 1)

	_, err = service.RelatedItems(ctx, "missing", 6)
	assert.ErrorIs(t, err, storage.ErrItemNotFound)
}

func TestGalleryService_Suggestions(t *testing.T) {
	ctx := context.Background()
	items := []models.GalleryItem{
		{Title: "A", Tags: []string{"t1", "t2"}, Views: 1},
		{Title: "B", Tags: []string{"t2", "t3"}, Views: 50},
		{Title: "C", Tags: []string{"t4", "t5", "t6", "t7", "t8", "t9", "t10", "t11"}, Views: 10},
		{Title: "D", Views: 30},
		{Title: "E", Views: 20},
		{Title: "F", Views: 0},
	}

	mockRepo := new(MockItemRepository)
	service := newTestService(mockRepo, nil)
	mockRepo.On("GetAll", ctx).Return(items, nil)

	s, err := service.Suggestions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2", "t3", "t4", "t5", "t6", "t7", "t8", "t9", "t10"}, s.Tags)
	assert.Equal(t, []string{"B", "D", "E", "C", "A"}, s.Titles)
	assert.Equal(t, models.Categories, s.Categories)
}

func TestGalleryService_Autocomplete(t *testing.T) {
	ctx := context.Background()
	items := []models.GalleryItem{
		{Title: "Sunset Beach", Tags: []string{"sunset", "beach"}, Author: models.Author{Name: "Sunny Lee"}},
		{Title: "Sunset Beach", Tags: []string{"summer"}, Author: models.Author{Name: "Kim"}},
	}

	mockRepo := new(MockItemRepository)
	service := newTestService(mockRepo, nil)
	mockRepo.On("GetAll", ctx).Return(items, nil)

	got, err := service.Autocomplete(ctx, "s")
	require.NoError(t, err)
	assert.Empty(t, got)
	mockRepo.AssertNotCalled(t, "GetAll", mock.Anything)

	got, err = service.Autocomplete(ctx, "SUN")
	require.NoError(t, err)
	assert.Equal(t, []string{"Sunset Beach", "sunset", "Sunny Lee"}, got)
}

func TestGalleryService_StorageInfo(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockItemRepository)
	mockLikes := new(MockLikeLedger)
	service := newTestService(mockRepo, mockLikes)

	mockRepo.On("Count", ctx).Return(42, nil)
	mockLikes.On("LikedCount", ctx).Return(3, nil)

	info, err := service.StorageInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StorageInfo{ItemBackend: "memory", LikeBackend: "memory", ItemCount: 42, LikedCount: 3}, info)
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{}, NormalizeTags(nil))
	assert.Equal(t, []string{"a", "b"}, NormalizeTags([]string{" A", "b", "a ", "  "}))
}
