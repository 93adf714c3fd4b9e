package services

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"showcase/internal/domain/models"
)

var ErrInvalidQuery = errors.New("invalid query")

const trendingDecayPerDay = 0.1

// TrendingScore favours liked and viewed items and decays with age. Items
// dated in the future count as brand new.
func TrendingScore(item models.GalleryItem, now time.Time) float64 {
	days := float64(now.Sub(item.CreatedAt).Milliseconds()) / float64(24*time.Hour/time.Millisecond)
	days = max(days, 0)
	return float64(item.Likes*2+item.Views) / (1 + days*trendingDecayPerDay)
}

// Query filters, sorts and paginates items without modifying them. Filters
// apply in order text, category, tags; pagination counts the filtered set.
// Items that compare equal keep their relative input order.
func Query(items []models.GalleryItem, params models.QueryParams, now time.Time) (models.Page, error) {
	params = params.WithDefaults()

	if params.Page < 1 {
		return models.Page{}, fmt.Errorf("%w: page must be at least 1", ErrInvalidQuery)
	}
	if params.Limit < 1 {
		return models.Page{}, fmt.Errorf("%w: limit must be at least 1", ErrInvalidQuery)
	}

	key, err := sortKey(params.SortBy, now)
	if err != nil {
		return models.Page{}, err
	}

	var desc bool
	switch params.SortOrder {
	case models.SortAsc:
	case models.SortDesc:
		desc = true
	default:
		return models.Page{}, fmt.Errorf("%w: unknown sort order %q", ErrInvalidQuery, params.SortOrder)
	}

	matched := filter(items, params)

	type ranked struct {
		item models.GalleryItem
		key  float64
	}
	rs := make([]ranked, len(matched))
	for i, item := range matched {
		rs[i] = ranked{item: item, key: key(item)}
	}
	slices.SortStableFunc(rs, func(a, b ranked) int {
		if desc {
			return cmp.Compare(b.key, a.key)
		}
		return cmp.Compare(a.key, b.key)
	})

	total := len(rs)
	totalPages := (total + params.Limit - 1) / params.Limit
	start := min((params.Page-1)*params.Limit, total)
	end := min(start+params.Limit, total)

	data := make([]models.GalleryItem, 0, end-start)
	for _, r := range rs[start:end] {
		data = append(data, r.item.Clone())
	}

	return models.Page{
		Data: data,
		Pagination: models.PageInfo{
			Page:       params.Page,
			Limit:      params.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    params.Page < totalPages,
			HasPrev:    params.Page > 1,
		},
	}, nil
}

// Matches reports whether the item passes every filter in params.
func Matches(item models.GalleryItem, params models.QueryParams) bool {
	return matchesText(item, strings.ToLower(strings.TrimSpace(params.Query))) &&
		matchesCategory(item, params.Category) &&
		matchesTags(item, params.Tags)
}

func filter(items []models.GalleryItem, params models.QueryParams) []models.GalleryItem {
	out := make([]models.GalleryItem, 0, len(items))
	for _, item := range items {
		if Matches(item, params) {
			out = append(out, item)
		}
	}
	return out
}

func matchesText(item models.GalleryItem, q string) bool {
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(item.Title), q) ||
		strings.Contains(strings.ToLower(item.Description), q) ||
		strings.Contains(strings.ToLower(item.Author.Name), q) {
		return true
	}
	for _, tag := range item.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func matchesCategory(item models.GalleryItem, category string) bool {
	category = strings.TrimSpace(category)
	if category == "" || strings.EqualFold(category, "all") {
		return true
	}
	return strings.EqualFold(item.Category, category)
}

// matchesTags passes items having any tag that contains any wanted tag.
func matchesTags(item models.GalleryItem, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, w := range wanted {
		w = strings.ToLower(w)
		for _, tag := range item.Tags {
			if strings.Contains(strings.ToLower(tag), w) {
				return true
			}
		}
	}
	return false
}

func sortKey(by models.SortBy, now time.Time) (func(models.GalleryItem) float64, error) {
	switch by {
	case models.SortCreated:
		return func(it models.GalleryItem) float64 { return float64(it.CreatedAt.UnixMilli()) }, nil
	case models.SortLikes:
		return func(it models.GalleryItem) float64 { return float64(it.Likes) }, nil
	case models.SortViews:
		return func(it models.GalleryItem) float64 { return float64(it.Views) }, nil
	case models.SortTrending:
		return func(it models.GalleryItem) float64 { return TrendingScore(it, now) }, nil
	default:
		return nil, fmt.Errorf("%w: unknown sort field %q", ErrInvalidQuery, by)
	}
}
