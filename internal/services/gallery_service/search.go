package services

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"showcase/internal/domain/models"
)

const (
	suggestedTags       = 10
	suggestedTitles     = 5
	autocompleteLimit   = 8
	autocompleteMinRune = 2
)

// Suggestions returns the first distinct tags in listing order, the titles of
// the most viewed items and the category list.
func (s *GalleryService) Suggestions(ctx context.Context) (models.Suggestions, error) {
	const op = "service.GalleryService.Suggestions"

	items, err := s.repo.Items.GetAll(ctx)
	if err != nil {
		return models.Suggestions{}, fmt.Errorf("%s: %w", op, err)
	}

	tags := newDistinct(suggestedTags)
	for _, item := range items {
		for _, tag := range item.Tags {
			tags.add(tag)
		}
	}

	byViews := slices.Clone(items)
	slices.SortStableFunc(byViews, func(a, b models.GalleryItem) int {
		return cmp.Compare(b.Views, a.Views)
	})
	titles := make([]string, 0, suggestedTitles)
	for _, item := range byViews[:min(suggestedTitles, len(byViews))] {
		titles = append(titles, item.Title)
	}

	return models.Suggestions{
		Tags:       tags.values,
		Titles:     titles,
		Categories: slices.Clone(models.Categories),
	}, nil
}

// Autocomplete matches titles, tags and author names containing query. Short
// queries return nothing.
func (s *GalleryService) Autocomplete(ctx context.Context, query string) ([]string, error) {
	const op = "service.GalleryService.Autocomplete"

	q := strings.ToLower(strings.TrimSpace(query))
	if utf8.RuneCountInString(q) < autocompleteMinRune {
		return []string{}, nil
	}

	items, err := s.repo.Items.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := newDistinct(autocompleteLimit)
	for _, item := range items {
		if out.full() {
			break
		}
		if strings.Contains(strings.ToLower(item.Title), q) {
			out.add(item.Title)
		}
		for _, tag := range item.Tags {
			if strings.Contains(strings.ToLower(tag), q) {
				out.add(tag)
			}
		}
		if strings.Contains(strings.ToLower(item.Author.Name), q) {
			out.add(item.Author.Name)
		}
	}

	return out.values, nil
}

type distinct struct {
	limit  int
	seen   map[string]struct{}
	values []string
}

func newDistinct(limit int) *distinct {
	return &distinct{
		limit:  limit,
		seen:   make(map[string]struct{}),
		values: make([]string, 0, limit),
	}
}

func (d *distinct) add(v string) {
	if d.full() {
		return
	}
	if _, ok := d.seen[v]; ok {
		return
	}
	d.seen[v] = struct{}{}
	d.values = append(d.values, v)
}

func (d *distinct) full() bool {
	return len(d.values) >= d.limit
}
