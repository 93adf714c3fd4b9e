package seed

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"showcase/internal/domain/models"

	"github.com/brianvoe/gofakeit/v6"
)

// DefaultSeed makes the generated catalogue identical across restarts.
const DefaultSeed int64 = 20240115

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func unsplash(photo string, w, h int) string {
	return fmt.Sprintf("https://images.unsplash.com/photo-%s?w=%d&h=%d&fit=crop", photo, w, h)
}

func featured() []models.GalleryItem {
	type entry struct {
		title, description, photo string
		author                    models.Author
		tags                      []string
		category                  string
		created                   string
		likes, views              int
	}

	entries := []entry{
		{
			"Sunset Over Mountains",
			"A breathtaking view of the sunset over the mountain range, captured during golden hour.",
			"1506905925346-21bda4d32df4",
			models.Author{ID: "user1", Name: "Alex Photography"},
			[]string{"nature", "sunset", "mountains", "landscape"},
			"Photography", "2024-01-15T08:30:00Z", 245, 1250,
		},
		{
			"Modern UI Design",
			"Clean and minimal user interface design for a mobile banking app.",
			"1551650975-87deedd944c3",
			models.Author{ID: "user2", Name: "Sarah Designer"},
			[]string{"ui", "mobile", "banking", "design"},
			"UI/UX Design", "2024-01-14T14:20:00Z", 189, 890,
		},
		{
			"Abstract Digital Art",
			"Colorful abstract composition created with digital painting techniques.",
			"1549317336-206569e8475c",
			models.Author{ID: "user3", Name: "Mike Artist"},
			[]string{"abstract", "digital", "colorful", "art"},
			"Digital Art", "2024-01-13T10:45:00Z", 156, 670,
		},
		{
			"City Architecture",
			"Modern skyscrapers reaching towards the sky in downtown area.",
			"1449824913935-59a10b8d2000",
			models.Author{ID: "user4", Name: "Emma Architecture"},
			[]string{"architecture", "city", "buildings", "urban"},
			"Architecture", "2024-01-12T16:15:00Z", 278, 1450,
		},
		{
			"Fashion Portrait",
			"Elegant fashion photography with dramatic lighting and styling.",
			"1469334031218-e382a71b716b",
			models.Author{ID: "user5", Name: "James Fashion"},
			[]string{"fashion", "portrait", "model", "photography"},
			"Fashion", "2024-01-11T11:30:00Z", 312, 1680,
		},
	}

	items := make([]models.GalleryItem, len(entries))
	for i, s := range entries {
		created := at(s.created)
		s.author.Avatar = fmt.Sprintf("https://i.pravatar.cc/100?img=%d", i+1)
		items[i] = models.GalleryItem{
			ID:           fmt.Sprint(i + 1),
			Title:        s.title,
			Description:  s.description,
			ImageURL:     unsplash(s.photo, 800, 600),
			ThumbnailURL: unsplash(s.photo, 300, 200),
			Author:       s.author,
			Tags:         s.tags,
			Category:     s.category,
			CreatedAt:    created,
			UpdatedAt:    created,
			Likes:        s.likes,
			Views:        s.views,
		}
	}
	return items
}

// Catalogue returns size demo items, newest first: five hand-picked entries
// followed by fillers generated from seed.
func Catalogue(size int, seed int64) []models.GalleryItem {
	if size <= 0 {
		return []models.GalleryItem{}
	}

	items := featured()
	if size <= len(items) {
		return items[:size]
	}

	f := gofakeit.New(seed)
	// fillers predate the featured items
	start := at("2023-06-01T00:00:00Z")
	end := at("2024-01-11T00:00:00Z")
	categories := models.Categories[:len(models.Categories)-1]

	for i := len(items) + 1; i <= size; i++ {
		created := f.DateRange(start, end).UTC().Truncate(time.Second)
		title := titleCase(f.Adjective() + " " + f.Noun())
		tags := []string{
			strings.ToLower(f.Noun()),
			strings.ToLower(f.Color()),
			strings.ToLower(f.HipsterWord()),
		}

		items = append(items, models.GalleryItem{
			ID:           f.UUID(),
			Title:        title,
			Description:  f.Sentence(12),
			ImageURL:     fmt.Sprintf("https://picsum.photos/id/%d/800/600", i+100),
			ThumbnailURL: fmt.Sprintf("https://picsum.photos/id/%d/300/200", i+100),
			Author: models.Author{
				ID:     fmt.Sprintf("user%d", i),
				Name:   f.Name(),
				Avatar: fmt.Sprintf("https://i.pravatar.cc/100?img=%d", i%70+1),
			},
			Tags:      dedupe(tags),
			Category:  f.RandomString(categories),
			CreatedAt: created,
			UpdatedAt: created,
			Likes:     f.Number(10, 509),
			Views:     f.Number(100, 2099),
		})
	}

	slices.SortStableFunc(items, func(a, b models.GalleryItem) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return items
}

func dedupe(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != "" && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
