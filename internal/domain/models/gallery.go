package models

import (
	"strings"
	"time"
)

// Categories is the fixed set of gallery categories.
var Categories = []string{
	"Photography",
	"Digital Art",
	"UI/UX Design",
	"Illustration",
	"Architecture",
	"Fashion",
	"Nature",
	"Abstract",
	"Others",
}

// CanonicalCategory returns the category from Categories matching name
// case-insensitively.
func CanonicalCategory(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, c := range Categories {
		if strings.EqualFold(c, name) {
			return c, true
		}
	}
	return "", false
}

// Author travels with the item and has no lifecycle of its own.
type Author struct {
	ID     string `json:"id"`               // Author identifier
	Name   string `json:"name"`             // Display name
	Avatar string `json:"avatar,omitempty"` // Avatar URL
}

// GalleryItem is a single gallery entry.
type GalleryItem struct {
	ID           string    `json:"id"`                     // Unique item identifier
	Title        string    `json:"title"`                  // Item title
	Description  string    `json:"description,omitempty"`  // Optional description
	ImageURL     string    `json:"imageUrl"`               // Full size image
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"` // Optional thumbnail
	Author       Author    `json:"author"`                 // Embedded author
	Tags         []string  `json:"tags"`                   // Lowercase tags in creation order
	Category     string    `json:"category"`               // One of Categories
	CreatedAt    time.Time `json:"createdAt"`              // Creation time
	UpdatedAt    time.Time `json:"updatedAt"`              // Last update time
	Likes        int       `json:"likes"`                  // Like counter
	Views        int       `json:"views"`                  // View counter
}

// Clone returns a copy that shares no slices with the receiver.
func (i GalleryItem) Clone() GalleryItem {
	out := i
	if i.Tags != nil {
		out.Tags = append([]string(nil), i.Tags...)
	}
	return out
}

// LikeState is the like status of one item.
type LikeState struct {
	ItemID     string `json:"itemId"`
	IsLiked    bool   `json:"isLiked"`
	TotalLikes int    `json:"totalLikes"`
}

// Suggestions feed the search box before the user types.
type Suggestions struct {
	Tags       []string `json:"tags"`
	Titles     []string `json:"titles"`
	Categories []string `json:"categories"`
}

// StorageInfo describes the active backends.
type StorageInfo struct {
	ItemBackend string `json:"itemBackend"`
	LikeBackend string `json:"likeBackend"`
	ItemCount   int    `json:"itemCount"`
	LikedCount  int    `json:"likedCount"`
}
