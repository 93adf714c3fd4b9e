package models

import (
	"encoding/json"
	"strings"
)

type SortBy string

const (
	SortCreated  SortBy = "created"
	SortTrending SortBy = "trending"
	SortLikes    SortBy = "likes"
	SortViews    SortBy = "views"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

const (
	DefaultPage  = 1
	DefaultLimit = 12
)

// QueryParams selects a page of the gallery listing.
type QueryParams struct {
	Query     string
	Category  string
	Tags      []string
	SortBy    SortBy
	SortOrder SortOrder
	Page      int
	Limit     int
}

// WithDefaults fills the zero sort fields. Page and limit are left as given so
// that invalid values can still be rejected.
func (p QueryParams) WithDefaults() QueryParams {
	if p.SortBy == "" {
		p.SortBy = SortCreated
	}
	if p.SortOrder == "" {
		p.SortOrder = SortDesc
	}
	return p
}

// Fingerprint summarises every filter and sort parameter. Two queries that
// differ only in page or limit share a fingerprint. Fields are JSON encoded so
// that no input value can shift into a neighbouring field.
func (p QueryParams) Fingerprint() string {
	tags := p.Tags
	if len(tags) == 0 {
		tags = nil
	}
	b, _ := json.Marshal([]any{p.Query, p.Category, tags, p.SortBy, p.SortOrder})
	return string(b)
}

// ParseTags splits the comma separated transport form of the tags parameter.
func ParseTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// PageInfo is the pagination block of a listing response.
type PageInfo struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// Page is one page of the listing.
type Page struct {
	Data       []GalleryItem `json:"data"`
	Pagination PageInfo      `json:"pagination"`
}
