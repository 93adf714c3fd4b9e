package dto

// CreateItemRequest is the body of POST /api/items.
type CreateItemRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	ImageURL    string   `json:"imageUrl" validate:"required,url"`
	Tags        []string `json:"tags" validate:"max=20,dive,max=40"`
	Category    string   `json:"category" validate:"required,category"`
}

// ListItemsQuery carries the listing query string. Page and Limit stay zero
// when absent so defaults can be told apart from explicit values.
type ListItemsQuery struct {
	Query     string `validate:"max=200"`
	Category  string
	Tags      string
	SortBy    string `validate:"omitempty,oneof=created trending likes views"`
	SortOrder string `validate:"omitempty,oneof=asc desc"`
	Page      int
	Limit     int
}

type LikeRequest struct {
	ItemID string `json:"itemId" validate:"required"`
}
