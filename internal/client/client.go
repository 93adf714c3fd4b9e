package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"showcase/internal/domain/models"
	"showcase/internal/transport/http/dto"
)

var ErrNotFound = errors.New("not found")

// APIError is a non-2xx answer from the gallery API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gallery api %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("gallery api %d", e.StatusCode)
}

func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// Client talks to the gallery HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message"`
}

// ListItems fetches one page. Zero page or limit are left to the server.
func (c *Client) ListItems(ctx context.Context, params models.QueryParams) (models.Page, error) {
	q := url.Values{}
	if params.Query != "" {
		q.Set("query", params.Query)
	}
	if params.Category != "" {
		q.Set("category", params.Category)
	}
	if len(params.Tags) > 0 {
		q.Set("tags", strings.Join(params.Tags, ","))
	}
	if params.SortBy != "" {
		q.Set("sortBy", string(params.SortBy))
	}
	if params.SortOrder != "" {
		q.Set("sortOrder", string(params.SortOrder))
	}
	if params.Page != 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.Limit != 0 {
		q.Set("limit", strconv.Itoa(params.Limit))
	}

	target := c.baseURL + "/api/items"
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	var page models.Page
	if err := c.do(ctx, http.MethodGet, target, nil, &page); err != nil {
		return models.Page{}, err
	}
	if page.Data == nil {
		page.Data = []models.GalleryItem{}
	}
	return page, nil
}

func (c *Client) GetItem(ctx context.Context, id string) (models.GalleryItem, error) {
	var out envelope[models.GalleryItem]
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/api/items/"+url.PathEscape(id), nil, &out); err != nil {
		return models.GalleryItem{}, err
	}
	return out.Data, nil
}

func (c *Client) CreateItem(ctx context.Context, req dto.CreateItemRequest) (models.GalleryItem, error) {
	var out envelope[models.GalleryItem]
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/api/items", req, &out); err != nil {
		return models.GalleryItem{}, err
	}
	return out.Data, nil
}

func (c *Client) ToggleLike(ctx context.Context, itemID string) (models.LikeState, error) {
	var out envelope[models.LikeState]
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/api/likes", dto.LikeRequest{ItemID: itemID}, &out); err != nil {
		return models.LikeState{}, err
	}
	return out.Data, nil
}

func (c *Client) LikeState(ctx context.Context, itemID string) (models.LikeState, error) {
	var out envelope[models.LikeState]
	target := c.baseURL + "/api/likes?" + url.Values{"itemId": {itemID}}.Encode()
	if err := c.do(ctx, http.MethodGet, target, nil, &out); err != nil {
		return models.LikeState{}, err
	}
	return out.Data, nil
}

func (c *Client) do(ctx context.Context, method, target string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var failure struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &failure) == nil {
			apiErr.Code, apiErr.Message = failure.Error, failure.Message
		}
		return apiErr
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, target, err)
	}
	return nil
}
