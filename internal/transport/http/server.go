package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"showcase/internal/domain/models"
	"showcase/internal/lib/logger/sl"
	galleryservice "showcase/internal/services/gallery_service"
	likeservice "showcase/internal/services/like_service"
	"showcase/internal/storage"
	"showcase/internal/transport/http/dto"
	"showcase/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"

	_ "showcase/docs"
)

// StatusClientClosedRequest is recorded when the client went away before the
// response was written.
const StatusClientClosedRequest = 499

type ItemService interface {
	ListItems(ctx context.Context, params models.QueryParams) (models.Page, error)
	GetItem(ctx context.Context, id string) (models.GalleryItem, error)
	CreateItem(ctx context.Context, req dto.CreateItemRequest) (models.GalleryItem, error)
	RelatedItems(ctx context.Context, id string, limit int) ([]models.GalleryItem, error)
	Suggestions(ctx context.Context) (models.Suggestions, error)
	Autocomplete(ctx context.Context, query string) ([]string, error)
	StorageInfo(ctx context.Context) (models.StorageInfo, error)
}

type LikeService interface {
	ToggleLike(ctx context.Context, itemID string) (models.LikeState, error)
	LikeState(ctx context.Context, itemID string) (models.LikeState, error)
}

type Routers struct {
	log         *slog.Logger
	ItemService ItemService
	LikeService LikeService

	// latency delays listing and detail responses.
	latency time.Duration
}

func NewRouter(log *slog.Logger, itemService ItemService, likeService LikeService, latency time.Duration) *Routers {
	return &Routers{
		log:         log,
		ItemService: itemService,
		LikeService: likeService,
		latency:     latency,
	}
}

// ListItems godoc
// @Summary List gallery items
// @Description Filters, sorts and paginates the gallery.
// @Tags items
// @Produce json
// @Param query query string false "Free text matched against title, description, tags and author"
// @Param category query string false "Category, \"all\" disables the filter"
// @Param tags query string false "Comma separated tags"
// @Param sortBy query string false "created, trending, likes or views"
// @Param sortOrder query string false "asc or desc"
// @Param page query int false "Page, starting at 1"
// @Param limit query int false "Page size"
// @Success 200 {object} response.ListResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/items [get]
func (r *Routers) ListItems(c echo.Context) error {
	const op = "http.routers.ListItems"

	log := r.log.With(
		slog.String("op", op),
	)

	var q dto.ListItemsQuery
	err := echo.QueryParamsBinder(c).
		String("query", &q.Query).
		String("category", &q.Category).
		String("tags", &q.Tags).
		String("sortBy", &q.SortBy).
		String("sortOrder", &q.SortOrder).
		Int("page", &q.Page).
		Int("limit", &q.Limit).
		BindError()
	if err != nil {
		return c.JSON(http.StatusBadRequest, invalidRequest(err.Error()))
	}

	params := c.QueryParams()
	if params.Has("page") && q.Page < 1 {
		return c.JSON(http.StatusBadRequest, invalidRequest("page must be at least 1"))
	}
	if params.Has("limit") && q.Limit < 1 {
		return c.JSON(http.StatusBadRequest, invalidRequest("limit must be at least 1"))
	}

	if err := c.Validate(q); err != nil {
		return c.JSON(http.StatusBadRequest, invalidRequest(err.Error()))
	}

	if err := r.wait(c.Request().Context()); err != nil {
		return r.fail(c, log, err)
	}

	page, err := r.ItemService.ListItems(c.Request().Context(), models.QueryParams{
		Query:     q.Query,
		Category:  q.Category,
		Tags:      models.ParseTags(q.Tags),
		SortBy:    models.SortBy(q.SortBy),
		SortOrder: models.SortOrder(q.SortOrder),
		Page:      q.Page,
		Limit:     q.Limit,
	})
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.ListResponse{
		Data:       page.Data,
		Pagination: page.Pagination,
	})
}

// GetItem godoc
// @Summary Get an item
// @Description Returns one item and counts the view.
// @Tags items
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} response.Response{data=models.GalleryItem}
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/items/{id} [get]
func (r *Routers) GetItem(c echo.Context) error {
	const op = "http.routers.GetItem"

	log := r.log.With(
		slog.String("op", op),
		slog.String("item_id", c.Param("id")),
	)

	if err := r.wait(c.Request().Context()); err != nil {
		return r.fail(c, log, err)
	}

	item, err := r.ItemService.GetItem(c.Request().Context(), c.Param("id"))
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(item))
}

// CreateItem godoc
// @Summary Create an item
// @Tags items
// @Accept json
// @Produce json
// @Param request body dto.CreateItemRequest true "New item"
// @Success 201 {object} response.Response{data=models.GalleryItem}
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/items [post]
func (r *Routers) CreateItem(c echo.Context) error {
	const op = "http.routers.CreateItem"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.CreateItemRequest

	if err := c.Bind(&req); err != nil {
		log.Warn("failed to bind request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("validation_error", err.Error()))
	}

	item, err := r.ItemService.CreateItem(c.Request().Context(), req)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusCreated, response.Response{
		Success: true,
		Data:    item,
		Message: "Item created successfully",
	})
}

// RelatedItems godoc
// @Summary Related items
// @Description Items of the same category ranked by trending score.
// @Tags items
// @Produce json
// @Param id path string true "Item ID"
// @Param limit query int false "Maximum number of items" default(6)
// @Success 200 {object} response.Response{data=[]models.GalleryItem}
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/items/{id}/related [get]
func (r *Routers) RelatedItems(c echo.Context) error {
	const op = "http.routers.RelatedItems"

	log := r.log.With(
		slog.String("op", op),
		slog.String("item_id", c.Param("id")),
	)

	limit := galleryservice.DefaultRelatedLimit
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
		return c.JSON(http.StatusBadRequest, invalidRequest(err.Error()))
	}

	items, err := r.ItemService.RelatedItems(c.Request().Context(), c.Param("id"), limit)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(items))
}

// ToggleLike godoc
// @Summary Like or unlike an item
// @Tags likes
// @Accept json
// @Produce json
// @Param request body dto.LikeRequest true "Item to toggle"
// @Success 200 {object} response.Response{data=models.LikeState}
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/likes [post]
func (r *Routers) ToggleLike(c echo.Context) error {
	const op = "http.routers.ToggleLike"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.LikeRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, invalidRequest("itemId is required"))
	}

	state, err := r.LikeService.ToggleLike(c.Request().Context(), req.ItemID)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(state))
}

// LikeState godoc
// @Summary Like state of an item
// @Tags likes
// @Produce json
// @Param itemId query string true "Item ID"
// @Success 200 {object} response.Response{data=models.LikeState}
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/likes [get]
func (r *Routers) LikeState(c echo.Context) error {
	const op = "http.routers.LikeState"

	log := r.log.With(
		slog.String("op", op),
	)

	state, err := r.LikeService.LikeState(c.Request().Context(), c.QueryParam("itemId"))
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(state))
}

// Search godoc
// @Summary Search helpers
// @Description type=suggestions returns tags, popular titles and categories; type=autocomplete returns matches for query.
// @Tags search
// @Produce json
// @Param type query string false "suggestions (default) or autocomplete"
// @Param query query string false "Text to complete"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Router /api/search [get]
func (r *Routers) Search(c echo.Context) error {
	const op = "http.routers.Search"

	log := r.log.With(
		slog.String("op", op),
	)

	ctx := c.Request().Context()

	switch c.QueryParam("type") {
	case "", "suggestions":
		s, err := r.ItemService.Suggestions(ctx)
		if err != nil {
			return r.fail(c, log, err)
		}
		return c.JSON(http.StatusOK, response.SuccessResponse(s))
	case "autocomplete":
		matches, err := r.ItemService.Autocomplete(ctx, c.QueryParam("query"))
		if err != nil {
			return r.fail(c, log, err)
		}
		return c.JSON(http.StatusOK, response.SuccessResponse(matches))
	default:
		return c.JSON(http.StatusBadRequest, invalidRequest("type must be suggestions or autocomplete"))
	}
}

// StorageInfo godoc
// @Summary Storage diagnostics
// @Tags debug
// @Produce json
// @Success 200 {object} response.Response{data=models.StorageInfo}
// @Router /api/debug [get]
func (r *Routers) StorageInfo(c echo.Context) error {
	const op = "http.routers.StorageInfo"

	log := r.log.With(
		slog.String("op", op),
	)

	info, err := r.ItemService.StorageInfo(c.Request().Context())
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(info))
}

// fail maps service errors to status codes. Unexpected errors are logged and
// answered with a generic message.
func (r *Routers) fail(c echo.Context, log *slog.Logger, err error) error {
	switch {
	case errors.Is(err, galleryservice.ErrValidation),
		errors.Is(err, galleryservice.ErrInvalidQuery),
		errors.Is(err, likeservice.ErrEmptyItemID):
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("validation_error", err.Error()))
	case errors.Is(err, storage.ErrItemNotFound):
		return c.JSON(http.StatusNotFound, response.ErrItemNotFound)
	case errors.Is(err, context.Canceled):
		log.Debug("request cancelled")
		return echo.NewHTTPError(StatusClientClosedRequest, "request cancelled")
	default:
		log.Error("request failed", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}
}

func (r *Routers) wait(ctx context.Context) error {
	if r.latency <= 0 {
		return nil
	}

	t := time.NewTimer(r.latency)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func invalidRequest(message string) response.ErrorResponse {
	return response.ErrorResponseWithDetails("invalid_request", message)
}
