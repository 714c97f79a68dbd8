package handler

import (
	"github.com/labstack/echo/v4"

	"campusfind/internal/usecase"
	"campusfind/pkg/errors"
	"campusfind/pkg/response"
	"campusfind/pkg/utils"
)

type ItemHandler struct {
	itemUseCase *usecase.ItemUseCase
}

func NewItemHandler(itemUseCase *usecase.ItemUseCase) *ItemHandler {
	return &ItemHandler{
		itemUseCase: itemUseCase,
	}
}

type createItemRequest struct {
	ItemName    string `json:"item_name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Location    string `json:"location"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
	Status      string `json:"status" validate:"required,oneof=lost found"`
}

func (h *ItemHandler) CreateItem(c echo.Context) error {
	var req createItemRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)

	item, err := h.itemUseCase.CreateItem(c.Request().Context(), uid, usecase.CreateItemInput{
		ItemName:    req.ItemName,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		ImageURL:    req.ImageURL,
		Status:      req.Status,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, item)
}

// ListItems returns the catalog, newest first. The optional q parameter
// applies the same substring filter the live views use.
func (h *ItemHandler) ListItems(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)
	query := c.QueryParam("q")

	if query != "" {
		// Filtering happens client-side over the full list; fetch everything
		// and narrow, the way the live catalog view does.
		items, _, err := h.itemUseCase.ListItems(c.Request().Context(), 0, 0)
		if err != nil {
			return response.Error(c, err)
		}

		filtered := usecase.FilterItems(items, query)
		return response.Paginated(c, page(filtered, pagination), int64(len(filtered)), pagination.Page, pagination.PageSize)
	}

	items, total, err := h.itemUseCase.ListItems(c.Request().Context(), pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, items, total, pagination.Page, pagination.PageSize)
}

func (h *ItemHandler) ListMyItems(c echo.Context) error {
	uid := c.Get("uid").(string)
	pagination := utils.GetPaginationParams(c)

	items, total, err := h.itemUseCase.ListMyItems(c.Request().Context(), uid, pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, items, total, pagination.Page, pagination.PageSize)
}

func (h *ItemHandler) GetItem(c echo.Context) error {
	item, err := h.itemUseCase.GetItem(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, item)
}

func (h *ItemHandler) MarkResolved(c echo.Context) error {
	uid := c.Get("uid").(string)

	item, err := h.itemUseCase.MarkResolved(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, item)
}

func (h *ItemHandler) DeleteItem(c echo.Context) error {
	uid := c.Get("uid").(string)

	if err := h.itemUseCase.DeleteItem(c.Request().Context(), c.Param("id"), uid); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"status": "deleted"})
}

// RemoveItem is the security moderation endpoint; the role gate lives in the
// route middleware.
func (h *ItemHandler) RemoveItem(c echo.Context) error {
	if err := h.itemUseCase.RemoveItem(c.Request().Context(), c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"status": "removed"})
}

func page[T any](items []T, p utils.PaginationParams) []T {
	start := p.Offset
	if start > len(items) {
		start = len(items)
	}
	end := start + p.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
