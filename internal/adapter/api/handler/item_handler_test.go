package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusfind/internal/domain/entity"
	"campusfind/internal/domain/repository"
	"campusfind/internal/usecase"
	"campusfind/pkg/errors"
	"campusfind/pkg/utils"
)

// stubItemRepo serves a fixed catalog; mutations and watches are out of scope
// for these handler tests.
type stubItemRepo struct {
	items []*entity.Item
}

func (s *stubItemRepo) Create(ctx context.Context, item *entity.Item) error { return nil }

func (s *stubItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	for _, item := range s.items {
		if item.ID == id {
			return item, nil
		}
	}
	return nil, errors.NotFound("Item", nil)
}

func (s *stubItemRepo) List(ctx context.Context, limit, offset int) ([]*entity.Item, int64, error) {
	out := s.items
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, int64(len(s.items)), nil
}

func (s *stubItemRepo) ListByOwner(ctx context.Context, userID string, limit, offset int) ([]*entity.Item, int64, error) {
	return nil, 0, nil
}

func (s *stubItemRepo) SetResolved(ctx context.Context, id string) error { return nil }
func (s *stubItemRepo) Delete(ctx context.Context, id string) error      { return nil }

func (s *stubItemRepo) Watch(ctx context.Context, onUpdate func([]*entity.Item), onError func(error)) repository.CancelFunc {
	return func() {}
}

func (s *stubItemRepo) WatchByOwner(ctx context.Context, userID string, onUpdate func([]*entity.Item), onError func(error)) repository.CancelFunc {
	return func() {}
}

type stubUserRepo struct{}

func (stubUserRepo) Create(ctx context.Context, user *entity.User) error { return nil }
func (stubUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return &entity.User{ID: id, Role: entity.RoleStudent}, nil
}
func (stubUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return nil, errors.NotFound("User", nil)
}
func (stubUserRepo) Update(ctx context.Context, user *entity.User) error { return nil }
func (stubUserRepo) Delete(ctx context.Context, id string) error         { return nil }

func newCatalogHandler(items ...*entity.Item) *ItemHandler {
	uc := usecase.NewItemUseCase(&stubItemRepo{items: items}, stubUserRepo{})
	return NewItemHandler(uc)
}

func TestListItems(t *testing.T) {
	h := newCatalogHandler(
		&entity.Item{ID: "1", ItemName: "Blue Backpack", Description: "with laptop", Category: "bags", Location: "Library", Status: entity.ItemStatusLost},
		&entity.Item{ID: "2", ItemName: "Water Bottle", Description: "steel", Category: "misc", Location: "Gym", Status: entity.ItemStatusFound},
	)

	t.Run("full catalog", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/v1/items", nil)
		rec := httptest.NewRecorder()

		require.NoError(t, h.ListItems(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Blue Backpack")
		assert.Contains(t, rec.Body.String(), "Water Bottle")
		assert.Contains(t, rec.Body.String(), `"total":2`)
	})

	t.Run("q narrows by substring", func(t *testing.T) {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/v1/items?q=backpack", nil)
		rec := httptest.NewRecorder()

		require.NoError(t, h.ListItems(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Blue Backpack")
		assert.NotContains(t, rec.Body.String(), "Water Bottle")
		assert.Contains(t, rec.Body.String(), `"total":1`)
	})
}

func TestGetItemNotFound(t *testing.T) {
	h := newCatalogHandler()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/items/nope", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("nope")

	require.NoError(t, h.GetItem(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2}, page(items, utils.PaginationParams{Page: 1, PageSize: 2, Offset: 0}))
	assert.Equal(t, []int{3, 4}, page(items, utils.PaginationParams{Page: 2, PageSize: 2, Offset: 2}))
	assert.Equal(t, []int{5}, page(items, utils.PaginationParams{Page: 3, PageSize: 2, Offset: 4}))
	assert.Empty(t, page(items, utils.PaginationParams{Page: 4, PageSize: 2, Offset: 6}))
}
