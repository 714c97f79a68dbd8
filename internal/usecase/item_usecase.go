package usecase

import (
	"context"
	"strings"

	"campusfind/internal/domain/entity"
	"campusfind/internal/domain/repository"
	"campusfind/internal/infrastructure/ratelimit"
	"campusfind/pkg/errors"
)

type ItemUseCase struct {
	itemRepo    repository.ItemRepository
	userRepo    repository.UserRepository
	rateLimiter *ratelimit.RateLimiter
}

func NewItemUseCase(itemRepo repository.ItemRepository, userRepo repository.UserRepository) *ItemUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &ItemUseCase{
		itemRepo:    itemRepo,
		userRepo:    userRepo,
		rateLimiter: rateLimiter,
	}
}

type CreateItemInput struct {
	ItemName    string
	Description string
	Category    string
	Location    string
	ImageURL    string
	Status      string
}

// CreateItem validates the posting and applies the role policy: security
// posters skip manual location entry, their items carry the fixed security
// desk location and the institutional flag.
func (uc *ItemUseCase) CreateItem(ctx context.Context, authorID string, input CreateItemInput) (*entity.Item, error) {
	author, err := uc.userRepo.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	if input.Status != entity.ItemStatusLost && input.Status != entity.ItemStatusFound {
		return nil, errors.BadRequest("Status must be either lost or found", nil)
	}
	if strings.TrimSpace(input.ItemName) == "" ||
		strings.TrimSpace(input.Description) == "" ||
		strings.TrimSpace(input.Category) == "" {
		return nil, errors.BadRequest("Name, description and category are required", nil)
	}

	allowed, waitTime := uc.rateLimiter.Allow(authorID, "create_item")
	if !allowed {
		return nil, errors.TooManyRequests("Posting limit reached. Please wait before creating another item", waitTime)
	}

	isSecurityPost := author.IsSecurity()
	location := strings.TrimSpace(input.Location)
	if isSecurityPost {
		location = entity.LocationSecurityDesk
	} else if location == "" {
		return nil, errors.BadRequest("Location is required", nil)
	}

	item := &entity.Item{
		UserID:             authorID,
		ItemName:           input.ItemName,
		Description:        input.Description,
		Category:           input.Category,
		Location:           location,
		ImageURL:           input.ImageURL,
		Status:             input.Status,
		IsResolved:         false,
		IsPostedBySecurity: isSecurityPost,
	}

	if err := uc.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

func (uc *ItemUseCase) GetItem(ctx context.Context, id string) (*entity.Item, error) {
	return uc.itemRepo.GetByID(ctx, id)
}

func (uc *ItemUseCase) ListItems(ctx context.Context, limit, offset int) ([]*entity.Item, int64, error) {
	return uc.itemRepo.List(ctx, limit, offset)
}

func (uc *ItemUseCase) ListMyItems(ctx context.Context, userID string, limit, offset int) ([]*entity.Item, int64, error) {
	return uc.itemRepo.ListByOwner(ctx, userID, limit, offset)
}

// MarkResolved is the one-way resolution transition. Only the owner may
// resolve, and resolving an already-resolved item is a conflict, not a no-op.
func (uc *ItemUseCase) MarkResolved(ctx context.Context, itemID, requesterID string) (*entity.Item, error) {
	item, err := uc.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if item.UserID != requesterID {
		return nil, errors.Forbidden("Only the poster can resolve this item", nil)
	}
	if item.IsResolved {
		return nil, errors.Conflict("Item is already resolved")
	}

	if err := uc.itemRepo.SetResolved(ctx, itemID); err != nil {
		return nil, err
	}

	item.IsResolved = true
	return item, nil
}

// DeleteItem permanently removes the posting. No tombstone, no recovery.
func (uc *ItemUseCase) DeleteItem(ctx context.Context, itemID, requesterID string) error {
	item, err := uc.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return err
	}

	if item.UserID != requesterID {
		return errors.Forbidden("Only the poster can delete this item", nil)
	}

	return uc.itemRepo.Delete(ctx, itemID)
}

// RemoveItem is the moderation path for security staff: the posting is
// removed regardless of who created it. Route-level role enforcement is
// assumed; this method does not re-check the caller.
func (uc *ItemUseCase) RemoveItem(ctx context.Context, itemID string) error {
	if _, err := uc.itemRepo.GetByID(ctx, itemID); err != nil {
		return err
	}

	return uc.itemRepo.Delete(ctx, itemID)
}

// SubscribeCatalog delivers the full creation-time-descending item list on
// every backing-store change. Mutations made through this usecase reach
// subscribers only via these deliveries; there is no separate notify step.
func (uc *ItemUseCase) SubscribeCatalog(ctx context.Context, onUpdate func([]*entity.Item), onError func(error)) repository.CancelFunc {
	return uc.itemRepo.Watch(ctx, onUpdate, onError)
}

func (uc *ItemUseCase) SubscribeOwnedBy(ctx context.Context, userID string, onUpdate func([]*entity.Item), onError func(error)) repository.CancelFunc {
	return uc.itemRepo.WatchByOwner(ctx, userID, onUpdate, onError)
}

// FilterItems narrows a delivered list by a free-text query: case-insensitive
// substring match across name, description, location and category. The empty
// query returns the input unchanged; order is preserved.
func FilterItems(items []*entity.Item, query string) []*entity.Item {
	if query == "" {
		return items
	}

	q := strings.ToLower(query)
	var filtered []*entity.Item
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.ItemName), q) ||
			strings.Contains(strings.ToLower(item.Description), q) ||
			strings.Contains(strings.ToLower(item.Location), q) ||
			strings.Contains(strings.ToLower(item.Category), q) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
