package repository

import (
	"context"

	"campusfind/internal/domain/entity"
)

// ItemRepository persists lost/found postings. Listings are always ordered by
// creation time descending; the store-assigned timestamp is the sole sort key.
//
// Watch methods establish a live subscription: every change to the backing
// collection delivers the full current ordered list to onUpdate. Stream errors
// go to onError; a terminal stream error ends deliveries and callers
// re-subscribe to recover. Deliveries within one subscription are causally
// ordered, but nothing is guaranteed across two independent subscriptions.
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Item, int64, error)
	ListByOwner(ctx context.Context, userID string, limit, offset int) ([]*entity.Item, int64, error)
	SetResolved(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error

	Watch(ctx context.Context, onUpdate func([]*entity.Item), onError func(error)) CancelFunc
	WatchByOwner(ctx context.Context, userID string, onUpdate func([]*entity.Item), onError func(error)) CancelFunc
}
