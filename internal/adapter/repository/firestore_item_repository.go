package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"campusfind/internal/domain/entity"
	"campusfind/internal/domain/repository"
	"campusfind/pkg/errors"
	"campusfind/pkg/logger"
)

type firestoreItemRepository struct {
	client *firestore.Client
}

func NewFirestoreItemRepository(client *firestore.Client) repository.ItemRepository {
	return &firestoreItemRepository{
		client: client,
	}
}

func (r *firestoreItemRepository) Create(ctx context.Context, item *entity.Item) error {
	if item.ID == "" {
		doc := r.client.Collection("items").NewDoc()
		item.ID = doc.ID
	}

	_, err := r.client.Collection("items").Doc(item.ID).Set(ctx, item)
	if err != nil {
		return errors.Unavailable("Failed to create item", err)
	}

	return nil
}

func (r *firestoreItemRepository) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	doc, err := r.client.Collection("items").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Item", err)
		}
		return nil, errors.Unavailable("Failed to get item", err)
	}

	var item entity.Item
	if err := doc.DataTo(&item); err != nil {
		return nil, errors.Internal("Failed to parse item data", err)
	}
	item.ID = doc.Ref.ID

	return &item, nil
}

func (r *firestoreItemRepository) List(ctx context.Context, limit, offset int) ([]*entity.Item, int64, error) {
	query := r.client.Collection("items").Query.OrderBy("createdAt", firestore.Desc)
	return r.listQuery(ctx, query, limit, offset)
}

func (r *firestoreItemRepository) ListByOwner(ctx context.Context, userID string, limit, offset int) ([]*entity.Item, int64, error) {
	query := r.client.Collection("items").Query.
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc)
	return r.listQuery(ctx, query, limit, offset)
}

func (r *firestoreItemRepository) listQuery(ctx context.Context, query firestore.Query, limit, offset int) ([]*entity.Item, int64, error) {
	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Unavailable("Failed to count items", err)
	}
	total := int64(len(allDocs))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	var items []*entity.Item

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, errors.Unavailable("Failed to iterate items", err)
		}

		var item entity.Item
		if err := doc.DataTo(&item); err != nil {
			return nil, 0, errors.Internal("Failed to parse item data", err)
		}
		item.ID = doc.Ref.ID
		items = append(items, &item)
	}

	return items, total, nil
}

// SetResolved flips the one-way resolved flag. Single-field update; the
// ownership and re-transition checks live in the usecase.
func (r *firestoreItemRepository) SetResolved(ctx context.Context, id string) error {
	_, err := r.client.Collection("items").Doc(id).Update(ctx, []firestore.Update{
		{Path: "isResolved", Value: true},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Item", err)
		}
		return errors.Unavailable("Failed to update item", err)
	}

	return nil
}

func (r *firestoreItemRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection("items").Doc(id).Delete(ctx)
	if err != nil {
		return errors.Unavailable("Failed to delete item", err)
	}

	return nil
}

func (r *firestoreItemRepository) Watch(ctx context.Context, onUpdate func([]*entity.Item), onError func(error)) repository.CancelFunc {
	query := r.client.Collection("items").Query.OrderBy("createdAt", firestore.Desc)
	return r.watchQuery(ctx, query, onUpdate, onError)
}

func (r *firestoreItemRepository) WatchByOwner(ctx context.Context, userID string, onUpdate func([]*entity.Item), onError func(error)) repository.CancelFunc {
	query := r.client.Collection("items").Query.
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc)
	return r.watchQuery(ctx, query, onUpdate, onError)
}

// watchQuery bridges a Firestore snapshot listener to the subscription
// contract: every snapshot delivers the full current ordered list. The
// returned cancel func blocks until the listener goroutine has exited, so no
// delivery can arrive after it returns.
func (r *firestoreItemRepository) watchQuery(ctx context.Context, query firestore.Query, onUpdate func([]*entity.Item), onError func(error)) repository.CancelFunc {
	watchCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)

		snapIter := query.Snapshots(watchCtx)
		defer snapIter.Stop()

		for {
			snap, err := snapIter.Next()
			if err != nil {
				if watchCtx.Err() != nil {
					return
				}
				onError(errors.Unavailable("Item subscription failed", err))
				return
			}

			docs, err := snap.Documents.GetAll()
			if err != nil {
				if watchCtx.Err() != nil {
					return
				}
				onError(errors.Unavailable("Failed to read item snapshot", err))
				continue
			}

			items := make([]*entity.Item, 0, len(docs))
			for _, doc := range docs {
				var item entity.Item
				if err := doc.DataTo(&item); err != nil {
					logger.Warn("Skipping malformed item document %s: %v", doc.Ref.ID, err)
					continue
				}
				item.ID = doc.Ref.ID
				items = append(items, &item)
			}

			onUpdate(items)
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
