package repository

import (
	"context"

	"campusfind/internal/domain/entity"
)

// ChatRepository persists conversations and their message subcollections.
//
// Create writes the chat at its pre-derived document ID and reports whether
// this call actually created the record. When two first-contact attempts race,
// the store's document-ID uniqueness guarantees at most one record per key;
// the loser observes created == false.
//
// Messages are append-only and listed newest-first (store-native order);
// callers reverse for chronological display.
type ChatRepository interface {
	Create(ctx context.Context, chat *entity.Chat) (created bool, err error)
	GetByID(ctx context.Context, id string) (*entity.Chat, error)
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Chat, int64, error)

	CreateMessage(ctx context.Context, message *entity.Message) error
	ListMessages(ctx context.Context, chatID string, limit, offset int) ([]*entity.Message, int64, error)

	WatchRooms(ctx context.Context, userID string, onUpdate func([]*entity.Chat), onError func(error)) CancelFunc
	WatchMessages(ctx context.Context, chatID string, onUpdate func([]*entity.Message), onError func(error)) CancelFunc
}
