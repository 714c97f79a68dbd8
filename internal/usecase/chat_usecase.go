package usecase

import (
	"context"
	"strings"

	"campusfind/internal/domain/entity"
	"campusfind/internal/domain/repository"
	"campusfind/internal/infrastructure/ratelimit"
	"campusfind/pkg/errors"
	"campusfind/pkg/logger"
)

type ChatUseCase struct {
	chatRepo    repository.ChatRepository
	userRepo    repository.UserRepository
	itemRepo    repository.ItemRepository
	rateLimiter *ratelimit.RateLimiter
}

func NewChatUseCase(
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	itemRepo repository.ItemRepository,
) *ChatUseCase {
	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	return &ChatUseCase{
		chatRepo:    chatRepo,
		userRepo:    userRepo,
		itemRepo:    itemRepo,
		rateLimiter: rateLimiter,
	}
}

type SendMessageInput struct {
	ChatID string
	Text   string
}

// GetOrCreateRoom maps a contact attempt to the single conversation for
// (viewer, poster, item). The room ID is derived, not looked up, and creation
// is idempotent: a lost first-contact race falls back to the record the
// winner wrote.
func (uc *ChatUseCase) GetOrCreateRoom(ctx context.Context, viewerID, itemID string) (*entity.Chat, error) {
	item, err := uc.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if viewerID == item.UserID {
		return nil, errors.SelfContact("You cannot contact yourself about your own item")
	}

	participants := []string{viewerID, item.UserID}
	chat := &entity.Chat{
		ID:             entity.ChatRoomID(viewerID, item.UserID, item.ID),
		ParticipantIDs: participants,
		ItemID:         item.ID,
		ItemName:       item.ItemName,
	}

	created, err := uc.chatRepo.Create(ctx, chat)
	if err != nil {
		return nil, err
	}
	if !created {
		return uc.chatRepo.GetByID(ctx, chat.ID)
	}

	logger.Info("Created chat room %s for item %s", chat.ID, item.ID)
	return chat, nil
}

func (uc *ChatUseCase) GetRoom(ctx context.Context, requesterID, roomID string) (*entity.Chat, error) {
	chat, err := uc.chatRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(requesterID) {
		return nil, errors.Forbidden("You are not a participant of this conversation", nil)
	}
	return chat, nil
}

func (uc *ChatUseCase) ListRooms(ctx context.Context, userID string, limit, offset int) ([]*entity.Chat, int64, error) {
	return uc.chatRepo.ListByUserID(ctx, userID, limit, offset)
}

// ListMessages returns the room's messages newest-first; callers reverse for
// chronological display.
func (uc *ChatUseCase) ListMessages(ctx context.Context, requesterID, roomID string, limit, offset int) ([]*entity.Message, int64, error) {
	if _, err := uc.GetRoom(ctx, requesterID, roomID); err != nil {
		return nil, 0, err
	}
	return uc.chatRepo.ListMessages(ctx, roomID, limit, offset)
}

func (uc *ChatUseCase) SendMessage(ctx context.Context, senderID string, input SendMessageInput) (*entity.Message, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, errors.BadRequest("Message text cannot be empty", nil)
	}

	allowed, waitTime := uc.rateLimiter.Allow(senderID, "send_message")
	if !allowed {
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before sending another message", waitTime)
	}

	chat, err := uc.chatRepo.GetByID(ctx, input.ChatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(senderID) {
		return nil, errors.Forbidden("You are not a participant of this conversation", nil)
	}

	sender, err := uc.userRepo.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}

	message := &entity.Message{
		ChatID: chat.ID,
		Text:   text,
		Sender: entity.MessageSender{
			ID:        sender.ID,
			Name:      sender.DisplayName,
			AvatarURL: sender.AvatarURL,
		},
	}

	if err := uc.chatRepo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	return message, nil
}

func (uc *ChatUseCase) SubscribeRooms(ctx context.Context, userID string, onUpdate func([]*entity.Chat), onError func(error)) repository.CancelFunc {
	return uc.chatRepo.WatchRooms(ctx, userID, onUpdate, onError)
}

// SubscribeMessages streams the room's message sequence, newest-first, after
// a participant check. Returns the detach handle and never delivers after it
// is called.
func (uc *ChatUseCase) SubscribeMessages(ctx context.Context, requesterID, roomID string, onUpdate func([]*entity.Message), onError func(error)) (repository.CancelFunc, error) {
	if _, err := uc.GetRoom(ctx, requesterID, roomID); err != nil {
		return nil, err
	}
	return uc.chatRepo.WatchMessages(ctx, roomID, onUpdate, onError), nil
}
