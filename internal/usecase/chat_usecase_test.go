package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusfind/internal/domain/entity"
	"campusfind/pkg/errors"
)

func newChatFixture(t *testing.T) (*ChatUseCase, *fakeChatRepo, *fakeItemRepo) {
	t.Helper()
	chatRepo := newFakeChatRepo()
	itemRepo := newFakeItemRepo()
	userRepo := newFakeUserRepo(student, student2, guard)
	return NewChatUseCase(chatRepo, userRepo, itemRepo), chatRepo, itemRepo
}

func postItem(t *testing.T, itemRepo *fakeItemRepo, ownerID string) *entity.Item {
	t.Helper()
	item := &entity.Item{
		UserID:      ownerID,
		ItemName:    "Blue Backpack",
		Description: "Left near the library entrance",
		Category:    "bags",
		Location:    "Library",
		Status:      entity.ItemStatusLost,
	}
	require.NoError(t, itemRepo.Create(context.Background(), item))
	return item
}

func TestGetOrCreateRoom(t *testing.T) {
	ctx := context.Background()

	t.Run("derives the room from the pair and item", func(t *testing.T) {
		uc, _, itemRepo := newChatFixture(t)
		item := postItem(t, itemRepo, student.ID)

		chat, err := uc.GetOrCreateRoom(ctx, student2.ID, item.ID)
		require.NoError(t, err)

		assert.Equal(t, entity.ChatRoomID(student2.ID, student.ID, item.ID), chat.ID)
		assert.ElementsMatch(t, []string{student.ID, student2.ID}, chat.ParticipantIDs)
		assert.Equal(t, item.ID, chat.ItemID)
		assert.Equal(t, item.ItemName, chat.ItemName)
	})

	t.Run("repeat contact returns the same room", func(t *testing.T) {
		uc, chatRepo, itemRepo := newChatFixture(t)
		item := postItem(t, itemRepo, student.ID)

		first, err := uc.GetOrCreateRoom(ctx, student2.ID, item.ID)
		require.NoError(t, err)

		second, err := uc.GetOrCreateRoom(ctx, student2.ID, item.ID)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 2, chatRepo.createCalls)
		assert.Len(t, chatRepo.chats, 1)
	})

	t.Run("losing the first-contact race falls back to the winner's record", func(t *testing.T) {
		uc, chatRepo, itemRepo := newChatFixture(t)
		item := postItem(t, itemRepo, student.ID)

		chatRepo.loseNextRace = true
		chat, err := uc.GetOrCreateRoom(ctx, student2.ID, item.ID)
		require.NoError(t, err)

		assert.Equal(t, "winner's copy", chat.ItemName)
		assert.Len(t, chatRepo.chats, 1)
	})

	t.Run("contacting your own item is rejected", func(t *testing.T) {
		uc, chatRepo, itemRepo := newChatFixture(t)
		item := postItem(t, itemRepo, student.ID)

		_, err := uc.GetOrCreateRoom(ctx, student.ID, item.ID)
		assert.True(t, errors.Is(err, "SELF_CONTACT"))
		assert.Zero(t, chatRepo.createCalls)
	})

	t.Run("missing item", func(t *testing.T) {
		uc, _, _ := newChatFixture(t)

		_, err := uc.GetOrCreateRoom(ctx, student2.ID, "nope")
		assert.True(t, errors.Is(err, "NOT_FOUND"))
	})
}

func TestGetRoom(t *testing.T) {
	ctx := context.Background()
	uc, _, itemRepo := newChatFixture(t)
	item := postItem(t, itemRepo, student.ID)

	chat, err := uc.GetOrCreateRoom(ctx, student2.ID, item.ID)
	require.NoError(t, err)

	t.Run("participant may read", func(t *testing.T) {
		got, err := uc.GetRoom(ctx, student.ID, chat.ID)
		require.NoError(t, err)
		assert.Equal(t, chat.ID, got.ID)
	})

	t.Run("outsider is forbidden", func(t *testing.T) {
		_, err := uc.GetRoom(ctx, guard.ID, chat.ID)
		assert.True(t, errors.Is(err, "FORBIDDEN"))
	})
}

func TestSendMessage(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*ChatUseCase, *entity.Chat) {
		uc, _, itemRepo := newChatFixture(t)
		item := postItem(t, itemRepo, student.ID)
		chat, err := uc.GetOrCreateRoom(ctx, student2.ID, item.ID)
		require.NoError(t, err)
		return uc, chat
	}

	t.Run("delivers with denormalized sender", func(t *testing.T) {
		uc, chat := setup(t)

		msg, err := uc.SendMessage(ctx, student2.ID, SendMessageInput{ChatID: chat.ID, Text: "is this still at the desk?"})
		require.NoError(t, err)

		assert.Equal(t, chat.ID, msg.ChatID)
		assert.Equal(t, student2.ID, msg.Sender.ID)
		assert.Equal(t, student2.DisplayName, msg.Sender.Name)
		assert.NotEmpty(t, msg.ID)
	})

	t.Run("whitespace-only text is rejected", func(t *testing.T) {
		uc, chat := setup(t)

		_, err := uc.SendMessage(ctx, student2.ID, SendMessageInput{ChatID: chat.ID, Text: "   \n\t"})
		assert.True(t, errors.Is(err, "VALIDATION_ERROR"))
	})

	t.Run("outsider cannot post", func(t *testing.T) {
		uc, chat := setup(t)

		_, err := uc.SendMessage(ctx, guard.ID, SendMessageInput{ChatID: chat.ID, Text: "hello"})
		assert.True(t, errors.Is(err, "FORBIDDEN"))
	})

	t.Run("burst beyond the limit is throttled", func(t *testing.T) {
		uc, chat := setup(t)

		var err error
		for i := 0; i < 11; i++ {
			_, err = uc.SendMessage(ctx, student2.ID, SendMessageInput{ChatID: chat.ID, Text: "spam"})
			if err != nil {
				break
			}
		}
		assert.True(t, errors.Is(err, "TOO_MANY_REQUESTS"))
	})

	t.Run("messages list newest first", func(t *testing.T) {
		uc, chat := setup(t)

		_, err := uc.SendMessage(ctx, student2.ID, SendMessageInput{ChatID: chat.ID, Text: "first"})
		require.NoError(t, err)
		_, err = uc.SendMessage(ctx, student.ID, SendMessageInput{ChatID: chat.ID, Text: "second"})
		require.NoError(t, err)

		messages, total, err := uc.ListMessages(ctx, student.ID, chat.ID, 0, 0)
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		require.Len(t, messages, 2)
		assert.Equal(t, "second", messages[0].Text)
		assert.Equal(t, "first", messages[1].Text)
	})
}

func TestListMessagesGating(t *testing.T) {
	ctx := context.Background()
	uc, _, itemRepo := newChatFixture(t)
	item := postItem(t, itemRepo, student.ID)

	chat, err := uc.GetOrCreateRoom(ctx, student2.ID, item.ID)
	require.NoError(t, err)

	_, _, err = uc.ListMessages(ctx, guard.ID, chat.ID, 0, 0)
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestSubscribeMessages(t *testing.T) {
	ctx := context.Background()
	uc, _, itemRepo := newChatFixture(t)
	item := postItem(t, itemRepo, student.ID)

	chat, err := uc.GetOrCreateRoom(ctx, student2.ID, item.ID)
	require.NoError(t, err)

	t.Run("outsider cannot attach", func(t *testing.T) {
		_, err := uc.SubscribeMessages(ctx, guard.ID, chat.ID, func([]*entity.Message) {}, func(error) {})
		assert.True(t, errors.Is(err, "FORBIDDEN"))
	})

	t.Run("participant sees each append, nothing after cancel", func(t *testing.T) {
		var deliveries [][]*entity.Message
		cancel, err := uc.SubscribeMessages(ctx, student.ID, chat.ID, func(messages []*entity.Message) {
			deliveries = append(deliveries, messages)
		}, func(err error) {
			t.Errorf("unexpected stream error: %v", err)
		})
		require.NoError(t, err)

		require.Len(t, deliveries, 1)
		assert.Empty(t, deliveries[0])

		_, err = uc.SendMessage(ctx, student2.ID, SendMessageInput{ChatID: chat.ID, Text: "found it?"})
		require.NoError(t, err)

		require.Len(t, deliveries, 2)
		require.Len(t, deliveries[1], 1)
		assert.Equal(t, "found it?", deliveries[1][0].Text)

		cancel()
		_, err = uc.SendMessage(ctx, student.ID, SendMessageInput{ChatID: chat.ID, Text: "yes"})
		require.NoError(t, err)
		assert.Len(t, deliveries, 2)
	})
}

func TestSubscribeRooms(t *testing.T) {
	ctx := context.Background()
	uc, _, itemRepo := newChatFixture(t)
	first := postItem(t, itemRepo, student.ID)
	second := postItem(t, itemRepo, guard.ID)

	var deliveries [][]*entity.Chat
	cancel := uc.SubscribeRooms(ctx, student2.ID, func(chats []*entity.Chat) {
		deliveries = append(deliveries, chats)
	}, func(err error) {
		t.Errorf("unexpected stream error: %v", err)
	})

	// Initial empty snapshot.
	require.Len(t, deliveries, 1)
	assert.Empty(t, deliveries[0])

	room, err := uc.GetOrCreateRoom(ctx, student2.ID, first.ID)
	require.NoError(t, err)

	// The new room arrives through the live list, not a separate notify.
	require.Len(t, deliveries, 2)
	require.Len(t, deliveries[1], 1)
	assert.Equal(t, room.ID, deliveries[1][0].ID)

	cancel()
	_, err = uc.GetOrCreateRoom(ctx, student2.ID, second.ID)
	require.NoError(t, err)
	assert.Len(t, deliveries, 2, "no deliveries after cancel")
}

func TestListRooms(t *testing.T) {
	ctx := context.Background()
	uc, _, itemRepo := newChatFixture(t)

	first := postItem(t, itemRepo, student.ID)
	second := postItem(t, itemRepo, guard.ID)

	_, err := uc.GetOrCreateRoom(ctx, student2.ID, first.ID)
	require.NoError(t, err)
	_, err = uc.GetOrCreateRoom(ctx, student2.ID, second.ID)
	require.NoError(t, err)

	rooms, total, err := uc.ListRooms(ctx, student2.ID, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, rooms, 2)

	rooms, total, err = uc.ListRooms(ctx, guard.ID, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, rooms, 1)
}
