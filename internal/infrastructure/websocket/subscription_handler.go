package websocket

import (
	"context"
	"encoding/json"
	"strings"

	"campusfind/internal/domain/entity"
	"campusfind/internal/usecase"
	"campusfind/pkg/logger"
)

// Topics a client can subscribe to. Each delivers the full current result set
// on every backing-store change, mirroring the store's own listener contract.
//
//	catalog            all items, newest first
//	my_items           the caller's own items
//	rooms              the caller's conversations
//	messages:<roomID>  one room's message sequence, newest first
const (
	TopicCatalog  = "catalog"
	TopicMyItems  = "my_items"
	TopicRooms    = "rooms"
	topicMessages = "messages:"
)

type WSMessage struct {
	Type  string `json:"type"`
	Topic string `json:"topic,omitempty"`
}

type snapshotPayload struct {
	Type  string      `json:"type"`
	Topic string      `json:"topic"`
	Data  interface{} `json:"data"`
}

type errorPayload struct {
	Type    string `json:"type"`
	Topic   string `json:"topic,omitempty"`
	Message string `json:"message"`
}

// SubscriptionHandler bridges client subscribe/unsubscribe requests to live
// store subscriptions. It is the only consumer-side notification channel;
// mutations reach clients exclusively through these snapshot deliveries.
type SubscriptionHandler struct {
	itemUseCase *usecase.ItemUseCase
	chatUseCase *usecase.ChatUseCase
}

func NewSubscriptionHandler(itemUseCase *usecase.ItemUseCase, chatUseCase *usecase.ChatUseCase) *SubscriptionHandler {
	return &SubscriptionHandler{
		itemUseCase: itemUseCase,
		chatUseCase: chatUseCase,
	}
}

func (h *SubscriptionHandler) HandleClientMessage(client *Client, messageBytes []byte) {
	var msg WSMessage
	if err := json.Unmarshal(messageBytes, &msg); err != nil {
		h.sendError(client, "", "Invalid message format")
		return
	}

	switch msg.Type {
	case "ping":
		h.send(client, map[string]string{"type": "pong"})
	case "subscribe":
		h.subscribe(client, msg.Topic)
	case "unsubscribe":
		if !client.removeSubscription(msg.Topic) {
			h.sendError(client, msg.Topic, "No such subscription")
		}
	default:
		logger.Warn("Unknown message type %q from client %s", msg.Type, client.UserID)
		h.sendError(client, "", "Unknown message type")
	}
}

func (h *SubscriptionHandler) subscribe(client *Client, topic string) {
	onError := func(err error) {
		h.sendError(client, topic, err.Error())
		// A stream error ends deliveries, so free the topic for a fresh
		// subscribe. The error arrives on the watch goroutine itself and
		// cancel waits for that goroutine to exit, so cancel elsewhere.
		if cancel, ok := client.takeSubscription(topic); ok {
			go cancel()
		}
	}

	ctx := context.Background()

	var cancel func()
	switch {
	case topic == TopicCatalog:
		cancel = h.itemUseCase.SubscribeCatalog(ctx, func(items []*entity.Item) {
			h.send(client, snapshotPayload{Type: "snapshot", Topic: topic, Data: items})
		}, onError)

	case topic == TopicMyItems:
		cancel = h.itemUseCase.SubscribeOwnedBy(ctx, client.UserID, func(items []*entity.Item) {
			h.send(client, snapshotPayload{Type: "snapshot", Topic: topic, Data: items})
		}, onError)

	case topic == TopicRooms:
		cancel = h.chatUseCase.SubscribeRooms(ctx, client.UserID, func(chats []*entity.Chat) {
			h.send(client, snapshotPayload{Type: "snapshot", Topic: topic, Data: chats})
		}, onError)

	case strings.HasPrefix(topic, topicMessages):
		roomID := strings.TrimPrefix(topic, topicMessages)
		var err error
		cancel, err = h.chatUseCase.SubscribeMessages(ctx, client.UserID, roomID, func(messages []*entity.Message) {
			h.send(client, snapshotPayload{Type: "snapshot", Topic: topic, Data: messages})
		}, onError)
		if err != nil {
			h.sendError(client, topic, err.Error())
			return
		}

	default:
		h.sendError(client, topic, "Unknown topic")
		return
	}

	if !client.addSubscription(topic, cancel) {
		// Already subscribed; drop the duplicate listener.
		cancel()
		h.sendError(client, topic, "Already subscribed")
	}
}

func (h *SubscriptionHandler) send(client *Client, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal websocket payload: %v", err)
		return
	}

	select {
	case client.Send <- data:
	default:
		logger.Warn("Dropping websocket delivery for slow client %s", client.UserID)
	}
}

func (h *SubscriptionHandler) sendError(client *Client, topic, message string) {
	h.send(client, errorPayload{Type: "error", Topic: topic, Message: message})
}
