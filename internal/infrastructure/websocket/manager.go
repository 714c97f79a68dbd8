package websocket

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"

	"campusfind/internal/domain/repository"
	"campusfind/pkg/logger"
)

// Client is one authenticated WebSocket connection. Live-store subscriptions
// opened by the client are tracked per topic so they are always detached when
// the connection goes away.
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte

	subMu sync.Mutex
	subs  map[string]repository.CancelFunc
}

func NewClient(userID string, conn *websocket.Conn) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		subs:   make(map[string]repository.CancelFunc),
	}
}

func (c *Client) addSubscription(topic string, cancel repository.CancelFunc) bool {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	if _, exists := c.subs[topic]; exists {
		return false
	}
	c.subs[topic] = cancel
	return true
}

// takeSubscription removes the topic and hands back its cancel func without
// invoking it.
func (c *Client) takeSubscription(topic string) (repository.CancelFunc, bool) {
	c.subMu.Lock()
	cancel, exists := c.subs[topic]
	if exists {
		delete(c.subs, topic)
	}
	c.subMu.Unlock()
	return cancel, exists
}

func (c *Client) removeSubscription(topic string) bool {
	cancel, exists := c.takeSubscription(topic)
	if exists {
		cancel()
	}
	return exists
}

// cancelAll detaches every live subscription this connection holds. Called on
// unregister; without it a closed socket would keep consuming store updates.
func (c *Client) cancelAll() {
	c.subMu.Lock()
	cancels := make([]repository.CancelFunc, 0, len(c.subs))
	for topic, cancel := range c.subs {
		cancels = append(cancels, cancel)
		delete(c.subs, topic)
	}
	c.subMu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// Manager tracks all active WebSocket connections.
type Manager struct {
	clients    map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	mutex      sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Start runs the manager's main loop in a goroutine.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				m.clients[client.UserID] = client
				m.mutex.Unlock()
				logger.Info("Client registered: %s", client.UserID)

			case client := <-m.Unregister:
				m.mutex.Lock()
				_, registered := m.clients[client.UserID]
				if registered {
					delete(m.clients, client.UserID)
				}
				m.mutex.Unlock()

				if registered {
					// Watch goroutines deliver straight into Send, so
					// every watch must be detached before the channel
					// closes. cancelAll blocks until they have exited.
					client.cancelAll()
					close(client.Send)
				}
				logger.Info("Client unregistered: %s", client.UserID)

			case <-ctx.Done():
				return
			}
		}
	}()
}

// ReadPump reads messages from the WebSocket connection.
func (c *Client) ReadPump(m *Manager, h *SubscriptionHandler) {
	defer func() {
		m.Unregister <- c
		c.Conn.Close()
	}()

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket read error for %s: %v", c.UserID, err)
			}
			break
		}

		h.HandleClientMessage(c, message)
	}
}

// WritePump sends messages to the WebSocket connection.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		message, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			logger.Warn("WebSocket write error for %s: %v", c.UserID, err)
			return
		}
	}
}
