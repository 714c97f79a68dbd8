package handler

import (
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	ws "campusfind/internal/infrastructure/websocket"
	"campusfind/pkg/errors"
	"campusfind/pkg/logger"
	"campusfind/pkg/response"
)

type WebSocketHandler struct {
	wsManager     *ws.Manager
	subscriptions *ws.SubscriptionHandler
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // restrict in production
	},
}

func NewWebSocketHandler(wsManager *ws.Manager, subscriptions *ws.SubscriptionHandler) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager:     wsManager,
		subscriptions: subscriptions,
	}
}

func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	userID, ok := c.Get("uid").(string)
	if !ok || userID == "" {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written its own handshake error response.
		logger.Warn("WebSocket upgrade failed for %s: %v", userID, err)
		return nil
	}

	client := ws.NewClient(userID, conn)
	h.wsManager.Register <- client

	go client.ReadPump(h.wsManager, h.subscriptions)
	go client.WritePump()

	return nil
}
