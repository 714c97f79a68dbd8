package router

import (
	"campusfind/internal/adapter/api/handler"
	"campusfind/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

// SetupWebSocketRouter registers the live-update endpoint. The handler reads
// the authenticated uid from context, so Authenticate must wrap the route.
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler, authMiddleware *middleware.AuthMiddleware) {
	e.GET("/v1/ws", wsHandler.HandleWebSocket, authMiddleware.Authenticate)
}
