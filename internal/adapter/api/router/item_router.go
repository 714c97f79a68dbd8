package router

import (
	"campusfind/internal/adapter/api/handler"
	"campusfind/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupItemRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, securityMiddleware *middleware.SecurityMiddleware) {
	itemHandler := handler.GetItemHandler()

	// Browsing the catalog needs no account.
	items := e.Group("/v1/items")
	items.GET("", itemHandler.ListItems)
	items.GET("/:id", itemHandler.GetItem)

	authed := e.Group("/v1/items")
	authed.Use(authMiddleware.Authenticate)
	authed.POST("", itemHandler.CreateItem)
	authed.POST("/:id/resolve", itemHandler.MarkResolved)
	authed.DELETE("/:id", itemHandler.DeleteItem)

	myItems := e.Group("/v1/my-items")
	myItems.Use(authMiddleware.Authenticate)
	myItems.GET("", itemHandler.ListMyItems)

	security := e.Group("/v1/security/items")
	security.Use(authMiddleware.Authenticate)
	security.Use(securityMiddleware.SecurityOnly)
	security.DELETE("/:id", itemHandler.RemoveItem)
}
