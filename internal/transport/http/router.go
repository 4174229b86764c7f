package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/astroev/stores-api/internal/handlers"
	authmw "github.com/astroev/stores-api/internal/middleware/auth"
)

type Deps struct {
	Gate          *authmw.Gate
	AuthHandler   *handlers.AuthHandler
	StoreHandler  *handlers.StoreHandler
	ItemHandler   *handlers.ItemHandler
	TagHandler    *handlers.TagHandler
	SearchHandler *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	e.POST("/register", d.AuthHandler.Register)
	e.POST("/login", d.AuthHandler.Login)
	e.POST("/refresh", d.AuthHandler.Refresh, d.Gate.RequireRefresh)
	e.POST("/logout", d.AuthHandler.Logout, d.Gate.RequireAccess)

	e.GET("/user/:id", d.AuthHandler.GetUser)
	e.DELETE("/user/:id", d.AuthHandler.DeleteUser)

	e.GET("/store", d.StoreHandler.GetStores)
	e.POST("/store", d.StoreHandler.CreateStore)
	e.GET("/store/:id", d.StoreHandler.GetStore)
	e.DELETE("/store/:id", d.StoreHandler.DeleteStore)

	e.GET("/item", d.ItemHandler.GetItems, d.Gate.RequireAccess)
	e.POST("/item", d.ItemHandler.CreateItem, d.Gate.RequireFresh)
	e.GET("/item/:id", d.ItemHandler.GetItem, d.Gate.RequireAccess)
	e.PUT("/item/:id", d.ItemHandler.UpdateItem, d.Gate.RequireAccess)
	e.DELETE("/item/:id", d.ItemHandler.DeleteItem, d.Gate.RequireAdmin)

	e.GET("/store/:id/tag", d.TagHandler.GetStoreTags)
	e.POST("/store/:id/tag", d.TagHandler.CreateStoreTag)
	e.GET("/tag/:id", d.TagHandler.GetTag)
	e.DELETE("/tag/:id", d.TagHandler.DeleteTag)
	e.POST("/item/:item_id/tag/:tag_id", d.TagHandler.LinkTagToItem)
	e.DELETE("/item/:item_id/tag/:tag_id", d.TagHandler.UnlinkTagFromItem)

	if d.SearchHandler != nil {
		e.GET("/search", d.SearchHandler.Search)
	}
}
