package router

// This file registers the public catalog browse routes.  They carry no
// JWT or role middleware so guests can inspect the catalog before
// registering; the optional Redis response cache wraps them because
// catalog reads dominate traffic.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-lending/internal/handler"
)

// RegisterCatalog registers unauthenticated catalog browse endpoints.
// The supplied middleware (response cache) is applied to the group; pass
// none to serve uncached.
func RegisterCatalog(e *echo.Echo, cat *handler.CatalogHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/v1", mw...)
	// Paged catalog listing
	g.GET("/items", cat.List)
	// Item detail by id
	g.GET("/items/:id", cat.Get)
	// Filtered catalog search
	g.GET("/search/items", cat.Search)
}
