package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-lending/internal/handler"
	"github.com/iliyamo/library-lending/internal/middleware"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1/admin.
// All routes require a valid JWT and ADMIN role.
func RegisterAdmin(e *echo.Echo, cat *handler.CatalogHandler, b *handler.BorrowHandler, r *handler.RentalHandler, s *handler.SweepHandler, jwtSecret string) {
	// Attach middlewares at group construction time for clarity.
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)

	// ---- Catalog management ----
	g.POST("/items", cat.Create)
	g.PUT("/items/:id", cat.Update)
	g.PATCH("/items/:id", cat.Update)
	g.POST("/items/:id/disable", cat.Disable)
	g.POST("/items/:id/enable", cat.Enable)
	g.POST("/items/:id/resize", cat.Resize)

	// ---- Lifecycle reports and escape hatches ----
	g.GET("/borrows/overdue", b.Overdue)
	g.GET("/rentals/expired", r.Expired)
	g.POST("/rentals/:id/return", r.ForceReturn)

	// ---- Manual sweep ----
	g.POST("/sweep", s.Run)
}
