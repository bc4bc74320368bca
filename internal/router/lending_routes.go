package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-lending/internal/handler"
	"github.com/iliyamo/library-lending/internal/middleware"
)

// RegisterLending registers member-scoped lifecycle endpoints under /v1.
// All routes require a valid JWT; both MEMBER and ADMIN may use them.
// Members borrow and return physical items, rent digital items, cancel
// pending orders and read their own history.
func RegisterLending(e *echo.Echo, b *handler.BorrowHandler, r *handler.RentalHandler, a *handler.AccessHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("MEMBER", "ADMIN"),
	)

	g.POST("/borrows", b.Borrow)
	g.POST("/borrows/:id/return", b.Return)
	g.GET("/borrows", b.History)
	g.GET("/borrows/active", b.Active)

	g.POST("/rentals", r.Rent)
	g.POST("/rentals/:id/cancel", r.Cancel)
	g.GET("/rentals", r.History)
	g.GET("/rentals/active", r.Active)

	// Whether the caller ever held access to the item; the review
	// subsystem uses this to mark reviews as verified.
	g.GET("/items/:id/access", a.Check)
}
