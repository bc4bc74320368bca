package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-lending/internal/lending"
)

// SweepHandler lets admins trigger a sweep pass on demand instead of
// waiting for the background ticker.
type SweepHandler struct {
	Sweeper *lending.Sweeper
}

func NewSweepHandler(s *lending.Sweeper) *SweepHandler {
	if s == nil {
		panic("nil sweeper passed to NewSweepHandler")
	}
	return &SweepHandler{Sweeper: s}
}

// Run executes one sweep pass and reports the transition counts.
// POST /v1/admin/sweep
func (h *SweepHandler) Run(c echo.Context) error {
	overdue, expired, err := h.Sweeper.RunOnce(c.Request().Context(), time.Now().UTC())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sweep failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"overdue_marked": overdue,
		"expired_marked": expired,
	})
}
