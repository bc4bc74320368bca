package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-lending/internal/lending"
	"github.com/iliyamo/library-lending/internal/model"
	"github.com/iliyamo/library-lending/internal/queue"
	queue_publisher "github.com/iliyamo/library-lending/internal/service"
)

// RentalHandler exposes the digital rental lifecycle over HTTP.
type RentalHandler struct {
	Rentals *lending.RentalService
	Catalog lending.CatalogStore
}

func NewRentalHandler(r *lending.RentalService, catalog lending.CatalogStore) *RentalHandler {
	if r == nil || catalog == nil {
		panic("nil dependency passed to NewRentalHandler")
	}
	return &RentalHandler{Rentals: r, Catalog: catalog}
}

type rentReq struct {
	ItemID  uint64 `json:"item_id" validate:"required"`
	Periods int    `json:"periods" validate:"gte=0,lte=12"`
}

type rentalResp struct {
	ID              uint64    `json:"id"`
	UserID          uint64    `json:"user_id"`
	ItemID          uint64    `json:"item_id"`
	OrderType       string    `json:"order_type"`
	Periods         uint32    `json:"periods"`
	StartedAt       time.Time `json:"started_at"`
	ExpiresAt       time.Time `json:"expires_at"`
	TotalPriceCents uint32    `json:"total_price_cents"`
	State           string    `json:"state"`
	// Expired reflects the access window at response time, which can
	// lead the stored state until the next sweep flips it.
	Expired bool `json:"expired"`
}

func toRentalResp(o *model.RentalOrder, now time.Time) rentalResp {
	return rentalResp{
		ID:              o.ID,
		UserID:          o.UserID,
		ItemID:          o.ItemID,
		OrderType:       string(o.OrderType),
		Periods:         o.Periods,
		StartedAt:       o.StartedAt,
		ExpiresAt:       o.ExpiresAt,
		TotalPriceCents: o.TotalPriceCents,
		State:           string(o.State),
		Expired:         o.Expired(now),
	}
}

// Rent grants the caller time-bounded access to a licensed item.
// POST /v1/rentals
func (h *RentalHandler) Rent(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req rentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	o, err := h.Rentals.Rent(c.Request().Context(), uid, req.ItemID, req.Periods)
	if err != nil {
		return writeLendingError(c, err)
	}

	h.publish(o)
	return c.JSON(http.StatusCreated, toRentalResp(o, time.Now().UTC()))
}

// Cancel cancels one of the caller's PENDING orders.
// POST /v1/rentals/:id/cancel
func (h *RentalHandler) Cancel(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	if err := h.Rentals.Cancel(c.Request().Context(), uid, id); err != nil {
		return writeLendingError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ForceReturn closes a rental order regardless of expiry.  Admin only.
// POST /v1/admin/rentals/:id/return
func (h *RentalHandler) ForceReturn(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	if err := h.Rentals.ForceReturn(c.Request().Context(), id); err != nil {
		return writeLendingError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// History lists the caller's rental history, newest first.
// GET /v1/rentals
func (h *RentalHandler) History(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orders, err := h.Rentals.History(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	now := time.Now().UTC()
	out := make([]rentalResp, 0, len(orders))
	for i := range orders {
		out = append(out, toRentalResp(&orders[i], now))
	}
	return c.JSON(http.StatusOK, echo.Map{"rentals": out})
}

// Active lists the caller's currently usable rentals.
// GET /v1/rentals/active
func (h *RentalHandler) Active(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orders, err := h.Rentals.Active(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	now := time.Now().UTC()
	out := make([]rentalResp, 0, len(orders))
	for i := range orders {
		out = append(out, toRentalResp(&orders[i], now))
	}
	return c.JSON(http.StatusOK, echo.Map{"rentals": out})
}

// Expired lists every EXPIRED rental across all users.
// GET /v1/admin/rentals/expired
func (h *RentalHandler) Expired(c echo.Context) error {
	orders, err := h.Rentals.Expired(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	now := time.Now().UTC()
	out := make([]rentalResp, 0, len(orders))
	for i := range orders {
		out = append(out, toRentalResp(&orders[i], now))
	}
	return c.JSON(http.StatusOK, echo.Map{"rentals": out})
}

// publish emits the rental event off the request path; broker failures
// are logged by the publisher and dropped here.
func (h *RentalHandler) publish(o *model.RentalOrder) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		title := ""
		if it, err := h.Catalog.GetByID(ctx, o.ItemID); err == nil {
			title = it.Title
		}
		_ = queue_publisher.PublishLendingEvent(ctx, queue.LendingEvent{
			EventID:         uuid.NewString(),
			Kind:            queue.EventRentalCreated,
			RecordID:        o.ID,
			UserID:          o.UserID,
			ItemID:          o.ItemID,
			ItemTitle:       title,
			OccurredAt:      o.StartedAt.Format(time.RFC3339),
			Deadline:        o.ExpiresAt.Format(time.RFC3339),
			TotalPriceCents: o.TotalPriceCents,
		})
	}()
}
