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

// BorrowHandler exposes the physical borrow lifecycle over HTTP.
type BorrowHandler struct {
	Borrows *lending.BorrowService
	Catalog lending.CatalogStore
}

func NewBorrowHandler(b *lending.BorrowService, catalog lending.CatalogStore) *BorrowHandler {
	if b == nil || catalog == nil {
		panic("nil dependency passed to NewBorrowHandler")
	}
	return &BorrowHandler{Borrows: b, Catalog: catalog}
}

type borrowReq struct {
	ItemID       uint64 `json:"item_id" validate:"required"`
	DurationDays int    `json:"duration_days" validate:"gte=0,lte=90"`
}

type borrowResp struct {
	ID         uint64     `json:"id"`
	UserID     uint64     `json:"user_id"`
	ItemID     uint64     `json:"item_id"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	DueAt      time.Time  `json:"due_at"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	State      string     `json:"state"`
}

func toBorrowResp(r *model.BorrowRecord) borrowResp {
	return borrowResp{
		ID:         r.ID,
		UserID:     r.UserID,
		ItemID:     r.ItemID,
		BorrowedAt: r.BorrowedAt,
		DueAt:      r.DueAt,
		ReturnedAt: r.ReturnedAt,
		State:      string(r.State),
	}
}

// Borrow lends one copy of a physical item to the caller.
// POST /v1/borrows
func (h *BorrowHandler) Borrow(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req borrowReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	rec, err := h.Borrows.Borrow(c.Request().Context(), uid, req.ItemID, req.DurationDays)
	if err != nil {
		return writeLendingError(c, err)
	}

	h.publish(queue.EventBorrowConfirmed, rec)
	return c.JSON(http.StatusCreated, toBorrowResp(rec))
}

// Return closes one of the caller's open borrows and restocks the copy.
// POST /v1/borrows/:id/return
func (h *BorrowHandler) Return(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid record id"})
	}

	rec, err := h.Borrows.Return(c.Request().Context(), uid, id)
	if err != nil {
		return writeLendingError(c, err)
	}
	return c.JSON(http.StatusOK, toBorrowResp(rec))
}

// History lists the caller's full borrow history, newest first.
// GET /v1/borrows
func (h *BorrowHandler) History(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	recs, err := h.Borrows.History(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]borrowResp, 0, len(recs))
	for i := range recs {
		out = append(out, toBorrowResp(&recs[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"borrows": out})
}

// Active lists the caller's borrows that still hold a copy.
// GET /v1/borrows/active
func (h *BorrowHandler) Active(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	recs, err := h.Borrows.Active(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]borrowResp, 0, len(recs))
	for i := range recs {
		out = append(out, toBorrowResp(&recs[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"borrows": out})
}

// Overdue lists every currently overdue borrow across all users.
// GET /v1/admin/borrows/overdue
func (h *BorrowHandler) Overdue(c echo.Context) error {
	recs, err := h.Borrows.Overdue(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]borrowResp, 0, len(recs))
	for i := range recs {
		out = append(out, toBorrowResp(&recs[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"borrows": out})
}

// publish emits the lending event off the request path.  The broker
// being down must never fail a borrow that already committed, so the
// publisher's error is logged there and dropped here.
func (h *BorrowHandler) publish(kind string, rec *model.BorrowRecord) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		title := ""
		if it, err := h.Catalog.GetByID(ctx, rec.ItemID); err == nil {
			title = it.Title
		}
		_ = queue_publisher.PublishLendingEvent(ctx, queue.LendingEvent{
			EventID:    uuid.NewString(),
			Kind:       kind,
			RecordID:   rec.ID,
			UserID:     rec.UserID,
			ItemID:     rec.ItemID,
			ItemTitle:  title,
			OccurredAt: rec.BorrowedAt.Format(time.RFC3339),
			Deadline:   rec.DueAt.Format(time.RFC3339),
		})
	}()
}
