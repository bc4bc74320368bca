package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-lending/internal/lending"
	"github.com/iliyamo/library-lending/internal/model"
	"github.com/iliyamo/library-lending/internal/repository"
)

// CatalogHandler bundles catalog browse endpoints and the admin
// management endpoints (create, update, disable, resize).
type CatalogHandler struct {
	Catalog *repository.CatalogRepo
	Alloc   *lending.Allocator
}

func NewCatalogHandler(catalog *repository.CatalogRepo, alloc *lending.Allocator) *CatalogHandler {
	if catalog == nil || alloc == nil {
		panic("nil dependency passed to NewCatalogHandler")
	}
	return &CatalogHandler{Catalog: catalog, Alloc: alloc}
}

type createItemReq struct {
	Title          string  `json:"title" validate:"required"`
	Author         string  `json:"author" validate:"required"`
	ISBN           *string `json:"isbn"`
	Kind           string  `json:"kind" validate:"required,oneof=PHYSICAL DIGITAL_FREE DIGITAL_LICENSED"`
	TotalCopies    uint32  `json:"total_copies"`
	UnitPriceCents uint32  `json:"unit_price_cents"`
	PeriodDays     uint32  `json:"period_days"`
}

type updateItemReq struct {
	Title          string  `json:"title" validate:"required"`
	Author         string  `json:"author" validate:"required"`
	ISBN           *string `json:"isbn"`
	UnitPriceCents uint32  `json:"unit_price_cents"`
	PeriodDays     uint32  `json:"period_days"`
}

type resizeReq struct {
	TotalCopies uint32 `json:"total_copies"`
}

type itemResp struct {
	ID              uint64    `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            *string   `json:"isbn,omitempty"`
	Kind            string    `json:"kind"`
	Status          string    `json:"status"`
	TotalCopies     uint32    `json:"total_copies,omitempty"`
	AvailableCopies uint32    `json:"available_copies,omitempty"`
	UnitPriceCents  uint32    `json:"unit_price_cents,omitempty"`
	PeriodDays      uint32    `json:"period_days,omitempty"`
	Borrowable      bool      `json:"borrowable"`
	Rentable        bool      `json:"rentable"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toItemResp(it *model.CatalogItem) itemResp {
	return itemResp{
		ID:              it.ID,
		Title:           it.Title,
		Author:          it.Author,
		ISBN:            it.ISBN,
		Kind:            string(it.Kind),
		Status:          string(it.Status),
		TotalCopies:     it.TotalCopies,
		AvailableCopies: it.AvailableCopies,
		UnitPriceCents:  it.UnitPriceCents,
		PeriodDays:      it.PeriodDays,
		Borrowable:      it.Borrowable(),
		Rentable:        it.Rentable(),
		CreatedAt:       it.CreatedAt,
		UpdatedAt:       it.UpdatedAt,
	}
}

// List returns a page of catalog items.  Public.
// GET /v1/items?limit=&offset=
func (h *CatalogHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Catalog.List(ctx, limit, offset)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]itemResp, 0, len(items))
	for i := range items {
		out = append(out, toItemResp(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out, "limit": limit, "offset": offset})
}

// Get returns a single catalog item.  Public.
// GET /v1/items/:id
func (h *CatalogHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	it, err := h.Catalog.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toItemResp(it))
}

// Create registers a new catalog item.  Admin only.  Physical items
// start with all copies on the shelf; licensed items must carry a
// price and a period before they can be rented.
// POST /v1/admin/items
func (h *CatalogHandler) Create(c echo.Context) error {
	var req createItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	kind := model.ItemKind(strings.ToUpper(req.Kind))
	if kind == model.KindPhysical && req.TotalCopies == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "total_copies required for physical items"})
	}

	it := &model.CatalogItem{
		Title:           strings.TrimSpace(req.Title),
		Author:          strings.TrimSpace(req.Author),
		ISBN:            req.ISBN,
		Kind:            kind,
		Status:          model.StatusAvailable,
		TotalCopies:     req.TotalCopies,
		AvailableCopies: req.TotalCopies,
		UnitPriceCents:  req.UnitPriceCents,
		PeriodDays:      req.PeriodDays,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Catalog.Create(ctx, it); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "isbn already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create item failed"})
	}
	return c.JSON(http.StatusCreated, toItemResp(it))
}

// Update rewrites an item's editable fields.  Quantity changes go
// through Resize instead.  Admin only.
// PUT /v1/admin/items/:id
func (h *CatalogHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	var req updateItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	it, err := h.Catalog.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	it.Title = strings.TrimSpace(req.Title)
	it.Author = strings.TrimSpace(req.Author)
	it.ISBN = req.ISBN
	it.UnitPriceCents = req.UnitPriceCents
	it.PeriodDays = req.PeriodDays

	if err := h.Catalog.Update(ctx, it); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update item failed"})
	}
	return c.JSON(http.StatusOK, toItemResp(it))
}

// Disable takes an item out of circulation without touching open
// borrows; copies already out come back through the normal return
// flow.  Admin only.
// POST /v1/admin/items/:id/disable
func (h *CatalogHandler) Disable(c echo.Context) error {
	return h.setStatus(c, model.StatusDisabled)
}

// Enable puts a disabled item back in circulation.  Admin only.
// POST /v1/admin/items/:id/enable
func (h *CatalogHandler) Enable(c echo.Context) error {
	return h.setStatus(c, model.StatusAvailable)
}

func (h *CatalogHandler) setStatus(c echo.Context, status model.ItemStatus) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	err := h.Catalog.SetStatus(c.Request().Context(), id, status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "item not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update status failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": string(status)})
}

// Resize changes a physical item's total copy count; copies currently
// out with borrowers stay out.  Admin only.
// POST /v1/admin/items/:id/resize
func (h *CatalogHandler) Resize(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	var req resizeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	it, err := h.Alloc.Resize(c.Request().Context(), id, req.TotalCopies)
	if err != nil {
		return writeLendingError(c, err)
	}
	return c.JSON(http.StatusOK, toItemResp(it))
}
