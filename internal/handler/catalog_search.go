package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-lending/internal/repository"
)

// Search filters the catalog by title, author and kind with pagination.
// GET /v1/search/items
func (h *CatalogHandler) Search(c echo.Context) error {
	title := strings.TrimSpace(c.QueryParam("title"))
	author := strings.TrimSpace(c.QueryParam("author"))
	kind := strings.TrimSpace(c.QueryParam("kind"))

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	ps, _ := strconv.Atoi(c.QueryParam("page_size"))
	if ps < 1 {
		ps = 20
	}
	if ps > 100 {
		ps = 100
	}

	q := repository.CatalogSearchQuery{
		Title:    title,
		Author:   author,
		Kind:     kind,
		Page:     page,
		PageSize: ps,
	}

	items, total, err := h.Catalog.Search(c.Request().Context(), q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":   "database_error",
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data":      items,
		"total":     total,
		"page":      page,
		"page_size": ps,
	})
}
