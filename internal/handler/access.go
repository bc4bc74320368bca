package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-lending/internal/lending"
)

// AccessHandler answers whether the caller has ever held access to an
// item.  The review subsystem calls this to mark reviews as verified.
type AccessHandler struct {
	Verifier *lending.AccessVerifier
}

func NewAccessHandler(v *lending.AccessVerifier) *AccessHandler {
	if v == nil {
		panic("nil verifier passed to NewAccessHandler")
	}
	return &AccessHandler{Verifier: v}
}

// Check reports whether the caller ever borrowed or rented the item.
// GET /v1/items/:id/access
func (h *AccessHandler) Check(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid item id"})
	}
	accessed, err := h.Verifier.HasAccessed(c.Request().Context(), uid, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item_id": id, "accessed": accessed})
}
