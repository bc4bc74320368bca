package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/library-lending/internal/lending"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64.
// JWT claims arrive as float64, but tests and middleware may store other
// numeric types.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses a numeric :id (or other named) path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

// lendingStatus maps a lending error code to an HTTP status.
func lendingStatus(code lending.ErrCode) int {
	switch code {
	case lending.CodeItemNotFound, lending.CodeRecordNotFound, lending.CodeOrderNotFound:
		return http.StatusNotFound
	case lending.CodeUnauthorized:
		return http.StatusForbidden
	case lending.CodeOutOfStock, lending.CodeBorrowLimitExceeded, lending.CodeAlreadyBorrowed,
		lending.CodeAlreadyReturned, lending.CodeItemNotAvailable, lending.CodeNotCancellable:
		return http.StatusConflict
	case lending.CodeInvalidDuration, lending.CodeInvalidPeriods, lending.CodeItemNotPhysical,
		lending.CodeItemNotBorrowable, lending.CodeItemNotRentable, lending.CodeNotRental,
		lending.CodeRentalConfigMissing:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeLendingError renders a lending error as the standard JSON envelope.
// Errors that did not originate in the engine are reported as a bare 500
// so internals do not leak.
func writeLendingError(c echo.Context, err error) error {
	code := lending.Code(err)
	if code == "" {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(lendingStatus(code), echo.Map{"error": err.Error(), "code": string(code)})
}
