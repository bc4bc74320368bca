package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/library-lending/internal/lending"
)

func TestLendingStatusMapping(t *testing.T) {
	cases := []struct {
		code lending.ErrCode
		want int
	}{
		{lending.CodeItemNotFound, http.StatusNotFound},
		{lending.CodeRecordNotFound, http.StatusNotFound},
		{lending.CodeOrderNotFound, http.StatusNotFound},
		{lending.CodeUnauthorized, http.StatusForbidden},
		{lending.CodeOutOfStock, http.StatusConflict},
		{lending.CodeBorrowLimitExceeded, http.StatusConflict},
		{lending.CodeAlreadyBorrowed, http.StatusConflict},
		{lending.CodeAlreadyReturned, http.StatusConflict},
		{lending.CodeNotCancellable, http.StatusConflict},
		{lending.CodeInvalidDuration, http.StatusUnprocessableEntity},
		{lending.CodeInvalidPeriods, http.StatusUnprocessableEntity},
		{lending.CodeItemNotRentable, http.StatusUnprocessableEntity},
		{lending.CodeNotRental, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, lendingStatus(tc.code), string(tc.code))
	}
}

func TestWriteLendingErrorEnvelope(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/borrows", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, writeLendingError(c, lending.ErrOutOfStock))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"OUT_OF_STOCK"`)
}

func TestWriteLendingErrorHidesInternals(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/borrows", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, writeLendingError(c, errors.New("dial tcp: connection refused")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "dial tcp")
}

func TestGetUserIDAcceptsClaimTypes(t *testing.T) {
	e := echo.New()
	for _, v := range []any{uint64(7), int(7), int64(7), float64(7), "7"} {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.Set("user_id", v)
		got, err := getUserID(c)
		require.NoError(t, err)
		assert.Equal(t, uint64(7), got)
	}

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, err := getUserID(c)
	assert.Error(t, err)
}

func TestValidatorRejectsBadRegister(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&registerReq{Email: "not-an-email", Password: "secret123"})
	assert.Error(t, err)

	err = v.Validate(&registerReq{Email: "reader@example.com", Password: "short"})
	assert.Error(t, err)

	err = v.Validate(&registerReq{Email: "reader@example.com", Password: "long enough"})
	assert.NoError(t, err)
}

func TestBorrowBindRejectsGarbage(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/v1/borrows", strings.NewReader("{not json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(7))

	h := &BorrowHandler{}
	require.NoError(t, h.Borrow(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
