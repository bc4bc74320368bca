package obs

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func instrumentContext(method, target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestInstrumentCountsRequest(t *testing.T) {
	c := instrumentContext(http.MethodGet, "/ok")

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/ok", "200"))
	h := Instrument()(func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	require.NoError(t, h(c))

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/ok", "200"))
	assert.Equal(t, before+1, after)
	assert.Equal(t, 0.0, testutil.ToFloat64(httpInFlight))
}

func TestInstrumentReleasesInFlightOnPanic(t *testing.T) {
	c := instrumentContext(http.MethodGet, "/boom")

	h := Instrument()(func(echo.Context) error { panic("boom") })
	require.Panics(t, func() { _ = h(c) })

	// The gauge must come back down even when the handler never
	// returns, otherwise every recovered panic inflates it forever.
	assert.Equal(t, 0.0, testutil.ToFloat64(httpInFlight))
}
