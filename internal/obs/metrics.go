// Package obs holds the Prometheus instrumentation shared by the HTTP
// layer and the lending engine.
package obs

import (
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP-level metrics.
var (
    httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
        Name: "http_in_flight_requests",
        Help: "In-flight HTTP requests.",
    })

    httpRequestsTotal = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Name: "http_requests_total",
            Help: "Total number of HTTP requests.",
        },
        []string{"method", "path", "status"},
    )

    httpRequestDuration = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{
            Name:    "http_request_duration_seconds",
            Help:    "HTTP request latencies in seconds.",
            Buckets: prometheus.DefBuckets,
        },
        []string{"method", "path", "status"},
    )
)

// Engine counters.  The sweep counters accumulate transitions, not
// passes, so graphing their rate shows how much actually expired.
var (
    BorrowsTotal = prometheus.NewCounter(prometheus.CounterOpts{
        Name: "lending_borrows_total",
        Help: "Successful physical borrows.",
    })
    ReturnsTotal = prometheus.NewCounter(prometheus.CounterOpts{
        Name: "lending_returns_total",
        Help: "Successful physical returns.",
    })
    RentalsTotal = prometheus.NewCounter(prometheus.CounterOpts{
        Name: "lending_rentals_total",
        Help: "Successful digital rentals.",
    })
    SweptOverdueTotal = prometheus.NewCounter(prometheus.CounterOpts{
        Name: "lending_swept_overdue_total",
        Help: "Borrow records transitioned to OVERDUE by the sweeper.",
    })
    SweptExpiredTotal = prometheus.NewCounter(prometheus.CounterOpts{
        Name: "lending_swept_expired_total",
        Help: "Rental orders transitioned to EXPIRED by the sweeper.",
    })
)

// Init registers all metrics with the default registry.  Call once
// from main before serving.
func Init() {
    prometheus.MustRegister(
        httpInFlight, httpRequestsTotal, httpRequestDuration,
        BorrowsTotal, ReturnsTotal, RentalsTotal,
        SweptOverdueTotal, SweptExpiredTotal,
    )
}

// Handler returns the /metrics scrape handler.
func Handler() echo.HandlerFunc {
    return echo.WrapHandler(promhttp.Handler())
}

// Instrument is an Echo middleware that measures request counts,
// latency and in-flight requests per route template.
func Instrument() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            httpInFlight.Inc()
            // Deferred so a panicking handler cannot strand the gauge.
            defer httpInFlight.Dec()
            start := time.Now()

            err := next(c)

            status := c.Response().Status
            if err != nil {
                if he, ok := err.(*echo.HTTPError); ok {
                    status = he.Code
                }
            }
            path := c.Path()
            if path == "" {
                path = c.Request().URL.Path
            }
            code := strconv.Itoa(status)
            dur := time.Since(start).Seconds()
            httpRequestDuration.WithLabelValues(c.Request().Method, path, code).Observe(dur)
            httpRequestsTotal.WithLabelValues(c.Request().Method, path, code).Inc()
            return err
        }
    }
}
