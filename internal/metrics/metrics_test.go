package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New()
	m.OrderTransition("Confirmed", "Shipped")
	m.OrderTransition("Confirmed", "Shipped")
	m.StockIntake("created")
	m.StockIntake("duplicate")
	m.EventPublishFailed()
	m.ObserveHTTP("/api/order/:orderId", http.MethodGet, 200, 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("Confirmed", "Shipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.stockIntake.WithLabelValues("duplicate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventPublishErr))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/order/:orderId", "GET", "200")))
}

func TestNilSafe(t *testing.T) {
	var m *Metrics
	m.OrderTransition("a", "b")
	m.StockIntake("created")
	m.EventPublishFailed()
	m.ObserveHTTP("", "GET", 200, 0)
}

func TestHandler(t *testing.T) {
	m := New()
	m.StockIntake("created")

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.True(t, strings.Contains(body, `backoffice_stock_intake_total{result="created"} 1`), body)
	assert.Contains(t, body, "go_goroutines")
}
