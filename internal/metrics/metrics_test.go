package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/kode4food/airdraw/internal/metrics"
)

func TestRecordScan(t *testing.T) {
	m := metrics.New()

	m.RecordScan(time.Second, nil, 3, 7, 2)
	m.RecordScan(time.Second, errors.New("boom"), 0, 0, 0)

	as := assert.New(t)
	as.Equal(1.0, testutil.ToFloat64(m.Scans.WithLabelValues("ok")))
	as.Equal(1.0, testutil.ToFloat64(m.Scans.WithLabelValues("error")))
	as.Equal(3.0, testutil.ToFloat64(m.CatalogModules))
	as.Equal(7.0, testutil.ToFloat64(m.CatalogOps))
	as.Equal(2.0, testutil.ToFloat64(m.CatalogErrors))
}

func TestRecordDescribeAndSave(t *testing.T) {
	m := metrics.New()

	m.RecordDescribe("live", time.Millisecond, nil)
	m.RecordDescribe("live", time.Millisecond, errors.New("nope"))
	m.RecordDAGSave(nil)
	m.RecordDAGSave(nil)

	assert.Equal(t, 1.0,
		testutil.ToFloat64(m.Describes.WithLabelValues("live", "error")),
	)
	assert.Equal(t, 2.0,
		testutil.ToFloat64(m.DAGSaves.WithLabelValues("ok")),
	)
}

func TestNilMetrics(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.RecordScan(time.Second, nil, 1, 1, 1)
		m.RecordDescribe("static", time.Second, nil)
		m.RecordDAGSave(nil)
		m.RecordHTTPRequest("GET", "/health", 200, time.Second)
	})
}

func TestHandler(t *testing.T) {
	m := metrics.New()
	m.RecordHTTPRequest("GET", "/health", http.StatusOK, time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(),
		`airdraw_http_requests_total{method="GET",path="/health",status_code="200"} 1`,
	)
}
