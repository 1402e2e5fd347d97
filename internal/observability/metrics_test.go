package observability

import (
	"bytes"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveAPICountsServerErrors(t *testing.T) {
	m := New()
	m.ObserveAPI("GET", "/api/properties", "200", 20*time.Millisecond)
	m.ObserveAPI("POST", "/api/leads", "500", 3*time.Second)

	assert.Equal(t, float64(2), m.apiReqTotal.value())
	assert.Equal(t, float64(1), m.apiReqError.value())
	assert.Equal(t, float64(1), m.apiRequests.value("GET", "/api/properties", "200"))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Millisecond)
	m.ApiInflightInc()
	m.IncLeadCreated("Site")
	m.IncPropertyView()

	rec := httptest.NewRecorder()
	m.WriteHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 503, rec.Code)
}

func TestWritePrometheusFormat(t *testing.T) {
	m := New()
	m.IncLeadCreated("")
	m.IncLeadCreated("Site")
	m.IncPropertyView()
	m.ApiInflightInc()
	m.ObserveAPI("GET", "/healthcheck", "200", 2*time.Millisecond)

	var buf bytes.Buffer
	require.NoError(t, m.WritePrometheus(&buf))
	out := buf.String()

	assert.Contains(t, out, "# TYPE imoveis_leads_created_total counter")
	assert.Contains(t, out, `imoveis_leads_created_total{origin="Site"} 1`)
	assert.Contains(t, out, `imoveis_leads_created_total{origin="unknown"} 1`)
	assert.Contains(t, out, "imoveis_property_views_total 1")
	assert.Contains(t, out, "imoveis_api_inflight_requests 1")
	assert.Contains(t, out, `imoveis_api_request_duration_seconds_bucket{method="GET",route="/healthcheck",status="200",le="0.005"} 1`)
	assert.Contains(t, out, `imoveis_api_request_duration_seconds_count{method="GET",route="/healthcheck",status="200"} 1`)
}

func TestLabelStringEscapes(t *testing.T) {
	got := labelString([]string{"route"}, []string{`a"b`})
	assert.Equal(t, `{route="a\"b"}`, got)
	assert.Equal(t, `{le="1"}`, withLe("", "1"))
	assert.Equal(t, `{route="/x",le="+Inf"}`, withLe(`{route="/x"}`, "+Inf"))
}

func TestWritePrometheusEmptySeries(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New().WritePrometheus(&buf))
	out := buf.String()
	assert.Contains(t, out, "imoveis_realtime_dropped_total 0\n")
	assert.Contains(t, out, "# TYPE imoveis_api_request_duration_seconds histogram")
	assert.NotContains(t, out, "imoveis_leads_created_total{")
}

func TestLatencyBucketsAreCumulative(t *testing.T) {
	l := newLatency("x_seconds", "x", []float64{0.1, 1})
	l.observe(0.0625)
	l.observe(0.5)
	l.observe(3)

	var buf bytes.Buffer
	require.NoError(t, l.writeTo(&buf))
	out := buf.String()
	assert.Contains(t, out, `x_seconds_bucket{le="0.1"} 1`)
	assert.Contains(t, out, `x_seconds_bucket{le="1"} 2`)
	assert.Contains(t, out, `x_seconds_bucket{le="+Inf"} 3`)
	assert.Contains(t, out, "x_seconds_sum 3.5625\n")
	assert.Contains(t, out, "x_seconds_count 3\n")
}
