package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerServesCollectors(t *testing.T) {
	RequestsTotal.WithLabelValues("/api/:table", "GET", "200").Inc()
	MirrorDeliveries.WithLabelValues("delivered").Inc()
	MirrorQueueDepth.Set(3)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	out := string(body)
	assert.Contains(t, out, "tabard_requests_total")
	assert.Contains(t, out, "tabard_request_duration_seconds")
	assert.Contains(t, out, "tabard_mirror_deliveries_total")
	assert.Contains(t, out, "tabard_mirror_queue_depth 3")
}
