package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_ExposesCollectors(t *testing.T) {
	RecordSaveRetry()
	RecordOperation(OutcomeDebitFailed)
	ObserveHTTP(http.MethodGet, "/operation/health", 5*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "calc_save_retries_total")
	assert.Contains(t, body, `calc_operations_total{outcome="debit_failed"}`)
	assert.Contains(t, body, `calc_http_request_duration_seconds_count{method="GET",route="/operation/health"}`)
}
