package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveOperation(t *testing.T) {
	before := testutil.CollectAndCount(OperationDuration)

	ObserveOperation("metrics_test_ok", time.Now(), nil)
	ObserveOperation("metrics_test_failed", time.Now(), errors.New("boom"))

	assert.Equal(t, before+2, testutil.CollectAndCount(OperationDuration))
}

func TestHTTPMiddleware(t *testing.T) {
	handler := HTTPMiddleware(func(r *http.Request) string { return "/test/{id}" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}),
	)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test/1", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test/2", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	// both requests share one series
	assert.Equal(t, 1, testutil.CollectAndCount(httpRequestDuration))
}

func TestHandler(t *testing.T) {
	LessonCompletions.WithLabelValues(TriggerPlayback).Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(LessonCompletions.WithLabelValues(TriggerPlayback)))

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `progress_lesson_completions_total{trigger="playback"} 1`)
}
