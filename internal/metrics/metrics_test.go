package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentHandlerUsesRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(InstrumentHandler)
	r.HandleFunc("/v1/sessions/{token}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}).Methods(http.MethodGet)

	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/v1/sessions/{token}", "418"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/sessions/abc.def", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	after := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/v1/sessions/{token}", "418"))
	assert.Equal(t, before+1, after)
}

func TestRecordCounters(t *testing.T) {
	before := testutil.ToFloat64(submissions.WithLabelValues("failure"))
	RecordSubmission(false)
	assert.Equal(t, before+1, testutil.ToFloat64(submissions.WithLabelValues("failure")))

	sinkBefore := testutil.ToFloat64(sinkResults.WithLabelValues("unknown", "success"))
	RecordSink("", true)
	assert.Equal(t, sinkBefore+1, testutil.ToFloat64(sinkResults.WithLabelValues("unknown", "success")))

	started := testutil.ToFloat64(sessionsStarted)
	RecordSessionStarted()
	assert.Equal(t, started+1, testutil.ToFloat64(sessionsStarted))
}

func TestHandlerServesRegistry(t *testing.T) {
	RecordSessionStarted()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "applications_sessions_started_total")
}
