package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/happeningnu/happening/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns counters in Prometheus text exposition format.
//
// GET /metrics
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "happening_signups_total %d\n", snap.Signups)
	writeMetric(w, "happening_logins_total{status=\"success\"} %d\n", snap.LoginsSucceeded)
	writeMetric(w, "happening_logins_total{status=\"failed\"} %d\n", snap.LoginsFailed)

	writeMetric(w, "happening_events_created_total %d\n", snap.EventsCreated)
	writeMetric(w, "happening_events_deleted_total %d\n", snap.EventsDeleted)

	writeMetric(w, "happening_attendance_toggles_total{going=\"true\"} %d\n", snap.AttendanceJoined)
	writeMetric(w, "happening_attendance_toggles_total{going=\"false\"} %d\n", snap.AttendanceLeft)

	writeMetric(w, "happening_sessions_swept_total %d\n", snap.SessionsSwept)

	writeMetric(w, "happening_http_request_duration_seconds_count %d\n", snap.RequestDurationCount)
	writeMetric(w, "happening_http_request_duration_seconds_sum %.6f\n", float64(snap.RequestDurationTotalNs)/1e9)
}

func writeMetric(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
