package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncSignup()                           {}
func (n *NoopRecorder) IncLogin(string)                      {}
func (n *NoopRecorder) IncEventCreated()                     {}
func (n *NoopRecorder) IncEventDeleted()                     {}
func (n *NoopRecorder) IncAttendanceToggled(bool)            {}
func (n *NoopRecorder) AddSessionsSwept(int64)               {}
func (n *NoopRecorder) ObserveRequestDuration(time.Duration) {}
