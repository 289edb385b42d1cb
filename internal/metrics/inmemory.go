package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Signups                uint64
	LoginsSucceeded        uint64
	LoginsFailed           uint64
	EventsCreated          uint64
	EventsDeleted          uint64
	AttendanceJoined       uint64
	AttendanceLeft         uint64
	SessionsSwept          int64
	RequestDurationCount   uint64
	RequestDurationTotalNs int64
}

// InMemoryRecorder keeps counters in process memory. It backs /metrics and
// doubles as an assertion target in tests.
type InMemoryRecorder struct {
	signups                uint64
	loginsSucceeded        uint64
	loginsFailed           uint64
	eventsCreated          uint64
	eventsDeleted          uint64
	attendanceJoined       uint64
	attendanceLeft         uint64
	sessionsSwept          int64
	requestDurationCount   uint64
	requestDurationTotalNs int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		Signups:                atomic.LoadUint64(&m.signups),
		LoginsSucceeded:        atomic.LoadUint64(&m.loginsSucceeded),
		LoginsFailed:           atomic.LoadUint64(&m.loginsFailed),
		EventsCreated:          atomic.LoadUint64(&m.eventsCreated),
		EventsDeleted:          atomic.LoadUint64(&m.eventsDeleted),
		AttendanceJoined:       atomic.LoadUint64(&m.attendanceJoined),
		AttendanceLeft:         atomic.LoadUint64(&m.attendanceLeft),
		SessionsSwept:          atomic.LoadInt64(&m.sessionsSwept),
		RequestDurationCount:   atomic.LoadUint64(&m.requestDurationCount),
		RequestDurationTotalNs: atomic.LoadInt64(&m.requestDurationTotalNs),
	}
}

// IncSignup increments the signup counter.
func (m *InMemoryRecorder) IncSignup() {
	atomic.AddUint64(&m.signups, 1)
}

// IncLogin counts a login attempt by outcome.
func (m *InMemoryRecorder) IncLogin(status string) {
	if status == LoginSuccess {
		atomic.AddUint64(&m.loginsSucceeded, 1)
		return
	}
	atomic.AddUint64(&m.loginsFailed, 1)
}

// IncEventCreated increments the event created counter.
func (m *InMemoryRecorder) IncEventCreated() {
	atomic.AddUint64(&m.eventsCreated, 1)
}

// IncEventDeleted increments the event deleted counter.
func (m *InMemoryRecorder) IncEventDeleted() {
	atomic.AddUint64(&m.eventsDeleted, 1)
}

// IncAttendanceToggled counts a toggle by its resulting state.
func (m *InMemoryRecorder) IncAttendanceToggled(going bool) {
	if going {
		atomic.AddUint64(&m.attendanceJoined, 1)
		return
	}
	atomic.AddUint64(&m.attendanceLeft, 1)
}

// AddSessionsSwept adds to the expired-session counter.
func (m *InMemoryRecorder) AddSessionsSwept(n int64) {
	atomic.AddInt64(&m.sessionsSwept, n)
}

// ObserveRequestDuration records request duration.
func (m *InMemoryRecorder) ObserveRequestDuration(duration time.Duration) {
	atomic.AddUint64(&m.requestDurationCount, 1)
	atomic.AddInt64(&m.requestDurationTotalNs, duration.Nanoseconds())
}
