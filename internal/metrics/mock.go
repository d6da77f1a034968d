package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	RunsStartedCount   int
	RunsSucceededCount int
	RunsFailedCount    int
	RunDurations       []float64
	NotifSentCount     int
	NotifFailedCount   int
	StartupTime        float64
}

var _ Metrics = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) IncRunsStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RunsStartedCount++
}

func (m *Mock) IncRunsSucceeded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RunsSucceededCount++
}

func (m *Mock) IncRunsFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RunsFailedCount++
}

func (m *Mock) ObserveRunDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RunDurations = append(m.RunDurations, seconds)
}

func (m *Mock) IncNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifSentCount++
}

func (m *Mock) IncNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifFailedCount++
}

func (m *Mock) SetStartupTime(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartupTime = seconds
}
