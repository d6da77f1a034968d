package notifier

import "sync"

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	SendRunResultCalls []RunOutcome
	SendRunResultFunc  func(outcome RunOutcome, dryRun bool) error
}

var _ Notifier = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) SendRunResult(outcome RunOutcome, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendRunResultCalls = append(m.SendRunResultCalls, outcome)
	if m.SendRunResultFunc != nil {
		return m.SendRunResultFunc(outcome, dryRun)
	}
	return nil
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendRunResultCalls = nil
}
