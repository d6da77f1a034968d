package logger

import "sync"

// Entry is one recorded log call.
type Entry struct {
	Severity Severity
	Message  string
	Detail   any
}

// Mock records log calls for assertions in tests. Safe for concurrent use.
type Mock struct {
	mu      sync.Mutex
	Entries []Entry
}

var _ Logger = (*Mock)(nil)

// NewMock creates a new mock logger.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Log(severity Severity, message string, detail ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := Entry{Severity: severity, Message: message}
	if len(detail) > 0 {
		entry.Detail = detail[0]
	}
	m.Entries = append(m.Entries, entry)
}

// BySeverity returns the recorded entries with the given severity.
func (m *Mock) BySeverity(severity Severity) []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Entry
	for _, e := range m.Entries {
		if e.Severity == severity {
			out = append(out, e)
		}
	}
	return out
}

// Reset clears all recorded entries.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = nil
}
