package logger

import "github.com/charmbracelet/log"

// Charm routes workflow status lines to the process-wide charmbracelet
// logger. Success and step lines land on the info level tagged with their
// kind so the run transcript stays greppable.
type Charm struct{}

var _ Logger = Charm{}

// NewCharm returns the standard charm-backed logger.
func NewCharm() Charm {
	return Charm{}
}

func (Charm) Log(severity Severity, message string, detail ...any) {
	kv := []any{"kind", string(severity)}
	if len(detail) > 0 && detail[0] != nil {
		kv = append(kv, "detail", detail[0])
	}
	switch severity {
	case Warning:
		log.Warn(message, kv...)
	case Error:
		log.Error(message, kv...)
	default:
		log.Info(message, kv...)
	}
}
