// Package logger defines the status sink the booking workflow reports to.
package logger

// Severity classifies a workflow status line.
type Severity string

const (
	Info    Severity = "info"
	Success Severity = "success"
	Warning Severity = "warning"
	Error   Severity = "error"
	Step    Severity = "step"
)

// Logger is the sink the workflow emits status lines to. The optional detail
// carries structured context for the message.
type Logger interface {
	Log(severity Severity, message string, detail ...any)
}
