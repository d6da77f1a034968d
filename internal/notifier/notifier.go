package notifier

// RunOutcome summarizes one finished booking workflow run.
type RunOutcome struct {
	ConfigName string
	Date       string // DD/MM/YYYY display rendering
	Hour       string
	CourtID    string
	CourtName  string
	TestMode   bool
	MockMode   bool
	Err        string // empty on success
}

// Succeeded reports whether the run completed without error.
func (o RunOutcome) Succeeded() bool {
	return o.Err == ""
}

// Notifier defines a high-level interface for announcing run outcomes.
// This decouples the rest of the application from the specific notification
// provider (e.g., Slack).
type Notifier interface {
	SendRunResult(outcome RunOutcome, dryRun bool) error
}
