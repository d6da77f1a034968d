package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/mauv0809/courtbooker/internal/booking"
	"github.com/mauv0809/courtbooker/internal/config"
	"github.com/mauv0809/courtbooker/internal/logger"
	"github.com/mauv0809/courtbooker/internal/metrics"
	"github.com/mauv0809/courtbooker/internal/notifier"
	"github.com/mauv0809/courtbooker/internal/scoring"
	"github.com/mauv0809/courtbooker/internal/session"
)

// SessionFactory builds the session client for a run. Tests swap it for a
// session.Mock.
type SessionFactory func(cfg config.Config, settings booking.Settings, log logger.Logger) (session.Client, error)

func defaultSessionFactory(cfg config.Config, settings booking.Settings, log logger.Logger) (session.Client, error) {
	return session.New(cfg, settings, log)
}

// Runner executes complete booking runs. The notifier and metrics are
// optional and skipped when nil.
type Runner struct {
	log        logger.Logger
	notifier   notifier.Notifier
	metrics    metrics.Metrics
	newSession SessionFactory
	now        func() time.Time
}

// Option customizes a Runner.
type Option func(*Runner)

// WithNotifier attaches a run-result notifier.
func WithNotifier(n notifier.Notifier) Option {
	return func(r *Runner) { r.notifier = n }
}

// WithMetrics attaches run metrics.
func WithMetrics(m metrics.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithSessionFactory overrides how session clients are built.
func WithSessionFactory(f SessionFactory) Option {
	return func(r *Runner) { r.newSession = f }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// New creates a Runner.
func New(log logger.Logger, opts ...Option) *Runner {
	r := &Runner{
		log:        log,
		newSession: defaultSessionFactory,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result describes a completed run.
type Result struct {
	Slot   booking.Slot
	Target booking.TargetDate
	Mock   bool
}

// Run executes one booking attempt end to end: resolve the target date,
// validate the configuration, then either walk the mock slot list or drive
// the live login/fetch/score/submit sequence. The returned error is one of
// the typed booking errors when the failure is config, network or
// availability related.
func (r *Runner) Run(ctx context.Context, cfg config.Config, configName string) (*Result, error) {
	started := r.now()
	if r.metrics != nil {
		r.metrics.IncRunsStarted()
	}

	result, err := r.run(ctx, cfg)

	if r.metrics != nil {
		r.metrics.ObserveRunDuration(r.now().Sub(started).Seconds())
		if err != nil {
			r.metrics.IncRunsFailed()
		} else {
			r.metrics.IncRunsSucceeded()
		}
	}
	r.notify(cfg, configName, result, err)
	return result, err
}

func (r *Runner) run(ctx context.Context, cfg config.Config) (*Result, error) {
	settings := booking.Merge(booking.DefaultSettings(), cfg.HTTP)
	if settings.BaseURL == "" {
		settings.BaseURL = cfg.MemberURL
	}
	mock := settings.Mode == "mock"

	if err := cfg.Validate(settings.Mode); err != nil {
		return nil, err
	}
	target, err := booking.ResolveTargetDate(cfg.ReservationDate, cfg.BookingAdvance, settings.Endpoints.ReservationPage, r.now())
	if err != nil {
		return nil, err
	}
	r.log.Log(logger.Info, fmt.Sprintf("Target date %s", target.Display))

	prefs := scoring.Preferences{
		Hours:     cfg.HourPreferences,
		Courts:    cfg.Courts.Preferences,
		UseCourts: cfg.UseCourtPreferences,
	}

	if mock {
		return r.runMock(settings, target, prefs)
	}

	sess, err := r.newSession(cfg, settings, r.log)
	if err != nil {
		return nil, err
	}
	if err := sess.Login(ctx); err != nil {
		return nil, err
	}
	reservation, err := sess.FetchContext(ctx, target)
	if err != nil {
		return nil, err
	}

	best := scoring.SelectBest(reservation.Slots, prefs)
	if best == nil {
		return nil, &booking.NoEligibleSlotError{Considered: len(reservation.Slots)}
	}
	r.logSelection(*best)

	if err := sess.Submit(ctx, reservation, *best); err != nil {
		return nil, err
	}
	r.log.Log(logger.Success, fmt.Sprintf("Reserved %s at %s on %s", best.CourtName, best.Hour, target.Display))
	return &Result{Slot: *best, Target: target}, nil
}

// runMock scores the configured slot list without touching the network.
func (r *Runner) runMock(settings booking.Settings, target booking.TargetDate, prefs scoring.Preferences) (*Result, error) {
	r.log.Log(logger.Step, "Running in mock mode, no network calls will be made")
	var slots []booking.Slot
	if settings.Mock != nil {
		slots = settings.Mock.AvailableSlots
	}
	best := scoring.SelectBest(slots, prefs)
	if best == nil {
		return nil, &booking.NoEligibleSlotError{Considered: len(slots)}
	}
	r.logSelection(*best)

	message := fmt.Sprintf("Mock reservation of %s at %s on %s", best.CourtName, best.Hour, target.Display)
	if settings.Mock != nil && settings.Mock.OnSuccessMessage != "" {
		message = settings.Mock.OnSuccessMessage
	}
	r.log.Log(logger.Success, message)
	return &Result{Slot: *best, Target: target, Mock: true}, nil
}

func (r *Runner) logSelection(slot booking.Slot) {
	if slot.Fallback {
		r.log.Log(logger.Warning, fmt.Sprintf(
			"No exact hour match, falling back to %s (%d min from preferred %s)",
			slot.Hour, slot.DifferenceMinutes, slot.MatchedPreference))
		return
	}
	r.log.Log(logger.Info, fmt.Sprintf("Selected %s at %s", slot.CourtName, slot.Hour))
}

func (r *Runner) notify(cfg config.Config, configName string, result *Result, err error) {
	if r.notifier == nil {
		return
	}
	outcome := notifier.RunOutcome{
		ConfigName: configName,
		TestMode:   cfg.TestMode,
	}
	if err != nil {
		outcome.Err = err.Error()
	}
	if result != nil {
		outcome.Date = result.Target.Display
		outcome.Hour = result.Slot.Hour
		outcome.CourtID = result.Slot.CourtID
		outcome.CourtName = result.Slot.CourtName
		outcome.MockMode = result.Mock
	}
	if sendErr := r.notifier.SendRunResult(outcome, false); sendErr != nil {
		r.log.Log(logger.Warning, "Failed to send the run notification", sendErr.Error())
	}
}
