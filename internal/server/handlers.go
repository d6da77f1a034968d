package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mauv0809/courtbooker/internal/config"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// startRequest is the /start payload. A request either targets one specific
// date with up to three preferred hours, or a list of date entries each
// carrying its own hours.
type startRequest struct {
	Username        string      `json:"username"`
	Password        string      `json:"password"`
	PreferredCourt  string      `json:"preferredCourt"`
	DateMethod      string      `json:"dateMethod"`
	ReservationDate string      `json:"reservationDate"`
	MultipleDates   []dateEntry `json:"multipleDates"`
	PreferredHour1  string      `json:"preferredHour1"`
	PreferredHour2  string      `json:"preferredHour2"`
	PreferredHour3  string      `json:"preferredHour3"`
	TestMode        bool        `json:"testMode"`
}

type dateEntry struct {
	Date  string   `json:"date"`
	Hours []string `json:"hours"`
}

type scheduledDate struct {
	Date          string   `json:"date"`
	ExecutionDate string   `json:"executionDate"`
	Hours         []string `json:"hours"`
}

type startResponse struct {
	Message        string          `json:"message"`
	ScheduledDates []scheduledDate `json:"scheduledDates,omitempty"`
}

var slashDatePattern = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)

// StartHandler accepts a booking request, writes one spooled config file per
// target date and schedules each run at booking-open time, which is the
// target date minus seven days at 00:01 local. Past opening times run right
// away, and test mode enqueues immediately.
func (s *Server) StartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSONError(w, http.StatusMethodNotAllowed, "POST required")
			return
		}
		var req startRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Username == "" {
			req.Username = s.Base.Username
		}
		if req.Password == "" {
			req.Password = s.Base.Password
		}
		if req.Username == "" || req.Password == "" {
			writeJSONError(w, http.StatusBadRequest, "missing credentials")
			return
		}
		if isDryRunFromContext(r) {
			req.TestMode = true
		}

		hours := collectHours(req.PreferredHour1, req.PreferredHour2, req.PreferredHour3)
		log.Info("Received booking request",
			"dateMethod", req.DateMethod,
			"date", req.ReservationDate,
			"multipleDates", len(req.MultipleDates),
			"testMode", req.TestMode)

		switch {
		case req.DateMethod == "specific" && req.ReservationDate != "":
			s.handleSpecific(w, req, hours)
		case req.DateMethod == "multiple" && len(req.MultipleDates) > 0:
			s.handleMultiple(w, req)
		default:
			writeJSONError(w, http.StatusBadRequest, "invalid date method or missing dates")
		}
	}
}

func (s *Server) handleSpecific(w http.ResponseWriter, req startRequest, hours []string) {
	target, err := parseRequestDate(req.ReservationDate)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid date: %s", req.ReservationDate))
		return
	}
	scheduled, err := s.scheduleRun(req, target, hours)
	if err != nil {
		log.Error("Failed to schedule run", "date", req.ReservationDate, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to schedule run")
		return
	}

	message := fmt.Sprintf("Booking scheduled for %s, executing at %s.", scheduled.Date, scheduled.ExecutionDate)
	if req.TestMode {
		message = "Run started in test mode."
	}
	writeJSON(w, http.StatusOK, startResponse{
		Message:        message,
		ScheduledDates: []scheduledDate{scheduled},
	})
}

func (s *Server) handleMultiple(w http.ResponseWriter, req startRequest) {
	entries := append([]dateEntry(nil), req.MultipleDates...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })

	var scheduled []scheduledDate
	for _, entry := range entries {
		if entry.Date == "" || len(entry.Hours) == 0 {
			log.Warn("Skipping date entry with missing date or hours", "date", entry.Date)
			continue
		}
		target, err := parseRequestDate(entry.Date)
		if err != nil {
			log.Warn("Skipping unparseable date entry", "date", entry.Date)
			continue
		}
		item, err := s.scheduleRun(req, target, entry.Hours)
		if err != nil {
			log.Error("Failed to schedule run", "date", entry.Date, "error", err)
			continue
		}
		scheduled = append(scheduled, item)
	}
	if len(scheduled) == 0 {
		writeJSONError(w, http.StatusBadRequest, "no valid date entries")
		return
	}

	message := fmt.Sprintf("%d booking(s) scheduled for execution seven days before each date.", len(scheduled))
	if req.TestMode {
		message = fmt.Sprintf("%d booking(s) started in test mode.", len(scheduled))
	}
	writeJSON(w, http.StatusOK, startResponse{Message: message, ScheduledDates: scheduled})
}

// scheduleRun spools one config file for the target date and puts it on the
// queue, either immediately in test mode or at booking-open time.
func (s *Server) scheduleRun(req startRequest, target time.Time, hours []string) (scheduledDate, error) {
	cfg := s.buildRunConfig(req, target, hours)
	path, err := s.Spool.WriteConfig(cfg, cfg.ReservationDate)
	if err != nil {
		return scheduledDate{}, err
	}

	execution := target.AddDate(0, 0, -7)
	execution = time.Date(execution.Year(), execution.Month(), execution.Day(), 0, 1, 0, 0, execution.Location())
	now := s.now()
	if execution.Before(now) {
		execution = now.Add(5 * time.Second)
	}

	job := Job{ConfigPath: path, Description: cfg.ReservationDate}
	if req.TestMode {
		s.Queue.Enqueue(job)
	} else {
		s.Queue.ScheduleAt(execution, job)
	}
	return scheduledDate{
		Date:          cfg.ReservationDate,
		ExecutionDate: execution.Format(time.RFC3339),
		Hours:         hours,
	}, nil
}

// buildRunConfig overlays the request on the base config. The generated
// config pins the explicit date with a zero booking advance so the run never
// recomputes it.
func (s *Server) buildRunConfig(req startRequest, target time.Time, hours []string) config.Config {
	cfg := s.Base
	cfg.Username = req.Username
	cfg.Password = req.Password
	cfg.HourPreferences = hours
	cfg.ReservationDate = target.Format("2006-01-02")
	advance := 0
	cfg.BookingAdvance = &advance
	cfg.TestMode = req.TestMode
	cfg.UseCourtPreferences = req.PreferredCourt != ""
	if req.PreferredCourt != "" {
		cfg.Courts.Preferences = []string{req.PreferredCourt}
	} else {
		cfg.Courts.Preferences = nil
	}
	return cfg
}

// parseRequestDate accepts YYYY-MM-DD or DD/MM/YYYY.
func parseRequestDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if m := slashDatePattern.FindStringSubmatch(raw); m != nil {
		raw = fmt.Sprintf("%s-%s-%s", m[3], m[2], m[1])
	}
	return time.ParseInLocation("2006-01-02", raw, time.Local)
}

func collectHours(hours ...string) []string {
	var out []string
	for _, h := range hours {
		if trimmed := strings.TrimSpace(h); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, startResponse{Message: message})
}
