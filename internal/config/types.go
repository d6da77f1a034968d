package config

import "github.com/mauv0809/courtbooker/internal/booking"

// Config is the full, immutable input for one booking run.
type Config struct {
	LoginURL  string `yaml:"loginUrl"`
	MemberURL string `yaml:"memberUrl"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`

	// ReservationDate is an explicit YYYY-MM-DD target date. When empty the
	// date is computed as today plus BookingAdvance days (default 7).
	ReservationDate string `yaml:"reservationDate,omitempty"`
	BookingAdvance  *int   `yaml:"bookingAdvance,omitempty"`

	HourPreferences     []string     `yaml:"hourPreferences"`
	UseCourtPreferences bool         `yaml:"useCourtPreferences"`
	Courts              CourtsConfig `yaml:"courts"`

	Partners []booking.Partner `yaml:"partners,omitempty"`

	// TestMode runs the full workflow but suppresses the final network write.
	TestMode bool `yaml:"testMode"`

	// HTTP overrides the built-in endpoint/selector settings.
	HTTP booking.Settings `yaml:"http,omitempty"`
}

// CourtsConfig maps known court identifiers to display labels and carries the
// ranked court preference list.
type CourtsConfig struct {
	Names       map[string]string `yaml:"names,omitempty"`
	Preferences []string          `yaml:"preferences,omitempty"`
}

// ServerConfig holds the orchestrator server's own settings, read from the
// environment.
type ServerConfig struct {
	Port           string
	SpoolDir       string
	BaseConfigPath string
}
