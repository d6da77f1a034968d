package booking

import "time"

// Origin records where a slot was discovered.
type Origin string

const (
	// OriginContent marks slots parsed out of the reservation page markup.
	OriginContent Origin = "content"
	// OriginDataEndpoint marks slots parsed from the secondary data endpoint.
	OriginDataEndpoint Origin = "data-endpoint"
)

// Slot is one bookable (court, hour) combination discovered during a fetch.
// The Fallback/MatchedPreference/DifferenceMinutes fields are only populated
// on a slot returned by the scorer.
type Slot struct {
	CourtID   string `yaml:"courtId" json:"courtId"`
	CourtName string `yaml:"courtName" json:"courtName"`
	Hour      string `yaml:"hour" json:"hour"`
	SlotID    string `yaml:"slotId,omitempty" json:"slotId,omitempty"`
	Origin    Origin `yaml:"-" json:"-"`

	Fallback          bool   `yaml:"-" json:"-"`
	MatchedPreference string `yaml:"-" json:"-"`
	DifferenceMinutes int    `yaml:"-" json:"-"`
}

// FormSnapshot is the field map and action/method harvested from a fetched
// page's primary form. It is reused as the base payload for submission.
type FormSnapshot struct {
	Action string
	Method string
	Fields map[string]string
}

// EmptyForm returns the snapshot used when no form exists in a document.
func EmptyForm() FormSnapshot {
	return FormSnapshot{Method: "POST", Fields: map[string]string{}}
}

// CloneFields returns a copy of the snapshot's field map, never nil.
func (f FormSnapshot) CloneFields() map[string]string {
	out := make(map[string]string, len(f.Fields))
	for k, v := range f.Fields {
		out[k] = v
	}
	return out
}

// TargetDate is the single reservation date for a run plus the renderings
// required by the different endpoints. All renderings refer to the same
// calendar day.
type TargetDate struct {
	Date         time.Time
	ISO          string // YYYY-MM-DD
	Display      string // DD/MM/YYYY
	Request      string // per reservation-page date format
	DataEndpoint string // per data-endpoint date format
}

// Partner is one pre-configured co-player injected into the submission.
type Partner struct {
	Position   int    `yaml:"position" json:"position"`
	PlayerID   string `yaml:"playerId" json:"playerId"`
	PlayerName string `yaml:"playerName" json:"playerName"`
}
