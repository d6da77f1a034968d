// Package scoring ranks candidate slots against operator preference lists.
// It is pure: no I/O, no clock, no hidden state.
package scoring

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/mauv0809/courtbooker/internal/booking"
)

// fallbackWindowMinutes is the tolerance for near-miss hour matches.
const fallbackWindowMinutes = 30

// Preferences carries the operator's ranked preferences. Earlier entries are
// strictly preferred.
type Preferences struct {
	Hours     []string
	Courts    []string
	UseCourts bool
}

// HourScore is the outcome of ranking one hour against the hour preferences.
// An unscoreable hour has Score = +Inf.
type HourScore struct {
	Score             float64
	Fallback          bool
	MatchedPreference string
	DifferenceMinutes int
}

// Eligible reports whether the hour can participate in ranking.
func (s HourScore) Eligible() bool {
	return !math.IsInf(s.Score, 1)
}

var (
	hourLetterPattern  = regexp.MustCompile(`^(\d{1,2})\s*h\s*(\d{2})$`)
	hourColonPattern   = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	hourCompactPattern = regexp.MustCompile(`^\d{3,4}$`)
)

// NormalizeHour canonicalizes an hour string to 24-hour HH:MM. Accepted shapes
// are "14h00", "14:00" and the compact "1400". Anything else is returned
// trimmed but unparsed.
func NormalizeHour(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	lower := strings.ToLower(trimmed)
	if m := hourLetterPattern.FindStringSubmatch(lower); m != nil {
		return pad2(m[1]) + ":" + m[2]
	}
	if m := hourColonPattern.FindStringSubmatch(lower); m != nil {
		return pad2(m[1]) + ":" + m[2]
	}
	if hourCompactPattern.MatchString(lower) {
		digits := lower
		if len(digits) == 3 {
			digits = "0" + digits
		}
		return digits[:2] + ":" + digits[2:]
	}
	return trimmed
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// HourToMinutes converts an hour string to minutes since midnight. The second
// return value is false when the hour does not normalize to HH:MM.
func HourToMinutes(raw string) (int, bool) {
	normalized := NormalizeHour(raw)
	hh, mm, found := strings.Cut(normalized, ":")
	if !found {
		return 0, false
	}
	hours, err := strconv.Atoi(hh)
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(mm)
	if err != nil {
		return 0, false
	}
	return hours*60 + minutes, true
}

// ScoreHour ranks an hour against the ordered preference list. An exact match
// (after normalizing both sides) scores its preference index. Otherwise every
// preference within the fallback window yields len(prefs)+|diff|+idx/100 and
// the minimum wins; the idx/100 term breaks equal-distance ties in favor of
// the earlier-listed preference. No match within the window is unscoreable.
func ScoreHour(hour string, prefs []string) HourScore {
	normalized := NormalizeHour(hour)
	if normalized == "" {
		return HourScore{Score: math.Inf(1)}
	}
	for i, pref := range prefs {
		if NormalizeHour(pref) == normalized {
			return HourScore{Score: float64(i), MatchedPreference: pref}
		}
	}
	minutes, ok := HourToMinutes(normalized)
	if !ok {
		return HourScore{Score: math.Inf(1)}
	}
	best := HourScore{Score: math.Inf(1)}
	for i, pref := range prefs {
		prefMinutes, ok := HourToMinutes(pref)
		if !ok {
			continue
		}
		diff := prefMinutes - minutes
		if diff < 0 {
			diff = -diff
		}
		if diff > fallbackWindowMinutes {
			continue
		}
		score := float64(len(prefs)) + float64(diff) + float64(i)/100
		if score < best.Score {
			best = HourScore{
				Score:             score,
				Fallback:          true,
				MatchedPreference: pref,
				DifferenceMinutes: diff,
			}
		}
	}
	return best
}

// ScoreCourt ranks a court identifier against the court preference list. With
// preferences disabled or empty every court scores 0. A listed court scores
// its index; an unlisted one scores len(prefs)+1, worse than any listed court
// but still selectable.
func ScoreCourt(courtID string, prefs []string, usePrefs bool) int {
	if !usePrefs || len(prefs) == 0 {
		return 0
	}
	for i, pref := range prefs {
		if pref == courtID {
			return i
		}
	}
	return len(prefs) + 1
}

// SelectBest picks the winning slot: unscoreable hours are dropped, the rest
// sort ascending by (court score, hour score) with ties resolved by input
// order, and the first slot wins. The returned slot carries the derived match
// fields. Nil means no eligible slot.
func SelectBest(slots []booking.Slot, prefs Preferences) *booking.Slot {
	type candidate struct {
		slot  booking.Slot
		hour  HourScore
		court int
	}
	var eligible []candidate
	for _, slot := range slots {
		hour := ScoreHour(slot.Hour, prefs.Hours)
		if !hour.Eligible() {
			continue
		}
		eligible = append(eligible, candidate{
			slot:  slot,
			hour:  hour,
			court: ScoreCourt(slot.CourtID, prefs.Courts, prefs.UseCourts),
		})
	}
	if len(eligible) == 0 {
		return nil
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].court != eligible[j].court {
			return eligible[i].court < eligible[j].court
		}
		return eligible[i].hour.Score < eligible[j].hour.Score
	})
	winner := eligible[0].slot
	winner.Fallback = eligible[0].hour.Fallback
	winner.MatchedPreference = eligible[0].hour.MatchedPreference
	winner.DifferenceMinutes = eligible[0].hour.DifferenceMinutes
	return &winner
}
