package booking

import (
	"fmt"
	"strings"
	"time"
)

const defaultAdvanceDays = 7

// FormatDate renders a date through a DD/MM/YYYY-style token template. The
// tokens DD, MM and YYYY are replaced with zero-padded day, month and
// four-digit year.
func FormatDate(t time.Time, template string) string {
	out := strings.ReplaceAll(template, "DD", fmt.Sprintf("%02d", t.Day()))
	out = strings.ReplaceAll(out, "MM", fmt.Sprintf("%02d", int(t.Month())))
	out = strings.ReplaceAll(out, "YYYY", fmt.Sprintf("%04d", t.Year()))
	return out
}

// ResolveTargetDate computes the reservation date for a run. An explicit
// YYYY-MM-DD date wins; otherwise the date is now plus the advance-days rule
// (defaulting to 7 when unset). The day is fixed at midday so timezone
// boundaries cannot shift the calendar date.
func ResolveTargetDate(explicit string, advanceDays *int, page ReservationPageSettings, now time.Time) (TargetDate, error) {
	var date time.Time
	if explicit != "" {
		parsed, err := time.Parse("2006-01-02", explicit)
		if err != nil {
			return TargetDate{}, &ConfigurationError{
				Reason: fmt.Sprintf("invalid reservation date %q, expected YYYY-MM-DD", explicit),
			}
		}
		date = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 12, 0, 0, 0, time.UTC)
	} else {
		advance := defaultAdvanceDays
		if advanceDays != nil && *advanceDays >= 0 {
			advance = *advanceDays
		}
		date = time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, now.Location()).AddDate(0, 0, advance)
	}

	requestFormat := page.DateFormat
	if requestFormat == "" {
		requestFormat = "DD/MM/YYYY"
	}
	dataFormat := page.DataDateFormat
	if dataFormat == "" {
		dataFormat = requestFormat
	}
	return TargetDate{
		Date:         date,
		ISO:          FormatDate(date, "YYYY-MM-DD"),
		Display:      FormatDate(date, "DD/MM/YYYY"),
		Request:      FormatDate(date, requestFormat),
		DataEndpoint: FormatDate(date, dataFormat),
	}, nil
}
