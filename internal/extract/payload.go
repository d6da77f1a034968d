package extract

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/mauv0809/courtbooker/internal/booking"
)

var (
	containerKeys = []string{"slots", "disponibilites", "result"}
	courtIDKeys   = []string{"courtId", "idcourt", "idCourt", "idTerrain", "terrain", "id_terrain"}
	hourKeys      = []string{"hour", "heure", "creneau", "time"}
	slotIDKeys    = []string{"slotId", "idHoraire", "idhoraire", "idcreneau", "id_creneau"}
	availableKeys = []string{"available", "disponible", "isAvailable"}
	nameKeys      = []string{"courtName", "nomCourt"}
)

// SlotsFromPayload parses the data endpoint's JSON response into slots. The
// payload may be a bare array or carry the entries under one of several known
// container fields; each logical field accepts several alias key names.
// Entries flagged unavailable or missing a court identifier or hour are
// dropped. Unparseable payloads yield an empty list.
func SlotsFromPayload(data []byte, courtNames map[string]string) []booking.Slot {
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil
	}

	entries, ok := payload.([]any)
	if !ok {
		container, isObject := payload.(map[string]any)
		if !isObject {
			return nil
		}
		for _, key := range containerKeys {
			if nested, found := container[key].([]any); found {
				entries = nested
				break
			}
		}
	}

	var slots []booking.Slot
	for _, entry := range entries {
		item, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if isUnavailable(item) {
			continue
		}
		courtID := firstStringKey(item, courtIDKeys)
		hour := firstStringKey(item, hourKeys)
		if courtID == "" || hour == "" {
			continue
		}
		courtName := courtNames[courtID]
		if courtName == "" {
			courtName = firstStringKey(item, nameKeys)
		}
		if courtName == "" {
			courtName = "Court " + courtID
		}
		slots = append(slots, booking.Slot{
			CourtID:   courtID,
			CourtName: courtName,
			Hour:      hour,
			SlotID:    firstStringKey(item, slotIDKeys),
			Origin:    booking.OriginDataEndpoint,
		})
	}
	return slots
}

// isUnavailable treats an explicit availability flag of false, 0 or "0" as
// unavailable; a missing flag means available.
func isUnavailable(item map[string]any) bool {
	for _, key := range availableKeys {
		value, present := item[key]
		if !present {
			continue
		}
		switch v := value.(type) {
		case bool:
			return !v
		case float64:
			return v == 0
		case string:
			return v == "0"
		}
	}
	return false
}

func firstStringKey(item map[string]any, keys []string) string {
	for _, key := range keys {
		if value := stringValue(item[key]); value != "" {
			return value
		}
	}
	return ""
}

// stringValue coerces the loose JSON representations of identifiers and
// hours (strings or numbers) into strings.
func stringValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		if v == math.Trunc(v) {
			return fmt.Sprintf("%.0f", v)
		}
		return fmt.Sprintf("%v", v)
	default:
		return ""
	}
}
