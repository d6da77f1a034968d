// Package extract parses reservation-site content into form snapshots and
// candidate slots, driven entirely by configured selectors. Missing markup
// shapes degrade to empty results instead of errors; the run fails later at
// the no-eligible-slot check if nothing usable was found.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mauv0809/courtbooker/internal/booking"
)

// slotIDFallbackAttrs is the ordered list of attribute names tried after the
// configured slot identifier attribute. First present and non-empty wins.
var slotIDFallbackAttrs = []string{
	"idhoraire",
	"id-horaire",
	"id",
	"value",
	"creneau",
	"slot",
	"idcreneau",
}

// Form harvests the field map from the first form matched by the selector
// candidates, tried in order. When none match, the document's first form is
// used; when the document has no form at all an empty POST snapshot is
// returned.
func Form(doc *goquery.Document, candidates []string) booking.FormSnapshot {
	var form *goquery.Selection
	for _, selector := range candidates {
		if selector == "" {
			continue
		}
		if found := doc.Find(selector); found.Length() > 0 {
			form = found.First()
			break
		}
	}
	if form == nil {
		if found := doc.Find("form"); found.Length() > 0 {
			form = found.First()
		}
	}
	if form == nil {
		return booking.EmptyForm()
	}

	fields := map[string]string{}
	form.Find("input, select, textarea").Each(func(_ int, field *goquery.Selection) {
		name, ok := field.Attr("name")
		if !ok || name == "" {
			return
		}
		if field.Is("select") {
			selected := field.Find("option[selected]").First()
			if selected.Length() == 0 {
				return
			}
			if value, ok := selected.Attr("value"); ok {
				fields[name] = value
			} else {
				fields[name] = strings.TrimSpace(selected.Text())
			}
			return
		}
		fieldType := strings.ToLower(field.AttrOr("type", ""))
		if fieldType == "checkbox" || fieldType == "radio" {
			if _, checked := field.Attr("checked"); !checked {
				return
			}
			if value, ok := field.Attr("value"); ok {
				fields[name] = value
			} else {
				fields[name] = "on"
			}
			return
		}
		fields[name] = field.AttrOr("value", "")
	})

	method := strings.ToUpper(form.AttrOr("method", "POST"))
	if method == "" {
		method = "POST"
	}
	return booking.FormSnapshot{
		Action: form.AttrOr("action", ""),
		Method: method,
		Fields: fields,
	}
}

// Slots walks every court element in the document and collects its available
// slot buttons. Disabled buttons, buttons carrying an unavailable marker
// class and buttons with empty text are skipped.
func Slots(doc *goquery.Document, courtNames map[string]string, sel booking.SelectorSettings) []booking.Slot {
	var slots []booking.Slot
	doc.Find(sel.Court).Each(func(_ int, court *goquery.Selection) {
		attrs := attributes(court)
		courtID := firstNonEmpty(
			attrs[sel.CourtIDAttr],
			attrs[strings.TrimPrefix(sel.CourtIDAttr, "data-")],
			attrs["idcourt"],
			attrs["id"],
		)
		courtName := courtNames[courtID]
		if courtName == "" {
			courtName = strings.TrimSpace(court.Find(sel.CourtName).First().Text())
		}
		if courtName == "" {
			courtName = courtID
		}
		if courtName == "" {
			courtName = "unknown"
		}

		court.Find(sel.SlotButton).Each(func(_ int, button *goquery.Selection) {
			if _, disabled := button.Attr("disabled"); disabled {
				return
			}
			for _, class := range sel.UnavailableClasses {
				if button.HasClass(class) {
					return
				}
			}
			hour := strings.Join(strings.Fields(button.Text()), " ")
			if hour == "" {
				return
			}
			slots = append(slots, booking.Slot{
				CourtID:   courtID,
				CourtName: courtName,
				Hour:      hour,
				SlotID:    slotIdentifier(attributes(button), sel.SlotIDAttr),
				Origin:    booking.OriginContent,
			})
		})
	})
	return slots
}

// Page extracts both the form snapshot and the slot list from one document.
func Page(doc *goquery.Document, courtNames map[string]string, sel booking.SelectorSettings) (booking.FormSnapshot, []booking.Slot) {
	return Form(doc, sel.ReservationForm), Slots(doc, courtNames, sel)
}

// slotIdentifier resolves a slot identifier through the ordered attribute
// strategies: the configured attribute first, then the fixed fallback list,
// each also tried with a data- prefix.
func slotIdentifier(attrs map[string]string, configured string) string {
	keys := make([]string, 0, len(slotIDFallbackAttrs)+1)
	if configured != "" {
		keys = append(keys, configured)
	}
	keys = append(keys, slotIDFallbackAttrs...)
	for _, key := range keys {
		if value := firstNonEmpty(attrs[key], attrs["data-"+key]); value != "" {
			return value
		}
	}
	return ""
}

// attributes returns an element's attribute map. data-prefixed attributes are
// additionally exposed under their stripped name so configured attribute
// names work with or without the prefix.
func attributes(sel *goquery.Selection) map[string]string {
	attrs := map[string]string{}
	if len(sel.Nodes) == 0 {
		return attrs
	}
	for _, attr := range sel.Nodes[0].Attr {
		attrs[attr.Key] = attr.Val
		if stripped := strings.TrimPrefix(attr.Key, "data-"); stripped != attr.Key {
			attrs[stripped] = attr.Val
		}
	}
	return attrs
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
