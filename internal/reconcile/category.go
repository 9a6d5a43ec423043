// Package reconcile folds externally sourced records (spreadsheet rows,
// invoice line items, duplicate entries) into a canonical inventory list.
// Everything here is a pure transformation over caller-owned slices; callers
// serialize imports against the same item list themselves.
package reconcile

import (
	"strings"

	"fieldstock-api/internal/model"
)

// categoryKeyword maps a substring to a category. The table is ordered;
// the first keyword contained in the input wins.
type categoryKeyword struct {
	keyword  string
	category model.Category
}

var categoryKeywords = []categoryKeyword{
	{"speaker", model.CategorySpeakers},
	{"subwoofer", model.CategorySpeakers},
	{"soundbar", model.CategorySpeakers},
	{"camera", model.CategorySurveillance},
	{"nvr", model.CategorySurveillance},
	{"dvr", model.CategorySurveillance},
	{"doorbell", model.CategorySurveillance},
	{"mount", model.CategoryMounts},
	{"bracket", model.CategoryMounts},
	{"cable", model.CategoryCables},
	{"wire", model.CategoryCables},
	{"cat5", model.CategoryCables},
	{"cat6", model.CategoryCables},
	{"fiber", model.CategoryCables},
	{"switch", model.CategoryNetworking},
	{"router", model.CategoryNetworking},
	{"access point", model.CategoryNetworking},
	{"wifi", model.CategoryNetworking},
	{"network", model.CategoryNetworking},
	{"patch panel", model.CategoryNetworking},
	{"keypad", model.CategoryControl},
	{"remote", model.CategoryControl},
	{"processor", model.CategoryControl},
	{"controller", model.CategoryControl},
	{"thermostat", model.CategoryControl},
	{"dimmer", model.CategoryLighting},
	{"light", model.CategoryLighting},
	{"lamp", model.CategoryLighting},
	{"shade", model.CategoryLighting},
	{"tv", model.CategoryVideo},
	{"television", model.CategoryVideo},
	{"projector", model.CategoryVideo},
	{"display", model.CategoryVideo},
	{"hdmi", model.CategoryVideo},
	{"matrix", model.CategoryVideo},
	{"receiver", model.CategoryAudio},
	{"amplifier", model.CategoryAudio},
	{"amp", model.CategoryAudio},
	{"audio", model.CategoryAudio},
	{"rack", model.CategoryRacks},
	{"enclosure", model.CategoryRacks},
	{"shelf", model.CategoryRacks},
	{"ups", model.CategoryPower},
	{"surge", model.CategoryPower},
	{"power", model.CategoryPower},
	{"battery", model.CategoryPower},
	{"screw", model.CategoryTools},
	{"anchor", model.CategoryTools},
	{"drill", model.CategoryTools},
	{"tool", model.CategoryTools},
}

// NormalizeCategory maps free-text input to a category label.
//
// Exact label matches (case-insensitive) are returned as-is, then the
// keyword table is scanned in priority order, then CategoryOther. Total and
// idempotent: the output is always a valid label, and normalizing a valid
// label returns it unchanged.
func NormalizeCategory(raw string) model.Category {
	if c, ok := model.CategoryFromLabel(raw); ok {
		return c
	}

	lowered := strings.ToLower(strings.TrimSpace(raw))
	if lowered == "" {
		return model.CategoryOther
	}

	for _, kw := range categoryKeywords {
		if strings.Contains(lowered, kw.keyword) {
			return kw.category
		}
	}
	return model.CategoryOther
}
