package model

import "strings"

// Category is one of the fixed inventory category labels. Items never carry
// an arbitrary string here; ingestion normalizes everything to this set.
type Category string

const (
	CategoryCables       Category = "Cables"
	CategorySpeakers     Category = "Speakers"
	CategorySurveillance Category = "Surveillance"
	CategoryNetworking   Category = "Networking"
	CategoryControl      Category = "Control Systems"
	CategoryLighting     Category = "Lighting"
	CategoryVideo        Category = "Video"
	CategoryAudio        Category = "Audio"
	CategoryMounts       Category = "Mounts"
	CategoryRacks        Category = "Racks & Enclosures"
	CategoryPower        Category = "Power"
	CategoryTools        Category = "Tools & Hardware"
	CategoryOther        Category = "Other"
)

// Categories returns every valid category in display order.
func Categories() []Category {
	return []Category{
		CategoryCables,
		CategorySpeakers,
		CategorySurveillance,
		CategoryNetworking,
		CategoryControl,
		CategoryLighting,
		CategoryVideo,
		CategoryAudio,
		CategoryMounts,
		CategoryRacks,
		CategoryPower,
		CategoryTools,
		CategoryOther,
	}
}

// CategoryFromLabel matches s against the category labels, ignoring case.
func CategoryFromLabel(s string) (Category, bool) {
	trimmed := strings.TrimSpace(s)
	for _, c := range Categories() {
		if strings.EqualFold(trimmed, string(c)) {
			return c, true
		}
	}
	return CategoryOther, false
}

// Valid reports whether c is exactly one of the fixed category labels.
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}
