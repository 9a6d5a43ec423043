package reconcile

import (
	"testing"

	"fieldstock-api/internal/model"
)

func TestNormalizeCategoryExactLabels(t *testing.T) {
	for _, c := range model.Categories() {
		if got := NormalizeCategory(string(c)); got != c {
			t.Errorf("NormalizeCategory(%q) = %q, want %q", c, got, c)
		}
	}

	// Case-insensitive label matches return the canonical label.
	if got := NormalizeCategory("surveillance"); got != model.CategorySurveillance {
		t.Errorf("NormalizeCategory(\"surveillance\") = %q", got)
	}
	if got := NormalizeCategory("  CABLES  "); got != model.CategoryCables {
		t.Errorf("NormalizeCategory(\"  CABLES  \") = %q", got)
	}
}

func TestNormalizeCategoryKeywords(t *testing.T) {
	tests := []struct {
		raw  string
		want model.Category
	}{
		{"In-ceiling speaker 8\"", model.CategorySpeakers},
		{"IP Camera 4MP", model.CategorySurveillance},
		{"16ch NVR", model.CategorySurveillance},
		{"Articulating TV mount", model.CategoryMounts},
		{"wall bracket", model.CategoryMounts},
		{"cat6 plenum", model.CategoryCables},
		{"HDMI Cable 2m", model.CategoryCables}, // "cable" outranks "hdmi"
		{"HDMI splitter", model.CategoryVideo},
		{"PoE switch 24 port", model.CategoryNetworking},
		{"in-wall dimmer", model.CategoryLighting},
		{"AV receiver", model.CategoryAudio},
		{"19in rack shelf", model.CategoryRacks},
		{"1500VA UPS", model.CategoryPower},
		{"drywall anchors", model.CategoryTools},
		{"mystery part", model.CategoryOther},
		{"", model.CategoryOther},
		{"   ", model.CategoryOther},
	}

	for _, tt := range tests {
		if got := NormalizeCategory(tt.raw); got != tt.want {
			t.Errorf("NormalizeCategory(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

// Normalization is idempotent: feeding any output back in returns it
// unchanged, and every output is a valid label.
func TestNormalizeCategoryIdempotent(t *testing.T) {
	inputs := []string{
		"speaker wire", "NVR", "bracket", "random junk", "", "Cables",
		"ceiling SPEAKER", "poe injector", "power strip",
	}
	for _, raw := range inputs {
		once := NormalizeCategory(raw)
		if !once.Valid() {
			t.Errorf("NormalizeCategory(%q) = %q is not a valid label", raw, once)
		}
		if twice := NormalizeCategory(string(once)); twice != once {
			t.Errorf("NormalizeCategory not idempotent for %q: %q then %q", raw, once, twice)
		}
	}
}
