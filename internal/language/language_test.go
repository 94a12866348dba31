package language

import "testing"

func TestIsSpanish(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"es", true},
		{"ES", true},
		{"spa", true},
		{"esp", true},
		{"es-MX", true},
		{"es-419", true},
		{" es ", true},
		{"en", false},
		{"spanish", false},
		{"pt", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsSpanish(tt.input); got != tt.expected {
				t.Errorf("IsSpanish(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsEnglish(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"en", true},
		{"ENG", true},
		{"en-US", true},
		{"en-gb", true},
		{"es", false},
		{"english", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsEnglish(tt.input); got != tt.expected {
				t.Errorf("IsEnglish(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestShouldExtract(t *testing.T) {
	tests := []struct {
		name     string
		tag      string
		filter   Filter
		expected bool
	}{
		{"inactive wants tagged", "fr", Filter{}, true},
		{"inactive wants untagged", "", Filter{}, true},
		{"spanish only keeps spa", "spa", Filter{Spanish: true}, true},
		{"spanish only drops eng", "eng", Filter{Spanish: true}, false},
		{"english only keeps en-GB", "en-GB", Filter{English: true}, true},
		{"english only drops es", "es", Filter{English: true}, false},
		{"both keeps es", "es", Filter{Spanish: true, English: true}, true},
		{"both keeps en", "en", Filter{Spanish: true, English: true}, true},
		{"both drops fr", "fr", Filter{Spanish: true, English: true}, false},
		{"active drops untagged", "", Filter{English: true}, false},
		{"active drops unknown", "xx", Filter{Spanish: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldExtract(tt.tag, tt.filter); got != tt.expected {
				t.Errorf("ShouldExtract(%q, %+v) = %v, want %v", tt.tag, tt.filter, got, tt.expected)
			}
		})
	}
}

func TestFilterString(t *testing.T) {
	if got := (Filter{}).String(); got != "all" {
		t.Errorf("inactive filter = %q, want all", got)
	}
	if got := (Filter{Spanish: true, English: true}).String(); got != "spanish+english" {
		t.Errorf("both filter = %q", got)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "Unknown"},
		{"spa", "Spanish"},
		{"EN", "English"},
		{"fr", "French"},
		{"!!", "!!"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := DisplayName(tt.input); got != tt.expected {
				t.Errorf("DisplayName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
