package language

import (
	"strings"

	xlanguage "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

type family struct {
	name  string
	codes []string
}

var (
	spanish = family{
		name: "Spanish",
		codes: []string{
			"es", "spa", "esp",
			"es-es", "es-mx", "es-us", "es-419",
			"es-ar", "es-bo", "es-cl", "es-co", "es-cr", "es-cu", "es-do",
			"es-ec", "es-gt", "es-hn", "es-ni", "es-pa", "es-pe", "es-pr",
			"es-py", "es-sv", "es-uy", "es-ve",
		},
	}
	english = family{
		name: "English",
		codes: []string{
			"en", "eng",
			"en-us", "en-gb", "en-au", "en-ca", "en-nz", "en-ie", "en-za", "en-in",
		},
	}
)

// Code sets built at init time; never mutated afterwards.
var (
	spanishCodes map[string]struct{}
	englishCodes map[string]struct{}
)

func init() {
	spanishCodes = buildSet(spanish)
	englishCodes = buildSet(english)
}

func buildSet(f family) map[string]struct{} {
	set := make(map[string]struct{}, len(f.codes))
	for _, code := range f.codes {
		set[code] = struct{}{}
	}
	return set
}

func normalize(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

func member(set map[string]struct{}, tag string) bool {
	tag = normalize(tag)
	if tag == "" {
		return false
	}
	_, ok := set[tag]
	return ok
}

// IsSpanish reports whether tag is a known Spanish code.
func IsSpanish(tag string) bool { return member(spanishCodes, tag) }

// IsEnglish reports whether tag is a known English code.
func IsEnglish(tag string) bool { return member(englishCodes, tag) }

// Filter holds the per-language extraction toggles.
type Filter struct {
	Spanish bool
	English bool
}

// Active reports whether at least one language toggle is enabled.
func (f Filter) Active() bool {
	return f.Spanish || f.English
}

// String renders the filter for log output.
func (f Filter) String() string {
	if !f.Active() {
		return "all"
	}
	parts := make([]string, 0, 2)
	if f.Spanish {
		parts = append(parts, "spanish")
	}
	if f.English {
		parts = append(parts, "english")
	}
	return strings.Join(parts, "+")
}

// ShouldExtract decides whether a subtitle stream tagged with tag is wanted.
// An inactive filter wants everything; an active filter discards untagged
// streams.
func ShouldExtract(tag string, f Filter) bool {
	if !f.Active() {
		return true
	}
	if normalize(tag) == "" {
		return false
	}
	return (f.Spanish && IsSpanish(tag)) || (f.English && IsEnglish(tag))
}

// DisplayName returns a human-readable English name for tag, used in logs.
// Unknown tags are returned uppercased.
func DisplayName(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return "Unknown"
	}
	switch {
	case IsSpanish(tag) && !strings.Contains(tag, "-"):
		return spanish.name
	case IsEnglish(tag) && !strings.Contains(tag, "-"):
		return english.name
	}
	parsed, err := xlanguage.Parse(tag)
	if err != nil || parsed == xlanguage.Und {
		return strings.ToUpper(tag)
	}
	if name := display.English.Tags().Name(parsed); name != "" {
		return name
	}
	return strings.ToUpper(tag)
}
