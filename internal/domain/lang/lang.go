package lang

import "strings"

// Code is a supported interface language.
type Code string

const (
	Arabic  Code = "ar"
	French  Code = "fr"
	English Code = "en"
)

// Default is used for templates when a caller asks for an unsupported language.
const Default = English

// All lists supported languages in lookup order.
var All = []Code{Arabic, French, English}

// IsValid reports whether c is a supported language.
func (c Code) IsValid() bool {
	switch c {
	case Arabic, French, English:
		return true
	}
	return false
}

// Parse normalizes a language tag ("fr-FR", " AR ") to a Code.
// Unsupported or empty tags yield the raw lowercased primary subtag, which
// callers resolve through their own fallback rules.
func Parse(tag string) Code {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		tag = tag[:i]
	}
	return Code(tag)
}

// OrDefault returns c when supported and Default otherwise.
func (c Code) OrDefault() Code {
	if c.IsValid() {
		return c
	}
	return Default
}
