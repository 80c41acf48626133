package domain

import (
	"strings"
	"unicode"
)

// NormalizeFieldName derives a machine field name from a human display name:
// non-alphanumeric runs become word boundaries and the result is lowerCamelCase.
// Returns "" when the display name contains no usable characters.
func NormalizeFieldName(displayName string) string {
	words := splitWords(displayName)
	if len(words) == 0 {
		return ""
	}

	var b strings.Builder
	for i, w := range words {
		if i == 0 {
			b.WriteString(strings.ToLower(w))
			continue
		}
		b.WriteString(strings.ToUpper(w[:1]))
		b.WriteString(strings.ToLower(w[1:]))
	}

	name := b.String()
	// Identifiers cannot start with a digit.
	if unicode.IsDigit(rune(name[0])) {
		name = "field" + strings.ToUpper(name[:1]) + name[1:]
	}
	return name
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
