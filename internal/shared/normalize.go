package shared

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// descriptiveSuffixes are removed wherever they occur, including inside other words.
var descriptiveSuffixes = strings.NewReplacer("original", "", "mix", "")

// Normalize canonicalizes a free-text title or artist into a comparable key.
//
// The field is lowercased, every occurrence of "original" and "mix" is removed,
// anything other than ASCII letters, digits and whitespace is dropped and finally all
// whitespace is removed, so "Track (Original Mix) #1!" becomes "track1".
// Letters outside a-z, accented ones included, are dropped.
//
// Returns [ErrInvalidInput] when field is not valid UTF-8 text.
func Normalize(field string) (string, error) {
	if !utf8.ValidString(field) {
		return "", fmt.Errorf("%w: field %q is not valid text", ErrInvalidInput, field)
	}

	lowered := descriptiveSuffixes.Replace(strings.ToLower(field))

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	// Compacting can join fragments into a new "mix" ("mi x"); strip until stable so
	// Normalize(Normalize(x)) == Normalize(x).
	key := b.String()
	for {
		next := descriptiveSuffixes.Replace(key)
		if next == key {
			return key, nil
		}
		key = next
	}
}
