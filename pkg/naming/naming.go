// Package naming provides name sanitization for assets bound for the target
// platform's import pipeline.
package naming

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Disallowed is the fixed set of characters the import pipeline rejects.
const Disallowed = "-.,/*$&"

// Separator joins name parts and suffix tokens.
const Separator = '_'

// ErrInvalidName is matched by every InvalidNameError.
var ErrInvalidName = errors.New("invalid name")

// InvalidNameError reports a name that is empty once disallowed characters
// are stripped. Callers recover with Fallback.
type InvalidNameError struct {
	Name string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid name %q: empty after sanitization", e.Name)
}

// Is reports whether target is ErrInvalidName.
func (e *InvalidNameError) Is(target error) bool {
	return target == ErrInvalidName
}

// Sanitize strips disallowed characters from name and normalizes the result
// into an identifier: whitespace becomes '_', runs of '_' collapse into one
// and leading/trailing separators are trimmed.
//
// Sanitize is idempotent: Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(name string) (string, error) {
	normalized := norm.NFC.String(name)

	var b strings.Builder
	b.Grow(len(normalized))
	lastSep := true // suppresses leading separators
	for _, r := range normalized {
		switch {
		case strings.ContainsRune(Disallowed, r):
			continue
		case r == Separator || unicode.IsSpace(r):
			if lastSep {
				continue
			}
			b.WriteRune(Separator)
			lastSep = true
		case unicode.IsControl(r):
			continue
		default:
			b.WriteRune(r)
			lastSep = false
		}
	}

	// stripping can bring a base letter and its combining mark together
	out := norm.NFC.String(strings.TrimRight(b.String(), string(Separator)))
	if out == "" {
		return "", &InvalidNameError{Name: name}
	}
	return out, nil
}

// MustSanitize is like Sanitize but substitutes fallback when name is empty
// after sanitization.
func MustSanitize(name, fallback string) string {
	s, err := Sanitize(name)
	if err != nil {
		return fallback
	}
	return s
}

// ContainsDisallowed reports whether name has any character from Disallowed.
func ContainsDisallowed(name string) bool {
	return strings.ContainsAny(name, Disallowed)
}

// DisallowedIn returns the distinct disallowed characters found in name, in
// order of first appearance.
func DisallowedIn(name string) []rune {
	var found []rune
	for _, r := range name {
		if strings.ContainsRune(Disallowed, r) && !slices.Contains(found, r) {
			found = append(found, r)
		}
	}
	return found
}

// Fallback returns the default label for an unnamed asset at index, e.g.
// "Material_007".
func Fallback(prefix string, index int) string {
	if prefix == "" {
		prefix = "Material"
	}
	return fmt.Sprintf("%s%c%03d", MustSanitize(prefix, "Material"), Separator, index)
}

// TrimSuffixes removes every trailing token in tokens from name, repeating
// until none match. Tokens are matched longest first.
func TrimSuffixes(name string, tokens []string) string {
	sorted := slices.Clone(tokens)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})
	for {
		trimmed := false
		for _, tok := range sorted {
			if tok == "" || len(name) <= len(tok) {
				continue
			}
			if strings.HasSuffix(name, tok) {
				name = strings.TrimSuffix(name, tok)
				trimmed = true
				break
			}
		}
		if !trimmed {
			return name
		}
	}
}
