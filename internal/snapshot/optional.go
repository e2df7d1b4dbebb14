package snapshot

import "strings"

// Text is the single presence rule for optional attributes: a value is present
// when the pointer is non-nil and the trimmed string is not empty.
func Text(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return "", false
	}
	return v, true
}

// Has reports whether the optional attribute is present.
func Has(p *string) bool {
	_, ok := Text(p)
	return ok
}

// First returns the first present attribute.
func First(candidates ...*string) (string, bool) {
	for _, c := range candidates {
		if v, ok := Text(c); ok {
			return v, true
		}
	}
	return "", false
}

// Ptr returns a pointer to v. Handy for building fixtures.
func Ptr[T any](v T) *T {
	return &v
}
