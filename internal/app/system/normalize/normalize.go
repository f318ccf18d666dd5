// Package normalize canonicalises user input before it is compared or stored.
package normalize

import "strings"

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims s and collapses internal runs of whitespace to one space.
// Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// QueryParam trims a search or filter value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// Phone keeps digits and a leading plus sign, dropping spaces, dashes and
// parentheses.
func Phone(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Upper trims and uppercases a categorical value.
func Upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
