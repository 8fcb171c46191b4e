// Package validation holds the primitive checks request validators are
// composed from, plus the structured error map they produce.
package validation

import (
	"net/mail"
	"strings"
)

// Errors collects validation messages per field. The map travels
// unmodified into the 422 error envelope.
type Errors map[string][]string

func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

func (e Errors) Empty() bool {
	return len(e) == 0
}

// StripNonDigits drops every non-digit byte; cpf and telephone values
// are normalized with it before any rule runs.
func StripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// ValidEmail checks address syntax. Display names and comments are
// rejected: the parsed address must round-trip to the input.
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s
}

// LengthBetween checks an inclusive character-count range.
func LengthBetween(s string, min, max int) bool {
	n := len([]rune(s))
	return n >= min && n <= max
}
