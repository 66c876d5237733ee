package models

import (
	"fmt"
	"strings"
	"time"
)

// Truthy reports whether a value counts as "on" in the permissive bit encoding
// accepted from older clients: true, "true", "on", "1", "yes", "y" (case- and
// whitespace-insensitive). Everything else, including nil, is false.
func Truthy(v any) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	s := strings.ToLower(strings.TrimSpace(fmt.Sprint(v)))
	switch s {
	case "true", "on", "1", "yes", "y":
		return true
	}
	return false
}

// Bit is a boolean stored as 0/1 that unmarshals from any of the truthy forms.
type Bit bool

func (b *Bit) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	*b = Bit(Truthy(s))
	return nil
}

func (b Bit) Int() int {
	if b {
		return 1
	}
	return 0
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"01/02/2006",
	"2006/01/02",
}

// ParseDate parses a date-only field permissively. Unparsable or empty input
// yields nil rather than an error; malformed dates are a warning, not a
// request failure.
func ParseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "undefined") {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// Ymd renders a date as YYYY-MM-DD, dropping any time component. Nil renders
// as the empty string.
func Ymd(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
