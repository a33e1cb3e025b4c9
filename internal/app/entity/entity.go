/*
Package entity defines the records persisted by the entity store: Alumni, Student,
Event and Message, together with their field validation rules.

Validation results are maps from JSON field name to message, ready for
errs.Validation. Year ranges depend on the current year, so Validate takes the time to check against.
*/
package entity

import (
	"fmt"
	"strings"

	"alumnilink/internal/pkg/validate"
)

// Identifier prefixes for generated ids.
const (
	PrefixAlumni  = "alumni"
	PrefixStudent = "student"
	PrefixEvent   = "event"
)

// MinGraduationYear is the earliest graduation year accepted for alumni.
const MinGraduationYear = 1900

// YearWindow is how many years past the current one a graduation year may be.
const YearWindow = 10

// Entity is anything stored in a collection keyed by id.
type Entity interface {
	EntityID() string
}

// check merges validator output with extra rule results.
func check(v any, extra map[string]string) map[string]string {
	fields := validate.Struct(v)
	for k, msg := range extra {
		if fields == nil {
			fields = make(map[string]string)
		}
		if _, exists := fields[k]; !exists {
			fields[k] = msg
		}
	}
	return fields
}

func yearRange(name string, year, lo, hi int) map[string]string {
	if year < lo || year > hi {
		return map[string]string{name: fmt.Sprintf("%s must be between %d and %d", name, lo, hi)}
	}
	return nil
}

// cleanList trims every entry, drops blanks and never returns nil.
func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// SplitList parses a comma separated form value into a clean list.
func SplitList(s string) []string {
	return cleanList(strings.Split(s, ","))
}
