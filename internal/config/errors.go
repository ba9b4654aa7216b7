package config

import "fmt"

// Error is a structural configuration error. Section names the offending
// workspace entry (for example "annotations.V1" or "targets.Subject") so
// that load-time failures always point at a concrete key.
type Error struct {
	Section string
	Msg     string
}

func (e *Error) Error() string {
	return e.Section + ": " + e.Msg
}

// Errorf builds a configuration error for the given section.
func Errorf(section, format string, args ...any) *Error {
	return &Error{Section: section, Msg: fmt.Sprintf(format, args...)}
}
