package datacite

import "fmt"

// MappingError is returned when a submission field cannot be filled from
// the Mica entities or the static configuration.
type MappingError struct {
	Field  string
	Source string
	Reason string
}

func (e *MappingError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("cannot map %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("cannot map %s from %s: %s", e.Field, e.Source, e.Reason)
}
