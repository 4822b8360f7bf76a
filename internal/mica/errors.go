package mica

import "fmt"

// SchemaValidationError is returned when a payload lacks a required field or
// holds a value of the wrong type. Path uses wire key names.
type SchemaValidationError struct {
	Entity string
	Path   string
	Reason string
}

func (e *SchemaValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid %s: %s", e.Entity, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s: %s", e.Entity, e.Path, e.Reason)
}

// ContentDecodeError is returned when an embedded content document is not
// valid JSON.
type ContentDecodeError struct {
	Entity string
	ID     string
	Path   string
	Err    error
}

func (e *ContentDecodeError) Error() string {
	return fmt.Sprintf("decode %s of %s %q: %v", e.Path, e.Entity, e.ID, e.Err)
}

func (e *ContentDecodeError) Unwrap() error {
	return e.Err
}

// fieldError carries a wire path out of a nested decoder.
type fieldError struct {
	Path string
	Err  error
}

func (e *fieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *fieldError) Unwrap() error {
	return e.Err
}
