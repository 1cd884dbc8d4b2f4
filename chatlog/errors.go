package chatlog

import "fmt"

// MalformedInputError reports an export that decoded as JSON but lacks a required key
// or carries a value that cannot be interpreted.
type MalformedInputError struct {
	Path  string
	Field string
	Value string
	Err   error
}

func (e *MalformedInputError) Error() string {
	msg := fmt.Sprintf("malformed export %s: field %s", e.Path, e.Field)
	if e.Value != "" {
		msg += fmt.Sprintf(" (value %q)", e.Value)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	} else {
		msg += ": missing"
	}
	return msg
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// DecodeError reports an export file that is not valid JSON.
type DecodeError struct {
	File string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode export %s: %v", e.File, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
