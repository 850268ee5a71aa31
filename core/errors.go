package core

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrEventNotFound is returned by Remove when no stored event matches the
// given name and start time.
var ErrEventNotFound = errors.New("event not found")

// ConflictError is returned by Add when the candidate overlaps an existing
// event on the same calendar date. It carries the first existing event the
// candidate collided with.
type ConflictError struct {
	Existing Event
}

func (e *ConflictError) Error() string {
	return "event time conflict with: " + e.Existing.String()
}

// MalformedCommandError reports a protocol line that could not be parsed:
// wrong token count or an unparsable field.
type MalformedCommandError struct {
	Reason string
}

func (e *MalformedCommandError) Error() string {
	return e.Reason
}

// UnsupportedActionError reports an unknown command keyword.
type UnsupportedActionError struct {
	Action string
}

func (e *UnsupportedActionError) Error() string {
	return "Unsupported action: " + e.Action
}

// Error is the JSON envelope the HTTP admin surface renders failures with.
type Error struct {
	Message string   `json:"message,omitempty"`
	Err     []string `json:"err,omitempty"`
}

func NewError(message string, errs ...error) *Error {
	return &Error{
		Message: message,
		Err: func() []string {
			var msgs []string

			for _, err := range errs {
				if err != nil {
					msgs = append(msgs, err.Error())
				}
			}

			return msgs
		}(),
	}
}

func (e *Error) Error() string {
	//nolint:errchkjson
	data, _ := json.Marshal(e)
	return string(data)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}

	if len(e.Err) == 0 {
		return nil
	}

	errs := make([]error, len(e.Err))
	for i, err := range e.Err {
		errs[i] = fmt.Errorf("%s", err)
	}

	return errors.Join(errs...)
}

func (e *Error) Messages() []string {
	return e.Err
}
