package core

import (
	"errors"
	"strings"
)

func ValidateEvent(event Event) error {
	event.Name = strings.TrimSpace(event.Name)
	if len(event.Name) == 0 {
		return errors.New("name is required")
	}

	if len(event.Name) > 100 {
		return errors.New("name is too long (100 characters tops)")
	}

	if !event.StartTime.Before(event.EndTime) {
		return errors.New("end time must be after start time")
	}

	return nil
}
