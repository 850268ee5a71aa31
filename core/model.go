package core

import (
	"fmt"
	"strings"
	"time"
)

// Timestamp layouts fixed by the wire and snapshot contracts.
const (
	WireTimeLayout     = "2006-01-02 15:04"
	SnapshotTimeLayout = "2006-01-02T15:04"
	DateLayout         = "2006-01-02"
)

// Conventional values for Event.Kind. The field is stored as free text;
// these are the values clients are expected to send.
const (
	KindLecture  = "Lecture"
	KindLab      = "Lab"
	KindTutorial = "Tutorial"
)

// Event is one scheduled item. Events are never mutated in place: they are
// created by a successful ADD and destroyed by a successful REMOVE.
type Event struct {
	Name      string    `json:"name,omitempty"`
	StartTime time.Time `json:"start_time,omitempty"`
	EndTime   time.Time `json:"end_time,omitempty"`
	Location  string    `json:"location,omitempty"`
	Module    string    `json:"module,omitempty"`
	Kind      string    `json:"type,omitempty"`
	Lecturer  string    `json:"lecturer,omitempty"`
}

// Date returns the calendar date of the event's start.
func (e Event) Date() string {
	return e.StartTime.Format(DateLayout)
}

// Overlaps reports whether the two events conflict: same calendar date and
// intersecting half-open intervals. Events that touch at a boundary do not
// conflict.
func (e Event) Overlaps(other Event) bool {
	if e.Date() != other.Date() {
		return false
	}

	return e.StartTime.Before(other.EndTime) && e.EndTime.After(other.StartTime)
}

// Identifies reports whether the event is the one named by the given
// case-insensitive name and exact start time, the identity REMOVE uses.
func (e Event) Identifies(name string, start time.Time) bool {
	return e.StartTime.Equal(start) && strings.EqualFold(e.Name, name)
}

func (e Event) String() string {
	return fmt.Sprintf("Event: %s, Date: %s, Time: %s - %s, Module: %s, Location: %s, Type: %s, Lecturer: %s",
		e.Name, e.Date(),
		e.StartTime.Format("15:04"), e.EndTime.Format("15:04"),
		e.Module, e.Location, e.Kind, e.Lecturer)
}

// Record renders the event as one comma-joined snapshot line. The same
// rendering is sent on the wire for LOAD_CSV. Fields are not escaped: a
// comma inside a field corrupts its row, which is a documented limitation
// of the format.
func (e Event) Record() string {
	return strings.Join([]string{
		e.Name,
		e.StartTime.Format(SnapshotTimeLayout),
		e.EndTime.Format(SnapshotTimeLayout),
		e.Location,
		e.Module,
		e.Kind,
		e.Lecturer,
	}, ",")
}
