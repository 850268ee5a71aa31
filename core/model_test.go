package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()

	ts, err := time.Parse(WireTimeLayout, value)
	require.NoError(t, err)

	return ts
}

func makeEvent(t *testing.T, name, start, end string) Event {
	t.Helper()

	return Event{
		Name:      name,
		StartTime: mustTime(t, start),
		EndTime:   mustTime(t, end),
		Location:  "Room1",
		Module:    "MS101",
		Kind:      KindTutorial,
		Lecturer:  "Dr. Smith",
	}
}

func TestEvent_Overlaps(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a    Event
		b    Event
		want bool
	}{
		{
			name: "identical intervals",
			a:    makeEvent(t, "A", "2025-03-10 09:00", "2025-03-10 10:00"),
			b:    makeEvent(t, "B", "2025-03-10 09:00", "2025-03-10 10:00"),
			want: true,
		},
		{
			name: "partial overlap",
			a:    makeEvent(t, "A", "2025-03-10 09:00", "2025-03-10 10:00"),
			b:    makeEvent(t, "B", "2025-03-10 09:30", "2025-03-10 10:30"),
			want: true,
		},
		{
			name: "contained interval",
			a:    makeEvent(t, "A", "2025-03-10 09:00", "2025-03-10 12:00"),
			b:    makeEvent(t, "B", "2025-03-10 10:00", "2025-03-10 11:00"),
			want: true,
		},
		{
			name: "touching boundaries",
			a:    makeEvent(t, "A", "2025-03-10 09:00", "2025-03-10 10:00"),
			b:    makeEvent(t, "B", "2025-03-10 10:00", "2025-03-10 11:00"),
			want: false,
		},
		{
			name: "disjoint same date",
			a:    makeEvent(t, "A", "2025-03-10 09:00", "2025-03-10 10:00"),
			b:    makeEvent(t, "B", "2025-03-10 14:00", "2025-03-10 15:00"),
			want: false,
		},
		{
			name: "same clock time different dates",
			a:    makeEvent(t, "A", "2025-03-10 09:00", "2025-03-10 10:00"),
			b:    makeEvent(t, "B", "2025-03-11 09:00", "2025-03-11 10:00"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}

func TestEvent_Identifies(t *testing.T) {
	t.Parallel()

	event := makeEvent(t, "Maths Tut", "2025-03-10 09:00", "2025-03-10 10:00")

	assert.True(t, event.Identifies("Maths Tut", mustTime(t, "2025-03-10 09:00")))
	assert.True(t, event.Identifies("maths tut", mustTime(t, "2025-03-10 09:00")))
	assert.False(t, event.Identifies("Maths Tut", mustTime(t, "2025-03-10 09:01")))
	assert.False(t, event.Identifies("Physics Tut", mustTime(t, "2025-03-10 09:00")))
}

func TestEvent_String(t *testing.T) {
	t.Parallel()

	event := makeEvent(t, "Maths Tut", "2025-03-10 09:00", "2025-03-10 10:00")

	assert.Equal(t,
		"Event: Maths Tut, Date: 2025-03-10, Time: 09:00 - 10:00, Module: MS101, Location: Room1, Type: Tutorial, Lecturer: Dr. Smith",
		event.String())
}

func TestEvent_Record(t *testing.T) {
	t.Parallel()

	event := makeEvent(t, "Maths Tut", "2025-03-10 09:00", "2025-03-10 10:00")

	assert.Equal(t,
		"Maths Tut,2025-03-10T09:00,2025-03-10T10:00,Room1,MS101,Tutorial,Dr. Smith",
		event.Record())
}
