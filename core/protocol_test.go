package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		line       string
		want       Command
		wantErr    bool
		errMessage string
	}{
		{
			name: "add",
			line: "ADD|Maths Tut|2025-03-10 09:00|2025-03-10 10:00|Room1|MS101|Tutorial|Dr. Smith",
			want: Command{Action: ActionAdd, Event: makeEvent(t, "Maths Tut", "2025-03-10 09:00", "2025-03-10 10:00")},
		},
		{
			name: "add lowercase keyword and padded fields",
			line: "add| Maths Tut | 2025-03-10 09:00 | 2025-03-10 10:00 | Room1 | MS101 | Tutorial | Dr. Smith ",
			want: Command{Action: ActionAdd, Event: makeEvent(t, "Maths Tut", "2025-03-10 09:00", "2025-03-10 10:00")},
		},
		{
			name:       "add wrong token count",
			line:       "ADD|Maths Tut|2025-03-10 09:00",
			wantErr:    true,
			errMessage: "ADD requires 7 fields",
		},
		{
			name:       "add unparsable start",
			line:       "ADD|Maths Tut|yesterday|2025-03-10 10:00|Room1|MS101|Tutorial|Dr. Smith",
			wantErr:    true,
			errMessage: "unparsable start time: yesterday",
		},
		{
			name:       "add unparsable end",
			line:       "ADD|Maths Tut|2025-03-10 09:00|whenever|Room1|MS101|Tutorial|Dr. Smith",
			wantErr:    true,
			errMessage: "unparsable end time: whenever",
		},
		{
			name: "remove",
			line: "REMOVE|Maths Tut|2025-03-10 09:00",
			want: Command{Action: ActionRemove, Name: "Maths Tut", Start: mustTime(t, "2025-03-10 09:00")},
		},
		{
			name:       "remove wrong token count",
			line:       "REMOVE|Maths Tut",
			wantErr:    true,
			errMessage: "REMOVE requires 2 parameters",
		},
		{
			name: "load csv",
			line: "LOAD_CSV",
			want: Command{Action: ActionLoadCsv},
		},
		{
			name: "display case-insensitive",
			line: "display",
			want: Command{Action: ActionDisplay},
		},
		{
			name: "stop",
			line: "stop",
			want: Command{Action: ActionStop},
		},
		{
			name:       "unknown keyword",
			line:       "FROBNICATE|x",
			wantErr:    true,
			errMessage: "Unsupported action: FROBNICATE",
		},
		{
			name:       "empty line",
			line:       "",
			wantErr:    true,
			errMessage: "Unsupported action: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseCommand(tt.line)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMessage)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestRenderListing(t *testing.T) {
	t.Parallel()

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "No events scheduled.", RenderListing(nil))
	})

	t.Run("sorted single line", func(t *testing.T) {
		t.Parallel()

		late := makeEvent(t, "Late", "2025-03-10 10:00", "2025-03-10 11:00")
		early := makeEvent(t, "Early", "2025-03-10 09:00", "2025-03-10 09:30")

		got := RenderListing([]Event{late, early})

		assert.Equal(t, "["+early.String()+", "+late.String()+"]", got)
		assert.NotContains(t, got, "\n")
	})
}

func TestRenderResponses(t *testing.T) {
	t.Parallel()

	event := makeEvent(t, "Maths Tut", "2025-03-10 09:00", "2025-03-10 10:00")

	assert.Equal(t, "Event added successfully: "+event.String(), RenderAdded(event))
	assert.Equal(t, "Event removed successfully: "+event.String(), RenderRemoved(event))
	assert.Equal(t, "ERROR: event not found", RenderError(ErrEventNotFound))
}
