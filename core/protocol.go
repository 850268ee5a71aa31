package core

import (
	"strings"
	"time"
)

type Action string

const (
	ActionAdd     Action = "ADD"
	ActionRemove  Action = "REMOVE"
	ActionLoadCsv Action = "LOAD_CSV"
	ActionDisplay Action = "DISPLAY"
	ActionStop    Action = "STOP"
)

// Fixed response lines of the wire protocol.
const (
	ResponseTerminate = "TERMINATE"
	ResponseEndCsv    = "END_CSV"
	ResponseNoEvents  = "No events scheduled."

	errorPrefix = "ERROR: "
)

// Command is one parsed protocol line. Event is populated for ADD; Name and
// Start are populated for REMOVE.
type Command struct {
	Action Action
	Event  Event
	Name   string
	Start  time.Time
}

// ParseCommand parses one pipe-delimited request line. The command keyword
// is case-insensitive; field counts are validated per command before any
// field is interpreted.
func ParseCommand(line string) (Command, error) {
	parts := strings.Split(line, "|")
	action := Action(strings.ToUpper(strings.TrimSpace(parts[0])))

	switch action {
	case ActionAdd:
		if len(parts) != 8 {
			return Command{}, &MalformedCommandError{
				Reason: "ADD requires 7 fields: name|start|end|location|module|type|lecturer, none of which may contain the character \"|\"",
			}
		}

		start, err := time.Parse(WireTimeLayout, strings.TrimSpace(parts[2]))
		if err != nil {
			return Command{}, &MalformedCommandError{Reason: "unparsable start time: " + strings.TrimSpace(parts[2])}
		}

		end, err := time.Parse(WireTimeLayout, strings.TrimSpace(parts[3]))
		if err != nil {
			return Command{}, &MalformedCommandError{Reason: "unparsable end time: " + strings.TrimSpace(parts[3])}
		}

		return Command{
			Action: ActionAdd,
			Event: Event{
				Name:      strings.TrimSpace(parts[1]),
				StartTime: start,
				EndTime:   end,
				Location:  strings.TrimSpace(parts[4]),
				Module:    strings.TrimSpace(parts[5]),
				Kind:      strings.TrimSpace(parts[6]),
				Lecturer:  strings.TrimSpace(parts[7]),
			},
		}, nil

	case ActionRemove:
		if len(parts) != 3 {
			return Command{}, &MalformedCommandError{Reason: "REMOVE requires 2 parameters: name|start"}
		}

		start, err := time.Parse(WireTimeLayout, strings.TrimSpace(parts[2]))
		if err != nil {
			return Command{}, &MalformedCommandError{Reason: "unparsable start time: " + strings.TrimSpace(parts[2])}
		}

		return Command{
			Action: ActionRemove,
			Name:   strings.TrimSpace(parts[1]),
			Start:  start,
		}, nil

	case ActionLoadCsv, ActionDisplay, ActionStop:
		if len(parts) != 1 {
			return Command{}, &UnsupportedActionError{Action: string(action)}
		}

		return Command{Action: action}, nil

	default:
		return Command{}, &UnsupportedActionError{Action: string(action)}
	}
}

// RenderError renders any dispatch failure as the single-line error
// response. ERROR: is the one prefix of the protocol.
func RenderError(err error) string {
	return errorPrefix + err.Error()
}

func RenderAdded(event Event) string {
	return "Event added successfully: " + event.String()
}

func RenderRemoved(event Event) string {
	return "Event removed successfully: " + event.String()
}

// RenderListing renders the DISPLAY response: the chronologically sorted
// collection on a single line, or the fixed empty-schedule notice.
func RenderListing(events []Event) string {
	if len(events) == 0 {
		return ResponseNoEvents
	}

	sorted := SortChronologically(events)

	rendered := make([]string, len(sorted))
	for i, event := range sorted {
		rendered[i] = event.String()
	}

	return "[" + strings.Join(rendered, ", ") + "]"
}
