package core

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type SnapshotStore interface {
	Load(ctx context.Context) ([]Event, error)
	Save(ctx context.Context, events []Event) error
}

// snapshotStore persists the whole collection as a flat file, one event per
// line in Record format. Save rewrites the file in full; it never appends.
type snapshotStore struct {
	path   string
	tracer trace.Tracer
}

func NewSnapshotStore(path string) SnapshotStore {
	return &snapshotStore{
		path:   path,
		tracer: otel.GetTracerProvider().Tracer("lecture-scheduler/core"),
	}
}

// Load reads the snapshot file. Lines with fewer than 7 comma-separated
// fields or unparsable timestamps are skipped rather than failing the whole
// load.
func (s *snapshotStore) Load(ctx context.Context) ([]Event, error) {
	ctx, span := s.tracer.Start(ctx, "store.Load")
	defer span.End()

	file, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer file.Close()

	var events []Event

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		event, ok := parseRecord(line)
		if !ok {
			log.Ctx(ctx).Warn().Str("line", line).Msg("skipping malformed snapshot line")
			continue
		}

		events = append(events, event)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	return events, nil
}

// Save overwrites the snapshot file with the full collection,
// truncate-then-write-all.
func (s *snapshotStore) Save(ctx context.Context, events []Event) error {
	_, span := s.tracer.Start(ctx, "store.Save")
	defer span.End()

	var sb strings.Builder
	for _, event := range events {
		sb.WriteString(event.Record())
		sb.WriteByte('\n')
	}

	err := os.WriteFile(s.path, []byte(sb.String()), 0o644)
	if err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}

	return nil
}

func parseRecord(line string) (Event, bool) {
	parts := strings.Split(line, ",")
	if len(parts) < 7 {
		return Event{}, false
	}

	start, err := parseSnapshotTime(strings.TrimSpace(parts[1]))
	if err != nil {
		return Event{}, false
	}

	end, err := parseSnapshotTime(strings.TrimSpace(parts[2]))
	if err != nil {
		return Event{}, false
	}

	return Event{
		Name:      strings.TrimSpace(parts[0]),
		StartTime: start,
		EndTime:   end,
		Location:  strings.TrimSpace(parts[3]),
		Module:    strings.TrimSpace(parts[4]),
		Kind:      strings.TrimSpace(parts[5]),
		Lecturer:  strings.TrimSpace(parts[6]),
	}, true
}

// parseSnapshotTime accepts the minute-precision layout Save writes and
// tolerates a seconds suffix from older files.
func parseSnapshotTime(value string) (time.Time, error) {
	t, err := time.Parse(SnapshotTimeLayout, value)
	if err == nil {
		return t, nil
	}

	return time.Parse(SnapshotTimeLayout+":05", value)
}
