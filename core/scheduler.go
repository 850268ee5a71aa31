package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type Scheduler interface {
	AddEvent(ctx context.Context, event Event) (Event, error)
	RemoveEvent(ctx context.Context, name string, start time.Time) (Event, error)
	Execute(ctx context.Context, line string) []string
	Flush(ctx context.Context) error
}

// scheduler applies mutations to the shared repository and persists the
// resulting snapshot as one atomic unit: mu serializes every
// check-then-apply-then-persist sequence, so no mutation interleaves
// between another mutation's conflict check and its save, and no save
// writes a stale snapshot over a newer one. Durability comes before the
// success response, so a slow disk stalls every mutator.
type scheduler struct {
	mu         sync.Mutex
	repository Repository
	store      SnapshotStore
	tracer     trace.Tracer
	metrics    *CommandMetrics
}

func NewScheduler(repository Repository, store SnapshotStore) Scheduler {
	return &scheduler{
		repository: repository,
		store:      store,
		tracer:     otel.GetTracerProvider().Tracer("lecture-scheduler/core"),
		metrics:    NewCommandMetrics(),
	}
}

// AddEvent validates, stores and persists the event. Either the event is
// stored and persisted, or neither happens: a failed save rolls the
// in-memory append back and the add fails.
func (s *scheduler) AddEvent(ctx context.Context, event Event) (Event, error) {
	ctx, span := s.tracer.Start(ctx, "scheduler.AddEvent")
	defer span.End()

	if err := ValidateEvent(event); err != nil {
		return Event{}, &MalformedCommandError{Reason: err.Error()}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prior := s.repository.Snapshot(ctx)

	if err := s.repository.Add(ctx, event); err != nil {
		return Event{}, err
	}

	if err := s.store.Save(ctx, s.repository.Snapshot(ctx)); err != nil {
		s.repository.Replace(ctx, prior)
		return Event{}, fmt.Errorf("failed to persist schedule: %w", err)
	}

	return event, nil
}

// RemoveEvent removes the event identified by (name, start) and persists
// the shrunk snapshot, rolling the removal back if the save fails.
func (s *scheduler) RemoveEvent(ctx context.Context, name string, start time.Time) (Event, error) {
	ctx, span := s.tracer.Start(ctx, "scheduler.RemoveEvent")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	prior := s.repository.Snapshot(ctx)

	removed, err := s.repository.Remove(ctx, name, start)
	if err != nil {
		return Event{}, err
	}

	if err := s.store.Save(ctx, s.repository.Snapshot(ctx)); err != nil {
		s.repository.Replace(ctx, prior)
		return Event{}, fmt.Errorf("failed to persist schedule: %w", err)
	}

	return removed, nil
}

// Execute runs one protocol line to completion and returns the response
// lines to write back: a single line for every command except LOAD_CSV,
// which returns the record lines followed by the END_CSV sentinel. Every
// failure is rendered as an ERROR: line; nothing escapes to crash the
// calling handler.
func (s *scheduler) Execute(ctx context.Context, line string) []string {
	began := time.Now()

	command, err := ParseCommand(line)
	if err != nil {
		s.metrics.Observe(ctx, "malformed", began, err)
		return []string{RenderError(err)}
	}

	defer func() { s.metrics.Observe(ctx, string(command.Action), began, err) }()

	switch command.Action {
	case ActionAdd:
		var added Event

		added, err = s.AddEvent(ctx, command.Event)
		if err != nil {
			return []string{RenderError(err)}
		}

		return []string{RenderAdded(added)}

	case ActionRemove:
		var removed Event

		removed, err = s.RemoveEvent(ctx, command.Name, command.Start)
		if err != nil {
			return []string{RenderError(err)}
		}

		return []string{RenderRemoved(removed)}

	case ActionLoadCsv:
		events := s.repository.Snapshot(ctx)

		lines := make([]string, 0, len(events)+1)
		for _, event := range events {
			lines = append(lines, event.Record())
		}

		return append(lines, ResponseEndCsv)

	case ActionDisplay:
		return []string{RenderListing(s.repository.Snapshot(ctx))}

	case ActionStop:
		return []string{ResponseTerminate}

	default:
		err = &UnsupportedActionError{Action: string(command.Action)}
		return []string{RenderError(err)}
	}
}

// Flush persists the current snapshot outside the mutation path: the final
// save on graceful shutdown and the periodic safety-net save.
func (s *scheduler) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.store.Save(ctx, s.repository.Snapshot(ctx))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("snapshot flush failed")
		return err
	}

	return nil
}

/*

 */

type CommandMetrics struct {
	cmdTotal   metric.Int64Counter
	cmdErrors  metric.Int64Counter
	cmdLatency metric.Float64Histogram
}

func NewCommandMetrics() *CommandMetrics {
	meter := otel.Meter("lecture-scheduler/protocol")

	cmdTotal, _ := meter.Int64Counter("protocol.command.total")
	cmdErrors, _ := meter.Int64Counter("protocol.command.errors.total")
	cmdLatency, _ := meter.Float64Histogram("protocol.command.duration.ms")

	return &CommandMetrics{cmdTotal: cmdTotal, cmdErrors: cmdErrors, cmdLatency: cmdLatency}
}

func (m *CommandMetrics) Observe(ctx context.Context, command string, start time.Time, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("protocol.command", command),
	}

	m.cmdTotal.Add(ctx, 1, metric.WithAttributes(attrs...))

	ms := float64(time.Since(start).Milliseconds())
	m.cmdLatency.Record(ctx, ms, metric.WithAttributes(attrs...))

	if err != nil {
		m.cmdErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
