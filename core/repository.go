package core

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type Repository interface {
	Add(ctx context.Context, event Event) error
	Remove(ctx context.Context, name string, start time.Time) (Event, error)
	EventsOnDate(ctx context.Context, date string) []Event
	EventsWithName(ctx context.Context, name string) []Event
	EventsWithLocation(ctx context.Context, location string) []Event
	EventsWithModule(ctx context.Context, module string) []Event
	EventsWithKind(ctx context.Context, kind string) []Event
	EventsWithLecturer(ctx context.Context, lecturer string) []Event
	EventsStartingAt(ctx context.Context, start time.Time) []Event
	EventsEndingAt(ctx context.Context, end time.Time) []Event
	Snapshot(ctx context.Context) []Event
	Replace(ctx context.Context, events []Event)
}

// repository is the single in-memory event collection shared by every
// connection. Reads take the shared lock and may run concurrently; Add,
// Remove and Replace hold the exclusive lock for the whole check-then-apply
// so no other mutation interleaves between the conflict scan and the
// append.
type repository struct {
	mu      sync.RWMutex
	events  []Event
	tracer  trace.Tracer
	metrics *RepositoryMetrics
}

func NewRepository() Repository {
	return &repository{
		tracer:  otel.GetTracerProvider().Tracer("lecture-scheduler/core"),
		metrics: NewRepositoryMetrics(),
	}
}

// Add appends the event unless it overlaps a stored event on the same
// calendar date. The scan is bounded by events-per-day, not total events.
func (r *repository) Add(ctx context.Context, event Event) error {
	start := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "add", start, err) }()

	_, span := r.tracer.Start(ctx, "repository.Add")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.events {
		if event.Overlaps(existing) {
			err = &ConflictError{Existing: existing}
			return err
		}
	}

	r.events = append(r.events, event)

	return nil
}

// Remove deletes and returns the first stored event, in insertion order,
// whose start time equals start and whose name matches case-insensitively.
func (r *repository) Remove(ctx context.Context, name string, start time.Time) (Event, error) {
	began := time.Now()

	var err error

	defer func() { r.metrics.Observe(ctx, "remove", began, err) }()

	_, span := r.tracer.Start(ctx, "repository.Remove")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.events {
		if existing.Identifies(name, start) {
			r.events = append(r.events[:i], r.events[i+1:]...)
			return existing, nil
		}
	}

	err = ErrEventNotFound

	return Event{}, err
}

// EventsOnDate returns the events starting on the given calendar date
// (DateLayout), in insertion order.
func (r *repository) EventsOnDate(ctx context.Context, date string) []Event {
	return r.filter(ctx, "events_on_date", func(e Event) bool {
		return e.Date() == date
	})
}

func (r *repository) EventsWithName(ctx context.Context, name string) []Event {
	return r.filter(ctx, "events_with_name", func(e Event) bool {
		return strings.EqualFold(e.Name, name)
	})
}

func (r *repository) EventsWithLocation(ctx context.Context, location string) []Event {
	return r.filter(ctx, "events_with_location", func(e Event) bool {
		return strings.EqualFold(e.Location, location)
	})
}

func (r *repository) EventsWithModule(ctx context.Context, module string) []Event {
	return r.filter(ctx, "events_with_module", func(e Event) bool {
		return strings.EqualFold(e.Module, module)
	})
}

func (r *repository) EventsWithKind(ctx context.Context, kind string) []Event {
	return r.filter(ctx, "events_with_kind", func(e Event) bool {
		return strings.EqualFold(e.Kind, kind)
	})
}

func (r *repository) EventsWithLecturer(ctx context.Context, lecturer string) []Event {
	return r.filter(ctx, "events_with_lecturer", func(e Event) bool {
		return strings.EqualFold(e.Lecturer, lecturer)
	})
}

func (r *repository) EventsStartingAt(ctx context.Context, start time.Time) []Event {
	return r.filter(ctx, "events_starting_at", func(e Event) bool {
		return e.StartTime.Equal(start)
	})
}

func (r *repository) EventsEndingAt(ctx context.Context, end time.Time) []Event {
	return r.filter(ctx, "events_ending_at", func(e Event) bool {
		return e.EndTime.Equal(end)
	})
}

// Snapshot returns a copy of the whole collection in insertion order.
func (r *repository) Snapshot(ctx context.Context) []Event {
	start := time.Now()

	defer func() { r.metrics.Observe(ctx, "snapshot", start, nil) }()

	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]Event(nil), r.events...)
}

// Replace swaps in a whole new collection. Used by the startup load and by
// the rollback path when a persistence write fails mid-mutation.
func (r *repository) Replace(ctx context.Context, events []Event) {
	start := time.Now()

	defer func() { r.metrics.Observe(ctx, "replace", start, nil) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append([]Event(nil), events...)
}

func (r *repository) filter(ctx context.Context, op string, keep func(Event) bool) []Event {
	start := time.Now()

	defer func() { r.metrics.Observe(ctx, op, start, nil) }()

	r.mu.RLock()
	defer r.mu.RUnlock()

	var events []Event
	for _, e := range r.events {
		if keep(e) {
			events = append(events, e)
		}
	}

	return events
}

// SortChronologically returns a fresh list ordered by (start, end)
// ascending; ties beyond that keep insertion order. The input is not
// mutated.
func SortChronologically(events []Event) []Event {
	sorted := append([]Event(nil), events...)

	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].StartTime.Equal(sorted[j].StartTime) {
			return sorted[i].StartTime.Before(sorted[j].StartTime)
		}

		return sorted[i].EndTime.Before(sorted[j].EndTime)
	})

	return sorted
}

/*

 */

type RepositoryMetrics struct {
	opTotal   metric.Int64Counter
	opErrors  metric.Int64Counter
	opLatency metric.Float64Histogram
}

func NewRepositoryMetrics() *RepositoryMetrics {
	meter := otel.Meter("lecture-scheduler/repository")

	opTotal, _ := meter.Int64Counter("repository.op.total")
	opErrors, _ := meter.Int64Counter("repository.op.errors.total")
	opLatency, _ := meter.Float64Histogram("repository.op.duration.ms")

	return &RepositoryMetrics{opTotal: opTotal, opErrors: opErrors, opLatency: opLatency}
}

func (m *RepositoryMetrics) Observe(ctx context.Context, op string, start time.Time, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("repository.operation", op),
	}

	m.opTotal.Add(ctx, 1, metric.WithAttributes(attrs...))

	ms := float64(time.Since(start).Milliseconds())
	m.opLatency.Record(ctx, ms, metric.WithAttributes(attrs...))

	if err != nil {
		m.opErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
