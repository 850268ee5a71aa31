package core

import (
	"fmt"
	"net/http"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type Handlers interface {
	GetEvents(gctx *gin.Context)
	GetCalendar(gctx *gin.Context)
	GetHealth(gctx *gin.Context)
}

// handlers is the read-only HTTP admin surface. Mutations stay exclusive to
// the line protocol; these endpoints exist for operators and dashboards.
type handlers struct {
	repository Repository
}

func NewHandlers(repository Repository) Handlers {
	return &handlers{repository: repository}
}

// GetEvents returns the chronologically sorted collection as JSON,
// optionally narrowed by one of the date, name, location, module, type or
// lecturer query parameters. One filter per request; the first recognized
// parameter wins.
func (h *handlers) GetEvents(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var events []Event

	switch {
	case gctx.Query("date") != "":
		date := gctx.Query("date")

		_, err := time.Parse(DateLayout, date)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("unparsable date parameter")
			gctx.AbortWithStatusJSON(http.StatusBadRequest, NewError("unparsable date parameter", err))

			return
		}

		events = h.repository.EventsOnDate(ctx, date)
	case gctx.Query("name") != "":
		events = h.repository.EventsWithName(ctx, gctx.Query("name"))
	case gctx.Query("location") != "":
		events = h.repository.EventsWithLocation(ctx, gctx.Query("location"))
	case gctx.Query("module") != "":
		events = h.repository.EventsWithModule(ctx, gctx.Query("module"))
	case gctx.Query("type") != "":
		events = h.repository.EventsWithKind(ctx, gctx.Query("type"))
	case gctx.Query("lecturer") != "":
		events = h.repository.EventsWithLecturer(ctx, gctx.Query("lecturer"))
	default:
		events = h.repository.Snapshot(ctx)
	}

	sorted := SortChronologically(events)
	if sorted == nil {
		sorted = []Event{}
	}

	gctx.JSON(http.StatusOK, sorted)
}

// GetCalendar exports the whole schedule as an iCalendar feed, one VEVENT
// per stored event.
func (h *handlers) GetCalendar(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	calendar := ics.NewCalendar()
	calendar.SetMethod(ics.MethodPublish)

	for _, event := range SortChronologically(h.repository.Snapshot(ctx)) {
		// Two stored events can never share a start instant, so the start
		// is a stable UID.
		entry := calendar.AddEvent(fmt.Sprintf("%d@lecture-scheduler", event.StartTime.Unix()))
		entry.SetDtStampTime(time.Now())
		entry.SetStartAt(event.StartTime)
		entry.SetEndAt(event.EndTime)
		entry.SetSummary(event.Name)
		entry.SetLocation(event.Location)
		entry.SetDescription(fmt.Sprintf("%s %s with %s", event.Module, event.Kind, event.Lecturer))
	}

	gctx.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(calendar.Serialize()))
}

func (h *handlers) GetHealth(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	gctx.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"events": len(h.repository.Snapshot(ctx)),
	})
}
