package core

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRepository(t *testing.T) Repository {
	t.Helper()

	ctx := context.Background()
	repo := NewRepository()

	events := []Event{
		{Name: "Comp Sci Lec", Location: "CSG001", Module: "CS4115", Kind: KindLecture, Lecturer: "Dr. Mann",
			StartTime: mustTime(t, "2025-03-10 11:00"), EndTime: mustTime(t, "2025-03-10 12:00")},
		{Name: "Maths Tut", Location: "Room1", Module: "MS101", Kind: KindTutorial, Lecturer: "Dr. Smith",
			StartTime: mustTime(t, "2025-03-10 09:00"), EndTime: mustTime(t, "2025-03-10 10:00")},
		{Name: "Comp Sci Lab", Location: "CSG001", Module: "CS4115", Kind: KindLab, Lecturer: "Dr. Mann",
			StartTime: mustTime(t, "2025-03-11 09:00"), EndTime: mustTime(t, "2025-03-11 11:00")},
	}

	for _, event := range events {
		require.NoError(t, repo.Add(ctx, event))
	}

	return repo
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	h := NewHandlers(seedRepository(t))

	router := gin.New()
	router.GET("/events", h.GetEvents)
	router.GET("/calendar.ics", h.GetCalendar)
	router.GET("/healthz", h.GetHealth)

	return router
}

func TestHandlers_GetEvents(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		target         string
		expectedStatus int
		expectedNames  []string
	}{
		{
			name:           "all events sorted",
			target:         "/events",
			expectedStatus: http.StatusOK,
			expectedNames:  []string{"Maths Tut", "Comp Sci Lec", "Comp Sci Lab"},
		},
		{
			name:           "by date",
			target:         "/events?date=2025-03-10",
			expectedStatus: http.StatusOK,
			expectedNames:  []string{"Maths Tut", "Comp Sci Lec"},
		},
		{
			name:           "by date empty",
			target:         "/events?date=2030-01-01",
			expectedStatus: http.StatusOK,
			expectedNames:  []string{},
		},
		{
			name:           "bad date",
			target:         "/events?date=tomorrow",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "by name case-insensitive",
			target:         "/events?name=maths%20tut",
			expectedStatus: http.StatusOK,
			expectedNames:  []string{"Maths Tut"},
		},
		{
			name:           "by location",
			target:         "/events?location=csg001",
			expectedStatus: http.StatusOK,
			expectedNames:  []string{"Comp Sci Lec", "Comp Sci Lab"},
		},
		{
			name:           "by module",
			target:         "/events?module=CS4115",
			expectedStatus: http.StatusOK,
			expectedNames:  []string{"Comp Sci Lec", "Comp Sci Lab"},
		},
		{
			name:           "by type",
			target:         "/events?type=lab",
			expectedStatus: http.StatusOK,
			expectedNames:  []string{"Comp Sci Lab"},
		},
		{
			name:           "by lecturer",
			target:         "/events?lecturer=dr.%20smith",
			expectedStatus: http.StatusOK,
			expectedNames:  []string{"Maths Tut"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := newTestRouter(t)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.target, nil))

			require.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus != http.StatusOK {
				return
			}

			var events []Event
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &events))

			names := make([]string, 0, len(events))
			for _, event := range events {
				names = append(names, event.Name)
			}

			assert.Equal(t, tt.expectedNames, names)
		})
	}
}

func TestHandlers_GetCalendar(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/calendar.ics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/calendar")

	body := w.Body.String()
	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.Contains(t, body, "END:VCALENDAR")
	assert.Contains(t, body, "SUMMARY:Maths Tut")
	assert.Contains(t, body, "LOCATION:CSG001")
}

func TestHandlers_GetHealth(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))

	assert.Equal(t, "ok", payload["status"])
	assert.InDelta(t, 3, payload["events"], 0)
}
