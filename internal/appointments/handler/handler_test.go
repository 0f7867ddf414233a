package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"upboost_crm_backend/internal/appointments/service"

	"github.com/gin-gonic/gin"
)

var brt = time.FixedZone("BRT", -3*60*60)

type fakeSchedulingConfig struct{}

func (fakeSchedulingConfig) GetBusinessStartHour() int           { return 6 }
func (fakeSchedulingConfig) GetBusinessEndHour() int             { return 23 }
func (fakeSchedulingConfig) GetSlotMinutes() int                 { return 30 }
func (fakeSchedulingConfig) GetBusinessLocation() *time.Location { return brt }

func newTestHandler() *Handler {
	return New(service.New(nil, fakeSchedulingConfig{}, nil), nil)
}

func queryContext(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c
}

func TestParseDateQueryUsesBusinessTimezone(t *testing.T) {
	h := newTestHandler()
	c := queryContext("/slots?date=2026-03-09")

	date, err := h.parseDateQuery(c, "date")
	if err != nil {
		t.Fatalf("parseDateQuery: %v", err)
	}

	// Parsed as UTC the midnight instant would fall on Sunday the 8th
	// in business time.
	local := date.In(brt)
	if local.Weekday() != time.Monday || local.Day() != 9 {
		t.Errorf("parsed %s, want Monday the 9th in business time", local.Format(time.RFC3339))
	}
}

func TestParseDateQueryRejectsBadInput(t *testing.T) {
	h := newTestHandler()
	c := queryContext("/slots?date=09-03-2026")

	if _, err := h.parseDateQuery(c, "date"); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestToSlotResponses(t *testing.T) {
	slots := []service.Slot{
		{
			StartsAt:  time.Date(2026, 3, 9, 6, 0, 0, 0, brt),
			EndsAt:    time.Date(2026, 3, 9, 6, 30, 0, 0, brt),
			Available: true,
		},
		{
			StartsAt:  time.Date(2026, 3, 9, 6, 30, 0, 0, brt),
			EndsAt:    time.Date(2026, 3, 9, 7, 0, 0, 0, brt),
			Available: false,
		},
	}

	responses := toSlotResponses(slots, brt)

	if len(responses) != 2 {
		t.Fatalf("got %d responses, want 2", len(responses))
	}
	if responses[0].Time != "06:00" || responses[1].Time != "06:30" {
		t.Errorf("got times %q and %q, want 06:00 and 06:30", responses[0].Time, responses[1].Time)
	}
	if !responses[0].ScheduledAt.Equal(slots[0].StartsAt) {
		t.Errorf("got scheduledAt %v, want %v", responses[0].ScheduledAt, slots[0].StartsAt)
	}
	if !responses[0].Available || responses[1].Available {
		t.Error("availability flags not carried over")
	}
}
