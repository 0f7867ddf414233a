package service

import (
	"context"
	"testing"
	"time"

	"upboost_crm_backend/internal/appointments/repository"
	"upboost_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

const gotWantFmt = "got %v, want %v"

var brt = time.FixedZone("BRT", -3*60*60)

type fakeSchedulingConfig struct{}

func (fakeSchedulingConfig) GetBusinessStartHour() int           { return 6 }
func (fakeSchedulingConfig) GetBusinessEndHour() int             { return 23 }
func (fakeSchedulingConfig) GetSlotMinutes() int                 { return 30 }
func (fakeSchedulingConfig) GetBusinessLocation() *time.Location { return brt }

func newTestService(store Store) *Service {
	svc := New(store, fakeSchedulingConfig{}, nil)
	svc.now = func() time.Time {
		return time.Date(2026, 3, 9, 5, 0, 0, 0, brt)
	}
	return svc
}

func TestBuildDaySlotsCoversBusinessHours(t *testing.T) {
	svc := newTestService(nil)
	day := time.Date(2026, 3, 10, 12, 0, 0, 0, brt)

	slots := svc.buildDaySlots(day)

	if len(slots) != 34 {
		t.Fatalf(gotWantFmt, len(slots), 34)
	}

	first := slots[0]
	if first.StartsAt.Hour() != 6 || first.StartsAt.Minute() != 0 {
		t.Errorf("first slot starts at %s, want 06:00", first.StartsAt.Format("15:04"))
	}

	last := slots[len(slots)-1]
	if last.StartsAt.Hour() != 22 || last.StartsAt.Minute() != 30 {
		t.Errorf("last slot starts at %s, want 22:30", last.StartsAt.Format("15:04"))
	}
	if last.EndsAt.Hour() != 23 || last.EndsAt.Minute() != 0 {
		t.Errorf("last slot ends at %s, want 23:00", last.EndsAt.Format("15:04"))
	}

	for _, slot := range slots {
		if !slot.Available {
			t.Fatalf("expected every raw slot to start available")
		}
	}
}

func TestMarkAvailabilityFlagsOverlaps(t *testing.T) {
	svc := newTestService(nil)
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, brt)
	slots := svc.buildDaySlots(day)

	booked := []repository.Appointment{
		{
			StartsAt: time.Date(2026, 3, 10, 9, 0, 0, 0, brt),
			EndsAt:   time.Date(2026, 3, 10, 10, 0, 0, 0, brt),
		},
	}

	markAvailability(slots, booked)

	for _, slot := range slots {
		local := slot.StartsAt.In(brt)
		blocked := local.Hour() == 9
		if blocked && slot.Available {
			t.Errorf("slot %s should be unavailable", local.Format("15:04"))
		}
		if !blocked && !slot.Available {
			t.Errorf("slot %s should be available", local.Format("15:04"))
		}
	}
}

func TestResolveWindowDefaultsToOneSlot(t *testing.T) {
	svc := newTestService(nil)

	start := time.Date(2026, 3, 10, 14, 0, 0, 0, brt)
	gotStart, gotEnd, err := svc.resolveWindow(start.Format(time.RFC3339), "")
	if err != nil {
		t.Fatalf("resolveWindow: %v", err)
	}
	if !gotStart.Equal(start) {
		t.Errorf(gotWantFmt, gotStart, start)
	}
	if !gotEnd.Equal(start.Add(30 * time.Minute)) {
		t.Errorf(gotWantFmt, gotEnd, start.Add(30*time.Minute))
	}
}

func TestResolveWindowRejections(t *testing.T) {
	svc := newTestService(nil)

	cases := []struct {
		name     string
		startsAt time.Time
	}{
		{"before opening", time.Date(2026, 3, 10, 5, 30, 0, 0, brt)},
		{"after closing", time.Date(2026, 3, 10, 22, 45, 0, 0, brt)},
		{"off the grid", time.Date(2026, 3, 10, 14, 10, 0, 0, brt)},
		{"in the past", time.Date(2026, 3, 8, 14, 0, 0, 0, brt)},
	}

	for _, tc := range cases {
		_, _, err := svc.resolveWindow(tc.startsAt.Format(time.RFC3339), "")
		if err == nil {
			t.Errorf("%s: expected validation error", tc.name)
			continue
		}
		if apperr.GetKind(err) != apperr.KindValidation {
			t.Errorf("%s: "+gotWantFmt, tc.name, apperr.GetKind(err), apperr.KindValidation)
		}
	}
}

func TestAvailableSlotsMergesBookings(t *testing.T) {
	store := newFakeBookingStore()
	booked := &repository.Appointment{
		ID:       uuid.New(),
		LeadID:   uuid.New(),
		OwnerID:  uuid.New(),
		StartsAt: time.Date(2026, 3, 10, 11, 0, 0, 0, brt),
		EndsAt:   time.Date(2026, 3, 10, 11, 30, 0, 0, brt),
	}
	if err := store.Book(context.Background(), booked); err != nil {
		t.Fatalf("Book: %v", err)
	}

	svc := newTestService(store)
	slots, err := svc.AvailableSlots(context.Background(), time.Date(2026, 3, 10, 0, 0, 0, 0, brt))
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}

	var unavailable int
	for _, slot := range slots {
		if !slot.Available {
			unavailable++
			if !slot.StartsAt.Equal(booked.StartsAt) {
				t.Errorf("unexpected unavailable slot at %s", slot.StartsAt)
			}
		}
	}
	if unavailable != 1 {
		t.Errorf(gotWantFmt, unavailable, 1)
	}
}

func TestBuildDaySlotsEmptyOnWeekends(t *testing.T) {
	svc := newTestService(nil)

	saturday := time.Date(2026, 3, 14, 12, 0, 0, 0, brt)
	sunday := time.Date(2026, 3, 15, 12, 0, 0, 0, brt)

	if slots := svc.buildDaySlots(saturday); len(slots) != 0 {
		t.Errorf("saturday: "+gotWantFmt, len(slots), 0)
	}
	if slots := svc.buildDaySlots(sunday); len(slots) != 0 {
		t.Errorf("sunday: "+gotWantFmt, len(slots), 0)
	}
}

func TestResolveWindowRejectsWeekends(t *testing.T) {
	svc := newTestService(nil)

	saturday := time.Date(2026, 3, 14, 14, 0, 0, 0, brt)
	_, _, err := svc.resolveWindow(saturday.Format(time.RFC3339), "")
	if err == nil {
		t.Fatal("expected validation error for a weekend slot")
	}
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Errorf(gotWantFmt, apperr.GetKind(err), apperr.KindValidation)
	}
}

func TestAvailableSlotsForDateOnlyQuery(t *testing.T) {
	store := newFakeBookingStore()
	svc := newTestService(store)

	// A date-only query parses to midnight of that day in the business
	// timezone; the grid must stay on the requested weekday.
	day, err := time.ParseInLocation("2006-01-02", "2026-03-09", brt)
	if err != nil {
		t.Fatalf("ParseInLocation: %v", err)
	}

	slots, err := svc.AvailableSlots(context.Background(), day)
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}
	if len(slots) != 34 {
		t.Fatalf("monday grid: "+gotWantFmt, len(slots), 34)
	}
	if got := slots[0].StartsAt.In(brt); got.Day() != 9 || got.Weekday() != time.Monday {
		t.Errorf("grid built for %s, want Monday the 9th", got.Format(time.RFC3339))
	}
}

func TestAvailableSlotsMarksElapsedSlots(t *testing.T) {
	store := newFakeBookingStore()
	svc := newTestService(store)
	svc.now = func() time.Time {
		return time.Date(2026, 3, 10, 9, 15, 0, 0, brt)
	}

	slots, err := svc.AvailableSlots(context.Background(), time.Date(2026, 3, 10, 0, 0, 0, 0, brt))
	if err != nil {
		t.Fatalf("AvailableSlots: %v", err)
	}

	for _, slot := range slots {
		local := slot.StartsAt.In(brt)
		elapsed := local.Before(svc.now())
		if elapsed && slot.Available {
			t.Errorf("slot %s already started, should be unavailable", local.Format("15:04"))
		}
		if !elapsed && !slot.Available {
			t.Errorf("slot %s should be available", local.Format("15:04"))
		}
	}
}
