package scheduler

import (
	"testing"
	"time"

	"upboost_crm_backend/internal/appointments/repository"

	"github.com/google/uuid"
)

func TestAppointmentReminderPayloadRoundTrip(t *testing.T) {
	payload := AppointmentReminderPayload{
		AppointmentID: uuid.NewString(),
		LeadID:        uuid.NewString(),
		StartsAt:      time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC),
	}

	task, err := NewAppointmentReminderTask(payload)
	if err != nil {
		t.Fatalf("NewAppointmentReminderTask: %v", err)
	}

	got, err := ParseAppointmentReminderPayload(task)
	if err != nil {
		t.Fatalf("ParseAppointmentReminderPayload: %v", err)
	}
	if got.AppointmentID != payload.AppointmentID || got.LeadID != payload.LeadID {
		t.Errorf("got %+v, want %+v", got, payload)
	}
	if !got.StartsAt.Equal(payload.StartsAt) {
		t.Errorf("got %v, want %v", got.StartsAt, payload.StartsAt)
	}
}

func TestReminderStale(t *testing.T) {
	start := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		payload AppointmentReminderPayload
		info    repository.ReminderInfo
		want    bool
	}{
		{
			"still scheduled for the enqueued window",
			AppointmentReminderPayload{StartsAt: start},
			repository.ReminderInfo{Status: repository.StatusScheduled, StartsAt: start},
			false,
		},
		{
			"cancelled",
			AppointmentReminderPayload{StartsAt: start},
			repository.ReminderInfo{Status: repository.StatusCancelled, StartsAt: start},
			true,
		},
		{
			"completed",
			AppointmentReminderPayload{StartsAt: start},
			repository.ReminderInfo{Status: repository.StatusCompleted, StartsAt: start},
			true,
		},
		{
			"rescheduled to a different window",
			AppointmentReminderPayload{StartsAt: start},
			repository.ReminderInfo{Status: repository.StatusScheduled, StartsAt: start.Add(2 * time.Hour)},
			true,
		},
		{
			"payload without a window stays on the status check",
			AppointmentReminderPayload{},
			repository.ReminderInfo{Status: repository.StatusScheduled, StartsAt: start},
			false,
		},
	}

	for _, tc := range cases {
		if got := reminderStale(tc.payload, &tc.info); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}
