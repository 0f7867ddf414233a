package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskAppointmentReminder = "appointments.reminder"

// AppointmentReminderPayload pins the reminder to the window it was
// enqueued for. StartsAt lets the worker drop tasks left behind by a
// reschedule.
type AppointmentReminderPayload struct {
	AppointmentID string    `json:"appointmentId"`
	LeadID        string    `json:"leadId"`
	StartsAt      time.Time `json:"startsAt"`
}

func NewAppointmentReminderTask(payload AppointmentReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAppointmentReminder, data), nil
}

func ParseAppointmentReminderPayload(task *asynq.Task) (AppointmentReminderPayload, error) {
	var payload AppointmentReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return AppointmentReminderPayload{}, err
	}
	return payload, nil
}
