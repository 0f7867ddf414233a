// Package service implements availability and booking for appointments.
package service

import (
	"context"
	"time"

	"upboost_crm_backend/internal/appointments/repository"
	"upboost_crm_backend/internal/appointments/transport"
	"upboost_crm_backend/internal/events"
	"upboost_crm_backend/internal/realtime"
	"upboost_crm_backend/internal/scheduler"
	"upboost_crm_backend/platform/apperr"
	"upboost_crm_backend/platform/config"
	"upboost_crm_backend/platform/logger"
	"upboost_crm_backend/platform/sanitize"

	"github.com/google/uuid"
)

// Store is the subset of the appointments repository needed by the service.
type Store interface {
	Book(ctx context.Context, appt *repository.Appointment) error
	Reschedule(ctx context.Context, id uuid.UUID, startsAt, endsAt time.Time) (*repository.Appointment, error)
	Cancel(ctx context.Context, id uuid.UUID, reason string) (*repository.Appointment, error)
	Complete(ctx context.Context, id uuid.UUID) (*repository.Appointment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*repository.Appointment, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]repository.Appointment, error)
	ListByLead(ctx context.Context, leadID uuid.UUID) ([]repository.Appointment, error)
	History(ctx context.Context, appointmentID uuid.UUID) ([]repository.HistoryEntry, error)
	ReminderInfo(ctx context.Context, appointmentID uuid.UUID) (*repository.ReminderInfo, error)
}

// EmailSender is the subset of the email sender used by appointments.
type EmailSender interface {
	SendAppointmentBookedEmail(ctx context.Context, toEmail, leadName, scheduledAt string) error
	SendAppointmentCancelledEmail(ctx context.Context, toEmail, leadName, scheduledAt, reason string) error
}

// Slot is one bookable interval of the business day. The transport layer
// maps it to the wire shape.
type Slot struct {
	StartsAt  time.Time
	EndsAt    time.Time
	Available bool
}

// Service implements appointment operations.
type Service struct {
	store       Store
	cfg         config.SchedulingConfig
	bus         events.Bus
	broadcaster *realtime.Broadcaster
	reminders   scheduler.ReminderScheduler
	sender      EmailSender
	log         *logger.Logger
	now         func() time.Time
}

const reminderLead = time.Hour

// New creates the appointments service.
func New(store Store, cfg config.SchedulingConfig, log *logger.Logger) *Service {
	return &Service{store: store, cfg: cfg, log: log, now: time.Now}
}

// SetEventBus wires the domain event bus.
func (s *Service) SetEventBus(bus events.Bus) { s.bus = bus }

// SetBroadcaster wires the cache-invalidation broadcaster.
func (s *Service) SetBroadcaster(b *realtime.Broadcaster) { s.broadcaster = b }

// SetReminderScheduler wires the asynq reminder client. Optional.
func (s *Service) SetReminderScheduler(r scheduler.ReminderScheduler) { s.reminders = r }

// SetEmailSender wires the owner notification sender. Optional.
func (s *Service) SetEmailSender(sender EmailSender) { s.sender = sender }

// BusinessLocation returns the timezone all slot math runs in.
func (s *Service) BusinessLocation() *time.Location { return s.cfg.GetBusinessLocation() }

// AvailableSlots returns every slot of the business day with its
// availability, computed against scheduled appointments.
func (s *Service) AvailableSlots(ctx context.Context, date time.Time) ([]Slot, error) {
	slots := s.buildDaySlots(date)
	if len(slots) == 0 {
		return slots, nil
	}

	dayStart := slots[0].StartsAt
	dayEnd := slots[len(slots)-1].EndsAt
	booked, err := s.store.ListBetween(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	markAvailability(slots, booked)

	// Slots that already started cannot be booked anymore.
	now := s.now()
	for i := range slots {
		if slots[i].StartsAt.Before(now) {
			slots[i].Available = false
		}
	}
	return slots, nil
}

// buildDaySlots generates the slot grid for the business day containing
// the given date, in the business timezone. Weekends have no slots.
func (s *Service) buildDaySlots(date time.Time) []Slot {
	loc := s.cfg.GetBusinessLocation()
	local := date.In(loc)
	if local.Weekday() == time.Saturday || local.Weekday() == time.Sunday {
		return nil
	}
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	slotLen := time.Duration(s.cfg.GetSlotMinutes()) * time.Minute
	start := day.Add(time.Duration(s.cfg.GetBusinessStartHour()) * time.Hour)
	end := day.Add(time.Duration(s.cfg.GetBusinessEndHour()) * time.Hour)

	var slots []Slot
	for cursor := start; cursor.Add(slotLen).Before(end) || cursor.Add(slotLen).Equal(end); cursor = cursor.Add(slotLen) {
		slots = append(slots, Slot{StartsAt: cursor, EndsAt: cursor.Add(slotLen), Available: true})
	}
	return slots
}

// markAvailability flags slots that intersect any booked appointment.
func markAvailability(slots []Slot, booked []repository.Appointment) {
	for i := range slots {
		for _, appt := range booked {
			if slots[i].StartsAt.Before(appt.EndsAt) && appt.StartsAt.Before(slots[i].EndsAt) {
				slots[i].Available = false
				break
			}
		}
	}
}

// Create books an appointment for a lead. The booking, the history entry,
// and the lead's move into AGENDADO commit in one transaction.
func (s *Service) Create(ctx context.Context, req transport.CreateAppointmentRequest) (*repository.Appointment, error) {
	leadID, err := uuid.Parse(req.LeadID)
	if err != nil {
		return nil, apperr.Validation("invalid leadId")
	}
	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		return nil, apperr.Validation("invalid ownerId")
	}

	startsAt, endsAt, err := s.resolveWindow(req.StartsAt, req.EndsAt)
	if err != nil {
		return nil, err
	}

	title := sanitize.Text(req.Title)
	if title == "" {
		title = "Atendimento"
	}

	appt := &repository.Appointment{
		ID:       uuid.New(),
		LeadID:   leadID,
		OwnerID:  ownerID,
		Title:    title,
		Notes:    sanitize.TextPtr(req.Notes),
		StartsAt: startsAt,
		EndsAt:   endsAt,
	}

	if err := s.store.Book(ctx, appt); err != nil {
		return nil, err
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.AppointmentCreated{
			BaseEvent:     events.NewBaseEvent(),
			AppointmentID: appt.ID,
			LeadID:        appt.LeadID,
			OwnerID:       appt.OwnerID,
			StartsAt:      appt.StartsAt,
			EndsAt:        appt.EndsAt,
		})
	}
	s.broadcaster.Broadcast(ctx, realtime.ResourceAppointments, realtime.KindInsert)
	s.broadcaster.Broadcast(ctx, realtime.ResourceLeads, realtime.KindUpdate)

	s.scheduleReminder(ctx, appt)
	s.notifyBooked(ctx, appt)

	return appt, nil
}

// Reschedule moves a scheduled appointment to a new window and enqueues a
// fresh reminder. The old task stays enqueued; the worker drops it because
// its payload start time no longer matches the appointment.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, req transport.RescheduleAppointmentRequest) (*repository.Appointment, error) {
	startsAt, endsAt, err := s.resolveWindow(req.StartsAt, req.EndsAt)
	if err != nil {
		return nil, err
	}

	appt, err := s.store.Reschedule(ctx, id, startsAt, endsAt)
	if err != nil {
		return nil, err
	}

	s.publishStatusChange(ctx, appt, repository.StatusScheduled, repository.StatusScheduled, "rescheduled")
	s.broadcaster.Broadcast(ctx, realtime.ResourceAppointments, realtime.KindUpdate)
	s.scheduleReminder(ctx, appt)

	return appt, nil
}

// Cancel cancels a scheduled appointment. The lead goes back into
// negotiation only if it is still sitting in AGENDADO; a lead that moved
// on to a later stage keeps it.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, req transport.CancelAppointmentRequest) (*repository.Appointment, error) {
	reason := sanitize.Text(req.Reason)

	appt, err := s.store.Cancel(ctx, id, reason)
	if err != nil {
		return nil, err
	}

	s.publishStatusChange(ctx, appt, repository.StatusScheduled, repository.StatusCancelled, reason)
	s.broadcaster.Broadcast(ctx, realtime.ResourceAppointments, realtime.KindUpdate)
	s.broadcaster.Broadcast(ctx, realtime.ResourceLeads, realtime.KindUpdate)
	s.notifyCancelled(ctx, appt, reason)

	return appt, nil
}

// Complete marks a scheduled appointment as done.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*repository.Appointment, error) {
	appt, err := s.store.Complete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publishStatusChange(ctx, appt, repository.StatusScheduled, repository.StatusCompleted, "")
	s.broadcaster.Broadcast(ctx, realtime.ResourceAppointments, realtime.KindUpdate)

	return appt, nil
}

// Get returns one appointment.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*repository.Appointment, error) {
	return s.store.GetByID(ctx, id)
}

// Week returns the scheduled appointments of the 7-day window starting at from.
func (s *Service) Week(ctx context.Context, from time.Time) ([]repository.Appointment, error) {
	loc := s.cfg.GetBusinessLocation()
	local := from.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return s.store.ListBetween(ctx, start, start.AddDate(0, 0, 7))
}

// ListByLead returns a lead's appointments.
func (s *Service) ListByLead(ctx context.Context, leadID uuid.UUID) ([]repository.Appointment, error) {
	return s.store.ListByLead(ctx, leadID)
}

// History returns an appointment's mutation log.
func (s *Service) History(ctx context.Context, id uuid.UUID) ([]repository.HistoryEntry, error) {
	return s.store.History(ctx, id)
}

// resolveWindow validates the requested booking window against business
// hours and the slot grid. A missing end defaults to one slot.
func (s *Service) resolveWindow(startsAtRaw string, endsAtRaw string) (time.Time, time.Time, error) {
	startsAt, err := time.Parse(time.RFC3339, startsAtRaw)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.Validation("startsAt must be RFC3339")
	}

	slotLen := time.Duration(s.cfg.GetSlotMinutes()) * time.Minute
	endsAt := startsAt.Add(slotLen)
	if endsAtRaw != "" {
		endsAt, err = time.Parse(time.RFC3339, endsAtRaw)
		if err != nil {
			return time.Time{}, time.Time{}, apperr.Validation("endsAt must be RFC3339")
		}
	}

	if !endsAt.After(startsAt) {
		return time.Time{}, time.Time{}, apperr.Validation("endsAt must be after startsAt")
	}
	if startsAt.Before(s.now()) {
		return time.Time{}, time.Time{}, apperr.Validation("cannot book a slot in the past")
	}

	loc := s.cfg.GetBusinessLocation()
	local := startsAt.In(loc)
	localEnd := endsAt.In(loc)

	if local.Weekday() == time.Saturday || local.Weekday() == time.Sunday {
		return time.Time{}, time.Time{}, apperr.Validation("slot is outside business days")
	}

	dayStart := time.Date(local.Year(), local.Month(), local.Day(), s.cfg.GetBusinessStartHour(), 0, 0, 0, loc)
	dayEnd := time.Date(local.Year(), local.Month(), local.Day(), s.cfg.GetBusinessEndHour(), 0, 0, 0, loc)
	if local.Before(dayStart) || localEnd.After(dayEnd) {
		return time.Time{}, time.Time{}, apperr.Validation("slot is outside business hours")
	}

	sinceOpen := local.Sub(dayStart)
	if sinceOpen%slotLen != 0 {
		return time.Time{}, time.Time{}, apperr.Validation("slot is not aligned to the booking grid")
	}

	return startsAt, endsAt, nil
}

func (s *Service) scheduleReminder(ctx context.Context, appt *repository.Appointment) {
	if s.reminders == nil {
		return
	}
	runAt := appt.StartsAt.Add(-reminderLead)
	if runAt.Before(s.now()) {
		return
	}
	err := s.reminders.ScheduleAppointmentReminder(ctx, scheduler.AppointmentReminderPayload{
		AppointmentID: appt.ID.String(),
		LeadID:        appt.LeadID.String(),
		StartsAt:      appt.StartsAt,
	}, runAt)
	if err != nil && s.log != nil {
		s.log.Warn("failed to schedule appointment reminder", "appointmentId", appt.ID, "error", err)
	}
}

func (s *Service) publishStatusChange(ctx context.Context, appt *repository.Appointment, from, to, reason string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, events.AppointmentStatusChanged{
		BaseEvent:     events.NewBaseEvent(),
		AppointmentID: appt.ID,
		LeadID:        appt.LeadID,
		FromStatus:    from,
		ToStatus:      to,
		Reason:        reason,
	})
}

func (s *Service) notifyBooked(ctx context.Context, appt *repository.Appointment) {
	if s.sender == nil {
		return
	}
	info, err := s.store.ReminderInfo(ctx, appt.ID)
	if err != nil || info == nil || info.OwnerEmail == "" {
		return
	}
	when := appt.StartsAt.In(s.cfg.GetBusinessLocation()).Format("02/01/2006 15:04")
	if err := s.sender.SendAppointmentBookedEmail(ctx, info.OwnerEmail, info.LeadName, when); err != nil && s.log != nil {
		s.log.Warn("booking confirmation email failed", "appointmentId", appt.ID, "error", err)
	}
}

func (s *Service) notifyCancelled(ctx context.Context, appt *repository.Appointment, reason string) {
	if s.sender == nil {
		return
	}
	info, err := s.store.ReminderInfo(ctx, appt.ID)
	if err != nil || info == nil || info.OwnerEmail == "" {
		return
	}
	when := appt.StartsAt.In(s.cfg.GetBusinessLocation()).Format("02/01/2006 15:04")
	if err := s.sender.SendAppointmentCancelledEmail(ctx, info.OwnerEmail, info.LeadName, when, reason); err != nil && s.log != nil {
		s.log.Warn("cancellation email failed", "appointmentId", appt.ID, "error", err)
	}
}
