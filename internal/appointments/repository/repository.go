// Package repository provides database operations for appointments.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	leadsdomain "upboost_crm_backend/internal/leads/domain"
	"upboost_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Appointment statuses.
const (
	StatusScheduled = "AGENDADO"
	StatusCancelled = "CANCELADO"
	StatusCompleted = "CONCLUIDO"
)

// History actions recorded for every appointment mutation.
const (
	HistoryBooked      = "agendado"
	HistoryRescheduled = "reagendado"
	HistoryCancelled   = "cancelado"
	HistoryCompleted   = "concluido"
)

// Appointment represents the appointment database model.
type Appointment struct {
	ID        uuid.UUID `db:"id"`
	LeadID    uuid.UUID `db:"lead_id"`
	OwnerID   uuid.UUID `db:"owner_id"`
	Title     string    `db:"title"`
	Notes     *string   `db:"notes"`
	StartsAt  time.Time `db:"starts_at"`
	EndsAt    time.Time `db:"ends_at"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// HistoryEntry records one mutation in an appointment's lifecycle.
type HistoryEntry struct {
	ID            uuid.UUID `db:"id"`
	AppointmentID uuid.UUID `db:"appointment_id"`
	Action        string    `db:"action"`
	Detail        *string   `db:"detail"`
	CreatedAt     time.Time `db:"created_at"`
}

// ReminderInfo joins the appointment with the lead and owner data needed
// for reminder and confirmation emails.
type ReminderInfo struct {
	AppointmentID uuid.UUID
	LeadID        uuid.UUID
	LeadName      string
	OwnerEmail    string
	StartsAt      time.Time
	Status        string
}

// Repository provides database operations for appointments.
type Repository struct {
	pool *pgxpool.Pool
}

const appointmentNotFoundMsg = "appointment not found"
const slotTakenMsg = "the requested timeslot is already booked"

// exclusionViolation is raised by the btree_gist EXCLUDE constraint when
// two scheduled appointments overlap.
const exclusionViolation = "23P01"

const appointmentColumns = `id, lead_id, owner_id, title, notes, starts_at, ends_at, status, created_at, updated_at`

// New creates a new appointments repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID, &a.LeadID, &a.OwnerID, &a.Title, &a.Notes,
		&a.StartsAt, &a.EndsAt, &a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func isExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == exclusionViolation
}

// Book atomically creates an appointment, appends the history entry, and
// moves the lead into AGENDADO. The overlap pre-check runs under row locks
// inside the transaction; the database exclusion constraint backs it up.
func (r *Repository) Book(ctx context.Context, appt *Appointment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin booking: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := r.lockOverlapping(ctx, tx, appt.StartsAt, appt.EndsAt, uuid.Nil); err != nil {
		return err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO appointments (id, lead_id, owner_id, title, notes, starts_at, ends_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		appt.ID, appt.LeadID, appt.OwnerID, appt.Title, appt.Notes,
		appt.StartsAt, appt.EndsAt, StatusScheduled,
	).Scan(&appt.CreatedAt, &appt.UpdatedAt)
	if err != nil {
		if isExclusionViolation(err) {
			return apperr.Conflict(slotTakenMsg)
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}

	if err := appendHistory(ctx, tx, appt.ID, HistoryBooked, nil); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE leads SET stage = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`,
		appt.LeadID, leadsdomain.StageAgendado,
	)
	if err != nil {
		return fmt.Errorf("failed to move lead to booked stage: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit booking: %w", err)
	}

	appt.Status = StatusScheduled
	return nil
}

// Reschedule atomically moves an appointment to a new timeslot.
func (r *Repository) Reschedule(ctx context.Context, id uuid.UUID, startsAt, endsAt time.Time) (*Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin reschedule: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := r.lockOverlapping(ctx, tx, startsAt, endsAt, id); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		UPDATE appointments SET starts_at = $2, ends_at = $3, updated_at = NOW()
		WHERE id = $1 AND status = $4
		RETURNING %s`, appointmentColumns)

	appt, err := scanAppointment(tx.QueryRow(ctx, query, id, startsAt, endsAt, StatusScheduled))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(appointmentNotFoundMsg)
		}
		if isExclusionViolation(err) {
			return nil, apperr.Conflict(slotTakenMsg)
		}
		return nil, fmt.Errorf("failed to reschedule appointment: %w", err)
	}

	detail := fmt.Sprintf("novo horário: %s", startsAt.UTC().Format(time.RFC3339))
	if err := appendHistory(ctx, tx, id, HistoryRescheduled, &detail); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit reschedule: %w", err)
	}
	return appt, nil
}

// Cancel atomically cancels an appointment. The lead goes back into
// negotiation only when it still sits in AGENDADO; a lead that moved on
// to attendance or beyond keeps its stage.
func (r *Repository) Cancel(ctx context.Context, id uuid.UUID, reason string) (*Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin cancel: %w", err)
	}
	defer tx.Rollback(ctx)

	query := fmt.Sprintf(`
		UPDATE appointments SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3
		RETURNING %s`, appointmentColumns)

	appt, err := scanAppointment(tx.QueryRow(ctx, query, id, StatusCancelled, StatusScheduled))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(appointmentNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to cancel appointment: %w", err)
	}

	var detail *string
	if reason != "" {
		detail = &reason
	}
	if err := appendHistory(ctx, tx, id, HistoryCancelled, detail); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE leads SET stage = $2, updated_at = NOW()
		WHERE id = $1 AND stage = $3 AND deleted_at IS NULL`,
		appt.LeadID, leadsdomain.StageEmNegociacao, leadsdomain.StageAgendado,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to revert lead stage: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit cancel: %w", err)
	}
	return appt, nil
}

// Complete marks a finished appointment and records it in history.
func (r *Repository) Complete(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin complete: %w", err)
	}
	defer tx.Rollback(ctx)

	query := fmt.Sprintf(`
		UPDATE appointments SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3
		RETURNING %s`, appointmentColumns)

	appt, err := scanAppointment(tx.QueryRow(ctx, query, id, StatusCompleted, StatusScheduled))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(appointmentNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to complete appointment: %w", err)
	}

	if err := appendHistory(ctx, tx, id, HistoryCompleted, nil); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit complete: %w", err)
	}
	return appt, nil
}

// GetByID retrieves an appointment by its ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	query := fmt.Sprintf(`SELECT %s FROM appointments WHERE id = $1`, appointmentColumns)

	appt, err := scanAppointment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(appointmentNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return appt, nil
}

// ListBetween returns scheduled appointments intersecting [from, to).
func (r *Repository) ListBetween(ctx context.Context, from, to time.Time) ([]Appointment, error) {
	query := fmt.Sprintf(`SELECT %s FROM appointments
		WHERE status = $1 AND starts_at < $3 AND ends_at > $2
		ORDER BY starts_at ASC`, appointmentColumns)

	rows, err := r.pool.Query(ctx, query, StatusScheduled, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer rows.Close()

	var items []Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		items = append(items, *appt)
	}
	return items, rows.Err()
}

// ListByLead returns every appointment for a lead, newest first.
func (r *Repository) ListByLead(ctx context.Context, leadID uuid.UUID) ([]Appointment, error) {
	query := fmt.Sprintf(`SELECT %s FROM appointments
		WHERE lead_id = $1 ORDER BY starts_at DESC`, appointmentColumns)

	rows, err := r.pool.Query(ctx, query, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lead appointments: %w", err)
	}
	defer rows.Close()

	var items []Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		items = append(items, *appt)
	}
	return items, rows.Err()
}

// History returns the mutation log of an appointment, oldest first.
func (r *Repository) History(ctx context.Context, appointmentID uuid.UUID) ([]HistoryEntry, error) {
	query := `SELECT id, appointment_id, action, detail, created_at
		FROM appointment_history WHERE appointment_id = $1 ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointment history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.AppointmentID, &e.Action, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ReminderInfo loads the data needed for reminder and confirmation emails.
// Returns nil when the appointment no longer exists.
func (r *Repository) ReminderInfo(ctx context.Context, appointmentID uuid.UUID) (*ReminderInfo, error) {
	query := `
		SELECT a.id, a.lead_id, l.name, u.email, a.starts_at, a.status
		FROM appointments a
		JOIN leads l ON l.id = a.lead_id
		JOIN users u ON u.id = a.owner_id
		WHERE a.id = $1`

	var info ReminderInfo
	err := r.pool.QueryRow(ctx, query, appointmentID).Scan(
		&info.AppointmentID, &info.LeadID, &info.LeadName,
		&info.OwnerEmail, &info.StartsAt, &info.Status,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load reminder info: %w", err)
	}
	return &info, nil
}

// lockOverlapping takes row locks on scheduled appointments intersecting
// the candidate slot and fails with a conflict when any exist. excludeID
// skips the appointment being rescheduled.
func (r *Repository) lockOverlapping(ctx context.Context, tx pgx.Tx, startsAt, endsAt time.Time, excludeID uuid.UUID) error {
	rows, err := tx.Query(ctx, `
		SELECT id FROM appointments
		WHERE status = $1 AND starts_at < $3 AND ends_at > $2 AND id != $4
		FOR UPDATE`,
		StatusScheduled, startsAt, endsAt, excludeID,
	)
	if err != nil {
		return fmt.Errorf("failed to check slot availability: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		return apperr.Conflict(slotTakenMsg)
	}
	return rows.Err()
}

func appendHistory(ctx context.Context, tx pgx.Tx, appointmentID uuid.UUID, action string, detail *string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO appointment_history (id, appointment_id, action, detail)
		VALUES ($1, $2, $3, $4)`,
		uuid.New(), appointmentID, action, detail,
	)
	if err != nil {
		return fmt.Errorf("failed to append appointment history: %w", err)
	}
	return nil
}
