// Package repository provides database operations for leads.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"upboost_crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Lead represents the lead database model.
type Lead struct {
	ID         uuid.UUID  `db:"id"`
	Name       string     `db:"name"`
	Phone      string     `db:"phone"`
	Email      *string    `db:"email"`
	Source     string     `db:"source"`
	Plan       string     `db:"plan"`
	ValueCents int64      `db:"value_cents"`
	Stage      string     `db:"stage"`
	InPipeline bool       `db:"in_pipeline"`
	OwnerID    uuid.UUID  `db:"owner_id"`
	LostReason *string    `db:"lost_reason"`
	Notes      *string    `db:"notes"`
	DeletedAt  *time.Time `db:"deleted_at"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
}

// UpdateFields is a patch applied to an existing lead. Nil members are
// left unchanged. Owner is deliberately absent: ownership never changes
// through updates.
type UpdateFields struct {
	Name       *string
	Email      *string
	Source     *string
	Plan       *string
	ValueCents *int64
	Stage      *string
	InPipeline *bool
	LostReason *string
	ClearLost  bool
	Notes      *string
}

// ListParams filters the pipeline listing. Archived leads (taken off the
// board without being deleted) are excluded unless requested.
type ListParams struct {
	Stage           string
	Search          string
	IncludeArchived bool
	Limit           int
	Offset          int
}

// Repository provides database operations for leads.
type Repository struct {
	pool *pgxpool.Pool
}

const leadNotFoundMsg = "lead not found"

const leadColumns = `id, name, phone, email, source, plan, value_cents, stage,
	in_pipeline, owner_id, lost_reason, notes, deleted_at, created_at, updated_at`

// New creates a new leads repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanLead(row pgx.Row) (*Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID, &l.Name, &l.Phone, &l.Email, &l.Source, &l.Plan, &l.ValueCents,
		&l.Stage, &l.InPipeline, &l.OwnerID, &l.LostReason, &l.Notes, &l.DeletedAt,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create inserts a new lead. The database generates the timestamps and
// they are written back onto the model.
func (r *Repository) Create(ctx context.Context, lead *Lead) error {
	query := `
		INSERT INTO leads (
			id, name, phone, email, source, plan, value_cents, stage,
			in_pipeline, owner_id, lost_reason, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		lead.ID, lead.Name, lead.Phone, lead.Email, lead.Source, lead.Plan,
		lead.ValueCents, lead.Stage, lead.InPipeline, lead.OwnerID,
		lead.LostReason, lead.Notes,
	).Scan(&lead.CreatedAt, &lead.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

// GetByID retrieves a lead by its ID, including soft-deleted ones.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Lead, error) {
	query := fmt.Sprintf(`SELECT %s FROM leads WHERE id = $1`, leadColumns)

	lead, err := scanLead(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(leadNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return lead, nil
}

// FindActiveByPhone returns the most recent non-deleted lead with the given
// normalized phone number, or nil when none exists.
func (r *Repository) FindActiveByPhone(ctx context.Context, phone string) (*Lead, error) {
	query := fmt.Sprintf(`SELECT %s FROM leads
		WHERE phone = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC LIMIT 1`, leadColumns)

	lead, err := scanLead(r.pool.QueryRow(ctx, query, phone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find lead by phone: %w", err)
	}
	return lead, nil
}

// Update applies a partial update to a lead and returns the updated row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*Lead, error) {
	set := []string{"updated_at = NOW()"}
	args := []any{id}

	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if fields.Name != nil {
		add("name", *fields.Name)
	}
	if fields.Email != nil {
		add("email", *fields.Email)
	}
	if fields.Source != nil {
		add("source", *fields.Source)
	}
	if fields.Plan != nil {
		add("plan", *fields.Plan)
	}
	if fields.ValueCents != nil {
		add("value_cents", *fields.ValueCents)
	}
	if fields.Stage != nil {
		add("stage", *fields.Stage)
	}
	if fields.InPipeline != nil {
		add("in_pipeline", *fields.InPipeline)
	}
	if fields.LostReason != nil {
		add("lost_reason", *fields.LostReason)
	} else if fields.ClearLost {
		set = append(set, "lost_reason = NULL")
	}
	if fields.Notes != nil {
		add("notes", *fields.Notes)
	}

	query := fmt.Sprintf(`UPDATE leads SET %s WHERE id = $1 AND deleted_at IS NULL
		RETURNING %s`, strings.Join(set, ", "), leadColumns)

	lead, err := scanLead(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(leadNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}
	return lead, nil
}

// SoftDelete marks a lead as deleted without removing its history.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE leads SET deleted_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMsg)
	}
	return nil
}

// List returns non-deleted leads for the pipeline board, newest first.
func (r *Repository) List(ctx context.Context, params ListParams) ([]Lead, error) {
	where := []string{"deleted_at IS NULL"}
	args := []any{}

	if !params.IncludeArchived {
		where = append(where, "in_pipeline = TRUE")
	}
	if params.Stage != "" {
		args = append(args, params.Stage)
		where = append(where, fmt.Sprintf("stage = $%d", len(args)))
	}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR phone LIKE $%d)", len(args), len(args)))
	}

	limit := params.Limit
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	args = append(args, limit)
	limitClause := fmt.Sprintf("LIMIT $%d", len(args))
	args = append(args, params.Offset)
	offsetClause := fmt.Sprintf("OFFSET $%d", len(args))

	query := fmt.Sprintf(`SELECT %s FROM leads WHERE %s
		ORDER BY created_at DESC %s %s`,
		leadColumns, strings.Join(where, " AND "), limitClause, offsetClause)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, *lead)
	}
	return leads, rows.Err()
}
