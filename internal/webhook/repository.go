package webhook

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Log statuses recorded for every inbound webhook request.
const (
	StatusProcessed = "processed"
	StatusIgnored   = "ignored"
	StatusError     = "error"
)

// maxLoggedPayload bounds the payload column. Chat providers occasionally
// attach large media envelopes; the audit trail only needs the head.
const maxLoggedPayload = 8 * 1024

// LogEntry represents one audited webhook request.
type LogEntry struct {
	ID        uuid.UUID  `db:"id"`
	Provider  string     `db:"provider"`
	Event     string     `db:"event"`
	Payload   string     `db:"payload"`
	Status    string     `db:"status"`
	Action    *string    `db:"action"`
	LeadID    *uuid.UUID `db:"lead_id"`
	Error     *string    `db:"error"`
	CreatedAt time.Time  `db:"created_at"`
}

// ListLogsParams filters the audit listing.
type ListLogsParams struct {
	Provider string
	Status   string
	Limit    int
	Offset   int
}

// Repository persists the webhook audit trail.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a webhook log repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert appends one audit row.
func (r *Repository) Insert(ctx context.Context, entry *LogEntry) error {
	entry.Payload = truncatePayload(entry.Payload)

	_, err := r.pool.Exec(ctx, `
		INSERT INTO webhook_logs (id, provider, event, payload, status, action, lead_id, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.ID, entry.Provider, entry.Event, entry.Payload,
		entry.Status, entry.Action, entry.LeadID, entry.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to insert webhook log: %w", err)
	}
	return nil
}

// truncatePayload bounds the stored payload, backing up to a rune
// boundary so the cut never leaves invalid UTF-8 in the column.
func truncatePayload(payload string) string {
	if len(payload) <= maxLoggedPayload {
		return payload
	}
	cut := maxLoggedPayload
	for cut > 0 && !utf8.RuneStart(payload[cut]) {
		cut--
	}
	return payload[:cut]
}

// ListLogs returns audit rows, newest first.
func (r *Repository) ListLogs(ctx context.Context, params ListLogsParams) ([]LogEntry, error) {
	where := []string{"TRUE"}
	args := []any{}

	if params.Provider != "" {
		args = append(args, params.Provider)
		where = append(where, fmt.Sprintf("provider = $%d", len(args)))
	}
	if params.Status != "" {
		args = append(args, params.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	limit := params.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit)
	limitClause := fmt.Sprintf("LIMIT $%d", len(args))
	args = append(args, params.Offset)
	offsetClause := fmt.Sprintf("OFFSET $%d", len(args))

	query := fmt.Sprintf(`
		SELECT id, provider, event, payload, status, action, lead_id, error, created_at
		FROM webhook_logs WHERE %s
		ORDER BY created_at DESC %s %s`,
		strings.Join(where, " AND "), limitClause, offsetClause)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list webhook logs: %w", err)
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(&e.ID, &e.Provider, &e.Event, &e.Payload, &e.Status,
			&e.Action, &e.LeadID, &e.Error, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan webhook log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
