package audit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry is one archived order lifecycle event.
type Entry struct {
	EventID    string
	OrderID    string
	EventType  string
	Status     string
	TotalPrice int
	OccurredAt time.Time
	Payload    []byte
}

type Repo struct{ DB *pgxpool.Pool }

// EnsureSchema creates the audit table when it does not exist yet. The
// schema is static; a migration tool would be overkill for one table.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS order_audit (
			event_id    TEXT PRIMARY KEY,
			order_id    TEXT NOT NULL,
			event_type  TEXT NOT NULL,
			status      TEXT NOT NULL DEFAULT '',
			total_price BIGINT NOT NULL DEFAULT 0,
			occurred_at TIMESTAMPTZ NOT NULL,
			payload     JSONB,
			inserted_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	return err
}

// Insert is idempotent on event_id; replays are dropped silently.
func (r *Repo) Insert(ctx context.Context, e Entry) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO order_audit (event_id, order_id, event_type, status, total_price, occurred_at, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (event_id) DO NOTHING`,
		e.EventID, e.OrderID, e.EventType, e.Status, e.TotalPrice, e.OccurredAt, e.Payload,
	)
	return err
}

// History returns the archived events of one order, oldest first.
func (r *Repo) History(ctx context.Context, orderID string) ([]Entry, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT event_id, order_id, event_type, status, total_price, occurred_at, payload
		FROM order_audit WHERE order_id = $1 ORDER BY occurred_at`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.EventID, &e.OrderID, &e.EventType, &e.Status, &e.TotalPrice, &e.OccurredAt, &e.Payload); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
