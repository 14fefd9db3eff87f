package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/md-rashed-zaman/practicedesk/libs/db"
)

type Repository struct {
	conn db.Conn
}

func NewRepository(conn db.Conn) *Repository {
	return &Repository{conn: conn}
}

// Record writes one audit entry inside tx so it commits or rolls back with
// the change it describes.
func (r *Repository) Record(ctx context.Context, tx pgx.Tx, practitionerID, action, details string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO audit_logs (id, practitioner_id, action, details)
		VALUES ($1, $2, $3, $4)
	`, uuid.NewString(), practitionerID, action, details)
	return err
}

type Entry struct {
	ID        string `json:"id"`
	Action    string `json:"action"`
	Details   string `json:"details"`
	CreatedAt string `json:"created_at"`
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// ListRecent returns the newest entries first. A non-positive limit means
// defaultListLimit; anything above maxListLimit is clamped to it.
func (r *Repository) ListRecent(ctx context.Context, practitionerID string, limit int) ([]Entry, error) {
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}
	rows, err := r.conn.Query(ctx, `
		SELECT id, action, details, created_at
		FROM audit_logs
		WHERE practitioner_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, practitionerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var createdAt time.Time
		if err := rows.Scan(&e.ID, &e.Action, &e.Details, &createdAt); err != nil {
			return nil, err
		}
		e.CreatedAt = createdAt.UTC().Format(time.RFC3339)
		entries = append(entries, e)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return entries, nil
}
