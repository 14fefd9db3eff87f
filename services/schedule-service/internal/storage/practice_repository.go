package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/md-rashed-zaman/practicedesk/libs/db"
	"github.com/md-rashed-zaman/practicedesk/services/schedule-service/internal/model"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrSchemaMissing means the tables have not been migrated yet.
	ErrSchemaMissing = errors.New("schema not migrated")
	// ErrDuplicateID is returned when an appointment ID is already owned by
	// another practitioner.
	ErrDuplicateID = errors.New("appointment id already in use")
	// ErrOverlap is the database-level double booking guard firing.
	ErrOverlap = errors.New("appointment overlaps an existing session")
)

// Queryer is satisfied by both the pool and an open transaction.
type Queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type PracticeRepository struct {
	conn db.Conn
}

func NewPracticeRepository(conn db.Conn) *PracticeRepository {
	return &PracticeRepository{conn: conn}
}

func (r *PracticeRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.conn.Begin(ctx)
}

func (r *PracticeRepository) Conn() db.Conn {
	return r.conn
}

// LockPractitioner serializes writers for one practitioner until tx ends.
func (r *PracticeRepository) LockPractitioner(ctx context.Context, tx pgx.Tx, practitionerID string) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, practitionerID)
	return mapErr(err)
}

// Load reads everything the practitioner owns. q is either the pool or a
// transaction that already holds LockPractitioner.
func (r *PracticeRepository) Load(ctx context.Context, q Queryer, practitionerID string) (model.PracticeData, error) {
	if q == nil {
		q = r.conn
	}
	clients, err := r.listClients(ctx, q, practitionerID)
	if err != nil {
		return model.PracticeData{}, fmt.Errorf("load clients: %w", err)
	}
	appts, err := r.ListAppointments(ctx, q, practitionerID, "")
	if err != nil {
		return model.PracticeData{}, fmt.Errorf("load appointments: %w", err)
	}
	notes, err := r.listNotes(ctx, q, practitionerID)
	if err != nil {
		return model.PracticeData{}, fmt.Errorf("load notes: %w", err)
	}
	return model.PracticeData{Clients: clients, Appointments: appts, Notes: notes}, nil
}

const appointmentColumns = `id, practitioner_id, client_id, to_char(appt_date, 'YYYY-MM-DD'), start_time,
			duration_minutes, session_type, meeting_mode, status`

// ListAppointments returns the practitioner's appointments in every status,
// optionally restricted to one date, in date and start-time order.
func (r *PracticeRepository) ListAppointments(ctx context.Context, q Queryer, practitionerID, date string) ([]model.Appointment, error) {
	if q == nil {
		q = r.conn
	}
	rows, err := q.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE practitioner_id = $1
			AND ($2 = '' OR appt_date = NULLIF($2, '')::date)
		ORDER BY appt_date ASC, start_time ASC, created_at ASC
	`, practitionerID, date)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	appts := []model.Appointment{}
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	if rows.Err() != nil {
		return nil, mapErr(rows.Err())
	}
	return appts, nil
}

// UpsertAppointment inserts appt or replaces the row with the same ID. A
// row with that ID owned by a different practitioner is left untouched and
// reported as ErrDuplicateID.
func (r *PracticeRepository) UpsertAppointment(ctx context.Context, tx pgx.Tx, appt model.Appointment) error {
	tag, err := tx.Exec(ctx, `
		INSERT INTO appointments
			(id, practitioner_id, client_id, appt_date, start_time, duration_minutes, session_type, meeting_mode, status)
		VALUES ($1, $2, $3, $4::date, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE
		SET client_id = EXCLUDED.client_id,
			appt_date = EXCLUDED.appt_date,
			start_time = EXCLUDED.start_time,
			duration_minutes = EXCLUDED.duration_minutes,
			session_type = EXCLUDED.session_type,
			meeting_mode = EXCLUDED.meeting_mode,
			status = EXCLUDED.status,
			updated_at = now()
		WHERE appointments.practitioner_id = EXCLUDED.practitioner_id
	`, appt.ID, appt.PractitionerID, appt.ClientID, appt.Date, appt.StartTime, appt.Duration,
		string(appt.Type), string(appt.Mode), string(appt.Status))
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicateID
	}
	return nil
}

func (r *PracticeRepository) GetAppointmentForUpdate(ctx context.Context, tx pgx.Tx, practitionerID, appointmentID string) (model.Appointment, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1 AND practitioner_id = $2
		FOR UPDATE
	`, appointmentID, practitionerID)
	appt, err := scanAppointment(row)
	if err != nil {
		return model.Appointment{}, err
	}
	return appt, nil
}

func (r *PracticeRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, practitionerID, appointmentID string, status model.AppointmentStatus) error {
	tag, err := tx.Exec(ctx, `
		UPDATE appointments
		SET status = $3,
			updated_at = now()
		WHERE id = $1 AND practitioner_id = $2
	`, appointmentID, practitionerID, string(status))
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PracticeRepository) listClients(ctx context.Context, q Queryer, practitionerID string) ([]model.Client, error) {
	rows, err := q.Query(ctx, `
		SELECT id, practitioner_id, name, COALESCE(email, ''), COALESCE(phone, ''), status, created_at
		FROM clients
		WHERE practitioner_id = $1
		ORDER BY name ASC
	`, practitionerID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	clients := []model.Client{}
	for rows.Next() {
		var c model.Client
		var status string
		var createdAt time.Time
		if err := rows.Scan(&c.ID, &c.PractitionerID, &c.Name, &c.Email, &c.Phone, &status, &createdAt); err != nil {
			return nil, mapErr(err)
		}
		c.Status = model.ClientStatus(status)
		c.CreatedAt = createdAt.UTC()
		clients = append(clients, c)
	}
	if rows.Err() != nil {
		return nil, mapErr(rows.Err())
	}
	return clients, nil
}

func (r *PracticeRepository) listNotes(ctx context.Context, q Queryer, practitionerID string) ([]model.ClinicalNote, error) {
	rows, err := q.Query(ctx, `
		SELECT id, practitioner_id, client_id, category, title, status, created_at
		FROM clinical_notes
		WHERE practitioner_id = $1
		ORDER BY created_at DESC
	`, practitionerID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	notes := []model.ClinicalNote{}
	for rows.Next() {
		var n model.ClinicalNote
		var status string
		var createdAt time.Time
		if err := rows.Scan(&n.ID, &n.PractitionerID, &n.ClientID, &n.Category, &n.Title, &status, &createdAt); err != nil {
			return nil, mapErr(err)
		}
		n.Status = model.NoteStatus(status)
		n.CreatedAt = createdAt.UTC()
		notes = append(notes, n)
	}
	if rows.Err() != nil {
		return nil, mapErr(rows.Err())
	}
	return notes, nil
}

func scanAppointment(row pgx.Row) (model.Appointment, error) {
	var appt model.Appointment
	var typ, mode, status string
	err := row.Scan(
		&appt.ID,
		&appt.PractitionerID,
		&appt.ClientID,
		&appt.Date,
		&appt.StartTime,
		&appt.Duration,
		&typ,
		&mode,
		&status,
	)
	if err != nil {
		return model.Appointment{}, mapErr(err)
	}
	appt.Type = model.SessionType(typ)
	appt.Mode = model.MeetingMode(mode)
	appt.Status = model.AppointmentStatus(status)
	return appt, nil
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case db.HasCode(err, db.CodeUndefinedTable):
		return fmt.Errorf("%w: %v", ErrSchemaMissing, err)
	case db.HasCode(err, db.CodeUniqueViolation):
		return fmt.Errorf("%w: %v", ErrDuplicateID, err)
	case db.HasCode(err, db.CodeExclusionViolation):
		return fmt.Errorf("%w: %v", ErrOverlap, err)
	}
	return err
}
