package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/whatsapp-booking-assistant/internal/conversation"
)

var bookingsTracer = otel.Tracer("booking.internal.bookings")

// ErrIncompleteAppointment rejects records missing a required field.
var ErrIncompleteAppointment = errors.New("bookings: appointment record is incomplete")

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Appointment is a stored appointment row.
type Appointment struct {
	ID              uuid.UUID `json:"id"`
	PersonName      string    `json:"person_name"`
	PhoneNumber     string    `json:"phone_number"`
	AppointmentTime time.Time `json:"appointment_time"`
	SourceChannel   string    `json:"source_channel"`
	CreatedAt       time.Time `json:"created_at"`
}

// Repository provides persistence helpers for appointments.
type Repository struct {
	db  querier
	now func() time.Time
}

// NewRepository creates a repository backed by a pgx pool or transaction.
func NewRepository(db querier) *Repository {
	if db == nil {
		panic("bookings: pgx pool required")
	}
	return &Repository{db: db, now: time.Now}
}

// InsertAppointment stores a booked appointment and returns its id.
func (r *Repository) InsertAppointment(ctx context.Context, rec conversation.AppointmentRecord) (string, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.insert_appointment")
	defer span.End()

	if err := validate(rec); err != nil {
		span.RecordError(err)
		return "", err
	}
	id := uuid.New()
	span.SetAttributes(
		attribute.String("booking.appointment_id", id.String()),
		attribute.String("booking.source_channel", rec.SourceChannel),
	)

	query := `
		INSERT INTO appointments (id, person_name, phone_number, appointment_time, source_channel, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		toPGUUID(id),
		rec.PersonName,
		rec.PhoneNumber,
		toPGTime(rec.AppointmentTime.UTC()),
		rec.SourceChannel,
		toPGTime(r.now().UTC()),
	)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("bookings: insert appointment: %w", err)
	}
	return id.String(), nil
}

// ListRecent returns the most recently created appointments first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]Appointment, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, person_name, phone_number, appointment_time, source_channel, created_at
		FROM appointments
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("bookings: list appointments: %w", err)
	}
	defer rows.Close()

	var out []Appointment
	for rows.Next() {
		var (
			id        pgtype.UUID
			appt      Appointment
			at        pgtype.Timestamptz
			createdAt pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &appt.PersonName, &appt.PhoneNumber, &at, &appt.SourceChannel, &createdAt); err != nil {
			return nil, fmt.Errorf("bookings: scan appointment: %w", err)
		}
		appt.ID = uuid.UUID(id.Bytes)
		appt.AppointmentTime = at.Time.UTC()
		appt.CreatedAt = createdAt.Time.UTC()
		out = append(out, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bookings: iterate appointments: %w", err)
	}
	return out, nil
}

func validate(rec conversation.AppointmentRecord) error {
	var missing []string
	if strings.TrimSpace(rec.PersonName) == "" {
		missing = append(missing, "person_name")
	}
	if strings.TrimSpace(rec.PhoneNumber) == "" {
		missing = append(missing, "phone_number")
	}
	if rec.AppointmentTime.IsZero() {
		missing = append(missing, "appointment_time")
	}
	if strings.TrimSpace(rec.SourceChannel) == "" {
		missing = append(missing, "source_channel")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompleteAppointment, strings.Join(missing, ", "))
	}
	return nil
}

func toPGUUID(id uuid.UUID) pgtype.UUID {
	if id == uuid.Nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{
		Bytes: [16]byte(id),
		Valid: true,
	}
}

func toPGTime(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{
		Time:  t,
		Valid: true,
	}
}
