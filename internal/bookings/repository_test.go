package bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/whatsapp-booking-assistant/internal/conversation"
)

var (
	apptTime = time.Date(2026, time.October, 20, 15, 0, 0, 0, time.UTC)
	created  = time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)
)

func newMockRepository(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	repo := NewRepository(mock)
	repo.now = func() time.Time { return created }
	return repo, mock
}

func TestInsertAppointment(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectExec("INSERT INTO appointments").
		WithArgs(pgxmock.AnyArg(), "Jane Doe", "9876543210", toPGTime(apptTime), "whatsapp", toPGTime(created)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	id, err := repo.InsertAppointment(context.Background(), conversation.AppointmentRecord{
		PersonName:      "Jane Doe",
		PhoneNumber:     "9876543210",
		AppointmentTime: apptTime,
		SourceChannel:   "whatsapp",
	})

	require.NoError(t, err)
	_, parseErr := uuid.Parse(id)
	assert.NoError(t, parseErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertAppointmentRejectsIncomplete(t *testing.T) {
	repo, mock := newMockRepository(t)
	tests := []struct {
		name string
		rec  conversation.AppointmentRecord
	}{
		{"no name", conversation.AppointmentRecord{PhoneNumber: "9876543210", AppointmentTime: apptTime, SourceChannel: "whatsapp"}},
		{"no phone", conversation.AppointmentRecord{PersonName: "Jane Doe", AppointmentTime: apptTime, SourceChannel: "whatsapp"}},
		{"no time", conversation.AppointmentRecord{PersonName: "Jane Doe", PhoneNumber: "9876543210", SourceChannel: "whatsapp"}},
		{"no channel", conversation.AppointmentRecord{PersonName: "Jane Doe", PhoneNumber: "9876543210", AppointmentTime: apptTime}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.InsertAppointment(context.Background(), tt.rec)
			assert.ErrorIs(t, err, ErrIncompleteAppointment)
		})
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertAppointmentDatabaseError(t *testing.T) {
	repo, mock := newMockRepository(t)
	dbErr := errors.New("unique violation")
	mock.ExpectExec("INSERT INTO appointments").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(dbErr)

	_, err := repo.InsertAppointment(context.Background(), conversation.AppointmentRecord{
		PersonName: "Jane Doe", PhoneNumber: "9876543210", AppointmentTime: apptTime, SourceChannel: "whatsapp",
	})
	assert.ErrorIs(t, err, dbErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecent(t *testing.T) {
	repo, mock := newMockRepository(t)
	id := uuid.New()
	mock.ExpectQuery("SELECT id, person_name, phone_number, appointment_time, source_channel, created_at").
		WithArgs(10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "person_name", "phone_number", "appointment_time", "source_channel", "created_at"}).
			AddRow(toPGUUID(id), "Jane Doe", "9876543210", toPGTime(apptTime), "whatsapp", toPGTime(created)))

	appts, err := repo.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, appts, 1)
	assert.Equal(t, Appointment{
		ID:              id,
		PersonName:      "Jane Doe",
		PhoneNumber:     "9876543210",
		AppointmentTime: apptTime,
		SourceChannel:   "whatsapp",
		CreatedAt:       created,
	}, appts[0])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecentQueryError(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectQuery("FROM appointments").WithArgs(20).WillReturnError(errors.New("timeout"))

	_, err := repo.ListRecent(context.Background(), -1)
	assert.Error(t, err)
}

func TestToPGUUID(t *testing.T) {
	assert.Equal(t, pgtype.UUID{}, toPGUUID(uuid.Nil))
	id := uuid.New()
	assert.Equal(t, pgtype.UUID{Bytes: [16]byte(id), Valid: true}, toPGUUID(id))
}
