package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/whatsapp-booking-assistant/internal/bookings"
	"github.com/wolfman30/whatsapp-booking-assistant/internal/messaging"
	"github.com/wolfman30/whatsapp-booking-assistant/pkg/logging"
)

type stubAppointmentLister struct {
	limit int
	appts []bookings.Appointment
	err   error
}

func (s *stubAppointmentLister) ListRecent(_ context.Context, limit int) ([]bookings.Appointment, error) {
	s.limit = limit
	return s.appts, s.err
}

type stubConversationLister struct {
	limit   int
	records []messaging.ConversationRecord
	err     error
}

func (s *stubConversationLister) ListRecentConversations(_ context.Context, limit int) ([]messaging.ConversationRecord, error) {
	s.limit = limit
	return s.records, s.err
}

func TestListAppointments(t *testing.T) {
	at := time.Date(2026, time.October, 20, 15, 0, 0, 0, time.UTC)
	lister := &stubAppointmentLister{appts: []bookings.Appointment{{
		ID: uuid.New(), PersonName: "Jane Doe", PhoneNumber: "9876543210", AppointmentTime: at, SourceChannel: "whatsapp", CreatedAt: at,
	}}}
	h := NewAdminRecordsHandler(lister, &stubConversationLister{}, 50, logging.New("error"))

	rec := httptest.NewRecorder()
	h.ListAppointments(rec, httptest.NewRequest(http.MethodGet, "/admin/appointments?limit=5", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, lister.limit)
	var body struct {
		Appointments []bookings.Appointment `json:"appointments"`
		Limit        int                    `json:"limit"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Appointments, 1)
	assert.Equal(t, "Jane Doe", body.Appointments[0].PersonName)
	assert.Equal(t, 5, body.Limit)
}

func TestListLimitBounds(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", defaultListLimit},
		{"?limit=abc", defaultListLimit},
		{"?limit=0", defaultListLimit},
		{"?limit=7", 7},
		{"?limit=5000", 50},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			lister := &stubConversationLister{}
			h := NewAdminRecordsHandler(nil, lister, 50, logging.New("error"))
			rec := httptest.NewRecorder()
			h.ListConversations(rec, httptest.NewRequest(http.MethodGet, "/admin/conversations"+tt.query, nil))
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, lister.limit)
			assert.JSONEq(t, `{"conversations":[],"limit":`+strconv.Itoa(tt.want)+`}`, rec.Body.String())
		})
	}
}

func TestListErrors(t *testing.T) {
	h := NewAdminRecordsHandler(&stubAppointmentLister{err: errors.New("db down")}, &stubConversationLister{err: errors.New("db down")}, 0, logging.New("error"))

	rec := httptest.NewRecorder()
	h.ListAppointments(rec, httptest.NewRequest(http.MethodGet, "/admin/appointments", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = httptest.NewRecorder()
	h.ListConversations(rec, httptest.NewRequest(http.MethodGet, "/admin/conversations", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	h = NewAdminRecordsHandler(nil, nil, 0, nil)
	rec = httptest.NewRecorder()
	h.ListAppointments(rec, httptest.NewRequest(http.MethodGet, "/admin/appointments", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
