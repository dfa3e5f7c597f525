package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/wolfman30/whatsapp-booking-assistant/internal/bookings"
	"github.com/wolfman30/whatsapp-booking-assistant/internal/messaging"
	"github.com/wolfman30/whatsapp-booking-assistant/pkg/logging"
)

const defaultListLimit = 20

type appointmentLister interface {
	ListRecent(ctx context.Context, limit int) ([]bookings.Appointment, error)
}

type conversationLister interface {
	ListRecentConversations(ctx context.Context, limit int) ([]messaging.ConversationRecord, error)
}

// AdminRecordsHandler exposes read-only views of booked appointments and the conversation log.
type AdminRecordsHandler struct {
	appointments  appointmentLister
	conversations conversationLister
	maxLimit      int
	logger        *logging.Logger
}

// NewAdminRecordsHandler creates a new admin records handler.
func NewAdminRecordsHandler(appointments appointmentLister, conversations conversationLister, maxLimit int, logger *logging.Logger) *AdminRecordsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	if maxLimit <= 0 {
		maxLimit = 100
	}
	return &AdminRecordsHandler{
		appointments:  appointments,
		conversations: conversations,
		maxLimit:      maxLimit,
		logger:        logger,
	}
}

// ListAppointments handles GET /admin/appointments?limit=N.
func (h *AdminRecordsHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	if h.appointments == nil {
		http.Error(w, "appointments store not configured", http.StatusServiceUnavailable)
		return
	}
	limit := h.parseLimit(r)
	appts, err := h.appointments.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if appts == nil {
		appts = []bookings.Appointment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"appointments": appts,
		"limit":        limit,
	})
}

// ListConversations handles GET /admin/conversations?limit=N.
func (h *AdminRecordsHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	if h.conversations == nil {
		http.Error(w, "conversation store not configured", http.StatusServiceUnavailable)
		return
	}
	limit := h.parseLimit(r)
	records, err := h.conversations.ListRecentConversations(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list conversations", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []messaging.ConversationRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"conversations": records,
		"limit":         limit,
	})
}

func (h *AdminRecordsHandler) parseLimit(r *http.Request) int {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		return defaultListLimit
	}
	if limit > h.maxLimit {
		return h.maxLimit
	}
	return limit
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
