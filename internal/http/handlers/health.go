package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wolfman30/whatsapp-booking-assistant/pkg/logging"
)

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// HealthHandler serves liveness and database probes.
type HealthHandler struct {
	db      rowQuerier
	timeout time.Duration
	logger  *logging.Logger
}

func NewHealthHandler(db rowQuerier, logger *logging.Logger) *HealthHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &HealthHandler{db: db, timeout: 3 * time.Second, logger: logger}
}

// Root handles GET /.
func (h *HealthHandler) Root(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("WhatsApp booking assistant is running"))
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Database handles GET /health/db by asking Postgres for its clock.
func (h *HealthHandler) Database(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "error": "database not configured"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var now time.Time
	if err := h.db.QueryRow(ctx, "SELECT NOW()").Scan(&now); err != nil {
		h.logger.Error("database health check failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "error": "database unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"db_time": now.UTC().Format(time.RFC3339),
	})
}
