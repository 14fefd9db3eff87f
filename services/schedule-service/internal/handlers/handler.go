package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/md-rashed-zaman/practicedesk/libs/auth"
	"github.com/md-rashed-zaman/practicedesk/libs/httpx"
	"github.com/md-rashed-zaman/practicedesk/services/schedule-service/internal/admission"
	"github.com/md-rashed-zaman/practicedesk/services/schedule-service/internal/audit"
	"github.com/md-rashed-zaman/practicedesk/services/schedule-service/internal/outbox"
	"github.com/md-rashed-zaman/practicedesk/services/schedule-service/internal/storage"
)

type ScheduleHandler struct {
	repo       *storage.PracticeRepository
	auditRepo  *audit.Repository
	outboxRepo *outbox.Repository
	admitter   *admission.Admitter
	logger     *slog.Logger
	now        func() time.Time
}

func NewScheduleHandler(repo *storage.PracticeRepository, auditRepo *audit.Repository, outboxRepo *outbox.Repository, admitter *admission.Admitter, logger *slog.Logger) *ScheduleHandler {
	if admitter == nil {
		admitter = admission.New()
	}
	return &ScheduleHandler{
		repo:       repo,
		auditRepo:  auditRepo,
		outboxRepo: outboxRepo,
		admitter:   admitter,
		logger:     logger,
		now:        time.Now,
	}
}

// Register mounts every route on mux. wrap is applied to each handler and is
// where practitioner authentication goes.
func (h *ScheduleHandler) Register(mux *http.ServeMux, wrap func(http.Handler) http.Handler) {
	if wrap == nil {
		wrap = func(next http.Handler) http.Handler { return next }
	}
	mux.Handle("/api/v1/appointments", wrap(http.HandlerFunc(h.Appointments)))
	mux.Handle("/api/v1/appointments/check", wrap(http.HandlerFunc(h.Check)))
	mux.Handle("/api/v1/appointments/status", wrap(http.HandlerFunc(h.UpdateStatus)))
	mux.Handle("/api/v1/calendar", wrap(http.HandlerFunc(h.Calendar)))
	mux.Handle("/api/v1/slots", wrap(http.HandlerFunc(h.Slots)))
	mux.Handle("/api/v1/practice", wrap(http.HandlerFunc(h.Practice)))
	mux.Handle("/api/v1/audit", wrap(http.HandlerFunc(h.Audit)))
}

func practitionerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := auth.PractitionerFromContext(r.Context())
	if id == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return "", false
	}
	return id, true
}

func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

// writeDecodeError answers 413 when the body limit cut the request off and
// 400 for any other decode failure.
func writeDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		httpx.WriteError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	httpx.WriteError(w, http.StatusBadRequest, "invalid json body")
}

// writeStoreError maps repository failures onto responses. Anything it does
// not recognise is logged and reported as a 500.
func (h *ScheduleHandler) writeStoreError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "appointment not found")
	case errors.Is(err, storage.ErrOverlap):
		httpx.WriteJSON(w, http.StatusConflict, rejectionBody{
			Error: "Conflict detected: the slot was taken by another session.",
			Kind:  admission.KindSchedulingConflict,
		})
	case errors.Is(err, storage.ErrDuplicateID):
		httpx.WriteError(w, http.StatusConflict, "appointment id already in use")
	case errors.Is(err, storage.ErrSchemaMissing):
		h.logger.Error(op+" failed: database schema missing", "err", err, "request_id", httpx.RequestIDFromContext(r.Context()))
		httpx.WriteError(w, http.StatusServiceUnavailable, "database schema not migrated")
	default:
		h.logger.Error(op+" failed", "err", err, "request_id", httpx.RequestIDFromContext(r.Context()))
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
