package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/md-rashed-zaman/practicedesk/libs/httpx"
	otelx "github.com/md-rashed-zaman/practicedesk/libs/otel"
	"github.com/md-rashed-zaman/practicedesk/services/schedule-service/internal/admission"
	"github.com/md-rashed-zaman/practicedesk/services/schedule-service/internal/availability"
	"github.com/md-rashed-zaman/practicedesk/services/schedule-service/internal/model"
	"github.com/md-rashed-zaman/practicedesk/services/schedule-service/internal/outbox"
)

var tracer = otelx.Tracer("schedule-service/handlers")

type rejectionBody struct {
	Error    string             `json:"error"`
	Kind     admission.Kind     `json:"kind"`
	Fields   []string           `json:"fields,omitempty"`
	Conflict *model.Appointment `json:"conflict,omitempty"`
}

type statusRequest struct {
	AppointmentID string                  `json:"appointment_id"`
	Status        model.AppointmentStatus `json:"status"`
}

func rejectionStatus(kind admission.Kind) int {
	switch kind {
	case admission.KindSchedulingConflict:
		return http.StatusConflict
	case admission.KindInvalidDuration, admission.KindInvalidField:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func writeRejection(w http.ResponseWriter, rej *admission.Rejection, data model.PracticeData) {
	httpx.WriteJSON(w, rejectionStatus(rej.Kind), rejectionBody{
		Error:    rej.Message(data.ClientName),
		Kind:     rej.Kind,
		Fields:   rej.Fields,
		Conflict: rej.Conflict,
	})
}

// prevalidate rejects drafts that fail before the conflict check, so they
// never open a transaction or take the practitioner lock.
func (h *ScheduleHandler) prevalidate(w http.ResponseWriter, draft model.Draft, pid string) bool {
	_, err := h.admitter.Validate(draft, pid)
	if err == nil {
		return true
	}
	var rej *admission.Rejection
	if errors.As(err, &rej) {
		writeRejection(w, rej, model.PracticeData{})
		return false
	}
	httpx.WriteError(w, http.StatusBadRequest, err.Error())
	return false
}

// Appointments serves GET (list) and POST (create) on the collection.
func (h *ScheduleHandler) Appointments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.List(w, r)
	case http.MethodPost:
		h.Create(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
	pid, ok := practitionerID(w, r)
	if !ok {
		return
	}
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date != "" {
		if _, err := availability.ParseDate(date); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
	}
	appts, err := h.repo.ListAppointments(r.Context(), nil, pid, date)
	if err != nil {
		h.writeStoreError(w, r, "list appointments", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"appointments": appts})
}

// Create admits a draft and persists it. The practitioner lock is held from
// the snapshot read until commit, so two concurrent drafts for one
// practitioner are checked one after the other.
func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	pid, ok := practitionerID(w, r)
	if !ok {
		return
	}
	var draft model.Draft
	if err := httpx.DecodeJSON(r, &draft); err != nil {
		writeDecodeError(w, err)
		return
	}
	if !h.prevalidate(w, draft, pid) {
		return
	}

	ctx, span := tracer.Start(r.Context(), "appointment.admit")
	defer span.End()
	span.SetAttributes(attribute.String("practitioner.id", pid), attribute.String("appointment.date", draft.Date))

	tx, err := h.repo.Begin(ctx)
	if err != nil {
		h.writeStoreError(w, r, "begin", err)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := h.repo.LockPractitioner(ctx, tx, pid); err != nil {
		h.writeStoreError(w, r, "lock practitioner", err)
		return
	}
	data, err := h.repo.Load(ctx, tx, pid)
	if err != nil {
		h.writeStoreError(w, r, "load practice", err)
		return
	}

	appt, err := h.admitter.Propose(draft, data.Appointments, pid)
	if err != nil {
		var rej *admission.Rejection
		if errors.As(err, &rej) {
			span.SetAttributes(attribute.String("admission.rejection", string(rej.Kind)))
			writeRejection(w, rej, data)
			return
		}
		span.SetStatus(codes.Error, err.Error())
		h.writeStoreError(w, r, "admit", err)
		return
	}

	if err := h.repo.UpsertAppointment(ctx, tx, appt); err != nil {
		h.writeStoreError(w, r, "persist appointment", err)
		return
	}
	if err := h.recordChange(ctx, tx, appt, "", admission.ActionScheduled, admission.AuditDetails(appt), outbox.EventAppointmentScheduled); err != nil {
		h.writeStoreError(w, r, "record appointment", err)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		h.writeStoreError(w, r, "commit", err)
		return
	}

	h.logger.Info("appointment scheduled",
		"practitioner_id", pid,
		"appointment_id", appt.ID,
		"date", appt.Date,
		"start_time", appt.StartTime,
		"request_id", httpx.RequestIDFromContext(r.Context()),
	)
	httpx.WriteJSON(w, http.StatusCreated, appt)
}

// Check runs admission against the stored schedule without writing.
func (h *ScheduleHandler) Check(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	pid, ok := practitionerID(w, r)
	if !ok {
		return
	}
	var draft model.Draft
	if err := httpx.DecodeJSON(r, &draft); err != nil {
		writeDecodeError(w, err)
		return
	}
	if !h.prevalidate(w, draft, pid) {
		return
	}

	data, err := h.repo.Load(r.Context(), nil, pid)
	if err != nil {
		h.writeStoreError(w, r, "load practice", err)
		return
	}
	if _, err := h.admitter.Propose(draft, data.Appointments, pid); err != nil {
		var rej *admission.Rejection
		if errors.As(err, &rej) {
			writeRejection(w, rej, data)
			return
		}
		h.writeStoreError(w, r, "check", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// UpdateStatus moves a Scheduled appointment to a terminal status.
// Cancelling keeps the row; only its status changes.
func (h *ScheduleHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	pid, ok := practitionerID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	if req.AppointmentID == "" || !req.Status.Valid() {
		httpx.WriteError(w, http.StatusBadRequest, "appointment_id and a valid status are required")
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		h.writeStoreError(w, r, "begin", err)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := h.repo.LockPractitioner(ctx, tx, pid); err != nil {
		h.writeStoreError(w, r, "lock practitioner", err)
		return
	}
	appt, err := h.repo.GetAppointmentForUpdate(ctx, tx, pid, req.AppointmentID)
	if err != nil {
		h.writeStoreError(w, r, "load appointment", err)
		return
	}
	if !model.CanTransition(appt.Status, req.Status) {
		httpx.WriteError(w, http.StatusConflict, "cannot change status from "+string(appt.Status)+" to "+string(req.Status))
		return
	}

	previous := appt.Status
	appt.Status = req.Status
	if err := h.repo.UpdateStatus(ctx, tx, pid, appt.ID, appt.Status); err != nil {
		h.writeStoreError(w, r, "update status", err)
		return
	}
	if err := h.recordChange(ctx, tx, appt, previous, admission.ActionStatusChanged, admission.StatusAuditDetails(appt, previous), outbox.EventAppointmentStatusChanged); err != nil {
		h.writeStoreError(w, r, "record status change", err)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		h.writeStoreError(w, r, "commit", err)
		return
	}

	h.logger.Info("appointment status changed",
		"practitioner_id", pid,
		"appointment_id", appt.ID,
		"from", previous,
		"to", appt.Status,
	)
	httpx.WriteJSON(w, http.StatusOK, appt)
}

func (h *ScheduleHandler) recordChange(ctx context.Context, tx pgx.Tx, appt model.Appointment, previous model.AppointmentStatus, action, details, eventType string) error {
	if err := h.auditRepo.Record(ctx, tx, appt.PractitionerID, action, details); err != nil {
		return err
	}
	evt, err := outbox.AppointmentEvent(eventType, appt, previous, h.now())
	if err != nil {
		return err
	}
	_, err = h.outboxRepo.Insert(ctx, tx, evt)
	return err
}
