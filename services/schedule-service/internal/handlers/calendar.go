package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/md-rashed-zaman/practicedesk/libs/httpx"
	"github.com/md-rashed-zaman/practicedesk/services/schedule-service/internal/availability"
	"github.com/md-rashed-zaman/practicedesk/services/schedule-service/internal/calendar"
)

const (
	defaultWindowStart = "09:00"
	defaultWindowEnd   = "17:00"
	defaultSlotStep    = 15
)

type monthRef struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

type calendarResponse struct {
	calendar.MonthView
	Rows [][]calendar.Cell `json:"rows"`
	Prev monthRef          `json:"prev"`
	Next monthRef          `json:"next"`
}

type slotsResponse struct {
	Date     string   `json:"date"`
	Duration int      `json:"duration"`
	Slots    []string `json:"slots"`
}

func queryInt(r *http.Request, key string, fallback int) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Calendar returns the month grid with appointments. month is zero-based
// and defaults, together with year, to the current month.
func (h *ScheduleHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	pid, ok := practitionerID(w, r)
	if !ok {
		return
	}
	today := h.now()
	year, okY := queryInt(r, "year", today.Year())
	month, okM := queryInt(r, "month", int(today.Month())-1)
	if !okY || !okM {
		httpx.WriteError(w, http.StatusBadRequest, "year and month must be integers")
		return
	}

	grid := calendar.MonthGrid(year, month)
	appts, err := h.repo.ListAppointments(r.Context(), nil, pid, "")
	if err != nil {
		h.writeStoreError(w, r, "list appointments", err)
		return
	}

	py, pm := calendar.Shift(grid.Year, grid.Month, -1)
	ny, nm := calendar.Shift(grid.Year, grid.Month, 1)
	httpx.WriteJSON(w, http.StatusOK, calendarResponse{
		MonthView: calendar.BuildMonthView(grid, appts),
		Rows:      grid.Rows(),
		Prev:      monthRef{Year: py, Month: pm},
		Next:      monthRef{Year: ny, Month: nm},
	})
}

// Slots suggests start times on date where a session would fit.
func (h *ScheduleHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	pid, ok := practitionerID(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	date := strings.TrimSpace(q.Get("date"))
	if _, err := availability.ParseDate(date); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	duration, okD := queryInt(r, "duration", h.admitter.DefaultDuration())
	step, okS := queryInt(r, "step", defaultSlotStep)
	if !okD || !okS || duration <= 0 || step <= 0 {
		httpx.WriteError(w, http.StatusBadRequest, "duration and step must be positive integers")
		return
	}
	windowStart := q.Get("window_start")
	if windowStart == "" {
		windowStart = defaultWindowStart
	}
	windowEnd := q.Get("window_end")
	if windowEnd == "" {
		windowEnd = defaultWindowEnd
	}

	appts, err := h.repo.ListAppointments(r.Context(), nil, pid, date)
	if err != nil {
		h.writeStoreError(w, r, "list appointments", err)
		return
	}
	slots, err := availability.FreeSlots(appts, date, windowStart, windowEnd, duration, step)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if slots == nil {
		slots = []string{}
	}
	httpx.WriteJSON(w, http.StatusOK, slotsResponse{Date: date, Duration: duration, Slots: slots})
}

// Practice returns the practitioner's full snapshot.
func (h *ScheduleHandler) Practice(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	pid, ok := practitionerID(w, r)
	if !ok {
		return
	}
	data, err := h.repo.Load(r.Context(), nil, pid)
	if err != nil {
		h.writeStoreError(w, r, "load practice", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, data)
}

func (h *ScheduleHandler) Audit(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	pid, ok := practitionerID(w, r)
	if !ok {
		return
	}
	limit, okL := queryInt(r, "limit", 50)
	if !okL {
		httpx.WriteError(w, http.StatusBadRequest, "limit must be an integer")
		return
	}
	entries, err := h.auditRepo.ListRecent(r.Context(), pid, limit)
	if err != nil {
		h.writeStoreError(w, r, "list audit", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
