package calendar

import (
	"sort"

	"github.com/md-rashed-zaman/practicedesk/services/schedule-service/internal/availability"
	"github.com/md-rashed-zaman/practicedesk/services/schedule-service/internal/model"
)

type Day struct {
	Cell         Cell                `json:"cell"`
	Appointments []model.Appointment `json:"appointments"`
}

// MonthView pairs a grid with the appointments that fall on each real day.
type MonthView struct {
	Grid Grid  `json:"grid"`
	Days []Day `json:"days"`
}

// BuildMonthView attaches the non-cancelled appointments for each day in
// grid, ordered by start time. Appointments with the same start keep their
// input order. Appointments whose start time cannot be parsed sort last.
func BuildMonthView(grid Grid, appointments []model.Appointment) MonthView {
	byDate := make(map[string][]model.Appointment)
	for _, a := range appointments {
		if !a.Status.OccupiesSlot() {
			continue
		}
		byDate[a.Date] = append(byDate[a.Date], a)
	}

	view := MonthView{Grid: grid, Days: make([]Day, 0, grid.Days)}
	for _, c := range grid.Cells {
		if c.Empty() {
			continue
		}
		list := byDate[c.Date]
		sort.SliceStable(list, func(i, j int) bool {
			return startKey(list[i]) < startKey(list[j])
		})
		if list == nil {
			list = []model.Appointment{}
		}
		view.Days = append(view.Days, Day{Cell: c, Appointments: list})
	}
	return view
}

func startKey(a model.Appointment) int {
	m, err := availability.TimeToMinutes(a.StartTime)
	if err != nil {
		return availability.MinutesPerDay
	}
	return m
}
