// Package calendar lays out Monday-first month grids for the practice
// calendar.
package calendar

import "time"

// Cell is one position in a month grid. Empty placeholders have Day == 0
// and no Date.
type Cell struct {
	Day  int    `json:"day,omitempty"`
	Date string `json:"date,omitempty"`
}

func (c Cell) Empty() bool { return c.Day == 0 }

// Grid is the layout of a single month. Month is zero-based, matching the
// index MonthGrid was called with after normalization.
type Grid struct {
	Year   int    `json:"year"`
	Month  int    `json:"month"`
	Offset int    `json:"offset"`
	Days   int    `json:"days"`
	Cells  []Cell `json:"cells"`
}

// MonthGrid builds the grid for the zero-based monthIndex of year.
// Out-of-range indices roll over into adjacent years.
func MonthGrid(year, monthIndex int) Grid {
	first := time.Date(year, time.Month(monthIndex+1), 1, 0, 0, 0, 0, time.UTC)
	// Day 0 of the next month is the last day of this one.
	last := time.Date(first.Year(), first.Month()+1, 0, 0, 0, 0, 0, time.UTC)

	offset := (int(first.Weekday()) + 6) % 7
	days := last.Day()

	cells := make([]Cell, offset, offset+days)
	for d := 1; d <= days; d++ {
		cells = append(cells, Cell{
			Day:  d,
			Date: time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
		})
	}

	return Grid{
		Year:   first.Year(),
		Month:  int(first.Month()) - 1,
		Offset: offset,
		Days:   days,
		Cells:  cells,
	}
}

// Shift moves delta months from (year, monthIndex) and returns the
// normalized result.
func Shift(year, monthIndex, delta int) (int, int) {
	t := time.Date(year, time.Month(monthIndex+delta+1), 1, 0, 0, 0, 0, time.UTC)
	return t.Year(), int(t.Month()) - 1
}

// Rows splits the cells into weeks of seven. The final week may be short.
func (g Grid) Rows() [][]Cell {
	var rows [][]Cell
	for i := 0; i < len(g.Cells); i += 7 {
		end := i + 7
		if end > len(g.Cells) {
			end = len(g.Cells)
		}
		rows = append(rows, g.Cells[i:end])
	}
	return rows
}
