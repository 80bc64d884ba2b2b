package projection

import (
	"fmt"
	"time"

	"github.com/tgienger/refurb/internal/models"
)

// MonthLayout is the year-month format accepted by Month
const MonthLayout = "2006-01"

// DayBucket holds the tasks due on one calendar day
type DayBucket struct {
	Day   string    `json:"day"` // YYYY-MM-DD
	Tasks []TaskRow `json:"tasks"`
}

// MonthView is the calendar for one month
type MonthView struct {
	Month string      `json:"month"`
	Start time.Time   `json:"start"` // first day of the month
	End   time.Time   `json:"end"`   // first day of the next month
	Days  []DayBucket `json:"days"`
}

// Empty reports whether no task is due in the month
func (m *MonthView) Empty() bool {
	return len(m.Days) == 0
}

// CurrentMonth returns now formatted as YYYY-MM
func CurrentMonth(now time.Time) string {
	return now.Format(MonthLayout)
}

// ShiftMonth moves a YYYY-MM string by delta months
func ShiftMonth(month string, delta int) (string, error) {
	start, err := time.Parse(MonthLayout, month)
	if err != nil {
		return "", fmt.Errorf("parse month %q: %w", month, err)
	}
	return start.AddDate(0, delta, 0).Format(MonthLayout), nil
}

// Month returns the tasks due in [first of month, first of next month),
// sorted by due date and grouped per day. Tasks whose due date is missing
// or unparseable never appear.
func Month(s *State, month string) (*MonthView, error) {
	start, err := time.Parse(MonthLayout, month)
	if err != nil {
		return nil, fmt.Errorf("parse month %q: %w", month, err)
	}
	end := start.AddDate(0, 1, 0)

	var rows []TaskRow
	for _, t := range s.Tasks {
		if t.Due == "" {
			continue
		}
		due, err := time.Parse(models.DateLayout, t.Due)
		if err != nil {
			continue
		}
		if due.Before(start) || !due.Before(end) {
			continue
		}
		rows = append(rows, TaskRow{Task: t, ProjectTitle: s.ProjectTitle(t.ProjectID)})
	}
	sortByDue(rows)

	view := &MonthView{Month: start.Format(MonthLayout), Start: start, End: end}
	for _, r := range rows {
		if n := len(view.Days); n == 0 || view.Days[n-1].Day != r.Due {
			view.Days = append(view.Days, DayBucket{Day: r.Due})
		}
		last := &view.Days[len(view.Days)-1]
		last.Tasks = append(last.Tasks, r)
	}
	return view, nil
}
