package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/refurb/internal/models"
	"github.com/tgienger/refurb/internal/projection"
	"github.com/tgienger/refurb/internal/ui/styles"
)

// CalendarView shows one month of due tasks as a grid and an agenda
type CalendarView struct {
	env   *Env
	state *projection.State
	month string
	view  *projection.MonthView
	tasks []projection.TaskRow // agenda order, flattened from view.Days
	list  cursorList
	now   func() time.Time

	width  int
	height int
}

// NewCalendarView opens on month, or on the current month when month is
// empty or not YYYY-MM
func NewCalendarView(env *Env, month string) *CalendarView {
	v := &CalendarView{env: env, state: &projection.State{}, now: time.Now}
	if _, err := time.Parse(projection.MonthLayout, month); err != nil {
		month = projection.CurrentMonth(v.now())
	}
	v.month = month
	v.refresh()
	return v
}

// Month returns the month on screen as YYYY-MM
func (v *CalendarView) Month() string {
	return v.month
}

func (v *CalendarView) SetState(s *projection.State) {
	v.state = s
	v.refresh()
}

func (v *CalendarView) refresh() {
	mv, err := projection.Month(v.state, v.month)
	if err != nil {
		// month is validated on every assignment
		v.env.Log.Error("calendar month", "month", v.month, "error", err)
		return
	}
	v.view = mv
	v.tasks = v.tasks[:0]
	for _, d := range mv.Days {
		v.tasks = append(v.tasks, d.Tasks...)
	}
	v.list.fit(len(v.tasks), v.agendaRows())
}

func (v *CalendarView) shift(delta int) {
	next, err := projection.ShiftMonth(v.month, delta)
	if err != nil {
		return
	}
	v.month = next
	v.list = cursorList{}
	v.refresh()
}

func (v *CalendarView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.list.ensureVisible(v.agendaRows())
}

// agendaRows is what is left under the month grid
func (v *CalendarView) agendaRows() int {
	return max(1, v.height-12)
}

func (v *CalendarView) Capturing() bool {
	return false
}

func (v *CalendarView) Bindings() []key.Binding {
	k := v.env.Keys
	return []key.Binding{k.Left, k.Right, k.Today, k.Up, k.Down, k.Advance, k.Quit}
}

func (v *CalendarView) Update(msg tea.KeyMsg) tea.Cmd {
	k := v.env.Keys
	switch {
	case key.Matches(msg, k.Left):
		v.shift(-1)
	case key.Matches(msg, k.Right):
		v.shift(1)
	case key.Matches(msg, k.Today):
		v.month = projection.CurrentMonth(v.now())
		v.list = cursorList{}
		v.refresh()
	case key.Matches(msg, k.Up):
		v.list.move(-1, len(v.tasks), v.agendaRows())
	case key.Matches(msg, k.Down):
		v.list.move(1, len(v.tasks), v.agendaRows())
	case key.Matches(msg, k.Advance):
		if len(v.tasks) == 0 {
			return nil
		}
		id := v.tasks[v.list.cursor].ID
		return v.env.mutate("task status advanced", func(ctx context.Context) error {
			t, err := v.env.Store.GetTask(ctx, id)
			if err != nil {
				return err
			}
			return v.env.Store.ReplaceTask(ctx, projection.AdvanceTask(t))
		})
	}
	return nil
}

func (v *CalendarView) View() string {
	s := v.env.Styles
	width := styles.ContentWidth(v.width)
	if v.view == nil {
		return ""
	}

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		s.TitleMuted.Render("‹ "),
		s.Title.Render(v.view.Start.Format("January 2006")),
		s.TitleMuted.Render(" ›"),
	)

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	b.WriteString(v.grid())
	b.WriteString("\n")

	if v.view.Empty() {
		b.WriteString(s.TitleMuted.Render("  Nothing due this month."))
		return b.String()
	}

	start, end := v.list.window(len(v.tasks), v.agendaRows())
	for i := start; i < end; i++ {
		r := v.tasks[i]
		style := s.ListItem
		if i == v.list.cursor {
			style = s.ListSelected
		}
		line := fmt.Sprintf("%s %s %s  %s",
			s.TitleMuted.Render(r.Due[8:]),
			pill(s, string(r.Status), styles.TaskStatusColor(r.Status)),
			truncate(r.Title, 36),
			s.TitleMuted.Render(r.ProjectTitle),
		)
		b.WriteString(style.Width(width - 2).Render(truncate(line, width-2)))
		b.WriteString("\n")
	}
	return b.String()
}

// grid renders a Monday-first month with busy days highlighted
func (v *CalendarView) grid() string {
	s := v.env.Styles
	busy := make(map[int]int, len(v.view.Days))
	for _, d := range v.view.Days {
		day, err := time.Parse(models.DateLayout, d.Day)
		if err == nil {
			busy[day.Day()] = len(d.Tasks)
		}
	}
	today := v.now().Format(models.DateLayout)

	cell := lipgloss.NewStyle().Width(5).Align(lipgloss.Right)
	var rows []string
	rows = append(rows, s.TitleMuted.Render(
		cell.Render("Mo")+cell.Render("Tu")+cell.Render("We")+cell.Render("Th")+
			cell.Render("Fr")+cell.Render("Sa")+cell.Render("Su")))

	lead := (int(v.view.Start.Weekday()) + 6) % 7
	var line strings.Builder
	for i := 0; i < lead; i++ {
		line.WriteString(cell.Render(""))
	}
	col := lead
	for d := v.view.Start; d.Before(v.view.End); d = d.AddDate(0, 0, 1) {
		label := fmt.Sprintf("%d", d.Day())
		st := cell.Foreground(styles.Current.ForegroundDim)
		if n := busy[d.Day()]; n > 0 {
			label = fmt.Sprintf("%d·%d", d.Day(), n)
			st = cell.Foreground(styles.Current.Primary).Bold(true)
		}
		if d.Format(models.DateLayout) == today {
			st = st.Underline(true)
		}
		line.WriteString(st.Render(label))
		col++
		if col == 7 {
			rows = append(rows, line.String())
			line.Reset()
			col = 0
		}
	}
	if col > 0 {
		rows = append(rows, line.String())
	}
	return strings.Join(rows, "\n")
}
