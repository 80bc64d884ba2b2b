package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/refurb/internal/db"
	"github.com/tgienger/refurb/internal/models"
	"github.com/tgienger/refurb/internal/projection"
	"github.com/tgienger/refurb/internal/ui/styles"
)

// TasksView lists tasks in due order
type TasksView struct {
	env     *Env
	state   *projection.State
	filters filterBar[models.TaskStatus]
	rows    []projection.TaskRow
	list    cursorList

	form      *form
	editingID string
	confirm   confirm

	width  int
	height int
}

func NewTasksView(env *Env) *TasksView {
	return &TasksView{
		env:     env,
		state:   &projection.State{},
		filters: newFilterBar(models.TaskStatuses, "Search tasks..."),
	}
}

func (v *TasksView) SetState(s *projection.State) {
	v.state = s
	v.refresh()
}

// FilterProject shows only tasks of one project
func (v *TasksView) FilterProject(id string) {
	v.filters.projectID = id
	v.refresh()
}

func (v *TasksView) refresh() {
	v.rows = projection.Tasks(v.state, projection.TaskFilter{
		ProjectID: v.filters.projectID,
		Status:    v.filters.status,
		Query:     v.filters.query(),
	})
	v.list.fit(len(v.rows), v.visibleRows())
}

func (v *TasksView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.list.ensureVisible(v.visibleRows())
}

func (v *TasksView) visibleRows() int {
	return max(1, v.height-5)
}

func (v *TasksView) Capturing() bool {
	return v.form != nil || v.confirm.active || v.filters.searching
}

func (v *TasksView) Bindings() []key.Binding {
	k := v.env.Keys
	return []key.Binding{k.Search, k.Project, k.Status, k.New, k.Edit, k.Advance, k.Delete, k.Quit}
}

func (v *TasksView) selected() (projection.TaskRow, bool) {
	if len(v.rows) == 0 {
		return projection.TaskRow{}, false
	}
	return v.rows[v.list.cursor], true
}

func (v *TasksView) Update(msg tea.KeyMsg) tea.Cmd {
	if v.confirm.active {
		return v.confirm.update(msg)
	}
	if v.form != nil {
		return v.updateForm(msg)
	}

	projects := projection.ProjectOptions(v.state.Projects, projection.All)
	if used, cmd := v.filters.update(msg, v.env.Keys, projects); used {
		v.refresh()
		return cmd
	}

	k := v.env.Keys
	switch {
	case key.Matches(msg, k.Up):
		v.list.move(-1, len(v.rows), v.visibleRows())
	case key.Matches(msg, k.Down):
		v.list.move(1, len(v.rows), v.visibleRows())
	case key.Matches(msg, k.New):
		t := models.NewTask("")
		t.ProjectID = v.filters.projectID
		return v.openForm(t, "")
	case key.Matches(msg, k.Edit), key.Matches(msg, k.Enter):
		if r, ok := v.selected(); ok {
			return v.openForm(r.Task, r.ID)
		}
	case key.Matches(msg, k.Advance):
		if r, ok := v.selected(); ok {
			id := r.ID
			return v.env.mutate("task status advanced", func(ctx context.Context) error {
				t, err := v.env.Store.GetTask(ctx, id)
				if err != nil {
					return err
				}
				return v.env.Store.ReplaceTask(ctx, projection.AdvanceTask(t))
			})
		}
	case key.Matches(msg, k.Delete):
		if r, ok := v.selected(); ok {
			id := r.ID
			v.confirm.ask(
				"Delete task?",
				fmt.Sprintf("%q will be removed permanently.", r.Title),
				v.env.mutate("task deleted", func(ctx context.Context) error {
					return v.env.Store.Remove(ctx, db.Tasks, id)
				}),
			)
		}
	}
	return nil
}

func (v *TasksView) openForm(t models.Task, id string) tea.Cmd {
	title := "New Task"
	if id != "" {
		title = "Edit Task"
	}
	v.editingID = id
	v.form = newForm(title, v.env.Keys).
		text("title", "Title", t.Title, "Strip frame").
		choice("project", "Project", projection.ProjectOptions(v.state.Projects, projection.Unassigned), t.ProjectID).
		text("due", "Due", t.Due, "YYYY-MM-DD").
		choice("priority", "Priority", enumOptions(models.Priorities), string(t.Priority)).
		choice("status", "Status", enumOptions(models.TaskStatuses), string(t.Status)).
		text("notes", "Notes", t.Notes, "")
	return v.form.start()
}

func (v *TasksView) updateForm(msg tea.KeyMsg) tea.Cmd {
	res, cmd := v.form.update(msg)
	switch res {
	case formCancel:
		v.form = nil
	case formSubmit:
		return v.submit()
	}
	return cmd
}

func (v *TasksView) submit() tea.Cmd {
	f := v.form
	title := f.value("title")
	if title == "" {
		f.err = "Title is required"
		return nil
	}

	apply := func(t *models.Task) {
		t.Title = title
		t.ProjectID = f.value("project")
		t.Due = f.value("due")
		t.Priority = models.Priority(f.value("priority"))
		t.Status = models.TaskStatus(f.value("status"))
		t.Notes = f.value("notes")
	}

	draft := models.NewTask(title)
	apply(&draft)
	if err := draft.Validate(); err != nil {
		f.err = err.Error()
		return nil
	}
	v.form = nil

	if v.editingID == "" {
		return v.env.mutate("task created", func(ctx context.Context) error {
			return v.env.Store.CreateTask(ctx, &draft)
		})
	}
	id := v.editingID
	return v.env.mutate("task saved", func(ctx context.Context) error {
		t, err := v.env.Store.GetTask(ctx, id)
		if err != nil {
			return err
		}
		apply(&t)
		return v.env.Store.ReplaceTask(ctx, t)
	})
}

func (v *TasksView) View() string {
	s := v.env.Styles
	if v.confirm.active {
		return v.confirm.view(s, v.width, v.height)
	}
	if v.form != nil {
		return v.form.view(s, v.width, v.height)
	}

	width := styles.ContentWidth(v.width)
	projects := projection.ProjectOptions(v.state.Projects, projection.All)

	var b strings.Builder
	b.WriteString(v.filters.view(s, width, projects))
	b.WriteString("\n")

	if len(v.rows) == 0 {
		b.WriteString(s.TitleMuted.Render("  No tasks match. Press 'n' to add one."))
		return b.String()
	}

	today := time.Now().Format(models.DateLayout)
	start, end := v.list.window(len(v.rows), v.visibleRows())
	for i := start; i < end; i++ {
		r := v.rows[i]
		style := s.ListItem
		if i == v.list.cursor {
			style = s.ListSelected
		}
		due := r.Due
		if due == "" {
			due = "no date"
		} else if due < today && r.Status != models.TaskDone {
			due = s.ErrorText.UnsetPadding().Render(due)
		}
		line := fmt.Sprintf("%s %s %s  %s",
			pill(s, string(r.Status), styles.TaskStatusColor(r.Status)),
			s.Badge.UnsetPadding().Foreground(styles.PriorityColor(r.Priority)).Render(fmt.Sprintf("%-4s", r.Priority)),
			truncate(r.Title, 32),
			s.TitleMuted.Render(due+" • "+r.ProjectTitle),
		)
		b.WriteString(style.Width(width - 2).Render(truncate(line, width-2)))
		b.WriteString("\n")
	}
	return b.String()
}
