package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/refurb/internal/db"
	"github.com/tgienger/refurb/internal/models"
	"github.com/tgienger/refurb/internal/projection"
	"github.com/tgienger/refurb/internal/ui/styles"
)

// ProjectsView lists projects with their part and task counts
type ProjectsView struct {
	env   *Env
	state *projection.State
	rows  []projection.ProjectSummary
	list  cursorList

	form      *form
	editingID string // empty while creating
	confirm   confirm

	width  int
	height int
}

func NewProjectsView(env *Env) *ProjectsView {
	return &ProjectsView{env: env, state: &projection.State{}}
}

func (v *ProjectsView) SetState(s *projection.State) {
	v.state = s
	v.rows = projection.Summaries(s)
	v.list.fit(len(v.rows), v.visibleRows())
}

func (v *ProjectsView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.list.ensureVisible(v.visibleRows())
}

func (v *ProjectsView) visibleRows() int {
	// two lines per project
	return max(1, (v.height-4)/2)
}

func (v *ProjectsView) Capturing() bool {
	return v.form != nil || v.confirm.active
}

func (v *ProjectsView) Bindings() []key.Binding {
	k := v.env.Keys
	return []key.Binding{k.Enter, k.New, k.Edit, k.Advance, k.Delete, k.Quit}
}

func (v *ProjectsView) selected() (projection.ProjectSummary, bool) {
	if len(v.rows) == 0 {
		return projection.ProjectSummary{}, false
	}
	return v.rows[v.list.cursor], true
}

func (v *ProjectsView) Update(msg tea.KeyMsg) tea.Cmd {
	if v.confirm.active {
		return v.confirm.update(msg)
	}
	if v.form != nil {
		return v.updateForm(msg)
	}

	k := v.env.Keys
	switch {
	case key.Matches(msg, k.Up):
		v.list.move(-1, len(v.rows), v.visibleRows())
	case key.Matches(msg, k.Down):
		v.list.move(1, len(v.rows), v.visibleRows())
	case key.Matches(msg, k.New):
		return v.openForm(models.NewProject(""), "")
	case key.Matches(msg, k.Edit):
		if p, ok := v.selected(); ok {
			return v.openForm(p.Project, p.ID)
		}
	case key.Matches(msg, k.Enter):
		if p, ok := v.selected(); ok {
			return func() tea.Msg { return FilterProjectMsg{ProjectID: p.ID} }
		}
	case key.Matches(msg, k.Advance):
		if p, ok := v.selected(); ok {
			return v.advance(p.ID)
		}
	case key.Matches(msg, k.Delete):
		if p, ok := v.selected(); ok {
			id := p.ID
			v.confirm.ask(
				"Delete project?",
				fmt.Sprintf("%q will be removed. Its parts and tasks stay, unassigned.", p.Title),
				v.env.mutate("project deleted", func(ctx context.Context) error {
					return v.env.Store.Remove(ctx, db.Projects, id)
				}),
			)
		}
	}
	return nil
}

func (v *ProjectsView) advance(id string) tea.Cmd {
	return v.env.mutate("project stage advanced", func(ctx context.Context) error {
		p, err := v.env.Store.GetProject(ctx, id)
		if err != nil {
			return err
		}
		p.Status = p.Status.Next()
		return v.env.Store.ReplaceProject(ctx, p)
	})
}

func (v *ProjectsView) openForm(p models.Project, id string) tea.Cmd {
	title := "New Project"
	if id != "" {
		title = "Edit Project"
	}
	v.editingID = id
	v.form = newForm(title, v.env.Keys).
		text("title", "Title", p.Title, "Honda CB550").
		text("reg", "Reg", p.Reg, "Registration or frame no.").
		choice("status", "Stage", enumOptions(models.ProjectStatuses), string(p.Status)).
		text("notes", "Notes", p.Notes, "")
	return v.form.start()
}

func (v *ProjectsView) updateForm(msg tea.KeyMsg) tea.Cmd {
	res, cmd := v.form.update(msg)
	switch res {
	case formCancel:
		v.form = nil
	case formSubmit:
		return v.submit()
	}
	return cmd
}

func (v *ProjectsView) submit() tea.Cmd {
	f := v.form
	title := f.value("title")
	if title == "" {
		f.err = "Title is required"
		return nil
	}
	reg, notes := f.value("reg"), f.value("notes")
	status := models.ProjectStatus(f.value("status"))
	v.form = nil

	if v.editingID == "" {
		p := models.NewProject(title)
		p.Reg, p.Notes, p.Status = reg, notes, status
		return v.env.mutate("project created", func(ctx context.Context) error {
			return v.env.Store.CreateProject(ctx, &p)
		})
	}

	id := v.editingID
	return v.env.mutate("project saved", func(ctx context.Context) error {
		p, err := v.env.Store.GetProject(ctx, id)
		if err != nil {
			return err
		}
		p.Title, p.Reg, p.Notes, p.Status = title, reg, notes, status
		return v.env.Store.ReplaceProject(ctx, p)
	})
}

func (v *ProjectsView) View() string {
	s := v.env.Styles
	if v.confirm.active {
		return v.confirm.view(s, v.width, v.height)
	}
	if v.form != nil {
		return v.form.view(s, v.width, v.height)
	}
	if len(v.rows) == 0 {
		return lipgloss.Place(styles.ContentWidth(v.width), v.height,
			lipgloss.Center, lipgloss.Center,
			lipgloss.JoinVertical(lipgloss.Center,
				s.Title.Render("No Projects"),
				"",
				s.TitleMuted.Render("Press 'n' to start your first restoration"),
			),
		)
	}

	width := styles.ContentWidth(v.width)
	cur := v.state.Currency()
	start, end := v.list.window(len(v.rows), v.visibleRows())

	var b strings.Builder
	for i := start; i < end; i++ {
		p := v.rows[i]
		style := s.ListItem
		if i == v.list.cursor {
			style = s.ListSelected
		}
		title := p.Title
		if p.Reg != "" {
			title += "  " + p.Reg
		}
		line := fmt.Sprintf("%s %s", pill(s, string(p.Status), styles.Current.Secondary), truncate(title, width-16))

		var counts []string
		for _, st := range models.PartStatuses {
			if n := p.PartsByStatus[st]; n > 0 {
				counts = append(counts, fmt.Sprintf("%d %s", n, st))
			}
		}
		detail := fmt.Sprintf("parts: %s • open tasks: %d", strings.Join(counts, ", "), p.OpenTasks)
		if len(counts) == 0 {
			detail = fmt.Sprintf("no parts • open tasks: %d", p.OpenTasks)
		}
		if money := projection.FormatMoney(p.Cost, cur); money != "" {
			detail += " • " + money
		}

		b.WriteString(style.Width(width - 2).Render(line))
		b.WriteString("\n")
		b.WriteString(style.Width(width - 2).Foreground(styles.Current.ForegroundDim).Render("  " + truncate(detail, width-6)))
		b.WriteString("\n")
	}
	return b.String()
}
