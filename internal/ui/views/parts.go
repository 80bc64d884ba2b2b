package views

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/refurb/internal/db"
	"github.com/tgienger/refurb/internal/models"
	"github.com/tgienger/refurb/internal/projection"
	"github.com/tgienger/refurb/internal/ui/styles"
)

// PartsView lists parts with filters, photos and status cycling
type PartsView struct {
	env     *Env
	state   *projection.State
	filters filterBar[models.PartStatus]
	rows    []projection.PartRow
	list    cursorList

	form      *form
	editingID string
	confirm   confirm
	detail    bool
	// every photo of the part shown in detail, not just the row's thumbnails
	photos []models.Photo

	width  int
	height int
}

func NewPartsView(env *Env) *PartsView {
	return &PartsView{
		env:     env,
		state:   &projection.State{},
		filters: newFilterBar(models.PartStatuses, "Search parts..."),
	}
}

func (v *PartsView) SetState(s *projection.State) {
	v.state = s
	v.refresh()
}

// FilterProject shows only parts of one project
func (v *PartsView) FilterProject(id string) {
	v.filters.projectID = id
	v.refresh()
}

func (v *PartsView) refresh() {
	v.rows = projection.Parts(v.state, projection.PartFilter{
		ProjectID: v.filters.projectID,
		Status:    v.filters.status,
		Query:     v.filters.query(),
	})
	v.list.fit(len(v.rows), v.visibleRows())
}

func (v *PartsView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.list.ensureVisible(v.visibleRows())
}

func (v *PartsView) visibleRows() int {
	return max(1, v.height-5)
}

func (v *PartsView) Capturing() bool {
	return v.form != nil || v.confirm.active || v.filters.searching || v.detail
}

func (v *PartsView) Bindings() []key.Binding {
	k := v.env.Keys
	return []key.Binding{k.Search, k.Project, k.Status, k.New, k.Edit, k.Advance, k.Delete, k.Enter, k.Quit}
}

func (v *PartsView) selected() (projection.PartRow, bool) {
	if len(v.rows) == 0 {
		return projection.PartRow{}, false
	}
	return v.rows[v.list.cursor], true
}

func (v *PartsView) Update(msg tea.KeyMsg) tea.Cmd {
	if v.confirm.active {
		return v.confirm.update(msg)
	}
	if v.form != nil {
		return v.updateForm(msg)
	}
	if v.detail {
		v.detail = false
		return nil
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
	case key.Matches(msg, k.Enter):
		if r, ok := v.selected(); ok {
			return v.openDetail(r.ID)
		}
	case key.Matches(msg, k.New):
		p := models.NewPart("")
		p.ProjectID = v.filters.projectID
		return v.openForm(p, "")
	case key.Matches(msg, k.Edit):
		if r, ok := v.selected(); ok {
			return v.openForm(r.Part, r.ID)
		}
	case key.Matches(msg, k.Advance):
		if r, ok := v.selected(); ok {
			id := r.ID
			return v.env.mutate("part status advanced", func(ctx context.Context) error {
				p, err := v.env.Store.GetPart(ctx, id)
				if err != nil {
					return err
				}
				return v.env.Store.ReplacePart(ctx, projection.AdvancePart(p))
			})
		}
	case key.Matches(msg, k.Delete):
		if r, ok := v.selected(); ok {
			id := r.ID
			v.confirm.ask(
				"Delete part?",
				fmt.Sprintf("%q will be removed permanently.", r.Name),
				v.env.mutate("part deleted", func(ctx context.Context) error {
					return v.env.Store.Remove(ctx, db.Parts, id)
				}),
			)
		}
	}
	return nil
}

func (v *PartsView) openForm(p models.Part, id string) tea.Cmd {
	title := "New Part"
	if id != "" {
		title = "Edit Part"
	}
	price := ""
	if p.Price != 0 {
		price = strconv.FormatFloat(p.Price, 'f', -1, 64)
	}
	v.editingID = id
	v.form = newForm(title, v.env.Keys).
		text("name", "Name", p.Name, "Carb kit").
		choice("project", "Project", projection.ProjectOptions(v.state.Projects, projection.Unassigned), p.ProjectID).
		choice("status", "Status", enumOptions(models.PartStatuses), string(p.Status)).
		text("supplier", "Supplier", p.Supplier, "").
		text("price", "Price", price, "0.00").
		text("qty", "Qty", strconv.Itoa(max(p.Qty, 1)), "1").
		text("due", "Due", p.Due, "YYYY-MM-DD").
		text("notes", "Notes", p.Notes, "")
	return v.form.start()
}

func (v *PartsView) updateForm(msg tea.KeyMsg) tea.Cmd {
	res, cmd := v.form.update(msg)
	switch res {
	case formCancel:
		v.form = nil
	case formSubmit:
		return v.submit()
	}
	return cmd
}

func (v *PartsView) submit() tea.Cmd {
	f := v.form
	name := f.value("name")
	if name == "" {
		f.err = "Name is required"
		return nil
	}
	price := 0.0
	if raw := f.value("price"); raw != "" {
		var err error
		if price, err = strconv.ParseFloat(raw, 64); err != nil || price < 0 {
			f.err = "Price must be a positive number"
			return nil
		}
	}
	qty := 1
	if raw := f.value("qty"); raw != "" {
		var err error
		if qty, err = strconv.Atoi(raw); err != nil || qty < 1 {
			f.err = "Qty must be a whole number of at least 1"
			return nil
		}
	}

	apply := func(p *models.Part) {
		p.Name = name
		p.ProjectID = f.value("project")
		p.Status = models.PartStatus(f.value("status"))
		p.Supplier = f.value("supplier")
		p.Price = price
		p.Qty = qty
		p.Due = f.value("due")
		p.Notes = f.value("notes")
	}

	draft := models.NewPart(name)
	apply(&draft)
	if err := draft.Validate(); err != nil {
		f.err = err.Error()
		return nil
	}
	v.form = nil

	if v.editingID == "" {
		return v.env.mutate("part created", func(ctx context.Context) error {
			return v.env.Store.CreatePart(ctx, &draft)
		})
	}
	id := v.editingID
	return v.env.mutate("part saved", func(ctx context.Context) error {
		p, err := v.env.Store.GetPart(ctx, id)
		if err != nil {
			return err
		}
		apply(&p)
		return v.env.Store.ReplacePart(ctx, p)
	})
}

func (v *PartsView) View() string {
	s := v.env.Styles
	if v.confirm.active {
		return v.confirm.view(s, v.width, v.height)
	}
	if v.form != nil {
		return v.form.view(s, v.width, v.height)
	}
	if v.detail {
		if r, ok := v.selected(); ok {
			return v.renderDetail(r)
		}
	}

	width := styles.ContentWidth(v.width)
	projects := projection.ProjectOptions(v.state.Projects, projection.All)

	var b strings.Builder
	b.WriteString(v.filters.view(s, width, projects))
	b.WriteString("\n")

	if len(v.rows) == 0 {
		b.WriteString(s.TitleMuted.Render("  No parts match. Press 'n' to add one."))
		return b.String()
	}

	cur := v.state.Currency()
	start, end := v.list.window(len(v.rows), v.visibleRows())
	for i := start; i < end; i++ {
		r := v.rows[i]
		style := s.ListItem
		if i == v.list.cursor {
			style = s.ListSelected
		}
		extra := []string{fmt.Sprintf("x%d", r.Qty)}
		if money := projection.FormatMoney(r.Price, cur); money != "" {
			extra = append(extra, money)
		}
		if len(r.Photos) > 0 {
			extra = append(extra, fmt.Sprintf("%d photos", len(r.Photos)))
		}
		extra = append(extra, r.ProjectTitle)
		line := fmt.Sprintf("%s %s  %s",
			pill(s, string(r.Status), styles.PartStatusColor(r.Status)),
			truncate(r.Name, 28),
			s.TitleMuted.Render(strings.Join(extra, " • ")),
		)
		b.WriteString(style.Width(width - 2).Render(truncate(line, width-2)))
		b.WriteString("\n")
	}
	return b.String()
}

func (v *PartsView) openDetail(id string) tea.Cmd {
	ctx, cancel := context.WithTimeout(v.env.Ctx, writeTimeout)
	defer cancel()
	photos, err := v.env.Store.ListPhotosByPart(ctx, id)
	if err != nil {
		v.env.Log.Error("load part photos", "part", id, "error", err)
		return func() tea.Msg { return StatusMsg{Err: err} }
	}
	v.photos = photos
	v.detail = true
	return nil
}

func (v *PartsView) renderDetail(r projection.PartRow) string {
	s := v.env.Styles
	lines := []string{
		s.Title.Render(r.Name),
		"",
		fmt.Sprintf("Project   %s", r.ProjectTitle),
		fmt.Sprintf("Status    %s", r.Status),
		fmt.Sprintf("Supplier  %s", r.Supplier),
		fmt.Sprintf("Price     %s x%d", projection.FormatMoney(r.Price, v.state.Currency()), r.Qty),
		fmt.Sprintf("Due       %s", r.Due),
		fmt.Sprintf("Notes     %s", r.Notes),
		"",
		s.Title.Render(fmt.Sprintf("Photos (%d)", len(v.photos))),
	}
	for _, ph := range v.photos {
		lines = append(lines, fmt.Sprintf("  %s  %s  %d bytes", ph.Name, ph.MediaType, len(ph.Data)))
	}
	lines = append(lines, "", s.TitleMuted.Render("Press any key to close"))

	return lipgloss.Place(styles.ContentWidth(v.width), v.height,
		lipgloss.Center, lipgloss.Center,
		s.Popup.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)),
	)
}
