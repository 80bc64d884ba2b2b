package views

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/refurb/internal/db"
	"github.com/tgienger/refurb/internal/projection"
	"github.com/tgienger/refurb/internal/snapshot"
	"github.com/tgienger/refurb/internal/ui/styles"
)

// SettingsView edits workshop settings and moves data in and out
type SettingsView struct {
	env   *Env
	state *projection.State

	form    *form
	formFor string // "settings" or "import"
	confirm confirm

	// ExportDir is where x writes the snapshot
	ExportDir string

	width  int
	height int
}

func NewSettingsView(env *Env) *SettingsView {
	return &SettingsView{env: env, state: &projection.State{}, ExportDir: "."}
}

func (v *SettingsView) SetState(s *projection.State) {
	v.state = s
}

func (v *SettingsView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

func (v *SettingsView) Capturing() bool {
	return v.form != nil || v.confirm.active
}

func (v *SettingsView) Bindings() []key.Binding {
	k := v.env.Keys
	return []key.Binding{k.Edit, k.Export, k.Import, k.Clear, k.Quit}
}

func (v *SettingsView) Update(msg tea.KeyMsg) tea.Cmd {
	if v.confirm.active {
		return v.confirm.update(msg)
	}
	if v.form != nil {
		res, cmd := v.form.update(msg)
		switch res {
		case formCancel:
			v.form = nil
		case formSubmit:
			return v.submit()
		}
		return cmd
	}

	k := v.env.Keys
	switch {
	case key.Matches(msg, k.Edit), key.Matches(msg, k.Enter):
		v.formFor = "settings"
		v.form = newForm("Settings", k).
			text("currency", "Currency", v.state.Currency(), db.DefaultCurrency).
			text("bizName", "Workshop", v.state.Setting(db.SettingBizName, ""), "Business name")
		return v.form.start()
	case key.Matches(msg, k.Import):
		v.formFor = "import"
		v.form = newForm("Import Snapshot", k).
			text("path", "File", filepath.Join(v.ExportDir, snapshot.DefaultFilename()), "")
		return v.form.start()
	case key.Matches(msg, k.Export):
		return v.export()
	case key.Matches(msg, k.Clear):
		v.confirm.ask(
			"Clear all data?",
			"Every project, part, task, photo and setting will be deleted.",
			v.env.mutate("all data cleared", func(ctx context.Context) error {
				return v.env.Store.ClearAll(ctx)
			}),
		)
	}
	return nil
}

func (v *SettingsView) export() tea.Cmd {
	path := filepath.Join(v.ExportDir, snapshot.DefaultFilename())
	env := v.env
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(env.Ctx, writeTimeout)
		defer cancel()
		if err := snapshot.ExportFile(ctx, env.Store, path); err != nil {
			env.Log.Error("export failed", "path", path, "error", err)
			return StatusMsg{Err: err}
		}
		env.Log.Info("snapshot exported", "path", path)
		return StatusMsg{Text: "exported to " + path}
	}
}

func (v *SettingsView) submit() tea.Cmd {
	f := v.form
	switch v.formFor {
	case "import":
		path := f.value("path")
		if path == "" {
			f.err = "File is required"
			return nil
		}
		v.form = nil
		env := v.env
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(env.Ctx, writeTimeout)
			defer cancel()
			res, err := snapshot.ImportFile(ctx, env.Store, path)
			if err != nil {
				env.Log.Error("import failed", "path", path, "error", err)
				return StatusMsg{Err: err}
			}
			env.Log.Info("snapshot imported", "path", path, "records", res.Total())
			return StatusMsg{Text: fmt.Sprintf("imported %d records", res.Total())}
		}
	default:
		currency := f.value("currency")
		if currency == "" {
			f.err = "Currency is required"
			return nil
		}
		bizName := f.value("bizName")
		v.form = nil
		return v.env.mutate("settings saved", func(ctx context.Context) error {
			if err := v.env.Store.SetSetting(ctx, db.SettingCurrency, currency); err != nil {
				return err
			}
			return v.env.Store.SetSetting(ctx, db.SettingBizName, bizName)
		})
	}
}

func (v *SettingsView) View() string {
	s := v.env.Styles
	if v.confirm.active {
		return v.confirm.view(s, v.width, v.height)
	}
	if v.form != nil {
		return v.form.view(s, v.width, v.height)
	}

	bizName := v.state.Setting(db.SettingBizName, "")
	if bizName == "" {
		bizName = s.TitleMuted.Render("not set")
	}
	rows := []string{
		s.Title.Render("Workshop"),
		"",
		s.Label.Render("Currency") + v.state.Currency(),
		s.Label.Render("Name") + bizName,
		"",
		s.Title.Render("Data"),
		"",
		s.Label.Render("Projects") + fmt.Sprint(len(v.state.Projects)),
		s.Label.Render("Parts") + fmt.Sprint(len(v.state.Parts)),
		s.Label.Render("Tasks") + fmt.Sprint(len(v.state.Tasks)),
		s.Label.Render("Photos") + fmt.Sprint(len(v.state.Photos)),
		"",
		s.TitleMuted.Render("x exports to " + filepath.Join(v.ExportDir, snapshot.DefaultFilename())),
	}

	extra := make([]string, 0, len(v.state.Settings))
	for _, st := range v.state.Settings {
		if st.ID == db.SettingCurrency || st.ID == db.SettingBizName {
			continue
		}
		extra = append(extra, s.Label.Render(truncate(st.ID, 11))+db.SettingString(st.Value))
	}
	if len(extra) > 0 {
		rows = append(rows, "", s.Title.Render("Other"), "")
		rows = append(rows, extra...)
	}

	return lipgloss.NewStyle().Width(styles.ContentWidth(v.width)).Padding(0, 2).
		Render(strings.Join(rows, "\n"))
}
