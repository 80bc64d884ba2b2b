package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/refurb/internal/db"
	"github.com/tgienger/refurb/internal/log"
	"github.com/tgienger/refurb/internal/projection"
	"github.com/tgienger/refurb/internal/ui/keys"
	"github.com/tgienger/refurb/internal/ui/styles"
	"github.com/tgienger/refurb/internal/ui/views"
)

// Currently active tab
type View int

const (
	ViewProjects View = iota
	ViewParts
	ViewTasks
	ViewCalendar
	ViewSettings
)

var viewNames = []string{"Projects", "Parts", "Tasks", "Calendar", "Settings"}

func (v View) String() string {
	if v < 0 || int(v) >= len(viewNames) {
		return "Unknown"
	}
	return viewNames[v]
}

func viewByName(name string) (View, bool) {
	for i, n := range viewNames {
		if strings.EqualFold(n, name) {
			return View(i), true
		}
	}
	return 0, false
}

// Options configures the terminal UI
type Options struct {
	// Month is the calendar month to open on, YYYY-MM. Empty means now.
	Month  string
	Logger *slog.Logger
}

// changedMsg is sent by the store subscription after every committed write
type changedMsg struct {
	change db.Change
}

type stateLoadedMsg struct {
	state *projection.State
}

type loadFailedMsg struct {
	err error
}

type App struct {
	env         *views.Env
	db          *db.DB
	currentView View
	tabs        []views.Tab
	parts       *views.PartsView
	tasks       *views.TasksView
	state       *projection.State
	restored    bool
	status      string
	statusErr   bool
	width       int
	height      int
}

// NewApp creates the application model
func NewApp(ctx context.Context, database *db.DB, opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	env := &views.Env{
		Ctx:    ctx,
		Store:  database,
		Styles: styles.NewStyles(),
		Keys:   keys.DefaultKeyMap(),
		Log:    logger,
	}
	a := &App{
		env:         env,
		db:          database,
		currentView: ViewProjects,
		parts:       views.NewPartsView(env),
		tasks:       views.NewTasksView(env),
		state:       &projection.State{},
	}
	a.tabs = []views.Tab{
		views.NewProjectsView(env),
		a.parts,
		a.tasks,
		views.NewCalendarView(env, opts.Month),
		views.NewSettingsView(env),
	}
	return a
}

// Run starts the terminal UI and blocks until the user quits or ctx ends
func Run(ctx context.Context, database *db.DB, opts Options) error {
	app := NewApp(ctx, database, opts)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	unsubscribe := database.Subscribe(func(c db.Change) {
		p.Send(changedMsg{change: c})
	})
	defer unsubscribe()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

func (a *App) Init() tea.Cmd {
	return a.load()
}

// load reads a fresh State off the UI goroutine
func (a *App) load() tea.Cmd {
	return func() tea.Msg {
		state, err := projection.Load(a.env.Ctx, a.db)
		if err != nil {
			return loadFailedMsg{err: err}
		}
		return stateLoadedMsg{state: state}
	}
}

func (a *App) active() views.Tab {
	return a.tabs[a.currentView]
}

func (a *App) switchTo(v View) {
	a.currentView = v
	a.status = ""
}

func (a *App) contentHeight() int {
	// tab bar, status line and help
	return max(1, a.height-7)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		for _, t := range a.tabs {
			t.SetSize(styles.ContentWidth(a.width), a.contentHeight())
		}
		return a, nil

	case changedMsg:
		a.env.Log.Debug("store changed", "collection", msg.change.Collection, "op", msg.change.Op, "id", msg.change.ID)
		return a, a.load()

	case stateLoadedMsg:
		a.state = msg.state
		for _, t := range a.tabs {
			t.SetState(msg.state)
		}
		if !a.restored {
			a.restored = true
			if v, ok := viewByName(msg.state.Setting(db.SettingLastTab, "")); ok {
				a.currentView = v
			}
		}
		return a, nil

	case loadFailedMsg:
		a.env.Log.Error("load state", "error", msg.err)
		a.status, a.statusErr = msg.err.Error(), true
		return a, nil

	case views.StatusMsg:
		if msg.Err != nil {
			a.status, a.statusErr = msg.Err.Error(), true
		} else {
			a.status, a.statusErr = msg.Text, false
		}
		return a, nil

	case views.FilterProjectMsg:
		a.parts.FilterProject(msg.ProjectID)
		a.tasks.FilterProject(msg.ProjectID)
		a.switchTo(ViewParts)
		return a, nil

	case tea.KeyMsg:
		return a, a.handleKey(msg)
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return a.quit()
	}
	tab := a.active()
	if tab.Capturing() {
		return tab.Update(msg)
	}

	k := a.env.Keys
	switch {
	case key.Matches(msg, k.Quit):
		return a.quit()
	case key.Matches(msg, k.NextTab):
		a.switchTo(View((int(a.currentView) + 1) % len(a.tabs)))
		return nil
	case key.Matches(msg, k.PrevTab):
		a.switchTo(View((int(a.currentView) + len(a.tabs) - 1) % len(a.tabs)))
		return nil
	}
	if s := msg.String(); len(s) == 1 && s[0] >= '1' && int(s[0]-'1') < len(a.tabs) {
		a.switchTo(View(s[0] - '1'))
		return nil
	}
	return tab.Update(msg)
}

// quit remembers the open tab for next time, then exits
func (a *App) quit() tea.Cmd {
	return tea.Sequence(a.quitSave(), tea.Quit)
}

func (a *App) quitSave() tea.Cmd {
	tab := a.currentView.String()
	return func() tea.Msg {
		if err := a.db.SetSetting(a.env.Ctx, db.SettingLastTab, tab); err != nil {
			a.env.Log.Warn("save last tab", "error", err)
		}
		return nil
	}
}

func (a *App) View() string {
	s := a.env.Styles
	width := styles.ContentWidth(a.width)

	tabs := make([]string, len(a.tabs))
	for i := range a.tabs {
		label := fmt.Sprintf("%d %s", i+1, View(i))
		if View(i) == a.currentView {
			tabs[i] = s.TabActive.Render(label)
		} else {
			tabs[i] = s.Tab.Render(label)
		}
	}
	title := s.Title.Render(a.title())
	bar := s.TabBar.Width(width).Render(
		lipgloss.JoinHorizontal(lipgloss.Center, append([]string{title, "  "}, tabs...)...),
	)

	status := ""
	if a.status != "" {
		if a.statusErr {
			status = s.ErrorText.Render(truncateStatus(a.status, width))
		} else {
			status = s.StatusBar.Render(truncateStatus(a.status, width))
		}
	}

	tab := a.active()
	body := lipgloss.NewStyle().Height(a.contentHeight()).MaxHeight(a.contentHeight()).Render(tab.View())
	help := views.HelpLine(s, append(tab.Bindings(), a.env.Keys.NextTab))

	return styles.CenterView(
		lipgloss.JoinVertical(lipgloss.Left, bar, body, status, help),
		a.width, a.height,
	)
}

func (a *App) title() string {
	if name := a.state.Setting(db.SettingBizName, ""); name != "" {
		return name
	}
	return "Refurb"
}

func truncateStatus(s string, width int) string {
	r := []rune(s)
	if width > 4 && len(r) > width-4 {
		return string(r[:width-5]) + "…"
	}
	return s
}
