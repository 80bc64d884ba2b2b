package ui

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/refurb/internal/db"
	"github.com/tgienger/refurb/internal/models"
	"github.com/tgienger/refurb/internal/ui/views"
)

func newTestApp(t *testing.T) (*App, *db.DB) {
	t.Helper()
	ctx := context.Background()
	store, err := db.Open(ctx, filepath.Join(t.TempDir(), "refurb.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	app := NewApp(ctx, store, Options{Month: "2024-03"})
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return app, store
}

// reload runs the app's load command and feeds the result back in
func reload(t *testing.T, app *App) {
	t.Helper()
	msg := app.load()()
	_, ok := msg.(stateLoadedMsg)
	require.True(t, ok, "expected stateLoadedMsg, got %T", msg)
	app.Update(msg)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestAppInitLoadsState(t *testing.T) {
	app, store := newTestApp(t)
	p := models.NewProject("Honda CB550")
	require.NoError(t, store.CreateProject(context.Background(), &p))

	msg := app.Init()()
	loaded, ok := msg.(stateLoadedMsg)
	require.True(t, ok)
	require.Len(t, loaded.state.Projects, 1)

	app.Update(msg)
	require.Contains(t, app.View(), "Honda CB550")
	require.Contains(t, app.View(), "1 Projects")
}

func TestAppTabSwitching(t *testing.T) {
	app, _ := newTestApp(t)
	reload(t, app)
	require.Equal(t, ViewProjects, app.currentView)

	app.Update(tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, ViewParts, app.currentView)
	app.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	app.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	require.Equal(t, ViewSettings, app.currentView)

	app.Update(runes("4"))
	require.Equal(t, ViewCalendar, app.currentView)
	require.Contains(t, app.View(), "March 2024")

	app.Update(runes("1"))
	require.Equal(t, ViewProjects, app.currentView)
}

func TestAppCapturingTabKeepsKeys(t *testing.T) {
	app, _ := newTestApp(t)
	reload(t, app)

	app.Update(runes("n"))
	require.True(t, app.active().Capturing())
	app.Update(runes("3"))
	require.Equal(t, ViewProjects, app.currentView, "digits go to the form")

	app.Update(runes("q"))
	require.True(t, app.active().Capturing(), "q is typed, not quit")
}

func TestAppReloadsOnChange(t *testing.T) {
	app, store := newTestApp(t)
	reload(t, app)

	var changes []db.Change
	unsubscribe := store.Subscribe(func(c db.Change) { changes = append(changes, c) })
	defer unsubscribe()

	p := models.NewProject("Triumph T120")
	require.NoError(t, store.CreateProject(context.Background(), &p))
	require.Len(t, changes, 1)

	_, cmd := app.Update(changedMsg{change: changes[0]})
	require.NotNil(t, cmd)
	app.Update(cmd())
	require.Len(t, app.state.Projects, 1)
}

func TestAppFilterProjectOpensParts(t *testing.T) {
	app, store := newTestApp(t)
	ctx := context.Background()
	p := models.NewProject("Honda CB550")
	require.NoError(t, store.CreateProject(ctx, &p))
	part := models.NewPart("Carb kit")
	part.ProjectID = p.ID
	require.NoError(t, store.CreatePart(ctx, &part))
	other := models.NewPart("Mirror")
	require.NoError(t, store.CreatePart(ctx, &other))
	reload(t, app)

	app.Update(views.FilterProjectMsg{ProjectID: p.ID})
	require.Equal(t, ViewParts, app.currentView)
	view := app.View()
	require.Contains(t, view, "Carb kit")
	require.NotContains(t, view, "Mirror")
}

func TestAppStatusLine(t *testing.T) {
	app, _ := newTestApp(t)
	reload(t, app)

	app.Update(views.StatusMsg{Text: "part created"})
	require.Contains(t, app.View(), "part created")

	app.Update(views.StatusMsg{Err: errors.New("disk full")})
	require.True(t, app.statusErr)
	require.Contains(t, app.View(), "disk full")

	app.Update(loadFailedMsg{err: errors.New("locked")})
	require.Equal(t, "locked", app.status)
}

func TestAppRestoresLastTab(t *testing.T) {
	app, store := newTestApp(t)
	require.NoError(t, store.SetSetting(context.Background(), db.SettingLastTab, "calendar"))
	reload(t, app)
	require.Equal(t, ViewCalendar, app.currentView)

	// only the first load restores
	app.Update(runes("1"))
	reload(t, app)
	require.Equal(t, ViewProjects, app.currentView)
}

func TestAppQuitSavesTab(t *testing.T) {
	app, store := newTestApp(t)
	reload(t, app)
	app.Update(runes("5"))

	_, cmd := app.Update(runes("q"))
	require.NotNil(t, cmd)

	require.Nil(t, app.quitSave()())
	got, err := store.GetSetting(context.Background(), db.SettingLastTab)
	require.NoError(t, err)
	require.Equal(t, "Settings", got)
}

func TestViewNames(t *testing.T) {
	t.Parallel()
	require.Equal(t, "Calendar", ViewCalendar.String())
	require.Equal(t, "Unknown", View(42).String())
	v, ok := viewByName("PARTS")
	require.True(t, ok)
	require.Equal(t, ViewParts, v)
	_, ok = viewByName("garage")
	require.False(t, ok)
}
