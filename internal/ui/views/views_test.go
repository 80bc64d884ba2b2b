package views

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/refurb/internal/db"
	"github.com/tgienger/refurb/internal/log"
	"github.com/tgienger/refurb/internal/models"
	"github.com/tgienger/refurb/internal/projection"
	"github.com/tgienger/refurb/internal/snapshot"
	"github.com/tgienger/refurb/internal/ui/keys"
	"github.com/tgienger/refurb/internal/ui/styles"
)

func newTestEnv(t *testing.T) *Env {
	t.Helper()
	ctx := context.Background()
	store, err := db.Open(ctx, filepath.Join(t.TempDir(), "refurb.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return &Env{
		Ctx:    ctx,
		Store:  store,
		Styles: styles.NewStyles(),
		Keys:   keys.DefaultKeyMap(),
		Log:    log.Discard(),
	}
}

func load(t *testing.T, env *Env) *projection.State {
	t.Helper()
	s, err := projection.Load(env.Ctx, env.Store)
	require.NoError(t, err)
	return s
}

func press(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keysTo(tab Tab, in ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range in {
		cmd = tab.Update(press(k))
	}
	return cmd
}

// runStatus executes a mutation command and returns its StatusMsg
func runStatus(t *testing.T, cmd tea.Cmd) StatusMsg {
	t.Helper()
	require.NotNil(t, cmd)
	msg, ok := cmd().(StatusMsg)
	require.True(t, ok, "expected a StatusMsg")
	return msg
}

func TestProjectsViewLifecycle(t *testing.T) {
	env := newTestEnv(t)
	v := NewProjectsView(env)
	v.SetSize(80, 30)
	v.SetState(load(t, env))

	keysTo(v, "n")
	require.True(t, v.Capturing())
	require.Nil(t, keysTo(v, "ctrl+s"), "empty title is rejected")
	require.Equal(t, "Title is required", v.form.err)

	msg := runStatus(t, keysTo(v, "Honda CB550", "ctrl+s"))
	require.NoError(t, msg.Err)
	require.False(t, v.Capturing())

	v.SetState(load(t, env))
	require.Len(t, v.rows, 1)
	require.Equal(t, "Honda CB550", v.rows[0].Title)
	require.Equal(t, models.ProjectPlanning, v.rows[0].Status)
	require.Contains(t, v.View(), "Honda CB550")

	runStatus(t, keysTo(v, "a"))
	v.SetState(load(t, env))
	require.Equal(t, models.ProjectPlanning.Next(), v.rows[0].Status)

	id := v.rows[0].ID
	cmd := keysTo(v, "enter")
	require.Equal(t, FilterProjectMsg{ProjectID: id}, cmd())

	keysTo(v, "d")
	require.True(t, v.confirm.active)
	require.Nil(t, keysTo(v, "n"), "declining does nothing")
	require.False(t, v.confirm.active)

	keysTo(v, "d")
	runStatus(t, keysTo(v, "y"))
	n, err := env.Store.Count(env.Ctx, db.Projects)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestProjectsViewEditKeepsOtherFields(t *testing.T) {
	env := newTestEnv(t)
	p := models.NewProject("Triumph T120")
	p.Reg = "ABC 123"
	require.NoError(t, env.Store.CreateProject(env.Ctx, &p))

	v := NewProjectsView(env)
	v.SetState(load(t, env))
	keysTo(v, "e")
	require.Equal(t, "Edit Project", v.form.title)
	require.Equal(t, "ABC 123", v.form.value("reg"))

	runStatus(t, keysTo(v, " Bonneville", "ctrl+s"))
	got, err := env.Store.GetProject(env.Ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, "Triumph T120 Bonneville", got.Title)
	require.Equal(t, "ABC 123", got.Reg)
	require.True(t, p.Created.Equal(got.Created))
}

func seedParts(t *testing.T, env *Env) (models.Project, models.Part) {
	t.Helper()
	cb := models.NewProject("Honda CB550")
	require.NoError(t, env.Store.CreateProject(env.Ctx, &cb))

	carb := models.NewPart("Carb kit")
	carb.ProjectID = cb.ID
	require.NoError(t, env.Store.CreatePart(env.Ctx, &carb))

	tyres := models.NewPart("Tyres")
	tyres.Status = models.PartOrdered
	require.NoError(t, env.Store.CreatePart(env.Ctx, &tyres))

	photo := models.NewPhoto(carb.ID, "carb.jpg", "image/jpeg", "data:image/jpeg;base64,AAAA")
	require.NoError(t, env.Store.CreatePhoto(env.Ctx, &photo))
	return cb, carb
}

func TestPartsViewFilters(t *testing.T) {
	env := newTestEnv(t)
	cb, carb := seedParts(t, env)

	v := NewPartsView(env)
	v.SetSize(100, 30)
	v.SetState(load(t, env))
	require.Len(t, v.rows, 2)

	keysTo(v, "s")
	require.Equal(t, models.PartNeeded, v.filters.status)
	require.Len(t, v.rows, 1)
	require.Equal(t, carb.ID, v.rows[0].ID)
	keysTo(v, "s", "s", "s", "s")
	require.Empty(t, v.filters.status, "status filter wraps back to all")
	require.Len(t, v.rows, 2)

	keysTo(v, "/")
	require.True(t, v.Capturing())
	keysTo(v, "tyre")
	require.Len(t, v.rows, 1)
	keysTo(v, "enter")
	require.False(t, v.Capturing())
	require.Equal(t, "tyre", v.filters.query())

	keysTo(v, "/", "esc")
	require.Empty(t, v.filters.query())
	require.Len(t, v.rows, 2)

	keysTo(v, "p")
	require.Equal(t, cb.ID, v.filters.projectID)
	require.Len(t, v.rows, 1)
	require.Contains(t, v.View(), "1 photos")

	v.FilterProject("")
	require.Len(t, v.rows, 2)
}

func TestPartsViewAdvanceAndDetail(t *testing.T) {
	env := newTestEnv(t)
	_, carb := seedParts(t, env)

	v := NewPartsView(env)
	v.SetSize(100, 30)
	v.SetState(load(t, env))
	require.Equal(t, carb.ID, v.rows[0].ID)

	runStatus(t, keysTo(v, "a"))
	got, err := env.Store.GetPart(env.Ctx, carb.ID)
	require.NoError(t, err)
	require.Equal(t, models.PartOrdered, got.Status)

	keysTo(v, "enter")
	require.True(t, v.Capturing())
	require.Contains(t, v.View(), "carb.jpg")
	keysTo(v, "x")
	require.False(t, v.Capturing())
}

func TestPartsViewDetailListsEveryPhoto(t *testing.T) {
	env := newTestEnv(t)
	part := models.NewPart("Frame")
	require.NoError(t, env.Store.CreatePart(env.Ctx, &part))
	total := projection.MaxPhotosPerPart + 2
	for i := range total {
		ph := models.NewPhoto(part.ID, fmt.Sprintf("frame-%d.jpg", i), "image/jpeg", "data:image/jpeg;base64,AAAA")
		require.NoError(t, env.Store.CreatePhoto(env.Ctx, &ph))
	}

	v := NewPartsView(env)
	v.SetSize(100, 40)
	v.SetState(load(t, env))
	require.Len(t, v.rows[0].Photos, projection.MaxPhotosPerPart)

	require.Nil(t, keysTo(v, "enter"))
	require.Len(t, v.photos, total)
	out := v.View()
	require.Contains(t, out, fmt.Sprintf("Photos (%d)", total))
	require.Contains(t, out, fmt.Sprintf("frame-%d.jpg", total-1))
}

func TestEditKeepsLinkToRemovedProject(t *testing.T) {
	env := newTestEnv(t)
	cb := models.NewProject("Honda CB550")
	require.NoError(t, env.Store.CreateProject(env.Ctx, &cb))
	carb := models.NewPart("Carb kit")
	carb.ProjectID = cb.ID
	require.NoError(t, env.Store.CreatePart(env.Ctx, &carb))
	task := models.NewTask("Rebuild carbs")
	task.ProjectID = cb.ID
	require.NoError(t, env.Store.CreateTask(env.Ctx, &task))
	require.NoError(t, env.Store.Remove(env.Ctx, db.Projects, cb.ID))

	parts := NewPartsView(env)
	parts.SetSize(100, 30)
	parts.SetState(load(t, env))
	keysTo(parts, "e")
	require.Equal(t, cb.ID, parts.form.value("project"))
	require.Contains(t, parts.View(), projection.NoProjectTitle)
	runStatus(t, keysTo(parts, " rebuilt", "ctrl+s"))

	gotPart, err := env.Store.GetPart(env.Ctx, carb.ID)
	require.NoError(t, err)
	require.Equal(t, "Carb kit rebuilt", gotPart.Name)
	require.Equal(t, cb.ID, gotPart.ProjectID, "editing does not unlink the part")

	tasks := NewTasksView(env)
	tasks.SetSize(100, 30)
	tasks.SetState(load(t, env))
	keysTo(tasks, "e")
	require.Equal(t, cb.ID, tasks.form.value("project"))
	runStatus(t, keysTo(tasks, " twice", "ctrl+s"))

	gotTask, err := env.Store.GetTask(env.Ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, "Rebuild carbs twice", gotTask.Title)
	require.Equal(t, cb.ID, gotTask.ProjectID)
}

func TestPartsViewFormValidatesNumbers(t *testing.T) {
	env := newTestEnv(t)
	v := NewPartsView(env)
	v.SetState(load(t, env))

	// name, project, status, supplier, price
	keysTo(v, "n", "Chain", "tab", "tab", "tab", "tab", "abc")
	require.Nil(t, keysTo(v, "ctrl+s"))
	require.Equal(t, "Price must be a positive number", v.form.err)

	keysTo(v, "backspace", "backspace", "backspace", "12.5")
	runStatus(t, keysTo(v, "ctrl+s"))

	parts, err := env.Store.ListParts(env.Ctx)
	require.NoError(t, err)
	require.Len(t, parts, 1)
	require.Equal(t, "Chain", parts[0].Name)
	require.Equal(t, 12.5, parts[0].Price)
	require.Equal(t, 1, parts[0].Qty)
	require.Empty(t, parts[0].ProjectID)
}

func TestTasksViewCreateAndAdvance(t *testing.T) {
	env := newTestEnv(t)
	v := NewTasksView(env)
	v.SetState(load(t, env))

	// title, project, due
	keysTo(v, "n", "Strip frame", "tab", "tab", "tomorrow")
	require.Nil(t, keysTo(v, "ctrl+s"))
	require.NotEmpty(t, v.form.err, "bad due date is rejected")

	for range len("tomorrow") {
		keysTo(v, "backspace")
	}
	runStatus(t, keysTo(v, "2024-03-15", "ctrl+s"))

	v.SetState(load(t, env))
	require.Len(t, v.rows, 1)
	require.Equal(t, "2024-03-15", v.rows[0].Due)
	require.Equal(t, models.TaskTodo, v.rows[0].Status)
	require.Equal(t, models.PriorityMed, v.rows[0].Priority)

	runStatus(t, keysTo(v, "a"))
	v.SetState(load(t, env))
	require.Equal(t, models.TaskDoing, v.rows[0].Status)

	keysTo(v, "s", "s")
	require.Equal(t, models.TaskDoing, v.filters.status)
	require.Len(t, v.rows, 1)
}

func TestCalendarViewNavigation(t *testing.T) {
	env := newTestEnv(t)
	for _, due := range []string{"2024-03-02", "2024-03-15", "2024-04-01"} {
		tk := models.NewTask("Job " + due)
		tk.Due = due
		require.NoError(t, env.Store.CreateTask(env.Ctx, &tk))
	}

	v := NewCalendarView(env, "2024-03")
	v.now = func() time.Time { return time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC) }
	v.SetSize(100, 40)
	v.SetState(load(t, env))
	require.Equal(t, "2024-03", v.Month())
	require.Len(t, v.tasks, 2)
	require.Contains(t, v.View(), "March 2024")

	keysTo(v, "right")
	require.Equal(t, "2024-04", v.Month())
	require.Len(t, v.tasks, 1)

	keysTo(v, "left", "left")
	require.Equal(t, "2024-02", v.Month())
	require.Empty(t, v.tasks)
	require.Contains(t, v.View(), "Nothing due")

	keysTo(v, "t")
	require.Equal(t, "2025-06", v.Month())

	v.month = "2024-03"
	v.refresh()
	runStatus(t, keysTo(v, "a"))
	v.SetState(load(t, env))
	require.Equal(t, models.TaskDoing, v.tasks[0].Status)
}

func TestCalendarViewFallsBackToCurrentMonth(t *testing.T) {
	env := newTestEnv(t)
	v := NewCalendarView(env, "March")
	require.Equal(t, projection.CurrentMonth(time.Now()), v.Month())
}

func TestSettingsView(t *testing.T) {
	env := newTestEnv(t)
	_, _ = seedParts(t, env)

	v := NewSettingsView(env)
	v.ExportDir = t.TempDir()
	v.SetSize(80, 30)
	v.SetState(load(t, env))
	require.Contains(t, v.View(), db.DefaultCurrency)

	keysTo(v, "e", "backspace", "$", "tab", "Old Bikes Ltd")
	runStatus(t, keysTo(v, "ctrl+s"))
	cur, err := env.Store.GetSetting(env.Ctx, db.SettingCurrency)
	require.NoError(t, err)
	require.Equal(t, "$", cur)
	biz, err := env.Store.GetSetting(env.Ctx, db.SettingBizName)
	require.NoError(t, err)
	require.Equal(t, "Old Bikes Ltd", biz)

	msg := runStatus(t, keysTo(v, "x"))
	require.NoError(t, msg.Err)
	path := filepath.Join(v.ExportDir, snapshot.DefaultFilename())
	_, err = os.Stat(path)
	require.NoError(t, err)

	keysTo(v, "X")
	require.True(t, v.Capturing())
	runStatus(t, keysTo(v, "y"))
	n, err := env.Store.Count(env.Ctx, db.Parts)
	require.NoError(t, err)
	require.Zero(t, n)

	keysTo(v, "i")
	require.Equal(t, path, v.form.value("path"))
	msg = runStatus(t, keysTo(v, "ctrl+s"))
	require.NoError(t, msg.Err)
	require.Contains(t, msg.Text, "imported")

	n, err = env.Store.Count(env.Ctx, db.Parts)
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestSettingsViewImportReportsErrors(t *testing.T) {
	env := newTestEnv(t)
	v := NewSettingsView(env)
	v.ExportDir = t.TempDir()
	v.SetState(load(t, env))

	keysTo(v, "i")
	msg := runStatus(t, keysTo(v, "ctrl+s"))
	require.Error(t, msg.Err, "missing file")
}

func TestFilterBarFitsWidth(t *testing.T) {
	fb := newFilterBar(models.PartStatuses, "Search parts...")
	projects := projection.ProjectOptions([]models.Project{models.NewProject("A very long restoration project title")}, projection.All)

	out := fb.view(styles.NewStyles(), 40, projects)
	for _, line := range strings.Split(out, "\n") {
		require.LessOrEqual(t, lipgloss.Width(line), 40)
	}
	require.True(t, strings.HasPrefix(out, " "), "the bar is indented")
}

func TestCycleHelpers(t *testing.T) {
	t.Parallel()
	all := []models.TaskStatus{models.TaskTodo, models.TaskDoing}
	require.Equal(t, models.TaskTodo, cycleFilter(all, ""))
	require.Equal(t, models.TaskDoing, cycleFilter(all, models.TaskTodo))
	require.Equal(t, models.TaskStatus(""), cycleFilter(all, models.TaskDoing))

	opts := []projection.Option{{ID: "", Label: "All"}, {ID: "a", Label: "A"}}
	require.Equal(t, "a", cycleOption(opts, ""))
	require.Equal(t, "", cycleOption(opts, "a"))
	require.Equal(t, "", cycleOption(opts, "gone"))

	require.Equal(t, "abc…", truncate("abcdef", 4))
	require.Equal(t, "abc", truncate("abc", 4))
}

func TestCursorList(t *testing.T) {
	t.Parallel()
	var l cursorList
	l.move(5, 10, 3)
	require.Equal(t, 5, l.cursor)
	start, end := l.window(10, 3)
	require.Equal(t, 3, start)
	require.Equal(t, 6, end)

	l.fit(2, 3)
	require.Equal(t, 1, l.cursor)
	start, end = l.window(2, 3)
	require.Equal(t, 1, start)
	require.Equal(t, 2, end)
}
