package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tgienger/refurb/internal/db"
	"github.com/tgienger/refurb/internal/models"
	"github.com/tgienger/refurb/internal/snapshot"
)

type testEnv struct {
	dir    string
	dbPath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("REFURB_CONFIG", "")
	return &testEnv{dir: dir, dbPath: filepath.Join(dir, "refurb.db")}
}

func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand(&out, testBuildInfo())
	cmd.SetArgs(append([]string{"--db", e.dbPath, "--log-file", filepath.Join(e.dir, "refurb.log")}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	require.NoError(t, err, out)
	return out
}

func (e *testEnv) createdID(t *testing.T, args ...string) string {
	t.Helper()
	out := e.mustRun(t, append([]string{"--json"}, args...)...)
	var rec struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	require.NotEmpty(t, rec.ID)
	return rec.ID
}

func testBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   "1.2.3",
		Commit:    "abc123",
		BuildTime: "2026-02-19T00:00:00Z",
	}
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var withExit interface{ ExitCode() int }
	if errors.As(err, &withExit) {
		return withExit.ExitCode()
	}
	return -1
}

func TestVersionCommand(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "version")
	require.Equal(t, "refurb 1.2.3 (commit: abc123, built: 2026-02-19T00:00:00Z)\n", out)

	out = env.mustRun(t, "--json", "version")
	var build BuildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &build))
	require.Equal(t, testBuildInfo(), build)
}

func TestRootHasCommands(t *testing.T) {
	cmd := NewRootCommand(&bytes.Buffer{}, testBuildInfo())
	for _, name := range []string{"db", "config", "log-level", "log-file", "json"} {
		require.NotNilf(t, cmd.PersistentFlags().Lookup(name), "missing flag %q", name)
	}
	for _, path := range [][]string{
		{"export"}, {"import"}, {"parts"}, {"tasks"}, {"calendar"},
		{"project", "add"}, {"part", "add"}, {"task", "add"}, {"photo", "add"},
		{"advance", "part"}, {"advance", "task"}, {"settings", "get"}, {"settings", "set"},
		{"clear"}, {"sweep"}, {"version"},
	} {
		found, _, err := cmd.Find(path)
		require.NoErrorf(t, err, "expected command %v", path)
		require.Equal(t, path[len(path)-1], found.Name())
	}
}

func TestRootRunsTUI(t *testing.T) {
	env := newTestEnv(t)

	called := false
	orig := runTUIFn
	runTUIFn = func(ctx context.Context, s *session) error {
		called = true
		require.Equal(t, env.dbPath, s.store.Path())
		return nil
	}
	t.Cleanup(func() { runTUIFn = orig })

	env.mustRun(t)
	require.True(t, called)
}

func TestUnknownFlagIsUsageError(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "--no-such-flag")
	require.Equal(t, ExitCodeUsage, exitCode(err))
}

func TestStorageUnavailableIsFatal(t *testing.T) {
	env := newTestEnv(t)

	held, err := db.Open(context.Background(), env.dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { held.Close() })

	_, err = env.run(t, "parts")
	require.Equal(t, ExitCodeUnavailable, exitCode(err))
	require.ErrorIs(t, err, db.ErrStorageUnavailable)
	require.Contains(t, err.Error(), "fatal")
}

func TestAddListAndAdvance(t *testing.T) {
	env := newTestEnv(t)

	projectID := env.createdID(t, "project", "add", "Honda CB550", "--reg", "ABC 123")
	partID := env.createdID(t, "part", "add", "Carb kit", "--project", "honda cb550", "--price", "45.5", "--qty", "2", "--supplier", "David Silver")
	env.createdID(t, "part", "add", "Tyres", "--status", "ordered")
	env.createdID(t, "task", "add", "Strip frame", "--project", projectID, "--due", "2024-03-15")
	env.createdID(t, "task", "add", "Order paint")

	out := env.mustRun(t, "parts", "--project", projectID)
	require.Contains(t, out, "Carb kit")
	require.Contains(t, out, "£45.50")
	require.Contains(t, out, "project=Honda CB550")
	require.NotContains(t, out, "Tyres")

	out = env.mustRun(t, "parts", "--query", "SILVER")
	require.Contains(t, out, "Carb kit")

	out = env.mustRun(t, "parts", "--status", "ordered")
	require.Contains(t, out, "Tyres")
	require.Contains(t, out, "project=—")

	out = env.mustRun(t, "tasks")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "Order paint", "undated tasks sort first")
	require.Contains(t, lines[1], "2024-03-15")

	out = env.mustRun(t, "advance", "part", partID)
	require.Contains(t, out, "needed → ordered")
	for _, want := range []string{"ordered → received", "received → installed", "installed → needed"} {
		require.Contains(t, env.mustRun(t, "advance", "part", partID), want)
	}
}

func TestAddRejectsInvalidInput(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "project", "add", "")
	require.Equal(t, ExitCodeInvalid, exitCode(err))
	require.ErrorIs(t, err, models.ErrInvalid)

	_, err = env.run(t, "task", "add", "Fit chain", "--due", "next week")
	require.Equal(t, ExitCodeInvalid, exitCode(err))

	_, err = env.run(t, "part", "add", "Chain", "--project", "missing")
	require.Equal(t, ExitCodeUsage, exitCode(err))

	_, err = env.run(t, "parts", "--status", "lost")
	require.Equal(t, ExitCodeUsage, exitCode(err))

	_, err = env.run(t, "advance", "task", "nope")
	require.Equal(t, ExitCodeNotFound, exitCode(err))
}

func TestCalendar(t *testing.T) {
	env := newTestEnv(t)
	env.createdID(t, "task", "add", "Strip frame", "--due", "2024-03-15")
	env.createdID(t, "task", "add", "Balance carbs", "--due", "2024-02-28")
	env.createdID(t, "task", "add", "Fit tyres", "--due", "2024-04-01")

	out := env.mustRun(t, "calendar", "2024-03")
	require.Contains(t, out, "2024-03-15\n  [todo] Strip frame (—)")
	require.NotContains(t, out, "Balance carbs")
	require.NotContains(t, out, "Fit tyres")

	out = env.mustRun(t, "calendar", "2023-01")
	require.Equal(t, "no tasks due in 2023-01\n", out)

	_, err := env.run(t, "calendar", "March")
	require.Equal(t, ExitCodeUsage, exitCode(err))
}

func TestPhotoAdd(t *testing.T) {
	env := newTestEnv(t)
	partID := env.createdID(t, "part", "add", "Headlamp")

	img := filepath.Join(env.dir, "lamp.png")
	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 32)...)
	require.NoError(t, os.WriteFile(img, png, 0644))

	out := env.mustRun(t, "--json", "--log-level", "debug", "photo", "add", partID, img)
	require.Contains(t, out, `"type": "image/png"`)
	require.Contains(t, out, `"name": "lamp.png"`)

	out = env.mustRun(t, "parts")
	require.Contains(t, out, "photos=1")

	logData, err := os.ReadFile(filepath.Join(env.dir, "refurb.log"))
	require.NoError(t, err)
	require.Contains(t, string(logData), "photo attached")
	require.NotContains(t, string(logData), "base64,")

	_, err = env.run(t, "photo", "add", "missing-part", img)
	require.Equal(t, ExitCodeNotFound, exitCode(err))

	_, err = env.run(t, "photo", "add", partID, filepath.Join(env.dir, "missing.png"))
	require.Equal(t, ExitCodeIO, exitCode(err))
}

func TestSettings(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, "£\n", env.mustRun(t, "settings", "get", "currency"))
	require.Equal(t, "\n", env.mustRun(t, "settings", "get", "bizName"))

	env.mustRun(t, "settings", "set", "currency", "$")
	require.Equal(t, "$\n", env.mustRun(t, "settings", "get", "currency"))

	out := env.mustRun(t, "settings", "list")
	require.Contains(t, out, "currency = $")
}

func TestExportImport(t *testing.T) {
	env := newTestEnv(t)
	env.createdID(t, "project", "add", "Honda CB550")
	env.createdID(t, "part", "add", "Carb kit", "--project", "Honda CB550")

	file := filepath.Join(env.dir, snapshot.DefaultFilename())
	out := env.mustRun(t, "export", "-o", file)
	require.Contains(t, out, "exported to")

	stdout := env.mustRun(t, "export", "-o", "-")
	require.Contains(t, stdout, `"projects": [`)

	other := newTestEnvAt(t, env.dir, "copy.db")
	out = other.mustRun(t, "import", file)
	require.Equal(t, "imported 1 projects, 1 parts, 0 tasks, 1 settings, 0 photos\n", out)

	out = other.mustRun(t, "parts")
	require.Contains(t, out, "project=Honda CB550")

	bad := filepath.Join(env.dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`["nope"]`), 0644))
	_, err := other.run(t, "import", bad)
	require.Equal(t, ExitCodeInvalid, exitCode(err))
	require.ErrorIs(t, err, snapshot.ErrMalformedSnapshot)

	_, err = other.run(t, "import")
	require.Equal(t, ExitCodeUsage, exitCode(err))
}

func newTestEnvAt(t *testing.T, dir, name string) *testEnv {
	t.Helper()
	return &testEnv{dir: dir, dbPath: filepath.Join(dir, name)}
}

func TestClearAndSweep(t *testing.T) {
	env := newTestEnv(t)
	projectID := env.createdID(t, "project", "add", "Honda CB550")
	env.createdID(t, "part", "add", "Carb kit", "--project", projectID)

	_, err := env.run(t, "project", "rm", projectID)
	require.Equal(t, ExitCodeUsage, exitCode(err))
	env.mustRun(t, "project", "rm", projectID, "--yes")

	out := env.mustRun(t, "parts")
	require.Contains(t, out, "project=—", "removing a project leaves its parts")

	_, err = env.run(t, "sweep")
	require.Equal(t, ExitCodeUsage, exitCode(err))
	out = env.mustRun(t, "sweep", "--yes")
	require.Equal(t, "removed 0 photos, detached 1 parts and 0 tasks\n", out)

	_, err = env.run(t, "clear")
	require.Equal(t, ExitCodeUsage, exitCode(err))
	out = env.mustRun(t, "clear", "--yes")
	require.Equal(t, "all data cleared (2 records)\n", out, "the detached part and the seeded currency")
	require.Empty(t, env.mustRun(t, "parts"))
}

func TestConfigFileFlag(t *testing.T) {
	env := newTestEnv(t)
	cfgPath := filepath.Join(env.dir, "refurb.yaml")
	dbPath := filepath.Join(env.dir, "from-config.db")
	require.NoError(t, os.WriteFile(cfgPath, []byte("database:\n  path: "+dbPath+"\nui:\n  month: \"2024-03\"\n"), 0644))

	var out bytes.Buffer
	cmd := NewRootCommand(&out, testBuildInfo())
	cmd.SetArgs([]string{"--config", cfgPath, "--log-file", filepath.Join(env.dir, "cfg.log"), "calendar"})
	require.NoError(t, cmd.Execute())
	require.Equal(t, "no tasks due in 2024-03\n", out.String())

	_, err := os.Stat(dbPath)
	require.NoError(t, err)

	_, err = env.run(t, "--config", filepath.Join(env.dir, "missing.yaml"), "parts")
	require.Equal(t, ExitCodeUsage, exitCode(err))
}

func TestConfigInitAndShow(t *testing.T) {
	env := newTestEnv(t)
	cfgPath := filepath.Join(env.dir, "conf", "refurb.yaml")

	out := env.mustRun(t, "--config", cfgPath, "config", "init")
	require.Equal(t, "wrote "+cfgPath+"\n", out)
	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	require.Contains(t, string(data), env.dbPath)

	_, err = env.run(t, "--config", cfgPath, "config", "init")
	require.Equal(t, ExitCodeUsage, exitCode(err))
	env.mustRun(t, "--config", cfgPath, "config", "init", "--force")

	var out2 bytes.Buffer
	cmd := NewRootCommand(&out2, testBuildInfo())
	cmd.SetArgs([]string{"--config", cfgPath, "--json", "config", "show"})
	require.NoError(t, cmd.Execute())
	var shown struct {
		Database struct {
			Path string `json:"path"`
		} `json:"database"`
		Log struct {
			Level string `json:"level"`
		} `json:"log"`
	}
	require.NoError(t, json.Unmarshal(out2.Bytes(), &shown))
	require.Equal(t, env.dbPath, shown.Database.Path, "show reads the file init wrote")
	require.Equal(t, "info", shown.Log.Level)

	out = env.mustRun(t, "--config", cfgPath, "config", "show")
	require.Contains(t, out, "path: "+env.dbPath)
}

func TestConfigInitDefaultPath(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun(t, "config", "init")
	want := filepath.Join(env.dir, "config", "refurb", "config.yaml")
	require.Equal(t, "wrote "+want+"\n", out)
	_, err := os.Stat(want)
	require.NoError(t, err)
}
