package views

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/tgienger/refurb/internal/db"
	"github.com/tgienger/refurb/internal/projection"
	"github.com/tgienger/refurb/internal/ui/keys"
	"github.com/tgienger/refurb/internal/ui/styles"
)

// writeTimeout bounds a single repository call made from the UI
const writeTimeout = 10 * time.Second

// Env is shared by every tab
type Env struct {
	Ctx    context.Context
	Store  *db.DB
	Styles *styles.Styles
	Keys   keys.KeyMap
	Log    *slog.Logger
}

// Tab is one screen of the app. The app hands each a fresh State after
// every change; views read the database directly only for a part's full
// photo list.
type Tab interface {
	SetState(s *projection.State)
	SetSize(width, height int)
	Update(msg tea.KeyMsg) tea.Cmd
	View() string
	// Capturing reports whether the tab is in a form, search box or prompt
	// and needs every key, including the ones the app would otherwise take.
	Capturing() bool
	Bindings() []key.Binding
}

// StatusMsg reports the outcome of an action on the status line
type StatusMsg struct {
	Text string
	Err  error
}

// FilterProjectMsg asks the parts and tasks tabs to show one project
type FilterProjectMsg struct {
	ProjectID string
}

// mutate runs fn off the UI goroutine. The store notifies subscribers after
// the write commits, which is what triggers the reload, so nothing here
// touches view state.
func (e *Env) mutate(done string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(e.Ctx, writeTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			e.Log.Error("ui action failed", "action", done, "error", err)
			return StatusMsg{Err: err}
		}
		return StatusMsg{Text: done}
	}
}

func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}

// HelpLine renders bindings as "key desc • key desc"
func HelpLine(s *styles.Styles, bindings []key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, s.HelpKey.Render(h.Key)+" "+s.HelpDesc.Render(h.Desc))
	}
	return s.Help.Render(strings.Join(parts, " • "))
}

func optionLabel(opts []projection.Option, id string) string {
	for _, o := range opts {
		if o.ID == id {
			return o.Label
		}
	}
	return projection.NoProjectTitle
}

// cycleOption returns the id after current in opts, wrapping
func cycleOption(opts []projection.Option, current string) string {
	if len(opts) == 0 {
		return ""
	}
	for i, o := range opts {
		if o.ID == current {
			return opts[(i+1)%len(opts)].ID
		}
	}
	return opts[0].ID
}

// cycleFilter steps through "" (all) followed by every value of all
func cycleFilter[T ~string](all []T, current T) T {
	if current == "" {
		return all[0]
	}
	for i, v := range all {
		if v == current && i < len(all)-1 {
			return all[i+1]
		}
	}
	return ""
}

func filterLabel[T ~string](v T) string {
	if v == "" {
		return "all"
	}
	return string(v)
}

func pill(s *styles.Styles, text string, color lipgloss.Color) string {
	return s.Badge.Foreground(color).Render(fmt.Sprintf("%-9s", text))
}
