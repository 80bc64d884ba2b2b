package views

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/refurb/internal/projection"
	"github.com/tgienger/refurb/internal/ui/keys"
	"github.com/tgienger/refurb/internal/ui/styles"
)

// filterBar holds the project, status and text filters shared by the
// parts and tasks tabs
type filterBar[S ~string] struct {
	projectID string
	status    S
	statuses  []S
	search    textinput.Model
	searching bool
}

func newFilterBar[S ~string](statuses []S, placeholder string) filterBar[S] {
	search := textinput.New()
	search.Placeholder = placeholder
	search.CharLimit = 100
	return filterBar[S]{statuses: statuses, search: search}
}

func (f *filterBar[S]) query() string {
	return f.search.Value()
}

// update handles filter keys. It reports whether the key was consumed.
func (f *filterBar[S]) update(msg tea.KeyMsg, km keys.KeyMap, projects []projection.Option) (bool, tea.Cmd) {
	if f.searching {
		switch msg.Type {
		case tea.KeyEsc:
			f.search.Reset()
			fallthrough
		case tea.KeyEnter:
			f.searching = false
			f.search.Blur()
			return true, nil
		}
		var cmd tea.Cmd
		f.search, cmd = f.search.Update(msg)
		return true, cmd
	}

	switch {
	case key.Matches(msg, km.Search):
		f.searching = true
		f.search.Focus()
		return true, textinput.Blink
	case key.Matches(msg, km.Project):
		f.projectID = cycleOption(projects, f.projectID)
		return true, nil
	case key.Matches(msg, km.Status):
		f.status = cycleFilter(f.statuses, f.status)
		return true, nil
	}
	return false, nil
}

func (f *filterBar[S]) view(s *styles.Styles, width int, projects []projection.Option) string {
	searchStyle := s.Input
	if f.searching {
		searchStyle = s.InputFocused
	}
	searchWidth := clamp(width-50, 12, 30)
	row := lipgloss.JoinHorizontal(lipgloss.Center,
		searchStyle.Width(searchWidth).Render(f.search.View()),
		" ",
		s.Button.Render("p: "+truncate(optionLabel(projects, f.projectID), 16)),
		" ",
		s.Button.Render("s: "+filterLabel(f.status)),
	)
	return s.FilterBar.MaxWidth(width).Render(row)
}
