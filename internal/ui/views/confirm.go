package views

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/refurb/internal/ui/styles"
)

// confirm is a y/n prompt guarding a destructive action
type confirm struct {
	active bool
	title  string
	detail string
	onYes  tea.Cmd
}

func (c *confirm) ask(title, detail string, onYes tea.Cmd) {
	c.active = true
	c.title = title
	c.detail = detail
	c.onYes = onYes
}

func (c *confirm) update(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		c.active = false
		return c.onYes
	case "n", "N", "esc":
		c.active = false
	}
	return nil
}

func (c *confirm) view(s *styles.Styles, width, height int) string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render(c.title),
		"",
		s.TitleMuted.Render(c.detail),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)
	return lipgloss.Place(styles.ContentWidth(width), height,
		lipgloss.Center, lipgloss.Center,
		s.Popup.Render(content),
	)
}
