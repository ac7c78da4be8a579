package browser

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/kudosx/kudosx/internal/status"
)

// Theme holds the browser palette.
type Theme struct {
	Accent    lipgloss.Color
	Installed lipgloss.Color
	Update    lipgloss.Color
	Error     lipgloss.Color
	Dim       lipgloss.Color
	Border    lipgloss.Color
}

// DefaultTheme is the palette used by Run.
var DefaultTheme = Theme{
	Accent:    lipgloss.Color("#d77757"),
	Installed: lipgloss.Color("42"),
	Update:    lipgloss.Color("214"),
	Error:     lipgloss.Color("196"),
	Dim:       lipgloss.Color("241"),
	Border:    lipgloss.Color("240"),
}

// StyleSet is the set of styles derived from a Theme.
type StyleSet struct {
	Theme     Theme
	Title     lipgloss.Style
	ActiveTab lipgloss.Style
	Tab       lipgloss.Style
	Frame     lipgloss.Style
	Notice    lipgloss.Style
	ErrNotice lipgloss.Style
	Help      lipgloss.Style
	KbdKey    lipgloss.Style
	Table     table.Styles
}

// NewStyleSet derives styles from t.
func NewStyleSet(t Theme) *StyleSet {
	tbl := table.DefaultStyles()
	tbl.Header = tbl.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.Border).
		BorderBottom(true).
		Bold(true)
	tbl.Selected = tbl.Selected.
		Foreground(lipgloss.Color("230")).
		Background(t.Accent).
		Bold(false)

	return &StyleSet{
		Theme:     t,
		Title:     lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		ActiveTab: lipgloss.NewStyle().Bold(true).Foreground(t.Accent).Underline(true),
		Tab:       lipgloss.NewStyle().Foreground(t.Dim),
		Frame:     lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(t.Border),
		Notice:    lipgloss.NewStyle().Foreground(t.Installed),
		ErrNotice: lipgloss.NewStyle().Foreground(t.Error),
		Help:      lipgloss.NewStyle().Foreground(t.Dim),
		KbdKey:    lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		Table:     tbl,
	}
}

// StateLabel returns the display label for a skill state. Table cells are
// kept unstyled so column widths stay exact.
func StateLabel(s status.State) string {
	switch s {
	case status.StateUpdate:
		return "↑ update"
	case status.StateInstalled:
		return "✓ installed"
	default:
		return "· available"
	}
}
