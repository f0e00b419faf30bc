package dashboard

import "github.com/charmbracelet/lipgloss"

// Category colors.
var (
	colorTeal   = lipgloss.Color("#12B886")
	colorCyan   = lipgloss.Color("#15AABF")
	colorYellow = lipgloss.Color("#FAB005")
	colorRed    = lipgloss.Color("#FA5252")
	colorDark   = lipgloss.Color("#5C5F66")
	colorViolet = lipgloss.Color("#7950F2")
	colorIndigo = lipgloss.Color("#4C6EF5")
	colorDimmed = lipgloss.Color("#909296")
)

// Styles holds every style the sidebar draws with.
type Styles struct {
	Divider   lipgloss.Style
	RowLabel  lipgloss.Style
	RowFocus  lipgloss.Style
	Skeleton  lipgloss.Style
	Title     lipgloss.Style
	Dimmed    lipgloss.Style
	FileName  lipgloss.Style
	Chapter   lipgloss.Style
	TimeBadge lipgloss.Style
	SizeBadge lipgloss.Style
	Timeline  lipgloss.Style
	Notice    lipgloss.Style

	// Colored enables per-category badge colors.
	Colored bool
}

// DefaultStyles returns the colored sidebar theme.
func DefaultStyles() Styles {
	return Styles{
		Divider:   lipgloss.NewStyle().Foreground(colorDimmed),
		RowLabel:  lipgloss.NewStyle().Bold(true),
		RowFocus:  lipgloss.NewStyle().Reverse(true),
		Skeleton:  lipgloss.NewStyle().Foreground(lipgloss.Color("#373A40")),
		Title:     lipgloss.NewStyle().Bold(true),
		Dimmed:    lipgloss.NewStyle().Foreground(colorDimmed),
		FileName:  lipgloss.NewStyle().Bold(true),
		Chapter:   lipgloss.NewStyle().Foreground(colorIndigo),
		TimeBadge: lipgloss.NewStyle().Foreground(colorCyan),
		SizeBadge: lipgloss.NewStyle().Foreground(colorViolet),
		Timeline:  lipgloss.NewStyle().Foreground(colorIndigo),
		Notice:    lipgloss.NewStyle().Foreground(colorYellow),
		Colored:   true,
	}
}

// PlainStyles returns styles that add no escape sequences.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()

	return Styles{
		Divider:   plain,
		RowLabel:  plain,
		RowFocus:  plain,
		Skeleton:  plain,
		Title:     plain,
		Dimmed:    plain,
		FileName:  plain,
		Chapter:   plain,
		TimeBadge: plain,
		SizeBadge: plain,
		Timeline:  plain,
		Notice:    plain,
	}
}

func (s Styles) badge(color lipgloss.Color) lipgloss.Style {
	if !s.Colored {
		return lipgloss.NewStyle()
	}

	return lipgloss.NewStyle().Foreground(color).Bold(true)
}
