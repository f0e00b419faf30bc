// Package layout computes where the dashboard sidebar sits in the terminal.
package layout

const (
	// DefaultSidebarWidth is used when no width is configured.
	DefaultSidebarWidth = 36
	// MinSidebarWidth is the narrowest sidebar still drawn. Narrower
	// terminals hide it entirely.
	MinSidebarWidth = 24

	minHistoryRows = 3
)

// Frame describes the sidebar dimensions for one terminal size.
type Frame struct {
	Width  int
	Height int

	SidebarVisible bool
	SidebarWidth   int

	// HistoryRows is the viewport height left for the download timeline.
	HistoryRows int
}

// ClampTerminalSize enforces minimum terminal dimensions.
func ClampTerminalSize(width, height int) (clampedWidth, clampedHeight int) {
	if width < 0 {
		width = 0
	}

	if height < 1 {
		height = 1
	}

	return width, height
}

// ComputeFrame sizes the sidebar for a terminal of width x height.
// preferred is the configured sidebar width; chromeRows is the number of
// rows taken by everything above and below the history viewport.
func ComputeFrame(width, height, preferred, chromeRows int) Frame {
	width, height = ClampTerminalSize(width, height)
	frame := Frame{Width: width, Height: height}

	if preferred <= 0 {
		preferred = DefaultSidebarWidth
	}

	if preferred < MinSidebarWidth {
		preferred = MinSidebarWidth
	}

	if width < MinSidebarWidth {
		return frame
	}

	sidebar := preferred
	if sidebar > width {
		sidebar = width
	}

	frame.SidebarVisible = true
	frame.SidebarWidth = sidebar

	frame.HistoryRows = height - chromeRows
	if frame.HistoryRows < minHistoryRows {
		frame.HistoryRows = minHistoryRows
	}

	return frame
}
