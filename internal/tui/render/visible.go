// Package render holds width-aware string helpers for terminal views.
package render

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

// Ellipsis marks clipped text.
const Ellipsis = "…"

// VisibleLength returns the number of terminal cells value occupies,
// excluding ANSI escape sequences.
func VisibleLength(value string) int {
	return runewidth.StringWidth(ansi.Strip(value))
}

// PadRightVisible appends spaces until the string reaches width visible cells.
func PadRightVisible(value string, width int) string {
	padding := width - VisibleLength(value)
	if padding <= 0 {
		return value
	}

	return value + strings.Repeat(" ", padding)
}

// Truncate clips value to at most width cells, ending in an ellipsis when
// anything was cut. Escape sequences are preserved.
func Truncate(value string, width int) string {
	if width <= 0 {
		return ""
	}

	if VisibleLength(value) <= width {
		return value
	}

	return ansi.Truncate(value, width, Ellipsis)
}
