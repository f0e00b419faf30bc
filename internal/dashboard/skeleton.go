package dashboard

import "strings"

const skeletonBar = "▬"

// renderSkeleton draws four placeholder bars of differing widths.
func renderSkeleton(width int, styles Styles) string {
	if width < 4 {
		width = 4
	}

	fractions := [...][2]int{{1, 1}, {1, 2}, {3, 5}, {2, 5}}
	lines := make([]string, 0, len(fractions))

	for _, f := range fractions {
		n := width * f[0] / f[1]
		lines = append(lines, styles.Skeleton.Render(strings.Repeat(skeletonBar, n)))
	}

	return strings.Join(lines, "\n")
}
