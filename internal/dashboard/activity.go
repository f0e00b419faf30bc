package dashboard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kaizoku-dev/kzk/internal/client"
	"github.com/kaizoku-dev/kzk/internal/tui/render"
)

// Category names one job state shown in the activity table.
type Category string

// Categories, in display order.
const (
	CategoryActive    Category = "active"
	CategoryQueued    Category = "queued"
	CategoryScheduled Category = "scheduled"
	CategoryFailed    Category = "failed"
	CategoryCompleted Category = "completed"
	CategoryOutOfSync Category = "outOfSync"
)

type rowSpec struct {
	category Category
	label    string
	icon     string
	color    lipgloss.Color
	queue    string
	status   string
	local    bool
	count    func(client.ActivitySummary) int
}

// activityTable is the fixed category to presentation mapping.
var activityTable = [...]rowSpec{
	{
		category: CategoryActive, label: "Active", icon: "↯", color: colorTeal,
		queue: "downloadQueue", status: "active",
		count: func(s client.ActivitySummary) int { return s.Active },
	},
	{
		category: CategoryQueued, label: "Queued", icon: "◷", color: colorCyan,
		queue: "downloadQueue", status: "waiting",
		count: func(s client.ActivitySummary) int { return s.Queued },
	},
	{
		category: CategoryScheduled, label: "Scheduled", icon: "▦", color: colorYellow,
		queue: "checkChaptersQueue", status: "delayed",
		count: func(s client.ActivitySummary) int { return s.Scheduled },
	},
	{
		category: CategoryFailed, label: "Failed", icon: "▲", color: colorRed,
		queue: "downloadQueue", status: "failed",
		count: func(s client.ActivitySummary) int { return s.Failed },
	},
	{
		category: CategoryCompleted, label: "Completed", icon: "✓", color: colorDark,
		queue: "downloadQueue", status: "completed",
		count: func(s client.ActivitySummary) int { return s.Completed },
	},
	{
		category: CategoryOutOfSync, label: "Out of Sync", icon: "↻", color: colorViolet,
		local: true,
		count: func(s client.ActivitySummary) int { return s.OutOfSync },
	},
}

// Row is one line of the activity table. Exactly one of Target and Action
// is set.
type Row struct {
	Category Category
	Label    string
	Icon     string
	Color    lipgloss.Color
	Count    int

	// Target is the queue view opened in a browser.
	Target string
	// Action runs locally instead of navigating.
	Action func()
}

var (
	errNilActivity   = errors.New("activity feed returned no record")
	errRowNoAction   = errors.New("row has neither a target nor an action")
	errRowTwoActions = errors.New("row has both a target and an action")
)

// Validate checks that exactly one of Target and Action is set.
func (r Row) Validate() error {
	switch {
	case r.Target == "" && r.Action == nil:
		return fmt.Errorf("%s: %w", r.Category, errRowNoAction)
	case r.Target != "" && r.Action != nil:
		return fmt.Errorf("%s: %w", r.Category, errRowTwoActions)
	default:
		return nil
	}
}

// Activate runs the row's action, or opens its target when it has none.
func (r Row) Activate(opener Opener) error {
	if r.Action != nil {
		r.Action()
		return nil
	}

	if r.Target == "" {
		return r.Validate()
	}

	if opener == nil {
		return fmt.Errorf("%s: no opener for %s", r.Category, r.Target)
	}

	if err := opener.Open(r.Target); err != nil {
		return fmt.Errorf("open %s: %w", r.Target, err)
	}

	return nil
}

// ActivityRows builds the six rows for summary in their fixed order.
// resolve turns a queue and status filter into an absolute URL; onResync
// backs the out-of-sync row and may be nil.
func ActivityRows(summary client.ActivitySummary, resolve func(queue, status string) string, onResync func()) []Row {
	if onResync == nil {
		onResync = func() {}
	}

	rows := make([]Row, 0, len(activityTable))

	for _, def := range activityTable {
		row := Row{
			Category: def.category,
			Label:    def.label,
			Icon:     def.icon,
			Color:    def.color,
			Count:    def.count(summary),
		}

		if def.local {
			row.Action = onResync
		} else {
			row.Target = resolve(def.queue, def.status)
		}

		rows = append(rows, row)
	}

	return rows
}

// renderActivity draws rows at width cells. focused is the highlighted row
// index, or -1 for none.
func renderActivity(rows []Row, width, focused int, styles Styles) string {
	lines := make([]string, 0, len(rows))

	for i, row := range rows {
		badge := styles.badge(row.Color).Render("● " + strconv.Itoa(row.Count))

		marker := " "
		if i == focused {
			marker = "›"
		}

		left := marker + " " + row.Icon + " " + styles.RowLabel.Render(row.Label)
		gap := width - render.VisibleLength(left) - render.VisibleLength(badge)

		if gap < 1 {
			gap = 1
		}

		line := left + strings.Repeat(" ", gap) + badge
		if i == focused {
			line = styles.RowFocus.Render(line)
		}

		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}
