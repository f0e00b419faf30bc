package dashboard

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jonboulle/clockwork"

	"github.com/kaizoku-dev/kzk/internal/client"
	"github.com/kaizoku-dev/kzk/internal/tui/render"
)

const (
	timelineBullet = "◆"
	timelineRail   = "┆"
	timeIcon       = "◷"
	sizeIcon       = "▤"
	coverIcon      = "▣"

	// nodeRows is the height of an unfocused node including its spacer.
	nodeRows = 5
)

// historyItem is one timeline node and the label it owns.
type historyItem struct {
	entry client.HistoryEntry
	cover string
	label *TimeLabel
}

// HistoryFeed is the download timeline. Nodes are keyed by entry id so a
// node and its label timer survive updates that still contain its id.
type HistoryFeed struct {
	clock  clockwork.Clock
	notify func(tea.Msg)

	// CoverURL resolves a manga cover reference for display. When nil the
	// reference is shown as sent.
	CoverURL func(cover string) string

	items []*historyItem
	byID  map[string]*historyItem
}

// NewHistoryFeed creates an empty feed. notify receives label ticks.
func NewHistoryFeed(clock clockwork.Clock, notify func(tea.Msg)) *HistoryFeed {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &HistoryFeed{
		clock:  clock,
		notify: notify,
		byID:   make(map[string]*historyItem),
	}
}

// Reconcile makes the feed show entries in the given order. Nodes whose id
// is still present are kept with their running labels, new ids are mounted
// and missing ids are unmounted. When an id repeats, the first occurrence
// wins. It returns how many nodes were mounted and unmounted.
func (f *HistoryFeed) Reconcile(entries []client.HistoryEntry) (mounted, unmounted int) {
	next := make([]*historyItem, 0, len(entries))
	nextByID := make(map[string]*historyItem, len(entries))

	for _, entry := range entries {
		if _, dup := nextByID[entry.ID]; dup {
			continue
		}

		item, ok := f.byID[entry.ID]
		if ok {
			item.entry = entry
			item.label.SetCreatedAt(entry.CreatedAt)
		} else {
			item = &historyItem{
				entry: entry,
				label: NewTimeLabel(entry.ID, entry.CreatedAt, f.clock, f.notify),
			}
			item.label.Mount()
			mounted++
		}

		item.cover = f.resolveCover(entry.Manga.Metadata.Cover)

		next = append(next, item)
		nextByID[entry.ID] = item
	}

	for id, item := range f.byID {
		if _, keep := nextByID[id]; !keep {
			item.label.Unmount()
			unmounted++
		}
	}

	f.items = next
	f.byID = nextByID

	return mounted, unmounted
}

func (f *HistoryFeed) resolveCover(cover string) string {
	if f.CoverURL == nil {
		return strings.TrimSpace(cover)
	}

	return f.CoverURL(cover)
}

// Tick routes a label tick to its node. It reports whether a label changed.
func (f *HistoryFeed) Tick(msg labelTickMsg) bool {
	item, ok := f.byID[msg.Key]
	if !ok {
		return false
	}

	return item.label.Refresh(msg.Gen)
}

// Close unmounts every label.
func (f *HistoryFeed) Close() {
	f.Reconcile(nil)
}

// Len returns the number of nodes.
func (f *HistoryFeed) Len() int {
	return len(f.items)
}

// IDs returns node ids in display order.
func (f *HistoryFeed) IDs() []string {
	ids := make([]string, len(f.items))
	for i, item := range f.items {
		ids[i] = item.entry.ID
	}

	return ids
}

// Label returns the label owned by node id, or nil.
func (f *HistoryFeed) Label(id string) *TimeLabel {
	if item, ok := f.byID[id]; ok {
		return item.label
	}

	return nil
}

// Offset returns the first row of node i at width when node focused is
// expanded.
func (f *HistoryFeed) Offset(i, focused, width int) int {
	rows := i * nodeRows
	if focused >= 0 && focused < i && focused < len(f.items) {
		rows += len(detailLines(f.items[focused], width-2, PlainStyles()))
	}

	return rows
}

// Render draws the timeline at width cells. focused is the expanded node,
// or -1. An empty feed renders as the empty string.
func (f *HistoryFeed) Render(width, focused int, styles Styles) string {
	if len(f.items) == 0 {
		return ""
	}

	var b strings.Builder

	for i, item := range f.items {
		if i > 0 {
			b.WriteString("\n")
			b.WriteString(styles.Timeline.Render(timelineRail))
			b.WriteString("\n")
		}

		b.WriteString(renderNode(item, width, i == focused, styles))
	}

	return b.String()
}

func renderNode(item *historyItem, width int, focused bool, styles Styles) string {
	entry := item.entry
	inner := width - 2
	rail := styles.Timeline.Render(timelineRail) + " "

	title := styles.Title.Render(TruncateTitle(entry.Manga.Title))
	badge := styles.Chapter.Render(ChapterBadge(entry.Chapter.Index))

	fill := width - 2 - render.VisibleLength(title) - render.VisibleLength(badge) - 2
	if fill < 1 {
		fill = 1
	}

	lines := []string{
		styles.Timeline.Render(timelineBullet) + " " + title + " " + styles.Dimmed.Render(strings.Repeat("·", fill)) + " " + badge,
	}

	if focused {
		for _, detail := range detailLines(item, inner, styles) {
			lines = append(lines, rail+detail)
		}
	}

	timeBadge := styles.TimeBadge.Render(timeIcon + " " + item.label.Text())
	sizeBadge := styles.SizeBadge.Render(sizeIcon + " " + FormatSize(entry.Size))

	lines = append(lines,
		rail+styles.Dimmed.Render(downloadedAsPrefix),
		rail+styles.FileName.Render(render.Truncate(entry.FileName, inner)),
		rail+timeBadge+"  "+sizeBadge,
	)

	return strings.Join(lines, "\n")
}

// detailLines is the expanded part of a focused node: the full title
// wrapped to inner cells, the absolute download time and the cover link
// when the manga has one.
func detailLines(item *historyItem, inner int, styles Styles) []string {
	if inner < 1 {
		inner = 1
	}

	wrapped := lipgloss.NewStyle().Width(inner).Render(item.entry.Manga.Title)

	var lines []string
	for _, line := range strings.Split(wrapped, "\n") {
		lines = append(lines, styles.Title.Render(strings.TrimRight(line, " ")))
	}

	lines = append(lines, styles.Dimmed.Render(render.Truncate(item.label.Absolute(), inner)))

	if item.cover != "" {
		lines = append(lines, styles.Dimmed.Render(render.Truncate(coverIcon+" "+item.cover, inner)))
	}

	return lines
}
