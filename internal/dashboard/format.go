package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/kaizoku-dev/kzk/internal/tui/render"
)

// TitleWidth is the widest a manga title is drawn in the timeline.
const TitleWidth = 18

// RelativeTime describes createdAt relative to now, e.g. "5 minutes ago".
func RelativeTime(createdAt, now time.Time) string {
	return humanize.RelTime(createdAt, now, "ago", "from now")
}

// AbsoluteTime is the full timestamp shown for a focused entry.
func AbsoluteTime(t time.Time) string {
	return t.Local().Format("Mon, 02 Jan 2006 15:04:05 MST")
}

// FormatSize renders a byte count with binary magnitudes and short unit
// labels: 1536000 becomes "1.5 MB".
func FormatSize(size int64) string {
	if size < 0 {
		size = 0
	}

	return strings.Replace(humanize.IBytes(uint64(size)), "iB", "B", 1)
}

// ChapterBadge renders a zero-based chapter index as a 1-based badge.
func ChapterBadge(index int) string {
	return fmt.Sprintf("#%d", index+1)
}

// TruncateTitle clips a title to TitleWidth cells.
func TruncateTitle(title string) string {
	return render.Truncate(title, TitleWidth)
}

const downloadedAsPrefix = "A new chapter downloaded as"

// DownloadedAs is the sentence shown under each timeline title.
func DownloadedAs(fileName string) string {
	return downloadedAsPrefix + " " + fileName
}
