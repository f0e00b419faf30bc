package dashboard

import (
	"testing"
	"time"
)

func TestRelativeTime(t *testing.T) {
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{ago: 0, want: "now"},
		{ago: 30 * time.Second, want: "30 seconds ago"},
		{ago: 90 * time.Second, want: "1 minute ago"},
		{ago: 150 * time.Second, want: "2 minutes ago"},
		{ago: 5 * time.Minute, want: "5 minutes ago"},
		{ago: 3 * time.Hour, want: "3 hours ago"},
		{ago: -5 * time.Minute, want: "5 minutes from now"},
	}

	for _, tt := range tests {
		if got := RelativeTime(testNow.Add(-tt.ago), testNow); got != tt.want {
			t.Errorf("RelativeTime(-%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{size: 1536000, want: "1.5 MB"},
		{size: 0, want: "0 B"},
		{size: -3, want: "0 B"},
		{size: 512, want: "512 B"},
		{size: 1024, want: "1.0 KB"},
		{size: 52428800, want: "50 MB"},
	}

	for _, tt := range tests {
		if got := FormatSize(tt.size); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.size, got, tt.want)
		}
	}
}

func TestChapterBadge(t *testing.T) {
	if got := ChapterBadge(0); got != "#1" {
		t.Errorf("ChapterBadge(0) = %q, want #1", got)
	}

	if got := ChapterBadge(41); got != "#42" {
		t.Errorf("ChapterBadge(41) = %q, want #42", got)
	}
}

func TestTruncateTitle(t *testing.T) {
	if got := TruncateTitle("Foo"); got != "Foo" {
		t.Errorf("TruncateTitle(Foo) = %q", got)
	}

	if got := TruncateTitle("Tensei Shitara Slime Datta Ken"); got != "Tensei Shitara Sl…" {
		t.Errorf("TruncateTitle(long) = %q, want %q", got, "Tensei Shitara Sl…")
	}
}

func TestDownloadedAs(t *testing.T) {
	if got := DownloadedAs("ch1.cbz"); got != "A new chapter downloaded as ch1.cbz" {
		t.Errorf("DownloadedAs() = %q", got)
	}
}
