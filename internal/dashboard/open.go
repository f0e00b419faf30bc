package dashboard

import (
	"io"

	"github.com/pkg/browser"
)

// Opener opens a URL outside the terminal.
type Opener interface {
	Open(url string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(url string) error

// Open calls f(url).
func (f OpenerFunc) Open(url string) error {
	return f(url)
}

// BrowserOpener opens URLs in the user's default browser.
type BrowserOpener struct{}

// NewBrowserOpener returns an Opener whose launcher output is discarded so
// it cannot scribble over the full-screen view.
func NewBrowserOpener() BrowserOpener {
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard

	return BrowserOpener{}
}

// Open launches the default browser on url.
func (BrowserOpener) Open(url string) error {
	return browser.OpenURL(url)
}
