package main

import (
	"github.com/kaizoku-dev/kzk/internal/auth"
	"github.com/kaizoku-dev/kzk/internal/client"
	"github.com/kaizoku-dev/kzk/internal/config"
)

// newAPIClient builds a client for the configured server. The token is
// optional: Kaizoku itself does not authenticate, but a reverse proxy in
// front of it may.
func newAPIClient(cfg *config.Config) (auth.Source, *client.Client) {
	source, token := auth.Token()
	return source, client.New(cfg.APIURL(), token)
}

// sourceLabel names a token source for display.
func sourceLabel(source auth.Source) string {
	if source == auth.SourceNone {
		return "none"
	}

	return string(source)
}
