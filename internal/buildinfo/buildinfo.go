// Package buildinfo stores build-time metadata shared across packages.
package buildinfo

// Version and Commit are set from cmd/kzk at startup. Version defaults to "dev".
var (
	Version = "dev"
	Commit  = "none"
)

// UserAgent returns the User-Agent sent with every API request.
func UserAgent() string {
	return "kzk/" + Version
}
