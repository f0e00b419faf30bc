package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kaizoku-dev/kzk/internal/auth"
	"github.com/kaizoku-dev/kzk/internal/config"
	"github.com/kaizoku-dev/kzk/internal/output"
	"github.com/kaizoku-dev/kzk/internal/paths"
)

// PathsInfo holds all resolved paths for JSON output.
type PathsInfo struct {
	ConfigRoot  string `json:"config_root"`
	StateRoot   string `json:"state_root"`
	ConfigFile  string `json:"config_file"`
	Credentials string `json:"credentials"`
	LogFile     string `json:"log_file"`
	APIURL      string `json:"api_url"`
	AuthSource  string `json:"auth_source"`
}

func newPathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Show where kzk stores files",
		Long: `Display all file and directory paths used by kzk.

Useful for debugging and for finding the dashboard log file, which is
where logs go while the dashboard owns the terminal.`,
		Example: `  kzk paths
  kzk paths --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			info := resolvePathsInfo()

			if out.JSON {
				return out.PrintJSON(info)
			}

			out.Print("Config root:    %s\n", info.ConfigRoot)
			out.Print("State root:     %s\n", info.StateRoot)
			out.Print("\n")
			out.Print("Config file:    %s\n", info.ConfigFile)
			out.Print("Credentials:    %s\n", info.Credentials)
			out.Print("Log file:       %s\n", info.LogFile)
			out.Print("\n")
			out.Print("API URL:        %s\n", info.APIURL)
			out.Print("Auth source:    %s\n", info.AuthSource)

			return nil
		},
	}
}

func resolvePathsInfo() PathsInfo {
	info := PathsInfo{
		ConfigRoot:  resolveOrError(paths.ConfigRoot),
		StateRoot:   resolveOrError(paths.StateRoot),
		ConfigFile:  resolveOrError(paths.ConfigFile),
		Credentials: resolveOrError(paths.CredentialsFile),
		LogFile:     resolveOrError(paths.DefaultLogFile),
	}

	info.APIURL = config.Load().APIURL()

	source, _ := auth.Token()
	info.AuthSource = sourceLabel(source)

	return info
}

func resolveOrError(fn func() (string, error)) string {
	val, err := fn()
	if err != nil {
		return fmt.Sprintf("<error: %v>", err)
	}

	return val
}
