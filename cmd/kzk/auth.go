package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kaizoku-dev/kzk/internal/auth"
	"github.com/kaizoku-dev/kzk/internal/client"
	"github.com/kaizoku-dev/kzk/internal/config"
	clierrors "github.com/kaizoku-dev/kzk/internal/errors"
	"github.com/kaizoku-dev/kzk/internal/output"
	"github.com/kaizoku-dev/kzk/internal/prompt"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the server access token",
		Long: `Store an access token for Kaizoku servers behind an authenticating proxy.
The token is sent as a bearer token with every request.`,
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthLogoutCmd())

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var tokenFlag string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an access token",
		Long: `Store an access token for the configured Kaizoku server.

The token is stored in your system's keyring (macOS Keychain, Windows
Credential Manager, or Linux Secret Service). Without a keyring it falls
back to a file readable only by you.

You can also set the KZK_API_TOKEN environment variable.`,
		Example: `  kzk auth login
  kzk auth login --token "$TOKEN"`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			prompter := prompt.New(out)

			if os.Getenv(auth.EnvVarName) != "" {
				out.Info("%s environment variable is set", auth.EnvVarName)
				out.Muted("Environment variable takes precedence over stored credentials")
				out.Println()
			}

			token := tokenFlag
			if token == "" {
				if !prompter.CanPrompt() {
					return clierrors.CannotPrompt(auth.EnvVarName)
				}

				var err error

				token, err = prompter.Password("Enter your access token")
				if err != nil {
					return fmt.Errorf("read token prompt: %w", err)
				}
			}

			if token == "" {
				return clierrors.TokenEmpty()
			}

			spin := out.Spinner("Checking token")
			spin.Start()

			cfg := config.Load()

			if _, err := client.New(cfg.APIURL(), token).Library(cmd.Context()); err != nil {
				if client.IsUnauthorized(err) {
					spin.StopWithFailure("Token rejected")
					return clierrors.AuthFailed(err)
				}

				spin.StopWithFailure("Server unreachable")

				return clierrors.APIUnreachable(cfg.APIURL(), err)
			}

			spin.Stop()

			source, err := auth.StoreToken(token)
			if err != nil {
				return clierrors.ConfigFailed("store credentials", err)
			}

			out.Success("Token stored in %s", source)

			return nil
		},
	}

	cmd.Flags().StringVar(&tokenFlag, "token", "", "Access token for non-interactive login (prefer KZK_API_TOKEN to avoid shell history exposure)")

	return cmd
}

// AuthStatus represents authentication status for JSON output.
type AuthStatus struct {
	Source   string `json:"source"`
	Server   string `json:"server"`
	Accepted bool   `json:"accepted"`
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   "Show authentication status",
		Long:    `Show where the access token comes from and whether the server accepts it.`,
		Example: `  kzk auth status --json`,
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			cfg := config.Load()

			source, apiClient := newAPIClient(cfg)
			if !apiClient.HasToken() {
				if out.JSON {
					return out.PrintJSON(AuthStatus{Source: sourceLabel(source), Server: cfg.APIURL()})
				}

				out.Muted("No access token stored")

				return nil
			}

			spin := out.Spinner("Checking token")
			spin.Start()

			if _, err := apiClient.Library(cmd.Context()); err != nil {
				spin.StopWithFailure("Token rejected")
				return clierrors.CredentialsInvalid(err)
			}

			spin.StopWithSuccess("Token accepted")

			if out.JSON {
				if err := out.PrintJSON(AuthStatus{
					Source:   sourceLabel(source),
					Server:   cfg.APIURL(),
					Accepted: true,
				}); err != nil {
					return fmt.Errorf("print auth status json: %w", err)
				}

				return nil
			}

			out.Print("Source: %s\n", source)
			out.Print("Server: %s\n", cfg.APIURL())

			return nil
		},
	}
}

func newAuthLogoutCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored token",
		Long: `Remove the access token from the keyring and the credentials file.
Asks for confirmation unless --force is passed.`,
		Example: `  kzk auth logout
  kzk auth logout --force`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			if source, _ := auth.Token(); source == auth.SourceNone {
				out.Muted("No stored credentials found")
				return nil
			}

			if !force {
				if out.NoInput {
					return clierrors.New(clierrors.ExitUsage, "Cannot confirm logout in non-interactive mode").
						WithHint("Use --force to skip confirmation")
				}

				prompter := prompt.NewWithInput(out, cmd.InOrStdin())

				confirmed, promptErr := prompter.Confirm("Remove the stored access token?", false)
				if promptErr != nil {
					return clierrors.Wrap(clierrors.ExitGeneral, "Failed to read confirmation", promptErr)
				}

				if !confirmed {
					out.Info("Logout canceled")
					return nil
				}
			}

			if err := auth.DeleteToken(); err != nil {
				if errors.Is(err, auth.ErrNoCredentials) {
					out.Muted("No stored credentials found")
					return nil
				}

				return clierrors.ConfigFailed("clear credentials", err)
			}

			out.Success("Logged out successfully")

			if os.Getenv(auth.EnvVarName) != "" {
				out.Println()
				out.Warning("%s environment variable is still set", auth.EnvVarName)
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")

	return cmd
}
