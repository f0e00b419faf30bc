// Package auth stores and resolves the API token used against the kaizoku server.
//
// Tokens are resolved in this order:
//  1. Environment variable: KZK_API_TOKEN
//  2. OS keyring
//  3. File fallback: <config dir>/kzk/api-token
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/kaizoku-dev/kzk/internal/paths"
)

const (
	keyringService = "kzk"
	keyringUser    = "api-token"
	// EnvVarName holds an API token that overrides any stored one.
	EnvVarName = "KZK_API_TOKEN"
)

// ErrNoCredentials is returned by DeleteToken when nothing was stored.
var ErrNoCredentials = errors.New("no stored credentials found")

// Source indicates where a token was found.
type Source string

// Token sources.
const (
	SourceEnv     Source = "environment variable"
	SourceKeyring Source = "keyring"
	SourceFile    Source = "credentials file"
	SourceNone    Source = ""
)

// Token returns the API token and where it came from.
// Both values are empty when no token is configured; the server may still
// accept anonymous requests.
func Token() (Source, string) {
	if tok := strings.TrimSpace(os.Getenv(EnvVarName)); tok != "" {
		return SourceEnv, tok
	}

	if tok, err := keyring.Get(keyringService, keyringUser); err == nil && tok != "" {
		return SourceKeyring, tok
	}

	if tok := readCredentialsFile(); tok != "" {
		return SourceFile, tok
	}

	return SourceNone, ""
}

// StoreToken saves the token in the keyring, or the credentials file when
// no keyring is available.
func StoreToken(token string) (Source, error) {
	if err := keyring.Set(keyringService, keyringUser, token); err == nil {
		return SourceKeyring, nil
	}

	if err := writeCredentialsFile(token); err != nil {
		return SourceNone, err
	}

	return SourceFile, nil
}

// DeleteToken removes the token from every store.
func DeleteToken() error {
	keyringErr := keyring.Delete(keyringService, keyringUser)
	fileErr := deleteCredentialsFile()

	if keyringErr != nil && fileErr != nil {
		return ErrNoCredentials
	}

	return nil
}

func credentialsFilePath() string {
	path, err := paths.CredentialsFile()
	if err != nil {
		return ""
	}

	return filepath.Clean(path)
}

func readCredentialsFile() string {
	path := credentialsFilePath()
	if path == "" {
		return ""
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path from controlled config directory
	if err != nil {
		return ""
	}

	return strings.TrimSpace(string(data))
}

func writeCredentialsFile(token string) error {
	path := credentialsFilePath()
	if path == "" {
		return fmt.Errorf("could not determine config directory")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write credentials file: %w", err)
	}

	return nil
}

func deleteCredentialsFile() error {
	path := credentialsFilePath()
	if path == "" {
		return fmt.Errorf("could not determine config directory")
	}

	err := os.Remove(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("credentials file not found")
	}

	if err != nil {
		return fmt.Errorf("remove credentials file: %w", err)
	}

	return nil
}
