package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/zalando/go-keyring"
)

func isolate(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv(EnvVarName, "")

	return dir
}

func TestToken_Priority(t *testing.T) {
	tests := []struct {
		name       string
		env        string
		keyring    string
		file       string
		wantSource Source
		wantToken  string
	}{
		{name: "env wins", env: "env-tok", keyring: "ring-tok", file: "file-tok", wantSource: SourceEnv, wantToken: "env-tok"},
		{name: "keyring before file", keyring: "ring-tok", file: "file-tok", wantSource: SourceKeyring, wantToken: "ring-tok"},
		{name: "file fallback", file: "file-tok", wantSource: SourceFile, wantToken: "file-tok"},
		{name: "nothing configured", wantSource: SourceNone, wantToken: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			keyring.MockInit()

			if tt.env != "" {
				t.Setenv(EnvVarName, tt.env)
			}

			if tt.keyring != "" {
				if err := keyring.Set(keyringService, keyringUser, tt.keyring); err != nil {
					t.Fatalf("keyring.Set() error = %v", err)
				}
			}

			if tt.file != "" {
				path := filepath.Join(dir, "kzk", "api-token")
				if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
					t.Fatal(err)
				}

				if err := os.WriteFile(path, []byte(tt.file+"\n"), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			source, token := Token()
			if source != tt.wantSource || token != tt.wantToken {
				t.Errorf("Token() = (%q, %q), want (%q, %q)", source, token, tt.wantSource, tt.wantToken)
			}
		})
	}
}

func TestStoreToken_FallsBackToFile(t *testing.T) {
	dir := isolate(t)
	keyring.MockInitWithError(errors.New("no secret service"))

	source, err := StoreToken("abc123")
	if err != nil {
		t.Fatalf("StoreToken() error = %v", err)
	}

	if source != SourceFile {
		t.Errorf("StoreToken() source = %q, want %q", source, SourceFile)
	}

	path := filepath.Join(dir, "kzk", "api-token")

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat credentials file: %v", err)
	}

	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("credentials file mode = %o, want 600", perm)
	}

	if got := readCredentialsFile(); got != "abc123" {
		t.Errorf("readCredentialsFile() = %q, want %q", got, "abc123")
	}
}

func TestStoreToken_UsesKeyring(t *testing.T) {
	isolate(t)
	keyring.MockInit()

	source, err := StoreToken("abc123")
	if err != nil {
		t.Fatalf("StoreToken() error = %v", err)
	}

	if source != SourceKeyring {
		t.Errorf("StoreToken() source = %q, want %q", source, SourceKeyring)
	}

	if _, tok := Token(); tok != "abc123" {
		t.Errorf("Token() = %q, want %q", tok, "abc123")
	}
}

func TestDeleteToken(t *testing.T) {
	isolate(t)
	keyring.MockInit()

	if err := DeleteToken(); !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("DeleteToken() on empty stores error = %v, want ErrNoCredentials", err)
	}

	if _, err := StoreToken("abc123"); err != nil {
		t.Fatal(err)
	}

	if err := DeleteToken(); err != nil {
		t.Fatalf("DeleteToken() error = %v", err)
	}

	if source, _ := Token(); source != SourceNone {
		t.Errorf("Token() source after delete = %q, want none", source)
	}
}
