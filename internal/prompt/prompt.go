// Package prompt provides interactive prompts for kzk.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/kaizoku-dev/kzk/internal/output"
)

// Prompter handles interactive prompts.
type Prompter struct {
	out    *output.Writer
	in     io.Reader
	reader *bufio.Reader
}

// New creates a Prompter reading from stdin.
func New(out *output.Writer) *Prompter {
	return NewWithInput(out, os.Stdin)
}

// NewWithInput creates a Prompter reading from in.
func NewWithInput(out *output.Writer, in io.Reader) *Prompter {
	return &Prompter{
		out:    out,
		in:     in,
		reader: bufio.NewReader(in),
	}
}

// CanPrompt returns true if interactive prompts are available.
func (p *Prompter) CanPrompt() bool {
	return p.out.Terminal().InteractiveEnabled() && !p.out.NoInput
}

// Confirm prompts for a yes/no confirmation.
func (p *Prompter) Confirm(message string, defaultValue bool) (bool, error) {
	hint := "y/N"
	if defaultValue {
		hint = "Y/n"
	}

	p.out.Print("%s [%s]: ", message, hint)

	input, err := p.reader.ReadString('\n')
	if err != nil && input == "" {
		return defaultValue, fmt.Errorf("read input: %w", err)
	}

	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" {
		return defaultValue, nil
	}

	return input == "y" || input == "yes", nil
}

// Password prompts for a secret without echo when the input is a terminal.
func (p *Prompter) Password(label string) (string, error) {
	p.out.Print("%s: ", label)

	if f, ok := p.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		p.out.Println()

		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}

		return string(secret), nil
	}

	line, err := p.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}

	return strings.TrimRight(line, "\r\n"), nil
}
