// Package cli provides helpers for interactive mode detection.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// errNotConfirmed is returned when a destructive command is declined.
var errNotConfirmed = errors.New("aborted")

// IsNonInteractive reports whether prompts should be skipped.
func IsNonInteractive() bool {
	if nonInteractive {
		return true
	}
	if _, ok := os.LookupEnv("DIRECTOR_NON_INTERACTIVE"); ok {
		return true
	}
	return !hasTTY()
}

func hasTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// confirm asks a yes/no question. --yes skips the prompt; without a terminal
// the answer is no.
func confirm(in io.Reader, out io.Writer, prompt string) error {
	if assumeYes {
		return nil
	}
	if IsNonInteractive() {
		return fmt.Errorf("%s: pass --yes to confirm without a terminal", prompt)
	}
	return readConfirmation(in, out, prompt)
}

func readConfirmation(in io.Reader, out io.Writer, prompt string) error {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return nil
	default:
		return errNotConfirmed
	}
}
