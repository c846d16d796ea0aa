package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"
)

// progressStep prints "label... done (1.2s)" to stderr for slow steps. A nil
// step is valid and prints nothing.
type progressStep struct {
	out     io.Writer
	started time.Time
}

func startProgress(label string) *progressStep {
	if !progressEnabled() {
		return nil
	}
	return newProgressStep(os.Stderr, label)
}

func newProgressStep(out io.Writer, label string) *progressStep {
	fmt.Fprintf(out, "%s... ", label)
	return &progressStep{out: out, started: time.Now()}
}

func (p *progressStep) Done() {
	if p == nil {
		return
	}
	fmt.Fprintf(p.out, "done (%s)\n", formatDuration(time.Since(p.started)))
}

func (p *progressStep) Fail(err error) {
	if p == nil {
		return
	}
	if err == nil {
		fmt.Fprintln(p.out, "failed")
		return
	}
	fmt.Fprintf(p.out, "failed: %v\n", err)
}

// progressEnabled is false for JSON output, when disabled by flag or env, and
// when stderr is not a terminal.
func progressEnabled() bool {
	if IsJSONOutput() || noProgress {
		return false
	}
	for _, name := range []string{"DIRECTOR_NO_PROGRESS", "NO_PROGRESS"} {
		if _, ok := os.LookupEnv(name); ok {
			return false
		}
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return d.String()
	case d < time.Second:
		return d.Round(10 * time.Millisecond).String()
	default:
		return d.Round(100 * time.Millisecond).String()
	}
}
