package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var (
	positionWatch    bool
	positionInterval time.Duration
)

func init() {
	rootCmd.AddCommand(positionCmd)

	positionCmd.Flags().BoolVarP(&positionWatch, "watch", "w", false, "keep printing the position until interrupted")
	positionCmd.Flags().DurationVar(&positionInterval, "interval", 100*time.Millisecond, "poll interval in watch mode")
}

var positionCmd = &cobra.Command{
	Use:   "position",
	Short: "Print the mouse pointer coordinates",
	Long: `Print the current pointer coordinates, for writing move and drag parameters.

With --watch the position is polled until Ctrl-C and printed whenever it changes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if backend.Position == nil {
			return errors.New("no input backend available to read the pointer")
		}
		if positionInterval <= 0 {
			return fmt.Errorf("--interval must be positive")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return reportPosition(ctx, cmd.OutOrStdout(), backend.Position, positionWatch, positionInterval)
	},
}

type pointerPosition struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// reportPosition prints the pointer once, or on every change until ctx ends
// when watch is set.
func reportPosition(ctx context.Context, out io.Writer, position func() (int, int, error), watch bool, interval time.Duration) error {
	var last *pointerPosition
	report := func() error {
		x, y, err := position()
		if err != nil {
			return fmt.Errorf("read pointer position: %w", err)
		}
		current := pointerPosition{X: x, Y: y}
		if last != nil && *last == current {
			return nil
		}
		last = &current
		return writePosition(out, current)
	}

	if err := report(); err != nil || !watch {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := report(); err != nil {
				return err
			}
		}
	}
}

func writePosition(out io.Writer, p pointerPosition) error {
	if IsJSONOutput() {
		encoded, err := json.Marshal(p)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(encoded))
		return err
	}
	_, err := fmt.Fprintf(out, "X: %d, Y: %d  (move parameters: %d,%d)\n", p.X, p.Y, p.X, p.Y)
	return err
}
