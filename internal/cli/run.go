package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/opencode-ai/director/internal/config"
	"github.com/opencode-ai/director/internal/db"
	"github.com/opencode-ai/director/internal/events"
	"github.com/opencode-ai/director/internal/input"
	"github.com/opencode-ai/director/internal/logging"
	"github.com/opencode-ai/director/internal/replay"
	"github.com/opencode-ai/director/internal/targets"
	"github.com/spf13/cobra"
)

var (
	runLoops   int
	runTargets string
	runDryRun  bool
	runDelay   time.Duration
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVarP(&runLoops, "loops", "l", 0, "number of iterations; 0 runs once per target id")
	runCmd.Flags().StringVarP(&runTargets, "targets", "f", "", "target list (default: targets.path from config)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "log input calls instead of performing them")
	runCmd.Flags().DurationVar(&runDelay, "delay", 0, "pause after every action (default: replay.action_delay from config)")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay the action list once per target",
	Long: `Replay the stored actions in order, once per target id.

With --loops N the list runs N times and the iteration number (1..N) is used
as the target id. Press the stop key (replay.stop_key, default esc) or Ctrl-C
to stop at the next action boundary.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		opts := runOptions{
			LoopCount:   runLoops,
			TargetsPath: resolveTargetsPath(runTargets),
			DryRun:      runDryRun,
			Replay:      cfg.Replay,
		}
		if !IsJSONOutput() {
			opts.Notices = cmd.ErrOrStderr()
		}
		if cmd.Flags().Changed("delay") {
			if runDelay < 0 {
				return fmt.Errorf("--delay must not be negative")
			}
			opts.Replay.ActionDelay = runDelay
		}
		if opts.LoopCount < 0 {
			return replay.ErrInvalidLoopCount
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		database, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer database.Close()

		result, err := executeRun(ctx, database, opts)
		if err != nil {
			return err
		}
		return writeRunResult(cmd.OutOrStdout(), result)
	},
}

type runOptions struct {
	LoopCount   int
	TargetsPath string
	DryRun      bool
	Replay      config.ReplayConfig

	// Notices receives operator hints such as the armed stop key. Nil is quiet.
	Notices io.Writer
}

// executeRun wires the store, target list and input backend into one engine
// run. It blocks until the run finishes.
func executeRun(ctx context.Context, database *db.DB, opts runOptions) (*replay.Result, error) {
	logger := logging.Component("run")

	actions, err := db.NewActionRepository(database).List(ctx)
	if err != nil {
		return nil, err
	}
	targetIDs := targets.LoadOrEmpty(opts.TargetsPath, logger)

	state := replay.NewRunState()
	engineOpts := []replay.Option{
		replay.WithObserver(events.NewRecorder(db.NewEventRepository(database), logging.Component("history"))),
	}

	var sim input.Simulator
	if opts.DryRun {
		sim = input.NewDryRun(logging.Component("dry-run"))
		engineOpts = append(engineOpts, replay.WithSleeper(input.NewNoSleep(logging.Component("dry-run"))))
	} else {
		if backend.NewSimulator == nil {
			return nil, errors.New("no input backend available; use --dry-run")
		}
		sim = backend.NewSimulator(logging.Component("input"))

		if opts.Replay.StopKey != "" && backend.ListenStopKey != nil {
			listener := backend.ListenStopKey(opts.Replay.StopKey, state.Cancel, logging.Component("stopkey"))
			defer listener.Close()
			if opts.Notices != nil {
				fmt.Fprintf(opts.Notices, "Press %s to stop the run after the current action.\n", listener.Key())
			}
		}
	}

	engine := replay.New(replay.Config{
		ActionDelay: opts.Replay.ActionDelay,
		Transition:  opts.Replay.Transition,
	}, sim, engineOpts...)

	return engine.Run(ctx, replay.Request{
		LoopCount: opts.LoopCount,
		Actions:   actions,
		TargetIDs: targetIDs,
	}, state)
}

func writeRunResult(out io.Writer, result *replay.Result) error {
	if IsJSONOutput() {
		return WriteOutput(out, runResultView(result))
	}

	fmt.Fprintf(out, "%s  %d iteration(s), %d action(s), %d failed in %s\n",
		formatOutcome(result.Outcome, result.Failed),
		result.Iterations,
		result.Dispatched,
		result.Failed,
		formatDuration(result.Duration()),
	)
	if len(result.Failures) == 0 {
		return nil
	}

	rows := make([][]string, 0, len(result.Failures))
	for _, failure := range result.Failures {
		row := []string{strconv.Itoa(failure.Iteration + 1), formatOrDash(failure.TargetID), "-", "-", "-"}
		if failure.Err != nil {
			row[2] = strconv.FormatInt(failure.Err.ActionID, 10)
			row[3] = truncateCell(failure.Err.ActionName)
			row[4] = truncateCell(failure.Err.Err.Error())
		}
		rows = append(rows, row)
	}
	fmt.Fprintln(out)
	return writeTable(out, []string{"ITERATION", "TARGET", "ACTION", "NAME", "ERROR"}, rows)
}

type failureView struct {
	Iteration  int    `json:"iteration"`
	TargetID   string `json:"target_id"`
	ActionID   int64  `json:"action_id"`
	ActionName string `json:"action_name"`
	ActionType string `json:"action_type"`
	Error      string `json:"error"`
}

type resultView struct {
	*replay.Result
	DurationMS int64         `json:"duration_ms"`
	Failures   []failureView `json:"failures"`
}

func runResultView(result *replay.Result) resultView {
	view := resultView{
		Result:     result,
		DurationMS: result.Duration().Milliseconds(),
		Failures:   make([]failureView, 0, len(result.Failures)),
	}
	for _, failure := range result.Failures {
		item := failureView{Iteration: failure.Iteration + 1, TargetID: failure.TargetID}
		if failure.Err != nil {
			item.ActionID = failure.Err.ActionID
			item.ActionName = failure.Err.ActionName
			item.ActionType = string(failure.Err.Type)
			item.Error = failure.Err.Err.Error()
		}
		view.Failures = append(view.Failures, item)
	}
	return view
}
