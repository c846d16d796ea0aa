// Command director replays stored input actions across a list of targets.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/opencode-ai/director/internal/cli"
	"github.com/opencode-ai/director/internal/input"
	"github.com/opencode-ai/director/internal/input/robot"
	"github.com/rs/zerolog"
)

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	pointer := robot.New(zerolog.Nop())
	err := cli.Execute(context.Background(), cli.Backend{
		NewSimulator: func(logger zerolog.Logger) input.Simulator {
			return robot.New(logger)
		},
		Position: pointer.Position,
		ListenStopKey: func(key string, onPress func(), logger zerolog.Logger) cli.StopListener {
			return robot.ListenStopKey(key, onPress, logger)
		},
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
