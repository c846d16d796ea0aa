package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/opencode-ai/director/internal/targets"
	"github.com/spf13/cobra"
)

var targetsFile string

func init() {
	rootCmd.AddCommand(targetsCmd)
	targetsCmd.Flags().StringVarP(&targetsFile, "file", "f", "", "target list (default: targets.path from config)")
}

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Show the target ids a run would iterate over",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := resolveTargetsPath(targetsFile)
		ids, err := targets.Load(path)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if IsJSONOutput() {
			return WriteOutput(out, map[string]any{
				"path":    path,
				"targets": ids,
			})
		}
		if len(ids) == 0 {
			fmt.Fprintf(out, "%s has no targets\n", path)
			return nil
		}

		rows := make([][]string, 0, len(ids))
		for i, id := range ids {
			rows = append(rows, []string{strconv.Itoa(i + 1), formatOrDash(id)})
		}
		return writeTable(out, []string{"#", "TARGET"}, rows)
	},
}

func resolveTargetsPath(flagValue string) string {
	if path := strings.TrimSpace(flagValue); path != "" {
		return path
	}
	return GetConfig().Targets.Path
}
