package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/opencode-ai/director/internal/models"
	"github.com/opencode-ai/director/internal/sequences"
	"github.com/spf13/cobra"
)

var (
	// action add flags
	actionAddName   string
	actionAddType   string
	actionAddParams string

	// action edit flags
	actionEditName   string
	actionEditType   string
	actionEditParams string

	// action rm flags
	actionRemoveAll bool

	// action export flags
	actionExportName        string
	actionExportDescription string

	// action import flags
	actionImportReplace bool
)

func init() {
	rootCmd.AddCommand(actionCmd)
	actionCmd.AddCommand(actionListCmd)
	actionCmd.AddCommand(actionAddCmd)
	actionCmd.AddCommand(actionEditCmd)
	actionCmd.AddCommand(actionRemoveCmd)
	actionCmd.AddCommand(actionShowCmd)
	actionCmd.AddCommand(actionTypesCmd)
	actionCmd.AddCommand(actionExportCmd)
	actionCmd.AddCommand(actionImportCmd)
	actionCmd.AddCommand(actionSequencesCmd)

	// Add flags
	actionAddCmd.Flags().StringVarP(&actionAddName, "name", "n", "", "action name (default: the type)")
	actionAddCmd.Flags().StringVarP(&actionAddType, "type", "t", "", "action type (required)")
	actionAddCmd.Flags().StringVarP(&actionAddParams, "params", "p", "", "type-specific parameters")
	actionAddCmd.MarkFlagRequired("type")

	// Edit flags
	actionEditCmd.Flags().StringVarP(&actionEditName, "name", "n", "", "new action name")
	actionEditCmd.Flags().StringVarP(&actionEditType, "type", "t", "", "new action type")
	actionEditCmd.Flags().StringVarP(&actionEditParams, "params", "p", "", "new parameters")

	// Remove flags
	actionRemoveCmd.Flags().BoolVar(&actionRemoveAll, "all", false, "remove every action")

	// Export flags
	actionExportCmd.Flags().StringVar(&actionExportName, "name", "", "sequence name (default: file name)")
	actionExportCmd.Flags().StringVar(&actionExportDescription, "description", "", "sequence description")

	// Import flags
	actionImportCmd.Flags().BoolVar(&actionImportReplace, "replace", false, "clear the store before importing")
}

var actionCmd = &cobra.Command{
	Use:     "action",
	Aliases: []string{"actions"},
	Short:   "Edit the stored action list",
}

var actionListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List actions in replay order",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer database.Close()

		actions, err := newActionEditor(database).actions.List(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if IsJSONOutput() {
			return WriteOutput(out, actions)
		}
		if len(actions) == 0 {
			fmt.Fprintln(out, "No actions stored. Add one with 'director action add'.")
			return nil
		}
		return writeActionTable(out, actions)
	},
}

var actionAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Append an action to the end of the list",
	Example: `  director action add --type move --params 640,480
  director action add --name search --type type --params "{target_id}"
  director action add --type hotkey --params ctrl,v`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer database.Close()

		action, err := newActionEditor(database).add(cmd.Context(), actionAddName, actionAddType, actionAddParams)
		if err != nil {
			return err
		}
		return writeAction(cmd, action, "Added")
	},
}

var actionEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change the name, type or parameters of an action",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseActionID(args[0])
		if err != nil {
			return err
		}

		var changes actionChanges
		if cmd.Flags().Changed("name") {
			changes.Name = &actionEditName
		}
		if cmd.Flags().Changed("type") {
			changes.Type = &actionEditType
		}
		if cmd.Flags().Changed("params") {
			changes.Parameters = &actionEditParams
		}
		if changes.Name == nil && changes.Type == nil && changes.Parameters == nil {
			return fmt.Errorf("nothing to change: pass --name, --type or --params")
		}

		database, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer database.Close()

		action, err := newActionEditor(database).edit(cmd.Context(), id, changes)
		if err != nil {
			return err
		}
		return writeAction(cmd, action, "Updated")
	},
}

var actionRemoveCmd = &cobra.Command{
	Use:     "rm <id>...",
	Aliases: []string{"remove", "delete"},
	Short:   "Remove actions",
	RunE: func(cmd *cobra.Command, args []string) error {
		if actionRemoveAll == (len(args) > 0) {
			return fmt.Errorf("pass action ids or --all")
		}

		ids := make([]int64, 0, len(args))
		for _, arg := range args {
			id, err := parseActionID(arg)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}

		database, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer database.Close()

		editor := newActionEditor(database)
		out := cmd.OutOrStdout()
		if actionRemoveAll {
			if err := confirm(cmd.InOrStdin(), out, "Remove every stored action?"); err != nil {
				return err
			}
			n, err := editor.clear(cmd.Context())
			if err != nil {
				return err
			}
			if IsJSONOutput() {
				return WriteOutput(out, map[string]any{"removed": n})
			}
			fmt.Fprintf(out, "Removed %d action(s)\n", n)
			return nil
		}

		if err := editor.remove(cmd.Context(), ids); err != nil {
			return err
		}
		if IsJSONOutput() {
			return WriteOutput(out, map[string]any{"removed": ids})
		}
		fmt.Fprintf(out, "Removed %d action(s)\n", len(ids))
		return nil
	},
}

var actionShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one action",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseActionID(args[0])
		if err != nil {
			return err
		}

		database, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer database.Close()

		action, err := newActionEditor(database).actions.Get(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("action %d: %w", id, err)
		}

		out := cmd.OutOrStdout()
		if IsJSONOutput() {
			return WriteOutput(out, action)
		}
		fmt.Fprintf(out, "ID:         %d\n", action.ID)
		fmt.Fprintf(out, "Name:       %s\n", action.Name)
		fmt.Fprintf(out, "Type:       %s\n", action.Type)
		fmt.Fprintf(out, "Parameters: %s\n", formatOrDash(action.Parameters))
		fmt.Fprintf(out, "Format:     %s\n", formatOrDash(models.ParameterHint(action.Type)))
		fmt.Fprintf(out, "Updated:    %s\n", formatTimestamp(action.UpdatedAt))
		return nil
	},
}

var actionTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List action types and their parameter formats",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		types := models.AllActionTypes()
		out := cmd.OutOrStdout()
		if IsJSONOutput() {
			hints := make(map[models.ActionType]string, len(types))
			for _, t := range types {
				hints[t] = models.ParameterHint(t)
			}
			return WriteOutput(out, hints)
		}

		rows := make([][]string, 0, len(types))
		for _, t := range types {
			rows = append(rows, []string{string(t), formatOrDash(models.ParameterHint(t))})
		}
		return writeTable(out, []string{"TYPE", "PARAMETERS"}, rows)
	},
}

var actionExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the action list to a YAML sequence file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		name := strings.TrimSpace(actionExportName)
		if name == "" {
			name = sequenceNameFromPath(path)
		}

		database, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer database.Close()

		seq, err := newActionEditor(database).export(cmd.Context(), path, name, actionExportDescription)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if IsJSONOutput() {
			return WriteOutput(out, map[string]any{
				"path":    path,
				"name":    seq.Name,
				"actions": len(seq.Actions),
			})
		}
		fmt.Fprintf(out, "Exported %d action(s) to %s\n", len(seq.Actions), path)
		return nil
	},
}

var actionImportCmd = &cobra.Command{
	Use:   "import <file|sequence>",
	Short: "Append actions from a YAML sequence file or a named sequence",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectDir, _ := os.Getwd()
		seq, err := sequences.FindSequence(args[0], projectDir)
		if err != nil {
			return err
		}

		database, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer database.Close()

		out := cmd.OutOrStdout()
		if actionImportReplace {
			if err := confirm(cmd.InOrStdin(), out, "Replace every stored action?"); err != nil {
				return err
			}
		}

		progress := startProgress(fmt.Sprintf("Importing %s", seq.Name))
		created, err := newActionEditor(database).importSequence(cmd.Context(), seq, actionImportReplace)
		if err != nil {
			progress.Fail(err)
			return err
		}
		progress.Done()

		if IsJSONOutput() {
			return WriteOutput(out, created)
		}
		fmt.Fprintf(out, "Imported %d action(s) from %s\n", len(created), seq.Name)
		return nil
	},
}

var actionSequencesCmd = &cobra.Command{
	Use:   "sequences",
	Short: "List sequences available to import by name",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		projectDir, _ := os.Getwd()
		found, err := sequences.LoadSequencesFromSearchPaths(projectDir)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if IsJSONOutput() {
			return WriteOutput(out, found)
		}
		rows := make([][]string, 0, len(found))
		for _, seq := range found {
			rows = append(rows, []string{
				seq.Name,
				strconv.Itoa(len(seq.Actions)),
				truncateCell(formatOrDash(seq.Description)),
				seq.Source,
			})
		}
		return writeTable(out, []string{"NAME", "ACTIONS", "DESCRIPTION", "SOURCE"}, rows)
	},
}

func writeAction(cmd *cobra.Command, action *models.Action, verb string) error {
	out := cmd.OutOrStdout()
	if IsJSONOutput() {
		return WriteOutput(out, action)
	}
	fmt.Fprintf(out, "%s action %d (%s %s)\n", verb, action.ID, action.Type, formatOrDash(action.Parameters))
	return nil
}

func parseActionID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid action id %q", value)
	}
	return id, nil
}

func writeActionTable(out io.Writer, actions []*models.Action) error {
	rows := make([][]string, 0, len(actions))
	for _, action := range actions {
		rows = append(rows, []string{
			strconv.FormatInt(action.ID, 10),
			truncateCell(action.Name),
			string(action.Type),
			truncateCell(formatOrDash(action.Parameters)),
		})
	}
	return writeTable(out, []string{"ID", "NAME", "TYPE", "PARAMETERS"}, rows)
}

func sequenceNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
