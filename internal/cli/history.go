package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/opencode-ai/director/internal/db"
	"github.com/opencode-ai/director/internal/models"
	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyType  string
	historyRun   string
	historySince time.Duration
)

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of events (0 for all with --run or --since)")
	historyCmd.Flags().StringVarP(&historyType, "type", "t", "", "only show this event type (e.g. run.completed)")
	historyCmd.Flags().StringVar(&historyRun, "run", "", "only show events of one run")
	historyCmd.Flags().DurationVar(&historySince, "since", 0, "only show events newer than this (e.g. 1h)")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent runs and edits",
	Long: `Show the run history, newest first.

With --run or --since the matching events are listed oldest first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer database.Close()

		list, err := queryHistory(cmd.Context(), db.NewEventRepository(database))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if IsJSONOutput() {
			return WriteOutput(out, list)
		}
		if len(list) == 0 {
			fmt.Fprintln(out, "No events recorded")
			return nil
		}

		rows := make([][]string, 0, len(list))
		for _, event := range list {
			rows = append(rows, []string{
				formatTimestamp(event.Timestamp),
				string(event.Type),
				shortID(event.EntityID),
				truncateCell(summarizeEvent(event)),
			})
		}
		return writeTable(out, []string{"TIME", "TYPE", "ENTITY", "DETAILS"}, rows)
	},
}

// historyPageSize is the number of events fetched per Query call.
const historyPageSize = 100

func queryHistory(ctx context.Context, repo *db.EventRepository) ([]*models.Event, error) {
	var eventType *models.EventType
	if value := strings.TrimSpace(historyType); value != "" {
		t := models.EventType(value)
		eventType = &t
	}

	runID := strings.TrimSpace(historyRun)
	switch {
	case runID == "" && historySince <= 0:
		return repo.ListRecent(ctx, eventType, historyLimit)
	case runID != "" && historySince <= 0 && eventType == nil:
		return repo.ListByEntity(ctx, models.EntityTypeRun, runID, historyLimit)
	}

	query := db.EventQuery{Type: eventType}
	if runID != "" {
		entity := models.EntityTypeRun
		query.EntityType = &entity
		query.EntityID = &runID
	}
	if historySince > 0 {
		since := time.Now().Add(-historySince)
		query.Since = &since
	}
	return collectEvents(ctx, repo, query, historyLimit, historyPageSize)
}

// collectEvents follows the query cursor until limit events are gathered or
// the pages run out. A limit of zero or less means no limit.
func collectEvents(ctx context.Context, repo *db.EventRepository, query db.EventQuery, limit, pageSize int) ([]*models.Event, error) {
	var out []*models.Event
	for {
		query.Limit = pageSize
		if limit > 0 && limit-len(out) < pageSize {
			query.Limit = limit - len(out)
		}

		page, err := repo.Query(ctx, query)
		if err != nil {
			return nil, err
		}
		out = append(out, page.Events...)

		if page.NextCursor == "" || (limit > 0 && len(out) >= limit) {
			return out, nil
		}
		query.Cursor = page.NextCursor
	}
}

// summarizeEvent renders the payload fields worth a table column.
func summarizeEvent(event *models.Event) string {
	if len(event.Payload) == 0 {
		return ""
	}

	switch event.Type {
	case models.EventTypeRunStarted:
		var p models.RunStartedPayload
		if json.Unmarshal(event.Payload, &p) == nil {
			return fmt.Sprintf("%d iteration(s) x %d action(s)", p.Iterations, p.ActionCount)
		}
	case models.EventTypeRunCompleted, models.EventTypeRunInterrupted, models.EventTypeRunSkipped:
		var p models.RunFinishedPayload
		if json.Unmarshal(event.Payload, &p) == nil {
			return fmt.Sprintf("%s: %d iteration(s), %d failed", p.Outcome, p.Iterations, p.Failed)
		}
	case models.EventTypeActionFailed:
		var p models.ActionFailedPayload
		if json.Unmarshal(event.Payload, &p) == nil {
			return fmt.Sprintf("%s on %s: %s", p.ActionName, p.TargetID, p.Error)
		}
	case models.EventTypeActionCreated, models.EventTypeActionUpdated, models.EventTypeActionDeleted:
		var p models.ActionChangedPayload
		if json.Unmarshal(event.Payload, &p) == nil {
			return strings.TrimSpace(fmt.Sprintf("%s %s %s", p.Name, p.Type, p.Parameters))
		}
	}
	return string(event.Payload)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
