package cli

import (
	"context"
	"testing"
	"time"

	"github.com/opencode-ai/director/internal/db"
	"github.com/opencode-ai/director/internal/models"
)

func seedRunEvents(t *testing.T, repo *db.EventRepository, runID string, n int, base time.Time) {
	t.Helper()
	for i := 0; i < n; i++ {
		event := &models.Event{
			Timestamp:  base.Add(time.Duration(i) * time.Second),
			Type:       models.EventTypeActionFailed,
			EntityType: models.EntityTypeRun,
			EntityID:   runID,
		}
		if err := repo.Create(context.Background(), event); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
}

func setHistoryFlags(t *testing.T, limit int, eventType, run string, since time.Duration) {
	t.Helper()
	prevLimit, prevType, prevRun, prevSince := historyLimit, historyType, historyRun, historySince
	historyLimit, historyType, historyRun, historySince = limit, eventType, run, since
	t.Cleanup(func() {
		historyLimit, historyType, historyRun, historySince = prevLimit, prevType, prevRun, prevSince
	})
}

func TestCollectEventsFollowsCursor(t *testing.T) {
	repo := db.NewEventRepository(setupTestDB(t))
	base := time.Now().UTC().Add(-time.Hour)
	seedRunEvents(t, repo, "run-1", 7, base)
	seedRunEvents(t, repo, "run-2", 2, base)

	runID := "run-1"
	entity := models.EntityTypeRun
	query := db.EventQuery{EntityType: &entity, EntityID: &runID}

	all, err := collectEvents(context.Background(), repo, query, 0, 2)
	if err != nil {
		t.Fatalf("collectEvents: %v", err)
	}
	if len(all) != 7 {
		t.Fatalf("expected all 7 events across pages, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if !all[i].Timestamp.After(all[i-1].Timestamp) {
			t.Fatalf("expected oldest first, event %d is out of order", i)
		}
	}

	limited, err := collectEvents(context.Background(), repo, query, 5, 2)
	if err != nil {
		t.Fatalf("collectEvents with limit: %v", err)
	}
	if len(limited) != 5 || !limited[4].Timestamp.Equal(base.Add(4*time.Second)) {
		t.Fatalf("expected the 5 oldest events, got %d", len(limited))
	}
}

func TestQueryHistory(t *testing.T) {
	repo := db.NewEventRepository(setupTestDB(t))
	seedRunEvents(t, repo, "run-1", 3, time.Now().UTC().Add(-2*time.Hour))
	seedRunEvents(t, repo, "run-2", 150, time.Now().UTC().Add(-30*time.Minute))
	ctx := context.Background()

	setHistoryFlags(t, 2, "", "run-1", 0)
	byRun, err := queryHistory(ctx, repo)
	if err != nil {
		t.Fatalf("queryHistory --run: %v", err)
	}
	if len(byRun) != 2 || byRun[0].EntityID != "run-1" {
		t.Fatalf("unexpected run events: %+v", byRun)
	}

	// More matches than one page holds.
	setHistoryFlags(t, 0, "", "", time.Hour)
	recent, err := queryHistory(ctx, repo)
	if err != nil {
		t.Fatalf("queryHistory --since: %v", err)
	}
	if len(recent) != 150 {
		t.Fatalf("expected 150 events within the hour, got %d", len(recent))
	}

	setHistoryFlags(t, 0, string(models.EventTypeActionFailed), "run-2", 0)
	typed, err := queryHistory(ctx, repo)
	if err != nil {
		t.Fatalf("queryHistory --run --type: %v", err)
	}
	if len(typed) != 150 {
		t.Fatalf("expected 150 run-2 failures, got %d", len(typed))
	}
}
