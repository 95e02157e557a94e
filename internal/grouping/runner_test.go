package grouping

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/trendwatch/internal/globaltime"
)

func TestIncrementalRunnerProcessesAfterWatermark(t *testing.T) {
	globaltime.SetMockTime(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	defer globaltime.ResetTime()

	base := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)
	store := newMemStore(
		Document{ID: 1, Title: "openai releases new flagship model", Link: "https://a.example/1",
			PublishedAt: timePtr(base), Entities: []string{"OpenAI"}},
		Document{ID: 2, Title: "openai releases new flagship model update", Link: "https://b.example/2",
			PublishedAt: timePtr(base.Add(2 * time.Hour)), Entities: []string{"OpenAI"}},
		Document{ID: 3, Title: "city council votes on new budget", Link: "https://c.example/3",
			PublishedAt: timePtr(base.Add(3 * time.Hour))},
	)

	engine := newTestEngine(store, Options{})
	runner := NewIncrementalRunner(store, engine, zerolog.Nop())

	// Watermark sits exactly on document 1's publish time; strictly-after
	// semantics exclude it.
	result, err := runner.Run(context.Background(), base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Processed != 2 {
		t.Fatalf("processed = %d, want 2", result.Processed)
	}
	if result.Joined != 1 {
		t.Fatalf("joined = %d, want 1", result.Joined)
	}
	if result.Seeded != 1 {
		t.Fatalf("seeded = %d, want 1", result.Seeded)
	}

	// Document 2 joined the pre-existing ungrouped document 1's group.
	got := store.docs[2].GroupID
	if got == nil || *got != 1 {
		t.Fatalf("document 2 group = %v, want 1", got)
	}
}

func TestIncrementalRunnerStopsOnCancelledContext(t *testing.T) {
	globaltime.SetMockTime(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	defer globaltime.ResetTime()

	base := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)
	store := newMemStore(
		Document{ID: 1, Title: "story one about things", Link: "https://a.example/1", PublishedAt: timePtr(base.Add(time.Hour))},
		Document{ID: 2, Title: "story two about things", Link: "https://b.example/2", PublishedAt: timePtr(base.Add(2 * time.Hour))},
	)

	engine := newTestEngine(store, Options{})
	runner := NewIncrementalRunner(store, engine, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := runner.Run(ctx, base)
	if err == nil {
		t.Fatalf("expected context error, got nil (result %+v)", result)
	}
	if result.Processed != 0 {
		t.Fatalf("processed = %d, want 0 after immediate cancel", result.Processed)
	}
}

func TestBackfillRunnerWindowBounds(t *testing.T) {
	globaltime.SetMockTime(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	defer globaltime.ResetTime()

	refDate := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	windowEnd := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	store := newMemStore(
		// Inside the 7-day window ending at midnight of the reference date.
		Document{ID: 1, Title: "inside the window early", Link: "https://a.example/1",
			PublishedAt: timePtr(windowEnd.AddDate(0, 0, -6))},
		Document{ID: 2, Title: "inside the window late", Link: "https://b.example/2",
			PublishedAt: timePtr(windowEnd.Add(-time.Hour))},
		// Published after midnight of the reference date.
		Document{ID: 3, Title: "outside the window after", Link: "https://c.example/3",
			PublishedAt: timePtr(windowEnd.Add(2 * time.Hour))},
		// Published before the window start.
		Document{ID: 4, Title: "outside the window before", Link: "https://d.example/4",
			PublishedAt: timePtr(windowEnd.AddDate(0, 0, -8))},
	)

	engine := newTestEngine(store, Options{})
	runner := NewBackfillRunner(store, engine, zerolog.Nop(), 10)

	result, err := runner.Run(context.Background(), refDate, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Processed != 2 {
		t.Fatalf("processed = %d, want 2 (only documents inside the window)", result.Processed)
	}
	if store.docs[3].GroupID != nil {
		t.Fatalf("document published after the window was grouped")
	}
	if store.docs[4].GroupID != nil {
		t.Fatalf("document published before the window was grouped")
	}
}

func TestRunResultRecord(t *testing.T) {
	t.Parallel()

	var result RunResult
	groupID := int64(1)
	result.record(Decision{Outcome: OutcomeJoined, GroupID: &groupID})
	result.record(Decision{Outcome: OutcomeSeeded, GroupID: &groupID})
	result.record(Decision{Outcome: OutcomeSeeded, GroupID: &groupID})
	result.record(Decision{Outcome: OutcomeExactDuplicate})
	result.record(Decision{Outcome: OutcomeSkipped})

	if result.Processed != 5 {
		t.Fatalf("processed = %d, want 5", result.Processed)
	}
	if result.Joined != 1 || result.Seeded != 2 || result.ExactDuplicates != 1 || result.Skipped != 1 {
		t.Fatalf("unexpected tallies: %+v", result)
	}
}
