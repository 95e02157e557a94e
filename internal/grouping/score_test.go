package grouping

import (
	"math"
	"testing"
	"time"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestEntityBonusTiers(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		target    []string
		candidate []string
		want      float64
	}{
		{"two shared entities", []string{"OpenAI", "GPT-5", "Altman"}, []string{"openai", "gpt-5"}, 0.15},
		{"one shared entity", []string{"OpenAI"}, []string{"OpenAI", "Anthropic"}, 0.10},
		{"no shared entities", []string{"OpenAI"}, []string{"Anthropic"}, 0},
		{"no entities at all", nil, nil, 0},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := entityBonus(Document{Entities: tc.target}, Document{Entities: tc.candidate})
			if got != tc.want {
				t.Fatalf("entityBonus = %f, want %f", got, tc.want)
			}
		})
	}
}

func TestTagBonusCapped(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		target    []string
		candidate []string
		want      float64
	}{
		{"one shared tag", []string{"ai"}, []string{"ai", "tech"}, 0.05},
		{"two shared tags", []string{"ai", "tech"}, []string{"ai", "tech"}, 0.10},
		{"three shared tags hit the cap", []string{"ai", "tech", "llm"}, []string{"ai", "tech", "llm"}, 0.10},
		{"no shared tags", []string{"ai"}, []string{"finance"}, 0},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := tagBonus(Document{Tags: tc.target}, Document{Tags: tc.candidate})
			if math.Abs(got-tc.want) > 1e-12 {
				t.Fatalf("tagBonus = %f, want %f", got, tc.want)
			}
		})
	}
}

func TestTimeBonusBands(t *testing.T) {
	t.Parallel()

	ref := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		left  *time.Time
		right *time.Time
		want  float64
	}{
		{"within a day", timePtr(ref), timePtr(ref.Add(-12 * time.Hour)), 0.05},
		{"exactly 24h", timePtr(ref), timePtr(ref.Add(-24 * time.Hour)), 0.05},
		{"within three days", timePtr(ref), timePtr(ref.Add(-48 * time.Hour)), 0.03},
		{"beyond three days", timePtr(ref), timePtr(ref.Add(-100 * time.Hour)), 0},
		{"order independent", timePtr(ref.Add(-12 * time.Hour)), timePtr(ref), 0.05},
		{"missing timestamp", nil, timePtr(ref), 0},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := timeBonus(tc.left, tc.right)
			if got != tc.want {
				t.Fatalf("timeBonus = %f, want %f", got, tc.want)
			}
		})
	}
}

func TestAugmentedScoreTotalClamped(t *testing.T) {
	t.Parallel()

	ref := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	target := Document{
		Title:       "openai releases new flagship model",
		Entities:    []string{"OpenAI", "GPT-5"},
		Tags:        []string{"ai", "tech"},
		PublishedAt: timePtr(ref),
	}
	candidate := Document{
		Title:       "openai releases new flagship model",
		Entities:    []string{"OpenAI", "GPT-5"},
		Tags:        []string{"ai", "tech"},
		PublishedAt: timePtr(ref.Add(-2 * time.Hour)),
	}

	breakdown := NewAugmentedScorer(nil).Score(target, candidate)
	if breakdown.Base <= 0.9 {
		t.Fatalf("base similarity = %f, want near 1", breakdown.Base)
	}
	if breakdown.EntityBonus != 0.15 {
		t.Fatalf("entity bonus = %f, want 0.15", breakdown.EntityBonus)
	}
	if breakdown.TagBonus != 0.10 {
		t.Fatalf("tag bonus = %f, want 0.10", breakdown.TagBonus)
	}
	if breakdown.TimeBonus != 0.05 {
		t.Fatalf("time bonus = %f, want 0.05", breakdown.TimeBonus)
	}
	if breakdown.Total != 1.0 {
		t.Fatalf("total = %f, want clamped to 1.0", breakdown.Total)
	}
}

func TestAugmentedScoreBreakdownSums(t *testing.T) {
	t.Parallel()

	target := Document{
		Title:    "central bank raises rates",
		Entities: []string{"ECB"},
		Tags:     []string{"finance"},
	}
	candidate := Document{
		Title:    "weather forecast for the weekend",
		Entities: []string{"ECB"},
		Tags:     []string{"weather"},
	}

	breakdown := NewAugmentedScorer(nil).Score(target, candidate)
	want := clamp01(breakdown.Base + breakdown.EntityBonus + breakdown.TagBonus + breakdown.TimeBonus)
	if breakdown.Total != want {
		t.Fatalf("total = %f, want %f", breakdown.Total, want)
	}
	if breakdown.EntityBonus != 0.10 {
		t.Fatalf("entity bonus = %f, want 0.10", breakdown.EntityBonus)
	}
}
