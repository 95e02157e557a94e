package grouping

import "testing"

func TestFilterExcludesSelfAndLinkless(t *testing.T) {
	t.Parallel()

	target := Document{ID: 1, Title: "openai releases new model", Link: "https://a.example/1"}
	candidates := []Document{
		{ID: 1, Title: "openai releases new model", Link: "https://a.example/1"},
		{ID: 2, Title: "openai releases new model today", Link: ""},
		{ID: 3, Title: "openai releases new model today", Link: "https://b.example/3"},
	}

	kept := NewCandidateFilter().Filter(target, candidates)
	if len(kept) != 1 {
		t.Fatalf("kept %d candidates, want 1: %+v", len(kept), kept)
	}
	if kept[0].ID != 3 {
		t.Fatalf("kept candidate %d, want 3", kept[0].ID)
	}
}

func TestFilterRequiresShingleOverlap(t *testing.T) {
	t.Parallel()

	target := Document{ID: 1, Title: "openai releases new flagship model", Link: "https://a.example/1"}
	candidates := []Document{
		{ID: 2, Title: "completely different story about farming", Link: "https://b.example/2"},
		{ID: 3, Title: "openai releases new flagship benchmark", Link: "https://c.example/3"},
	}

	kept := NewCandidateFilter().Filter(target, candidates)
	if len(kept) != 1 || kept[0].ID != 3 {
		t.Fatalf("kept %+v, want only candidate 3", kept)
	}
}

func TestFilterShortTitlesCompareTokenSets(t *testing.T) {
	t.Parallel()

	target := Document{ID: 1, Title: "openai gpt5", Link: "https://a.example/1"}
	candidate := Document{ID: 2, Title: "gpt5 launch", Link: "https://b.example/2"}

	kept := NewCandidateFilter().Filter(target, []Document{candidate})
	if len(kept) != 1 {
		t.Fatalf("short-title token overlap dropped the candidate: %+v", kept)
	}
}

func TestFilterMetadataDiscardNeedsBothSignalsDisjoint(t *testing.T) {
	t.Parallel()

	base := Document{ID: 1, Title: "openai releases new model", Link: "https://a.example/1"}
	other := Document{ID: 2, Title: "openai releases new model update", Link: "https://b.example/2"}

	cases := []struct {
		name string
		mod  func(target, candidate *Document)
		keep bool
	}{
		{
			name: "both entities and tags disjoint drops candidate",
			mod: func(target, candidate *Document) {
				target.Entities = []string{"OpenAI"}
				candidate.Entities = []string{"Anthropic"}
				target.Tags = []string{"ai"}
				candidate.Tags = []string{"finance"}
			},
			keep: false,
		},
		{
			name: "entity overlap keeps candidate despite disjoint tags",
			mod: func(target, candidate *Document) {
				target.Entities = []string{"OpenAI"}
				candidate.Entities = []string{"openai"}
				target.Tags = []string{"ai"}
				candidate.Tags = []string{"finance"}
			},
			keep: true,
		},
		{
			name: "tag overlap keeps candidate despite disjoint entities",
			mod: func(target, candidate *Document) {
				target.Entities = []string{"OpenAI"}
				candidate.Entities = []string{"Anthropic"}
				target.Tags = []string{"ai"}
				candidate.Tags = []string{"AI"}
			},
			keep: true,
		},
		{
			name: "missing entities on one side keeps candidate",
			mod: func(target, candidate *Document) {
				target.Entities = nil
				candidate.Entities = []string{"Anthropic"}
				target.Tags = []string{"ai"}
				candidate.Tags = []string{"finance"}
			},
			keep: true,
		},
		{
			name: "missing tags on one side keeps candidate",
			mod: func(target, candidate *Document) {
				target.Entities = []string{"OpenAI"}
				candidate.Entities = []string{"Anthropic"}
				target.Tags = []string{"ai"}
				candidate.Tags = nil
			},
			keep: true,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			target := base
			candidate := other
			tc.mod(&target, &candidate)

			kept := NewCandidateFilter().Filter(target, []Document{candidate})
			if tc.keep && len(kept) != 1 {
				t.Fatalf("candidate was dropped, want kept")
			}
			if !tc.keep && len(kept) != 0 {
				t.Fatalf("candidate was kept, want dropped")
			}
		})
	}
}

func TestFilterPreservesOrder(t *testing.T) {
	t.Parallel()

	target := Document{ID: 1, Title: "openai releases new model", Link: "https://a.example/1"}
	candidates := []Document{
		{ID: 5, Title: "openai releases new model five", Link: "https://x.example/5"},
		{ID: 3, Title: "openai releases new model three", Link: "https://x.example/3"},
		{ID: 9, Title: "openai releases new model nine", Link: "https://x.example/9"},
	}

	kept := NewCandidateFilter().Filter(target, candidates)
	if len(kept) != 3 {
		t.Fatalf("kept %d candidates, want 3", len(kept))
	}
	for i, wantID := range []int64{5, 3, 9} {
		if kept[i].ID != wantID {
			t.Fatalf("kept[%d].ID = %d, want %d", i, kept[i].ID, wantID)
		}
	}
}
