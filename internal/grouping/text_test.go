package grouping

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "lowercases and splits on punctuation",
			in:   "OpenAI Releases GPT-5, Today!",
			want: []string{"openai", "releases", "gpt", "today"},
		},
		{
			name: "drops single-rune tokens",
			in:   "a b cd e fg",
			want: []string{"cd", "fg"},
		},
		{
			name: "keeps digits",
			in:   "version 42 shipped",
			want: []string{"version", "42", "shipped"},
		},
		{
			name: "empty input",
			in:   "   ",
			want: nil,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := tokenize(tc.in)
			if len(got) == 0 && len(tc.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("tokenize(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestTitleShingles(t *testing.T) {
	t.Parallel()

	shingles := titleShingles("openai releases new flagship model")
	want := []string{
		"openai releases new",
		"releases new flagship",
		"new flagship model",
	}
	if len(shingles) != len(want) {
		t.Fatalf("got %d shingles, want %d: %v", len(shingles), len(want), shingles)
	}
	for _, w := range want {
		if _, ok := shingles[w]; !ok {
			t.Fatalf("missing shingle %q in %v", w, shingles)
		}
	}
}

func TestTitleShinglesShortTitleFallsBackToTokens(t *testing.T) {
	t.Parallel()

	shingles := titleShingles("openai releases")
	if len(shingles) != 2 {
		t.Fatalf("got %d entries, want 2: %v", len(shingles), shingles)
	}
	for _, token := range []string{"openai", "releases"} {
		if _, ok := shingles[token]; !ok {
			t.Fatalf("missing token %q in fallback set %v", token, shingles)
		}
	}
}

func TestTitleShinglesEmptyTitle(t *testing.T) {
	t.Parallel()

	if got := titleShingles(""); got != nil {
		t.Fatalf("titleShingles(\"\") = %v, want nil", got)
	}
}

func TestNormalizedLabelSet(t *testing.T) {
	t.Parallel()

	set := normalizedLabelSet([]string{" OpenAI ", "openai", "GPT-5", ""})
	if len(set) != 2 {
		t.Fatalf("got %d labels, want 2: %v", len(set), set)
	}
	if _, ok := set["openai"]; !ok {
		t.Fatalf("missing normalized label openai in %v", set)
	}
	if _, ok := set["gpt-5"]; !ok {
		t.Fatalf("missing normalized label gpt-5 in %v", set)
	}
}

func TestOverlapCount(t *testing.T) {
	t.Parallel()

	left := map[string]struct{}{"a": {}, "b": {}, "c": {}}
	right := map[string]struct{}{"b": {}, "c": {}, "d": {}}

	if got := overlapCount(left, right); got != 2 {
		t.Fatalf("overlapCount = %d, want 2", got)
	}
	if got := overlapCount(left, nil); got != 0 {
		t.Fatalf("overlapCount with nil = %d, want 0", got)
	}
}
