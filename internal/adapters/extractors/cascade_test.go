package extractors

import (
	"context"
	"testing"
)

func TestRunCascadeFirstNonEmptyWins(t *testing.T) {
	evaluated := []string{}

	got := runCascade(context.Background(), "price", []strategy{
		{"first", func() string { evaluated = append(evaluated, "first"); return "" }},
		{"second", func() string { evaluated = append(evaluated, "second"); return "$1,000" }},
		{"third", func() string { evaluated = append(evaluated, "third"); return "$2,000" }},
	})

	if got != "$1,000" {
		t.Errorf("got %q; want %q", got, "$1,000")
	}
	if len(evaluated) != 2 {
		t.Errorf("later strategies must not run after a hit; evaluated %v", evaluated)
	}
}

func TestRunCascadeAllEmpty(t *testing.T) {
	got := runCascade(context.Background(), "location", []strategy{
		{"only", func() string { return "" }},
	})
	if got != "" {
		t.Errorf("got %q; want empty", got)
	}
}
