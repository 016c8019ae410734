package contacts

import (
	"errors"
	"testing"
)

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "lowercases", input: "Acme", expected: "acme"},
		{name: "strips corp", input: "Microsoft Corp", expected: "microsoft"},
		{name: "strips inc with dot", input: "Acme, Inc.", expected: "acme"},
		{name: "strips stacked suffixes", input: "Globex Co Ltd", expected: "globex"},
		{name: "keeps inner co", input: "Coca Cola Co", expected: "coca cola"},
		{name: "suffix only name survives", input: "Co", expected: "co"},
		{name: "trailing punctuation", input: "Initech!", expected: "initech"},
		{name: "empty", input: "   ", expected: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeName(tc.input); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestNewDirectoryRejectsEmpty(t *testing.T) {
	if _, err := NewDirectory(nil); !errors.Is(err, ErrEmptyDirectory) {
		t.Fatalf("expected ErrEmptyDirectory, got %v", err)
	}

	if _, err := NewDirectory([]string{"  ", ""}); !errors.Is(err, ErrEmptyDirectory) {
		t.Fatalf("expected ErrEmptyDirectory for blank entries, got %v", err)
	}
}

func TestMatchEquivalentNames(t *testing.T) {
	directory, err := NewDirectory([]string{"Microsoft Corp"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	match := directory.Match("Microsoft", 80)
	if match == nil {
		t.Fatal("expected a match")
	}

	if match.Name != "Microsoft Corp" {
		t.Fatalf("expected original directory name, got %q", match.Name)
	}

	if match.Score < 80 {
		t.Fatalf("expected score >= 80, got %d", match.Score)
	}
}

func TestMatchBelowThreshold(t *testing.T) {
	directory, err := NewDirectory([]string{"Microsoft Corp"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if match := directory.Match("Totally Unrelated Co", 80); match != nil {
		t.Fatalf("expected no match, got %+v", match)
	}
}

func TestMatchTieBreakFirstInOrder(t *testing.T) {
	directory, err := NewDirectory([]string{"Acme Inc", "Acme Corp"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Both entries normalize to "acme" and score identically.
	match := directory.Match("Acme", 90)
	if match == nil {
		t.Fatal("expected a match")
	}

	if match.Name != "Acme Inc" {
		t.Fatalf("expected first directory entry to win the tie, got %q", match.Name)
	}
}

func TestMatchEmptyCompany(t *testing.T) {
	directory, err := NewDirectory([]string{"Acme"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if match := directory.Match("", 0); match != nil {
		t.Fatalf("expected no match for empty company, got %+v", match)
	}
}
