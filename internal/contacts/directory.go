package contacts

import (
	"errors"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// ErrEmptyDirectory signals that no usable contact entries were loaded.
// Matching against an empty directory would silently mark every posting as
// unmatched, so callers treat this as fatal.
var ErrEmptyDirectory = errors.New("contact directory is empty")

// Match references a directory entry together with its similarity score.
type Match struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Directory is an immutable set of contact company names loaded once per run.
type Directory struct {
	names      []string
	normalized []string
}

// NewDirectory builds a directory from raw company names. Blank entries are
// dropped; an empty result is an error.
func NewDirectory(names []string) (*Directory, error) {
	d := &Directory{}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		d.names = append(d.names, name)
		d.normalized = append(d.normalized, NormalizeName(name))
	}

	if len(d.names) == 0 {
		return nil, ErrEmptyDirectory
	}

	return d, nil
}

func (d *Directory) Len() int {
	return len(d.names)
}

func (d *Directory) Names() []string {
	names := make([]string, len(d.names))
	copy(names, d.names)
	return names
}

// Match scores the company against every entry and returns the best one when
// it clears the threshold. Ties resolve to the first entry in directory
// order. Returns nil when nothing clears the threshold.
func (d *Directory) Match(company string, threshold int) *Match {
	normalized := NormalizeName(company)
	if normalized == "" {
		return nil
	}

	best := -1
	bestScore := 0
	for i, candidate := range d.normalized {
		score := fuzzy.Ratio(normalized, candidate)
		if score > bestScore {
			best = i
			bestScore = score
		}
	}

	if best < 0 || bestScore < threshold {
		return nil
	}

	return &Match{Name: d.names[best], Score: bestScore}
}

// suffixes are corporate designators stripped from the tail of a name before
// scoring, so "Microsoft" and "Microsoft Corp" compare as equals.
var suffixes = map[string]struct{}{
	"corp":        {},
	"corporation": {},
	"inc":         {},
	"ltd":         {},
	"llc":         {},
	"co":          {},
}

// NormalizeName lower-cases the company name, trims punctuation and removes
// trailing corporate suffix tokens.
func NormalizeName(name string) string {
	tokens := strings.Fields(strings.ToLower(name))

	for i, token := range tokens {
		tokens[i] = strings.Trim(token, ".,;:!?\"'()")
	}

	for len(tokens) > 1 {
		last := tokens[len(tokens)-1]
		if _, ok := suffixes[last]; !ok {
			break
		}
		tokens = tokens[:len(tokens)-1]
	}

	return strings.Join(tokens, " ")
}
