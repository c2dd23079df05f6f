package spandex

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/cockroachdb/errors"
)

// RuleSet bundles an attribute matcher and a phrase matcher compiled
// from one declarative rule file, so callers can run a whole rule
// collection against a document with a single call.
type RuleSet struct {
	// Matcher holds the compiled attribute patterns.
	Matcher *Matcher
	// Phrases holds the compiled exact phrases.
	Phrases *PhraseMatcher

	ids []string
}

// ruleSpec is the on-disk form of one rule. A rule may carry attribute
// pattern alternatives, exact phrases, or both.
type ruleSpec struct {
	ID       string        `json:"id"`
	Patterns [][]TokenSpec `json:"patterns,omitempty"`
	Phrases  [][]string    `json:"phrases,omitempty"`
}

// LoadRules reads a JSON rule file and compiles it against v. The file
// is an array of rules:
//
//	[
//	  {"id": "very-happy",
//	   "patterns": [[{"TEXT": "very", "OP": "+"}, {"TEXT": "happy"}]]},
//	  {"id": "golang",
//	   "phrases": [["Go"], ["golang"]]}
//	]
//
// Compilation errors carry the rule id and element position; a malformed
// file never produces a partially usable rule set.
func LoadRules(v *Vocab, r io.Reader) (*RuleSet, error) {
	var specs []ruleSpec
	dec := json.NewDecoder(r)
	if err := dec.Decode(&specs); err != nil {
		return nil, errors.Wrap(err, "parse rule file")
	}

	rs := &RuleSet{Matcher: NewMatcher(v), Phrases: NewPhraseMatcher(v)}
	for i, spec := range specs {
		if spec.ID == "" {
			return nil, errors.Wrapf(ErrInvalidPatternSpec, "rule %d has no id", i)
		}
		if len(spec.Patterns) == 0 && len(spec.Phrases) == 0 {
			return nil, errors.Wrapf(ErrEmptyPattern,
				"rule %q has neither patterns nor phrases", spec.ID)
		}
		if len(spec.Patterns) > 0 {
			if err := rs.Matcher.Add(spec.ID, spec.Patterns...); err != nil {
				return nil, err
			}
		}
		if len(spec.Phrases) > 0 {
			if err := rs.Phrases.Add(spec.ID, spec.Phrases...); err != nil {
				return nil, err
			}
		}
		rs.ids = append(rs.ids, spec.ID)
	}
	return rs, nil
}

// IDs returns the rule ids in file order.
func (rs *RuleSet) IDs() []string {
	out := make([]string, len(rs.ids))
	copy(out, rs.ids)
	return out
}

// Match runs both engines against d and merges their output, ordered by
// start position, then end, then rule id.
func (rs *RuleSet) Match(d *Doc) []Match {
	matches := rs.Matcher.Match(d)
	matches = append(matches, rs.Phrases.Match(d)...)
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Start != matches[j].Start {
			return matches[i].Start < matches[j].Start
		}
		if matches[i].End != matches[j].End {
			return matches[i].End < matches[j].End
		}
		return matches[i].RuleID < matches[j].RuleID
	})
	return matches
}
