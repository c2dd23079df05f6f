package spandex

import (
	"sort"

	"github.com/cockroachdb/errors"
)

// Match is one engine result: the rule's interned id and the half-open
// token range that satisfied it.
type Match struct {
	RuleID uint64
	Start  int
	End    int
}

// Matcher is the quantified attribute-pattern engine. Rules are compiled
// once with Add against a Vocab; Match is read-only against the compiled
// rules and the target document, so one Matcher may serve many documents
// concurrently as long as no goroutine is mutating the specific document
// being matched. Add is not safe to call concurrently with Match.
type Matcher struct {
	vocab *Vocab
	rules []*matcherRule
	byID  map[uint64]int
}

// matcherRule holds the compiled alternatives of one rule id; matching
// any alternative counts as a match for the rule.
type matcherRule struct {
	id   uint64
	alts []pattern
}

// NewMatcher creates a matcher bound to v. Pattern literals are interned
// into v at compile time, so they live in the same hash space as the
// documents matched against it.
func NewMatcher(v *Vocab) *Matcher {
	return &Matcher{vocab: v, byID: make(map[uint64]int)}
}

// Add compiles the given pattern alternatives under ruleID, appending to
// the rule's existing alternatives if it was added before. All
// alternatives are validated before any are installed; a failed Add
// leaves the matcher unchanged.
func (m *Matcher) Add(ruleID string, patterns ...[]TokenSpec) error {
	compiled := make([]pattern, 0, len(patterns))
	for i, specs := range patterns {
		p, err := compilePattern(m.vocab, specs)
		if err != nil {
			return errors.Wrapf(err, "rule %q alternative %d", ruleID, i)
		}
		compiled = append(compiled, p)
	}

	id := m.vocab.Strings.Intern(ruleID)
	if ri, ok := m.byID[id]; ok {
		m.rules[ri].alts = append(m.rules[ri].alts, compiled...)
		return nil
	}
	m.byID[id] = len(m.rules)
	m.rules = append(m.rules, &matcherRule{id: id, alts: compiled})
	return nil
}

// Len returns the number of registered rules.
func (m *Matcher) Len() int { return len(m.rules) }

// Match runs every rule against d and returns all matches ordered by
// start position, ties broken by rule registration order, then by end.
// It never mutates the document.
//
// For one rule, a shorter match sharing its end with a longer match of
// the same rule (the residue of backing off a leading "+" or "*") is
// suppressed; distinct overlapping matches are all reported.
//
// Worst case is O(N×P) for N tokens and P total pattern elements, and
// superlinear under pathological backtracking, as with any backtracking
// regex engine.
func (m *Matcher) Match(d *Doc) []Match {
	type keyed struct {
		Match
		order int
	}
	var out []keyed

	for order, r := range m.rules {
		// earliest start seen per end index, across alternatives
		best := make(map[int]int)
		for _, alt := range r.alts {
			for start := 0; start <= d.Len(); start++ {
				end, ok := alt.match(d, start)
				if !ok {
					continue
				}
				if s, seen := best[end]; !seen || start < s {
					best[end] = start
				}
			}
		}
		for end, start := range best {
			out = append(out, keyed{Match{RuleID: r.id, Start: start, End: end}, order})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		if out[i].order != out[j].order {
			return out[i].order < out[j].order
		}
		return out[i].End < out[j].End
	})
	matches := make([]Match, len(out))
	for i, k := range out {
		matches[i] = k.Match
	}
	return matches
}

// match attempts the pattern anchored at start. It runs a greedy search
// with explicit backtracking: each quantified element first consumes its
// maximal run, recording a choice frame, and releases tokens one at a
// time when a later element fails, down to the element's minimum. The
// explicit frame stack keeps stack usage flat regardless of pattern
// shape.
func (p pattern) match(d *Doc, start int) (end int, ok bool) {
	type frame struct {
		node int // pattern element to re-enter
		pos  int // document position at that element
		take int // next consumption count to try
	}
	var stack []frame

	node, pos := 0, start
	for {
		failed := false
		switch {
		case node == len(p):
			return pos, true
		case p[node].op == quantNot:
			// Negative check, zero width. Past the last token there is
			// nothing to match, so the element passes vacuously.
			if pos < len(d.tokens) && p[node].matchAt(d, pos) {
				failed = true
			} else {
				node++
			}
		default:
			el := &p[node]
			take := el.maxTake(d, pos)
			if take < el.minTake() {
				failed = true
				break
			}
			if take > el.minTake() {
				stack = append(stack, frame{node, pos, take - 1})
			}
			pos += take
			node++
		}
		if !failed {
			continue
		}

		if len(stack) == 0 {
			return 0, false
		}
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		// Tokens below f.take matched when the greedy run was measured,
		// so re-entry only repositions; no re-evaluation needed.
		if f.take > p[f.node].minTake() {
			stack = append(stack, frame{f.node, f.pos, f.take - 1})
		}
		node, pos = f.node+1, f.pos+f.take
	}
}

// SpansFromMatches converts engine output into labeled spans over d,
// labeling each span with its rule id. Out-of-range matches are
// impossible for matches produced against d itself, so the conversion
// never fails for them.
func SpansFromMatches(d *Doc, matches []Match) []Span {
	spans := make([]Span, 0, len(matches))
	for _, m := range matches {
		spans = append(spans, Span{doc: d, Start: m.Start, End: m.End, label: m.RuleID})
	}
	return spans
}

// FilterSpans resolves overlaps by preference for longer spans: spans
// are considered longest first (earlier start wins a tie) and any span
// overlapping an already kept one is dropped. The result, ordered by
// start, is always accepted by SetEntities.
func FilterSpans(spans []Span) []Span {
	sorted := make([]Span, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool {
		if li, lj := sorted[i].Len(), sorted[j].Len(); li != lj {
			return li > lj
		}
		return sorted[i].Start < sorted[j].Start
	})

	var kept []Span
	taken := make(map[int]bool)
	for _, s := range sorted {
		overlaps := false
		for i := s.Start; i < s.End; i++ {
			if taken[i] {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}
		for i := s.Start; i < s.End; i++ {
			taken[i] = true
		}
		kept = append(kept, s)
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })
	return kept
}
