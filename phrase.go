package spandex

import (
	"sort"

	"github.com/cockroachdb/errors"
)

// PhraseMatcher matches exact multi-token sequences by interned hash
// equality, far faster than the attribute engine: no predicate
// evaluation, no quantifiers. Phrases are compiled into an Aho–Corasick
// automaton over hash symbols, so one left-to-right scan finds every
// occurrence of every phrase regardless of how many are registered.
//
// Matching is case-sensitive in the sense that two tokens match iff
// their text hashes are identical; whatever text the phrase was built
// from is what a document token must carry.
//
// Add rebuilds the automaton and is not safe to call concurrently with
// Match; once built, many documents may be matched at once.
type PhraseMatcher struct {
	vocab *Vocab
	nodes []phraseNode
	count int
}

// phraseNode is one automaton state. next holds the trie edges keyed by
// token hash; fail is the longest proper suffix state; own lists the
// phrases ending exactly at this state and outputs additionally carries
// those inherited along the failure chain.
type phraseNode struct {
	next    map[uint64]int
	fail    int
	own     []phraseOutput
	outputs []phraseOutput
}

// phraseOutput identifies one accepting phrase: its rule id, the phrase
// length in tokens, and the registration order used to break ties.
type phraseOutput struct {
	ruleID uint64
	length int
	order  int
}

// NewPhraseMatcher creates an empty phrase matcher bound to v.
func NewPhraseMatcher(v *Vocab) *PhraseMatcher {
	return &PhraseMatcher{vocab: v, nodes: []phraseNode{{next: make(map[uint64]int)}}}
}

// Add registers phrases under ruleID, interning every word, and
// recompiles the automaton. An empty phrase fails with ErrEmptyPattern
// before anything is installed.
func (pm *PhraseMatcher) Add(ruleID string, phrases ...[]string) error {
	for i, words := range phrases {
		if len(words) == 0 {
			return errors.Wrapf(ErrEmptyPattern, "rule %q phrase %d", ruleID, i)
		}
	}

	id := pm.vocab.Strings.Intern(ruleID)
	for _, words := range phrases {
		state := 0
		for _, w := range words {
			h := pm.vocab.Strings.Intern(w)
			nxt, ok := pm.nodes[state].next[h]
			if !ok {
				nxt = len(pm.nodes)
				pm.nodes = append(pm.nodes, phraseNode{next: make(map[uint64]int)})
				pm.nodes[state].next[h] = nxt
			}
			state = nxt
		}
		pm.nodes[state].own = append(pm.nodes[state].own,
			phraseOutput{ruleID: id, length: len(words), order: pm.count})
		pm.count++
	}
	pm.compile()
	return nil
}

// compile recomputes failure links and merged outputs with the usual
// breadth-first pass over the trie.
func (pm *PhraseMatcher) compile() {
	queue := make([]int, 0, len(pm.nodes))
	for _, child := range pm.nodes[0].next {
		pm.nodes[child].fail = 0
		pm.nodes[child].outputs = pm.nodes[child].own
		queue = append(queue, child)
	}
	for len(queue) > 0 {
		state := queue[0]
		queue = queue[1:]
		for h, child := range pm.nodes[state].next {
			f := pm.nodes[state].fail
			for f != 0 {
				if _, ok := pm.nodes[f].next[h]; ok {
					break
				}
				f = pm.nodes[f].fail
			}
			if nxt, ok := pm.nodes[f].next[h]; ok && nxt != child {
				f = nxt
			} else {
				f = 0
			}
			pm.nodes[child].fail = f
			pm.nodes[child].outputs = append(
				append([]phraseOutput(nil), pm.nodes[child].own...),
				pm.nodes[f].outputs...)
			queue = append(queue, child)
		}
	}
}

// Len returns the number of registered phrases.
func (pm *PhraseMatcher) Len() int { return pm.count }

// Match scans d once and returns every phrase occurrence, ordered by
// start position, ties broken by phrase registration order. It never
// mutates the document.
func (pm *PhraseMatcher) Match(d *Doc) []Match {
	type keyed struct {
		Match
		order int
	}
	var out []keyed

	state := 0
	for i := range d.tokens {
		h := d.tokens[i].orth
		for {
			if nxt, ok := pm.nodes[state].next[h]; ok {
				state = nxt
				break
			}
			if state == 0 {
				break
			}
			state = pm.nodes[state].fail
		}
		for _, acc := range pm.nodes[state].outputs {
			out = append(out, keyed{
				Match{RuleID: acc.ruleID, Start: i + 1 - acc.length, End: i + 1},
				acc.order,
			})
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
