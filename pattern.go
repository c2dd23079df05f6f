package spandex

import (
	"github.com/cockroachdb/errors"
)

// TokenSpec is the declarative form of one pattern element: a mapping
// from attribute names to a string literal or a boolean, plus an optional
// "OP" key. All attribute predicates of one spec must hold together for
// the element to match a token.
//
//	[]TokenSpec{
//		{"LEMMA": "buy"},
//		{"POS": "DET", "OP": "?"},
//		{"POS": "NOUN"},
//	}
//
// Recognized operators: "!" (must not match, consumes nothing), "?"
// (zero or one), "+" (one or more), "*" (zero or more); absence means
// exactly one. Unrecognized attribute names, operators or value types
// are rejected at compile time with ErrInvalidPatternSpec.
type TokenSpec map[string]any

// attr identifies one attribute of the closed predicate vocabulary.
type attr uint8

const (
	attrText attr = iota
	attrLower
	attrLemma
	attrPOS
	attrTag
	attrDep
	attrEntType
	attrIsAlpha
	attrIsDigit
	attrIsPunct
	attrIsSpace
	attrIsTitle
	attrIsLower
	attrIsUpper
	attrLikeNum
)

// stringAttrs maps the string-valued attribute names of the spec surface
// to their compiled identifiers. ORTH is an alias for TEXT.
var stringAttrs = map[string]attr{
	"TEXT":     attrText,
	"ORTH":     attrText,
	"LOWER":    attrLower,
	"LEMMA":    attrLemma,
	"POS":      attrPOS,
	"TAG":      attrTag,
	"DEP":      attrDep,
	"ENT_TYPE": attrEntType,
}

// boolAttrs maps the flag-valued attribute names.
var boolAttrs = map[string]attr{
	"IS_ALPHA": attrIsAlpha,
	"IS_DIGIT": attrIsDigit,
	"IS_PUNCT": attrIsPunct,
	"IS_SPACE": attrIsSpace,
	"IS_TITLE": attrIsTitle,
	"IS_LOWER": attrIsLower,
	"IS_UPPER": attrIsUpper,
	"LIKE_NUM": attrLikeNum,
}

// quantifier controls how many consecutive tokens a pattern element may
// consume.
type quantifier uint8

const (
	quantOne        quantifier = iota // exactly one token
	quantNot                          // must not match; consumes nothing
	quantZeroOrOne                    // "?"
	quantOneOrMore                    // "+"
	quantZeroOrMore                   // "*"
)

var quantByOp = map[string]quantifier{
	"!": quantNot,
	"?": quantZeroOrOne,
	"+": quantOneOrMore,
	"*": quantZeroOrMore,
}

// predicate is one compiled (attribute, expected value) pair. String
// attributes compare the token slot against a hash; flag attributes
// compare the lexeme flag against want.
type predicate struct {
	attr attr
	hash uint64
	want bool
}

// patternNode is one compiled pattern element: a predicate conjunction
// and its quantifier.
type patternNode struct {
	preds []predicate
	op    quantifier
}

// pattern is one compiled alternative of a rule.
type pattern []patternNode

// compileSpec validates and compiles one TokenSpec. Interning the literal
// values into the vocab as a side effect means a literal that never
// occurs in any document simply has a hash no token carries.
func compileSpec(v *Vocab, spec TokenSpec) (patternNode, error) {
	node := patternNode{op: quantOne}
	for key, val := range spec {
		if key == "OP" {
			op, ok := val.(string)
			if !ok {
				return node, errors.Wrapf(ErrInvalidPatternSpec,
					"OP value %v is not a string", val)
			}
			q, ok := quantByOp[op]
			if !ok {
				return node, errors.Wrapf(ErrInvalidPatternSpec,
					"unrecognized operator %q", op)
			}
			node.op = q
			continue
		}
		if a, ok := stringAttrs[key]; ok {
			s, ok := val.(string)
			if !ok {
				return node, errors.Wrapf(ErrInvalidPatternSpec,
					"attribute %s requires a string value, got %v", key, val)
			}
			node.preds = append(node.preds, predicate{attr: a, hash: v.Strings.Intern(s)})
			continue
		}
		if a, ok := boolAttrs[key]; ok {
			b, ok := val.(bool)
			if !ok {
				return node, errors.Wrapf(ErrInvalidPatternSpec,
					"attribute %s requires a boolean value, got %v", key, val)
			}
			node.preds = append(node.preds, predicate{attr: a, want: b})
			continue
		}
		return node, errors.Wrapf(ErrInvalidPatternSpec, "unrecognized attribute %q", key)
	}
	return node, nil
}

// compilePattern compiles one alternative. An alternative with zero
// elements fails with ErrEmptyPattern.
func compilePattern(v *Vocab, specs []TokenSpec) (pattern, error) {
	if len(specs) == 0 {
		return nil, errors.WithStack(ErrEmptyPattern)
	}
	p := make(pattern, 0, len(specs))
	for i, spec := range specs {
		node, err := compileSpec(v, spec)
		if err != nil {
			return nil, errors.Wrapf(err, "pattern element %d", i)
		}
		p = append(p, node)
	}
	return p, nil
}

// matchAt reports whether every predicate of the node holds for token i.
// A predicate over a slot no predictor ever assigned (hash zero) is a
// non-match, never an error.
func (n *patternNode) matchAt(d *Doc, i int) bool {
	tok := &d.tokens[i]
	for _, p := range n.preds {
		var ok bool
		switch p.attr {
		case attrText:
			ok = tok.orth == p.hash
		case attrLower:
			ok = tok.lex.Lower == p.hash
		case attrLemma:
			ok = tok.lemma != 0 && tok.lemma == p.hash
		case attrPOS:
			ok = tok.pos != 0 && tok.pos == p.hash
		case attrTag:
			ok = tok.tag != 0 && tok.tag == p.hash
		case attrDep:
			ok = tok.dep != 0 && tok.dep == p.hash
		case attrEntType:
			ok = tok.entType != 0 && tok.entType == p.hash
		case attrIsAlpha:
			ok = tok.lex.IsAlpha == p.want
		case attrIsDigit:
			ok = tok.lex.IsDigit == p.want
		case attrIsPunct:
			ok = tok.lex.IsPunct == p.want
		case attrIsSpace:
			ok = tok.lex.IsSpace == p.want
		case attrIsTitle:
			ok = tok.lex.IsTitle == p.want
		case attrIsLower:
			ok = tok.lex.IsLower == p.want
		case attrIsUpper:
			ok = tok.lex.IsUpper == p.want
		case attrLikeNum:
			ok = tok.lex.LikeNum == p.want
		}
		if !ok {
			return false
		}
	}
	return true
}

// minTake returns the minimum number of tokens the node must consume.
func (n *patternNode) minTake() int {
	if n.op == quantOne || n.op == quantOneOrMore {
		return 1
	}
	return 0
}

// maxTake returns the greedy consumption count at position pos: the
// length of the run of consecutive matching tokens, capped by the
// quantifier.
func (n *patternNode) maxTake(d *Doc, pos int) int {
	limit := 1
	if n.op == quantOneOrMore || n.op == quantZeroOrMore {
		limit = len(d.tokens) - pos
	}
	k := 0
	for k < limit && pos+k < len(d.tokens) && n.matchAt(d, pos+k) {
		k++
	}
	return k
}
