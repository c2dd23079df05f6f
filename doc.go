package spandex

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// IOB encodes a token's membership in the entity overlay.
type IOB uint8

const (
	// IOBOut marks a token outside every entity span.
	IOBOut IOB = iota
	// IOBBegin marks the first token of an entity span.
	IOBBegin
	// IOBIn marks a non-initial token of an entity span.
	IOBIn
)

// token is the per-token storage owned by a Doc. orth, hasSpace, idx and
// lex are fixed at construction; the remaining slots are populated by
// external predictors through the Doc setters.
type token struct {
	orth     uint64
	hasSpace bool
	idx      int // byte offset into the reconstructed text
	length   int // byte length of the surface text
	lex      *Lexeme

	pos     uint64
	tag     uint64
	dep     uint64
	head    int
	lemma   uint64
	entIOB  IOB
	entType uint64
}

// Doc is an ordered token sequence over a Vocab. It owns its token
// storage for its lifetime and is mutated in place only by the attribute
// setters and SetEntities. A Doc must not be mutated and matched
// concurrently; callers serialize access per document.
type Doc struct {
	vocab  *Vocab
	tokens []token
	text   string
	ents   []Span
}

// NewDoc builds a document from parallel word and trailing-space
// sequences, interning every word into the vocab as a side effect. It
// fails with ErrLengthMismatch if the sequences differ in length.
//
// Concatenating each word with a single space where its flag is set
// reproduces the document text exactly; Text is lossless by
// construction.
func NewDoc(v *Vocab, words []string, spaces []bool) (*Doc, error) {
	if len(words) != len(spaces) {
		return nil, errors.Wrapf(ErrLengthMismatch,
			"%d words, %d spaces", len(words), len(spaces))
	}

	d := &Doc{vocab: v, tokens: make([]token, len(words))}
	var sb strings.Builder
	for i, w := range words {
		lex := v.lexemeFor(w)
		d.tokens[i] = token{
			orth:     lex.Orth,
			hasSpace: spaces[i],
			idx:      sb.Len(),
			length:   len(w),
			lex:      lex,
		}
		sb.WriteString(w)
		if spaces[i] {
			sb.WriteByte(' ')
		}
	}
	d.text = sb.String()
	return d, nil
}

// Vocab returns the vocabulary this document was built against.
func (d *Doc) Vocab() *Vocab { return d.vocab }

// Len returns the number of tokens.
func (d *Doc) Len() int { return len(d.tokens) }

// Text returns the reconstructed document text.
func (d *Doc) Text() string { return d.text }

// TokenAt returns a view of token i. It fails with ErrIndexOutOfRange
// if i is outside the document.
func (d *Doc) TokenAt(i int) (Token, error) {
	if i < 0 || i >= len(d.tokens) {
		return Token{}, errors.Wrapf(ErrIndexOutOfRange,
			"index %d, document length %d", i, len(d.tokens))
	}
	return Token{doc: d, i: i}, nil
}

// Slice returns a zero-copy view of the half-open token range
// [start, end). It fails with ErrOutOfRange if start > end, start < 0,
// or end exceeds the document length.
func (d *Doc) Slice(start, end int) (Span, error) {
	if start < 0 || start > end || end > len(d.tokens) {
		return Span{}, errors.Wrapf(ErrOutOfRange,
			"[%d, %d) over document of length %d", start, end, len(d.tokens))
	}
	return Span{doc: d, Start: start, End: end}, nil
}

// SetPOS sets token i's part-of-speech slot to the interned tag hash.
func (d *Doc) SetPOS(i int, tag uint64) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	d.tokens[i].pos = tag
	return nil
}

// SetTag sets token i's fine-grained tag slot.
func (d *Doc) SetTag(i int, tag uint64) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	d.tokens[i].tag = tag
	return nil
}

// SetDep sets token i's dependency label and head index. The head is
// validated for bounds like any token index.
func (d *Doc) SetDep(i int, label uint64, head int) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	if err := d.checkIndex(head); err != nil {
		return errors.Wrap(err, "head")
	}
	d.tokens[i].dep = label
	d.tokens[i].head = head
	return nil
}

// SetLemma sets token i's lemma slot to the interned lemma hash.
func (d *Doc) SetLemma(i int, lemma uint64) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	d.tokens[i].lemma = lemma
	return nil
}

func (d *Doc) checkIndex(i int) error {
	if i < 0 || i >= len(d.tokens) {
		return errors.Wrapf(ErrIndexOutOfRange,
			"index %d, document length %d", i, len(d.tokens))
	}
	return nil
}

// SetEntities atomically replaces the document's entity overlay. Every
// span is bounds-checked and the set is rejected with ErrOverlappingSpans
// if any two spans share a token index; on failure the current overlay is
// untouched. On success every token's IOB and entity-type slots are
// recomputed from the new set: first token of a span Begin, the rest In,
// all others Out. A document may be reassigned any number of times.
func (d *Doc) SetEntities(spans []Span) error {
	sorted := make([]Span, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	for i, s := range sorted {
		if s.Start < 0 || s.Start > s.End || s.End > len(d.tokens) {
			return errors.Wrapf(ErrOutOfRange,
				"entity span [%d, %d) over document of length %d",
				s.Start, s.End, len(d.tokens))
		}
		if i > 0 && s.Start < sorted[i-1].End {
			return errors.Wrapf(ErrOverlappingSpans,
				"[%d, %d) overlaps [%d, %d)",
				sorted[i-1].Start, sorted[i-1].End, s.Start, s.End)
		}
	}

	for i := range d.tokens {
		d.tokens[i].entIOB = IOBOut
		d.tokens[i].entType = 0
	}
	for i := range sorted {
		sorted[i].doc = d
		for j := sorted[i].Start; j < sorted[i].End; j++ {
			if j == sorted[i].Start {
				d.tokens[j].entIOB = IOBBegin
			} else {
				d.tokens[j].entIOB = IOBIn
			}
			d.tokens[j].entType = sorted[i].label
		}
	}
	d.ents = sorted
	return nil
}

// Entities returns the current entity overlay, ordered by start index.
func (d *Doc) Entities() []Span {
	out := make([]Span, len(d.ents))
	copy(out, d.ents)
	return out
}

// Token is a read/write view of one token of a Doc. It holds no data of
// its own and stays valid for the document's lifetime.
type Token struct {
	doc *Doc
	i   int
}

// Index returns the token's position in the document.
func (t Token) Index() int { return t.i }

// Text returns the token's surface text.
func (t Token) Text() string {
	tok := &t.doc.tokens[t.i]
	return t.doc.text[tok.idx : tok.idx+tok.length]
}

// Orth returns the hash of the surface text.
func (t Token) Orth() uint64 { return t.doc.tokens[t.i].orth }

// Idx returns the byte offset of the token in the document text.
func (t Token) Idx() int { return t.doc.tokens[t.i].idx }

// HasSpace reports whether the token is followed by a space.
func (t Token) HasSpace() bool { return t.doc.tokens[t.i].hasSpace }

// Lexeme returns the token's context-independent attribute record.
func (t Token) Lexeme() *Lexeme { return t.doc.tokens[t.i].lex }

// POS returns the part-of-speech hash, or zero if never assigned.
func (t Token) POS() uint64 { return t.doc.tokens[t.i].pos }

// Tag returns the fine-grained tag hash, or zero if never assigned.
func (t Token) Tag() uint64 { return t.doc.tokens[t.i].tag }

// Dep returns the dependency label hash, or zero if never assigned.
func (t Token) Dep() uint64 { return t.doc.tokens[t.i].dep }

// Head returns the dependency head index.
func (t Token) Head() int { return t.doc.tokens[t.i].head }

// Lemma returns the lemma hash, or zero if never assigned.
func (t Token) Lemma() uint64 { return t.doc.tokens[t.i].lemma }

// EntIOB returns the token's entity membership marker.
func (t Token) EntIOB() IOB { return t.doc.tokens[t.i].entIOB }

// EntType returns the entity-type hash, or zero outside any entity.
func (t Token) EntType() uint64 { return t.doc.tokens[t.i].entType }

// Span is a half-open token-index range [Start, End) into a Doc, plus an
// optional label hash. It never copies token data. Two spans over the
// same document compare by their index ranges.
type Span struct {
	doc   *Doc
	Start int
	End   int
	label uint64
}

// WithLabel returns a copy of the span carrying the given label hash.
func (s Span) WithLabel(label uint64) Span {
	s.label = label
	return s
}

// Label returns the span's label hash, or zero if unlabeled.
func (s Span) Label() uint64 { return s.label }

// LabelText resolves the span's label through the document's vocab.
func (s Span) LabelText() (string, error) {
	return s.doc.vocab.Strings.Resolve(s.label)
}

// Len returns the number of tokens in the span.
func (s Span) Len() int { return s.End - s.Start }

// Doc returns the document the span views.
func (s Span) Doc() *Doc { return s.doc }

// Text returns the surface text of the span, without the trailing space
// of its last token.
func (s Span) Text() string {
	if s.Start >= s.End {
		return ""
	}
	first := &s.doc.tokens[s.Start]
	last := &s.doc.tokens[s.End-1]
	return s.doc.text[first.idx : last.idx+last.length]
}
