// Package spandex provides a tokenized document model backed by a shared
// string-interning vocabulary, and two rule-based matching engines over
// it: a quantified attribute-pattern matcher and an exact multi-token
// phrase matcher.
//
// A Doc is built once from a word list (or raw text via Tokenize) against
// a Vocab; matchers are compiled once against the same Vocab and then run
// against any number of documents, producing match spans that can be
// written back as the document's entity overlay.
package spandex

import "sync"

// Vocab owns the shared string table and the per-string lexeme cache.
// One Vocab is typically shared by many documents and matchers; all of
// its read operations are safe under concurrent use, and interning
// serializes its own inserts.
type Vocab struct {
	// Strings is the bidirectional string↔hash registry. Hashes are only
	// meaningful to the table that produced them: resolving a hash from
	// another Vocab fails with ErrUnknownHash unless the same string was
	// interned here too.
	Strings *StringTable

	mu      sync.RWMutex
	lexemes map[uint64]*Lexeme
}

// NewVocab creates an empty vocabulary.
func NewVocab() *Vocab {
	return &Vocab{
		Strings: NewStringTable(),
		lexemes: make(map[uint64]*Lexeme),
	}
}

// lexemeFor interns text and returns its attribute record. Used on the
// document-construction path where the text is in hand, avoiding the
// hash→string round trip of Lexeme.
func (v *Vocab) lexemeFor(text string) *Lexeme {
	h := v.Strings.Intern(text)

	v.mu.RLock()
	lex, ok := v.lexemes[h]
	v.mu.RUnlock()
	if ok {
		return lex
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if lex, ok := v.lexemes[h]; ok {
		return lex
	}
	lex = newLexeme(text, v.Strings)
	v.lexemes[h] = lex
	return lex
}
