package spandex

import (
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"
)

// Lexeme is the context-independent attribute record for a distinct
// string value. Two tokens with identical text share one Lexeme. Records
// are computed once per distinct string and cached in the Vocab for its
// lifetime.
type Lexeme struct {
	// Orth is the hash of the surface text.
	Orth uint64
	// Lower is the hash of the lowercased text (interned as a side
	// effect of computing the record).
	Lower uint64

	IsAlpha bool
	IsDigit bool
	IsPunct bool
	IsSpace bool
	IsTitle bool
	IsLower bool
	IsUpper bool
	LikeNum bool
}

// numberWords are written-out numbers accepted by LikeNum in addition to
// digit forms.
var numberWords = map[string]bool{
	"zero": true, "one": true, "two": true, "three": true, "four": true,
	"five": true, "six": true, "seven": true, "eight": true, "nine": true,
	"ten": true, "eleven": true, "twelve": true, "hundred": true,
	"thousand": true, "million": true, "billion": true, "trillion": true,
}

// newLexeme computes the attribute record for text, interning the
// lowercase form into st.
func newLexeme(text string, st *StringTable) *Lexeme {
	lower := strings.ToLower(text)
	lex := &Lexeme{
		Orth:    st.Intern(text),
		Lower:   st.Intern(lower),
		IsAlpha: isAll(text, unicode.IsLetter),
		IsDigit: isAll(text, unicode.IsDigit),
		IsPunct: isAll(text, isPunctRune),
		IsSpace: isAll(text, unicode.IsSpace),
		IsTitle: isTitle(text),
		IsLower: text == lower && text != strings.ToUpper(text),
		IsUpper: text == strings.ToUpper(text) && text != lower,
	}
	lex.LikeNum = likeNum(text, lower)
	return lex
}

// isAll reports whether text is non-empty and every rune satisfies pred.
func isAll(text string, pred func(rune) bool) bool {
	if text == "" {
		return false
	}
	for _, r := range text {
		if !pred(r) {
			return false
		}
	}
	return true
}

func isPunctRune(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// isTitle reports title case: the first cased rune is upper and every
// following cased rune is lower.
func isTitle(text string) bool {
	cased := false
	first := true
	for _, r := range text {
		if !unicode.IsUpper(r) && !unicode.IsLower(r) {
			continue
		}
		cased = true
		if first {
			if !unicode.IsUpper(r) {
				return false
			}
			first = false
			continue
		}
		if unicode.IsUpper(r) {
			return false
		}
	}
	return cased
}

// likeNum reports whether text resembles a number: digits, digits with
// thousands separators or a decimal point, a simple fraction, or a
// written-out number word.
func likeNum(text, lower string) bool {
	if numberWords[lower] {
		return true
	}
	s := strings.TrimLeft(text, "+-")
	if s == "" {
		return false
	}
	if num, den, ok := strings.Cut(s, "/"); ok {
		return allDigits(num) && allDigits(den)
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.Replace(s, ".", "", 1)
	return allDigits(s)
}

func allDigits(s string) bool {
	return isAll(s, func(r rune) bool { return r >= '0' && r <= '9' })
}

// Lexeme returns the cached attribute record for the string registered
// under h, computing it on first request. It fails with ErrUnknownHash
// if h was never interned in this Vocab's StringTable.
func (v *Vocab) Lexeme(h uint64) (*Lexeme, error) {
	v.mu.RLock()
	lex, ok := v.lexemes[h]
	v.mu.RUnlock()
	if ok {
		return lex, nil
	}

	text, err := v.Strings.Resolve(h)
	if err != nil {
		return nil, errors.Wrap(err, "lexeme")
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if lex, ok := v.lexemes[h]; ok {
		return lex, nil
	}
	lex = newLexeme(text, v.Strings)
	v.lexemes[h] = lex
	return lex, nil
}
