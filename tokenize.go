package spandex

import (
	"unicode"
	"unicode/utf8"
)

// Tokenize builds a Doc from raw text with a simple rule tokenizer:
// words are separated by whitespace, and leading or trailing punctuation
// runs become their own tokens ("apps." → "apps", "."). Internal
// punctuation is kept ("it's", "e-mail").
//
// A separator that is exactly one space becomes the preceding token's
// trailing-space flag; any other whitespace run (double spaces, tabs,
// newlines) becomes a whitespace token, so Doc.Text always reproduces
// the input exactly.
func Tokenize(v *Vocab, text string) (*Doc, error) {
	var words []string
	var spaces []bool

	emit := func(w string, space bool) {
		words = append(words, w)
		spaces = append(spaces, space)
	}

	i := 0
	for i < len(text) {
		// whitespace run
		j := i
		for j < len(text) {
			r, size := utf8.DecodeRuneInString(text[j:])
			if !unicode.IsSpace(r) {
				break
			}
			j += size
		}
		if j > i {
			if text[i:j] == " " && len(words) > 0 && !spaces[len(spaces)-1] {
				spaces[len(spaces)-1] = true
			} else {
				emit(text[i:j], false)
			}
			i = j
			continue
		}

		// field: run of non-space characters
		for j < len(text) {
			r, size := utf8.DecodeRuneInString(text[j:])
			if unicode.IsSpace(r) {
				break
			}
			j += size
		}
		for _, part := range splitField(text[i:j]) {
			emit(part, false)
		}
		i = j
	}

	return NewDoc(v, words, spaces)
}

// splitField splits one whitespace-free field into leading punctuation
// tokens, the core, and trailing punctuation tokens.
func splitField(field string) []string {
	var lead []string
	for field != "" {
		r, size := utf8.DecodeRuneInString(field)
		if !isPunctRune(r) {
			break
		}
		lead = append(lead, field[:size])
		field = field[size:]
	}

	var trail []string
	for field != "" {
		r, size := utf8.DecodeLastRuneInString(field)
		if !isPunctRune(r) {
			break
		}
		trail = append([]string{field[len(field)-size:]}, trail...)
		field = field[:len(field)-size]
	}

	parts := lead
	if field != "" {
		parts = append(parts, field)
	}
	return append(parts, trail...)
}
