package spandex

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexemeFlags(t *testing.T) {
	tests := []struct {
		text    string
		isAlpha bool
		isDigit bool
		isPunct bool
		isSpace bool
		isTitle bool
		isLower bool
		isUpper bool
		likeNum bool
	}{
		{text: "cats", isAlpha: true, isLower: true},
		{text: "Bowie", isAlpha: true, isTitle: true},
		{text: "NASA", isAlpha: true, isUpper: true},
		{text: "iPhone", isAlpha: true},
		{text: "42", isDigit: true, likeNum: true},
		{text: "3.14", likeNum: true},
		{text: "1,000,000", likeNum: true},
		{text: "-7", likeNum: true},
		{text: "1/2", likeNum: true},
		{text: "ten", isAlpha: true, isLower: true, likeNum: true},
		{text: "Ten", isAlpha: true, isTitle: true, likeNum: true},
		{text: "!", isPunct: true},
		{text: "...", isPunct: true},
		{text: " ", isSpace: true},
		{text: "\n\t", isSpace: true},
		{text: "e-mail", isLower: true},
		{text: ""},
	}
	v := NewVocab()
	for _, tt := range tests {
		lex := v.lexemeFor(tt.text)
		assert.Equal(t, tt.isAlpha, lex.IsAlpha, "%q IsAlpha", tt.text)
		assert.Equal(t, tt.isDigit, lex.IsDigit, "%q IsDigit", tt.text)
		assert.Equal(t, tt.isPunct, lex.IsPunct, "%q IsPunct", tt.text)
		assert.Equal(t, tt.isSpace, lex.IsSpace, "%q IsSpace", tt.text)
		assert.Equal(t, tt.isTitle, lex.IsTitle, "%q IsTitle", tt.text)
		assert.Equal(t, tt.isLower, lex.IsLower, "%q IsLower", tt.text)
		assert.Equal(t, tt.isUpper, lex.IsUpper, "%q IsUpper", tt.text)
		assert.Equal(t, tt.likeNum, lex.LikeNum, "%q LikeNum", tt.text)
	}
}

func TestLexemeSharedAcrossOccurrences(t *testing.T) {
	v := NewVocab()
	d, err := NewDoc(v, []string{"very", "very", "happy"}, []bool{true, true, false})
	require.NoError(t, err)

	t0, _ := d.TokenAt(0)
	t1, _ := d.TokenAt(1)
	assert.Same(t, t0.Lexeme(), t1.Lexeme(), "identical text must share one lexeme record")
}

func TestLexemeByHash(t *testing.T) {
	v := NewVocab()
	h := v.Strings.Intern("Happy")

	lex, err := v.Lexeme(h)
	require.NoError(t, err)
	assert.True(t, lex.IsTitle)
	assert.Equal(t, Hash("happy"), lex.Lower)

	// lowercase form was interned as a side effect
	got, err := v.Strings.Resolve(lex.Lower)
	require.NoError(t, err)
	assert.Equal(t, "happy", got)

	again, err := v.Lexeme(h)
	require.NoError(t, err)
	assert.Same(t, lex, again)
}

func TestLexemeUnknownHash(t *testing.T) {
	v := NewVocab()
	_, err := v.Lexeme(Hash("never-interned"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownHash))
}
