package spandex

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocText(t *testing.T) {
	tests := []struct {
		words  []string
		spaces []bool
		want   string
	}{
		{[]string{"Hello", "world", "!"}, []bool{true, false, false}, "Hello world!"},
		{[]string{"Hello", "world", "!"}, []bool{true, true, true}, "Hello world ! "},
		{[]string{}, []bool{}, ""},
		{[]string{"one"}, []bool{false}, "one"},
	}
	v := NewVocab()
	for _, tt := range tests {
		d, err := NewDoc(v, tt.words, tt.spaces)
		require.NoError(t, err)
		assert.Equal(t, tt.want, d.Text())
		assert.Equal(t, len(tt.words), d.Len())
	}
}

func TestNewDocLengthMismatch(t *testing.T) {
	v := NewVocab()
	_, err := NewDoc(v, []string{"a", "b"}, []bool{true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLengthMismatch))
}

func TestTokenViews(t *testing.T) {
	v := NewVocab()
	d, err := NewDoc(v, []string{"Hello", "world", "!"}, []bool{true, false, false})
	require.NoError(t, err)

	tok, err := d.TokenAt(1)
	require.NoError(t, err)
	assert.Equal(t, "world", tok.Text())
	assert.Equal(t, Hash("world"), tok.Orth())
	assert.Equal(t, 6, tok.Idx())
	assert.False(t, tok.HasSpace())

	tok0, _ := d.TokenAt(0)
	assert.True(t, tok0.HasSpace())
	assert.Equal(t, 0, tok0.Idx())

	_, err = d.TokenAt(3)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	_, err = d.TokenAt(-1)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
}

func TestSlice(t *testing.T) {
	v := NewVocab()
	d, err := NewDoc(v, []string{"I", "love", "cats", "!"}, []bool{true, true, false, false})
	require.NoError(t, err)

	s, err := d.Slice(1, 3)
	require.NoError(t, err)
	assert.Equal(t, "love cats", s.Text())
	assert.Equal(t, 2, s.Len())

	empty, err := d.Slice(2, 2)
	require.NoError(t, err)
	assert.Equal(t, "", empty.Text())

	whole, err := d.Slice(0, 4)
	require.NoError(t, err)
	assert.Equal(t, "I love cats!", whole.Text())

	for _, r := range [][2]int{{3, 1}, {0, 5}, {-1, 2}} {
		_, err := d.Slice(r[0], r[1])
		require.Error(t, err, "Slice(%d, %d)", r[0], r[1])
		assert.True(t, errors.Is(err, ErrOutOfRange))
	}
}

func TestAttributeSetters(t *testing.T) {
	v := NewVocab()
	d, err := NewDoc(v, []string{"She", "bought", "apps"}, []bool{true, true, false})
	require.NoError(t, err)

	noun := v.Strings.Intern("NOUN")
	buy := v.Strings.Intern("buy")
	dobj := v.Strings.Intern("dobj")

	require.NoError(t, d.SetPOS(2, noun))
	require.NoError(t, d.SetLemma(1, buy))
	require.NoError(t, d.SetDep(2, dobj, 1))

	tok, _ := d.TokenAt(2)
	assert.Equal(t, noun, tok.POS())
	assert.Equal(t, dobj, tok.Dep())
	assert.Equal(t, 1, tok.Head())
	tok1, _ := d.TokenAt(1)
	assert.Equal(t, buy, tok1.Lemma())

	assert.True(t, errors.Is(d.SetPOS(3, noun), ErrIndexOutOfRange))
	assert.True(t, errors.Is(d.SetLemma(-1, buy), ErrIndexOutOfRange))
	assert.True(t, errors.Is(d.SetDep(0, dobj, 7), ErrIndexOutOfRange))
}

func TestSetEntities(t *testing.T) {
	v := NewVocab()
	d, err := NewDoc(v, []string{"I", "saw", "David", "Bowie"}, []bool{true, true, true, false})
	require.NoError(t, err)

	person := v.Strings.Intern("PERSON")
	span, err := d.Slice(2, 4)
	require.NoError(t, err)
	require.NoError(t, d.SetEntities([]Span{span.WithLabel(person)}))

	wantIOB := []IOB{IOBOut, IOBOut, IOBBegin, IOBIn}
	for i, want := range wantIOB {
		tok, _ := d.TokenAt(i)
		assert.Equal(t, want, tok.EntIOB(), "token %d IOB", i)
	}
	t2, _ := d.TokenAt(2)
	assert.Equal(t, person, t2.EntType())

	ents := d.Entities()
	require.Len(t, ents, 1)
	assert.Equal(t, "David Bowie", ents[0].Text())
	label, err := ents[0].LabelText()
	require.NoError(t, err)
	assert.Equal(t, "PERSON", label)
}

func TestSetEntitiesOverwriteClears(t *testing.T) {
	v := NewVocab()
	d, err := NewDoc(v, []string{"a", "b", "c", "d"}, []bool{true, true, true, false})
	require.NoError(t, err)

	person := v.Strings.Intern("PERSON")
	span, _ := d.Slice(2, 4)
	require.NoError(t, d.SetEntities([]Span{span.WithLabel(person)}))
	require.NoError(t, d.SetEntities(nil))

	for i := 0; i < d.Len(); i++ {
		tok, _ := d.TokenAt(i)
		assert.Equal(t, IOBOut, tok.EntIOB(), "token %d", i)
		assert.Equal(t, uint64(0), tok.EntType(), "token %d", i)
	}
	assert.Empty(t, d.Entities())
}

func TestSetEntitiesRejectsOverlap(t *testing.T) {
	v := NewVocab()
	d, err := NewDoc(v, []string{"a", "b", "c", "d"}, []bool{true, true, true, false})
	require.NoError(t, err)

	org := v.Strings.Intern("ORG")
	first, _ := d.Slice(0, 2)
	require.NoError(t, d.SetEntities([]Span{first.WithLabel(org)}))

	s1, _ := d.Slice(0, 3)
	s2, _ := d.Slice(2, 4)
	err = d.SetEntities([]Span{s1, s2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOverlappingSpans))

	// rejected assignment must leave the previous overlay intact
	ents := d.Entities()
	require.Len(t, ents, 1)
	assert.Equal(t, 0, ents[0].Start)
	assert.Equal(t, 2, ents[0].End)
	tok, _ := d.TokenAt(0)
	assert.Equal(t, IOBBegin, tok.EntIOB())
}

func TestSetEntitiesBounds(t *testing.T) {
	v := NewVocab()
	d, err := NewDoc(v, []string{"a", "b"}, []bool{true, false})
	require.NoError(t, err)

	err = d.SetEntities([]Span{{Start: 1, End: 3}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutOfRange))
}

func TestAdjacentEntitiesAllowed(t *testing.T) {
	v := NewVocab()
	d, err := NewDoc(v, []string{"a", "b", "c", "d"}, []bool{true, true, true, false})
	require.NoError(t, err)

	s1, _ := d.Slice(0, 2)
	s2, _ := d.Slice(2, 4)
	require.NoError(t, d.SetEntities([]Span{s2, s1})) // order does not matter

	ents := d.Entities()
	require.Len(t, ents, 2)
	assert.Equal(t, 0, ents[0].Start)
	assert.Equal(t, 2, ents[1].Start)
	tok, _ := d.TokenAt(2)
	assert.Equal(t, IOBBegin, tok.EntIOB())
}
