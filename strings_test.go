package spandex

import (
	"fmt"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringTableRoundTrip(t *testing.T) {
	st := NewStringTable()
	for _, s := range []string{"Hello", "world", "!", "", "naïve", "東京"} {
		h := st.Intern(s)
		got, err := st.Resolve(h)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestStringTableInternIdempotent(t *testing.T) {
	st := NewStringTable()
	h1 := st.Intern("cats")
	h2 := st.Intern("cats")
	assert.Equal(t, h1, h2)
	assert.Equal(t, 1, st.Len())
}

func TestHashDeterministicAcrossTables(t *testing.T) {
	a := NewStringTable()
	b := NewStringTable()
	for _, s := range []string{"Bowie", "very", "happy", ""} {
		assert.Equal(t, a.Intern(s), b.Intern(s), "hash of %q differs between tables", s)
		assert.Equal(t, Hash(s), a.Intern(s))
	}
}

func TestResolveUnknownHashAcrossVocabs(t *testing.T) {
	a := NewStringTable()
	b := NewStringTable()
	h := a.Intern("Bowie")

	_, err := b.Resolve(h)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownHash))

	// Interning the same string in b makes the hash resolvable there too.
	b.Intern("Bowie")
	got, err := b.Resolve(h)
	require.NoError(t, err)
	assert.Equal(t, "Bowie", got)
}

func TestStringTableConcurrentIntern(t *testing.T) {
	st := NewStringTable()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				s := fmt.Sprintf("token-%d", i)
				h := st.Intern(s)
				got, err := st.Resolve(h)
				if err != nil || got != s {
					t.Errorf("Resolve(Intern(%q)) = %q, %v", s, got, err)
					return
				}
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 200, st.Len())
}
