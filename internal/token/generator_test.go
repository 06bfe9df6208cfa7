package token

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateLengthAndAlphabet(t *testing.T) {
	g := RandomGenerator{}
	for _, n := range []int{1, 8, 32, 64, 257} {
		s, err := g.Generate(n)
		require.NoError(t, err)
		assert.Len(t, s, n)
		for _, r := range s {
			assert.True(t, strings.ContainsRune(Alphabet, r), "unexpected rune %q", r)
		}
	}
}

func TestGenerateDistinct(t *testing.T) {
	g := RandomGenerator{}
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		s, err := g.Generate(32)
		require.NoError(t, err)
		_, dup := seen[s]
		require.False(t, dup)
		seen[s] = struct{}{}
	}
}

func TestGenerateRejectsBiasedBytes(t *testing.T) {
	// 248 is the first rejected byte value; 0 and 61 map to 'A' and '9'.
	src := bytes.NewReader(append(bytes.Repeat([]byte{255, 248}, 4), 0, 61, 0, 61, 0, 61, 0, 61))
	s, err := RandomGenerator{Source: src}.Generate(2)
	require.NoError(t, err)
	assert.Equal(t, "A9", s)
}

func TestGenerateInvalidLength(t *testing.T) {
	_, err := RandomGenerator{}.Generate(0)
	assert.True(t, errors.Is(err, ErrInvalidLength))
	_, err = RandomGenerator{}.Generate(-3)
	assert.True(t, errors.Is(err, ErrInvalidLength))
}

func TestGenerateSourceError(t *testing.T) {
	_, err := RandomGenerator{Source: bytes.NewReader(nil)}.Generate(4)
	assert.Error(t, err)
}
