package token

import (
	"crypto/rand"
	"errors"
	"io"
)

// Alphabet is the 62-symbol set token strings are drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// ErrInvalidLength is returned for non-positive lengths.
var ErrInvalidLength = errors.New("token length must be positive")

// Generator produces unguessable token strings.
type Generator interface {
	Generate(length int) (string, error)
}

// RandomGenerator draws characters uniformly from Alphabet using a
// cryptographically secure source.
type RandomGenerator struct {
	// Source defaults to crypto/rand.Reader.
	Source io.Reader
}

// largest multiple of len(Alphabet) that fits in a byte; bytes at or above it are rejected
const maxUnbiased = 256 - 256%len(Alphabet)

func (g RandomGenerator) Generate(length int) (string, error) {
	if length <= 0 {
		return "", ErrInvalidLength
	}
	src := g.Source
	if src == nil {
		src = rand.Reader
	}
	out := make([]byte, 0, length)
	buf := make([]byte, length+length/4+1)
	for len(out) < length {
		if _, err := io.ReadFull(src, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= maxUnbiased {
				continue
			}
			out = append(out, Alphabet[int(b)%len(Alphabet)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}
