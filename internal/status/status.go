// Package status implements the bit-packed status word of users, tokens
// and notifications.
//
// Bit positions are persisted, so a layout may only ever be appended to.
package status

import (
	"errors"
	"fmt"
)

// MaxBits is the width of a Flags word.
const MaxBits = 32

// Flags is a status word; bit n is read with (s >> n) & 1.
type Flags uint32

var (
	// ErrUnknownFlag is returned when a flag name is not part of a layout.
	ErrUnknownFlag = errors.New("unknown status flag")
	// ErrUndefinedBits is returned by Layout.Validate.
	ErrUndefinedBits = errors.New("status sets undefined bits")
)

// Test reports whether bit is set in s.
func Test(s Flags, bit uint) bool {
	if bit >= MaxBits {
		return false
	}
	return (s>>bit)&1 == 1
}

// Set returns s with only bit changed to v.
func Set(s Flags, bit uint, v bool) Flags {
	if bit >= MaxBits {
		return s
	}
	if v {
		return s | 1<<bit
	}
	return s &^ (1 << bit)
}

func (s Flags) Has(bit uint) bool { return Test(s, bit) }

func (s Flags) With(bit uint, v bool) Flags { return Set(s, bit, v) }

// Layout documents the meaning of each bit for one entity type, low-to-high.
type Layout struct {
	Entity string
	Bits   []string
}

// Index returns the bit position of name.
func (l Layout) Index(name string) (uint, error) {
	for i, b := range l.Bits {
		if b == name {
			return uint(i), nil
		}
	}
	return 0, fmt.Errorf("%s: %w: %q", l.Entity, ErrUnknownFlag, name)
}

// MustIndex is Index for names known at compile time.
func (l Layout) MustIndex(name string) uint {
	i, err := l.Index(name)
	if err != nil {
		panic(err)
	}
	return i
}

// Validate rejects words carrying bits the layout does not define.
func (l Layout) Validate(s Flags) error {
	if len(l.Bits) >= MaxBits {
		return nil
	}
	if extra := s >> uint(len(l.Bits)); extra != 0 {
		return fmt.Errorf("%s: %w: %#b", l.Entity, ErrUndefinedBits, s)
	}
	return nil
}
