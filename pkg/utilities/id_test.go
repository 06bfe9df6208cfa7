package utilities

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNumericID(t *testing.T) {
	digits := regexp.MustCompile(`^[0-9]+$`)
	id := NewNumericID(20)
	require.Len(t, id, 20)
	assert.Regexp(t, digits, id)

	// date prefix
	assert.Equal(t, time.Now().Format("20060102"), id[:8])

	assert.Len(t, NewNumericID(100), 32)
	assert.Empty(t, NewNumericID(0))
}

func TestNewSnowflakeID(t *testing.T) {
	t.Setenv("SNOWFLAKE_NODE", "3")
	a, b := NewSnowflakeID(), NewSnowflakeID()
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^[0-9]+$`, a)
}
