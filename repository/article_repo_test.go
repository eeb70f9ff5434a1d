package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseID(t *testing.T) {
	id, ok := parseID("42")
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)

	// An all-digit value too large for the key space must not wrap to an
	// unrelated id.
	_, ok = parseID(strings.Repeat("9", 30))
	assert.False(t, ok)

	_, ok = parseID("")
	assert.False(t, ok)
	_, ok = parseID("-1")
	assert.False(t, ok)
}
