package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Spaces  Around  ", "spaces-around"},
		{"Go 1.21 Released!", "go-1-21-released"},
		{"already-a-slug", "already-a-slug"},
		{"UPPER_case & symbols", "upper-case-symbols"},
		{"---", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Slugify(tc.in), "Slugify(%q)", tc.in)
	}
}

func TestIsValidSlug(t *testing.T) {
	assert.True(t, IsValidSlug("test-slug"))
	assert.True(t, IsValidSlug("a1-b2-c3"))
	assert.False(t, IsValidSlug(""))
	assert.False(t, IsValidSlug("Has-Upper"))
	assert.False(t, IsValidSlug("with space"))
	assert.False(t, IsValidSlug("unicode-é"))
}

func TestIsNumericID(t *testing.T) {
	assert.True(t, IsNumericID("42"))
	assert.False(t, IsNumericID("42a"))
	assert.False(t, IsNumericID(""))
	assert.False(t, IsNumericID("test-slug"))
}

func TestExcerptShortContentUnchanged(t *testing.T) {
	assert.Equal(t, "A short post.", Excerpt("A short post."))
}

func TestExcerptStripsMarkupAndTruncates(t *testing.T) {
	content := "<p>" + strings.Repeat("word ", 60) + "</p>"
	got := Excerpt(content)

	assert.NotContains(t, got, "<p>")
	assert.True(t, strings.HasSuffix(got, "..."))
	// truncated near the target length, never mid-word
	assert.LessOrEqual(t, len(got), 154)
	assert.NotContains(t, strings.TrimSuffix(got, "..."), "wor ")
}
