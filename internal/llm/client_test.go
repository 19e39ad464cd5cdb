package llm

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateKeepsValidUTF8(t *testing.T) {
	// A two-byte rune straddling the cut must not be split in half.
	s := strings.Repeat("a", 9) + "é"
	got := truncate(s, 10)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", 9), got)

	got = truncate(strings.Repeat("é", 10), 9)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("é", 4), got)
}

func TestTruncateShortInputUnchanged(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 100))
	assert.Equal(t, "exact", truncate("exact", 5))
}

func TestStripCodeFence(t *testing.T) {
	fenced := "```json\n[{\"name\": \"Bar Isabel\"}]\n```"
	assert.Equal(t, "[{\"name\": \"Bar Isabel\"}]", stripCodeFence(fenced))
	assert.Equal(t, "plain", stripCodeFence("plain"))
}
