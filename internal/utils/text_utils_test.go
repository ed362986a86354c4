package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestTruncateText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "short", tp.TruncateText("short", 100))
	assert.Equal(t, "unbounded", tp.TruncateText("unbounded", 0))

	long := strings.Repeat("a", 200)
	truncated := tp.TruncateText(long, 50)
	assert.True(t, strings.HasPrefix(truncated, strings.Repeat("a", 50)))
	assert.Contains(t, truncated, "Content truncated")
}

func TestTruncateText_DoesNotSplitRunes(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	// "héllo" with the cut landing mid-rune
	text := "héllo"
	truncated := tp.TruncateText(text, 2)
	assert.True(t, utf8.ValidString(truncated))
}

func TestSanitizeUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "clean text", tp.SanitizeUTF8("clean text"))

	dirty := "bad\xffbyte"
	sanitized := tp.SanitizeUTF8(dirty)
	assert.True(t, utf8.ValidString(sanitized))
	assert.Equal(t, "badbyte", sanitized)
}
