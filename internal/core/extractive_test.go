package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExtractive() *extractiveSummarizer {
	return newExtractiveSummarizer(NewKeywordExtractor())
}

const emailShapedInput = "Subject: Budget approval\nFrom: alice@example.com\nContent: " +
	"The finance committee approved the annual budget on Monday. " +
	"Please review the attached breakdown and confirm by Friday. " +
	"Travel expenses were cut by ten percent across all departments."

func TestExtractiveSummarize_StructuredIncludesHeaders(t *testing.T) {
	s := newTestExtractive()

	got := s.summarize(emailShapedInput, 150, StyleStructured)

	assert.Contains(t, got, "From: alice@example.com")
	assert.Contains(t, got, "Subject: Budget approval")
	assert.Contains(t, got, "Summary:")
}

func TestExtractiveSummarize_DetailedNumbersPoints(t *testing.T) {
	s := newTestExtractive()

	got := s.summarize(emailShapedInput, 150, StyleDetailed)

	assert.True(t, strings.HasPrefix(got, "1. "), "detailed style should number its points: %q", got)
}

func TestExtractiveSummarize_KeywordsFocusedListsActionItems(t *testing.T) {
	s := newTestExtractive()

	got := s.summarize(emailShapedInput, 150, StyleKeywordsFocused)

	// "Please ... confirm by Friday" is an action item sentence
	assert.Contains(t, got, "Action items:")
	assert.Contains(t, got, "confirm by Friday")
}

func TestExtractiveSummarize_GenericKeepsOriginalOrder(t *testing.T) {
	s := newTestExtractive()

	text := "First the engine is inspected for wear. " +
		"Second the filters are replaced with new ones. " +
		"Third the oil is drained and refilled completely."
	got := s.summarize(text, 100, StyleDetailed)

	require.NotEmpty(t, got)
	first := strings.Index(got, "First")
	third := strings.Index(got, "Third")
	if first >= 0 && third >= 0 {
		assert.Less(t, first, third)
	}
}

func TestExtractiveSummarize_ConciseRespectsWordBudget(t *testing.T) {
	s := newTestExtractive()

	text := "The committee spent the entire afternoon walking through every line item of the revised annual plan before anyone was allowed to leave the room."
	got := s.summarize(text, 5, StyleConcise)

	require.NotEmpty(t, got)
	assert.LessOrEqual(t, len(strings.Fields(got)), 5)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestTruncateWords(t *testing.T) {
	assert.Equal(t, "one two three", truncateWords("one two three", 5))
	assert.Equal(t, "one two...", truncateWords("one two three four", 2))
	assert.Equal(t, "untouched when unbounded", truncateWords("untouched when unbounded", 0))
}

func TestSplitSentences(t *testing.T) {
	sentences := splitSentences("One. Two! Three? Four")

	require.Len(t, sentences, 4)
	assert.Equal(t, "One.", sentences[0])
	assert.Equal(t, "Two!", sentences[1])
	assert.Equal(t, "Three?", sentences[2])
	assert.Equal(t, "Four", sentences[3])
}

func TestEmergencySummarize_TruncatesToWordBudget(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("word ", 300))

	got := emergencySummarize(text, 50)

	assert.LessOrEqual(t, len(strings.Fields(got)), 51)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestEmergencySummarize_PrefersSentenceBoundary(t *testing.T) {
	text := strings.TrimSpace(strings.Repeat("alpha ", 40)) + ". " + strings.TrimSpace(strings.Repeat("beta ", 40))

	got := emergencySummarize(text, 50)

	assert.True(t, strings.HasSuffix(got, "."), "expected truncation at the sentence boundary: %q", got)
}

func TestEmergencySummarize_ShortInputUnchanged(t *testing.T) {
	assert.Equal(t, "nothing to cut", emergencySummarize("nothing to cut", 50))
	assert.Equal(t, emptySummaryFallback, emergencySummarize("   ", 50))
}
