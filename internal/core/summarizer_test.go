package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedGenerator replays a fixed sequence of responses. Once the script
// is exhausted every call fails with a transport error.
type scriptedGenerator struct {
	script []scriptedCall
	calls  int
}

type scriptedCall struct {
	response string
	err      error
}

func (g *scriptedGenerator) Generate(_ context.Context, _ string) (string, error) {
	g.calls++
	if len(g.script) == 0 {
		return "", errors.New("transport failure")
	}
	call := g.script[0]
	g.script = g.script[1:]
	return call.response, call.err
}

func newTestPipeline(gen TextGenerator) *SummarizationPipeline {
	p := NewSummarizationPipeline(gen, NewKeywordExtractor(), zap.NewNop())
	p.retryBackoff = time.Millisecond
	return p
}

const longPlainInput = "The board met on Tuesday to discuss the proposed merger with the regional distributor. " +
	"Legal raised concerns about antitrust exposure in two states. " +
	"A follow-up vote is scheduled for next month once outside counsel reports back."

func TestSummarize_EmptyInput(t *testing.T) {
	p := newTestPipeline(&scriptedGenerator{})

	assert.Equal(t, emptySummaryFallback, p.Summarize(context.Background(), "", 150, StyleConcise))
	assert.Equal(t, emptySummaryFallback, p.Summarize(context.Background(), "   \n ", 150, StyleConcise))
}

func TestSummarize_AcceptsGoodResponse(t *testing.T) {
	want := "The board discussed the merger, legal flagged antitrust concerns, and a vote follows next month."
	gen := &scriptedGenerator{script: []scriptedCall{{response: want}}}
	p := newTestPipeline(gen)

	got := p.Summarize(context.Background(), longPlainInput, 150, StyleConcise)

	assert.Equal(t, want, got)
	assert.Equal(t, 1, gen.calls)
}

func TestSummarize_TransportFailureFallsBackToExtractive(t *testing.T) {
	gen := &scriptedGenerator{} // empty script: every call errors
	p := newTestPipeline(gen)

	got := p.Summarize(context.Background(), longPlainInput, 150, StyleDetailed)

	require.NotEmpty(t, strings.TrimSpace(got))
	assert.NotEqual(t, emptySummaryFallback, got)
	// Sentences of the fallback come from the input itself
	assert.Contains(t, got, "merger")
	assert.Equal(t, 2, gen.calls)
}

func TestSummarize_RefusalConsumesRetrySlot(t *testing.T) {
	want := "The board discussed the merger and legal flagged antitrust concerns before next month's vote."
	gen := &scriptedGenerator{script: []scriptedCall{
		{response: "I'm sorry, I cannot summarize this email."},
		{response: want},
	}}
	p := newTestPipeline(gen)

	got := p.Summarize(context.Background(), longPlainInput, 150, StyleConcise)

	assert.Equal(t, want, got)
	assert.Equal(t, 2, gen.calls)
}

func TestSummarize_RejectsSubjectEcho(t *testing.T) {
	subject := "Quarterly budget review"
	input := "Subject: " + subject + "\nFrom: alice@example.com\nContent: " +
		"Finance needs every department head to submit revised numbers before the review. " +
		"The deadline was moved up a week, so treat this as time sensitive and confirm receipt today."
	// Both attempts parrot the subject line back
	gen := &scriptedGenerator{script: []scriptedCall{
		{response: subject},
		{response: subject},
	}}
	p := newTestPipeline(gen)

	got := p.Summarize(context.Background(), input, 150, StyleConcise)

	require.NotEmpty(t, strings.TrimSpace(got))
	assert.NotEqual(t, subject, got)
	assert.Equal(t, 2, gen.calls)
}

func TestSummarize_CancelledContextStillReturnsSummary(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &scriptedGenerator{}
	p := newTestPipeline(gen)

	got := p.Summarize(ctx, longPlainInput, 150, StyleConcise)

	require.NotEmpty(t, strings.TrimSpace(got))
	// The backoff before attempt two observes the cancellation
	assert.Equal(t, 1, gen.calls)
}

func TestSummarizeEmail_DerivesUrgencyAndKeyPoints(t *testing.T) {
	p := newTestPipeline(&scriptedGenerator{})

	summary := p.SummarizeEmail(context.Background(),
		"Server outage",
		"The production database is down. This is urgent and critical, the deadline for the fix is tonight.",
		"ops@example.com")

	require.NotNil(t, summary)
	assert.Equal(t, "Server outage", summary.Subject)
	assert.Equal(t, "ops@example.com", summary.Sender)
	assert.NotEmpty(t, summary.Summary)
	assert.Equal(t, UrgencyHigh, summary.UrgencyLevel)
	assert.NotEmpty(t, summary.KeyPoints)
	assert.LessOrEqual(t, len(summary.KeyPoints), 5)
}

func TestClassifyUrgency(t *testing.T) {
	assert.Equal(t, UrgencyLow, classifyUrgency("see you at lunch"))
	assert.Equal(t, UrgencyMedium, classifyUrgency("the deadline is friday"))
	assert.Equal(t, UrgencyHigh, classifyUrgency("urgent: critical deadline today"))
}

func TestCleanGeneratedResponse(t *testing.T) {
	assert.Equal(t, "The team met on Friday.",
		cleanGeneratedResponse("Here is a summary: The team met on Friday."))
	assert.Equal(t, "The team met on Friday.",
		cleanGeneratedResponse("  The team met on Friday.  "))
}

func TestCleanGeneratedResponse_BoundsLength(t *testing.T) {
	long := strings.Repeat("word ", 200) + "End of the first part. " + strings.Repeat("tail ", 100)
	cleaned := cleanGeneratedResponse(long)

	assert.LessOrEqual(t, len(cleaned), cleanedResponseLimit+3)
}

func TestValidateGeneratedSummary(t *testing.T) {
	err := validateGeneratedSummary("short", longPlainInput, "")
	assert.ErrorIs(t, err, ErrQualityRejected)

	err = validateGeneratedSummary("As an AI I cannot help with that request.", longPlainInput, "")
	assert.ErrorIs(t, err, ErrQualityRejected)

	err = validateGeneratedSummary("Budget review", longPlainInput, "Budget review")
	assert.ErrorIs(t, err, ErrQualityRejected)

	err = validateGeneratedSummary("The board discussed the merger with counsel.", longPlainInput, "")
	assert.NoError(t, err)
}

func TestValidateGeneratedSummary_ShortInputNearIdentity(t *testing.T) {
	input := "Lunch is moved to noon tomorrow."
	err := validateGeneratedSummary("Lunch is moved to noon tomorrow again.", input, "")
	assert.ErrorIs(t, err, ErrQualityRejected)
}
