package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplate_SummaryPlaceholders(t *testing.T) {
	got := renderTemplate("{{summary}} | {{ai_summary}} | {{original_content}}",
		"the summary", "the original", nil)

	assert.Equal(t, "the summary | the summary | the original", got)
}

func TestRenderTemplate_ContextWinsOverFallback(t *testing.T) {
	context := map[string]string{"email_subject": "Weekly report"}

	got := renderTemplate("Re: {{email_subject}} from {{email_from}}", "s", "o", context)

	assert.Equal(t, "Re: Weekly report from (unknown sender)", got)
}

func TestRenderTemplate_TimestampUsesFixedLayout(t *testing.T) {
	got := renderTemplate("at {{timestamp}}", "s", "o", nil)

	stamp := got[len("at "):]
	parsed, err := time.Parse("2006-01-02 15:04:05", stamp)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), parsed, time.Minute)
}

func TestRenderTemplate_UnknownPlaceholderLeftLiteral(t *testing.T) {
	got := renderTemplate("value: {{custom_field}}", "s", "o", nil)

	assert.Equal(t, "value: {{custom_field}}", got)
}

func TestRenderTemplate_CustomContextPairs(t *testing.T) {
	context := map[string]string{"ticket_id": "INC-4012"}

	got := renderTemplate("ticket {{ticket_id}}: {{summary}}", "disk is full", "o", context)

	assert.Equal(t, "ticket INC-4012: disk is full", got)
}
