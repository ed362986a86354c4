package core

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mikey/llm-smart-forward/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type panickingGenerator struct{}

func (panickingGenerator) Generate(context.Context, string) (string, error) {
	panic("generator exploded")
}

func newTestService(gen TextGenerator) *ForwardingService {
	extractor := NewKeywordExtractor()
	logger := zap.NewNop()
	summarizer := NewSummarizationPipeline(gen, extractor, logger)
	summarizer.retryBackoff = time.Millisecond
	return NewForwardingService(summarizer,
		extractor,
		NewRuleMatcher(extractor, utils.NewTextProcessor(logger), logger),
		NewForwardingResolver(),
		logger)
}

const urgentBudgetEmail = "Subject: Meeting\nFrom: alice@example.com\nContent: Please review the budget by Friday, urgent."

func TestProcessAndForward_EndToEnd(t *testing.T) {
	service := newTestService(&scriptedGenerator{})

	rule, err := NewForwardingRule(
		[]string{"urgent", "budget"}, 2, MatchFuzzy, 10,
		EmailDestination{
			Email:        "boss@example.com",
			BodyTemplate: "Summary: {{summary}}\nTime: {{timestamp}}",
		},
		"budget alerts")
	require.NoError(t, err)

	result := service.ProcessAndForward(context.Background(), urgentBudgetEmail,
		[]*ForwardingRule{rule}, nil,
		map[string]string{"email_subject": "Meeting"})

	require.NotNil(t, result)
	assert.True(t, result.Success)
	require.NotNil(t, result.MatchedRule)
	assert.Equal(t, "budget alerts", result.MatchedRule.Description)
	assert.NotEmpty(t, result.Summary)
	assert.Contains(t, result.Message, "budget alerts")

	require.Len(t, result.Actions, 1)
	action := result.Actions[0]
	assert.Equal(t, PlatformEmail, action.Platform)
	assert.Equal(t, "boss@example.com", action.Email)
	assert.Equal(t, "Forwarded: Meeting", action.Subject)
	assert.Contains(t, action.Body, result.Summary)

	// The rendered timestamp must parse under the fixed layout
	idx := strings.Index(action.Body, "Time: ")
	require.GreaterOrEqual(t, idx, 0)
	stamp := action.Body[idx+len("Time: "):]
	_, err = time.Parse("2006-01-02 15:04:05", stamp)
	assert.NoError(t, err)
}

func TestProcessAndForward_NoRuleNoDefault(t *testing.T) {
	service := newTestService(&scriptedGenerator{})

	result := service.ProcessAndForward(context.Background(), urgentBudgetEmail, nil, nil, nil)

	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Empty(t, result.Actions)
	assert.NotEmpty(t, result.Summary)
	assert.NotEmpty(t, result.Message)
	assert.Nil(t, result.MatchedRule)
}

func TestProcessAndForward_DefaultDestination(t *testing.T) {
	service := newTestService(&scriptedGenerator{})

	result := service.ProcessAndForward(context.Background(), urgentBudgetEmail, nil,
		TelegramDestination{ChatID: "42", MessageTemplate: "{{summary}}"}, nil)

	require.NotNil(t, result)
	assert.True(t, result.Success)
	assert.Nil(t, result.MatchedRule)
	assert.Equal(t, "forwarded via default destination", result.Message)
	require.Len(t, result.Actions, 1)
	assert.Equal(t, PlatformTelegram, result.Actions[0].Platform)
	assert.Equal(t, result.Summary, result.Actions[0].Body)
}

func TestProcessAndForward_RuleBeatsDefault(t *testing.T) {
	service := newTestService(&scriptedGenerator{})

	rule, err := NewForwardingRule([]string{"budget"}, 1, MatchExact, 1,
		EmailDestination{Email: "finance@example.com"}, "finance")
	require.NoError(t, err)

	result := service.ProcessAndForward(context.Background(), urgentBudgetEmail,
		[]*ForwardingRule{rule}, TelegramDestination{ChatID: "42"}, nil)

	require.NotNil(t, result)
	assert.True(t, result.Success)
	require.Len(t, result.Actions, 1)
	assert.Equal(t, PlatformEmail, result.Actions[0].Platform)
	assert.Equal(t, "finance@example.com", result.Actions[0].Email)
}

func TestProcessAndForward_PanicBecomesFailedResult(t *testing.T) {
	service := newTestService(panickingGenerator{})

	result := service.ProcessAndForward(context.Background(), urgentBudgetEmail, nil, nil, nil)

	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "pipeline")
}
