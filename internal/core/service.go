package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

const (
	orchestrationSummaryLength = 150
	orchestrationMaxKeywords   = 20
)

// ForwardingService composes summarization, keyword extraction, rule
// matching and destination resolution into a single request/response
// operation. Each call is fully request-scoped: no state outlives the
// invocation except the rule set owned by the caller.
type ForwardingService struct {
	summarizer *SummarizationPipeline
	extractor  *KeywordExtractor
	matcher    *RuleMatcher
	resolver   *ForwardingResolver
	logger     *zap.Logger
}

// NewForwardingService creates a new forwarding service
func NewForwardingService(
	summarizer *SummarizationPipeline,
	extractor *KeywordExtractor,
	matcher *RuleMatcher,
	resolver *ForwardingResolver,
	logger *zap.Logger,
) *ForwardingService {
	return &ForwardingService{
		summarizer: summarizer,
		extractor:  extractor,
		matcher:    matcher,
		resolver:   resolver,
		logger:     logger,
	}
}

// ProcessAndForward runs the full pipeline: summarize, extract keywords,
// match a rule, resolve the destination into send actions. It always
// returns a result; unexpected failures come back as Success=false with a
// readable message, never as a panic out of this method.
func (s *ForwardingService) ProcessAndForward(
	ctx context.Context,
	content string,
	rules []*ForwardingRule,
	defaultDestination Destination,
	templateContext map[string]string,
) (result *ForwardingResult) {
	defer func() {
		if r := recover(); r != nil {
			err := &OrchestrationError{Stage: "pipeline", Err: fmt.Errorf("%v", r)}
			s.logger.Error("Forwarding pipeline panicked", zap.Any("panic", r))
			result = &ForwardingResult{
				Success: false,
				Message: err.Error(),
			}
		}
	}()

	summary := s.summarizer.Summarize(ctx, content, orchestrationSummaryLength, StyleKeywordsFocused)

	keywords := s.extractor.ExtractKeywords(content+" "+summary, orchestrationMaxKeywords)

	matched := s.matcher.Match(content, summary, rules)

	destination := defaultDestination
	if matched != nil {
		destination = matched.Destination
	}

	if destination == nil {
		s.logger.Info("No forwarding destination for content",
			zap.Int("rules_evaluated", len(rules)))
		return &ForwardingResult{
			Summary:           summary,
			ExtractedKeywords: keywords,
			Actions:           []SendAction{},
			Success:           false,
			Message:           "no forwarding rule matched and no default destination is configured",
		}
	}

	actions, err := s.resolver.ResolveActions(destination, summary, content, templateContext)
	if err != nil {
		orchErr := &OrchestrationError{Stage: "resolve", Err: err}
		s.logger.Error("Failed to resolve forwarding destination", zap.Error(err))
		return &ForwardingResult{
			Summary:           summary,
			ExtractedKeywords: keywords,
			MatchedRule:       matched,
			Destination:       destination,
			Actions:           []SendAction{},
			Success:           false,
			Message:           orchErr.Error(),
		}
	}

	message := "forwarded via default destination"
	if matched != nil {
		message = fmt.Sprintf("forwarded via rule %q", matched.Description)
	}
	s.logger.Info("Content forwarded",
		zap.Int("actions", len(actions)),
		zap.Bool("rule_matched", matched != nil))

	return &ForwardingResult{
		Summary:           summary,
		ExtractedKeywords: keywords,
		MatchedRule:       matched,
		Destination:       destination,
		Actions:           actions,
		Success:           true,
		Message:           message,
	}
}
