package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// emptySummaryFallback is returned for blank input. Callers rely on
	// Summarize never returning an empty string.
	emptySummaryFallback = "No content available for summarization."

	defaultMaxAttempts  = 2
	defaultRetryBackoff = 1 * time.Second

	cleanedResponseLimit = 500
	hardTruncateFloor    = 250
	shortInputThreshold  = 200
)

// refusalPhrases mark generated text that is an apology or refusal rather
// than a summary. Checked case-insensitively by the quality gate.
var refusalPhrases = []string{
	"i cannot",
	"i can't",
	"i apologize",
	"i'm sorry",
	"i am unable",
	"as an ai",
	"as a language model",
}

// responsePrefixes are boilerplate lead-ins stripped from generated text
// before validation.
var responsePrefixes = []string{
	"here is a summary of the email",
	"here is a summary",
	"here's a summary",
	"here is the summary",
	"sure, here is",
	"summary",
}

var urgencyKeywords = []string{
	"urgent", "asap", "immediately", "critical", "emergency",
	"deadline", "right away", "time-sensitive", "overdue",
}

// SummarizationPipeline produces a bounded-length summary through a
// three-tier fallback chain: generated text, extractive scoring, emergency
// truncation. Summarize is total; it degrades instead of failing.
type SummarizationPipeline struct {
	generator    TextGenerator
	extractive   *extractiveSummarizer
	logger       *zap.Logger
	maxAttempts  int
	retryBackoff time.Duration
}

// NewSummarizationPipeline creates a new summarization pipeline
func NewSummarizationPipeline(generator TextGenerator, extractor *KeywordExtractor, logger *zap.Logger) *SummarizationPipeline {
	return &SummarizationPipeline{
		generator:    generator,
		extractive:   newExtractiveSummarizer(extractor),
		logger:       logger,
		maxAttempts:  defaultMaxAttempts,
		retryBackoff: defaultRetryBackoff,
	}
}

// Summarize returns a best-effort summary of text capped at maxLength words.
// It never returns an empty string: generation failures fall back to
// extractive scoring, and any panic in the fallback degrades to plain
// truncation.
func (p *SummarizationPipeline) Summarize(ctx context.Context, text string, maxLength int, style SummarizationStyle) string {
	if strings.TrimSpace(text) == "" {
		return emptySummaryFallback
	}
	if maxLength <= 0 {
		maxLength = 150
	}

	if summary, err := p.generate(ctx, text, maxLength, style); err == nil {
		return summary
	} else {
		p.logger.Warn("Generated summarization failed, falling back to extractive",
			zap.Error(err),
			zap.String("style", string(style)))
	}

	summary := p.extractiveSafely(text, maxLength, style)
	if strings.TrimSpace(summary) == "" {
		summary = emergencySummarize(text, maxLength)
	}
	return summary
}

// generate runs the Tier-1 attempts against the text generator. A response
// failing the quality gate consumes a retry slot just like a transport
// error.
func (p *SummarizationPipeline) generate(ctx context.Context, text string, maxLength int, style SummarizationStyle) (string, error) {
	prompt := buildSummaryPrompt(text, maxLength, style)
	subject := extractSubjectLine(text)

	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepWithContext(ctx, p.retryBackoff); err != nil {
				return "", err
			}
		}

		raw, err := p.generator.Generate(ctx, prompt)
		if err != nil {
			lastErr = err
			p.logger.Debug("Generation attempt failed",
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}

		cleaned := cleanGeneratedResponse(raw)
		if err := validateGeneratedSummary(cleaned, text, subject); err != nil {
			lastErr = err
			p.logger.Debug("Generated response rejected",
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}
		return cleaned, nil
	}
	return "", lastErr
}

// extractiveSafely shields the caller from panics in the extractive tier so
// the pipeline can still degrade to emergency truncation.
func (p *SummarizationPipeline) extractiveSafely(text string, maxLength int, style SummarizationStyle) (summary string) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Extractive summarization panicked",
				zap.Any("panic", r))
			summary = emergencySummarize(text, maxLength)
		}
	}()
	return p.extractive.summarize(text, maxLength, style)
}

// SummarizeEmail summarizes one email and derives key points and an urgency
// level from it.
func (p *SummarizationPipeline) SummarizeEmail(ctx context.Context, subject, body, sender string) *EmailSummary {
	content := fmt.Sprintf("Subject: %s\nFrom: %s\nContent: %s", subject, sender, body)
	summary := p.Summarize(ctx, content, 150, StyleStructured)

	return &EmailSummary{
		Summary:      summary,
		Sender:       sender,
		Subject:      subject,
		KeyPoints:    deriveKeyPoints(summary, 5),
		UrgencyLevel: classifyUrgency(subject + " " + body + " " + summary),
	}
}

// deriveKeyPoints takes the first limit non-trivial sentences of the
// summary.
func deriveKeyPoints(summary string, limit int) []string {
	points := []string{}
	for _, sentence := range splitSentences(summary) {
		trimmed := strings.TrimSpace(sentence)
		if len(trimmed) < 10 {
			continue
		}
		points = append(points, trimmed)
		if len(points) == limit {
			break
		}
	}
	return points
}

func classifyUrgency(text string) UrgencyLevel {
	lowered := strings.ToLower(text)
	hits := 0
	for _, kw := range urgencyKeywords {
		hits += strings.Count(lowered, kw)
	}
	switch {
	case hits >= 3:
		return UrgencyHigh
	case hits >= 1:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// buildSummaryPrompt phrases the generation request per style so Tier-1
// output lines up with what the extractive tier would produce.
func buildSummaryPrompt(text string, maxLength int, style SummarizationStyle) string {
	var instruction string
	switch style {
	case StyleConcise:
		instruction = fmt.Sprintf("Summarize the following text in a single short paragraph of at most %d words. State only the essential point.", maxLength)
	case StyleDetailed:
		instruction = fmt.Sprintf("Summarize the following text in at most %d words as a numbered list of the most important points.", maxLength)
	case StyleStructured:
		instruction = fmt.Sprintf("Summarize the following text in at most %d words using labeled fields: sender, topic, summary, and any requested actions.", maxLength)
	case StyleKeywordsFocused:
		instruction = fmt.Sprintf("Summarize the following text in at most %d words, leading with the key topics and any action items or deadlines it mentions.", maxLength)
	default:
		instruction = fmt.Sprintf("Summarize the following text in at most %d words.", maxLength)
	}
	return instruction + "\n\nText:\n" + text + "\n\nRespond with the summary only."
}

// cleanGeneratedResponse strips boilerplate lead-ins and bounds the response
// length before the quality gate sees it.
func cleanGeneratedResponse(raw string) string {
	cleaned := strings.TrimSpace(raw)

	lowered := strings.ToLower(cleaned)
	for _, prefix := range responsePrefixes {
		if strings.HasPrefix(lowered, prefix) {
			cleaned = strings.TrimSpace(cleaned[len(prefix):])
			lowered = strings.ToLower(cleaned)
		}
	}
	cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, ":"))

	if len(cleaned) <= cleanedResponseLimit {
		return cleaned
	}

	window := cleaned[:cleanedResponseLimit]
	if idx := strings.LastIndexAny(window, ".!?"); idx >= hardTruncateFloor {
		return cleaned[:idx+1]
	}
	return strings.TrimSpace(window) + "..."
}

// validateGeneratedSummary is the quality gate for Tier-1 responses.
func validateGeneratedSummary(summary, input, subject string) error {
	if len(summary) < 10 {
		return fmt.Errorf("%w: response too short (%d chars)", ErrQualityRejected, len(summary))
	}

	lowered := strings.ToLower(summary)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lowered, phrase) {
			return fmt.Errorf("%w: refusal phrase %q", ErrQualityRejected, phrase)
		}
	}

	if subject != "" &&
		strings.Contains(lowered, strings.ToLower(subject)) &&
		len(summary) <= len(subject)+50 {
		return fmt.Errorf("%w: response repeats the subject line", ErrQualityRejected)
	}

	if len(input) < shortInputThreshold && len(summary) > len(input)*8/10 {
		return fmt.Errorf("%w: response is near-identical to short input", ErrQualityRejected)
	}
	return nil
}

// extractSubjectLine pulls a Subject: header out of email-shaped input for
// the subject-echo check. Non-email input has no subject to echo.
func extractSubjectLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) > 8 && strings.EqualFold(trimmed[:8], "subject:") {
			return strings.TrimSpace(trimmed[8:])
		}
	}
	return ""
}

// sleepWithContext waits for the backoff period but returns early on
// cancellation.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
