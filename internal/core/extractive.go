package core

import (
	"fmt"
	"sort"
	"strings"
)

// importanceKeywords raise a sentence's score when present.
var importanceKeywords = []string{
	"urgent", "important", "deadline", "critical", "required",
	"action", "decision", "approve", "budget", "review",
}

// boilerplateKeywords are common email phrasing that still signals content
// worth keeping, weighted lower than importance hits.
var boilerplateKeywords = []string{
	"meeting", "schedule", "attached", "request", "update",
	"confirm", "reminder", "follow up",
}

// actionItemMarkers flag sentences that ask the reader to do something.
var actionItemMarkers = []string{
	"please", "need to", "must", "should", "by friday", "by monday",
	"by tomorrow", "by end of", "deadline", "asap", "required",
}

// extractiveSummarizer is the Tier-2 fallback: no model involved, just
// sentence scoring and style-aware formatting.
type extractiveSummarizer struct {
	extractor *KeywordExtractor
}

func newExtractiveSummarizer(extractor *KeywordExtractor) *extractiveSummarizer {
	return &extractiveSummarizer{extractor: extractor}
}

type scoredSentence struct {
	text     string
	position int
	score    float64
}

func (s *extractiveSummarizer) summarize(text string, maxLength int, style SummarizationStyle) string {
	if looksLikeEmail(text) {
		return s.summarizeEmailShaped(text, maxLength, style)
	}
	return s.summarizeGeneric(text, maxLength, style)
}

// summarizeEmailShaped parses Subject:/From: headers and formats the body
// summary per style so it reads like the generated tier would have.
func (s *extractiveSummarizer) summarizeEmailShaped(text string, maxLength int, style SummarizationStyle) string {
	subject, sender, body := parseEmailFields(text)
	if strings.TrimSpace(body) == "" {
		body = text
	}
	scored := s.scoreSentences(body)

	switch style {
	case StyleStructured:
		var b strings.Builder
		if sender != "" {
			fmt.Fprintf(&b, "From: %s\n", sender)
		}
		if subject != "" {
			fmt.Fprintf(&b, "Subject: %s\n", subject)
		}
		fmt.Fprintf(&b, "Summary: %s", joinTopSentences(scored, 2, maxLength))
		return b.String()

	case StyleDetailed:
		top := topSentences(scored, 3)
		var b strings.Builder
		for i, sentence := range top {
			fmt.Fprintf(&b, "%d. %s\n", i+1, sentence)
		}
		return strings.TrimSpace(b.String())

	case StyleKeywordsFocused:
		keywords := s.extractor.ExtractKeywords(subject+" "+body, 8)
		var b strings.Builder
		if len(keywords) > 0 {
			fmt.Fprintf(&b, "Topics: %s. ", strings.Join(keywords, ", "))
		}
		actions := actionItemSentences(scored)
		if len(actions) > 0 {
			fmt.Fprintf(&b, "Action items: %s", strings.Join(actions, " "))
		} else {
			b.WriteString(joinTopSentences(scored, 1, maxLength))
		}
		return strings.TrimSpace(b.String())

	default: // StyleConcise
		return joinTopSentences(scored, 1, maxLength)
	}
}

// summarizeGeneric greedily selects sentences by descending score until 80%
// of the word budget is used, then emits them in original order.
func (s *extractiveSummarizer) summarizeGeneric(text string, maxLength int, style SummarizationStyle) string {
	scored := s.scoreSentences(text)
	if len(scored) == 0 {
		return emergencySummarize(text, maxLength)
	}
	if style == StyleConcise {
		return joinTopSentences(scored, 1, maxLength)
	}

	byScore := make([]scoredSentence, len(scored))
	copy(byScore, scored)
	sort.SliceStable(byScore, func(i, j int) bool {
		return byScore[i].score > byScore[j].score
	})

	budget := maxLength * 8 / 10
	words := 0
	selected := []scoredSentence{}
	for _, sentence := range byScore {
		count := len(strings.Fields(sentence.text))
		if words > 0 && words+count > budget {
			break
		}
		selected = append(selected, sentence)
		words += count
		if words >= budget {
			break
		}
	}

	sort.Slice(selected, func(i, j int) bool {
		return selected[i].position < selected[j].position
	})
	parts := make([]string, len(selected))
	for i, sentence := range selected {
		parts[i] = sentence.text
	}
	return strings.Join(parts, " ")
}

// scoreSentences applies the position, length and keyword biases to every
// sentence of the input.
func (s *extractiveSummarizer) scoreSentences(text string) []scoredSentence {
	sentences := splitSentences(text)
	scored := make([]scoredSentence, 0, len(sentences))

	total := len(sentences)
	for i, sentence := range sentences {
		trimmed := strings.TrimSpace(sentence)
		if trimmed == "" {
			continue
		}

		position := 1.0
		switch {
		case i == 0:
			position = 2.0
		case i == total-1:
			position = 1.5
		case total > 0 && i < total/3:
			position = 1.2
		}

		words := len(strings.Fields(trimmed))
		length := 0.5
		switch {
		case words >= 8 && words <= 25:
			length = 1.5
		case words >= 5 && words <= 30:
			length = 1.0
		}

		bonus := 0.0
		lowered := strings.ToLower(trimmed)
		for _, kw := range importanceKeywords {
			if strings.Contains(lowered, kw) {
				bonus += 0.5
			}
		}
		for _, kw := range boilerplateKeywords {
			if strings.Contains(lowered, kw) {
				bonus += 0.3
			}
		}

		scored = append(scored, scoredSentence{
			text:     trimmed,
			position: i,
			score:    position*length + bonus,
		})
	}
	return scored
}

func topSentences(scored []scoredSentence, n int) []string {
	byScore := make([]scoredSentence, len(scored))
	copy(byScore, scored)
	sort.SliceStable(byScore, func(i, j int) bool {
		return byScore[i].score > byScore[j].score
	})
	if len(byScore) > n {
		byScore = byScore[:n]
	}
	sentences := make([]string, len(byScore))
	for i, sentence := range byScore {
		sentences[i] = sentence.text
	}
	return sentences
}

func joinTopSentences(scored []scoredSentence, n, maxLength int) string {
	joined := strings.Join(topSentences(scored, n), " ")
	if joined == "" {
		return emptySummaryFallback
	}
	return truncateWords(joined, maxLength)
}

// truncateWords bounds text to maxLength words, marking the cut with an
// ellipsis.
func truncateWords(text string, maxLength int) string {
	words := strings.Fields(text)
	if maxLength <= 0 || len(words) <= maxLength {
		return text
	}
	return strings.Join(words[:maxLength], " ") + "..."
}

func actionItemSentences(scored []scoredSentence) []string {
	actions := []string{}
	for _, sentence := range scored {
		lowered := strings.ToLower(sentence.text)
		for _, marker := range actionItemMarkers {
			if strings.Contains(lowered, marker) {
				actions = append(actions, sentence.text)
				break
			}
		}
	}
	return actions
}

// looksLikeEmail reports whether the input carries email header markers.
func looksLikeEmail(text string) bool {
	lowered := strings.ToLower(text)
	return strings.Contains(lowered, "subject:") || strings.Contains(lowered, "from:")
}

// parseEmailFields extracts Subject: and From: header values; every other
// line (with a Content: prefix stripped) becomes the body.
func parseEmailFields(text string) (subject, sender, body string) {
	var bodyLines []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		lowered := strings.ToLower(trimmed)
		switch {
		case strings.HasPrefix(lowered, "subject:"):
			subject = strings.TrimSpace(trimmed[8:])
		case strings.HasPrefix(lowered, "from:"):
			sender = strings.TrimSpace(trimmed[5:])
		case strings.HasPrefix(lowered, "content:"):
			bodyLines = append(bodyLines, strings.TrimSpace(trimmed[8:]))
		default:
			bodyLines = append(bodyLines, line)
		}
	}
	return subject, sender, strings.TrimSpace(strings.Join(bodyLines, "\n"))
}

// splitSentences splits on sentence terminators, keeping the terminator
// attached to its sentence.
func splitSentences(text string) []string {
	sentences := []string{}
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// emergencySummarize is the Tier-3 last resort: truncate to the word budget
// and prefer ending on a sentence boundary when one lies past the midpoint.
func emergencySummarize(text string, maxLength int) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return emptySummaryFallback
	}

	words := strings.Fields(trimmed)
	if len(words) <= maxLength {
		return trimmed
	}

	truncated := strings.Join(words[:maxLength], " ")
	if idx := strings.LastIndexAny(truncated, ".!?"); idx > len(truncated)/2 {
		return truncated[:idx+1]
	}
	return truncated + "..."
}
