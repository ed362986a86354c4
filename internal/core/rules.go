package core

import (
	"sort"

	"github.com/mikey/llm-smart-forward/internal/utils"
	"go.uber.org/zap"
)

// fuzzyHaystackLimit caps the text handed to the per-token Levenshtein loop.
// Exact containment stays unbounded; only the quadratic fuzzy path is
// length-guarded.
const fuzzyHaystackLimit = 64 * 1024

// RuleMatcher resolves which forwarding rule, if any, applies to a piece of
// content. Resolution is priority-first: rules are walked in descending
// priority and the first one reaching its minimum match count wins,
// regardless of how many keywords a later rule might have matched.
type RuleMatcher struct {
	extractor     *KeywordExtractor
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
}

// NewRuleMatcher creates a new rule matcher
func NewRuleMatcher(extractor *KeywordExtractor, textProcessor *utils.TextProcessor, logger *zap.Logger) *RuleMatcher {
	return &RuleMatcher{
		extractor:     extractor,
		textProcessor: textProcessor,
		logger:        logger,
	}
}

// Match returns the highest-priority rule satisfied by content+summary, or
// nil when no rule matches. Ties on priority keep configuration order.
func (m *RuleMatcher) Match(content, summary string, rules []*ForwardingRule) *ForwardingRule {
	if len(rules) == 0 {
		return nil
	}

	ordered := make([]*ForwardingRule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority > ordered[j].Priority
	})

	haystack := content + " " + summary
	bounded := haystack
	if len(haystack) > fuzzyHaystackLimit {
		bounded = m.textProcessor.TruncateText(haystack, fuzzyHaystackLimit)
	}

	for _, rule := range ordered {
		fuzzy := rule.Strategy != MatchExact
		target := haystack
		if fuzzy {
			target = bounded
		}
		matched := m.extractor.FindKeywordMatches(target, rule.Keywords, fuzzy)
		if len(matched) >= rule.MinimumMatches {
			m.logger.Debug("Forwarding rule matched",
				zap.String("rule", rule.Description),
				zap.Int("priority", rule.Priority),
				zap.Strings("matched_keywords", matched))
			return rule
		}
	}
	return nil
}
