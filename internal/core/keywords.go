package core

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// stopWords are dropped during tokenization. Fixed set, lowercase.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {},
	"you": {}, "all": {}, "can": {}, "her": {}, "was": {}, "one": {},
	"our": {}, "out": {}, "him": {}, "had": {}, "has": {}, "have": {},
	"this": {}, "that": {}, "with": {}, "from": {}, "they": {}, "will": {},
	"would": {}, "there": {}, "their": {}, "what": {}, "about": {},
	"which": {}, "when": {}, "were": {}, "been": {}, "your": {},
	"them": {}, "then": {}, "than": {}, "some": {}, "into": {},
	"more": {}, "other": {}, "could": {}, "these": {}, "also": {},
	"after": {}, "just": {}, "only": {}, "over": {}, "such": {},
	"very": {}, "please": {}, "regards": {}, "dear": {}, "hello": {},
	"thanks": {}, "thank": {},
}

const (
	minTokenLength       = 3
	fuzzySimilarityFloor = 0.7
	earlyPositionWindow  = 100
)

// KeywordExtractor tokenizes and scores text to produce ranked keyword
// candidates, and matches target keyword lists against text either exactly
// or fuzzily.
type KeywordExtractor struct{}

// NewKeywordExtractor creates a new keyword extractor
func NewKeywordExtractor() *KeywordExtractor {
	return &KeywordExtractor{}
}

// ExtractKeywords returns up to maxKeywords candidates ranked by descending
// relevance. Blank input yields an empty slice, not an error. Candidates are
// recurring unigrams and adjacent bigrams; single-occurrence candidates are
// dropped to reduce noise. Equal scores order lexicographically so output is
// reproducible.
func (e *KeywordExtractor) ExtractKeywords(text string, maxKeywords int) []string {
	if strings.TrimSpace(text) == "" || maxKeywords <= 0 {
		return []string{}
	}

	lowered := strings.ToLower(text)
	tokens := e.tokenize(lowered)
	if len(tokens) == 0 {
		return []string{}
	}

	frequencies := make(map[string]int)
	for i, token := range tokens {
		frequencies[token]++
		if i+1 < len(tokens) {
			frequencies[token+" "+tokens[i+1]]++
		}
	}

	head := lowered
	if len(head) > earlyPositionWindow {
		head = head[:earlyPositionWindow]
	}

	candidates := make([]Keyword, 0, len(frequencies))
	for candidate, freq := range frequencies {
		if freq <= 1 {
			continue
		}
		score := float64(freq) / float64(len(text)) * 1000
		if len(candidate) > 5 {
			score *= 1.5
		}
		if strings.Contains(head, candidate) {
			score *= 1.3
		}
		candidates = append(candidates, Keyword{Text: candidate, Score: score})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Text < candidates[j].Text
	})

	if len(candidates) > maxKeywords {
		candidates = candidates[:maxKeywords]
	}
	keywords := make([]string, len(candidates))
	for i, c := range candidates {
		keywords[i] = c.Text
	}
	return keywords
}

// FindKeywordMatches returns the subset of targetKeywords present in text.
// Exact mode is case-insensitive substring containment. Fuzzy mode also
// accepts any text token whose normalized Levenshtein similarity to the
// target exceeds 0.7. Long inputs should be truncated by the caller before
// fuzzy matching; the DP table is quadratic per token pair.
func (e *KeywordExtractor) FindKeywordMatches(text string, targetKeywords []string, fuzzyMatch bool) []string {
	matches := []string{}
	if strings.TrimSpace(text) == "" || len(targetKeywords) == 0 {
		return matches
	}

	lowered := strings.ToLower(text)
	var tokens []string
	if fuzzyMatch {
		tokens = e.tokenize(lowered)
	}

	for _, target := range targetKeywords {
		normalized := strings.ToLower(strings.TrimSpace(target))
		if normalized == "" {
			continue
		}
		if strings.Contains(lowered, normalized) {
			matches = append(matches, target)
			continue
		}
		if fuzzyMatch && e.fuzzyTokenMatch(tokens, normalized) {
			matches = append(matches, target)
		}
	}
	return matches
}

func (e *KeywordExtractor) fuzzyTokenMatch(tokens []string, target string) bool {
	for _, token := range tokens {
		maxLen := len(token)
		if len(target) > maxLen {
			maxLen = len(target)
		}
		if maxLen == 0 {
			continue
		}
		dist := levenshtein(token, target)
		similarity := float64(maxLen-dist) / float64(maxLen)
		if similarity > fuzzySimilarityFloor {
			return true
		}
	}
	return false
}

// tokenize lowers non-alphanumerics to whitespace, splits, and drops short
// tokens and stop words. Tokens are NFKC-normalized so full-width and
// composed forms compare equal.
func (e *KeywordExtractor) tokenize(lowered string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r > 127 {
			return r
		}
		return ' '
	}, lowered)

	fields := strings.Fields(cleaned)
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		token := norm.NFKC.String(field)
		if len(token) < minTokenLength {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// levenshtein computes the edit distance with the full O(n*m) DP table, two
// rows at a time.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			deletion := prev[j] + 1
			insertion := curr[j-1] + 1
			substitution := prev[j-1] + cost

			min := deletion
			if insertion < min {
				min = insertion
			}
			if substitution < min {
				min = substitution
			}
			curr[j] = min
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
