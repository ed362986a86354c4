package core

import (
	"fmt"
	"time"
)

// SummarizationStyle selects both the generation prompt phrasing and the
// formatting of the extractive fallback, so output looks consistent no
// matter which tier produced it.
type SummarizationStyle string

const (
	StyleConcise         SummarizationStyle = "concise"
	StyleDetailed        SummarizationStyle = "detailed"
	StyleStructured      SummarizationStyle = "structured"
	StyleKeywordsFocused SummarizationStyle = "keywords_focused"
)

// MatchStrategy controls how rule keywords are matched against content.
type MatchStrategy string

const (
	MatchExact MatchStrategy = "exact"
	MatchFuzzy MatchStrategy = "fuzzy"
)

// UrgencyLevel classifies an email summary by urgency-keyword density.
type UrgencyLevel string

const (
	UrgencyLow    UrgencyLevel = "low"
	UrgencyMedium UrgencyLevel = "medium"
	UrgencyHigh   UrgencyLevel = "high"
)

// Keyword is a ranked keyword candidate extracted from text
type Keyword struct {
	Text  string
	Score float64
}

// ForwardingRule describes one prioritized forwarding rule. Higher priority
// rules are evaluated first.
type ForwardingRule struct {
	Keywords       []string
	MinimumMatches int
	Strategy       MatchStrategy
	Priority       int
	Destination    Destination
	Description    string
}

// NewForwardingRule validates and constructs a rule. A rule whose
// MinimumMatches lies outside [1, len(Keywords)] can never match and is
// rejected here rather than silently carried.
func NewForwardingRule(keywords []string, minMatches int, strategy MatchStrategy, priority int, dest Destination, description string) (*ForwardingRule, error) {
	if len(keywords) == 0 {
		return nil, fmt.Errorf("%w: rule %q has no keywords", ErrInvalidRule, description)
	}
	if minMatches < 1 || minMatches > len(keywords) {
		return nil, fmt.Errorf("%w: rule %q requires %d matches but has %d keywords", ErrInvalidRule, description, minMatches, len(keywords))
	}
	if strategy != MatchExact && strategy != MatchFuzzy {
		return nil, fmt.Errorf("%w: rule %q has unknown matching strategy %q", ErrInvalidRule, description, strategy)
	}
	if dest == nil {
		return nil, fmt.Errorf("%w: rule %q has no destination", ErrInvalidRule, description)
	}
	return &ForwardingRule{
		Keywords:       keywords,
		MinimumMatches: minMatches,
		Strategy:       strategy,
		Priority:       priority,
		Destination:    dest,
		Description:    description,
	}, nil
}

// Destination is a closed sum type over forwarding targets. The only
// implementations are the destination structs in this package; resolution
// switches exhaustively over them.
type Destination interface {
	destination()
}

// EmailDestination forwards to a literal email address.
type EmailDestination struct {
	Email           string
	SubjectTemplate string
	BodyTemplate    string
}

// TelegramDestination forwards to a literal Telegram chat.
type TelegramDestination struct {
	ChatID          string
	MessageTemplate string
}

// UserEmailDestination forwards to the registered email address of a known
// user, resolved downstream by the workflow engine.
type UserEmailDestination struct {
	TargetUserID    string
	SubjectTemplate string
	BodyTemplate    string
}

// UserTelegramDestination forwards to the registered Telegram chat of a
// known user.
type UserTelegramDestination struct {
	TargetUserID    string
	MessageTemplate string
}

// MultipleDestinations fans out to several destinations. The tree is built
// by value, so it is acyclic by construction.
type MultipleDestinations struct {
	Destinations []Destination
}

func (EmailDestination) destination()        {}
func (TelegramDestination) destination()     {}
func (UserEmailDestination) destination()    {}
func (UserTelegramDestination) destination() {}
func (MultipleDestinations) destination()    {}

// Platform identifies the transport a SendAction targets.
type Platform string

const (
	PlatformEmail    Platform = "email"
	PlatformTelegram Platform = "telegram"
)

// SendAction is a fully rendered, declarative outbound send. The workflow
// engine consuming it performs the actual transmission; this core never
// sends anything itself.
type SendAction struct {
	Platform     Platform
	Email        string
	TargetUserID string
	ChatID       string
	Subject      string
	Body         string
}

// EmailSummary is the derived summary of one email, never mutated after
// creation.
type EmailSummary struct {
	Summary      string
	Sender       string
	Subject      string
	KeyPoints    []string
	UrgencyLevel UrgencyLevel
}

// CacheEntry is one cached generation response, keyed by prompt hash.
// Frequency drives least-frequently-used eviction in bounded backends.
type CacheEntry struct {
	Key       string
	Response  string
	Frequency int
	LastSeen  time.Time
	ExpiresAt time.Time
}

// ForwardingResult is the single externally visible output of one
// orchestration run.
type ForwardingResult struct {
	Summary           string
	ExtractedKeywords []string
	MatchedRule       *ForwardingRule
	Destination       Destination
	Actions           []SendAction
	Success           bool
	Message           string
}
