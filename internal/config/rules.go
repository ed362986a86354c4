package config

import (
	"fmt"

	"github.com/mikey/llm-smart-forward/internal/core"
	"go.uber.org/zap"
)

// DestinationConfig is the on-disk shape of a forwarding destination. Kind
// selects the variant; Destinations nests for the multiple kind.
type DestinationConfig struct {
	Kind            string              `mapstructure:"kind"`
	Email           string              `mapstructure:"email"`
	ChatID          string              `mapstructure:"chat_id"`
	TargetUserID    string              `mapstructure:"target_user_id"`
	SubjectTemplate string              `mapstructure:"subject_template"`
	BodyTemplate    string              `mapstructure:"body_template"`
	MessageTemplate string              `mapstructure:"message_template"`
	Destinations    []DestinationConfig `mapstructure:"destinations"`
}

// RuleConfig is the on-disk shape of one forwarding rule.
type RuleConfig struct {
	Description    string             `mapstructure:"description"`
	Keywords       []string           `mapstructure:"keywords"`
	MinimumMatches int                `mapstructure:"minimum_matches"`
	Strategy       string             `mapstructure:"strategy"`
	Priority       int                `mapstructure:"priority"`
	Destination    *DestinationConfig `mapstructure:"destination"`
}

// GetForwardingRules decodes and validates the configured rule set. A
// malformed rule is fatal for that rule only: it is logged and skipped so
// the rest of the set still loads.
func (c *Config) GetForwardingRules(logger *zap.Logger) []*core.ForwardingRule {
	var ruleConfigs []RuleConfig
	if err := c.v.UnmarshalKey("forwarding.rules", &ruleConfigs); err != nil {
		logger.Error("Failed to decode forwarding rules", zap.Error(err))
		return nil
	}

	rules := make([]*core.ForwardingRule, 0, len(ruleConfigs))
	for i, rc := range ruleConfigs {
		rule, err := buildRule(rc)
		if err != nil {
			logger.Warn("Skipping invalid forwarding rule",
				zap.Int("index", i),
				zap.String("description", rc.Description),
				zap.Error(err))
			continue
		}
		rules = append(rules, rule)
	}
	return rules
}

// GetDefaultDestination decodes the fallback destination used when no rule
// matches. Returns nil when none is configured.
func (c *Config) GetDefaultDestination(logger *zap.Logger) core.Destination {
	if !c.v.IsSet("forwarding.default_destination") {
		return nil
	}
	var dc DestinationConfig
	if err := c.v.UnmarshalKey("forwarding.default_destination", &dc); err != nil {
		logger.Error("Failed to decode default destination", zap.Error(err))
		return nil
	}
	dest, err := buildDestination(dc)
	if err != nil {
		logger.Error("Invalid default destination", zap.Error(err))
		return nil
	}
	return dest
}

func buildRule(rc RuleConfig) (*core.ForwardingRule, error) {
	if rc.Destination == nil {
		return nil, fmt.Errorf("%w: rule %q has no destination", core.ErrInvalidRule, rc.Description)
	}
	dest, err := buildDestination(*rc.Destination)
	if err != nil {
		return nil, err
	}

	strategy := core.MatchStrategy(rc.Strategy)
	if rc.Strategy == "" {
		strategy = core.MatchFuzzy
	}
	minMatches := rc.MinimumMatches
	if minMatches == 0 {
		minMatches = 1
	}

	return core.NewForwardingRule(rc.Keywords, minMatches, strategy, rc.Priority, dest, rc.Description)
}

func buildDestination(dc DestinationConfig) (core.Destination, error) {
	switch dc.Kind {
	case "email":
		if dc.Email == "" {
			return nil, fmt.Errorf("%w: email destination has no address", core.ErrInvalidRule)
		}
		return core.EmailDestination{
			Email:           dc.Email,
			SubjectTemplate: dc.SubjectTemplate,
			BodyTemplate:    dc.BodyTemplate,
		}, nil
	case "telegram":
		if dc.ChatID == "" {
			return nil, fmt.Errorf("%w: telegram destination has no chat id", core.ErrInvalidRule)
		}
		return core.TelegramDestination{
			ChatID:          dc.ChatID,
			MessageTemplate: dc.MessageTemplate,
		}, nil
	case "user_email":
		if dc.TargetUserID == "" {
			return nil, fmt.Errorf("%w: user email destination has no target user", core.ErrInvalidRule)
		}
		return core.UserEmailDestination{
			TargetUserID:    dc.TargetUserID,
			SubjectTemplate: dc.SubjectTemplate,
			BodyTemplate:    dc.BodyTemplate,
		}, nil
	case "user_telegram":
		if dc.TargetUserID == "" {
			return nil, fmt.Errorf("%w: user telegram destination has no target user", core.ErrInvalidRule)
		}
		return core.UserTelegramDestination{
			TargetUserID:    dc.TargetUserID,
			MessageTemplate: dc.MessageTemplate,
		}, nil
	case "multiple":
		if len(dc.Destinations) == 0 {
			return nil, fmt.Errorf("%w: multiple destination has no children", core.ErrInvalidRule)
		}
		children := make([]core.Destination, 0, len(dc.Destinations))
		for _, child := range dc.Destinations {
			built, err := buildDestination(child)
			if err != nil {
				return nil, err
			}
			children = append(children, built)
		}
		return core.MultipleDestinations{Destinations: children}, nil
	default:
		return nil, fmt.Errorf("%w: unknown destination kind %q", core.ErrInvalidRule, dc.Kind)
	}
}
