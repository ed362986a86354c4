package core

import (
	"fmt"
)

// defaultMessageTemplate is used when a destination carries no template of
// its own.
const (
	defaultSubjectTemplate = "Forwarded: {{email_subject}}"
	defaultBodyTemplate    = "{{summary}}\n\n---\nForwarded at {{timestamp}}"
	defaultMessageTemplate = "{{summary}}\n\nForwarded at {{timestamp}}"
)

// ForwardingResolver expands a destination into concrete send actions with
// rendered content. Resolution is pure and recursive: leaf destinations
// render exactly one action, MultipleDestinations flat-maps its children
// depth-first and left-to-right.
type ForwardingResolver struct{}

// NewForwardingResolver creates a new forwarding resolver
func NewForwardingResolver() *ForwardingResolver {
	return &ForwardingResolver{}
}

// ResolveActions renders the send actions for a destination tree. The
// switch is exhaustive over the closed Destination sum; an unknown variant
// is a programming error.
func (r *ForwardingResolver) ResolveActions(dest Destination, summary, originalContent string, context map[string]string) ([]SendAction, error) {
	switch d := dest.(type) {
	case EmailDestination:
		return []SendAction{{
			Platform: PlatformEmail,
			Email:    d.Email,
			Subject:  renderTemplate(orDefault(d.SubjectTemplate, defaultSubjectTemplate), summary, originalContent, context),
			Body:     renderTemplate(orDefault(d.BodyTemplate, defaultBodyTemplate), summary, originalContent, context),
		}}, nil

	case TelegramDestination:
		return []SendAction{{
			Platform: PlatformTelegram,
			ChatID:   d.ChatID,
			Body:     renderTemplate(orDefault(d.MessageTemplate, defaultMessageTemplate), summary, originalContent, context),
		}}, nil

	case UserEmailDestination:
		return []SendAction{{
			Platform:     PlatformEmail,
			TargetUserID: d.TargetUserID,
			Subject:      renderTemplate(orDefault(d.SubjectTemplate, defaultSubjectTemplate), summary, originalContent, context),
			Body:         renderTemplate(orDefault(d.BodyTemplate, defaultBodyTemplate), summary, originalContent, context),
		}}, nil

	case UserTelegramDestination:
		return []SendAction{{
			Platform:     PlatformTelegram,
			TargetUserID: d.TargetUserID,
			Body:         renderTemplate(orDefault(d.MessageTemplate, defaultMessageTemplate), summary, originalContent, context),
		}}, nil

	case MultipleDestinations:
		actions := []SendAction{}
		for _, child := range d.Destinations {
			childActions, err := r.ResolveActions(child, summary, originalContent, context)
			if err != nil {
				return nil, err
			}
			actions = append(actions, childActions...)
		}
		return actions, nil

	default:
		return nil, fmt.Errorf("unknown destination type %T", dest)
	}
}

func orDefault(template, fallback string) string {
	if template == "" {
		return fallback
	}
	return template
}
