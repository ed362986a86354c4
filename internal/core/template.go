package core

import (
	"strings"
	"time"
)

const timestampLayout = "2006-01-02 15:04:05"

// platformFallbacks substitute for platform-specific placeholders absent
// from the caller's context. Applied after the context pass, so a caller
// value always wins over the default.
var platformFallbacks = map[string]string{
	"{{email_subject}}":    "(no subject)",
	"{{email_from}}":       "(unknown sender)",
	"{{email_body}}":       "(no content)",
	"{{telegram_chat_id}}": "(unknown chat)",
	"{{telegram_user}}":    "(unknown user)",
	"{{telegram_message}}": "(no message)",
}

// renderTemplate substitutes placeholders in a fixed order: generic summary
// placeholders, then caller context pairs, then platform fallbacks, then the
// timestamp. Placeholders with no matching value are left literally
// un-substituted; callers can see at a glance which variable was missing.
func renderTemplate(template, summary, originalContent string, context map[string]string) string {
	rendered := template

	rendered = strings.ReplaceAll(rendered, "{{ai_summary}}", summary)
	rendered = strings.ReplaceAll(rendered, "{{summary}}", summary)
	rendered = strings.ReplaceAll(rendered, "{{original_content}}", originalContent)

	for key, value := range context {
		rendered = strings.ReplaceAll(rendered, "{{"+key+"}}", value)
	}

	for placeholder, fallback := range platformFallbacks {
		rendered = strings.ReplaceAll(rendered, placeholder, fallback)
	}

	return strings.ReplaceAll(rendered, "{{timestamp}}", time.Now().Format(timestampLayout))
}
