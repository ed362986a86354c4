package ports

import (
	"context"

	"github.com/mikey/llm-smart-forward/internal/core"
)

// MessageIntake defines the interface for inbound message front-ends that
// feed the forwarding pipeline.
type MessageIntake interface {
	// ProcessMessage runs the forwarding pipeline over one message
	ProcessMessage(ctx context.Context, content string, templateContext map[string]string) *core.ForwardingResult

	// Start starts the intake service
	Start() error

	// Stop stops the intake service
	Stop() error
}
