package core

import (
	"errors"
	"fmt"
)

var (
	// ErrGeneratorNotLoaded is returned by TextGenerator implementations
	// whose backend is unconfigured or not yet loaded. Retryable.
	ErrGeneratorNotLoaded = errors.New("text generator not loaded")

	// ErrQualityRejected marks a generated response that failed the quality
	// gate. It never escapes the summarization pipeline.
	ErrQualityRejected = errors.New("generated response rejected by quality gate")

	// ErrInvalidRule marks a malformed forwarding rule or destination.
	// Fatal for that rule only; the caller logs and skips it.
	ErrInvalidRule = errors.New("invalid forwarding rule")
)

// OrchestrationError wraps an unexpected failure escaping the pipeline. It
// is surfaced as a ForwardingResult with Success=false, never as a crash.
type OrchestrationError struct {
	Stage string
	Err   error
}

func (e *OrchestrationError) Error() string {
	return fmt.Sprintf("forwarding pipeline failed at %s: %v", e.Stage, e.Err)
}

func (e *OrchestrationError) Unwrap() error {
	return e.Err
}
