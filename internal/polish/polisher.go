// Package polish wraps the external AI service that rewrites feedback
// text. The rest of the application sees a single Polish call; transport
// details, retries and timeouts stay behind the interface.
package polish

import "context"

// Polisher rewrites feedback content with the named model. Implementations
// must respect ctx cancellation; the consumer enforces a per-job deadline.
type Polisher interface {
	Polish(ctx context.Context, content, model string) (string, error)
}

// Mock simulates polishing for local runs and tests. Selected at startup
// when no API key is configured.
type Mock struct{}

func (Mock) Polish(_ context.Context, content, _ string) (string, error) {
	return content + " [polished]", nil
}
