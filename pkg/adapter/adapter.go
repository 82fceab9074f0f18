package adapter

import (
	"context"

	"github.com/bluelilygithub/curam-ai-gateway/pkg/artifact"
)

// Adapter defines the interface for generative-AI provider adapters.
// Implementations return failures as *VendorError where the provider
// gives enough signal to classify them.
type Adapter interface {
	// Generate sends a prompt to the model and returns an artifact.
	Generate(ctx context.Context, model string, prompt string) (*artifact.Artifact, error)

	// Name returns the adapter's identifier.
	Name() string

	// Models returns the list of supported models.
	Models() []string
}
