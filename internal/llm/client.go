package llm

import (
	"context"
	"errors"
)

// Role is the intended use of a model within the generation pipeline.
type Role string

const (
	RoleCoder     Role = "coder"
	RoleArchitect Role = "architect"
)

// ModelRef identifies a concrete model at a provider.
type ModelRef struct {
	Provider string
	Model    string
}

// ErrNoModelForRole is returned when no model is configured for the
// requested role. The orchestrator treats it as a per-artifact failure.
var ErrNoModelForRole = errors.New("no model configured for role")

// Client resolves role-scoped models and streams chat completions.
//
// StreamChat delivers each text increment to onChunk as it arrives and
// returns the accumulated full response. The increment sequence is lazy,
// finite and non-restartable; a mid-stream failure surfaces as an error
// with no retry at this layer.
type Client interface {
	ResolveModel(role Role) (ModelRef, bool)
	StreamChat(ctx context.Context, ref ModelRef, prompt string, role Role, onChunk func(string)) (string, error)
}

// Streamer is one provider's raw streaming implementation. Cross-cutting
// concerns (role routing, defaults) live in the Registry.
type Streamer interface {
	Name() string
	Stream(ctx context.Context, model, prompt string, onChunk func(string)) (string, error)
	Close() error
}
