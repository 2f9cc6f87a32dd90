package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Registry routes roles to registered provider streamers. It implements
// Client.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Streamer
	defaults  map[Role]ModelRef
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: map[string]Streamer{},
		defaults:  map[Role]ModelRef{},
	}
}

// RegisterProvider adds a provider streamer. Re-registering a name
// replaces the previous streamer.
func (r *Registry) RegisterProvider(s Streamer) error {
	if s == nil {
		return fmt.Errorf("llm: register provider: streamer is nil")
	}
	name := strings.ToLower(strings.TrimSpace(s.Name()))
	if name == "" {
		return fmt.Errorf("llm: register provider: name is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = s
	return nil
}

// SetDefault assigns the model used for a role. The provider must already
// be registered.
func (r *Registry) SetDefault(role Role, ref ModelRef) error {
	provider := strings.ToLower(strings.TrimSpace(ref.Provider))
	model := strings.TrimSpace(ref.Model)
	if provider == "" || model == "" {
		return fmt.Errorf("llm: set default for %s: provider and model are required", role)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[provider]; !ok {
		return fmt.Errorf("llm: set default for %s: provider %q is not registered", role, provider)
	}
	r.defaults[role] = ModelRef{Provider: provider, Model: model}
	return nil
}

// ResolveModel returns the model configured for role, if any.
func (r *Registry) ResolveModel(role Role) (ModelRef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ref, ok := r.defaults[role]
	return ref, ok
}

// StreamChat streams a prompt through the provider named by ref.
func (r *Registry) StreamChat(ctx context.Context, ref ModelRef, prompt string, role Role, onChunk func(string)) (string, error) {
	r.mu.RLock()
	s, ok := r.providers[strings.ToLower(ref.Provider)]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("llm: provider %q is not registered", ref.Provider)
	}
	return s.Stream(ctx, ref.Model, prompt, onChunk)
}

// Close shuts down every registered provider, returning the first error.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for _, s := range r.providers {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
