package llm

import (
	"context"
	"fmt"
	"sync"
)

// FakeClient is a scripted Client for tests. Script maps a prompt to a
// response; when Script is nil, responses are served from the Responses
// queue in order. Each response is streamed in two chunks to exercise
// increment handling.
type FakeClient struct {
	mu        sync.Mutex
	Roles     map[Role]ModelRef
	Script    func(prompt string) (string, error)
	Responses []string
	Prompts   []string // every prompt seen, in call order
}

// NewFakeClient returns a fake with the coder role configured.
func NewFakeClient() *FakeClient {
	return &FakeClient{
		Roles: map[Role]ModelRef{
			RoleCoder: {Provider: "fake", Model: "fake-coder"},
		},
	}
}

func (f *FakeClient) ResolveModel(role Role) (ModelRef, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ref, ok := f.Roles[role]
	return ref, ok
}

func (f *FakeClient) StreamChat(_ context.Context, _ ModelRef, prompt string, _ Role, onChunk func(string)) (string, error) {
	f.mu.Lock()
	f.Prompts = append(f.Prompts, prompt)
	script := f.Script
	var queued string
	var hasQueued bool
	if script == nil {
		if len(f.Responses) == 0 {
			f.mu.Unlock()
			return "", fmt.Errorf("fake llm: no scripted response left")
		}
		queued, hasQueued = f.Responses[0], true
		f.Responses = f.Responses[1:]
	}
	f.mu.Unlock()

	var out string
	if script != nil {
		resp, err := script(prompt)
		if err != nil {
			return "", err
		}
		out = resp
	} else if hasQueued {
		out = queued
	}

	if onChunk != nil && out != "" {
		half := len(out) / 2
		if half > 0 {
			onChunk(out[:half])
			onChunk(out[half:])
		} else {
			onChunk(out)
		}
	}
	return out, nil
}
