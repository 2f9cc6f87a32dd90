package runstore

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Memory keeps run records in process memory. It backs tests and the
// default single-process setup.
type Memory struct {
	mu   sync.RWMutex
	runs map[string]Run
}

func NewMemory() *Memory {
	return &Memory{runs: make(map[string]Run)}
}

func (m *Memory) Save(_ context.Context, run Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = run
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[id]
	if !ok {
		return Run{}, ErrNotFound
	}
	return run, nil
}

// List returns runs ordered by creation time, newest first.
func (m *Memory) List(_ context.Context) ([]Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Run, 0, len(m.runs))
	for _, run := range m.runs {
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) Close() error { return nil }

// MemoryArtifacts is the in-memory ArtifactStore.
type MemoryArtifacts struct {
	mu    sync.RWMutex
	files map[string]map[string][]byte // runID -> path -> content
}

func NewMemoryArtifacts() *MemoryArtifacts {
	return &MemoryArtifacts{files: make(map[string]map[string][]byte)}
}

func (m *MemoryArtifacts) Put(_ context.Context, runID, path string, content []byte) error {
	runID = strings.TrimSpace(runID)
	path = strings.TrimSpace(path)
	if runID == "" || path == "" {
		return ErrNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	files, ok := m.files[runID]
	if !ok {
		files = make(map[string][]byte)
		m.files[runID] = files
	}
	files[path] = append([]byte(nil), content...)
	return nil
}

func (m *MemoryArtifacts) Get(_ context.Context, runID, path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	files, ok := m.files[runID]
	if !ok {
		return nil, ErrNotFound
	}
	content, ok := files[path]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), content...), nil
}

func (m *MemoryArtifacts) List(_ context.Context, runID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	files := m.files[runID]
	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}
