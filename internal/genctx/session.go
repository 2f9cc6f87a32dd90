package genctx

import (
	"sync"

	"genforge/internal/plan"
)

// Status of one planned artifact within a run.
type Status string

const (
	StatusPlanned   Status = "planned"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// SessionEntry tracks one planned artifact through the run.
type SessionEntry struct {
	Purpose      string
	Status       Status
	Dependencies []string
	Content      string
}

// SessionRecord is the per-run mutable ledger: one entry per planned
// artifact, created at build time and mutated in place as artifacts
// complete.
type SessionRecord struct {
	mu      sync.Mutex
	entries map[string]*SessionEntry
}

func newSessionRecord(p plan.GenerationPlan, rules []DependencyRule) *SessionRecord {
	entries := make(map[string]*SessionEntry, len(p.Files))
	for _, f := range p.Files {
		entries[f.Filename] = &SessionEntry{
			Purpose:      f.Purpose,
			Status:       StatusPlanned,
			Dependencies: InferDependencies(f, rules),
		}
	}
	return &SessionRecord{entries: entries}
}

// Entry returns a copy of the entry for filename.
func (s *SessionRecord) Entry(filename string) (SessionEntry, bool) {
	if s == nil {
		return SessionEntry{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[filename]
	if !ok {
		return SessionEntry{}, false
	}
	cp := *e
	cp.Dependencies = append([]string(nil), e.Dependencies...)
	return cp, true
}

// MarkCompleted records a finished artifact and stores its content.
// Unknown filenames are ignored.
func (s *SessionRecord) MarkCompleted(filename, content string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[filename]; ok {
		e.Status = StatusCompleted
		e.Content = content
	}
}

// MarkFailed records a per-artifact failure.
func (s *SessionRecord) MarkFailed(filename string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[filename]; ok {
		e.Status = StatusFailed
	}
}

// Dependencies returns the heuristic dependency tags for filename.
func (s *SessionRecord) Dependencies(filename string) []string {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[filename]; ok {
		return append([]string(nil), e.Dependencies...)
	}
	return nil
}

// Snapshot returns a copy of all entries keyed by filename.
func (s *SessionRecord) Snapshot() map[string]SessionEntry {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]SessionEntry, len(s.entries))
	for name, e := range s.entries {
		cp := *e
		cp.Dependencies = append([]string(nil), e.Dependencies...)
		out[name] = cp
	}
	return out
}
