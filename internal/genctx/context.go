package genctx

import (
	"genforge/internal/plan"
)

// ChunkSeparator delimits retrieval-text chunks. Retrieved reference text
// is concatenated with this marker between snippets.
const ChunkSeparator = "--- Relevant Document Snippet"

// DesignFact is one structured design statement carried in the living
// design context. The field is reserved for design-tracking collaborators;
// the builder leaves it empty.
type DesignFact struct {
	Kind   string `json:"kind,omitempty"`
	Name   string `json:"name,omitempty"`
	File   string `json:"file,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Context is the rolling generation context for one run.
//
// ProjectIndex and DependencyOrder are replaced when the context advances;
// Session is mutated in place and shared by reference across every context
// value derived within a run. Exactly one SessionRecord exists per run.
// A Context is never persisted or reused across runs.
type Context struct {
	Plan            plan.GenerationPlan
	ProjectIndex    map[string]string
	LivingDesign    []DesignFact
	DependencyOrder []string
	Session         *SessionRecord
	Retrieval       string
	Relevance       map[string]float64
	ExistingFiles   map[string]string
}
