package plan

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"
)

// GenerationPlan is the immutable input to one generation run: the ordered
// list of artifacts to produce plus optional plan-level dependency tags.
type GenerationPlan struct {
	Files        []ArtifactSpec `json:"files"`
	Dependencies []string       `json:"dependencies,omitempty"`
}

// ArtifactSpec describes a single planned output file.
type ArtifactSpec struct {
	Filename string `json:"filename"`
	Purpose  string `json:"purpose"`
}

// Parse decodes a plan from JSON and validates it.
func Parse(data []byte) (GenerationPlan, error) {
	var p GenerationPlan
	if err := json.Unmarshal(data, &p); err != nil {
		return GenerationPlan{}, fmt.Errorf("parse plan: %w", err)
	}
	if err := p.Validate(); err != nil {
		return GenerationPlan{}, err
	}
	return p, nil
}

// Validate checks that every artifact carries a filename and that no
// filename appears twice.
func (p GenerationPlan) Validate() error {
	seen := make(map[string]struct{}, len(p.Files))
	for i, f := range p.Files {
		name := strings.TrimSpace(f.Filename)
		if name == "" {
			return fmt.Errorf("plan: file %d has an empty filename", i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("plan: duplicate filename %q", name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// Find returns the spec for filename, if planned.
func (p GenerationPlan) Find(filename string) (ArtifactSpec, bool) {
	for _, f := range p.Files {
		if f.Filename == filename {
			return f, true
		}
	}
	return ArtifactSpec{}, false
}

// Filenames returns the planned filenames in plan order.
func (p GenerationPlan) Filenames() []string {
	out := make([]string, 0, len(p.Files))
	for _, f := range p.Files {
		out = append(out, f.Filename)
	}
	return out
}

// JSON renders the plan as indented JSON for prompt embedding.
func (p GenerationPlan) JSON() string {
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

// Stem returns the filename without directory or extension
// ("scenes/player.tscn" -> "player").
func Stem(filename string) string {
	base := path.Base(filename)
	return strings.TrimSuffix(base, path.Ext(base))
}
