package genctx

import (
	"strings"

	"genforge/internal/plan"
)

// DependencyRule maps a keyword to the dependency tags it implies when the
// keyword appears in an artifact's purpose or filename.
type DependencyRule struct {
	Keyword string   `json:"keyword" mapstructure:"keyword"`
	Tags    []string `json:"tags" mapstructure:"tags"`
}

// DefaultDependencyRules is the built-in keyword table. Deployments can
// replace it through configuration.
func DefaultDependencyRules() []DependencyRule {
	return []DependencyRule{
		{Keyword: "async", Tags: []string{"asyncio"}},
		{Keyword: "path", Tags: []string{"pathlib"}},
		{Keyword: "json", Tags: []string{"json"}},
		{Keyword: "typing", Tags: []string{"typing"}},
		{Keyword: "service", Tags: []string{"core.event_bus"}},
		{Keyword: "manager", Tags: []string{"pathlib", "typing"}},
		{Keyword: "ui", Tags: []string{"tkinter"}},
		{Keyword: "web", Tags: []string{"flask", "fastapi"}},
		{Keyword: "database", Tags: []string{"sqlite3", "sqlalchemy"}},
		{Keyword: "api", Tags: []string{"requests", "aiohttp"}},
	}
}

// InferDependencies derives heuristic dependency tags for an artifact from
// case-insensitive keyword matches against its purpose and filename.
// Duplicates are removed; rule order is preserved.
func InferDependencies(spec plan.ArtifactSpec, rules []DependencyRule) []string {
	purpose := strings.ToLower(spec.Purpose)
	filename := strings.ToLower(spec.Filename)

	var out []string
	seen := make(map[string]struct{})
	for _, rule := range rules {
		kw := strings.ToLower(rule.Keyword)
		if kw == "" {
			continue
		}
		if !strings.Contains(purpose, kw) && !strings.Contains(filename, kw) {
			continue
		}
		for _, tag := range rule.Tags {
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	return out
}
