package genctx

import (
	"sort"
	"strings"

	"genforge/internal/plan"
	"genforge/internal/symbol"
)

// FilteredContext is the purpose-scoped context slice for one artifact.
type FilteredContext struct {
	RelevantModules  map[string]string
	DesignContext    []DesignFact
	RetrievalContext string
	Dependencies     []string
}

// retrievalCap limits the filtered retrieval context length.
const retrievalCap = 1000

// structureKeywords make a retrieval chunk relevant to any code artifact.
var structureKeywords = []string{"class", "function", "method", "import"}

// FilterFor produces the context slice for filename.
//
// RelevantModules passes the entire index through unfiltered; that is the
// observed default. ScoredModules is the available refinement for callers
// that opt into filtered prompts.
func (b *Builder) FilterFor(filename string, ctx *Context) FilteredContext {
	if ctx == nil {
		return FilteredContext{}
	}
	modules := make(map[string]string, len(ctx.ProjectIndex))
	for sym, module := range ctx.ProjectIndex {
		modules[sym] = module
	}
	return FilteredContext{
		RelevantModules:  modules,
		DesignContext:    filterDesign(filename, ctx.LivingDesign),
		RetrievalContext: FilterRetrieval(filename, ctx.Retrieval),
		Dependencies:     upstreamDependencies(filename, ctx),
	}
}

// ScoredModules ranks index entries by relevance score, boosting entries
// whose module name shares the filename stem, and keeps the best few.
func ScoredModules(filename string, ctx *Context, limit int) map[string]string {
	if ctx == nil {
		return nil
	}
	if limit <= 0 {
		limit = 5
	}
	stem := strings.ToLower(plan.Stem(filename))
	type scored struct {
		sym, module string
		score       float64
	}
	ranked := make([]scored, 0, len(ctx.ProjectIndex))
	for sym, module := range ctx.ProjectIndex {
		score := ctx.Relevance["project_index:"+sym]
		lowerMod := strings.ToLower(module)
		if stem != "" && (strings.Contains(lowerMod, stem) || strings.Contains(stem, lowerMod)) {
			score += 0.5
		}
		ranked = append(ranked, scored{sym: sym, module: module, score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].sym < ranked[j].sym
	})
	out := make(map[string]string)
	for _, r := range ranked {
		if len(out) >= limit {
			break
		}
		if r.score > 0.1 {
			out[r.sym] = r.module
		}
	}
	return out
}

// FilterRetrieval keeps retrieval chunks that mention the filename, its
// stem, or generic code-structure keywords. With no match the first two
// chunks are kept. The result is capped at retrievalCap characters.
func FilterRetrieval(filename, retrieval string) string {
	if retrieval == "" {
		return ""
	}
	chunks := strings.Split(retrieval, ChunkSeparator)
	stem := strings.ToLower(plan.Stem(filename))
	lowerName := strings.ToLower(filename)

	var kept []string
	for _, chunk := range chunks {
		trimmed := strings.TrimSpace(chunk)
		if trimmed == "" {
			continue
		}
		lower := strings.ToLower(trimmed)
		if strings.Contains(lower, stem) || strings.Contains(lower, lowerName) || containsAny(lower, structureKeywords) {
			kept = append(kept, trimmed)
		}
	}
	if len(kept) == 0 {
		for _, chunk := range chunks {
			if len(kept) >= 2 {
				break
			}
			if trimmed := strings.TrimSpace(chunk); trimmed != "" {
				kept = append(kept, trimmed)
			}
		}
	}
	result := strings.Join(kept, "\n\n")
	if len(result) > retrievalCap {
		result = result[:retrievalCap] + "..."
	}
	return result
}

func filterDesign(filename string, facts []DesignFact) []DesignFact {
	if len(facts) == 0 {
		return nil
	}
	stem := strings.ToLower(plan.Stem(filename))
	lowerName := strings.ToLower(filename)
	var out []DesignFact
	for _, fact := range facts {
		file := strings.ToLower(fact.File)
		name := strings.ToLower(fact.Name)
		if (stem != "" && (strings.Contains(file, stem) || strings.Contains(name, stem))) ||
			(lowerName != "" && strings.Contains(file, lowerName)) {
			out = append(out, fact)
		}
	}
	return out
}

// upstreamDependencies unions the artifact's heuristic tags with the
// module paths of planned source files judged to be upstream.
func upstreamDependencies(filename string, ctx *Context) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(dep string) {
		if dep == "" {
			return
		}
		if _, dup := seen[dep]; dup {
			return
		}
		seen[dep] = struct{}{}
		out = append(out, dep)
	}
	for _, dep := range ctx.Session.Dependencies(filename) {
		add(dep)
	}
	current, _ := ctx.Plan.Find(filename)
	for _, other := range ctx.Plan.Files {
		if other.Filename == filename || !symbol.IsSourceFile(other.Filename) {
			continue
		}
		if dependsOn(current, other) {
			add(symbol.ModulePath(other.Filename))
		}
	}
	return out
}

// dependsOn applies the upstream heuristics: the main entry point depends
// on everything; artifacts whose purposes share more than one word are
// related; "service" files depend on "core" files.
func dependsOn(current, other plan.ArtifactSpec) bool {
	if plan.Stem(current.Filename) == "main" {
		return true
	}
	if purposeOverlap(current.Purpose, other.Purpose) > 1 {
		return true
	}
	if strings.Contains(strings.ToLower(current.Filename), "service") &&
		strings.Contains(strings.ToLower(other.Filename), "core") {
		return true
	}
	return false
}

func purposeOverlap(a, b string) int {
	wordsA := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(a)) {
		wordsA[w] = struct{}{}
	}
	count := 0
	seen := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(b)) {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		if _, ok := wordsA[w]; ok {
			count++
		}
	}
	return count
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
