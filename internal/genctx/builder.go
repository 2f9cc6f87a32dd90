package genctx

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"genforge/internal/event"
	"genforge/internal/plan"
	"genforge/internal/symbol"
)

// Builder constructs the initial rolling context for a run and advances it
// as artifacts complete. Collaborators are injected; there is no shared
// service hub.
type Builder struct {
	Indexer symbol.Indexer
	Rules   []DependencyRule
	Emitter event.Emitter
}

// NewBuilder wires a Builder with the default dependency table and a
// no-op emitter.
func NewBuilder(indexer symbol.Indexer) *Builder {
	return &Builder{
		Indexer: indexer,
		Rules:   DefaultDependencyRules(),
		Emitter: event.Noop{},
	}
}

func (b *Builder) emitter() event.Emitter {
	if b == nil || b.Emitter == nil {
		return event.Noop{}
	}
	return b.Emitter
}

// Build creates the initial context for a run.
//
// The project index comes from the supplied existing files when a project
// root is active, falling back to indexing the whole tree at that root when
// no per-file content is available. Indexing failures degrade the index
// instead of aborting the build. DependencyOrder is left empty for the
// dependency planner.
func (b *Builder) Build(p plan.GenerationPlan, retrieval string, existing map[string]string, projectRoot string) (*Context, error) {
	if b == nil || b.Indexer == nil {
		return nil, fmt.Errorf("genctx: builder requires a symbol indexer")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	index := b.buildInitialIndex(existing, projectRoot)
	session := newSessionRecord(p, b.rules())

	keywords := Keywords(p)
	relevance := make(map[string]float64)
	for sym, module := range index {
		relevance["project_index:"+sym] = TextRelevance(sym+" "+module, keywords)
	}
	for i, chunk := range strings.Split(retrieval, ChunkSeparator) {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		relevance["retrieval_chunk:"+strconv.Itoa(i)] = TextRelevance(chunk, keywords)
	}

	existingCopy := make(map[string]string, len(existing))
	for name, content := range existing {
		existingCopy[name] = content
	}

	return &Context{
		Plan:          p,
		ProjectIndex:  index,
		Session:       session,
		Retrieval:     retrieval,
		Relevance:     relevance,
		ExistingFiles: existingCopy,
	}, nil
}

func (b *Builder) buildInitialIndex(existing map[string]string, projectRoot string) map[string]string {
	index := make(map[string]string)
	if projectRoot == "" {
		return index
	}
	if len(existing) > 0 {
		// Deterministic merge order: later files overwrite earlier symbols.
		names := make([]string, 0, len(existing))
		for name := range existing {
			if symbol.IsSourceFile(name) {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		for _, name := range names {
			symbols, err := b.Indexer.ExtractSymbols(existing[name], symbol.ModulePath(name))
			if err != nil {
				b.emitter().Log(event.SeverityWarning,
					fmt.Sprintf("could not index existing file %s: %v", name, err))
				continue
			}
			for sym, module := range symbols {
				index[sym] = module
			}
		}
		return index
	}
	treeIndex, err := b.Indexer.IndexTree(projectRoot)
	if err != nil {
		b.emitter().Log(event.SeverityWarning,
			fmt.Sprintf("could not index project tree %s: %v", projectRoot, err))
		return index
	}
	return treeIndex
}

func (b *Builder) rules() []DependencyRule {
	if b != nil && len(b.Rules) > 0 {
		return b.Rules
	}
	return DefaultDependencyRules()
}
