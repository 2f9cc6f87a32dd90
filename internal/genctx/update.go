package genctx

import (
	"fmt"

	"genforge/internal/event"
	"genforge/internal/symbol"
)

// Update advances the rolling context after one artifact's content is
// finalized. It must be called exactly once per successfully generated
// artifact, before the next artifact's strategy runs.
//
// The session entry is marked completed in place (the record is shared by
// reference). For source artifacts the new symbols are merged into a copy
// of the project index; the previous context's index is never touched. If
// extraction fails the failure is logged and the original context is
// returned, so the run proceeds with a stale index.
func (b *Builder) Update(ctx *Context, filename, content string) *Context {
	if b == nil || ctx == nil {
		return ctx
	}
	ctx.Session.MarkCompleted(filename, content)

	index := make(map[string]string, len(ctx.ProjectIndex)+8)
	for sym, module := range ctx.ProjectIndex {
		index[sym] = module
	}
	if symbol.IsSourceFile(filename) {
		if b.Indexer == nil {
			b.emitter().Log(event.SeverityError,
				fmt.Sprintf("cannot index %s: no symbol indexer configured", filename))
			return ctx
		}
		symbols, err := b.Indexer.ExtractSymbols(content, symbol.ModulePath(filename))
		if err != nil {
			b.emitter().Log(event.SeverityError,
				fmt.Sprintf("failed to index generated file %s: %v", filename, err))
			return ctx
		}
		for sym, module := range symbols {
			index[sym] = module
		}
	}

	return &Context{
		Plan:            ctx.Plan,
		ProjectIndex:    index,
		LivingDesign:    ctx.LivingDesign,
		DependencyOrder: ctx.DependencyOrder,
		Session:         ctx.Session,
		Retrieval:       ctx.Retrieval,
		Relevance:       ctx.Relevance,
		ExistingFiles:   ctx.ExistingFiles,
	}
}
