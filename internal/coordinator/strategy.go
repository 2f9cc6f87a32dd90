package coordinator

import (
	"context"
	"fmt"
	"path"
	"strings"

	"genforge/internal/genctx"
	"genforge/internal/llm"
	"genforge/internal/plan"
)

// fileExt returns the lowercased extension including the dot.
func fileExt(filename string) string {
	return strings.ToLower(path.Ext(filename))
}

// generateOne produces the content for a single planned artifact by
// dispatching on its extension:
//
//	.tscn            deterministic scene template, no model call
//	custom template  per-extension template supplied by the caller
//	.py              full-context coder prompt
//	.gd              plan-only scripting prompt
//	anything else    generic prompt
func (c *Coordinator) generateOne(ctx context.Context, gctx *genctx.Context, spec plan.ArtifactSpec, results map[string]string) (string, error) {
	ext := fileExt(spec.Filename)
	if ext == ".tscn" {
		return SceneDocument(spec.Filename, spec.Purpose), nil
	}
	if tmpl, ok := c.Templates[ext]; ok {
		return c.stream(ctx, spec.Filename, render(tmpl, baseVars(spec, gctx.Plan)))
	}
	switch ext {
	case ".py":
		return c.stream(ctx, spec.Filename, c.coderPrompt(gctx, spec, results))
	case ".gd":
		return c.stream(ctx, spec.Filename, render(gdscriptTemplate, baseVars(spec, gctx.Plan)))
	default:
		vars := baseVars(spec, gctx.Plan)
		vars["generated_files"] = formatAllGeneratedFiles(spec.Filename, results)
		return c.stream(ctx, spec.Filename, render(genericTemplate, vars))
	}
}

// coderPrompt assembles the full-context prompt for primary source files.
func (c *Coordinator) coderPrompt(gctx *genctx.Context, spec plan.ArtifactSpec, results map[string]string) string {
	filtered := c.Builder.FilterFor(spec.Filename, gctx)
	modules := filtered.RelevantModules
	if c.FilteredPrompts {
		modules = genctx.ScoredModules(spec.Filename, gctx, 5)
	}

	vars := baseVars(spec, gctx.Plan)
	vars["project_index"] = formatIndex(modules)
	vars["dependencies"] = formatDependencies(filtered.Dependencies)
	vars["design_context"] = formatDesign(filtered.DesignContext)
	vars["retrieval_context"] = formatRetrieval(filtered.RetrievalContext)
	vars["generated_files"] = formatGeneratedFiles(spec.Filename, results)
	vars["original_code"] = formatOriginal(spec.Filename, gctx.ExistingFiles)
	return render(coderTemplate, vars)
}

// stream resolves the coder model and streams the prompt, forwarding each
// increment as a chunk event. A missing coder model is a per-artifact
// failure, not a run failure.
func (c *Coordinator) stream(ctx context.Context, filename, prompt string) (string, error) {
	ref, ok := c.Models.ResolveModel(llm.RoleCoder)
	if !ok {
		return "", fmt.Errorf("%w: %s", llm.ErrNoModelForRole, llm.RoleCoder)
	}
	out, err := c.Models.StreamChat(ctx, ref, prompt, llm.RoleCoder, func(chunk string) {
		c.emitter().Chunk(filename, chunk)
	})
	if err != nil {
		return "", fmt.Errorf("generate %s: %w", filename, err)
	}
	return out, nil
}
