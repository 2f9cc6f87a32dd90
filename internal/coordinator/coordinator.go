package coordinator

import (
	"context"
	"fmt"

	"genforge/internal/event"
	"genforge/internal/genctx"
	"genforge/internal/llm"
	"genforge/internal/plan"
	"genforge/internal/planner"
)

// Coordinator runs one generation end to end: build the rolling context,
// order the plan, generate each artifact strictly in sequence and advance
// the context after every success.
type Coordinator struct {
	Models  llm.Client
	Builder *genctx.Builder
	Planner planner.Planner
	Emitter event.Emitter

	// Templates maps a file extension (".cfg") to a custom prompt
	// template rendered with the base placeholder set.
	Templates map[string]string

	// FilteredPrompts switches the coder prompt from the full project
	// index to the top scored entries.
	FilteredPrompts bool
}

// Request carries the inputs of one generation run.
type Request struct {
	Plan      plan.GenerationPlan
	Retrieval string
	// Existing maps filenames to their current content when revising a
	// project in place. Results are merged over these files.
	Existing    map[string]string
	ProjectRoot string
}

// New wires a coordinator with the default planner and a no-op emitter.
func New(models llm.Client, builder *genctx.Builder) *Coordinator {
	return &Coordinator{
		Models:  models,
		Builder: builder,
		Planner: planner.NewHeuristic(),
		Emitter: event.Noop{},
	}
}

func (c *Coordinator) emitter() event.Emitter {
	if c == nil || c.Emitter == nil {
		return event.Noop{}
	}
	return c.Emitter
}

// Generate produces content for every planned artifact.
//
// Artifacts are generated one at a time; each success advances the rolling
// context before the next artifact starts. A single artifact failure marks
// the session entry failed, stores an error placeholder as that file's
// content and continues. Failures that invalidate the whole run (an
// invalid plan, a context build failure, a cancelled ctx) return an empty
// mapping and the error; cancellation is checked before each artifact, so
// the in-flight artifact resolves but nothing further is scheduled.
func (c *Coordinator) Generate(ctx context.Context, req Request) (map[string]string, error) {
	if c == nil || c.Models == nil || c.Builder == nil {
		return map[string]string{}, fmt.Errorf("coordinator: models and builder are required")
	}

	gctx, err := c.Builder.Build(req.Plan, req.Retrieval, req.Existing, req.ProjectRoot)
	if err != nil {
		return map[string]string{}, fmt.Errorf("build generation context: %w", err)
	}
	gctx.DependencyOrder = c.planOrder(gctx)

	total := len(gctx.DependencyOrder)
	c.emitter().Log(event.SeverityInfo, fmt.Sprintf("generating %d files", total))

	results := make(map[string]string, total)
	for i, filename := range gctx.DependencyOrder {
		if err := ctx.Err(); err != nil {
			c.emitter().Log(event.SeverityError, "generation cancelled: "+err.Error())
			return map[string]string{}, fmt.Errorf("generation cancelled: %w", err)
		}
		spec, ok := gctx.Plan.Find(filename)
		if !ok {
			c.emitter().Log(event.SeverityWarning,
				fmt.Sprintf("skipping %s: not part of the generation plan", filename))
			continue
		}

		content, genErr := c.generateOne(ctx, gctx, spec, results)
		if genErr != nil {
			c.emitter().Log(event.SeverityError,
				fmt.Sprintf("failed to generate %s: %v", filename, genErr))
			gctx.Session.MarkFailed(filename)
			results[filename] = "# ERROR: Failed to generate content for " + filename
		} else {
			content = Clean(content)
			results[filename] = content
			gctx = c.Builder.Update(gctx, filename, content)
			c.emitter().Log(event.SeveritySuccess, "generated "+filename)
		}
		c.emitter().Progress(filename, i+1, total)
	}

	return mergeBaseline(req.Existing, results), nil
}

// planOrder asks the planner for a generation order and repairs it to a
// permutation of the plan; planner failures fall back to plan order.
func (c *Coordinator) planOrder(gctx *genctx.Context) []string {
	planned := gctx.Plan.Filenames()
	if c.Planner == nil {
		return planned
	}
	order, err := c.Planner.PlanOrder(gctx)
	if err != nil {
		c.emitter().Log(event.SeverityWarning,
			fmt.Sprintf("dependency planner failed, using plan order: %v", err))
		return planned
	}

	inPlan := make(map[string]bool, len(planned))
	for _, name := range planned {
		inPlan[name] = true
	}
	seen := make(map[string]bool, len(order))
	out := make([]string, 0, len(planned))
	for _, name := range order {
		if inPlan[name] && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, name := range planned {
		if !seen[name] {
			out = append(out, name)
		}
	}
	return out
}

// mergeBaseline unions generated results over the existing files so a
// revision run returns the complete project, generated content winning.
// With no baseline the results are returned as-is, one entry per planned
// artifact.
func mergeBaseline(existing, results map[string]string) map[string]string {
	if len(existing) == 0 {
		return results
	}
	merged := make(map[string]string, len(existing)+len(results))
	for name, content := range existing {
		merged[name] = content
	}
	for name, content := range results {
		merged[name] = content
	}
	return merged
}
