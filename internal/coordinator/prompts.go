package coordinator

import (
	"fmt"
	"sort"
	"strings"

	"genforge/internal/genctx"
	"genforge/internal/plan"
)

// Prompt templates use {placeholder} markers. Custom templates supplied
// per extension may use {filename}, {filename_stem}, {purpose} and
// {file_plan_json}; the built-in templates additionally receive the
// context sections assembled by the strategies.

const coderTemplate = `You are an expert Python developer generating one file of a larger project.

File: {filename}
Purpose: {purpose}

Project file plan:
{file_plan_json}

Known project symbols (symbol -> module):
{project_index}

Upstream dependencies: {dependencies}
{design_context}{retrieval_context}{generated_files}{original_code}
Write the complete content of {filename}. The file must be consistent with
the symbols and files above. Respond with only the file content inside a
single fenced code block.`

const gdscriptTemplate = `You are writing a Godot 4 GDScript file.

File: {filename}
Purpose: {purpose}

Project file plan:
{file_plan_json}

Write idiomatic GDScript for Godot 4 implementing the stated purpose.
Respond with only the file content inside a single fenced code block.`

const genericTemplate = `Generate the complete content of the file {filename}.
Purpose: {purpose}

Project file plan:
{file_plan_json}
{generated_files}
Respond with only the raw file content. Use a single fenced code block.`

// render substitutes {placeholder} markers in a template.
func render(template string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for name, value := range vars {
		pairs = append(pairs, "{"+name+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// baseVars returns the placeholder set every template may reference.
func baseVars(spec plan.ArtifactSpec, p plan.GenerationPlan) map[string]string {
	return map[string]string{
		"filename":       spec.Filename,
		"filename_stem":  plan.Stem(spec.Filename),
		"purpose":        spec.Purpose,
		"file_plan_json": p.JSON(),
	}
}

// formatIndex renders a symbol index as sorted "symbol -> module" lines.
func formatIndex(index map[string]string) string {
	if len(index) == 0 {
		return "(no indexed symbols yet)"
	}
	symbols := make([]string, 0, len(index))
	for sym := range index {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	var b strings.Builder
	for _, sym := range symbols {
		fmt.Fprintf(&b, "%s -> %s\n", sym, index[sym])
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatDesign(facts []genctx.DesignFact) string {
	if len(facts) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\nEstablished design decisions:\n")
	for _, f := range facts {
		fmt.Fprintf(&b, "- [%s] %s (%s): %s\n", f.Kind, f.Name, f.File, f.Detail)
	}
	return b.String()
}

func formatRetrieval(retrieval string) string {
	if strings.TrimSpace(retrieval) == "" {
		return ""
	}
	return "\nReference material:\n" + retrieval + "\n"
}

// formatGeneratedFiles embeds completed same-extension files so the model
// can reference their actual contents.
func formatGeneratedFiles(current string, results map[string]string) string {
	return formatFiles(current, results, true)
}

// formatAllGeneratedFiles embeds every completed file regardless of
// language; the fallback strategy has no language to filter by.
func formatAllGeneratedFiles(current string, results map[string]string) string {
	return formatFiles(current, results, false)
}

func formatFiles(current string, results map[string]string, sameExt bool) string {
	ext := fileExt(current)
	names := make([]string, 0, len(results))
	for name := range results {
		if name == current {
			continue
		}
		if sameExt && fileExt(name) != ext {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return ""
	}
	sort.Strings(names)
	var b strings.Builder
	b.WriteString("\nAlready generated project files:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "\n--- %s ---\n%s\n", name, results[name])
	}
	return b.String()
}

func formatOriginal(filename string, existing map[string]string) string {
	content, ok := existing[filename]
	if !ok || strings.TrimSpace(content) == "" {
		return ""
	}
	return fmt.Sprintf("\nORIGINAL CODE of %s you are revising:\n%s\n", filename, content)
}

func formatDependencies(deps []string) string {
	if len(deps) == 0 {
		return "(none)"
	}
	return strings.Join(deps, ", ")
}
