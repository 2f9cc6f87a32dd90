package genctx

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"genforge/internal/plan"
	"genforge/internal/symbol"
)

// fakeIndexer lets tests script symbol extraction.
type fakeIndexer struct {
	symbols map[string]map[string]string // source -> extracted mapping
	tree    map[string]string
	err     error
}

func (f *fakeIndexer) ExtractSymbols(source, modulePath string) (map[string]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	if m, ok := f.symbols[source]; ok {
		out := make(map[string]string, len(m))
		for k := range m {
			out[k] = modulePath
		}
		return out, nil
	}
	return map[string]string{}, nil
}

func (f *fakeIndexer) IndexTree(string) (map[string]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tree, nil
}

func testPlan() plan.GenerationPlan {
	return plan.GenerationPlan{
		Files: []plan.ArtifactSpec{
			{Filename: "models.py", Purpose: "data models"},
			{Filename: "service.py", Purpose: "service using models"},
		},
		Dependencies: []string{"requests"},
	}
}

func TestBuild_SessionEntries(t *testing.T) {
	b := NewBuilder(symbol.NewScanIndexer(0))
	ctx, err := b.Build(testPlan(), "", nil, "")
	require.NoError(t, err)

	entries := ctx.Session.Snapshot()
	require.Len(t, entries, 2)
	for _, name := range []string{"models.py", "service.py"} {
		entry, ok := entries[name]
		require.True(t, ok, "missing session entry for %s", name)
		require.Equal(t, StatusPlanned, entry.Status)
	}
	require.Equal(t, "service using models", entries["service.py"].Purpose)
	require.Contains(t, entries["service.py"].Dependencies, "core.event_bus")
	require.Empty(t, ctx.DependencyOrder, "dependency order belongs to the planner")
}

func TestBuild_IndexFromExistingFiles(t *testing.T) {
	existing := map[string]string{
		"models.py": "class User:\n    pass\n",
		"notes.md":  "# not source",
	}
	b := NewBuilder(symbol.NewScanIndexer(0))
	ctx, err := b.Build(testPlan(), "", existing, "/project")
	require.NoError(t, err)
	require.Equal(t, "models", ctx.ProjectIndex["User"])
}

func TestBuild_TreeFallbackWhenNoFileContent(t *testing.T) {
	idx := &fakeIndexer{tree: map[string]string{"Engine": "core.engine"}}
	b := NewBuilder(idx)
	ctx, err := b.Build(testPlan(), "", nil, "/project")
	require.NoError(t, err)
	require.Equal(t, "core.engine", ctx.ProjectIndex["Engine"])
}

func TestBuild_NoProjectRootMeansEmptyIndex(t *testing.T) {
	idx := &fakeIndexer{tree: map[string]string{"Engine": "core.engine"}}
	b := NewBuilder(idx)
	ctx, err := b.Build(testPlan(), "", nil, "")
	require.NoError(t, err)
	require.Empty(t, ctx.ProjectIndex)
}

func TestBuild_IndexFailureDegrades(t *testing.T) {
	idx := &fakeIndexer{err: errors.New("parse explosion")}
	b := NewBuilder(idx)
	ctx, err := b.Build(testPlan(), "", map[string]string{"models.py": "x"}, "/project")
	require.NoError(t, err, "indexing failures must not abort the build")
	require.Empty(t, ctx.ProjectIndex)
}

func TestBuild_RelevanceScores(t *testing.T) {
	retrieval := "intro text" + ChunkSeparator + " models are described here with data structures " + ChunkSeparator + "   "
	b := NewBuilder(symbol.NewScanIndexer(0))
	ctx, err := b.Build(testPlan(), retrieval, nil, "")
	require.NoError(t, err)

	score, ok := ctx.Relevance["retrieval_chunk:1"]
	require.True(t, ok)
	require.Greater(t, score, 0.0)
	require.LessOrEqual(t, score, 1.0)
	_, hasBlank := ctx.Relevance["retrieval_chunk:2"]
	require.False(t, hasBlank, "blank chunks are not scored")
}

func TestTextRelevance_Formula(t *testing.T) {
	keywords := map[string]struct{}{"models": {}, "zzzz": {}}
	text := "the models module"
	// one of two keywords found, 3 words -> 0.5 * 0.03
	got := TextRelevance(text, keywords)
	require.InDelta(t, 0.5*0.03, got, 1e-9)

	require.Zero(t, TextRelevance("", keywords))
	require.Zero(t, TextRelevance(text, nil))
	require.True(t, math.Abs(TextRelevance("   ", keywords)) < 1e-12)
}

func TestKeywords_Extraction(t *testing.T) {
	p := plan.GenerationPlan{
		Files: []plan.ArtifactSpec{
			{Filename: "game_logic/player_input.py", Purpose: "Handles input, hp up"},
		},
		Dependencies: []string{"Requests"},
	}
	kw := Keywords(p)
	require.Contains(t, kw, "handles")
	require.Contains(t, kw, "player")
	require.Contains(t, kw, "input")
	require.Contains(t, kw, "logic")
	require.Contains(t, kw, "requests")
	require.NotContains(t, kw, "hp", "short words are excluded")
	require.NotContains(t, kw, "input,", "punctuated tokens are not alphabetic")
}

func TestBuild_Isolation(t *testing.T) {
	b := NewBuilder(symbol.NewScanIndexer(0))
	ctxA, err := b.Build(testPlan(), "", nil, "")
	require.NoError(t, err)
	other := plan.GenerationPlan{Files: []plan.ArtifactSpec{{Filename: "models.py", Purpose: "data models"}}}
	ctxB, err := b.Build(other, "", nil, "")
	require.NoError(t, err)

	ctxA.Session.MarkCompleted("models.py", "class User:\n    pass\n")
	ctxA.ProjectIndex["User"] = "models"

	entry, ok := ctxB.Session.Entry("models.py")
	require.True(t, ok)
	require.Equal(t, StatusPlanned, entry.Status, "session records must be per-run")
	require.Empty(t, entry.Content)
	require.NotContains(t, ctxB.ProjectIndex, "User")
}
