package genctx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"genforge/internal/plan"
	"genforge/internal/symbol"
)

func TestFilterFor_PassesFullIndexThrough(t *testing.T) {
	b := NewBuilder(symbol.NewScanIndexer(0))
	ctx, err := b.Build(testPlan(), "", map[string]string{
		"models.py": "class User:\n    pass\n",
		"other.py":  "class Unrelated:\n    pass\n",
	}, "/project")
	require.NoError(t, err)

	fc := b.FilterFor("service.py", ctx)
	require.Equal(t, ctx.ProjectIndex, fc.RelevantModules, "default is the unfiltered index")

	fc.RelevantModules["Injected"] = "x"
	require.NotContains(t, ctx.ProjectIndex, "Injected", "filter returns a copy")
}

func TestScoredModules_StemBoost(t *testing.T) {
	ctx := &Context{
		ProjectIndex: map[string]string{
			"User":      "models",
			"Unrelated": "zzz",
		},
		Relevance: map[string]float64{
			"project_index:User":      0.0,
			"project_index:Unrelated": 0.0,
		},
	}
	got := ScoredModules("models.py", ctx, 5)
	require.Contains(t, got, "User", "stem match boosts past the threshold")
	require.NotContains(t, got, "Unrelated")
}

func TestFilterRetrieval_MatchesAndFallback(t *testing.T) {
	retrieval := "general background" +
		ChunkSeparator + " the player class handles movement " +
		ChunkSeparator + " unrelated cooking recipe "
	got := FilterRetrieval("player.gd", retrieval)
	require.Contains(t, got, "player class")
	require.NotContains(t, got, "cooking")

	// No chunk mentions the file or code structure: first two chunks win.
	retrieval = "alpha" + ChunkSeparator + "beta" + ChunkSeparator + "gamma"
	got = FilterRetrieval("player.gd", retrieval)
	require.Equal(t, "alpha\n\nbeta", got)
}

func TestFilterRetrieval_Cap(t *testing.T) {
	long := strings.Repeat("player movement ", 200)
	got := FilterRetrieval("player.gd", long)
	require.Len(t, got, retrievalCap+3)
	require.True(t, strings.HasSuffix(got, "..."))
}

func TestUpstreamDependencies(t *testing.T) {
	p := plan.GenerationPlan{
		Files: []plan.ArtifactSpec{
			{Filename: "main.py", Purpose: "entry point wiring everything"},
			{Filename: "core_engine.py", Purpose: "core engine loop"},
			{Filename: "player_service.py", Purpose: "player actions service"},
			{Filename: "README.md", Purpose: "docs"},
		},
	}
	b := NewBuilder(symbol.NewScanIndexer(0))
	ctx, err := b.Build(p, "", nil, "")
	require.NoError(t, err)

	// Main depends on every planned source file.
	fc := b.FilterFor("main.py", ctx)
	require.Contains(t, fc.Dependencies, "core_engine")
	require.Contains(t, fc.Dependencies, "player_service")
	require.NotContains(t, fc.Dependencies, "README")

	// Service-named files depend on core-named files.
	fc = b.FilterFor("player_service.py", ctx)
	require.Contains(t, fc.Dependencies, "core_engine")
}

func TestFilterDesign(t *testing.T) {
	facts := []DesignFact{
		{Kind: "class", Name: "Player", File: "player.gd"},
		{Kind: "class", Name: "Boss", File: "enemies/boss.gd"},
	}
	b := NewBuilder(symbol.NewScanIndexer(0))
	ctx := &Context{LivingDesign: facts}
	fc := b.FilterFor("player.gd", ctx)
	require.Len(t, fc.DesignContext, 1)
	require.Equal(t, "Player", fc.DesignContext[0].Name)
}
