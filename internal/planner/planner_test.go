package planner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"genforge/internal/genctx"
	"genforge/internal/plan"
)

func ctxFor(files ...plan.ArtifactSpec) *genctx.Context {
	return &genctx.Context{Plan: plan.GenerationPlan{Files: files}}
}

func TestPlanOrder_IsPermutation(t *testing.T) {
	ctx := ctxFor(
		plan.ArtifactSpec{Filename: "main.py", Purpose: "Entry point"},
		plan.ArtifactSpec{Filename: "models.py", Purpose: "Data models"},
		plan.ArtifactSpec{Filename: "player.tscn", Purpose: "Player scene"},
		plan.ArtifactSpec{Filename: "player.gd", Purpose: "Player controller"},
	)

	order, err := NewHeuristic().PlanOrder(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, ctx.Plan.Filenames(), order)
	require.Len(t, order, 4)
}

func TestPlanOrder_MainLast(t *testing.T) {
	ctx := ctxFor(
		plan.ArtifactSpec{Filename: "main.py", Purpose: "Entry point"},
		plan.ArtifactSpec{Filename: "utils.py", Purpose: "Helpers"},
		plan.ArtifactSpec{Filename: "config.py", Purpose: "Settings"},
	)

	order, err := NewHeuristic().PlanOrder(ctx)
	require.NoError(t, err)
	require.Equal(t, "main.py", order[len(order)-1])
}

func TestPlanOrder_SceneAfterScript(t *testing.T) {
	ctx := ctxFor(
		plan.ArtifactSpec{Filename: "player.tscn", Purpose: "Player scene"},
		plan.ArtifactSpec{Filename: "player.gd", Purpose: "Player movement script"},
	)

	order, err := NewHeuristic().PlanOrder(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"player.gd", "player.tscn"}, order)
}

func TestPlanOrder_CoreBeforeService(t *testing.T) {
	ctx := ctxFor(
		plan.ArtifactSpec{Filename: "inventory_service.py", Purpose: "Inventory service"},
		plan.ArtifactSpec{Filename: "core.py", Purpose: "Core runtime"},
	)

	order, err := NewHeuristic().PlanOrder(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"core.py", "inventory_service.py"}, order)
}

func TestPlanOrder_Deterministic(t *testing.T) {
	ctx := ctxFor(
		plan.ArtifactSpec{Filename: "a.py", Purpose: "Module a"},
		plan.ArtifactSpec{Filename: "b.py", Purpose: "Module b"},
		plan.ArtifactSpec{Filename: "c.py", Purpose: "Module c"},
	)

	h := NewHeuristic()
	first, err := h.PlanOrder(ctx)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := h.PlanOrder(ctx)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestPlanOrder_EmptyAndNil(t *testing.T) {
	order, err := NewHeuristic().PlanOrder(ctxFor())
	require.NoError(t, err)
	require.Empty(t, order)

	_, err = NewHeuristic().PlanOrder(nil)
	require.Error(t, err)
}
