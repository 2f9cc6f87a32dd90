package planner

import (
	"fmt"
	"sort"
	"strings"

	"genforge/internal/genctx"
	"genforge/internal/plan"
	"genforge/internal/symbol"
)

// Planner orders planned artifacts so upstream files are generated before
// the files that reference them.
//
// Contract: the returned sequence is a permutation of exactly the planned
// artifacts and is deterministic for a fixed context.
type Planner interface {
	PlanOrder(ctx *genctx.Context) ([]string, error)
}

// Heuristic is a deterministic planner. It ranks artifacts into coarse
// tiers (project configuration, then library code, scenes, the main entry
// point last) and topologically sorts within the tiers using purpose-word
// overlap and naming heuristics, breaking ties by plan order.
type Heuristic struct{}

// NewHeuristic returns the default planner.
func NewHeuristic() *Heuristic { return &Heuristic{} }

func (h *Heuristic) PlanOrder(ctx *genctx.Context) ([]string, error) {
	if ctx == nil {
		return nil, fmt.Errorf("planner: context is nil")
	}
	files := ctx.Plan.Files
	n := len(files)
	if n == 0 {
		return []string{}, nil
	}

	// upstream[i] holds plan positions that must come before i.
	upstream := make([][]int, n)
	for i, f := range files {
		for j, other := range files {
			if i == j {
				continue
			}
			if isUpstream(other, f) {
				upstream[i] = append(upstream[i], j)
			}
		}
	}

	// Kahn's algorithm with a tier+plan-order priority; cycles fall back
	// to plan order.
	indeg := make([]int, n)
	downstream := make([][]int, n)
	for i, ups := range upstream {
		for _, u := range ups {
			indeg[i]++
			downstream[u] = append(downstream[u], i)
		}
	}

	ready := make([]int, 0, n)
	for i := range files {
		if indeg[i] == 0 {
			ready = append(ready, i)
		}
	}
	order := make([]string, 0, n)
	emitted := make([]bool, n)
	for len(order) < n {
		if len(ready) == 0 {
			// Dependency cycle: emit the remaining files in plan order.
			for i := range files {
				if !emitted[i] {
					ready = append(ready, i)
					indeg[i] = 0
				}
			}
		}
		sort.Slice(ready, func(a, b int) bool {
			ta, tb := tier(files[ready[a]]), tier(files[ready[b]])
			if ta != tb {
				return ta < tb
			}
			return ready[a] < ready[b]
		})
		next := ready[0]
		ready = ready[1:]
		if emitted[next] {
			continue
		}
		emitted[next] = true
		order = append(order, files[next].Filename)
		for _, d := range downstream[next] {
			indeg[d]--
			if indeg[d] == 0 && !emitted[d] {
				ready = append(ready, d)
			}
		}
	}
	return order, nil
}

// tier assigns a coarse generation priority: configuration first, source
// code next, declarative scenes after their scripts, the entry point and
// everything else last.
func tier(f plan.ArtifactSpec) int {
	name := strings.ToLower(f.Filename)
	stem := plan.Stem(name)
	switch {
	case strings.HasSuffix(name, ".godot") || strings.HasSuffix(name, ".cfg") || strings.HasSuffix(name, ".toml"):
		return 0
	case stem == "main":
		return 4
	case symbol.IsSourceFile(name):
		return 1
	case strings.HasSuffix(name, ".tscn"):
		return 2
	default:
		return 3
	}
}

// isUpstream reports whether a must be generated before b.
func isUpstream(a, b plan.ArtifactSpec) bool {
	if plan.Stem(b.Filename) == "main" && plan.Stem(a.Filename) != "main" {
		return true
	}
	// A scene follows its companion script.
	if strings.HasSuffix(b.Filename, ".tscn") &&
		strings.TrimSuffix(a.Filename, ".gd") == strings.TrimSuffix(b.Filename, ".tscn") {
		return true
	}
	if strings.Contains(strings.ToLower(b.Filename), "service") &&
		strings.Contains(strings.ToLower(a.Filename), "core") {
		return true
	}
	return false
}
