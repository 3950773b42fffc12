// Package pruner analyzes the branch structure of a story and repairs
// what it safely can: unreachable steps, choiceless dead ends,
// orphaned choices, and a lopsided ending distribution.
//
// Analyze is a single pass over one adjacency build; Prune runs the
// repair pipeline in a fixed order, consulting only the analysis taken
// before any change, and never mutates its input.
package pruner

import (
	"github.com/questfoundry/advgraph/internal/graph"
	"github.com/questfoundry/advgraph/internal/story"
)

// Analysis captures one structural pass over a story.
//
// EndingDistribution counts, per verbatim ending target, how many
// steps can reach it. PathLengths holds the shortest distance from the
// start step to every reachable step; the start id is always present,
// at distance zero, even when the step itself is missing.
type Analysis struct {
	DeadEnds           []string          `json:"dead_ends"`
	UnreachableSteps   []string          `json:"unreachable_steps"`
	OrphanedChoices    []graph.ChoiceRef `json:"orphaned_choices"`
	EndingDistribution map[string]int    `json:"ending_distribution"`
	PathLengths        map[string]int    `json:"path_lengths"`
	BranchingFactors   map[string]int    `json:"branching_factor"`
	CriticalPathSteps  []string          `json:"critical_path_steps"`
}

// Analyze performs the full structural pass: reachability, dead ends,
// orphaned choices, ending distribution, shortest path lengths,
// branching factors, and the critical path.
func Analyze(adv *story.Adventure) Analysis {
	g := graph.Build(adv)

	return Analysis{
		DeadEnds:           graph.DeadEnds(adv, g),
		UnreachableSteps:   graph.Unreachable(adv, g, story.StartStepID),
		OrphanedChoices:    graph.OrphanedChoices(adv),
		EndingDistribution: endingDistribution(adv, g),
		PathLengths:        graph.PathLengths(g, story.StartStepID),
		BranchingFactors:   graph.BranchingFactor(adv),
		CriticalPathSteps:  graph.CriticalPath(g, story.StartStepID),
	}
}

func endingDistribution(adv *story.Adventure, g map[string][]string) map[string]int {
	dist := make(map[string]int)
	for id := range adv.Steps {
		for ending := range graph.EndingsFrom(id, g, nil) {
			dist[ending]++
		}
	}
	return dist
}
