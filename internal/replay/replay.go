// Package replay scores how strongly a story rewards playing it more
// than once. Playthroughs are enumerated under caps and rated for
// diversity, content coverage, ending spread, and branching
// complexity; every metric runs 0 to 10.
package replay

import (
	"math"

	"github.com/questfoundry/advgraph/internal/graph"
	"github.com/questfoundry/advgraph/internal/story"
)

// Analysis captures one replayability scoring pass.
//
// Playthroughs holds the enumerated paths the path metrics were
// computed from. Scores run 0 to 10.
type Analysis struct {
	TotalPaths          int          `json:"total_possible_paths"`
	Playthroughs        []graph.Path `json:"unique_playthroughs"`
	PathDiversity       float64      `json:"path_diversity_score"`
	ContentVariation    float64      `json:"content_variation_score"`
	EndingVariety       float64      `json:"ending_variety_score"`
	BranchingComplexity float64      `json:"branching_complexity"`
	ReplayValue         float64      `json:"replay_value_score"`
	Overall             float64      `json:"overall_replayability"`
}

// Analyze enumerates playthroughs under caps and scores them. Overall
// weighs diversity 0.25, content variation 0.20, ending variety 0.20,
// branching complexity 0.15, and replay value 0.20.
func Analyze(adv *story.Adventure, caps graph.Caps) Analysis {
	paths := graph.EnumeratePaths(adv, story.StartStepID, caps)

	a := Analysis{
		TotalPaths:          len(paths),
		Playthroughs:        paths,
		PathDiversity:       pathDiversity(paths),
		ContentVariation:    contentVariation(paths, adv),
		EndingVariety:       endingVariety(paths),
		BranchingComplexity: branchingComplexity(adv),
		ReplayValue:         replayValue(paths, adv),
	}
	weighted := a.PathDiversity*0.25 +
		a.ContentVariation*0.20 +
		a.EndingVariety*0.20 +
		a.BranchingComplexity*0.15 +
		a.ReplayValue*0.20
	a.Overall = clamp(weighted, 0, 10)
	return a
}

// pathDiversity rates how different the playthroughs are from each
// other: the complement of the mean pairwise similarity. A single
// path rates a flat 5.0.
func pathDiversity(paths []graph.Path) float64 {
	if len(paths) == 0 {
		return 0
	}
	if len(paths) == 1 {
		return 5.0
	}

	var sum float64
	pairs := 0
	for i := 0; i < len(paths); i++ {
		for j := i + 1; j < len(paths); j++ {
			sum += similarity(paths[i], paths[j])
			pairs++
		}
	}
	return clamp((1-sum/float64(pairs))*10, 0, 10)
}

// similarity compares two playthroughs on a 0 to 1 scale: node
// overlap over union weighs 0.7, reaching the same ending weighs 0.3.
func similarity(a, b graph.Path) float64 {
	nodesA := nodeSet(a)
	nodesB := nodeSet(b)
	if len(nodesA) == 0 && len(nodesB) == 0 {
		return 1
	}

	shared := 0
	union := len(nodesB)
	for n := range nodesA {
		if nodesB[n] {
			shared++
		} else {
			union++
		}
	}
	overlap := float64(shared) / float64(union)

	match := 0.0
	if a.Ending == b.Ending {
		match = 1
	}
	return overlap*0.7 + match*0.3
}

// contentVariation rates how much of the story the playthroughs cover:
// mean coverage and the spread between the thinnest and fullest run
// each weigh half.
func contentVariation(paths []graph.Path, adv *story.Adventure) float64 {
	if len(paths) == 0 || len(adv.Steps) == 0 {
		return 0
	}

	ratios := make([]float64, 0, len(paths))
	for _, p := range paths {
		seen := make(map[string]bool, len(p.Steps))
		for _, id := range p.Steps {
			seen[id] = true
		}
		ratios = append(ratios, float64(len(seen))/float64(len(adv.Steps)))
	}
	if len(ratios) == 1 {
		return ratios[0] * 10
	}

	low, high := ratios[0], ratios[0]
	sum := 0.0
	for _, r := range ratios {
		if r < low {
			low = r
		}
		if r > high {
			high = r
		}
		sum += r
	}
	avg := sum / float64(len(ratios))
	return clamp((high-low)*5+avg*5, 0, 10)
}

// endingVariety rates the spread of endings across playthroughs: up
// to 5 points for distinct endings, up to 5 more for dividing the
// playthroughs evenly between them.
func endingVariety(paths []graph.Path) float64 {
	if len(paths) == 0 {
		return 0
	}

	counts := make(map[string]int)
	for _, p := range paths {
		counts[p.Ending]++
	}

	score := math.Min(5, float64(len(counts))*2)
	if len(counts) > 1 {
		even := 1.0 / float64(len(counts))
		var deviation float64
		for _, n := range counts {
			deviation += math.Abs(float64(n)/float64(len(paths)) - even)
		}
		score += math.Max(0, 5-deviation*10)
	}
	return clamp(score, 0, 10)
}

// branchingComplexity rates the choice structure without enumerating
// paths: choice density, the spread between the widest and narrowest
// step, and a bonus per choice carrying conditions or consequences.
func branchingComplexity(adv *story.Adventure) float64 {
	if len(adv.Steps) == 0 {
		return 0
	}

	totalChoices := 0
	narrowest, widest := 0, 0
	bonus := 0.0
	first := true
	for _, step := range adv.Steps {
		n := len(step.Choices)
		totalChoices += n
		if first || n < narrowest {
			narrowest = n
		}
		if first || n > widest {
			widest = n
		}
		first = false

		for _, c := range step.Choices {
			if len(c.Conditions) > 0 {
				bonus += 0.1
			}
			if len(c.Consequences) > 0 {
				bonus += 0.1
			}
		}
	}

	score := math.Min(5, float64(totalChoices)/float64(len(adv.Steps))*2)
	if len(adv.Steps) > 1 {
		score += math.Min(2, float64(widest-narrowest)*0.5)
	}
	score += math.Min(3, bonus)
	return clamp(score, 0, 10)
}

// replayValue rates the concrete incentives to replay: path count,
// length spread, distinct content per run, and distinct endings.
func replayValue(paths []graph.Path, adv *story.Adventure) float64 {
	if len(paths) == 0 {
		return 0
	}

	score := math.Min(4, float64(len(paths))*0.5)

	if len(paths) > 1 {
		shortest, longest := lengthBounds(paths)
		score += float64(longest-shortest) / float64(longest) * 2
	}

	nodes := 0
	for _, p := range paths {
		nodes += len(nodeSet(p))
	}
	avgNodes := float64(nodes) / float64(len(paths))
	score += avgNodes / float64(len(adv.Steps)) * 2

	endings := make(map[string]bool)
	for _, p := range paths {
		endings[p.Ending] = true
	}
	score += math.Min(2, float64(len(endings))*0.5)

	return clamp(score, 0, 10)
}

// ─── Private Helpers ─────────────────────────────────────────────────

// nodeSet collects the distinct nodes one playthrough visits, its
// steps plus the terminal ending target.
func nodeSet(p graph.Path) map[string]bool {
	set := make(map[string]bool, len(p.Steps)+1)
	for _, id := range p.Steps {
		set[id] = true
	}
	if p.Ending != "" {
		set[story.EndingTarget(p.Ending)] = true
	}
	return set
}

// pathLength counts the nodes a playthrough visits, its steps plus
// the terminal ending.
func pathLength(p graph.Path) int {
	return len(p.Steps) + 1
}

// lengthBounds returns the shortest and longest playthrough lengths.
func lengthBounds(paths []graph.Path) (min, max int) {
	for i, p := range paths {
		n := pathLength(p)
		if i == 0 || n < min {
			min = n
		}
		if n > max {
			max = n
		}
	}
	return min, max
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
