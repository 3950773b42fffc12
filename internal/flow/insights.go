package flow

import (
	"fmt"
	"strings"

	"github.com/questfoundry/advgraph/internal/story"
)

// Summary renders a text digest of the flow structure: counts, entry
// and terminal points, and branching stats.
func Summary(v *Visualization) string {
	lines := []string{"=== Story Flow Summary ===", ""}

	steps := v.countType(TypeStep)
	endings := v.countType(TypeEnding)

	lines = append(lines,
		"STRUCTURE:",
		fmt.Sprintf("  Steps: %d", steps),
		fmt.Sprintf("  Endings: %d", endings),
		fmt.Sprintf("  Connections: %d", len(v.Connections)),
		fmt.Sprintf("  Max Depth: %d", v.MaxDepth),
		fmt.Sprintf("  Complexity: %.1f/10", v.Complexity),
		"",
		"FLOW ANALYSIS:",
	)

	incoming := make(map[string]bool)
	outgoing := make(map[string]bool)
	for _, conn := range v.Connections {
		incoming[conn.To] = true
		outgoing[conn.From] = true
	}

	var entries, terminals []string
	for _, n := range v.Nodes {
		if !incoming[n.ID] {
			entries = append(entries, n.ID)
		}
		if !outgoing[n.ID] {
			terminals = append(terminals, n.ID)
		}
	}
	if len(entries) > 0 {
		lines = append(lines, fmt.Sprintf("  Entry Points: %d", len(entries)))
		for i, id := range entries {
			if i == 3 {
				break
			}
			lines = append(lines, "    - "+id)
		}
	}
	if len(terminals) > 0 {
		lines = append(lines, fmt.Sprintf("  Terminal Points: %d", len(terminals)))
		for i, id := range terminals {
			if i == 3 {
				break
			}
			lines = append(lines, "    - "+id)
		}
	}
	lines = append(lines, "")

	if steps > 0 {
		outs := outDegrees(v)
		total, widest := 0, 0
		mostComplex := ""
		for _, n := range v.Nodes {
			if n.Type != TypeStep {
				continue
			}
			count := outs[n.ID]
			total += count
			if count > widest {
				widest = count
				mostComplex = n.Label
			}
		}
		lines = append(lines,
			"BRANCHING:",
			fmt.Sprintf("  Average Choices per Step: %.1f", float64(total)/float64(steps)),
			fmt.Sprintf("  Maximum Choices: %d", widest),
		)
		if widest > 0 {
			lines = append(lines, "  Most Complex Step: "+mostComplex)
		}
	}

	return strings.Join(lines, "\n")
}

// Insights reads the flow metrics back as prose observations.
func Insights(v *Visualization) []string {
	var insights []string

	switch {
	case v.Complexity > 8:
		insights = append(insights, "High complexity flow - may be challenging for players to navigate")
	case v.Complexity < 3:
		insights = append(insights, "Simple flow structure - consider adding more branching for interest")
	default:
		insights = append(insights, "Moderate complexity provides good balance of choice and clarity")
	}

	if v.MaxDepth > 15 {
		insights = append(insights, "Very deep story structure - ensure all paths remain engaging")
	} else if v.MaxDepth < 3 {
		insights = append(insights, "Shallow story structure - consider extending narrative depth")
	}

	steps := v.countType(TypeStep)
	endings := v.countType(TypeEnding)
	if endings == 1 {
		insights = append(insights, "Single ending limits replayability - consider multiple outcomes")
	} else if float64(endings) > float64(steps)/2 {
		insights = append(insights, "High ending-to-step ratio provides good outcome variety")
	}

	if len(v.Connections) == 0 {
		insights = append(insights, "No connections found - story structure may be incomplete")
	} else if len(v.Connections) < steps {
		insights = append(insights, "Low connection density - some steps may be isolated")
	}

	if steps > 0 {
		outs := outDegrees(v)
		linear, overloaded := true, false
		for _, n := range v.Nodes {
			if n.Type != TypeStep {
				continue
			}
			if outs[n.ID] > 1 {
				linear = false
			}
			if outs[n.ID] > 4 {
				overloaded = true
			}
		}
		if linear {
			insights = append(insights, "Linear story with no meaningful choices")
		} else if overloaded {
			insights = append(insights, "Some steps have many choices - ensure all are meaningful")
		}
	}

	return insights
}

// Bottlenecks flags structural chokepoints: heavy convergence, choice
// overload, isolated nodes, and excessive depth. Returns a single
// all-clear line when nothing is flagged.
func Bottlenecks(adv *story.Adventure) []string {
	v := Visualize(adv)
	var found []string

	incoming := make(map[string]int)
	for _, conn := range v.Connections {
		incoming[conn.To]++
	}
	for _, id := range sortedKeys(incoming) {
		if n := incoming[id]; n > 3 {
			found = append(found, fmt.Sprintf("Convergence bottleneck at %s (%d incoming paths)", id, n))
		}
	}

	outgoing := outDegrees(v)
	for _, id := range sortedKeys(outgoing) {
		if n := outgoing[id]; n > 5 {
			found = append(found, fmt.Sprintf("Choice overload at %s (%d choices)", id, n))
		}
	}

	connected := make(map[string]bool)
	for _, conn := range v.Connections {
		connected[conn.From] = true
		connected[conn.To] = true
	}
	for _, n := range v.Nodes {
		if !connected[n.ID] {
			found = append(found, "Isolated node: "+n.ID)
		}
	}

	if v.MaxDepth > 12 {
		found = append(found, fmt.Sprintf("Very deep structure (depth: %d) may lose player engagement", v.MaxDepth))
	}

	if len(found) == 0 {
		found = append(found, "No significant flow bottlenecks detected")
	}
	return found
}
