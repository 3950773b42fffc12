package replay

import (
	"fmt"
	"sort"
	"strings"

	"github.com/questfoundry/advgraph/internal/graph"
	"github.com/questfoundry/advgraph/internal/story"
)

// Report analyzes the adventure and renders the findings as the
// plain-text replayability report.
func Report(adv *story.Adventure, caps graph.Caps) string {
	a := Analyze(adv, caps)

	var b strings.Builder
	b.WriteString("=== Replayability Analysis Report ===\n\n")

	fmt.Fprintf(&b, "OVERALL REPLAYABILITY: %.1f/10\n", a.Overall)
	switch {
	case a.Overall >= 8:
		b.WriteString("HIGHLY REPLAYABLE\n")
	case a.Overall >= 6:
		b.WriteString("MODERATELY REPLAYABLE\n")
	case a.Overall >= 4:
		b.WriteString("LIMITED REPLAYABILITY\n")
	default:
		b.WriteString("LOW REPLAYABILITY\n")
	}
	b.WriteString("\n")

	b.WriteString("DETAILED SCORES:\n")
	fmt.Fprintf(&b, "  Path Diversity: %.1f/10\n", a.PathDiversity)
	fmt.Fprintf(&b, "  Content Variation: %.1f/10\n", a.ContentVariation)
	fmt.Fprintf(&b, "  Ending Variety: %.1f/10\n", a.EndingVariety)
	fmt.Fprintf(&b, "  Branching Complexity: %.1f/10\n", a.BranchingComplexity)
	fmt.Fprintf(&b, "  Replay Value: %.1f/10\n\n", a.ReplayValue)

	b.WriteString("PATH STATISTICS:\n")
	fmt.Fprintf(&b, "  Total Unique Paths: %d\n", a.TotalPaths)
	if len(a.Playthroughs) > 0 {
		totalNodes := 0
		for _, p := range a.Playthroughs {
			totalNodes += pathLength(p)
		}
		shortest, longest := lengthBounds(a.Playthroughs)
		fmt.Fprintf(&b, "  Average Path Length: %.1f steps\n", float64(totalNodes)/float64(len(a.Playthroughs)))
		fmt.Fprintf(&b, "  Shortest Path: %d steps\n", shortest)
		fmt.Fprintf(&b, "  Longest Path: %d steps\n", longest)

		dist := graph.EndingDistribution(a.Playthroughs)
		kinds := make([]string, 0, len(dist))
		for kind := range dist {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)

		b.WriteString("\nENDING DISTRIBUTION:\n")
		for _, kind := range kinds {
			share := float64(dist[kind]) / float64(a.TotalPaths) * 100
			fmt.Fprintf(&b, "  %s: %d paths (%.1f%%)\n", story.EndingTarget(kind), dist[kind], share)
		}
	}
	b.WriteString("\n")

	b.WriteString("ADVENTURE STRUCTURE:\n")
	fmt.Fprintf(&b, "  Total Steps: %d\n", len(adv.Steps))
	fmt.Fprintf(&b, "  Total Endings: %d\n", len(adv.Endings))
	if len(adv.Steps) > 0 {
		totalChoices := 0
		for _, step := range adv.Steps {
			totalChoices += len(step.Choices)
		}
		fmt.Fprintf(&b, "  Total Choices: %d\n", totalChoices)
		fmt.Fprintf(&b, "  Average Choices per Step: %.1f\n", float64(totalChoices)/float64(len(adv.Steps)))
	}
	b.WriteString("\n")

	b.WriteString("KEY RECOMMENDATIONS:\n")
	switch {
	case a.Overall < 4:
		b.WriteString("  • Urgent: major replayability improvements needed\n")
		b.WriteString("    - Add multiple branching paths\n")
		b.WriteString("    - Create diverse endings\n")
		b.WriteString("    - Vary content across playthroughs\n")
	case a.Overall < 6:
		b.WriteString("  • Moderate improvements recommended:\n")
		if a.PathDiversity < 5 {
			b.WriteString("    - Increase path diversity\n")
		}
		if a.EndingVariety < 5 {
			b.WriteString("    - Add more ending variety\n")
		}
		if a.BranchingComplexity < 5 {
			b.WriteString("    - Increase choice complexity\n")
		}
	case a.Overall < 8:
		b.WriteString("  • Minor improvements for excellence:\n")
		b.WriteString("    - Polish existing branches\n")
		b.WriteString("    - Add hidden content for discovery\n")
		b.WriteString("    - Balance path lengths\n")
	default:
		b.WriteString("  • Excellent replayability achieved!\n")
		b.WriteString("    - Maintain current quality\n")
		b.WriteString("    - Consider adding seasonal content\n")
	}

	return b.String()
}
