package pruner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/questfoundry/advgraph/internal/story"
)

// Report analyzes the adventure and renders the findings as the
// plain-text branch structure report.
func Report(adv *story.Adventure) string {
	a := Analyze(adv)

	var b strings.Builder
	b.WriteString("=== Branch Structure Analysis ===\n\n")

	fmt.Fprintf(&b, "Total Steps: %d\n", len(adv.Steps))
	fmt.Fprintf(&b, "Reachable Steps: %d\n", len(adv.Steps)-len(a.UnreachableSteps))
	fmt.Fprintf(&b, "Dead Ends: %d\n", len(a.DeadEnds))
	fmt.Fprintf(&b, "Orphaned Choices: %d\n\n", len(a.OrphanedChoices))

	if len(a.PathLengths) > 0 {
		min, max := lengthBounds(a.PathLengths)
		b.WriteString("Path Length Analysis:\n")
		fmt.Fprintf(&b, "  Average: %.1f steps\n", meanLength(a.PathLengths))
		fmt.Fprintf(&b, "  Range: %d - %d steps\n", min, max)
		fmt.Fprintf(&b, "  Critical Path: %d steps\n\n", len(a.CriticalPathSteps))
	}

	if len(a.EndingDistribution) > 0 {
		total := 0
		for _, n := range a.EndingDistribution {
			total += n
		}
		b.WriteString("Ending Distribution:\n")
		for _, ending := range sortedEndingTargets(a.EndingDistribution) {
			count := a.EndingDistribution[ending]
			share := float64(count) / float64(total) * 100
			fmt.Fprintf(&b, "  %s: %d paths (%.1f%%)\n", ending, count, share)
		}
		b.WriteString("\n")
	}

	if len(a.DeadEnds) > 0 {
		b.WriteString("Dead Ends Found:\n")
		for _, id := range a.DeadEnds {
			fmt.Fprintf(&b, "  • Step %s\n", id)
		}
		b.WriteString("\n")
	}

	if len(a.UnreachableSteps) > 0 {
		b.WriteString("Unreachable Steps:\n")
		for _, id := range a.UnreachableSteps {
			fmt.Fprintf(&b, "  • Step %s\n", id)
		}
		b.WriteString("\n")
	}

	b.WriteString("Recommendations:\n")
	clean := true
	if len(a.DeadEnds) > 0 {
		b.WriteString("  • Fix dead end steps by adding choices leading to endings\n")
		clean = false
	}
	if len(a.UnreachableSteps) > 0 {
		b.WriteString("  • Remove unreachable steps or add paths to reach them\n")
		clean = false
	}
	if len(a.OrphanedChoices) > 0 {
		b.WriteString("  • Fix orphaned choices pointing to non-existent targets\n")
		clean = false
	}
	if clean {
		b.WriteString("  • Branch structure looks good!\n")
	}

	return b.String()
}

func lengthBounds(lengths map[string]int) (min, max int) {
	first := true
	for _, n := range lengths {
		if first || n < min {
			min = n
		}
		if first || n > max {
			max = n
		}
		first = false
	}
	return min, max
}

func sortedEndingTargets(dist map[string]int) []string {
	targets := make([]string, 0, len(dist))
	for t := range dist {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	return targets
}
