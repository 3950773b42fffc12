package endings

import (
	"fmt"
	"sort"
	"strings"

	"github.com/questfoundry/advgraph/internal/graph"
	"github.com/questfoundry/advgraph/internal/story"
)

// Report analyzes the endings and renders the findings as the
// plain-text ending analysis report.
func Report(adv *story.Adventure, caps graph.Caps) string {
	a := Analyze(adv, caps)

	var b strings.Builder
	b.WriteString("=== Ending Analysis Report ===\n\n")

	b.WriteString("OVERALL SCORES:\n")
	fmt.Fprintf(&b, "  Overall: %.1f/10\n", a.OverallScore)
	fmt.Fprintf(&b, "  Balance: %.1f/10\n", a.BalanceScore)
	fmt.Fprintf(&b, "  Accessibility: %.1f/10\n", a.AccessibilityScore)
	fmt.Fprintf(&b, "  Differentiation: %.1f/10\n\n", a.DifferentiationScore)

	if len(a.Distribution) > 0 {
		total := 0
		for _, n := range a.Distribution {
			total += n
		}
		b.WriteString("ENDING DISTRIBUTION:\n")
		for _, target := range sortedTargets(a.Distribution) {
			count := a.Distribution[target]
			share := float64(count) / float64(total) * 100
			fmt.Fprintf(&b, "  %s: %d paths (%.1f%%)\n", target, count, share)
		}
		b.WriteString("\n")
	}

	if len(a.Accessibility) > 0 {
		b.WriteString("ENDING ACCESSIBILITY:\n")
		for _, kind := range sortedKinds(a.Accessibility) {
			fmt.Fprintf(&b, "  %s: %.1f%%\n", kind, a.Accessibility[kind]*100)
		}
		b.WriteString("\n")
	}

	if len(a.QualityScores) > 0 {
		b.WriteString("ENDING QUALITY SCORES:\n")
		for _, kind := range sortedKinds(a.QualityScores) {
			fmt.Fprintf(&b, "  %s: %.1f/10\n", kind, a.QualityScores[kind])
		}
		b.WriteString("\n")
	}

	b.WriteString("RECOMMENDATIONS:\n")
	if a.BalanceScore < 7.0 {
		b.WriteString("  • Improve ending distribution balance\n")
	}
	if a.AccessibilityScore < 6.0 {
		b.WriteString("  • Make endings more accessible to players\n")
	}
	if a.DifferentiationScore < 6.0 {
		b.WriteString("  • Increase differentiation between endings\n")
	}
	if a.OverallScore >= 8.0 {
		b.WriteString("  • Ending structure is well-balanced!\n")
	}

	return b.String()
}

func sortedTargets(dist map[string]int) []string {
	targets := make([]string, 0, len(dist))
	for t := range dist {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	return targets
}
