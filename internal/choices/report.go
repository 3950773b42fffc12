package choices

import (
	"fmt"
	"strings"

	"github.com/questfoundry/advgraph/internal/story"
)

// Report analyzes the adventure's choices and renders the findings as
// the plain-text choice quality report. minImpact sets the impact
// floor for issue detection, normally DefaultMinImpact.
func Report(adv *story.Adventure, minImpact float64) string {
	a := Analyze(adv)
	issues := Issues(adv, a, minImpact)

	var b strings.Builder
	b.WriteString("=== Choice Analysis Report ===\n\n")

	b.WriteString("OVERALL SCORES:\n")
	fmt.Fprintf(&b, "  Choice Quality: %.1f/10\n", a.Overall)
	fmt.Fprintf(&b, "  Player Agency: %.1f/10\n", a.PlayerAgency)
	fmt.Fprintf(&b, "  Meaningful Choices: %.1f%%\n", a.MeaningfulRatio*100)
	fmt.Fprintf(&b, "  Choice Descriptions: %.1f/10\n\n", a.Quality)

	totalChoices := 0
	for _, step := range adv.Steps {
		totalChoices += len(step.Choices)
	}
	avgChoices := 0.0
	if len(adv.Steps) > 0 {
		avgChoices = float64(totalChoices) / float64(len(adv.Steps))
	}
	b.WriteString("CHOICE STATISTICS:\n")
	fmt.Fprintf(&b, "  Total Choices: %d\n", totalChoices)
	fmt.Fprintf(&b, "  Average Choices per Step: %.1f\n", avgChoices)
	fmt.Fprintf(&b, "  Steps with Choices: %d\n\n", len(adv.Steps))

	if len(a.Impact) > 0 {
		sum, high, low := 0.0, 0, 0
		for _, score := range a.Impact {
			sum += score
			if score > 0.7 {
				high++
			}
			if score < minImpact {
				low++
			}
		}
		b.WriteString("IMPACT ANALYSIS:\n")
		fmt.Fprintf(&b, "  Average Impact Score: %.2f\n", sum/float64(len(a.Impact)))
		fmt.Fprintf(&b, "  High Impact Choices: %d\n", high)
		fmt.Fprintf(&b, "  Low Impact Choices: %d\n\n", low)
	}

	if len(a.Differentiation) > 0 {
		sum, well, poor := 0.0, 0, 0
		for _, score := range a.Differentiation {
			sum += score
			if score > 0.7 {
				well++
			}
			if score < minDifferentiationThreshold {
				poor++
			}
		}
		b.WriteString("DIFFERENTIATION ANALYSIS:\n")
		fmt.Fprintf(&b, "  Average Differentiation: %.2f\n", sum/float64(len(a.Differentiation)))
		fmt.Fprintf(&b, "  Well-Differentiated Choices: %d\n", well)
		fmt.Fprintf(&b, "  Poorly Differentiated: %d\n\n", poor)
	}

	if len(issues) > 0 {
		b.WriteString("ISSUES FOUND:\n")
		var codes []string
		counts := make(map[string]int)
		for _, issue := range issues {
			if counts[issue.Code] == 0 {
				codes = append(codes, issue.Code)
			}
			counts[issue.Code]++
		}
		for _, code := range codes {
			fmt.Fprintf(&b, "  %s: %d\n", code, counts[code])
		}
		b.WriteString("\n")

		var severe []Issue
		for _, issue := range issues {
			if issue.Severity == SeverityCritical || issue.Severity == SeverityHigh {
				severe = append(severe, issue)
			}
		}
		if len(severe) > 0 {
			b.WriteString("CRITICAL/HIGH ISSUES:\n")
			for i, issue := range severe {
				if i == 5 {
					fmt.Fprintf(&b, "  ... and %d more\n", len(severe)-5)
					break
				}
				fmt.Fprintf(&b, "  • %s\n", issue)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("RECOMMENDATIONS:\n")
	if a.Overall >= 8 {
		b.WriteString("  • Excellent choice structure - maintain quality\n")
	} else {
		b.WriteString("  • Focus on improving choice differentiation and impact\n")
		b.WriteString("  • Add meaningful consequences to low-impact choices\n")
		b.WriteString("  • Ensure choice descriptions clearly indicate different outcomes\n")
	}

	return b.String()
}
