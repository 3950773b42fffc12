package pipeline

import (
	"fmt"
	"strings"

	"github.com/questfoundry/advgraph/internal/choices"
	"github.com/questfoundry/advgraph/internal/graph"
	"github.com/questfoundry/advgraph/internal/replay"
	"github.com/questfoundry/advgraph/internal/story"
	"github.com/questfoundry/advgraph/internal/validator"
)

// QualityReport renders the cross-tool quality summary: validation
// verdict, choice and replayability scores, and the structural
// statistics of the adventure as given.
func QualityReport(adv *story.Adventure, caps graph.Caps) string {
	vr := validator.Validate(adv)
	ca := choices.Analyze(adv)
	ra := replay.Analyze(adv, caps)

	var b strings.Builder
	b.WriteString("=== Adventure Quality Report ===\n\n")

	b.WriteString("OVERALL QUALITY SCORES:\n")
	if vr.Valid {
		b.WriteString("  Format Validation: PASSED\n")
	} else {
		fmt.Fprintf(&b, "  Format Validation: FAILED (%d errors)\n", len(vr.Errors))
	}
	fmt.Fprintf(&b, "  Choice Quality: %.1f/10\n", ca.Overall)
	fmt.Fprintf(&b, "  Replayability: %.1f/10\n\n", ra.Overall)

	totalChoices := 0
	for _, step := range adv.Steps {
		totalChoices += len(step.Choices)
	}
	b.WriteString("ADVENTURE STATISTICS:\n")
	fmt.Fprintf(&b, "  Total Steps: %d\n", len(adv.Steps))
	fmt.Fprintf(&b, "  Endings: %d\n", len(adv.Endings))
	fmt.Fprintf(&b, "  Total Choices: %d\n", totalChoices)
	fmt.Fprintf(&b, "  Inventory Items: %d\n", len(adv.Inventory))
	fmt.Fprintf(&b, "  Character Stats: %d\n", len(adv.Stats))

	return b.String()
}
