package replay

import (
	"fmt"

	"github.com/questfoundry/advgraph/internal/graph"
	"github.com/questfoundry/advgraph/internal/story"
)

// comparePathLimit bounds how many playthroughs a comparison renders.
const comparePathLimit = 5

// Comparison is one playthrough rendered as a labeled node sequence.
type Comparison struct {
	Label    string   `json:"label"`
	Sequence []string `json:"sequence"`
}

// ComparePlaythroughs renders the first few playthroughs side by side
// so their differences stand out. At most five are compared.
func ComparePlaythroughs(adv *story.Adventure) []Comparison {
	paths := graph.EnumeratePaths(adv, story.StartStepID, graph.Caps{MaxPaths: 10})
	if len(paths) > comparePathLimit {
		paths = paths[:comparePathLimit]
	}

	comparisons := make([]Comparison, 0, len(paths))
	for i, p := range paths {
		ending := story.EndingTarget(p.Ending)
		sequence := make([]string, 0, len(p.Steps)+1)
		for _, id := range p.Steps {
			sequence = append(sequence, "Step "+id)
		}
		sequence = append(sequence, "→ "+ending)

		comparisons = append(comparisons, Comparison{
			Label:    fmt.Sprintf("Path %d (to %s)", i+1, ending),
			Sequence: sequence,
		})
	}
	return comparisons
}

// Incentives lists the concrete reasons a player might replay the
// adventure. A story offering none reports that as its single entry.
func Incentives(adv *story.Adventure, caps graph.Caps) []string {
	var incentives []string

	if len(adv.Endings) > 1 {
		incentives = append(incentives, fmt.Sprintf("Multiple endings (%d) encourage replaying for different outcomes", len(adv.Endings)))
	}

	consequences, conditions := 0, 0
	for _, step := range adv.Steps {
		for _, c := range step.Choices {
			consequences += len(c.Consequences)
			conditions += len(c.Conditions)
		}
	}
	if consequences > 0 {
		incentives = append(incentives, fmt.Sprintf("Choice consequences (%d total) create different experiences", consequences))
	}
	if conditions > 0 {
		incentives = append(incentives, fmt.Sprintf("Conditional choices (%d total) unlock different paths", conditions))
	}

	if len(adv.Inventory) > 0 || len(adv.Stats) > 0 {
		incentives = append(incentives, "Character progression and inventory provide gameplay variety")
	}

	if paths := graph.EnumeratePaths(adv, story.StartStepID, caps); len(paths) > 5 {
		incentives = append(incentives, fmt.Sprintf("High path variety (%d unique paths) rewards exploration", len(paths)))
	}

	if len(incentives) == 0 {
		incentives = append(incentives, "Limited replay incentives found - consider adding multiple paths and endings")
	}
	return incentives
}
