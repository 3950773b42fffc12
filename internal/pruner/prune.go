package pruner

import (
	"github.com/questfoundry/advgraph/internal/story"
)

// Delta reports what a prune accomplished, measured as the difference
// between the analyses before and after.
type Delta struct {
	DeadEndsRemoved          int     `json:"dead_ends_removed"`
	UnreachableStepsRemoved  int     `json:"unreachable_steps_removed"`
	OrphanedChoicesFixed     int     `json:"orphaned_choices_fixed"`
	AveragePathLengthBefore  float64 `json:"average_path_length_before"`
	AveragePathLengthAfter   float64 `json:"average_path_length_after"`
	CriticalPathLengthBefore int     `json:"critical_path_length_before"`
	CriticalPathLengthAfter  int     `json:"critical_path_length_after"`
}

// Result bundles the optimized story with the analyses around it.
type Result struct {
	Optimized   *story.Adventure `json:"optimized"`
	Before      Analysis         `json:"before"`
	After       Analysis         `json:"after"`
	Improvement Delta            `json:"improvement"`
}

// Prune runs the repair pipeline in a fixed order: drop unreachable
// steps, give choiceless dead ends a way out, remove orphaned choices,
// then rebalance the ending distribution when the success share falls
// outside [0.20, 0.70]. Every pass consults the one analysis taken
// before any change. Dead ends that have choices but no route to an
// ending are reported by Analyze and left alone; so are unusually
// short or long routes, since fixing either means rewriting narrative.
func Prune(adv *story.Adventure) Result {
	before := Analyze(adv)

	optimized := adv.Clone()
	removeUnreachableSteps(optimized, before)
	fixDeadEnds(optimized, before)
	removeOrphanedChoices(optimized, before)
	balanceEndingDistribution(optimized, before)

	after := Analyze(optimized)
	return Result{
		Optimized:   optimized,
		Before:      before,
		After:       after,
		Improvement: improvement(before, after),
	}
}

// ─── Prune Passes ────────────────────────────────────────────────────

func removeUnreachableSteps(adv *story.Adventure, a Analysis) {
	for _, id := range a.UnreachableSteps {
		delete(adv.Steps, id)
	}
}

// fixDeadEnds gives steps with no choices at all a way out. Dead ends
// that still have choices keep them.
func fixDeadEnds(adv *story.Adventure, a Analysis) {
	for _, id := range a.DeadEnds {
		step, ok := adv.Steps[id]
		if !ok || len(step.Choices) > 0 {
			continue
		}
		step.Choices = []story.Choice{
			{
				Label:       story.LabelA,
				Description: "Continue your journey",
				Target:      story.EndingTarget(story.EndingSuccess),
			},
			{
				Label:       story.LabelB,
				Description: "Reconsider your approach",
				Target:      story.EndingTarget(story.EndingNeutral),
			},
		}
	}
}

// removeOrphanedChoices drops every choice whose target resolves to
// nothing. A step emptied by the removal gets a single neutral exit so
// it does not turn into a new dead end.
func removeOrphanedChoices(adv *story.Adventure, a Analysis) {
	byStep := make(map[string][]int)
	for _, ref := range a.OrphanedChoices {
		byStep[ref.StepID] = append(byStep[ref.StepID], ref.Index)
	}

	for id, indices := range byStep {
		step, ok := adv.Steps[id]
		if !ok {
			continue
		}

		// Indices arrive ascending; removing from the back keeps the
		// remaining ones valid.
		choices := step.Choices
		for k := len(indices) - 1; k >= 0; k-- {
			i := indices[k]
			if i >= 0 && i < len(choices) {
				choices = append(choices[:i], choices[i+1:]...)
			}
		}

		if len(choices) == 0 {
			choices = []story.Choice{{
				Label:       story.LabelA,
				Description: "Continue",
				Target:      story.EndingTarget(story.EndingNeutral),
			}}
		}
		step.Choices = choices
	}
}

// balanceEndingDistribution nudges a story where success is nearly
// impossible or nearly guaranteed: in steps where more than one choice
// targets an ending and every such target is the failure ending, the
// step's first choice is retargeted to the success ending.
func balanceEndingDistribution(adv *story.Adventure, a Analysis) {
	if len(a.EndingDistribution) == 0 {
		return
	}

	success := story.EndingTarget(story.EndingSuccess)
	failure := story.EndingTarget(story.EndingFailure)

	total := 0
	for _, n := range a.EndingDistribution {
		total += n
	}
	successShare := float64(a.EndingDistribution[success]) / float64(total)
	if successShare >= 0.2 && successShare <= 0.7 {
		return
	}

	for _, id := range adv.SortedStepIDs() {
		step := adv.Steps[id]
		endingTargets := 0
		allFailure := true
		for _, c := range step.Choices {
			if !story.IsEndingTarget(c.Target) {
				continue
			}
			endingTargets++
			if c.Target != failure {
				allFailure = false
			}
		}
		if endingTargets > 1 && allFailure {
			step.Choices[0].Target = success
		}
	}
}

func improvement(before, after Analysis) Delta {
	return Delta{
		DeadEndsRemoved:          len(before.DeadEnds) - len(after.DeadEnds),
		UnreachableStepsRemoved:  len(before.UnreachableSteps) - len(after.UnreachableSteps),
		OrphanedChoicesFixed:     len(before.OrphanedChoices) - len(after.OrphanedChoices),
		AveragePathLengthBefore:  meanLength(before.PathLengths),
		AveragePathLengthAfter:   meanLength(after.PathLengths),
		CriticalPathLengthBefore: len(before.CriticalPathSteps),
		CriticalPathLengthAfter:  len(after.CriticalPathSteps),
	}
}

func meanLength(lengths map[string]int) float64 {
	if len(lengths) == 0 {
		return 0
	}
	total := 0
	for _, n := range lengths {
		total += n
	}
	return float64(total) / float64(len(lengths))
}
