package endings

import (
	"fmt"

	"github.com/questfoundry/advgraph/internal/graph"
	"github.com/questfoundry/advgraph/internal/story"
)

// Improvement reports score movement across an optimization run.
type Improvement struct {
	BalanceScoreImprovement         float64 `json:"balance_score_improvement"`
	AccessibilityScoreImprovement   float64 `json:"accessibility_score_improvement"`
	DifferentiationScoreImprovement float64 `json:"differentiation_score_improvement"`
	OverallScoreImprovement         float64 `json:"overall_score_improvement"`
	OriginalOverallScore            float64 `json:"original_overall_score"`
	FinalOverallScore               float64 `json:"final_overall_score"`
}

// Result bundles the optimized story with the analyses around it and
// the suggestions that drove the changes.
type Result struct {
	Optimized   *story.Adventure `json:"optimized"`
	Before      Analysis         `json:"before"`
	After       Analysis         `json:"after"`
	Suggestions []Suggestion     `json:"suggestions"`
	Improvement Improvement      `json:"improvement"`
}

// Optimize analyzes the endings, derives suggestions, and applies the
// mechanical ones to a copy: retargeting failure choices, adding
// neutral routes, appending direct access choices, and expanding brief
// ending texts. Differentiation and per-ending quality suggestions are
// advisory only. The input is never modified.
func Optimize(adv *story.Adventure, caps graph.Caps) Result {
	before := Analyze(adv, caps)
	suggestions := Suggest(adv, before)

	optimized := adv.Clone()
	for _, s := range suggestions {
		apply(optimized, s)
	}

	after := Analyze(optimized, caps)
	return Result{
		Optimized:   optimized,
		Before:      before,
		After:       after,
		Suggestions: suggestions,
		Improvement: Improvement{
			BalanceScoreImprovement:         after.BalanceScore - before.BalanceScore,
			AccessibilityScoreImprovement:   after.AccessibilityScore - before.AccessibilityScore,
			DifferentiationScoreImprovement: after.DifferentiationScore - before.DifferentiationScore,
			OverallScoreImprovement:         after.OverallScore - before.OverallScore,
			OriginalOverallScore:            before.OverallScore,
			FinalOverallScore:               after.OverallScore,
		},
	}
}

func apply(adv *story.Adventure, s Suggestion) {
	switch s.Type {
	case SuggestIncreaseSuccessPaths:
		increaseSuccessPaths(adv)
	case SuggestReduceFailurePaths:
		reduceFailurePaths(adv)
	case SuggestAddNeutralPaths:
		addNeutralPaths(adv)
	case SuggestImproveAccessibility:
		improveAccessibility(adv, s.Location)
	case SuggestExpandEndingContent:
		expandEndingContent(adv, s.Location)
	}
}

// ─── Appliers ────────────────────────────────────────────────────────

// increaseSuccessPaths retargets one failure choice to success, in the
// first step carrying more than one failure choice.
func increaseSuccessPaths(adv *story.Adventure) {
	failure := story.EndingTarget(story.EndingFailure)
	for _, id := range adv.SortedStepIDs() {
		step := adv.Steps[id]
		var failures []int
		for i, c := range step.Choices {
			if c.Target == failure {
				failures = append(failures, i)
			}
		}
		if len(failures) > 1 {
			step.Choices[failures[0]].Target = story.EndingTarget(story.EndingSuccess)
			return
		}
	}
}

// reduceFailurePaths retargets the first failure choice to neutral, or
// to success when no neutral ending is declared.
func reduceFailurePaths(adv *story.Adventure) {
	failure := story.EndingTarget(story.EndingFailure)
	target := story.EndingTarget(story.EndingSuccess)
	if _, ok := adv.Endings[story.EndingNeutral]; ok {
		target = story.EndingTarget(story.EndingNeutral)
	}

	for _, id := range adv.SortedStepIDs() {
		step := adv.Steps[id]
		for i, c := range step.Choices {
			if c.Target == failure {
				step.Choices[i].Target = target
				return
			}
		}
	}
}

// addNeutralPaths declares the neutral ending if missing and appends a
// neutral choice to the first step with room for one.
func addNeutralPaths(adv *story.Adventure) {
	if _, ok := adv.Endings[story.EndingNeutral]; !ok {
		adv.Endings[story.EndingNeutral] = "Your journey concludes with mixed results. You have learned valuable lessons, though the outcome remains uncertain."
	}

	for _, id := range adv.SortedStepIDs() {
		step := adv.Steps[id]
		if len(step.Choices) >= story.MaxChoicesPerStep {
			continue
		}
		label, ok := nextFreeLabel(step)
		if !ok {
			continue
		}
		step.Choices = append(step.Choices, story.Choice{
			Label:       label,
			Description: "Take a cautious middle path",
			Target:      story.EndingTarget(story.EndingNeutral),
		})
		return
	}
}

// improveAccessibility appends a direct choice to the ending named by
// location, in the first step that has room and no such choice yet.
func improveAccessibility(adv *story.Adventure, location string) {
	kind, ok := story.TargetEndingKind(location)
	if !ok {
		return
	}
	target := story.EndingTarget(kind)

	for _, id := range adv.SortedStepIDs() {
		step := adv.Steps[id]
		if len(step.Choices) >= story.MaxChoicesPerStep || hasTarget(step, target) {
			continue
		}
		if label, free := nextFreeLabel(step); free {
			step.Choices = append(step.Choices, story.Choice{
				Label:       label,
				Description: fmt.Sprintf("Pursue the path to %s", kind),
				Target:      target,
			})
		}
		return
	}
}

// expandEndingContent appends a kind-appropriate closing passage to
// the ending named by location.
func expandEndingContent(adv *story.Adventure, location string) {
	kind, ok := story.TargetEndingKind(location)
	if !ok {
		return
	}
	text, declared := adv.Endings[kind]
	if !declared {
		return
	}

	var extra string
	switch kind {
	case story.EndingSuccess:
		extra = " Your courage and determination have paid off, and you can be proud of what you've accomplished. The skills you've gained and the experiences you've had will serve you well in future adventures."
	case story.EndingFailure:
		extra = " Though this particular path didn't lead to success, every setback is an opportunity to learn and grow. Your journey has taught you valuable lessons that will help you in future endeavors."
	case story.EndingNeutral:
		extra = " Sometimes the most important outcomes aren't about winning or losing, but about the journey itself and what you discover along the way. Your experience has been meaningful, regardless of the final result."
	default:
		extra = " This outcome reflects the choices you made throughout your adventure, each decision shaping your path and ultimate destination."
	}
	adv.Endings[kind] = text + extra
}

func nextFreeLabel(step *story.Step) (story.ChoiceLabel, bool) {
	used := make(map[story.ChoiceLabel]bool, len(step.Choices))
	for _, c := range step.Choices {
		used[c.Label] = true
	}
	for _, label := range []story.ChoiceLabel{story.LabelA, story.LabelB, story.LabelC, story.LabelD} {
		if !used[label] {
			return label, true
		}
	}
	return "", false
}

func hasTarget(step *story.Step, target string) bool {
	for _, c := range step.Choices {
		if c.Target == target {
			return true
		}
	}
	return false
}
