package pruner

import (
	"reflect"
	"strings"
	"testing"

	"github.com/questfoundry/advgraph/internal/story"
	"github.com/questfoundry/advgraph/internal/validator"
)

func choice(label story.ChoiceLabel, target string) story.Choice {
	return story.Choice{Label: label, Description: "Take the " + string(label) + " route", Target: target}
}

func step(id string, choices ...story.Choice) *story.Step {
	return &story.Step{ID: id, Narrative: "Something happens at step " + id + ".", Choices: choices}
}

func newTestAdventure(t *testing.T, steps ...*story.Step) *story.Adventure {
	t.Helper()
	adv := story.New()
	adv.GameName = "Test Adventure"
	adv.Endings[story.EndingSuccess] = "You make it out alive and victorious."
	adv.Endings[story.EndingFailure] = "Your journey ends here in defeat."
	for _, s := range steps {
		adv.Steps[s.ID] = s
	}
	return adv
}

// messyAdventure has one unreachable step, one choiceless dead end,
// and one orphaned choice, so every prune pass has work to do.
func messyAdventure(t *testing.T) *story.Adventure {
	t.Helper()
	return newTestAdventure(t,
		step("1", choice(story.LabelA, "STEP_2"), choice(story.LabelB, "STEP_9")),
		step("2"),
		step("7", choice(story.LabelA, "ENDING_SUCCESS")),
	)
}

// --- Analyze ---

func TestAnalyze(t *testing.T) {
	adv := newTestAdventure(t,
		step("1", choice(story.LabelA, "STEP_2"), choice(story.LabelB, "STEP_3"), choice(story.LabelC, "STEP_4")),
		step("2", choice(story.LabelA, "ENDING_SUCCESS")),
		step("3", choice(story.LabelA, "ENDING_FAILURE")),
		step("4"),
		step("5", choice(story.LabelA, "ENDING_SUCCESS")),
	)

	got := Analyze(adv)

	if want := []string{"4"}; !reflect.DeepEqual(got.DeadEnds, want) {
		t.Errorf("DeadEnds = %v, want %v", got.DeadEnds, want)
	}
	if want := []string{"5"}; !reflect.DeepEqual(got.UnreachableSteps, want) {
		t.Errorf("UnreachableSteps = %v, want %v", got.UnreachableSteps, want)
	}
	if len(got.OrphanedChoices) != 0 {
		t.Errorf("OrphanedChoices = %v, want none", got.OrphanedChoices)
	}
	if want := map[string]int{"ENDING_SUCCESS": 3, "ENDING_FAILURE": 2}; !reflect.DeepEqual(got.EndingDistribution, want) {
		t.Errorf("EndingDistribution = %v, want %v", got.EndingDistribution, want)
	}
	if want := map[string]int{"1": 0, "2": 1, "3": 1, "4": 1}; !reflect.DeepEqual(got.PathLengths, want) {
		t.Errorf("PathLengths = %v, want %v", got.PathLengths, want)
	}
	if want := map[string]int{"1": 3, "2": 1, "3": 1, "4": 0, "5": 1}; !reflect.DeepEqual(got.BranchingFactors, want) {
		t.Errorf("BranchingFactors = %v, want %v", got.BranchingFactors, want)
	}
	if want := []string{"1"}; !reflect.DeepEqual(got.CriticalPathSteps, want) {
		t.Errorf("CriticalPathSteps = %v, want %v", got.CriticalPathSteps, want)
	}
}

func TestAnalyzeEndingDistributionCountsReachingSteps(t *testing.T) {
	adv := newTestAdventure(t,
		step("1", choice(story.LabelA, "STEP_2"), choice(story.LabelB, "STEP_3")),
		step("2", choice(story.LabelA, "ENDING_SUCCESS")),
		step("3", choice(story.LabelA, "ENDING_SUCCESS")),
	)

	got := Analyze(adv).EndingDistribution
	want := map[string]int{"ENDING_SUCCESS": 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("EndingDistribution = %v, want %v", got, want)
	}
}

// --- Prune ---

func TestPruneRemovesUnreachableSteps(t *testing.T) {
	adv := newTestAdventure(t,
		step("1", choice(story.LabelA, "ENDING_SUCCESS")),
		step("7", choice(story.LabelA, "STEP_8")),
		step("8", choice(story.LabelA, "ENDING_FAILURE")),
	)

	result := Prune(adv)

	for _, id := range []string{"7", "8"} {
		if _, ok := result.Optimized.Steps[id]; ok {
			t.Errorf("step %s survived pruning", id)
		}
	}
	if result.Improvement.UnreachableStepsRemoved != 2 {
		t.Errorf("UnreachableStepsRemoved = %d, want 2", result.Improvement.UnreachableStepsRemoved)
	}
}

func TestPruneFixesChoicelessDeadEnds(t *testing.T) {
	adv := newTestAdventure(t,
		step("1", choice(story.LabelA, "STEP_2")),
		step("2"),
	)

	result := Prune(adv)

	got := result.Optimized.Steps["2"].Choices
	want := []story.Choice{
		{Label: story.LabelA, Description: "Continue your journey", Target: "ENDING_SUCCESS"},
		{Label: story.LabelB, Description: "Reconsider your approach", Target: "ENDING_NEUTRAL"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("fixed choices = %+v, want %+v", got, want)
	}
}

func TestPruneLeavesDeadEndsWithChoicesAlone(t *testing.T) {
	adv := newTestAdventure(t,
		step("1", choice(story.LabelA, "STEP_2")),
		step("2", choice(story.LabelA, "STEP_1")),
	)

	result := Prune(adv)

	if got := result.Optimized.Steps["2"].Choices; len(got) != 1 || got[0].Target != "STEP_1" {
		t.Errorf("cycle step rewritten: %+v", got)
	}
	if want := []string{"1", "2"}; !reflect.DeepEqual(result.After.DeadEnds, want) {
		t.Errorf("After.DeadEnds = %v, want %v", result.After.DeadEnds, want)
	}
}

func TestPruneRemovesOrphanedChoices(t *testing.T) {
	adv := newTestAdventure(t,
		step("1",
			choice(story.LabelA, "STEP_2"),
			choice(story.LabelB, "STEP_9"),
			choice(story.LabelC, "ENDING_DOOM"),
		),
		step("2", choice(story.LabelA, "STEP_9")),
	)

	result := Prune(adv)

	got := result.Optimized.Steps["1"].Choices
	if len(got) != 1 || got[0].Target != "STEP_2" {
		t.Errorf("step 1 choices = %+v, want only the STEP_2 choice", got)
	}

	emptied := result.Optimized.Steps["2"].Choices
	want := []story.Choice{{Label: story.LabelA, Description: "Continue", Target: "ENDING_NEUTRAL"}}
	if !reflect.DeepEqual(emptied, want) {
		t.Errorf("emptied step choices = %+v, want %+v", emptied, want)
	}

	if result.Improvement.OrphanedChoicesFixed != 3 {
		t.Errorf("OrphanedChoicesFixed = %d, want 3", result.Improvement.OrphanedChoicesFixed)
	}
}

func TestPruneBalancesAllFailureSteps(t *testing.T) {
	adv := newTestAdventure(t,
		step("1", choice(story.LabelA, "ENDING_FAILURE"), choice(story.LabelB, "ENDING_FAILURE")),
	)

	result := Prune(adv)

	got := result.Optimized.Steps["1"].Choices
	if got[0].Target != "ENDING_SUCCESS" {
		t.Errorf("first choice target = %q, want ENDING_SUCCESS", got[0].Target)
	}
	if got[1].Target != "ENDING_FAILURE" {
		t.Errorf("second choice target = %q, want ENDING_FAILURE", got[1].Target)
	}
}

func TestPruneSkipsBalanceWhenDistributionHealthy(t *testing.T) {
	adv := newTestAdventure(t,
		step("1",
			choice(story.LabelA, "STEP_2"),
			choice(story.LabelB, "ENDING_FAILURE"),
			choice(story.LabelC, "ENDING_FAILURE"),
		),
		step("2", choice(story.LabelA, "ENDING_SUCCESS")),
	)

	result := Prune(adv)

	if got := result.Optimized.Steps["1"].Choices[0].Target; got != "STEP_2" {
		t.Errorf("first choice retargeted to %q despite healthy distribution", got)
	}
}

func TestPruneDoesNotMutateInput(t *testing.T) {
	adv := messyAdventure(t)
	pristine := adv.Clone()

	Prune(adv)

	if !reflect.DeepEqual(adv, pristine) {
		t.Error("Prune mutated its input")
	}
}

func TestPruneImprovement(t *testing.T) {
	result := Prune(messyAdventure(t))

	want := Delta{
		DeadEndsRemoved:          2,
		UnreachableStepsRemoved:  1,
		OrphanedChoicesFixed:     1,
		AveragePathLengthBefore:  2.0 / 3.0,
		AveragePathLengthAfter:   0.5,
		CriticalPathLengthBefore: 1,
		CriticalPathLengthAfter:  2,
	}
	if result.Improvement != want {
		t.Errorf("Improvement = %+v, want %+v", result.Improvement, want)
	}
}

func TestPruneIdempotent(t *testing.T) {
	first := Prune(messyAdventure(t))

	if got := first.After; len(got.DeadEnds) != 0 || len(got.UnreachableSteps) != 0 || len(got.OrphanedChoices) != 0 {
		t.Fatalf("first prune left structural findings: %+v", got)
	}

	second := Prune(first.Optimized)
	if !reflect.DeepEqual(second.Before, second.After) {
		t.Errorf("second prune still changed the structure:\nbefore %+v\nafter  %+v", second.Before, second.After)
	}
	if second.Improvement.DeadEndsRemoved != 0 || second.Improvement.UnreachableStepsRemoved != 0 || second.Improvement.OrphanedChoicesFixed != 0 {
		t.Errorf("second prune reported improvements: %+v", second.Improvement)
	}
}

func TestPruneClearsValidatorFlowFindings(t *testing.T) {
	result := Prune(messyAdventure(t))

	vr := validator.Validate(result.Optimized)
	for _, issue := range append(vr.Errors, vr.Warnings...) {
		if issue.Code == validator.CodeInvalidChoiceTarget || issue.Code == validator.CodeUnreachableSteps {
			t.Errorf("pruned story still flagged: %s", issue)
		}
	}
}

// --- Report ---

func TestReportLayout(t *testing.T) {
	report := Report(messyAdventure(t))

	wantOrder := []string{
		"=== Branch Structure Analysis ===",
		"Total Steps: 3",
		"Reachable Steps: 2",
		"Dead Ends: 2",
		"Orphaned Choices: 1",
		"Path Length Analysis:",
		"  Average: 0.7 steps",
		"  Range: 0 - 1 steps",
		"  Critical Path: 1 steps",
		"Ending Distribution:",
		"  ENDING_SUCCESS: 1 paths (100.0%)",
		"Dead Ends Found:",
		"  • Step 1",
		"  • Step 2",
		"Unreachable Steps:",
		"  • Step 7",
		"Recommendations:",
		"  • Fix dead end steps by adding choices leading to endings",
		"  • Remove unreachable steps or add paths to reach them",
		"  • Fix orphaned choices pointing to non-existent targets",
	}

	pos := 0
	for _, want := range wantOrder {
		idx := strings.Index(report[pos:], want)
		if idx < 0 {
			t.Fatalf("report missing %q after position %d:\n%s", want, pos, report)
		}
		pos += idx + len(want)
	}
}

func TestReportCleanStructure(t *testing.T) {
	adv := newTestAdventure(t, step("1", choice(story.LabelA, "ENDING_SUCCESS")))

	report := Report(adv)
	if !strings.Contains(report, "  • Branch structure looks good!") {
		t.Errorf("clean report missing the all-clear recommendation:\n%s", report)
	}
}
