package validator

import (
	"strings"
	"testing"

	"github.com/questfoundry/advgraph/internal/story"
)

// cleanAdventure builds an adventure that passes every check with no
// warnings.
func cleanAdventure(t *testing.T) *story.Adventure {
	t.Helper()
	adv := story.New()
	adv.GameName = "The Lighthouse Keeper"
	adv.MainMenu = []string{"1. New Game", "2. Load Game", "3. Exit"}
	adv.Steps["1"] = &story.Step{
		ID:        "1",
		Narrative: "The lamp has gone out and the storm is rising fast.",
		Choices: []story.Choice{
			{Label: story.LabelA, Description: "Climb the tower stairs", Target: "STEP_2"},
			{Label: story.LabelB, Description: "Wait out the storm below", Target: "ENDING_NEUTRAL"},
		},
	}
	adv.Steps["2"] = &story.Step{
		ID:        "2",
		Narrative: "At the top, the great lens waits dark and cold.",
		Choices: []story.Choice{
			{Label: story.LabelA, Description: "Light the lamp again", Target: "ENDING_SUCCESS"},
		},
	}
	adv.Endings[story.EndingSuccess] = "The beam sweeps the waves and the ships come safely home."
	adv.Endings[story.EndingFailure] = "The rocks claim another hull before the dawn arrives."
	adv.Endings[story.EndingNeutral] = "The storm passes on its own, and so does the chance to matter."
	return adv
}

func codes(issues []Issue) map[string]int {
	m := make(map[string]int)
	for _, issue := range issues {
		m[issue.Code]++
	}
	return m
}

// --- Validate ---

func TestValidateCleanAdventure(t *testing.T) {
	result := Validate(cleanAdventure(t))

	if !result.Valid {
		t.Errorf("Valid = false, errors: %v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("warnings on clean adventure: %v", result.Warnings)
	}
	if !result.StrictValid() {
		t.Error("StrictValid = false on a clean adventure")
	}
}

func TestValidateMinimalAdventure(t *testing.T) {
	adv := story.New()
	adv.GameName = "Tiny Tale"
	adv.MainMenu = []string{"1. New Game"}
	adv.Steps["1"] = &story.Step{
		ID:        "1",
		Narrative: "One room, one door, one decision to make.",
		Choices: []story.Choice{
			{Label: story.LabelA, Description: "Open the door", Target: "ENDING_SUCCESS"},
		},
	}
	adv.Endings[story.EndingSuccess] = "You win."

	result := Validate(adv)

	if !result.Valid {
		t.Errorf("Valid = false, errors: %v", result.Errors)
	}
	if result.StrictValid() {
		t.Error("StrictValid = true, want warnings for missing standard endings")
	}
	got := codes(result.Warnings)
	if got[CodeMissingStandardEnding] != 1 {
		t.Errorf("MISSING_STANDARD_ENDING count = %d, want 1", got[CodeMissingStandardEnding])
	}
	if got[CodeShortEnding] != 1 {
		t.Errorf("SHORT_ENDING count = %d, want 1 for %q", got[CodeShortEnding], adv.Endings["success"])
	}
}

func TestValidateEmptyStepYieldsTwoErrors(t *testing.T) {
	adv := cleanAdventure(t)
	adv.Steps["2"] = &story.Step{ID: "2"}

	result := Validate(adv)

	if len(result.Errors) != 2 {
		t.Fatalf("got %d errors %v, want exactly 2", len(result.Errors), result.Errors)
	}
	got := codes(result.Errors)
	if got[CodeMissingNarrative] != 1 || got[CodeMissingChoices] != 1 {
		t.Errorf("error codes = %v, want one MISSING_NARRATIVE and one MISSING_CHOICES", got)
	}
	for _, issue := range result.Errors {
		if issue.Location != "STEP_2" {
			t.Errorf("issue location = %q, want STEP_2", issue.Location)
		}
	}
}

func TestValidateEmptyAdventure(t *testing.T) {
	result := Validate(story.New())

	errs := codes(result.Errors)
	if errs[CodeMissingSection] != 3 {
		t.Errorf("MISSING_SECTION errors = %d, want 3 (game name, menu, steps)", errs[CodeMissingSection])
	}
	if errs[CodeMissingStartStep] != 1 {
		t.Errorf("MISSING_START_STEP = %d, want 1", errs[CodeMissingStartStep])
	}
	warns := codes(result.Warnings)
	if warns[CodeMissingSection] != 1 {
		t.Errorf("MISSING_SECTION warnings = %d, want 1 (endings)", warns[CodeMissingSection])
	}
	if warns[CodeMissingStandardEnding] != 1 {
		t.Errorf("MISSING_STANDARD_ENDING = %d, want 1", warns[CodeMissingStandardEnding])
	}
}

func TestValidateChoiceProblems(t *testing.T) {
	adv := cleanAdventure(t)
	adv.Steps["2"].Choices = []story.Choice{
		{Label: "E", Description: "Labelled outside the alphabet", Target: "ENDING_SUCCESS"},
		{Label: story.LabelB, Description: "", Target: "ENDING_SUCCESS"},
		{Label: story.LabelB, Description: "Hop", Target: "STEP_99"},
		{Label: "", Description: "A choice with no label at all", Target: ""},
	}

	result := Validate(adv)

	errs := codes(result.Errors)
	for code, want := range map[string]int{
		CodeInvalidChoiceLabel:   1,
		CodeDuplicateChoiceLabel: 1,
		CodeMissingChoiceDesc:    1,
		CodeInvalidChoiceTarget:  1,
		CodeMissingChoiceLabel:   1,
		CodeMissingChoiceTarget:  1,
	} {
		if errs[code] != want {
			t.Errorf("%s = %d, want %d (all: %v)", code, errs[code], want, errs)
		}
	}
	warns := codes(result.Warnings)
	if warns[CodeShortChoiceDesc] != 1 {
		t.Errorf("SHORT_CHOICE_DESCRIPTION = %d, want 1", warns[CodeShortChoiceDesc])
	}
}

func TestValidateConditionAndConsequencePatterns(t *testing.T) {
	adv := cleanAdventure(t)
	adv.Steps["2"].Choices[0].Conditions = []string{
		"inventory.lamp_oil > 0",
		"the moon is full",
		"  ",
	}
	adv.Steps["2"].Choices[0].Consequences = []string{
		"SET lamp = lit",
		"the keeper smiles",
		"",
	}

	result := Validate(adv)

	warns := codes(result.Warnings)
	if warns[CodeUnusualCondition] != 1 {
		t.Errorf("UNUSUAL_CONDITION = %d, want 1", warns[CodeUnusualCondition])
	}
	if warns[CodeEmptyCondition] != 1 {
		t.Errorf("EMPTY_CONDITION = %d, want 1", warns[CodeEmptyCondition])
	}
	if warns[CodeUnusualConsequence] != 1 {
		t.Errorf("UNUSUAL_CONSEQUENCE = %d, want 1", warns[CodeUnusualConsequence])
	}
	if warns[CodeEmptyConsequence] != 1 {
		t.Errorf("EMPTY_CONSEQUENCE = %d, want 1", warns[CodeEmptyConsequence])
	}
	if !result.Valid {
		t.Errorf("condition/consequence findings must stay warnings, got errors: %v", result.Errors)
	}
}

func TestValidateStepNumbering(t *testing.T) {
	adv := cleanAdventure(t)
	delete(adv.Steps, "1")
	adv.Steps["5"] = &story.Step{
		ID:        "5",
		Narrative: "A numbered room far from the beginning of things.",
		Choices: []story.Choice{
			{Label: story.LabelA, Description: "Leave through the gap", Target: "ENDING_SUCCESS"},
		},
	}
	adv.Steps["bad"] = &story.Step{
		ID:        "bad",
		Narrative: "This room has no number on its door at all.",
		Choices: []story.Choice{
			{Label: story.LabelA, Description: "Back away slowly", Target: "ENDING_FAILURE"},
		},
	}

	result := Validate(adv)

	errs := codes(result.Errors)
	if errs[CodeInvalidStepID] != 1 {
		t.Errorf("INVALID_STEP_ID = %d, want 1", errs[CodeInvalidStepID])
	}
	if errs[CodeMissingStartStep] != 1 {
		t.Errorf("MISSING_START_STEP = %d, want 1", errs[CodeMissingStartStep])
	}
	warns := codes(result.Warnings)
	if warns[CodeNumberingWarning] != 2 {
		t.Errorf("NUMBERING_WARNING = %d, want 2 (start at 2, gap to 5)", warns[CodeNumberingWarning])
	}
}

func TestValidateKeyValueSections(t *testing.T) {
	adv := cleanAdventure(t)
	adv.Inventory["torch"] = "lit"
	adv.Inventory["bad key!"] = "value"
	adv.Stats[""] = "10"
	adv.Variables["flag"] = ""
	adv.Variables["nested"] = "{a: 1}"

	result := Validate(adv)

	errs := codes(result.Errors)
	if errs[CodeInvalidKey] != 1 {
		t.Errorf("INVALID_KEY = %d, want 1", errs[CodeInvalidKey])
	}
	warns := codes(result.Warnings)
	if warns[CodeKeyFormatWarning] != 1 {
		t.Errorf("KEY_FORMAT_WARNING = %d, want 1", warns[CodeKeyFormatWarning])
	}
	if warns[CodeNullValue] != 1 {
		t.Errorf("NULL_VALUE = %d, want 1", warns[CodeNullValue])
	}
	if warns[CodeComplexValue] != 1 {
		t.Errorf("COMPLEX_VALUE = %d, want 1", warns[CodeComplexValue])
	}
}

func TestValidateUnreachableSteps(t *testing.T) {
	adv := cleanAdventure(t)
	adv.Steps["3"] = &story.Step{
		ID:        "3",
		Narrative: "A sealed chamber nobody has ever walked into.",
		Choices: []story.Choice{
			{Label: story.LabelA, Description: "Wait in the dark", Target: "ENDING_NEUTRAL"},
		},
	}

	result := Validate(adv)

	if !result.Valid {
		t.Errorf("unreachable steps must stay a warning, got errors: %v", result.Errors)
	}
	var found bool
	for _, w := range result.Warnings {
		if w.Code == CodeUnreachableSteps {
			found = true
			if !strings.Contains(w.Message, "3") {
				t.Errorf("message %q does not list step 3", w.Message)
			}
			if w.Location != "FLOW_ANALYSIS" {
				t.Errorf("location = %q, want FLOW_ANALYSIS", w.Location)
			}
		}
	}
	if !found {
		t.Error("UNREACHABLE_STEPS warning not raised")
	}
}

func TestValidateEndings(t *testing.T) {
	adv := cleanAdventure(t)
	adv.Endings["secret"] = ""
	adv.Endings["hasty"] = "Too short to land."

	result := Validate(adv)

	errs := codes(result.Errors)
	if errs[CodeEmptyEnding] != 1 {
		t.Errorf("EMPTY_ENDING = %d, want 1", errs[CodeEmptyEnding])
	}
	warns := codes(result.Warnings)
	if warns[CodeShortEnding] != 1 {
		t.Errorf("SHORT_ENDING = %d, want 1", warns[CodeShortEnding])
	}
}

func TestValidateDeclaredCustomEndingTarget(t *testing.T) {
	adv := cleanAdventure(t)
	adv.Endings["secret"] = "A door behind the bookshelf swings open at your touch."
	adv.Steps["2"].Choices = append(adv.Steps["2"].Choices, story.Choice{
		Label:       story.LabelB,
		Description: "Search for the hidden door",
		Target:      "ENDING_SECRET",
	})

	result := Validate(adv)

	if got := codes(result.Errors)[CodeInvalidChoiceTarget]; got != 0 {
		t.Errorf("INVALID_CHOICE_TARGET = %d for a declared custom ending, want 0", got)
	}
}

func TestIssueString(t *testing.T) {
	issue := Issue{
		Code:     CodeMissingNarrative,
		Message:  "Step has empty or missing narrative",
		Location: "STEP_3",
		Severity: SeverityError,
	}
	want := "[ERROR] MISSING_NARRATIVE: Step has empty or missing narrative at STEP_3"
	if got := issue.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	bare := Issue{Code: CodeMissingSection, Message: "m", Severity: SeverityWarning}
	if got := bare.String(); got != "[WARNING] MISSING_SECTION: m" {
		t.Errorf("String() without location = %q", got)
	}
}

// --- FixCommonIssues ---

func TestFixCommonIssues(t *testing.T) {
	adv := story.New()
	adv.Steps["1"] = &story.Step{
		ID:        "1",
		Narrative: "A fork in the road, and no signpost to read.",
		Choices: []story.Choice{
			{Label: story.LabelA, Description: "", Target: "ENDING_SUCCESS"},
		},
	}

	fixed, applied := FixCommonIssues(adv)

	if fixed.GameName != "Generated Adventure" {
		t.Errorf("GameName = %q", fixed.GameName)
	}
	if len(fixed.MainMenu) != 3 {
		t.Errorf("MainMenu = %v, want 3 default entries", fixed.MainMenu)
	}
	if fixed.Endings[story.EndingSuccess] == "" || fixed.Endings[story.EndingFailure] == "" {
		t.Errorf("Endings = %v, want success and failure defaults", fixed.Endings)
	}
	if got := fixed.Steps["1"].Choices[0].Description; got != "Continue with option A" {
		t.Errorf("filled description = %q", got)
	}
	if len(applied) != 5 {
		t.Errorf("applied = %v, want 5 fixes", applied)
	}

	// The original stays untouched.
	if adv.GameName != "" || adv.Steps["1"].Choices[0].Description != "" {
		t.Error("FixCommonIssues mutated its input")
	}

	// A second pass has nothing left to do.
	_, again := FixCommonIssues(fixed)
	if len(again) != 0 {
		t.Errorf("second pass applied %v, want none", again)
	}
}

func TestFixedAdventureValidates(t *testing.T) {
	adv := story.New()
	adv.Steps["1"] = &story.Step{
		ID:        "1",
		Narrative: "The road ahead is open and the morning is young.",
		Choices: []story.Choice{
			{Label: story.LabelA, Description: "", Target: "ENDING_SUCCESS"},
		},
	}

	fixed, _ := FixCommonIssues(adv)
	result := Validate(fixed)

	if !result.Valid {
		t.Errorf("fixed adventure still invalid: %v", result.Errors)
	}
}

// --- Report ---

func TestReport(t *testing.T) {
	report := Report(cleanAdventure(t))

	for _, want := range []string{
		"=== ADV Validation Report ===",
		"VALIDATION PASSED",
		"Summary: 0 errors, 0 warnings",
		"RECOMMENDATIONS:",
		"File should load successfully in the game engine",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}

func TestReportFailed(t *testing.T) {
	report := Report(story.New())

	for _, want := range []string{
		"VALIDATION FAILED",
		"ERRORS:",
		"WARNINGS:",
		"Fix all errors before using the .adv file",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}
