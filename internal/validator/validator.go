// Package validator checks an adventure against the structural rules
// of the .adv format: required sections, step numbering, choice
// shapes, resolvable targets, ending coverage, key/value hygiene, and
// flow reachability.
//
// Validation is total and side-effect free. Every finding is an Issue
// with a category code, a human message, and a location; errors block
// validity, warnings never do. Strictness is a caller concern: use
// Result.StrictValid where warnings should also gate.
package validator

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/questfoundry/advgraph/internal/graph"
	"github.com/questfoundry/advgraph/internal/story"
)

// Severity grades an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue category codes.
const (
	CodeMissingSection        = "MISSING_SECTION"
	CodeInvalidStepID         = "INVALID_STEP_ID"
	CodeNumberingWarning      = "NUMBERING_WARNING"
	CodeMissingNarrative      = "MISSING_NARRATIVE"
	CodeShortNarrative        = "SHORT_NARRATIVE"
	CodeMissingChoices        = "MISSING_CHOICES"
	CodeTooManyChoices        = "TOO_MANY_CHOICES"
	CodeMissingChoiceLabel    = "MISSING_CHOICE_LABEL"
	CodeInvalidChoiceLabel    = "INVALID_CHOICE_LABEL"
	CodeDuplicateChoiceLabel  = "DUPLICATE_CHOICE_LABEL"
	CodeMissingChoiceDesc     = "MISSING_CHOICE_DESCRIPTION"
	CodeShortChoiceDesc       = "SHORT_CHOICE_DESCRIPTION"
	CodeMissingChoiceTarget   = "MISSING_CHOICE_TARGET"
	CodeInvalidChoiceTarget   = "INVALID_CHOICE_TARGET"
	CodeEmptyCondition        = "EMPTY_CONDITION"
	CodeUnusualCondition      = "UNUSUAL_CONDITION"
	CodeEmptyConsequence      = "EMPTY_CONSEQUENCE"
	CodeUnusualConsequence    = "UNUSUAL_CONSEQUENCE"
	CodeMissingStandardEnding = "MISSING_STANDARD_ENDING"
	CodeEmptyEnding           = "EMPTY_ENDING"
	CodeShortEnding           = "SHORT_ENDING"
	CodeInvalidKey            = "INVALID_KEY"
	CodeKeyFormatWarning      = "KEY_FORMAT_WARNING"
	CodeNullValue             = "NULL_VALUE"
	CodeComplexValue          = "COMPLEX_VALUE"
	CodeUnreachableSteps      = "UNREACHABLE_STEPS"
	CodeMissingStartStep      = "MISSING_START_STEP"
)

// Length thresholds below which content draws a warning.
const (
	minNarrativeLen   = 10
	minDescriptionLen = 5
	minEndingLen      = 20
)

// Issue is a single validation finding.
type Issue struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Location string   `json:"location,omitempty"`
	Severity Severity `json:"severity"`
}

// String renders the issue as "[ERROR] CODE: message at LOCATION".
func (i Issue) String() string {
	loc := ""
	if i.Location != "" {
		loc = " at " + i.Location
	}
	return fmt.Sprintf("[%s] %s: %s%s", strings.ToUpper(string(i.Severity)), i.Code, i.Message, loc)
}

// Result is the outcome of a validation run. Valid holds exactly when
// there are no errors; warnings alone never invalidate.
type Result struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
}

// StrictValid additionally requires a clean warning list. Callers that
// expose a strict mode promote warnings here, at their boundary, never
// inside Validate.
func (r Result) StrictValid() bool {
	return r.Valid && len(r.Warnings) == 0
}

// identifierKey matches the key shape the game engine handles without
// surprises.
var identifierKey = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// conditionStarts are the prefixes well-formed conditions open with,
// matched case-insensitively.
var conditionStarts = []string{"if ", "inventory.", "stats.", "variables.", "health", "reputation"}

// consequenceStarts are the action keywords well-formed consequences
// open with, matched case-insensitively.
var consequenceStarts = []string{"SET ", "USE ", "ADD ", "REMOVE ", "INCREASE ", "DECREASE "}

// Validate runs every structural check over the adventure and collects
// the findings. The adventure is read-only; passing nil is a caller
// bug and panics.
func Validate(adv *story.Adventure) Result {
	c := &collector{}

	c.checkRequiredSections(adv)
	c.checkStepNumbering(adv)
	c.checkSteps(adv)
	c.checkChoices(adv)
	c.checkEndings(adv)
	c.checkKeyValueSections(adv)
	c.checkStoryFlow(adv)

	return Result{
		Valid:    len(c.errors) == 0,
		Errors:   c.errors,
		Warnings: c.warnings,
	}
}

// ─── Private Helpers ─────────────────────────────────────────────────

type collector struct {
	errors   []Issue
	warnings []Issue
}

func (c *collector) errorf(code, location, format string, args ...interface{}) {
	c.errors = append(c.errors, Issue{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Location: location,
		Severity: SeverityError,
	})
}

func (c *collector) warnf(code, location, format string, args ...interface{}) {
	c.warnings = append(c.warnings, Issue{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Location: location,
		Severity: SeverityWarning,
	})
}

func (c *collector) checkRequiredSections(adv *story.Adventure) {
	if strings.TrimSpace(adv.GameName) == "" {
		c.errorf(CodeMissingSection, "GAME_NAME", "Missing or empty [GAME_NAME] section")
	}
	if len(adv.MainMenu) == 0 {
		c.errorf(CodeMissingSection, "MAIN_MENU", "Missing or empty [MAIN_MENU] section")
	}
	if len(adv.Steps) == 0 {
		c.errorf(CodeMissingSection, "STEPS", "No [STEP_X] sections found - at least one step is required")
	}
	if len(adv.Endings) == 0 {
		c.warnf(CodeMissingSection, "ENDINGS", "No endings defined - consider adding at least ENDING_SUCCESS and ENDING_FAILURE")
	}
}

func (c *collector) checkStepNumbering(adv *story.Adventure) {
	var numbers []int
	for _, id := range adv.SortedStepIDs() {
		n, err := strconv.Atoi(id)
		if err != nil {
			c.errorf(CodeInvalidStepID, story.StepTarget(id), "Step ID '%s' is not a valid number", id)
			continue
		}
		numbers = append(numbers, n)
	}
	if len(numbers) == 0 {
		return
	}

	sort.Ints(numbers)
	if numbers[0] != 1 {
		c.warnf(CodeNumberingWarning, "STEP_NUMBERING", "Steps should start from 1, but start from %d", numbers[0])
	}
	for i := 1; i < len(numbers); i++ {
		if numbers[i] != numbers[i-1]+1 {
			c.warnf(CodeNumberingWarning, "STEP_NUMBERING", "Non-sequential step numbering: gap between %d and %d", numbers[i-1], numbers[i])
		}
	}
}

func (c *collector) checkSteps(adv *story.Adventure) {
	for _, id := range adv.SortedStepIDs() {
		step := adv.Steps[id]
		location := story.StepTarget(id)

		narrative := strings.TrimSpace(step.Narrative)
		if narrative == "" {
			c.errorf(CodeMissingNarrative, location, "Step has empty or missing narrative")
		} else if utf8.RuneCountInString(narrative) < minNarrativeLen {
			c.warnf(CodeShortNarrative, location, "Step narrative is very short (%d chars)", utf8.RuneCountInString(narrative))
		}

		if len(step.Choices) == 0 {
			c.errorf(CodeMissingChoices, location, "Step has no choices defined")
		} else if len(step.Choices) > story.MaxChoicesPerStep {
			c.warnf(CodeTooManyChoices, location, "Step has %d choices (more than typical A-D limit)", len(step.Choices))
		}
	}
}

func (c *collector) checkChoices(adv *story.Adventure) {
	validTargets := collectValidTargets(adv)

	for _, id := range adv.SortedStepIDs() {
		step := adv.Steps[id]
		stepLocation := story.StepTarget(id)
		labelsUsed := make(map[story.ChoiceLabel]bool)

		for i, choice := range step.Choices {
			location := fmt.Sprintf("%s.CHOICE_%d", stepLocation, i+1)

			if choice.Label == "" {
				c.errorf(CodeMissingChoiceLabel, location, "Choice has missing label")
			} else {
				if err := story.ValidateLabel(choice.Label); err != nil {
					c.errorf(CodeInvalidChoiceLabel, location, "Choice label '%s' is not valid (must be A, B, C, or D)", choice.Label)
				}
				if labelsUsed[choice.Label] {
					c.errorf(CodeDuplicateChoiceLabel, location, "Duplicate choice label '%s' in step", choice.Label)
				}
				labelsUsed[choice.Label] = true
			}

			description := strings.TrimSpace(choice.Description)
			if description == "" {
				c.errorf(CodeMissingChoiceDesc, location, "Choice has empty or missing description")
			} else if utf8.RuneCountInString(description) < minDescriptionLen {
				c.warnf(CodeShortChoiceDesc, location, "Choice description is very short (%d chars)", utf8.RuneCountInString(description))
			}

			if choice.Target == "" {
				c.errorf(CodeMissingChoiceTarget, location, "Choice has missing target")
			} else if !validTargets[choice.Target] {
				c.errorf(CodeInvalidChoiceTarget, location, "Choice target '%s' is not valid (available: %s)", choice.Target, joinSorted(validTargets))
			}

			c.checkConditions(choice.Conditions, location)
			c.checkConsequences(choice.Consequences, location)
		}
	}
}

func (c *collector) checkConditions(conditions []string, location string) {
	for i, condition := range conditions {
		condLocation := fmt.Sprintf("%s.CONDITION_%d", location, i+1)
		if strings.TrimSpace(condition) == "" {
			c.warnf(CodeEmptyCondition, condLocation, "Empty condition found")
			continue
		}
		lower := strings.ToLower(strings.TrimSpace(condition))
		if !hasAnyPrefix(lower, conditionStarts) {
			c.warnf(CodeUnusualCondition, condLocation, "Condition '%s' doesn't follow typical patterns", condition)
		}
	}
}

func (c *collector) checkConsequences(consequences []string, location string) {
	for i, consequence := range consequences {
		consLocation := fmt.Sprintf("%s.CONSEQUENCE_%d", location, i+1)
		if strings.TrimSpace(consequence) == "" {
			c.warnf(CodeEmptyConsequence, consLocation, "Empty consequence found")
			continue
		}
		upper := strings.ToUpper(strings.TrimSpace(consequence))
		if !hasAnyPrefix(upper, consequenceStarts) {
			c.warnf(CodeUnusualConsequence, consLocation, "Consequence '%s' doesn't follow typical action patterns", consequence)
		}
	}
}

func (c *collector) checkEndings(adv *story.Adventure) {
	var missing []string
	for _, kind := range story.StandardEndings() {
		if strings.TrimSpace(adv.Endings[kind]) == "" {
			missing = append(missing, kind)
		}
	}
	if len(missing) > 0 {
		c.warnf(CodeMissingStandardEnding, "ENDINGS", "Missing standard endings: %s", strings.Join(missing, ", "))
	}

	for _, kind := range adv.SortedEndingKinds() {
		location := story.EndingTarget(kind)
		text := strings.TrimSpace(adv.Endings[kind])
		if text == "" {
			c.errorf(CodeEmptyEnding, location, "Ending '%s' has empty content", kind)
		} else if utf8.RuneCountInString(text) < minEndingLen {
			c.warnf(CodeShortEnding, location, "Ending '%s' is very short (%d chars)", kind, utf8.RuneCountInString(text))
		}
	}
}

func (c *collector) checkKeyValueSections(adv *story.Adventure) {
	c.checkKeyValues("INVENTORY", adv.Inventory)
	c.checkKeyValues("STATS", adv.Stats)
	c.checkKeyValues("VARIABLES", adv.Variables)
}

func (c *collector) checkKeyValues(section string, data map[string]string) {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		location := section + "." + key
		if key == "" {
			c.errorf(CodeInvalidKey, location, "Invalid key '%s' in %s", key, section)
		} else if !identifierKey.MatchString(key) {
			c.warnf(CodeKeyFormatWarning, location, "Key '%s' contains unusual characters", key)
		}

		value := data[key]
		if strings.TrimSpace(value) == "" {
			c.warnf(CodeNullValue, location, "Empty value for key '%s' in %s", key, section)
		} else if strings.ContainsAny(value, "{}[]\n") {
			c.warnf(CodeComplexValue, location, "Complex value for key '%s' in %s", key, section)
		}
	}
}

func (c *collector) checkStoryFlow(adv *story.Adventure) {
	g := graph.Build(adv)
	unreachable := graph.Unreachable(adv, g, story.StartStepID)
	if len(unreachable) > 0 {
		c.warnf(CodeUnreachableSteps, "FLOW_ANALYSIS", "Steps are unreachable from step 1: %s", strings.Join(unreachable, ", "))
	}

	if _, ok := adv.Steps[story.StartStepID]; !ok {
		c.errorf(CodeMissingStartStep, "STEP_1", "No STEP_1 found - game must start with step 1")
	}
}

// collectValidTargets builds the set of resolvable choice targets:
// every existing step, the three standard endings, and every declared
// custom ending.
func collectValidTargets(adv *story.Adventure) map[string]bool {
	targets := make(map[string]bool, len(adv.Steps)+len(adv.Endings)+3)
	for id := range adv.Steps {
		targets[story.StepTarget(id)] = true
	}
	for _, kind := range story.StandardEndings() {
		targets[story.EndingTarget(kind)] = true
	}
	for kind := range adv.Endings {
		targets[story.EndingTarget(kind)] = true
	}
	return targets
}

// hasAnyPrefix expects s already normalized to the case the prefix
// list is written in.
func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func joinSorted(set map[string]bool) string {
	items := make([]string, 0, len(set))
	for item := range set {
		items = append(items, item)
	}
	sort.Strings(items)
	return strings.Join(items, ", ")
}
