package choices

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/questfoundry/advgraph/internal/story"
)

// Severity grades how badly a choice issue hurts the story.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Issue codes reported by Issues.
const (
	CodeLowImpact           = "LOW_IMPACT_CHOICE"
	CodePoorDifferentiation = "POOR_CHOICE_DIFFERENTIATION"
	CodeInconsistent        = "INCONSISTENT_CONSEQUENCES"
	CodeIdenticalTargets    = "IDENTICAL_CHOICE_TARGETS"
	CodeShortDescription    = "TOO_SHORT_DESCRIPTION"
	CodeMissingConsequences = "MISSING_CONSEQUENCES"
)

// DefaultMinImpact is the impact floor below which a choice gets
// flagged when the caller does not set its own.
const DefaultMinImpact = 0.3

const minDifferentiationThreshold = 0.5

// Issue describes a single choice defect found during analysis.
type Issue struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Location string   `json:"location,omitempty"`
	Severity Severity `json:"severity"`
}

func (i Issue) String() string {
	location := ""
	if i.Location != "" {
		location = " at " + i.Location
	}
	return fmt.Sprintf("[%s] %s: %s%s", strings.ToUpper(string(i.Severity)), i.Code, i.Message, location)
}

// Issues scans the adventure's choices for defects, grading impact and
// differentiation against the analysis scores. Steps are visited in id
// order, one detection pass at a time. minImpact sets the impact floor,
// normally DefaultMinImpact.
func Issues(adv *story.Adventure, a Analysis, minImpact float64) []Issue {
	var issues []Issue
	ids := adv.SortedStepIDs()

	for _, id := range ids {
		for i := range adv.Steps[id].Choices {
			key := choiceKey(id, i)
			if score := a.Impact[key]; score < minImpact {
				issues = append(issues, Issue{
					Code:     CodeLowImpact,
					Message:  fmt.Sprintf("Choice has low impact (score: %.2f)", score),
					Location: key,
					Severity: SeverityMedium,
				})
			}
		}
	}

	for _, id := range ids {
		for i := range adv.Steps[id].Choices {
			key := choiceKey(id, i)
			if score := a.Differentiation[key]; score < minDifferentiationThreshold {
				issues = append(issues, Issue{
					Code:     CodePoorDifferentiation,
					Message:  fmt.Sprintf("Choice is too similar to others (differentiation: %.2f)", score),
					Location: key,
					Severity: SeverityMedium,
				})
			}
		}
	}

	for _, id := range ids {
		for i := range adv.Steps[id].Choices {
			key := choiceKey(id, i)
			if score := a.Consistency[key]; score < minDifferentiationThreshold {
				issues = append(issues, Issue{
					Code:     CodeInconsistent,
					Message:  fmt.Sprintf("Choice consequences don't match description (consistency: %.2f)", score),
					Location: key,
					Severity: SeverityHigh,
				})
			}
		}
	}

	for _, id := range ids {
		step := adv.Steps[id]
		if len(step.Choices) < 2 {
			continue
		}
		targets := make(map[string]bool)
		for _, c := range step.Choices {
			targets[c.Target] = true
		}
		if len(targets) == 1 {
			issues = append(issues, Issue{
				Code:     CodeIdenticalTargets,
				Message:  "All choices in step lead to the same target",
				Location: story.StepTarget(id),
				Severity: SeverityHigh,
			})
		}
	}

	for _, id := range ids {
		for i, c := range adv.Steps[id].Choices {
			if utf8.RuneCountInString(strings.TrimSpace(c.Description)) < 5 {
				issues = append(issues, Issue{
					Code:     CodeShortDescription,
					Message:  fmt.Sprintf("Choice description is too short: '%s'", c.Description),
					Location: choiceKey(id, i),
					Severity: SeverityMedium,
				})
			}
		}
	}

	for _, id := range ids {
		for i, c := range adv.Steps[id].Choices {
			key := choiceKey(id, i)
			if a.Impact[key] > 0.5 && len(c.Consequences) == 0 {
				issues = append(issues, Issue{
					Code:     CodeMissingConsequences,
					Message:  "High-impact choice lacks consequences",
					Location: key,
					Severity: SeverityMedium,
				})
			}
		}
	}

	return issues
}

// Recommendations turns the aggregate scores and found issues into
// actionable advice. An excellent, issue-free structure gets a single
// keep-it-up line.
func Recommendations(a Analysis, issues []Issue) []string {
	var recs []string

	if a.PlayerAgency < 6 {
		recs = append(recs, "Increase player agency by adding more meaningful choice consequences")
	}
	if a.MeaningfulRatio < 0.6 {
		recs = append(recs, "Make more choices meaningful by varying their outcomes and consequences")
	}
	if a.Quality < 6 {
		recs = append(recs, "Improve choice descriptions and add more consequences")
	}

	codes := make(map[string]bool)
	for _, issue := range issues {
		codes[issue.Code] = true
	}
	if codes[CodeLowImpact] {
		recs = append(recs, "Add consequences to low-impact choices to make them more meaningful")
	}
	if codes[CodePoorDifferentiation] {
		recs = append(recs, "Make choices more distinct in description, target, and consequences")
	}
	if codes[CodeInconsistent] {
		recs = append(recs, "Align choice consequences with their descriptions")
	}
	if codes[CodeIdenticalTargets] {
		recs = append(recs, "Vary choice targets to provide different story paths")
	}

	if len(recs) == 0 && a.Overall >= 8 {
		recs = append(recs, "Choice structure is excellent - maintain quality across all choices")
	}
	return recs
}

// Improvements suggests concrete per-step fixes, grouping the found
// issues by the step they point at, plus overall advice when agency or
// meaningfulness fall short.
func Improvements(adv *story.Adventure, minImpact float64) []string {
	a := Analyze(adv)
	issues := Issues(adv, a, minImpact)

	var order []string
	grouped := make(map[string][]Issue)
	for _, issue := range issues {
		if !strings.Contains(issue.Location, "STEP_") {
			continue
		}
		ref := strings.SplitN(issue.Location, ".", 2)[0]
		if _, seen := grouped[ref]; !seen {
			order = append(order, ref)
		}
		grouped[ref] = append(grouped[ref], issue)
	}

	var suggestions []string
	for _, ref := range order {
		id := strings.TrimPrefix(ref, "STEP_")
		stepIssues := grouped[ref]
		if hasCode(stepIssues, CodeIdenticalTargets) {
			suggestions = append(suggestions, fmt.Sprintf("Step %s: Vary choice targets to create different story paths", id))
		}
		if hasCode(stepIssues, CodePoorDifferentiation) {
			suggestions = append(suggestions, fmt.Sprintf("Step %s: Make choice descriptions more distinct and specific", id))
		}
		if hasCode(stepIssues, CodeLowImpact) {
			suggestions = append(suggestions, fmt.Sprintf("Step %s: Add consequences to make choices more impactful", id))
		}
	}

	if a.PlayerAgency < 6 {
		suggestions = append(suggestions, "Overall: Increase player agency by adding more branching paths")
	}
	if a.MeaningfulRatio < 0.5 {
		suggestions = append(suggestions, "Overall: Make more choices meaningful by varying outcomes")
	}
	return suggestions
}

func hasCode(issues []Issue, code string) bool {
	for _, issue := range issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}
