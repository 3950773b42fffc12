package endings

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/questfoundry/advgraph/internal/story"
)

// Suggestion types.
const (
	SuggestIncreaseSuccessPaths   = "INCREASE_SUCCESS_PATHS"
	SuggestReduceFailurePaths     = "REDUCE_FAILURE_PATHS"
	SuggestAddNeutralPaths        = "ADD_NEUTRAL_PATHS"
	SuggestImproveAccessibility   = "IMPROVE_ENDING_ACCESSIBILITY"
	SuggestImproveDifferentiation = "IMPROVE_ENDING_DIFFERENTIATION"
	SuggestExpandEndingContent    = "EXPAND_ENDING_CONTENT"
	SuggestImproveEndingQuality   = "IMPROVE_ENDING_QUALITY"
	SuggestEnhanceEndingQuality   = "ENHANCE_ENDING_QUALITY"
)

// Priority ranks how urgently a suggestion should be addressed.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Suggestion is one recommended change to the ending structure.
type Suggestion struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Priority    Priority `json:"priority"`
}

// String renders the suggestion as "[PRIORITY] TYPE: description (location)".
func (s Suggestion) String() string {
	return fmt.Sprintf("[%s] %s: %s (%s)", strings.ToUpper(string(s.Priority)), s.Type, s.Description, s.Location)
}

// Suggest derives recommendations from an analysis. Balance
// suggestions appear when the balance score is below 7, accessibility
// and differentiation suggestions below 6; quality suggestions are
// always evaluated per ending.
func Suggest(adv *story.Adventure, a Analysis) []Suggestion {
	var suggestions []Suggestion
	if a.BalanceScore < 7.0 {
		suggestions = append(suggestions, balanceSuggestions(adv, a)...)
	}
	if a.AccessibilityScore < 6.0 {
		suggestions = append(suggestions, accessibilitySuggestions(a)...)
	}
	if a.DifferentiationScore < 6.0 {
		suggestions = append(suggestions, differentiationSuggestions(adv)...)
	}
	return append(suggestions, qualitySuggestions(a)...)
}

func balanceSuggestions(adv *story.Adventure, a Analysis) []Suggestion {
	var out []Suggestion

	total := 0
	for _, n := range a.Distribution {
		total += n
	}
	if total == 0 {
		return out
	}

	successShare := float64(a.Distribution[story.EndingTarget(story.EndingSuccess)]) / float64(total)
	if successShare < targetSuccessShare-0.1 {
		out = append(out, Suggestion{
			Type:        SuggestIncreaseSuccessPaths,
			Description: fmt.Sprintf("Add more paths to success ending (current: %.1f%%, target: %.1f%%)", successShare*100, targetSuccessShare*100),
			Location:    "ENDING_DISTRIBUTION",
			Priority:    PriorityHigh,
		})
	}

	failureShare := float64(a.Distribution[story.EndingTarget(story.EndingFailure)]) / float64(total)
	if failureShare > targetFailureShare+0.1 {
		out = append(out, Suggestion{
			Type:        SuggestReduceFailurePaths,
			Description: fmt.Sprintf("Reduce paths to failure ending (current: %.1f%%, target: %.1f%%)", failureShare*100, targetFailureShare*100),
			Location:    "ENDING_DISTRIBUTION",
			Priority:    PriorityMedium,
		})
	}

	if a.Distribution[story.EndingTarget(story.EndingNeutral)] == 0 && len(adv.Endings) > 2 {
		out = append(out, Suggestion{
			Type:        SuggestAddNeutralPaths,
			Description: "Add paths to neutral ending for better balance",
			Location:    "ENDING_DISTRIBUTION",
			Priority:    PriorityMedium,
		})
	}
	return out
}

func accessibilitySuggestions(a Analysis) []Suggestion {
	var out []Suggestion
	for _, kind := range sortedKinds(a.Accessibility) {
		acc := a.Accessibility[kind]
		switch {
		case acc < 0.1:
			out = append(out, Suggestion{
				Type:        SuggestImproveAccessibility,
				Description: fmt.Sprintf("Ending '%s' is difficult to reach (accessibility: %.1f%%)", kind, acc*100),
				Location:    story.EndingTarget(kind),
				Priority:    PriorityHigh,
			})
		case acc < 0.3:
			out = append(out, Suggestion{
				Type:        SuggestImproveAccessibility,
				Description: fmt.Sprintf("Ending '%s' has low accessibility (accessibility: %.1f%%)", kind, acc*100),
				Location:    story.EndingTarget(kind),
				Priority:    PriorityMedium,
			})
		}
	}
	return out
}

func differentiationSuggestions(adv *story.Adventure) []Suggestion {
	out := []Suggestion{{
		Type:        SuggestImproveDifferentiation,
		Description: "Endings are too similar - make them more distinct in tone, content, and consequences",
		Location:    "ALL_ENDINGS",
		Priority:    PriorityMedium,
	}}

	for _, kind := range adv.SortedEndingKinds() {
		if utf8.RuneCountInString(strings.TrimSpace(adv.Endings[kind])) < 30 {
			out = append(out, Suggestion{
				Type:        SuggestExpandEndingContent,
				Description: fmt.Sprintf("Ending '%s' is too brief - add more detail and emotional impact", kind),
				Location:    story.EndingTarget(kind),
				Priority:    PriorityMedium,
			})
		}
	}
	return out
}

func qualitySuggestions(a Analysis) []Suggestion {
	var out []Suggestion
	for _, kind := range sortedKinds(a.QualityScores) {
		score := a.QualityScores[kind]
		switch {
		case score < 5.0:
			out = append(out, Suggestion{
				Type:        SuggestImproveEndingQuality,
				Description: fmt.Sprintf("Ending '%s' has low quality score (%.1f/10) - improve content and emotional impact", kind, score),
				Location:    story.EndingTarget(kind),
				Priority:    PriorityHigh,
			})
		case score < 7.0:
			out = append(out, Suggestion{
				Type:        SuggestEnhanceEndingQuality,
				Description: fmt.Sprintf("Ending '%s' could be enhanced (score: %.1f/10)", kind, score),
				Location:    story.EndingTarget(kind),
				Priority:    PriorityMedium,
			})
		}
	}
	return out
}
