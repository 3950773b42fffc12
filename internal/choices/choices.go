// Package choices rates how much a story's choices actually matter:
// whether they lead somewhere, read distinctly from their siblings, and
// carry consequences that match what their descriptions promise. The
// scores feed issue detection, recommendations, and per-step
// improvement suggestions.
package choices

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/questfoundry/advgraph/internal/story"
)

// Analysis holds the per-choice score maps and the aggregate choice
// quality metrics. Map keys are choice references of the form
// "STEP_<id>.CHOICE_<n>" with n counted from 1.
type Analysis struct {
	Impact          map[string]float64 `json:"choice_impact_scores"`
	Differentiation map[string]float64 `json:"choice_differentiation"`
	Consistency     map[string]float64 `json:"consequence_consistency"`
	PlayerAgency    float64            `json:"player_agency_score"`
	MeaningfulRatio float64            `json:"meaningful_choices_ratio"`
	Quality         float64            `json:"choice_quality_score"`
	Overall         float64            `json:"overall_choice_score"`
}

// Words that signal a deliberately written choice description.
var descriptiveWords = []string{"carefully", "boldly", "wisely", "cleverly"}

// Keyword pairs where a description promises one thing and a
// consequence delivers the opposite.
var inconsistencyRules = []struct {
	descWords    []string
	consequences []string
	penalty      float64
}{
	{[]string{"dangerous", "fight"}, []string{"health +"}, 0.2},
	{[]string{"helpful", "aid"}, []string{"reputation -"}, 0.2},
	{[]string{"negotiate", "diplomatic"}, []string{"violence", "combat"}, 0.3},
	{[]string{"careful", "cautious"}, []string{"reckless", "bold"}, 0.2},
}

// Analyze scores every choice in the adventure and derives the
// aggregate agency, quality, and overall metrics.
func Analyze(adv *story.Adventure) Analysis {
	a := Analysis{
		Impact:          impactScores(adv),
		Differentiation: differentiationScores(adv),
		Consistency:     consistencyScores(adv),
		PlayerAgency:    playerAgency(adv),
		Quality:         qualityScore(adv),
	}
	a.MeaningfulRatio = meaningfulRatio(a.Impact)

	diffTerm := 5.0
	if len(a.Differentiation) > 0 {
		sum := 0.0
		for _, score := range a.Differentiation {
			sum += score
		}
		diffTerm = sum / float64(len(a.Differentiation)) * 10
	}
	weighted := a.PlayerAgency*0.3 +
		a.MeaningfulRatio*10*0.25 +
		a.Quality*0.25 +
		diffTerm*0.2
	a.Overall = clamp(weighted, 0, 10)
	return a
}

// impactScores rates each choice by how much it changes the story: the
// kind of target it jumps to, the state it touches, and how much its
// description commits to.
func impactScores(adv *story.Adventure) map[string]float64 {
	scores := make(map[string]float64)
	for id, step := range adv.Steps {
		for i, c := range step.Choices {
			score := 0.0
			switch {
			case story.IsEndingTarget(c.Target):
				score += 0.4
			case story.IsStepTarget(c.Target):
				score += 0.2
			}
			score += math.Min(0.3, float64(len(c.Consequences))*0.1)
			score += math.Min(0.2, float64(len(c.Conditions))*0.05)
			if utf8.RuneCountInString(strings.TrimSpace(c.Description)) > 20 {
				score += 0.1
			}
			scores[choiceKey(id, i)] = math.Min(1, score)
		}
	}
	return scores
}

// differentiationScores rates each choice by how distinct it is from
// its siblings in the same step. A lone choice scores a neutral 0.5.
func differentiationScores(adv *story.Adventure) map[string]float64 {
	scores := make(map[string]float64)
	for id, step := range adv.Steps {
		if len(step.Choices) < 2 {
			for i := range step.Choices {
				scores[choiceKey(id, i)] = 0.5
			}
			continue
		}
		for i, c := range step.Choices {
			total := 0.0
			for j, other := range step.Choices {
				if j == i {
					continue
				}
				total += choiceDifference(c, other)
			}
			scores[choiceKey(id, i)] = total / float64(len(step.Choices)-1)
		}
	}
	return scores
}

// choiceDifference measures how far apart two sibling choices are,
// weighing target, description wording, consequences, and conditions.
func choiceDifference(a, b story.Choice) float64 {
	difference := 0.0
	if a.Target != b.Target {
		difference += 0.4
	}
	difference += (1 - textSimilarity(a.Description, b.Description)) * 0.3
	if !slices.Equal(a.Consequences, b.Consequences) {
		difference += (1 - listSimilarity(a.Consequences, b.Consequences)) * 0.2
	}
	if !slices.Equal(a.Conditions, b.Conditions) {
		difference += (1 - listSimilarity(a.Conditions, b.Conditions)) * 0.1
	}
	return math.Min(1, difference)
}

// consistencyScores rates how well each choice's consequences match the
// tone of its description.
func consistencyScores(adv *story.Adventure) map[string]float64 {
	scores := make(map[string]float64)
	for id, step := range adv.Steps {
		for i, c := range step.Choices {
			scores[choiceKey(id, i)] = consequenceConsistency(c)
		}
	}
	return scores
}

func consequenceConsistency(c story.Choice) float64 {
	if len(c.Consequences) == 0 {
		return 0.5
	}
	desc := strings.ToLower(c.Description)
	score := 1.0
	for _, consequence := range c.Consequences {
		lower := strings.ToLower(consequence)
		for _, rule := range inconsistencyRules {
			if containsAny(desc, rule.descWords) && containsAny(lower, rule.consequences) {
				score -= rule.penalty
			}
		}
	}
	return math.Max(0, score)
}

// playerAgency scores 0-10 how much control the player has. A choice is
// meaningful when its step branches to more than one target, or when it
// at least carries consequences.
func playerAgency(adv *story.Adventure) float64 {
	total, meaningful := 0, 0
	targets := make(map[string]bool)

	for _, step := range adv.Steps {
		total += len(step.Choices)
		distinct := make(map[string]bool)
		for _, c := range step.Choices {
			targets[c.Target] = true
			distinct[c.Target] = true
		}
		if len(step.Choices) < 2 {
			continue
		}
		if len(distinct) > 1 {
			meaningful += len(step.Choices)
			continue
		}
		for _, c := range step.Choices {
			if len(c.Consequences) > 0 {
				meaningful++
			}
		}
	}
	if total == 0 {
		return 0
	}

	ratio := float64(meaningful) / float64(total)
	bonus := math.Min(2, float64(len(targets))*0.2)
	return math.Min(10, ratio*8+bonus)
}

func meaningfulRatio(impact map[string]float64) float64 {
	if len(impact) == 0 {
		return 0
	}
	meaningful := 0
	for _, score := range impact {
		if score >= DefaultMinImpact {
			meaningful++
		}
	}
	return float64(meaningful) / float64(len(impact))
}

// qualityScore rates 0-10 how well the choices are written, averaging a
// per-choice score built from description length, state usage, and
// deliberate wording.
func qualityScore(adv *story.Adventure) float64 {
	total := 0.0
	count := 0
	for _, step := range adv.Steps {
		for _, c := range step.Choices {
			count++
			score := 5.0
			length := utf8.RuneCountInString(strings.TrimSpace(c.Description))
			switch {
			case length < 10:
				score -= 2
			case length > 100:
				score -= 1
			case length >= 20 && length <= 80:
				score += 1
			}
			if len(c.Consequences) > 0 {
				score += 1
			}
			if len(c.Conditions) > 0 {
				score += 0.5
			}
			if containsAny(strings.ToLower(c.Description), descriptiveWords) {
				score += 0.5
			}
			total += clamp(score, 0, 10)
		}
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// ─── Private Helpers ─────────────────────────────────────────────────

// choiceKey builds the "STEP_<id>.CHOICE_<n>" reference for the i-th
// choice (zero-based) of a step.
func choiceKey(stepID string, i int) string {
	return story.StepTarget(stepID) + ".CHOICE_" + strconv.Itoa(i+1)
}

// textSimilarity computes word-set overlap between two texts, 0 to 1.
func textSimilarity(a, b string) float64 {
	wordsA := wordSet(a)
	wordsB := wordSet(b)
	if len(wordsA) == 0 && len(wordsB) == 0 {
		return 1
	}
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	shared := 0
	union := len(wordsB)
	for w := range wordsA {
		if wordsB[w] {
			shared++
		} else {
			union++
		}
	}
	return float64(shared) / float64(union)
}

// listSimilarity computes set overlap between two string lists, 0 to 1.
// Two empty lists count as identical.
func listSimilarity(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := stringSet(a)
	setB := stringSet(b)
	shared := 0
	union := len(setB)
	for v := range setA {
		if setB[v] {
			shared++
		} else {
			union++
		}
	}
	return float64(shared) / float64(union)
}

func wordSet(text string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		words[w] = true
	}
	return words
}

func stringSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
