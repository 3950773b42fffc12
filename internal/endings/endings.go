// Package endings scores and optimizes the ending structure of a
// story: how playthroughs distribute across endings, how accessible
// each ending is, how distinct the ending texts are, and how well each
// reads on its own. Suggest derives recommendations from the scores;
// Optimize applies the mechanical ones to a copy.
package endings

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/questfoundry/advgraph/internal/graph"
	"github.com/questfoundry/advgraph/internal/story"
)

// Target playthrough shares per standard ending.
const (
	targetSuccessShare = 0.40
	targetFailureShare = 0.35
	targetNeutralShare = 0.25
)

// Analysis captures one scoring pass over the endings.
//
// Distribution counts enumerated playthroughs per ending target.
// Accessibility and QualityScores are keyed by declared ending kind;
// ChoiceEndings maps "STEP_<id>.CHOICE_<n>" to the ending targets that
// choice can lead to. Scores run 0 to 10.
type Analysis struct {
	Distribution         map[string]int      `json:"ending_distribution"`
	Accessibility        map[string]float64  `json:"ending_accessibility"`
	ChoiceEndings        map[string][]string `json:"choice_to_ending_paths"`
	QualityScores        map[string]float64  `json:"ending_quality_scores"`
	BalanceScore         float64             `json:"balance_score"`
	AccessibilityScore   float64             `json:"accessibility_score"`
	DifferentiationScore float64             `json:"differentiation_score"`
	OverallScore         float64             `json:"overall_score"`
}

// Analyze scores the ending structure. Playthroughs are enumerated
// once under caps and shared by the distribution and accessibility
// metrics. Overall weighs balance 0.4, accessibility 0.3, and
// differentiation 0.3.
func Analyze(adv *story.Adventure, caps graph.Caps) Analysis {
	paths := graph.EnumeratePaths(adv, story.StartStepID, caps)

	a := Analysis{
		Distribution:  distribution(paths),
		Accessibility: accessibility(adv, paths),
		ChoiceEndings: choiceEndings(adv),
		QualityScores: qualityScores(adv),
	}
	a.BalanceScore = balanceScore(a.Distribution)
	a.AccessibilityScore = accessibilityScore(a.Accessibility)
	a.DifferentiationScore = differentiationScore(adv)
	a.OverallScore = clamp(a.BalanceScore*0.4+a.AccessibilityScore*0.3+a.DifferentiationScore*0.3, 0, 10)
	return a
}

func distribution(paths []graph.Path) map[string]int {
	dist := make(map[string]int)
	for _, p := range paths {
		dist[story.EndingTarget(p.Ending)]++
	}
	return dist
}

// accessibility rates each declared ending 0 to 1: more routes raise
// the score, longer routes lower it. A story with no choices at all
// rates nothing.
func accessibility(adv *story.Adventure, paths []graph.Path) map[string]float64 {
	acc := make(map[string]float64)

	totalChoices := 0
	for _, step := range adv.Steps {
		totalChoices += len(step.Choices)
	}
	if totalChoices == 0 {
		return acc
	}

	for kind := range adv.Endings {
		var subset []graph.Path
		for _, p := range paths {
			if p.Ending == kind {
				subset = append(subset, p)
			}
		}
		if len(subset) == 0 {
			acc[kind] = 0
			continue
		}
		score := float64(len(subset)) / math.Max(1, graph.AverageLength(subset))
		acc[kind] = math.Min(1, score/3)
	}
	return acc
}

func choiceEndings(adv *story.Adventure) map[string][]string {
	g := graph.Build(adv)

	mapping := make(map[string][]string)
	for _, id := range adv.SortedStepIDs() {
		for i, c := range adv.Steps[id].Choices {
			key := fmt.Sprintf("STEP_%s.CHOICE_%d", id, i+1)
			switch {
			case story.IsEndingTarget(c.Target):
				mapping[key] = []string{c.Target}
			case story.IsStepTarget(c.Target):
				next, _ := story.TargetStepID(c.Target)
				mapping[key] = sortedSet(graph.EndingsFrom(next, g, nil))
			default:
				mapping[key] = []string{}
			}
		}
	}
	return mapping
}

// Word lists that nudge the ending quality score.
var (
	celebrationWords = []string{"congratulations", "victory", "success", "triumph"}
	growthWords      = []string{"learned", "grown", "discovered", "achieved"}
	emotionWords     = []string{"feel", "emotion", "heart", "proud", "satisfied"}
	lossToneWords    = []string{"failure", "defeat", "loss"}
	winToneWords     = []string{"success", "victory", "triumph"}
)

func qualityScores(adv *story.Adventure) map[string]float64 {
	scores := make(map[string]float64, len(adv.Endings))
	for kind, text := range adv.Endings {
		scores[kind] = scoreEndingText(kind, text)
	}
	return scores
}

// scoreEndingText rates one ending text 0 to 10 from a 5.0 base:
// length brackets, tone words, emotional words, closing punctuation,
// and a penalty when the tone contradicts the ending kind.
func scoreEndingText(kind, text string) float64 {
	score := 5.0
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(text)

	switch length := utf8.RuneCountInString(trimmed); {
	case length < 20:
		score -= 2.0
	case length > 200:
		score += 1.0
	case length > 50:
		score += 0.5
	}

	if containsAny(lower, celebrationWords) {
		score += 1.0
	}
	if containsAny(lower, growthWords) {
		score += 0.5
	}
	if !strings.HasSuffix(trimmed, ".") {
		score -= 0.5
	}
	if containsAny(lower, emotionWords) {
		score += 0.5
	}

	switch kind {
	case story.EndingSuccess:
		if containsAny(lower, lossToneWords) {
			score -= 1.0
		}
	case story.EndingFailure:
		if containsAny(lower, winToneWords) {
			score -= 1.0
		}
	}
	return clamp(score, 0, 10)
}

// balanceScore rates the distribution against the target shares,
// subtracting ten times each standard ending's deviation from ten.
func balanceScore(dist map[string]int) float64 {
	if len(dist) == 0 {
		return 0
	}
	total := 0
	for _, n := range dist {
		total += n
	}
	if total == 0 {
		return 0
	}

	success := float64(dist[story.EndingTarget(story.EndingSuccess)]) / float64(total)
	failure := float64(dist[story.EndingTarget(story.EndingFailure)]) / float64(total)
	neutral := float64(dist[story.EndingTarget(story.EndingNeutral)]) / float64(total)

	score := 10.0
	score -= math.Abs(success-targetSuccessShare) * 10
	score -= math.Abs(failure-targetFailureShare) * 10
	score -= math.Abs(neutral-targetNeutralShare) * 10
	return math.Max(0, score)
}

// accessibilityScore weighs the least accessible ending 0.6 and the
// mean 0.4, scaled to 10.
func accessibilityScore(acc map[string]float64) float64 {
	if len(acc) == 0 {
		return 0
	}

	first := true
	var min, sum float64
	for _, v := range acc {
		if first || v < min {
			min = v
		}
		first = false
		sum += v
	}
	avg := sum / float64(len(acc))
	return clamp((min*0.6+avg*0.4)*10, 0, 10)
}

// differentiationScore rates how distinct the ending texts are: one
// minus the mean pairwise word similarity, scaled to 10. A single
// ending rates a neutral 5.0.
func differentiationScore(adv *story.Adventure) float64 {
	if len(adv.Endings) < 2 {
		return 5.0
	}

	kinds := adv.SortedEndingKinds()
	var sum float64
	pairs := 0
	for i := 0; i < len(kinds); i++ {
		for j := i + 1; j < len(kinds); j++ {
			sum += textSimilarity(adv.Endings[kinds[i]], adv.Endings[kinds[j]])
			pairs++
		}
	}
	if pairs == 0 {
		return 5.0
	}
	return clamp((1-sum/float64(pairs))*10, 0, 10)
}

// textSimilarity is word-set overlap over union, on lower-cased
// whitespace-split words.
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

// ─── Private Helpers ─────────────────────────────────────────────────

func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[w] = true
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

func sortedSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func sortedKinds(m map[string]float64) []string {
	kinds := make([]string, 0, len(m))
	for k := range m {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
