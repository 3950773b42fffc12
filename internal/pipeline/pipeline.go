// Package pipeline - full-adventure analysis runs.
//
// Run executes every analysis stage in the fixed generation order,
// threading the story through the stages that repair it, and folds the
// stage outcomes into a single weighted quality score. QualityReport
// renders the cross-tool quality summary for an adventure as it
// stands, without modifying it.
package pipeline

import (
	"fmt"
	"time"

	"github.com/questfoundry/advgraph/internal/choices"
	"github.com/questfoundry/advgraph/internal/endings"
	"github.com/questfoundry/advgraph/internal/flow"
	"github.com/questfoundry/advgraph/internal/graph"
	"github.com/questfoundry/advgraph/internal/pruner"
	"github.com/questfoundry/advgraph/internal/replay"
	"github.com/questfoundry/advgraph/internal/story"
	"github.com/questfoundry/advgraph/internal/validator"
)

// Stage names, in execution order.
const (
	StageValidation    = "structure_validation"
	StageBranches      = "branch_optimization"
	StageEndings       = "ending_optimization"
	StageChoices       = "choice_analysis"
	StageReplayability = "replayability_scoring"
	StageFlow          = "flow_visualization"
)

// stageWeights grade how much each stage contributes to the overall
// quality score.
var stageWeights = map[string]float64{
	StageValidation:    0.15,
	StageBranches:      0.10,
	StageEndings:       0.10,
	StageChoices:       0.05,
	StageReplayability: 0.03,
	StageFlow:          0.02,
}

// Scores credited to stages that carry no score of their own.
const (
	successScore = 8.0
	failureScore = 3.0
	neutralScore = 5.0
)

// StageResult records one stage's outcome. Score is meaningful only
// when HasScore is set; the remaining stages contribute the fixed
// success or failure score to the overall quality.
type StageResult struct {
	Name     string  `json:"name"`
	Success  bool    `json:"success"`
	Summary  string  `json:"summary"`
	Score    float64 `json:"score"`
	HasScore bool    `json:"has_score"`
}

// Result is the outcome of a full pipeline run.
type Result struct {
	Optimized      *story.Adventure `json:"optimized"`
	Stages         []StageResult    `json:"stages"`
	FixesApplied   []string         `json:"fixes_applied,omitempty"`
	OverallQuality float64          `json:"overall_quality"`
	SuccessRate    float64          `json:"success_rate"`
	GeneratedAt    time.Time        `json:"generated_at"`
}

// Run executes the analysis stages in order over a copy of the
// adventure. A failed validation triggers the common fixes and one
// revalidation; branch pruning and ending optimization pass their
// optimized story on to every stage after them. The input is never
// modified.
func Run(adv *story.Adventure, caps graph.Caps) Result {
	current := adv.Clone()
	r := Result{GeneratedAt: timeNow()}

	vr := validator.Validate(current)
	if !vr.Valid {
		current, r.FixesApplied = validator.FixCommonIssues(current)
		vr = validator.Validate(current)
	}
	verdict := "passed"
	if !vr.Valid {
		verdict = "failed"
	}
	r.Stages = append(r.Stages, StageResult{
		Name:    StageValidation,
		Success: vr.Valid,
		Summary: fmt.Sprintf("Validation %s: %d errors, %d warnings", verdict, len(vr.Errors), len(vr.Warnings)),
	})

	pruned := pruner.Prune(current)
	current = pruned.Optimized
	r.Stages = append(r.Stages, StageResult{
		Name:    StageBranches,
		Success: true,
		Summary: fmt.Sprintf("Pruned %d dead ends, removed %d unreachable steps", len(pruned.Before.DeadEnds), len(pruned.Before.UnreachableSteps)),
	})

	optimized := endings.Optimize(current, caps)
	current = optimized.Optimized
	r.Stages = append(r.Stages, StageResult{
		Name:     StageEndings,
		Success:  true,
		Summary:  fmt.Sprintf("Ending optimization: %.1f/10 overall score, %d suggestions applied", optimized.After.OverallScore, len(optimized.Suggestions)),
		Score:    optimized.After.OverallScore,
		HasScore: true,
	})

	ca := choices.Analyze(current)
	issues := choices.Issues(current, ca, choices.DefaultMinImpact)
	r.Stages = append(r.Stages, StageResult{
		Name:     StageChoices,
		Success:  true,
		Summary:  fmt.Sprintf("Choice analysis: %.1f/10 overall score, %d issues found", ca.Overall, len(issues)),
		Score:    ca.Overall,
		HasScore: true,
	})

	ra := replay.Analyze(current, caps)
	r.Stages = append(r.Stages, StageResult{
		Name:     StageReplayability,
		Success:  true,
		Summary:  fmt.Sprintf("Replayability analysis: %.1f/10 overall score, %d unique paths", ra.Overall, ra.TotalPaths),
		Score:    ra.Overall,
		HasScore: true,
	})

	viz := flow.Visualize(current)
	r.Stages = append(r.Stages, StageResult{
		Name:    StageFlow,
		Success: true,
		Summary: fmt.Sprintf("Flow visualization generated: %d nodes, %d connections, complexity %.1f", len(viz.Nodes), len(viz.Connections), viz.Complexity),
	})

	r.Optimized = current
	r.OverallQuality = overallQuality(r.Stages)
	r.SuccessRate = successRate(r.Stages)
	return r
}

// overallQuality folds the stage outcomes into one 0-10 score using
// the stage weights. A failed stage always contributes the failure
// score, even when it carries a score of its own.
func overallQuality(stages []StageResult) float64 {
	totalWeight := 0.0
	weightedSum := 0.0

	for _, stage := range stages {
		weight, ok := stageWeights[stage.Name]
		if !ok {
			continue
		}

		score := successScore
		if !stage.Success {
			score = failureScore
		} else if stage.HasScore {
			score = stage.Score
		}

		weightedSum += score * weight
		totalWeight += weight
	}

	if totalWeight == 0 {
		return neutralScore
	}
	return weightedSum / totalWeight
}

func successRate(stages []StageResult) float64 {
	if len(stages) == 0 {
		return 0
	}
	succeeded := 0
	for _, stage := range stages {
		if stage.Success {
			succeeded++
		}
	}
	return float64(succeeded) / float64(len(stages))
}
