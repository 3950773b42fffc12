package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/questfoundry/advgraph/internal/config"
)

// --- Test fixtures ---

// cleanAdventure parses without issues and validates with zero errors
// and zero warnings.
const cleanAdventure = `[GAME_NAME]
The Forgotten Cave

[MAIN_MENU]
1. New Game
2. Exit

[STEP_1]
[NARRATIVE]
You stand at the mouth of a cave.
A cold wind blows from the darkness.
[/NARRATIVE]
[CHOICES]
A) Enter the cave → STEP_2
B) Walk away from the entrance → ENDING_NEUTRAL
[/CHOICES]

[STEP_2]
[NARRATIVE]
The passage narrows and the torch flickers.
[/NARRATIVE]
[CHOICES]
A) Press on into the dark → ENDING_SUCCESS
B) Turn back while you can → ENDING_FAILURE
[/CHOICES]

[ENDING_SUCCESS]
You find the lost treasure chamber and step into legend.

[ENDING_FAILURE]
The cave keeps its secrets, and you keep your regrets.

[ENDING_NEUTRAL]
Some doors are better left unopened.
`

// warnedAdventure is valid but carries exactly one warning: the
// neutral ending text is too short.
const warnedAdventure = `[GAME_NAME]
The Forgotten Cave

[MAIN_MENU]
1. New Game
2. Exit

[STEP_1]
[NARRATIVE]
You stand at the mouth of a cave.
[/NARRATIVE]
[CHOICES]
A) Enter the cave → ENDING_SUCCESS
B) Walk away from it → ENDING_NEUTRAL
[/CHOICES]

[ENDING_SUCCESS]
You find the lost treasure chamber and step into legend.

[ENDING_FAILURE]
The cave keeps its secrets, and you keep your regrets.

[ENDING_NEUTRAL]
Nothing changes.
`

// invalidAdventure is missing its main menu, a structural error that
// FixCommonIssues can repair.
const invalidAdventure = `[GAME_NAME]
The Forgotten Cave

[STEP_1]
[NARRATIVE]
You stand at the mouth of a cave.
[/NARRATIVE]
[CHOICES]
A) Enter the cave → ENDING_SUCCESS
B) Walk away from it → ENDING_FAILURE
[/CHOICES]

[ENDING_SUCCESS]
You find the lost treasure chamber and step into legend.

[ENDING_FAILURE]
The cave keeps its secrets, and you keep your regrets.

[ENDING_NEUTRAL]
Some doors are better left unopened.
`

// danglingAdventure has one choiceless dead end (step 2) and one
// unreachable step (step 3).
const danglingAdventure = `[GAME_NAME]
The Broken Keep

[MAIN_MENU]
1. New Game
2. Exit

[STEP_1]
[NARRATIVE]
The gate creaks open onto a ruined courtyard.
[/NARRATIVE]
[CHOICES]
A) Climb the crumbling stairs → STEP_2
B) Slip out through the postern gate → ENDING_SUCCESS
[/CHOICES]

[STEP_2]
[NARRATIVE]
The stairs end at a collapsed landing.
[/NARRATIVE]

[STEP_3]
[NARRATIVE]
A hidden cellar nobody can reach.
[/NARRATIVE]
[CHOICES]
A) Drink from the dusty bottle → ENDING_FAILURE
[/CHOICES]

[ENDING_SUCCESS]
You escape the keep with your life and a story to tell.

[ENDING_FAILURE]
The keep claims another visitor for its long silence.
`

// garbledAdventure carries a choice line the parser has to skip.
const garbledAdventure = `[GAME_NAME]
The Forgotten Cave

[MAIN_MENU]
1. New Game

[STEP_1]
[NARRATIVE]
You stand at the mouth of a cave.
[/NARRATIVE]
[CHOICES]
A) Enter the cave → ENDING_SUCCESS
C) Broken line with no target
[/CHOICES]

[ENDING_SUCCESS]
You find the lost treasure chamber and step into legend.
`

// --- Test helpers ---

func testConfig() config.Config {
	return config.Config{
		LogLevel:      "info",
		MaxPathLength: 20,
		MaxPaths:      100,
		MinImpact:     0.3,
	}
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// isErrorResult checks if the result is a tool error.
func isErrorResult(result *mcp.CallToolResult) bool {
	return result != nil && result.IsError
}

// getResultText extracts the text content from a CallToolResult.
func getResultText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// --- Missing input ---

func TestToolsRequireAdventureContent(t *testing.T) {
	logger := zerolog.Nop()
	cfg := testConfig()

	tests := []struct {
		name   string
		handle func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
	}{
		{"validate_adventure", NewValidateTool(logger).Handle},
		{"analyze_branches", NewBranchesTool(logger).Handle},
		{"optimize_endings", NewEndingsTool(cfg, logger).Handle},
		{"score_replayability", NewReplayTool(cfg, logger).Handle},
		{"visualize_story_flow", NewFlowTool(logger).Handle},
		{"analyze_choice_quality", NewChoicesTool(cfg, logger).Handle},
		{"adventure_quality_report", NewQualityTool(cfg, logger).Handle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.handle(context.Background(), callRequest(map[string]interface{}{}))
			if err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
			if !isErrorResult(result) {
				t.Fatal("expected error result for missing adventure_content")
			}
			if text := getResultText(result); !strings.Contains(text, "adventure_content") {
				t.Errorf("error text = %q, want mention of adventure_content", text)
			}
		})
	}
}

// --- validate_adventure ---

func TestValidateAdventureClean(t *testing.T) {
	tool := NewValidateTool(zerolog.Nop())
	result, err := tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"adventure_content": cleanAdventure,
	}))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("unexpected error result: %s", getResultText(result))
	}

	text := getResultText(result)
	for _, want := range []string{
		"# Adventure Validation",
		"Run ID: `",
		"Validation passed: 0 errors, 0 warnings",
		"## Report",
		"=== ADV Validation Report ===",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("response missing %q", want)
		}
	}
	if strings.Contains(text, "## Parse Issues") {
		t.Error("clean parse should not produce a Parse Issues section")
	}
}

func TestValidateAdventureStrictMode(t *testing.T) {
	tool := NewValidateTool(zerolog.Nop())

	result, err := tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"adventure_content": warnedAdventure,
	}))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	text := getResultText(result)
	if !strings.Contains(text, "Validation failed: 0 errors, 1 warnings (strict mode)") {
		t.Errorf("strict default should fail on warnings, got %q", text)
	}

	result, err = tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"adventure_content": warnedAdventure,
		"strict_mode":       false,
	}))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	text = getResultText(result)
	if !strings.Contains(text, "Validation passed: 0 errors, 1 warnings") {
		t.Errorf("lenient mode should pass with warnings, got %q", text)
	}
	if strings.Contains(text, "(strict mode)") {
		t.Error("lenient mode should not mention strict mode")
	}
}

func TestValidateAdventureErrors(t *testing.T) {
	tool := NewValidateTool(zerolog.Nop())
	result, err := tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"adventure_content": invalidAdventure,
	}))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	text := getResultText(result)
	if !strings.Contains(text, "Validation failed: 1 errors, 0 warnings") {
		t.Errorf("want failed verdict with one error, got %q", text)
	}
	if !strings.Contains(text, "MAIN_MENU") {
		t.Error("report should name the missing section")
	}
}

func TestValidateAdventureParseIssues(t *testing.T) {
	tool := NewValidateTool(zerolog.Nop())
	result, err := tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"adventure_content": garbledAdventure,
	}))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	text := getResultText(result)
	if !strings.Contains(text, "## Parse Issues") {
		t.Fatal("response should carry a Parse Issues section")
	}
	if !strings.Contains(text, "malformed choice line") {
		t.Errorf("parse issue not reported, got %q", text)
	}
}

// --- analyze_branches ---

func TestAnalyzeBranchesReport(t *testing.T) {
	tool := NewBranchesTool(zerolog.Nop())
	result, err := tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"adventure_content": danglingAdventure,
	}))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	text := getResultText(result)
	if !strings.Contains(text, "Found 1 dead ends, 1 unreachable steps, 0 orphaned choices") {
		t.Errorf("summary wrong, got %q", text)
	}
	if !strings.Contains(text, "=== Branch Structure Analysis ===") {
		t.Error("response missing the branch report")
	}
	if strings.Contains(text, "## Optimized Adventure") {
		t.Error("analyze-only run should not return an optimized adventure")
	}
}

func TestAnalyzeBranchesPrune(t *testing.T) {
	tool := NewBranchesTool(zerolog.Nop())
	result, err := tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"adventure_content": danglingAdventure,
		"prune":             true,
	}))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	text := getResultText(result)
	if !strings.Contains(text, "Pruned 1 dead ends, removed 1 unreachable steps") {
		t.Errorf("summary wrong, got %q", text)
	}
	parts := strings.SplitN(text, "## Optimized Adventure", 2)
	if len(parts) != 2 {
		t.Fatal("response missing the Optimized Adventure section")
	}
	if !strings.Contains(parts[1], "[STEP_1]") {
		t.Error("optimized adventure should keep step 1")
	}
	if strings.Contains(parts[1], "[STEP_3]") {
		t.Error("optimized adventure should drop the unreachable step")
	}
}

// --- optimize_endings ---

func TestOptimizeEndingsAnalyze(t *testing.T) {
	tool := NewEndingsTool(testConfig(), zerolog.Nop())
	result, err := tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"adventure_content": cleanAdventure,
	}))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	text := getResultText(result)
	if !strings.Contains(text, "Ending analysis:") || !strings.Contains(text, "suggestions available") {
		t.Errorf("summary wrong, got %q", text)
	}
	if !strings.Contains(text, "=== Ending Analysis Report ===") {
		t.Error("response missing the ending report")
	}
	if strings.Contains(text, "## Optimized Adventure") {
		t.Error("analyze-only run should not return an optimized adventure")
	}
}

func TestOptimizeEndingsApply(t *testing.T) {
	tool := NewEndingsTool(testConfig(), zerolog.Nop())
	result, err := tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"adventure_content": cleanAdventure,
		"apply":             true,
	}))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	text := getResultText(result)
	if !strings.Contains(text, "Ending optimization:") || !strings.Contains(text, "suggestions applied") {
		t.Errorf("summary wrong, got %q", text)
	}
	if !strings.Contains(text, "## Optimized Adventure") {
		t.Error("apply run should return the optimized adventure")
	}
}

// --- score_replayability ---

func TestScoreReplayability(t *testing.T) {
	tool := NewReplayTool(testConfig(), zerolog.Nop())
	result, err := tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"adventure_content": cleanAdventure,
	}))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	text := getResultText(result)
	if !strings.Contains(text, "Replayability analysis:") || !strings.Contains(text, "unique paths") {
		t.Errorf("summary wrong, got %q", text)
	}
	if !strings.Contains(text, "=== Replayability Analysis Report ===") {
		t.Error("response missing the replayability report")
	}
}

// --- visualize_story_flow ---

func TestVisualizeStoryFlowFormats(t *testing.T) {
	tool := NewFlowTool(zerolog.Nop())

	tests := []struct {
		format string
		fence  string
		marker string
	}{
		{"ascii", "```\n", "Story Flow Diagram"},
		{"dot", "```dot\n", "digraph StoryFlow {"},
		{"mermaid", "```mermaid\n", "graph TD"},
		{"json", "```json\n", `"nodes"`},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			result, err := tool.Handle(context.Background(), callRequest(map[string]interface{}{
				"adventure_content": cleanAdventure,
				"format":            tt.format,
			}))
			if err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
			if isErrorResult(result) {
				t.Fatalf("unexpected error result: %s", getResultText(result))
			}

			text := getResultText(result)
			if !strings.Contains(text, "Flow visualization generated:") {
				t.Errorf("summary wrong, got %q", text)
			}
			if !strings.Contains(text, tt.fence) {
				t.Errorf("response missing fence %q", tt.fence)
			}
			if !strings.Contains(text, tt.marker) {
				t.Errorf("diagram missing marker %q", tt.marker)
			}
		})
	}
}

func TestVisualizeStoryFlowDefaultFormat(t *testing.T) {
	tool := NewFlowTool(zerolog.Nop())
	result, err := tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"adventure_content": cleanAdventure,
	}))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if text := getResultText(result); !strings.Contains(text, "Story Flow Diagram") {
		t.Errorf("default format should be ascii, got %q", text)
	}
}

func TestVisualizeStoryFlowBadFormat(t *testing.T) {
	tool := NewFlowTool(zerolog.Nop())
	result, err := tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"adventure_content": cleanAdventure,
		"format":            "svg",
	}))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("expected error result for unsupported format")
	}
	if text := getResultText(result); !strings.Contains(text, "unsupported format") {
		t.Errorf("error text = %q", text)
	}
}

// --- analyze_choice_quality ---

func TestAnalyzeChoiceQuality(t *testing.T) {
	tool := NewChoicesTool(testConfig(), zerolog.Nop())
	result, err := tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"adventure_content": cleanAdventure,
	}))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	text := getResultText(result)
	if !strings.Contains(text, "Choice analysis:") || !strings.Contains(text, "issues found") {
		t.Errorf("summary wrong, got %q", text)
	}
	if !strings.Contains(text, "=== Choice Analysis Report ===") {
		t.Error("response missing the choice report")
	}
}

func TestAnalyzeChoiceQualityThresholdRange(t *testing.T) {
	tool := NewChoicesTool(testConfig(), zerolog.Nop())
	result, err := tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"adventure_content":    cleanAdventure,
		"min_impact_threshold": 1.5,
	}))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("expected error result for threshold out of range")
	}
	if text := getResultText(result); !strings.Contains(text, "between 0 and 1") {
		t.Errorf("error text = %q", text)
	}
}

// --- adventure_quality_report ---

func TestAdventureQualityReport(t *testing.T) {
	tool := NewQualityTool(testConfig(), zerolog.Nop())
	result, err := tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"adventure_content": cleanAdventure,
	}))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	text := getResultText(result)
	for _, want := range []string{
		"# Adventure Quality Report",
		"Overall quality",
		"6/6 stages passed",
		"## Pipeline Stages",
		"Validation passed: 0 errors, 0 warnings",
		"=== Adventure Quality Report ===",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("response missing %q", want)
		}
	}
	if strings.Contains(text, "## Fixes Applied") {
		t.Error("clean adventure should not need fixes")
	}
}

func TestAdventureQualityReportAppliesFixes(t *testing.T) {
	tool := NewQualityTool(testConfig(), zerolog.Nop())
	result, err := tool.Handle(context.Background(), callRequest(map[string]interface{}{
		"adventure_content": invalidAdventure,
	}))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	text := getResultText(result)
	if !strings.Contains(text, "## Fixes Applied") {
		t.Fatal("response missing the Fixes Applied section")
	}
	if !strings.Contains(text, "added default main menu") {
		t.Errorf("fix list wrong, got %q", text)
	}
	if !strings.Contains(text, "Validation passed") {
		t.Error("revalidation after fixes should pass")
	}
}
