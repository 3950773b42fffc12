package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/questfoundry/advgraph/internal/config"
	"github.com/questfoundry/advgraph/internal/pipeline"
)

// QualityTool handles the adventure_quality_report MCP tool. It runs
// the full analysis pipeline over the adventure and renders the stage
// outcomes, the fixes applied, and the combined quality report.
type QualityTool struct {
	cfg    config.Config
	logger zerolog.Logger
}

// NewQualityTool creates a QualityTool.
func NewQualityTool(cfg config.Config, logger zerolog.Logger) *QualityTool {
	return &QualityTool{cfg: cfg, logger: logger}
}

// Definition returns the MCP tool definition for registration.
func (t *QualityTool) Definition() mcp.Tool {
	return mcp.NewTool("adventure_quality_report",
		mcp.WithDescription(
			"Run the full analysis pipeline over the adventure: validation with automatic "+
				"fixes, branch pruning, ending optimization, choice analysis, replayability "+
				"scoring, and flow visualization. Returns the stage outcomes and the combined "+
				"quality report.",
		),
		mcp.WithString("adventure_content",
			mcp.Required(),
			mcp.Description("Full text of the adventure in .adv format."),
		),
	)
}

// Handle runs the pipeline and renders the response.
func (t *QualityTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	runID := uuid.NewString()

	adv, parseIssues, errResult := requireAdventure(req)
	if errResult != nil {
		return errResult, nil
	}
	caps := t.cfg.Caps()

	result := pipeline.Run(adv, caps)
	passed := 0
	for _, stage := range result.Stages {
		if stage.Success {
			passed++
		}
	}
	summary := fmt.Sprintf("Overall quality %.1f/10, %d/%d stages passed",
		result.OverallQuality, passed, len(result.Stages))

	var sb strings.Builder
	writeRunHeader(&sb, "Adventure Quality Report", runID, summary)
	writeParseIssues(&sb, parseIssues)
	sb.WriteString("## Pipeline Stages\n\n")
	for _, stage := range result.Stages {
		fmt.Fprintf(&sb, "- %s: %s\n", stage.Name, stage.Summary)
	}
	if len(result.FixesApplied) > 0 {
		sb.WriteString("\n## Fixes Applied\n\n")
		for _, fix := range result.FixesApplied {
			fmt.Fprintf(&sb, "- %s\n", fix)
		}
	}
	sb.WriteString("\n## Report\n\n")
	writeFenced(&sb, "", pipeline.QualityReport(result.Optimized, caps))

	logRun(t.logger, "adventure_quality_report", runID, start)
	return mcp.NewToolResultText(sb.String()), nil
}
