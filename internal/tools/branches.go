package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/questfoundry/advgraph/internal/advfile"
	"github.com/questfoundry/advgraph/internal/pruner"
)

// BranchesTool handles the analyze_branches MCP tool. It reports dead
// ends, unreachable steps, and orphaned choices, and optionally prunes
// them from the story tree.
type BranchesTool struct {
	logger zerolog.Logger
}

// NewBranchesTool creates a BranchesTool.
func NewBranchesTool(logger zerolog.Logger) *BranchesTool {
	return &BranchesTool{logger: logger}
}

// Definition returns the MCP tool definition for registration.
func (t *BranchesTool) Definition() mcp.Tool {
	return mcp.NewTool("analyze_branches",
		mcp.WithDescription(
			"Identify dead ends, unreachable steps, and orphaned choices in the story "+
				"tree. Set prune to apply the automatic repairs and get back the optimized "+
				"adventure in .adv format.",
		),
		mcp.WithString("adventure_content",
			mcp.Required(),
			mcp.Description("Full text of the adventure in .adv format."),
		),
		mcp.WithBoolean("prune",
			mcp.Description("Apply the repairs instead of only reporting them (default: false)."),
		),
	)
}

// Handle runs the branch analysis and renders the response.
func (t *BranchesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	runID := uuid.NewString()

	adv, parseIssues, errResult := requireAdventure(req)
	if errResult != nil {
		return errResult, nil
	}
	prune := boolArg(req, "prune", false)

	var sb strings.Builder
	if prune {
		result := pruner.Prune(adv)
		summary := fmt.Sprintf("Pruned %d dead ends, removed %d unreachable steps",
			len(result.Before.DeadEnds), len(result.Before.UnreachableSteps))
		writeRunHeader(&sb, "Branch Analysis", runID, summary)
		writeParseIssues(&sb, parseIssues)
		sb.WriteString("## Report\n\n")
		writeFenced(&sb, "", pruner.Report(adv))
		sb.WriteString("\n## Optimized Adventure\n\n")
		writeFenced(&sb, "", advfile.Write(result.Optimized))
	} else {
		a := pruner.Analyze(adv)
		summary := fmt.Sprintf("Found %d dead ends, %d unreachable steps, %d orphaned choices",
			len(a.DeadEnds), len(a.UnreachableSteps), len(a.OrphanedChoices))
		writeRunHeader(&sb, "Branch Analysis", runID, summary)
		writeParseIssues(&sb, parseIssues)
		sb.WriteString("## Report\n\n")
		writeFenced(&sb, "", pruner.Report(adv))
	}

	logRun(t.logger, "analyze_branches", runID, start)
	return mcp.NewToolResultText(sb.String()), nil
}
