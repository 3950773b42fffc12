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
	"github.com/questfoundry/advgraph/internal/replay"
)

// ReplayTool handles the score_replayability MCP tool. It measures
// path diversity, content variation, ending variety, and branching
// complexity to score how much the adventure rewards replaying.
type ReplayTool struct {
	cfg    config.Config
	logger zerolog.Logger
}

// NewReplayTool creates a ReplayTool.
func NewReplayTool(cfg config.Config, logger zerolog.Logger) *ReplayTool {
	return &ReplayTool{cfg: cfg, logger: logger}
}

// Definition returns the MCP tool definition for registration.
func (t *ReplayTool) Definition() mcp.Tool {
	return mcp.NewTool("score_replayability",
		mcp.WithDescription(
			"Analyze variation between playthroughs, branching complexity, and ending "+
				"variety to score how much the adventure rewards replaying. Includes "+
				"playthrough comparisons and replay incentive suggestions.",
		),
		mcp.WithString("adventure_content",
			mcp.Required(),
			mcp.Description("Full text of the adventure in .adv format."),
		),
	)
}

// Handle runs the replayability analysis and renders the response.
func (t *ReplayTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	runID := uuid.NewString()

	adv, parseIssues, errResult := requireAdventure(req)
	if errResult != nil {
		return errResult, nil
	}
	caps := t.cfg.Caps()

	a := replay.Analyze(adv, caps)
	summary := fmt.Sprintf("Replayability analysis: %.1f/10 overall score, %d unique paths",
		a.Overall, a.TotalPaths)

	var sb strings.Builder
	writeRunHeader(&sb, "Replayability Analysis", runID, summary)
	writeParseIssues(&sb, parseIssues)
	sb.WriteString("## Report\n\n")
	writeFenced(&sb, "", replay.Report(adv, caps))

	logRun(t.logger, "score_replayability", runID, start)
	return mcp.NewToolResultText(sb.String()), nil
}
