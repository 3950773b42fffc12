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
	"github.com/questfoundry/advgraph/internal/config"
	"github.com/questfoundry/advgraph/internal/endings"
)

// EndingsTool handles the optimize_endings MCP tool. It scores the
// balance, accessibility, and differentiation of the endings and
// optionally applies the mechanical optimization suggestions.
type EndingsTool struct {
	cfg    config.Config
	logger zerolog.Logger
}

// NewEndingsTool creates an EndingsTool.
func NewEndingsTool(cfg config.Config, logger zerolog.Logger) *EndingsTool {
	return &EndingsTool{cfg: cfg, logger: logger}
}

// Definition returns the MCP tool definition for registration.
func (t *EndingsTool) Definition() mcp.Tool {
	return mcp.NewTool("optimize_endings",
		mcp.WithDescription(
			"Balance the distribution of success, failure, and neutral outcomes and check "+
				"that every ending is reachable and meaningfully different. Set apply to "+
				"rewrite the adventure with the mechanical suggestions applied.",
		),
		mcp.WithString("adventure_content",
			mcp.Required(),
			mcp.Description("Full text of the adventure in .adv format."),
		),
		mcp.WithBoolean("apply",
			mcp.Description("Apply the suggestions instead of only listing them (default: false)."),
		),
	)
}

// Handle runs the ending analysis and renders the response.
func (t *EndingsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	runID := uuid.NewString()

	adv, parseIssues, errResult := requireAdventure(req)
	if errResult != nil {
		return errResult, nil
	}
	apply := boolArg(req, "apply", false)
	caps := t.cfg.Caps()

	var sb strings.Builder
	if apply {
		result := endings.Optimize(adv, caps)
		summary := fmt.Sprintf("Ending optimization: %.1f/10 overall score, %d suggestions applied",
			result.After.OverallScore, len(result.Suggestions))
		writeRunHeader(&sb, "Ending Optimization", runID, summary)
		writeParseIssues(&sb, parseIssues)
		sb.WriteString("## Report\n\n")
		writeFenced(&sb, "", endings.Report(adv, caps))
		sb.WriteString("\n## Optimized Adventure\n\n")
		writeFenced(&sb, "", advfile.Write(result.Optimized))
	} else {
		a := endings.Analyze(adv, caps)
		suggestions := endings.Suggest(adv, a)
		summary := fmt.Sprintf("Ending analysis: %.1f/10 overall score, %d suggestions available",
			a.OverallScore, len(suggestions))
		writeRunHeader(&sb, "Ending Optimization", runID, summary)
		writeParseIssues(&sb, parseIssues)
		sb.WriteString("## Report\n\n")
		writeFenced(&sb, "", endings.Report(adv, caps))
	}

	logRun(t.logger, "optimize_endings", runID, start)
	return mcp.NewToolResultText(sb.String()), nil
}
