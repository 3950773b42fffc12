package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/questfoundry/advgraph/internal/choices"
	"github.com/questfoundry/advgraph/internal/config"
)

// ChoicesTool handles the analyze_choice_quality MCP tool. It verifies
// that choices lead to meaningfully different outcomes and scores
// choice impact and player agency across the adventure.
type ChoicesTool struct {
	cfg    config.Config
	logger zerolog.Logger
}

// NewChoicesTool creates a ChoicesTool.
func NewChoicesTool(cfg config.Config, logger zerolog.Logger) *ChoicesTool {
	return &ChoicesTool{cfg: cfg, logger: logger}
}

// Definition returns the MCP tool definition for registration.
func (t *ChoicesTool) Definition() mcp.Tool {
	return mcp.NewTool("analyze_choice_quality",
		mcp.WithDescription(
			"Verify that choices lead to meaningfully different outcomes, check choice "+
				"descriptions and consequences, and score choice impact and player agency.",
		),
		mcp.WithString("adventure_content",
			mcp.Required(),
			mcp.Description("Full text of the adventure in .adv format."),
		),
		mcp.WithNumber("min_impact_threshold",
			mcp.Description("Impact score below which a choice is flagged, 0 to 1 (default: 0.3)."),
		),
	)
}

// Handle runs the choice analysis and renders the response.
func (t *ChoicesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	runID := uuid.NewString()

	adv, parseIssues, errResult := requireAdventure(req)
	if errResult != nil {
		return errResult, nil
	}
	minImpact := req.GetFloat("min_impact_threshold", t.cfg.MinImpact)
	if minImpact < 0 || minImpact > 1 {
		return mcp.NewToolResultError("'min_impact_threshold' must be between 0 and 1"), nil
	}

	a := choices.Analyze(adv)
	issues := choices.Issues(adv, a, minImpact)
	summary := fmt.Sprintf("Choice analysis: %.1f/10 overall score, %d issues found",
		a.Overall, len(issues))

	var sb strings.Builder
	writeRunHeader(&sb, "Choice Quality Analysis", runID, summary)
	writeParseIssues(&sb, parseIssues)
	sb.WriteString("## Report\n\n")
	writeFenced(&sb, "", choices.Report(adv, minImpact))

	logRun(t.logger, "analyze_choice_quality", runID, start)
	return mcp.NewToolResultText(sb.String()), nil
}
