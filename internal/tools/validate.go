package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/questfoundry/advgraph/internal/validator"
)

// ValidateTool handles the validate_adventure MCP tool. It checks an
// adventure in .adv format for structural errors and content warnings
// and renders the full validation report.
type ValidateTool struct {
	logger zerolog.Logger
}

// NewValidateTool creates a ValidateTool.
func NewValidateTool(logger zerolog.Logger) *ValidateTool {
	return &ValidateTool{logger: logger}
}

// Definition returns the MCP tool definition for registration.
func (t *ValidateTool) Definition() mcp.Tool {
	return mcp.NewTool("validate_adventure",
		mcp.WithDescription(
			"Validate an adventure in .adv format against the game engine requirements: "+
				"required sections, step numbering, choice targets, ending definitions, and "+
				"story flow. Returns a validation report listing every error and warning.",
		),
		mcp.WithString("adventure_content",
			mcp.Required(),
			mcp.Description("Full text of the adventure in .adv format."),
		),
		mcp.WithBoolean("strict_mode",
			mcp.Description("Treat warnings as failures (default: true)."),
		),
	)
}

// Handle runs the validation and renders the response.
func (t *ValidateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	runID := uuid.NewString()

	adv, parseIssues, errResult := requireAdventure(req)
	if errResult != nil {
		return errResult, nil
	}
	strict := boolArg(req, "strict_mode", true)

	result := validator.Validate(adv)
	passed := result.Valid
	if strict {
		passed = result.StrictValid()
	}
	verdict := "passed"
	if !passed {
		verdict = "failed"
	}
	summary := fmt.Sprintf("Validation %s: %d errors, %d warnings",
		verdict, len(result.Errors), len(result.Warnings))
	if strict && result.Valid && !result.StrictValid() {
		summary += " (strict mode)"
	}

	var sb strings.Builder
	writeRunHeader(&sb, "Adventure Validation", runID, summary)
	writeParseIssues(&sb, parseIssues)
	sb.WriteString("## Report\n\n")
	writeFenced(&sb, "", validator.Report(adv))

	logRun(t.logger, "validate_adventure", runID, start)
	return mcp.NewToolResultText(sb.String()), nil
}
