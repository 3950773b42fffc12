// Package tools implements the MCP tool handlers for adventure analysis.
//
// Each tool is a struct that receives its dependencies at construction
// and exposes a Definition for registration plus a Handle compatible
// with mcp-go's CallToolRequest signature. One file per tool.
//
// Every handler follows the same shape: parse the adventure text from
// the request, run the analysis packages over it, and render a markdown
// response that carries a run ID, a one-line summary, any parse issues,
// and the full report in a fenced block. Handlers never log to stdout;
// the stdio transport owns it.
package tools

import (
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/questfoundry/advgraph/internal/advfile"
	"github.com/questfoundry/advgraph/internal/story"
)

// boolArg reads an optional boolean argument. Missing or mistyped
// values return the fallback.
func boolArg(req mcp.CallToolRequest, key string, fallback bool) bool {
	if v, ok := req.GetArguments()[key].(bool); ok {
		return v
	}
	return fallback
}

// requireAdventure pulls adventure_content from the request and parses
// it. A missing or blank argument yields a non-nil error result that
// the handler returns as-is; parse issues are reported alongside the
// adventure, which is always usable.
func requireAdventure(req mcp.CallToolRequest) (*story.Adventure, []advfile.Issue, *mcp.CallToolResult) {
	content := req.GetString("adventure_content", "")
	if strings.TrimSpace(content) == "" {
		return nil, nil, mcp.NewToolResultError(
			"'adventure_content' is required - pass the full text of the adventure in .adv format")
	}
	adv, issues := advfile.Parse(content)
	return adv, issues, nil
}

// writeRunHeader opens a tool response: title, run ID, summary line.
func writeRunHeader(sb *strings.Builder, title, runID, summary string) {
	fmt.Fprintf(sb, "# %s\n\n", title)
	fmt.Fprintf(sb, "Run ID: `%s`\n\n", runID)
	sb.WriteString(summary)
	sb.WriteString("\n\n")
}

// writeParseIssues appends a Parse Issues section when the .adv text
// did not parse cleanly. Writes nothing for a clean parse.
func writeParseIssues(sb *strings.Builder, issues []advfile.Issue) {
	if len(issues) == 0 {
		return
	}
	sb.WriteString("## Parse Issues\n\n")
	for _, issue := range issues {
		fmt.Fprintf(sb, "- %s\n", issue)
	}
	sb.WriteString("\n")
}

// writeFenced appends content inside a code fence. lang may be empty
// for plain-text reports.
func writeFenced(sb *strings.Builder, lang, content string) {
	fmt.Fprintf(sb, "```%s\n", lang)
	sb.WriteString(content)
	if !strings.HasSuffix(content, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString("```\n")
}

// logRun emits the per-run log line every tool ends with.
func logRun(logger zerolog.Logger, tool, runID string, start time.Time) {
	logger.Info().
		Str("tool", tool).
		Str("run_id", runID).
		Dur("duration", time.Since(start)).
		Msg("tool run complete")
}
