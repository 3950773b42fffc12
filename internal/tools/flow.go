package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/questfoundry/advgraph/internal/flow"
)

// FlowTool handles the visualize_story_flow MCP tool. It renders the
// story graph as a flow diagram in one of the supported formats.
type FlowTool struct {
	logger zerolog.Logger
}

// NewFlowTool creates a FlowTool.
func NewFlowTool(logger zerolog.Logger) *FlowTool {
	return &FlowTool{logger: logger}
}

// Definition returns the MCP tool definition for registration.
func (t *FlowTool) Definition() mcp.Tool {
	return mcp.NewTool("visualize_story_flow",
		mcp.WithDescription(
			"Generate a visual story map for debugging complex narratives: an ASCII flow "+
				"chart, a Graphviz dot graph, a Mermaid flowchart, or structured JSON.",
		),
		mcp.WithString("adventure_content",
			mcp.Required(),
			mcp.Description("Full text of the adventure in .adv format."),
		),
		mcp.WithString("format",
			mcp.Description("Output format for the diagram."),
			mcp.DefaultString("ascii"),
			mcp.Enum("ascii", "dot", "mermaid", "json"),
		),
	)
}

// Handle renders the flow diagram and the structural insights.
func (t *FlowTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start := time.Now()
	runID := uuid.NewString()

	adv, parseIssues, errResult := requireAdventure(req)
	if errResult != nil {
		return errResult, nil
	}
	format := strings.ToLower(req.GetString("format", "ascii"))

	diagram, err := flow.Export(adv, format)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v := flow.Visualize(adv)
	summary := fmt.Sprintf("Flow visualization generated: %d nodes, %d connections, complexity %.1f",
		len(v.Nodes), len(v.Connections), v.Complexity)

	lang := format
	if format == "ascii" {
		lang = ""
	}

	var sb strings.Builder
	writeRunHeader(&sb, "Story Flow Visualization", runID, summary)
	writeParseIssues(&sb, parseIssues)
	sb.WriteString("## Diagram\n\n")
	writeFenced(&sb, lang, diagram)
	if insights := flow.Insights(v); len(insights) > 0 {
		sb.WriteString("\n## Insights\n\n")
		for _, insight := range insights {
			fmt.Fprintf(&sb, "- %s\n", insight)
		}
	}

	logRun(t.logger, "visualize_story_flow", runID, start)
	return mcp.NewToolResultText(sb.String()), nil
}
