// Package server wires all MCP components and creates the server
// instance.
//
// This is the composition root: it creates the concrete tool, prompt,
// and resource handlers and injects their dependencies. No analysis
// logic lives here, only wiring.
package server

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/questfoundry/advgraph/internal/config"
	"github.com/questfoundry/advgraph/internal/prompts"
	"github.com/questfoundry/advgraph/internal/resources"
	"github.com/questfoundry/advgraph/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. This is the single place where all
// dependencies are resolved. The logger should write to stderr; the
// stdio transport owns stdout.
func New(cfg config.Config, logger zerolog.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"advgraph",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register analysis tools ---

	validateTool := tools.NewValidateTool(logger)
	s.AddTool(validateTool.Definition(), validateTool.Handle)

	branchesTool := tools.NewBranchesTool(logger)
	s.AddTool(branchesTool.Definition(), branchesTool.Handle)

	endingsTool := tools.NewEndingsTool(cfg, logger)
	s.AddTool(endingsTool.Definition(), endingsTool.Handle)

	replayTool := tools.NewReplayTool(cfg, logger)
	s.AddTool(replayTool.Definition(), replayTool.Handle)

	flowTool := tools.NewFlowTool(logger)
	s.AddTool(flowTool.Definition(), flowTool.Handle)

	choicesTool := tools.NewChoicesTool(cfg, logger)
	s.AddTool(choicesTool.Definition(), choicesTool.Handle)

	qualityTool := tools.NewQualityTool(cfg, logger)
	s.AddTool(qualityTool.Definition(), qualityTool.Handle)

	// --- Register prompts ---

	reviewPrompt := prompts.NewReviewPrompt()
	s.AddPrompt(reviewPrompt.Definition(), reviewPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler()
	s.AddResource(resourceHandler.FormatResource(), resourceHandler.HandleFormat)
	s.AddResource(resourceHandler.DemoResource(), resourceHandler.HandleDemo)

	return s
}

// serverInstructions returns the system instructions that tell the AI
// how to use the analysis tools effectively.
func serverInstructions() string {
	return `You have access to advgraph, an MCP server that analyzes branching
adventure stories in the .adv format.

## WHEN TO USE advgraph

Use these tools whenever the user:
- Shares or writes a .adv adventure file and wants feedback
- Asks whether their story "works", "hangs together", or "is finished"
- Reports that players get stuck, hit dead ends, or always reach the
  same ending
- Wants a map or diagram of their story structure
- Asks how replayable or balanced their adventure is

The adventure text itself is always passed in the adventure_content
argument; the server never reads files.

## THE TOOLS

- validate_adventure: structural errors and content warnings. Run this
  FIRST; the other analyses are only as good as the structure under
  them. strict_mode (default true) treats warnings as failures.
- analyze_branches: dead ends, unreachable steps, orphaned choices.
  With prune=true it also returns a repaired copy of the adventure.
- optimize_endings: success/failure/neutral balance, ending
  accessibility, and differentiation. With apply=true it returns the
  adventure with the mechanical suggestions applied.
- analyze_choice_quality: whether choices actually change anything,
  scored per step; min_impact_threshold tunes how strict the
  low-impact flagging is.
- score_replayability: path diversity, content variation, and ending
  variety across all playthroughs.
- visualize_story_flow: the story graph as ascii, dot, mermaid, or
  json.
- adventure_quality_report: the full pipeline in one call, with an
  overall 0-10 score.

## RECOMMENDED FLOW

1. validate_adventure, and stop on errors: show them to the user with
   the fix for each before running anything else.
2. For a general review, adventure_quality_report; for a specific
   complaint, the matching single tool.
3. When a tool returns an "Optimized Adventure" section, offer the
   rewritten .adv to the user but never present it as applied; they
   decide what to keep.
4. Translate scores for the user: 8+ is shippable, 5-8 has named
   weaknesses worth fixing, below 5 needs structural work.

## RESOURCES

- advgraph://format/adv: the .adv format reference. Consult it before
  editing or generating adventure text.
- advgraph://examples/demo: a small complete adventure that parses and
  validates cleanly. Useful as a template or as sample tool input.

## LIMITS

The analyses are structural, not editorial. They can prove an ending
unreachable or a choice inconsequential; they cannot judge prose. Keep
narrative quality judgments your own, grounded in the structural
findings.`
}
