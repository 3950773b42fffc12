// Package prompts implements MCP prompt handlers for adventure
// analysis.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// reviewFocuses maps each focus argument to the tools the review
// should lean on.
var reviewFocuses = map[string]string{
	"structure":     "analyze_branches and visualize_story_flow",
	"endings":       "optimize_endings",
	"choices":       "analyze_choice_quality",
	"replayability": "score_replayability",
	"full":          "every analysis tool",
}

// ReviewPrompt handles the review_adventure MCP prompt. It guides the
// AI through a structured review of an adventure file.
type ReviewPrompt struct{}

// NewReviewPrompt creates a ReviewPrompt.
func NewReviewPrompt() *ReviewPrompt {
	return &ReviewPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *ReviewPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("review_adventure",
		mcp.WithPromptDescription(
			"Review an adventure file end to end. "+
				"This walks through validation, structural analysis, and quality "+
				"scoring, and turns the findings into concrete edit suggestions.",
		),
		mcp.WithArgument("focus",
			mcp.ArgumentDescription(
				"Area to focus on: 'structure' (dead ends and flow), 'endings', "+
					"'choices', 'replayability', or 'full' (everything). Default: full",
			),
		),
	)
}

// Handle processes the review_adventure prompt request.
func (p *ReviewPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	focus := "full"
	if args := req.Params.Arguments; args != nil {
		if f, ok := args["focus"]; ok && f != "" {
			if _, known := reviewFocuses[f]; known {
				focus = f
			}
		}
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Review adventure (focus: %s)", focus),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I want a review of my adventure file with a focus on %s.\n\n"+
						"Please:\n"+
						"1. Ask me for the adventure content if I haven't pasted it yet "+
						"(the advgraph://format/adv resource describes the format, and "+
						"advgraph://examples/demo is a working example)\n"+
						"2. Run `validate_adventure` first and stop to show me any errors before going on\n"+
						"3. Run %s over the adventure\n"+
						"4. Finish with `adventure_quality_report` for the overall picture\n"+
						"5. Summarize the findings as a short list of concrete edits, ordered by impact, "+
						"quoting the step or ending each edit applies to\n\n"+
						"Keep the raw tool reports out of your summary unless I ask for them.",
					focus, reviewFocuses[focus],
				)),
			},
		},
	}, nil
}
