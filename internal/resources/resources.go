// Package resources implements MCP resource handlers for adventure
// analysis.
//
// Resources provide read-only reference data that the host can consume
// for context. They use URI-based addressing (advgraph://...) following
// MCP conventions. Both resources are embedded at build time, so the
// server needs nothing on disk to serve them.
package resources

import (
	"context"
	_ "embed"

	"github.com/mark3labs/mcp-go/mcp"
)

//go:embed format.md
var formatReference string

//go:embed demo.adv
var demoAdventure string

// Handler manages the adventure reference resource endpoints.
type Handler struct{}

// NewHandler creates a resource Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// FormatResource returns the MCP resource definition for the .adv
// format reference.
func (h *Handler) FormatResource() mcp.Resource {
	return mcp.NewResource(
		"advgraph://format/adv",
		"ADV Format Reference",
		mcp.WithResourceDescription("Reference for the .adv adventure file format: sections, steps, choices, conditions, and endings"),
		mcp.WithMIMEType("text/markdown"),
	)
}

// HandleFormat returns the embedded format reference.
func (h *Handler) HandleFormat(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     formatReference,
		},
	}, nil
}

// DemoResource returns the MCP resource definition for the sample
// adventure.
func (h *Handler) DemoResource() mcp.Resource {
	return mcp.NewResource(
		"advgraph://examples/demo",
		"Demo Adventure",
		mcp.WithResourceDescription("A small complete adventure in .adv format, useful as tool input or as a template"),
		mcp.WithMIMEType("text/plain"),
	)
}

// HandleDemo returns the embedded sample adventure.
func (h *Handler) HandleDemo(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     demoAdventure,
		},
	}, nil
}
