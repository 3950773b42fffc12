package flow

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/questfoundry/advgraph/internal/story"
)

// Export renders an adventure's flow in the named format: "ascii",
// "dot", "mermaid", or "json".
func Export(adv *story.Adventure, format string) (string, error) {
	v := Visualize(adv)
	switch strings.ToLower(format) {
	case "ascii":
		return v.ASCIIDiagram, nil
	case "dot":
		return v.DOTGraph, nil
	case "mermaid":
		return mermaidDiagram(v), nil
	case "json":
		return jsonExport(v)
	default:
		return "", fmt.Errorf("unsupported format %q", format)
	}
}

// asciiDiagram draws the graph level by level. Node content and choice
// descriptions are truncated so lines stay near maxWidth.
func asciiDiagram(v *Visualization, maxWidth int) string {
	if len(v.Nodes) == 0 {
		return "No nodes to visualize"
	}

	levels := make(map[int][]*Node)
	for _, n := range v.Nodes {
		levels[n.Level] = append(levels[n.Level], n)
	}
	order := make([]int, 0, len(levels))
	for level := range levels {
		order = append(order, level)
	}
	sort.Ints(order)

	lines := []string{"Story Flow Diagram", strings.Repeat("=", 20), ""}
	for _, level := range order {
		lines = append(lines, fmt.Sprintf("Level %d:", level), strings.Repeat("-", 8))

		for _, n := range levels[level] {
			line := nodeSymbol(n.Type) + " " + n.Label
			if n.Content != "" {
				limit := maxWidth - utf8.RuneCountInString(line) - 5
				content := n.Content
				if r := []rune(content); limit > 3 && len(r) > limit {
					content = string(r[:limit-3]) + "..."
				}
				line += " | " + content
			}
			lines = append(lines, "  "+line)

			for _, conn := range v.Connections {
				if conn.From != n.ID {
					continue
				}
				target := strings.ReplaceAll(conn.To, "STEP_", "Step ")
				target = strings.ReplaceAll(target, "ENDING_", "End: ")
				desc := truncate(conn.Description, 30)
				if conn.ChoiceLabel != "" {
					lines = append(lines, fmt.Sprintf("    [%s] %s → %s", conn.ChoiceLabel, desc, target))
				} else {
					lines = append(lines, fmt.Sprintf("    %s → %s", desc, target))
				}
			}
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func nodeSymbol(nodeType string) string {
	if nodeType == TypeEnding {
		return "◆"
	}
	return "●"
}

// dotGraph renders Graphviz DOT, steps as lightblue boxes and endings
// lightcoral.
func dotGraph(v *Visualization) string {
	lines := []string{
		"digraph StoryFlow {",
		"  rankdir=TB;",
		"  node [shape=box, style=rounded];",
		"  edge [fontsize=10];",
		"",
	}

	for _, n := range v.Nodes {
		label := strings.ReplaceAll(n.Label, `"`, `\"`)
		if n.Content != "" {
			content := clip(n.Content, 50)
			content = strings.ReplaceAll(content, `"`, `\"`)
			content = strings.ReplaceAll(content, "\n", `\n`)
			label += `\n` + content
		}
		lines = append(lines, fmt.Sprintf(`  "%s" [label="%s", %s];`, n.ID, label, dotNodeStyle(n.Type)))
	}
	lines = append(lines, "")

	for _, conn := range v.Connections {
		attr := ""
		if label := edgeLabel(conn, 20); label != "" {
			attr = `label="` + label + `"`
		}
		lines = append(lines, fmt.Sprintf(`  "%s" -> "%s" [%s];`, conn.From, conn.To, attr))
	}
	lines = append(lines, "}")
	return strings.Join(lines, "\n")
}

func dotNodeStyle(nodeType string) string {
	switch nodeType {
	case TypeStep:
		return "fillcolor=lightblue, style=filled"
	case TypeEnding:
		return "fillcolor=lightcoral, style=filled"
	}
	return ""
}

// edgeLabel joins a connection's choice label and truncated
// description into "A: desc" form.
func edgeLabel(conn Connection, descLimit int) string {
	label := conn.ChoiceLabel
	if conn.Description != "" {
		desc := truncate(conn.Description, descLimit)
		if label != "" {
			label += ": " + desc
		} else {
			label = desc
		}
	}
	return label
}

func mermaidDiagram(v *Visualization) string {
	lines := []string{"graph TD"}

	for _, n := range v.Nodes {
		left, right := mermaidShape(n.Type)
		id := strings.ReplaceAll(n.ID, "-", "_")
		label := strings.ReplaceAll(n.Label, `"`, "'")
		lines = append(lines, "  "+id+left+label+right)
	}

	for _, conn := range v.Connections {
		from := strings.ReplaceAll(conn.From, "-", "_")
		to := strings.ReplaceAll(conn.To, "-", "_")
		if label := edgeLabel(conn, 15); label != "" {
			lines = append(lines, fmt.Sprintf("  %s -->|%s| %s", from, label, to))
		} else {
			lines = append(lines, fmt.Sprintf("  %s --> %s", from, to))
		}
	}
	return strings.Join(lines, "\n")
}

func mermaidShape(nodeType string) (string, string) {
	if nodeType == TypeEnding {
		return "((", "))"
	}
	return "[", "]"
}

type exportDoc struct {
	Nodes       []*Node        `json:"nodes"`
	Connections []Connection   `json:"connections"`
	Metadata    exportMetadata `json:"metadata"`
}

type exportMetadata struct {
	Complexity      float64 `json:"complexity_score"`
	MaxDepth        int     `json:"max_depth"`
	NodeCount       int     `json:"node_count"`
	ConnectionCount int     `json:"connection_count"`
}

func jsonExport(v *Visualization) (string, error) {
	doc := exportDoc{
		Nodes:       v.Nodes,
		Connections: v.Connections,
		Metadata: exportMetadata{
			Complexity:      v.Complexity,
			MaxDepth:        v.MaxDepth,
			NodeCount:       len(v.Nodes),
			ConnectionCount: len(v.Connections),
		},
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding flow export: %w", err)
	}
	return string(out), nil
}
