// Package flow turns a story into a renderable node and edge graph:
// steps and endings become leveled nodes, choices become labeled
// connections. The graph renders to ASCII, Graphviz DOT, Mermaid, and
// JSON, and carries a structural complexity score alongside.
package flow

import (
	"math"
	"sort"
	"strings"

	"github.com/questfoundry/advgraph/internal/story"
)

// Node types.
const (
	TypeStep   = "step"
	TypeEnding = "ending"
)

// DefaultMaxWidth caps ASCII diagram line width.
const DefaultMaxWidth = 120

// nodeContentLimit is how much step or ending text a node carries.
const nodeContentLimit = 100

// Position is a node's diagram coordinate, spaced 20 wide within a
// level and 10 deep between levels.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Node is one element of the flow graph: a step or an ending.
type Node struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Label    string   `json:"label"`
	Content  string   `json:"content"`
	Level    int      `json:"level"`
	Position Position `json:"position"`
}

// Connection is one choice edge. To is the choice target verbatim,
// whether or not it resolves to a node, so dangling references stay
// visible in every rendering.
type Connection struct {
	From        string   `json:"from"`
	To          string   `json:"to"`
	ChoiceLabel string   `json:"choice_label"`
	Description string   `json:"description"`
	Conditions  []string `json:"conditions"`
}

// Visualization is a fully rendered flow graph.
type Visualization struct {
	Nodes        []*Node      `json:"nodes"`
	Connections  []Connection `json:"connections"`
	ASCIIDiagram string       `json:"ascii_diagram"`
	DOTGraph     string       `json:"dot_graph"`
	Complexity   float64      `json:"complexity_score"`
	MaxDepth     int          `json:"max_depth"`

	index map[string]*Node
}

// Node returns the node with the given id, or nil.
func (v *Visualization) Node(id string) *Node {
	return v.index[id]
}

// Visualize builds the flow graph for an adventure, lays it out, and
// renders the ASCII and DOT forms. Steps are added in sorted id order,
// then endings in sorted kind order, so output is deterministic.
func Visualize(adv *story.Adventure) *Visualization {
	v := &Visualization{
		Nodes:       []*Node{},
		Connections: []Connection{},
		index:       make(map[string]*Node),
	}

	build(v, adv)
	layout(v)

	v.ASCIIDiagram = asciiDiagram(v, DefaultMaxWidth)
	v.DOTGraph = dotGraph(v)
	v.Complexity = complexity(v)
	v.MaxDepth = maxDepth(v)
	return v
}

func build(v *Visualization, adv *story.Adventure) {
	for _, id := range adv.SortedStepIDs() {
		step := adv.Steps[id]
		v.add(&Node{
			ID:      story.StepTarget(id),
			Type:    TypeStep,
			Label:   "Step " + id,
			Content: truncate(step.Narrative, nodeContentLimit),
		})
	}
	kinds := make([]string, 0, len(adv.Endings))
	for kind := range adv.Endings {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		v.add(&Node{
			ID:      story.EndingTarget(kind),
			Type:    TypeEnding,
			Label:   "Ending: " + titleKind(kind),
			Content: truncate(adv.Endings[kind], nodeContentLimit),
		})
	}

	for _, id := range adv.SortedStepIDs() {
		from := story.StepTarget(id)
		for _, c := range adv.Steps[id].Choices {
			v.Connections = append(v.Connections, Connection{
				From:        from,
				To:          c.Target,
				ChoiceLabel: string(c.Label),
				Description: c.Description,
				Conditions:  append([]string{}, c.Conditions...),
			})
		}
	}
}

func (v *Visualization) add(n *Node) {
	v.Nodes = append(v.Nodes, n)
	v.index[n.ID] = n
}

// layout assigns BFS levels from step 1 (or the first node when step 1
// is absent) and positions nodes within each level. A node reached
// from two levels keeps the first level but the last position.
// Connection targets that are not nodes are skipped.
func layout(v *Visualization) {
	if len(v.Nodes) == 0 {
		return
	}

	start := story.StepTarget(story.StartStepID)
	if v.index[start] == nil {
		start = v.Nodes[0].ID
	}

	visited := make(map[string]bool)
	var levels [][]string
	current := []string{start}

	for len(current) > 0 {
		level := len(levels)
		levels = append(levels, current)

		var next []string
		for _, id := range current {
			if visited[id] {
				continue
			}
			visited[id] = true
			v.index[id].Level = level

			for _, conn := range v.Connections {
				if conn.From != id || v.index[conn.To] == nil {
					continue
				}
				if !visited[conn.To] && !contains(next, conn.To) {
					next = append(next, conn.To)
				}
			}
		}
		current = next
	}

	for level, ids := range levels {
		for i, id := range ids {
			v.index[id].Position = Position{X: i * 20, Y: level * 10}
		}
	}
}

// complexity scores structural complexity 0 to 10 from node count,
// connection density, per-step branching, and depth.
func complexity(v *Visualization) float64 {
	if len(v.Nodes) == 0 {
		return 0
	}

	nodes := float64(len(v.Nodes))
	conns := float64(len(v.Connections))

	score := math.Min(3, nodes*0.2)
	score += math.Min(3, conns/nodes*1.5)
	if steps := v.countType(TypeStep); steps > 0 {
		score += math.Min(2, conns/float64(steps)*0.5)
	}
	score += math.Min(2, float64(maxDepth(v))*0.2)
	return math.Min(10, score)
}

func maxDepth(v *Visualization) int {
	depth := 0
	for _, n := range v.Nodes {
		if n.Level > depth {
			depth = n.Level
		}
	}
	return depth
}

// ─── Private Helpers ─────────────────────────────────────────────────

func (v *Visualization) countType(nodeType string) int {
	count := 0
	for _, n := range v.Nodes {
		if n.Type == nodeType {
			count++
		}
	}
	return count
}

// outDegrees counts outgoing connections per source node.
func outDegrees(v *Visualization) map[string]int {
	counts := make(map[string]int)
	for _, conn := range v.Connections {
		counts[conn.From]++
	}
	return counts
}

// truncate cuts s to limit runes and marks the cut with an ellipsis.
func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}

// clip cuts s to limit runes with no ellipsis.
func clip(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

// titleKind renders an ending kind for display, "success" to
// "Success".
func titleKind(kind string) string {
	if kind == "" {
		return kind
	}
	r := []rune(kind)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}

func sortedKeys(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
