// Package graph implements the traversal algorithms every analysis
// stage builds on: adjacency construction, reachability, ending-path
// search, dead-end and orphan detection, bounded path enumeration, and
// the critical path.
//
// All functions are total over malformed input. A target that names a
// missing step or an unknown ending flows through as data; detection
// functions report it, nothing returns an error or panics on it.
package graph

import (
	"fmt"

	"github.com/questfoundry/advgraph/internal/story"
)

// Caps bounds path enumeration so cyclic or heavily branching stories
// cannot blow up time or memory. Both limits are mandatory; Normalize
// substitutes the defaults for non-positive values.
type Caps struct {
	MaxPathLength int
	MaxPaths      int
}

// DefaultCaps returns the standard enumeration bounds.
func DefaultCaps() Caps {
	return Caps{MaxPathLength: 20, MaxPaths: 100}
}

// Normalize replaces non-positive limits with the defaults.
func (c Caps) Normalize() Caps {
	d := DefaultCaps()
	if c.MaxPathLength <= 0 {
		c.MaxPathLength = d.MaxPathLength
	}
	if c.MaxPaths <= 0 {
		c.MaxPaths = d.MaxPaths
	}
	return c
}

// Path is one complete playthrough from the start step to an ending.
// Choices holds "step:LABEL" entries in traversal order; Ending is the
// lower-cased ending kind the path terminates in.
type Path struct {
	Steps   []string `json:"steps"`
	Choices []string `json:"choices"`
	Ending  string   `json:"ending"`
}

// ChoiceRef points at a single choice within a step.
type ChoiceRef struct {
	StepID string            `json:"step_id"`
	Index  int               `json:"index"`
	Label  story.ChoiceLabel `json:"label"`
	Target string            `json:"target"`
}

// String renders the reference in step:label form, "3:B".
func (r ChoiceRef) String() string {
	return fmt.Sprintf("%s:%s", r.StepID, r.Label)
}

// Build constructs the step adjacency: each step id maps to its choice
// targets, deduplicated in first-seen order. Targets are copied through
// verbatim, step references and ending tags mixed, with no validation.
func Build(adv *story.Adventure) map[string][]string {
	g := make(map[string][]string, len(adv.Steps))
	for id, step := range adv.Steps {
		seen := make(map[string]bool, len(step.Choices))
		targets := make([]string, 0, len(step.Choices))
		for _, c := range step.Choices {
			if seen[c.Target] {
				continue
			}
			seen[c.Target] = true
			targets = append(targets, c.Target)
		}
		g[id] = targets
	}
	return g
}

// Reachable walks the adjacency from start and returns the set of step
// ids that can be visited. Ending targets are terminal and never appear
// in the result; targets naming steps outside the adjacency are
// ignored. A start id missing from the adjacency yields an empty set.
func Reachable(g map[string][]string, start string) map[string]bool {
	visited := make(map[string]bool)
	if _, ok := g[start]; !ok {
		return visited
	}

	stack := []string{start}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[current] {
			continue
		}
		visited[current] = true

		for _, target := range g[current] {
			next, ok := story.TargetStepID(target)
			if !ok {
				continue
			}
			if _, exists := g[next]; exists && !visited[next] {
				stack = append(stack, next)
			}
		}
	}
	return visited
}

// HasPathToEnding reports whether any route from stepID reaches an
// ending target. The visiting set is copied per call, so sibling
// branches explore independently: a step excluded on one branch by a
// cycle is still tried from another. Pass nil to start a fresh search.
func HasPathToEnding(stepID string, g map[string][]string, visiting map[string]bool) bool {
	if visiting[stepID] {
		return false
	}

	branch := make(map[string]bool, len(visiting)+1)
	for id := range visiting {
		branch[id] = true
	}
	branch[stepID] = true

	for _, target := range g[stepID] {
		if story.IsEndingTarget(target) {
			return true
		}
		if next, ok := story.TargetStepID(target); ok {
			if HasPathToEnding(next, g, branch) {
				return true
			}
		}
	}
	return false
}

// EndingsFrom returns the set of ending targets reachable from stepID,
// keyed by the verbatim target string. The visiting set is copied per
// branch exactly as HasPathToEnding copies it. Pass nil to start a
// fresh search.
func EndingsFrom(stepID string, g map[string][]string, visiting map[string]bool) map[string]bool {
	endings := make(map[string]bool)
	if visiting[stepID] {
		return endings
	}

	branch := make(map[string]bool, len(visiting)+1)
	for id := range visiting {
		branch[id] = true
	}
	branch[stepID] = true

	for _, target := range g[stepID] {
		if story.IsEndingTarget(target) {
			endings[target] = true
			continue
		}
		if next, ok := story.TargetStepID(target); ok {
			for e := range EndingsFrom(next, g, branch) {
				endings[e] = true
			}
		}
	}
	return endings
}

// DeadEnds returns the steps a player can get stuck at: steps with no
// outgoing targets, and steps from which no route reaches any ending.
// The result is ordered numerically.
func DeadEnds(adv *story.Adventure, g map[string][]string) []string {
	var dead []string
	for id := range adv.Steps {
		if len(g[id]) == 0 || !HasPathToEnding(id, g, nil) {
			dead = append(dead, id)
		}
	}
	story.SortStepIDs(dead)
	return dead
}

// Unreachable returns the steps the start step cannot reach, ordered
// numerically.
func Unreachable(adv *story.Adventure, g map[string][]string, start string) []string {
	reachable := Reachable(g, start)
	var missing []string
	for id := range adv.Steps {
		if !reachable[id] {
			missing = append(missing, id)
		}
	}
	story.SortStepIDs(missing)
	return missing
}

// OrphanedChoices returns choices whose targets cannot resolve: step
// references to missing steps, and ending references to kinds that are
// neither declared nor standard. Targets matching neither grammar are
// left to the validator. Results are ordered by step id, then index.
func OrphanedChoices(adv *story.Adventure) []ChoiceRef {
	var orphans []ChoiceRef
	for _, id := range adv.SortedStepIDs() {
		step := adv.Steps[id]
		for i, c := range step.Choices {
			ref := ChoiceRef{StepID: id, Index: i, Label: c.Label, Target: c.Target}
			if stepID, ok := story.TargetStepID(c.Target); ok {
				if _, exists := adv.Steps[stepID]; !exists {
					orphans = append(orphans, ref)
				}
				continue
			}
			if kind, ok := story.TargetEndingKind(c.Target); ok {
				if !adv.HasEnding(kind) {
					orphans = append(orphans, ref)
				}
			}
		}
	}
	return orphans
}

// EnumeratePaths collects complete playthroughs from start via bounded
// depth-first search. A step revisited within the current path prunes
// that branch silently, so cycles terminate without being reported.
// Enumeration stops once caps.MaxPaths paths are collected, and any
// branch longer than caps.MaxPathLength steps is abandoned.
func EnumeratePaths(adv *story.Adventure, start string, caps Caps) []Path {
	caps = caps.Normalize()

	var paths []Path
	var walk func(stepID string, trail []string, picks []string)
	walk = func(stepID string, trail []string, picks []string) {
		if len(paths) >= caps.MaxPaths {
			return
		}
		if len(trail) >= caps.MaxPathLength {
			return
		}
		step, ok := adv.Steps[stepID]
		if !ok {
			return
		}

		trail = append(trail, stepID)
		for _, c := range step.Choices {
			if len(paths) >= caps.MaxPaths {
				return
			}
			pick := fmt.Sprintf("%s:%s", stepID, c.Label)
			if kind, isEnding := story.TargetEndingKind(c.Target); isEnding {
				paths = append(paths, Path{
					Steps:   append([]string(nil), trail...),
					Choices: append(append([]string(nil), picks...), pick),
					Ending:  kind,
				})
				continue
			}
			if next, isStep := story.TargetStepID(c.Target); isStep {
				if !contains(trail, next) {
					walk(next, trail, append(append([]string(nil), picks...), pick))
				}
			}
		}
	}

	walk(start, nil, nil)
	return paths
}

// BranchingFactor returns the choice count per step.
func BranchingFactor(adv *story.Adventure) map[string]int {
	factors := make(map[string]int, len(adv.Steps))
	for id, step := range adv.Steps {
		factors[id] = len(step.Choices)
	}
	return factors
}

// CriticalPath follows the forced route from start: the chain of steps
// the player has no say in. The chain extends while the current step
// has exactly one distinct target and that target names an unvisited
// step. The start id always opens the path, even when no such step
// exists, and the id that breaks the chain is still included.
func CriticalPath(g map[string][]string, start string) []string {
	path := []string{start}
	current := start

	for len(g[current]) == 1 {
		next, ok := story.TargetStepID(g[current][0])
		if !ok || contains(path, next) {
			break
		}
		path = append(path, next)
		current = next
	}
	return path
}

// PathLengths returns the shortest distance in steps from start to
// every step a breadth-first walk can reach. The start id is present
// at distance zero even when it names no step.
func PathLengths(g map[string][]string, start string) map[string]int {
	dist := map[string]int{start: 0}
	queue := []string{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, target := range g[current] {
			next, ok := story.TargetStepID(target)
			if !ok {
				continue
			}
			if d, seen := dist[next]; !seen || d > dist[current]+1 {
				dist[next] = dist[current] + 1
				queue = append(queue, next)
			}
		}
	}
	return dist
}

// AverageLength returns the mean step count across paths, 0 for none.
func AverageLength(paths []Path) float64 {
	if len(paths) == 0 {
		return 0
	}
	total := 0
	for _, p := range paths {
		total += len(p.Steps)
	}
	return float64(total) / float64(len(paths))
}

// LengthBounds returns the shortest and longest path step counts.
func LengthBounds(paths []Path) (min, max int) {
	for i, p := range paths {
		n := len(p.Steps)
		if i == 0 || n < min {
			min = n
		}
		if n > max {
			max = n
		}
	}
	return min, max
}

// EndingDistribution counts paths per ending kind.
func EndingDistribution(paths []Path) map[string]int {
	dist := make(map[string]int)
	for _, p := range paths {
		dist[p.Ending]++
	}
	return dist
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
