// Package story defines the adventure data model: a directed graph of
// numbered steps connected by lettered choices that terminate in named
// endings.
//
// The model is deliberately logic-free. Analysis lives in the graph,
// validator, pruner, endings, replay, and flow packages, all of which
// take an Adventure snapshot and treat it as read-only; anything that
// rewrites a story clones it first and returns the copy.
package story

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// StartStepID is the canonical entry point of every adventure.
const StartStepID = "1"

// --- Choice label enum ---

// ChoiceLabel identifies a choice within its step. Labels are single
// letters A through D and must be unique per step.
type ChoiceLabel string

const (
	LabelA ChoiceLabel = "A"
	LabelB ChoiceLabel = "B"
	LabelC ChoiceLabel = "C"
	LabelD ChoiceLabel = "D"
)

// validLabels is the set of allowed choice labels.
var validLabels = map[ChoiceLabel]bool{
	LabelA: true,
	LabelB: true,
	LabelC: true,
	LabelD: true,
}

// ValidateLabel returns an error if the label is not A, B, C, or D.
func ValidateLabel(l ChoiceLabel) error {
	if !validLabels[l] {
		return fmt.Errorf("invalid choice label %q: must be one of: A, B, C, D", l)
	}
	return nil
}

// MaxChoicesPerStep is the largest choice count a step can carry and
// still be considered well-formed.
const MaxChoicesPerStep = 4

// --- Ending kinds ---

// Standard ending kinds. Custom kinds are allowed once declared in the
// adventure's ending set; the standard three are always legal targets
// whether declared or not.
const (
	EndingSuccess = "success"
	EndingFailure = "failure"
	EndingNeutral = "neutral"
)

// standardEndings is the set of ending kinds every adventure is
// expected to declare.
var standardEndings = map[string]bool{
	EndingSuccess: true,
	EndingFailure: true,
	EndingNeutral: true,
}

// IsStandardEnding reports whether kind is one of success, failure, or
// neutral. The kind is matched case-insensitively.
func IsStandardEnding(kind string) bool {
	return standardEndings[strings.ToLower(kind)]
}

// StandardEndings returns the three standard kinds in display order.
func StandardEndings() []string {
	return []string{EndingSuccess, EndingFailure, EndingNeutral}
}

// --- Target grammar ---

// Choice targets are strings in one of two shapes:
//
//	STEP_<n>        jump to the step with id <n>
//	ENDING_<KIND>   finish the story with the named ending
//
// A target that matches neither shape is carried through analysis
// untouched; the validator reports it, nothing panics on it.
const (
	stepPrefix   = "STEP_"
	endingPrefix = "ENDING_"
)

// IsStepTarget reports whether target references a step.
func IsStepTarget(target string) bool {
	return strings.HasPrefix(target, stepPrefix)
}

// IsEndingTarget reports whether target references an ending.
func IsEndingTarget(target string) bool {
	return strings.HasPrefix(target, endingPrefix)
}

// StepTarget builds the target string for a step id.
func StepTarget(id string) string {
	return stepPrefix + id
}

// EndingTarget builds the target string for an ending kind. The kind is
// upper-cased to match the wire form, ENDING_SUCCESS.
func EndingTarget(kind string) string {
	return endingPrefix + strings.ToUpper(kind)
}

// TargetStepID extracts the step id from a STEP_ target. The second
// return is false when target is not a step reference.
func TargetStepID(target string) (string, bool) {
	if !IsStepTarget(target) {
		return "", false
	}
	return target[len(stepPrefix):], true
}

// TargetEndingKind extracts the ending kind from an ENDING_ target,
// normalized to lower case. The second return is false when target is
// not an ending reference.
func TargetEndingKind(target string) (string, bool) {
	if !IsEndingTarget(target) {
		return "", false
	}
	return strings.ToLower(target[len(endingPrefix):]), true
}

// --- Core data structures ---

// Choice is a single option presented at a step.
type Choice struct {
	Label        ChoiceLabel `json:"label"`
	Description  string      `json:"description"`
	Target       string      `json:"target"` // STEP_<n> or ENDING_<KIND>
	Conditions   []string    `json:"conditions,omitempty"`
	Consequences []string    `json:"consequences,omitempty"`
}

// Step is one narrative beat with its outgoing choices. Well-formed
// steps carry a positive integer id, a narrative, and 1 to 4 choices;
// the model does not enforce any of that so analysis stays total.
type Step struct {
	ID        string   `json:"step_id"`
	Narrative string   `json:"narrative"`
	Choices   []Choice `json:"choices"`
}

// Adventure is the root story structure. Endings maps lower-cased
// ending kinds to their text. Inventory, Stats, and Variables are the
// initial key/value state declared by the story file. AskForName
// mirrors the [NAME] section of the wire format: whether the engine
// prompts the player for a name before step 1.
type Adventure struct {
	GameName   string            `json:"game_name"`
	AskForName bool              `json:"ask_for_name"`
	MainMenu   []string          `json:"main_menu,omitempty"`
	Steps      map[string]*Step  `json:"steps"`
	Endings    map[string]string `json:"endings"`
	Inventory  map[string]string `json:"inventory,omitempty"`
	Stats      map[string]string `json:"stats,omitempty"`
	Variables  map[string]string `json:"variables,omitempty"`
}

// New returns an empty adventure with all maps initialized.
func New() *Adventure {
	return &Adventure{
		Steps:     make(map[string]*Step),
		Endings:   make(map[string]string),
		Inventory: make(map[string]string),
		Stats:     make(map[string]string),
		Variables: make(map[string]string),
	}
}

// Clone deep-copies the adventure. Mutating stages clone first and
// rewrite the copy, so a caller can run several analyses against one
// snapshot concurrently.
func (a *Adventure) Clone() *Adventure {
	c := &Adventure{
		GameName:   a.GameName,
		AskForName: a.AskForName,
		MainMenu:   append([]string(nil), a.MainMenu...),
		Steps:      make(map[string]*Step, len(a.Steps)),
		Endings:    copyStringMap(a.Endings),
		Inventory:  copyStringMap(a.Inventory),
		Stats:      copyStringMap(a.Stats),
		Variables:  copyStringMap(a.Variables),
	}
	for id, s := range a.Steps {
		cs := &Step{
			ID:        s.ID,
			Narrative: s.Narrative,
			Choices:   make([]Choice, len(s.Choices)),
		}
		for i, ch := range s.Choices {
			cc := ch
			cc.Conditions = append([]string(nil), ch.Conditions...)
			cc.Consequences = append([]string(nil), ch.Consequences...)
			cs.Choices[i] = cc
		}
		c.Steps[id] = cs
	}
	return c
}

// HasEnding reports whether kind resolves to a usable ending: either
// declared in the ending set or one of the standard three.
func (a *Adventure) HasEnding(kind string) bool {
	if _, ok := a.Endings[strings.ToLower(kind)]; ok {
		return true
	}
	return IsStandardEnding(kind)
}

// Start returns the entry step, or nil when step "1" is missing.
func (a *Adventure) Start() *Step {
	return a.Steps[StartStepID]
}

// SortedStepIDs returns all step ids ordered numerically. Ids that do
// not parse as integers sort after the numeric ones, alphabetically,
// so traversal and rendering stay deterministic on malformed input.
func (a *Adventure) SortedStepIDs() []string {
	ids := make([]string, 0, len(a.Steps))
	for id := range a.Steps {
		ids = append(ids, id)
	}
	SortStepIDs(ids)
	return ids
}

// SortStepIDs orders step ids in place, numerically where possible.
func SortStepIDs(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		ni, errI := strconv.Atoi(ids[i])
		nj, errJ := strconv.Atoi(ids[j])
		switch {
		case errI == nil && errJ == nil:
			return ni < nj
		case errI == nil:
			return true
		case errJ == nil:
			return false
		default:
			return ids[i] < ids[j]
		}
	})
}

// SortedEndingKinds returns the declared ending kinds with the standard
// three first, in their display order, then customs alphabetically.
func (a *Adventure) SortedEndingKinds() []string {
	var customs []string
	for kind := range a.Endings {
		if !IsStandardEnding(kind) {
			customs = append(customs, kind)
		}
	}
	sort.Strings(customs)

	kinds := make([]string, 0, len(a.Endings))
	for _, kind := range StandardEndings() {
		if _, ok := a.Endings[kind]; ok {
			kinds = append(kinds, kind)
		}
	}
	return append(kinds, customs...)
}

func copyStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
