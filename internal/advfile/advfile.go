// Package advfile reads and writes the .adv text format.
//
// The format is a flat sequence of [SECTION] blocks: game metadata,
// key/value state sections, one [STEP_<n>] block per step holding
// [NARRATIVE] and [CHOICES] sub-blocks, and one [ENDING_<KIND>] block
// per ending. Choice lines follow
//
//	A) Description → STEP_2 {IF condition; CONSEQUENCE}
//
// with "->" accepted in place of the arrow and the brace group
// optional.
//
// Parse is tolerant: malformed lines become Issues and the rest of the
// file still loads, so the validator can judge the result as a whole.
// Write produces the canonical section order with steps sorted
// numerically; Parse(Write(a)) reproduces a.
package advfile

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/questfoundry/advgraph/internal/story"
)

// Issue is a single parse problem, tied to a 1-based line number.
type Issue struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// String renders the issue as "line 12: message".
func (i Issue) String() string {
	return fmt.Sprintf("line %d: %s", i.Line, i.Message)
}

// choiceLine matches one choice entry. The target is captured loosely
// so that unknown reference shapes survive into the model for the
// validator to report.
var choiceLine = regexp.MustCompile(`^([A-D])\)\s*(.+?)\s*(?:->|→)\s*(.+?)(?:\s*\{(.+?)\})?$`)

// sectionLine matches a [SECTION] header.
var sectionLine = regexp.MustCompile(`^\[([^\[\]]+)\]$`)

// Section name prefixes of the wire format.
const (
	sectionGameName  = "GAME_NAME"
	sectionName      = "NAME"
	sectionMainMenu  = "MAIN_MENU"
	sectionInventory = "INVENTORY"
	sectionStats     = "STATS"
	sectionVariables = "VARIABLES"
	sectionNarrative = "NARRATIVE"
	sectionChoices   = "CHOICES"
)

// Parse loads .adv content into an adventure. It never fails: whatever
// can be understood is kept, everything else is reported through the
// issue list with its line number.
func Parse(content string) (*story.Adventure, []Issue) {
	p := &parser{adv: story.New()}
	for i, raw := range strings.Split(content, "\n") {
		p.line(i+1, strings.TrimSpace(raw))
	}
	p.closeStep()
	if len(p.adv.Steps) == 0 && p.adv.GameName == "" && len(p.adv.Endings) == 0 {
		p.report(0, "no recognizable sections found")
	}
	return p.adv, p.issues
}

// ─── Private Helpers ─────────────────────────────────────────────────

type parser struct {
	adv    *story.Adventure
	issues []Issue

	section string      // current top-level section name
	step    *story.Step // step being assembled, nil outside [STEP_n]
	inBlock string      // NARRATIVE or CHOICES while inside a step sub-block
	lines   []string    // accumulated content lines for the current block
}

func (p *parser) report(line int, format string, args ...interface{}) {
	p.issues = append(p.issues, Issue{Line: line, Message: fmt.Sprintf(format, args...)})
}

func (p *parser) line(n int, text string) {
	if m := sectionLine.FindStringSubmatch(text); m != nil {
		p.header(n, m[1])
		return
	}
	if text == "" && p.inBlock != sectionNarrative {
		return
	}
	p.content(n, text)
}

func (p *parser) header(n int, name string) {
	// Sub-blocks only mean something inside a step.
	switch name {
	case sectionNarrative, sectionChoices:
		if p.step == nil {
			p.report(n, "[%s] outside a step section", name)
			return
		}
		p.flushBlock()
		p.inBlock = name
		return
	case "/" + sectionNarrative, "/" + sectionChoices:
		if p.step == nil || p.inBlock != strings.TrimPrefix(name, "/") {
			p.report(n, "unmatched [%s]", name)
			return
		}
		p.flushBlock()
		return
	}

	if strings.HasPrefix(name, "/STEP_") {
		p.closeStep()
		p.section = ""
		return
	}

	p.closeStep()
	p.section = name
	p.lines = nil

	if id, ok := story.TargetStepID(name); ok {
		if _, exists := p.adv.Steps[id]; exists {
			p.report(n, "duplicate section [%s]", name)
		}
		p.step = &story.Step{ID: id}
	}
}

// content handles a non-header line for the current section.
func (p *parser) content(n int, text string) {
	if p.step != nil {
		p.stepContent(n, text)
		return
	}

	switch p.section {
	case sectionGameName:
		if p.adv.GameName == "" {
			p.adv.GameName = text
		} else {
			p.adv.GameName += " " + text
		}
	case sectionName:
		switch strings.ToLower(text) {
		case "true":
			p.adv.AskForName = true
		case "false":
			p.adv.AskForName = false
		default:
			p.report(n, "[NAME] expects true or false, got %q", text)
		}
	case sectionMainMenu:
		p.adv.MainMenu = append(p.adv.MainMenu, text)
	case sectionInventory:
		p.keyValue(n, text, p.adv.Inventory)
	case sectionStats:
		p.keyValue(n, text, p.adv.Stats)
	case sectionVariables:
		p.keyValue(n, text, p.adv.Variables)
	case "":
		p.report(n, "content before first section: %q", text)
	default:
		if kind, ok := story.TargetEndingKind(p.section); ok {
			if existing := p.adv.Endings[kind]; existing != "" {
				p.adv.Endings[kind] = existing + "\n" + text
			} else {
				p.adv.Endings[kind] = text
			}
			return
		}
		p.report(n, "content in unknown section [%s]: %q", p.section, text)
	}
}

// stepContent handles a line inside a [STEP_n] section. Inside an
// explicit sub-block the line belongs to that block; loose lines fall
// back to shape detection so files without [NARRATIVE]/[CHOICES]
// markers still parse.
func (p *parser) stepContent(n int, text string) {
	switch p.inBlock {
	case sectionNarrative:
		p.lines = append(p.lines, text)
	case sectionChoices:
		p.choice(n, text)
	default:
		if choiceLine.MatchString(text) {
			p.choice(n, text)
			return
		}
		if text != "" {
			if p.step.Narrative != "" {
				p.step.Narrative += "\n" + text
			} else {
				p.step.Narrative = text
			}
		}
	}
}

func (p *parser) choice(n int, text string) {
	m := choiceLine.FindStringSubmatch(text)
	if m == nil {
		if text != "" {
			p.report(n, "malformed choice line: %q", text)
		}
		return
	}

	c := story.Choice{
		Label:       story.ChoiceLabel(m[1]),
		Description: strings.TrimSpace(m[2]),
		Target:      strings.TrimSpace(m[3]),
	}
	for _, item := range strings.Split(m[4], ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if len(item) > 3 && strings.EqualFold(item[:3], "IF ") {
			c.Conditions = append(c.Conditions, strings.TrimSpace(item[3:]))
		} else {
			c.Consequences = append(c.Consequences, item)
		}
	}
	p.step.Choices = append(p.step.Choices, c)
}

func (p *parser) keyValue(n int, text string, dst map[string]string) {
	key, value, found := strings.Cut(text, ":")
	if !found {
		p.report(n, "expected key: value, got %q", text)
		return
	}
	dst[strings.TrimSpace(key)] = strings.TrimSpace(value)
}

// flushBlock commits an open NARRATIVE block to the current step.
func (p *parser) flushBlock() {
	if p.inBlock == sectionNarrative {
		narrative := strings.TrimSpace(strings.Join(p.lines, "\n"))
		if p.step.Narrative != "" && narrative != "" {
			p.step.Narrative += "\n" + narrative
		} else if narrative != "" {
			p.step.Narrative = narrative
		}
	}
	p.inBlock = ""
	p.lines = nil
}

func (p *parser) closeStep() {
	p.flushBlock()
	if p.step != nil {
		p.adv.Steps[p.step.ID] = p.step
		p.step = nil
	}
}

// ─── Writing ─────────────────────────────────────────────────────────

// Write renders the adventure in canonical .adv form: fixed section
// order, steps sorted numerically, key/value and ending sections
// sorted for stable output, empty ending texts skipped.
func Write(adv *story.Adventure) string {
	var lines []string
	add := func(ls ...string) { lines = append(lines, ls...) }

	add("["+sectionGameName+"]", adv.GameName, "")

	add("[" + sectionName + "]")
	if adv.AskForName {
		add("true")
	} else {
		add("false")
	}
	add("")

	add("[" + sectionMainMenu + "]")
	add(adv.MainMenu...)
	add("")

	for _, kv := range []struct {
		name string
		data map[string]string
	}{
		{sectionInventory, adv.Inventory},
		{sectionStats, adv.Stats},
		{sectionVariables, adv.Variables},
	} {
		if len(kv.data) == 0 {
			continue
		}
		add("[" + kv.name + "]")
		for _, key := range sortedKeys(kv.data) {
			add(key + ": " + kv.data[key])
		}
		add("")
	}

	for _, id := range adv.SortedStepIDs() {
		step := adv.Steps[id]
		add("[" + story.StepTarget(id) + "]")
		add("["+sectionNarrative+"]", step.Narrative, "[/"+sectionNarrative+"]")
		add("[" + sectionChoices + "]")
		for _, c := range step.Choices {
			add(formatChoice(c))
		}
		add("[/"+sectionChoices+"]", "")
	}

	for _, kind := range adv.SortedEndingKinds() {
		text := adv.Endings[kind]
		if strings.TrimSpace(text) == "" {
			continue
		}
		add("["+story.EndingTarget(kind)+"]", text, "")
	}

	return strings.Join(lines, "\n")
}

// formatChoice renders one choice line, conditions marked with the IF
// prefix and joined with consequences inside the brace group.
func formatChoice(c story.Choice) string {
	line := fmt.Sprintf("%s) %s → %s", c.Label, c.Description, c.Target)

	extras := make([]string, 0, len(c.Conditions)+len(c.Consequences))
	for _, cond := range c.Conditions {
		extras = append(extras, "IF "+cond)
	}
	extras = append(extras, c.Consequences...)
	if len(extras) > 0 {
		line += " {" + strings.Join(extras, "; ") + "}"
	}
	return line
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
