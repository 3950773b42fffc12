package validator

import (
	"fmt"
	"strings"

	"github.com/questfoundry/advgraph/internal/story"
)

// Default content substituted by FixCommonIssues.
const (
	defaultGameName      = "Generated Adventure"
	defaultSuccessEnding = "Congratulations! You have successfully completed the adventure."
	defaultFailureEnding = "Your adventure has ended. Better luck next time!"
)

var defaultMainMenu = []string{"Start New Game", "Load Game", "Exit"}

// FixCommonIssues repairs the validation problems that have an obvious
// mechanical fix: a missing game name, an empty main menu, absent
// success/failure endings, and empty choice descriptions. The input is
// never touched; the returned list describes each fix applied, in
// order, and is empty when nothing needed fixing.
func FixCommonIssues(adv *story.Adventure) (*story.Adventure, []string) {
	fixed := adv.Clone()
	var applied []string

	if strings.TrimSpace(fixed.GameName) == "" {
		fixed.GameName = defaultGameName
		applied = append(applied, "set default game name")
	}

	if len(fixed.MainMenu) == 0 {
		fixed.MainMenu = append([]string(nil), defaultMainMenu...)
		applied = append(applied, "added default main menu")
	}

	if fixed.Endings == nil {
		fixed.Endings = make(map[string]string)
	}
	if strings.TrimSpace(fixed.Endings[story.EndingSuccess]) == "" {
		fixed.Endings[story.EndingSuccess] = defaultSuccessEnding
		applied = append(applied, "added default success ending")
	}
	if strings.TrimSpace(fixed.Endings[story.EndingFailure]) == "" {
		fixed.Endings[story.EndingFailure] = defaultFailureEnding
		applied = append(applied, "added default failure ending")
	}

	for _, id := range fixed.SortedStepIDs() {
		step := fixed.Steps[id]
		for i := range step.Choices {
			if strings.TrimSpace(step.Choices[i].Description) == "" {
				step.Choices[i].Description = fmt.Sprintf("Continue with option %s", step.Choices[i].Label)
				applied = append(applied, fmt.Sprintf("filled description for choice %s:%s", id, step.Choices[i].Label))
			}
		}
	}

	return fixed, applied
}
