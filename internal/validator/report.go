package validator

import (
	"fmt"
	"strings"

	"github.com/questfoundry/advgraph/internal/story"
)

// Report validates the adventure and renders the findings as the
// plain-text validation report.
func Report(adv *story.Adventure) string {
	result := Validate(adv)

	var b strings.Builder
	b.WriteString("=== ADV Validation Report ===\n\n")

	if result.Valid {
		b.WriteString("VALIDATION PASSED\n")
	} else {
		b.WriteString("VALIDATION FAILED\n")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Summary: %d errors, %d warnings\n\n", len(result.Errors), len(result.Warnings))

	if len(result.Errors) > 0 {
		b.WriteString("ERRORS:\n")
		for _, issue := range result.Errors {
			fmt.Fprintf(&b, "  • %s\n", issue)
		}
		b.WriteString("\n")
	}

	if len(result.Warnings) > 0 {
		b.WriteString("WARNINGS:\n")
		for _, issue := range result.Warnings {
			fmt.Fprintf(&b, "  • %s\n", issue)
		}
		b.WriteString("\n")
	}

	b.WriteString("RECOMMENDATIONS:\n")
	if len(result.Errors) > 0 {
		b.WriteString("  • Fix all errors before using the .adv file\n")
	}
	if len(result.Warnings) > 0 {
		b.WriteString("  • Consider addressing warnings for better quality\n")
	}
	if result.Valid {
		b.WriteString("  • File should load successfully in the game engine\n")
	}

	return b.String()
}
