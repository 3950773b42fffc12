package replay

import "fmt"

// Insights summarizes an analysis as human-readable observations: one
// for the path count, one per metric that stands out either way, and
// an overall verdict.
func Insights(a Analysis) []string {
	var insights []string

	switch {
	case a.TotalPaths == 1:
		insights = append(insights, "Linear story with no branching - limited replayability")
	case a.TotalPaths < 3:
		insights = append(insights, "Few unique paths available - consider adding more choices")
	case a.TotalPaths > 20:
		insights = append(insights, "High path variety provides excellent replayability")
	default:
		insights = append(insights, fmt.Sprintf("Moderate path variety with %d unique playthroughs", a.TotalPaths))
	}

	if a.PathDiversity > 8 {
		insights = append(insights, "Paths are highly diverse - each playthrough feels unique")
	} else if a.PathDiversity < 4 {
		insights = append(insights, "Paths are too similar - consider varying story content more")
	}

	if a.ContentVariation > 7 {
		insights = append(insights, "Good content variation - players see different story elements")
	} else if a.ContentVariation < 4 {
		insights = append(insights, "Low content variation - most paths use similar content")
	}

	if a.EndingVariety > 7 {
		insights = append(insights, "Excellent ending variety encourages multiple playthroughs")
	} else if a.EndingVariety < 4 {
		insights = append(insights, "Limited ending variety - consider adding more endings")
	}

	if a.BranchingComplexity > 7 {
		insights = append(insights, "Complex branching structure provides rich decision-making")
	} else if a.BranchingComplexity < 4 {
		insights = append(insights, "Simple branching - consider adding more choice complexity")
	}

	switch {
	case a.Overall >= 8:
		insights = append(insights, "High replayability - adventure strongly encourages multiple playthroughs")
	case a.Overall >= 6:
		insights = append(insights, "Moderate replayability - some incentive for replaying")
	default:
		insights = append(insights, "Low replayability - limited reasons to replay the adventure")
	}

	return insights
}

// Recommendations derives improvement advice from an analysis. A
// story already scoring 8 or better gets a single reinforcement
// entry instead.
func Recommendations(a Analysis) []string {
	var recs []string

	if a.Overall < 6 {
		recs = append(recs, "Consider major structural changes to improve replayability")
	}
	if a.PathDiversity < 5 {
		recs = append(recs, "Add more branching points to create diverse story paths")
	}
	if a.ContentVariation < 5 {
		recs = append(recs, "Create paths that explore different content areas")
	}
	if a.EndingVariety < 5 {
		recs = append(recs, "Add more endings or balance existing ending distribution")
	}
	if a.BranchingComplexity < 5 {
		recs = append(recs, "Increase choice complexity with conditions and consequences")
	}
	if a.TotalPaths < 3 {
		recs = append(recs, "Add more choice branches to create additional unique paths")
	}
	if a.ReplayValue < 5 {
		recs = append(recs, "Add incentives for replaying (hidden content, achievements, etc.)")
	}
	if a.Overall >= 8 {
		recs = append(recs, "Excellent replayability - maintain this quality in future content")
	}

	return recs
}
