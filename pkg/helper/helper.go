package helper

import (
	"fmt"
	"strings"
)

// NonClassifiedPosition is the sentinel the results feed maps retired /
// disqualified drivers to, so they sort behind every classified finisher.
const NonClassifiedPosition = 999

// FormatPosition renders a leaderboard position for display.
func FormatPosition(position int) string {
	if position <= 0 || position >= NonClassifiedPosition {
		return "NC"
	}
	return fmt.Sprintf("P%d", position)
}

// SecondsToClock converts a session timestamp to hh:mm:ss.mmm.
func SecondsToClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := int(seconds / 3600)
	seconds -= float64(hours * 3600)
	minutes := int(seconds / 60)
	seconds -= float64(minutes * 60)
	milliseconds := int((seconds - float64(int(seconds))) * 1000)
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, int(seconds), milliseconds)
}

// GapToLeader renders a distance gap, right-aligned like a timing column.
func GapToLeader(metres float64) string {
	if metres <= 0 {
		return "-"
	}
	gap := fmt.Sprintf("%.1fm", metres)
	if chars := len(gap); chars < 9 {
		gap = strings.Repeat(" ", 9-chars) + gap
	}
	return gap
}
