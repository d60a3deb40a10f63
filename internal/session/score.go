package session

import (
	"regexp"
	"strconv"
)

var scorePattern = regexp.MustCompile(`(\d+)\s*/\s*10`)

// ExtractScore returns the integer immediately preceding the first "/10" in
// reply. It reports false when there is no match or the value is outside
// [0, 10]; a missing score is never reported as zero.
func ExtractScore(reply string) (int, bool) {
	match := scorePattern.FindStringSubmatch(reply)
	if match == nil {
		return 0, false
	}
	score, err := strconv.Atoi(match[1])
	if err != nil || score < 0 || score > 10 {
		return 0, false
	}
	return score, true
}
